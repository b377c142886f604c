package metar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrissnell/airfieldwx/internal/types"
)

const relayed = "Rx 210326Z METAR VVCS 210330Z 07008G18KT 340V130 9999 -SHRA SCT015 BKN020 28/24 Q1011 TEMPO 10016G28KT"

func TestParseRelayedReport(t *testing.T) {
	r := Parse(relayed)

	require.NotNil(t, r.Station)
	assert.Equal(t, "VVCS", *r.Station)
	require.NotNil(t, r.ObsTime)
	assert.Equal(t, "210330Z", *r.ObsTime)

	require.NotNil(t, r.WindDirection)
	assert.Equal(t, 70, *r.WindDirection)
	assert.Equal(t, 8, *r.WindSpeed)
	assert.Equal(t, 18, *r.WindGust)

	require.NotNil(t, r.Visibility)
	assert.Equal(t, 9999, *r.Visibility)
	assert.Equal(t, 28, *r.Temperature)
	assert.Equal(t, 24, *r.DewPoint)

	assert.Equal(t, []CloudLayer{{Amount: "SCT", HeightM: 457}, {Amount: "BKN", HeightM: 610}}, r.Clouds)

	assert.True(t, r.IsRaining)
	require.NotNil(t, r.RainLevel)
	assert.Equal(t, types.LightRain, *r.RainLevel)
	assert.Equal(t, []string{"light rain showers", "rain showers"}, r.Weather)

	rt, ok := r.ReportTime()
	require.True(t, ok)
	assert.Equal(t, 21, rt.Day)
}

func TestCloudHeightConversion(t *testing.T) {
	assert.Equal(t, 610, HundredsOfFeetToMeters(20))
	assert.Equal(t, 30, HundredsOfFeetToMeters(1))
	assert.Equal(t, 0, HundredsOfFeetToMeters(0))

	r := Parse("METAR VVCS 210330Z 00000KT 9999 OVC020 27/23 Q1012")
	require.Len(t, r.Clouds, 1)
	assert.Equal(t, 610, r.Clouds[0].HeightM)
}

func TestParseMissingFields(t *testing.T) {
	r := Parse("garbled text")

	assert.Equal(t, "garbled text", r.Raw)
	assert.Nil(t, r.Station)
	assert.Nil(t, r.ObsTime)
	assert.Nil(t, r.WindSpeed)
	assert.Nil(t, r.Visibility)
	assert.Nil(t, r.Temperature)
	assert.Nil(t, r.RainLevel)
	assert.False(t, r.IsRaining)
	assert.Empty(t, r.Clouds)
	assert.Empty(t, r.Weather)
}

func TestParseVariableWindAndNegativeTemps(t *testing.T) {
	r := Parse("METAR ZBAA 010600Z VRB03KT 0800 FG M05/M07 Q1030")

	assert.True(t, r.WindVariable)
	assert.Nil(t, r.WindDirection)
	assert.Equal(t, 3, *r.WindSpeed)
	assert.Equal(t, 800, *r.Visibility)
	assert.Equal(t, -5, *r.Temperature)
	assert.Equal(t, -7, *r.DewPoint)
	assert.Equal(t, []string{"fog"}, r.Weather)
	assert.False(t, r.IsRaining)
}

// The dominant rain level is the first rain phenomenon in table order, not the
// most severe one present.
func TestRainLevelFirstMatchWins(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want types.RainLevel
	}{
		{"light rain listed with thunderstorm", "METAR VVCS 210330Z 18010KT 4000 -RA TSRA BKN015", types.LightRain},
		{"thunderstorm rain alone", "METAR VVCS 210330Z 18010KT 4000 TSRA BKN015CB", types.ThunderstormRain},
		{"drizzle classed as light", "METAR VVCS 210330Z 18010KT 4000 DZ BR", types.LightRain},
		{"heavy shower beats later moderate rain", "METAR VVCS 210330Z 18010KT 2000 +SHRA RA", types.HeavyRain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Parse(tt.in)
			require.NotNil(t, r.RainLevel)
			assert.Equal(t, tt.want, *r.RainLevel)
			assert.True(t, r.IsRaining)
		})
	}
}

func TestSplitReports(t *testing.T) {
	block := "Rx 210326Z METAR VVCS 210330Z 07008KT\n  9999 SCT015 28/24 Q1011=\n\n" +
		"Rx 210332Z METAR VVCT 210330Z 01006KT 9999 27/23 Q1012 NOSIG=\n   \n"

	reports := SplitReports(block)

	require.Len(t, reports, 2)
	assert.Equal(t, "Rx 210326Z METAR VVCS 210330Z 07008KT 9999 SCT015 28/24 Q1011", reports[0])
	assert.Equal(t, "VVCT", *Parse(reports[1]).Station)
	assert.Empty(t, SplitReports("  = \n ="))
}
