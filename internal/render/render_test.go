package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrissnell/airfieldwx/internal/analysis"
	"github.com/chrissnell/airfieldwx/internal/storage"
	"github.com/chrissnell/airfieldwx/internal/types"
	"github.com/chrissnell/airfieldwx/pkg/config"
	"github.com/chrissnell/airfieldwx/pkg/metar"
)

func at(hh, mm int) time.Time {
	return time.Date(2024, 6, 21, hh, mm, 0, 0, time.UTC)
}

func rain(hh, mm int, l types.RainLevel) types.RainIntensityRecord {
	return types.RainIntensityRecord{Time: at(hh, mm), Level: l}
}

func runway(hh, mm int, s types.RunwayState) types.RunwayStateRecord {
	return types.RunwayStateRecord{Time: at(hh, mm), State: s}
}

func TestResolveFont(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		available []string
		want      string
	}{
		{"configured family wins", Config{FontFamily: "Noto Sans CJK", FallbackFonts: []string{"Arial"}}, []string{"Arial"}, "Noto Sans CJK"},
		{"first available fallback", Config{FallbackFonts: []string{"SimHei", "DejaVu Sans", "Arial"}}, []string{"Arial", "DejaVu Sans"}, "DejaVu Sans"},
		{"nothing available", Config{FallbackFonts: []string{"SimHei"}}, nil, "sans-serif"},
		{"no fallbacks", Config{}, []string{"Arial"}, "sans-serif"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.ResolveFont(tt.available))
		})
	}
}

func TestFromConfigData(t *testing.T) {
	offset := 8
	cfg := FromConfigData(&config.ConfigData{
		Airfield: config.AirfieldData{LocalOffsetHours: &offset},
		Render:   config.RenderData{TransitionSeparator: " > "},
	})
	assert.Equal(t, 8, cfg.LocalOffsetHours)
	assert.Equal(t, " > ", cfg.TransitionSeparator)

	def := FromConfigData(&config.ConfigData{})
	assert.Equal(t, analysis.TransitionSeparator, def.TransitionSeparator)
	assert.Equal(t, 7, def.LocalOffsetHours)
}

func TestRainEventReport(t *testing.T) {
	events := analysis.SegmentRainEvents([]types.RainIntensityRecord{
		rain(10, 0, types.LightRain),
		rain(10, 30, types.HeavyRain),
		rain(11, 22, types.RainStopped),
	})
	require.Len(t, events, 1)

	got := RainEventReport(DefaultConfig(), events[0])
	assert.Contains(t, got, "2024-06-21 10:00 to 11:22 (about 82 minutes)")
	assert.Contains(t, got, "Process: light → heavy → rain-stopped")
	assert.Contains(t, got, "Strongest: heavy")

	got = RainEventReport(Config{TransitionSeparator: " / "}, events[0])
	assert.Contains(t, got, "light / heavy / rain-stopped")
}

func TestTimelineLanes(t *testing.T) {
	events := analysis.MergeTimeline(
		[]types.RainIntensityRecord{rain(10, 0, types.ModerateRain), rain(10, 40, types.RainStopped)},
		[]types.RunwayStateRecord{runway(10, 0, types.RunwayWet), runway(11, 10, types.RunwayRecoveredDry)},
	)

	c := Timeline(DefaultConfig(), "today", events, nil)
	require.Len(t, c.Series, 2)
	assert.Equal(t, "sans-serif", c.FontFamily)

	rainSeries, runwaySeries := c.Series[0], c.Series[1]
	require.Len(t, rainSeries.Points, 2)
	require.Len(t, runwaySeries.Points, 2)
	for _, p := range rainSeries.Points {
		assert.Equal(t, float64(RainLane), p.Y)
	}
	for _, p := range runwaySeries.Points {
		assert.Equal(t, float64(RunwayLane), p.Y)
	}
	assert.Equal(t, "moderate", rainSeries.Points[0].Label)
	assert.Equal(t, "recovered-dry", runwaySeries.Points[1].Label)
}

func TestEpisodeCharts(t *testing.T) {
	episodes := analysis.SplitWetRunwayEpisodes(
		[]types.RainIntensityRecord{rain(10, 0, types.LightRain), rain(12, 0, types.HeavyRain)},
		[]types.RunwayStateRecord{runway(10, 30, types.RunwayWet), runway(11, 0, types.RunwayDry)},
	)
	require.Len(t, episodes, 2)

	charts := EpisodeCharts(DefaultConfig(), episodes, nil)
	require.Len(t, charts, 2)
	assert.Contains(t, charts[0].Title, "(closed)")
	assert.Contains(t, charts[1].Title, "(open)")
	assert.Len(t, charts[0].Series[1].Points, 2)
	assert.Empty(t, charts[1].Series[1].Points)

	assert.Empty(t, EpisodeCharts(DefaultConfig(), nil, nil))
}

func TestIntensitySeries(t *testing.T) {
	events := analysis.SegmentRainEvents([]types.RainIntensityRecord{
		rain(9, 0, types.Drizzle),
		rain(9, 10, types.ThunderstormRain),
	})
	s := IntensitySeries("ev", events[0])
	require.Len(t, s.Points, 2)
	assert.Equal(t, 0.5, s.Points[0].Y)
	assert.Equal(t, 3.5, s.Points[1].Y)

	c := IntensityChart(DefaultConfig(), events, []string{"Arial"})
	assert.Equal(t, "#1 Jun 21 09:00", c.Series[0].Name)
}

func TestTables(t *testing.T) {
	out := RainTable([]types.RainIntensityRecord{{ID: 7, Time: at(9, 5), Level: types.HeavyRain, Code: "+RA"}})
	assert.Contains(t, out, "2024-06-21 09:05")
	assert.Contains(t, out, "heavy")
	assert.Contains(t, out, "+RA")

	out = RunwayTable([]types.RunwayStateRecord{{ID: 1, Time: at(9, 5), State: types.RunwayMostlyWetTreatedDry}})
	assert.Contains(t, out, "mostly-wet-treated-dry")

	report := metar.Parse("METAR ZXXX 211830Z VRB03KT 9999 RA 25/24 Q1009")
	out = ReportTable(DefaultConfig(), []storage.StoredReport{{Report: report}})
	assert.Contains(t, out, "211830Z")
	assert.Contains(t, out, "22 01:30")
	assert.Contains(t, out, "VRB/3kt")
}

func TestSummaryText(t *testing.T) {
	got := SummaryText(analysis.EpisodeSummary{Count: 3, Closed: 2, Open: 1, MeanMinutes: 45, StdDevMinutes: 15, LongestMinutes: 60})
	assert.Equal(t, "3 episodes (2 closed, 1 open); mean 45.0 min, std-dev 15.0 min, longest 60 min", got)
}
