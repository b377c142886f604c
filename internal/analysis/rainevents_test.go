package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrissnell/airfieldwx/internal/types"
)

func TestSegmentRainEvents(t *testing.T) {
	tests := []struct {
		name       string
		records    []types.RainIntensityRecord
		wantEvents int
		wantSizes  []int
	}{
		{
			name:       "no records",
			records:    nil,
			wantEvents: 0,
		},
		{
			name: "no stop marker yields one event",
			records: []types.RainIntensityRecord{
				rainAt(9, 0, types.LightRain),
				rainAt(9, 15, types.ModerateRain),
				rainAt(9, 40, types.HeavyRain),
			},
			wantEvents: 1,
			wantSizes:  []int{3},
		},
		{
			name: "only stop markers yield singletons",
			records: []types.RainIntensityRecord{
				rainAt(9, 0, types.RainStopped),
				rainAt(10, 0, types.RainStopped),
				rainAt(11, 0, types.RainStopped),
			},
			wantEvents: 3,
			wantSizes:  []int{1, 1, 1},
		},
		{
			name:       "stop is inclusive and trailing run is kept",
			records:    append(intermittentRain(), rainAt(12, 0, types.Drizzle)),
			wantEvents: 3,
			wantSizes:  []int{2, 2, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := SegmentRainEvents(tt.records)
			require.Len(t, events, tt.wantEvents)

			var concat []types.RainIntensityRecord
			for i, ev := range events {
				assert.Len(t, ev.Records, tt.wantSizes[i])
				concat = append(concat, ev.Records...)
				if i > 0 {
					assert.False(t, ev.Start.Before(events[i-1].End))
				}
			}
			if len(tt.records) > 0 {
				assert.Equal(t, tt.records, concat)
			}
		})
	}
}

func TestRainfallEventFields(t *testing.T) {
	records := []types.RainIntensityRecord{
		rainAt(13, 5, types.LightRain),
		rainAt(13, 20, types.HeavyRain),
		rainAt(13, 35, types.ThunderstormRain),
		rainAt(13, 50, types.HeavyRain),
		{Time: at(14, 27).Add(59 * time.Second), Level: types.RainStopped},
	}

	events := SegmentRainEvents(records)
	require.Len(t, events, 1)
	ev := events[0]

	assert.Equal(t, at(13, 5), ev.Start)
	assert.Equal(t, 82, ev.Duration, "duration is floored to whole minutes")
	// Thunderstorm rain ranks above heavy, and the first heavy record is not the peak.
	assert.Equal(t, at(13, 35), ev.Peak.Time)
	assert.Equal(t, "light → heavy → thunderstorm-rain → heavy → rain-stopped", ev.Transitions)
	assert.True(t, ev.Stopped())
}

func TestPeakIntensityFirstOccurrenceWins(t *testing.T) {
	records := []types.RainIntensityRecord{
		rainAt(1, 0, types.LightRain),
		{Time: at(1, 10), Level: types.HeavyRain, Note: "first"},
		{Time: at(1, 20), Level: types.HeavyRain, Note: "second"},
	}
	assert.Equal(t, "first", PeakIntensity(records).Note)
}
