package analysis

import (
	"strings"
	"time"

	"github.com/chrissnell/airfieldwx/internal/types"
)

// TransitionSeparator joins level labels in RainfallEvent.Transitions.
const TransitionSeparator = " → "

// RainfallEvent is a run of rain records ending at a rain-stopped marker, or at
// the end of the input when no marker follows.
type RainfallEvent struct {
	Records     []types.RainIntensityRecord `json:"records" msgpack:"records"`
	Start       time.Time                   `json:"start" msgpack:"start"`
	End         time.Time                   `json:"end" msgpack:"end"`
	Duration    int                         `json:"duration_minutes" msgpack:"duration_minutes"`
	Peak        types.RainIntensityRecord   `json:"peak" msgpack:"peak"`
	Transitions string                      `json:"transitions" msgpack:"transitions"`
}

// Stopped reports whether the event was closed by a rain-stopped marker.
func (e RainfallEvent) Stopped() bool {
	return len(e.Records) > 0 && e.Records[len(e.Records)-1].Level.IsStopped()
}

// SegmentRainEvents groups chronologically sorted rain records into rainfall
// events. Each rain-stopped record seals the event it belongs to.
func SegmentRainEvents(records []types.RainIntensityRecord) []RainfallEvent {
	var events []RainfallEvent
	var current []types.RainIntensityRecord

	for _, r := range records {
		current = append(current, r)
		if r.Level.IsStopped() {
			events = append(events, newRainfallEvent(current))
			current = nil
		}
	}

	if len(current) > 0 {
		events = append(events, newRainfallEvent(current))
	}

	return events
}

func newRainfallEvent(records []types.RainIntensityRecord) RainfallEvent {
	first, last := records[0], records[len(records)-1]

	ev := RainfallEvent{
		Records:     records,
		Start:       first.Time,
		End:         last.Time,
		Duration:    int(last.Time.Sub(first.Time) / time.Minute),
		Peak:        PeakIntensity(records),
		Transitions: TransitionText(records, TransitionSeparator),
	}
	return ev
}

// PeakIntensity returns the record with the highest severity. The earliest
// record wins a tie.
func PeakIntensity(records []types.RainIntensityRecord) types.RainIntensityRecord {
	var peak types.RainIntensityRecord
	for i, r := range records {
		if i == 0 || r.Level.Severity() > peak.Level.Severity() {
			peak = r
		}
	}
	return peak
}

// TransitionText joins the level labels of records in order.
func TransitionText(records []types.RainIntensityRecord, sep string) string {
	labels := make([]string, len(records))
	for i, r := range records {
		labels[i] = r.Level.String()
	}
	return strings.Join(labels, sep)
}
