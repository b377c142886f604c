package analysis

import (
	"time"

	"github.com/chrissnell/airfieldwx/internal/types"
)

// EventKind tags a TimelineEvent.
type EventKind int

const (
	RainEvent EventKind = iota
	RunwayEvent
)

// TimelineEvent is one entry of the merged rain/runway timeline. Exactly one of
// Rain or Runway is set, selected by Kind.
type TimelineEvent struct {
	Kind   EventKind
	Rain   *types.RainIntensityRecord
	Runway *types.RunwayStateRecord
}

// Time returns the timestamp of the wrapped record.
func (e TimelineEvent) Time() time.Time {
	if e.Kind == RainEvent {
		return e.Rain.Time
	}
	return e.Runway.Time
}

// MergeTimeline performs a two-way merge of individually sorted rain and runway
// sequences. When a rain record and a runway record carry the same timestamp the
// rain record comes first. Order within each input is preserved.
func MergeTimeline(rain []types.RainIntensityRecord, runway []types.RunwayStateRecord) []TimelineEvent {
	out := make([]TimelineEvent, 0, len(rain)+len(runway))

	i, j := 0, 0
	for i < len(rain) && j < len(runway) {
		// Runway wins only when strictly earlier.
		if runway[j].Time.Before(rain[i].Time) {
			out = append(out, TimelineEvent{Kind: RunwayEvent, Runway: &runway[j]})
			j++
			continue
		}
		out = append(out, TimelineEvent{Kind: RainEvent, Rain: &rain[i]})
		i++
	}
	for ; i < len(rain); i++ {
		out = append(out, TimelineEvent{Kind: RainEvent, Rain: &rain[i]})
	}
	for ; j < len(runway); j++ {
		out = append(out, TimelineEvent{Kind: RunwayEvent, Runway: &runway[j]})
	}

	return out
}
