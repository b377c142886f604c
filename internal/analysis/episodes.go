// Package analysis segments manual rain logs into rainfall events and splits
// the combined rain and runway logs into wet-runway episodes.
package analysis

import (
	"time"

	"github.com/chrissnell/airfieldwx/internal/types"
)

// WetRunwayEpisode is a period of runway wetness that starts with rain onset
// and lasts until a dry-class runway observation. It may span several showers.
type WetRunwayEpisode struct {
	Start  time.Time                   `json:"start" msgpack:"start"`
	End    time.Time                   `json:"end" msgpack:"end"`
	Rain   []types.RainIntensityRecord `json:"rain" msgpack:"rain"`
	Runway []types.RunwayStateRecord   `json:"runway" msgpack:"runway"`
	// Closed is false when the input ended before a dry observation was logged.
	Closed bool `json:"closed" msgpack:"closed"`
}

// Duration is the span between the first and last record of the episode.
func (e WetRunwayEpisode) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// episodeBuilder holds the scan state of SplitWetRunwayEpisodes.
type episodeBuilder struct {
	open     bool
	start    time.Time
	end      time.Time
	rain     []types.RainIntensityRecord
	runway   []types.RunwayStateRecord
	episodes []WetRunwayEpisode
}

func (b *episodeBuilder) addRain(r types.RainIntensityRecord) {
	if r.Level.IsStopped() {
		// A stop with no open episode has nothing to attach to.
		if !b.open {
			return
		}
	} else if !b.open {
		b.open = true
		b.rain = nil
		b.runway = nil
		b.start = r.Time
	}
	b.rain = append(b.rain, r)
	b.end = r.Time
}

func (b *episodeBuilder) addRunway(r types.RunwayStateRecord) {
	if !b.open {
		return
	}
	b.runway = append(b.runway, r)
	b.end = r.Time
	if r.State.IsDry() {
		b.emit(true)
	}
}

func (b *episodeBuilder) emit(closed bool) {
	b.episodes = append(b.episodes, WetRunwayEpisode{
		Start:  b.start,
		End:    b.end,
		Rain:   b.rain,
		Runway: b.runway,
		Closed: closed,
	})
	b.open = false
	b.rain = nil
	b.runway = nil
}

// SplitWetRunwayEpisodes merges the rain and runway streams and partitions the
// result into wet-runway episodes. Each input must be sorted by time on its own.
//
// Rain-stopped markers never close an episode; only a dry or recovered-dry
// runway observation does. Runway observations outside an open episode are
// dropped. An episode still open when the input runs out is returned with
// Closed set to false.
func SplitWetRunwayEpisodes(rain []types.RainIntensityRecord, runway []types.RunwayStateRecord) []WetRunwayEpisode {
	var b episodeBuilder

	for _, ev := range MergeTimeline(rain, runway) {
		switch ev.Kind {
		case RainEvent:
			b.addRain(*ev.Rain)
		case RunwayEvent:
			b.addRunway(*ev.Runway)
		}
	}

	if b.open && len(b.rain)+len(b.runway) > 0 {
		b.emit(false)
	}

	return b.episodes
}
