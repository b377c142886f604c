package analysis

import (
	"gonum.org/v1/gonum/stat"
)

// EpisodeSummary aggregates a set of wet-runway episodes.
type EpisodeSummary struct {
	Count                 int     `json:"count" msgpack:"count"`
	Closed                int     `json:"closed" msgpack:"closed"`
	Open                  int     `json:"open" msgpack:"open"`
	MeanMinutes           float64 `json:"mean_minutes" msgpack:"mean_minutes"`
	StdDevMinutes         float64 `json:"stddev_minutes" msgpack:"stddev_minutes"`
	LongestMinutes        float64 `json:"longest_minutes" msgpack:"longest_minutes"`
	RainRecordsPerEpisode float64 `json:"rain_records_per_episode" msgpack:"rain_records_per_episode"`
}

// SummarizeEpisodes computes duration statistics over closed episodes. Open
// episodes are counted but excluded from the duration figures since their end
// is not known yet.
func SummarizeEpisodes(episodes []WetRunwayEpisode) EpisodeSummary {
	s := EpisodeSummary{Count: len(episodes)}
	if len(episodes) == 0 {
		return s
	}

	var minutes, rainCounts []float64
	for _, ep := range episodes {
		rainCounts = append(rainCounts, float64(len(ep.Rain)))
		if !ep.Closed {
			s.Open++
			continue
		}
		s.Closed++
		m := ep.Duration().Minutes()
		minutes = append(minutes, m)
		if m > s.LongestMinutes {
			s.LongestMinutes = m
		}
	}

	s.RainRecordsPerEpisode = stat.Mean(rainCounts, nil)

	switch len(minutes) {
	case 0:
	case 1:
		s.MeanMinutes = minutes[0]
	default:
		s.MeanMinutes, s.StdDevMinutes = stat.MeanStdDev(minutes, nil)
	}

	return s
}
