package render

import (
	"fmt"
	"time"

	"github.com/chrissnell/airfieldwx/internal/analysis"
)

// Timeline lanes.
const (
	RunwayLane = 0
	RainLane   = 1
)

// Point is one marker on a chart.
type Point struct {
	Time  time.Time `json:"time" msgpack:"time"`
	Y     float64   `json:"y" msgpack:"y"`
	Label string    `json:"label" msgpack:"label"`
}

// Series is a named sequence of points drawn together.
type Series struct {
	Name   string  `json:"name" msgpack:"name"`
	Points []Point `json:"points" msgpack:"points"`
}

// Chart is renderer-neutral chart data.
type Chart struct {
	Title      string   `json:"title" msgpack:"title"`
	FontFamily string   `json:"font_family" msgpack:"font_family"`
	YLabel     string   `json:"y_label,omitempty" msgpack:"y_label,omitempty"`
	Series     []Series `json:"series" msgpack:"series"`
}

// Timeline places rain records in the rain lane and runway records in the
// runway lane, each labelled with its level or state.
func Timeline(cfg Config, title string, events []analysis.TimelineEvent, fonts []string) Chart {
	rain := Series{Name: "rain", Points: []Point{}}
	runway := Series{Name: "runway", Points: []Point{}}

	for _, e := range events {
		switch e.Kind {
		case analysis.RainEvent:
			rain.Points = append(rain.Points, Point{Time: e.Rain.Time, Y: RainLane, Label: e.Rain.Level.String()})
		case analysis.RunwayEvent:
			runway.Points = append(runway.Points, Point{Time: e.Runway.Time, Y: RunwayLane, Label: e.Runway.State.String()})
		}
	}

	return Chart{
		Title:      title,
		FontFamily: cfg.ResolveFont(fonts),
		Series:     []Series{rain, runway},
	}
}

// EpisodeCharts returns one timeline per episode.
func EpisodeCharts(cfg Config, episodes []analysis.WetRunwayEpisode, fonts []string) []Chart {
	charts := make([]Chart, 0, len(episodes))
	for i, ep := range episodes {
		events := analysis.MergeTimeline(ep.Rain, ep.Runway)
		charts = append(charts, Timeline(cfg, EpisodeHeading(i, ep), events, fonts))
	}
	return charts
}

// IntensitySeries plots rain severity over time for one rainfall event.
func IntensitySeries(name string, ev analysis.RainfallEvent) Series {
	s := Series{Name: name, Points: make([]Point, 0, len(ev.Records))}
	for _, r := range ev.Records {
		s.Points = append(s.Points, Point{Time: r.Time, Y: r.Level.Severity(), Label: r.Level.String()})
	}
	return s
}

// IntensityChart combines the intensity series of every event.
func IntensityChart(cfg Config, events []analysis.RainfallEvent, fonts []string) Chart {
	c := Chart{
		Title:      "Rain intensity",
		FontFamily: cfg.ResolveFont(fonts),
		YLabel:     "severity",
		Series:     make([]Series, 0, len(events)),
	}
	for i, ev := range events {
		c.Series = append(c.Series, IntensitySeries(fmt.Sprintf("#%d %s", i+1, ev.Start.Format("Jan 02 15:04")), ev))
	}
	return c
}
