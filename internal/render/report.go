package render

import (
	"fmt"
	"strings"

	"github.com/chrissnell/airfieldwx/internal/analysis"
	"github.com/chrissnell/airfieldwx/pkg/obstime"
)

// NoEpisodesMessage is shown in place of episode charts when nothing has
// been recorded yet.
const NoEpisodesMessage = "No complete wet-runway episode recorded yet."

// RainEventReport renders the text summary of one rainfall event: its time
// span, approximate length, level transitions and strongest level.
func RainEventReport(cfg Config, ev analysis.RainfallEvent) string {
	var b strings.Builder

	b.WriteString("Rainfall event\n")
	fmt.Fprintf(&b, "- Time: %s to %s (about %d minutes)\n",
		ev.Start.Format(obstime.TimestampLayout), ev.End.Format("15:04"), ev.Duration)
	fmt.Fprintf(&b, "- Process: %s\n", analysis.TransitionText(ev.Records, cfg.separator()))
	fmt.Fprintf(&b, "- Strongest: %s\n", ev.Peak.Level)

	return b.String()
}

// EpisodeHeading names an episode by its start and end times.
func EpisodeHeading(idx int, ep analysis.WetRunwayEpisode) string {
	status := "closed"
	if !ep.Closed {
		status = "open"
	}
	return fmt.Sprintf("Episode %d: %s to %s (%s)",
		idx+1, ep.Start.Format(obstime.TimestampLayout), ep.End.Format(obstime.TimestampLayout), status)
}
