package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/chrissnell/airfieldwx/internal/analysis"
	"github.com/chrissnell/airfieldwx/internal/storage"
	"github.com/chrissnell/airfieldwx/internal/types"
	"github.com/chrissnell/airfieldwx/pkg/obstime"
)

var (
	colorCyan   = lipgloss.Color("#8BE9FD")
	colorGray   = lipgloss.Color("#6272A4")
	colorYellow = lipgloss.Color("#F1FA8C")
	colorRed    = lipgloss.Color("#FF5555")
	colorGreen  = lipgloss.Color("#50FA7B")

	headerStyle = lipgloss.NewStyle().Foreground(colorCyan).Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	dimStyle    = lipgloss.NewStyle().Foreground(colorGray)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func levelStyle(l types.RainLevel) lipgloss.Style {
	switch {
	case l.Severity() >= 3:
		return lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	case l.Severity() >= 1:
		return lipgloss.NewStyle().Foreground(colorYellow)
	default:
		return lipgloss.NewStyle().Foreground(colorGreen)
	}
}

// Title renders a section heading.
func Title(s string) string {
	return titleStyle.Render(s)
}

// Dim renders secondary text such as empty-result notes.
func Dim(s string) string {
	return dimStyle.Render(s)
}

// RainTable renders rain records as a terminal table.
func RainTable(records []types.RainIntensityRecord) string {
	t := newTable("ID", "Time", "Level", "Code", "Note")
	for _, r := range records {
		t.Row(strconv.FormatInt(r.ID, 10), r.Time.Format(obstime.TimestampLayout),
			levelStyle(r.Level).Render(r.Level.String()), r.Code, r.Note)
	}
	return t.String()
}

// RunwayTable renders runway state records as a terminal table.
func RunwayTable(records []types.RunwayStateRecord) string {
	t := newTable("ID", "Time", "State", "Note")
	for _, r := range records {
		t.Row(strconv.FormatInt(r.ID, 10), r.Time.Format(obstime.TimestampLayout), r.State.String(), r.Note)
	}
	return t.String()
}

// ForecastTable renders daily forecasts as a terminal table.
func ForecastTable(forecasts []types.Forecast) string {
	t := newTable("Date", "Wind", "Min °C", "Max °C", "Weather")
	for _, f := range forecasts {
		t.Row(f.Date.Format(obstime.DateLayout), f.Wind,
			strconv.FormatFloat(f.TempMin, 'f', 1, 64), strconv.FormatFloat(f.TempMax, 'f', 1, 64), f.Weather)
	}
	return t.String()
}

// ReportTable renders stored reports with their observation time projected
// into local time.
func ReportTable(cfg Config, reports []storage.StoredReport) string {
	t := newTable("Station", "Obs (Z)", "Local", "Wind", "Vis", "T/Td", "Weather")
	for _, r := range reports {
		obs, local := "", ""
		if r.ObsTime != nil {
			obs = *r.ObsTime
			local = obstime.LocalLabel(obs, cfg.LocalOffsetHours)
		}
		t.Row(deref(r.Station), obs, local, windText(r.WindDirection, r.WindVariable, r.WindSpeed, r.WindGust),
			intText(r.Visibility), tempText(r.Temperature, r.DewPoint), strings.Join(r.Weather, ", "))
	}
	return t.String()
}

// RainEventTable lists rainfall events one per row.
func RainEventTable(cfg Config, events []analysis.RainfallEvent) string {
	t := newTable("#", "Start", "End", "Minutes", "Peak", "Process")
	for i, ev := range events {
		t.Row(strconv.Itoa(i+1), ev.Start.Format(obstime.TimestampLayout), ev.End.Format(obstime.TimestampLayout),
			strconv.Itoa(ev.Duration), levelStyle(ev.Peak.Level).Render(ev.Peak.Level.String()),
			analysis.TransitionText(ev.Records, cfg.separator()))
	}
	return t.String()
}

// EpisodeTable lists wet-runway episodes one per row.
func EpisodeTable(episodes []analysis.WetRunwayEpisode) string {
	t := newTable("#", "Start", "End", "Minutes", "Rain", "Runway", "Status")
	for i, ep := range episodes {
		status := "closed"
		if !ep.Closed {
			status = "open"
		}
		t.Row(strconv.Itoa(i+1), ep.Start.Format(obstime.TimestampLayout), ep.End.Format(obstime.TimestampLayout),
			strconv.Itoa(int(ep.Duration().Minutes())), strconv.Itoa(len(ep.Rain)), strconv.Itoa(len(ep.Runway)), status)
	}
	return t.String()
}

// SummaryText renders episode statistics.
func SummaryText(s analysis.EpisodeSummary) string {
	return fmt.Sprintf("%d episodes (%d closed, %d open); mean %.1f min, std-dev %.1f min, longest %.0f min",
		s.Count, s.Closed, s.Open, s.MeanMinutes, s.StdDevMinutes, s.LongestMinutes)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intText(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func windText(dir *int, variable bool, speed, gust *int) string {
	if speed == nil {
		return ""
	}
	d := "VRB"
	if !variable {
		if dir == nil {
			return ""
		}
		d = fmt.Sprintf("%03d", *dir)
	}
	s := fmt.Sprintf("%s/%dkt", d, *speed)
	if gust != nil {
		s += fmt.Sprintf(" G%d", *gust)
	}
	return s
}

func tempText(t, td *int) string {
	if t == nil || td == nil {
		return ""
	}
	return fmt.Sprintf("%d/%d", *t, *td)
}
