// wxlog is the operator command line for logging rain, runway, forecast and
// report entries and for querying rainfall events and wet-runway episodes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/chrissnell/airfieldwx/internal/analysis"
	"github.com/chrissnell/airfieldwx/internal/log"
	"github.com/chrissnell/airfieldwx/internal/managers"
	"github.com/chrissnell/airfieldwx/internal/render"
	"github.com/chrissnell/airfieldwx/internal/storage"
	"github.com/chrissnell/airfieldwx/internal/types"
	"github.com/chrissnell/airfieldwx/pkg/config"
	"github.com/chrissnell/airfieldwx/pkg/metar"
	"github.com/chrissnell/airfieldwx/pkg/obstime"
)

const (
	exitOK         = 0
	exitFailure    = 1
	exitInputError = 2
)

const usage = `usage: wxlog [-config file] [-debug] <command> <action> [flags]

commands:
  rain     add | list | events | stats
  runway   add | list | episodes
  forecast add | list
  metar    ingest | recent
`

var errUsage = errors.New("invalid usage")

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr, clockwork.NewRealClock()))
}

// session carries what every command needs.
type session struct {
	store  storage.EventStore
	render render.Config
	clock  clockwork.Clock
	logger *zap.SugaredLogger
	in     io.Reader
	out    io.Writer
}

func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer, clock clockwork.Clock) int {
	fs := flag.NewFlagSet("wxlog", flag.ContinueOnError)
	fs.SetOutput(errOut)
	cfgFile := fs.String("config", "", "Path to the YAML configuration file; defaults apply when empty")
	debug := fs.Bool("debug", false, "Turn on debugging output")
	fs.Usage = func() { fmt.Fprint(errOut, usage) }
	if err := fs.Parse(args); err != nil {
		return exitInputError
	}

	rest := fs.Args()
	if len(rest) < 2 {
		fs.Usage()
		return exitInputError
	}

	cfg, err := config.NewYAMLProvider(*cfgFile).LoadConfig()
	if err != nil {
		fmt.Fprintf(errOut, "error loading configuration: %v\n", err)
		return exitFailure
	}

	if err := log.Init(*debug); err != nil {
		fmt.Fprintf(errOut, "failed to initialize logger: %v\n", err)
		return exitFailure
	}
	defer log.Sync()
	logger := log.Named("wxlog")

	sm, err := managers.NewStorageManager(ctx, &cfg.Storage, clock, logger)
	if err != nil {
		fmt.Fprintf(errOut, "error opening event store: %v\n", err)
		return exitFailure
	}
	defer sm.Close()

	s := &session{
		store:  sm.Store,
		render: render.FromConfigData(cfg),
		clock:  clock,
		logger: logger,
		in:     in,
		out:    out,
	}

	err = s.dispatch(ctx, rest[0], rest[1], rest[2:])
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, flag.ErrHelp):
		return exitOK
	case isInputError(err):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitInputError
	default:
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitFailure
	}
}

// isInputError reports whether err comes from malformed operator input.
func isInputError(err error) bool {
	return errors.Is(err, obstime.ErrInvalidClock) ||
		errors.Is(err, obstime.ErrInvalidDate) ||
		errors.Is(err, types.ErrUnknownRainLevel) ||
		errors.Is(err, types.ErrUnknownRunwayState) ||
		errors.Is(err, errUsage)
}

func (s *session) dispatch(ctx context.Context, command, action string, args []string) error {
	type handler func(context.Context, []string) error

	commands := map[string]map[string]handler{
		"rain": {
			"add":    s.addRain,
			"list":   s.listRain,
			"events": s.rainEvents,
			"stats":  s.rainStats,
		},
		"runway": {
			"add":      s.addRunway,
			"list":     s.listRunway,
			"episodes": s.episodes,
		},
		"forecast": {
			"add":  s.addForecast,
			"list": s.listForecasts,
		},
		"metar": {
			"ingest": s.ingestReports,
			"recent": s.recentReports,
		},
	}

	actions, ok := commands[command]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
	h, ok := actions[action]
	if !ok {
		return fmt.Errorf("%w: unknown action %q for %s", errUsage, action, command)
	}
	return h(ctx, args)
}

func (s *session) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(s.out)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return nil
}

// today is the current calendar date at the airfield.
func (s *session) today() string {
	return s.clock.Now().In(obstime.Zone(s.render.LocalOffsetHours)).Format(obstime.DateLayout)
}

func (s *session) rangeFlags(fs *flag.FlagSet) (*string, *string) {
	start := fs.String("start", s.today(), "First date (YYYY-MM-DD)")
	end := fs.String("end", s.today(), "Last date (YYYY-MM-DD)")
	return start, end
}

func parseRange(start, end string) (time.Time, time.Time, error) {
	from, err := obstime.ParseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := obstime.ParseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end date %s is before start date %s", errUsage, end, start)
	}
	return from, to, nil
}

func (s *session) addRain(ctx context.Context, args []string) error {
	fs := s.newFlagSet("rain add")
	date := fs.String("date", s.today(), "Date (YYYY-MM-DD)")
	clock := fs.String("time", "", "Time as digits, e.g. 1130, 930, 45")
	level := fs.String("level", "", "Rain level: "+strings.Join(rainLabels(), ", "))
	code := fs.String("code", "", "Optional weather code, e.g. -RA")
	note := fs.String("note", "", "Optional note")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	ts, err := obstime.ParseTimestamp(*date, *clock)
	if err != nil {
		return err
	}
	l, err := types.ParseRainLevel(*level)
	if err != nil {
		return err
	}

	rec := types.RainIntensityRecord{Time: ts, Level: l, Code: *code, Note: *note}
	if rec.ID, err = s.store.InsertRain(ctx, rec); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "logged rain %s at %s (id %d)\n", l, ts.Format(obstime.TimestampLayout), rec.ID)
	return nil
}

func (s *session) listRain(ctx context.Context, args []string) error {
	fs := s.newFlagSet("rain list")
	start, end := s.rangeFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	from, to, err := parseRange(*start, *end)
	if err != nil {
		return err
	}

	records, err := s.store.QueryRain(ctx, from, to)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(s.out, render.Dim("no rain records"))
		return nil
	}
	fmt.Fprintln(s.out, render.RainTable(records))
	return nil
}

func (s *session) rainEvents(ctx context.Context, args []string) error {
	fs := s.newFlagSet("rain events")
	start, end := s.rangeFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	from, to, err := parseRange(*start, *end)
	if err != nil {
		return err
	}

	records, err := s.store.QueryRain(ctx, from, to)
	if err != nil {
		return err
	}
	events := analysis.SegmentRainEvents(records)
	if len(events) == 0 {
		fmt.Fprintln(s.out, render.Dim("no rainfall events"))
		return nil
	}

	fmt.Fprintln(s.out, render.RainEventTable(s.render, events))
	for _, ev := range events {
		fmt.Fprintln(s.out, render.RainEventReport(s.render, ev))
	}
	return nil
}

func (s *session) rainStats(ctx context.Context, args []string) error {
	fs := s.newFlagSet("rain stats")
	start, end := s.rangeFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	from, to, err := parseRange(*start, *end)
	if err != nil {
		return err
	}

	days, err := s.store.RainStatsByDay(ctx, from, to)
	if err != nil {
		return err
	}
	for _, d := range days {
		fmt.Fprintf(s.out, "%s\t%d\n", d.Date, d.Count)
	}
	return nil
}

func (s *session) addRunway(ctx context.Context, args []string) error {
	fs := s.newFlagSet("runway add")
	date := fs.String("date", s.today(), "Date (YYYY-MM-DD)")
	clock := fs.String("time", "", "Time as digits, e.g. 1130, 930, 45")
	state := fs.String("state", "", "Runway state: "+strings.Join(runwayLabels(), ", "))
	note := fs.String("note", "", "Optional note")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	ts, err := obstime.ParseTimestamp(*date, *clock)
	if err != nil {
		return err
	}
	st, err := types.ParseRunwayState(*state)
	if err != nil {
		return err
	}

	rec := types.RunwayStateRecord{Time: ts, State: st, Note: *note}
	if rec.ID, err = s.store.InsertRunwayState(ctx, rec); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "logged runway %s at %s (id %d)\n", st, ts.Format(obstime.TimestampLayout), rec.ID)
	return nil
}

func (s *session) listRunway(ctx context.Context, args []string) error {
	fs := s.newFlagSet("runway list")
	start, end := s.rangeFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	from, to, err := parseRange(*start, *end)
	if err != nil {
		return err
	}

	records, err := s.store.QueryRunwayStates(ctx, from, to)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(s.out, render.Dim("no runway records"))
		return nil
	}
	fmt.Fprintln(s.out, render.RunwayTable(records))
	return nil
}

func (s *session) episodes(ctx context.Context, args []string) error {
	fs := s.newFlagSet("runway episodes")
	start, end := s.rangeFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	from, to, err := parseRange(*start, *end)
	if err != nil {
		return err
	}

	rain, err := s.store.QueryRain(ctx, from, to)
	if err != nil {
		return err
	}
	runway, err := s.store.QueryRunwayStates(ctx, from, to)
	if err != nil {
		return err
	}

	episodes := analysis.SplitWetRunwayEpisodes(rain, runway)
	if len(episodes) == 0 {
		fmt.Fprintln(s.out, render.NoEpisodesMessage)
		return nil
	}

	fmt.Fprintln(s.out, render.EpisodeTable(episodes))
	fmt.Fprintln(s.out, render.SummaryText(analysis.SummarizeEpisodes(episodes)))
	for i, ep := range episodes {
		fmt.Fprintln(s.out, render.Title(render.EpisodeHeading(i, ep)))
		if len(ep.Rain) > 0 {
			fmt.Fprintln(s.out, render.RainTable(ep.Rain))
		}
		if len(ep.Runway) > 0 {
			fmt.Fprintln(s.out, render.RunwayTable(ep.Runway))
		}
	}
	return nil
}

func (s *session) addForecast(ctx context.Context, args []string) error {
	fs := s.newFlagSet("forecast add")
	date := fs.String("date", s.today(), "Date (YYYY-MM-DD)")
	wind := fs.String("wind", "", "Wind, e.g. SE 3-4")
	tmin := fs.Float64("min", 0, "Minimum temperature °C")
	tmax := fs.Float64("max", 0, "Maximum temperature °C")
	weather := fs.String("weather", "", "Weather description")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	d, err := obstime.ParseDate(*date)
	if err != nil {
		return err
	}

	f := types.Forecast{Date: d, Wind: *wind, TempMin: *tmin, TempMax: *tmax, Weather: *weather}
	if err := s.store.InsertForecast(ctx, f); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "logged forecast for %s\n", d.Format(obstime.DateLayout))
	return nil
}

func (s *session) listForecasts(ctx context.Context, args []string) error {
	fs := s.newFlagSet("forecast list")
	start, end := s.rangeFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	from, to, err := parseRange(*start, *end)
	if err != nil {
		return err
	}

	forecasts, err := s.store.QueryForecasts(ctx, from, to)
	if err != nil {
		return err
	}
	if len(forecasts) == 0 {
		fmt.Fprintln(s.out, render.Dim("no forecasts"))
		return nil
	}
	fmt.Fprintln(s.out, render.ForecastTable(forecasts))
	return nil
}

func (s *session) ingestReports(ctx context.Context, args []string) error {
	fs := s.newFlagSet("metar ingest")
	file := fs.String("file", "", "Read reports from this file instead of stdin")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	var raw []byte
	var err error
	if *file != "" {
		raw, err = os.ReadFile(*file)
	} else {
		raw, err = io.ReadAll(s.in)
	}
	if err != nil {
		return fmt.Errorf("could not read reports: %w", err)
	}

	lines := metar.SplitReports(string(raw))
	if len(lines) == 0 {
		return fmt.Errorf("%w: no reports found in input", errUsage)
	}

	batchID := uuid.NewString()
	stored := make([]storage.StoredReport, 0, len(lines))
	for _, line := range lines {
		report := metar.Parse(line)
		if err := s.store.InsertReport(ctx, batchID, report); err != nil {
			return err
		}
		stored = append(stored, storage.StoredReport{Report: report, BatchID: batchID})
	}

	s.logger.Debugf("stored %d reports in batch %s", len(stored), batchID)
	fmt.Fprintf(s.out, "stored %d reports (batch %s)\n", len(stored), batchID)
	fmt.Fprintln(s.out, render.ReportTable(s.render, stored))
	return nil
}

func (s *session) recentReports(ctx context.Context, args []string) error {
	fs := s.newFlagSet("metar recent")
	limit := fs.Int("limit", 200, "Number of reports to show")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *limit <= 0 {
		return fmt.Errorf("%w: limit must be positive", errUsage)
	}

	reports, err := s.store.RecentReports(ctx, *limit)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		fmt.Fprintln(s.out, render.Dim("no reports"))
		return nil
	}
	fmt.Fprintln(s.out, render.ReportTable(s.render, reports))
	return nil
}

func rainLabels() []string {
	var out []string
	for _, l := range types.RainLevels() {
		out = append(out, l.String())
	}
	return out
}

func runwayLabels() []string {
	var out []string
	for _, s := range types.RunwayStates() {
		out = append(out, s.String())
	}
	return out
}
