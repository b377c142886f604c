package restserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chrissnell/airfieldwx/internal/analysis"
	"github.com/chrissnell/airfieldwx/internal/render"
	"github.com/chrissnell/airfieldwx/internal/storage"
	"github.com/chrissnell/airfieldwx/internal/types"
	"github.com/chrissnell/airfieldwx/pkg/metar"
	"github.com/chrissnell/airfieldwx/pkg/obstime"
	"github.com/chrissnell/airfieldwx/pkg/responseformat"
)

const (
	defaultReportLimit = 200
	maxBodyBytes       = 1 << 20
	healthMaxAge       = 2 * time.Minute
)

var errBadRange = errors.New("end date is before start date")

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

func (h *Handlers) respond(w http.ResponseWriter, req *http.Request, status int, data any) {
	if err := h.formatter.WriteResponse(w, req, status, data); err != nil {
		h.controller.logger.Errorf("error writing response: %v", err)
	}
}

func (h *Handlers) rejectInput(w http.ResponseWriter, req *http.Request, kind string, err error) {
	h.controller.metrics.InputRejected.WithLabelValues(kind).Inc()
	h.formatter.WriteError(w, req, http.StatusBadRequest, err.Error())
}

func (h *Handlers) storeFailed(w http.ResponseWriter, req *http.Request, op string, err error) {
	h.controller.metrics.StoreErrors.WithLabelValues(op).Inc()
	h.controller.logger.Errorf("%s: %v", op, err)
	h.formatter.WriteError(w, req, http.StatusInternalServerError, "event store unavailable")
}

// today returns the current calendar date at the airfield.
func (h *Handlers) today() time.Time {
	now := h.controller.clock.Now().In(obstime.Zone(h.controller.render.LocalOffsetHours))
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// dateRange reads the start and end query parameters. Either defaults to
// today.
func (h *Handlers) dateRange(req *http.Request) (time.Time, time.Time, error) {
	start, end := h.today(), h.today()

	q := req.URL.Query()
	if s := q.Get("start"); s != "" {
		d, err := obstime.ParseDate(s)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = d
	}
	if s := q.Get("end"); s != "" {
		d, err := obstime.ParseDate(s)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = d
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %s < %s", errBadRange,
			end.Format(obstime.DateLayout), start.Format(obstime.DateLayout))
	}
	return start, end, nil
}

// fonts reads the comma-separated list of fonts the client has installed.
func fonts(req *http.Request) []string {
	v := req.URL.Query().Get("fonts")
	if v == "" {
		return nil
	}
	var out []string
	for _, f := range strings.Split(v, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func decodeBody(req *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(req.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// CreateRain handles POST /api/rain
func (h *Handlers) CreateRain(w http.ResponseWriter, req *http.Request) {
	var body RainRequest
	if err := decodeBody(req, &body); err != nil {
		h.rejectInput(w, req, "rain", fmt.Errorf("malformed request body: %w", err))
		return
	}

	ts, err := obstime.ParseTimestamp(body.Date, body.Time)
	if err != nil {
		h.rejectInput(w, req, "rain", err)
		return
	}
	level, err := types.ParseRainLevel(body.Level)
	if err != nil {
		h.rejectInput(w, req, "rain", err)
		return
	}

	rec := types.RainIntensityRecord{Time: ts, Level: level, Code: body.Code, Note: body.Note}
	rec.ID, err = h.controller.store.InsertRain(req.Context(), rec)
	if err != nil {
		h.storeFailed(w, req, "insert rain", err)
		return
	}

	h.controller.metrics.RecordsStored.WithLabelValues("rain").Inc()
	h.respond(w, req, http.StatusCreated, rec)
}

// ListRain handles GET /api/rain
func (h *Handlers) ListRain(w http.ResponseWriter, req *http.Request) {
	start, end, err := h.dateRange(req)
	if err != nil {
		h.rejectInput(w, req, "query", err)
		return
	}

	records, err := h.controller.store.QueryRain(req.Context(), start, end)
	if err != nil {
		h.storeFailed(w, req, "query rain", err)
		return
	}
	h.respond(w, req, http.StatusOK, records)
}

// GetRainEvents handles GET /api/rain/events
func (h *Handlers) GetRainEvents(w http.ResponseWriter, req *http.Request) {
	start, end, err := h.dateRange(req)
	if err != nil {
		h.rejectInput(w, req, "query", err)
		return
	}

	records, err := h.controller.store.QueryRain(req.Context(), start, end)
	if err != nil {
		h.storeFailed(w, req, "query rain", err)
		return
	}

	events := analysis.SegmentRainEvents(records)
	h.controller.metrics.RainEvents.Add(float64(len(events)))

	resp := RainEventsResponse{
		Events: make([]RainEventView, 0, len(events)),
		Chart:  render.IntensityChart(h.controller.render, events, fonts(req)),
	}
	for _, ev := range events {
		resp.Events = append(resp.Events, RainEventView{RainfallEvent: ev, Report: render.RainEventReport(h.controller.render, ev)})
	}
	h.respond(w, req, http.StatusOK, resp)
}

// GetRainStats handles GET /api/rain/stats
func (h *Handlers) GetRainStats(w http.ResponseWriter, req *http.Request) {
	start, end, err := h.dateRange(req)
	if err != nil {
		h.rejectInput(w, req, "query", err)
		return
	}

	days, err := h.controller.store.RainStatsByDay(req.Context(), start, end)
	if err != nil {
		h.storeFailed(w, req, "rain stats", err)
		return
	}
	h.respond(w, req, http.StatusOK, RainStatsResponse{Days: days})
}

// CreateRunwayState handles POST /api/runway
func (h *Handlers) CreateRunwayState(w http.ResponseWriter, req *http.Request) {
	var body RunwayRequest
	if err := decodeBody(req, &body); err != nil {
		h.rejectInput(w, req, "runway", fmt.Errorf("malformed request body: %w", err))
		return
	}

	ts, err := obstime.ParseTimestamp(body.Date, body.Time)
	if err != nil {
		h.rejectInput(w, req, "runway", err)
		return
	}
	state, err := types.ParseRunwayState(body.State)
	if err != nil {
		h.rejectInput(w, req, "runway", err)
		return
	}

	rec := types.RunwayStateRecord{Time: ts, State: state, Note: body.Note}
	rec.ID, err = h.controller.store.InsertRunwayState(req.Context(), rec)
	if err != nil {
		h.storeFailed(w, req, "insert runway state", err)
		return
	}

	h.controller.metrics.RecordsStored.WithLabelValues("runway").Inc()
	h.respond(w, req, http.StatusCreated, rec)
}

// ListRunwayStates handles GET /api/runway
func (h *Handlers) ListRunwayStates(w http.ResponseWriter, req *http.Request) {
	start, end, err := h.dateRange(req)
	if err != nil {
		h.rejectInput(w, req, "query", err)
		return
	}

	records, err := h.controller.store.QueryRunwayStates(req.Context(), start, end)
	if err != nil {
		h.storeFailed(w, req, "query runway states", err)
		return
	}
	h.respond(w, req, http.StatusOK, records)
}

// GetWetRunwayEpisodes handles GET /api/runway/episodes
func (h *Handlers) GetWetRunwayEpisodes(w http.ResponseWriter, req *http.Request) {
	start, end, err := h.dateRange(req)
	if err != nil {
		h.rejectInput(w, req, "query", err)
		return
	}

	rain, err := h.controller.store.QueryRain(req.Context(), start, end)
	if err != nil {
		h.storeFailed(w, req, "query rain", err)
		return
	}
	runway, err := h.controller.store.QueryRunwayStates(req.Context(), start, end)
	if err != nil {
		h.storeFailed(w, req, "query runway states", err)
		return
	}

	episodes := analysis.SplitWetRunwayEpisodes(rain, runway)
	summary := analysis.SummarizeEpisodes(episodes)
	h.controller.metrics.WetEpisodes.WithLabelValues("closed").Add(float64(summary.Closed))
	h.controller.metrics.WetEpisodes.WithLabelValues("open").Add(float64(summary.Open))

	resp := EpisodesResponse{
		Episodes: episodes,
		Charts:   render.EpisodeCharts(h.controller.render, episodes, fonts(req)),
		Summary:  summary,
	}
	if len(episodes) == 0 {
		resp.Episodes = []analysis.WetRunwayEpisode{}
		resp.Message = render.NoEpisodesMessage
	}
	h.respond(w, req, http.StatusOK, resp)
}

// GetTimeline handles GET /api/timeline
func (h *Handlers) GetTimeline(w http.ResponseWriter, req *http.Request) {
	start, end, err := h.dateRange(req)
	if err != nil {
		h.rejectInput(w, req, "query", err)
		return
	}

	rain, err := h.controller.store.QueryRain(req.Context(), start, end)
	if err != nil {
		h.storeFailed(w, req, "query rain", err)
		return
	}
	runway, err := h.controller.store.QueryRunwayStates(req.Context(), start, end)
	if err != nil {
		h.storeFailed(w, req, "query runway states", err)
		return
	}

	title := fmt.Sprintf("Rain and runway %s to %s", start.Format(obstime.DateLayout), end.Format(obstime.DateLayout))
	chart := render.Timeline(h.controller.render, title, analysis.MergeTimeline(rain, runway), fonts(req))
	h.respond(w, req, http.StatusOK, chart)
}

// CreateForecast handles POST /api/forecasts
func (h *Handlers) CreateForecast(w http.ResponseWriter, req *http.Request) {
	var body ForecastRequest
	if err := decodeBody(req, &body); err != nil {
		h.rejectInput(w, req, "forecast", fmt.Errorf("malformed request body: %w", err))
		return
	}

	date, err := obstime.ParseDate(body.Date)
	if err != nil {
		h.rejectInput(w, req, "forecast", err)
		return
	}

	f := types.Forecast{Date: date, Wind: body.Wind, TempMin: body.TempMin, TempMax: body.TempMax, Weather: body.Weather}
	if err := h.controller.store.InsertForecast(req.Context(), f); err != nil {
		h.storeFailed(w, req, "insert forecast", err)
		return
	}

	h.controller.metrics.RecordsStored.WithLabelValues("forecast").Inc()
	h.respond(w, req, http.StatusCreated, f)
}

// ListForecasts handles GET /api/forecasts
func (h *Handlers) ListForecasts(w http.ResponseWriter, req *http.Request) {
	start, end, err := h.dateRange(req)
	if err != nil {
		h.rejectInput(w, req, "query", err)
		return
	}

	forecasts, err := h.controller.store.QueryForecasts(req.Context(), start, end)
	if err != nil {
		h.storeFailed(w, req, "query forecasts", err)
		return
	}
	h.respond(w, req, http.StatusOK, forecasts)
}

// IngestReports handles POST /api/metars. The body is a raw block of one or
// more reports, each terminated by "=".
func (h *Handlers) IngestReports(w http.ResponseWriter, req *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(req.Body, maxBodyBytes))
	if err != nil {
		h.rejectInput(w, req, "metar", fmt.Errorf("could not read body: %w", err))
		return
	}

	lines := metar.SplitReports(string(raw))
	if len(lines) == 0 {
		h.rejectInput(w, req, "metar", errors.New("no reports found in body"))
		return
	}

	resp := IngestResponse{
		BatchID: uuid.NewString(),
		Reports: make([]ReportView, 0, len(lines)),
	}
	for _, line := range lines {
		report := metar.Parse(line)
		if err := h.controller.store.InsertReport(req.Context(), resp.BatchID, report); err != nil {
			h.storeFailed(w, req, "insert report", err)
			return
		}
		h.controller.metrics.RecordsStored.WithLabelValues("metar").Inc()
		stored := storage.StoredReport{Report: report, BatchID: resp.BatchID, CreatedAt: h.controller.clock.Now().UTC()}
		resp.Reports = append(resp.Reports, h.reportView(stored))
	}
	resp.Count = len(resp.Reports)

	h.respond(w, req, http.StatusCreated, resp)
}

// ListReports handles GET /api/metars
func (h *Handlers) ListReports(w http.ResponseWriter, req *http.Request) {
	limit := defaultReportLimit
	if v := req.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			h.rejectInput(w, req, "query", fmt.Errorf("invalid limit %q", v))
			return
		}
		limit = n
	}

	reports, err := h.controller.store.RecentReports(req.Context(), limit)
	if err != nil {
		h.storeFailed(w, req, "recent reports", err)
		return
	}

	views := make([]ReportView, 0, len(reports))
	for _, r := range reports {
		views = append(views, h.reportView(r))
	}
	h.respond(w, req, http.StatusOK, views)
}

func (h *Handlers) reportView(r storage.StoredReport) ReportView {
	v := ReportView{StoredReport: r}
	if r.ObsTime != nil {
		v.LocalTime = obstime.LocalLabel(*r.ObsTime, h.controller.render.LocalOffsetHours)
	}
	return v
}

// GetHealth handles GET /healthz. A fresh check is run when the monitor has
// no recent result.
func (h *Handlers) GetHealth(w http.ResponseWriter, req *http.Request) {
	c := h.controller

	health, ok := c.health.GetHealth(c.backend)
	if !ok || !c.health.IsHealthy(c.backend, healthMaxAge) {
		if checker, isChecker := c.store.(storage.HealthChecker); isChecker {
			health = storage.CheckOnce(req.Context(), c.health, c.backend, checker)
		} else if !ok {
			health = storage.CreateHealthData(c.clock, storage.StatusHealthy, "no health check available", nil)
		}
	}

	status := http.StatusOK
	if health.Status != storage.StatusHealthy {
		status = http.StatusServiceUnavailable
	}
	h.respond(w, req, status, HealthResponse{Backend: c.backend, Health: health})
}
