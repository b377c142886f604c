package restserver

import (
	"github.com/chrissnell/airfieldwx/internal/analysis"
	"github.com/chrissnell/airfieldwx/internal/render"
	"github.com/chrissnell/airfieldwx/internal/storage"
	"github.com/chrissnell/airfieldwx/internal/types"
)

// RainRequest is the body of POST /api/rain. Time is a separator-free clock
// such as "1130".
type RainRequest struct {
	Date  string `json:"date"`
	Time  string `json:"time"`
	Level string `json:"level"`
	Code  string `json:"code,omitempty"`
	Note  string `json:"note,omitempty"`
}

// RunwayRequest is the body of POST /api/runway.
type RunwayRequest struct {
	Date  string `json:"date"`
	Time  string `json:"time"`
	State string `json:"state"`
	Note  string `json:"note,omitempty"`
}

// ForecastRequest is the body of POST /api/forecasts.
type ForecastRequest struct {
	Date    string  `json:"date"`
	Wind    string  `json:"wind,omitempty"`
	TempMin float64 `json:"temp_min"`
	TempMax float64 `json:"temp_max"`
	Weather string  `json:"weather,omitempty"`
}

// IngestResponse answers a pasted block of reports.
type IngestResponse struct {
	BatchID string       `json:"batch_id" msgpack:"batch_id"`
	Count   int          `json:"count" msgpack:"count"`
	Reports []ReportView `json:"reports" msgpack:"reports"`
}

// ReportView is a stored report with its observation time in local time.
type ReportView struct {
	storage.StoredReport
	LocalTime string `json:"local_time,omitempty" msgpack:"local_time,omitempty"`
}

// RainEventView pairs a rainfall event with its text report.
type RainEventView struct {
	analysis.RainfallEvent
	Report string `json:"report" msgpack:"report"`
}

// RainEventsResponse answers GET /api/rain/events.
type RainEventsResponse struct {
	Events []RainEventView `json:"events" msgpack:"events"`
	Chart  render.Chart    `json:"chart" msgpack:"chart"`
}

// EpisodesResponse answers GET /api/runway/episodes. Message is set when
// there are no episodes.
type EpisodesResponse struct {
	Episodes []analysis.WetRunwayEpisode `json:"episodes" msgpack:"episodes"`
	Charts   []render.Chart              `json:"charts" msgpack:"charts"`
	Summary  analysis.EpisodeSummary     `json:"summary" msgpack:"summary"`
	Message  string                      `json:"message,omitempty" msgpack:"message,omitempty"`
}

// RainStatsResponse answers GET /api/rain/stats.
type RainStatsResponse struct {
	Days []types.DailyCount `json:"days" msgpack:"days"`
}

// HealthResponse answers GET /healthz.
type HealthResponse struct {
	Backend string             `json:"backend" msgpack:"backend"`
	Health  storage.HealthData `json:"health" msgpack:"health"`
}
