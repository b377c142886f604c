// Package storage defines the event store used to persist airfield logs.
package storage

import (
	"context"
	"time"

	"github.com/chrissnell/airfieldwx/internal/types"
	"github.com/chrissnell/airfieldwx/pkg/metar"
)

// EventStore is an append-only log of forecasts, parsed reports, rain
// intensity records and runway state records.
//
// Range queries take calendar dates and are inclusive on both ends; only the
// date portion of each record's timestamp is compared. Results are ordered by
// timestamp, then by insertion order.
type EventStore interface {
	InsertForecast(ctx context.Context, f types.Forecast) error
	QueryForecasts(ctx context.Context, start, end time.Time) ([]types.Forecast, error)

	InsertReport(ctx context.Context, batchID string, r metar.Report) error
	RecentReports(ctx context.Context, limit int) ([]StoredReport, error)

	InsertRain(ctx context.Context, r types.RainIntensityRecord) (int64, error)
	QueryRain(ctx context.Context, start, end time.Time) ([]types.RainIntensityRecord, error)
	RainStatsByDay(ctx context.Context, start, end time.Time) ([]types.DailyCount, error)

	InsertRunwayState(ctx context.Context, r types.RunwayStateRecord) (int64, error)
	QueryRunwayStates(ctx context.Context, start, end time.Time) ([]types.RunwayStateRecord, error)

	Close() error
}

// StoredReport is a parsed report as kept by the store.
type StoredReport struct {
	metar.Report
	BatchID   string    `json:"batch_id" msgpack:"batch_id"`
	CreatedAt time.Time `json:"created_at" msgpack:"created_at"`
}
