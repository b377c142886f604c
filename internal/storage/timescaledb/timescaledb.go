// Package timescaledb implements the event store on PostgreSQL/TimescaleDB
// through GORM.
package timescaledb

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgtype"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/chrissnell/airfieldwx/internal/database"
	"github.com/chrissnell/airfieldwx/internal/storage"
	"github.com/chrissnell/airfieldwx/internal/types"
	"github.com/chrissnell/airfieldwx/pkg/metar"
	"github.com/chrissnell/airfieldwx/pkg/obstime"
)

// Storage is a GORM-backed storage.EventStore.
type Storage struct {
	TimescaleDBConn *gorm.DB
	clock           clockwork.Clock
	logger          *zap.SugaredLogger
}

var _ storage.EventStore = (*Storage)(nil)

// New connects to the database and migrates the event tables.
func New(ctx context.Context, connectionString string, clock clockwork.Clock, logger *zap.SugaredLogger) (*Storage, error) {
	db, err := database.CreateConnection(connectionString)
	if err != nil {
		return nil, err
	}

	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	t := &Storage{
		TimescaleDBConn: db,
		clock:           clock,
		logger:          logger,
	}

	logger.Info("migrating event tables...")
	if err := db.WithContext(ctx).AutoMigrate(&ForecastRow{}, &MetarRow{}, &RainRow{}, &RunwayRow{}); err != nil {
		return nil, fmt.Errorf("could not migrate event tables: %w", err)
	}

	return t, nil
}

// Close releases the connection pool.
func (t *Storage) Close() error {
	sqlDB, err := t.TimescaleDBConn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dateArgs(start, end time.Time) (string, string) {
	return start.Format(obstime.DateLayout), end.Format(obstime.DateLayout)
}

// InsertForecast stores a daily forecast.
func (t *Storage) InsertForecast(ctx context.Context, f types.Forecast) error {
	row := ForecastRow{
		Date:      f.Date,
		Wind:      f.Wind,
		TempMin:   f.TempMin,
		TempMax:   f.TempMax,
		Weather:   f.Weather,
		CreatedAt: t.clock.Now().UTC(),
	}
	if err := t.TimescaleDBConn.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("could not store forecast: %w", err)
	}
	return nil
}

// QueryForecasts returns the forecasts dated within [start, end].
func (t *Storage) QueryForecasts(ctx context.Context, start, end time.Time) ([]types.Forecast, error) {
	var rows []ForecastRow
	from, to := dateArgs(start, end)

	err := t.TimescaleDBConn.WithContext(ctx).
		Where("date BETWEEN ? AND ?", from, to).
		Order("date, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("error querying forecasts: %w", err)
	}

	forecasts := make([]types.Forecast, len(rows))
	for i, r := range rows {
		forecasts[i] = types.Forecast{Date: r.Date, Wind: r.Wind, TempMin: r.TempMin, TempMax: r.TempMax, Weather: r.Weather}
	}
	return forecasts, nil
}

// InsertReport stores one parsed report under batchID.
func (t *Storage) InsertReport(ctx context.Context, batchID string, r metar.Report) error {
	row, err := metarRowFromReport(batchID, r, t.clock.Now().UTC())
	if err != nil {
		return err
	}
	if err := t.TimescaleDBConn.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("could not store report: %w", err)
	}
	return nil
}

// RecentReports returns up to limit reports, newest first.
func (t *Storage) RecentReports(ctx context.Context, limit int) ([]storage.StoredReport, error) {
	var rows []MetarRow
	err := t.TimescaleDBConn.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("error querying reports: %w", err)
	}

	reports := make([]storage.StoredReport, 0, len(rows))
	for _, row := range rows {
		sr, err := row.toStoredReport()
		if err != nil {
			return nil, err
		}
		reports = append(reports, sr)
	}
	return reports, nil
}

// InsertRain stores a rain intensity record and returns its row id.
func (t *Storage) InsertRain(ctx context.Context, r types.RainIntensityRecord) (int64, error) {
	row := RainRow{
		EventTime: r.Time.UTC(),
		RainLevel: r.Level.String(),
		RainCode:  r.Code,
		Note:      r.Note,
		CreatedAt: t.clock.Now().UTC(),
	}
	if err := t.TimescaleDBConn.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, fmt.Errorf("could not store rain record: %w", err)
	}
	return row.ID, nil
}

// QueryRain returns rain records dated within [start, end].
func (t *Storage) QueryRain(ctx context.Context, start, end time.Time) ([]types.RainIntensityRecord, error) {
	var rows []RainRow
	from, to := dateArgs(start, end)

	err := t.TimescaleDBConn.WithContext(ctx).
		Where("event_time::date BETWEEN ? AND ?", from, to).
		Order("event_time, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("error querying rain records: %w", err)
	}

	records := make([]types.RainIntensityRecord, 0, len(rows))
	for _, row := range rows {
		r, err := row.toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

// RainStatsByDay counts rain records per date within [start, end].
func (t *Storage) RainStatsByDay(ctx context.Context, start, end time.Time) ([]types.DailyCount, error) {
	counts := []types.DailyCount{}
	from, to := dateArgs(start, end)

	if err := t.TimescaleDBConn.WithContext(ctx).Raw(rainStatsSQL, from, to).Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("error querying rain stats: %w", err)
	}
	return counts, nil
}

// InsertRunwayState stores a runway state record and returns its row id.
func (t *Storage) InsertRunwayState(ctx context.Context, r types.RunwayStateRecord) (int64, error) {
	row := RunwayRow{
		EventTime: r.Time.UTC(),
		State:     r.State.String(),
		Note:      r.Note,
		CreatedAt: t.clock.Now().UTC(),
	}
	if err := t.TimescaleDBConn.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, fmt.Errorf("could not store runway state: %w", err)
	}
	return row.ID, nil
}

// QueryRunwayStates returns runway records dated within [start, end].
func (t *Storage) QueryRunwayStates(ctx context.Context, start, end time.Time) ([]types.RunwayStateRecord, error) {
	var rows []RunwayRow
	from, to := dateArgs(start, end)

	err := t.TimescaleDBConn.WithContext(ctx).
		Where("event_time::date BETWEEN ? AND ?", from, to).
		Order("event_time, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("error querying runway states: %w", err)
	}

	records := make([]types.RunwayStateRecord, 0, len(rows))
	for _, row := range rows {
		r, err := row.toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

func (row RainRow) toRecord() (types.RainIntensityRecord, error) {
	level, err := types.ParseRainLevel(row.RainLevel)
	if err != nil {
		return types.RainIntensityRecord{}, fmt.Errorf("rain row %d: %w", row.ID, err)
	}
	return types.RainIntensityRecord{
		ID:    row.ID,
		Time:  row.EventTime.UTC(),
		Level: level,
		Code:  row.RainCode,
		Note:  row.Note,
	}, nil
}

func (row RunwayRow) toRecord() (types.RunwayStateRecord, error) {
	state, err := types.ParseRunwayState(row.State)
	if err != nil {
		return types.RunwayStateRecord{}, fmt.Errorf("runway row %d: %w", row.ID, err)
	}
	return types.RunwayStateRecord{
		ID:    row.ID,
		Time:  row.EventTime.UTC(),
		State: state,
		Note:  row.Note,
	}, nil
}

func metarRowFromReport(batchID string, r metar.Report, createdAt time.Time) (MetarRow, error) {
	row := MetarRow{
		BatchID:      batchID,
		ObsTime:      r.ObsTime,
		Station:      r.Station,
		Raw:          r.Raw,
		WindDir:      r.WindDirection,
		WindVariable: r.WindVariable,
		WindSpeed:    r.WindSpeed,
		WindGust:     r.WindGust,
		Visibility:   r.Visibility,
		Temp:         r.Temperature,
		DewPoint:     r.DewPoint,
		Weather:      r.Weather,
		RainFlag:     r.IsRaining,
		CreatedAt:    createdAt,
	}
	if r.RainLevel != nil {
		level := r.RainLevel.String()
		row.RainLevel = &level
	}

	clouds := r.Clouds
	if clouds == nil {
		clouds = []metar.CloudLayer{}
	}
	if err := row.Clouds.Set(clouds); err != nil {
		return MetarRow{}, fmt.Errorf("could not encode cloud layers: %w", err)
	}
	return row, nil
}

func (row MetarRow) toStoredReport() (storage.StoredReport, error) {
	sr := storage.StoredReport{
		Report: metar.Report{
			Raw:           row.Raw,
			Station:       row.Station,
			ObsTime:       row.ObsTime,
			WindDirection: row.WindDir,
			WindVariable:  row.WindVariable,
			WindSpeed:     row.WindSpeed,
			WindGust:      row.WindGust,
			Visibility:    row.Visibility,
			Temperature:   row.Temp,
			DewPoint:      row.DewPoint,
			Clouds:        []metar.CloudLayer{},
			IsRaining:     row.RainFlag,
			Weather:       []string(row.Weather),
		},
		BatchID:   row.BatchID,
		CreatedAt: row.CreatedAt.UTC(),
	}
	if sr.Weather == nil {
		sr.Weather = []string{}
	}

	if row.Clouds.Status == pgtype.Present {
		if err := row.Clouds.AssignTo(&sr.Clouds); err != nil {
			return storage.StoredReport{}, fmt.Errorf("report %d: bad cloud layers: %w", row.ID, err)
		}
	}

	if row.RainLevel != nil {
		level, err := types.ParseRainLevel(*row.RainLevel)
		if err != nil {
			return storage.StoredReport{}, fmt.Errorf("report %d: %w", row.ID, err)
		}
		sr.RainLevel = &level
	}
	return sr, nil
}
