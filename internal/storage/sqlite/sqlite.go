// Package sqlite implements the event store on a local SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"io/fs"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/chrissnell/airfieldwx/internal/storage"
	"github.com/chrissnell/airfieldwx/internal/types"
	"github.com/chrissnell/airfieldwx/pkg/metar"
	"github.com/chrissnell/airfieldwx/pkg/migrate"
	"github.com/chrissnell/airfieldwx/pkg/obstime"
)

const createdAtLayout = "2006-01-02 15:04:05"

//go:embed migrations/*.sql
var migrations embed.FS

func schemaFS() fs.FS {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Store is a SQLite-backed storage.EventStore. Every operation checks out its
// own connection from the pool and returns it before the call completes.
type Store struct {
	db     *sql.DB
	dbPath string
	clock  clockwork.Clock
	logger *zap.SugaredLogger
}

var _ storage.EventStore = (*Store)(nil)

// New opens (creating if needed) the database at dbPath and ensures the schema.
func New(ctx context.Context, dbPath string, clock clockwork.Clock, logger *zap.SugaredLogger) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	s := &Store{
		db:     db,
		dbPath: dbPath,
		clock:  clock,
		logger: logger,
	}

	applied, err := migrate.NewMigrator(db, migrate.NewFSProvider(schemaFS(), "", migrate.SQLite)).Up(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	if applied > 0 {
		logger.Infof("applied %d schema migrations to %s", applied, dbPath)
	}

	logger.Infof("SQLite event store ready at %s", dbPath)
	return s, nil
}

// withConn runs fn on a dedicated connection and always releases it.
func (s *Store) withConn(ctx context.Context, fn func(conn *sql.Conn) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire SQLite connection: %w", err)
	}
	defer conn.Close()

	return fn(conn)
}

func (s *Store) now() string {
	return s.clock.Now().UTC().Format(createdAtLayout)
}

// CheckHealth verifies a connection can be acquired and pinged.
func (s *Store) CheckHealth(ctx context.Context) error {
	return s.withConn(ctx, func(conn *sql.Conn) error {
		return conn.PingContext(ctx)
	})
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func dateArgs(start, end time.Time) (string, string) {
	return start.Format(obstime.DateLayout), end.Format(obstime.DateLayout)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

// InsertForecast stores a daily forecast.
func (s *Store) InsertForecast(ctx context.Context, f types.Forecast) error {
	return s.withConn(ctx, func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx, insertForecastSQL,
			f.Date.Format(obstime.DateLayout), nullString(f.Wind), f.TempMin, f.TempMax, nullString(f.Weather), s.now())
		if err != nil {
			return fmt.Errorf("failed to insert forecast: %w", err)
		}
		return nil
	})
}

// QueryForecasts returns the forecasts dated within [start, end].
func (s *Store) QueryForecasts(ctx context.Context, start, end time.Time) ([]types.Forecast, error) {
	forecasts := []types.Forecast{}
	from, to := dateArgs(start, end)

	err := s.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, queryForecastsSQL, from, to)
		if err != nil {
			return fmt.Errorf("failed to query forecasts: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var date string
			var wind, weather sql.NullString
			var f types.Forecast
			if err := rows.Scan(&date, &wind, &f.TempMin, &f.TempMax, &weather); err != nil {
				return fmt.Errorf("failed to scan forecast row: %w", err)
			}
			if f.Date, err = time.Parse(obstime.DateLayout, date); err != nil {
				return fmt.Errorf("bad forecast date %q: %w", date, err)
			}
			f.Wind = wind.String
			f.Weather = weather.String
			forecasts = append(forecasts, f)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return forecasts, nil
}

// InsertReport stores one parsed report under batchID.
func (s *Store) InsertReport(ctx context.Context, batchID string, r metar.Report) error {
	weather, err := json.Marshal(r.Weather)
	if err != nil {
		return fmt.Errorf("failed to encode weather phenomena: %w", err)
	}
	clouds, err := json.Marshal(r.Clouds)
	if err != nil {
		return fmt.Errorf("failed to encode cloud layers: %w", err)
	}

	var rainLevel sql.NullString
	if r.RainLevel != nil {
		rainLevel = nullString(r.RainLevel.String())
	}

	var obsTime, station sql.NullString
	if r.ObsTime != nil {
		obsTime = nullString(*r.ObsTime)
	}
	if r.Station != nil {
		station = nullString(*r.Station)
	}

	return s.withConn(ctx, func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx, insertMetarSQL,
			batchID, obsTime, station, r.Raw,
			nullInt(r.WindDirection), r.WindVariable, nullInt(r.WindSpeed), nullInt(r.WindGust),
			nullInt(r.Visibility), nullInt(r.Temperature), nullInt(r.DewPoint),
			string(weather), r.IsRaining, rainLevel, string(clouds), s.now())
		if err != nil {
			return fmt.Errorf("failed to insert report: %w", err)
		}
		return nil
	})
}

// RecentReports returns up to limit reports, newest first.
func (s *Store) RecentReports(ctx context.Context, limit int) ([]storage.StoredReport, error) {
	reports := []storage.StoredReport{}

	err := s.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, recentMetarsSQL, limit)
		if err != nil {
			return fmt.Errorf("failed to query reports: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var sr storage.StoredReport
			var obsTime, station, rainLevel sql.NullString
			var windDir, windSpeed, windGust, vis, temp, dew sql.NullInt64
			var weather, clouds, createdAt string

			err := rows.Scan(
				&sr.BatchID, &obsTime, &station, &sr.Raw,
				&windDir, &sr.WindVariable, &windSpeed, &windGust,
				&vis, &temp, &dew,
				&weather, &sr.IsRaining, &rainLevel, &clouds, &createdAt,
			)
			if err != nil {
				return fmt.Errorf("failed to scan report row: %w", err)
			}

			sr.ObsTime = stringPtr(obsTime)
			sr.Station = stringPtr(station)
			sr.WindDirection = intPtr(windDir)
			sr.WindSpeed = intPtr(windSpeed)
			sr.WindGust = intPtr(windGust)
			sr.Visibility = intPtr(vis)
			sr.Temperature = intPtr(temp)
			sr.DewPoint = intPtr(dew)

			if err := json.Unmarshal([]byte(weather), &sr.Weather); err != nil {
				return fmt.Errorf("bad weather column: %w", err)
			}
			if err := json.Unmarshal([]byte(clouds), &sr.Clouds); err != nil {
				return fmt.Errorf("bad clouds column: %w", err)
			}
			if rainLevel.Valid {
				level, err := types.ParseRainLevel(rainLevel.String)
				if err != nil {
					return err
				}
				sr.RainLevel = &level
			}
			if sr.CreatedAt, err = time.Parse(createdAtLayout, createdAt); err != nil {
				return fmt.Errorf("bad created_at %q: %w", createdAt, err)
			}

			reports = append(reports, sr)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// InsertRain stores a rain intensity record and returns its row id.
func (s *Store) InsertRain(ctx context.Context, r types.RainIntensityRecord) (int64, error) {
	var id int64
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, insertRainSQL,
			r.Time.Format(obstime.TimestampLayout), r.Level.String(), nullString(r.Code), nullString(r.Note), s.now())
		if err != nil {
			return fmt.Errorf("failed to insert rain record: %w", err)
		}
		id, err = res.LastInsertId()
		return err
	})
	return id, err
}

// QueryRain returns rain records dated within [start, end].
func (s *Store) QueryRain(ctx context.Context, start, end time.Time) ([]types.RainIntensityRecord, error) {
	records := []types.RainIntensityRecord{}
	from, to := dateArgs(start, end)

	err := s.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, queryRainSQL, from, to)
		if err != nil {
			return fmt.Errorf("failed to query rain records: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var r types.RainIntensityRecord
			var ts, level string
			var code, note sql.NullString
			if err := rows.Scan(&r.ID, &ts, &level, &code, &note); err != nil {
				return fmt.Errorf("failed to scan rain row: %w", err)
			}
			if r.Time, err = time.Parse(obstime.TimestampLayout, ts); err != nil {
				return fmt.Errorf("bad rain timestamp %q: %w", ts, err)
			}
			if r.Level, err = types.ParseRainLevel(level); err != nil {
				return err
			}
			r.Code = code.String
			r.Note = note.String
			records = append(records, r)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// RainStatsByDay counts rain records per date within [start, end].
func (s *Store) RainStatsByDay(ctx context.Context, start, end time.Time) ([]types.DailyCount, error) {
	counts := []types.DailyCount{}
	from, to := dateArgs(start, end)

	err := s.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, rainStatsSQL, from, to)
		if err != nil {
			return fmt.Errorf("failed to query rain stats: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var c types.DailyCount
			if err := rows.Scan(&c.Date, &c.Count); err != nil {
				return fmt.Errorf("failed to scan rain stats row: %w", err)
			}
			counts = append(counts, c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// InsertRunwayState stores a runway state record and returns its row id.
func (s *Store) InsertRunwayState(ctx context.Context, r types.RunwayStateRecord) (int64, error) {
	var id int64
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, insertRunwaySQL,
			r.Time.Format(obstime.TimestampLayout), r.State.String(), nullString(r.Note), s.now())
		if err != nil {
			return fmt.Errorf("failed to insert runway state: %w", err)
		}
		id, err = res.LastInsertId()
		return err
	})
	return id, err
}

// QueryRunwayStates returns runway records dated within [start, end].
func (s *Store) QueryRunwayStates(ctx context.Context, start, end time.Time) ([]types.RunwayStateRecord, error) {
	records := []types.RunwayStateRecord{}
	from, to := dateArgs(start, end)

	err := s.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, queryRunwaySQL, from, to)
		if err != nil {
			return fmt.Errorf("failed to query runway states: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var r types.RunwayStateRecord
			var ts, state string
			var note sql.NullString
			if err := rows.Scan(&r.ID, &ts, &state, &note); err != nil {
				return fmt.Errorf("failed to scan runway row: %w", err)
			}
			if r.Time, err = time.Parse(obstime.TimestampLayout, ts); err != nil {
				return fmt.Errorf("bad runway timestamp %q: %w", ts, err)
			}
			if r.State, err = types.ParseRunwayState(state); err != nil {
				return err
			}
			r.Note = note.String
			records = append(records, r)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}
