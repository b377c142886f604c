package timescaledb

import (
	"time"

	"github.com/jackc/pgtype"
	"github.com/lib/pq"
)

// ForecastRow maps the forecasts table.
type ForecastRow struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id"`
	Date      time.Time `gorm:"column:date;type:date;not null;index"`
	Wind      string    `gorm:"column:wind"`
	TempMin   float64   `gorm:"column:temp_min"`
	TempMax   float64   `gorm:"column:temp_max"`
	Weather   string    `gorm:"column:weather"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (ForecastRow) TableName() string {
	return "forecasts"
}

// MetarRow maps the metars table. Cloud layers are kept as JSONB and weather
// phenomena as a text array.
type MetarRow struct {
	ID           int64          `gorm:"primaryKey;autoIncrement;column:id"`
	BatchID      string         `gorm:"column:batch_id;not null;index"`
	ObsTime      *string        `gorm:"column:obs_time"`
	Station      *string        `gorm:"column:station"`
	Raw          string         `gorm:"column:raw;not null"`
	WindDir      *int           `gorm:"column:wind_dir"`
	WindVariable bool           `gorm:"column:wind_variable;not null;default:false"`
	WindSpeed    *int           `gorm:"column:wind_speed"`
	WindGust     *int           `gorm:"column:wind_gust"`
	Visibility   *int           `gorm:"column:visibility"`
	Temp         *int           `gorm:"column:temp"`
	DewPoint     *int           `gorm:"column:dewpoint"`
	Weather      pq.StringArray `gorm:"column:weather;type:text[]"`
	RainFlag     bool           `gorm:"column:rain_flag;not null;default:false"`
	RainLevel    *string        `gorm:"column:rain_level"`
	Clouds       pgtype.JSONB   `gorm:"column:clouds;type:jsonb;default:'[]';not null"`
	CreatedAt    time.Time      `gorm:"column:created_at;not null;index"`
}

func (MetarRow) TableName() string {
	return "metars"
}

// RainRow maps the rain_events table.
type RainRow struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id"`
	EventTime time.Time `gorm:"column:event_time;type:timestamp;not null;index"`
	RainLevel string    `gorm:"column:rain_level;not null"`
	RainCode  string    `gorm:"column:rain_code"`
	Note      string    `gorm:"column:note"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (RainRow) TableName() string {
	return "rain_events"
}

// RunwayRow maps the runway_states table.
type RunwayRow struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id"`
	EventTime time.Time `gorm:"column:event_time;type:timestamp;not null;index"`
	State     string    `gorm:"column:state;not null"`
	Note      string    `gorm:"column:note"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (RunwayRow) TableName() string {
	return "runway_states"
}
