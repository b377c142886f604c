package config

import (
	"errors"
	"fmt"
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetStorageConfig() (*StorageData, error)
	GetRESTConfig() (*RESTServerData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Airfield AirfieldData   `yaml:"airfield" json:"airfield"`
	Storage  StorageData    `yaml:"storage,omitempty" json:"storage,omitempty"`
	REST     RESTServerData `yaml:"rest,omitempty" json:"rest,omitempty"`
	Logging  LoggingData    `yaml:"logging,omitempty" json:"logging,omitempty"`
	Render   RenderData     `yaml:"render,omitempty" json:"render,omitempty"`
}

// AirfieldData identifies the airfield and its offset from the METAR
// reference time.
type AirfieldData struct {
	Name             string `yaml:"name,omitempty" json:"name,omitempty"`
	ICAO             string `yaml:"icao,omitempty" json:"icao,omitempty"`
	LocalOffsetHours *int   `yaml:"local_offset_hours,omitempty" json:"local_offset_hours,omitempty"`
}

// StorageData holds the configuration for the storage backends. Exactly one
// must be set.
type StorageData struct {
	SQLite      *SQLiteData      `yaml:"sqlite,omitempty" json:"sqlite,omitempty"`
	TimescaleDB *TimescaleDBData `yaml:"timescaledb,omitempty" json:"timescaledb,omitempty"`
}

type SQLiteData struct {
	Path string `yaml:"path" json:"path"`
}

type TimescaleDBData struct {
	ConnectionString string `yaml:"connection_string" json:"connection_string"`
}

type RESTServerData struct {
	ListenAddr  string `yaml:"listen_addr,omitempty" json:"listen_addr,omitempty"`
	HTTPPort    int    `yaml:"http_port,omitempty" json:"http_port,omitempty"`
	TLSCertPath string `yaml:"tls_cert_path,omitempty" json:"tls_cert_path,omitempty"`
	TLSKeyPath  string `yaml:"tls_key_path,omitempty" json:"tls_key_path,omitempty"`
	EnableCORS  bool   `yaml:"enable_cors,omitempty" json:"enable_cors,omitempty"`
}

type LoggingData struct {
	File       string `yaml:"file,omitempty" json:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty" json:"max_size_mb,omitempty"`
	MaxBackups int    `yaml:"max_backups,omitempty" json:"max_backups,omitempty"`
	MaxAgeDays int    `yaml:"max_age_days,omitempty" json:"max_age_days,omitempty"`
}

type RenderData struct {
	FontFamily          string   `yaml:"font_family,omitempty" json:"font_family,omitempty"`
	FallbackFonts       []string `yaml:"fallback_fonts,omitempty" json:"fallback_fonts,omitempty"`
	TransitionSeparator string   `yaml:"transition_separator,omitempty" json:"transition_separator,omitempty"`
}

const (
	DefaultLocalOffsetHours = 7
	DefaultSQLitePath       = "airfield.db"
	DefaultListenAddr       = "0.0.0.0"
	DefaultHTTPPort         = 8080
	DefaultLogMaxSizeMB     = 50
	DefaultLogMaxBackups    = 5
	DefaultLogMaxAgeDays    = 30
)

var ErrStorageBackend = errors.New("exactly one storage backend (sqlite or timescaledb) must be configured")

// ApplyDefaults fills in every unset option. A config with no storage
// section gets the default SQLite database.
func (c *ConfigData) ApplyDefaults() {
	if c.Airfield.LocalOffsetHours == nil {
		offset := DefaultLocalOffsetHours
		c.Airfield.LocalOffsetHours = &offset
	}

	if c.Storage.SQLite == nil && c.Storage.TimescaleDB == nil {
		c.Storage.SQLite = &SQLiteData{}
	}
	if c.Storage.SQLite != nil && c.Storage.SQLite.Path == "" {
		c.Storage.SQLite.Path = DefaultSQLitePath
	}

	if c.REST.ListenAddr == "" {
		c.REST.ListenAddr = DefaultListenAddr
	}
	if c.REST.HTTPPort == 0 {
		c.REST.HTTPPort = DefaultHTTPPort
	}

	if c.Logging.File != "" {
		if c.Logging.MaxSizeMB == 0 {
			c.Logging.MaxSizeMB = DefaultLogMaxSizeMB
		}
		if c.Logging.MaxBackups == 0 {
			c.Logging.MaxBackups = DefaultLogMaxBackups
		}
		if c.Logging.MaxAgeDays == 0 {
			c.Logging.MaxAgeDays = DefaultLogMaxAgeDays
		}
	}
}

// Validate checks the config for contradictions. Call after ApplyDefaults.
func (c *ConfigData) Validate() error {
	if (c.Storage.SQLite == nil) == (c.Storage.TimescaleDB == nil) {
		return ErrStorageBackend
	}
	if c.Storage.TimescaleDB != nil && c.Storage.TimescaleDB.ConnectionString == "" {
		return fmt.Errorf("storage.timescaledb: connection_string is required")
	}
	if c.REST.HTTPPort < 0 || c.REST.HTTPPort > 65535 {
		return fmt.Errorf("rest: invalid http_port %d", c.REST.HTTPPort)
	}
	if (c.REST.TLSCertPath == "") != (c.REST.TLSKeyPath == "") {
		return fmt.Errorf("rest: tls_cert_path and tls_key_path must be set together")
	}
	if c.Airfield.LocalOffsetHours != nil {
		if o := *c.Airfield.LocalOffsetHours; o < -12 || o > 14 {
			return fmt.Errorf("airfield: local_offset_hours %d out of range", o)
		}
	}
	return nil
}

// LocalOffset returns the configured offset, falling back to the default.
func (a AirfieldData) LocalOffset() int {
	if a.LocalOffsetHours == nil {
		return DefaultLocalOffsetHours
	}
	return *a.LocalOffsetHours
}
