package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := NewYAMLProvider("").LoadConfig()
	require.NoError(t, err)

	require.NotNil(t, cfg.Storage.SQLite)
	assert.Equal(t, DefaultSQLitePath, cfg.Storage.SQLite.Path)
	assert.Nil(t, cfg.Storage.TimescaleDB)
	assert.Equal(t, DefaultListenAddr, cfg.REST.ListenAddr)
	assert.Equal(t, DefaultHTTPPort, cfg.REST.HTTPPort)
	assert.Equal(t, 7, cfg.Airfield.LocalOffset())
	assert.Empty(t, cfg.Logging.File)
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
airfield:
  name: Test Field
  icao: ZXXX
  local_offset_hours: 8
storage:
  timescaledb:
    connection_string: postgres://wx@localhost/wx
rest:
  http_port: 9090
logging:
  file: /var/log/airfieldwx.log
render:
  font_family: Noto Sans
  fallback_fonts: [DejaVu Sans, Arial]
`)

	p := NewYAMLProvider(path)
	cfg, err := p.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "ZXXX", cfg.Airfield.ICAO)
	assert.Equal(t, 8, cfg.Airfield.LocalOffset())
	assert.Nil(t, cfg.Storage.SQLite)
	assert.Equal(t, "postgres://wx@localhost/wx", cfg.Storage.TimescaleDB.ConnectionString)
	assert.Equal(t, 9090, cfg.REST.HTTPPort)
	assert.Equal(t, DefaultLogMaxSizeMB, cfg.Logging.MaxSizeMB)
	assert.Equal(t, []string{"DejaVu Sans", "Arial"}, cfg.Render.FallbackFonts)

	rest, err := p.GetRESTConfig()
	require.NoError(t, err)
	assert.Equal(t, 9090, rest.HTTPPort)
	assert.True(t, p.IsReadOnly())
}

func TestLoadConfigZeroOffset(t *testing.T) {
	path := writeConfig(t, "airfield:\n  local_offset_hours: 0\n")
	cfg, err := NewYAMLProvider(path).LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Airfield.LocalOffset())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{"both backends", "storage:\n  sqlite:\n    path: a.db\n  timescaledb:\n    connection_string: postgres://x\n", true},
		{"empty connection string", "storage:\n  timescaledb:\n    connection_string: \"\"\n", true},
		{"cert without key", "rest:\n  tls_cert_path: cert.pem\n", true},
		{"offset out of range", "airfield:\n  local_offset_hours: 20\n", true},
		{"unknown key", "airfeld:\n  name: typo\n", true},
		{"sqlite only", "storage:\n  sqlite:\n    path: wx.db\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewYAMLProvider(writeConfig(t, tt.yaml)).LoadConfig()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateStorageSentinel(t *testing.T) {
	cfg := &ConfigData{}
	assert.ErrorIs(t, cfg.Validate(), ErrStorageBackend)
}
