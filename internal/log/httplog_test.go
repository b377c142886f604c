package log

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestHTTPWriterSplitsLines(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	w := NewHTTPWriter(zap.New(core).Sugar())

	_, err := w.Write([]byte("GET /api/rain 200\nPOST /api/ru"))
	require.NoError(t, err)
	_, err = w.Write([]byte("nway 201\n\n"))
	require.NoError(t, err)

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, "GET /api/rain 200", entries[0].Message)
	assert.Equal(t, "POST /api/runway 201", entries[1].Message)
}

func TestInitWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "airfieldwx.log")
	require.NoError(t, Init(false, FileConfig{Path: path, MaxSizeMB: 1}))
	t.Cleanup(func() { baseLogger, log = nil, nil })

	Info("written to file")
	Sync()

	assert.FileExists(t, path)
}
