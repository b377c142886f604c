package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrissnell/airfieldwx/pkg/obstime"
)

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name      string
		table     string
		start     string
		end       string
		wantQuery string
		wantArgs  []any
		wantErr   error
	}{
		{
			name:      "whole table",
			table:     "rain_events",
			wantQuery: "SELECT * FROM rain_events ORDER BY id",
		},
		{
			name:      "date range",
			table:     "runway_states",
			start:     "2024-06-01",
			end:       "2024-06-30",
			wantQuery: "SELECT * FROM runway_states WHERE event_time::date >= $1::date AND event_time::date <= $2::date ORDER BY id",
			wantArgs:  []any{"2024-06-01", "2024-06-30"},
		},
		{
			name:      "end only",
			table:     "forecasts",
			end:       "2024-06-30",
			wantQuery: "SELECT * FROM forecasts WHERE date <= $1::date ORDER BY id",
			wantArgs:  []any{"2024-06-30"},
		},
		{
			name:    "bad date",
			table:   "rain_events",
			start:   "June",
			wantErr: obstime.ErrInvalidDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, args, err := buildQuery(tt.table, tt.start, tt.end)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantQuery, q)
			assert.Equal(t, tt.wantArgs, args)
		})
	}

	_, _, err := buildQuery("users; DROP TABLE x", "", "")
	assert.Error(t, err)
}

func TestWriters(t *testing.T) {
	columns := []string{"id", "event_time", "rain_level"}
	row := map[string]any{"id": int64(1), "event_time": time.Date(2024, 6, 21, 10, 0, 0, 0, time.UTC), "rain_level": "light"}

	var csvBuf bytes.Buffer
	cw := newCSVWriter(&csvBuf)
	require.NoError(t, cw.header(columns))
	require.NoError(t, cw.row(columns, row))
	require.NoError(t, cw.close())
	assert.Equal(t, "id,event_time,rain_level\n1,2024-06-21T10:00:00Z,light\n", csvBuf.String())

	var jsonBuf bytes.Buffer
	jw := newJSONWriter(&jsonBuf)
	require.NoError(t, jw.header(columns))
	require.NoError(t, jw.row(columns, row))
	require.NoError(t, jw.row(columns, row))
	require.NoError(t, jw.close())

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(jsonBuf.Bytes(), &decoded))
	assert.Len(t, decoded, 2)
	assert.Equal(t, "light", decoded[1]["rain_level"])
}
