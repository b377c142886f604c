package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chrissnell/airfieldwx/internal/types"
	"github.com/chrissnell/airfieldwx/pkg/metar"
)

func newTestStore(t *testing.T, clock clockwork.Clock) *Store {
	t.Helper()
	s, err := New(context.Background(), filepath.Join(t.TempDir(), "airfield.db"), clock, zap.NewNop().Sugar())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func ts(day, hh, mm int) time.Time {
	return time.Date(2024, 6, day, hh, mm, 0, 0, time.UTC)
}

func date(day int) time.Time {
	return time.Date(2024, 6, day, 0, 0, 0, 0, time.UTC)
}

func TestRainRoundTripAndOrdering(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, clockwork.NewFakeClockAt(ts(25, 0, 0)))

	// Inserted out of order; the two 10:00 records must keep insertion order.
	inputs := []types.RainIntensityRecord{
		{Time: ts(21, 11, 0), Level: types.RainStopped},
		{Time: ts(21, 10, 0), Level: types.ModerateRain, Code: "RA"},
		{Time: ts(21, 10, 0), Level: types.HeavyRain, Code: "+RA", Note: "second at 10:00"},
		{Time: ts(20, 23, 59), Level: types.Drizzle},
		{Time: ts(22, 0, 0), Level: types.LightRain},
	}
	for _, r := range inputs {
		_, err := s.InsertRain(ctx, r)
		require.NoError(t, err)
	}

	got, err := s.QueryRain(ctx, date(21), date(21))
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, types.ModerateRain, got[0].Level)
	assert.Equal(t, "RA", got[0].Code)
	assert.Equal(t, types.HeavyRain, got[1].Level)
	assert.Equal(t, "second at 10:00", got[1].Note)
	assert.Less(t, got[0].ID, got[1].ID)
	assert.Equal(t, types.RainStopped, got[2].Level)
	assert.Equal(t, ts(21, 11, 0), got[2].Time)

	all, err := s.QueryRain(ctx, date(20), date(22))
	require.NoError(t, err)
	assert.Len(t, all, 5)
	assert.Equal(t, ts(20, 23, 59), all[0].Time)

	none, err := s.QueryRain(ctx, date(1), date(2))
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	stats, err := s.RainStatsByDay(ctx, date(20), date(22))
	require.NoError(t, err)
	assert.Equal(t, []types.DailyCount{{Date: "2024-06-20", Count: 1}, {Date: "2024-06-21", Count: 3}, {Date: "2024-06-22", Count: 1}}, stats)
}

func TestRunwayRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil)

	_, err := s.InsertRunwayState(ctx, types.RunwayStateRecord{Time: ts(21, 11, 10), State: types.RunwayRecoveredDry, Note: "braking normal"})
	require.NoError(t, err)
	_, err = s.InsertRunwayState(ctx, types.RunwayStateRecord{Time: ts(21, 10, 20), State: types.RunwayMostlyWetTreatedDry})
	require.NoError(t, err)

	got, err := s.QueryRunwayStates(ctx, date(21), date(21))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, types.RunwayMostlyWetTreatedDry, got[0].State)
	assert.Equal(t, types.RunwayRecoveredDry, got[1].State)
	assert.Equal(t, "braking normal", got[1].Note)
}

func TestForecastRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil)

	require.NoError(t, s.InsertForecast(ctx, types.Forecast{Date: date(22), Wind: "030/05", TempMin: 25, TempMax: 28.5, Weather: "showers"}))
	require.NoError(t, s.InsertForecast(ctx, types.Forecast{Date: date(30), Wind: "180/10", TempMin: 26, TempMax: 31}))

	got, err := s.QueryForecasts(ctx, date(20), date(25))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, date(22), got[0].Date)
	assert.Equal(t, "030/05", got[0].Wind)
	assert.Equal(t, 28.5, got[0].TempMax)
	assert.Equal(t, "showers", got[0].Weather)
}

func TestReportsNewestFirst(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(ts(21, 3, 30))
	s := newTestStore(t, clock)

	first := metar.Parse("METAR VVCS 210330Z 07008KT 9999 -SHRA SCT015 28/24 Q1011")
	require.NoError(t, s.InsertReport(ctx, "batch-1", first))

	clock.Advance(time.Hour)
	second := metar.Parse("garbled")
	require.NoError(t, s.InsertReport(ctx, "batch-2", second))

	got, err := s.RecentReports(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "batch-2", got[0].BatchID)
	assert.Nil(t, got[0].Station)
	assert.Nil(t, got[0].RainLevel)
	assert.Empty(t, got[0].Clouds)

	r := got[1]
	assert.Equal(t, "batch-1", r.BatchID)
	assert.Equal(t, ts(21, 3, 30), r.CreatedAt)
	require.NotNil(t, r.Station)
	assert.Equal(t, "VVCS", *r.Station)
	assert.Equal(t, 8, *r.WindSpeed)
	assert.Equal(t, []metar.CloudLayer{{Amount: "SCT", HeightM: 457}}, r.Clouds)
	require.NotNil(t, r.RainLevel)
	assert.Equal(t, types.LightRain, *r.RainLevel)
	assert.True(t, r.IsRaining)
	assert.Equal(t, first.Weather, r.Weather)

	limited, err := s.RecentReports(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
