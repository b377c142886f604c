package obstime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumericClock(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "1130", want: "11:30"},
		{in: "130", want: "01:30"},
		{in: "45", want: "00:45"},
		{in: "9", want: "00:09"},
		{in: "0000", want: "00:00"},
		{in: "2359", want: "23:59"},
		{in: " 1624 ", want: "16:24"},
		{in: "2460", wantErr: true},
		{in: "99", wantErr: true},
		{in: "2400", wantErr: true},
		{in: "12345", wantErr: true},
		{in: "", wantErr: true},
		{in: "11:30", wantErr: true},
		{in: "-5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseNumericClock(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidClock)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	ts, err := ParseTimestamp("2024-06-21", "130")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 21, 1, 30, 0, 0, time.UTC), ts)
	assert.Equal(t, "2024-06-21 01:30", ts.Format(TimestampLayout))

	_, err = ParseTimestamp("2024-06-21", "2460")
	assert.ErrorIs(t, err, ErrInvalidClock)

	_, err = ParseTimestamp("21/06/2024", "1130")
	assert.Error(t, err)
}

func TestDayRange(t *testing.T) {
	from, to := DayRange(time.Date(2024, 6, 21, 15, 0, 0, 0, time.UTC), time.Date(2024, 6, 22, 3, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 6, 22, 23, 59, 59, 999999999, time.UTC), to)
}

func TestLocalLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"210330Z", "21 10:30"},
		{"211700Z", "22 00:00"},
		{"212359Z", "22 06:59"},
		{"garbage", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, LocalLabel(tt.in, 7))
		})
	}
}

func TestZone(t *testing.T) {
	ts := time.Date(2024, 6, 21, 20, 0, 0, 0, time.UTC).In(Zone(7))
	assert.Equal(t, 22, ts.Day())
	assert.Equal(t, 3, ts.Hour())
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2024-06-21 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC), d)

	for _, bad := range []string{"", "2024-6-21", "21/06/2024", "2024-02-30"} {
		_, err := ParseDate(bad)
		assert.ErrorIs(t, err, ErrInvalidDate, bad)
	}
}
