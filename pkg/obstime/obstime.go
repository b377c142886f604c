// Package obstime handles the time notations used when logging observations:
// separator-free clock entries such as "1130" and METAR DDHHMMZ groups.
package obstime

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar date format used in queries and storage.
const DateLayout = "2006-01-02"

// TimestampLayout is the minute-resolution timestamp format used in storage.
const TimestampLayout = "2006-01-02 15:04"

var (
	ErrInvalidClock = errors.New("invalid clock time, expected digits like 1130, 130, 45 or 9")
	ErrInvalidDate  = errors.New("invalid date, expected YYYY-MM-DD")
)

// Clock is an hour and minute of day.
type Clock struct {
	Hour   int
	Minute int
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// ParseNumericClock interprets a 1 to 4 digit string as a clock time:
// HHMM, HMM, MM or M. The hour defaults to zero when not given.
func ParseNumericClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 4 {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, s)
		}
	}

	var hh, mm string
	switch len(s) {
	case 4:
		hh, mm = s[:2], s[2:]
	case 3:
		hh, mm = s[:1], s[1:]
	default:
		hh, mm = "0", s
	}

	hour, _ := strconv.Atoi(hh)
	minute, _ := strconv.Atoi(mm)
	if hour > 23 || minute > 59 {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}

	return Clock{Hour: hour, Minute: minute}, nil
}

// ParseDate parses a YYYY-MM-DD calendar date in UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d, nil
}

// Combine places clock c on the calendar date of d, in d's location.
func Combine(d time.Time, c Clock) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, c.Hour, c.Minute, 0, 0, d.Location())
}

// ParseTimestamp combines a date string and a numeric clock string.
func ParseTimestamp(date, clock string) (time.Time, error) {
	d, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	c, err := ParseNumericClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return Combine(d, c), nil
}

// DayRange returns the instants bounding the inclusive date range
// [start, end]: midnight of start and the last nanosecond of end.
func DayRange(start, end time.Time) (time.Time, time.Time) {
	y, m, d := start.Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, start.Location())
	y, m, d = end.Date()
	to := time.Date(y, m, d, 0, 0, 0, 0, end.Location()).AddDate(0, 0, 1).Add(-time.Nanosecond)
	return from, to
}

var reportTimeRe = regexp.MustCompile(`^(\d{2})(\d{2})(\d{2})Z$`)

// ReportTime is the day-of-month and UTC clock of a METAR DDHHMMZ group.
type ReportTime struct {
	Day    int
	Hour   int
	Minute int
}

// ParseReportTime parses a DDHHMMZ group.
func ParseReportTime(s string) (ReportTime, bool) {
	m := reportTimeRe.FindStringSubmatch(s)
	if m == nil {
		return ReportTime{}, false
	}
	day, _ := strconv.Atoi(m[1])
	hour, _ := strconv.Atoi(m[2])
	minute, _ := strconv.Atoi(m[3])
	return ReportTime{Day: day, Hour: hour, Minute: minute}, true
}

func (t ReportTime) String() string {
	return fmt.Sprintf("%02d%02d%02dZ", t.Day, t.Hour, t.Minute)
}

// Project shifts the report time by offsetHours. The day advances when the
// shifted hour reaches 24 and falls back when it drops below zero. The day of
// month is not wrapped since the month is unknown.
func (t ReportTime) Project(offsetHours int) ReportTime {
	out := t
	out.Hour += offsetHours
	for out.Hour >= 24 {
		out.Hour -= 24
		out.Day++
	}
	for out.Hour < 0 {
		out.Hour += 24
		out.Day--
	}
	return out
}

// LocalLabel renders a DDHHMMZ group as local time "DD HH:MM". It returns an
// empty string when the group does not parse.
func LocalLabel(reportTime string, offsetHours int) string {
	rt, ok := ParseReportTime(reportTime)
	if !ok {
		return ""
	}
	l := rt.Project(offsetHours)
	return fmt.Sprintf("%02d %02d:%02d", l.Day, l.Hour, l.Minute)
}

// Zone returns a fixed zone for the given offset, e.g. "UTC+7".
func Zone(offsetHours int) *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+d", offsetHours), offsetHours*3600)
}
