package types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrUnknownRainLevel   = errors.New("unknown rain level")
	ErrUnknownRunwayState = errors.New("unknown runway state")
)

// RainLevel is the ordered rain intensity scale used in manual rain logs.
type RainLevel int

const (
	RainStopped RainLevel = iota
	Drizzle
	LightRain
	ModerateRain
	HeavyRain
	ViolentRain
	ThunderstormRain
)

var rainLevelLabels = [...]string{
	RainStopped:      "rain-stopped",
	Drizzle:          "drizzle",
	LightRain:        "light",
	ModerateRain:     "moderate",
	HeavyRain:        "heavy",
	ViolentRain:      "violent",
	ThunderstormRain: "thunderstorm-rain",
}

// Severity values used to rank intensities when looking for the peak of a
// rainfall event. Thunderstorm rain ranks between heavy and violent.
var rainLevelSeverity = [...]float64{
	RainStopped:      0,
	Drizzle:          0.5,
	LightRain:        1,
	ModerateRain:     2,
	HeavyRain:        3,
	ViolentRain:      4,
	ThunderstormRain: 3.5,
}

// RainLevels lists every level in enum order.
func RainLevels() []RainLevel {
	return []RainLevel{RainStopped, Drizzle, LightRain, ModerateRain, HeavyRain, ViolentRain, ThunderstormRain}
}

func (l RainLevel) valid() bool {
	return l >= RainStopped && l <= ThunderstormRain
}

func (l RainLevel) String() string {
	if !l.valid() {
		return fmt.Sprintf("RainLevel(%d)", int(l))
	}
	return rainLevelLabels[l]
}

// Severity returns the numeric intensity used for charts and peak detection.
func (l RainLevel) Severity() float64 {
	if !l.valid() {
		return 0
	}
	return rainLevelSeverity[l]
}

// IsStopped reports whether the level marks the end of rainfall.
func (l RainLevel) IsStopped() bool {
	return l == RainStopped
}

// ParseRainLevel parses a level label such as "moderate" or "rain-stopped".
func ParseRainLevel(s string) (RainLevel, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, label := range rainLevelLabels {
		if s == label {
			return RainLevel(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRainLevel, s)
}

func (l RainLevel) MarshalText() ([]byte, error) {
	if !l.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRainLevel, int(l))
	}
	return []byte(l.String()), nil
}

func (l *RainLevel) UnmarshalText(b []byte) error {
	v, err := ParseRainLevel(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// RunwayState is the manually observed surface condition of the runway.
type RunwayState int

const (
	RunwayDry RunwayState = iota
	// RunwayMostlyWetTreatedDry is mostly wet but still operated as a dry runway.
	RunwayMostlyWetTreatedDry
	RunwayWet
	RunwayRecoveredDry
)

var runwayStateLabels = [...]string{
	RunwayDry:                 "dry",
	RunwayMostlyWetTreatedDry: "mostly-wet-treated-dry",
	RunwayWet:                 "wet",
	RunwayRecoveredDry:        "recovered-dry",
}

// RunwayStates lists every state in enum order.
func RunwayStates() []RunwayState {
	return []RunwayState{RunwayDry, RunwayMostlyWetTreatedDry, RunwayWet, RunwayRecoveredDry}
}

func (s RunwayState) valid() bool {
	return s >= RunwayDry && s <= RunwayRecoveredDry
}

func (s RunwayState) String() string {
	if !s.valid() {
		return fmt.Sprintf("RunwayState(%d)", int(s))
	}
	return runwayStateLabels[s]
}

// IsDry reports whether the state belongs to the dry class. A dry-class
// observation closes a wet-runway episode.
func (s RunwayState) IsDry() bool {
	return s == RunwayDry || s == RunwayRecoveredDry
}

// IsWet reports whether the state belongs to the wet class.
func (s RunwayState) IsWet() bool {
	return s == RunwayWet || s == RunwayMostlyWetTreatedDry
}

// ParseRunwayState parses a state label such as "wet" or "recovered-dry".
func ParseRunwayState(s string) (RunwayState, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, label := range runwayStateLabels {
		if s == label {
			return RunwayState(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRunwayState, s)
}

func (s RunwayState) MarshalText() ([]byte, error) {
	if !s.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRunwayState, int(s))
	}
	return []byte(s.String()), nil
}

func (s *RunwayState) UnmarshalText(b []byte) error {
	v, err := ParseRunwayState(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// RainIntensityRecord is one manually logged change in rain intensity.
type RainIntensityRecord struct {
	ID    int64     `json:"id,omitempty" msgpack:"id,omitempty"`
	Time  time.Time `json:"time" msgpack:"time"`
	Level RainLevel `json:"level" msgpack:"level"`
	Code  string    `json:"code,omitempty" msgpack:"code,omitempty"` // raw report code such as -RA or TSRA
	Note  string    `json:"note,omitempty" msgpack:"note,omitempty"`
}

// RunwayStateRecord is one manually logged runway surface observation.
type RunwayStateRecord struct {
	ID    int64       `json:"id,omitempty" msgpack:"id,omitempty"`
	Time  time.Time   `json:"time" msgpack:"time"`
	State RunwayState `json:"state" msgpack:"state"`
	Note  string      `json:"note,omitempty" msgpack:"note,omitempty"`
}

// Forecast is a daily forecast entered by the operator.
type Forecast struct {
	Date    time.Time `json:"date" msgpack:"date"`
	Wind    string    `json:"wind,omitempty" msgpack:"wind,omitempty"`
	TempMin float64   `json:"temp_min" msgpack:"temp_min"`
	TempMax float64   `json:"temp_max" msgpack:"temp_max"`
	Weather string    `json:"weather,omitempty" msgpack:"weather,omitempty"`
}

// DailyCount is the number of records logged on one calendar date.
type DailyCount struct {
	Date  string `json:"date" msgpack:"date"`
	Count int    `json:"count" msgpack:"count"`
}

// TruncateMinute drops seconds and below; observation times have minute resolution.
func TruncateMinute(t time.Time) time.Time {
	return t.Truncate(time.Minute)
}
