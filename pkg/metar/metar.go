// Package metar extracts the fields an airfield log needs from METAR text.
//
// Parsing is lenient: a field that cannot be found is left nil and never
// produces an error.
package metar

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/chrissnell/airfieldwx/internal/types"
	"github.com/chrissnell/airfieldwx/pkg/obstime"
)

// FeetToMeters is the international foot.
const FeetToMeters = 0.3048

// CloudLayer is one reported cloud layer.
type CloudLayer struct {
	Amount  string `json:"amount" msgpack:"amount"` // FEW, SCT, BKN or OVC
	HeightM int    `json:"height_m" msgpack:"height_m"`
}

// Report holds the fields parsed from one METAR. Pointer fields are nil when
// the report did not contain them.
type Report struct {
	Raw           string           `json:"raw" msgpack:"raw"`
	Station       *string          `json:"station,omitempty" msgpack:"station,omitempty"`
	ObsTime       *string          `json:"obs_time,omitempty" msgpack:"obs_time,omitempty"` // DDHHMMZ
	WindDirection *int             `json:"wind_direction,omitempty" msgpack:"wind_direction,omitempty"`
	WindVariable  bool             `json:"wind_variable,omitempty" msgpack:"wind_variable,omitempty"`
	WindSpeed     *int             `json:"wind_speed_kt,omitempty" msgpack:"wind_speed_kt,omitempty"`
	WindGust      *int             `json:"wind_gust_kt,omitempty" msgpack:"wind_gust_kt,omitempty"`
	Visibility    *int             `json:"visibility_m,omitempty" msgpack:"visibility_m,omitempty"`
	Temperature   *int             `json:"temperature_c,omitempty" msgpack:"temperature_c,omitempty"`
	DewPoint      *int             `json:"dewpoint_c,omitempty" msgpack:"dewpoint_c,omitempty"`
	Clouds        []CloudLayer     `json:"clouds" msgpack:"clouds"`
	IsRaining     bool             `json:"is_raining" msgpack:"is_raining"`
	RainLevel     *types.RainLevel `json:"rain_level,omitempty" msgpack:"rain_level,omitempty"`
	Weather       []string         `json:"weather" msgpack:"weather"`
}

// ReportTime returns the parsed observation time group, if any.
func (r Report) ReportTime() (obstime.ReportTime, bool) {
	if r.ObsTime == nil {
		return obstime.ReportTime{}, false
	}
	return obstime.ParseReportTime(*r.ObsTime)
}

type phenomenon struct {
	re        *regexp.Regexp
	desc      string
	rain      bool
	rainLevel types.RainLevel
}

// Evaluated in order. The first rain-bearing match sets Report.RainLevel.
// Note that RA also matches inside -RA and +RA.
var phenomena = []phenomenon{
	{regexp.MustCompile(`\+SHRA`), "heavy rain showers", true, types.HeavyRain},
	{regexp.MustCompile(`-SHRA`), "light rain showers", true, types.LightRain},
	{regexp.MustCompile(`\bSHRA\b`), "rain showers", true, types.ModerateRain},
	{regexp.MustCompile(`\+RA\b`), "heavy rain", true, types.HeavyRain},
	{regexp.MustCompile(`-RA\b`), "light rain", true, types.LightRain},
	{regexp.MustCompile(`\bRA\b`), "rain", true, types.ModerateRain},
	{regexp.MustCompile(`TSRA`), "thunderstorm with rain", true, types.ThunderstormRain},
	{regexp.MustCompile(`\bTS\b`), "thunderstorm", false, 0},
	{regexp.MustCompile(`\bDZ\b`), "drizzle", true, types.LightRain},
	{regexp.MustCompile(`\bFG\b`), "fog", false, 0},
	{regexp.MustCompile(`\bBR\b`), "mist", false, 0},
	{regexp.MustCompile(`\bHZ\b`), "haze", false, 0},
}

var (
	stationRe     = regexp.MustCompile(`\bMETAR\s+([A-Z]{4})\b`)
	stationAnyRe  = regexp.MustCompile(`\b([A-Z]{4})\b`)
	timeRe        = regexp.MustCompile(`\b(\d{6})Z\b`)
	windRe        = regexp.MustCompile(`(VRB|\d{3})(\d{2,3})(?:G(\d{2,3}))?KT`)
	visibilityRe  = regexp.MustCompile(`\b(\d{4})\b`)
	temperatureRe = regexp.MustCompile(`\b(M?\d{2})/(M?\d{2})\b`)
	cloudRe       = regexp.MustCompile(`(FEW|SCT|BKN|OVC)(\d{3})`)
)

// Normalize collapses all runs of whitespace, including newlines, into single
// spaces.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// SplitReports splits a pasted block of reports on the "=" terminator and
// returns each non-empty report normalized to a single line.
func SplitReports(block string) []string {
	var reports []string
	for _, part := range strings.Split(block, "=") {
		if r := Normalize(part); r != "" {
			reports = append(reports, r)
		}
	}
	return reports
}

// Parse extracts the known fields from one report.
func Parse(text string) Report {
	text = Normalize(text)

	r := Report{
		Raw:     text,
		Clouds:  []CloudLayer{},
		Weather: []string{},
	}

	if m := stationRe.FindStringSubmatch(text); m != nil {
		r.Station = &m[1]
	} else if m := stationAnyRe.FindStringSubmatch(text); m != nil {
		r.Station = &m[1]
	}

	// Relayed reports carry a reception time first; the observation time is last.
	if times := timeRe.FindAllStringSubmatch(text, -1); len(times) > 0 {
		t := times[len(times)-1][1] + "Z"
		r.ObsTime = &t
	}

	if m := windRe.FindStringSubmatch(text); m != nil {
		if m[1] == "VRB" {
			r.WindVariable = true
		} else {
			r.WindDirection = atoi(m[1])
		}
		r.WindSpeed = atoi(m[2])
		if m[3] != "" {
			r.WindGust = atoi(m[3])
		}
	}

	if m := visibilityRe.FindStringSubmatch(text); m != nil {
		r.Visibility = atoi(m[1])
	}

	if m := temperatureRe.FindStringSubmatch(text); m != nil {
		r.Temperature = signedTemp(m[1])
		r.DewPoint = signedTemp(m[2])
	}

	for _, m := range cloudRe.FindAllStringSubmatch(text, -1) {
		hundreds, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		r.Clouds = append(r.Clouds, CloudLayer{Amount: m[1], HeightM: HundredsOfFeetToMeters(hundreds)})
	}

	for _, p := range phenomena {
		if !p.re.MatchString(text) {
			continue
		}
		r.Weather = append(r.Weather, p.desc)
		if p.rain {
			r.IsRaining = true
			if r.RainLevel == nil {
				level := p.rainLevel
				r.RainLevel = &level
			}
		}
	}

	return r
}

// HundredsOfFeetToMeters converts a METAR cloud height group to whole meters.
func HundredsOfFeetToMeters(hundreds int) int {
	return int(math.Round(float64(hundreds*100) * FeetToMeters))
}

func atoi(s string) *int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}

func signedTemp(s string) *int {
	if rest, ok := strings.CutPrefix(s, "M"); ok {
		v := atoi(rest)
		if v != nil {
			*v = -*v
		}
		return v
	}
	return atoi(s)
}
