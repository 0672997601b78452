package stylist

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/yuefen/wearwise/pkg/errors"
)

// Mood captures the requested styling temperament.
type Mood string

const (
	MoodCalm Mood = "calm"
	MoodBold Mood = "bold"
	MoodCozy Mood = "cozy"
)

// TimeOfDay buckets the request into a coarse daypart.
type TimeOfDay string

const (
	TimeMorning   TimeOfDay = "morning"
	TimeAfternoon TimeOfDay = "afternoon"
	TimeEvening   TimeOfDay = "evening"
)

// Band is the coarse temperature band derived from a weather snapshot.
type Band string

const (
	BandCold Band = "cold"
	BandMild Band = "mild"
	BandHot  Band = "hot"
)

// WeatherSnapshot is an already-resolved weather reading supplied by the
// caller; the engine never fetches weather itself.
type WeatherSnapshot struct {
	TempC         float64 `json:"tempC"`
	Precipitation bool    `json:"precipitation"`
}

// RawContext is the untrusted request payload before normalization.
type RawContext struct {
	Mood           string           `json:"mood"`
	Event          string           `json:"event"`
	TimeOfDay      string           `json:"timeOfDay"`
	Timestamp      string           `json:"timestamp,omitempty"`
	Weather        *WeatherSnapshot `json:"weather,omitempty"`
	AvoidMaterials []string         `json:"avoidMaterials,omitempty"`
	Location       string           `json:"location,omitempty"`
}

// Context is the canonical scoring context every engine operation consumes.
type Context struct {
	Mood           Mood
	Event          string
	TimeOfDay      TimeOfDay
	Timestamp      time.Time
	Band           Band
	IdealWarmth    int
	Precipitation  bool
	AvoidMaterials map[string]struct{}
	Location       string
	Caveats        []string
}

// Normalize validates the raw payload and derives the weather band. Missing
// weather degrades to a mild, dry default with a caveat rather than failing.
func Normalize(raw RawContext, now time.Time) (Context, error) {
	mood := Mood(strings.ToLower(strings.TrimSpace(raw.Mood)))
	switch mood {
	case MoodCalm, MoodBold, MoodCozy:
	default:
		return Context{}, apperrors.Wrap("invalid_context", fmt.Sprintf("unrecognized mood %q", raw.Mood), nil)
	}

	tod := TimeOfDay(strings.ToLower(strings.TrimSpace(raw.TimeOfDay)))
	switch tod {
	case TimeMorning, TimeAfternoon, TimeEvening:
	default:
		return Context{}, apperrors.Wrap("invalid_context", fmt.Sprintf("unrecognized timeOfDay %q", raw.TimeOfDay), nil)
	}

	ts := now
	if trimmed := strings.TrimSpace(raw.Timestamp); trimmed != "" {
		parsed, err := time.Parse(time.RFC3339, trimmed)
		if err != nil {
			return Context{}, apperrors.Wrap("invalid_context", "timestamp must be RFC3339", err)
		}
		ts = parsed
	}

	out := Context{
		Mood:           mood,
		Event:          strings.ToLower(strings.TrimSpace(raw.Event)),
		TimeOfDay:      tod,
		Timestamp:      ts,
		AvoidMaterials: make(map[string]struct{}, len(raw.AvoidMaterials)),
		Location:       strings.TrimSpace(raw.Location),
	}
	for _, m := range raw.AvoidMaterials {
		clean := strings.ToLower(strings.TrimSpace(m))
		if clean != "" {
			out.AvoidMaterials[clean] = struct{}{}
		}
	}

	if raw.Weather == nil {
		out.Band = BandMild
		out.IdealWarmth = 0
		out.Precipitation = false
		out.Caveats = append(out.Caveats, "no weather data supplied, assuming mild and dry")
		return out, nil
	}

	out.Band, out.IdealWarmth = classifyWeather(raw.Weather.TempC)
	out.Precipitation = raw.Weather.Precipitation
	return out, nil
}

// classifyWeather maps a temperature to its band and the warmth level an
// outfit should target in it.
func classifyWeather(tempC float64) (Band, int) {
	switch {
	case tempC >= 28:
		return BandHot, -1
	case tempC >= 18:
		return BandMild, 0
	case tempC >= 10:
		return BandMild, 1
	default:
		return BandCold, 2
	}
}

// SeasonsFor returns the seasons a temperature band implies. Guardrail
// season checks treat these as the current allow-list.
func SeasonsFor(band Band) []string {
	switch band {
	case BandCold:
		return []string{"winter", "autumn"}
	case BandHot:
		return []string{"summer"}
	default:
		return []string{"spring", "autumn", "summer"}
	}
}
