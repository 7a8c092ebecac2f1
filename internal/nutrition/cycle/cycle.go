// Package cycle resolves the current menstrual-cycle phase.
package cycle

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/winnie-backend/internal/nutrition"
)

const (
	DefaultLength = 28
	// StaleAfterDays is how old a last-period date may be before it is
	// no longer trusted.
	StaleAfterDays = 60
	lunarMonthDays = 29.53
)

// A known new moon, used as day zero of the lunar fallback cycle.
var lunarReference = time.Date(2024, time.January, 11, 0, 0, 0, 0, time.UTC)

type Input struct {
	LastPeriod  *time.Time
	Irregular   bool
	CycleLength int
	Today       time.Time
}

// Resolve returns the phase for in.Today. Without a trustworthy last-period
// date (missing, irregular cycles, older than StaleAfterDays, or in the
// future) it follows the lunar cycle instead.
func Resolve(in Input) nutrition.Phase {
	if in.LastPeriod == nil || in.Irregular {
		return LunarPhase(in.Today)
	}
	days := DaysBetween(*in.LastPeriod, in.Today)
	if days < 0 || days > StaleAfterDays {
		return LunarPhase(in.Today)
	}
	length := in.CycleLength
	if length <= 0 {
		length = DefaultLength
	}
	return phaseForDay(days%length, length)
}

func phaseForDay(day, length int) nutrition.Phase {
	switch {
	case day <= 5:
		return nutrition.PhaseMenstrual
	case day <= length/2:
		return nutrition.PhaseFollicular
	case day <= int(math.Floor(float64(length)*0.55)):
		return nutrition.PhaseOvulatory
	default:
		return nutrition.PhaseLuteal
	}
}

// LunarPhase maps the day of the lunar month onto four roughly week-long
// phases. It depends only on the calendar date of today.
func LunarPhase(today time.Time) nutrition.Phase {
	day := math.Mod(float64(DaysBetween(lunarReference, today)), lunarMonthDays)
	if day < 0 {
		day += lunarMonthDays
	}
	switch {
	case day < 7:
		return nutrition.PhaseMenstrual
	case day < 14:
		return nutrition.PhaseFollicular
	case day < 21:
		return nutrition.PhaseOvulatory
	default:
		return nutrition.PhaseLuteal
	}
}

// DaysBetween counts whole calendar days (UTC) from from to to.
func DaysBetween(from, to time.Time) int {
	return int(civil(to).Sub(civil(from)).Hours() / 24)
}

func civil(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseLength reads a free-text cycle length such as "28" or "30 days".
// Anything unparsable or non-positive yields DefaultLength.
func ParseLength(raw string) int {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return DefaultLength
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n <= 0 {
		return DefaultLength
	}
	return n
}

// ParseDate reads YYYY-MM-DD or RFC 3339. It returns nil when raw is blank
// or unparsable.
func ParseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}
