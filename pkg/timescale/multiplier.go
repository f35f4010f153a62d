// Package timescale converts reporting timescales into annualization factors.
package timescale

import (
	"strings"

	"github.com/carllingstrom/AI-Delning-sub001/pkg/constants"
)

// OneTime is the timescale token for a non-recurring value.
const OneTime = "one_time"

var multipliers = map[string]float64{
	"hour":     constants.HoursPerYear,
	"per_hour": constants.HoursPerYear,
	"timme":    constants.HoursPerYear,

	"day":     constants.DaysPerYear,
	"per_day": constants.DaysPerYear,
	"dag":     constants.DaysPerYear,

	"week":      constants.WeeksPerYear,
	"per_week":  constants.WeeksPerYear,
	"vecka":     constants.WeeksPerYear,
	"per_vecka": constants.WeeksPerYear,

	"month":     constants.MonthsPerYear,
	"per_month": constants.MonthsPerYear,
	"månad":     constants.MonthsPerYear,
	"per_månad": constants.MonthsPerYear,

	"year":     1,
	"per_year": 1,
	"år":       1,
	"per_år":   1,

	OneTime:  1,
	"engång": 1,
}

// Multiplier returns the factor converting a per-timescale quantity into an
// annual quantity. Unknown or empty tokens yield 1.
func Multiplier(timescale string) float64 {
	if m, ok := multipliers[Normalize(timescale)]; ok {
		return m
	}
	return 1
}

// Normalize lower-cases and trims a timescale token.
func Normalize(timescale string) string {
	return strings.ToLower(strings.TrimSpace(timescale))
}

// IsOneTime reports whether the token denotes a non-recurring value.
func IsOneTime(timescale string) bool {
	n := Normalize(timescale)
	return n == OneTime || n == "engång"
}
