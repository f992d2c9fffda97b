// Package quota computes rolling usage periods and accumulates active
// seconds against a budget.
package quota

import (
	"time"

	"github.com/barricade-app/barricade/internal/models"
	"github.com/barricade-app/barricade/internal/timeutil"
)

// PeriodStart returns the start of the period containing now: local
// midnight for a day period, local midnight of the most recent Sunday
// for a week period.
func PeriodStart(now time.Time, period models.Period) time.Time {
	if period == models.PeriodWeek {
		return timeutil.WeekStart(now)
	}

	return timeutil.RoundToStart(now)
}

// PeriodEnd returns the moment the period beginning at start expires.
func PeriodEnd(start time.Time, period models.Period) time.Time {
	if period == models.PeriodWeek {
		return start.Add(timeutil.SecondsInAWeek * time.Second)
	}

	return start.Add(timeutil.SecondsInADay * time.Second)
}

// RollIfNeeded resets accumulated usage when the clock has crossed into
// a new period. This is the only way usage resets; it is driven purely
// by clock comparison.
func RollIfNeeded(
	rt models.Runtime,
	period models.Period,
	now time.Time,
) models.Runtime {
	start := PeriodStart(now, period).Unix()

	if start != rt.PeriodStart {
		rt.UsageSeconds = 0
		rt.PeriodStart = start
	}

	return rt
}

// Accrue adds elapsed active seconds to the current period. Negative
// deltas (clock regression, suspend/resume) are clamped to zero so that
// usage never runs backwards.
func Accrue(rt models.Runtime, deltaSeconds int64) models.Runtime {
	if deltaSeconds > 0 {
		rt.UsageSeconds += uint64(deltaSeconds)
	}

	return rt
}

// Exceeded reports whether accumulated usage has reached the budget of
// limitMinutes.
func Exceeded(rt models.Runtime, limitMinutes uint) bool {
	return limitMinutes > 0 && rt.UsageSeconds >= uint64(limitMinutes)*60
}
