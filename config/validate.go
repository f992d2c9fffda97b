package config

import (
	"fmt"

	"github.com/barricade-app/barricade/internal/models"
	"github.com/barricade-app/barricade/internal/schedule"
	"github.com/barricade-app/barricade/internal/sitematch"
)

// Validate performs validation checks on a candidate policy, returning
// every problem found as a human-readable string. An empty result means
// the candidate is valid. Invalid input must never be partially
// applied; the caller rejects the whole save.
func Validate(c *Blocker) []string {
	var errs []string

	rules := sitematch.Compile(c.SitePatterns)
	errs = append(errs, rules.Errors...)

	ranges, rangeErrs := schedule.ParseRanges(c.TimeRanges)
	errs = append(errs, rangeErrs...)

	if len(c.ScheduleDays) != 7 {
		errs = append(errs, fmt.Sprintf(
			"Schedule must cover exactly 7 days, got %d.",
			len(c.ScheduleDays),
		))
	}

	errs = append(errs, validateLimit(c)...)

	if c.PomodoroEnabled {
		if c.PomodoroFocusMinutes == 0 {
			errs = append(
				errs,
				"Pomodoro focus minutes must be greater than zero.",
			)
		}

		if c.PomodoroBreakMinutes == 0 {
			errs = append(
				errs,
				"Pomodoro break minutes must be greater than zero.",
			)
		}
	}

	if c.Enabled {
		errs = append(errs, validateEnabled(c, rules, ranges)...)
	}

	return errs
}

// validateLimit checks that limit minutes and limit period are both set
// or both absent.
func validateLimit(c *Blocker) []string {
	var errs []string

	switch c.LimitPeriod {
	case "", models.PeriodDay, models.PeriodWeek:
	default:
		errs = append(errs, fmt.Sprintf(
			"Limit period must be 'day' or 'week', got '%s'.",
			c.LimitPeriod,
		))
	}

	if c.LimitMinutes > 0 && c.LimitPeriod == "" {
		errs = append(
			errs,
			"A usage limit requires a limit period ('day' or 'week').",
		)
	}

	if c.LimitMinutes == 0 && c.LimitPeriod != "" {
		errs = append(
			errs,
			"A limit period requires limit minutes greater than zero.",
		)
	}

	return errs
}

// validateEnabled applies the constraints that only hold when blocking
// is switched on: at least one block pattern, and at least one active
// mechanism among schedule, usage limit, and Pomodoro.
func validateEnabled(
	c *Blocker,
	rules *sitematch.RuleSet,
	ranges []schedule.Range,
) []string {
	var errs []string

	if len(rules.Block) == 0 {
		errs = append(
			errs,
			"At least one block site pattern is required when blocking is enabled.",
		)
	}

	anyDay := false

	for _, d := range c.ScheduleDays {
		if d {
			anyDay = true
			break
		}
	}

	hasSchedule := anyDay && len(ranges) > 0
	hasLimit := c.LimitMinutes > 0 && c.LimitPeriod != ""

	if !hasSchedule && !hasLimit && !c.PomodoroEnabled {
		errs = append(
			errs,
			"Enable a schedule, a usage limit, or the Pomodoro timer for blocking to take effect.",
		)
	}

	return errs
}
