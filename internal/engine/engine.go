// Package engine decides, for a given URL and timestamp, whether
// navigation should be blocked under the active policy. Evaluate is a
// pure function: it performs no I/O, never fails, and never mutates its
// inputs — callers must persist the returned Runtime, not the one they
// passed in, because period rollover and Pomodoro auto-pause happen
// inside the call even when the blocking outcome is unchanged.
package engine

import (
	"net/url"
	"strings"
	"time"

	"github.com/barricade-app/barricade/config"
	"github.com/barricade-app/barricade/internal/models"
	"github.com/barricade-app/barricade/internal/pomodoro"
	"github.com/barricade-app/barricade/internal/quota"
	"github.com/barricade-app/barricade/internal/schedule"
	"github.com/barricade-app/barricade/internal/sitematch"
)

var blockableSchemes = []string{"http://", "https://", "file://"}

// Evaluate applies the blocking policy to a single URL at a single
// moment. Precedence is strict: the first applicable rule decides.
func Evaluate(
	cfg *config.Blocker,
	rt models.Runtime,
	rules *sitematch.RuleSet,
	ranges []schedule.Range,
	rawURL string,
	now time.Time,
	extensionOrigin string,
) (models.Decision, models.Runtime) {
	rt = rt.Clone()

	if cfg.LimitPeriod != "" {
		rt = quota.RollIfNeeded(rt, cfg.LimitPeriod, now)
	}

	rt = pomodoro.Advance(rt, cfg, now)

	d := models.Decision{
		Pomodoro: pomodoro.Snapshot(rt, cfg, now),
	}

	if !cfg.Enabled {
		d.Reason = models.ReasonBlockingDisabled
		return d, rt
	}

	target := strings.ToLower(strings.TrimSpace(rawURL))

	if !blockableScheme(target) || isOwnOrigin(target, extensionOrigin) {
		d.Reason = models.ReasonNonBlockableURL
		return d, rt
	}

	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Hostname() == "" && u.Scheme != "file" {
		d.Reason = models.ReasonInvalidURL
		return d, rt
	}

	if onHardAllowlist(u, cfg.AllowlistHard) {
		d.Reason = models.ReasonHardAllowlist
		return d, rt
	}

	pattern, matched := rules.FirstBlockMatch(u)
	if !matched {
		d.Reason = models.ReasonNoSiteMatch
		return d, rt
	}

	d.MatchedPattern = pattern

	if _, allowed := rules.FirstAllowMatch(u); allowed {
		d.Reason = models.ReasonAllowRuleMatch
		return d, rt
	}

	if cfg.PomodoroEnabled {
		return decidePomodoro(d, rt)
	}

	return decideScheduleAndLimit(d, cfg, rt, ranges, now)
}

// decidePomodoro resolves a matched URL against the Pomodoro machine.
// Only a running focus phase blocks; every other state allows without
// accruing usage.
func decidePomodoro(
	d models.Decision,
	rt models.Runtime,
) (models.Decision, models.Runtime) {
	switch {
	case rt.PomodoroPaused:
		d.Reason = models.ReasonPomodoroPaused
	case !rt.PomodoroActive:
		d.Reason = models.ReasonPomodoroIdle
	case rt.PomodoroPhase == models.PhaseFocus:
		d.Blocked = true
		d.Reason = models.ReasonBlockedPomodoroFocus
		d.NextUnblockAt = rt.PomodoroPhaseEnd
		d.Trackable = true
	default:
		d.Reason = models.ReasonPomodoroBreak
	}

	return d, rt
}

// decideScheduleAndLimit resolves a matched URL in schedule/quota mode.
// The URL is trackable regardless of the block outcome so that usage
// accrues before the budget is exhausted.
func decideScheduleAndLimit(
	d models.Decision,
	cfg *config.Blocker,
	rt models.Runtime,
	ranges []schedule.Range,
	now time.Time,
) (models.Decision, models.Runtime) {
	scheduleActive, boundary := schedule.IsActive(
		now,
		cfg.ScheduleDays,
		ranges,
	)

	limitExceeded := cfg.LimitPeriod != "" &&
		quota.Exceeded(rt, cfg.LimitMinutes)

	d.Trackable = true
	d.Blocked = scheduleActive || limitExceeded

	switch {
	case scheduleActive && limitExceeded:
		d.Reason = models.ReasonBlockedScheduleLimit
	case scheduleActive:
		d.Reason = models.ReasonBlockedSchedule
	case limitExceeded:
		d.Reason = models.ReasonBlockedLimit
	default:
		d.Reason = models.ReasonAllowedRuleNotActive
	}

	if scheduleActive {
		d.NextUnblockAt = boundary.Unix()
	}

	if limitExceeded {
		end := quota.PeriodEnd(
			time.Unix(rt.PeriodStart, 0).In(now.Location()),
			cfg.LimitPeriod,
		).Unix()

		if end > d.NextUnblockAt {
			d.NextUnblockAt = end
		}
	}

	return d, rt
}

func blockableScheme(target string) bool {
	for _, scheme := range blockableSchemes {
		if strings.HasPrefix(target, scheme) {
			return true
		}
	}

	return false
}

func isOwnOrigin(target, extensionOrigin string) bool {
	origin := strings.ToLower(strings.TrimSpace(extensionOrigin))

	return origin != "" && strings.HasPrefix(target, origin)
}

// onHardAllowlist reports whether the URL's hostname matches an entry
// exactly or is a subdomain of one. The hard allowlist always wins: it
// is evaluated before schedule, quota, and Pomodoro state so the
// product's own hosts can never be self-blocked.
func onHardAllowlist(u *url.URL, allowlist []string) bool {
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}

	for _, entry := range allowlist {
		entry = strings.TrimPrefix(entry, "*.")

		if host == entry || strings.HasSuffix(host, "."+entry) {
			return true
		}
	}

	return false
}
