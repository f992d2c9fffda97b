// Package models defines the records exchanged between the decision
// engine, the store, and the host daemon.
package models

import "time"

// ReasonCode explains the outcome of a single evaluation.
type ReasonCode string

const (
	ReasonBlockingDisabled     ReasonCode = "blocking_disabled"
	ReasonNonBlockableURL      ReasonCode = "non_blockable_url"
	ReasonInvalidURL           ReasonCode = "invalid_url"
	ReasonHardAllowlist        ReasonCode = "hard_allowlist"
	ReasonNoSiteMatch          ReasonCode = "no_site_match"
	ReasonAllowRuleMatch       ReasonCode = "allow_rule_match"
	ReasonPomodoroPaused       ReasonCode = "pomodoro_paused"
	ReasonPomodoroIdle         ReasonCode = "pomodoro_idle"
	ReasonBlockedPomodoroFocus ReasonCode = "blocked_pomodoro_focus"
	ReasonPomodoroBreak        ReasonCode = "pomodoro_break"
	ReasonBlockedSchedule      ReasonCode = "blocked_schedule"
	ReasonBlockedLimit         ReasonCode = "blocked_limit"
	ReasonBlockedScheduleLimit ReasonCode = "blocked_schedule_and_limit"
	ReasonAllowedRuleNotActive ReasonCode = "allowed_rule_not_active"
)

// ReasonCodes lists every valid reason code.
var ReasonCodes = []ReasonCode{
	ReasonBlockingDisabled,
	ReasonNonBlockableURL,
	ReasonInvalidURL,
	ReasonHardAllowlist,
	ReasonNoSiteMatch,
	ReasonAllowRuleMatch,
	ReasonPomodoroPaused,
	ReasonPomodoroIdle,
	ReasonBlockedPomodoroFocus,
	ReasonPomodoroBreak,
	ReasonBlockedSchedule,
	ReasonBlockedLimit,
	ReasonBlockedScheduleLimit,
	ReasonAllowedRuleNotActive,
}

// Blocked reports whether the reason denotes a blocking outcome.
func (r ReasonCode) Blocked() bool {
	switch r {
	case ReasonBlockedPomodoroFocus,
		ReasonBlockedSchedule,
		ReasonBlockedLimit,
		ReasonBlockedScheduleLimit:
		return true
	default:
		return false
	}
}

// Valid reports whether the reason is a member of the closed set.
func (r ReasonCode) Valid() bool {
	for _, v := range ReasonCodes {
		if r == v {
			return true
		}
	}

	return false
}

// Phase is one half of a Pomodoro cycle.
type Phase string

const (
	PhaseFocus Phase = "focus"
	PhaseBreak Phase = "break"
)

// Opposite returns the phase that follows p.
func (p Phase) Opposite() Phase {
	if p == PhaseFocus {
		return PhaseBreak
	}

	return PhaseFocus
}

// Period is the rolling window over which usage quota is tracked.
type Period string

const (
	PeriodDay  Period = "day"
	PeriodWeek Period = "week"
)

// TabID identifies a browser tab in the extension host.
type TabID int

// DecisionSnapshot is the persisted record of a past evaluation.
type DecisionSnapshot struct {
	URL            string     `json:"url"`
	Reason         ReasonCode `json:"reason"`
	MatchedPattern string     `json:"matched_pattern,omitempty"`
	At             int64      `json:"at"`
	Blocked        bool       `json:"blocked"`
}

// Runtime is the mutable per-profile record. It is persisted after every
// evaluation and only mutated through values returned by the engine.
type Runtime struct {
	LastDecisionByTab    map[TabID]DecisionSnapshot `json:"last_decision_by_tab,omitempty"`
	BlockedTabIDs        map[TabID]bool             `json:"blocked_tab_ids,omitempty"`
	PomodoroPhase        Phase                      `json:"pomodoro_phase,omitempty"`
	PomodoroPendingPhase Phase                      `json:"pomodoro_pending_phase,omitempty"`
	UsageSeconds         uint64                     `json:"usage_seconds_current_period"`
	PeriodStart          int64                      `json:"period_start"`
	LastTick             int64                      `json:"last_tick"`
	PomodoroPhaseStart   int64                      `json:"pomodoro_phase_start"`
	PomodoroPhaseEnd     int64                      `json:"pomodoro_phase_end"`
	PomodoroActive       bool                       `json:"pomodoro_active"`
	PomodoroPaused       bool                       `json:"pomodoro_paused"`
}

// Clone returns a deep copy of the runtime so that engine calls never
// alias the caller's maps.
func (r Runtime) Clone() Runtime {
	out := r

	if r.LastDecisionByTab != nil {
		out.LastDecisionByTab = make(
			map[TabID]DecisionSnapshot,
			len(r.LastDecisionByTab),
		)
		for k, v := range r.LastDecisionByTab {
			out.LastDecisionByTab[k] = v
		}
	}

	if r.BlockedTabIDs != nil {
		out.BlockedTabIDs = make(map[TabID]bool, len(r.BlockedTabIDs))
		for k, v := range r.BlockedTabIDs {
			out.BlockedTabIDs[k] = v
		}
	}

	return out
}

// PomodoroState is a read-only projection of the Pomodoro machine.
type PomodoroState struct {
	Phase            Phase `json:"phase,omitempty"`
	PendingPhase     Phase `json:"pending_phase,omitempty"`
	RemainingSeconds int64 `json:"remaining_seconds"`
	Enabled          bool  `json:"enabled"`
	Active           bool  `json:"active"`
	Paused           bool  `json:"paused"`
}

// Decision is the outcome of a single evaluation. It is produced fresh
// per call and owned by the caller; it is never persisted as-is.
type Decision struct {
	Reason         ReasonCode    `json:"reason"`
	MatchedPattern string        `json:"matched_pattern,omitempty"`
	Pomodoro       PomodoroState `json:"pomodoro"`
	NextUnblockAt  int64         `json:"next_unblock_at"`
	Blocked        bool          `json:"blocked"`
	Trackable      bool          `json:"trackable"`
}

// Snapshot converts a decision into its persistable form.
func (d Decision) Snapshot(url string, now time.Time) DecisionSnapshot {
	return DecisionSnapshot{
		URL:            url,
		Blocked:        d.Blocked,
		Reason:         d.Reason,
		MatchedPattern: d.MatchedPattern,
		At:             now.Unix(),
	}
}
