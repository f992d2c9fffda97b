// Package pomodoro advances the two-phase focus/break timer. The
// machine has three states: idle (never started or explicitly stopped),
// running a phase, and paused at a phase boundary awaiting explicit
// resumption. It never auto-starts the next phase.
package pomodoro

import (
	"time"

	"github.com/barricade-app/barricade/config"
	"github.com/barricade-app/barricade/internal/models"
)

// PhaseDuration returns the configured length of a phase.
func PhaseDuration(cfg *config.Blocker, phase models.Phase) time.Duration {
	mins := cfg.PomodoroFocusMinutes
	if phase == models.PhaseBreak {
		mins = cfg.PomodoroBreakMinutes
	}

	return time.Duration(mins) * time.Minute
}

// Start begins a session. From the paused state it resumes exactly the
// pending phase; otherwise it starts a fresh focus phase. Calling Start
// while already running restarts the current phase's timer, so callers
// should guard against restarting an active phase.
func Start(
	rt models.Runtime,
	cfg *config.Blocker,
	now time.Time,
) models.Runtime {
	phase := models.PhaseFocus

	if rt.PomodoroPaused && rt.PomodoroPendingPhase != "" {
		phase = rt.PomodoroPendingPhase
	}

	rt.PomodoroActive = true
	rt.PomodoroPaused = false
	rt.PomodoroPendingPhase = ""
	rt.PomodoroPhase = phase
	rt.PomodoroPhaseStart = now.Unix()
	rt.PomodoroPhaseEnd = now.Add(PhaseDuration(cfg, phase)).Unix()

	return rt
}

// Advance observes the clock. A running phase whose end has passed
// transitions to the paused state with the opposite phase pending; a
// human action is required to continue. Disabling Pomodoro in the
// config forces the machine to idle.
func Advance(
	rt models.Runtime,
	cfg *config.Blocker,
	now time.Time,
) models.Runtime {
	if !cfg.PomodoroEnabled {
		return Stop(rt)
	}

	if rt.PomodoroActive && now.Unix() >= rt.PomodoroPhaseEnd {
		pending := rt.PomodoroPhase.Opposite()

		rt.PomodoroActive = false
		rt.PomodoroPaused = true
		rt.PomodoroPendingPhase = pending
		rt.PomodoroPhase = ""
		rt.PomodoroPhaseStart = 0
		rt.PomodoroPhaseEnd = 0
	}

	return rt
}

// Stop unconditionally forces the machine to idle, clearing all phase
// fields.
func Stop(rt models.Runtime) models.Runtime {
	rt.PomodoroActive = false
	rt.PomodoroPaused = false
	rt.PomodoroPhase = ""
	rt.PomodoroPendingPhase = ""
	rt.PomodoroPhaseStart = 0
	rt.PomodoroPhaseEnd = 0

	return rt
}

// Snapshot is a read-only projection of the machine's state.
func Snapshot(
	rt models.Runtime,
	cfg *config.Blocker,
	now time.Time,
) models.PomodoroState {
	s := models.PomodoroState{
		Enabled:      cfg.PomodoroEnabled,
		Active:       rt.PomodoroActive,
		Phase:        rt.PomodoroPhase,
		Paused:       rt.PomodoroPaused,
		PendingPhase: rt.PomodoroPendingPhase,
	}

	if rt.PomodoroActive {
		remaining := rt.PomodoroPhaseEnd - now.Unix()
		if remaining < 0 {
			remaining = 0
		}

		s.RemainingSeconds = remaining
	}

	return s
}
