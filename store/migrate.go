package store

import (
	"encoding/json"

	"github.com/barricade-app/barricade/config"
	"github.com/barricade-app/barricade/internal/models"
)

// coerceRuntime turns a persisted runtime record of any age into a
// usable one. Corrupt or old-schema data is coerced field-by-field to
// safe defaults rather than surfaced as an error: the engine must never
// fail to produce a decision because of bad prior state.
func coerceRuntime(raw []byte) models.Runtime {
	var rt models.Runtime

	if len(raw) > 0 {
		// a partial decode keeps whichever fields did parse
		_ = json.Unmarshal(raw, &rt)
	}

	return repairRuntime(rt)
}

// repairRuntime restores the record's invariants: phase bounds must be
// ordered while active, paused and active are mutually exclusive, and a
// pending phase exists exactly when paused.
func repairRuntime(rt models.Runtime) models.Runtime {
	if rt.PomodoroActive && rt.PomodoroPhaseEnd <= rt.PomodoroPhaseStart {
		rt.PomodoroActive = false
		rt.PomodoroPhase = ""
		rt.PomodoroPhaseStart = 0
		rt.PomodoroPhaseEnd = 0
	}

	if rt.PomodoroActive && rt.PomodoroPhase != models.PhaseFocus &&
		rt.PomodoroPhase != models.PhaseBreak {
		rt.PomodoroPhase = models.PhaseFocus
	}

	if rt.PomodoroPaused && rt.PomodoroActive {
		rt.PomodoroPaused = false
	}

	if rt.PomodoroPaused {
		if rt.PomodoroPendingPhase != models.PhaseFocus &&
			rt.PomodoroPendingPhase != models.PhaseBreak {
			rt.PomodoroPendingPhase = models.PhaseFocus
		}
	} else {
		rt.PomodoroPendingPhase = ""
	}

	if rt.PeriodStart < 0 {
		rt.PeriodStart = 0
	}

	if rt.LastTick < 0 {
		rt.LastTick = 0
	}

	return rt
}

// coerceConfig decodes a persisted policy, falling back to a normalized
// default policy when the record cannot be read.
func coerceConfig(raw []byte) *config.Blocker {
	var cfg config.Blocker

	_ = json.Unmarshal(raw, &cfg)

	return config.Normalize(&cfg, config.DefaultHardAllowlist)
}
