package pomodoro

import (
	"testing"
	"time"

	"github.com/barricade-app/barricade/config"
	"github.com/barricade-app/barricade/internal/models"
)

func testConfig() *config.Blocker {
	return &config.Blocker{
		PomodoroEnabled:      true,
		PomodoroFocusMinutes: 25,
		PomodoroBreakMinutes: 5,
	}
}

func TestStartBeginsFocusPhase(t *testing.T) {
	cfg := testConfig()
	now := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)

	rt := Start(models.Runtime{}, cfg, now)

	if !rt.PomodoroActive || rt.PomodoroPaused {
		t.Fatal("expected an active, unpaused machine")
	}

	if rt.PomodoroPhase != models.PhaseFocus {
		t.Errorf("expected focus phase, but got: %s", rt.PomodoroPhase)
	}

	if want := now.Add(25 * time.Minute).Unix(); rt.PomodoroPhaseEnd != want {
		t.Errorf("expected phase end %d, but got: %d", want, rt.PomodoroPhaseEnd)
	}
}

func TestAdvancePausesAtPhaseEnd(t *testing.T) {
	cfg := testConfig()
	now := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)

	rt := Start(models.Runtime{}, cfg, now)

	// one second before the boundary nothing happens
	rt = Advance(rt, cfg, now.Add(25*time.Minute-time.Second))
	if !rt.PomodoroActive {
		t.Fatal("phase ended early")
	}

	// at the boundary the machine pauses with the break pending
	rt = Advance(rt, cfg, now.Add(25*time.Minute))

	if rt.PomodoroActive {
		t.Fatal("expected the phase to have ended")
	}

	if !rt.PomodoroPaused {
		t.Fatal("expected the machine to be paused")
	}

	if rt.PomodoroPendingPhase != models.PhaseBreak {
		t.Errorf(
			"expected pending break phase, but got: %s",
			rt.PomodoroPendingPhase,
		)
	}

	if rt.PomodoroPhase != "" || rt.PomodoroPhaseEnd != 0 {
		t.Error("phase fields should be cleared while paused")
	}

	// the machine never auto-starts the next phase, no matter how much
	// time passes
	rt = Advance(rt, cfg, now.Add(3*time.Hour))
	if !rt.PomodoroPaused || rt.PomodoroActive {
		t.Error("a paused machine must wait for an explicit start")
	}
}

func TestStartResumesPendingPhase(t *testing.T) {
	cfg := testConfig()
	now := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)

	rt := Start(models.Runtime{}, cfg, now)
	rt = Advance(rt, cfg, now.Add(25*time.Minute))

	resumeAt := now.Add(40 * time.Minute)
	rt = Start(rt, cfg, resumeAt)

	if rt.PomodoroPhase != models.PhaseBreak {
		t.Fatalf("expected break phase, but got: %s", rt.PomodoroPhase)
	}

	if want := resumeAt.Add(5 * time.Minute).Unix(); rt.PomodoroPhaseEnd != want {
		t.Errorf("expected phase end %d, but got: %d", want, rt.PomodoroPhaseEnd)
	}

	if rt.PomodoroPendingPhase != "" {
		t.Error("resuming should clear the pending phase")
	}

	// the cycle alternates: the break's pending phase is focus
	rt = Advance(rt, cfg, resumeAt.Add(5*time.Minute))
	if rt.PomodoroPendingPhase != models.PhaseFocus {
		t.Errorf(
			"expected pending focus phase, but got: %s",
			rt.PomodoroPendingPhase,
		)
	}
}

func TestStopClearsAllState(t *testing.T) {
	cfg := testConfig()
	now := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)

	rt := Start(models.Runtime{}, cfg, now)
	rt = Stop(rt)

	if rt.PomodoroActive || rt.PomodoroPaused {
		t.Error("expected an idle machine")
	}

	if rt.PomodoroPhase != "" || rt.PomodoroPendingPhase != "" {
		t.Error("expected phase fields to be cleared")
	}

	if rt.PomodoroPhaseStart != 0 || rt.PomodoroPhaseEnd != 0 {
		t.Error("expected phase timestamps to be cleared")
	}
}

func TestAdvanceStopsWhenDisabled(t *testing.T) {
	cfg := testConfig()
	now := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)

	rt := Start(models.Runtime{}, cfg, now)

	cfg.PomodoroEnabled = false

	rt = Advance(rt, cfg, now.Add(time.Minute))

	if rt.PomodoroActive || rt.PomodoroPaused {
		t.Error("disabling the timer should force the machine to idle")
	}
}

func TestSnapshot(t *testing.T) {
	cfg := testConfig()
	now := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)

	rt := Start(models.Runtime{}, cfg, now)

	s := Snapshot(rt, cfg, now.Add(10*time.Minute))

	if !s.Enabled || !s.Active {
		t.Fatal("expected an enabled, active snapshot")
	}

	if s.RemainingSeconds != 15*60 {
		t.Errorf("expected 900 seconds remaining, but got: %d", s.RemainingSeconds)
	}

	// remaining time never goes negative
	s = Snapshot(rt, cfg, now.Add(time.Hour))
	if s.RemainingSeconds != 0 {
		t.Errorf("expected 0 seconds remaining, but got: %d", s.RemainingSeconds)
	}
}
