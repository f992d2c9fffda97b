package models

import (
	"testing"
	"time"
)

func TestReasonCodes(t *testing.T) {
	blocked := map[ReasonCode]bool{
		ReasonBlockedPomodoroFocus: true,
		ReasonBlockedSchedule:      true,
		ReasonBlockedLimit:         true,
		ReasonBlockedScheduleLimit: true,
	}

	for _, r := range ReasonCodes {
		if !r.Valid() {
			t.Errorf("expected %q to be valid", r)
		}

		if r.Blocked() != blocked[r] {
			t.Errorf("expected Blocked() for %q to be %t", r, blocked[r])
		}
	}

	if ReasonCode("made_up").Valid() {
		t.Error("expected an unknown code to be invalid")
	}
}

func TestPhaseOpposite(t *testing.T) {
	if PhaseFocus.Opposite() != PhaseBreak {
		t.Error("expected focus to be followed by break")
	}

	if PhaseBreak.Opposite() != PhaseFocus {
		t.Error("expected break to be followed by focus")
	}
}

func TestRuntimeClone(t *testing.T) {
	rt := Runtime{
		LastDecisionByTab: map[TabID]DecisionSnapshot{
			1: {URL: "https://reddit.com/"},
		},
		BlockedTabIDs: map[TabID]bool{1: true},
	}

	clone := rt.Clone()
	clone.LastDecisionByTab[2] = DecisionSnapshot{}
	clone.BlockedTabIDs[2] = true

	if len(rt.LastDecisionByTab) != 1 || len(rt.BlockedTabIDs) != 1 {
		t.Error("expected the clone's maps to be independent")
	}
}

func TestDecisionSnapshot(t *testing.T) {
	now := time.Date(2025, 1, 6, 12, 0, 0, 0, time.UTC)

	d := Decision{
		Blocked:        true,
		Reason:         ReasonBlockedSchedule,
		MatchedPattern: "reddit.com",
	}

	snap := d.Snapshot("https://reddit.com/", now)

	if snap.URL != "https://reddit.com/" || !snap.Blocked {
		t.Errorf("unexpected snapshot: %+v", snap)
	}

	if snap.At != now.Unix() {
		t.Errorf("expected timestamp %d, but got: %d", now.Unix(), snap.At)
	}
}
