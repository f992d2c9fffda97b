package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/barricade-app/barricade/config"
	"github.com/barricade-app/barricade/internal/models"
	"github.com/barricade-app/barricade/store"
)

func testServer(t *testing.T) (*Server, store.DB) {
	t.Helper()

	db, err := store.NewClient(filepath.Join(t.TempDir(), "barricade.db"))
	if err != nil {
		t.Fatalf("unexpected error opening the database: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	cfg := config.Normalize(&config.Blocker{
		Enabled:         true,
		SetName:         "Distractions",
		SitePatterns:    "reddit.com *.youtube.com",
		ScheduleDays:    []bool{true, true, true, true, true, true, true},
		TimeRanges:      "0000-2400",
		PomodoroEnabled: true,
	}, config.DefaultHardAllowlist)

	return New(db, cfg), db
}

func do(
	t *testing.T,
	s *Server,
	method, path string,
	body any,
) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader

	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("unexpected error encoding body: %v", err)
		}

		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()

	s.routes().ServeHTTP(rec, req)

	return rec
}

func decodeDecision(t *testing.T, rec *httptest.ResponseRecorder) models.Decision {
	t.Helper()

	var resp evaluateResponse

	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("unexpected error decoding response: %v", err)
	}

	return resp.Decision
}

func TestHealthz(t *testing.T) {
	s, _ := testServer(t)

	rec := do(t, s, http.MethodGet, "/healthz", nil)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, but got: %d", rec.Code)
	}
}

func TestEvaluateBlocksDuringFocusPhase(t *testing.T) {
	s, db := testServer(t)

	rec := do(t, s, http.MethodPost, "/pomodoro/start", "{}")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, but got: %d", rec.Code)
	}

	rec = do(t, s, http.MethodPost, "/evaluate", evaluateRequest{
		URL:   "https://reddit.com/r/golang",
		TabID: 3,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, but got: %d", rec.Code)
	}

	d := decodeDecision(t, rec)

	if d.Reason != models.ReasonBlockedPomodoroFocus || !d.Blocked {
		t.Fatalf("expected a focus block, but got: %+v", d)
	}

	rt, err := db.GetRuntime()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !rt.BlockedTabIDs[3] {
		t.Error("expected tab 3 to be recorded as blocked")
	}

	if rt.LastDecisionByTab[3].URL != "https://reddit.com/r/golang" {
		t.Error("expected the tab's last decision to be recorded")
	}

	// an allowed navigation in the same tab clears the blocked flag
	rec = do(t, s, http.MethodPost, "/evaluate", evaluateRequest{
		URL:   "https://golang.org/doc",
		TabID: 3,
	})

	d = decodeDecision(t, rec)
	if d.Blocked {
		t.Fatalf("expected an allowed navigation, but got: %+v", d)
	}

	rt, err = db.GetRuntime()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rt.BlockedTabIDs[3] {
		t.Error("expected tab 3 to be cleared after an allowed navigation")
	}
}

func TestEvaluateRecordsHistory(t *testing.T) {
	s, db := testServer(t)

	do(t, s, http.MethodPost, "/pomodoro/start", "{}")
	do(t, s, http.MethodPost, "/evaluate", evaluateRequest{
		URL:   "https://reddit.com/",
		TabID: 1,
	})

	snaps, err := db.GetDecisions(
		time.Now().Add(-time.Hour),
		time.Now().Add(time.Hour),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(snaps) != 1 {
		t.Fatalf("expected 1 recorded decision, but got: %d", len(snaps))
	}

	if snaps[0].Reason != models.ReasonBlockedPomodoroFocus {
		t.Errorf("unexpected recorded reason: %q", snaps[0].Reason)
	}
}

func TestEvaluateRejectsBadBody(t *testing.T) {
	s, _ := testServer(t)

	rec := do(t, s, http.MethodPost, "/evaluate", "{not json")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, but got: %d", rec.Code)
	}
}

func TestTickUpdatesLastTick(t *testing.T) {
	s, db := testServer(t)

	rec := do(t, s, http.MethodPost, "/tick", evaluateRequest{
		URL:     "https://reddit.com/",
		Focused: true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, but got: %d", rec.Code)
	}

	rt, err := db.GetRuntime()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rt.LastTick == 0 {
		t.Error("expected the tick timestamp to be recorded")
	}
}

func TestPomodoroLifecycle(t *testing.T) {
	s, _ := testServer(t)

	var state models.PomodoroState

	rec := do(t, s, http.MethodGet, "/pomodoro", nil)
	if err := json.NewDecoder(rec.Body).Decode(&state); err != nil {
		t.Fatalf("unexpected error decoding state: %v", err)
	}

	if state.Active || state.Paused {
		t.Fatalf("expected an idle machine, but got: %+v", state)
	}

	rec = do(t, s, http.MethodPost, "/pomodoro/start", "{}")
	if err := json.NewDecoder(rec.Body).Decode(&state); err != nil {
		t.Fatalf("unexpected error decoding state: %v", err)
	}

	if !state.Active || state.Phase != models.PhaseFocus {
		t.Fatalf("expected a running focus phase, but got: %+v", state)
	}

	if state.RemainingSeconds == 0 {
		t.Error("expected time remaining in the phase")
	}

	rec = do(t, s, http.MethodPost, "/pomodoro/stop", "{}")
	if err := json.NewDecoder(rec.Body).Decode(&state); err != nil {
		t.Fatalf("unexpected error decoding state: %v", err)
	}

	if state.Active || state.Paused {
		t.Errorf("expected an idle machine, but got: %+v", state)
	}
}

func TestPutConfigRejectsInvalidPolicyWhole(t *testing.T) {
	s, db := testServer(t)

	rec := do(t, s, http.MethodPut, "/config", config.Blocker{
		Enabled:      true,
		SitePatterns: "reddit.com /",
		ScheduleDays: []bool{true, true, true, true, true, true, true},
		TimeRanges:   "25AA-2900",
	})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, but got: %d", rec.Code)
	}

	var resp configResponse

	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("unexpected error decoding response: %v", err)
	}

	if resp.Valid || len(resp.Errors) == 0 {
		t.Fatalf("expected collected validation errors, but got: %+v", resp)
	}

	found := false

	for _, e := range resp.Errors {
		if strings.Contains(e, "Invalid site pattern '/'.") {
			found = true
		}
	}

	if !found {
		t.Errorf("expected the pattern error, but got: %v", resp.Errors)
	}

	// nothing was applied or persisted
	saved, err := db.GetConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if saved != nil {
		t.Error("an invalid policy must not be persisted")
	}

	if s.cfg.SitePatterns != "reddit.com *.youtube.com" {
		t.Error("an invalid policy must not be applied")
	}
}

func TestPutConfigAppliesValidPolicy(t *testing.T) {
	s, db := testServer(t)

	rec := do(t, s, http.MethodPut, "/config", config.Blocker{
		Enabled:         true,
		SetName:         "Weekends",
		SitePatterns:    "news.ycombinator.com",
		ScheduleDays:    []bool{true, false, false, false, false, false, true},
		TimeRanges:      "1000-2200",
		PomodoroEnabled: false,
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, but got: %d", rec.Code)
	}

	if s.cfg.SetName != "Weekends" {
		t.Errorf("expected the new policy to be live, got: %q", s.cfg.SetName)
	}

	saved, err := db.GetConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if saved == nil || saved.SetName != "Weekends" {
		t.Error("expected the new policy to be persisted")
	}

	if saved != nil && saved.UpdatedAt.IsZero() {
		t.Error("expected the update timestamp to be set")
	}

	rec = do(t, s, http.MethodGet, "/config", nil)

	var resp configResponse

	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("unexpected error decoding response: %v", err)
	}

	if resp.Config == nil || resp.Config.SetName != "Weekends" {
		t.Error("expected GET /config to reflect the saved policy")
	}
}
