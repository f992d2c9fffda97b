// Package server exposes the decision engine to the browser extension
// over a localhost HTTP API and runs the periodic tick that observes
// clock-driven transitions between navigations.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/pterm/pterm"

	"github.com/barricade-app/barricade/config"
	"github.com/barricade-app/barricade/internal/engine"
	"github.com/barricade-app/barricade/internal/models"
	"github.com/barricade-app/barricade/internal/pomodoro"
	"github.com/barricade-app/barricade/internal/quota"
	"github.com/barricade-app/barricade/internal/schedule"
	"github.com/barricade-app/barricade/internal/sitematch"
	"github.com/barricade-app/barricade/store"
)

// tickInterval is how often clock-driven transitions (quota rollover,
// Pomodoro phase completion) are observed without a navigation event.
const tickInterval = 30 * time.Second

var errInvalidBody = errors.New("request body could not be decoded")

type errorHandler func(w http.ResponseWriter, r *http.Request) error

func (h errorHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	err := h(w, r)
	if err != nil {
		slog.Error("request failed", "path", r.URL.Path, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Server owns the single mutable Runtime record. All evaluations are
// serialized through its mutex; two concurrent callers mutating
// independently and persisting last-write-wins would silently drop
// quota accrual or Pomodoro transitions.
type Server struct {
	db     store.DB
	cfg    *config.Blocker
	rules  *sitematch.RuleSet
	ranges []schedule.Range
	mu     sync.Mutex
	Debug  bool
}

// New compiles the policy and returns a server ready to run.
func New(db store.DB, cfg *config.Blocker) *Server {
	s := &Server{db: db}
	s.setConfig(cfg)

	return s
}

func (s *Server) setConfig(cfg *config.Blocker) {
	ranges, rangeErrs := schedule.ParseRanges(cfg.TimeRanges)
	for _, e := range rangeErrs {
		slog.Warn("dropping malformed time range", "error", e)
	}

	s.cfg = cfg
	s.rules = sitematch.Compile(cfg.SitePatterns)
	s.ranges = ranges
}

type evaluateRequest struct {
	URL     string       `json:"url"`
	TabID   models.TabID `json:"tab_id"`
	Focused bool         `json:"focused"`
}

type evaluateResponse struct {
	Decision models.Decision `json:"decision"`
}

// handleEvaluate evaluates a navigation, persists the returned runtime,
// and records the decision for reporting.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) error {
	var req evaluateRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, errInvalidBody.Error(), http.StatusBadRequest)
		return nil
	}

	if s.Debug {
		slog.Debug(spew.Sdump(req))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()

	rt, err := s.db.GetRuntime()
	if err != nil {
		return err
	}

	d, rt := engine.Evaluate(
		s.cfg,
		rt,
		s.rules,
		s.ranges,
		req.URL,
		now,
		s.cfg.ExtensionOrigin,
	)

	rt = recordTabDecision(rt, req.TabID, d, req.URL, now)

	if err := s.db.SaveRuntime(rt); err != nil {
		return err
	}

	if err := s.db.AppendDecision(d.Snapshot(req.URL, now), now); err != nil {
		slog.Warn("failed to record decision", "error", err)
	}

	if d.Blocked {
		s.runBlockHook(req.URL)
	}

	return writeJSON(w, evaluateResponse{Decision: d})
}

// handleTick accrues active usage for the focused tab and advances
// clock-driven state. The extension posts this on a fixed cadence.
func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) error {
	var req evaluateRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, errInvalidBody.Error(), http.StatusBadRequest)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()

	rt, err := s.db.GetRuntime()
	if err != nil {
		return err
	}

	d, rt := engine.Evaluate(
		s.cfg,
		rt,
		s.rules,
		s.ranges,
		req.URL,
		now,
		s.cfg.ExtensionOrigin,
	)

	// attribute elapsed time only when the host window is focused and
	// the visited URL counts toward the quota
	if req.Focused && d.Trackable && rt.LastTick > 0 {
		rt = quota.Accrue(rt, now.Unix()-rt.LastTick)
	}

	rt.LastTick = now.Unix()

	if err := s.db.SaveRuntime(rt); err != nil {
		return err
	}

	return writeJSON(w, evaluateResponse{Decision: d})
}

// recordTabDecision maintains the per-tab bookkeeping owned by the
// orchestrator: the last decision for each tab, and the set of tabs
// currently redirected to the block page.
func recordTabDecision(
	rt models.Runtime,
	tab models.TabID,
	d models.Decision,
	url string,
	now time.Time,
) models.Runtime {
	if tab == 0 {
		return rt
	}

	if rt.LastDecisionByTab == nil {
		rt.LastDecisionByTab = make(map[models.TabID]models.DecisionSnapshot)
	}

	rt.LastDecisionByTab[tab] = d.Snapshot(url, now)

	if d.Blocked {
		if rt.BlockedTabIDs == nil {
			rt.BlockedTabIDs = make(map[models.TabID]bool)
		}

		rt.BlockedTabIDs[tab] = true
	} else {
		delete(rt.BlockedTabIDs, tab)
	}

	return rt
}

func (s *Server) handlePomodoroStart(
	w http.ResponseWriter,
	_ *http.Request,
) error {
	return s.mutatePomodoro(w, func(rt models.Runtime, now time.Time) models.Runtime {
		return pomodoro.Start(rt, s.cfg, now)
	})
}

func (s *Server) handlePomodoroStop(
	w http.ResponseWriter,
	_ *http.Request,
) error {
	return s.mutatePomodoro(w, func(rt models.Runtime, _ time.Time) models.Runtime {
		return pomodoro.Stop(rt)
	})
}

func (s *Server) mutatePomodoro(
	w http.ResponseWriter,
	mutate func(models.Runtime, time.Time) models.Runtime,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()

	rt, err := s.db.GetRuntime()
	if err != nil {
		return err
	}

	rt = mutate(rt.Clone(), now)

	if err := s.db.SaveRuntime(rt); err != nil {
		return err
	}

	return writeJSON(w, pomodoro.Snapshot(rt, s.cfg, now))
}

func (s *Server) handlePomodoroState(
	w http.ResponseWriter,
	_ *http.Request,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()

	rt, err := s.db.GetRuntime()
	if err != nil {
		return err
	}

	rt = pomodoro.Advance(rt.Clone(), s.cfg, now)

	if err := s.db.SaveRuntime(rt); err != nil {
		return err
	}

	return writeJSON(w, pomodoro.Snapshot(rt, s.cfg, now))
}

type configResponse struct {
	Errors []string        `json:"errors,omitempty"`
	Config *config.Blocker `json:"config,omitempty"`
	Valid  bool            `json:"valid"`
}

func (s *Server) handleGetConfig(
	w http.ResponseWriter,
	_ *http.Request,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return writeJSON(w, configResponse{Valid: true, Config: s.cfg})
}

// handlePutConfig validates and applies a policy save. Invalid input is
// rejected whole; every collected error is returned so the settings UI
// can show them together.
func (s *Server) handlePutConfig(
	w http.ResponseWriter,
	r *http.Request,
) error {
	var candidate config.Blocker

	if err := json.NewDecoder(r.Body).Decode(&candidate); err != nil {
		http.Error(w, errInvalidBody.Error(), http.StatusBadRequest)
		return nil
	}

	normalized := config.Normalize(&candidate, config.DefaultHardAllowlist)

	if errs := config.Validate(normalized); len(errs) > 0 {
		w.WriteHeader(http.StatusUnprocessableEntity)
		return writeJSON(w, configResponse{Valid: false, Errors: errs})
	}

	normalized.UpdatedAt = time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.SaveConfig(normalized); err != nil {
		return err
	}

	s.setConfig(normalized)

	slog.Info("policy updated", "set", normalized.SetName)

	return writeJSON(w, configResponse{Valid: true, Config: normalized})
}

func writeJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")

	return json.NewEncoder(w).Encode(v)
}

// tick advances clock-driven state on a fixed cadence so that quota
// rollover and Pomodoro phase completion are observed promptly rather
// than only at the next navigation.
func (s *Server) tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()

	rt, err := s.db.GetRuntime()
	if err != nil {
		slog.Error("tick: loading runtime failed", "error", err)
		return
	}

	next := rt.Clone()

	if s.cfg.LimitPeriod != "" {
		next = quota.RollIfNeeded(next, s.cfg.LimitPeriod, now)
	}

	next = pomodoro.Advance(next, s.cfg, now)

	// a running phase that just completed pauses the machine; tell the
	// user it is their move
	if rt.PomodoroActive && next.PomodoroPaused {
		s.notifyPhaseComplete(rt.PomodoroPhase, next.PomodoroPendingPhase)
	}

	if err := s.db.SaveRuntime(next); err != nil {
		slog.Error("tick: saving runtime failed", "error", err)
	}
}

// routes builds the extension API surface.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("POST /evaluate", errorHandler(s.handleEvaluate))
	mux.Handle("POST /tick", errorHandler(s.handleTick))
	mux.Handle("POST /pomodoro/start", errorHandler(s.handlePomodoroStart))
	mux.Handle("POST /pomodoro/stop", errorHandler(s.handlePomodoroStop))
	mux.Handle("GET /pomodoro", errorHandler(s.handlePomodoroState))
	mux.Handle("GET /config", errorHandler(s.handleGetConfig))
	mux.Handle("PUT /config", errorHandler(s.handlePutConfig))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return mux
}

// Run starts the tick loop and serves the extension API until the
// listener fails.
func (s *Server) Run() error {
	mux := s.routes()

	go func() {
		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()

		for range ticker.C {
			s.tick()
		}
	}()

	addr := fmt.Sprintf("127.0.0.1:%d", s.cfg.DaemonPort)

	pterm.Info.Printfln("starting server on %s", addr)
	slog.Info("barricade daemon listening", "addr", addr)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return srv.ListenAndServe()
}
