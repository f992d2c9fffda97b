package app

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/araddon/dateparse"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/barricade-app/barricade/config"
	"github.com/barricade-app/barricade/internal/engine"
	"github.com/barricade-app/barricade/internal/models"
	"github.com/barricade-app/barricade/internal/pomodoro"
	"github.com/barricade-app/barricade/internal/quota"
	"github.com/barricade-app/barricade/internal/schedule"
	"github.com/barricade-app/barricade/internal/sitematch"
	"github.com/barricade-app/barricade/report"
	"github.com/barricade-app/barricade/server"
	"github.com/barricade-app/barricade/store"
)

// firstNonEmptyString returns its first non-empty argument, or "" if
// all arguments are empty.
func firstNonEmptyString(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}

	return ""
}

// resolvePolicy prefers the policy saved through the extension over the
// config file.
func resolvePolicy(db store.DB, fallback *config.Blocker) *config.Blocker {
	saved, err := db.GetConfig()
	if err == nil && saved != nil {
		return saved
	}

	return fallback
}

// loadPolicy resolves the effective policy and applies command-line
// overrides to whichever source won.
func loadPolicy(ctx *cli.Context, db store.DB) *config.Blocker {
	cfg := resolvePolicy(db, config.Get(ctx))

	config.ApplyFlags(cfg, ctx)

	return cfg
}

// serveAction starts the extension API server with the effective
// policy, so a policy saved through the extension survives a daemon
// restart.
func serveAction(ctx *cli.Context) error {
	db, err := store.NewClient(config.DBFilePath())
	if err != nil {
		return err
	}

	defer db.Close()

	cfg := loadPolicy(ctx, db)

	if errs := config.Validate(cfg); len(errs) > 0 {
		for _, e := range errs {
			pterm.Warning.Println(e)
		}
	}

	srv := server.New(db, cfg)
	srv.Debug = ctx.Bool("debug")

	return srv.Run()
}

// checkAction evaluates one or more URLs against the current policy and
// prints the verdicts.
func checkAction(ctx *cli.Context) error {
	if ctx.Args().Len() == 0 {
		return fmt.Errorf("provide at least one URL to check")
	}

	db, err := store.NewClient(config.DBFilePath())
	if err != nil {
		return err
	}

	defer db.Close()

	cfg := loadPolicy(ctx, db)

	now := time.Now()

	if at := ctx.String("at"); at != "" {
		now, err = dateparse.ParseLocal(at)
		if err != nil {
			return fmt.Errorf("unable to parse --at value: %w", err)
		}
	}

	rules := sitematch.Compile(cfg.SitePatterns)
	for _, e := range rules.Errors {
		pterm.Warning.Println(e)
	}

	ranges, rangeErrs := schedule.ParseRanges(cfg.TimeRanges)
	for _, e := range rangeErrs {
		pterm.Warning.Println(e)
	}

	rt, err := db.GetRuntime()
	if err != nil {
		return err
	}

	for _, rawURL := range ctx.Args().Slice() {
		var d models.Decision

		d, rt = engine.Evaluate(
			cfg,
			rt,
			rules,
			ranges,
			rawURL,
			now,
			cfg.ExtensionOrigin,
		)

		if ctx.Bool("json") {
			b, err := json.Marshal(d)
			if err != nil {
				return err
			}

			fmt.Println(string(b))

			continue
		}

		report.Decision(os.Stdout, rawURL, d)
	}

	// evaluation may have rolled the quota period or paused a
	// completed Pomodoro phase
	return db.SaveRuntime(rt)
}

// startAction begins a Pomodoro session or resumes the pending phase.
func startAction(ctx *cli.Context) error {
	db, err := store.NewClient(config.DBFilePath())
	if err != nil {
		return err
	}

	defer db.Close()

	cfg := loadPolicy(ctx, db)

	if !cfg.PomodoroEnabled {
		return fmt.Errorf("the Pomodoro timer is disabled in the config")
	}

	now := time.Now()

	rt, err := db.GetRuntime()
	if err != nil {
		return err
	}

	if rt.PomodoroActive {
		pterm.Warning.Println(
			"a phase is already running; stop it first to restart",
		)

		report.PomodoroState(os.Stdout, pomodoro.Snapshot(rt, cfg, now))

		return nil
	}

	rt = pomodoro.Start(rt, cfg, now)

	if err := db.SaveRuntime(rt); err != nil {
		return err
	}

	slog.Info(
		"pomodoro phase started",
		"phase", rt.PomodoroPhase,
		"ends", rt.PomodoroPhaseEnd,
	)

	report.PomodoroState(os.Stdout, pomodoro.Snapshot(rt, cfg, now))

	return nil
}

// stopAction forces the Pomodoro machine to idle.
func stopAction(ctx *cli.Context) error {
	db, err := store.NewClient(config.DBFilePath())
	if err != nil {
		return err
	}

	defer db.Close()

	rt, err := db.GetRuntime()
	if err != nil {
		return err
	}

	rt = pomodoro.Stop(rt)

	if err := db.SaveRuntime(rt); err != nil {
		return err
	}

	pterm.Info.Println("Pomodoro session stopped")

	return nil
}

// statusAction prints the policy summary, quota usage, and the
// Pomodoro snapshot.
func statusAction(ctx *cli.Context) error {
	db, err := store.NewClient(config.DBFilePath())
	if err != nil {
		return err
	}

	defer db.Close()

	cfg := loadPolicy(ctx, db)

	now := time.Now()

	rt, err := db.GetRuntime()
	if err != nil {
		return err
	}

	state := "disabled"
	if cfg.Enabled {
		state = "enabled"
	}

	pterm.Printfln("Policy '%s' is %s", cfg.SetName, state)

	rules := sitematch.Compile(cfg.SitePatterns)

	if len(rules.Block) > 0 {
		pterm.Println("Blocked sites:")
		report.Patterns(os.Stdout, rules.BlockPatterns())
	}

	if cfg.LimitPeriod != "" {
		rt = quota.RollIfNeeded(rt, cfg.LimitPeriod, now)

		pterm.Printfln(
			"Usage this %s: %d of %d minutes",
			cfg.LimitPeriod,
			rt.UsageSeconds/60,
			cfg.LimitMinutes,
		)
	}

	report.PomodoroState(os.Stdout, pomodoro.Snapshot(rt, cfg, now))

	return nil
}

// historyAction prints a table of recorded decisions within a time
// period.
func historyAction(ctx *cli.Context) error {
	db, err := store.NewClient(config.DBFilePath())
	if err != nil {
		return err
	}

	defer db.Close()

	filter := config.Filter(ctx)

	snaps, err := db.GetDecisions(filter.StartTime, filter.EndTime)
	if err != nil {
		return err
	}

	if ctx.Bool("json") {
		b, err := json.Marshal(snaps)
		if err != nil {
			return err
		}

		pterm.Println(string(b))

		return nil
	}

	report.History(os.Stdout, snaps)

	return nil
}

// deleteHistoryAction deletes recorded decisions within a time period.
func deleteHistoryAction(ctx *cli.Context) error {
	db, err := store.NewClient(config.DBFilePath())
	if err != nil {
		return err
	}

	defer db.Close()

	filter := config.Filter(ctx)

	err = db.DeleteDecisions(filter.StartTime, filter.EndTime)
	if err != nil {
		return err
	}

	pterm.Success.Println("decision history deleted")

	return nil
}

// setupAction reruns the interactive configuration prompts and writes
// the answers back to the config file.
func setupAction(ctx *cli.Context) error {
	if err := config.Setup(); err != nil {
		return err
	}

	pterm.Success.Println("configuration saved")

	return nil
}

// editConfigAction handles the edit-config command which opens the
// barricade config file in the user's default text editor.
func editConfigAction(ctx *cli.Context) error {
	defaultEditor := "nano"

	if runtime.GOOS == "windows" {
		defaultEditor = "C:\\Windows\\system32\\notepad.exe"
	}

	editor := firstNonEmptyString(
		os.Getenv("VISUAL"),
		os.Getenv("EDITOR"),
		defaultEditor,
	)

	cmd := exec.Command(editor, config.ConfigFilePath())

	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout

	return cmd.Run()
}
