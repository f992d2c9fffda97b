package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/barricade-app/barricade/internal/models"
)

func validBlocker() *Blocker {
	return &Blocker{
		Enabled:      true,
		SetName:      "Distractions",
		SitePatterns: "reddit.com *.youtube.com",
		ScheduleDays: []bool{false, true, true, true, true, true, false},
		TimeRanges:   "0900-1700",
	}
}

func TestNormalizeDefaults(t *testing.T) {
	got := Normalize(&Blocker{}, DefaultHardAllowlist)

	if got.SetName != defaultSetName {
		t.Errorf("expected default set name, but got: %q", got.SetName)
	}

	// a policy with no schedule information gets the stock weekday one
	if diff := cmp.Diff(defaultScheduleDays, got.ScheduleDays); diff != "" {
		t.Errorf("schedule days mismatch (-want +got):\n%s", diff)
	}

	if got.TimeRanges != defaultTimeRanges {
		t.Errorf("expected default time ranges, but got: %q", got.TimeRanges)
	}

	if got.PomodoroFocusMinutes != defaultFocusMinutes ||
		got.PomodoroBreakMinutes != defaultBreakMinutes {
		t.Error("expected default Pomodoro durations")
	}

	if got.DaemonPort != defaultDaemonPort {
		t.Errorf("expected default port, but got: %d", got.DaemonPort)
	}

	if diff := cmp.Diff(DefaultHardAllowlist, got.AllowlistHard); diff != "" {
		t.Errorf("hard allowlist mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizePadsAndTruncatesScheduleDays(t *testing.T) {
	short := Normalize(
		&Blocker{ScheduleDays: []bool{true, true}},
		DefaultHardAllowlist,
	)
	if len(short.ScheduleDays) != 7 {
		t.Errorf("expected 7 days, but got: %d", len(short.ScheduleDays))
	}

	long := Normalize(
		&Blocker{ScheduleDays: make([]bool, 12)},
		DefaultHardAllowlist,
	)
	if len(long.ScheduleDays) != 7 {
		t.Errorf("expected 7 days, but got: %d", len(long.ScheduleDays))
	}
}

func TestNormalizeDedupesTokens(t *testing.T) {
	got := Normalize(&Blocker{
		SitePatterns: "Reddit.com, reddit.com  twitter.com",
		AllowlistHard: []string{
			"Barricade.app",
			"barricade.app",
			"internal.example.com",
		},
	}, DefaultHardAllowlist)

	if got.SitePatterns != "reddit.com twitter.com" {
		t.Errorf("site patterns mismatch, got: %q", got.SitePatterns)
	}

	want := append(
		[]string{"barricade.app", "internal.example.com"},
		DefaultHardAllowlist[1:]...,
	)

	if diff := cmp.Diff(want, got.AllowlistHard); diff != "" {
		t.Errorf("hard allowlist mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	first := Normalize(&Blocker{
		SetName:       "  Work ",
		SitePatterns:  "Reddit.com news.ycombinator.com Reddit.com",
		ScheduleDays:  []bool{true},
		TimeRanges:    " 0900-1200 ",
		AllowlistHard: []string{"EXTRA.example.com"},
	}, DefaultHardAllowlist)

	second := Normalize(first, DefaultHardAllowlist)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Normalize is not idempotent (-first +second):\n%s", diff)
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	in := &Blocker{SitePatterns: "Reddit.com"}

	Normalize(in, DefaultHardAllowlist)

	if in.SitePatterns != "Reddit.com" {
		t.Error("Normalize must not mutate its input")
	}
}

func TestValidateAcceptsGoodPolicy(t *testing.T) {
	if errs := Validate(validBlocker()); len(errs) != 0 {
		t.Errorf("expected no errors, but got: %v", errs)
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	c := validBlocker()
	c.SitePatterns = "reddit.com /"
	c.TimeRanges = "0900-1700,25AA-2900"
	c.LimitMinutes = 30

	want := []string{
		"Invalid site pattern '/'.",
		"Invalid time range '25AA-2900' (expected HHMM-HHMM).",
		"A usage limit requires a limit period ('day' or 'week').",
	}

	if diff := cmp.Diff(want, Validate(c)); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateLimit(t *testing.T) {
	cases := []struct {
		name    string
		minutes uint
		period  models.Period
		wantErr bool
	}{
		{name: "no limit", minutes: 0, period: "", wantErr: false},
		{name: "daily limit", minutes: 60, period: models.PeriodDay, wantErr: false},
		{name: "weekly limit", minutes: 300, period: models.PeriodWeek, wantErr: false},
		{name: "minutes without period", minutes: 60, period: "", wantErr: true},
		{name: "period without minutes", minutes: 0, period: models.PeriodDay, wantErr: true},
		{name: "unknown period", minutes: 60, period: "month", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := validBlocker()
			c.LimitMinutes = tc.minutes
			c.LimitPeriod = tc.period

			errs := Validate(c)

			if tc.wantErr && len(errs) == 0 {
				t.Error("expected a validation error")
			}

			if !tc.wantErr && len(errs) != 0 {
				t.Errorf("expected no errors, but got: %v", errs)
			}
		})
	}
}

func TestValidateRequiresAMechanism(t *testing.T) {
	c := validBlocker()
	c.TimeRanges = ""
	c.PomodoroEnabled = false

	errs := Validate(c)

	found := false

	for _, e := range errs {
		if e == "Enable a schedule, a usage limit, or the Pomodoro timer for blocking to take effect." {
			found = true
		}
	}

	if !found {
		t.Errorf("expected the no-mechanism error, but got: %v", errs)
	}
}

func TestValidateRequiresBlockPatterns(t *testing.T) {
	c := validBlocker()
	c.SitePatterns = "+youtube.com/education"

	errs := Validate(c)

	found := false

	for _, e := range errs {
		if e == "At least one block site pattern is required when blocking is enabled." {
			found = true
		}
	}

	if !found {
		t.Errorf("expected the missing-pattern error, but got: %v", errs)
	}
}

func TestValidatePomodoroDurations(t *testing.T) {
	c := validBlocker()
	c.PomodoroEnabled = true
	c.PomodoroFocusMinutes = 0
	c.PomodoroBreakMinutes = 5

	errs := Validate(c)

	found := false

	for _, e := range errs {
		if e == "Pomodoro focus minutes must be greater than zero." {
			found = true
		}
	}

	if !found {
		t.Errorf("expected the focus-minutes error, but got: %v", errs)
	}
}
