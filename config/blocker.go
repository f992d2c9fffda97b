package config

import (
	"errors"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"

	"github.com/barricade-app/barricade/internal/models"
	"github.com/barricade-app/barricade/internal/ui"
)

// viperKeys defines the mapping between config keys and their Viper
// counterparts.
const (
	keyEnabled          = "enabled"
	keySetName          = "set_name"
	keySitePatterns     = "site_patterns"
	keyScheduleDays     = "schedule.days"
	keyTimeRanges       = "schedule.time_ranges"
	keyLimitMinutes     = "limit.minutes"
	keyLimitPeriod      = "limit.period"
	keyAllowlistHard    = "allowlist_hard"
	keyPomodoroEnabled  = "pomodoro.enabled"
	keyPomodoroFocus    = "pomodoro.focus_mins"
	keyPomodoroBreak    = "pomodoro.break_mins"
	keyDaemonPort       = "daemon.port"
	keyExtensionOrigin  = "daemon.extension_origin"
	keyOnBlockCmd       = "daemon.on_block_cmd"
	keyDarkTheme        = "display.dark_theme"
	keyNotify           = "notifications.enabled"
)

const (
	defaultSetName       = "Distractions"
	defaultTimeRanges    = "0900-1700"
	defaultFocusMinutes  = 25
	defaultBreakMinutes  = 5
	defaultDaemonPort    = 3230
	defaultOrigin        = "chrome-extension://barricade"
)

// defaultScheduleDays marks Monday through Friday; index 0 is Sunday.
var defaultScheduleDays = []bool{
	false, true, true, true, true, true, false,
}

// Blocker is the canonical user policy consumed by the decision engine.
type Blocker struct {
	UpdatedAt            time.Time     `json:"updated_at"            mapstructure:"-"`
	SetName              string        `json:"set_name"              mapstructure:"set_name"`
	SitePatterns         string        `json:"site_patterns"         mapstructure:"site_patterns"`
	TimeRanges           string        `json:"time_ranges"           mapstructure:"-"`
	LimitPeriod          models.Period `json:"limit_period"          mapstructure:"-"`
	ExtensionOrigin      string        `json:"extension_origin"      mapstructure:"-"`
	OnBlockCmd           string        `json:"on_block_cmd"          mapstructure:"-"`
	ScheduleDays         []bool        `json:"schedule_days"         mapstructure:"-"`
	AllowlistHard        []string      `json:"allowlist_hard"        mapstructure:"allowlist_hard"`
	LimitMinutes         uint          `json:"limit_minutes"         mapstructure:"-"`
	PomodoroFocusMinutes uint          `json:"pomodoro_focus_mins"   mapstructure:"-"`
	PomodoroBreakMinutes uint          `json:"pomodoro_break_mins"   mapstructure:"-"`
	DaemonPort           uint          `json:"daemon_port"           mapstructure:"-"`
	Enabled              bool          `json:"enabled"               mapstructure:"enabled"`
	PomodoroEnabled      bool          `json:"pomodoro_enabled"      mapstructure:"-"`
	DarkTheme            bool          `json:"dark_theme"            mapstructure:"-"`
	Notify               bool          `json:"notify"                mapstructure:"-"`
}

var blockerCfg *Blocker

var once sync.Once

// blockerDefaults sets the program's default configuration values.
func blockerDefaults(v *viper.Viper) {
	v.SetDefault(keyEnabled, true)
	v.SetDefault(keySetName, defaultSetName)
	v.SetDefault(keySitePatterns, "")
	v.SetDefault(keyScheduleDays, defaultScheduleDays)
	v.SetDefault(keyTimeRanges, defaultTimeRanges)
	v.SetDefault(keyLimitMinutes, 0)
	v.SetDefault(keyLimitPeriod, "")
	v.SetDefault(keyAllowlistHard, []string{})
	v.SetDefault(keyPomodoroEnabled, true)
	v.SetDefault(keyPomodoroFocus, defaultFocusMinutes)
	v.SetDefault(keyPomodoroBreak, defaultBreakMinutes)
	v.SetDefault(keyDaemonPort, defaultDaemonPort)
	v.SetDefault(keyExtensionOrigin, defaultOrigin)
	v.SetDefault(keyOnBlockCmd, "")
	v.SetDefault(keyDarkTheme, true)
	v.SetDefault(keyNotify, true)
}

// loadBlocker reads the configuration from Viper into a Blocker.
func loadBlocker(v *viper.Viper) *Blocker {
	b := &Blocker{
		Enabled:              v.GetBool(keyEnabled),
		SetName:              v.GetString(keySetName),
		SitePatterns:         v.GetString(keySitePatterns),
		ScheduleDays:         boolSlice(v.Get(keyScheduleDays)),
		TimeRanges:           v.GetString(keyTimeRanges),
		LimitMinutes:         v.GetUint(keyLimitMinutes),
		LimitPeriod:          models.Period(v.GetString(keyLimitPeriod)),
		AllowlistHard:        v.GetStringSlice(keyAllowlistHard),
		PomodoroEnabled:      v.GetBool(keyPomodoroEnabled),
		PomodoroFocusMinutes: v.GetUint(keyPomodoroFocus),
		PomodoroBreakMinutes: v.GetUint(keyPomodoroBreak),
		DaemonPort:           v.GetUint(keyDaemonPort),
		ExtensionOrigin:      v.GetString(keyExtensionOrigin),
		OnBlockCmd:           v.GetString(keyOnBlockCmd),
		DarkTheme:            v.GetBool(keyDarkTheme),
		Notify:               v.GetBool(keyNotify),
	}

	return Normalize(b, DefaultHardAllowlist)
}

// boolSlice coerces the untyped value Viper yields for a YAML bool
// sequence.
func boolSlice(val any) []bool {
	switch s := val.(type) {
	case []bool:
		return slices.Clone(s)
	case []any:
		out := make([]bool, 0, len(s))
		for _, v := range s {
			b, _ := v.(bool)
			out = append(out, b)
		}

		return out
	default:
		return nil
	}
}

// initBlockerConfig reads the config file, writing one populated with
// defaults when none exists yet.
func initBlockerConfig() error {
	v := viper.New()

	v.SetConfigFile(ConfigFilePath())
	v.SetConfigType("yaml")

	blockerDefaults(v)

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return errReadConfig.Wrap(err)
		}

		if err := promptFirstRun(v); err != nil {
			return err
		}

		if err := v.WriteConfigAs(ConfigFilePath()); err != nil {
			return errWriteConfig.Wrap(err)
		}
	}

	blockerCfg = loadBlocker(v)

	return nil
}

// ApplyFlags overrides policy values with command-line arguments. It
// applies to whichever policy source won resolution, so flags take
// effect over a store-saved policy as well as the config file.
func ApplyFlags(b *Blocker, ctx *cli.Context) {
	if b == nil || ctx == nil {
		return
	}

	if ctx.Bool("disabled") {
		b.Enabled = false
	}

	if ctx.String("patterns") != "" {
		b.SitePatterns = ctx.String("patterns")
	}

	if ctx.Uint("focus") > 0 {
		b.PomodoroFocusMinutes = ctx.Uint("focus")
	}

	if ctx.Uint("break") > 0 {
		b.PomodoroBreakMinutes = ctx.Uint("break")
	}

	if ctx.Uint("port") > 0 {
		b.DaemonPort = ctx.Uint("port")
	}

	if ctx.Bool("disable-notification") {
		b.Notify = false
	}
}

// Get initializes and returns the blocker configuration. The
// initialization is done just once no matter how many times it is
// called.
func Get(ctx *cli.Context) *Blocker {
	once.Do(func() {
		err := initBlockerConfig()
		if err != nil {
			pterm.Error.Printfln(
				"%s: %s",
				errInitFailed.Error(),
				err.Error(),
			)
			os.Exit(1)
		}

		ApplyFlags(blockerCfg, ctx)

		ui.DarkTheme = blockerCfg.DarkTheme
	})

	return blockerCfg
}

// Normalize fills missing fields with documented defaults, lower-cases
// and de-duplicates allowlist and site-pattern tokens, and clamps
// numeric fields. It is idempotent.
func Normalize(b *Blocker, defaultHardAllowlist []string) *Blocker {
	out := *b

	out.SetName = strings.TrimSpace(out.SetName)
	if out.SetName == "" {
		out.SetName = defaultSetName
	}

	// A policy with no schedule information at all gets the stock
	// weekday schedule.
	if out.ScheduleDays == nil {
		out.ScheduleDays = slices.Clone(defaultScheduleDays)

		if strings.TrimSpace(out.TimeRanges) == "" {
			out.TimeRanges = defaultTimeRanges
		}
	}

	for len(out.ScheduleDays) < 7 {
		out.ScheduleDays = append(out.ScheduleDays, false)
	}

	out.ScheduleDays = slices.Clone(out.ScheduleDays[:7])

	out.TimeRanges = strings.TrimSpace(out.TimeRanges)

	out.SitePatterns = dedupeTokens(out.SitePatterns)

	allow := append(slices.Clone(b.AllowlistHard), defaultHardAllowlist...)
	out.AllowlistHard = dedupeList(allow)

	if out.PomodoroFocusMinutes == 0 {
		out.PomodoroFocusMinutes = defaultFocusMinutes
	}

	if out.PomodoroBreakMinutes == 0 {
		out.PomodoroBreakMinutes = defaultBreakMinutes
	}

	if out.DaemonPort == 0 {
		out.DaemonPort = defaultDaemonPort
	}

	if out.ExtensionOrigin == "" {
		out.ExtensionOrigin = defaultOrigin
	}

	out.ExtensionOrigin = strings.ToLower(out.ExtensionOrigin)

	return &out
}

// dedupeTokens lower-cases a whitespace/comma separated token list and
// removes duplicates while preserving order.
func dedupeTokens(raw string) string {
	return strings.Join(
		dedupeList(strings.FieldsFunc(raw, func(r rune) bool {
			return r == ' ' || r == '\t' || r == '\n' || r == ','
		})),
		" ",
	)
}

func dedupeList(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))

	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}

		seen[s] = true

		out = append(out, s)
	}

	return out
}
