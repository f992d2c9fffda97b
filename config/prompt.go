package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
	"github.com/spf13/viper"
)

const asciiLogo = `
██████╗  █████╗ ██████╗ ██████╗ ██╗ ██████╗ █████╗ ██████╗ ███████╗
██╔══██╗██╔══██╗██╔══██╗██╔══██╗██║██╔════╝██╔══██╗██╔══██╗██╔════╝
██████╔╝███████║██████╔╝██████╔╝██║██║     ███████║██║  ██║█████╗
██╔══██╗██╔══██║██╔══██╗██╔══██╗██║██║     ██╔══██║██║  ██║██╔══╝
██████╔╝██║  ██║██║  ██║██║  ██║██║╚██████╗██║  ██║██████╔╝███████╗
╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝╚═╝  ╚═╝╚═╝ ╚═════╝╚═╝  ╚═╝╚═════╝ ╚══════╝`

// promptOptions holds the user's responses to the first-run prompts.
type promptOptions struct {
	SitePatterns string
	FocusMinutes int
	BreakMinutes int
	LimitMinutes int
}

// promptFirstRun asks for the key policy settings when no config file
// exists yet and stores the answers in Viper before the file is
// written. Skipped entirely under BARRICADE_ENV=testing.
func promptFirstRun(v *viper.Viper) error {
	if os.Getenv("BARRICADE_ENV") == "testing" {
		return nil
	}

	opts, err := promptUser()
	if err != nil {
		return fmt.Errorf("user prompt failed: %w", err)
	}

	if strings.TrimSpace(opts.SitePatterns) != "" {
		v.Set(keySitePatterns, opts.SitePatterns)
	}

	v.Set(keyPomodoroFocus, opts.FocusMinutes)
	v.Set(keyPomodoroBreak, opts.BreakMinutes)

	if opts.LimitMinutes > 0 {
		v.Set(keyLimitMinutes, opts.LimitMinutes)
		v.Set(keyLimitPeriod, "day")
	}

	return nil
}

// Setup runs the interactive prompts regardless of whether a config
// file already exists and writes the answers back to it.
func Setup() error {
	v := viper.New()

	v.SetConfigFile(ConfigFilePath())
	v.SetConfigType("yaml")

	blockerDefaults(v)

	// keep settings the prompts do not cover
	_ = v.ReadInConfig()

	if err := promptFirstRun(v); err != nil {
		return err
	}

	if err := v.WriteConfigAs(ConfigFilePath()); err != nil {
		return errWriteConfig.Wrap(err)
	}

	blockerCfg = loadBlocker(v)

	return nil
}

// promptUser handles the interactive configuration process.
func promptUser() (promptOptions, error) {
	opts := promptOptions{
		FocusMinutes: defaultFocusMinutes,
		BreakMinutes: defaultBreakMinutes,
	}

	pterm.Println(asciiLogo)

	_ = putils.BulletListFromString(`Follow the prompts below to configure Barricade for the first time.
Select your preferred value, or press ENTER to accept the defaults.
Edit the config file with 'barricade edit-config' to change any settings.`, " ").
		Render()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Sites to block (space separated, '+' prefix allows)").
				Placeholder("reddit.com *.youtube.com +youtube.com/education").
				Value(&opts.SitePatterns),
		),
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Pomodoro focus length").
				Options(
					huh.NewOption("25 minutes", 25).Selected(true),
					huh.NewOption("35 minutes", 35),
					huh.NewOption("50 minutes", 50),
					huh.NewOption("90 minutes", 90),
				).
				Value(&opts.FocusMinutes),
		),
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Pomodoro break length").
				Options(
					huh.NewOption("5 minutes", 5).Selected(true),
					huh.NewOption("10 minutes", 10),
					huh.NewOption("15 minutes", 15),
				).
				Value(&opts.BreakMinutes),
		),
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Daily usage limit for blocked sites").
				Options(
					huh.NewOption("No limit", 0).Selected(true),
					huh.NewOption("30 minutes", 30),
					huh.NewOption("1 hour", 60),
					huh.NewOption("2 hours", 120),
				).
				Value(&opts.LimitMinutes),
		),
	)

	err := form.Run()
	if err != nil {
		return opts, fmt.Errorf("form interaction failed: %w", err)
	}

	return opts, nil
}
