// Package app defines the barricade command-line interface.
package app

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/barricade-app/barricade/config"
)

const (
	envNoColor          = "NO_COLOR"
	envBarricadeNoColor = "BARRICADE_NO_COLOR"
)

// disableStyling disables all styling provided by pterm.
func disableStyling() {
	pterm.DisableColor()
	pterm.DisableStyling()
	pterm.Debug.Prefix.Text = ""
	pterm.Info.Prefix.Text = ""
	pterm.Success.Prefix.Text = ""
	pterm.Warning.Prefix.Text = ""
	pterm.Error.Prefix.Text = ""
	pterm.Fatal.Prefix.Text = ""
}

// Get retrieves the barricade app instance.
func Get() *cli.App {
	barricadeApp := &cli.App{
		Name: "barricade",
		Usage: `
		Barricade is the companion daemon for the Barricade browser extension.
		It decides, for each navigation, whether the page should be blocked
		according to your site patterns, weekly schedule, usage limit, and
		Pomodoro timer.`,
		UsageText:            "[COMMAND] [OPTIONS]",
		Version:              config.Version,
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the extension API server",
				Action: serveAction,
				Flags:  []cli.Flag{portFlag, debugFlag},
			},
			{
				Name:      "check",
				Usage:     "Evaluate a URL against the current policy",
				UsageText: "barricade check [OPTIONS] URL...",
				Action:    checkAction,
				Flags: []cli.Flag{
					patternsFlag,
					disabledFlag,
					atFlag,
					jsonFlag,
				},
			},
			{
				Name:   "start",
				Usage:  "Start a Pomodoro session, or resume the pending phase",
				Action: startAction,
				Flags: []cli.Flag{
					focusMinutesFlag,
					breakMinutesFlag,
					disableNotificationFlag,
				},
			},
			{
				Name:   "stop",
				Usage:  "Stop the Pomodoro session",
				Action: stopAction,
			},
			{
				Name:   "status",
				Usage:  "Print the blocking policy and Pomodoro status",
				Action: statusAction,
			},
			{
				Name:  "history",
				Usage: "List recorded blocking decisions. Defaults to a reporting period of 7 days",
				Action: historyAction,
				Flags: []cli.Flag{
					periodFlag,
					startTimeFlag,
					endTimeFlag,
					jsonFlag,
				},
			},
			{
				Name:   "delete-history",
				Usage:  "Delete recorded blocking decisions",
				Action: deleteHistoryAction,
				Flags:  []cli.Flag{periodFlag, startTimeFlag, endTimeFlag},
			},
			{
				Name:   "edit-config",
				Usage:  "Edit the configuration file",
				Action: editConfigAction,
			},
			{
				Name:   "setup",
				Usage:  "Rerun the interactive configuration prompts",
				Action: setupAction,
			},
		},
		Flags: []cli.Flag{
			noColorFlag,
		},
		Before: beforeAction,
	}

	return barricadeApp
}

func beforeAction(ctx *cli.Context) error {
	config.InitializePaths()

	initLogger()

	pterm.Error.MessageStyle = pterm.NewStyle(pterm.FgRed)
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "ERROR",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}

	// Disable colour output if NO_COLOR is set
	if _, exists := os.LookupEnv(envNoColor); exists {
		disableStyling()
	}

	// Disable colour output if BARRICADE_NO_COLOR is set
	if _, exists := os.LookupEnv(envBarricadeNoColor); exists {
		disableStyling()
	}

	if ctx.Bool("no-color") {
		disableStyling()
	}

	return nil
}
