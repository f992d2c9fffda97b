package app

import "github.com/urfave/cli/v2"

var (
	periodFlag = &cli.StringFlag{
		Name:    "period",
		Aliases: []string{"p"},
		Usage:   "Specify a time period. Possible values are: today, yesterday, 7days, 14days, 30days, all-time",
	}

	startTimeFlag = &cli.StringFlag{
		Name:    "start",
		Aliases: []string{"s"},
		Usage:   "Specify a start date in the following format: YYYY-MM-DD [HH:MM:SS PM]",
	}

	endTimeFlag = &cli.StringFlag{
		Name:    "end",
		Aliases: []string{"e"},
		Usage:   "Specify an end date in the following format: YYYY-MM-DD [HH:MM:SS PM] (defaults to the current time)",
	}

	noColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable coloured output",
	}

	jsonFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "Output results in JSON format",
	}

	portFlag = &cli.UintFlag{
		Name:  "port",
		Usage: "Specify the port for the extension API server",
	}

	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Log request payloads for troubleshooting",
	}

	patternsFlag = &cli.StringFlag{
		Name:    "patterns",
		Aliases: []string{"b"},
		Usage:   "Override the configured site patterns. Prefix a pattern with '+' to allow it",
	}

	focusMinutesFlag = &cli.UintFlag{
		Name:    "focus",
		Aliases: []string{"f"},
		Usage:   "Pomodoro focus phase length in minutes",
	}

	breakMinutesFlag = &cli.UintFlag{
		Name:  "break",
		Usage: "Pomodoro break phase length in minutes",
	}

	disabledFlag = &cli.BoolFlag{
		Name:  "disabled",
		Usage: "Evaluate with blocking switched off",
	}

	disableNotificationFlag = &cli.BoolFlag{
		Name:    "disable-notification",
		Aliases: []string{"d"},
		Usage:   "Disable the system notification that appears when a Pomodoro phase completes",
	}

	atFlag = &cli.StringFlag{
		Name:  "at",
		Usage: "Evaluate at the given time instead of now (any common date format)",
	}
)
