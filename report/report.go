// Package report renders decision history and status output for the
// command line.
package report

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/maruel/natural"
	"github.com/pterm/pterm"

	"github.com/barricade-app/barricade/internal/models"
	"github.com/barricade-app/barricade/internal/ui"
)

const noDecisionsMsg = "No decisions were recorded in the specified time range"

// History prints a table of recorded decisions.
func History(w io.Writer, snaps []models.DecisionSnapshot) {
	if len(snaps) == 0 {
		pterm.Info.Println(noDecisionsMsg)
		return
	}

	tableBody := make([][]string, len(snaps))

	for i := range snaps {
		snap := snaps[i]

		verdict := ui.Green("allowed")
		if snap.Blocked {
			verdict = ui.Red("blocked")
		}

		row := []string{
			fmt.Sprintf("%d", i+1),
			time.Unix(snap.At, 0).Format("Jan 02, 2006 03:04 PM"),
			snap.URL,
			string(snap.Reason),
			snap.MatchedPattern,
			verdict,
		}

		tableBody[i] = row
	}

	tableBody = append([][]string{
		{"#", "TIME", "URL", "REASON", "PATTERN", "VERDICT"},
	}, tableBody...)

	ui.PrintTable(tableBody, w)
}

// Patterns prints the block patterns of a policy in natural order.
func Patterns(w io.Writer, patterns []string) {
	sorted := make([]string, len(patterns))
	copy(sorted, patterns)

	sort.Slice(sorted, func(i, j int) bool {
		return natural.Less(sorted[i], sorted[j])
	})

	for _, p := range sorted {
		fmt.Fprintf(w, "  %s\n", ui.Cyan(p))
	}
}

// Decision prints a one-shot evaluation verdict.
func Decision(w io.Writer, url string, d models.Decision) {
	verdict := ui.Green("ALLOWED")
	if d.Blocked {
		verdict = ui.Red("BLOCKED")
	}

	fmt.Fprintf(w, "%s  %s (%s)\n", verdict, url, d.Reason)

	if d.MatchedPattern != "" {
		fmt.Fprintf(w, "matched pattern: %s\n", ui.Cyan(d.MatchedPattern))
	}

	if d.NextUnblockAt > 0 {
		fmt.Fprintf(
			w,
			"unblocks at: %s\n",
			ui.Highlight(
				time.Unix(d.NextUnblockAt, 0).Format("Jan 02, 2006 03:04 PM"),
			),
		)
	}
}

// PomodoroState prints the current snapshot of the Pomodoro machine.
func PomodoroState(w io.Writer, s models.PomodoroState) {
	switch {
	case !s.Enabled:
		fmt.Fprintln(w, "Pomodoro is disabled")
	case s.Paused:
		fmt.Fprintf(
			w,
			"%s: next up is the %s phase\n",
			ui.Yellow("[Paused]"),
			s.PendingPhase,
		)
	case !s.Active:
		fmt.Fprintln(w, "No Pomodoro session is running")
	default:
		mins := s.RemainingSeconds / 60
		secs := s.RemainingSeconds % 60

		label := ui.Green("[Focus]")
		if s.Phase == models.PhaseBreak {
			label = ui.Blue("[Break]")
		}

		fmt.Fprintf(w, "%s %02d:%02d remaining\n", label, mins, secs)
	}
}
