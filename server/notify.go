package server

import (
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/gen2brain/beeep"
	"github.com/kballard/go-shellquote"

	"github.com/barricade-app/barricade/internal/models"
)

// notifyPhaseComplete sends a desktop notification when a Pomodoro
// phase ends. The machine never auto-starts the next phase, so the
// notification is the user's cue to resume.
func (s *Server) notifyPhaseComplete(finished, pending models.Phase) {
	if !s.cfg.Notify {
		return
	}

	title := "Focus session complete"
	msg := fmt.Sprintf("Start your %s when ready.", pending)

	if finished == models.PhaseBreak {
		title = "Break is over"
	}

	err := beeep.Notify(title, msg, "")
	if err != nil {
		slog.Warn("unable to display notification", "error", err)
	}
}

// runBlockHook executes the user's configured command whenever a
// navigation is blocked.
func (s *Server) runBlockHook(url string) {
	if s.cfg.OnBlockCmd == "" {
		return
	}

	cmdSlice, err := shellquote.Split(s.cfg.OnBlockCmd)
	if err != nil {
		slog.Warn("unable to parse on_block_cmd option", "error", err)
		return
	}

	if len(cmdSlice) == 0 {
		return
	}

	name := cmdSlice[0]
	args := append(cmdSlice[1:], url)

	go func() {
		if err := exec.Command(name, args...).Run(); err != nil {
			slog.Warn("on_block_cmd failed", "error", err)
		}
	}()
}
