package app

import (
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/barricade-app/barricade/config"
)

// initLogger routes slog output to a rotating log file so that daemon
// diagnostics survive restarts without growing unbounded.
func initLogger() {
	writer := &lumberjack.Logger{
		Filename:   config.LogFilePath(),
		MaxSize:    5, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}

	handler := slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})

	slog.SetDefault(slog.New(handler))
}
