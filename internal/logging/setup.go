package logging

import (
	"io"
	"log/slog"
)

// New builds the process logger for env: coloured text for local, JSON at debug
// level for dev and JSON at info level otherwise.
func New(env string, out io.Writer) *slog.Logger {
	switch env {
	case "local":
		return slog.New(NewPrettyHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case "dev":
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}
