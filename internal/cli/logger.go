package cli

import (
	"io"
	"log/slog"
	"strings"

	"github.com/lmittmann/tint"

	"quiz-kingdom/internal/config"
)

// newLogger builds the process logger: colored text by default, JSON for log shippers.
func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	level := cfg.SlogLevel()
	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	} else {
		handler = tint.NewHandler(w, &tint.Options{Level: level, AddSource: level == slog.LevelDebug})
	}
	return slog.New(handler)
}
