package app

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// NewLogger builds the process logger. LOG_FORMAT=json selects structured output for log shippers;
// anything else prints text for a terminal at the till.
func NewLogger(cfg *Config) *slog.Logger {
	return newLogger(os.Stdout, cfg)
}

func newLogger(w io.Writer, cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true}
	env := "development"
	var handler slog.Handler = slog.NewTextHandler(w, opts)
	if cfg != nil {
		env = cfg.AppEnv
		if strings.EqualFold(cfg.LogFormat, "json") {
			handler = slog.NewJSONHandler(w, opts)
		}
	}
	return slog.New(handler).With(slog.String("app", "laxmi-pos"), slog.String("env", env))
}
