package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/laxmi-pos/laxmi-pos/cmd/laxmi/cli"
	"github.com/laxmi-pos/laxmi-pos/internal/app"
)

func main() {
	if app.InTestMode() {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	ops, err := cli.NewJobsCLI(cfg.RedisAddr)
	if err != nil {
		slog.Default().Error("init jobs cli", slog.Any("error", err))
		os.Exit(1)
	}
	code := cli.Run(ctx, ops, os.Args[1:], os.Stdout, os.Stderr)
	if err := ops.Close(); err != nil {
		slog.Default().Warn("close jobs cli", slog.Any("error", err))
	}
	os.Exit(code)
}
