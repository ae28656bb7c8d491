package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/RoGogDBD/vitals-monitor/internal/config"
	"github.com/RoGogDBD/vitals-monitor/internal/version"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("collector failed: %v", err)
	}
}

func run(args []string) error {
	cfg, err := config.LoadCollectorConfig(args)
	if err != nil {
		return err
	}

	logger, err := config.Initialize(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	version.LogBuildInfo(logger, "collector")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	return a.run(ctx)
}
