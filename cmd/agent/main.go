package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/RoGogDBD/vitals-monitor/internal/config"
	"github.com/RoGogDBD/vitals-monitor/internal/sender"
	"github.com/RoGogDBD/vitals-monitor/internal/version"
	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("agent failed: %v", err)
	}
}

func run(args []string) error {
	cfg, err := config.LoadAgentConfig(args)
	if err != nil {
		return err
	}

	logger, err := config.Initialize(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	version.LogBuildInfo(logger, "agent")

	steps, err := LoadTrace(cfg.TraceFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	logger.Info("Replaying trace",
		zap.String("collector", cfg.Address.String()),
		zap.String("trace", cfg.TraceFile),
		zap.Int("steps", len(steps)),
	)

	r := &Replayer{
		Sender: sender.New(cfg.Address.URL(), cfg.Key),
		Clock:  clock.New(),
		Logger: logger,
	}
	sent, err := r.Replay(ctx, steps)
	logger.Info("Trace replay finished", zap.Int("sent", sent), zap.Int("total", len(steps)))
	return err
}
