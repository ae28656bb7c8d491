package service

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// PeriodicTask — действие, которое выполняется по тикеру и один раз при остановке.
type PeriodicTask struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
	Clock    clock.Clock
	Logger   *zap.Logger
}

// Start выполняет задачу каждые Interval до отмены ctx и затем финальный раз.
// Ошибки логируются и не прерывают цикл.
func (t PeriodicTask) Start(ctx context.Context) error {
	clk := t.Clock
	if clk == nil {
		clk = clock.New()
	}
	logger := t.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ticker := clk.Ticker(t.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			finalCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := t.Run(finalCtx); err != nil {
				logger.Error("Final run failed", zap.String("task", t.Name), zap.Error(err))
			}
			cancel()
			return nil
		case <-ticker.C:
			if err := t.Run(ctx); err != nil {
				logger.Error("Periodic run failed", zap.String("task", t.Name), zap.Error(err))
			}
		}
	}
}
