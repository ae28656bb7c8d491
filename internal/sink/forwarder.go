package sink

import (
	"context"
	"sync"
	"time"

	models "github.com/RoGogDBD/vitals-monitor/internal/model"
	"github.com/RoGogDBD/vitals-monitor/internal/sender"
	"github.com/RoGogDBD/vitals-monitor/pkg/pool"
	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// ForwardPath — путь приёмника телеметрии, на который пересылаются записи.
const ForwardPath = "/vitals/"

// flushTimeout ограничивает финальную отправку при остановке.
const flushTimeout = 10 * time.Second

// Forwarder накапливает записи и периодически отправляет их пакетом.
type Forwarder struct {
	sender   sender.Sender
	logger   *zap.Logger
	clock    clock.Clock
	interval time.Duration
	batches  *pool.Pool[*Batch]

	mu      sync.Mutex
	pending *Batch
}

// ForwarderOption настраивает Forwarder.
type ForwarderOption func(*Forwarder)

// WithForwarderClock подменяет часы тикера.
func WithForwarderClock(clk clock.Clock) ForwarderOption {
	return func(f *Forwarder) { f.clock = clk }
}

// NewForwarder создаёт Forwarder, отправляющий пакеты раз в interval.
func NewForwarder(s sender.Sender, interval time.Duration, logger *zap.Logger, opts ...ForwarderOption) *Forwarder {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &Forwarder{
		sender:   s,
		logger:   logger,
		clock:    clock.New(),
		interval: interval,
		batches: pool.New(func() *Batch {
			return &Batch{Metrics: make([]models.Metric, 0, 32)}
		}),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.pending = f.batches.Get()
	return f
}

// Handle добавляет запись в текущий пакет.
func (f *Forwarder) Handle(m models.Metric) {
	f.mu.Lock()
	f.pending.Metrics = append(f.pending.Metrics, m)
	f.mu.Unlock()
}

// Pending возвращает количество записей, ожидающих отправки.
func (f *Forwarder) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending.Metrics)
}

// Run отправляет накопленное по тикеру до отмены ctx, затем делает последнюю отправку.
func (f *Forwarder) Run(ctx context.Context) error {
	ticker := f.clock.Ticker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), flushTimeout)
			f.Flush(flushCtx)
			cancel()
			return nil
		case <-ticker.C:
			f.Flush(ctx)
		}
	}
}

// Flush отправляет текущий пакет. При ошибке записи теряются, ошибка логируется.
func (f *Forwarder) Flush(ctx context.Context) {
	f.mu.Lock()
	if len(f.pending.Metrics) == 0 {
		f.mu.Unlock()
		return
	}
	batch := f.pending
	f.pending = f.batches.Get()
	f.mu.Unlock()
	defer f.batches.Put(batch)

	if err := f.sender.Send(ctx, ForwardPath, batch.Metrics); err != nil {
		f.logger.Error("Failed to forward vitals", zap.Int("count", len(batch.Metrics)), zap.Error(err))
		return
	}
	f.logger.Debug("Vitals forwarded", zap.Int("count", len(batch.Metrics)))
}
