package monitor

import (
	"context"
	"math"
	"sync"
	"time"

	models "github.com/RoGogDBD/vitals-monitor/internal/model"
	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// DefaultInterval — период пересчёта снимка.
const DefaultInterval = time.Second

// Monitor периодически пересчитывает снимок памяти, счётчика активаций и времени с момента старта.
//
// Снимок пересчитывается при каждой активации и затем раз в интервал, пока активация не снята.
// Одновременно жив не более чем один тикер: новая активация сначала снимает предыдущую.
type Monitor struct {
	clock    clock.Clock
	heap     HeapSizer
	interval time.Duration
	logger   *zap.Logger

	activate sync.Mutex

	mu          sync.Mutex
	started     bool
	start       time.Time
	activations int64
	snapshot    models.Snapshot
	current     *scope

	heapWarn sync.Once
}

type scope struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func (s *scope) close() {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
}

// Option настраивает Monitor.
type Option func(*Monitor)

// WithClock подменяет часы (в тестах — clock.NewMock()).
func WithClock(clk clock.Clock) Option {
	return func(m *Monitor) {
		if clk != nil {
			m.clock = clk
		}
	}
}

// WithHeapSizer задаёт источник данных о памяти. nil эквивалентен NoHeap.
func WithHeapSizer(h HeapSizer) Option {
	return func(m *Monitor) { m.heap = h }
}

// WithInterval задаёт период пересчёта снимка.
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithLogger задаёт логгер для предупреждений.
func WithLogger(l *zap.Logger) Option {
	return func(m *Monitor) {
		if l != nil {
			m.logger = l
		}
	}
}

// New создаёт Monitor. По умолчанию используется реальное время, RuntimeHeap и интервал в 1 секунду.
func New(opts ...Option) *Monitor {
	m := &Monitor{
		clock:    clock.New(),
		heap:     RuntimeHeap{},
		interval: DefaultInterval,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Activate начинает область активации и возвращает функцию её снятия.
//
// Первая активация фиксирует момент старта, каждая активация увеличивает счётчик на 1.
// onSnapshot вызывается сразу и затем на каждый тик. Область снимается вызовом release
// или отменой ctx; после возврата из release onSnapshot больше не вызывается.
// release нельзя вызывать изнутри onSnapshot.
func (m *Monitor) Activate(ctx context.Context, onSnapshot func(models.Snapshot)) (release func()) {
	_, release = m.Watch(ctx, onSnapshot)
	return release
}

// Watch работает как Activate и дополнительно возвращает канал done, который закрывается,
// когда область перестаёт получать снимки: после release, отмены ctx или перехвата
// области следующей активацией.
func (m *Monitor) Watch(ctx context.Context, onSnapshot func(models.Snapshot)) (done <-chan struct{}, release func()) {
	m.activate.Lock()
	defer m.activate.Unlock()

	m.mu.Lock()
	prev := m.current
	m.mu.Unlock()
	if prev != nil {
		prev.close()
	}

	m.mu.Lock()
	if !m.started {
		m.started = true
		m.start = m.clock.Now()
	}
	m.activations++
	m.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s := &scope{cancel: cancel, done: make(chan struct{})}
	ticker := m.clock.Ticker(m.interval)

	m.mu.Lock()
	m.current = s
	m.mu.Unlock()

	m.update(onSnapshot)

	go func() {
		defer close(s.done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.update(onSnapshot)
			}
		}
	}()

	return s.done, func() {
		s.close()
		m.mu.Lock()
		if m.current == s {
			m.current = nil
		}
		m.mu.Unlock()
	}
}

// Snapshot возвращает последний рассчитанный снимок.
func (m *Monitor) Snapshot() models.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot
}

// Active сообщает, есть ли неснятая активация с работающим тикером.
func (m *Monitor) Active() bool {
	m.mu.Lock()
	s := m.current
	m.mu.Unlock()
	if s == nil {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

func (m *Monitor) update(onSnapshot func(models.Snapshot)) {
	memory := m.memoryMB()

	m.mu.Lock()
	elapsed := m.clock.Now().Sub(m.start)
	snap := models.Snapshot{
		MemoryUsageMB: memory,
		RenderCount:   m.activations,
		LoadTimeMs:    int64(math.Round(float64(elapsed) / float64(time.Millisecond))),
	}
	m.snapshot = snap
	m.mu.Unlock()

	if onSnapshot == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			m.logger.Warn("Runtime snapshot consumer panicked", zap.Any("panic", r))
		}
	}()
	onSnapshot(snap)
}

func (m *Monitor) memoryMB() (mb int) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Warn("Heap size introspection failed", zap.Any("panic", r))
			mb = 0
		}
	}()
	if m.heap == nil {
		m.warnNoHeap()
		return 0
	}
	b, ok := m.heap.HeapBytes()
	if !ok {
		m.warnNoHeap()
		return 0
	}
	return int(math.Round(float64(b) / 1024 / 1024))
}

func (m *Monitor) warnNoHeap() {
	m.heapWarn.Do(func() {
		m.logger.Warn("Heap size introspection not supported, memory usage reported as 0")
	})
}
