package vitals

import (
	"sync"
	"sync/atomic"

	models "github.com/RoGogDBD/vitals-monitor/internal/model"
	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// ReportHandler получает каждую нормализованную запись метрики.
type ReportHandler func(metric models.Metric)

// emitFunc формирует и отдаёт запись метрики с указанными значением и приращением.
type emitFunc func(value, delta float64)

// variant описывает одну подписку: метрику, тип записей и построитель обработчика.
type variant struct {
	name      models.MetricName
	entryType string
	build     func(c *Collector, name models.MetricName, emit emitFunc) EntryHandler
}

var variants = []variant{
	{name: models.CLS, entryType: models.EntryLayoutShift, build: (*Collector).layoutShiftHandler},
	{name: models.FID, entryType: models.EntryFirstInput, build: (*Collector).firstInputHandler},
	{name: models.LCP, entryType: models.EntryLargestContentfulPaint, build: (*Collector).largestPaintHandler},
	{name: models.FCP, entryType: models.EntryPaint, build: (*Collector).paintHandler},
	{name: models.TTFB, entryType: models.EntryNavigation, build: (*Collector).navigationHandler},
}

// Collector подписывается на потоки записей производительности и отдаёт записи Core Web Vitals.
//
// Collector никогда не возвращает ошибок потребителю: неподдерживаемые типы записей,
// некорректные записи и паники в обработчике потребителя логируются как предупреждения.
type Collector struct {
	observer Observer
	logger   *zap.Logger
	clock    clock.Clock
	newID    IDGenerator

	dropped  map[models.MetricName]*atomic.Int64
	dropOnce map[models.MetricName]*sync.Once
}

// Option настраивает Collector.
type Option func(*Collector)

// WithIDGenerator подменяет генератор идентификаторов эмиссий.
func WithIDGenerator(gen IDGenerator) Option {
	return func(c *Collector) {
		if gen != nil {
			c.newID = gen
		}
	}
}

// WithClock подменяет часы, которыми проставляется время эмиссии.
func WithClock(clk clock.Clock) Option {
	return func(c *Collector) {
		if clk != nil {
			c.clock = clk
		}
	}
}

// NewCollector создаёт коллектор поверх observer. Если logger равен nil, логирование отключено.
func NewCollector(observer Observer, logger *zap.Logger, opts ...Option) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Collector{
		observer: observer,
		logger:   logger,
		clock:    clock.New(),
		newID:    NewID,
		dropped:  make(map[models.MetricName]*atomic.Int64, len(models.MetricNames)),
		dropOnce: make(map[models.MetricName]*sync.Once, len(models.MetricNames)),
	}
	for _, name := range models.MetricNames {
		c.dropped[name] = &atomic.Int64{}
		c.dropOnce[name] = &sync.Once{}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Report устанавливает пять независимых подписок и отдаёт записи в onReport.
//
// Каждый вызов ставит новый независимый набор подписок; повторные вызовы не отслеживаются,
// поэтому Report следует вызывать один раз за время жизни страницы. Ошибка установки одной
// подписки не мешает установке остальных.
func (c *Collector) Report(onReport ReportHandler) {
	if onReport == nil {
		c.logger.Warn("Web Vitals report handler is nil, monitoring disabled")
		return
	}
	if c.observer == nil {
		c.logger.Warn("Web Vitals monitoring not supported: no observer")
		return
	}
	for _, v := range variants {
		c.install(v, onReport)
	}
}

// Dropped возвращает количество отброшенных некорректных записей для метрики.
func (c *Collector) Dropped(name models.MetricName) int64 {
	if n, ok := c.dropped[name]; ok {
		return n.Load()
	}
	return 0
}

func (c *Collector) install(v variant, onReport ReportHandler) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("Web Vitals monitoring not supported",
				zap.String("metric", string(v.name)),
				zap.String("entry_type", v.entryType),
				zap.Any("panic", r),
			)
		}
	}()

	emit := func(value, delta float64) {
		c.deliver(onReport, models.Metric{
			Name:      v.name,
			Value:     value,
			Delta:     delta,
			ID:        c.newID(v.name),
			Rating:    Rate(v.name, value),
			Timestamp: c.clock.Now(),
		})
	}

	if err := c.observer.Observe(v.entryType, c.guard(v, v.build(c, v.name, emit))); err != nil {
		c.logger.Warn("Web Vitals monitoring not supported",
			zap.String("metric", string(v.name)),
			zap.String("entry_type", v.entryType),
			zap.Error(err),
		)
	}
}

// guard не даёт панике из обработчика выйти в доставляющий код хоста.
func (c *Collector) guard(v variant, fn EntryHandler) EntryHandler {
	return func(entries []models.PerformanceEntry) {
		defer func() {
			if r := recover(); r != nil {
				c.logger.Warn("Web Vitals entry handler failed",
					zap.String("metric", string(v.name)),
					zap.Any("panic", r),
				)
			}
		}()
		fn(entries)
	}
}

func (c *Collector) deliver(onReport ReportHandler, m models.Metric) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("Web Vitals report handler panicked",
				zap.String("metric", string(m.Name)),
				zap.String("id", m.ID),
				zap.Any("panic", r),
			)
		}
	}()
	onReport(m)
}

func (c *Collector) drop(name models.MetricName, e models.PerformanceEntry) {
	c.dropped[name].Add(1)
	c.dropOnce[name].Do(func() {
		c.logger.Warn("Dropping malformed performance entry",
			zap.String("metric", string(name)),
			zap.String("entry_type", e.EntryType),
			zap.String("entry_name", e.Name),
		)
	})
}

// layoutShiftHandler ведёт сессионное окно и отдаёт запись на каждое учтённое наблюдение.
// Delta — величина именно этого наблюдения.
func (c *Collector) layoutShiftHandler(name models.MetricName, emit emitFunc) EntryHandler {
	var window sessionWindow
	return func(entries []models.PerformanceEntry) {
		for _, entry := range entries {
			if !validLayoutShift(entry) {
				c.drop(name, entry)
				continue
			}
			if entry.HadRecentInput {
				continue
			}
			value := window.add(entry.StartTime, entry.Value)
			emit(value, entry.Value)
		}
	}
}

func (c *Collector) firstInputHandler(name models.MetricName, emit emitFunc) EntryHandler {
	return func(entries []models.PerformanceEntry) {
		for _, entry := range entries {
			if !validFirstInput(entry) {
				c.drop(name, entry)
				continue
			}
			delay := entry.ProcessingStart - entry.StartTime
			emit(delay, delay)
		}
	}
}

// largestPaintHandler отдаёт только самую свежую корректную запись пачки.
func (c *Collector) largestPaintHandler(name models.MetricName, emit emitFunc) EntryHandler {
	return func(entries []models.PerformanceEntry) {
		for i := len(entries) - 1; i >= 0; i-- {
			if !validPaint(entries[i]) {
				c.drop(name, entries[i])
				continue
			}
			emit(entries[i].StartTime, entries[i].StartTime)
			return
		}
	}
}

func (c *Collector) paintHandler(name models.MetricName, emit emitFunc) EntryHandler {
	return func(entries []models.PerformanceEntry) {
		for _, entry := range entries {
			if entry.Name != models.FirstContentfulPaint {
				continue
			}
			if !validPaint(entry) {
				c.drop(name, entry)
				continue
			}
			emit(entry.StartTime, entry.StartTime)
		}
	}
}

func (c *Collector) navigationHandler(name models.MetricName, emit emitFunc) EntryHandler {
	return func(entries []models.PerformanceEntry) {
		for _, entry := range entries {
			if entry.EntryType != models.EntryNavigation {
				continue
			}
			if !validNavigation(entry) {
				c.drop(name, entry)
				continue
			}
			ttfb := entry.ResponseStart - entry.FetchStart
			emit(ttfb, ttfb)
		}
	}
}
