package vitals

import (
	"errors"
	"fmt"
	"sync"

	models "github.com/RoGogDBD/vitals-monitor/internal/model"
)

var (
	// ErrUnsupportedEntryType возвращается, если хост не умеет доставлять записи указанного типа.
	ErrUnsupportedEntryType = errors.New("unsupported entry type")
	// ErrNilHandler возвращается при попытке подписать nil-обработчик.
	ErrNilHandler = errors.New("nil entry handler")
)

// EntryHandler получает пачку записей одного типа.
type EntryHandler func(entries []models.PerformanceEntry)

// Observer — возможность хоста доставлять записи производительности по имени типа.
//
// Ошибка из Observe означает, что тип записей не поддерживается.
type Observer interface {
	Observe(entryType string, fn EntryHandler) error
}

// DefaultEntryTypes — типы записей, которые хаб поддерживает по умолчанию.
var DefaultEntryTypes = []string{
	models.EntryLayoutShift,
	models.EntryFirstInput,
	models.EntryLargestContentfulPaint,
	models.EntryPaint,
	models.EntryNavigation,
}

type stream struct {
	deliver  sync.Mutex
	handlers []EntryHandler
}

// Hub — внутрипроцессная реализация Observer.
//
// Publish доставляет пачку синхронно всем подписчикам данного типа. Доставка внутри одного типа
// сериализована, поэтому обработчики одного типа никогда не выполняются параллельно и видят пачки
// в порядке публикации. Между разными типами порядок не гарантируется.
type Hub struct {
	mu      sync.RWMutex
	streams map[string]*stream
}

// NewHub создаёт хаб с заданным набором поддерживаемых типов.
// Если типы не указаны, используется DefaultEntryTypes.
func NewHub(supported ...string) *Hub {
	if len(supported) == 0 {
		supported = DefaultEntryTypes
	}
	h := &Hub{streams: make(map[string]*stream, len(supported))}
	for _, t := range supported {
		h.streams[t] = &stream{}
	}
	return h
}

// Observe подписывает fn на записи типа entryType.
func (h *Hub) Observe(entryType string, fn EntryHandler) error {
	if fn == nil {
		return ErrNilHandler
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.streams[entryType]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedEntryType, entryType)
	}
	s.handlers = append(s.handlers, fn)
	return nil
}

// Publish доставляет пачку записей всем подписчикам типа entryType.
// Пустые пачки не доставляются.
func (h *Hub) Publish(entryType string, entries []models.PerformanceEntry) error {
	h.mu.RLock()
	s, ok := h.streams[entryType]
	var handlers []EntryHandler
	if ok {
		handlers = append(handlers, s.handlers...)
	}
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedEntryType, entryType)
	}
	if len(entries) == 0 {
		return nil
	}

	s.deliver.Lock()
	defer s.deliver.Unlock()
	for _, fn := range handlers {
		fn(entries)
	}
	return nil
}

// Supports сообщает, поддерживается ли тип записей.
func (h *Hub) Supports(entryType string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.streams[entryType]
	return ok
}

// SupportedEntryTypes возвращает список поддерживаемых типов записей.
func (h *Hub) SupportedEntryTypes() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, 0, len(h.streams))
	for t := range h.streams {
		out = append(out, t)
	}
	return out
}
