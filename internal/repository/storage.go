package repository

import (
	"sort"
	"strconv"
	"sync"

	models "github.com/RoGogDBD/vitals-monitor/internal/model"
)

// Storage определяет интерфейс хранилища метрик на стороне потребителя коллектора.
//
// Хранит последнюю запись по каждой метрике и количество принятых эмиссий,
// отбрасывая повторы по идентификатору эмиссии.
type Storage interface {
	// Record сохраняет запись. Возвращает false, если запись с таким ID уже принималась.
	Record(m models.Metric) bool
	// Restore устанавливает последнюю запись и число эмиссий, сохранённые в файле.
	Restore(m models.Metric, emissions int64)
	// Latest возвращает последнюю запись метрики и флаг наличия.
	Latest(name models.MetricName) (models.Metric, bool)
	// Count возвращает количество принятых эмиссий метрики.
	Count(name models.MetricName) int64
	// GetAll возвращает срез всех метрик в виде MetricInfo.
	GetAll() []MetricInfo
}

// MemStorage реализует интерфейс Storage на основе памяти.
type MemStorage struct {
	latest map[models.MetricName]models.Metric // Последние записи
	counts map[models.MetricName]int64         // Количество эмиссий
	seen   map[string]struct{}                 // Уже принятые ID
	mu     sync.RWMutex                        // Мьютекс для конкурентного доступа
}

// MetricInfo содержит информацию о метрике для вывода.
//
// Name — имя метрики.
// Value — строковое представление последнего значения.
// Rating — оценка последнего значения.
// Count — количество принятых эмиссий.
type MetricInfo struct {
	Name   string
	Value  string
	Rating string
	Count  int64
	Metric models.Metric
}

// NewMemStorage создаёт и возвращает новый экземпляр MemStorage.
func NewMemStorage() Storage {
	return &MemStorage{
		latest: make(map[models.MetricName]models.Metric),
		counts: make(map[models.MetricName]int64),
		seen:   make(map[string]struct{}),
	}
}

// Record сохраняет запись, если её ID ещё не встречался.
func (s *MemStorage) Record(m models.Metric) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID != "" {
		if _, dup := s.seen[m.ID]; dup {
			return false
		}
		s.seen[m.ID] = struct{}{}
	}
	s.latest[m.Name] = m
	s.counts[m.Name]++
	return true
}

// Restore устанавливает последнюю запись метрики и счётчик эмиссий.
// Раз значение есть, эмиссий было не меньше одной.
func (s *MemStorage) Restore(m models.Metric, emissions int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if emissions < 1 {
		emissions = 1
	}
	if m.ID != "" {
		s.seen[m.ID] = struct{}{}
	}
	s.latest[m.Name] = m
	s.counts[m.Name] = emissions
}

// Latest возвращает последнюю запись метрики.
func (s *MemStorage) Latest(name models.MetricName) (models.Metric, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.latest[name]
	return m, ok
}

// Count возвращает количество принятых эмиссий метрики.
func (s *MemStorage) Count(name models.MetricName) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counts[name]
}

// GetAll возвращает последние значения всех метрик, отсортированные по имени.
func (s *MemStorage) GetAll() []MetricInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]MetricInfo, 0, len(s.latest))
	for name, m := range s.latest {
		result = append(result, MetricInfo{
			Name:   string(name),
			Value:  strconv.FormatFloat(m.Value, 'f', -1, 64),
			Rating: string(m.Rating),
			Count:  s.counts[name],
			Metric: m,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}
