package models

import "time"

// MetricName — имя метрики Core Web Vitals.
type MetricName string

// Имена поддерживаемых метрик.
const (
	CLS  MetricName = "CLS"  // Cumulative Layout Shift, безразмерная оценка
	FID  MetricName = "FID"  // First Input Delay, мс
	LCP  MetricName = "LCP"  // Largest Contentful Paint, мс
	FCP  MetricName = "FCP"  // First Contentful Paint, мс
	TTFB MetricName = "TTFB" // Time To First Byte, мс
)

// MetricNames перечисляет все метрики в порядке установки наблюдателей.
var MetricNames = []MetricName{CLS, FID, LCP, FCP, TTFB}

// Valid сообщает, является ли имя одной из известных метрик.
func (n MetricName) Valid() bool {
	for _, known := range MetricNames {
		if n == known {
			return true
		}
	}
	return false
}

// Rating — оценка значения метрики относительно бюджета производительности.
type Rating string

const (
	RatingGood             Rating = "good"
	RatingNeedsImprovement Rating = "needs-improvement"
	RatingPoor             Rating = "poor"
)

// Metric — нормализованная запись метрики, которую коллектор отдаёт потребителю.
//
// Поля:
//   - Name: имя метрики (CLS, FID, LCP, FCP, TTFB)
//   - Value: значение в естественных единицах метрики
//   - Delta: вклад наблюдения, вызвавшего эмиссию
//   - ID: уникальный идентификатор конкретной эмиссии (для дедупликации)
//   - Rating: оценка значения по бюджету
//   - Timestamp: момент эмиссии
type Metric struct {
	Name      MetricName `json:"name"`
	Value     float64    `json:"value"`
	Delta     float64    `json:"delta"`
	ID        string     `json:"id"`
	Rating    Rating     `json:"rating,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}
