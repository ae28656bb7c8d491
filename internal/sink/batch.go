package sink

import models "github.com/RoGogDBD/vitals-monitor/internal/model"

// Batch — буфер записей, ожидающих пересылки. Переиспользуется через pool.Pool.
type Batch struct {
	Metrics []models.Metric
}

// Reset очищает буфер, сохраняя ёмкость.
func (b *Batch) Reset() {
	if b == nil {
		return
	}
	b.Metrics = b.Metrics[:0]
}
