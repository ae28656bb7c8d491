package vitals

import (
	"strings"

	models "github.com/RoGogDBD/vitals-monitor/internal/model"
	"github.com/google/uuid"
)

// IDGenerator выдаёт идентификатор для очередной эмиссии метрики.
type IDGenerator func(name models.MetricName) string

// NewID возвращает идентификатор вида "cls-<uuid>".
func NewID(name models.MetricName) string {
	return strings.ToLower(string(name)) + "-" + uuid.NewString()
}
