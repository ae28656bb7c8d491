package vitals

import models "github.com/RoGogDBD/vitals-monitor/internal/model"

type budget struct {
	good float64
	poor float64
}

// budgets — пороги "good" и "needs-improvement" для каждой метрики.
var budgets = map[models.MetricName]budget{
	models.CLS:  {good: 0.1, poor: 0.25},
	models.FID:  {good: 100, poor: 300},
	models.LCP:  {good: 2500, poor: 4000},
	models.FCP:  {good: 1800, poor: 3000},
	models.TTFB: {good: 800, poor: 1800},
}

// Rate оценивает значение метрики по бюджету. Для неизвестной метрики возвращает пустую оценку.
func Rate(name models.MetricName, value float64) models.Rating {
	b, ok := budgets[name]
	if !ok {
		return ""
	}
	switch {
	case value <= b.good:
		return models.RatingGood
	case value <= b.poor:
		return models.RatingNeedsImprovement
	default:
		return models.RatingPoor
	}
}
