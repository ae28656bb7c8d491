package vitals

import (
	"math"

	models "github.com/RoGogDBD/vitals-monitor/internal/model"
)

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func validLayoutShift(e models.PerformanceEntry) bool {
	return finite(e.StartTime, e.Value) && e.StartTime >= 0 && e.Value >= 0
}

func validFirstInput(e models.PerformanceEntry) bool {
	return finite(e.StartTime, e.ProcessingStart) && e.StartTime >= 0 && e.ProcessingStart >= e.StartTime
}

func validPaint(e models.PerformanceEntry) bool {
	return finite(e.StartTime) && e.StartTime >= 0
}

func validNavigation(e models.PerformanceEntry) bool {
	return finite(e.FetchStart, e.ResponseStart) && e.FetchStart >= 0 && e.ResponseStart >= e.FetchStart
}
