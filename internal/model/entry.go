package models

// Типы записей производительности, на которые подписывается коллектор.
const (
	EntryLayoutShift            = "layout-shift"
	EntryFirstInput             = "first-input"
	EntryLargestContentfulPaint = "largest-contentful-paint"
	EntryPaint                  = "paint"
	EntryNavigation             = "navigation"
)

// FirstContentfulPaint — имя paint-записи, из которой берётся FCP.
const FirstContentfulPaint = "first-contentful-paint"

// PerformanceEntry — сырая запись производительности в том виде, в каком её присылает браузер.
//
// Набор заполненных полей зависит от EntryType: Value и HadRecentInput есть только у layout-shift,
// ProcessingStart — у first-input, FetchStart и ResponseStart — у navigation.
type PerformanceEntry struct {
	Name            string  `json:"name"`
	EntryType       string  `json:"entryType"`
	StartTime       float64 `json:"startTime"`
	Duration        float64 `json:"duration,omitempty"`
	Value           float64 `json:"value,omitempty"`
	HadRecentInput  bool    `json:"hadRecentInput,omitempty"`
	ProcessingStart float64 `json:"processingStart,omitempty"`
	FetchStart      float64 `json:"fetchStart,omitempty"`
	ResponseStart   float64 `json:"responseStart,omitempty"`
	Type            string  `json:"type,omitempty"`
}

// EntryBatch — пачка записей одного типа, доставляемая за одно срабатывание наблюдателя.
type EntryBatch struct {
	EntryType string             `json:"entryType"`
	Entries   []PerformanceEntry `json:"entries"`
}
