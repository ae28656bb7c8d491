package models

// Snapshot — срез состояния процесса для панели мониторинга.
type Snapshot struct {
	MemoryUsageMB int   `json:"memoryUsageMB"`
	RenderCount   int64 `json:"renderCount"`
	LoadTimeMs    int64 `json:"loadTimeMs"`
}
