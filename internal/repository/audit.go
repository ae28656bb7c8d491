package repository

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	models "github.com/RoGogDBD/vitals-monitor/internal/model"
	"go.uber.org/zap"
)

// FileAuditObserver дописывает события аудита в файл, по одному JSON на строку.
type FileAuditObserver struct {
	filePath string
	mu       sync.Mutex
}

// NewFileAuditObserver создаёт наблюдатель и каталог для файла аудита.
func NewFileAuditObserver(filePath string) (*FileAuditObserver, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create audit directory: %w", err)
	}
	return &FileAuditObserver{filePath: filePath}, nil
}

// OnAuditEvent записывает событие в файл.
func (f *FileAuditObserver) OnAuditEvent(event models.AuditEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.OpenFile(f.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open audit file: %w", err)
	}
	defer func() { _ = file.Close() }()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}

	if _, err := file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write audit event: %w", err)
	}

	return nil
}

// HTTPAuditObserver отправляет события аудита на удалённый сервер.
type HTTPAuditObserver struct {
	url    string
	client *http.Client
}

// NewHTTPAuditObserver создаёт наблюдатель с таймаутом запроса 5 секунд.
func NewHTTPAuditObserver(url string) *HTTPAuditObserver {
	return &HTTPAuditObserver{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

// OnAuditEvent отправляет событие POST-запросом с JSON-телом.
func (h *HTTPAuditObserver) OnAuditEvent(event models.AuditEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}

	resp, err := h.client.Post(h.url, "application/json", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to send audit event: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("audit server returned status %d", resp.StatusCode)
	}

	return nil
}

// AuditManager управляет списком наблюдателей аудита и уведомляет их о событиях.
type AuditManager struct {
	observers []models.AuditObserver
	logger    *zap.Logger
	mu        sync.RWMutex
}

// NewAuditManager создаёт AuditManager. Ошибки наблюдателей пишутся в logger.
func NewAuditManager(logger *zap.Logger) *AuditManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditManager{
		observers: make([]models.AuditObserver, 0),
		logger:    logger,
	}
}

// Attach добавляет наблюдателя к списку.
func (a *AuditManager) Attach(observer models.AuditObserver) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.observers = append(a.observers, observer)
}

// Detach удаляет наблюдателя из списка.
func (a *AuditManager) Detach(observer models.AuditObserver) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, obs := range a.observers {
		if obs == observer {
			a.observers = append(a.observers[:i], a.observers[i+1:]...)
			break
		}
	}
}

// Notify уведомляет всех наблюдателей. Ошибка одного наблюдателя не мешает остальным.
func (a *AuditManager) Notify(event models.AuditEvent) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	for _, observer := range a.observers {
		if err := observer.OnAuditEvent(event); err != nil {
			a.logger.Warn("Audit observer error", zap.Error(err))
		}
	}
}

// HasObservers проверяет, есть ли подключённые наблюдатели.
func (a *AuditManager) HasObservers() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.observers) > 0
}
