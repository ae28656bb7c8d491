package service

import (
	"github.com/RoGogDBD/vitals-monitor/internal/config"
	"github.com/RoGogDBD/vitals-monitor/internal/handler"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NewRouter создает и настраивает HTTP-роутер коллектора.
//
// Приём записей идёт через GzipMiddleware (распаковка тел запросов),
// ответы сжимаются middleware.Compress; поток /runtime/stream отдаётся без сжатия,
// так как text/event-stream не входит в список сжимаемых типов.
func NewRouter(h *handler.Handler, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)         // Добавляет уникальный идентификатор запроса
	r.Use(middleware.RealIP)            // Определяет реальный IP клиента
	r.Use(config.RequestLogger(logger)) // Логирует запросы с помощью zap
	r.Use(middleware.Recoverer)         // Восстанавливает после паники
	r.Use(middleware.Compress(5))       // Сжимает ответы

	// Приём записей производительности
	r.Group(func(r chi.Router) {
		r.Use(config.GzipMiddleware)
		r.Post("/entries/", h.HandleIngestBatch)
		r.Post("/entries/{entryType}", h.HandleIngest)
	})

	// Чтение результатов
	r.Get("/vitals", h.HandleListVitals)
	r.Get("/vitals/", h.HandleListVitals)
	r.Get("/vitals/{name}", h.HandleGetVital)
	r.Get("/runtime", h.HandleRuntime)
	r.Get("/runtime/stream", h.HandleRuntimeStream)
	r.Get("/ping", h.HandlePing)
	r.Get("/", h.HandleVitalsPage)

	return r
}
