package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/RoGogDBD/vitals-monitor/internal/crypto"
	models "github.com/RoGogDBD/vitals-monitor/internal/model"
	"github.com/RoGogDBD/vitals-monitor/internal/repository"
	"github.com/RoGogDBD/vitals-monitor/internal/vitals"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxBodyBytes ограничивает размер тела запроса с записями.
const maxBodyBytes = 4 << 20

type Publisher interface {
	Publish(entryType string, entries []models.PerformanceEntry) error
}

type RuntimeSource interface {
	Watch(ctx context.Context, onSnapshot func(models.Snapshot)) (done <-chan struct{}, release func())
	Snapshot() models.Snapshot
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	hub     Publisher
	storage repository.Storage
	runtime RuntimeSource
	db      Pinger
	audit   *repository.AuditManager
	logger  *zap.Logger
	key     string
}

func NewHandler(hub Publisher, storage repository.Storage, runtime RuntimeSource, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{hub: hub, storage: storage, runtime: runtime, logger: logger}
}

func (h *Handler) SetKey(key string) {
	h.key = key
}

func (h *Handler) SetDB(db Pinger) {
	h.db = db
}

func (h *Handler) SetAuditManager(audit *repository.AuditManager) {
	h.audit = audit
}

func (h *Handler) verifyHash(body []byte, receivedHash string) bool {
	if h.key == "" {
		return true
	}
	if receivedHash == "" {
		return false
	}
	return crypto.Verify(body, h.key, receivedHash)
}

func (h *Handler) writeJSONWithHash(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		h.logger.Error("Failed to marshal response", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if h.key != "" {
		w.Header().Set(crypto.HeaderHash, crypto.Sign(body, h.key))
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		h.logger.Debug("Failed to write response", zap.Error(err))
	}
}

// readSigned читает тело запроса и проверяет подпись. Тело уже распаковано GzipMiddleware.
func (h *Handler) readSigned(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return nil, false
	}
	if !h.verifyHash(body, r.Header.Get(crypto.HeaderHash)) {
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return nil, false
	}
	return body, true
}

// ingestResponse — ответ на приём пачки записей.
type ingestResponse struct {
	EntryType string `json:"entryType"`
	Accepted  int    `json:"accepted"`
}

// HandleIngest принимает JSON-массив записей одного типа: POST /entries/{entryType}.
func (h *Handler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	entryType := chi.URLParam(r, "entryType")

	body, ok := h.readSigned(w, r)
	if !ok {
		return
	}

	var entries []models.PerformanceEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	for i := range entries {
		if entries[i].EntryType == "" {
			entries[i].EntryType = entryType
		}
	}

	if err := h.hub.Publish(entryType, entries); err != nil {
		h.writePublishError(w, err)
		return
	}

	h.notifyAudit(r, []string{entryType})
	h.writeJSONWithHash(w, http.StatusOK, ingestResponse{EntryType: entryType, Accepted: len(entries)})
}

// HandleIngestBatch принимает JSON-массив пачек {entryType, entries}: POST /entries/.
//
// Пачки публикуются по порядку; первая пачка неподдерживаемого типа прерывает обработку с кодом 501,
// уже опубликованные пачки остаются принятыми.
func (h *Handler) HandleIngestBatch(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readSigned(w, r)
	if !ok {
		return
	}

	var batches []models.EntryBatch
	if err := json.Unmarshal(body, &batches); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	resp := make([]ingestResponse, 0, len(batches))
	types := make([]string, 0, len(batches))
	for _, b := range batches {
		if b.EntryType == "" {
			http.Error(w, "missing entryType", http.StatusBadRequest)
			return
		}
		for i := range b.Entries {
			if b.Entries[i].EntryType == "" {
				b.Entries[i].EntryType = b.EntryType
			}
		}
		if err := h.hub.Publish(b.EntryType, b.Entries); err != nil {
			h.writePublishError(w, err)
			return
		}
		resp = append(resp, ingestResponse{EntryType: b.EntryType, Accepted: len(b.Entries)})
		types = append(types, b.EntryType)
	}

	h.notifyAudit(r, types)
	h.writeJSONWithHash(w, http.StatusOK, resp)
}

func (h *Handler) writePublishError(w http.ResponseWriter, err error) {
	if errors.Is(err, vitals.ErrUnsupportedEntryType) {
		http.Error(w, err.Error(), http.StatusNotImplemented)
		return
	}
	h.logger.Error("Failed to publish entries", zap.Error(err))
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func (h *Handler) notifyAudit(r *http.Request, entryTypes []string) {
	if h.audit == nil || !h.audit.HasObservers() {
		return
	}
	h.audit.Notify(models.AuditEvent{
		Timestamp: time.Now().Unix(),
		Metrics:   entryTypes,
		IPAddress: clientIP(r),
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// vitalView — представление последней записи метрики в ответах API.
type vitalView struct {
	models.Metric
	Emissions int64 `json:"emissions"`
}

// HandleListVitals отдаёт последние записи всех метрик: GET /vitals.
func (h *Handler) HandleListVitals(w http.ResponseWriter, r *http.Request) {
	all := h.storage.GetAll()
	out := make([]vitalView, 0, len(all))
	for _, mi := range all {
		out = append(out, vitalView{Metric: mi.Metric, Emissions: mi.Count})
	}
	h.writeJSONWithHash(w, http.StatusOK, out)
}

// HandleGetVital отдаёт последнее значение метрики текстом: GET /vitals/{name}.
func (h *Handler) HandleGetVital(w http.ResponseWriter, r *http.Request) {
	name := models.MetricName(chi.URLParam(r, "name"))
	if !name.Valid() {
		http.Error(w, "unknown metric", http.StatusNotFound)
		return
	}
	m, ok := h.storage.Latest(name)
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(strconv.FormatFloat(m.Value, 'f', -1, 64)))
}

var pageTemplate = template.Must(template.New("vitals").Parse(`<html><body><h1>Web Vitals</h1><ul>
{{- range .}}<li>{{.Name}}: {{.Value}} ({{.Rating}}, {{.Count}} emissions)</li>{{end -}}
</ul></body></html>`))

// HandleVitalsPage отдаёт HTML-страницу с последними значениями: GET /.
func (h *Handler) HandleVitalsPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	if err := pageTemplate.Execute(w, h.storage.GetAll()); err != nil {
		h.logger.Debug("Failed to render vitals page", zap.Error(err))
	}
}

// HandleRuntime отдаёт последний снимок монитора: GET /runtime.
func (h *Handler) HandleRuntime(w http.ResponseWriter, r *http.Request) {
	h.writeJSONWithHash(w, http.StatusOK, h.runtime.Snapshot())
}

// HandleRuntimeStream активирует монитор на время запроса и отдаёт снимки как Server-Sent Events:
// GET /runtime/stream. Новое подключение снимает активацию предыдущего, и поток
// предыдущего клиента завершается.
func (h *Handler) HandleRuntimeStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	snapshots := make(chan models.Snapshot, 1)
	done, release := h.runtime.Watch(r.Context(), func(s models.Snapshot) {
		select {
		case snapshots <- s:
		default:
		}
	})
	defer release()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-done:
			h.logger.Debug("Runtime stream taken over by another client")
			return
		case s := <-snapshots:
			data, err := json.Marshal(s)
			if err != nil {
				h.logger.Error("Failed to marshal snapshot", zap.Error(err))
				return
			}
			if _, err := fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// HandlePing проверяет доступность БД: GET /ping.
func (h *Handler) HandlePing(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		http.Error(w, "database not configured", http.StatusInternalServerError)
		return
	}
	if err := h.db.Ping(r.Context()); err != nil {
		http.Error(w, "database not reachable: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
