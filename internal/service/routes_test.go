package service

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/RoGogDBD/vitals-monitor/internal/config"
	"github.com/RoGogDBD/vitals-monitor/internal/handler"
	models "github.com/RoGogDBD/vitals-monitor/internal/model"
	"github.com/RoGogDBD/vitals-monitor/internal/monitor"
	"github.com/RoGogDBD/vitals-monitor/internal/repository"
	"github.com/RoGogDBD/vitals-monitor/internal/vitals"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) (http.Handler, repository.Storage) {
	t.Helper()
	hub := vitals.NewHub()
	storage := repository.NewMemStorage()
	vitals.NewCollector(hub, zap.NewNop()).Report(func(m models.Metric) { storage.Record(m) })
	h := handler.NewHandler(hub, storage, monitor.New(monitor.WithHeapSizer(monitor.NoHeap{})), zap.NewNop())
	return NewRouter(h, zap.NewNop()), storage
}

func TestNewRouter_TableDriven(t *testing.T) {
	r, _ := newTestRouter(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       []byte
		wantStatus int
	}{
		{"ingest paint", http.MethodPost, "/entries/paint", []byte(`[{"name":"first-contentful-paint","startTime":700}]`), http.StatusOK},
		{"ingest batch", http.MethodPost, "/entries/", []byte(`[{"entryType":"first-input","entries":[{"startTime":5,"processingStart":9}]}]`), http.StatusOK},
		{"unsupported type", http.MethodPost, "/entries/resource", []byte(`[]`), http.StatusNotImplemented},
		{"list vitals", http.MethodGet, "/vitals", nil, http.StatusOK},
		{"unknown vital", http.MethodGet, "/vitals/INP", nil, http.StatusNotFound},
		{"runtime", http.MethodGet, "/runtime", nil, http.StatusOK},
		{"ping without db", http.MethodGet, "/ping", nil, http.StatusInternalServerError},
		{"page", http.MethodGet, "/", nil, http.StatusOK},
		{"wrong method", http.MethodGet, "/entries/paint", nil, http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, bytes.NewReader(tt.body))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestNewRouter_GzipIngest(t *testing.T) {
	r, storage := newTestRouter(t)

	body, err := config.GzipCompress([]byte(`[{"startTime":3100}]`))
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/entries/largest-contentful-paint", bytes.NewReader(body))
	req.Header.Set("Content-Encoding", "gzip")
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	m, ok := storage.Latest(models.LCP)
	require.True(t, ok)
	require.Equal(t, 3100.0, m.Value)
	require.Equal(t, models.RatingNeedsImprovement, m.Rating)
}
