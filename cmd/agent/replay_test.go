package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/RoGogDBD/vitals-monitor/internal/config"
	"github.com/RoGogDBD/vitals-monitor/internal/crypto"
	models "github.com/RoGogDBD/vitals-monitor/internal/model"
	"github.com/RoGogDBD/vitals-monitor/internal/sender"
	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeTrace(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trace.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTrace(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantErr   bool
		wantOrder []string
	}{
		{
			name: "sorted by offset",
			content: `[
				{"offset_ms":500,"entryType":"largest-contentful-paint","entries":[{"startTime":480}]},
				{"offset_ms":0,"entryType":"navigation","entries":[{"fetchStart":0,"responseStart":90}]},
				{"offset_ms":200,"entryType":"paint","entries":[{"name":"first-contentful-paint","startTime":190}]}
			]`,
			wantOrder: []string{"navigation", "paint", "largest-contentful-paint"},
		},
		{name: "missing entry type", content: `[{"offset_ms":1,"entries":[]}]`, wantErr: true},
		{name: "negative offset", content: `[{"offset_ms":-1,"entryType":"paint"}]`, wantErr: true},
		{name: "not json", content: `{`, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			steps, err := LoadTrace(writeTrace(t, tt.content))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			var order []string
			for _, s := range steps {
				order = append(order, s.EntryType)
			}
			require.Equal(t, tt.wantOrder, order)
		})
	}

	_, err := LoadTrace(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

type fakeSender struct {
	mu    sync.Mutex
	paths []string
	fail  map[string]bool
}

func (f *fakeSender) Send(_ context.Context, path string, _ any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, path)
	if f.fail[path] {
		return errors.New("rejected")
	}
	return nil
}

func (f *fakeSender) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.paths...)
}

func TestReplayer_RespectsOffsets(t *testing.T) {
	mock := clock.NewMock()
	s := &fakeSender{fail: map[string]bool{"/entries/first-input": true}}
	r := &Replayer{Sender: s, Clock: mock, Logger: zap.NewNop()}

	steps := []TraceStep{
		{OffsetMs: 0, EntryType: "navigation"},
		{OffsetMs: 1000, EntryType: "first-input"},
		{OffsetMs: 3000, EntryType: "layout-shift"},
	}

	type result struct {
		sent int
		err  error
	}
	done := make(chan result, 1)
	go func() {
		n, err := r.Replay(context.Background(), steps)
		done <- result{n, err}
	}()

	require.Eventually(t, func() bool { return len(s.sent()) == 1 }, time.Second, 5*time.Millisecond)
	require.Equal(t, []string{"/entries/navigation"}, s.sent())

	require.Eventually(t, func() bool {
		mock.Add(500 * time.Millisecond)
		return len(s.sent()) == 3
	}, time.Second, 5*time.Millisecond)

	res := <-done
	require.NoError(t, res.err)
	require.Equal(t, 2, res.sent, "failed step is skipped")
	require.Equal(t, []string{"/entries/navigation", "/entries/first-input", "/entries/layout-shift"}, s.sent())
}

func TestReplayer_StopsOnCancel(t *testing.T) {
	mock := clock.NewMock()
	s := &fakeSender{}
	r := &Replayer{Sender: s, Clock: mock, Logger: zap.NewNop()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := r.Replay(ctx, []TraceStep{{OffsetMs: 10_000, EntryType: "paint"}})
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, n)
	require.Empty(t, s.sent())
}

func TestReplayer_PostsToCollector(t *testing.T) {
	var got []models.PerformanceEntry
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		plain, err := config.GzipDecompress(r.Body)
		if err != nil {
			t.Errorf("gzip: %v", err)
			return
		}
		if !crypto.Verify(plain, "k", r.Header.Get(crypto.HeaderHash)) {
			t.Errorf("bad signature")
		}
		if err := json.Unmarshal(plain, &got); err != nil {
			t.Errorf("json: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := &Replayer{Sender: sender.New(srv.URL, "k"), Clock: clock.NewMock(), Logger: zap.NewNop()}
	n, err := r.Replay(context.Background(), []TraceStep{{
		EntryType: "first-input",
		Entries:   []models.PerformanceEntry{{StartTime: 100, ProcessingStart: 120}},
	}})
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, "/entries/first-input", gotPath)
	require.Len(t, got, 1)
	require.Equal(t, 120.0, got[0].ProcessingStart)
}
