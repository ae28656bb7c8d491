package sink

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	models "github.com/RoGogDBD/vitals-monitor/internal/model"
	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingSender struct {
	mu    sync.Mutex
	paths []string
	sent  [][]models.Metric
	err   error
}

func (r *recordingSender) Send(_ context.Context, path string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
	batch := payload.([]models.Metric)
	r.sent = append(r.sent, append([]models.Metric(nil), batch...))
	return r.err
}

func (r *recordingSender) batches() [][]models.Metric {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]models.Metric(nil), r.sent...)
}

func TestForwarder_Flush(t *testing.T) {
	s := &recordingSender{}
	f := NewForwarder(s, time.Second, zap.NewNop())

	f.Flush(context.Background())
	require.Empty(t, s.batches(), "empty batch is not sent")

	f.Handle(metric(models.LCP, "lcp-1", 1000))
	f.Handle(metric(models.CLS, "cls-1", 0.1))
	require.Equal(t, 2, f.Pending())

	f.Flush(context.Background())

	sent := s.batches()
	require.Len(t, sent, 1)
	require.Equal(t, []string{ForwardPath}, s.paths)
	require.Equal(t, "lcp-1", sent[0][0].ID)
	require.Equal(t, "cls-1", sent[0][1].ID)
	require.Zero(t, f.Pending())
}

func TestForwarder_SendErrorLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	s := &recordingSender{err: errors.New("unreachable")}
	f := NewForwarder(s, time.Second, zap.New(core))

	f.Handle(metric(models.FID, "fid-1", 10))
	f.Flush(context.Background())

	require.Equal(t, 1, logs.FilterMessage("Failed to forward vitals").Len())
	require.Zero(t, f.Pending())
}

func TestForwarder_RunTicksAndFlushesOnStop(t *testing.T) {
	mock := clock.NewMock()
	s := &recordingSender{}
	f := NewForwarder(s, 10*time.Second, zap.NewNop(), WithForwarderClock(mock))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()

	f.Handle(metric(models.TTFB, "ttfb-1", 200))
	require.Eventually(t, func() bool {
		mock.Add(10 * time.Second)
		return len(s.batches()) == 1
	}, time.Second, 10*time.Millisecond)

	f.Handle(metric(models.TTFB, "ttfb-2", 250))
	cancel()
	require.NoError(t, <-done)

	sent := s.batches()
	require.Len(t, sent, 2)
	require.Equal(t, "ttfb-2", sent[1][0].ID)
}
