package monitor

import (
	"context"
	"sync"
	"testing"
	"time"

	models "github.com/RoGogDBD/vitals-monitor/internal/model"
	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// fixedHeap — HeapSizer с заранее заданным ответом.
type fixedHeap struct {
	bytes uint64
	ok    bool
}

func (f fixedHeap) HeapBytes() (uint64, bool) { return f.bytes, f.ok }

type panicHeap struct{}

func (panicHeap) HeapBytes() (uint64, bool) { panic("no heap") }

// sink собирает снимки, пришедшие из горутины монитора.
type sink struct {
	mu    sync.Mutex
	snaps []models.Snapshot
}

func (s *sink) add(snap models.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps = append(s.snaps, snap)
}

func (s *sink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.snaps)
}

func (s *sink) last() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snaps[len(s.snaps)-1]
}

func TestMonitor_ActivateComputesImmediately(t *testing.T) {
	mock := clock.NewMock()
	m := New(WithClock(mock), WithHeapSizer(fixedHeap{bytes: 50 * 1024 * 1024, ok: true}))
	s := &sink{}

	release := m.Activate(context.Background(), s.add)
	defer release()

	require.Equal(t, 1, s.len())
	require.Equal(t, models.Snapshot{MemoryUsageMB: 50, RenderCount: 1, LoadTimeMs: 0}, s.last())
	require.Equal(t, s.last(), m.Snapshot())
	require.True(t, m.Active())
}

func TestMonitor_TicksEverySecond(t *testing.T) {
	mock := clock.NewMock()
	m := New(WithClock(mock), WithHeapSizer(fixedHeap{bytes: 3 * 1024 * 1024, ok: true}))
	s := &sink{}

	release := m.Activate(context.Background(), s.add)
	defer release()

	mock.Add(time.Second)
	require.Eventually(t, func() bool { return s.len() == 2 }, time.Second, 5*time.Millisecond)
	require.Equal(t, int64(1000), s.last().LoadTimeMs)

	mock.Add(time.Second)
	require.Eventually(t, func() bool { return s.len() == 3 }, time.Second, 5*time.Millisecond)
	require.Equal(t, int64(2000), s.last().LoadTimeMs)
	require.Equal(t, 3, s.last().MemoryUsageMB)
}

func TestMonitor_ActivationCounterAndTeardown(t *testing.T) {
	mock := clock.NewMock()
	m := New(WithClock(mock), WithHeapSizer(NoHeap{}))
	s := &sink{}

	for i := 0; i < 3; i++ {
		release := m.Activate(context.Background(), s.add)
		mock.Add(250 * time.Millisecond)
		release()
		require.False(t, m.Active())
	}

	require.Equal(t, int64(3), s.last().RenderCount)
	require.Equal(t, int64(500), s.last().LoadTimeMs)

	before := s.len()
	mock.Add(10 * time.Second)
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, before, s.len(), "no snapshot updates after deactivation")
}

func TestMonitor_ReactivationReleasesPreviousTicker(t *testing.T) {
	mock := clock.NewMock()
	m := New(WithClock(mock), WithHeapSizer(NoHeap{}))
	first, second := &sink{}, &sink{}

	releaseFirst := m.Activate(context.Background(), first.add)
	releaseSecond := m.Activate(context.Background(), second.add)
	defer releaseSecond()

	mock.Add(time.Second)
	require.Eventually(t, func() bool { return second.len() == 2 }, time.Second, 5*time.Millisecond)
	require.Equal(t, 1, first.len())
	require.Equal(t, int64(2), second.last().RenderCount)

	releaseFirst()
	require.True(t, m.Active())
}

func TestMonitor_WatchDoneOnTakeover(t *testing.T) {
	m := New(WithClock(clock.NewMock()), WithHeapSizer(NoHeap{}))

	firstDone, releaseFirst := m.Watch(context.Background(), nil)
	defer releaseFirst()
	select {
	case <-firstDone:
		t.Fatal("scope finished before takeover")
	default:
	}

	secondDone, releaseSecond := m.Watch(context.Background(), nil)
	select {
	case <-firstDone:
	default:
		t.Fatal("previous scope not finished after takeover")
	}

	releaseSecond()
	select {
	case <-secondDone:
	default:
		t.Fatal("scope not finished after release")
	}
}

func TestMonitor_ContextCancelDeactivates(t *testing.T) {
	mock := clock.NewMock()
	m := New(WithClock(mock), WithHeapSizer(NoHeap{}))
	s := &sink{}

	ctx, cancel := context.WithCancel(context.Background())
	release := m.Activate(ctx, s.add)
	cancel()
	require.Eventually(t, func() bool { return !m.Active() }, time.Second, 5*time.Millisecond)

	mock.Add(3 * time.Second)
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, 1, s.len())
	release()
}

func TestMonitor_MemoryDegradesToZero(t *testing.T) {
	tests := []struct {
		name string
		heap HeapSizer
	}{
		{"no heap", NoHeap{}},
		{"nil heap", nil},
		{"unsupported", fixedHeap{bytes: 1 << 30, ok: false}},
		{"panicking heap", panicHeap{}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			mock := clock.NewMock()
			core, logs := observer.New(zapcore.WarnLevel)
			m := New(WithClock(mock), WithHeapSizer(tt.heap), WithLogger(zap.New(core)))
			s := &sink{}

			var release func()
			require.NotPanics(t, func() { release = m.Activate(context.Background(), s.add) })
			defer release()

			mock.Add(time.Second)
			require.Eventually(t, func() bool { return s.len() == 2 }, time.Second, 5*time.Millisecond)

			snap := s.last()
			require.Equal(t, 0, snap.MemoryUsageMB)
			require.Equal(t, int64(1), snap.RenderCount)
			require.Equal(t, int64(1000), snap.LoadTimeMs)
			require.GreaterOrEqual(t, logs.Len(), 1)
		})
	}
}

func TestMonitor_NilConsumerAndPanickingConsumer(t *testing.T) {
	mock := clock.NewMock()
	m := New(WithClock(mock), WithHeapSizer(NoHeap{}))

	release := m.Activate(context.Background(), nil)
	release()
	require.Equal(t, int64(1), m.Snapshot().RenderCount)

	require.NotPanics(t, func() {
		release = m.Activate(context.Background(), func(models.Snapshot) { panic("render failed") })
	})
	release()
	require.Equal(t, int64(2), m.Snapshot().RenderCount)
}

func TestMonitor_ReleaseIsIdempotent(t *testing.T) {
	m := New(WithClock(clock.NewMock()))
	release := m.Activate(context.Background(), nil)
	release()
	require.NotPanics(t, release)
}

func TestHeapSizerFor(t *testing.T) {
	tests := []struct {
		source  string
		wantErr bool
	}{
		{"", false},
		{"runtime", false},
		{"Process", false},
		{"none", false},
		{"wasm", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.source, func(t *testing.T) {
			h, err := HeapSizerFor(tt.source)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, h)
		})
	}
}

func TestRuntimeHeap(t *testing.T) {
	b, ok := RuntimeHeap{}.HeapBytes()
	require.True(t, ok)
	require.Greater(t, b, uint64(0))
}
