package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	models "github.com/RoGogDBD/vitals-monitor/internal/model"
	"github.com/RoGogDBD/vitals-monitor/internal/sender"
	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// TraceStep — пачка записей, которую нужно отправить через OffsetMs после старта воспроизведения.
type TraceStep struct {
	OffsetMs  int64                     `json:"offset_ms"`
	EntryType string                    `json:"entryType"`
	Entries   []models.PerformanceEntry `json:"entries"`
}

// LoadTrace читает трассу из JSON-файла и упорядочивает шаги по смещению.
func LoadTrace(path string) ([]TraceStep, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}
	var steps []TraceStep
	if err := json.Unmarshal(data, &steps); err != nil {
		return nil, fmt.Errorf("failed to parse trace: %w", err)
	}
	for i, s := range steps {
		if s.EntryType == "" {
			return nil, fmt.Errorf("trace step %d: missing entryType", i)
		}
		if s.OffsetMs < 0 {
			return nil, fmt.Errorf("trace step %d: negative offset", i)
		}
	}
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].OffsetMs < steps[j].OffsetMs })
	return steps, nil
}

// Replayer отправляет шаги трассы коллектору, соблюдая их смещения.
type Replayer struct {
	Sender sender.Sender
	Clock  clock.Clock
	Logger *zap.Logger
}

// Replay проигрывает трассу. Ошибка отправки шага логируется, воспроизведение продолжается.
// Возвращает количество успешно отправленных шагов.
func (r *Replayer) Replay(ctx context.Context, steps []TraceStep) (int, error) {
	start := r.Clock.Now()
	sent := 0
	for _, step := range steps {
		due := start.Add(time.Duration(step.OffsetMs) * time.Millisecond)
		if wait := due.Sub(r.Clock.Now()); wait > 0 {
			timer := r.Clock.Timer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return sent, ctx.Err()
			case <-timer.C:
			}
		}

		if err := r.Sender.Send(ctx, "/entries/"+step.EntryType, step.Entries); err != nil {
			r.Logger.Error("Failed to send trace step",
				zap.String("entryType", step.EntryType),
				zap.Int64("offset_ms", step.OffsetMs),
				zap.Error(err),
			)
			continue
		}
		sent++
		r.Logger.Debug("Trace step sent", zap.String("entryType", step.EntryType), zap.Int("entries", len(step.Entries)))
	}
	return sent, nil
}
