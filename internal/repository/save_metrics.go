package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/RoGogDBD/vitals-monitor/internal/config"
	models "github.com/RoGogDBD/vitals-monitor/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// storedMetric — запись файла хранилища: последняя эмиссия и число принятых эмиссий.
type storedMetric struct {
	models.Metric
	Emissions int64 `json:"emissions"`
}

// SaveMetricsToFile записывает последние записи всех метрик в файл JSON-массивом.
func SaveMetricsToFile(storage Storage, filePath string) error {
	all := storage.GetAll()
	out := make([]storedMetric, 0, len(all))
	for _, mi := range all {
		out = append(out, storedMetric{Metric: mi.Metric, Emissions: mi.Count})
	}
	f, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	enc := json.NewEncoder(f)
	return enc.Encode(out)
}

// LoadMetricsFromFile восстанавливает последние записи из файла; записи с неизвестным именем пропускаются.
// Файлы без поля emissions восстанавливаются со счётчиком 1.
func LoadMetricsFromFile(storage Storage, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	data, err := io.ReadAll(f)
	if err != nil {
		return err
	}
	var metrics []storedMetric
	if err := json.Unmarshal(data, &metrics); err != nil {
		return err
	}
	for _, m := range metrics {
		if !m.Name.Valid() {
			continue
		}
		storage.Restore(m.Metric, m.Emissions)
	}
	return nil
}

const upsertLatest = `
	INSERT INTO web_vitals (name, value, delta, emission_id, rating, emissions, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (name) DO UPDATE
	SET value = EXCLUDED.value,
		delta = EXCLUDED.delta,
		emission_id = EXCLUDED.emission_id,
		rating = EXCLUDED.rating,
		emissions = EXCLUDED.emissions,
		updated_at = EXCLUDED.updated_at
`

const insertEmission = `
	INSERT INTO web_vitals_log (emission_id, name, value, delta, rating, emitted_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (emission_id) DO NOTHING
`

// SyncToDB записывает последние значения всех метрик в таблицу web_vitals одной транзакцией.
func SyncToDB(ctx context.Context, storage Storage, db *pgxpool.Pool) error {
	return config.RetryWithBackoff(ctx, func() error {
		metrics := storage.GetAll()

		tx, err := db.Begin(ctx)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback(ctx) }()

		for _, mi := range metrics {
			m := mi.Metric
			if _, err := tx.Exec(ctx, upsertLatest, string(m.Name), m.Value, m.Delta, m.ID, string(m.Rating), mi.Count, m.Timestamp); err != nil {
				return fmt.Errorf("failed to upsert %s: %w", m.Name, err)
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}

		return nil
	})
}

// InsertEmission дописывает одну эмиссию в журнал web_vitals_log. Повтор по ID игнорируется.
func InsertEmission(ctx context.Context, db *pgxpool.Pool, m models.Metric) error {
	return config.RetryWithBackoff(ctx, func() error {
		if _, err := db.Exec(ctx, insertEmission, m.ID, string(m.Name), m.Value, m.Delta, string(m.Rating), m.Timestamp); err != nil {
			return fmt.Errorf("failed to insert emission %s: %w", m.ID, err)
		}
		return nil
	})
}
