// Package sink содержит потребителей записей Web Vitals: лог, хранилище, пересылку и Kafka.
package sink

import (
	"context"

	models "github.com/RoGogDBD/vitals-monitor/internal/model"
	"github.com/RoGogDBD/vitals-monitor/internal/repository"
	"github.com/RoGogDBD/vitals-monitor/internal/vitals"
	"go.uber.org/zap"
)

// Fanout объединяет несколько обработчиков в один.
//
// Паника одного обработчика логируется и не мешает остальным.
func Fanout(logger *zap.Logger, handlers ...vitals.ReportHandler) vitals.ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(m models.Metric) {
		for _, h := range handlers {
			if h == nil {
				continue
			}
			func() {
				defer func() {
					if r := recover(); r != nil {
						logger.Warn("Report sink panicked", zap.String("metric", string(m.Name)), zap.Any("panic", r))
					}
				}()
				h(m)
			}()
		}
	}
}

// LogSink пишет каждую запись в лог на уровне Info.
func LogSink(logger *zap.Logger) vitals.ReportHandler {
	return func(m models.Metric) {
		logger.Info("Web Vital",
			zap.String("name", string(m.Name)),
			zap.Float64("value", m.Value),
			zap.Float64("delta", m.Delta),
			zap.String("id", m.ID),
			zap.String("rating", string(m.Rating)),
		)
	}
}

// StorageSink сохраняет записи в storage. Повторные ID отбрасываются.
func StorageSink(storage repository.Storage, logger *zap.Logger) vitals.ReportHandler {
	return func(m models.Metric) {
		if !storage.Record(m) {
			logger.Debug("Duplicate Web Vitals emission ignored", zap.String("id", m.ID))
		}
	}
}

// FileSink сохраняет хранилище в файл после каждой записи (STORE_INTERVAL=0).
//
// Файл перезаписывается целиком и синхронно, внутри доставки хаба: приём записей этого типа
// ждёт диска. Для низкой задержки приёма используется STORE_INTERVAL>0.
func FileSink(storage repository.Storage, filePath string, logger *zap.Logger) vitals.ReportHandler {
	return func(models.Metric) {
		if err := repository.SaveMetricsToFile(storage, filePath); err != nil {
			logger.Error("Failed to save vitals", zap.String("file", filePath), zap.Error(err))
		}
	}
}

// EmissionSaver дописывает эмиссию в постоянное хранилище.
type EmissionSaver interface {
	SaveEmission(ctx context.Context, m models.Metric) error
}

// DBSink дописывает каждую эмиссию в журнал БД.
func DBSink(ctx context.Context, saver EmissionSaver, logger *zap.Logger) vitals.ReportHandler {
	return func(m models.Metric) {
		if err := saver.SaveEmission(ctx, m); err != nil {
			logger.Error("Failed to save emission to DB", zap.String("id", m.ID), zap.Error(err))
		}
	}
}
