package sink

import (
	"context"
	"encoding/json"
	"time"

	models "github.com/RoGogDBD/vitals-monitor/internal/model"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageWriter — часть kafka.Writer, которой пользуется KafkaSink.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink публикует записи в топик Kafka, ключ сообщения — имя метрики.
type KafkaSink struct {
	writer MessageWriter
	logger *zap.Logger
}

// NewKafkaWriter создаёт асинхронный kafka.Writer для topic.
func NewKafkaWriter(brokers []string, topic string, logger *zap.Logger) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchTimeout: 100 * time.Millisecond,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to publish vitals to Kafka", zap.Int("count", len(messages)), zap.Error(err))
			}
		},
	}
}

// NewKafkaSink создаёт KafkaSink поверх writer.
func NewKafkaSink(writer MessageWriter, logger *zap.Logger) *KafkaSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaSink{writer: writer, logger: logger}
}

// Handle публикует запись.
func (k *KafkaSink) Handle(m models.Metric) {
	data, err := json.Marshal(m)
	if err != nil {
		k.logger.Error("Failed to marshal metric", zap.String("id", m.ID), zap.Error(err))
		return
	}
	msg := kafka.Message{
		Key:   []byte(m.Name),
		Value: data,
		Time:  m.Timestamp,
	}
	if err := k.writer.WriteMessages(context.Background(), msg); err != nil {
		k.logger.Error("Failed to publish vital", zap.String("id", m.ID), zap.Error(err))
	}
}

// Close закрывает writer, дожидаясь отправки буфера.
func (k *KafkaSink) Close() error {
	return k.writer.Close()
}
