package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/asquebay/food-order-service/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"
)

// messageWriter — часть kafka.Writer, которой пользуется продюсер
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer публикует принятые запросы на заказ для обработчика заказов
type Producer struct {
	writer messageWriter
	stats  func() kafka.WriterStats
	log    *slog.Logger
}

// NewProducer создаёт продюсер для топика topic
// сообщения с одним ключом попадают в одну партицию
func NewProducer(brokers []string, topic string, log *slog.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}

	return &Producer{
		writer: writer,
		stats:  writer.Stats,
		log:    log.With(slog.String("component", "kafka_producer")),
	}
}

// PublishOrderRequest отправляет квитанцию в кафку, ключом служит RequestID
func (p *Producer) PublishOrderRequest(ctx context.Context, receipt model.OrderReceipt) error {
	const op = "transport.kafka.Producer.PublishOrderRequest"

	value, err := json.Marshal(receipt)
	if err != nil {
		return fmt.Errorf("%s: failed to marshal receipt: %w", op, err)
	}

	msg := kafka.Message{
		Key:   []byte(receipt.RequestID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("%s: failed to write message: %w", op, err)
	}

	p.log.Debug("order request published", slog.String("request_id", receipt.RequestID))
	return nil
}

// Collector отдаёт статистику writer-а в формате prometheus
func (p *Producer) Collector() prometheus.Collector {
	return newWriterCollector(p.stats)
}

// Close дожидается отправки буферизованных сообщений и закрывает writer
func (p *Producer) Close() error {
	p.log.Info("closing kafka producer")
	return p.writer.Close()
}
