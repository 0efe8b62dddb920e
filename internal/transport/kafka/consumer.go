package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/asquebay/food-order-service/internal/lib/logger"
	"github.com/asquebay/food-order-service/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"
)

const (
	defaultRetryBaseDelay = 500 * time.Millisecond
	defaultRetryMaxDelay  = 30 * time.Second
)

// OrderItemCreator — это интерфейс, который абстрагирует консьюмер
// от конкретной реализации сервисного слоя
type OrderItemCreator interface {
	CreateOrderItem(ctx context.Context, item model.OrderItem) (model.OrderItem, error)
}

// messageReader — часть kafka.Reader, которой пользуется консьюмер
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer читает позиции заказа из кафки и сохраняет их через сервис
type Consumer struct {
	reader  messageReader
	stats   func() kafka.ReaderStats
	service OrderItemCreator
	log     *slog.Logger

	retryBaseDelay time.Duration
	retryMaxDelay  time.Duration
}

// NewConsumer создает новый экземпляр консьюмера в составе группы groupID
func NewConsumer(brokers []string, topic, groupID string, service OrderItemCreator, log *slog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		StartOffset: kafka.FirstOffset, // для новой группы читаем топик с начала
	})

	return &Consumer{
		reader:         reader,
		stats:          reader.Stats,
		service:        service,
		log:            log.With(slog.String("component", "kafka_consumer")),
		retryBaseDelay: defaultRetryBaseDelay,
		retryMaxDelay:  defaultRetryMaxDelay,
	}
}

// Run запускает цикл чтения сообщений из Kafka
// эта функция блокирующая, поэтому она запускается в отдельной горутине
func (c *Consumer) Run(ctx context.Context) {
	c.log.Info("kafka consumer started")

	for {
		// FetchMessage блокирует до тех пор, пока не придет новое сообщение или не возникнет ошибка
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			// отмена контекста или закрытый ридер означают нормальное завершение
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) || ctx.Err() != nil {
				c.log.Info("kafka consumer stopped")
				return
			}
			c.log.Error("failed to fetch message", logger.Err(err))
			continue
		}

		c.log.Debug("received message",
			slog.String("topic", msg.Topic),
			slog.Int("partition", msg.Partition),
			slog.Int64("offset", msg.Offset),
		)

		// следующее сообщение не читаем, пока это не обработано:
		// коммит более позднего offset-а подтвердил бы и это сообщение тоже
		if err := c.handleWithRetry(ctx, msg); err != nil {
			c.log.Info("kafka consumer stopped", slog.Int64("uncommitted_offset", msg.Offset))
			return
		}

		// offset фиксируем только ПОСЛЕ успешной обработки
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.log.Error("failed to commit message", logger.Err(err))
		}
	}
}

// handleWithRetry повторяет обработку сообщения с экспоненциальной задержкой,
// пока она не пройдёт успешно или не будет отменён контекст
func (c *Consumer) handleWithRetry(ctx context.Context, msg kafka.Message) error {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := c.handleMessage(ctx, msg)
		if err == nil {
			return nil
		}

		delay := c.retryBackoff(attempt)
		c.log.Warn("failed to handle message, retrying",
			logger.Err(err),
			slog.Int64("offset", msg.Offset),
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

func (c *Consumer) retryBackoff(attempt int) time.Duration {
	delay := c.retryBaseDelay
	for i := 1; i < attempt && delay < c.retryMaxDelay; i++ {
		delay *= 2
	}
	return min(delay, c.retryMaxDelay)
}

// handleMessage парсит и обрабатывает одно сообщение
// ошибка возвращается только тогда, когда сообщение имеет смысл обработать повторно
func (c *Consumer) handleMessage(ctx context.Context, msg kafka.Message) error {
	var item model.OrderItem

	if err := json.Unmarshal(msg.Value, &item); err != nil {
		// перечитывать невалидный JSON бессмысленно
		c.log.Warn("failed to unmarshal message, skipping", logger.Err(err), slog.Int64("offset", msg.Offset))
		return nil
	}

	// ID назначает хранилище, значение из сообщения игнорируем
	item.ID = 0

	if err := item.Validate(); err != nil {
		c.log.Warn("message validation failed, skipping", logger.Err(err), slog.Int64("order_id", item.OrderID))
		return nil
	}

	created, err := c.service.CreateOrderItem(ctx, item)
	if err != nil {
		c.log.Error("failed to create order item in service", logger.Err(err), slog.Int64("order_id", item.OrderID))
		return err
	}

	c.log.Info("order item successfully processed", slog.Int64("id", created.ID), slog.Int64("order_id", created.OrderID))
	return nil
}

// Collector отдаёт статистику ридера в формате prometheus
func (c *Consumer) Collector() prometheus.Collector {
	return newReaderCollector(c.stats)
}

// Close закрывает ридер
func (c *Consumer) Close() error {
	c.log.Info("closing kafka consumer")
	return c.reader.Close()
}
