package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/asquebay/food-order-service/internal/lib/logger"
	"github.com/asquebay/food-order-service/internal/model"
)

// OrderService принимает запросы на оформление заказа и передаёт их обработчику заказов
type OrderService struct {
	publisher OrderRequestPublisher
	log       *slog.Logger
	now       func() time.Time
	newID     func() string
}

// NewOrderService создаёт сервис оформления заказов
func NewOrderService(publisher OrderRequestPublisher, log *slog.Logger) *OrderService {
	return &OrderService{
		publisher: publisher,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     func() string { return uuid.NewString() },
	}
}

// PlaceOrder проверяет запрос, присваивает ему идентификатор и публикует его
// запрос не изменяется: ресторан и адрес попадают в квитанцию как есть
func (s *OrderService) PlaceOrder(ctx context.Context, req model.OrderRequest) (model.OrderReceipt, error) {
	const op = "service.OrderService.PlaceOrder"

	if err := req.Validate(); err != nil {
		return model.OrderReceipt{}, fmt.Errorf("%s: %w", op, err)
	}

	receipt := model.OrderReceipt{
		RequestID:       s.newID(),
		RestaurantID:    req.RestaurantID,
		DeliveryAddress: req.DeliveryAddress,
		Status:          model.OrderStatusAccepted,
		AcceptedAt:      s.now(),
	}
	log := s.log.With(
		slog.String("op", op),
		slog.String("request_id", receipt.RequestID),
		slog.Int64("restaurant_id", receipt.RestaurantID),
	)

	if err := s.publisher.PublishOrderRequest(ctx, receipt); err != nil {
		log.Error("failed to publish order request", logger.Err(err))
		return model.OrderReceipt{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("order request accepted")
	return receipt, nil
}
