package service

import (
	"context"

	"github.com/asquebay/food-order-service/internal/model"
)

// OrderItemRepository определяет контракт для хранилища позиций заказа
// в нём только те операции, которые приложение действительно вызывает
type OrderItemRepository interface {
	// Create сохраняет новую позицию и возвращает её с назначенным ID
	Create(ctx context.Context, item model.OrderItem) (model.OrderItem, error)
	// GetByID возвращает позицию или model.ErrOrderItemNotFound
	GetByID(ctx context.Context, id int64) (model.OrderItem, error)
	// GetAll возвращает все позиции в порядке возрастания ID
	GetAll(ctx context.Context) ([]model.OrderItem, error)
	// Update перезаписывает существующую позицию; model.ErrOrderItemNotFound, если её нет
	Update(ctx context.Context, item model.OrderItem) error
	// Delete удаляет позицию; model.ErrOrderItemNotFound, если её нет
	Delete(ctx context.Context, id int64) error
}

// OrderItemCache определяет контракт для in-memory кэша позиций заказа
type OrderItemCache interface {
	Set(item model.OrderItem)
	Get(id int64) (model.OrderItem, bool)
	Delete(id int64)
	LoadAll(items []model.OrderItem)
}

// OrderRequestPublisher передаёт принятый запрос на заказ его обработчику
type OrderRequestPublisher interface {
	PublishOrderRequest(ctx context.Context, receipt model.OrderReceipt) error
}
