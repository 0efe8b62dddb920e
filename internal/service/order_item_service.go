package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/asquebay/food-order-service/internal/lib/logger"
	"github.com/asquebay/food-order-service/internal/model"
)

// OrderItemService инкапсулирует бизнес-логику работы с позициями заказа
type OrderItemService struct {
	repo  OrderItemRepository
	cache OrderItemCache
	log   *slog.Logger
}

// NewOrderItemService создаёт новый экземпляр сервиса позиций заказа
// он принимает интерфейсы, а не конкретные типы, для гибкости и тестируемости
func NewOrderItemService(repo OrderItemRepository, cache OrderItemCache, log *slog.Logger) *OrderItemService {
	return &OrderItemService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// CreateOrderItem сохраняет позицию в БД и только в случае успеха кладёт её в кэш
func (s *OrderItemService) CreateOrderItem(ctx context.Context, item model.OrderItem) (model.OrderItem, error) {
	const op = "service.OrderItemService.CreateOrderItem"
	log := s.log.With(slog.String("op", op), slog.Int64("order_id", item.OrderID))

	if err := item.Validate(); err != nil {
		return model.OrderItem{}, fmt.Errorf("%s: %w", op, err)
	}

	created, err := s.repo.Create(ctx, item)
	if err != nil {
		log.Error("failed to save order item to repository", logger.Err(err))
		return model.OrderItem{}, fmt.Errorf("%s: %w", op, err)
	}

	s.cache.Set(created)
	log.Info("order item created", slog.Int64("id", created.ID))

	return created, nil
}

// GetOrderItem получает позицию по ID
// сначала ищет в кэше, и только если там нет, обращается к БД
func (s *OrderItemService) GetOrderItem(ctx context.Context, id int64) (model.OrderItem, error) {
	const op = "service.OrderItemService.GetOrderItem"
	log := s.log.With(slog.String("op", op), slog.Int64("id", id))

	if item, found := s.cache.Get(id); found {
		log.Debug("order item found in cache")
		return item, nil
	}

	log.Debug("order item not found in cache, will check repository")

	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		// не логируем как ошибку, если просто не найдено
		if !errors.Is(err, model.ErrOrderItemNotFound) {
			log.Error("failed to get order item from repository", logger.Err(err))
		}
		return model.OrderItem{}, fmt.Errorf("%s: %w", op, err)
	}

	s.cache.Set(item)
	log.Debug("order item found in repository and now cached")

	return item, nil
}

// ListOrderItems возвращает все позиции из БД; кэш здесь не участвует,
// потому что он может хранить только часть позиций
func (s *OrderItemService) ListOrderItems(ctx context.Context) ([]model.OrderItem, error) {
	const op = "service.OrderItemService.ListOrderItems"

	items, err := s.repo.GetAll(ctx)
	if err != nil {
		s.log.Error("failed to list order items", slog.String("op", op), logger.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

// UpdateOrderItem перезаписывает позицию в БД и обновляет кэш
func (s *OrderItemService) UpdateOrderItem(ctx context.Context, item model.OrderItem) (model.OrderItem, error) {
	const op = "service.OrderItemService.UpdateOrderItem"
	log := s.log.With(slog.String("op", op), slog.Int64("id", item.ID))

	if err := item.Validate(); err != nil {
		return model.OrderItem{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.Update(ctx, item); err != nil {
		if !errors.Is(err, model.ErrOrderItemNotFound) {
			log.Error("failed to update order item", logger.Err(err))
		}
		return model.OrderItem{}, fmt.Errorf("%s: %w", op, err)
	}

	// перечитываем из БД, чтобы вернуть и закэшировать итоговое состояние (например, created_at)
	updated, err := s.repo.GetByID(ctx, item.ID)
	if err != nil {
		s.cache.Delete(item.ID)
		log.Error("failed to read order item after update", logger.Err(err))
		return model.OrderItem{}, fmt.Errorf("%s: %w", op, err)
	}

	s.cache.Set(updated)
	log.Info("order item updated")

	return updated, nil
}

// DeleteOrderItem удаляет позицию из БД и из кэша
func (s *OrderItemService) DeleteOrderItem(ctx context.Context, id int64) error {
	const op = "service.OrderItemService.DeleteOrderItem"
	log := s.log.With(slog.String("op", op), slog.Int64("id", id))

	// из кэша убираем и до, и после удаления: параллельный GetOrderItem
	// мог успеть положить в кэш ещё не удалённую строку
	s.cache.Delete(id)
	err := s.repo.Delete(ctx, id)
	s.cache.Delete(id)

	if err != nil {
		if !errors.Is(err, model.ErrOrderItemNotFound) {
			log.Error("failed to delete order item", logger.Err(err))
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("order item deleted")
	return nil
}

// RestoreCache восстанавливает состояние кэша из базы данных при старте
func (s *OrderItemService) RestoreCache(ctx context.Context) error {
	const op = "service.OrderItemService.RestoreCache"
	log := s.log.With(slog.String("op", op))

	log.Info("starting cache restoration from database")

	items, err := s.repo.GetAll(ctx)
	if err != nil {
		log.Error("failed to get all order items from repository", logger.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	s.cache.LoadAll(items)

	log.Info("cache restored successfully", slog.Int("order_items_count", len(items)))
	return nil
}
