package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/asquebay/food-order-service/internal/model"
)

// OrderItemRepository — in-memory реализация хранилища позиций заказа
// используется в тестах и для локального запуска без БД
type OrderItemRepository struct {
	mu     sync.RWMutex
	items  map[int64]model.OrderItem
	nextID int64
	now    func() time.Time
}

// NewOrderItemRepository создаёт пустое in-memory хранилище
func NewOrderItemRepository() *OrderItemRepository {
	return &OrderItemRepository{
		items: make(map[int64]model.OrderItem),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Create назначает позиции следующий ID и сохраняет её копию
func (r *OrderItemRepository) Create(ctx context.Context, item model.OrderItem) (model.OrderItem, error) {
	if err := ctx.Err(); err != nil {
		return model.OrderItem{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	item.ID = r.nextID
	if item.CreatedAt.IsZero() {
		item.CreatedAt = r.now()
	}
	// сохраняем копию, чтобы избежать мутаций извне
	r.items[item.ID] = item.Clone()
	return item, nil
}

// GetByID возвращает позицию или model.ErrOrderItemNotFound
func (r *OrderItemRepository) GetByID(ctx context.Context, id int64) (model.OrderItem, error) {
	if err := ctx.Err(); err != nil {
		return model.OrderItem{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return model.OrderItem{}, model.ErrOrderItemNotFound
	}
	return item.Clone(), nil
}

// GetAll возвращает все позиции, отсортированные по ID
func (r *OrderItemRepository) GetAll(ctx context.Context) ([]model.OrderItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]model.OrderItem, 0, len(r.items))
	for _, item := range r.items {
		result = append(result, item.Clone())
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Update перезаписывает позицию целиком, сохраняя исходное время создания, если новое не задано
func (r *OrderItemRepository) Update(ctx context.Context, item model.OrderItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[item.ID]
	if !ok {
		return model.ErrOrderItemNotFound
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = current.CreatedAt
	}
	r.items[item.ID] = item.Clone()
	return nil
}

// Delete удаляет позицию или возвращает model.ErrOrderItemNotFound
func (r *OrderItemRepository) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return model.ErrOrderItemNotFound
	}
	delete(r.items, id)
	return nil
}
