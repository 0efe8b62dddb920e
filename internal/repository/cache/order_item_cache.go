package cache

import (
	"fmt"

	"github.com/asquebay/food-order-service/internal/model"

	lru "github.com/hashicorp/golang-lru/v2"
)

// OrderItemCache — потокобезопасный in-memory LRU-кэш позиций заказа
// при переполнении вытесняются давно не запрашиваемые позиции
type OrderItemCache struct {
	// ключ: ID позиции, значение: копия model.OrderItem
	storage *lru.Cache[int64, model.OrderItem]
}

// NewOrderItemCache создаёт кэш заданной ёмкости
func NewOrderItemCache(capacity int) (*OrderItemCache, error) {
	const op = "repository.cache.NewOrderItemCache"

	storage, err := lru.New[int64, model.OrderItem](capacity)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &OrderItemCache{storage: storage}, nil
}

// Set добавляет или обновляет позицию в кэше
func (c *OrderItemCache) Set(item model.OrderItem) {
	c.storage.Add(item.ID, item.Clone())
}

// Get извлекает позицию из кэша по ID
// возвращает позицию и true, если она найдена, иначе пустую структуру и false
func (c *OrderItemCache) Get(id int64) (model.OrderItem, bool) {
	item, ok := c.storage.Get(id)
	if !ok {
		return model.OrderItem{}, false
	}
	return item.Clone(), true
}

// Delete убирает позицию из кэша
func (c *OrderItemCache) Delete(id int64) {
	c.storage.Remove(id)
}

// LoadAll загружает в кэш срез позиций
// используется для первоначального заполнения кэша при старте сервиса
func (c *OrderItemCache) LoadAll(items []model.OrderItem) {
	for _, item := range items {
		c.Set(item)
	}
}

// Len возвращает число позиций в кэше
func (c *OrderItemCache) Len() int {
	return c.storage.Len()
}
