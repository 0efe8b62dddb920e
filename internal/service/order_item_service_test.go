package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asquebay/food-order-service/internal/lib/logger"
	"github.com/asquebay/food-order-service/internal/model"
	"github.com/asquebay/food-order-service/internal/repository/cache"
	"github.com/asquebay/food-order-service/internal/repository/memory"
)

// countingRepo считает обращения к хранилищу и умеет возвращать заданную ошибку
type countingRepo struct {
	*memory.OrderItemRepository
	getCalls int
	err      error
}

func (r *countingRepo) GetByID(ctx context.Context, id int64) (model.OrderItem, error) {
	r.getCalls++
	if r.err != nil {
		return model.OrderItem{}, r.err
	}
	return r.OrderItemRepository.GetByID(ctx, id)
}

func (r *countingRepo) GetAll(ctx context.Context) ([]model.OrderItem, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.OrderItemRepository.GetAll(ctx)
}

func newTestItemService(t *testing.T) (*OrderItemService, *countingRepo, *cache.OrderItemCache) {
	t.Helper()

	repo := &countingRepo{OrderItemRepository: memory.NewOrderItemRepository()}
	c, err := cache.NewOrderItemCache(10)
	require.NoError(t, err)

	return NewOrderItemService(repo, c, logger.NewDiscard()), repo, c
}

func pizza() model.OrderItem {
	return model.OrderItem{OrderID: 1, FoodID: 3, Quantity: 2, TotalPrice: 1500, Ingredients: []string{"mozzarella"}}
}

func TestOrderItemService_CreateCachesItem(t *testing.T) {
	svc, repo, c := newTestItemService(t)
	ctx := context.Background()

	created, err := svc.CreateOrderItem(ctx, pizza())
	require.NoError(t, err)
	assert.Positive(t, created.ID)

	_, ok := c.Get(created.ID)
	assert.True(t, ok)

	got, err := svc.GetOrderItem(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
	assert.Equal(t, 0, repo.getCalls, "cached item must not hit repository")
}

func TestOrderItemService_CreateRejectsInvalid(t *testing.T) {
	svc, _, _ := newTestItemService(t)

	item := pizza()
	item.Quantity = 0
	_, err := svc.CreateOrderItem(context.Background(), item)
	assert.ErrorIs(t, err, model.ErrInvalidOrderItem)
}

func TestOrderItemService_GetReadThrough(t *testing.T) {
	svc, repo, c := newTestItemService(t)
	ctx := context.Background()

	stored, err := repo.Create(ctx, pizza())
	require.NoError(t, err)

	got, err := svc.GetOrderItem(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, got.ID)
	assert.Equal(t, 1, repo.getCalls)

	_, ok := c.Get(stored.ID)
	assert.True(t, ok)

	_, err = svc.GetOrderItem(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.getCalls)
}

func TestOrderItemService_GetNotFound(t *testing.T) {
	svc, _, _ := newTestItemService(t)

	_, err := svc.GetOrderItem(context.Background(), 404)
	assert.ErrorIs(t, err, model.ErrOrderItemNotFound)
}

func TestOrderItemService_GetRepositoryError(t *testing.T) {
	svc, repo, _ := newTestItemService(t)
	repo.err = errors.New("connection refused")

	_, err := svc.GetOrderItem(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorContains(t, err, "connection refused")
	assert.NotErrorIs(t, err, model.ErrOrderItemNotFound)
}

func TestOrderItemService_Update(t *testing.T) {
	svc, _, c := newTestItemService(t)
	ctx := context.Background()

	created, err := svc.CreateOrderItem(ctx, pizza())
	require.NoError(t, err)

	created.Quantity = 4
	updated, err := svc.UpdateOrderItem(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)

	cached, ok := c.Get(created.ID)
	require.True(t, ok)
	assert.Equal(t, 4, cached.Quantity)

	missing := pizza()
	missing.ID = 999
	_, err = svc.UpdateOrderItem(ctx, missing)
	assert.ErrorIs(t, err, model.ErrOrderItemNotFound)
}

func TestOrderItemService_Delete(t *testing.T) {
	svc, _, c := newTestItemService(t)
	ctx := context.Background()

	created, err := svc.CreateOrderItem(ctx, pizza())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteOrderItem(ctx, created.ID))
	_, ok := c.Get(created.ID)
	assert.False(t, ok)

	_, err = svc.GetOrderItem(ctx, created.ID)
	assert.ErrorIs(t, err, model.ErrOrderItemNotFound)

	assert.ErrorIs(t, svc.DeleteOrderItem(ctx, created.ID), model.ErrOrderItemNotFound)
}

func TestOrderItemService_ListAndRestoreCache(t *testing.T) {
	svc, repo, c := newTestItemService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, pizza())
		require.NoError(t, err)
	}

	items, err := svc.ListOrderItems(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 3)
	assert.Equal(t, 0, c.Len())

	require.NoError(t, svc.RestoreCache(ctx))
	assert.Equal(t, 3, c.Len())

	repo.err = errors.New("db down")
	assert.Error(t, svc.RestoreCache(ctx))
	_, err = svc.ListOrderItems(ctx)
	assert.Error(t, err)
}

// readDuringDeleteRepo читает позицию через сервис между началом и концом Delete,
// как это сделал бы параллельный HTTP-запрос
type readDuringDeleteRepo struct {
	*memory.OrderItemRepository
	svc      *OrderItemService
	readBack model.OrderItem
}

func (r *readDuringDeleteRepo) Delete(ctx context.Context, id int64) error {
	item, err := r.svc.GetOrderItem(ctx, id)
	if err != nil {
		return err
	}
	r.readBack = item
	return r.OrderItemRepository.Delete(ctx, id)
}

func TestOrderItemService_DeleteWithConcurrentRead(t *testing.T) {
	ctx := context.Background()
	repo := &readDuringDeleteRepo{OrderItemRepository: memory.NewOrderItemRepository()}
	c, err := cache.NewOrderItemCache(10)
	require.NoError(t, err)
	svc := NewOrderItemService(repo, c, logger.NewDiscard())
	repo.svc = svc

	created, err := svc.CreateOrderItem(ctx, pizza())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteOrderItem(ctx, created.ID))
	assert.Equal(t, created.ID, repo.readBack.ID, "read must have happened while the row still existed")

	_, ok := c.Get(created.ID)
	assert.False(t, ok)
	_, err = svc.GetOrderItem(ctx, created.ID)
	assert.ErrorIs(t, err, model.ErrOrderItemNotFound)
}
