package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asquebay/food-order-service/internal/model"
	"github.com/asquebay/food-order-service/internal/repository/memory"
	"github.com/asquebay/food-order-service/internal/service"
)

var _ service.OrderItemRepository = (*memory.OrderItemRepository)(nil)

func newItem() model.OrderItem {
	return model.OrderItem{OrderID: 1, FoodID: 5, Quantity: 2, TotalPrice: 1200, Ingredients: []string{"tomato", "basil"}}
}

func TestOrderItemRepository_CreateGet(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderItemRepository()

	created, err := repo.Create(ctx, newItem())
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, stored)

	second, err := repo.Create(ctx, newItem())
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.ID)
}

func TestOrderItemRepository_GetNotFound(t *testing.T) {
	_, err := memory.NewOrderItemRepository().GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, model.ErrOrderItemNotFound)
}

func TestOrderItemRepository_GetAllSorted(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderItemRepository()

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)

	for i := 0; i < 5; i++ {
		_, err := repo.Create(ctx, newItem())
		require.NoError(t, err)
	}

	all, err = repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i, item := range all {
		assert.Equal(t, int64(i+1), item.ID)
	}
}

func TestOrderItemRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderItemRepository()

	created, err := repo.Create(ctx, newItem())
	require.NoError(t, err)

	upd := created
	upd.Quantity = 3
	upd.CreatedAt = time.Time{}
	require.NoError(t, repo.Update(ctx, upd))

	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Quantity)
	assert.Equal(t, created.CreatedAt, stored.CreatedAt)

	missing := newItem()
	missing.ID = 42
	assert.ErrorIs(t, repo.Update(ctx, missing), model.ErrOrderItemNotFound)
}

func TestOrderItemRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderItemRepository()

	created, err := repo.Create(ctx, newItem())
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, created.ID))
	assert.ErrorIs(t, repo.Delete(ctx, created.ID), model.ErrOrderItemNotFound)

	_, err = repo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, model.ErrOrderItemNotFound)
}

func TestOrderItemRepository_NoAliasing(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderItemRepository()

	item := newItem()
	created, err := repo.Create(ctx, item)
	require.NoError(t, err)

	item.Ingredients[0] = "changed"
	created.Ingredients[1] = "changed"

	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"tomato", "basil"}, stored.Ingredients)
}

func TestOrderItemRepository_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := memory.NewOrderItemRepository().Create(ctx, newItem())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOrderItemRepository_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderItemRepository()

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, _ = repo.Create(ctx, newItem())
		}()
	}
	wg.Wait()

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, n)
	assert.Equal(t, int64(n), all[n-1].ID)
}
