package postgres

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asquebay/food-order-service/internal/model"
)

// openPoolForIntegrationTest подключается к базе из FOOD_POSTGRES_TEST_DSN,
// накатывает миграции и очищает таблицы; без DSN тест пропускается
func openPoolForIntegrationTest(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("FOOD_POSTGRES_TEST_DSN"))
	if dsn == "" {
		t.Skip("FOOD_POSTGRES_TEST_DSN is not set, skipping postgres integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	if err := pool.Ping(ctx); err != nil {
		t.Skipf("postgres is not available for integration tests: %v", err)
	}

	_, err = Migrate(ctx, pool)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `TRUNCATE TABLE order_items RESTART IDENTITY`)
	require.NoError(t, err)

	return pool
}

func TestMigrate_Idempotent(t *testing.T) {
	pool := openPoolForIntegrationTest(t)

	applied, err := Migrate(context.Background(), pool)
	require.NoError(t, err)
	assert.Equal(t, 0, applied)
}

func TestOrderItemRepository_CRUD(t *testing.T) {
	pool := openPoolForIntegrationTest(t)
	repo := NewOrderItemRepository(pool)
	ctx := context.Background()

	created, err := repo.Create(ctx, model.OrderItem{OrderID: 1, FoodID: 10, Quantity: 2, TotalPrice: 900, Ingredients: []string{"cheese", "basil"}})
	require.NoError(t, err)
	require.Positive(t, created.ID)

	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	// значение из Create идёт в кэш, поэтому оно должно совпадать с прочитанным из базы до наносекунды
	assert.Equal(t, created, stored)
	assert.Equal(t, time.UTC, stored.CreatedAt.Location())

	_, err = repo.Create(ctx, model.OrderItem{OrderID: 1, FoodID: 11, Quantity: 1})
	require.NoError(t, err)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Less(t, all[0].ID, all[1].ID)
	assert.Nil(t, all[1].Ingredients)

	stored.Quantity = 5
	stored.CreatedAt = time.Time{}
	require.NoError(t, repo.Update(ctx, stored))

	updated, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Quantity)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, model.ErrOrderItemNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, created.ID), model.ErrOrderItemNotFound)
	assert.ErrorIs(t, repo.Update(ctx, model.OrderItem{ID: created.ID, OrderID: 1, FoodID: 1, Quantity: 1}), model.ErrOrderItemNotFound)
}
