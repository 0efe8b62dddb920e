package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/asquebay/food-order-service/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const orderItemsTable = "order_items"

var orderItemColumns = []string{"id", "order_id", "food_id", "quantity", "total_price", "ingredients", "created_at"}

// DB — подмножество методов pgxpool.Pool, которое нужно репозиторию
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// OrderItemRepository инкапсулирует логику работы с позициями заказа в БД
type OrderItemRepository struct {
	db DB
	sq squirrel.StatementBuilderType
}

// NewOrderItemRepository создает новый экземпляр репозитория
func NewOrderItemRepository(db DB) *OrderItemRepository {
	return &OrderItemRepository{
		db: db,
		// использую плейсхолдеры в стиле PostgreSQL ($1, $2, $3,...)
		sq: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create сохраняет позицию и возвращает её с ID и временем создания в том виде, в каком их записала база
// если CreatedAt не задан, его проставляет DEFAULT колонки
func (r *OrderItemRepository) Create(ctx context.Context, item model.OrderItem) (model.OrderItem, error) {
	const op = "repository.postgres.order_item.Create"

	sql, args, err := r.insertQuery(item)
	if err != nil {
		return model.OrderItem{}, fmt.Errorf("%s: failed to build insert query: %w", op, err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&item.ID, &item.CreatedAt); err != nil {
		return model.OrderItem{}, fmt.Errorf("%s: failed to insert order item: %w", op, err)
	}
	item.CreatedAt = item.CreatedAt.UTC()

	return item, nil
}

// GetByID извлекает одну позицию по её ID
func (r *OrderItemRepository) GetByID(ctx context.Context, id int64) (model.OrderItem, error) {
	const op = "repository.postgres.order_item.GetByID"

	sql, args, err := r.sq.Select(orderItemColumns...).
		From(orderItemsTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.OrderItem{}, fmt.Errorf("%s: failed to build select query: %w", op, err)
	}

	item, err := scanOrderItem(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.OrderItem{}, fmt.Errorf("%s: %w", op, model.ErrOrderItemNotFound)
		}
		return model.OrderItem{}, fmt.Errorf("%s: failed to query order item: %w", op, err)
	}

	return item, nil
}

// GetAll извлекает все позиции, упорядоченные по ID
// на больших объемах метод ресурсоёмкий, он нужен в основном для прогрева кэша
func (r *OrderItemRepository) GetAll(ctx context.Context) ([]model.OrderItem, error) {
	const op = "repository.postgres.order_item.GetAll"

	sql, args, err := r.sq.Select(orderItemColumns...).
		From(orderItemsTable).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build select query: %w", op, err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to query order items: %w", op, err)
	}
	defer rows.Close()

	items := make([]model.OrderItem, 0)
	for rows.Next() {
		item, err := scanOrderItem(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to scan order item row: %w", op, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: failed to iterate order item rows: %w", op, err)
	}

	return items, nil
}

// Update перезаписывает поля позиции
// created_at меняется только если он задан явно
func (r *OrderItemRepository) Update(ctx context.Context, item model.OrderItem) error {
	const op = "repository.postgres.order_item.Update"

	sql, args, err := r.updateQuery(item)
	if err != nil {
		return fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("%s: failed to update order item %d: %w", op, item.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, model.ErrOrderItemNotFound)
	}

	return nil
}

// Delete удаляет позицию по ID
func (r *OrderItemRepository) Delete(ctx context.Context, id int64) error {
	const op = "repository.postgres.order_item.Delete"

	sql, args, err := r.sq.Delete(orderItemsTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build delete query: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("%s: failed to delete order item %d: %w", op, id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, model.ErrOrderItemNotFound)
	}

	return nil
}

func (r *OrderItemRepository) insertQuery(item model.OrderItem) (string, []any, error) {
	columns := []string{"order_id", "food_id", "quantity", "total_price", "ingredients"}
	values := []any{item.OrderID, item.FoodID, item.Quantity, item.TotalPrice, item.Ingredients}
	if !item.CreatedAt.IsZero() {
		columns = append(columns, "created_at")
		values = append(values, item.CreatedAt)
	}

	return r.sq.Insert(orderItemsTable).
		Columns(columns...).
		Values(values...).
		Suffix("RETURNING id, created_at").
		ToSql()
}

func (r *OrderItemRepository) updateQuery(item model.OrderItem) (string, []any, error) {
	set := map[string]any{
		"order_id":    item.OrderID,
		"food_id":     item.FoodID,
		"quantity":    item.Quantity,
		"total_price": item.TotalPrice,
		"ingredients": item.Ingredients,
	}
	if !item.CreatedAt.IsZero() {
		set["created_at"] = item.CreatedAt
	}

	return r.sq.Update(orderItemsTable).
		SetMap(set).
		Where(squirrel.Eq{"id": item.ID}).
		ToSql()
}

// scanOrderItem читает строку в порядке orderItemColumns
// pgx отдаёт timestamptz в локальной зоне, приводим к UTC, как и везде в сервисе
func scanOrderItem(row pgx.Row) (model.OrderItem, error) {
	var item model.OrderItem
	if err := row.Scan(
		&item.ID, &item.OrderID, &item.FoodID, &item.Quantity,
		&item.TotalPrice, &item.Ingredients, &item.CreatedAt,
	); err != nil {
		return model.OrderItem{}, err
	}
	item.CreatedAt = item.CreatedAt.UTC()
	return item, nil
}
