package model

import (
	"fmt"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
)

// OrderItem представляет одну позицию заказа, хранящуюся в БД
// ID назначается хранилищем при создании
type OrderItem struct {
	ID          int64     `json:"id"`
	OrderID     int64     `json:"orderId" validate:"gt=0"`
	FoodID      int64     `json:"foodId" validate:"gt=0"`
	Quantity    int       `json:"quantity" validate:"gt=0"`
	TotalPrice  int64     `json:"totalPrice" validate:"gte=0"`
	Ingredients []string  `json:"ingredients,omitempty" validate:"omitempty,dive,required"`
	CreatedAt   time.Time `json:"createdAt"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate проверяет корректность позиции на основе тегов validate
func (i *OrderItem) Validate() error {
	if err := validate.Struct(i); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidOrderItem, err.Error())
	}
	return nil
}

// Clone возвращает копию позиции, не разделяющую срез ингредиентов с оригиналом
func (i OrderItem) Clone() OrderItem {
	i.Ingredients = slices.Clone(i.Ingredients)
	return i
}
