package model

import (
	"fmt"
	"strings"
)

// Address — адрес доставки, как его заполняет клиент на странице оформления заказа
type Address struct {
	StreetAddress string `json:"streetAddress" validate:"required"`
	City          string `json:"city" validate:"required"`
	StateProvince string `json:"stateProvince"`
	PostalCode    string `json:"postalCode"`
	Country       string `json:"country"`
}

// String возвращает адрес одной строкой, пропуская пустые части
func (a Address) String() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{a.StreetAddress, a.City, a.StateProvince, a.PostalCode, a.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// OrderRequest — тело запроса на оформление заказа
// сама структура ничего не проверяет, валидацию явно вызывает сервис оформления заказов
type OrderRequest struct {
	RestaurantID    int64   `json:"restaurantId" validate:"gt=0"`
	DeliveryAddress Address `json:"deliveryAddress"`
}

// Equal сравнивает два запроса по значениям всех полей
func (r OrderRequest) Equal(other OrderRequest) bool {
	return r == other
}

func (r OrderRequest) String() string {
	return fmt.Sprintf("OrderRequest(restaurantId=%d, deliveryAddress=%s)", r.RestaurantID, r.DeliveryAddress)
}

// Validate проверяет то же, что проверяла форма оформления заказа:
// ресторан указан, улица и город заполнены
func (r *OrderRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidOrderRequest, err.Error())
	}
	return nil
}
