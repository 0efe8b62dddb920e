package model

import "errors"

var (
	// ErrOrderItemNotFound возвращается хранилищем, если позиции с таким ID нет
	ErrOrderItemNotFound = errors.New("order item not found")
	// ErrInvalidOrderItem возвращается, если позиция заказа не прошла валидацию
	ErrInvalidOrderItem = errors.New("invalid order item")
	// ErrInvalidOrderRequest возвращается, если запрос на оформление заказа не прошёл валидацию
	ErrInvalidOrderRequest = errors.New("invalid order request")
)
