package model

import "time"

// OrderStatusAccepted означает, что запрос принят и передан дальше на обработку
const OrderStatusAccepted = "accepted"

// OrderReceipt описывает ответ клиенту на принятый запрос оформления заказа
// этот же документ уходит в кафку для обработчика заказов
type OrderReceipt struct {
	RequestID       string    `json:"requestId"`
	RestaurantID    int64     `json:"restaurantId"`
	DeliveryAddress Address   `json:"deliveryAddress"`
	Status          string    `json:"status"`
	AcceptedAt      time.Time `json:"acceptedAt"`
}
