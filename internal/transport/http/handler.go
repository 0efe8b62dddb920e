package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/asquebay/food-order-service/internal/lib/logger"
	"github.com/asquebay/food-order-service/internal/metrics"
	"github.com/asquebay/food-order-service/internal/model"
)

const maxBodyBytes = 1 << 20

// OrderItemManager определяет операции над позициями заказа, нужные хэндлеру
// это позволяет хэндлеру не зависеть от конкретной реализации сервиса
type OrderItemManager interface {
	CreateOrderItem(ctx context.Context, item model.OrderItem) (model.OrderItem, error)
	GetOrderItem(ctx context.Context, id int64) (model.OrderItem, error)
	ListOrderItems(ctx context.Context) ([]model.OrderItem, error)
	UpdateOrderItem(ctx context.Context, item model.OrderItem) (model.OrderItem, error)
	DeleteOrderItem(ctx context.Context, id int64) error
}

// OrderPlacer принимает запросы на оформление заказа
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, req model.OrderRequest) (model.OrderReceipt, error)
}

// Handler обрабатывает HTTP-запросы
type Handler struct {
	items   OrderItemManager
	orders  OrderPlacer
	metrics *metrics.HTTP
	log     *slog.Logger
	mux     *http.ServeMux
	handler http.Handler
}

// NewHandler создает новый экземпляр Handler
func NewHandler(items OrderItemManager, orders OrderPlacer, m *metrics.HTTP, log *slog.Logger) *Handler {
	h := &Handler{
		items:   items,
		orders:  orders,
		metrics: m,
		log:     log,
		mux:     http.NewServeMux(),
	}
	h.registerRoutes()
	h.handler = m.Middleware(h.mux)
	return h
}

// ServeHTTP делает Handler совместимым с http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}

// registerRoutes регистрирует все эндпоинты
func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("POST /api/order", h.placeOrder)

	h.mux.HandleFunc("POST /api/order-items", h.createOrderItem)
	h.mux.HandleFunc("GET /api/order-items", h.listOrderItems)
	h.mux.HandleFunc("GET /api/order-items/{id}", h.getOrderItem)
	h.mux.HandleFunc("PUT /api/order-items/{id}", h.updateOrderItem)
	h.mux.HandleFunc("DELETE /api/order-items/{id}", h.deleteOrderItem)

	h.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	h.mux.Handle("GET /metrics", h.metrics.Handler())
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req model.OrderRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	receipt, err := h.orders.PlaceOrder(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusAccepted, receipt)
}

func (h *Handler) createOrderItem(w http.ResponseWriter, r *http.Request) {
	var item model.OrderItem
	if !h.decodeJSON(w, r, &item) {
		return
	}
	// ID назначает хранилище
	item.ID = 0

	created, err := h.items.CreateOrderItem(r.Context(), item)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, created)
}

func (h *Handler) listOrderItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.items.ListOrderItems(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, items)
}

func (h *Handler) getOrderItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	item, err := h.items.GetOrderItem(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, item)
}

func (h *Handler) updateOrderItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var item model.OrderItem
	if !h.decodeJSON(w, r, &item) {
		return
	}
	// ID из пути главнее ID из тела
	item.ID = id

	updated, err := h.items.UpdateOrderItem(r.Context(), item)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteOrderItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.items.DeleteOrderItem(r.Context(), id); err != nil {
		h.respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// pathID извлекает числовой id из URL
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		h.respondError(w, http.StatusBadRequest, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		h.log.Debug("failed to decode request body", logger.Err(err))
		h.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// respondServiceError переводит ошибки сервисного слоя в HTTP-статусы
func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidOrderItem), errors.Is(err, model.ErrInvalidOrderRequest):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrOrderItemNotFound):
		h.respondError(w, http.StatusNotFound, "order item not found")
	default:
		h.log.Error("internal server error", logger.Err(err))
		h.respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.log.Error("failed to marshal JSON response", logger.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "internal server error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
