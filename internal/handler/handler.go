// Package handler exposes the order service over HTTP.
package handler

import (
	"context"
	"net/http"

	"github.com/xenking/orders/internal/domain/order"
)

// OrderService is the application service consumed by Handler.
type OrderService interface {
	CreateOrder(ctx context.Context, req order.CreateRequest) (string, error)
	ListOrders(ctx context.Context) ([]order.Snapshot, error)
	UpdateOrder(ctx context.Context, req order.UpdateRequest) (string, error)
	CompleteOrder(ctx context.Context, id string) (string, error)
	DeleteOrder(ctx context.Context, id string) (string, error)
}

var _ OrderService = (*order.Service)(nil)

// Handler serves the order endpoints. Confirmations are written as
// text/plain, data and errors as JSON.
type Handler struct {
	orders OrderService
}

// NewHandler constructs a Handler delegating to orders.
func NewHandler(orders OrderService) *Handler {
	return &Handler{orders: orders}
}

// Register installs the order routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.Root)
	mux.HandleFunc("POST /orders", h.CreateOrder)
	mux.HandleFunc("GET /orders", h.ListOrders)
	mux.HandleFunc("PUT /orders/{id}", h.UpdateOrder)
	mux.HandleFunc("POST /orders/{id}/complete", h.CompleteOrder)
	mux.HandleFunc("DELETE /orders/{id}", h.DeleteOrder)
}

// Root reports that the service is up.
func (h *Handler) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, []byte(`{"status":"ok"}`))
}
