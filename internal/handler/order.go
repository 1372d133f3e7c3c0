package handler

import (
	"net/http"

	"github.com/go-faster/jx"
)

// CreateOrder handles POST /orders.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	req, err := decodeCreateRequest(body)
	if err != nil {
		writeError(w, r, err)
		return
	}

	msg, err := h.orders.CreateOrder(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeText(w, msg)
}

// ListOrders handles GET /orders.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOrders(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var e jx.Encoder
	encodeSnapshots(&e, orders)
	writeJSON(w, http.StatusOK, e.Bytes())
}

// UpdateOrder handles PUT /orders/{id}.
func (h *Handler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	req, err := decodeUpdateRequest(body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	req.ID = r.PathValue("id")

	msg, err := h.orders.UpdateOrder(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeText(w, msg)
}

// CompleteOrder handles POST /orders/{id}/complete.
func (h *Handler) CompleteOrder(w http.ResponseWriter, r *http.Request) {
	msg, err := h.orders.CompleteOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeText(w, msg)
}

// DeleteOrder handles DELETE /orders/{id}.
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	msg, err := h.orders.DeleteOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeText(w, msg)
}
