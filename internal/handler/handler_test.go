package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xenking/orders/internal/domain/order"
	"github.com/xenking/orders/internal/storage/memory"
)

// --- Mock implementations ---

type mockService struct {
	createReq order.CreateRequest
	updateReq order.UpdateRequest
	lastID    string
	snapshots []order.Snapshot
	msg       string
	err       error
}

func (m *mockService) CreateOrder(_ context.Context, req order.CreateRequest) (string, error) {
	m.createReq = req
	return m.msg, m.err
}

func (m *mockService) ListOrders(context.Context) ([]order.Snapshot, error) {
	return m.snapshots, m.err
}

func (m *mockService) UpdateOrder(_ context.Context, req order.UpdateRequest) (string, error) {
	m.updateReq = req
	return m.msg, m.err
}

func (m *mockService) CompleteOrder(_ context.Context, id string) (string, error) {
	m.lastID = id
	return m.msg, m.err
}

func (m *mockService) DeleteOrder(_ context.Context, id string) (string, error) {
	m.lastID = id
	return m.msg, m.err
}

// --- Helpers ---

func newServer(svc OrderService) *http.ServeMux {
	mux := http.NewServeMux()
	NewHandler(svc).Register(mux)
	return mux
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// --- Tests ---

func TestRoot(t *testing.T) {
	rec := do(t, newServer(&mockService{}), http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCreateOrder_Decoding(t *testing.T) {
	svc := &mockService{msg: "Order created with total: 16"}
	rec := do(t, newServer(svc), http.MethodPost, "/orders", `{
		"items": [
			{"productId": "1", "quantity": 2, "price": 6.5},
			{"productId": 2, "quantity": 1, "price": 7, "name": "ignored"}
		],
		"discountCode": "DISCOUNT20",
		"shippingAddress": "Nowhere Avenue",
		"extra": {"nested": true}
	}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Order created with total: 16", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")

	req := svc.createReq
	require.Len(t, req.Items, 2)
	assert.Equal(t, "1", req.Items[0].ProductID)
	assert.Equal(t, 2, req.Items[0].Quantity)
	assert.True(t, decimal.RequireFromString("6.5").Equal(req.Items[0].Price))
	assert.Equal(t, "2", req.Items[1].ProductID)
	assert.Equal(t, "DISCOUNT20", req.DiscountCode)
	assert.Equal(t, "Nowhere Avenue", req.ShippingAddress)
}

func TestCreateOrder_InvalidBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `hello`},
		{name: "array", body: `[]`},
		{name: "truncated", body: `{"items": [`},
		{name: "fractional quantity", body: `{"items":[{"productId":"1","quantity":1.5,"price":1}]}`},
		{name: "price as string", body: `{"items":[{"productId":"1","quantity":1,"price":"1"}]}`},
		{name: "empty", body: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newServer(&mockService{}), http.MethodPost, "/orders", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"code":400,"message":"Invalid request body"}`, rec.Body.String())
		})
	}
}

func TestUpdateOrder_Decoding(t *testing.T) {
	svc := &mockService{msg: "Order updated. New status: COMPLETED"}
	rec := do(t, newServer(svc), http.MethodPut, "/orders/42", `{"status":"COMPLETED","shippingAddress":null}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Order updated. New status: COMPLETED", rec.Body.String())
	assert.Equal(t, "42", svc.updateReq.ID)
	require.NotNil(t, svc.updateReq.Status)
	assert.Equal(t, "COMPLETED", *svc.updateReq.Status)
	assert.Nil(t, svc.updateReq.ShippingAddress)
	assert.Nil(t, svc.updateReq.DiscountCode)
}

func TestCompleteAndDelete_PathID(t *testing.T) {
	svc := &mockService{msg: "ok"}
	srv := newServer(svc)

	rec := do(t, srv, http.MethodPost, "/orders/abc/complete", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc", svc.lastID)

	rec = do(t, srv, http.MethodDelete, "/orders/def", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "def", svc.lastID)
}

func TestListOrders_Encoding(t *testing.T) {
	svc := &mockService{snapshots: []order.Snapshot{{
		ID: "0",
		Items: []order.ItemSnapshot{
			{ProductID: "1", Quantity: 3, Price: decimal.RequireFromString("0.1")},
		},
		DiscountCode:    "",
		ShippingAddress: "addr",
		Total:           decimal.RequireFromString("0.3"),
		Status:          order.StatusCreated,
	}}}

	rec := do(t, newServer(svc), http.MethodGet, "/orders", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `[{
		"id": "0",
		"items": [{"productId": "1", "quantity": 3, "price": 0.1}],
		"discountCode": "",
		"shippingAddress": "addr",
		"total": 0.3,
		"status": "CREATED"
	}]`, rec.Body.String())
}

func TestListOrders_Empty(t *testing.T) {
	rec := do(t, newServer(&mockService{}), http.MethodGet, "/orders", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `[]`, rec.Body.String())
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{
			name:     "validation",
			err:      order.ErrEmptyOrder,
			wantCode: http.StatusBadRequest,
			wantBody: `{"code":400,"message":"The order must have at least one item"}`,
		},
		{
			name:     "unknown status",
			err:      &order.UnknownStatusError{Status: "SHIPPED"},
			wantCode: http.StatusBadRequest,
			wantBody: `{"code":400,"message":"Unknown order status: SHIPPED"}`,
		},
		{
			name:     "not found",
			err:      order.ErrNotFound,
			wantCode: http.StatusNotFound,
			wantBody: `{"code":404,"message":"Order not found"}`,
		},
		{
			name:     "invalid transition",
			err:      &order.InvalidTransitionError{From: order.StatusCompleted, To: order.StatusCompleted},
			wantCode: http.StatusConflict,
			wantBody: `{"code":409,"message":"Cannot complete an order with status: COMPLETED"}`,
		},
		{
			name:     "infrastructure",
			err:      errors.Wrap(errors.New("connection refused"), "save order"),
			wantCode: http.StatusInternalServerError,
			wantBody: `{"code":500,"message":"Unexpected error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newServer(&mockService{err: tt.err}), http.MethodPost, "/orders/1/complete", "")
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestServerErrorIsLogged(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	srv := newServer(&mockService{err: errors.New("connection refused")})

	req := httptest.NewRequest(http.MethodDelete, "/orders/1", nil)
	req = req.WithContext(zctx.Base(req.Context(), zap.New(core)))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")

	entries := logs.FilterMessage("Request failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "connection refused", entries[0].ContextMap()["error"])
}

func TestMethodNotAllowed(t *testing.T) {
	rec := do(t, newServer(&mockService{}), http.MethodPatch, "/orders", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// End-to-end through the real service and the in-memory store.
func TestOrderLifecycle(t *testing.T) {
	srv := newServer(order.NewService(memory.NewOrderRepository(), nil))

	rec := do(t, srv, http.MethodPost, "/orders",
		`{"items":[{"productId":"1","quantity":2,"price":10}],"discountCode":"DISCOUNT20","shippingAddress":"Nowhere Avenue"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Order created with total: 16", rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/orders", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{
		"id": "0",
		"items": [{"productId": "1", "quantity": 2, "price": 10}],
		"discountCode": "DISCOUNT20",
		"shippingAddress": "Nowhere Avenue",
		"total": 16,
		"status": "CREATED"
	}]`, rec.Body.String())

	rec = do(t, srv, http.MethodPut, "/orders/0", `{"shippingAddress":"Somewhere Street"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Order updated. New status: CREATED", rec.Body.String())

	rec = do(t, srv, http.MethodPost, "/orders/0/complete", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Order with id 0 completed", rec.Body.String())

	rec = do(t, srv, http.MethodPost, "/orders/0/complete", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, srv, http.MethodPost, "/orders",
		`{"items":[{"productId":"1","quantity":0,"price":10}],"shippingAddress":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"code":400,"message":"Quantity must be greater than 0"}`, rec.Body.String())

	rec = do(t, srv, http.MethodDelete, "/orders/0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Order deleted", rec.Body.String())

	rec = do(t, srv, http.MethodDelete, "/orders/0", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
