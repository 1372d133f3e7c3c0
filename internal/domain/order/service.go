package order

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/orders/internal/domain/discount"
)

// ItemRequest is one requested product line. Missing quantity or price stay
// at their zero values and therefore fail validation for quantity.
type ItemRequest struct {
	ProductID string
	Quantity  int
	Price     decimal.Decimal
}

// CreateRequest holds the input for creating an order.
type CreateRequest struct {
	Items           []ItemRequest
	DiscountCode    string
	ShippingAddress string
}

// UpdateRequest holds the input for updating an order. Nil fields are left
// unchanged.
type UpdateRequest struct {
	ID              string
	DiscountCode    *string
	ShippingAddress *string
	Status          *string
}

// Service runs the order use cases against one Repository and an optional
// Notifier. It keeps no order state between calls.
type Service struct {
	orders   Repository
	notifier Notifier
}

// NewService creates an order Service. A nil notifier disables notifications.
func NewService(orders Repository, notifier Notifier) *Service {
	return &Service{
		orders:   orders,
		notifier: notifier,
	}
}

// CreateOrder validates the request, persists a new order and returns a
// confirmation with the computed total.
func (s *Service) CreateOrder(ctx context.Context, req CreateRequest) (string, error) {
	items := make([]LineItem, 0, len(req.Items))
	for _, ir := range req.Items {
		item, err := NewLineItem(ir.ProductID, ir.Quantity, ir.Price)
		if err != nil {
			return "", err
		}
		items = append(items, item)
	}

	o, err := New(s.orders.NewID(), items, discount.FromCode(req.DiscountCode), req.ShippingAddress)
	if err != nil {
		return "", err
	}

	if err := s.orders.Save(ctx, o); err != nil {
		return "", errors.Wrap(err, "save order")
	}

	total := o.Total()
	if err := s.notify(ctx, fmt.Sprintf("New order created: %s. Total: %s", o.ID(), total)); err != nil {
		return "", err
	}

	return fmt.Sprintf("Order created with total: %s", total), nil
}

// ListOrders returns snapshots of every stored order.
func (s *Service) ListOrders(ctx context.Context) ([]Snapshot, error) {
	orders, err := s.orders.FindAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "find orders")
	}

	snapshots := make([]Snapshot, len(orders))
	for i, o := range orders {
		snapshots[i] = o.Snapshot()
	}
	return snapshots, nil
}

// UpdateOrder changes the discount code, shipping address and/or status of
// an existing order.
func (s *Service) UpdateOrder(ctx context.Context, req UpdateRequest) (string, error) {
	changes := Changes{
		DiscountCode:    req.DiscountCode,
		ShippingAddress: req.ShippingAddress,
	}
	if req.Status != nil {
		status, err := ParseStatus(*req.Status)
		if err != nil {
			return "", err
		}
		changes.Status = &status
	}

	o, err := s.load(ctx, req.ID)
	if err != nil {
		return "", err
	}
	if err := o.Update(changes); err != nil {
		return "", err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return "", errors.Wrap(err, "save order")
	}

	msg := fmt.Sprintf("Order updated. New status: %s", o.Status())
	if err := s.notify(ctx, msg); err != nil {
		return "", err
	}
	return msg, nil
}

// CompleteOrder moves an existing order to the Completed status.
func (s *Service) CompleteOrder(ctx context.Context, id string) (string, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}
	if err := o.Complete(); err != nil {
		return "", err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return "", errors.Wrap(err, "save order")
	}
	if err := s.notify(ctx, fmt.Sprintf("Order completed: %s", o.ID())); err != nil {
		return "", err
	}
	return fmt.Sprintf("Order with id %s completed", id), nil
}

// DeleteOrder removes an existing order.
func (s *Service) DeleteOrder(ctx context.Context, id string) (string, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}
	if err := s.orders.Delete(ctx, o); err != nil {
		return "", errors.Wrap(err, "delete order")
	}
	if err := s.notify(ctx, fmt.Sprintf("Order deleted: %s", o.ID())); err != nil {
		return "", err
	}
	return "Order deleted", nil
}

// load fetches an order, passing ErrNotFound through unwrapped.
func (s *Service) load(ctx context.Context, id string) (*Order, error) {
	o, err := s.orders.FindByID(ctx, ID(id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "find order")
	}
	return o, nil
}

func (s *Service) notify(ctx context.Context, msg string) error {
	if s.notifier == nil {
		return nil
	}
	if err := s.notifier.Notify(ctx, msg); err != nil {
		return errors.Wrap(err, "notify")
	}
	return nil
}
