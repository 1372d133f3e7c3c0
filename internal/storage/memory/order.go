// Package memory provides an in-process order store for local runs and tests.
package memory

import (
	"context"
	"strconv"
	"sync"

	"github.com/xenking/orders/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository keeps order snapshots in insertion order. Every read
// rebuilds a fresh aggregate, so callers never share state with the store.
type OrderRepository struct {
	mu     sync.RWMutex
	nextID int
	ids    []order.ID
	orders map[order.ID]order.Snapshot
}

// NewOrderRepository returns an empty OrderRepository.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[order.ID]order.Snapshot)}
}

// NewID issues sequential ids starting at "0".
func (r *OrderRepository) NewID() order.ID {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := order.ID(strconv.Itoa(r.nextID))
	r.nextID++
	return id
}

// Save inserts or replaces the order keyed by its id.
func (r *OrderRepository) Save(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[o.ID()]; !ok {
		r.ids = append(r.ids, o.ID())
	}
	r.orders[o.ID()] = o.Snapshot()
	return nil
}

// FindAll returns every stored order in insertion order.
func (r *OrderRepository) FindAll(_ context.Context) ([]*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*order.Order, 0, len(r.ids))
	for _, id := range r.ids {
		o, err := order.FromSnapshot(r.orders[id])
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// FindByID returns order.ErrNotFound for unknown ids.
func (r *OrderRepository) FindByID(_ context.Context, id order.ID) (*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return order.FromSnapshot(s)
}

// Delete removes the order. Deleting an absent order is a no-op.
func (r *OrderRepository) Delete(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[o.ID()]; !ok {
		return nil
	}
	delete(r.orders, o.ID())
	for i, id := range r.ids {
		if id == o.ID() {
			r.ids = append(r.ids[:i], r.ids[i+1:]...)
			break
		}
	}
	return nil
}
