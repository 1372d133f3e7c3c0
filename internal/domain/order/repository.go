package order

import "context"

// Repository is the persistence boundary for orders. Implementations are
// safe for concurrent use.
type Repository interface {
	// NewID issues a fresh unique identity.
	NewID() ID
	// Save creates or replaces the order keyed by its ID.
	Save(ctx context.Context, o *Order) error
	// FindAll returns every stored order.
	FindAll(ctx context.Context) ([]*Order, error)
	// FindByID returns ErrNotFound when no order has the given id.
	FindByID(ctx context.Context, id ID) (*Order, error)
	// Delete removes the order.
	Delete(ctx context.Context, o *Order) error
}

// Notifier dispatches a human readable message about a lifecycle event.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}
