// Package order implements the order aggregate, its lifecycle and the
// application service orchestrating persistence and notifications.
package order

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/orders/internal/domain/discount"
)

// Order is the aggregate root. All changes go through its methods; the
// total is derived on demand from the current items and discount.
type Order struct {
	id              ID
	items           []LineItem
	discount        discount.Discount
	shippingAddress string
	status          Status
}

// New builds a freshly created order. It fails with ErrEmptyOrder when items
// is empty.
func New(id ID, items []LineItem, d discount.Discount, shippingAddress string) (*Order, error) {
	return Restore(id, items, d, shippingAddress, StatusCreated)
}

// Restore rebuilds an order in the given status, typically from storage.
// An unknown status falls back to StatusCreated.
func Restore(id ID, items []LineItem, d discount.Discount, shippingAddress string, status Status) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}
	if !status.Valid() {
		status = StatusCreated
	}
	return &Order{
		id:              id,
		items:           append([]LineItem(nil), items...),
		discount:        d,
		shippingAddress: shippingAddress,
		status:          status,
	}, nil
}

// ID returns the order identity.
func (o *Order) ID() ID { return o.id }

// Status returns the current lifecycle state.
func (o *Order) Status() Status { return o.status }

// ShippingAddress returns the delivery address.
func (o *Order) ShippingAddress() string { return o.shippingAddress }

// Discount returns the applied discount.
func (o *Order) Discount() discount.Discount { return o.discount }

// Items returns a copy of the line items in order.
func (o *Order) Items() []LineItem {
	return append([]LineItem(nil), o.items...)
}

// Total sums the line totals and applies the discount. No rounding is done.
func (o *Order) Total() decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range o.items {
		subtotal = subtotal.Add(item.Total())
	}
	return o.discount.Apply(subtotal)
}

// Changes lists the fields Update may modify. Nil fields are left untouched.
type Changes struct {
	DiscountCode    *string
	ShippingAddress *string
	Status          *Status
}

// Update applies changes in place. Setting Status to StatusCompleted
// completes the order; StatusCreated is accepted and ignored. When the
// completion is not allowed nothing is modified.
func (o *Order) Update(c Changes) error {
	complete := c.Status != nil && *c.Status == StatusCompleted
	if complete {
		if err := o.checkComplete(); err != nil {
			return err
		}
	}
	if c.DiscountCode != nil {
		o.discount = discount.FromCode(*c.DiscountCode)
	}
	if c.ShippingAddress != nil {
		o.shippingAddress = *c.ShippingAddress
	}
	if complete {
		return o.Complete()
	}
	return nil
}

// Complete moves the order from Created to Completed. Completed is terminal,
// so every later call fails with *InvalidTransitionError.
func (o *Order) Complete() error {
	if err := o.checkComplete(); err != nil {
		return err
	}
	o.status = StatusCompleted
	return nil
}

func (o *Order) checkComplete() error {
	if o.status != StatusCreated {
		return &InvalidTransitionError{From: o.status, To: StatusCompleted}
	}
	return nil
}

// Equal compares orders by identity only.
func (o *Order) Equal(other *Order) bool {
	if o == nil || other == nil {
		return o == other
	}
	return o.id.Equal(other.id)
}
