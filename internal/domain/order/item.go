package order

import "github.com/shopspring/decimal"

// LineItem is one product line of an order. It is immutable once built by
// NewLineItem.
type LineItem struct {
	productID string
	quantity  int
	price     decimal.Decimal
}

// NewLineItem validates and builds a LineItem. Quantity must be at least 1
// and the unit price must not be negative.
func NewLineItem(productID string, quantity int, price decimal.Decimal) (LineItem, error) {
	if quantity < 1 {
		return LineItem{}, ErrInvalidQuantity
	}
	if price.IsNegative() {
		return LineItem{}, ErrInvalidPrice
	}
	return LineItem{
		productID: productID,
		quantity:  quantity,
		price:     price,
	}, nil
}

// ProductID returns the referenced product.
func (li LineItem) ProductID() string { return li.productID }

// Quantity returns the number of units.
func (li LineItem) Quantity() int { return li.quantity }

// Price returns the unit price.
func (li LineItem) Price() decimal.Decimal { return li.price }

// Total returns quantity * price.
func (li LineItem) Total() decimal.Decimal {
	return li.price.Mul(decimal.NewFromInt(int64(li.quantity)))
}
