package order

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/orders/internal/domain/discount"
)

// Snapshot is the flattened projection of an order used both for storage
// and API responses. Total is computed at the time the snapshot is taken.
type Snapshot struct {
	ID              string
	Items           []ItemSnapshot
	DiscountCode    string
	ShippingAddress string
	Total           decimal.Decimal
	Status          Status
}

// ItemSnapshot is the flattened form of a LineItem.
type ItemSnapshot struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Snapshot projects the order into its serializable form.
func (o *Order) Snapshot() Snapshot {
	items := make([]ItemSnapshot, len(o.items))
	for i, item := range o.items {
		items[i] = ItemSnapshot{
			ProductID: item.productID,
			Quantity:  item.quantity,
			Price:     item.price,
		}
	}
	return Snapshot{
		ID:              o.id.String(),
		Items:           items,
		DiscountCode:    o.discount.Code(),
		ShippingAddress: o.shippingAddress,
		Total:           o.Total(),
		Status:          o.status,
	}
}

// FromSnapshot rebuilds an order, re-validating every line item. The stored
// Total is ignored and recomputed from the items and discount code.
func FromSnapshot(s Snapshot) (*Order, error) {
	items := make([]LineItem, 0, len(s.Items))
	for _, is := range s.Items {
		item, err := NewLineItem(is.ProductID, is.Quantity, is.Price)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return Restore(ID(s.ID), items, discount.FromCode(s.DiscountCode), s.ShippingAddress, s.Status)
}
