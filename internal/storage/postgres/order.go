package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/xenking/orders/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// DB is the subset of *pgxpool.Pool used by OrderRepository.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	upsertOrderSQL = `
INSERT INTO orders (id, items, discount_code, shipping_address, total, status)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET
    items            = EXCLUDED.items,
    discount_code    = EXCLUDED.discount_code,
    shipping_address = EXCLUDED.shipping_address,
    total            = EXCLUDED.total,
    status           = EXCLUDED.status,
    updated_at       = now()`

	selectOrdersSQL = `
SELECT id, items, discount_code, shipping_address, total, status
FROM orders
ORDER BY created_at, id`

	selectOrderSQL = `
SELECT id, items, discount_code, shipping_address, total, status
FROM orders
WHERE id = $1`

	deleteOrderSQL = `DELETE FROM orders WHERE id = $1`
)

// orderRow mirrors one row of the orders table.
type orderRow struct {
	ID              string
	Items           []byte
	DiscountCode    string
	ShippingAddress string
	Total           decimal.Decimal
	Status          string
}

// OrderRepository implements order.Repository backed by PostgreSQL. Line
// items are kept in a JSONB column.
type OrderRepository struct {
	db DB
}

// NewOrderRepository returns an OrderRepository that uses db.
func NewOrderRepository(db DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// NewID returns a random UUID.
func (r *OrderRepository) NewID() order.ID {
	return order.ID(uuid.NewString())
}

// Save inserts the order or overwrites the row with the same id.
func (r *OrderRepository) Save(ctx context.Context, o *order.Order) error {
	row, err := toRow(o.Snapshot())
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, upsertOrderSQL,
		row.ID, row.Items, row.DiscountCode, row.ShippingAddress, row.Total, row.Status)
	if err != nil {
		return fmt.Errorf("upserting order %q: %w", row.ID, err)
	}
	return nil
}

// FindAll returns every order, oldest first.
func (r *OrderRepository) FindAll(ctx context.Context) ([]*order.Order, error) {
	rows, err := r.db.Query(ctx, selectOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("querying orders: %w", err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (orderRow, error) {
		return scanRow(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scanning orders: %w", err)
	}

	out := make([]*order.Order, 0, len(records))
	for _, rec := range records {
		o, err := fromRow(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// FindByID returns order.ErrNotFound when no row matches id.
func (r *OrderRepository) FindByID(ctx context.Context, id order.ID) (*order.Order, error) {
	rec, err := scanRow(r.db.QueryRow(ctx, selectOrderSQL, id.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return fromRow(rec)
}

// Delete removes the order's row.
func (r *OrderRepository) Delete(ctx context.Context, o *order.Order) error {
	if _, err := r.db.Exec(ctx, deleteOrderSQL, o.ID().String()); err != nil {
		return fmt.Errorf("deleting order %q: %w", o.ID(), err)
	}
	return nil
}

func scanRow(row pgx.Row) (orderRow, error) {
	var rec orderRow
	err := row.Scan(&rec.ID, &rec.Items, &rec.DiscountCode, &rec.ShippingAddress, &rec.Total, &rec.Status)
	return rec, err
}

func toRow(s order.Snapshot) (orderRow, error) {
	items, err := json.Marshal(s.Items)
	if err != nil {
		return orderRow{}, fmt.Errorf("marshaling order items: %w", err)
	}
	return orderRow{
		ID:              s.ID,
		Items:           items,
		DiscountCode:    s.DiscountCode,
		ShippingAddress: s.ShippingAddress,
		Total:           s.Total,
		Status:          string(s.Status),
	}, nil
}

func fromRow(rec orderRow) (*order.Order, error) {
	var items []order.ItemSnapshot
	if err := json.Unmarshal(rec.Items, &items); err != nil {
		return nil, fmt.Errorf("unmarshaling items of order %q: %w", rec.ID, err)
	}

	o, err := order.FromSnapshot(order.Snapshot{
		ID:              rec.ID,
		Items:           items,
		DiscountCode:    rec.DiscountCode,
		ShippingAddress: rec.ShippingAddress,
		Total:           rec.Total,
		Status:          order.Status(rec.Status),
	})
	if err != nil {
		return nil, fmt.Errorf("restoring order %q: %w", rec.ID, err)
	}
	return o, nil
}
