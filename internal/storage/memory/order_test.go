package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/orders/internal/domain/discount"
	"github.com/xenking/orders/internal/domain/order"
)

func newOrder(t *testing.T, id order.ID, address string) *order.Order {
	t.Helper()
	item, err := order.NewLineItem("1", 1, decimal.NewFromInt(10))
	require.NoError(t, err)
	o, err := order.New(id, []order.LineItem{item}, discount.FromCode(""), address)
	require.NoError(t, err)
	return o
}

func TestNewID_Sequential(t *testing.T) {
	r := NewOrderRepository()
	assert.Equal(t, order.ID("0"), r.NewID())
	assert.Equal(t, order.ID("1"), r.NewID())
	assert.Equal(t, order.ID("2"), r.NewID())
}

func TestSave_Upsert(t *testing.T) {
	ctx := context.Background()
	r := NewOrderRepository()

	require.NoError(t, r.Save(ctx, newOrder(t, "a", "first")))
	require.NoError(t, r.Save(ctx, newOrder(t, "b", "second")))
	require.NoError(t, r.Save(ctx, newOrder(t, "a", "replaced")))

	all, err := r.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, order.ID("a"), all[0].ID())
	assert.Equal(t, "replaced", all[0].ShippingAddress())
	assert.Equal(t, order.ID("b"), all[1].ID())
}

func TestFindByID(t *testing.T) {
	ctx := context.Background()
	r := NewOrderRepository()
	require.NoError(t, r.Save(ctx, newOrder(t, "a", "addr")))

	got, err := r.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "addr", got.ShippingAddress())

	_, err = r.FindByID(ctx, "missing")
	require.ErrorIs(t, err, order.ErrNotFound)
}

func TestFindByID_ReturnsWorkingCopy(t *testing.T) {
	ctx := context.Background()
	r := NewOrderRepository()
	require.NoError(t, r.Save(ctx, newOrder(t, "a", "addr")))

	got, err := r.FindByID(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, got.Complete())

	stored, err := r.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, order.StatusCreated, stored.Status(), "unsaved changes must not leak into the store")
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	r := NewOrderRepository()
	a := newOrder(t, "a", "")
	require.NoError(t, r.Save(ctx, a))
	require.NoError(t, r.Save(ctx, newOrder(t, "b", "")))

	require.NoError(t, r.Delete(ctx, a))
	require.NoError(t, r.Delete(ctx, a))

	all, err := r.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, order.ID("b"), all[0].ID())
}

func TestConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	r := NewOrderRepository()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o := newOrder(t, r.NewID(), "")
			assert.NoError(t, r.Save(ctx, o))
			_, err := r.FindAll(ctx)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	all, err := r.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 20)
}
