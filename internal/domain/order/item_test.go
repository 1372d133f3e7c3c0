package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestNewLineItem(t *testing.T) {
	tests := []struct {
		name      string
		quantity  int
		price     decimal.Decimal
		wantTotal decimal.Decimal
		wantErr   error
	}{
		{name: "single unit", quantity: 1, price: d("10"), wantTotal: d("10")},
		{name: "several units", quantity: 3, price: d("2.50"), wantTotal: d("7.5")},
		{name: "free item", quantity: 2, price: d("0"), wantTotal: d("0")},
		{name: "zero quantity", quantity: 0, price: d("10"), wantErr: ErrInvalidQuantity},
		{name: "negative quantity", quantity: -1, price: d("10"), wantErr: ErrInvalidQuantity},
		{name: "negative price", quantity: 1, price: d("-0.01"), wantErr: ErrInvalidPrice},
		{name: "quantity checked before price", quantity: 0, price: d("-1"), wantErr: ErrInvalidQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := NewLineItem("p1", tt.quantity, tt.price)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				var vErr *ValidationError
				assert.ErrorAs(t, err, &vErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "p1", item.ProductID())
			assert.Equal(t, tt.quantity, item.Quantity())
			assert.True(t, tt.price.Equal(item.Price()))
			assert.True(t, tt.wantTotal.Equal(item.Total()),
				"expected total %s, got %s", tt.wantTotal, item.Total())
		})
	}
}

func TestID(t *testing.T) {
	assert.True(t, ID("abc").Equal(ID("abc")))
	assert.False(t, ID("abc").Equal(ID("abd")))
	assert.Equal(t, "abc", ID("abc").String())
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("CREATED")
	require.NoError(t, err)
	assert.Equal(t, StatusCreated, s)

	s, err = ParseStatus("COMPLETED")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, s)

	_, err = ParseStatus("SHIPPED")
	var sErr *UnknownStatusError
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, "SHIPPED", sErr.Status)
	assert.EqualError(t, err, "Unknown order status: SHIPPED")
}
