// Package discount resolves promotional codes to price multipliers.
package discount

import "github.com/shopspring/decimal"

// Code20 is the only promotional code the shop currently honours.
const Code20 = "DISCOUNT20"

var (
	factor20 = decimal.RequireFromString("0.8")
	neutral  = decimal.NewFromInt(1)
)

// Discount is an immutable promotional code together with the factor applied
// to an order subtotal. The zero value is not usable; build one with FromCode.
type Discount struct {
	code   string
	factor decimal.Decimal
}

// FromCode resolves code to a Discount. It never fails: unknown and empty
// codes resolve to a neutral factor of 1 so that a mistyped code does not
// block checkout.
func FromCode(code string) Discount {
	if code == Code20 {
		return Discount{code: code, factor: factor20}
	}
	return Discount{code: code, factor: neutral}
}

// Code returns the code as supplied by the customer.
func (d Discount) Code() string {
	return d.code
}

// Factor returns the multiplier in (0, 1].
func (d Discount) Factor() decimal.Decimal {
	if d.factor.IsZero() {
		return neutral
	}
	return d.factor
}

// Apply multiplies amount by the discount factor without rounding.
func (d Discount) Apply(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(d.Factor())
}
