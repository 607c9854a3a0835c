package domain

import (
	"github.com/shopspring/decimal"

	"github.com/tair/fashion-checkout/pkg/apperror"
)

var hundred = decimal.NewFromInt(100)

// CheckMinimum fails with CouponMinimumNotMet when subtotal is below the
// coupon's minimum order amount.
func (c *Coupon) CheckMinimum(subtotal decimal.Decimal) error {
	if c.MinOrderAmount.Valid && subtotal.LessThan(c.MinOrderAmount.Decimal) {
		return apperror.CouponMinimumNotMet(
			"coupon %s requires a minimum order of %s", c.Code, c.MinOrderAmount.Decimal.StringFixed(0),
		).WithField("min_order_amount", c.MinOrderAmount.Decimal.String()).
			WithField("subtotal", subtotal.String())
	}
	return nil
}

// Discount computes the discount for subtotal. PERCENT rounds half-up to two
// decimals and honours the cap. FIXED is the value as is, even above the
// subtotal; the order floors its grand total instead.
func (c *Coupon) Discount(subtotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch c.Type {
	case TypePercent:
		discount = subtotal.Mul(c.Value).Div(hundred).Round(2)
		if c.MaxDiscount.Valid && discount.GreaterThan(c.MaxDiscount.Decimal) {
			discount = c.MaxDiscount.Decimal
		}
	case TypeFixed:
		discount = c.Value
	default:
		return decimal.Zero
	}

	if discount.IsNegative() {
		return decimal.Zero
	}
	return discount
}

// Apply validates the minimum and returns the discount for subtotal.
func (c *Coupon) Apply(subtotal decimal.Decimal) (decimal.Decimal, error) {
	if err := c.CheckMinimum(subtotal); err != nil {
		return decimal.Zero, err
	}
	return c.Discount(subtotal), nil
}
