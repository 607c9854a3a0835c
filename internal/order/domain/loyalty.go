package domain

import "github.com/shopspring/decimal"

var (
	// PointValue is the discount one redeemed loyalty point is worth.
	PointValue = decimal.NewFromInt(1000)
	// earnDivisor turns a grand total into earned points (1%, rounded down).
	earnDivisor = decimal.NewFromInt(100)
)

// PointsEarned is the number of points an order with grandTotal earns.
func PointsEarned(grandTotal decimal.Decimal) int {
	if !grandTotal.IsPositive() {
		return 0
	}
	return int(grandTotal.Div(earnDivisor).Floor().IntPart())
}

// RedeemPoints spends up to requested of the available points against
// payable, the amount left after coupons. The discount never exceeds
// payable; when it is capped the last point is spent in full.
func RedeemPoints(requested, available int, payable decimal.Decimal) (used int, discount decimal.Decimal) {
	used = requested
	if available < used {
		used = available
	}
	if used <= 0 || !payable.IsPositive() {
		return 0, decimal.Zero
	}

	discount = PointValue.Mul(decimal.NewFromInt(int64(used)))
	if discount.GreaterThan(payable) {
		discount = payable
		used = int(payable.Div(PointValue).Ceil().IntPart())
	}
	return used, discount
}

// LoyaltyDelta is the change to the customer's balance when the order
// enters status to: COMPLETED credits the points earned, CANCELLED and
// REFUNDED give back the points spent. COMPLETED is terminal, so earned
// points are never taken back.
func (o *Order) LoyaltyDelta(to Status) int {
	switch {
	case to == StatusCompleted:
		return o.LoyaltyPointsEarned
	case to.RestoresStock():
		return o.LoyaltyPointsUsed
	}
	return 0
}
