package domain

import (
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusPending, StatusConfirmed},
		{StatusPending, StatusCancelled},
		{StatusConfirmed, StatusPacking},
		{StatusConfirmed, StatusCancelled},
		{StatusPacking, StatusShipping},
		{StatusShipping, StatusCompleted},
		{StatusShipping, StatusRefunded},
	}
	for _, tc := range allowed {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}

	rejected := []struct{ from, to Status }{
		{StatusPending, StatusShipping},
		{StatusPacking, StatusConfirmed},
		{StatusCompleted, StatusCancelled},
		{StatusCancelled, StatusPending},
		{StatusRefunded, StatusCompleted},
		{StatusPending, StatusPending},
	}
	for _, tc := range rejected {
		assert.False(t, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTerminalStatesHaveNoEdges(t *testing.T) {
	all := []Status{StatusPending, StatusConfirmed, StatusPacking, StatusShipping,
		StatusCompleted, StatusCancelled, StatusRefunded}
	for _, from := range all {
		if !from.IsTerminal() {
			continue
		}
		for _, to := range all {
			assert.False(t, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestPaymentStatusOnTransition(t *testing.T) {
	cases := []struct {
		to      Status
		current PaymentStatus
		want    PaymentStatus
	}{
		{StatusCompleted, PaymentUnpaid, PaymentPaid},
		{StatusCompleted, PaymentPaid, PaymentPaid},
		{StatusCancelled, PaymentUnpaid, PaymentFailed},
		{StatusCancelled, PaymentPaid, PaymentRefunded},
		{StatusCancelled, PaymentFailed, PaymentFailed},
		{StatusCancelled, PaymentRefunded, PaymentRefunded},
		{StatusRefunded, PaymentPaid, PaymentRefunded},
		{StatusRefunded, PaymentRefunded, PaymentRefunded},
		{StatusPacking, PaymentUnpaid, PaymentUnpaid},
		{StatusConfirmed, PaymentPaid, PaymentPaid},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, PaymentStatusOnTransition(tc.to, tc.current), "%s/%s", tc.to, tc.current)
	}
}

func TestComputeTotals(t *testing.T) {
	o := &Order{
		DiscountTotal: decimal.NewFromInt(20000),
		Items: []OrderItem{
			{Quantity: 2, UnitPrice: decimal.NewFromInt(100000)},
			{Quantity: 1, UnitPrice: decimal.RequireFromString("49.50")},
		},
	}
	o.ComputeTotals()

	assert.Equal(t, "200049.5", o.Subtotal.String())
	assert.Equal(t, "180049.5", o.GrandTotal.String())
	assert.Equal(t, 1800, o.LoyaltyPointsEarned)
	assert.Equal(t, "200000", o.Items[0].LineTotal.String())
}

func TestNewOrderCode(t *testing.T) {
	now := time.Date(2026, 3, 9, 14, 5, 6, 0, time.UTC)
	code := NewOrderCode(now)
	assert.Regexp(t, regexp.MustCompile(`^ORD-20260309140506-[0-9A-F]{6}$`), code)
	assert.NotEqual(t, code, NewOrderCode(now))
}
