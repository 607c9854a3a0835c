package command

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartrepo "github.com/tair/fashion-checkout/internal/cart/repository"
	coupondomain "github.com/tair/fashion-checkout/internal/coupon/domain"
	customerdomain "github.com/tair/fashion-checkout/internal/customer/domain"
	inventorydomain "github.com/tair/fashion-checkout/internal/inventory/domain"
	"github.com/tair/fashion-checkout/internal/order/domain"
	paymentdomain "github.com/tair/fashion-checkout/internal/payment/domain"
	paymentcommand "github.com/tair/fashion-checkout/internal/payment/usecase/command"
	"github.com/tair/fashion-checkout/internal/store/memory"
	"github.com/tair/fashion-checkout/kafka"
	"github.com/tair/fashion-checkout/pkg/apperror"
)

var fixedNow = time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)

type fixture struct {
	store    *memory.Store
	carts    *cartrepo.MemoryRepository
	events   *kafka.Recorder
	customer uint
	product  uint
	create   *CreateOrderHandler
	cancel   *CancelOrderHandler
	status   *UpdateStatusHandler
	method   *UpdatePaymentMethodHandler
	refund   *ProcessRefundHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memory.New()
	s.SetClock(func() time.Time { return fixedNow })
	f := &fixture{
		store:  s,
		carts:  cartrepo.NewMemoryRepository(),
		events: &kafka.Recorder{},
	}
	f.customer = s.AddCustomer(customerdomain.Customer{Username: "lan", Email: "lan@example.com", IsActive: true})
	f.product = s.AddProduct(inventorydomain.Product{Name: "Linen shirt", IsActive: true})

	clock := func() time.Time { return fixedNow }
	f.create = NewCreateOrderHandler(s, f.carts, f.events)
	f.create.now = clock
	f.cancel = NewCancelOrderHandler(s, f.events)
	f.cancel.now = clock
	f.status = NewUpdateStatusHandler(s, f.events)
	f.status.now = clock
	f.method = NewUpdatePaymentMethodHandler(s)
	f.method.now = clock
	f.refund = NewProcessRefundHandler(s, f.events)
	f.refund.now = clock
	return f
}

func (f *fixture) variant(t *testing.T, id uint, sku string, stock int, price int64) uint {
	t.Helper()
	return f.store.AddVariant(inventorydomain.Variant{
		ID:        id,
		ProductID: f.product,
		SKU:       sku,
		SizeName:  "M",
		Price:     decimal.NewFromInt(price),
		Stock:     stock,
		IsActive:  true,
	})
}

func (f *fixture) stock(t *testing.T, id uint) *inventorydomain.Variant {
	t.Helper()
	v, err := f.store.Stock().FindVariant(context.Background(), id)
	require.NoError(t, err)
	return v
}

func shipping() domain.Shipping {
	return domain.Shipping{Name: "Nguyen Lan", Phone: "0901234567", Line1: "12 Ly Thuong Kiet", City: "Hanoi"}
}

func (f *fixture) place(t *testing.T, method domain.PaymentMethod, items ...ItemInput) *domain.Order {
	t.Helper()
	order, err := f.create.Handle(context.Background(), CreateOrderCommand{
		CustomerID:    f.customer,
		Items:         items,
		Shipping:      shipping(),
		PaymentMethod: method,
	})
	require.NoError(t, err)
	return order
}

func TestCreateOrder_FixedCouponScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.variant(t, 7, "LS-M-WHT", 2, 100000)
	f.store.AddCoupon(coupondomain.Coupon{
		Code:           "SALE10",
		Type:           coupondomain.TypeFixed,
		Value:          decimal.NewFromInt(20000),
		MinOrderAmount: decimal.NewNullDecimal(decimal.NewFromInt(100000)),
		StartAt:        fixedNow.Add(-24 * time.Hour),
		EndAt:          fixedNow.Add(24 * time.Hour),
		IsActive:       true,
	})

	order, err := f.create.Handle(ctx, CreateOrderCommand{
		CustomerID:    f.customer,
		Items:         []ItemInput{{VariantID: 7, Quantity: 2}},
		Shipping:      shipping(),
		CouponCode:    "sale10",
		PaymentMethod: domain.MethodVNPay,
	})
	require.NoError(t, err)

	assert.Equal(t, "200000", order.Subtotal.String())
	assert.Equal(t, "20000", order.DiscountTotal.String())
	assert.Equal(t, "180000", order.GrandTotal.String())
	assert.Equal(t, "SALE10", order.CouponCode)
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Equal(t, domain.PaymentUnpaid, order.PaymentStatus)
	assert.Equal(t, domain.DefaultCountry, order.Shipping.Country)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Linen shirt", order.Items[0].ProductName)
	assert.Equal(t, "LS-M-WHT", order.Items[0].SKU)

	variant := f.stock(t, 7)
	assert.Zero(t, variant.Stock)
	assert.False(t, variant.IsActive)
	product, err := f.store.Stock().FindProduct(ctx, f.product)
	require.NoError(t, err)
	assert.False(t, product.IsActive)

	coupon, err := f.store.Coupons().FindByCode(ctx, "SALE10")
	require.NoError(t, err)
	assert.Equal(t, 1, coupon.UsedCount)

	movements := f.store.Movements()
	require.Len(t, movements, 1)
	assert.Equal(t, inventorydomain.ReasonSale, movements[0].Reason)
	assert.Equal(t, -2, movements[0].Quantity)
	require.NotNil(t, movements[0].RelatedOrderID)
	assert.Equal(t, order.ID, *movements[0].RelatedOrderID)

	assert.Equal(t, []string{kafka.EventTypeOrderCreated}, f.events.OrderEventTypes())
}

func TestCreateOrder_AllOrNothingWhenMiddleItemIsShort(t *testing.T) {
	f := newFixture(t)
	first := f.variant(t, 0, "A", 5, 100000)
	second := f.variant(t, 0, "B", 1, 100000)
	third := f.variant(t, 0, "C", 5, 100000)

	_, err := f.create.Handle(context.Background(), CreateOrderCommand{
		CustomerID: f.customer,
		Items: []ItemInput{
			{VariantID: first, Quantity: 2},
			{VariantID: second, Quantity: 2},
			{VariantID: third, Quantity: 2},
		},
		Shipping:      shipping(),
		PaymentMethod: domain.MethodCOD,
	})

	var stockErr *inventorydomain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, second, stockErr.VariantID)
	assert.Equal(t, 2, stockErr.Requested)
	assert.Equal(t, 1, stockErr.Available)

	assert.Equal(t, 5, f.stock(t, first).Stock)
	assert.Equal(t, 1, f.stock(t, second).Stock)
	assert.Equal(t, 5, f.stock(t, third).Stock)
	assert.Zero(t, f.store.OrderCount())
	assert.Empty(t, f.store.Movements())
	assert.Empty(t, f.events.OrderEvents)
}

func TestCreateOrder_CouponRulesRejectBeforeAnyWrite(t *testing.T) {
	f := newFixture(t)
	id := f.variant(t, 0, "A", 5, 50000)
	f.store.AddCoupon(coupondomain.Coupon{
		Code:           "BIGSPEND",
		Type:           coupondomain.TypePercent,
		Value:          decimal.NewFromInt(10),
		MinOrderAmount: decimal.NewNullDecimal(decimal.NewFromInt(500000)),
		StartAt:        fixedNow.Add(-time.Hour),
		EndAt:          fixedNow.Add(time.Hour),
		IsActive:       true,
	})
	f.store.AddCoupon(coupondomain.Coupon{
		Code:     "EXPIRED",
		Type:     coupondomain.TypeFixed,
		Value:    decimal.NewFromInt(1000),
		StartAt:  fixedNow.Add(-48 * time.Hour),
		EndAt:    fixedNow.Add(-24 * time.Hour),
		IsActive: true,
	})

	cases := map[string]apperror.Kind{
		"BIGSPEND": apperror.KindCouponMinimumNotMet,
		"EXPIRED":  apperror.KindInvalidCoupon,
		"NOSUCH":   apperror.KindInvalidCoupon,
	}
	for code, kind := range cases {
		_, err := f.create.Handle(context.Background(), CreateOrderCommand{
			CustomerID:    f.customer,
			Items:         []ItemInput{{VariantID: id, Quantity: 1}},
			Shipping:      shipping(),
			CouponCode:    code,
			PaymentMethod: domain.MethodCOD,
		})
		assert.True(t, apperror.Is(err, kind), "%s: %v", code, err)
	}
	assert.Equal(t, 5, f.stock(t, id).Stock)
	assert.Zero(t, f.store.OrderCount())
}

func TestCreateOrder_ExhaustedCouponIsRejected(t *testing.T) {
	f := newFixture(t)
	id := f.variant(t, 0, "A", 5, 100000)
	limit := 1
	f.store.AddCoupon(coupondomain.Coupon{
		Code:       "ONCEONLY",
		Type:       coupondomain.TypeFixed,
		Value:      decimal.NewFromInt(1000),
		StartAt:    fixedNow.Add(-time.Hour),
		EndAt:      fixedNow.Add(time.Hour),
		UsageLimit: &limit,
		IsActive:   true,
	})
	cmd := CreateOrderCommand{
		CustomerID:    f.customer,
		Items:         []ItemInput{{VariantID: id, Quantity: 1}},
		Shipping:      shipping(),
		CouponCode:    "ONCEONLY",
		PaymentMethod: domain.MethodCOD,
	}

	_, err := f.create.Handle(context.Background(), cmd)
	require.NoError(t, err)
	_, err = f.create.Handle(context.Background(), cmd)
	assert.True(t, apperror.Is(err, apperror.KindInvalidCoupon))

	assert.Equal(t, 4, f.stock(t, id).Stock)
	assert.Equal(t, 1, f.store.OrderCount())
}

func TestCreateOrder_UnknownCustomerAndVariant(t *testing.T) {
	f := newFixture(t)
	id := f.variant(t, 0, "A", 5, 100000)

	_, err := f.create.Handle(context.Background(), CreateOrderCommand{
		CustomerID:    9999,
		Items:         []ItemInput{{VariantID: id, Quantity: 1}},
		Shipping:      shipping(),
		PaymentMethod: domain.MethodCOD,
	})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = f.create.Handle(context.Background(), CreateOrderCommand{
		CustomerID:    f.customer,
		Items:         []ItemInput{{VariantID: 9999, Quantity: 1}},
		Shipping:      shipping(),
		PaymentMethod: domain.MethodCOD,
	})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestCreateOrder_InactiveVariantReportsZeroAvailable(t *testing.T) {
	f := newFixture(t)
	id := f.variant(t, 0, "A", 5, 100000)
	require.NoError(t, f.store.Stock().SetVariantActive(context.Background(), id, false))

	_, err := f.create.Handle(context.Background(), CreateOrderCommand{
		CustomerID:    f.customer,
		Items:         []ItemInput{{VariantID: id, Quantity: 1}},
		Shipping:      shipping(),
		PaymentMethod: domain.MethodCOD,
	})
	var stockErr *inventorydomain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Zero(t, stockErr.Available)
}

func TestCreateOrder_ChecksOutCartAndClearsIt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.variant(t, 0, "A", 5, 100000)
	b := f.variant(t, 0, "B", 5, 50000)
	require.NoError(t, f.carts.AddItem(ctx, f.customer, a, 1))
	require.NoError(t, f.carts.AddItem(ctx, f.customer, b, 2))

	order, err := f.create.Handle(ctx, CreateOrderCommand{
		CustomerID:    f.customer,
		Shipping:      shipping(),
		PaymentMethod: domain.MethodCOD,
	})
	require.NoError(t, err)
	assert.Len(t, order.Items, 2)
	assert.Equal(t, "200000", order.GrandTotal.String())

	items, err := f.carts.List(ctx, f.customer)
	require.NoError(t, err)
	assert.Empty(t, items)

	payments, err := f.store.Payments().FindByOrderID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, paymentdomain.StatusPending, payments[0].Status)
	assert.Equal(t, domain.MethodCOD, payments[0].PaymentMethod)
	assert.True(t, order.GrandTotal.Equal(payments[0].Amount))
}

func TestCreateOrder_EmptyCartIsRejected(t *testing.T) {
	f := newFixture(t)
	_, err := f.create.Handle(context.Background(), CreateOrderCommand{
		CustomerID:    f.customer,
		Shipping:      shipping(),
		PaymentMethod: domain.MethodCOD,
	})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestNormalize(t *testing.T) {
	cmd := &CreateOrderCommand{
		CustomerID: 1,
		Items: []ItemInput{
			{VariantID: 3, Quantity: 1},
			{VariantID: 5, Quantity: 2},
			{VariantID: 3, Quantity: 4},
		},
		Shipping:      shipping(),
		CouponCode:    " sale10 ",
		PaymentMethod: domain.MethodVNPay,
	}
	items, err := normalize(cmd)
	require.NoError(t, err)
	assert.Equal(t, []ItemInput{{VariantID: 3, Quantity: 5}, {VariantID: 5, Quantity: 2}}, items)
	assert.Equal(t, "SALE10", cmd.CouponCode)

	bad := []CreateOrderCommand{
		{CustomerID: 1, Items: []ItemInput{{VariantID: 1, Quantity: 0}}, Shipping: shipping(), PaymentMethod: domain.MethodCOD},
		{CustomerID: 1, Items: []ItemInput{{VariantID: 0, Quantity: 1}}, Shipping: shipping(), PaymentMethod: domain.MethodCOD},
		{CustomerID: 1, Items: []ItemInput{{VariantID: 1, Quantity: 1}}, Shipping: domain.Shipping{Name: "x"}, PaymentMethod: domain.MethodCOD},
		{CustomerID: 1, Items: []ItemInput{{VariantID: 1, Quantity: 1}}, Shipping: shipping(), PaymentMethod: "PAYPAL"},
		{CustomerID: 1, Items: []ItemInput{{VariantID: 1, Quantity: 1}}, Shipping: shipping(), PaymentMethod: domain.MethodCOD, CouponCode: "no!"},
	}
	for i := range bad {
		_, err := normalize(&bad[i])
		assert.True(t, apperror.Is(err, apperror.KindValidation), "case %d", i)
	}
}

func TestCancelOrder_RestoresStockAndFailsPendingPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.variant(t, 0, "A", 3, 100000)
	order := f.place(t, domain.MethodCOD, ItemInput{VariantID: id, Quantity: 3})
	require.False(t, f.stock(t, id).IsActive)

	cancelled, err := f.cancel.Handle(ctx, CancelOrderCommand{OrderID: order.ID, CustomerID: f.customer})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	assert.Equal(t, domain.PaymentFailed, cancelled.PaymentStatus)

	variant := f.stock(t, id)
	assert.Equal(t, 3, variant.Stock)
	assert.False(t, variant.IsActive, "restoring stock never reactivates")

	movements := f.store.Movements()
	require.Len(t, movements, 2)
	assert.Equal(t, inventorydomain.ReasonReturn, movements[1].Reason)
	assert.Equal(t, 3, movements[1].Quantity)

	payments, err := f.store.Payments().FindByOrderID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, paymentdomain.StatusFailed, payments[0].Status)

	assert.Equal(t, []string{kafka.EventTypeOrderCreated, kafka.EventTypeOrderCancelled}, f.events.OrderEventTypes())
}

func TestCancelOrder_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.variant(t, 0, "A", 5, 100000)
	order := f.place(t, domain.MethodCOD, ItemInput{VariantID: id, Quantity: 1})

	_, err := f.cancel.Handle(ctx, CancelOrderCommand{OrderID: order.ID, CustomerID: f.customer + 100})
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	_, err = f.status.Handle(ctx, UpdateStatusCommand{OrderID: order.ID, Status: domain.StatusConfirmed})
	require.NoError(t, err)

	_, err = f.cancel.Handle(ctx, CancelOrderCommand{OrderID: order.ID, CustomerID: f.customer})
	assert.True(t, apperror.Is(err, apperror.KindInvalidState))
	assert.Equal(t, 4, f.stock(t, id).Stock)

	_, err = f.cancel.Handle(ctx, CancelOrderCommand{OrderID: 9999, CustomerID: f.customer})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestUpdateStatus_CompletingCODOrderSettlesPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.variant(t, 0, "A", 5, 100000)
	order := f.place(t, domain.MethodCOD, ItemInput{VariantID: id, Quantity: 1})

	for _, next := range []domain.Status{domain.StatusConfirmed, domain.StatusPacking, domain.StatusShipping} {
		updated, err := f.status.Handle(ctx, UpdateStatusCommand{OrderID: order.ID, Status: next})
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentUnpaid, updated.PaymentStatus)
	}

	completed, err := f.status.Handle(ctx, UpdateStatusCommand{OrderID: order.ID, Status: domain.StatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, completed.PaymentStatus)
	require.NotNil(t, completed.PaymentTime)

	payments, err := f.store.Payments().FindByOrderID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, paymentdomain.StatusCompleted, payments[0].Status)
	assert.NotNil(t, payments[0].CompletedAt)

	last := f.events.OrderEvents[len(f.events.OrderEvents)-1]
	assert.Equal(t, kafka.EventTypeOrderStatusChanged, last.EventType)
	assert.Equal(t, string(domain.StatusShipping), last.PreviousStatus)
	assert.Equal(t, string(domain.PaymentPaid), last.PaymentStatus)
}

func TestUpdateStatus_RejectsSkippedAndTerminalTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.variant(t, 0, "A", 5, 100000)
	order := f.place(t, domain.MethodCOD, ItemInput{VariantID: id, Quantity: 1})

	_, err := f.status.Handle(ctx, UpdateStatusCommand{OrderID: order.ID, Status: domain.StatusShipping})
	assert.True(t, apperror.Is(err, apperror.KindInvalidState))

	_, err = f.status.Handle(ctx, UpdateStatusCommand{OrderID: order.ID, Status: "LOST"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	cancelled, err := f.status.Handle(ctx, UpdateStatusCommand{OrderID: order.ID, Status: domain.StatusCancelled, ActorID: 42})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentFailed, cancelled.PaymentStatus)
	assert.Equal(t, 5, f.stock(t, id).Stock)

	movements := f.store.Movements()
	require.NotNil(t, movements[len(movements)-1].CreatedBy)
	assert.Equal(t, uint(42), *movements[len(movements)-1].CreatedBy)

	_, err = f.status.Handle(ctx, UpdateStatusCommand{OrderID: order.ID, Status: domain.StatusConfirmed})
	assert.True(t, apperror.Is(err, apperror.KindInvalidState))
	assert.Equal(t, 5, f.stock(t, id).Stock)
}

func TestProcessRefund(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.variant(t, 0, "A", 5, 100000)
	order := f.place(t, domain.MethodCOD, ItemInput{VariantID: id, Quantity: 2})

	_, err := f.refund.Handle(ctx, ProcessRefundCommand{OrderID: order.ID, Reason: "damaged"})
	assert.True(t, apperror.Is(err, apperror.KindInvalidState), "unpaid orders cannot be refunded")

	for _, next := range []domain.Status{domain.StatusConfirmed, domain.StatusPacking, domain.StatusShipping} {
		_, err := f.status.Handle(ctx, UpdateStatusCommand{OrderID: order.ID, Status: next})
		require.NoError(t, err)
	}
	// Settle the order out of band, as a gateway payment would.
	paid, err := f.store.Orders().FindByID(ctx, order.ID)
	require.NoError(t, err)
	paid.PaymentStatus = domain.PaymentPaid
	require.NoError(t, f.store.Orders().Update(ctx, paid))
	payments, err := f.store.Payments().FindByOrderID(ctx, order.ID)
	require.NoError(t, err)
	payments[0].Status = paymentdomain.StatusCompleted
	require.NoError(t, f.store.Payments().Update(ctx, &payments[0]))

	refunded, err := f.refund.Handle(ctx, ProcessRefundCommand{OrderID: order.ID, Reason: "damaged"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRefunded, refunded.Status)
	assert.Equal(t, domain.PaymentRefunded, refunded.PaymentStatus)
	assert.Equal(t, 5, f.stock(t, id).Stock)

	payments, err = f.store.Payments().FindByOrderID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, paymentdomain.StatusRefunded, payments[0].Status)

	movements := f.store.Movements()
	assert.Equal(t, "Refund: damaged", movements[len(movements)-1].Note)

	_, err = f.refund.Handle(ctx, ProcessRefundCommand{OrderID: order.ID})
	assert.True(t, apperror.Is(err, apperror.KindInvalidState))
	assert.Equal(t, 5, f.stock(t, id).Stock)
}

func TestUpdatePaymentMethod(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.variant(t, 0, "A", 5, 100000)
	order := f.place(t, domain.MethodCOD, ItemInput{VariantID: id, Quantity: 1})

	switched, err := f.method.Handle(ctx, UpdatePaymentMethodCommand{OrderID: order.ID, CustomerID: f.customer, PaymentMethod: domain.MethodVNPay})
	require.NoError(t, err)
	assert.Equal(t, domain.MethodVNPay, switched.PaymentMethod)
	assert.Equal(t, domain.PaymentUnpaid, switched.PaymentStatus, "cancelled attempts do not touch the order")

	payments, err := f.store.Payments().FindByOrderID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, paymentdomain.StatusCancelled, payments[0].Status)

	_, err = f.method.Handle(ctx, UpdatePaymentMethodCommand{OrderID: order.ID, CustomerID: f.customer, PaymentMethod: domain.MethodCOD})
	require.NoError(t, err)
	payments, err = f.store.Payments().FindByOrderID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	pending := 0
	for _, p := range payments {
		if p.Status == paymentdomain.StatusPending {
			pending++
		}
	}
	assert.Equal(t, 1, pending)

	_, err = f.method.Handle(ctx, UpdatePaymentMethodCommand{OrderID: order.ID, CustomerID: f.customer + 1, PaymentMethod: domain.MethodVNPay})
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	_, err = f.cancel.Handle(ctx, CancelOrderCommand{OrderID: order.ID, CustomerID: f.customer})
	require.NoError(t, err)
	_, err = f.method.Handle(ctx, UpdatePaymentMethodCommand{OrderID: order.ID, CustomerID: f.customer, PaymentMethod: domain.MethodVNPay})
	assert.True(t, apperror.Is(err, apperror.KindInvalidState))
}

func TestPublishFailureDoesNotFailCheckout(t *testing.T) {
	f := newFixture(t)
	f.events.Err = assert.AnError
	id := f.variant(t, 0, "A", 5, 100000)

	order := f.place(t, domain.MethodVNPay, ItemInput{VariantID: id, Quantity: 1})
	assert.NotZero(t, order.ID)
	assert.Len(t, f.events.OrderEvents, 1)
}

func (f *fixture) points(t *testing.T, customerID uint) int {
	t.Helper()
	customer, err := f.store.Customers().FindByID(context.Background(), customerID)
	require.NoError(t, err)
	return customer.LoyaltyPoints
}

func TestCreateOrder_RedeemsLoyaltyPoints(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buyer := f.store.AddCustomer(customerdomain.Customer{Username: "hoa", Email: "hoa@example.com", IsActive: true, LoyaltyPoints: 50})
	id := f.variant(t, 0, "A", 5, 100000)

	order, err := f.create.Handle(ctx, CreateOrderCommand{
		CustomerID:         buyer,
		Items:              []ItemInput{{VariantID: id, Quantity: 2}},
		Shipping:           shipping(),
		PaymentMethod:      domain.MethodCOD,
		LoyaltyPointsToUse: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, 30, order.LoyaltyPointsUsed)
	assert.Equal(t, "30000", order.LoyaltyDiscount.String())
	assert.Equal(t, "170000", order.GrandTotal.String())
	assert.Equal(t, 1700, order.LoyaltyPointsEarned)
	assert.Equal(t, 20, f.points(t, buyer))

	payments, err := f.store.Payments().FindByOrderID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, "170000", payments[0].Amount.String())

	cancelled, err := f.cancel.Handle(ctx, CancelOrderCommand{OrderID: order.ID, CustomerID: buyer})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	assert.Equal(t, 50, f.points(t, buyer), "cancelling gives the spent points back")
}

func TestCreateOrder_PointsCappedByWhatTheCouponLeaves(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buyer := f.store.AddCustomer(customerdomain.Customer{Username: "hoa", Email: "hoa@example.com", IsActive: true, LoyaltyPoints: 500})
	id := f.variant(t, 0, "A", 5, 100000)
	f.store.AddCoupon(coupondomain.Coupon{
		Code:     "SALE20K",
		Type:     coupondomain.TypeFixed,
		Value:    decimal.NewFromInt(20000),
		StartAt:  fixedNow.Add(-time.Hour),
		EndAt:    fixedNow.Add(time.Hour),
		IsActive: true,
	})

	order, err := f.create.Handle(ctx, CreateOrderCommand{
		CustomerID:         buyer,
		Items:              []ItemInput{{VariantID: id, Quantity: 2}},
		Shipping:           shipping(),
		CouponCode:         "SALE20K",
		PaymentMethod:      domain.MethodVNPay,
		LoyaltyPointsToUse: 500,
	})
	require.NoError(t, err)
	assert.Equal(t, "20000", order.DiscountTotal.String())
	assert.Equal(t, "180000", order.LoyaltyDiscount.String())
	assert.Equal(t, 180, order.LoyaltyPointsUsed)
	assert.True(t, order.GrandTotal.IsZero())
	assert.Zero(t, order.LoyaltyPointsEarned)
	assert.Equal(t, 320, f.points(t, buyer))
}

func TestCreateOrder_FixedCouponAboveSubtotal(t *testing.T) {
	f := newFixture(t)
	id := f.variant(t, 0, "A", 5, 30000)
	f.store.AddCoupon(coupondomain.Coupon{
		Code:     "BIG50K",
		Type:     coupondomain.TypeFixed,
		Value:    decimal.NewFromInt(50000),
		StartAt:  fixedNow.Add(-time.Hour),
		EndAt:    fixedNow.Add(time.Hour),
		IsActive: true,
	})

	order, err := f.create.Handle(context.Background(), CreateOrderCommand{
		CustomerID:    f.customer,
		Items:         []ItemInput{{VariantID: id, Quantity: 1}},
		Shipping:      shipping(),
		CouponCode:    "BIG50K",
		PaymentMethod: domain.MethodVNPay,
	})
	require.NoError(t, err)
	assert.Equal(t, "50000", order.DiscountTotal.String())
	assert.True(t, order.GrandTotal.IsZero())
}

func TestCreateOrder_NegativePointsAreRejected(t *testing.T) {
	f := newFixture(t)
	id := f.variant(t, 0, "A", 5, 100000)

	_, err := f.create.Handle(context.Background(), CreateOrderCommand{
		CustomerID:         f.customer,
		Items:              []ItemInput{{VariantID: id, Quantity: 1}},
		Shipping:           shipping(),
		PaymentMethod:      domain.MethodCOD,
		LoyaltyPointsToUse: -1,
	})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.Zero(t, f.store.OrderCount())
}

func TestUpdateStatus_LoyaltyOnCompletionAndRefund(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buyer := f.store.AddCustomer(customerdomain.Customer{Username: "hoa", Email: "hoa@example.com", IsActive: true, LoyaltyPoints: 50})
	id := f.variant(t, 0, "A", 5, 100000)

	place := func() *domain.Order {
		order, err := f.create.Handle(ctx, CreateOrderCommand{
			CustomerID:         buyer,
			Items:              []ItemInput{{VariantID: id, Quantity: 1}},
			Shipping:           shipping(),
			PaymentMethod:      domain.MethodCOD,
			LoyaltyPointsToUse: 10,
		})
		require.NoError(t, err)
		return order
	}
	advance := func(order *domain.Order, to ...domain.Status) {
		for _, next := range to {
			_, err := f.status.Handle(ctx, UpdateStatusCommand{OrderID: order.ID, Status: next})
			require.NoError(t, err)
		}
	}

	completed := place()
	assert.Equal(t, 900, completed.LoyaltyPointsEarned)
	assert.Equal(t, 40, f.points(t, buyer))
	advance(completed, domain.StatusConfirmed, domain.StatusPacking, domain.StatusShipping)
	assert.Equal(t, 40, f.points(t, buyer), "points are earned on completion only")
	advance(completed, domain.StatusCompleted)
	assert.Equal(t, 940, f.points(t, buyer))

	refunded := place()
	assert.Equal(t, 930, f.points(t, buyer))
	advance(refunded, domain.StatusConfirmed, domain.StatusRefunded)
	assert.Equal(t, 940, f.points(t, buyer), "refunding gives the spent points back")
}

func TestUpdateStatus_CompletingGatewayOrderSupersedesFailedAttempt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.variant(t, 0, "A", 5, 100000)
	order := f.place(t, domain.MethodVNPay, ItemInput{VariantID: id, Quantity: 1})
	require.NoError(t, f.store.Payments().Create(ctx, &paymentdomain.Payment{
		OrderID:       order.ID,
		PaymentMethod: domain.MethodVNPay,
		Amount:        order.GrandTotal,
		Status:        paymentdomain.StatusFailed,
		ResponseCode:  "24",
	}))

	for _, next := range []domain.Status{domain.StatusConfirmed, domain.StatusPacking, domain.StatusShipping, domain.StatusCompleted} {
		_, err := f.status.Handle(ctx, UpdateStatusCommand{OrderID: order.ID, Status: next})
		require.NoError(t, err)
	}

	payments, err := f.store.Payments().FindByOrderID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, paymentdomain.StatusCompleted, payments[0].Status)
	assert.Equal(t, "100000", payments[0].Amount.String())
	assert.NotNil(t, payments[0].CompletedAt)
	assert.Equal(t, paymentdomain.StatusFailed, payments[1].Status)

	// The sweep now agrees with the completed order.
	summary, err := paymentcommand.NewSyncStatusHandler(f.store).HandleAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, summary.Synced)

	got, err := f.store.Orders().FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, got.PaymentStatus)
}
