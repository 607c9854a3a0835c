package command

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderdomain "github.com/tair/fashion-checkout/internal/order/domain"
	"github.com/tair/fashion-checkout/internal/payment/domain"
	"github.com/tair/fashion-checkout/internal/payment/gateway/vnpay"
	"github.com/tair/fashion-checkout/internal/store/memory"
	"github.com/tair/fashion-checkout/kafka"
	"github.com/tair/fashion-checkout/pkg/apperror"
	"github.com/tair/fashion-checkout/pkg/config"
)

var fixedNow = time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)

func testGateway() *vnpay.Client {
	return vnpay.NewClient(config.VNPayConfig{
		PayURL:      "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		TmnCode:     "SHOPTEST",
		HashSecret:  "TESTSECRETKEY0123456789",
		ReturnURL:   "http://localhost:8080/api/payments/vnpay/return",
		Version:     "2.1.0",
		Command:     "pay",
		OrderType:   "other",
		Locale:      "vn",
		CurrCode:    "VND",
		ExpireAfter: 15 * time.Minute,
	}).WithClock(func() time.Time { return fixedNow })
}

type harness struct {
	store   *memory.Store
	gateway *vnpay.Client
	events  *kafka.Recorder
	verify  *VerifyAndRecordHandler
	sync    *SyncStatusHandler
	cod     *CODHandler
	update  *UpdateStatusHandler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	s := memory.New()
	s.SetClock(func() time.Time { return fixedNow })
	h := &harness{store: s, gateway: testGateway(), events: &kafka.Recorder{}}
	clock := func() time.Time { return fixedNow }

	h.verify = NewVerifyAndRecordHandler(s, h.gateway, h.events)
	h.verify.now = clock
	h.sync = NewSyncStatusHandler(s)
	h.sync.now = clock
	h.cod = NewCODHandler(s, h.events)
	h.cod.now = clock
	h.update = NewUpdateStatusHandler(s, h.events)
	h.update.now = clock
	return h
}

func (h *harness) order(t *testing.T, code string, method orderdomain.PaymentMethod, total int64) *orderdomain.Order {
	t.Helper()
	order := &orderdomain.Order{
		Code:          code,
		CustomerID:    1,
		Status:        orderdomain.StatusPending,
		GrandTotal:    decimal.NewFromInt(total),
		PaymentMethod: method,
		PaymentStatus: orderdomain.PaymentUnpaid,
		PlacedAt:      fixedNow,
	}
	require.NoError(t, h.store.Orders().Create(context.Background(), order))
	return order
}

func (h *harness) payment(t *testing.T, orderID uint, method orderdomain.PaymentMethod, status domain.Status) *domain.Payment {
	t.Helper()
	payment := &domain.Payment{OrderID: orderID, PaymentMethod: method, Amount: decimal.NewFromInt(180000), Status: status}
	require.NoError(t, h.store.Payments().Create(context.Background(), payment))
	return payment
}

func (h *harness) reload(t *testing.T, id uint) *orderdomain.Order {
	t.Helper()
	order, err := h.store.Orders().FindByID(context.Background(), id)
	require.NoError(t, err)
	return order
}

func (h *harness) callback(code, amount, responseCode, transactionNo string) vnpay.Params {
	return h.gateway.SignParams(vnpay.Params{
		"vnp_TmnCode":       "SHOPTEST",
		"vnp_TxnRef":        code,
		"vnp_Amount":        amount,
		"vnp_ResponseCode":  responseCode,
		"vnp_TransactionNo": transactionNo,
		"vnp_BankCode":      "NCB",
		"vnp_BankTranNo":    "VNP" + transactionNo,
		"vnp_CardType":      "ATM",
		"vnp_PayDate":       "20260309170500",
		"vnp_OrderInfo":     "Thanh toan don hang: " + code,
	})
}

func (h *harness) ipn(t *testing.T, params vnpay.Params) *VerifyResult {
	t.Helper()
	result, err := h.verify.Handle(context.Background(), VerifyAndRecordCommand{Params: params, Entry: domain.TypeIPN, ClientIP: "203.0.113.9"})
	require.NoError(t, err)
	return result
}

func TestVerifyAndRecord_NotificationIsIdempotent(t *testing.T) {
	h := newHarness(t)
	order := h.order(t, "ORD-20260309100000-AAAAAA", orderdomain.MethodVNPay, 180000)
	params := h.callback(order.Code, "18000000", "00", "14000001")

	first := h.ipn(t, params)
	assert.Equal(t, OutcomeApproved, first.Outcome)
	assert.Equal(t, Ack{RspCode: "00", Message: "Confirm Success"}, first.Outcome.Ack())

	second := h.ipn(t, params)
	assert.Equal(t, OutcomeAlreadyConfirmed, second.Outcome)
	assert.Equal(t, "02", second.Outcome.Ack().RspCode)

	got := h.reload(t, order.ID)
	assert.Equal(t, orderdomain.PaymentPaid, got.PaymentStatus)
	assert.Equal(t, orderdomain.StatusConfirmed, got.Status)
	assert.Equal(t, "14000001", got.PaymentTransactionID)
	require.NotNil(t, got.PaymentTime)

	txns := h.store.Transactions()
	require.Len(t, txns, 2)
	for _, txn := range txns {
		assert.Equal(t, domain.TypeIPN, txn.TransactionType)
		assert.Equal(t, domain.TxSuccess, txn.Status)
		assert.Equal(t, "203.0.113.9", txn.IPAddress)
		assert.True(t, decimal.NewFromInt(180000).Equal(txn.Amount))
	}
	var raw map[string]string
	require.NoError(t, json.Unmarshal([]byte(txns[0].RawData), &raw))
	assert.Equal(t, params[vnpay.ParamSecureHash], raw[vnpay.ParamSecureHash])

	payments, err := h.store.Payments().FindByOrderID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, domain.StatusCompleted, payments[0].Status)
	assert.Equal(t, "14000001", payments[0].TransactionID)

	events := h.events.Payments()
	require.Len(t, events, 1)
	assert.Equal(t, string(domain.StatusCompleted), events[0].Status)
	assert.Equal(t, order.Code, events[0].OrderCode)
}

func TestVerifyAndRecord_ReturnCallbackAfterNotification(t *testing.T) {
	h := newHarness(t)
	order := h.order(t, "ORD-20260309100000-BBBBBB", orderdomain.MethodVNPay, 180000)
	params := h.callback(order.Code, "18000000", "00", "14000002")
	h.ipn(t, params)

	result, err := h.verify.Handle(context.Background(), VerifyAndRecordCommand{Params: params, Entry: domain.TypeReturnCallback})
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyConfirmed, result.Outcome)

	txns := h.store.Transactions()
	require.Len(t, txns, 2)
	assert.Equal(t, domain.TypeReturnCallback, txns[1].TransactionType)
}

func TestVerifyAndRecord_RejectsBeforeAnyWrite(t *testing.T) {
	h := newHarness(t)
	order := h.order(t, "ORD-20260309100000-CCCCCC", orderdomain.MethodVNPay, 180000)

	tampered := h.callback(order.Code, "18000000", "00", "14000003")
	tampered["vnp_BankCode"] = "NCC"

	unsigned := h.callback(order.Code, "18000000", "00", "14000003")
	delete(unsigned, vnpay.ParamSecureHash)

	cases := []struct {
		name   string
		params vnpay.Params
		want   Outcome
		ack    string
	}{
		{"tampered value", tampered, OutcomeInvalidSignature, "97"},
		{"missing signature", unsigned, OutcomeInvalidSignature, "97"},
		{"unknown order", h.callback("ORD-UNKNOWN", "18000000", "00", "14000003"), OutcomeOrderNotFound, "01"},
		{"amount mismatch", h.callback(order.Code, "100", "00", "14000003"), OutcomeInvalidAmount, "04"},
		{"amount format", h.callback(order.Code, "12a", "00", "14000003"), OutcomeInvalidAmountFormat, "99"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := h.ipn(t, tc.params)
			assert.Equal(t, tc.want, result.Outcome)
			assert.Equal(t, tc.ack, result.Outcome.Ack().RspCode)
		})
	}

	assert.Empty(t, h.store.Transactions())
	got := h.reload(t, order.ID)
	assert.Equal(t, orderdomain.PaymentUnpaid, got.PaymentStatus)
	assert.Equal(t, orderdomain.StatusPending, got.Status)
	assert.Empty(t, h.events.Payments())
}

func TestVerifyAndRecord_ReturnCallbackSkipsAmountCheck(t *testing.T) {
	h := newHarness(t)
	order := h.order(t, "ORD-20260309100000-DDDDDD", orderdomain.MethodVNPay, 180000)

	result, err := h.verify.Handle(context.Background(), VerifyAndRecordCommand{
		Params: h.callback(order.Code, "100", "00", "14000004"),
		Entry:  domain.TypeReturnCallback,
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeApproved, result.Outcome)
}

func TestVerifyAndRecord_DeclinedThenRetried(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	order := h.order(t, "ORD-20260309100000-EEEEEE", orderdomain.MethodVNPay, 180000)

	declined := h.ipn(t, h.callback(order.Code, "18000000", "24", "14000005"))
	assert.Equal(t, OutcomeDeclined, declined.Outcome)
	assert.Equal(t, "00", declined.Outcome.Ack().RspCode)

	got := h.reload(t, order.ID)
	assert.Equal(t, orderdomain.PaymentFailed, got.PaymentStatus)
	assert.Equal(t, orderdomain.StatusPending, got.Status, "a failed attempt does not cancel the order")
	assert.Equal(t, domain.TxCancelled, h.store.Transactions()[0].Status)

	approved := h.ipn(t, h.callback(order.Code, "18000000", "00", "14000006"))
	assert.Equal(t, OutcomeApproved, approved.Outcome)

	payments, err := h.store.Payments().FindByOrderID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, domain.StatusCompleted, payments[0].Status)
	assert.Equal(t, domain.StatusFailed, payments[1].Status)

	summary, err := h.sync.HandleAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total)
	assert.Zero(t, summary.Synced)
	assert.Equal(t, 2, summary.Skipped)
	assert.Equal(t, orderdomain.PaymentPaid, h.reload(t, order.ID).PaymentStatus)
}

func TestVerifyAndRecord_DeclinedWithoutTransactionNumber(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	first := h.order(t, "ORD-20260309100000-FFFFFF", orderdomain.MethodVNPay, 180000)
	second := h.order(t, "ORD-20260309100000-GGGGGG", orderdomain.MethodVNPay, 180000)

	// Abandoned attempts come back with transaction number 0 for every order.
	for _, order := range []*orderdomain.Order{first, second} {
		result := h.ipn(t, h.callback(order.Code, "18000000", "24", "0"))
		assert.Equal(t, OutcomeDeclined, result.Outcome)
		require.NotNil(t, result.Payment, order.Code)

		payments, err := h.store.Payments().FindByOrderID(ctx, order.ID)
		require.NoError(t, err)
		require.Len(t, payments, 1, order.Code)
		assert.Equal(t, domain.StatusFailed, payments[0].Status)
		assert.Empty(t, payments[0].TransactionID)
		assert.Equal(t, orderdomain.PaymentFailed, h.reload(t, order.ID).PaymentStatus)
	}

	events := h.events.Payments()
	require.Len(t, events, 2)
	assert.Equal(t, first.ID, events[0].OrderID)
	assert.Equal(t, second.ID, events[1].OrderID)

	summary, err := h.sync.HandleAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, SyncSummary{Total: 2, Skipped: 2}, *summary)
}

func TestVerifyAndRecord_SameTransactionNumberOnAnotherOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	first := h.order(t, "ORD-20260309100000-HHHHHH", orderdomain.MethodVNPay, 180000)
	second := h.order(t, "ORD-20260309100000-IIIIII", orderdomain.MethodVNPay, 180000)

	h.ipn(t, h.callback(first.Code, "18000000", "24", "14000010"))
	h.ipn(t, h.callback(second.Code, "18000000", "24", "14000010"))

	for _, order := range []*orderdomain.Order{first, second} {
		payments, err := h.store.Payments().FindByOrderID(ctx, order.ID)
		require.NoError(t, err)
		require.Len(t, payments, 1, order.Code)
		assert.Equal(t, "14000010", payments[0].TransactionID)
	}
}

func TestSyncStatus_RepairsDriftOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	paid := h.order(t, "ORD-A", orderdomain.MethodVNPay, 180000)
	h.payment(t, paid.ID, orderdomain.MethodVNPay, domain.StatusCompleted)

	failed := h.order(t, "ORD-B", orderdomain.MethodVNPay, 180000)
	h.payment(t, failed.ID, orderdomain.MethodVNPay, domain.StatusFailed)

	inSync := h.order(t, "ORD-C", orderdomain.MethodCOD, 180000)
	h.payment(t, inSync.ID, orderdomain.MethodCOD, domain.StatusPending)

	switched := h.order(t, "ORD-D", orderdomain.MethodCOD, 180000)
	h.payment(t, switched.ID, orderdomain.MethodVNPay, domain.StatusCancelled)

	h.payment(t, 9999, orderdomain.MethodVNPay, domain.StatusCompleted)

	first, err := h.sync.HandleAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, SyncSummary{Total: 5, Synced: 2, Skipped: 2, Errors: 1}, *first)

	got := h.reload(t, paid.ID)
	assert.Equal(t, orderdomain.PaymentPaid, got.PaymentStatus)
	require.NotNil(t, got.PaymentTime)
	assert.Equal(t, orderdomain.PaymentFailed, h.reload(t, failed.ID).PaymentStatus)
	assert.Equal(t, orderdomain.PaymentUnpaid, h.reload(t, switched.ID).PaymentStatus)

	second, err := h.sync.HandleAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, second.Synced)
	assert.Equal(t, 1, second.Errors)
}

func TestSyncStatus_HonoursCancelledContext(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.sync.HandleAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSyncStatus_HandleOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	order := h.order(t, "ORD-E", orderdomain.MethodVNPay, 180000)
	h.payment(t, order.ID, orderdomain.MethodVNPay, domain.StatusRefunded)

	changed, err := h.sync.HandleOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, orderdomain.PaymentRefunded, h.reload(t, order.ID).PaymentStatus)

	changed, err = h.sync.HandleOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = h.sync.HandleOrder(ctx, 4242)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestCOD_ConfirmAndFail(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	order := h.order(t, "ORD-F", orderdomain.MethodCOD, 180000)
	payment := h.payment(t, order.ID, orderdomain.MethodCOD, domain.StatusPending)

	_, err := h.cod.Fail(ctx, FailCODCommand{PaymentID: payment.ID})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	confirmed, err := h.cod.Confirm(ctx, ConfirmCODCommand{PaymentID: payment.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, confirmed.Status)
	assert.True(t, strings.HasPrefix(confirmed.TransactionID, "COD-"))
	assert.Len(t, confirmed.TransactionID, 16)
	assert.Equal(t, orderdomain.PaymentPaid, h.reload(t, order.ID).PaymentStatus)

	txns := h.store.Transactions()
	require.Len(t, txns, 1)
	assert.Equal(t, domain.TypeCODConfirm, txns[0].TransactionType)
	assert.Equal(t, confirmed.TransactionID, txns[0].TransactionID)

	_, err = h.cod.Confirm(ctx, ConfirmCODCommand{PaymentID: payment.ID})
	assert.True(t, apperror.Is(err, apperror.KindInvalidState))
	assert.Len(t, h.store.Transactions(), 1)

	other := h.order(t, "ORD-G", orderdomain.MethodCOD, 180000)
	refused := h.payment(t, other.ID, orderdomain.MethodCOD, domain.StatusPending)
	failed, err := h.cod.Fail(ctx, FailCODCommand{PaymentID: refused.ID, Reason: "Customer refused the parcel"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, failed.Status)
	assert.Equal(t, orderdomain.PaymentFailed, h.reload(t, other.ID).PaymentStatus)

	gateway := h.order(t, "ORD-H", orderdomain.MethodVNPay, 180000)
	online := h.payment(t, gateway.ID, orderdomain.MethodVNPay, domain.StatusPending)
	_, err = h.cod.Confirm(ctx, ConfirmCODCommand{PaymentID: online.ID})
	assert.True(t, apperror.Is(err, apperror.KindInvalidState))
}

func TestUpdateStatus_CancelledIsNotPropagated(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	order := h.order(t, "ORD-I", orderdomain.MethodVNPay, 180000)
	payment := h.payment(t, order.ID, orderdomain.MethodVNPay, domain.StatusPending)

	_, err := h.update.Handle(ctx, UpdateStatusCommand{PaymentID: payment.ID, Status: domain.StatusRefunded})
	assert.True(t, apperror.Is(err, apperror.KindInvalidState))

	cancelled, err := h.update.Handle(ctx, UpdateStatusCommand{PaymentID: payment.ID, Status: domain.StatusCancelled})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	assert.Equal(t, orderdomain.PaymentUnpaid, h.reload(t, order.ID).PaymentStatus)

	second := h.payment(t, order.ID, orderdomain.MethodVNPay, domain.StatusPending)
	_, err = h.update.Handle(ctx, UpdateStatusCommand{PaymentID: second.ID, Status: domain.StatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, orderdomain.PaymentPaid, h.reload(t, order.ID).PaymentStatus)

	refunded, err := h.update.Handle(ctx, UpdateStatusCommand{PaymentID: second.ID, Status: domain.StatusRefunded})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRefunded, refunded.Status)
	assert.Equal(t, orderdomain.PaymentRefunded, h.reload(t, order.ID).PaymentStatus)

	events := h.events.Payments()
	require.Len(t, events, 3)
	assert.Equal(t, "ADMIN", events[2].Source)
	assert.Equal(t, string(domain.StatusCompleted), events[2].PreviousStatus)
}

func TestCreatePaymentURL(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	handler := NewCreatePaymentURLHandler(h.store.Orders(), h.gateway)
	order := h.order(t, "ORD-J", orderdomain.MethodVNPay, 180000)

	raw, err := handler.Handle(ctx, CreatePaymentURLCommand{OrderID: order.ID, CustomerID: 1, ClientIP: "203.0.113.9"})
	require.NoError(t, err)
	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	q := parsed.Query()
	assert.Equal(t, "ORD-J", q.Get("vnp_TxnRef"))
	assert.Equal(t, "18000000", q.Get("vnp_Amount"))
	assert.Equal(t, "203.0.113.9", q.Get("vnp_IpAddr"))
	assert.True(t, h.gateway.Verify(vnpay.ParamsFromValues(q)))

	_, err = handler.Handle(ctx, CreatePaymentURLCommand{OrderID: order.ID, CustomerID: 2})
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	cod := h.order(t, "ORD-K", orderdomain.MethodCOD, 180000)
	_, err = handler.Handle(ctx, CreatePaymentURLCommand{OrderID: cod.ID, CustomerID: 1})
	assert.True(t, apperror.Is(err, apperror.KindInvalidState))

	h.ipn(t, h.callback(order.Code, "18000000", "00", "14000007"))
	_, err = handler.Handle(ctx, CreatePaymentURLCommand{OrderID: order.ID, CustomerID: 1})
	assert.True(t, apperror.Is(err, apperror.KindInvalidState))
}
