package command

import (
	"context"
	"time"

	orderdomain "github.com/tair/fashion-checkout/internal/order/domain"
	"github.com/tair/fashion-checkout/internal/payment/domain"
	"github.com/tair/fashion-checkout/internal/store"
	"github.com/tair/fashion-checkout/kafka"
	"github.com/tair/fashion-checkout/pkg/logger"
	"github.com/tair/fashion-checkout/pkg/metrics"
)

// propagate makes the order's payment status agree with payment. It reports
// whether the order row changed. CANCELLED payments never touch the order.
func propagate(ctx context.Context, tx store.Repositories, payment *domain.Payment, now time.Time) (bool, error) {
	target, ok := payment.Status.OrderPaymentStatus()
	if !ok {
		return false, nil
	}

	order, err := tx.Orders().FindByIDForUpdate(ctx, payment.OrderID)
	if err != nil {
		return false, err
	}
	if order.PaymentStatus == target {
		return false, nil
	}

	previous := order.PaymentStatus
	order.PaymentStatus = target
	if target == orderdomain.PaymentPaid && order.PaymentTime == nil {
		paidAt := now
		if payment.CompletedAt != nil {
			paidAt = *payment.CompletedAt
		}
		order.PaymentTime = &paidAt
	}
	if err := tx.Orders().Update(ctx, order); err != nil {
		return false, err
	}

	logger.Info(ctx).
		Str("order_code", order.Code).
		Uint("payment_id", payment.ID).
		Str("from", string(previous)).
		Str("to", string(target)).
		Msg("Order payment status synchronized")
	return true, nil
}

// publishPayment emits payment.status_changed. Failures are logged only.
func publishPayment(ctx context.Context, publisher kafka.EventPublisher, payment *domain.Payment, orderCode string, previous domain.Status, source string) {
	metrics.PaymentStatusChanges.WithLabelValues(string(payment.Status)).Inc()
	err := publisher.PublishPaymentEvent(ctx, kafka.PaymentEvent{
		EventType:      kafka.EventTypePaymentStatusChanged,
		PaymentID:      payment.ID,
		OrderID:        payment.OrderID,
		OrderCode:      orderCode,
		Status:         string(payment.Status),
		PreviousStatus: string(previous),
		Amount:         payment.Amount,
		TransactionID:  payment.TransactionID,
		Source:         source,
	})
	if err != nil {
		logger.Warn(ctx).
			Err(err).
			Uint("payment_id", payment.ID).
			Msg("Failed to publish payment event")
	}
}
