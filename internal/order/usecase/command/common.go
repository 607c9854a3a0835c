package command

import (
	"context"
	"time"

	inventorydomain "github.com/tair/fashion-checkout/internal/inventory/domain"
	"github.com/tair/fashion-checkout/internal/inventory/ledger"
	"github.com/tair/fashion-checkout/internal/order/domain"
	paymentdomain "github.com/tair/fashion-checkout/internal/payment/domain"
	"github.com/tair/fashion-checkout/internal/store"
	"github.com/tair/fashion-checkout/kafka"
	"github.com/tair/fashion-checkout/pkg/apperror"
	"github.com/tair/fashion-checkout/pkg/logger"
	"github.com/tair/fashion-checkout/pkg/metrics"
)

// restoreStock puts every line of order back on the shelf with a RETURN
// movement. Deactivated variants stay deactivated.
func restoreStock(ctx context.Context, tx store.Repositories, order *domain.Order, actorID *uint, note string, now time.Time) error {
	led := ledger.New(tx.Stock())
	for _, item := range order.Items {
		if err := led.Release(ctx, item.VariantID, item.Quantity); err != nil {
			return err
		}
		led.Record(ctx, inventorydomain.InventoryMovement{
			VariantID:      item.VariantID,
			Quantity:       item.Quantity,
			Reason:         inventorydomain.ReasonReturn,
			RelatedOrderID: &order.ID,
			Note:           note,
			CreatedBy:      actorID,
			CreatedAt:      now,
		})
	}
	return nil
}

// transition moves order to status and applies the cross table to its
// payment status, returning the previous status.
func transition(order *domain.Order, to domain.Status) domain.Status {
	previous := order.Status
	order.Status = to
	order.PaymentStatus = domain.PaymentStatusOnTransition(to, order.PaymentStatus)
	return previous
}

// movePayments moves every payment of the order in status from to status
// to and returns how many rows changed.
func movePayments(ctx context.Context, tx store.Repositories, orderID uint, from, to paymentdomain.Status, now time.Time) (int, error) {
	payments, err := tx.Payments().FindByOrderID(ctx, orderID)
	if err != nil {
		return 0, err
	}
	moved := 0
	for i := range payments {
		payment := &payments[i]
		if payment.Status != from {
			continue
		}
		payment.Status = to
		if to == paymentdomain.StatusCompleted {
			payment.CompletedAt = &now
		}
		if err := tx.Payments().Update(ctx, payment); err != nil {
			return moved, err
		}
		moved++
	}
	return moved, nil
}

// closePayments settles the payment rows of an order leaving the system:
// pending attempts fail and collected money is refunded.
func closePayments(ctx context.Context, tx store.Repositories, orderID uint, now time.Time) error {
	if _, err := movePayments(ctx, tx, orderID, paymentdomain.StatusPending, paymentdomain.StatusFailed, now); err != nil {
		return err
	}
	_, err := movePayments(ctx, tx, orderID, paymentdomain.StatusCompleted, paymentdomain.StatusRefunded, now)
	return err
}

// settleCompletion makes the newest live payment of a completed order a
// COMPLETED one, so the reconciliation sweep agrees with the PAID status.
// Pending COD cash is settled in place; a failed or missing gateway
// attempt is superseded by a new completed row.
func settleCompletion(ctx context.Context, tx store.Repositories, order *domain.Order, now time.Time) error {
	if order.PaymentMethod == domain.MethodCOD {
		if _, err := movePayments(ctx, tx, order.ID, paymentdomain.StatusPending, paymentdomain.StatusCompleted, now); err != nil {
			return err
		}
	}

	payments, err := tx.Payments().FindByOrderID(ctx, order.ID)
	if err != nil {
		return err
	}
	for i := range payments {
		latest := &payments[i]
		if latest.Status == paymentdomain.StatusCancelled {
			continue
		}
		switch latest.Status {
		case paymentdomain.StatusCompleted:
			return nil
		case paymentdomain.StatusPending:
			latest.Status = paymentdomain.StatusCompleted
			latest.CompletedAt = &now
			return tx.Payments().Update(ctx, latest)
		}
		break
	}

	return tx.Payments().Create(ctx, &paymentdomain.Payment{
		OrderID:       order.ID,
		PaymentMethod: order.PaymentMethod,
		Amount:        order.GrandTotal,
		Status:        paymentdomain.StatusCompleted,
		TransactionID: order.PaymentTransactionID,
		PaymentInfo:   "Settled on order completion",
		CompletedAt:   &now,
	})
}

// settleLoyalty moves the customer's balance for the status the order just
// entered. A customer removed upstream is logged and skipped.
func settleLoyalty(ctx context.Context, tx store.Repositories, order *domain.Order) error {
	delta := order.LoyaltyDelta(order.Status)
	if delta == 0 {
		return nil
	}
	err := tx.Customers().AddLoyaltyPoints(ctx, order.CustomerID, delta)
	if apperror.Is(err, apperror.KindNotFound) {
		logger.Warn(ctx).
			Uint("customer_id", order.CustomerID).
			Str("order_code", order.Code).
			Int("points", delta).
			Msg("Loyalty points not applied, customer is gone")
		return nil
	}
	if err == nil {
		logger.Info(ctx).
			Uint("customer_id", order.CustomerID).
			Str("order_code", order.Code).
			Int("points", delta).
			Msg("Loyalty balance adjusted")
	}
	return err
}

// publishOrder emits an order event. Failures are logged only.
func publishOrder(ctx context.Context, publisher kafka.EventPublisher, eventType string, order *domain.Order, previous domain.Status) {
	if previous != "" {
		metrics.OrderTransitions.WithLabelValues(string(order.Status)).Inc()
	}
	err := publisher.PublishOrderEvent(ctx, kafka.OrderEvent{
		EventType:      eventType,
		OrderID:        order.ID,
		OrderCode:      order.Code,
		CustomerID:     order.CustomerID,
		Status:         string(order.Status),
		PreviousStatus: string(previous),
		PaymentStatus:  string(order.PaymentStatus),
		PaymentMethod:  string(order.PaymentMethod),
		GrandTotal:     order.GrandTotal,
	})
	if err != nil {
		logger.Warn(ctx).
			Err(err).
			Str("order_code", order.Code).
			Str("event_type", eventType).
			Msg("Failed to publish order event")
	}
}
