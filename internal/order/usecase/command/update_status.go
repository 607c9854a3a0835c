package command

import (
	"context"
	"time"

	"github.com/tair/fashion-checkout/internal/order/domain"
	"github.com/tair/fashion-checkout/internal/store"
	"github.com/tair/fashion-checkout/kafka"
	"github.com/tair/fashion-checkout/pkg/apperror"
	"github.com/tair/fashion-checkout/pkg/logger"
)

// UpdateStatusCommand is an administrative order status change.
type UpdateStatusCommand struct {
	OrderID uint
	Status  domain.Status
	ActorID uint
}

// UpdateStatusHandler handles update order status command
type UpdateStatusHandler struct {
	store     store.Store
	publisher kafka.EventPublisher
	now       func() time.Time
}

// NewUpdateStatusHandler creates a new update status handler
func NewUpdateStatusHandler(s store.Store, publisher kafka.EventPublisher) *UpdateStatusHandler {
	return &UpdateStatusHandler{store: s, publisher: publisher, now: time.Now}
}

// Handle moves the order along the status machine and applies the payment
// status cross table. Entering CANCELLED or REFUNDED restores stock and the
// points spent; COMPLETED credits the points earned.
func (h *UpdateStatusHandler) Handle(ctx context.Context, cmd UpdateStatusCommand) (*domain.Order, error) {
	if cmd.OrderID == 0 {
		return nil, apperror.Validation("order_id is required")
	}
	if !cmd.Status.IsValid() {
		return nil, apperror.Validation("invalid order status: %s", cmd.Status).WithField("field", "status")
	}

	var (
		order    *domain.Order
		previous domain.Status
	)
	err := h.store.Transaction(ctx, func(tx store.Repositories) error {
		var err error
		order, err = tx.Orders().FindByIDForUpdate(ctx, cmd.OrderID)
		if err != nil {
			return err
		}
		if !domain.CanTransition(order.Status, cmd.Status) {
			return apperror.InvalidState("cannot move order %s from %s to %s", order.Code, order.Status, cmd.Status)
		}

		now := h.now()
		if cmd.Status.RestoresStock() {
			if err := restoreStock(ctx, tx, order, actor(cmd.ActorID), "Order "+string(cmd.Status), now); err != nil {
				return err
			}
			if err := closePayments(ctx, tx, order.ID, now); err != nil {
				return err
			}
		}

		wasPaid := order.IsPaid()
		previous = transition(order, cmd.Status)
		if cmd.Status == domain.StatusCompleted {
			if !wasPaid {
				order.PaymentTime = &now
			}
			if err := settleCompletion(ctx, tx, order, now); err != nil {
				return err
			}
		}
		if err := settleLoyalty(ctx, tx, order); err != nil {
			return err
		}
		return tx.Orders().Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx).
		Str("order_code", order.Code).
		Str("from", string(previous)).
		Str("to", string(order.Status)).
		Str("payment_status", string(order.PaymentStatus)).
		Msg("Order status updated")

	eventType := kafka.EventTypeOrderStatusChanged
	if order.Status == domain.StatusCancelled {
		eventType = kafka.EventTypeOrderCancelled
	}
	publishOrder(ctx, h.publisher, eventType, order, previous)
	return order, nil
}

func actor(id uint) *uint {
	if id == 0 {
		return nil
	}
	return &id
}
