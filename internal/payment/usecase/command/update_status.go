package command

import (
	"context"
	"time"

	"github.com/tair/fashion-checkout/internal/payment/domain"
	"github.com/tair/fashion-checkout/internal/store"
	"github.com/tair/fashion-checkout/kafka"
	"github.com/tair/fashion-checkout/pkg/apperror"
	"github.com/tair/fashion-checkout/pkg/logger"
)

// UpdateStatusCommand represents the command to update payment status
type UpdateStatusCommand struct {
	PaymentID uint
	Status    domain.Status
}

// UpdateStatusHandler moves a payment along its state machine and carries
// the result over to the order.
type UpdateStatusHandler struct {
	store     store.Store
	publisher kafka.EventPublisher
	now       func() time.Time
}

// NewUpdateStatusHandler creates a new update status handler
func NewUpdateStatusHandler(s store.Store, publisher kafka.EventPublisher) *UpdateStatusHandler {
	return &UpdateStatusHandler{store: s, publisher: publisher, now: time.Now}
}

// Handle executes the update status command
func (h *UpdateStatusHandler) Handle(ctx context.Context, cmd UpdateStatusCommand) (*domain.Payment, error) {
	if cmd.PaymentID == 0 {
		return nil, apperror.Validation("payment_id is required")
	}
	if !cmd.Status.IsValid() {
		return nil, apperror.Validation("invalid status: %s", cmd.Status)
	}

	var (
		payment   *domain.Payment
		previous  domain.Status
		orderCode string
	)
	err := h.store.Transaction(ctx, func(tx store.Repositories) error {
		var err error
		payment, err = tx.Payments().FindByIDForUpdate(ctx, cmd.PaymentID)
		if err != nil {
			return err
		}
		previous = payment.Status
		if !domain.CanTransition(previous, cmd.Status) {
			return apperror.InvalidState("payment %d cannot move from %s to %s", payment.ID, previous, cmd.Status)
		}

		payment.Status = cmd.Status
		if cmd.Status == domain.StatusCompleted {
			now := h.now()
			payment.CompletedAt = &now
		}
		if err := tx.Payments().Update(ctx, payment); err != nil {
			return err
		}

		order, err := tx.Orders().FindByID(ctx, payment.OrderID)
		if err != nil {
			return err
		}
		orderCode = order.Code
		_, err = propagate(ctx, tx, payment, h.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx).
		Uint("payment_id", payment.ID).
		Str("order_code", orderCode).
		Str("from", string(previous)).
		Str("to", string(payment.Status)).
		Msg("Payment status updated")
	publishPayment(ctx, h.publisher, payment, orderCode, previous, "ADMIN")
	return payment, nil
}
