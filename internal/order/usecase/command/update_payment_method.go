package command

import (
	"context"
	"time"

	"github.com/tair/fashion-checkout/internal/order/domain"
	paymentdomain "github.com/tair/fashion-checkout/internal/payment/domain"
	"github.com/tair/fashion-checkout/internal/store"
	"github.com/tair/fashion-checkout/pkg/apperror"
	"github.com/tair/fashion-checkout/pkg/logger"
)

// UpdatePaymentMethodCommand switches how an unpaid order will be paid.
type UpdatePaymentMethodCommand struct {
	OrderID       uint
	CustomerID    uint
	PaymentMethod domain.PaymentMethod
}

// UpdatePaymentMethodHandler handles update payment method command
type UpdatePaymentMethodHandler struct {
	store store.Store
	now   func() time.Time
}

// NewUpdatePaymentMethodHandler creates a new update payment method handler
func NewUpdatePaymentMethodHandler(s store.Store) *UpdatePaymentMethodHandler {
	return &UpdatePaymentMethodHandler{store: s, now: time.Now}
}

// Handle cancels every pending payment attempt of the order and records the
// new method. Switching to COD opens a fresh pending COD payment. Cancelled
// attempts leave the order's payment status untouched.
func (h *UpdatePaymentMethodHandler) Handle(ctx context.Context, cmd UpdatePaymentMethodCommand) (*domain.Order, error) {
	if !cmd.PaymentMethod.IsValid() {
		return nil, apperror.Validation("invalid payment method: %s", cmd.PaymentMethod).WithField("field", "payment_method")
	}

	var (
		order     *domain.Order
		cancelled int
	)
	err := h.store.Transaction(ctx, func(tx store.Repositories) error {
		var err error
		order, err = tx.Orders().FindByIDForUpdate(ctx, cmd.OrderID)
		if err != nil {
			return err
		}
		if !order.IsOwnedBy(cmd.CustomerID) {
			return apperror.Forbidden("order %d does not belong to you", cmd.OrderID)
		}
		if order.Status != domain.StatusPending && order.Status != domain.StatusConfirmed {
			return apperror.InvalidState("payment method of a %s order cannot change", order.Status)
		}
		if order.IsPaid() {
			return apperror.InvalidState("order %s is already paid", order.Code)
		}

		now := h.now()
		cancelled, err = movePayments(ctx, tx, order.ID, paymentdomain.StatusPending, paymentdomain.StatusCancelled, now)
		if err != nil {
			return err
		}

		order.PaymentMethod = cmd.PaymentMethod
		if err := tx.Orders().Update(ctx, order); err != nil {
			return err
		}

		if cmd.PaymentMethod == domain.MethodCOD {
			return tx.Payments().Create(ctx, &paymentdomain.Payment{
				OrderID:       order.ID,
				PaymentMethod: domain.MethodCOD,
				Amount:        order.GrandTotal,
				Status:        paymentdomain.StatusPending,
				PaymentInfo:   "Cash on delivery",
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx).
		Str("order_code", order.Code).
		Str("payment_method", string(order.PaymentMethod)).
		Int("cancelled_payments", cancelled).
		Msg("Order payment method updated")
	return order, nil
}
