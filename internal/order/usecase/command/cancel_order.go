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

// CancelOrderCommand is a customer cancelling their own order.
type CancelOrderCommand struct {
	OrderID    uint
	CustomerID uint
}

// CancelOrderHandler handles cancel order command
type CancelOrderHandler struct {
	store     store.Store
	publisher kafka.EventPublisher
	now       func() time.Time
}

// NewCancelOrderHandler creates a new cancel order handler
func NewCancelOrderHandler(s store.Store, publisher kafka.EventPublisher) *CancelOrderHandler {
	return &CancelOrderHandler{store: s, publisher: publisher, now: time.Now}
}

// Handle cancels a PENDING order owned by the requester and restores its
// stock. Any other status is rejected, never ignored.
func (h *CancelOrderHandler) Handle(ctx context.Context, cmd CancelOrderCommand) (*domain.Order, error) {
	if cmd.OrderID == 0 {
		return nil, apperror.Validation("order_id is required")
	}

	var order *domain.Order
	err := h.store.Transaction(ctx, func(tx store.Repositories) error {
		var err error
		order, err = tx.Orders().FindByIDForUpdate(ctx, cmd.OrderID)
		if err != nil {
			return err
		}
		if !order.IsOwnedBy(cmd.CustomerID) {
			return apperror.Forbidden("order %d does not belong to you", cmd.OrderID)
		}
		if order.Status != domain.StatusPending {
			return apperror.InvalidState("order %s is %s and can no longer be cancelled", order.Code, order.Status)
		}

		now := h.now()
		if err := restoreStock(ctx, tx, order, &cmd.CustomerID, "Cancelled by customer", now); err != nil {
			return err
		}
		transition(order, domain.StatusCancelled)
		if err := settleLoyalty(ctx, tx, order); err != nil {
			return err
		}
		if err := tx.Orders().Update(ctx, order); err != nil {
			return err
		}
		return closePayments(ctx, tx, order.ID, now)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx).
		Str("order_code", order.Code).
		Uint("customer_id", cmd.CustomerID).
		Msg("Order cancelled by customer")
	publishOrder(ctx, h.publisher, kafka.EventTypeOrderCancelled, order, domain.StatusPending)
	return order, nil
}
