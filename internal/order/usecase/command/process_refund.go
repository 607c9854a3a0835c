package command

import (
	"context"
	"strings"
	"time"

	"github.com/tair/fashion-checkout/internal/order/domain"
	"github.com/tair/fashion-checkout/internal/store"
	"github.com/tair/fashion-checkout/kafka"
	"github.com/tair/fashion-checkout/pkg/apperror"
	"github.com/tair/fashion-checkout/pkg/logger"
)

// ProcessRefundCommand refunds a paid order.
type ProcessRefundCommand struct {
	OrderID uint
	Reason  string
	ActorID uint
}

// ProcessRefundHandler handles process refund command
type ProcessRefundHandler struct {
	store     store.Store
	publisher kafka.EventPublisher
	now       func() time.Time
}

// NewProcessRefundHandler creates a new process refund handler
func NewProcessRefundHandler(s store.Store, publisher kafka.EventPublisher) *ProcessRefundHandler {
	return &ProcessRefundHandler{store: s, publisher: publisher, now: time.Now}
}

// Handle refunds the order, its completed payments and its stock.
func (h *ProcessRefundHandler) Handle(ctx context.Context, cmd ProcessRefundCommand) (*domain.Order, error) {
	cmd.Reason = strings.TrimSpace(cmd.Reason)

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
		if !order.IsPaid() {
			return apperror.InvalidState("order %s is not paid", order.Code)
		}
		if !domain.CanTransition(order.Status, domain.StatusRefunded) {
			return apperror.InvalidState("order %s is %s and cannot be refunded", order.Code, order.Status)
		}

		now := h.now()
		note := "Refund"
		if cmd.Reason != "" {
			note = "Refund: " + cmd.Reason
		}
		if err := restoreStock(ctx, tx, order, actor(cmd.ActorID), note, now); err != nil {
			return err
		}
		if err := closePayments(ctx, tx, order.ID, now); err != nil {
			return err
		}
		previous = transition(order, domain.StatusRefunded)
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
		Str("grand_total", order.GrandTotal.String()).
		Str("reason", cmd.Reason).
		Msg("Order refunded")
	publishOrder(ctx, h.publisher, kafka.EventTypeOrderStatusChanged, order, previous)
	return order, nil
}
