package query

import (
	"context"

	orderdomain "github.com/tair/fashion-checkout/internal/order/domain"
	"github.com/tair/fashion-checkout/internal/payment/domain"
	"github.com/tair/fashion-checkout/pkg/apperror"
)

// ListTransactionsQuery lists the gateway log of one order.
type ListTransactionsQuery struct {
	OrderID    uint
	CustomerID uint
	IsAdmin    bool
}

type ListTransactionsHandler struct {
	repo   domain.PaymentRepository
	orders orderdomain.OrderRepository
}

func NewListTransactionsHandler(repo domain.PaymentRepository, orders orderdomain.OrderRepository) *ListTransactionsHandler {
	return &ListTransactionsHandler{repo: repo, orders: orders}
}

func (h *ListTransactionsHandler) Handle(ctx context.Context, query ListTransactionsQuery) ([]domain.PaymentTransaction, error) {
	if query.OrderID == 0 {
		return nil, apperror.Validation("order_id is required")
	}

	order, err := h.orders.FindByID(ctx, query.OrderID)
	if err != nil {
		return nil, err
	}
	if !query.IsAdmin && !order.IsOwnedBy(query.CustomerID) {
		return nil, apperror.Forbidden("order %d does not belong to you", query.OrderID)
	}

	return h.repo.FindTransactionsByOrderID(ctx, order.ID)
}
