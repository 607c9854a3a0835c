package query

import (
	"context"

	orderdomain "github.com/tair/fashion-checkout/internal/order/domain"
	"github.com/tair/fashion-checkout/internal/payment/domain"
	"github.com/tair/fashion-checkout/pkg/apperror"
)

// GetPaymentQuery represents the query to get a payment
type GetPaymentQuery struct {
	ID         uint
	CustomerID uint
	IsAdmin    bool
}

// GetPaymentHandler handles get payment query
type GetPaymentHandler struct {
	repo   domain.PaymentRepository
	orders orderdomain.OrderRepository
}

// NewGetPaymentHandler creates a new get payment handler
func NewGetPaymentHandler(repo domain.PaymentRepository, orders orderdomain.OrderRepository) *GetPaymentHandler {
	return &GetPaymentHandler{repo: repo, orders: orders}
}

// Handle executes the get payment query. Customers only see payments of
// their own orders.
func (h *GetPaymentHandler) Handle(ctx context.Context, query GetPaymentQuery) (*domain.Payment, error) {
	if query.ID == 0 {
		return nil, apperror.Validation("id is required")
	}

	payment, err := h.repo.FindByID(ctx, query.ID)
	if err != nil {
		return nil, err
	}
	if query.IsAdmin {
		return payment, nil
	}

	order, err := h.orders.FindByID(ctx, payment.OrderID)
	if err != nil {
		return nil, err
	}
	if !order.IsOwnedBy(query.CustomerID) {
		return nil, apperror.Forbidden("payment %d does not belong to you", query.ID)
	}
	return payment, nil
}
