package query

import (
	"context"
	"fmt"

	"github.com/tair/fashion-checkout/internal/payment/domain"
	"github.com/tair/fashion-checkout/pkg/apperror"
)

// GetMyPaymentsQuery represents the query to get a customer's own payments
type GetMyPaymentsQuery struct {
	CustomerID uint
	Limit      int
	Offset     int
}

// GetMyPaymentsHandler handles get my payments query
type GetMyPaymentsHandler struct {
	repo domain.PaymentRepository
}

// NewGetMyPaymentsHandler creates a new get my payments handler
func NewGetMyPaymentsHandler(repo domain.PaymentRepository) *GetMyPaymentsHandler {
	return &GetMyPaymentsHandler{repo: repo}
}

// Handle executes the get my payments query
func (h *GetMyPaymentsHandler) Handle(ctx context.Context, query GetMyPaymentsQuery) (*PaymentList, error) {
	if query.CustomerID == 0 {
		return nil, apperror.Validation("customer id is required")
	}

	if query.Limit <= 0 {
		query.Limit = 10
	}

	if query.Limit > 100 {
		query.Limit = 100
	}

	if query.Offset < 0 {
		query.Offset = 0
	}

	payments, total, err := h.repo.FindByCustomerID(ctx, query.CustomerID, query.Limit, query.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer payments: %w", err)
	}

	return &PaymentList{Payments: payments, Total: total, Limit: query.Limit, Offset: query.Offset}, nil
}
