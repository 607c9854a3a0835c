package query

import (
	"context"
	"fmt"

	"github.com/tair/fashion-checkout/internal/payment/domain"
	"github.com/tair/fashion-checkout/pkg/apperror"
)

// PaymentList is one page of payments.
type PaymentList struct {
	Payments []domain.Payment `json:"payments"`
	Total    int64            `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

// ListPaymentsQuery represents the query to list payments
type ListPaymentsQuery struct {
	Status domain.Status
	Limit  int
	Offset int
}

// ListPaymentsHandler handles list payments query
type ListPaymentsHandler struct {
	repo domain.PaymentRepository
}

// NewListPaymentsHandler creates a new list payments handler
func NewListPaymentsHandler(repo domain.PaymentRepository) *ListPaymentsHandler {
	return &ListPaymentsHandler{repo: repo}
}

// Handle executes the list payments query
func (h *ListPaymentsHandler) Handle(ctx context.Context, query ListPaymentsQuery) (*PaymentList, error) {
	if query.Status != "" && !query.Status.IsValid() {
		return nil, apperror.Validation("invalid status: %s", query.Status)
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

	payments, total, err := h.repo.FindAll(ctx, query.Status, query.Limit, query.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	return &PaymentList{Payments: payments, Total: total, Limit: query.Limit, Offset: query.Offset}, nil
}
