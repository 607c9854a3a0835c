package query

import (
	"context"
	"fmt"

	"github.com/tair/fashion-checkout/internal/order/domain"
	"github.com/tair/fashion-checkout/pkg/apperror"
)

// OrderList is one page of orders.
type OrderList struct {
	Orders []domain.Order `json:"orders"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// ListOrdersQuery represents the administrative listing query
type ListOrdersQuery struct {
	Status domain.Status
	Limit  int
	Offset int
}

// ListMyOrdersQuery lists the orders of one customer
type ListMyOrdersQuery struct {
	CustomerID uint
	Limit      int
	Offset     int
}

// ListOrdersHandler serves both listings.
type ListOrdersHandler struct {
	repo domain.OrderRepository
}

// NewListOrdersHandler creates a new list orders handler
func NewListOrdersHandler(repo domain.OrderRepository) *ListOrdersHandler {
	return &ListOrdersHandler{repo: repo}
}

// Handle executes the administrative listing, newest first.
func (h *ListOrdersHandler) Handle(ctx context.Context, query ListOrdersQuery) (*OrderList, error) {
	if query.Status != "" && !query.Status.IsValid() {
		return nil, apperror.Validation("invalid status: %s", query.Status)
	}
	limit, offset := clamp(query.Limit, query.Offset)

	orders, total, err := h.repo.FindAll(ctx, domain.ListFilter{Status: query.Status}, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return &OrderList{Orders: orders, Total: total, Limit: limit, Offset: offset}, nil
}

// HandleMine lists the requester's own orders.
func (h *ListOrdersHandler) HandleMine(ctx context.Context, query ListMyOrdersQuery) (*OrderList, error) {
	if query.CustomerID == 0 {
		return nil, apperror.Validation("customer id is required")
	}
	limit, offset := clamp(query.Limit, query.Offset)

	orders, total, err := h.repo.FindByCustomerID(ctx, query.CustomerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return &OrderList{Orders: orders, Total: total, Limit: limit, Offset: offset}, nil
}

func clamp(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
