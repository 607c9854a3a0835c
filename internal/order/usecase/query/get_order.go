package query

import (
	"context"

	"github.com/tair/fashion-checkout/internal/order/domain"
	"github.com/tair/fashion-checkout/pkg/apperror"
)

// GetOrderQuery represents the query to get an order
type GetOrderQuery struct {
	ID         uint
	CustomerID uint
	IsAdmin    bool
}

// GetOrderHandler handles get order query
type GetOrderHandler struct {
	repo domain.OrderRepository
}

// NewGetOrderHandler creates a new get order handler
func NewGetOrderHandler(repo domain.OrderRepository) *GetOrderHandler {
	return &GetOrderHandler{repo: repo}
}

// Handle executes the get order query
func (h *GetOrderHandler) Handle(ctx context.Context, query GetOrderQuery) (*domain.Order, error) {
	if query.ID == 0 {
		return nil, apperror.Validation("id is required")
	}

	order, err := h.repo.FindByID(ctx, query.ID)
	if err != nil {
		return nil, err
	}
	if !query.IsAdmin && !order.IsOwnedBy(query.CustomerID) {
		return nil, apperror.Forbidden("order %d does not belong to you", query.ID)
	}
	return order, nil
}
