package query

import (
	"context"

	"github.com/tair/fashion-checkout/internal/inventory/domain"
	"github.com/tair/fashion-checkout/pkg/apperror"
)

// ListMovementsQuery represents the query to list the stock history of a variant
type ListMovementsQuery struct {
	VariantID uint
	Limit     int
	Offset    int
}

// ListMovementsHandler handles list movements query
type ListMovementsHandler struct {
	repo domain.StockRepository
}

// NewListMovementsHandler creates a new list movements handler
func NewListMovementsHandler(repo domain.StockRepository) *ListMovementsHandler {
	return &ListMovementsHandler{repo: repo}
}

// Handle returns movements newest first
func (h *ListMovementsHandler) Handle(ctx context.Context, query ListMovementsQuery) ([]domain.InventoryMovement, error) {
	if query.VariantID == 0 {
		return nil, apperror.Validation("variant_id is required")
	}
	if _, err := h.repo.FindVariant(ctx, query.VariantID); err != nil {
		return nil, err
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

	return h.repo.ListMovements(ctx, query.VariantID, query.Limit, query.Offset)
}
