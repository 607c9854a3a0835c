package query

import (
	"context"

	"github.com/tair/fashion-checkout/internal/inventory/domain"
	"github.com/tair/fashion-checkout/pkg/apperror"
)

// GetVariantHandler handles get variant query
type GetVariantHandler struct {
	repo domain.StockRepository
}

// NewGetVariantHandler creates a new get variant handler
func NewGetVariantHandler(repo domain.StockRepository) *GetVariantHandler {
	return &GetVariantHandler{repo: repo}
}

// Handle returns the variant with its current stock
func (h *GetVariantHandler) Handle(ctx context.Context, variantID uint) (*domain.Variant, error) {
	if variantID == 0 {
		return nil, apperror.Validation("variant_id is required")
	}
	return h.repo.FindVariant(ctx, variantID)
}
