package command

import (
	"context"

	"github.com/tair/fashion-checkout/internal/inventory/domain"
	"github.com/tair/fashion-checkout/internal/inventory/ledger"
	"github.com/tair/fashion-checkout/internal/store"
	"github.com/tair/fashion-checkout/pkg/apperror"
	"github.com/tair/fashion-checkout/pkg/logger"
)

// ReactivateHandler switches variants and products back on after the
// zero-stock cascade.
type ReactivateHandler struct {
	store store.Store
}

func NewReactivateHandler(s store.Store) *ReactivateHandler {
	return &ReactivateHandler{store: s}
}

func (h *ReactivateHandler) Variant(ctx context.Context, variantID uint) (*domain.Variant, error) {
	if variantID == 0 {
		return nil, apperror.Validation("variant_id is required")
	}

	var variant *domain.Variant
	err := h.store.Transaction(ctx, func(tx store.Repositories) error {
		var err error
		variant, err = ledger.New(tx.Stock()).ReactivateVariant(ctx, variantID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return variant, nil
}

func (h *ReactivateHandler) Product(ctx context.Context, productID uint) (*domain.Product, error) {
	if productID == 0 {
		return nil, apperror.Validation("product_id is required")
	}

	var product *domain.Product
	err := h.store.Transaction(ctx, func(tx store.Repositories) error {
		var err error
		product, err = ledger.New(tx.Stock()).ReactivateProduct(ctx, productID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx).Uint("product_id", productID).Msg("Product reactivated")
	return product, nil
}
