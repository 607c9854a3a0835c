// Package ledger owns every mutation of Variant.stock. Callers run it on top
// of the repositories of an open transaction so a later failure unwinds all
// reservations made for the same request.
package ledger

import (
	"context"
	"time"

	"github.com/tair/fashion-checkout/internal/inventory/domain"
	"github.com/tair/fashion-checkout/pkg/apperror"
	"github.com/tair/fashion-checkout/pkg/logger"
	"github.com/tair/fashion-checkout/pkg/metrics"
)

type Ledger struct {
	repo domain.StockRepository
	now  func() time.Time
}

func New(repo domain.StockRepository) *Ledger {
	return &Ledger{repo: repo, now: time.Now}
}

// Reserve takes quantity units of a variant with the conditional decrement.
// It returns the refreshed variant, with the deactivation cascade applied.
func (l *Ledger) Reserve(ctx context.Context, variantID uint, quantity int) (*domain.Variant, error) {
	if quantity <= 0 {
		return nil, apperror.Validation("quantity must be greater than 0")
	}

	locked, err := l.repo.LockForUpdate(ctx, variantID)
	if err != nil {
		return nil, err
	}

	rows, err := l.repo.DecreaseStock(ctx, variantID, quantity)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		metrics.StockReservationFailures.Inc()
		available := locked.Stock
		if !locked.IsActive {
			available = 0
		}
		logger.Warn(ctx).
			Uint("variant_id", variantID).
			Int("requested", quantity).
			Int("available", available).
			Msg("Stock reservation rejected")
		return nil, &domain.InsufficientStockError{
			VariantID: variantID,
			SKU:       locked.SKU,
			Requested: quantity,
			Available: available,
		}
	}

	variant, err := l.repo.FindVariant(ctx, variantID)
	if err != nil {
		return nil, err
	}
	if err := l.cascade(ctx, variant); err != nil {
		return nil, err
	}
	return variant, nil
}

// Release puts quantity units back. It never reactivates anything.
func (l *Ledger) Release(ctx context.Context, variantID uint, quantity int) error {
	if quantity <= 0 {
		return apperror.Validation("quantity must be greater than 0")
	}
	rows, err := l.repo.IncreaseStock(ctx, variantID, quantity)
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperror.NotFound("variant %d not found", variantID)
	}
	return nil
}

// Record appends an audit row. Failures are logged and swallowed.
func (l *Ledger) Record(ctx context.Context, movement domain.InventoryMovement) {
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = l.now()
	}
	if err := l.repo.CreateMovement(ctx, &movement); err != nil {
		logger.Error(ctx).
			Err(err).
			Uint("variant_id", movement.VariantID).
			Int("quantity", movement.Quantity).
			Str("reason", string(movement.Reason)).
			Msg("Failed to record inventory movement")
	}
}

// Restock adds received goods and records a PURCHASE movement.
func (l *Ledger) Restock(ctx context.Context, variantID uint, quantity int, note string, actorID *uint) (*domain.Variant, error) {
	if err := l.Release(ctx, variantID, quantity); err != nil {
		return nil, err
	}
	l.Record(ctx, domain.InventoryMovement{
		VariantID: variantID,
		Quantity:  quantity,
		Reason:    domain.ReasonPurchase,
		Note:      note,
		CreatedBy: actorID,
	})
	return l.repo.FindVariant(ctx, variantID)
}

// Adjust applies a signed manual correction. Negative corrections go through
// the conditional decrement and can never take stock below zero.
func (l *Ledger) Adjust(ctx context.Context, variantID uint, delta int, note string, actorID *uint) (*domain.Variant, error) {
	var (
		variant *domain.Variant
		err     error
	)
	switch {
	case delta == 0:
		return nil, apperror.Validation("adjustment must not be zero")
	case delta > 0:
		if err = l.Release(ctx, variantID, delta); err != nil {
			return nil, err
		}
		variant, err = l.repo.FindVariant(ctx, variantID)
	default:
		variant, err = l.Reserve(ctx, variantID, -delta)
	}
	if err != nil {
		return nil, err
	}

	l.Record(ctx, domain.InventoryMovement{
		VariantID: variantID,
		Quantity:  delta,
		Reason:    domain.ReasonAdjust,
		Note:      note,
		CreatedBy: actorID,
	})
	return variant, nil
}

// ReactivateVariant is the manual inverse of the zero-stock cascade. The
// owning product is reactivated with it when it had been switched off.
func (l *Ledger) ReactivateVariant(ctx context.Context, variantID uint) (*domain.Variant, error) {
	variant, err := l.repo.LockForUpdate(ctx, variantID)
	if err != nil {
		return nil, err
	}
	if variant.Stock <= 0 {
		return nil, apperror.InvalidState("variant %d has no stock and cannot be reactivated", variantID)
	}

	if !variant.IsActive {
		if err := l.repo.SetVariantActive(ctx, variantID, true); err != nil {
			return nil, err
		}
	}

	product, err := l.repo.FindProduct(ctx, variant.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		if err := l.repo.SetProductActive(ctx, product.ID, true); err != nil {
			return nil, err
		}
	}

	logger.Info(ctx).
		Uint("variant_id", variantID).
		Uint("product_id", variant.ProductID).
		Int("stock", variant.Stock).
		Msg("Variant reactivated")
	return l.repo.FindVariant(ctx, variantID)
}

// ReactivateProduct switches a product back on when at least one of its
// variants is sellable.
func (l *Ledger) ReactivateProduct(ctx context.Context, productID uint) (*domain.Product, error) {
	product, err := l.repo.FindProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	sellable, err := l.repo.CountSellableVariants(ctx, productID)
	if err != nil {
		return nil, err
	}
	if sellable == 0 {
		return nil, apperror.InvalidState("product %d has no active variant in stock", productID)
	}
	if !product.IsActive {
		if err := l.repo.SetProductActive(ctx, productID, true); err != nil {
			return nil, err
		}
		product.IsActive = true
	}
	return product, nil
}

func (l *Ledger) cascade(ctx context.Context, variant *domain.Variant) error {
	if variant.Stock > 0 || !variant.IsActive {
		return nil
	}

	if err := l.repo.SetVariantActive(ctx, variant.ID, false); err != nil {
		return err
	}
	variant.IsActive = false
	metrics.VariantDeactivations.Inc()
	logger.Info(ctx).
		Uint("variant_id", variant.ID).
		Str("sku", variant.SKU).
		Msg("Variant deactivated at zero stock")

	sellable, err := l.repo.CountSellableVariants(ctx, variant.ProductID)
	if err != nil {
		return err
	}
	if sellable > 0 {
		return nil
	}
	if err := l.repo.SetProductActive(ctx, variant.ProductID, false); err != nil {
		return err
	}
	if variant.Product != nil {
		variant.Product.IsActive = false
	}
	logger.Info(ctx).
		Uint("product_id", variant.ProductID).
		Msg("Product deactivated, no sellable variants left")
	return nil
}
