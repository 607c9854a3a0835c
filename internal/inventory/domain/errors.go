package domain

import (
	"fmt"

	"github.com/tair/fashion-checkout/pkg/apperror"
)

// InsufficientStockError is returned when a conditional decrement is rejected.
type InsufficientStockError struct {
	VariantID uint
	SKU       string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	if e.SKU != "" {
		return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.SKU, e.Requested, e.Available)
	}
	return fmt.Sprintf("insufficient stock for variant %d: requested %d, available %d", e.VariantID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Kind() apperror.Kind {
	return apperror.KindInsufficientStock
}

// Details is surfaced to the buyer alongside the message.
func (e *InsufficientStockError) Details() map[string]interface{} {
	return map[string]interface{}{
		"variant_id": e.VariantID,
		"sku":        e.SKU,
		"requested":  e.Requested,
		"available":  e.Available,
	}
}
