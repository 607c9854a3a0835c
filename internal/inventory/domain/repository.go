package domain

import "context"

// StockRepository is the storage contract behind the stock ledger. Each
// engine implements DecreaseStock as one indivisible compare-and-decrement.
type StockRepository interface {
	FindVariant(ctx context.Context, id uint) (*Variant, error)
	FindVariants(ctx context.Context, ids []uint) ([]Variant, error)
	// LockForUpdate reads the variant under an exclusive row lock held until
	// the surrounding transaction ends.
	LockForUpdate(ctx context.Context, id uint) (*Variant, error)
	// DecreaseStock subtracts quantity only when the variant is active and
	// has at least quantity in stock. Zero rows affected means rejected.
	DecreaseStock(ctx context.Context, id uint, quantity int) (int64, error)
	IncreaseStock(ctx context.Context, id uint, quantity int) (int64, error)
	SetVariantActive(ctx context.Context, id uint, active bool) error

	FindProduct(ctx context.Context, id uint) (*Product, error)
	// CountSellableVariants counts active variants with stock > 0.
	CountSellableVariants(ctx context.Context, productID uint) (int64, error)
	SetProductActive(ctx context.Context, id uint, active bool) error

	CreateMovement(ctx context.Context, movement *InventoryMovement) error
	ListMovements(ctx context.Context, variantID uint, limit, offset int) ([]InventoryMovement, error)
}
