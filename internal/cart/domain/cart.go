package domain

import "context"

// Item is one cart line.
type Item struct {
	VariantID uint `json:"variant_id"`
	Quantity  int  `json:"quantity"`
}

// Repository keeps one cart per customer.
type Repository interface {
	// AddItem adds quantity to the line, creating it when missing.
	AddItem(ctx context.Context, customerID, variantID uint, quantity int) error
	RemoveItem(ctx context.Context, customerID, variantID uint) error
	// List returns the lines ordered by variant id.
	List(ctx context.Context, customerID uint) ([]Item, error)
	Clear(ctx context.Context, customerID uint) error
}
