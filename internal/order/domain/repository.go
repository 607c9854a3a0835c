package domain

import "context"

// ListFilter narrows administrative order listings.
type ListFilter struct {
	Status Status
}

// OrderRepository defines the contract for order data access
type OrderRepository interface {
	// Create inserts the order together with its items.
	Create(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id uint) (*Order, error)
	FindByCode(ctx context.Context, code string) (*Order, error)
	// FindByIDForUpdate and FindByCodeForUpdate hold a row lock on the order
	// until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id uint) (*Order, error)
	FindByCodeForUpdate(ctx context.Context, code string) (*Order, error)
	FindByCustomerID(ctx context.Context, customerID uint, limit, offset int) ([]Order, int64, error)
	FindAll(ctx context.Context, filter ListFilter, limit, offset int) ([]Order, int64, error)
	// Update writes the mutable status and payment columns. Items and
	// monetary fields are never rewritten.
	Update(ctx context.Context, order *Order) error
}
