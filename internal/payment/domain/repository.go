package domain

import "context"

// PaymentRepository defines the contract for payment and transaction data access
type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) error
	FindByID(ctx context.Context, id uint) (*Payment, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*Payment, error)
	// FindByOrderID returns the order's payments, newest first.
	FindByOrderID(ctx context.Context, orderID uint) ([]Payment, error)
	// FindByOrderAndTransactionID finds the order's payment carrying a
	// gateway transaction id.
	FindByOrderAndTransactionID(ctx context.Context, orderID uint, transactionID string) (*Payment, error)
	FindAll(ctx context.Context, status Status, limit, offset int) ([]Payment, int64, error)
	FindByCustomerID(ctx context.Context, customerID uint, limit, offset int) ([]Payment, int64, error)
	// ListAfter pages through every payment in id order (keyset pagination).
	ListAfter(ctx context.Context, afterID uint, limit int) ([]Payment, error)
	Update(ctx context.Context, payment *Payment) error
	Statistics(ctx context.Context) (*Statistics, error)

	CreateTransaction(ctx context.Context, tx *PaymentTransaction) error
	FindTransactionsByOrderID(ctx context.Context, orderID uint) ([]PaymentTransaction, error)
}
