// Package store is the single consistent store the checkout and payment use
// cases run against, with one implementation per storage engine.
package store

import (
	"context"

	coupondomain "github.com/tair/fashion-checkout/internal/coupon/domain"
	customerdomain "github.com/tair/fashion-checkout/internal/customer/domain"
	inventorydomain "github.com/tair/fashion-checkout/internal/inventory/domain"
	orderdomain "github.com/tair/fashion-checkout/internal/order/domain"
	paymentdomain "github.com/tair/fashion-checkout/internal/payment/domain"
)

// Repositories is the set of repositories bound to one connection or one
// open transaction.
type Repositories interface {
	Stock() inventorydomain.StockRepository
	Coupons() coupondomain.CouponRepository
	Orders() orderdomain.OrderRepository
	Payments() paymentdomain.PaymentRepository
	Customers() customerdomain.CustomerRepository
}

// Store exposes non-transactional repositories and a transaction boundary.
type Store interface {
	Repositories
	// Transaction runs fn in one transaction. A non-nil error from fn rolls
	// back every write made through tx.
	Transaction(ctx context.Context, fn func(tx Repositories) error) error
}
