package gormstore

import (
	"context"

	"gorm.io/gorm"

	coupondomain "github.com/tair/fashion-checkout/internal/coupon/domain"
	couponrepo "github.com/tair/fashion-checkout/internal/coupon/repository"
	customerdomain "github.com/tair/fashion-checkout/internal/customer/domain"
	customerrepo "github.com/tair/fashion-checkout/internal/customer/repository"
	inventorydomain "github.com/tair/fashion-checkout/internal/inventory/domain"
	inventoryrepo "github.com/tair/fashion-checkout/internal/inventory/repository"
	orderdomain "github.com/tair/fashion-checkout/internal/order/domain"
	orderrepo "github.com/tair/fashion-checkout/internal/order/repository"
	paymentdomain "github.com/tair/fashion-checkout/internal/payment/domain"
	paymentrepo "github.com/tair/fashion-checkout/internal/payment/repository"
	"github.com/tair/fashion-checkout/internal/store"
)

// Store is the PostgreSQL engine.
type Store struct {
	db *gorm.DB
	repositories
}

type repositories struct {
	stock     inventorydomain.StockRepository
	coupons   coupondomain.CouponRepository
	orders    orderdomain.OrderRepository
	payments  paymentdomain.PaymentRepository
	customers customerdomain.CustomerRepository
}

func New(db *gorm.DB) *Store {
	return &Store{db: db, repositories: bind(db)}
}

func bind(db *gorm.DB) repositories {
	return repositories{
		stock:     inventoryrepo.NewTracingStockRepository(inventoryrepo.NewGormStockRepository(db)),
		coupons:   couponrepo.NewGormCouponRepository(db),
		orders:    orderrepo.NewGormOrderRepository(db),
		payments:  paymentrepo.NewGormPaymentRepository(db),
		customers: customerrepo.NewGormCustomerRepository(db),
	}
}

func (r repositories) Stock() inventorydomain.StockRepository       { return r.stock }
func (r repositories) Coupons() coupondomain.CouponRepository       { return r.coupons }
func (r repositories) Orders() orderdomain.OrderRepository          { return r.orders }
func (r repositories) Payments() paymentdomain.PaymentRepository    { return r.payments }
func (r repositories) Customers() customerdomain.CustomerRepository { return r.customers }

// Transaction runs fn inside a database transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx store.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(bind(tx))
	})
}

// Models lists every table the store owns, for AutoMigrate.
func Models() []interface{} {
	return []interface{}{
		&customerdomain.Customer{},
		&inventorydomain.Product{},
		&inventorydomain.Variant{},
		&inventorydomain.InventoryMovement{},
		&coupondomain.Coupon{},
		&orderdomain.Order{},
		&orderdomain.OrderItem{},
		&paymentdomain.Payment{},
		&paymentdomain.PaymentTransaction{},
	}
}
