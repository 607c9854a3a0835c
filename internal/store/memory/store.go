// Package memory is an in-process storage engine. Transactions are
// serialized by one mutex and rolled back by replaying an undo journal, so
// it provides the same all-or-nothing and compare-and-decrement guarantees
// as the relational engine.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	coupondomain "github.com/tair/fashion-checkout/internal/coupon/domain"
	customerdomain "github.com/tair/fashion-checkout/internal/customer/domain"
	inventorydomain "github.com/tair/fashion-checkout/internal/inventory/domain"
	orderdomain "github.com/tair/fashion-checkout/internal/order/domain"
	paymentdomain "github.com/tair/fashion-checkout/internal/payment/domain"
	"github.com/tair/fashion-checkout/internal/store"
)

// ErrInjected is returned by writes the test asked to fail.
var ErrInjected = errors.New("memory store: injected failure")

type Store struct {
	mu  sync.Mutex
	seq uint
	now func() time.Time

	customers    map[uint]*customerdomain.Customer
	products     map[uint]*inventorydomain.Product
	variants     map[uint]*inventorydomain.Variant
	movements    []inventorydomain.InventoryMovement
	coupons      map[uint]*coupondomain.Coupon
	orders       map[uint]*orderdomain.Order
	payments     map[uint]*paymentdomain.Payment
	transactions []paymentdomain.PaymentTransaction

	// FailMovements makes every CreateMovement call fail.
	FailMovements bool

	root *session
}

func New() *Store {
	s := &Store{
		now:       time.Now,
		customers: make(map[uint]*customerdomain.Customer),
		products:  make(map[uint]*inventorydomain.Product),
		variants:  make(map[uint]*inventorydomain.Variant),
		coupons:   make(map[uint]*coupondomain.Coupon),
		orders:    make(map[uint]*orderdomain.Order),
		payments:  make(map[uint]*paymentdomain.Payment),
	}
	s.root = &session{s: s}
	return s
}

// SetClock overrides the timestamp source.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// session binds repositories either to the store directly or to one open
// transaction. Outside a transaction every call takes the store mutex.
type session struct {
	s       *Store
	journal *[]func()
}

func (sess *session) lock() func() {
	if sess.journal != nil {
		return func() {}
	}
	sess.s.mu.Lock()
	return sess.s.mu.Unlock
}

func (sess *session) onRollback(undo func()) {
	if sess.journal != nil {
		*sess.journal = append(*sess.journal, undo)
	}
}

func (sess *session) nextID() uint {
	sess.s.seq++
	return sess.s.seq
}

func (sess *session) Stock() inventorydomain.StockRepository       { return &stockRepo{sess} }
func (sess *session) Coupons() coupondomain.CouponRepository       { return &couponRepo{sess} }
func (sess *session) Orders() orderdomain.OrderRepository          { return &orderRepo{sess} }
func (sess *session) Payments() paymentdomain.PaymentRepository    { return &paymentRepo{sess} }
func (sess *session) Customers() customerdomain.CustomerRepository { return &customerRepo{sess} }

func (s *Store) Stock() inventorydomain.StockRepository       { return s.root.Stock() }
func (s *Store) Coupons() coupondomain.CouponRepository       { return s.root.Coupons() }
func (s *Store) Orders() orderdomain.OrderRepository          { return s.root.Orders() }
func (s *Store) Payments() paymentdomain.PaymentRepository    { return s.root.Payments() }
func (s *Store) Customers() customerdomain.CustomerRepository { return s.root.Customers() }

// Transaction runs fn with the store locked and undoes its writes, newest
// first, when fn fails or panics.
func (s *Store) Transaction(ctx context.Context, fn func(tx store.Repositories) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var journal []func()
	rollback := func() {
		for i := len(journal) - 1; i >= 0; i-- {
			journal[i]()
		}
	}
	defer func() {
		if r := recover(); r != nil {
			rollback()
			panic(r)
		}
	}()

	if err = fn(&session{s: s, journal: &journal}); err != nil {
		rollback()
	}
	return err
}

// AddCustomer seeds a customer and returns its id.
func (s *Store) AddCustomer(c customerdomain.Customer) uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.root.nextID()
	}
	s.customers[c.ID] = &c
	return c.ID
}

// AddProduct seeds a product and returns its id.
func (s *Store) AddProduct(p inventorydomain.Product) uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.root.nextID()
	}
	p.Variants = nil
	s.products[p.ID] = &p
	return p.ID
}

// AddVariant seeds a variant and returns its id.
func (s *Store) AddVariant(v inventorydomain.Variant) uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v.ID == 0 {
		v.ID = s.root.nextID()
	}
	v.Product = nil
	s.variants[v.ID] = &v
	return v.ID
}

// AddCoupon seeds a coupon and returns its id.
func (s *Store) AddCoupon(c coupondomain.Coupon) uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.root.nextID()
	}
	s.coupons[c.ID] = &c
	return c.ID
}

// Movements returns a copy of the movement log.
func (s *Store) Movements() []inventorydomain.InventoryMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]inventorydomain.InventoryMovement(nil), s.movements...)
}

// OrderCount returns the number of persisted orders.
func (s *Store) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// Transactions returns a copy of the payment transaction log.
func (s *Store) Transactions() []paymentdomain.PaymentTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]paymentdomain.PaymentTransaction(nil), s.transactions...)
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
