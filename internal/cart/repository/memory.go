package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/tair/fashion-checkout/internal/cart/domain"
)

// MemoryRepository is the cart store used when Redis is unavailable.
type MemoryRepository struct {
	mu    sync.Mutex
	carts map[uint]map[uint]int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{carts: make(map[uint]map[uint]int)}
}

func (r *MemoryRepository) AddItem(ctx context.Context, customerID, variantID uint, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart, ok := r.carts[customerID]
	if !ok {
		cart = make(map[uint]int)
		r.carts[customerID] = cart
	}
	cart[variantID] += quantity
	return nil
}

func (r *MemoryRepository) RemoveItem(ctx context.Context, customerID, variantID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts[customerID], variantID)
	return nil
}

func (r *MemoryRepository) List(ctx context.Context, customerID uint) ([]domain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]domain.Item, 0, len(r.carts[customerID]))
	for variantID, quantity := range r.carts[customerID] {
		if quantity > 0 {
			items = append(items, domain.Item{VariantID: variantID, Quantity: quantity})
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].VariantID < items[j].VariantID })
	return items, nil
}

func (r *MemoryRepository) Clear(ctx context.Context, customerID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, customerID)
	return nil
}
