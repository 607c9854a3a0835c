package memory

import (
	"context"
	"sort"

	inventorydomain "github.com/tair/fashion-checkout/internal/inventory/domain"
	"github.com/tair/fashion-checkout/pkg/apperror"
)

type stockRepo struct {
	sess *session
}

func (r *stockRepo) variantCopy(id uint, withProduct bool) (*inventorydomain.Variant, error) {
	v, ok := r.sess.s.variants[id]
	if !ok {
		return nil, apperror.NotFound("variant %d not found", id)
	}
	out := *v
	if withProduct {
		if p, ok := r.sess.s.products[v.ProductID]; ok {
			product := *p
			out.Product = &product
		}
	}
	return &out, nil
}

func (r *stockRepo) FindVariant(ctx context.Context, id uint) (*inventorydomain.Variant, error) {
	defer r.sess.lock()()
	return r.variantCopy(id, true)
}

func (r *stockRepo) FindVariants(ctx context.Context, ids []uint) ([]inventorydomain.Variant, error) {
	defer r.sess.lock()()
	out := make([]inventorydomain.Variant, 0, len(ids))
	for _, id := range ids {
		if v, err := r.variantCopy(id, true); err == nil {
			out = append(out, *v)
		}
	}
	return out, nil
}

// LockForUpdate is a plain read: transactions already run one at a time.
func (r *stockRepo) LockForUpdate(ctx context.Context, id uint) (*inventorydomain.Variant, error) {
	defer r.sess.lock()()
	return r.variantCopy(id, false)
}

func (r *stockRepo) DecreaseStock(ctx context.Context, id uint, quantity int) (int64, error) {
	defer r.sess.lock()()
	v, ok := r.sess.s.variants[id]
	if !ok || !v.IsActive || v.Stock < quantity {
		return 0, nil
	}
	v.Stock -= quantity
	v.UpdatedAt = r.sess.s.now()
	r.sess.onRollback(func() { v.Stock += quantity })
	return 1, nil
}

func (r *stockRepo) IncreaseStock(ctx context.Context, id uint, quantity int) (int64, error) {
	defer r.sess.lock()()
	v, ok := r.sess.s.variants[id]
	if !ok {
		return 0, nil
	}
	v.Stock += quantity
	v.UpdatedAt = r.sess.s.now()
	r.sess.onRollback(func() { v.Stock -= quantity })
	return 1, nil
}

func (r *stockRepo) SetVariantActive(ctx context.Context, id uint, active bool) error {
	defer r.sess.lock()()
	v, ok := r.sess.s.variants[id]
	if !ok {
		return nil
	}
	previous := v.IsActive
	v.IsActive = active
	r.sess.onRollback(func() { v.IsActive = previous })
	return nil
}

func (r *stockRepo) FindProduct(ctx context.Context, id uint) (*inventorydomain.Product, error) {
	defer r.sess.lock()()
	p, ok := r.sess.s.products[id]
	if !ok {
		return nil, apperror.NotFound("product %d not found", id)
	}
	out := *p
	out.Variants = nil
	for _, v := range r.sess.s.variants {
		if v.ProductID == id {
			out.Variants = append(out.Variants, *v)
		}
	}
	sort.Slice(out.Variants, func(i, j int) bool { return out.Variants[i].ID < out.Variants[j].ID })
	return &out, nil
}

func (r *stockRepo) CountSellableVariants(ctx context.Context, productID uint) (int64, error) {
	defer r.sess.lock()()
	var count int64
	for _, v := range r.sess.s.variants {
		if v.ProductID == productID && v.IsActive && v.Stock > 0 {
			count++
		}
	}
	return count, nil
}

func (r *stockRepo) SetProductActive(ctx context.Context, id uint, active bool) error {
	defer r.sess.lock()()
	p, ok := r.sess.s.products[id]
	if !ok {
		return nil
	}
	previous := p.IsActive
	p.IsActive = active
	r.sess.onRollback(func() { p.IsActive = previous })
	return nil
}

func (r *stockRepo) CreateMovement(ctx context.Context, movement *inventorydomain.InventoryMovement) error {
	defer r.sess.lock()()
	if r.sess.s.FailMovements {
		return ErrInjected
	}
	movement.ID = r.sess.nextID()
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = r.sess.s.now()
	}
	r.sess.s.movements = append(r.sess.s.movements, *movement)
	n := len(r.sess.s.movements) - 1
	r.sess.onRollback(func() { r.sess.s.movements = r.sess.s.movements[:n] })
	return nil
}

func (r *stockRepo) ListMovements(ctx context.Context, variantID uint, limit, offset int) ([]inventorydomain.InventoryMovement, error) {
	defer r.sess.lock()()
	var out []inventorydomain.InventoryMovement
	for _, m := range r.sess.s.movements {
		if m.VariantID == variantID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return page(out, limit, offset), nil
}
