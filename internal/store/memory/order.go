package memory

import (
	"context"
	"fmt"
	"sort"

	orderdomain "github.com/tair/fashion-checkout/internal/order/domain"
	"github.com/tair/fashion-checkout/pkg/apperror"
)

type orderRepo struct {
	sess *session
}

func cloneOrder(o *orderdomain.Order) *orderdomain.Order {
	out := *o
	out.Items = append([]orderdomain.OrderItem(nil), o.Items...)
	if o.PaymentTime != nil {
		t := *o.PaymentTime
		out.PaymentTime = &t
	}
	return &out
}

func (r *orderRepo) Create(ctx context.Context, order *orderdomain.Order) error {
	defer r.sess.lock()()
	for _, existing := range r.sess.s.orders {
		if existing.Code == order.Code {
			return fmt.Errorf("duplicate order code %s", order.Code)
		}
	}

	order.ID = r.sess.nextID()
	now := r.sess.s.now()
	if order.PlacedAt.IsZero() {
		order.PlacedAt = now
	}
	order.UpdatedAt = now
	for i := range order.Items {
		order.Items[i].ID = r.sess.nextID()
		order.Items[i].OrderID = order.ID
	}

	id := order.ID
	r.sess.s.orders[id] = cloneOrder(order)
	r.sess.onRollback(func() { delete(r.sess.s.orders, id) })
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, id uint) (*orderdomain.Order, error) {
	defer r.sess.lock()()
	o, ok := r.sess.s.orders[id]
	if !ok {
		return nil, apperror.NotFound("order %d not found", id)
	}
	return cloneOrder(o), nil
}

func (r *orderRepo) FindByCode(ctx context.Context, code string) (*orderdomain.Order, error) {
	defer r.sess.lock()()
	for _, o := range r.sess.s.orders {
		if o.Code == code {
			return cloneOrder(o), nil
		}
	}
	return nil, apperror.NotFound("order %s not found", code)
}

func (r *orderRepo) FindByIDForUpdate(ctx context.Context, id uint) (*orderdomain.Order, error) {
	return r.FindByID(ctx, id)
}

func (r *orderRepo) FindByCodeForUpdate(ctx context.Context, code string) (*orderdomain.Order, error) {
	return r.FindByCode(ctx, code)
}

func (r *orderRepo) FindByCustomerID(ctx context.Context, customerID uint, limit, offset int) ([]orderdomain.Order, int64, error) {
	return r.filter(func(o *orderdomain.Order) bool { return o.CustomerID == customerID }, limit, offset)
}

func (r *orderRepo) FindAll(ctx context.Context, filter orderdomain.ListFilter, limit, offset int) ([]orderdomain.Order, int64, error) {
	return r.filter(func(o *orderdomain.Order) bool {
		return filter.Status == "" || o.Status == filter.Status
	}, limit, offset)
}

func (r *orderRepo) filter(keep func(o *orderdomain.Order) bool, limit, offset int) ([]orderdomain.Order, int64, error) {
	defer r.sess.lock()()
	var out []orderdomain.Order
	for _, o := range r.sess.s.orders {
		if keep(o) {
			out = append(out, *cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PlacedAt.Equal(out[j].PlacedAt) {
			return out[i].PlacedAt.After(out[j].PlacedAt)
		}
		return out[i].ID > out[j].ID
	})
	return page(out, limit, offset), int64(len(out)), nil
}

func (r *orderRepo) Update(ctx context.Context, order *orderdomain.Order) error {
	defer r.sess.lock()()
	stored, ok := r.sess.s.orders[order.ID]
	if !ok {
		return apperror.NotFound("order %d not found", order.ID)
	}
	previous := cloneOrder(stored)

	order.UpdatedAt = r.sess.s.now()
	stored.Status = order.Status
	stored.PaymentStatus = order.PaymentStatus
	stored.PaymentMethod = order.PaymentMethod
	stored.PaymentTransactionID = order.PaymentTransactionID
	stored.PaymentTime = order.PaymentTime
	stored.UpdatedAt = order.UpdatedAt

	r.sess.onRollback(func() { r.sess.s.orders[previous.ID] = previous })
	return nil
}
