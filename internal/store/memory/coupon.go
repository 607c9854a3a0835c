package memory

import (
	"context"
	"fmt"
	"time"

	coupondomain "github.com/tair/fashion-checkout/internal/coupon/domain"
	customerdomain "github.com/tair/fashion-checkout/internal/customer/domain"
	"github.com/tair/fashion-checkout/pkg/apperror"
)

type couponRepo struct {
	sess *session
}

func (r *couponRepo) byCode(code string) *coupondomain.Coupon {
	for _, c := range r.sess.s.coupons {
		if c.Code == code {
			return c
		}
	}
	return nil
}

func (r *couponRepo) Create(ctx context.Context, coupon *coupondomain.Coupon) error {
	defer r.sess.lock()()
	if r.byCode(coupon.Code) != nil {
		return fmt.Errorf("duplicate coupon code %s", coupon.Code)
	}
	coupon.ID = r.sess.nextID()
	stored := *coupon
	r.sess.s.coupons[stored.ID] = &stored
	r.sess.onRollback(func() { delete(r.sess.s.coupons, stored.ID) })
	return nil
}

func (r *couponRepo) FindByCode(ctx context.Context, code string) (*coupondomain.Coupon, error) {
	defer r.sess.lock()()
	c := r.byCode(code)
	if c == nil {
		return nil, apperror.NotFound("coupon %s not found", code)
	}
	out := *c
	return &out, nil
}

func (r *couponRepo) FindRedeemableByCode(ctx context.Context, code string, now time.Time) (*coupondomain.Coupon, error) {
	defer r.sess.lock()()
	c := r.byCode(code)
	if c == nil || !c.IsRedeemable(now) {
		return nil, apperror.InvalidCoupon("coupon %s is not valid", code)
	}
	out := *c
	return &out, nil
}

func (r *couponRepo) IncrementUsage(ctx context.Context, id uint) (int64, error) {
	defer r.sess.lock()()
	c, ok := r.sess.s.coupons[id]
	if !ok || (c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit) {
		return 0, nil
	}
	c.UsedCount++
	r.sess.onRollback(func() { c.UsedCount-- })
	return 1, nil
}

type customerRepo struct {
	sess *session
}

func (r *customerRepo) FindByID(ctx context.Context, id uint) (*customerdomain.Customer, error) {
	defer r.sess.lock()()
	c, ok := r.sess.s.customers[id]
	if !ok || !c.IsActive {
		return nil, apperror.NotFound("customer %d not found", id)
	}
	out := *c
	return &out, nil
}

func (r *customerRepo) RedeemLoyaltyPoints(ctx context.Context, id uint, points int) (int64, error) {
	defer r.sess.lock()()
	c, ok := r.sess.s.customers[id]
	if !ok || c.LoyaltyPoints < points {
		return 0, nil
	}
	c.LoyaltyPoints -= points
	r.sess.onRollback(func() { c.LoyaltyPoints += points })
	return 1, nil
}

func (r *customerRepo) AddLoyaltyPoints(ctx context.Context, id uint, delta int) error {
	defer r.sess.lock()()
	c, ok := r.sess.s.customers[id]
	if !ok {
		return apperror.NotFound("customer %d not found", id)
	}
	previous := c.LoyaltyPoints
	c.LoyaltyPoints += delta
	if c.LoyaltyPoints < 0 {
		c.LoyaltyPoints = 0
	}
	r.sess.onRollback(func() { c.LoyaltyPoints = previous })
	return nil
}
