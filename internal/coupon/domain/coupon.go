package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Type is the discount kind of a coupon.
type Type string

const (
	TypePercent Type = "PERCENT"
	TypeFixed   Type = "FIXED"
)

// Coupon is a redeemable discount code.
type Coupon struct {
	ID             uint                `json:"id" gorm:"primaryKey"`
	Code           string              `json:"code" gorm:"size:40;not null;uniqueIndex"`
	Type           Type                `json:"type" gorm:"size:16;not null"`
	Value          decimal.Decimal     `json:"value" gorm:"type:numeric(12,2);not null"`
	MaxDiscount    decimal.NullDecimal `json:"max_discount" gorm:"type:numeric(12,2)"`
	MinOrderAmount decimal.NullDecimal `json:"min_order_amount" gorm:"type:numeric(12,2)"`
	StartAt        time.Time           `json:"start_at" gorm:"not null"`
	EndAt          time.Time           `json:"end_at" gorm:"not null"`
	UsageLimit     *int                `json:"usage_limit"`
	UsedCount      int                 `json:"used_count" gorm:"not null;default:0"`
	IsActive       bool                `json:"is_active" gorm:"not null;default:true"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// TableName specifies the table name
func (Coupon) TableName() string {
	return "coupons"
}

// IsRedeemable reports whether the coupon is active, inside its validity
// window and under its usage limit at now.
func (c *Coupon) IsRedeemable(now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if now.Before(c.StartAt) || now.After(c.EndAt) {
		return false
	}
	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return false
	}
	return true
}

// CouponRepository defines the contract for coupon data access
type CouponRepository interface {
	Create(ctx context.Context, coupon *Coupon) error
	FindByCode(ctx context.Context, code string) (*Coupon, error)
	// FindRedeemableByCode returns the coupon only when it is active, inside
	// its validity window and under its usage limit.
	FindRedeemableByCode(ctx context.Context, code string, now time.Time) (*Coupon, error)
	// IncrementUsage bumps used_count only while still under the usage limit.
	// Zero rows affected means the limit was reached concurrently.
	IncrementUsage(ctx context.Context, id uint) (int64, error)
}
