package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tair/fashion-checkout/internal/coupon/domain"
	"github.com/tair/fashion-checkout/pkg/apperror"
)

type GormCouponRepository struct {
	db *gorm.DB
}

func NewGormCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

func (r *GormCouponRepository) Create(ctx context.Context, coupon *domain.Coupon) error {
	if err := r.db.WithContext(ctx).Create(coupon).Error; err != nil {
		return fmt.Errorf("failed to create coupon: %w", err)
	}
	return nil
}

func (r *GormCouponRepository) FindByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	var coupon domain.Coupon
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&coupon).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("coupon %s not found", code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find coupon: %w", err)
	}
	return &coupon, nil
}

func (r *GormCouponRepository) FindRedeemableByCode(ctx context.Context, code string, now time.Time) (*domain.Coupon, error) {
	var coupon domain.Coupon
	err := r.db.WithContext(ctx).
		Where("code = ? AND is_active = ? AND start_at <= ? AND end_at >= ?", code, true, now, now).
		Where("usage_limit IS NULL OR used_count < usage_limit").
		First(&coupon).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.InvalidCoupon("coupon %s is not valid", code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find coupon: %w", err)
	}
	return &coupon, nil
}

func (r *GormCouponRepository) IncrementUsage(ctx context.Context, id uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Coupon{}).
		Where("id = ? AND (usage_limit IS NULL OR used_count < usage_limit)", id).
		UpdateColumn("used_count", gorm.Expr("used_count + ?", 1))
	if result.Error != nil {
		return 0, fmt.Errorf("failed to increment coupon usage: %w", result.Error)
	}
	return result.RowsAffected, nil
}
