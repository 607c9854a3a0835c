package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tair/fashion-checkout/internal/customer/domain"
	"github.com/tair/fashion-checkout/pkg/apperror"
)

type GormCustomerRepository struct {
	db *gorm.DB
}

func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID returns active, non-deleted customers only.
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uint) (*domain.Customer, error) {
	var customer domain.Customer
	err := r.db.WithContext(ctx).Where("is_active = ?", true).First(&customer, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("customer %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	return &customer, nil
}

func (r *GormCustomerRepository) RedeemLoyaltyPoints(ctx context.Context, id uint, points int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Customer{}).
		Where("id = ? AND loyalty_points >= ?", id, points).
		UpdateColumn("loyalty_points", gorm.Expr("loyalty_points - ?", points))
	if result.Error != nil {
		return 0, fmt.Errorf("failed to redeem loyalty points: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *GormCustomerRepository) AddLoyaltyPoints(ctx context.Context, id uint, delta int) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Customer{}).
		Where("id = ?", id).
		UpdateColumn("loyalty_points", gorm.Expr("GREATEST(loyalty_points + ?, 0)", delta))
	if result.Error != nil {
		return fmt.Errorf("failed to adjust loyalty points: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("customer %d not found", id)
	}
	return nil
}
