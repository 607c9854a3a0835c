package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tair/fashion-checkout/internal/order/domain"
	"github.com/tair/fashion-checkout/pkg/apperror"
)

type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id uint) (*domain.Order, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id), fmt.Sprintf("order %d not found", id))
}

func (r *GormOrderRepository) FindByCode(ctx context.Context, code string) (*domain.Order, error) {
	return r.first(r.db.WithContext(ctx).Where("code = ?", code), fmt.Sprintf("order %s not found", code))
}

func (r *GormOrderRepository) FindByIDForUpdate(ctx context.Context, id uint) (*domain.Order, error) {
	q := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id)
	return r.first(q, fmt.Sprintf("order %d not found", id))
}

func (r *GormOrderRepository) FindByCodeForUpdate(ctx context.Context, code string) (*domain.Order, error) {
	q := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("code = ?", code)
	return r.first(q, fmt.Sprintf("order %s not found", code))
}

func (r *GormOrderRepository) FindByCustomerID(ctx context.Context, customerID uint, limit, offset int) ([]domain.Order, int64, error) {
	return r.list(r.db.WithContext(ctx).Where("customer_id = ?", customerID), limit, offset)
}

func (r *GormOrderRepository) FindAll(ctx context.Context, filter domain.ListFilter, limit, offset int) ([]domain.Order, int64, error) {
	q := r.db.WithContext(ctx)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	return r.list(q, limit, offset)
}

func (r *GormOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	result := r.db.WithContext(ctx).
		Model(order).
		Select("status", "payment_status", "payment_method", "payment_transaction_id", "payment_time", "updated_at").
		Updates(order)
	if result.Error != nil {
		return fmt.Errorf("failed to update order: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("order %d not found", order.ID)
	}
	return nil
}

func (r *GormOrderRepository) first(q *gorm.DB, notFoundMsg string) (*domain.Order, error) {
	var order domain.Order
	err := q.First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("%s", notFoundMsg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	// Items are loaded separately so the row lock above covers only the order row.
	if err := r.db.WithContext(q.Statement.Context).
		Where("order_id = ?", order.ID).
		Order("id").
		Find(&order.Items).Error; err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	return &order, nil
}

func (r *GormOrderRepository) list(q *gorm.DB, limit, offset int) ([]domain.Order, int64, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Model(&domain.Order{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []domain.Order
	err := q.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("placed_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}
