package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tair/fashion-checkout/internal/payment/domain"
	"github.com/tair/fashion-checkout/pkg/apperror"
)

type GormPaymentRepository struct {
	db *gorm.DB
}

func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

func (r *GormPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *GormPaymentRepository) FindByID(ctx context.Context, id uint) (*domain.Payment, error) {
	var payment domain.Payment
	err := r.db.WithContext(ctx).First(&payment, id).Error
	if err != nil {
		return nil, notFound(err, "payment %d not found", id)
	}
	return &payment, nil
}

func (r *GormPaymentRepository) FindByIDForUpdate(ctx context.Context, id uint) (*domain.Payment, error) {
	var payment domain.Payment
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&payment, id).Error
	if err != nil {
		return nil, notFound(err, "payment %d not found", id)
	}
	return &payment, nil
}

func (r *GormPaymentRepository) FindByOrderID(ctx context.Context, orderID uint) ([]domain.Payment, error) {
	var payments []domain.Payment
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC, id DESC").
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find payments: %w", err)
	}
	return payments, nil
}

func (r *GormPaymentRepository) FindByOrderAndTransactionID(ctx context.Context, orderID uint, transactionID string) (*domain.Payment, error) {
	var payment domain.Payment
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND transaction_id = ?", orderID, transactionID).
		First(&payment).Error
	if err != nil {
		return nil, notFound(err, "payment with transaction %s not found for order %d", transactionID, orderID)
	}
	return &payment, nil
}

func (r *GormPaymentRepository) FindAll(ctx context.Context, status domain.Status, limit, offset int) ([]domain.Payment, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Payment{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	return r.page(q, limit, offset)
}

func (r *GormPaymentRepository) FindByCustomerID(ctx context.Context, customerID uint, limit, offset int) ([]domain.Payment, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&domain.Payment{}).
		Joins("JOIN orders ON orders.id = payments.order_id").
		Where("orders.customer_id = ?", customerID)
	return r.page(q, limit, offset)
}

func (r *GormPaymentRepository) ListAfter(ctx context.Context, afterID uint, limit int) ([]domain.Payment, error) {
	var payments []domain.Payment
	err := r.db.WithContext(ctx).
		Where("id > ?", afterID).
		Order("id").
		Limit(limit).
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

func (r *GormPaymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	result := r.db.WithContext(ctx).
		Model(payment).
		Select("status", "transaction_id", "bank_code", "response_code", "payment_info", "completed_at", "updated_at").
		Updates(payment)
	if result.Error != nil {
		return fmt.Errorf("failed to update payment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("payment %d not found", payment.ID)
	}
	return nil
}

func (r *GormPaymentRepository) Statistics(ctx context.Context) (*domain.Statistics, error) {
	var rows []struct {
		Status domain.Status
		Count  int64
		Amount decimal.NullDecimal
	}
	err := r.db.WithContext(ctx).
		Model(&domain.Payment{}).
		Select("status, COUNT(*) AS count, SUM(amount) AS amount").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate payments: %w", err)
	}

	stats := &domain.Statistics{CompletedAmount: decimal.Zero}
	for _, row := range rows {
		stats.Total += row.Count
		switch row.Status {
		case domain.StatusCompleted:
			stats.Completed = row.Count
			if row.Amount.Valid {
				stats.CompletedAmount = row.Amount.Decimal
			}
		case domain.StatusPending:
			stats.Pending = row.Count
		case domain.StatusFailed:
			stats.Failed = row.Count
		case domain.StatusRefunded:
			stats.Refunded = row.Count
		case domain.StatusCancelled:
			stats.Cancelled = row.Count
		}
	}
	return stats, nil
}

func (r *GormPaymentRepository) CreateTransaction(ctx context.Context, tx *domain.PaymentTransaction) error {
	if err := r.db.WithContext(ctx).Create(tx).Error; err != nil {
		return fmt.Errorf("failed to create payment transaction: %w", err)
	}
	return nil
}

func (r *GormPaymentRepository) FindTransactionsByOrderID(ctx context.Context, orderID uint) ([]domain.PaymentTransaction, error) {
	var txs []domain.PaymentTransaction
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC, id DESC").
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find payment transactions: %w", err)
	}
	return txs, nil
}

func (r *GormPaymentRepository) page(q *gorm.DB, limit, offset int) ([]domain.Payment, int64, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	var payments []domain.Payment
	err := q.Order("payments.created_at DESC, payments.id DESC").
		Limit(limit).Offset(offset).
		Find(&payments).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, total, nil
}

func notFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(format, args...)
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
