package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tair/fashion-checkout/internal/inventory/domain"
	"github.com/tair/fashion-checkout/pkg/apperror"
)

// GormStockRepository is the PostgreSQL engine of the stock ledger.
type GormStockRepository struct {
	db *gorm.DB
}

func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

func (r *GormStockRepository) FindVariant(ctx context.Context, id uint) (*domain.Variant, error) {
	var variant domain.Variant
	err := r.db.WithContext(ctx).Preload("Product").First(&variant, id).Error
	if err != nil {
		return nil, notFound(err, "variant %d not found", id)
	}
	return &variant, nil
}

func (r *GormStockRepository) FindVariants(ctx context.Context, ids []uint) ([]domain.Variant, error) {
	var variants []domain.Variant
	err := r.db.WithContext(ctx).Preload("Product").Where("id IN ?", ids).Find(&variants).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load variants: %w", err)
	}
	return variants, nil
}

func (r *GormStockRepository) LockForUpdate(ctx context.Context, id uint) (*domain.Variant, error) {
	var variant domain.Variant
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&variant, id).Error
	if err != nil {
		return nil, notFound(err, "variant %d not found", id)
	}
	return &variant, nil
}

func (r *GormStockRepository) DecreaseStock(ctx context.Context, id uint, quantity int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Variant{}).
		Where("id = ? AND stock >= ? AND is_active = ?", id, quantity, true).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return 0, fmt.Errorf("failed to decrease stock: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *GormStockRepository) IncreaseStock(ctx context.Context, id uint, quantity int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Variant{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", quantity))
	if result.Error != nil {
		return 0, fmt.Errorf("failed to increase stock: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *GormStockRepository) SetVariantActive(ctx context.Context, id uint, active bool) error {
	err := r.db.WithContext(ctx).
		Model(&domain.Variant{}).
		Where("id = ?", id).
		UpdateColumn("is_active", active).Error
	if err != nil {
		return fmt.Errorf("failed to update variant %d: %w", id, err)
	}
	return nil
}

func (r *GormStockRepository) FindProduct(ctx context.Context, id uint) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).Preload("Variants").First(&product, id).Error
	if err != nil {
		return nil, notFound(err, "product %d not found", id)
	}
	return &product, nil
}

func (r *GormStockRepository) CountSellableVariants(ctx context.Context, productID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Variant{}).
		Where("product_id = ? AND is_active = ? AND stock > 0", productID, true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count variants: %w", err)
	}
	return count, nil
}

func (r *GormStockRepository) SetProductActive(ctx context.Context, id uint, active bool) error {
	err := r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ?", id).
		UpdateColumn("is_active", active).Error
	if err != nil {
		return fmt.Errorf("failed to update product %d: %w", id, err)
	}
	return nil
}

// CreateMovement inserts under a savepoint when called inside a transaction,
// so a failed audit insert does not poison the surrounding transaction.
func (r *GormStockRepository) CreateMovement(ctx context.Context, movement *domain.InventoryMovement) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(movement).Error
	})
}

func (r *GormStockRepository) ListMovements(ctx context.Context, variantID uint, limit, offset int) ([]domain.InventoryMovement, error) {
	var movements []domain.InventoryMovement
	err := r.db.WithContext(ctx).
		Where("variant_id = ?", variantID).
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&movements).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}
	return movements, nil
}

func notFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(format, args...)
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
