package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/fashion-checkout/internal/inventory/domain"
	"github.com/tair/fashion-checkout/pkg/tracing"
)

var tracer = otel.Tracer("inventory-repository")

// TracingStockRepository decorates any stock engine with spans.
type TracingStockRepository struct {
	next domain.StockRepository
}

func NewTracingStockRepository(next domain.StockRepository) *TracingStockRepository {
	return &TracingStockRepository{next: next}
}

func (r *TracingStockRepository) FindVariant(ctx context.Context, id uint) (*domain.Variant, error) {
	ctx, span := tracer.Start(ctx, "repository.FindVariant",
		trace.WithAttributes(attribute.Int("variant.id", int(id))),
	)
	defer span.End()

	variant, err := r.next.FindVariant(ctx, id)
	if err != nil {
		tracing.Fail(span, err, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("variant.stock", variant.Stock))
	return variant, nil
}

func (r *TracingStockRepository) FindVariants(ctx context.Context, ids []uint) ([]domain.Variant, error) {
	ctx, span := tracer.Start(ctx, "repository.FindVariants",
		trace.WithAttributes(attribute.Int("variant.count", len(ids))),
	)
	defer span.End()

	variants, err := r.next.FindVariants(ctx, ids)
	if err != nil {
		tracing.Fail(span, err, err.Error())
		return nil, err
	}
	return variants, nil
}

func (r *TracingStockRepository) LockForUpdate(ctx context.Context, id uint) (*domain.Variant, error) {
	ctx, span := tracer.Start(ctx, "repository.LockForUpdate",
		trace.WithAttributes(attribute.Int("variant.id", int(id))),
	)
	defer span.End()

	variant, err := r.next.LockForUpdate(ctx, id)
	if err != nil {
		tracing.Fail(span, err, err.Error())
		return nil, err
	}
	return variant, nil
}

func (r *TracingStockRepository) DecreaseStock(ctx context.Context, id uint, quantity int) (int64, error) {
	ctx, span := tracer.Start(ctx, "repository.DecreaseStock",
		trace.WithAttributes(
			attribute.Int("variant.id", int(id)),
			attribute.Int("stock.quantity", quantity),
		),
	)
	defer span.End()

	rows, err := r.next.DecreaseStock(ctx, id, quantity)
	if err != nil {
		tracing.Fail(span, err, err.Error())
		return 0, err
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", rows))
	if rows == 0 {
		span.SetStatus(codes.Error, "insufficient stock")
	}
	return rows, nil
}

func (r *TracingStockRepository) IncreaseStock(ctx context.Context, id uint, quantity int) (int64, error) {
	ctx, span := tracer.Start(ctx, "repository.IncreaseStock",
		trace.WithAttributes(
			attribute.Int("variant.id", int(id)),
			attribute.Int("stock.quantity", quantity),
		),
	)
	defer span.End()

	rows, err := r.next.IncreaseStock(ctx, id, quantity)
	if err != nil {
		tracing.Fail(span, err, err.Error())
		return 0, err
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", rows))
	return rows, nil
}

func (r *TracingStockRepository) SetVariantActive(ctx context.Context, id uint, active bool) error {
	ctx, span := tracer.Start(ctx, "repository.SetVariantActive",
		trace.WithAttributes(
			attribute.Int("variant.id", int(id)),
			attribute.Bool("variant.active", active),
		),
	)
	defer span.End()

	if err := r.next.SetVariantActive(ctx, id, active); err != nil {
		tracing.Fail(span, err, err.Error())
		return err
	}
	return nil
}

func (r *TracingStockRepository) FindProduct(ctx context.Context, id uint) (*domain.Product, error) {
	ctx, span := tracer.Start(ctx, "repository.FindProduct",
		trace.WithAttributes(attribute.Int("product.id", int(id))),
	)
	defer span.End()

	product, err := r.next.FindProduct(ctx, id)
	if err != nil {
		tracing.Fail(span, err, err.Error())
		return nil, err
	}
	return product, nil
}

func (r *TracingStockRepository) CountSellableVariants(ctx context.Context, productID uint) (int64, error) {
	ctx, span := tracer.Start(ctx, "repository.CountSellableVariants",
		trace.WithAttributes(attribute.Int("product.id", int(productID))),
	)
	defer span.End()

	count, err := r.next.CountSellableVariants(ctx, productID)
	if err != nil {
		tracing.Fail(span, err, err.Error())
		return 0, err
	}
	span.SetAttributes(attribute.Int64("variant.sellable", count))
	return count, nil
}

func (r *TracingStockRepository) SetProductActive(ctx context.Context, id uint, active bool) error {
	ctx, span := tracer.Start(ctx, "repository.SetProductActive",
		trace.WithAttributes(
			attribute.Int("product.id", int(id)),
			attribute.Bool("product.active", active),
		),
	)
	defer span.End()

	if err := r.next.SetProductActive(ctx, id, active); err != nil {
		tracing.Fail(span, err, err.Error())
		return err
	}
	return nil
}

func (r *TracingStockRepository) CreateMovement(ctx context.Context, movement *domain.InventoryMovement) error {
	ctx, span := tracer.Start(ctx, "repository.CreateMovement",
		trace.WithAttributes(
			attribute.Int("variant.id", int(movement.VariantID)),
			attribute.Int("movement.quantity", movement.Quantity),
			attribute.String("movement.reason", string(movement.Reason)),
		),
	)
	defer span.End()

	if err := r.next.CreateMovement(ctx, movement); err != nil {
		tracing.Fail(span, err, err.Error())
		return err
	}
	return nil
}

func (r *TracingStockRepository) ListMovements(ctx context.Context, variantID uint, limit, offset int) ([]domain.InventoryMovement, error) {
	ctx, span := tracer.Start(ctx, "repository.ListMovements",
		trace.WithAttributes(
			attribute.Int("variant.id", int(variantID)),
			attribute.Int("limit", limit),
			attribute.Int("offset", offset),
		),
	)
	defer span.End()

	movements, err := r.next.ListMovements(ctx, variantID, limit, offset)
	if err != nil {
		tracing.Fail(span, err, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("movement.count", len(movements)))
	return movements, nil
}
