package command

import (
	"context"

	"github.com/tair/fashion-checkout/internal/inventory/domain"
	"github.com/tair/fashion-checkout/internal/inventory/ledger"
	"github.com/tair/fashion-checkout/internal/store"
	"github.com/tair/fashion-checkout/pkg/apperror"
	"github.com/tair/fashion-checkout/pkg/logger"
)

// AdjustStockCommand is a signed manual correction
type AdjustStockCommand struct {
	VariantID uint
	Delta     int
	Note      string
	ActorID   uint
}

// AdjustStockHandler handles adjust stock command
type AdjustStockHandler struct {
	store store.Store
}

// NewAdjustStockHandler creates a new adjust stock handler
func NewAdjustStockHandler(s store.Store) *AdjustStockHandler {
	return &AdjustStockHandler{store: s}
}

// Handle executes the adjust stock command
func (h *AdjustStockHandler) Handle(ctx context.Context, cmd AdjustStockCommand) (*domain.Variant, error) {
	if cmd.VariantID == 0 {
		return nil, apperror.Validation("variant_id is required")
	}
	note, err := cleanNote(cmd.Note)
	if err != nil {
		return nil, err
	}
	if note == "" {
		return nil, apperror.Validation("note is required for a manual adjustment")
	}

	var variant *domain.Variant
	err = h.store.Transaction(ctx, func(tx store.Repositories) error {
		variant, err = ledger.New(tx.Stock()).Adjust(ctx, cmd.VariantID, cmd.Delta, note, actor(cmd.ActorID))
		return err
	})
	if err != nil {
		logger.Warn(ctx).Err(err).Uint("variant_id", cmd.VariantID).Int("delta", cmd.Delta).Msg("Stock adjustment rejected")
		return nil, err
	}

	logger.Info(ctx).
		Uint("variant_id", variant.ID).
		Int("delta", cmd.Delta).
		Int("stock", variant.Stock).
		Bool("is_active", variant.IsActive).
		Msg("Stock adjusted")
	return variant, nil
}
