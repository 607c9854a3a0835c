package command

import (
	"context"
	"strings"

	"github.com/tair/fashion-checkout/internal/inventory/domain"
	"github.com/tair/fashion-checkout/internal/inventory/ledger"
	"github.com/tair/fashion-checkout/internal/store"
	"github.com/tair/fashion-checkout/pkg/apperror"
	"github.com/tair/fashion-checkout/pkg/logger"
)

const maxNoteLength = 500

// RestockCommand represents received goods for one variant
type RestockCommand struct {
	VariantID uint
	Quantity  int
	Note      string
	ActorID   uint
}

// RestockHandler handles restock command
type RestockHandler struct {
	store store.Store
}

// NewRestockHandler creates a new restock handler
func NewRestockHandler(s store.Store) *RestockHandler {
	return &RestockHandler{store: s}
}

// Handle executes the restock command. Restocking never reactivates a
// variant that the zero-stock cascade switched off.
func (h *RestockHandler) Handle(ctx context.Context, cmd RestockCommand) (*domain.Variant, error) {
	if cmd.VariantID == 0 {
		return nil, apperror.Validation("variant_id is required")
	}
	if cmd.Quantity <= 0 {
		return nil, apperror.Validation("quantity must be greater than 0")
	}
	note, err := cleanNote(cmd.Note)
	if err != nil {
		return nil, err
	}

	var variant *domain.Variant
	err = h.store.Transaction(ctx, func(tx store.Repositories) error {
		variant, err = ledger.New(tx.Stock()).Restock(ctx, cmd.VariantID, cmd.Quantity, note, actor(cmd.ActorID))
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx).
		Uint("variant_id", variant.ID).
		Int("quantity", cmd.Quantity).
		Int("stock", variant.Stock).
		Msg("Variant restocked")
	return variant, nil
}

func cleanNote(note string) (string, error) {
	note = strings.TrimSpace(note)
	if len([]rune(note)) > maxNoteLength {
		return "", apperror.Validation("note must be at most %d characters", maxNoteLength)
	}
	return note, nil
}

func actor(id uint) *uint {
	if id == 0 {
		return nil
	}
	return &id
}
