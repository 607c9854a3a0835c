package command

import (
	"context"
	"time"

	"github.com/tair/fashion-checkout/internal/payment/domain"
	"github.com/tair/fashion-checkout/internal/store"
	"github.com/tair/fashion-checkout/pkg/logger"
	"github.com/tair/fashion-checkout/pkg/metrics"
)

const syncBatchSize = 200

// SyncSummary reports one sweep.
type SyncSummary struct {
	Total   int `json:"total_payments"`
	Synced  int `json:"total_synced"`
	Skipped int `json:"total_skipped"`
	Errors  int `json:"total_errors"`
}

// SyncStatusHandler repairs Order.paymentStatus drift from Payment rows.
type SyncStatusHandler struct {
	store store.Store
	now   func() time.Time
}

func NewSyncStatusHandler(s store.Store) *SyncStatusHandler {
	return &SyncStatusHandler{store: s, now: time.Now}
}

// HandleAll visits every payment. For an order with several payments only
// the newest non-cancelled one is authoritative; the rest count as skipped.
// A failing row is counted and the sweep moves on.
func (h *SyncStatusHandler) HandleAll(ctx context.Context) (*SyncSummary, error) {
	summary := &SyncSummary{}
	authoritative := make(map[uint]uint)
	var afterID uint

	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		batch, err := h.store.Payments().ListAfter(ctx, afterID, syncBatchSize)
		if err != nil {
			return summary, err
		}
		if len(batch) == 0 {
			break
		}

		for i := range batch {
			payment := &batch[i]
			afterID = payment.ID
			summary.Total++

			changed, err := h.syncRow(ctx, payment, authoritative)
			switch {
			case err != nil:
				summary.Errors++
				metrics.ReconciliationRows.WithLabelValues("error").Inc()
				logger.Warn(ctx).
					Err(err).
					Uint("payment_id", payment.ID).
					Uint("order_id", payment.OrderID).
					Msg("Failed to sync payment")
			case changed:
				summary.Synced++
				metrics.ReconciliationRows.WithLabelValues("synced").Inc()
			default:
				summary.Skipped++
				metrics.ReconciliationRows.WithLabelValues("skipped").Inc()
			}
		}
	}

	logger.Info(ctx).
		Int("total", summary.Total).
		Int("synced", summary.Synced).
		Int("skipped", summary.Skipped).
		Int("errors", summary.Errors).
		Msg("Payment and order status sync completed")
	return summary, nil
}

func (h *SyncStatusHandler) syncRow(ctx context.Context, payment *domain.Payment, authoritative map[uint]uint) (bool, error) {
	if payment.Status == domain.StatusCancelled {
		return false, nil
	}

	latestID, seen := authoritative[payment.OrderID]
	if !seen {
		latest, err := h.latest(ctx, payment.OrderID)
		if err != nil {
			return false, err
		}
		if latest != nil {
			latestID = latest.ID
		}
		authoritative[payment.OrderID] = latestID
	}
	if latestID != payment.ID {
		return false, nil
	}

	var changed bool
	err := h.store.Transaction(ctx, func(tx store.Repositories) error {
		locked, err := tx.Payments().FindByIDForUpdate(ctx, payment.ID)
		if err != nil {
			return err
		}
		changed, err = propagate(ctx, tx, locked, h.now())
		return err
	})
	return changed, err
}

// HandleOrder runs the same repair for a single order.
func (h *SyncStatusHandler) HandleOrder(ctx context.Context, orderID uint) (bool, error) {
	latest, err := h.latest(ctx, orderID)
	if err != nil || latest == nil {
		return false, err
	}

	var changed bool
	err = h.store.Transaction(ctx, func(tx store.Repositories) error {
		locked, err := tx.Payments().FindByIDForUpdate(ctx, latest.ID)
		if err != nil {
			return err
		}
		changed, err = propagate(ctx, tx, locked, h.now())
		return err
	})
	if err == nil && changed {
		metrics.ReconciliationRows.WithLabelValues("synced").Inc()
	}
	return changed, err
}

// latest returns the newest non-cancelled payment of an order, or nil.
func (h *SyncStatusHandler) latest(ctx context.Context, orderID uint) (*domain.Payment, error) {
	payments, err := h.store.Payments().FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	for i := range payments {
		if payments[i].Status != domain.StatusCancelled {
			return &payments[i], nil
		}
	}
	return nil, nil
}
