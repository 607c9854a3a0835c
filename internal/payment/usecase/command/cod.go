package command

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	orderdomain "github.com/tair/fashion-checkout/internal/order/domain"
	"github.com/tair/fashion-checkout/internal/payment/domain"
	"github.com/tair/fashion-checkout/internal/store"
	"github.com/tair/fashion-checkout/kafka"
	"github.com/tair/fashion-checkout/pkg/apperror"
	"github.com/tair/fashion-checkout/pkg/logger"
)

// ConfirmCODCommand records that cash was collected on delivery.
type ConfirmCODCommand struct {
	PaymentID uint
	Note      string
}

// FailCODCommand records that cash collection failed.
type FailCODCommand struct {
	PaymentID uint
	Reason    string
}

// CODHandler settles cash-on-delivery payments by hand.
type CODHandler struct {
	store     store.Store
	publisher kafka.EventPublisher
	now       func() time.Time
}

func NewCODHandler(s store.Store, publisher kafka.EventPublisher) *CODHandler {
	return &CODHandler{store: s, publisher: publisher, now: time.Now}
}

func (h *CODHandler) Confirm(ctx context.Context, cmd ConfirmCODCommand) (*domain.Payment, error) {
	note := cmd.Note
	if note == "" {
		note = "Cash collected on delivery"
	}
	return h.settle(ctx, cmd.PaymentID, domain.StatusCompleted, domain.TxSuccess, domain.TypeCODConfirm, note)
}

func (h *CODHandler) Fail(ctx context.Context, cmd FailCODCommand) (*domain.Payment, error) {
	if strings.TrimSpace(cmd.Reason) == "" {
		return nil, apperror.Validation("reason is required")
	}
	return h.settle(ctx, cmd.PaymentID, domain.StatusFailed, domain.TxFailed, domain.TypeCODFail, cmd.Reason)
}

func (h *CODHandler) settle(ctx context.Context, paymentID uint, to domain.Status, txStatus domain.TransactionStatus, txType domain.TransactionType, note string) (*domain.Payment, error) {
	if paymentID == 0 {
		return nil, apperror.Validation("payment_id is required")
	}

	var (
		payment   *domain.Payment
		orderCode string
	)
	err := h.store.Transaction(ctx, func(tx store.Repositories) error {
		var err error
		payment, err = tx.Payments().FindByIDForUpdate(ctx, paymentID)
		if err != nil {
			return err
		}
		if payment.PaymentMethod != orderdomain.MethodCOD {
			return apperror.InvalidState("payment %d is not a cash-on-delivery payment", paymentID)
		}
		if !domain.CanTransition(payment.Status, to) {
			return apperror.InvalidState("payment %d is %s and cannot become %s", paymentID, payment.Status, to)
		}

		order, err := tx.Orders().FindByID(ctx, payment.OrderID)
		if err != nil {
			return err
		}
		orderCode = order.Code

		now := h.now()
		reference := "COD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
		if err := tx.Payments().CreateTransaction(ctx, &domain.PaymentTransaction{
			OrderID:         order.ID,
			TransactionID:   reference,
			TxnRef:          order.Code,
			Amount:          payment.Amount,
			PaymentMethod:   orderdomain.MethodCOD,
			Status:          txStatus,
			TransactionType: txType,
			Note:            note,
			CreatedAt:       now,
		}); err != nil {
			return err
		}

		payment.Status = to
		payment.TransactionID = reference
		payment.PaymentInfo = note
		if to == domain.StatusCompleted {
			payment.CompletedAt = &now
		}
		if err := tx.Payments().Update(ctx, payment); err != nil {
			return err
		}
		_, err = propagate(ctx, tx, payment, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx).
		Uint("payment_id", payment.ID).
		Str("order_code", orderCode).
		Str("status", string(payment.Status)).
		Msg("COD payment settled")
	publishPayment(ctx, h.publisher, payment, orderCode, domain.StatusPending, string(txType))
	return payment, nil
}
