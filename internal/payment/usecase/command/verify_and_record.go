package command

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	orderdomain "github.com/tair/fashion-checkout/internal/order/domain"
	"github.com/tair/fashion-checkout/internal/payment/domain"
	"github.com/tair/fashion-checkout/internal/payment/gateway/vnpay"
	"github.com/tair/fashion-checkout/internal/store"
	"github.com/tair/fashion-checkout/kafka"
	"github.com/tair/fashion-checkout/pkg/apperror"
	"github.com/tair/fashion-checkout/pkg/logger"
	"github.com/tair/fashion-checkout/pkg/metrics"
)

// Outcome is the result of one inbound gateway call.
type Outcome int

const (
	// OutcomeApproved means the payment was approved and applied.
	OutcomeApproved Outcome = iota
	// OutcomeDeclined means a gateway failure code was recorded.
	OutcomeDeclined
	OutcomeAlreadyConfirmed
	OutcomeInvalidSignature
	OutcomeOrderNotFound
	OutcomeInvalidAmount
	OutcomeInvalidAmountFormat
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApproved:
		return "approved"
	case OutcomeDeclined:
		return "declined"
	case OutcomeAlreadyConfirmed:
		return "already_confirmed"
	case OutcomeInvalidSignature:
		return "invalid_signature"
	case OutcomeOrderNotFound:
		return "order_not_found"
	case OutcomeInvalidAmount:
		return "invalid_amount"
	case OutcomeInvalidAmountFormat:
		return "invalid_amount_format"
	default:
		return "error"
	}
}

// Kind is the error kind of a rejected call, KindInternal for accepted ones.
func (o Outcome) Kind() apperror.Kind {
	switch o {
	case OutcomeInvalidSignature:
		return apperror.KindSignatureInvalid
	case OutcomeOrderNotFound:
		return apperror.KindOrderNotFound
	case OutcomeInvalidAmount, OutcomeInvalidAmountFormat:
		return apperror.KindAmountMismatch
	}
	return apperror.KindInternal
}

// Ack is the IPN response body in the gateway's vocabulary.
type Ack struct {
	RspCode string `json:"RspCode"`
	Message string `json:"Message"`
}

// Ack maps an outcome to the gateway's documented response codes. A declined
// payment is still acknowledged with 00: the notification was processed.
func (o Outcome) Ack() Ack {
	switch o {
	case OutcomeApproved, OutcomeDeclined:
		return Ack{RspCode: "00", Message: "Confirm Success"}
	case OutcomeAlreadyConfirmed:
		return Ack{RspCode: "02", Message: "Order already confirmed"}
	case OutcomeInvalidSignature:
		return Ack{RspCode: "97", Message: "Invalid Checksum"}
	case OutcomeOrderNotFound:
		return Ack{RspCode: "01", Message: "Order not Found"}
	case OutcomeInvalidAmount:
		return Ack{RspCode: "04", Message: "Invalid Amount"}
	case OutcomeInvalidAmountFormat:
		return Ack{RspCode: "99", Message: "Invalid Amount Format"}
	default:
		return Ack{RspCode: "99", Message: "Unknown error"}
	}
}

// VerifyAndRecordCommand carries one inbound gateway call.
type VerifyAndRecordCommand struct {
	Params vnpay.Params
	// Entry is TypeReturnCallback or TypeIPN.
	Entry    domain.TransactionType
	ClientIP string
}

// VerifyResult describes what happened to the call.
type VerifyResult struct {
	Outcome     Outcome
	OrderCode   string
	Order       *orderdomain.Order
	Transaction *domain.PaymentTransaction
	Payment     *domain.Payment
}

// VerifyAndRecordHandler is the single verification and reconciliation path
// behind both the browser return callback and the server notification.
type VerifyAndRecordHandler struct {
	store     store.Store
	gateway   *vnpay.Client
	publisher kafka.EventPublisher
	now       func() time.Time
}

func NewVerifyAndRecordHandler(s store.Store, gateway *vnpay.Client, publisher kafka.EventPublisher) *VerifyAndRecordHandler {
	return &VerifyAndRecordHandler{store: s, gateway: gateway, publisher: publisher, now: time.Now}
}

// Handle verifies the signature, checks the order and, for notifications,
// the amount. Nothing is written until those checks pass. Then it logs a
// transaction row and applies the result unless the order is already paid.
func (h *VerifyAndRecordHandler) Handle(ctx context.Context, cmd VerifyAndRecordCommand) (*VerifyResult, error) {
	callback := vnpay.ParseCallback(cmd.Params)
	result := &VerifyResult{OrderCode: callback.TxnRef}

	if !h.gateway.Verify(cmd.Params) {
		result.Outcome = OutcomeInvalidSignature
		logger.Warn(ctx).
			Str("entry", string(cmd.Entry)).
			Str("order_code", callback.TxnRef).
			Str("secure_hash", logger.Mask(callback.SecureHash)).
			Msg("Gateway signature mismatch")
		h.observe(cmd.Entry, result.Outcome)
		return result, nil
	}

	var previousPayment domain.Status
	err := h.store.Transaction(ctx, func(tx store.Repositories) error {
		order, err := tx.Orders().FindByCodeForUpdate(ctx, callback.TxnRef)
		if err != nil {
			if apperror.Is(err, apperror.KindNotFound) {
				result.Outcome = OutcomeOrderNotFound
				return nil
			}
			return err
		}
		result.Order = order

		if cmd.Entry == domain.TypeIPN {
			outcome, err := checkAmount(callback, order.GrandTotal)
			if err != nil {
				return err
			}
			if outcome != OutcomeApproved {
				result.Outcome = outcome
				return nil
			}
		}

		txn, err := h.recordTransaction(ctx, tx, order, callback, cmd)
		if err != nil {
			return err
		}
		result.Transaction = txn

		if order.IsPaid() {
			result.Outcome = OutcomeAlreadyConfirmed
			return nil
		}

		now := h.now()
		if callback.Succeeded() {
			result.Outcome = OutcomeApproved
			order.PaymentStatus = orderdomain.PaymentPaid
			order.PaymentTransactionID = callback.TransactionNo
			order.PaymentTime = &now
			if order.Status == orderdomain.StatusPending {
				order.Status = orderdomain.StatusConfirmed
			} else {
				logger.Warn(ctx).
					Str("order_code", order.Code).
					Str("status", string(order.Status)).
					Msg("Payment approved for an order that is no longer pending")
			}
		} else {
			result.Outcome = OutcomeDeclined
			order.PaymentStatus = orderdomain.PaymentFailed
		}
		if err := tx.Orders().Update(ctx, order); err != nil {
			return err
		}

		payment, previous, err := derivePayment(ctx, tx, order, txn, now)
		if err != nil {
			return err
		}
		result.Payment = payment
		previousPayment = previous
		return nil
	})
	if err != nil {
		result.Outcome = OutcomeError
		logger.Error(ctx).
			Err(err).
			Str("entry", string(cmd.Entry)).
			Str("order_code", callback.TxnRef).
			Msg("Failed to process gateway call")
		h.observe(cmd.Entry, result.Outcome)
		return result, err
	}

	h.observe(cmd.Entry, result.Outcome)
	h.logOutcome(ctx, cmd, callback, result)
	if result.Payment != nil {
		publishPayment(ctx, h.publisher, result.Payment, result.OrderCode, previousPayment, string(cmd.Entry))
	}
	return result, nil
}

func checkAmount(callback vnpay.Callback, grandTotal decimal.Decimal) (Outcome, error) {
	received, err := callback.AmountMinor()
	if err != nil {
		return OutcomeInvalidAmountFormat, nil
	}
	expected, err := vnpay.MinorUnits(grandTotal)
	if err != nil {
		return OutcomeError, err
	}
	if received != expected {
		return OutcomeInvalidAmount, nil
	}
	return OutcomeApproved, nil
}

func (h *VerifyAndRecordHandler) recordTransaction(ctx context.Context, tx store.Repositories, order *orderdomain.Order, callback vnpay.Callback, cmd VerifyAndRecordCommand) (*domain.PaymentTransaction, error) {
	raw, err := json.Marshal(callback.Raw)
	if err != nil {
		return nil, err
	}

	txn := &domain.PaymentTransaction{
		OrderID:         order.ID,
		TransactionID:   callback.TransactionNo,
		TxnRef:          callback.TxnRef,
		Amount:          callback.MajorAmount(),
		PaymentMethod:   orderdomain.MethodVNPay,
		Status:          domain.TransactionStatusFromResponseCode(callback.ResponseCode),
		ResponseCode:    callback.ResponseCode,
		BankCode:        callback.BankCode,
		BankTranNo:      callback.BankTranNo,
		CardType:        callback.CardType,
		PayDate:         callback.PayDate,
		OrderInfo:       callback.OrderInfo,
		TransactionType: cmd.Entry,
		IPAddress:       cmd.ClientIP,
		SecureHash:      callback.SecureHash,
		RawData:         string(raw),
		CreatedAt:       h.now(),
	}
	if err := tx.Payments().CreateTransaction(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// derivePayment creates the Payment summary for txn once per order and
// gateway transaction id. An existing row for the pair is left unchanged.
func derivePayment(ctx context.Context, tx store.Repositories, order *orderdomain.Order, txn *domain.PaymentTransaction, now time.Time) (*domain.Payment, domain.Status, error) {
	transactionID := gatewayTransactionID(txn.TransactionID)
	if transactionID != "" {
		existing, err := tx.Payments().FindByOrderAndTransactionID(ctx, order.ID, transactionID)
		if err == nil {
			return nil, existing.Status, nil
		}
		if !apperror.Is(err, apperror.KindNotFound) {
			return nil, "", err
		}
	}

	var previous domain.Status
	if payments, err := tx.Payments().FindByOrderID(ctx, order.ID); err != nil {
		return nil, "", err
	} else if len(payments) > 0 {
		previous = payments[0].Status
	}

	payment := &domain.Payment{
		OrderID:       order.ID,
		PaymentMethod: txn.PaymentMethod,
		Amount:        txn.Amount,
		Status:        txn.Status.PaymentStatus(),
		TransactionID: transactionID,
		BankCode:      txn.BankCode,
		ResponseCode:  txn.ResponseCode,
		PaymentInfo:   txn.OrderInfo,
	}
	if payment.Status == domain.StatusCompleted {
		payment.CompletedAt = &now
	}
	if err := tx.Payments().Create(ctx, payment); err != nil {
		return nil, "", err
	}
	return payment, previous, nil
}

// gatewayTransactionID drops the "0" the gateway reports for attempts it
// never assigned a transaction number, such as abandoned or declined ones.
func gatewayTransactionID(id string) string {
	if id == "0" {
		return ""
	}
	return id
}

func (h *VerifyAndRecordHandler) observe(entry domain.TransactionType, outcome Outcome) {
	metrics.GatewayResults.WithLabelValues(string(entry), outcome.String()).Inc()
}

func (h *VerifyAndRecordHandler) logOutcome(ctx context.Context, cmd VerifyAndRecordCommand, callback vnpay.Callback, result *VerifyResult) {
	event := logger.Info(ctx)
	switch result.Outcome {
	case OutcomeDeclined:
		event = logger.Warn(ctx)
	case OutcomeOrderNotFound, OutcomeInvalidAmount, OutcomeInvalidAmountFormat:
		event = logger.Warn(ctx).Str("amount", callback.Amount)
	}
	event.
		Str("entry", string(cmd.Entry)).
		Str("order_code", callback.TxnRef).
		Str("response_code", callback.ResponseCode).
		Str("transaction_no", callback.TransactionNo).
		Str("outcome", result.Outcome.String()).
		Msg("Gateway call processed")
}

// ErrVerification is the only detail the browser ever sees for a rejected
// return callback.
var ErrVerification = errors.New("payment could not be verified")
