package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	orderdomain "github.com/tair/fashion-checkout/internal/order/domain"
)

// TransactionType is the entry point that produced a transaction row.
type TransactionType string

const (
	TypeReturnCallback TransactionType = "RETURN_CALLBACK"
	TypeIPN            TransactionType = "IPN"
	TypeCODConfirm     TransactionType = "COD_CONFIRM"
	TypeCODFail        TransactionType = "COD_FAIL"
)

// TransactionStatus is the gateway-level result of one round-trip.
type TransactionStatus string

const (
	TxPending   TransactionStatus = "PENDING"
	TxSuccess   TransactionStatus = "SUCCESS"
	TxFailed    TransactionStatus = "FAILED"
	TxCancelled TransactionStatus = "CANCELLED"
	TxRefunded  TransactionStatus = "REFUNDED"
)

// ResponseCodeSuccess is the gateway's approval code.
const ResponseCodeSuccess = "00"

// TransactionStatusFromResponseCode maps a gateway response code. Codes in
// the 24 family mean the customer abandoned the payment page.
func TransactionStatusFromResponseCode(code string) TransactionStatus {
	switch {
	case code == ResponseCodeSuccess:
		return TxSuccess
	case strings.HasPrefix(code, "24"):
		return TxCancelled
	default:
		return TxFailed
	}
}

// PaymentStatus is the summary status derived from a transaction status.
func (s TransactionStatus) PaymentStatus() Status {
	switch s {
	case TxSuccess:
		return StatusCompleted
	case TxRefunded:
		return StatusRefunded
	case TxPending:
		return StatusPending
	default:
		return StatusFailed
	}
}

// PaymentTransaction is an immutable log row of one gateway round-trip or
// manual COD settlement.
type PaymentTransaction struct {
	ID              uint                      `json:"id" gorm:"primaryKey"`
	OrderID         uint                      `json:"order_id" gorm:"not null;index"`
	TransactionID   string                    `json:"transaction_id,omitempty" gorm:"size:64;index"`
	TxnRef          string                    `json:"txn_ref" gorm:"size:64;index"`
	Amount          decimal.Decimal           `json:"amount" gorm:"type:numeric(12,2);not null"`
	PaymentMethod   orderdomain.PaymentMethod `json:"payment_method" gorm:"size:16;not null"`
	Status          TransactionStatus         `json:"status" gorm:"size:16;not null"`
	ResponseCode    string                    `json:"response_code,omitempty" gorm:"size:8"`
	BankCode        string                    `json:"bank_code,omitempty" gorm:"size:32"`
	BankTranNo      string                    `json:"bank_tran_no,omitempty" gorm:"size:64"`
	CardType        string                    `json:"card_type,omitempty" gorm:"size:32"`
	PayDate         string                    `json:"pay_date,omitempty" gorm:"size:14"`
	OrderInfo       string                    `json:"order_info,omitempty" gorm:"size:255"`
	TransactionType TransactionType           `json:"transaction_type" gorm:"size:32;not null"`
	IPAddress       string                    `json:"ip_address,omitempty" gorm:"size:64"`
	SecureHash      string                    `json:"-" gorm:"size:256"`
	RawData         string                    `json:"raw_data,omitempty" gorm:"type:text"`
	Note            string                    `json:"note,omitempty" gorm:"size:500"`
	CreatedAt       time.Time                 `json:"created_at"`
}

// TableName specifies the table name
func (PaymentTransaction) TableName() string {
	return "payment_transactions"
}
