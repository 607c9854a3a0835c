package domain

import (
	"time"

	"github.com/shopspring/decimal"

	orderdomain "github.com/tair/fashion-checkout/internal/order/domain"
)

// Status is the state of one payment attempt.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusRefunded  Status = "REFUNDED"
	// StatusCancelled is reached only when the customer switches payment
	// method. It is never propagated to the order.
	StatusCancelled Status = "CANCELLED"
)

var statusTransitions = map[Status][]Status{
	StatusPending:   {StatusCompleted, StatusFailed, StatusCancelled},
	StatusCompleted: {StatusRefunded},
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed, StatusRefunded, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether from -> to is an edge of the payment machine.
func CanTransition(from, to Status) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OrderPaymentStatus is the order payment status implied by a payment
// status. ok is false for CANCELLED, which leaves the order untouched.
func (s Status) OrderPaymentStatus() (status orderdomain.PaymentStatus, ok bool) {
	switch s {
	case StatusCompleted:
		return orderdomain.PaymentPaid, true
	case StatusFailed:
		return orderdomain.PaymentFailed, true
	case StatusRefunded:
		return orderdomain.PaymentRefunded, true
	case StatusPending:
		return orderdomain.PaymentUnpaid, true
	}
	return "", false
}

// Payment summarizes one payment attempt for an order.
type Payment struct {
	ID            uint                      `json:"id" gorm:"primaryKey"`
	OrderID       uint                      `json:"order_id" gorm:"not null;index"`
	PaymentMethod orderdomain.PaymentMethod `json:"payment_method" gorm:"size:16;not null"`
	Amount        decimal.Decimal           `json:"amount" gorm:"type:numeric(12,2);not null"`
	Status        Status                    `json:"status" gorm:"size:16;not null;index"`
	TransactionID string                    `json:"transaction_id,omitempty" gorm:"size:64;index"`
	BankCode      string                    `json:"bank_code,omitempty" gorm:"size:32"`
	ResponseCode  string                    `json:"response_code,omitempty" gorm:"size:8"`
	PaymentInfo   string                    `json:"payment_info,omitempty" gorm:"type:text"`
	CreatedAt     time.Time                 `json:"created_at"`
	UpdatedAt     time.Time                 `json:"updated_at"`
	CompletedAt   *time.Time                `json:"completed_at,omitempty"`
}

// TableName specifies the table name
func (Payment) TableName() string {
	return "payments"
}

// Statistics aggregates payments by status.
type Statistics struct {
	Total           int64           `json:"total_payments"`
	Completed       int64           `json:"completed_payments"`
	Pending         int64           `json:"pending_payments"`
	Failed          int64           `json:"failed_payments"`
	Refunded        int64           `json:"refunded_payments"`
	Cancelled       int64           `json:"cancelled_payments"`
	CompletedAmount decimal.Decimal `json:"completed_amount"`
}
