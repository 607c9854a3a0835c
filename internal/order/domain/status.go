package domain

// Status is the fulfilment state of an order.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusPacking   Status = "PACKING"
	StatusShipping  Status = "SHIPPING"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
	StatusRefunded  Status = "REFUNDED"
)

// PaymentStatus is the settlement state of an order.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "UNPAID"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// PaymentMethod is how the customer pays.
type PaymentMethod string

const (
	MethodCOD   PaymentMethod = "COD"
	MethodVNPay PaymentMethod = "VNPAY"
)

func (m PaymentMethod) IsValid() bool {
	return m == MethodCOD || m == MethodVNPay
}

var statusTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled, StatusRefunded},
	StatusConfirmed: {StatusPacking, StatusCancelled, StatusRefunded},
	StatusPacking:   {StatusShipping, StatusCancelled, StatusRefunded},
	StatusShipping:  {StatusCompleted, StatusCancelled, StatusRefunded},
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPacking, StatusShipping,
		StatusCompleted, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusRefunded
}

// CanTransition reports whether from -> to is an edge of the order status machine.
func CanTransition(from, to Status) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// RestoresStock reports whether entering s puts the order's items back on the shelf.
func (s Status) RestoresStock() bool {
	return s == StatusCancelled || s == StatusRefunded
}

// PaymentStatusOnTransition is the cross-transition table coupling the two
// machines: the payment status an order takes when it enters status to.
//
//	COMPLETED            any     -> PAID
//	CANCELLED, REFUNDED  UNPAID  -> FAILED
//	CANCELLED, REFUNDED  PAID    -> REFUNDED
//	otherwise                       unchanged
func PaymentStatusOnTransition(to Status, current PaymentStatus) PaymentStatus {
	switch to {
	case StatusCompleted:
		return PaymentPaid
	case StatusCancelled, StatusRefunded:
		switch current {
		case PaymentUnpaid:
			return PaymentFailed
		case PaymentPaid:
			return PaymentRefunded
		}
	}
	return current
}
