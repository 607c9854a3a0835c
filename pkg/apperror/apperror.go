// Package apperror defines the error taxonomy shared by every use case and
// the mapping of that taxonomy onto HTTP status codes.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for callers and transports.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindForbidden
	KindInvalidState
	KindValidation
	KindInsufficientStock
	KindInvalidCoupon
	KindCouponMinimumNotMet
	KindSignatureInvalid
	KindAmountMismatch
	KindOrderNotFound
)

var kindNames = map[Kind]string{
	KindInternal:            "internal",
	KindNotFound:            "not_found",
	KindForbidden:           "forbidden",
	KindInvalidState:        "invalid_state",
	KindValidation:          "validation",
	KindInsufficientStock:   "insufficient_stock",
	KindInvalidCoupon:       "invalid_coupon",
	KindCouponMinimumNotMet: "coupon_minimum_not_met",
	KindSignatureInvalid:    "signature_invalid",
	KindAmountMismatch:      "amount_mismatch",
	KindOrderNotFound:       "order_not_found",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Classified lets domain error types report their kind without wrapping.
type Classified interface {
	error
	Kind() Kind
}

func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotFound(format string, args ...interface{}) *Error {
	return New(KindNotFound, format, args...)
}

func Forbidden(format string, args ...interface{}) *Error {
	return New(KindForbidden, format, args...)
}

func InvalidState(format string, args ...interface{}) *Error {
	return New(KindInvalidState, format, args...)
}

func Validation(format string, args ...interface{}) *Error {
	return New(KindValidation, format, args...)
}

func InvalidCoupon(format string, args ...interface{}) *Error {
	return New(KindInvalidCoupon, format, args...)
}

func CouponMinimumNotMet(format string, args ...interface{}) *Error {
	return New(KindCouponMinimumNotMet, format, args...)
}

// WithField attaches structured detail surfaced to API clients.
func (e *Error) WithField(key string, value interface{}) *Error {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	e.Fields[key] = value
	return e
}

// KindOf returns the kind of the first classified error in the chain.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	var classified Classified
	if errors.As(err, &classified) {
		return classified.Kind()
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps an error onto the status code returned to API clients.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound, KindOrderNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindInvalidState, KindInsufficientStock:
		return http.StatusConflict
	case KindValidation, KindInvalidCoupon, KindCouponMinimumNotMet,
		KindSignatureInvalid, KindAmountMismatch:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the message safe to show to a client. Internal errors
// collapse to a generic text.
func PublicMessage(err error) string {
	if KindOf(err) == KindInternal {
		return "internal server error"
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	var classified Classified
	if errors.As(err, &classified) {
		return classified.Error()
	}
	return err.Error()
}

// PublicFields returns structured detail carried by the error, if any.
func PublicFields(err error) map[string]interface{} {
	var appErr *Error
	if errors.As(err, &appErr) && len(appErr.Fields) > 0 {
		return appErr.Fields
	}
	var detailed interface{ Details() map[string]interface{} }
	if errors.As(err, &detailed) {
		return detailed.Details()
	}
	return nil
}
