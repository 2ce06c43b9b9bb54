package services

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies engine failures so callers can tell "your
// request was invalid" from "try again later" without string matching.
type ErrorKind string

const (
	KindNotFound                 ErrorKind = "not_found"
	KindInvalidDates             ErrorKind = "invalid_dates"
	KindNotAvailable             ErrorKind = "not_available"
	KindInvalidStatus            ErrorKind = "invalid_status"
	KindInvalidCoupon            ErrorKind = "invalid_coupon"
	KindTooEarly                 ErrorKind = "too_early"
	KindAvailabilityUpdateFailed ErrorKind = "availability_update_failed"
	KindPaymentFailed            ErrorKind = "payment_failed"
	KindInternal                 ErrorKind = "internal"
)

// Error is the structured error every engine operation returns on
// failure. It is a value to inspect, never control flow to catch.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// HTTPStatus suggests the transport status code for the error kind.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidDates, KindInvalidCoupon, KindTooEarly:
		return http.StatusBadRequest
	case KindNotAvailable, KindInvalidStatus:
		return http.StatusConflict
	case KindAvailabilityUpdateFailed, KindPaymentFailed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func ErrNotFound(format string, args ...interface{}) *Error {
	return newError(KindNotFound, format, args...)
}

func ErrInvalidDates(format string, args ...interface{}) *Error {
	return newError(KindInvalidDates, format, args...)
}

func ErrNotAvailable(format string, args ...interface{}) *Error {
	return newError(KindNotAvailable, format, args...)
}

func ErrInvalidStatus(format string, args ...interface{}) *Error {
	return newError(KindInvalidStatus, format, args...)
}

func ErrInvalidCoupon(format string, args ...interface{}) *Error {
	return newError(KindInvalidCoupon, format, args...)
}

func ErrTooEarly(format string, args ...interface{}) *Error {
	return newError(KindTooEarly, format, args...)
}

func ErrAvailabilityUpdate(cause error) *Error {
	return &Error{Kind: KindAvailabilityUpdateFailed, Message: "failed to update availability ledger", cause: cause}
}

func ErrPaymentFailed(format string, args ...interface{}) *Error {
	return newError(KindPaymentFailed, format, args...)
}

// AsEngineError reports the structured error inside err, if any.
func AsEngineError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// wrapInternal passes engine errors through untouched and converts
// anything unexpected into a generic internal error.
func wrapInternal(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsEngineError(err); ok {
		return err
	}
	return &Error{Kind: KindInternal, Message: "internal error", cause: err}
}
