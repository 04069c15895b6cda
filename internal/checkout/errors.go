package checkout

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Gateway implementations.
var (
	ErrSessionNotFound = errors.New("checkout session not found")
	ErrPaymentGateway  = errors.New("payment gateway unavailable")
)

type Kind string

const (
	KindUnauthorized    Kind = "unauthorized"
	KindForbidden       Kind = "forbidden"
	KindInvalidArgument Kind = "invalid_argument"
	KindSessionNotFound Kind = "session_not_found"
	KindPaymentGateway  Kind = "payment_gateway_error"
	KindAccountNotFound Kind = "account_not_found"
	KindInternal        Kind = "internal"
)

// Error is the structured failure surfaced to callers of Service.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf reports the kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the caller-facing message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "internal error"
}
