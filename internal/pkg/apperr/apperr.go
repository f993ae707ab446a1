package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Kind is the closed set of failure categories surfaced to callers.
type Kind string

const (
	KindNotFound              Kind = "not_found"
	KindForbidden             Kind = "forbidden"
	KindValidation            Kind = "validation"
	KindConflict              Kind = "conflict"
	KindPreconditionFailed    Kind = "precondition_failed"
	KindInvalidState          Kind = "invalid_state"
	KindInvalidTransition     Kind = "invalid_transition"
	KindInvalidOrExpiredToken Kind = "invalid_or_expired_token"
	KindDecryption            Kind = "decryption"
	KindPersistence           Kind = "persistence"
	KindInternal              Kind = "internal"
)

// Error is a typed failure with a stable code and a message safe to show to end users.
type Error struct {
	Kind      Kind
	Code      string
	Message   string
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s:%s] %s (%v)", e.Kind, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Kind, e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on code so copies produced by Wrap still compare equal to their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap attaches an underlying cause to a copy of the sentinel.
func Wrap(sentinel *Error, err error) *Error {
	cp := *sentinel
	cp.Err = err
	return &cp
}

var (
	ErrPersistence = New(KindPersistence, "PERSISTENCE_ERROR", "Storage is temporarily unavailable")
	ErrTimeout     = &Error{Kind: KindPersistence, Code: "TIMEOUT", Message: "Request timed out, please retry", Retryable: true}
	ErrInternal    = New(KindInternal, "INTERNAL_ERROR", "Internal server error")
)

// Persistence wraps a store failure. Deadline and cancellation errors are marked retryable.
func Persistence(err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Wrap(ErrTimeout, err)
	}
	return Wrap(ErrPersistence, err)
}

// As extracts the *Error from err, if any.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

// HTTPStatus maps a kind to the transport status code used by the API boundary.
func HTTPStatus(e *Error) int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict, KindInvalidState, KindInvalidTransition:
		return http.StatusConflict
	case KindPreconditionFailed:
		return http.StatusPreconditionFailed
	case KindInvalidOrExpiredToken:
		return http.StatusGone
	case KindPersistence:
		if e.Retryable {
			return http.StatusServiceUnavailable
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
