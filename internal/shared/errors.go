package shared

import (
	"errors"
	"fmt"
)

// Kind classifies failures reported to callers.
type Kind string

const (
	KindValidation Kind = "validation"
	KindAuth       Kind = "auth"
	KindNotFound   Kind = "not_found"
	KindProtected  Kind = "protected_record"
	KindForbidden  Kind = "forbidden"
	KindInternal   Kind = "internal"
)

// Error is a structured failure carrying a kind and a user-facing message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error of the same kind, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	// ErrValidation indicates malformed, missing or duplicate input.
	ErrValidation = &Error{Kind: KindValidation, Message: "validation failed"}
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = &Error{Kind: KindAuth, Message: "Invalid credentials"}
	// ErrUnauthorized indicates a request without a valid session.
	ErrUnauthorized = &Error{Kind: KindAuth, Message: "unauthorized"}
	// ErrNotFound indicates resource not found.
	ErrNotFound = &Error{Kind: KindNotFound, Message: "not found"}
	// ErrProtectedRecord guards the primary admin account.
	ErrProtectedRecord = &Error{Kind: KindProtected, Message: "record is protected"}
	// ErrForbidden indicates the actor lacks the required permission.
	ErrForbidden = &Error{Kind: KindForbidden, Message: "forbidden"}
)

// Validationf builds a validation failure with a formatted message.
func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a not-found failure with a formatted message.
func NotFoundf(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Protectedf builds a protected-record failure with a formatted message.
func Protectedf(format string, args ...any) error {
	return &Error{Kind: KindProtected, Message: fmt.Sprintf(format, args...)}
}

// KindOf reports the failure kind of err; unknown errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// UserSafeMessage returns a message that can be shown to end users.
func UserSafeMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "An internal error occurred"
}
