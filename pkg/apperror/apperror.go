// Package apperror is the error taxonomy shared by handlers and services.
// Messages carried by an Error are safe to show to the client; the wrapped
// cause is for server-side logs only.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind string

const (
	KindMissingFields      Kind = "MISSING_FIELDS"
	KindConsentRequired    Kind = "CONSENT_REQUIRED"
	KindValidation         Kind = "VALIDATION_FAILED"
	KindTokenInvalid       Kind = "TOKEN_INVALID"
	KindDuplicateEmail     Kind = "DUPLICATE_EMAIL"
	KindConfiguration      Kind = "CONFIGURATION_ERROR"
	KindStorageUnavailable Kind = "STORAGE_UNAVAILABLE"
	KindStorage            Kind = "STORAGE_FAULT"
	KindMethodNotAllowed   Kind = "METHOD_NOT_ALLOWED"
	KindRateLimited        Kind = "RATE_LIMITED"
	KindUnauthorized       Kind = "UNAUTHORIZED"
	KindBadRequest         Kind = "BAD_REQUEST"
	KindBodyTooLarge       Kind = "BODY_TOO_LARGE"
)

// Client-facing messages.
const (
	MsgMissingFields    = "Missing required fields"
	MsgInvalidToken     = "Invalid or expired security token. Please refresh the page."
	MsgDuplicateEmail   = "This email has already been registered."
	MsgConfiguration    = "Server Configuration Error"
	MsgTokenIssue       = "Failed to generate security token"
	MsgInternal         = "Internal Server Error"
	MsgMethodNotAllowed = "Method Not Allowed"
	MsgRateLimited      = "Too many requests. Please try again later."
	MsgInvalidBody      = "Invalid request body"
	MsgBodyTooLarge     = "Request body too large"
)

// Error is an application error with a client-safe message.
type Error struct {
	Kind    Kind
	Message string
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

// Status maps the kind to an HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindMissingFields, KindConsentRequired, KindValidation, KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindTokenInvalid:
		return http.StatusForbidden
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case KindDuplicateEmail:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindBodyTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// New constructs an Error without a cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an Error that keeps err as its cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func MissingFields() *Error { return New(KindMissingFields, MsgMissingFields) }

func Validation(message string) *Error { return New(KindValidation, message) }

func ConsentRequired(message string) *Error { return New(KindConsentRequired, message) }

func TokenInvalid() *Error { return New(KindTokenInvalid, MsgInvalidToken) }

func DuplicateEmail(err error) *Error { return Wrap(KindDuplicateEmail, MsgDuplicateEmail, err) }

func Configuration(err error) *Error { return Wrap(KindConfiguration, MsgConfiguration, err) }

func Storage(err error) *Error { return Wrap(KindStorage, MsgInternal, err) }

// From converts any error to an *Error. Unknown errors become storage faults
// with the generic message.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Storage(err)
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
