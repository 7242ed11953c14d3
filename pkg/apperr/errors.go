// Package apperr defines the closed error taxonomy shared by every HTTP
// handler and background job in the core.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the closed set of application-domain error categories. HTTP
// status codes are derived from Kind exactly once, at the transport
// boundary.
type Kind int

const (
	// KindUnknown is never constructed directly; it is the zero value used
	// to detect a missing classification.
	KindUnknown Kind = iota
	KindNotFound
	KindInvalidInput
	KindUnauthenticated
	KindRateLimited
	KindRiskReauth
	KindDependencyUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidInput:
		return "invalid_input"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindRateLimited:
		return "rate_limited"
	case KindRiskReauth:
		return "risk_reauth"
	case KindDependencyUnavailable:
		return "dependency_unavailable"
	default:
		return "unknown"
	}
}

// HTTPStatus maps a Kind to the status code spec.md §7 assigns it.
func HTTPStatus(k Kind) int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidInput:
		return http.StatusUnprocessableEntity
	case KindUnauthenticated, KindRiskReauth:
		return http.StatusUnauthorized
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindDependencyUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is an application-domain error carrying a stable Kind and a
// client-safe detail message. Internal causes are wrapped but never
// rendered to the client (spec.md §7 "5xx responses ... never leak
// internal messages").
type Error struct {
	Kind   Kind
	Detail string
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error { return e.Cause }

// New constructs a classified error with no underlying cause.
func New(k Kind, detail string) *Error {
	return &Error{Kind: k, Detail: detail}
}

// Wrap constructs a classified error that wraps an underlying cause. The
// cause is retained for logs but Detail is what the client sees.
func Wrap(k Kind, detail string, cause error) *Error {
	return &Error{Kind: k, Detail: detail, Cause: cause}
}

func NotFound(detail string) *Error            { return New(KindNotFound, detail) }
func InvalidInput(detail string) *Error        { return New(KindInvalidInput, detail) }
func Unauthenticated(detail string) *Error     { return New(KindUnauthenticated, detail) }
func RateLimited(detail string) *Error         { return New(KindRateLimited, detail) }
func RiskReauth(detail string) *Error          { return New(KindRiskReauth, detail) }
func DependencyUnavailable(detail string) *Error {
	return New(KindDependencyUnavailable, detail)
}

// KindOf extracts the Kind from err, defaulting to KindUnknown when err is
// not (or does not wrap) an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
