package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind buckets backend failures the way the UI distinguishes them.
type Kind string

const (
	// KindUnauthorized indicates a missing, invalid or expired token.
	KindUnauthorized Kind = "UNAUTHORIZED"
	// KindNotFound indicates the referenced resource does not exist.
	KindNotFound Kind = "PRODUCT_NOT_FOUND"
	// KindInsufficientStock indicates the requested quantity exceeds stock.
	KindInsufficientStock Kind = "INSUFFICIENT_STOCK"
	// KindServer indicates a backend-side failure.
	KindServer Kind = "SERVER_ERROR"
	// KindNetwork indicates the backend was unreachable.
	KindNetwork Kind = "NETWORK_ERROR"
	// KindGeneric covers everything else.
	KindGeneric Kind = "GENERIC_ERROR"
)

// Error is a classified backend failure.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("backend error (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend error: %s", e.Message)
}

// Unwrap returns the underlying transport error, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

func classify(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusConflict:
		return KindInsufficientStock
	case status >= http.StatusInternalServerError:
		return KindServer
	default:
		return KindGeneric
	}
}

// KindOf extracts the classification from an error chain.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindGeneric
}

// MessageOf returns the backend-provided message, or fallback when absent.
func MessageOf(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// IsUnauthorized reports whether the error chain carries a 401 classification.
func IsUnauthorized(err error) bool {
	return KindOf(err) == KindUnauthorized
}
