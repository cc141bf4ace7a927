package eagle

import (
	"errors"
	"fmt"
)

// ErrorKind classifies store failures for retry and recovery decisions.
type ErrorKind string

const (
	// KindUnavailable covers outages: network errors, 5xx, rate limiting.
	// Systemic, retried with backoff, fatal to the run when exhausted.
	KindUnavailable ErrorKind = "unavailable"
	// KindNotFound means the item no longer exists, presumably already
	// removed. Never retried, recovered by skipping.
	KindNotFound ErrorKind = "not_found"
	// KindPermission means the store refused the operation. Never
	// retried, recovered by skipping.
	KindPermission ErrorKind = "permission"
	// KindBadRequest covers remaining client-side failures.
	KindBadRequest ErrorKind = "bad_request"
)

// StoreError is a structured failure from the library store.
type StoreError struct {
	Kind    ErrorKind
	Status  int // HTTP status, 0 for transport errors
	Message string
}

func (e *StoreError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("store error (%s, HTTP %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("store error (%s): %s", e.Kind, e.Message)
}

func kindOf(err error) (ErrorKind, bool) {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return "", false
}

// IsUnavailable reports whether err is a systemic store outage.
func IsUnavailable(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindUnavailable
}

// IsNotFound reports whether err means the item is gone from the store.
func IsNotFound(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindNotFound
}

// IsPermission reports whether err is a store permission refusal.
func IsPermission(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindPermission
}

// kindFromStatus maps an HTTP status to an error kind.
func kindFromStatus(status int) ErrorKind {
	switch {
	case status >= 500 || status == 429:
		return KindUnavailable
	case status == 404 || status == 410:
		return KindNotFound
	case status == 401 || status == 403:
		return KindPermission
	default:
		return KindBadRequest
	}
}
