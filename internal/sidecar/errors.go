package sidecar

import (
	"errors"
	"fmt"
)

var (
	// ErrUnreachable means the sidecar did not answer or answered with a
	// non-200 status during the connectivity probe.
	ErrUnreachable = errors.New("sidecar unreachable")
	// ErrMalformedResponse means /node/version did not return the expected JSON.
	ErrMalformedResponse = errors.New("malformed node/version response")
	// ErrNoChainAttached means the sidecar is up but reports chain "None".
	ErrNoChainAttached = errors.New("sidecar is not attached to a chain")
	// ErrQueryFailed means the staking-payouts query failed.
	ErrQueryFailed = errors.New("staking payouts query failed")
)

// RequestError carries the URL and status of a failed sidecar call.
// errors.Is matches both Kind and the underlying cause.
type RequestError struct {
	Kind       error
	URL        string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	msg := fmt.Sprintf("%v: %s", e.Kind, e.URL)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RequestError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
