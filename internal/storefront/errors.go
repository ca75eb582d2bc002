package storefront

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind classifies failures crossing the API boundary.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindNetwork covers unreachable hosts, timeouts and gateway failures.
	KindNetwork
	// KindDecode means the response body could not be parsed.
	KindDecode
	// KindRejected means the API answered but refused the request.
	KindRejected
	// KindAlreadyInFlight is produced locally when an identical action is outstanding.
	KindAlreadyInFlight
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindDecode:
		return "decode"
	case KindRejected:
		return "rejected"
	case KindAlreadyInFlight:
		return "already in flight"
	default:
		return "unknown"
	}
}

// Error is the uniform failure shape returned by the client and dispatcher.
type Error struct {
	Kind   ErrorKind
	Op     string // fetch, mutate, dispatch
	Path   string
	Status int    // HTTP status when the API answered
	Detail string // detail text from the API error body
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Kind)
	if e.Status > 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the ErrorKind of err. Errors that did not originate here are
// classified by inspecting context and net errors.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var sfErr *Error
	if errors.As(err, &sfErr) {
		return sfErr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindNetwork
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindNetwork
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

func networkError(op, path string, err error) *Error {
	return &Error{Kind: KindNetwork, Op: op, Path: path, Err: err}
}

func statusKind(status int) ErrorKind {
	switch status {
	case 502, 503, 504:
		return KindNetwork
	}
	return KindRejected
}
