package decart

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
)

// ErrorKind classifies why a submission failed.
type ErrorKind int

const (
	KindUnexpected ErrorKind = iota
	KindTimeout
	KindNetwork
	KindRejected
)

func (k ErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindNetwork:
		return "network_failure"
	case KindRejected:
		return "remote_rejected"
	default:
		return "unexpected"
	}
}

// SubmitError is returned by Client.Transform for every failed call.
type SubmitError struct {
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *SubmitError) Error() string {
	switch e.Kind {
	case KindTimeout:
		return "request timed out, the video processing is taking too long"
	case KindRejected:
		return fmt.Sprintf("api request failed: %d", e.StatusCode)
	case KindNetwork:
		return fmt.Sprintf("network error: %v", e.Err)
	default:
		return fmt.Sprintf("an error occurred: %v", e.Err)
	}
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the per-call bound was exceeded.
func (e *SubmitError) Timeout() bool {
	return e.Kind == KindTimeout
}

// KindOf extracts the ErrorKind of err, or KindUnexpected when err is not a
// SubmitError.
func KindOf(err error) ErrorKind {
	var serr *SubmitError
	if errors.As(err, &serr) {
		return serr.Kind
	}
	return KindUnexpected
}

// classify maps a transport error onto a SubmitError.
func classify(err error) *SubmitError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &SubmitError{Kind: KindTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &SubmitError{Kind: KindTimeout, Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return &SubmitError{Kind: KindUnexpected, Err: err}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return &SubmitError{Kind: KindNetwork, Err: err}
	}
	return &SubmitError{Kind: KindUnexpected, Err: err}
}
