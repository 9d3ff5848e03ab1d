package newsapi

import (
	"errors"
	"fmt"
)

// Failure kinds. Every error produced by this package matches exactly one of them
// with errors.Is.
var (
	// ErrTransport wraps a network-layer failure, forwarded verbatim.
	ErrTransport = errors.New("transport error")
	// ErrNoData means the transport succeeded but the body was empty.
	ErrNoData = errors.New("no data")
	// ErrCouldNotParse means the body did not match the expected shape.
	ErrCouldNotParse = errors.New("could not parse")
	// ErrInvalidURL means the request URL could not be composed.
	ErrInvalidURL = errors.New("invalid url")
	// ErrInvalidParams means an endpoint's fields failed validation.
	ErrInvalidParams = errors.New("invalid params")
)

// Error reports a failed operation. It unwraps to both its Kind sentinel and the
// underlying cause, so errors.Is(err, ErrTransport) and
// errors.Is(err, context.DeadlineExceeded) can hold for the same value.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	prefix := "newsapi"
	if e.Op != "" {
		prefix += " " + e.Op
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", prefix, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", prefix, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(op string, kind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// withOp fills in the operation name on package errors that were created without one.
func withOp(op string, err error) error {
	var e *Error
	if errors.As(err, &e) && e.Op == "" {
		cp := *e
		cp.Op = op
		return &cp
	}
	return err
}

// KindOf returns the failure kind sentinel for err, or nil if err is not from this package.
func KindOf(err error) error {
	for _, kind := range []error{ErrTransport, ErrNoData, ErrCouldNotParse, ErrInvalidURL, ErrInvalidParams} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
