package assess

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures at the orchestration boundary so transports
// can map them to status codes without inspecting error text.
type ErrorKind string

const (
	// KindValidation means a required request field was missing or invalid.
	// No model call was made and no session was touched.
	KindValidation ErrorKind = "validation"
	// KindUpstream means the vision service call failed.
	KindUpstream ErrorKind = "upstream"
	// KindTimeout means the vision service call exceeded its deadline.
	KindTimeout ErrorKind = "timeout"
	// KindTransport means the bridge subprocess failed: it could not start,
	// exited unexpectedly, or produced output that was not parseable. This
	// is infrastructure failure, not model failure.
	KindTransport ErrorKind = "transport"
	// KindInternal covers everything else (store failures and the like).
	KindInternal ErrorKind = "internal"
)

// Error is the structured error surfaced by the orchestrator and the bridge.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds a structured error of the given kind.
func NewError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// ValidationError reports a missing required request field.
func ValidationError(field string) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf("missing required field: %s", field)}
}

// KindOf extracts the kind from an error chain, defaulting to internal.
func KindOf(err error) ErrorKind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// MessageOf extracts the human-readable message from an error chain.
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}
