package baseline

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a reconciliation error for abort-vs-continue decisions.
type ErrorKind string

const (
	// ErrorKindIdentity indicates the account identity could not be resolved.
	// Fatal: the account id seeds the log-sink name and canonical prefix.
	ErrorKindIdentity ErrorKind = "identity"

	// ErrorKindList indicates the bucket enumeration failed. Fatal.
	ErrorKindList ErrorKind = "list"

	// ErrorKindSinkCreate indicates the log-sink bucket could not be created
	// or verified. Fatal: without a working sink, logging classification for
	// the whole fleet would misreport against a nonexistent target.
	ErrorKindSinkCreate ErrorKind = "sink_create"

	// ErrorKindRead indicates a per-bucket read failed. Recovered: recorded
	// against that bucket's dimension, the run continues.
	ErrorKindRead ErrorKind = "read"

	// ErrorKindWrite indicates a per-bucket write failed. Recovered: each
	// write is a single full-document replace, so there is nothing to roll
	// back.
	ErrorKindWrite ErrorKind = "write"

	// ErrorKindNotFound indicates a requested bucket is not in the worklist:
	// it does not exist, is excluded, or is the log sink itself.
	ErrorKindNotFound ErrorKind = "not_found"
)

// Error is a classified reconciliation error with bucket context.
type Error struct {
	// Kind is the error classification.
	Kind ErrorKind `json:"kind"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// Bucket is the bucket being processed, if applicable.
	Bucket string `json:"bucket,omitempty"`

	// Err is the underlying error.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	if e.Bucket != "" {
		msg = fmt.Sprintf("[%s] %s (bucket=%s)", e.Kind, e.Message, e.Bucket)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements error equality checking for errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewIdentityError creates a fatal identity-resolution error.
func NewIdentityError(err error) *Error {
	return &Error{Kind: ErrorKindIdentity, Message: "failed to resolve account identity", Err: err}
}

// NewListError creates a fatal bucket-enumeration error.
func NewListError(err error) *Error {
	return &Error{Kind: ErrorKindList, Message: "failed to list buckets", Err: err}
}

// NewSinkCreateError creates a fatal log-sink bootstrap error.
func NewSinkCreateError(sink string, err error) *Error {
	return &Error{Kind: ErrorKindSinkCreate, Message: "failed to ensure log sink", Bucket: sink, Err: err}
}

// NewReadError creates a recovered per-bucket read error.
func NewReadError(bucket, what string, err error) *Error {
	return &Error{Kind: ErrorKindRead, Message: fmt.Sprintf("failed to read %s", what), Bucket: bucket, Err: err}
}

// NewWriteError creates a recovered per-bucket write error.
func NewWriteError(bucket, what string, err error) *Error {
	return &Error{Kind: ErrorKindWrite, Message: fmt.Sprintf("failed to write %s", what), Bucket: bucket, Err: err}
}

// NewNotFoundError creates an error for a bucket filter that matches nothing.
func NewNotFoundError(bucket, reason string) *Error {
	return &Error{Kind: ErrorKindNotFound, Message: reason, Bucket: bucket}
}

// IsFatal returns true if the error must abort the run before the worklist
// is processed.
func IsFatal(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == ErrorKindIdentity || e.Kind == ErrorKindList || e.Kind == ErrorKindSinkCreate
	}
	return false
}

// IsNotFound returns true if the error reports a bucket missing from the
// worklist.
func IsNotFound(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == ErrorKindNotFound
	}
	return false
}
