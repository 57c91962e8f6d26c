// Package apperr defines the error kinds surfaced by the analysis service and
// how each kind maps onto an HTTP response.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure for callers and for HTTP status mapping.
type Kind string

const (
	KindConfiguration Kind = "configuration"
	KindRetrieval     Kind = "retrieval"
	KindDecode        Kind = "decode"
	KindEmptyInput    Kind = "empty_input"
	KindInvalidInput  Kind = "invalid_input"
	KindInternal      Kind = "internal"
)

// Error is a classified failure. Msg is safe to return to API clients;
// Err carries the underlying cause for logs.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	default:
		return e.Msg
	}
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(kind Kind, op, msg string, err error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}

// Configuration reports missing or invalid process configuration, such as absent credentials.
func Configuration(op, msg string) *Error { return newErr(KindConfiguration, op, msg, nil) }

// Retrieval reports a failed or timed out download of the remote recording.
func Retrieval(op, msg string, err error) *Error { return newErr(KindRetrieval, op, msg, err) }

// Decode reports a malformed or unsupported audio payload.
func Decode(op, msg string, err error) *Error { return newErr(KindDecode, op, msg, err) }

// EmptyInput reports a decoded signal with no samples.
func EmptyInput(op string) *Error { return newErr(KindEmptyInput, op, "Audio file is empty", nil) }

// InvalidInput reports a malformed request.
func InvalidInput(op, msg string) *Error { return newErr(KindInvalidInput, op, msg, nil) }

// Internal wraps an unexpected failure. The cause is never returned to clients.
func Internal(op string, err error) *Error { return newErr(KindInternal, op, "Analysis failed", err) }

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps a kind to the response status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindRetrieval, KindDecode, KindEmptyInput, KindInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the client-facing message for err. Unclassified errors
// and internal errors get a generic message.
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) || e.Kind == KindInternal {
		return "Analysis failed"
	}
	return e.Msg
}
