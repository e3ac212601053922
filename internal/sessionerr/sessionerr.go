// Package sessionerr defines the error kind taxonomy shared by the
// session manager, agent session and streaming adapter (spec §7), plus
// the HTTP status mapping the server layer uses to build the JSON
// error envelope of spec §6.
package sessionerr

import (
	"errors"
	"fmt"
)

// Kind is one of the fallible-operation error kinds named in spec §7.
type Kind string

const (
	KindNotFound         Kind = "not_found"
	KindInvalidRequest   Kind = "invalid_request"
	KindAdmissionDenied  Kind = "admission_denied"
	KindCreationDisabled Kind = "creation_disabled"
	KindAgentBuildFailed Kind = "agent_build_failed"
	KindExecutionError   Kind = "execution_error"
	KindEventStreamError Kind = "event_stream_error"
	KindSerialization    Kind = "serialization_error"
)

// Error is a typed error carrying one of the Kinds above plus an
// optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error of the given kind with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error of the given kind wrapping cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// NotFound, InvalidRequest, AdmissionDenied, CreationDisabled,
// AgentBuildFailed and ExecutionError are convenience constructors for
// the kinds the session layer returns most often.
func NotFound(message string) *Error         { return New(KindNotFound, message) }
func InvalidRequest(message string) *Error   { return New(KindInvalidRequest, message) }
func AdmissionDenied(message string) *Error  { return New(KindAdmissionDenied, message) }
func CreationDisabled(message string) *Error { return New(KindCreationDisabled, message) }
func AgentBuildFailed(cause error) *Error {
	return Wrap(KindAgentBuildFailed, "failed to construct agent", cause)
}
func ExecutionError(cause error) *Error {
	return Wrap(KindExecutionError, "agent execution failed", cause)
}

// As reports whether err is (or wraps) a *Error, returning it if so.
func As(err error) (*Error, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// HTTPStatus maps a Kind to the HTTP status spec §6/§7 specifies.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindNotFound:
		return 404
	case KindInvalidRequest:
		return 400
	case KindAdmissionDenied, KindCreationDisabled, KindAgentBuildFailed, KindExecutionError:
		return 500
	default:
		return 500
	}
}
