package connector

import (
	"errors"
	"fmt"
)

// ErrKind categorises a connector error without exposing driver-specific codes.
type ErrKind int

const (
	ErrKindUnknown ErrKind = iota
	ErrKindMalformedDSN
	ErrKindNoMatchingConnector
	ErrKindConnectionFailed
	ErrKindAuthFailed
	ErrKindNotInitialized
	ErrKindNotConnected
	ErrKindTableNotFound
	ErrKindProcedureNotFound
	ErrKindUnsupported
	ErrKindReadOnlyViolation
	ErrKindExecutionError
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindMalformedDSN:
		return "malformed_dsn"
	case ErrKindNoMatchingConnector:
		return "no_matching_connector"
	case ErrKindConnectionFailed:
		return "connection_failed"
	case ErrKindAuthFailed:
		return "auth_failed"
	case ErrKindNotInitialized:
		return "not_initialized"
	case ErrKindNotConnected:
		return "not_connected"
	case ErrKindTableNotFound:
		return "table_not_found"
	case ErrKindProcedureNotFound:
		return "procedure_not_found"
	case ErrKindUnsupported:
		return "unsupported"
	case ErrKindReadOnlyViolation:
		return "read_only_violation"
	case ErrKindExecutionError:
		return "execution_error"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by the connector layer.
// Connectors translate driver-native errors into Error before returning.
type Error struct {
	Kind    ErrKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// --- Constructor helpers used by connectors ---

func errMalformedDSN(msg string, cause error) *Error {
	return &Error{Kind: ErrKindMalformedDSN, Message: msg, Cause: cause}
}

func errConnection(msg string, cause error) *Error {
	return &Error{Kind: ErrKindConnectionFailed, Message: msg, Cause: cause}
}

func errNotConnected(dialect DialectID) *Error {
	return &Error{Kind: ErrKindNotConnected, Message: fmt.Sprintf("%s connector is not connected", dialect)}
}

func errTableNotFound(table string) *Error {
	return &Error{Kind: ErrKindTableNotFound, Message: fmt.Sprintf("table %q not found", table)}
}

func errProcedureNotFound(name string) *Error {
	return &Error{Kind: ErrKindProcedureNotFound, Message: fmt.Sprintf("routine %q not found", name)}
}

func errUnsupported(msg string) *Error {
	return &Error{Kind: ErrKindUnsupported, Message: msg}
}

func errExecution(msg string, cause error) *Error {
	return &Error{Kind: ErrKindExecutionError, Message: msg, Cause: cause}
}

// --- Public predicates for callers ---

// KindOf returns the error kind, or ErrKindUnknown for foreign errors.
func KindOf(err error) ErrKind {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Kind
	}
	return ErrKindUnknown
}

// IsUnsupported reports whether err signals a capability the dialect lacks.
func IsUnsupported(err error) bool {
	return KindOf(err) == ErrKindUnsupported
}

// IsNotInitialized reports whether err came from using the manager before connect.
func IsNotInitialized(err error) bool {
	return KindOf(err) == ErrKindNotInitialized
}

// IsReadOnlyViolation reports whether err is a statement-safety rejection.
func IsReadOnlyViolation(err error) bool {
	return KindOf(err) == ErrKindReadOnlyViolation
}

// IsNotFound reports whether err is a table or routine introspection miss.
func IsNotFound(err error) bool {
	k := KindOf(err)
	return k == ErrKindTableNotFound || k == ErrKindProcedureNotFound
}
