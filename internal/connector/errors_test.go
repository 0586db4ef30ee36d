package connector

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := errConnection("ping postgres", cause)

	// The connector kind survives further wrapping with %w.
	wrapped := fmt.Errorf("connect postgres: %w", err)
	if KindOf(wrapped) != ErrKindConnectionFailed {
		t.Errorf("KindOf(wrapped) = %v, want connection_failed", KindOf(wrapped))
	}
	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is lost the driver cause through Unwrap")
	}
}

func TestKindOfForeignError(t *testing.T) {
	if KindOf(errors.New("plain")) != ErrKindUnknown {
		t.Error("KindOf(plain error) != unknown")
	}
	if KindOf(nil) != ErrKindUnknown {
		t.Error("KindOf(nil) != unknown")
	}
}

func TestPredicates(t *testing.T) {
	if !IsNotFound(errTableNotFound("t")) || !IsNotFound(errProcedureNotFound("p")) {
		t.Error("IsNotFound rejects a not-found kind")
	}
	if IsNotFound(errUnsupported("x")) {
		t.Error("IsNotFound accepts unsupported")
	}
	if !IsUnsupported(errUnsupported("x")) {
		t.Error("IsUnsupported rejects unsupported kind")
	}
}

func TestErrorMessageIncludesKind(t *testing.T) {
	msg := errMalformedDSN("missing host", nil).Error()
	if want := "[malformed_dsn] missing host"; msg != want {
		t.Errorf("Error() = %q, want %q", msg, want)
	}
}
