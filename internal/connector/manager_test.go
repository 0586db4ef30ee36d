package connector

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestManagerBeforeConnect(t *testing.T) {
	m := NewManager(NewProductionRegistry(), testLogger())

	if _, err := m.Current(); !IsNotInitialized(err) {
		t.Errorf("Current() kind = %v, want not_initialized", KindOf(err))
	}
	if _, err := m.Execute(context.Background(), "SELECT 1"); !IsNotInitialized(err) {
		t.Errorf("Execute() kind = %v, want not_initialized", KindOf(err))
	}
	if m.Connected() {
		t.Error("Connected() = true before connect")
	}
}

func TestManagerNoMatchingConnector(t *testing.T) {
	m := NewManager(NewProductionRegistry(), testLogger())

	err := m.ConnectWithDSN(context.Background(), "ftp://host/path", "")
	if KindOf(err) != ErrKindNoMatchingConnector {
		t.Fatalf("ConnectWithDSN(ftp://) kind = %v, want no_matching_connector", KindOf(err))
	}
	if m.Connected() {
		t.Error("Connected() = true after failed dispatch")
	}
}

func TestManagerExecuteGating(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewProductionRegistry(), testLogger())

	err := m.ConnectWithDSN(ctx, "sqlite::memory:", demoSchema)
	if err != nil {
		t.Fatalf("ConnectWithDSN error: %v", err)
	}
	defer m.Disconnect(ctx)

	if !m.Connected() {
		t.Fatal("Connected() = false after connect")
	}
	c, err := m.Current()
	if err != nil {
		t.Fatalf("Current() error: %v", err)
	}
	if c.Descriptor().ID != DialectSQLite {
		t.Errorf("Current dialect = %s, want sqlite", c.Descriptor().ID)
	}

	result, err := m.Execute(ctx, "SELECT count(*) AS n FROM t")
	if err != nil {
		t.Fatalf("Execute(SELECT) error: %v", err)
	}
	if len(result.Rows) != 1 {
		t.Errorf("len(Rows) = %d, want 1", len(result.Rows))
	}

	// The policy gates before the connector sees the statement; the table
	// must survive a rejected DROP.
	if _, err := m.Execute(ctx, "DROP TABLE t"); !IsReadOnlyViolation(err) {
		t.Fatalf("Execute(DROP) kind = %v, want read_only_violation", KindOf(err))
	}
	if exists, err := c.TableExists(ctx, "t", ""); err != nil || !exists {
		t.Errorf("table t gone after rejected DROP: exists=%v err=%v", exists, err)
	}

	// The sqlite extra keyword is live on the active policy.
	if _, err := m.Execute(ctx, "PRAGMA table_info('t')"); err != nil {
		t.Errorf("Execute(PRAGMA) error: %v, want allowed on sqlite", err)
	}
}

func TestManagerSingleConnection(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewProductionRegistry(), testLogger())

	if err := m.ConnectWithDSN(ctx, "sqlite::memory:", ""); err != nil {
		t.Fatalf("ConnectWithDSN error: %v", err)
	}
	if err := m.ConnectWithDSN(ctx, "sqlite::memory:", ""); err == nil {
		t.Error("second ConnectWithDSN succeeded, want error")
	}

	if err := m.Disconnect(ctx); err != nil {
		t.Fatalf("Disconnect error: %v", err)
	}
	if err := m.Disconnect(ctx); err != nil {
		t.Errorf("second Disconnect error: %v, want no-op nil", err)
	}
	if m.Connected() {
		t.Error("Connected() = true after disconnect")
	}
	if _, err := m.Current(); !IsNotInitialized(err) {
		t.Errorf("Current() after disconnect kind = %v, want not_initialized", KindOf(err))
	}
}
