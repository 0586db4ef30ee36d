package connector

import (
	"context"
	"database/sql"
)

// State tracks a connector instance through its connection lifecycle.
// Disconnected is terminal: reconnecting requires a fresh instance.
type State int

const (
	StateUninitialized State = iota
	StateConnecting
	StateConnected
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	default:
		return "uninitialized"
	}
}

// Connector is the uniform introspection-and-execution contract every
// dialect implements. All layers above this package talk only to this
// interface and never import a vendor driver directly.
//
// Introspection methods that take a schema substitute the dialect's
// default namespace when schema is empty (public for PostgreSQL, dbo
// for SQL Server, the active database for MySQL/MariaDB, the connecting
// user for Oracle, "main" for SQLite).
//
// Introspection calls that issue several catalogue queries are not
// transactionally consistent; concurrent DDL can produce a torn read.
type Connector interface {
	// Descriptor returns the connector's stable identity.
	Descriptor() Descriptor

	// IsValidDSN classifies a connection string syntactically. It never
	// returns an error and must be cheap; the registry uses it for dispatch.
	IsValidDSN(dsn string) bool

	// SampleDSN returns a canonical, valid example DSN for help text.
	SampleDSN() string

	// Connect parses the DSN, opens the driver pool, and optionally runs
	// initScript as a single batch before the connector counts as connected.
	Connect(ctx context.Context, dsn, initScript string) error

	// Disconnect closes the pool. Idempotent: a second call is a no-op.
	Disconnect(ctx context.Context) error

	// State reports the current lifecycle state.
	State() State

	// GetSchemas enumerates namespaces, excluding system schemas where
	// the backend distinguishes them.
	GetSchemas(ctx context.Context) ([]string, error)

	// GetTables lists table names in the schema, ordered by name.
	GetTables(ctx context.Context, schema string) ([]string, error)

	// TableExists reports whether the table exists in the schema.
	TableExists(ctx context.Context, table, schema string) (bool, error)

	// GetTableSchema returns the table's columns in ordinal position order.
	GetTableSchema(ctx context.Context, table, schema string) ([]TableColumn, error)

	// GetTableIndexes returns one record per index, columns in key order.
	GetTableIndexes(ctx context.Context, table, schema string) ([]TableIndex, error)

	// GetStoredProcedures lists routine names in the schema.
	GetStoredProcedures(ctx context.Context, schema string) ([]string, error)

	// GetStoredProcedureDetail returns one routine's signature and,
	// best-effort, its definition source.
	GetStoredProcedureDetail(ctx context.Context, name, schema string) (*StoredProcedure, error)

	// ExecuteSQL runs exactly one statement. It does not apply the
	// statement safety policy (the manager does) and never splits or
	// rewrites multi-statement input.
	ExecuteSQL(ctx context.Context, statement string) (*SQLResult, error)
}

// scanResult drains rows into a SQLResult, converting []byte values to
// strings so text columns survive JSON serialization.
func scanResult(rows *sql.Rows) (*SQLResult, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &SQLResult{Columns: columns, Rows: []map[string]any{}}

	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}

		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		result.Rows = append(result.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// queryStrings runs a query expected to yield a single string column.
func queryStrings(ctx context.Context, db *sql.DB, query string, args ...any) ([]string, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
