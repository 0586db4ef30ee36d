package connector

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteConnector implements the connector contract for SQLite. A SQLite
// database is a single file (or the in-memory sentinel), so there is no
// real namespace concept: GetSchemas returns the constant "main" and the
// schema argument is ignored everywhere. Stored procedures do not exist
// in SQLite: the list call answers with a valid empty result, while the
// detail call fails with Unsupported so callers can tell the difference.
type SQLiteConnector struct {
	baseConnector
	dbPath string
}

func NewSQLiteConnector() *SQLiteConnector {
	return &SQLiteConnector{
		baseConnector: baseConnector{
			desc: Descriptor{ID: DialectSQLite, DisplayName: "SQLite"},
		},
	}
}

// parseSQLitePath extracts the database path from a sqlite: DSN. Two
// disjoint forms are accepted: the in-memory sentinel (sqlite::memory:)
// and a filesystem path, absolute or relative (sqlite:data.db,
// sqlite:///var/lib/app.db).
func parseSQLitePath(dsn string) (string, bool) {
	rest, ok := strings.CutPrefix(dsn, "sqlite:")
	if !ok {
		return "", false
	}
	if rest == ":memory:" {
		return ":memory:", true
	}
	// sqlite://host is meaningless; a leading // only survives as part
	// of sqlite:///abs/path, which keeps the absolute path.
	rest = strings.TrimPrefix(rest, "//")
	if rest == "" {
		return "", false
	}
	return rest, true
}

func (c *SQLiteConnector) IsValidDSN(dsn string) bool {
	_, ok := parseSQLitePath(dsn)
	return ok
}

func (c *SQLiteConnector) SampleDSN() string {
	return "sqlite:./data.db"
}

func (c *SQLiteConnector) Connect(ctx context.Context, dsn, initScript string) error {
	path, ok := parseSQLitePath(dsn)
	if !ok {
		return errMalformedDSN("expected sqlite::memory: or sqlite:<path>", nil)
	}
	if err := c.beginConnect(); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		c.failConnect()
		return errConnection("open sqlite database", err)
	}

	// Each pool connection gets its own private copy of an in-memory
	// database; a single connection keeps the init script visible.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		c.failConnect()
		return errConnection("ping sqlite", err)
	}

	if initScript != "" {
		if _, err := db.ExecContext(ctx, initScript); err != nil {
			db.Close()
			c.failConnect()
			return errExecution("run init script", err)
		}
	}

	c.dbPath = path
	c.finishConnect(db)
	return nil
}

func (c *SQLiteConnector) GetSchemas(ctx context.Context) ([]string, error) {
	if _, err := c.handle(); err != nil {
		return nil, err
	}
	return []string{"main"}, nil
}

func (c *SQLiteConnector) GetTables(ctx context.Context, schema string) ([]string, error) {
	db, err := c.handle()
	if err != nil {
		return nil, err
	}
	return queryStrings(ctx, db, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name`)
}

func (c *SQLiteConnector) TableExists(ctx context.Context, table, schema string) (bool, error) {
	db, err := c.handle()
	if err != nil {
		return false, err
	}
	var count int
	err = db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sqlite_master
		WHERE type = 'table' AND name = ?`, table).Scan(&count)
	if err != nil {
		return false, errExecution("check table existence", err)
	}
	return count > 0, nil
}

// quoteIdent makes a table name safe for embedding in a PRAGMA, which
// cannot take placeholders.
func quoteIdent(name string) string {
	return strings.ReplaceAll(name, "'", "''")
}

type sqliteColumnInfo struct {
	name    string
	colType string
	notNull bool
	dflt    sql.NullString
	pk      int
}

func (c *SQLiteConnector) tableInfo(ctx context.Context, db *sql.DB, table string) ([]sqliteColumnInfo, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info('%s')", quoteIdent(table)))
	if err != nil {
		return nil, errExecution("read table info", err)
	}
	defer rows.Close()

	var cols []sqliteColumnInfo
	for rows.Next() {
		var cid int
		var info sqliteColumnInfo
		var notNull int
		if err := rows.Scan(&cid, &info.name, &info.colType, &notNull, &info.dflt, &info.pk); err != nil {
			return nil, errExecution("scan table info row", err)
		}
		info.notNull = notNull == 1
		cols = append(cols, info)
	}
	return cols, rows.Err()
}

func (c *SQLiteConnector) GetTableSchema(ctx context.Context, table, schema string) ([]TableColumn, error) {
	db, err := c.handle()
	if err != nil {
		return nil, err
	}

	info, err := c.tableInfo(ctx, db, table)
	if err != nil {
		return nil, err
	}
	if len(info) == 0 {
		return nil, errTableNotFound(table)
	}

	var cols []TableColumn
	for _, ci := range info {
		cols = append(cols, TableColumn{
			Name:     ci.name,
			DataType: ci.colType,
			// A primary key column never holds NULL even when table_info
			// reports notnull=0 for a rowid alias.
			Nullable: !ci.notNull && ci.pk == 0,
			Default:  ci.dflt.String,
		})
	}
	return cols, nil
}

func (c *SQLiteConnector) GetTableIndexes(ctx context.Context, table, schema string) ([]TableIndex, error) {
	db, err := c.handle()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_list('%s')", quoteIdent(table)))
	if err != nil {
		return nil, errExecution("read index list", err)
	}

	type indexEntry struct {
		name   string
		unique bool
		origin string
	}
	var entries []indexEntry
	for rows.Next() {
		var seq int
		var e indexEntry
		var unique, partial int
		if err := rows.Scan(&seq, &e.name, &unique, &e.origin, &partial); err != nil {
			rows.Close()
			return nil, errExecution("scan index list row", err)
		}
		e.unique = unique == 1
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, errExecution("scan index list", err)
	}
	rows.Close()

	out := []TableIndex{}
	hasPKIndex := false
	for _, e := range entries {
		columns, err := queryIndexColumns(ctx, db, e.name)
		if err != nil {
			return nil, err
		}
		primary := e.origin == "pk"
		if primary {
			hasPKIndex = true
		}
		out = append(out, TableIndex{Name: e.name, Columns: columns, Unique: e.unique, Primary: primary})
	}

	// An INTEGER PRIMARY KEY is a rowid alias with no backing index;
	// synthesize the PRIMARY record from table_info so the primary key
	// is never invisible.
	if !hasPKIndex {
		info, err := c.tableInfo(ctx, db, table)
		if err != nil {
			return nil, err
		}
		var pkCols []string
		for rank := 1; ; rank++ {
			found := false
			for _, ci := range info {
				if ci.pk == rank {
					pkCols = append(pkCols, ci.name)
					found = true
				}
			}
			if !found {
				break
			}
		}
		if len(pkCols) > 0 {
			out = append(out, TableIndex{Name: "PRIMARY", Columns: pkCols, Unique: true, Primary: true})
		}
	}

	return out, nil
}

func queryIndexColumns(ctx context.Context, db *sql.DB, index string) ([]string, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_info('%s')", quoteIdent(index)))
	if err != nil {
		return nil, errExecution("read index columns", err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var seqno, cid int
		var name sql.NullString
		if err := rows.Scan(&seqno, &cid, &name); err != nil {
			return nil, errExecution("scan index column row", err)
		}
		cols = append(cols, name.String)
	}
	return cols, rows.Err()
}

func (c *SQLiteConnector) GetStoredProcedures(ctx context.Context, schema string) ([]string, error) {
	if _, err := c.handle(); err != nil {
		return nil, err
	}
	// Valid-but-empty: SQLite has no server-side routines.
	return []string{}, nil
}

func (c *SQLiteConnector) GetStoredProcedureDetail(ctx context.Context, name, schema string) (*StoredProcedure, error) {
	if _, err := c.handle(); err != nil {
		return nil, err
	}
	return nil, errUnsupported("sqlite has no stored procedures")
}

func (c *SQLiteConnector) ExecuteSQL(ctx context.Context, statement string) (*SQLResult, error) {
	db, err := c.handle()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, statement)
	if err != nil {
		return nil, errExecution("execute statement", err)
	}
	defer rows.Close()

	result, err := scanResult(rows)
	if err != nil {
		return nil, errExecution("scan result rows", err)
	}
	return result, nil
}
