package connector

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// MySQLConnector implements the connector contract for MySQL and MariaDB.
// The two dialects share wire protocol and catalogue layout, so one
// implementation serves both; only the descriptor and DSN scheme differ.
// MySQL's "schema" is its "database": the default namespace is whatever
// database the DSN connected to.
type MySQLConnector struct {
	baseConnector
	schemes  []string
	database string
}

func NewMySQLConnector() *MySQLConnector {
	return &MySQLConnector{
		baseConnector: baseConnector{
			desc: Descriptor{ID: DialectMySQL, DisplayName: "MySQL"},
		},
		schemes: []string{"mysql"},
	}
}

func NewMariaDBConnector() *MySQLConnector {
	return &MySQLConnector{
		baseConnector: baseConnector{
			desc: Descriptor{ID: DialectMariaDB, DisplayName: "MariaDB"},
		},
		schemes: []string{"mariadb"},
	}
}

func (c *MySQLConnector) IsValidDSN(dsn string) bool {
	return validURLDSN(dsn, c.schemes)
}

func (c *MySQLConnector) SampleDSN() string {
	return fmt.Sprintf("%s://user:password@localhost:3306/mydb", c.schemes[0])
}

// driverDSN converts the URL form into go-sql-driver's native
// user:pass@tcp(host:port)/db format via mysql.Config, carrying over the
// recognized query parameters (tls, timeout) and ignoring the rest.
func (c *MySQLConnector) driverDSN(dsn string) (*mysql.Config, error) {
	parsed, err := parseURLDSN(dsn, c.schemes, 3306)
	if err != nil {
		return nil, err
	}

	cfg := mysql.NewConfig()
	cfg.User = parsed.User
	cfg.Passwd = parsed.Password
	cfg.Net = "tcp"
	cfg.Addr = parsed.addr()
	cfg.DBName = parsed.Database

	if v := parsed.Params.Get("tls"); v != "" {
		cfg.TLSConfig = v
	}
	if v := parsed.Params.Get("timeout"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, errMalformedDSN(fmt.Sprintf("invalid timeout %q", v), err)
		}
		cfg.Timeout = d
	}

	return cfg, nil
}

func (c *MySQLConnector) Connect(ctx context.Context, dsn, initScript string) error {
	cfg, err := c.driverDSN(dsn)
	if err != nil {
		return err
	}
	if err := c.beginConnect(); err != nil {
		return err
	}

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		c.failConnect()
		return errConnection("open mysql pool", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		c.failConnect()
		return classifyMySQLErr(err)
	}

	if initScript != "" {
		if _, err := db.ExecContext(ctx, initScript); err != nil {
			db.Close()
			c.failConnect()
			return errExecution("run init script", err)
		}
	}

	c.database = cfg.DBName
	c.finishConnect(db)
	return nil
}

// classifyMySQLErr maps driver errors onto the connector error kinds.
// 1045 is ER_ACCESS_DENIED_ERROR.
func classifyMySQLErr(err error) error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1045 {
		return &Error{Kind: ErrKindAuthFailed, Message: "mysql authentication failed", Cause: err}
	}
	return errConnection("ping mysql", err)
}

func (c *MySQLConnector) defaultSchema(schema string) string {
	if schema == "" {
		return c.database
	}
	return schema
}

func (c *MySQLConnector) GetSchemas(ctx context.Context) ([]string, error) {
	db, err := c.handle()
	if err != nil {
		return nil, err
	}
	return queryStrings(ctx, db, `
		SELECT schema_name FROM information_schema.schemata
		WHERE schema_name NOT IN ('mysql', 'information_schema', 'performance_schema', 'sys')
		ORDER BY schema_name`)
}

func (c *MySQLConnector) GetTables(ctx context.Context, schema string) ([]string, error) {
	db, err := c.handle()
	if err != nil {
		return nil, err
	}
	return queryStrings(ctx, db, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = ? AND table_type = 'BASE TABLE'
		ORDER BY table_name`, c.defaultSchema(schema))
}

func (c *MySQLConnector) TableExists(ctx context.Context, table, schema string) (bool, error) {
	db, err := c.handle()
	if err != nil {
		return false, err
	}
	var count int
	err = db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM information_schema.tables
		WHERE table_schema = ? AND table_name = ?`, c.defaultSchema(schema), table).Scan(&count)
	if err != nil {
		return false, errExecution("check table existence", err)
	}
	return count > 0, nil
}

func (c *MySQLConnector) GetTableSchema(ctx context.Context, table, schema string) ([]TableColumn, error) {
	db, err := c.handle()
	if err != nil {
		return nil, err
	}

	// column_type keeps length/precision (varchar(255), decimal(10,2)),
	// which data_type drops.
	rows, err := db.QueryContext(ctx, `
		SELECT column_name, column_type, is_nullable, column_default
		FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position`, c.defaultSchema(schema), table)
	if err != nil {
		return nil, errExecution("read table columns", err)
	}
	defer rows.Close()

	var cols []TableColumn
	for rows.Next() {
		var name, dataType, nullable string
		var def sql.NullString
		if err := rows.Scan(&name, &dataType, &nullable, &def); err != nil {
			return nil, errExecution("scan column row", err)
		}
		cols = append(cols, TableColumn{
			Name:     name,
			DataType: dataType,
			Nullable: nullable == "YES",
			Default:  def.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, errExecution("scan column rows", err)
	}
	if cols == nil {
		return nil, errTableNotFound(table)
	}
	return cols, nil
}

func (c *MySQLConnector) GetTableIndexes(ctx context.Context, table, schema string) ([]TableIndex, error) {
	db, err := c.handle()
	if err != nil {
		return nil, err
	}

	// The server names the primary key index PRIMARY itself; that is the
	// constraint, not a naming convention.
	rows, err := db.QueryContext(ctx, `
		SELECT index_name, column_name, non_unique = 0, index_name = 'PRIMARY'
		FROM information_schema.statistics
		WHERE table_schema = ? AND table_name = ?
		ORDER BY index_name, seq_in_index`, c.defaultSchema(schema), table)
	if err != nil {
		return nil, errExecution("read table indexes", err)
	}
	defer rows.Close()

	return groupIndexRows(rows)
}

func (c *MySQLConnector) GetStoredProcedures(ctx context.Context, schema string) ([]string, error) {
	db, err := c.handle()
	if err != nil {
		return nil, err
	}
	return queryStrings(ctx, db, `
		SELECT routine_name FROM information_schema.routines
		WHERE routine_schema = ?
		ORDER BY routine_name`, c.defaultSchema(schema))
}

func (c *MySQLConnector) GetStoredProcedureDetail(ctx context.Context, name, schema string) (*StoredProcedure, error) {
	db, err := c.handle()
	if err != nil {
		return nil, err
	}
	target := c.defaultSchema(schema)

	var routineType string
	var returnType, definition sql.NullString
	err = db.QueryRowContext(ctx, `
		SELECT routine_type, dtd_identifier, routine_definition
		FROM information_schema.routines
		WHERE routine_schema = ? AND routine_name = ?`, target, name).Scan(&routineType, &returnType, &definition)
	if err == sql.ErrNoRows {
		return nil, errProcedureNotFound(name)
	}
	if err != nil {
		return nil, errExecution("read routine metadata", err)
	}

	kind := RoutineFunction
	if strings.EqualFold(routineType, "PROCEDURE") {
		kind = RoutineProcedure
	}

	proc := &StoredProcedure{
		Name:       name,
		Kind:       kind,
		Language:   "SQL",
		Signature:  fmt.Sprintf("%s(%s)", name, c.parameterList(ctx, db, target, name)),
		ReturnType: returnType.String,
		Definition: definition.String,
	}

	// routine_definition is NULL without SELECT privilege on mysql.proc;
	// fall back to SHOW CREATE, and give up quietly if that fails too.
	if proc.Definition == "" {
		proc.Definition = c.showCreate(ctx, db, kind, target, name)
	}

	return proc, nil
}

// parameterList reconstructs the routine's parameter signature from
// information_schema.parameters. Failure degrades to an empty list.
func (c *MySQLConnector) parameterList(ctx context.Context, db *sql.DB, schema, name string) string {
	rows, err := db.QueryContext(ctx, `
		SELECT parameter_mode, parameter_name, dtd_identifier
		FROM information_schema.parameters
		WHERE specific_schema = ? AND specific_name = ? AND ordinal_position > 0
		ORDER BY ordinal_position`, schema, name)
	if err != nil {
		return ""
	}
	defer rows.Close()

	var parts []string
	for rows.Next() {
		var mode, pname, ptype sql.NullString
		if err := rows.Scan(&mode, &pname, &ptype); err != nil {
			return ""
		}
		part := strings.TrimSpace(fmt.Sprintf("%s %s %s", mode.String, pname.String, ptype.String))
		parts = append(parts, part)
	}
	return strings.Join(parts, ", ")
}

func (c *MySQLConnector) showCreate(ctx context.Context, db *sql.DB, kind RoutineKind, schema, name string) string {
	stmt := "SHOW CREATE FUNCTION"
	if kind == RoutineProcedure {
		stmt = "SHOW CREATE PROCEDURE"
	}
	row := db.QueryRowContext(ctx, fmt.Sprintf("%s `%s`.`%s`", stmt, schema, name))

	// SHOW CREATE PROCEDURE: Procedure, sql_mode, Create Procedure, + 3 charset columns.
	var routine, sqlMode string
	var create sql.NullString
	var a, b, cs string
	if err := row.Scan(&routine, &sqlMode, &create, &a, &b, &cs); err != nil {
		return ""
	}
	return create.String
}

func (c *MySQLConnector) ExecuteSQL(ctx context.Context, statement string) (*SQLResult, error) {
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
