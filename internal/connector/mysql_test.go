package connector

import (
	"context"
	"database/sql"
	"reflect"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

// mockMySQL returns a connector already in the connected state, backed by
// a sqlmock handle.
func mockMySQL(t *testing.T) (*MySQLConnector, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	c := NewMySQLConnector()
	if err := c.beginConnect(); err != nil {
		t.Fatalf("beginConnect: %v", err)
	}
	c.database = "app"
	c.finishConnect(db)
	return c, mock
}

func TestMySQLIndexGrouping(t *testing.T) {
	c, mock := mockMySQL(t)

	mock.ExpectQuery("FROM information_schema.statistics").
		WithArgs("app", "orders").
		WillReturnRows(sqlmock.NewRows([]string{"index_name", "column_name", "unique", "primary"}).
			AddRow("PRIMARY", "id", true, true).
			AddRow("idx_customer_ref", "customer", true, false).
			AddRow("idx_customer_ref", "ref", true, false))

	indexes, err := c.GetTableIndexes(context.Background(), "orders", "")
	if err != nil {
		t.Fatalf("GetTableIndexes error: %v", err)
	}

	want := []TableIndex{
		{Name: "PRIMARY", Columns: []string{"id"}, Unique: true, Primary: true},
		{Name: "idx_customer_ref", Columns: []string{"customer", "ref"}, Unique: true, Primary: false},
	}
	if !reflect.DeepEqual(indexes, want) {
		t.Errorf("GetTableIndexes = %+v, want %+v", indexes, want)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestMySQLTableSchema(t *testing.T) {
	c, mock := mockMySQL(t)

	mock.ExpectQuery("FROM information_schema.columns").
		WithArgs("app", "users").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "column_type", "is_nullable", "column_default"}).
			AddRow("id", "int(11)", "NO", nil).
			AddRow("email", "varchar(255)", "YES", "''"))

	cols, err := c.GetTableSchema(context.Background(), "users", "")
	if err != nil {
		t.Fatalf("GetTableSchema error: %v", err)
	}

	want := []TableColumn{
		{Name: "id", DataType: "int(11)", Nullable: false},
		{Name: "email", DataType: "varchar(255)", Nullable: true, Default: "''"},
	}
	if !reflect.DeepEqual(cols, want) {
		t.Errorf("GetTableSchema = %+v, want %+v", cols, want)
	}

	// No rows at all means the table does not exist.
	mock.ExpectQuery("FROM information_schema.columns").
		WithArgs("app", "missing").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "column_type", "is_nullable", "column_default"}))

	if _, err := c.GetTableSchema(context.Background(), "missing", ""); KindOf(err) != ErrKindTableNotFound {
		t.Errorf("GetTableSchema(missing) kind = %v, want table_not_found", KindOf(err))
	}
}

func TestMySQLProcedureDetailFallback(t *testing.T) {
	c, mock := mockMySQL(t)

	// routine_definition is NULL, so the connector falls back to SHOW CREATE.
	mock.ExpectQuery("FROM information_schema.routines").
		WithArgs("app", "add_user").
		WillReturnRows(sqlmock.NewRows([]string{"routine_type", "dtd_identifier", "routine_definition"}).
			AddRow("PROCEDURE", nil, nil))
	mock.ExpectQuery("FROM information_schema.parameters").
		WithArgs("app", "add_user").
		WillReturnRows(sqlmock.NewRows([]string{"parameter_mode", "parameter_name", "dtd_identifier"}).
			AddRow("IN", "p_email", "varchar(255)"))
	mock.ExpectQuery("SHOW CREATE PROCEDURE").
		WillReturnRows(sqlmock.NewRows([]string{"Procedure", "sql_mode", "Create Procedure", "a", "b", "c"}).
			AddRow("add_user", "", "CREATE PROCEDURE add_user(IN p_email varchar(255)) BEGIN END", "utf8mb4", "utf8mb4_general_ci", "utf8mb4_general_ci"))

	proc, err := c.GetStoredProcedureDetail(context.Background(), "add_user", "")
	if err != nil {
		t.Fatalf("GetStoredProcedureDetail error: %v", err)
	}
	if proc.Kind != RoutineProcedure {
		t.Errorf("Kind = %s, want procedure", proc.Kind)
	}
	if proc.Signature != "add_user(IN p_email varchar(255))" {
		t.Errorf("Signature = %q", proc.Signature)
	}
	if proc.Definition == "" {
		t.Error("Definition empty, want SHOW CREATE fallback text")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestMySQLProcedureNotFound(t *testing.T) {
	c, mock := mockMySQL(t)

	mock.ExpectQuery("FROM information_schema.routines").
		WithArgs("app", "missing").
		WillReturnError(sql.ErrNoRows)

	_, err := c.GetStoredProcedureDetail(context.Background(), "missing", "")
	if KindOf(err) != ErrKindProcedureNotFound {
		t.Errorf("kind = %v, want procedure_not_found", KindOf(err))
	}
}

func TestClassifyMySQLErr(t *testing.T) {
	err := classifyMySQLErr(&mysql.MySQLError{Number: 1045, Message: "Access denied"})
	if KindOf(err) != ErrKindAuthFailed {
		t.Errorf("1045 kind = %v, want auth_failed", KindOf(err))
	}
	err = classifyMySQLErr(&mysql.MySQLError{Number: 1049, Message: "Unknown database"})
	if KindOf(err) != ErrKindConnectionFailed {
		t.Errorf("1049 kind = %v, want connection_failed", KindOf(err))
	}
}
