package connector

import (
	"testing"
)

var allDialects = []DialectID{
	DialectPostgres, DialectMySQL, DialectMariaDB,
	DialectSQLServer, DialectOracle, DialectSQLite,
}

func TestSafetyPolicyAllowsSelectEverywhere(t *testing.T) {
	statements := []string{
		"SELECT 1",
		"  Select 1", // leading whitespace, mixed case
		"select * from users",
		"\tWITH x AS (SELECT 1) SELECT * FROM x",
		"EXPLAIN SELECT 1",
		"show tables",
	}
	for _, id := range allDialects {
		p := SafetyPolicyFor(id)
		for _, stmt := range statements {
			if err := p.Check(stmt); err != nil {
				t.Errorf("%s: Check(%q) = %v, want allowed", id, stmt, err)
			}
		}
	}
}

func TestSafetyPolicyRejectsDestructiveEverywhere(t *testing.T) {
	statements := []string{
		"DROP TABLE t",
		"delete from users",
		"INSERT INTO t VALUES (1)",
		"update t set x = 1",
		"TRUNCATE TABLE t",
		"CREATE TABLE t (id int)",
		"GRANT ALL ON t TO public",
		"",
		"   ",
	}
	for _, id := range allDialects {
		p := SafetyPolicyFor(id)
		for _, stmt := range statements {
			err := p.Check(stmt)
			if err == nil {
				t.Errorf("%s: Check(%q) allowed, want rejection", id, stmt)
				continue
			}
			if !IsReadOnlyViolation(err) {
				t.Errorf("%s: Check(%q) error kind = %v, want read_only_violation", id, stmt, KindOf(err))
			}
		}
	}
}

func TestSafetyPolicyDialectExtras(t *testing.T) {
	tests := []struct {
		dialect   DialectID
		statement string
		allowed   bool
	}{
		{DialectMySQL, "DESCRIBE users", true},
		{DialectMySQL, "desc users", true},
		{DialectMariaDB, "DESCRIBE users", true},
		{DialectSQLite, "PRAGMA table_info('t')", true},
		{DialectSQLServer, "SHOWPLAN_ALL", false}, // keyword is showplan, not showplan_all
		{DialectSQLServer, "showplan", true},

		// Extras must not leak across dialects.
		{DialectPostgres, "DESCRIBE users", false},
		{DialectPostgres, "PRAGMA table_info('t')", false},
		{DialectMySQL, "PRAGMA table_info('t')", false},
		{DialectSQLite, "DESCRIBE users", false},
	}

	for _, tt := range tests {
		p := SafetyPolicyFor(tt.dialect)
		if got := p.Allows(tt.statement); got != tt.allowed {
			t.Errorf("%s: Allows(%q) = %v, want %v", tt.dialect, tt.statement, got, tt.allowed)
		}
	}
}

func TestSafetyPolicyNormalization(t *testing.T) {
	p := SafetyPolicyFor(DialectPostgres)

	// The first token is extracted even without whitespace after it.
	if !p.Allows("select*from t") {
		t.Error("Allows(\"select*from t\") = false, want true")
	}
	if p.Allows("drop;select 1") {
		t.Error("Allows(\"drop;select 1\") = true, want false")
	}
}
