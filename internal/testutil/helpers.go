package testutil

import (
	"database/sql"
	"testing"
)

// ExecSQL executes a statement, failing the test on error.
func ExecSQL(t testing.TB, db *sql.DB, query string, args ...any) {
	t.Helper()

	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("failed to execute SQL: %v\nSQL: %s", err, query)
	}
}

// QueryInt runs a query returning a single integer.
func QueryInt(t testing.TB, db *sql.DB, query string, args ...any) int {
	t.Helper()

	var n int
	if err := db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("failed to query: %v\nSQL: %s", err, query)
	}
	return n
}

// AssertRowCount checks the number of rows in a table. The name is used
// verbatim, so tests pass a name that needs no quoting.
func AssertRowCount(t testing.TB, db *sql.DB, table string, expected int) {
	t.Helper()

	if got := QueryInt(t, db, "SELECT COUNT(*) FROM "+table); got != expected {
		t.Errorf("table %s: expected %d rows, got %d", table, expected, got)
	}
}

// AssertTableExists checks that a table can be selected from.
func AssertTableExists(t testing.TB, db *sql.DB, table string) {
	t.Helper()

	if !tableExists(db, table) {
		t.Errorf("expected table %s to exist", table)
	}
}

// AssertTableNotExists checks that a table cannot be selected from.
func AssertTableNotExists(t testing.TB, db *sql.DB, table string) {
	t.Helper()

	if tableExists(db, table) {
		t.Errorf("expected table %s to not exist", table)
	}
}

// tableExists probes with a query that reads no rows, which works on every
// supported engine without a catalog lookup.
func tableExists(db *sql.DB, table string) bool {
	rows, err := db.Query("SELECT * FROM " + table + " WHERE 1 = 0")
	if err != nil {
		return false
	}
	rows.Close()
	return true
}
