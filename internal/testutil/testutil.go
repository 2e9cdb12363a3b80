package testutil

import (
	"regexp"
	"strings"
	"testing"

	"github.com/hlop3z/ddlkit/internal/alerr"
)

var (
	whitespace  = regexp.MustCompile(`\s+`)
	parenSpaces = regexp.MustCompile(`\(\s+|\s+\)`)
)

// -----------------------------------------------------------------------------
// SQL Assertions
// -----------------------------------------------------------------------------

// NormalizeSQL normalizes a SQL string for comparison.
// It collapses whitespace runs into a single space, drops the space just
// inside parentheses, trims the ends and converts to uppercase.
func NormalizeSQL(sql string) string {
	sql = whitespace.ReplaceAllString(sql, " ")
	sql = parenSpaces.ReplaceAllStringFunc(sql, strings.TrimSpace)
	return strings.ToUpper(strings.TrimSpace(sql))
}

// AssertSQL compares two SQL strings after normalizing them.
func AssertSQL(t testing.TB, got, want string) {
	t.Helper()

	gotNorm := NormalizeSQL(got)
	wantNorm := NormalizeSQL(want)

	if gotNorm != wantNorm {
		t.Errorf("SQL mismatch:\ngot:  %s\nwant: %s\n\noriginal got:\n%s\n\noriginal want:\n%s",
			gotNorm, wantNorm, got, want)
	}
}

// AssertSQLContains checks if a SQL string contains a substring.
// Both strings are normalized before comparison.
func AssertSQLContains(t testing.TB, sql, substr string) {
	t.Helper()

	sqlNorm := NormalizeSQL(sql)
	substrNorm := NormalizeSQL(substr)

	if !strings.Contains(sqlNorm, substrNorm) {
		t.Errorf("SQL does not contain expected substring:\nsql:    %s\nsubstr: %s", sqlNorm, substrNorm)
	}
}

// -----------------------------------------------------------------------------
// Error Assertions
// -----------------------------------------------------------------------------

// AssertErrorCode checks that an error carries the expected alerr code.
func AssertErrorCode(t testing.TB, err error, code alerr.Code) {
	t.Helper()

	if err == nil {
		t.Errorf("expected error with code %s, got nil", code)
		return
	}

	if got := alerr.GetErrorCode(err); got != code {
		t.Errorf("expected error code %s, got %s\nerror: %v", code, got, err)
	}
}

// AssertNoError checks that an error is nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()

	if err != nil {
		t.Errorf("expected no error, got: %v", err)
	}
}

// AssertErrorContains checks that an error message contains a substring.
func AssertErrorContains(t testing.TB, err error, substr string) {
	t.Helper()

	if err == nil {
		t.Errorf("expected error containing %q, got nil", substr)
		return
	}

	if !strings.Contains(err.Error(), substr) {
		t.Errorf("error message does not contain %q\ngot: %v", substr, err)
	}
}

// -----------------------------------------------------------------------------
// Test Helpers
// -----------------------------------------------------------------------------

// Must asserts that err is nil, or fails the test immediately.
//
// Example:
//
//	testutil.Must(t, schema.CreateTable(ctx, def))
func Must(t testing.TB, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

// MustValue takes the results of a call and returns a function that fails
// the test when the error is set, or returns the value otherwise. The call
// must be the only argument, hence the second step:
//
//	cols := testutil.MustValue(schema.Columns(ctx, "t1"))(t)
func MustValue[T any](value T, err error) func(testing.TB) T {
	return func(t testing.TB) T {
		t.Helper()

		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		return value
	}
}
