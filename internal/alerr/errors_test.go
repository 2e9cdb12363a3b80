package alerr

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// -----------------------------------------------------------------------------
// Constructor Tests
// -----------------------------------------------------------------------------

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    Code
		message string
	}{
		{name: "invalid spec", code: ErrInvalidSpec, message: "column has no name"},
		{name: "invalid type", code: ErrInvalidType, message: "unknown column type"},
		{name: "SQL error", code: ErrSQLExecution, message: "SQL statement failed"},
		{name: "introspection", code: ErrIntrospection, message: "catalog query failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message)
			if err.GetCode() != tt.code {
				t.Errorf("code = %v, want %v", err.GetCode(), tt.code)
			}
			if err.GetMessage() != tt.message {
				t.Errorf("message = %v, want %v", err.GetMessage(), tt.message)
			}
			if err.GetCause() != nil {
				t.Error("expected nil cause for New()")
			}
			if err.GetStack() == "" {
				t.Error("expected stack trace to be captured")
			}
		})
	}
}

func TestWrap(t *testing.T) {
	t.Run("wrap existing error", func(t *testing.T) {
		cause := errors.New("syntax error near DROP")
		err := Wrap(ErrSQLExecution, cause, "failed to drop column")

		if err.GetCode() != ErrSQLExecution {
			t.Errorf("code = %v, want %v", err.GetCode(), ErrSQLExecution)
		}
		if !errors.Is(err, cause) {
			t.Error("wrapped cause should be reachable with errors.Is")
		}
	})

	t.Run("wrap nil error behaves like New", func(t *testing.T) {
		err := Wrap(ErrInvalidSpec, nil, "bad column")
		if err.GetCause() != nil {
			t.Error("cause should be nil when wrapping nil")
		}
	})
}

func TestWrapf(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrapf(ErrSQLConnection, cause, "failed to connect to %s on port %d", "localhost", 5432)

	if err.GetMessage() != "failed to connect to localhost on port 5432" {
		t.Errorf("message = %v", err.GetMessage())
	}
}

// -----------------------------------------------------------------------------
// Context Builder Tests
// -----------------------------------------------------------------------------

func TestContextBuilders(t *testing.T) {
	err := New(ErrSQLExecution, "statement failed").
		WithTable("users").
		WithColumn("email").
		WithSQL("ALTER TABLE users DROP COLUMN email").
		WithDialect("sqlite")

	ctx := err.GetContext()
	want := map[string]string{
		"table":   "users",
		"column":  "email",
		"sql":     "ALTER TABLE users DROP COLUMN email",
		"dialect": "sqlite",
	}
	for k, v := range want {
		if ctx[k] != v {
			t.Errorf("%s = %v, want %v", k, ctx[k], v)
		}
	}
}

func TestWithHelp(t *testing.T) {
	err := New(ErrInvalidType, "unknown type").
		WithHelp("did you mean 'string'?").
		WithHelp("")

	helps := err.Helps()
	if len(helps) != 1 || helps[0] != "did you mean 'string'?" {
		t.Errorf("Helps() = %v", helps)
	}
}

func TestErrorString(t *testing.T) {
	err := New(ErrInvalidType, "unknown column type \"strng\"").
		WithColumn("name").
		WithTable("t1")

	got := err.Error()
	// Context keys are rendered in sorted order.
	want := "[E1002] unknown column type \"strng\"\n  column: name\n  table: t1"
	if got != want {
		t.Errorf("Error() =\n%s\nwant\n%s", got, want)
	}

	wrapped := Wrap(ErrSQLExecution, errors.New("boom"), "failed to exec")
	if !strings.HasSuffix(wrapped.Error(), "cause: boom") {
		t.Errorf("Error() = %q, want cause suffix", wrapped.Error())
	}
}

// -----------------------------------------------------------------------------
// Code Helpers
// -----------------------------------------------------------------------------

func TestIsAndGetErrorCode(t *testing.T) {
	base := New(ErrIndexSpec, "index needs columns")
	wrapped := fmt.Errorf("add index: %w", base)

	if !Is(wrapped, ErrIndexSpec) {
		t.Error("Is() should find the code through fmt wrapping")
	}
	if Is(wrapped, ErrSQLExecution) {
		t.Error("Is() matched the wrong code")
	}
	if GetErrorCode(errors.New("plain")) != "" {
		t.Error("plain errors carry no code")
	}
	if GetErrorCode(nil) != "" {
		t.Error("nil carries no code")
	}
	if !errors.Is(wrapped, New(ErrIndexSpec, "other message")) {
		t.Error("errors.Is should match by code")
	}
}

func TestIsSpec(t *testing.T) {
	if !IsSpec(New(ErrEmptyTable, "no columns")) {
		t.Error("E1xxx should be a descriptor error")
	}
	if IsSpec(New(ErrSQLExecution, "failed")) {
		t.Error("E4xxx is not a descriptor error")
	}
}

func TestCodeCategory(t *testing.T) {
	tests := []struct {
		code Code
		want Category
	}{
		{ErrInvalidSpec, CategorySpec},
		{ErrUnknownColumn, CategorySpec},
		{ErrSQLExecution, CategorySQL},
		{ErrRebuildIncomplete, CategorySQL},
		{ErrTableNotFound, CategoryIntrospection},
		{EInternalError, CategoryInternal},
		{"", CategoryInternal},
		{"X1001", CategoryInternal},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := tt.code.Category(); got != tt.want {
				t.Errorf("Category() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapSQL(t *testing.T) {
	err := WrapSQL(errors.New("no such table"), "introspect columns", "users")
	if err.GetCode() != ErrSQLExecution {
		t.Errorf("code = %v", err.GetCode())
	}
	if err.GetMessage() != "failed to introspect columns" {
		t.Errorf("message = %v", err.GetMessage())
	}
	if err.GetContext()["table"] != "users" {
		t.Errorf("table = %v", err.GetContext()["table"])
	}

	noTable := WrapSQL(errors.New("x"), "list tables", "")
	if _, ok := noTable.GetContext()["table"]; ok {
		t.Error("empty table should not be recorded")
	}
}
