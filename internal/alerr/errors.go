// Package alerr provides standardized error handling for ddlkit.
// All errors have stable, machine-readable codes, structured context, and proper wrapping.
package alerr

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
)

// Code represents a stable, machine-readable error code.
// Format: E{category}{number} where category is 1-9 and number is 001-999.
type Code string

// Error codes organized by category.
const (
	// Descriptor errors (E1xxx) - the caller described something invalid.
	// None of these are raised after a statement has been issued.
	ErrInvalidSpec       Code = "E1001" // Descriptor is malformed
	ErrInvalidType       Code = "E1002" // Canonical type is unknown
	ErrEmptyTable        Code = "E1003" // createTable called without columns
	ErrIndexSpec         Code = "E1004" // Index has no columns, no name and is not primary
	ErrInvalidIdentifier Code = "E1005" // Identifier is empty or unusable
	ErrDuplicateName     Code = "E1006" // Column or index name repeated
	ErrUnknownColumn     Code = "E1007" // Column does not exist on the table

	// SQL errors (E4xxx) - problems with database operations
	ErrSQLExecution      Code = "E4001" // SQL statement failed to execute
	ErrSQLConnection     Code = "E4002" // Database connection failed
	ErrSQLTransaction    Code = "E4003" // Transaction operation failed
	ErrRebuildNotAtomic  Code = "E4004" // Rebuild refused: dialect auto-commits DDL
	ErrRebuildIncomplete Code = "E4005" // Rebuild failed after the live table was renamed away

	// Introspection errors (E6xxx) - problems with database introspection
	ErrIntrospection    Code = "E6001" // Database introspection failed
	ErrTableNotFound    Code = "E6002" // Table does not exist
	EUnsupportedDialect Code = "E6003" // Dialect not supported for operation

	// Internal errors (E9xxx) - unexpected internal errors
	EInternalError Code = "E9001" // Internal error
)

// Category groups codes by their leading digit.
type Category string

const (
	CategorySpec          Category = "spec"
	CategorySQL           Category = "sql"
	CategoryIntrospection Category = "introspection"
	CategoryInternal      Category = "internal"
)

// Category returns the group of c. Unknown codes are internal.
func (c Code) Category() Category {
	if len(c) < 2 || c[0] != 'E' {
		return CategoryInternal
	}
	switch c[1] {
	case '1':
		return CategorySpec
	case '4':
		return CategorySQL
	case '6':
		return CategoryIntrospection
	}
	return CategoryInternal
}

// Error is the standard error type for ddlkit.
// It provides structured error information with codes, context, and wrapping support.
type Error struct {
	code    Code           // Machine-readable error code
	message string         // Human-readable error message
	context map[string]any // Structured context data
	cause   error          // Wrapped underlying error
	stack   string         // Stack trace for debugging
}

// Error returns the formatted error string.
// Format:
//
//	[E1002] unknown column type "strng"
//	  column: name
//	  help: did you mean 'string'?
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.code, e.message))

	// Sorted for deterministic output
	if len(e.context) > 0 {
		keys := make([]string, 0, len(e.context))
		for k := range e.context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			b.WriteString(fmt.Sprintf("\n  %s: %v", k, e.context[k]))
		}
	}

	if e.cause != nil {
		b.WriteString(fmt.Sprintf("\n  cause: %v", e.cause))
	}

	return b.String()
}

// Unwrap returns the underlying cause error for errors.Unwrap compatibility.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether the target error matches this error.
// It matches if target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}

	var targetErr *Error
	if errors.As(target, &targetErr) {
		return e.code == targetErr.code
	}

	return false
}

// GetCode returns the error code.
func (e *Error) GetCode() Code {
	return e.code
}

// GetMessage returns the error message.
func (e *Error) GetMessage() string {
	return e.message
}

// GetContext returns the error context map.
func (e *Error) GetContext() map[string]any {
	return e.context
}

// GetCause returns the underlying cause error.
func (e *Error) GetCause() error {
	return e.cause
}

// GetStack returns the stack trace.
func (e *Error) GetStack() string {
	return e.stack
}

// With adds a key-value pair to the error context.
// Returns the error for method chaining.
func (e *Error) With(key string, value any) *Error {
	if e.context == nil {
		e.context = make(map[string]any)
	}
	e.context[key] = value
	return e
}

// WithTable adds table context to the error.
func (e *Error) WithTable(table string) *Error {
	return e.With("table", table)
}

// WithColumn adds column context to the error.
func (e *Error) WithColumn(name string) *Error {
	return e.With("column", name)
}

// WithSQL adds SQL statement context to the error.
func (e *Error) WithSQL(sql string) *Error {
	return e.With("sql", sql)
}

// WithDialect adds dialect context to the error.
func (e *Error) WithDialect(name string) *Error {
	return e.With("dialect", name)
}

// WithHelp adds a help suggestion to the error (displayed as "help: ...").
func (e *Error) WithHelp(help string) *Error {
	if help == "" {
		return e
	}
	helps, _ := e.context["helps"].([]string)
	helps = append(helps, help)
	return e.With("helps", helps)
}

// Helps returns all help suggestions attached to this error.
func (e *Error) Helps() []string {
	helps, _ := e.context["helps"].([]string)
	return helps
}

// captureStack captures a stack trace for debugging.
func captureStack(skip int) string {
	const maxDepth = 32
	var pcs [maxDepth]uintptr
	n := runtime.Callers(skip, pcs[:])
	if n == 0 {
		return ""
	}

	var b strings.Builder
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if strings.Contains(frame.File, "runtime/") {
			if !more {
				break
			}
			continue
		}
		b.WriteString(fmt.Sprintf("%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line))
		if !more {
			break
		}
	}
	return b.String()
}

func newError(code Code, msg string, cause error) *Error {
	return &Error{
		code:    code,
		message: msg,
		context: make(map[string]any),
		cause:   cause,
		stack:   captureStack(4),
	}
}

// New creates a new Error with the given code and message.
func New(code Code, msg string) *Error {
	return newError(code, msg, nil)
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return newError(code, fmt.Sprintf(format, args...), nil)
}

// Wrap creates a new Error that wraps an existing error. A nil err gives
// a plain New.
func Wrap(code Code, err error, msg string) *Error {
	return newError(code, msg, err)
}

// Wrapf creates a new Error that wraps an existing error with a formatted message.
func Wrapf(code Code, err error, format string, args ...any) *Error {
	return Wrap(code, err, fmt.Sprintf(format, args...))
}

// GetErrorCode extracts the error code from an error chain.
// Returns empty string if no code is found.
func GetErrorCode(err error) Code {
	if err == nil {
		return ""
	}

	var e *Error
	if errors.As(err, &e) {
		return e.code
	}

	return ""
}

// Is checks if an error has the specified code.
func Is(err error, code Code) bool {
	return GetErrorCode(err) == code
}

// IsSpec reports whether err is one of the invalid-descriptor codes (E1xxx).
func IsSpec(err error) bool {
	return GetErrorCode(err).Category() == CategorySpec
}

// WrapSQL creates an ErrSQLExecution error with table context.
// Example: WrapSQL(err, "introspect columns", "users")
func WrapSQL(err error, op string, table string) *Error {
	e := Wrap(ErrSQLExecution, err, "failed to "+op)
	if table != "" {
		e.WithTable(table)
	}
	return e
}
