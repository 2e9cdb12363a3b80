package ddlkit

import (
	"errors"
	"fmt"

	"github.com/hlop3z/ddlkit/internal/alerr"
)

// Sentinel errors for common error conditions.
// Use errors.Is() to check for these errors.
var (
	// ErrMissingDatabaseURL is returned when no database URL is provided.
	ErrMissingDatabaseURL = errors.New("ddlkit: database URL required")

	// ErrConnectionFailed is returned when the database connection fails.
	ErrConnectionFailed = errors.New("ddlkit: connection failed")

	// ErrUnsupportedDialect is returned when the database dialect is not supported.
	ErrUnsupportedDialect = errors.New("ddlkit: unsupported dialect")

	// ErrInvalidSpec is returned for malformed descriptors. Nothing was executed.
	ErrInvalidSpec = errors.New("ddlkit: invalid descriptor")

	// ErrTableNotFound is returned when an operation names a missing table.
	ErrTableNotFound = errors.New("ddlkit: table not found")

	// ErrStatement is returned when the database rejects a statement.
	ErrStatement = errors.New("ddlkit: statement failed")

	// ErrRebuildNotAtomic is returned by strict clients when a rebuild would
	// run on a dialect whose DDL auto-commits.
	ErrRebuildNotAtomic = errors.New("ddlkit: rebuild cannot run atomically")

	// ErrInvalidPlan is returned for malformed apply plans.
	ErrInvalidPlan = errors.New("ddlkit: invalid plan")
)

// StatementError provides detailed information about a failed statement.
type StatementError struct {
	// Table is the table the operation targeted.
	Table string

	// SQL is the statement the database rejected, when known.
	SQL string

	// RebuildStep is the rebuild step (1-6) that failed, or 0 outside a rebuild.
	RebuildStep int

	// Throwaway is the name the live table was renamed to when a rebuild
	// failed after step 2.
	Throwaway string

	// Cause is the underlying structured error.
	Cause error
}

// Error returns a formatted error message.
func (e *StatementError) Error() string {
	msg := "ddlkit: statement failed"
	if e.Table != "" {
		msg += " on " + e.Table
	}
	if e.RebuildStep > 0 {
		msg += fmt.Sprintf(" during rebuild step %d", e.RebuildStep)
	}
	if e.SQL != "" {
		return fmt.Sprintf("%s: %v\nSQL: %s", msg, e.Cause, e.SQL)
	}
	return fmt.Sprintf("%s: %v", msg, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StatementError) Unwrap() error {
	return e.Cause
}

// Is reports whether this error matches the target error.
func (e *StatementError) Is(target error) bool {
	return target == ErrStatement
}

// SpecError reports a descriptor rejected before any statement ran.
type SpecError struct {
	// Code is the stable error code, e.g. "E1002".
	Code string

	// Table and Column locate the problem when known.
	Table  string
	Column string

	// Cause is the underlying structured error.
	Cause error
}

// Error returns a formatted error message.
func (e *SpecError) Error() string {
	target := e.Table
	if e.Column != "" {
		if target != "" {
			target += "."
		}
		target += e.Column
	}
	if target != "" {
		target += ": "
	}
	return fmt.Sprintf("ddlkit: %s%v", target, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *SpecError) Unwrap() error {
	return e.Cause
}

// Is reports whether this error matches the target error.
func (e *SpecError) Is(target error) bool {
	return target == ErrInvalidSpec
}

// ConnectionError provides detailed information about a database connection error.
type ConnectionError struct {
	// URL is the database URL with the password redacted.
	URL string

	// Dialect is the database dialect.
	Dialect string

	// Cause is the underlying error from the database driver.
	Cause error
}

// Error returns a formatted error message.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("ddlkit: failed to connect to %s database %s: %v", e.Dialect, e.URL, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// Is reports whether this error matches the target error.
func (e *ConnectionError) Is(target error) bool {
	return target == ErrConnectionFailed
}

// translate maps internal structured errors onto the public error types.
// The structured error stays reachable through errors.As.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var ae *alerr.Error
	if !errors.As(err, &ae) {
		return err
	}
	ctx := ae.GetContext()
	str := func(key string) string {
		s, _ := ctx[key].(string)
		return s
	}

	switch code := ae.GetCode(); {
	case alerr.IsSpec(err):
		return &SpecError{Code: string(code), Table: str("table"), Column: str("column"), Cause: err}
	case code == alerr.ErrTableNotFound:
		return fmt.Errorf("%w: %w", ErrTableNotFound, err)
	case code == alerr.ErrRebuildNotAtomic:
		return fmt.Errorf("%w: %w", ErrRebuildNotAtomic, err)
	case code == alerr.EUnsupportedDialect:
		return fmt.Errorf("%w: %w", ErrUnsupportedDialect, err)
	case code == alerr.ErrSQLExecution, code == alerr.ErrSQLTransaction,
		code == alerr.ErrRebuildIncomplete, code == alerr.ErrIntrospection:
		step, _ := ctx["rebuild_step"].(int)
		return &StatementError{
			Table:       str("table"),
			SQL:         str("sql"),
			RebuildStep: step,
			Throwaway:   str("throwaway"),
			Cause:       err,
		}
	}
	return err
}
