// Package engine applies schema operations to a live database.
//
// A Schema binds one dialect, one introspector and one caller-supplied
// connection or transaction. Operations the dialect cannot perform in place
// go through the table rebuild in rebuild.go.
package engine

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/hlop3z/ddlkit/internal/alerr"
)

// Executor is satisfied by *sql.DB, *sql.Tx and *sql.Conn.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Conn issues statements through a single Executor. Statements are never
// retried.
type Conn struct {
	db     Executor
	logger *slog.Logger
}

// NewConn wraps db. A nil logger uses slog.Default().
func NewConn(db Executor, logger *slog.Logger) *Conn {
	if logger == nil {
		logger = slog.Default()
	}
	return &Conn{db: db, logger: logger}
}

// Exec runs a statement and returns the number of affected rows, or -1
// when the driver does not report it.
func (c *Conn) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, alerr.Wrap(alerr.ErrSQLExecution, err, "failed to execute statement").
			WithSQL(query)
	}
	n, err := res.RowsAffected()
	if err != nil {
		n = -1
	}
	c.logger.Debug("exec", "sql", query, "rows", n)
	return n, nil
}

// ExecAll runs statements in order and stops at the first failure.
func (c *Conn) ExecAll(ctx context.Context, statements []string) error {
	for _, stmt := range statements {
		if _, err := c.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Query runs a query. The caller closes the rows.
func (c *Conn) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	c.logger.Debug("query", "sql", query)
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrSQLExecution, err, "failed to run query").
			WithSQL(query)
	}
	return rows, nil
}

// Scalar runs a query and returns the first column of the first row, or
// nil when there are no rows.
func (c *Conn) Scalar(ctx context.Context, query string, args ...any) (any, error) {
	c.logger.Debug("scalar", "sql", query)
	var v any
	err := c.db.QueryRowContext(ctx, query, args...).Scan(&v)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrSQLExecution, err, "failed to run query").
			WithSQL(query)
	}
	return v, nil
}
