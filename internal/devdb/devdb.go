// Package devdb provides an ephemeral database for schema normalization.
//
// A plan describes tables in natural form; the catalog stores them in
// canonical form. Running the plan against a throwaway SQLite database and
// introspecting it yields the canonical form, which compares accurately with
// a live database of any dialect.
package devdb

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/hlop3z/ddlkit/internal/alerr"
	"github.com/hlop3z/ddlkit/internal/ast"
	"github.com/hlop3z/ddlkit/internal/dialect"
	"github.com/hlop3z/ddlkit/internal/engine"
)

// DevDatabase is an in-memory SQLite database bound to a schema engine.
type DevDatabase struct {
	db     *sql.DB
	schema *engine.Schema
}

// New creates an empty dev database. A nil logger discards statement logs.
func New(logger *slog.Logger) (*DevDatabase, error) {
	// Named shared-cache memory databases survive pooled reconnects.
	dsn := "file:devdb_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrSQLConnection, err, "failed to create dev database")
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, alerr.Wrap(alerr.ErrSQLConnection, err, "failed to ping dev database")
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s, err := engine.New(db, dialect.SQLite(), engine.Options{Logger: logger})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &DevDatabase{db: db, schema: s}, nil
}

// Close drops the dev database.
func (d *DevDatabase) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// Schema returns the engine bound to the dev database.
func (d *DevDatabase) Schema() *engine.Schema {
	return d.schema
}

// Apply runs ops in order and stops at the first failure. The error
// carries the 1-based "operation" number and a hint for common mistakes.
func (d *DevDatabase) Apply(ctx context.Context, ops []ast.Operation) error {
	for i, op := range ops {
		if err := d.schema.Apply(ctx, op); err != nil {
			return applyError(i+1, op, err)
		}
	}
	return nil
}

// Normalize runs ops on a fresh dev database and returns it for
// introspection. The caller closes the result.
func Normalize(ctx context.Context, ops []ast.Operation, logger *slog.Logger) (*DevDatabase, error) {
	d, err := New(logger)
	if err != nil {
		return nil, err
	}
	if err := d.Apply(ctx, ops); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

// applyError annotates err with the failing operation.
func applyError(n int, op ast.Operation, err error) error {
	var e *alerr.Error
	if !errors.As(err, &e) {
		e = alerr.Wrap(alerr.ErrSQLExecution, err, "operation failed")
	}
	e.With("operation", n)
	if op != nil {
		e.With("op", op.Type().String())
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "already exists"):
		e.WithHelp("the plan creates the same table or index twice")
	case alerr.Is(err, alerr.ErrTableNotFound), strings.Contains(msg, "no such table"):
		e.WithHelp("operations run in order; create a table before altering it")
	case strings.Contains(msg, "syntax error"):
		e.WithHelp("check identifiers and defaults in the plan")
	}
	return e
}
