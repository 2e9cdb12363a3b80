package metadata

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/hlop3z/ddlkit/internal/alerr"
)

// TableName is the sidecar table.
const TableName = "ddlkit_metadata"

// Execer is the subset of *sql.DB / *sql.Tx the store needs.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// ExistsFunc reports whether a table exists.
type ExistsFunc func(ctx context.Context, table string) (bool, error)

// Store reads and writes sidecar rows. Every write goes through the same
// connection as the table DDL it belongs to.
type Store struct {
	db          Execer
	placeholder func(n int) string
	exists      ExistsFunc
}

// NewStore returns a sidecar store. placeholder renders the n-th (1-based)
// bind parameter; exists is used so reads never create the table.
func NewStore(db Execer, placeholder func(n int) string, exists ExistsFunc) *Store {
	return &Store{db: db, placeholder: placeholder, exists: exists}
}

// Ensure creates the sidecar table if it does not exist.
func (s *Store) Ensure(ctx context.Context) error {
	query := "CREATE TABLE IF NOT EXISTS " + TableName + ` (
  table_name TEXT NOT NULL,
  column_name TEXT NULL,
  content TEXT NOT NULL
)`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return alerr.WrapSQL(err, "create metadata table", TableName).WithSQL(query)
	}
	return nil
}

func (s *Store) present(ctx context.Context) (bool, error) {
	if s.exists == nil {
		return true, nil
	}
	return s.exists(ctx, TableName)
}

// Table returns the rows of table keyed by column name; the table-level
// row is keyed by "".
func (s *Store) Table(ctx context.Context, table string) (map[string]Content, error) {
	out := make(map[string]Content)
	ok, err := s.present(ctx)
	if err != nil || !ok {
		return out, err
	}

	query := fmt.Sprintf("SELECT column_name, content FROM %s WHERE table_name = %s",
		TableName, s.placeholder(1))
	rows, err := s.db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, alerr.WrapSQL(err, "read metadata", table).WithSQL(query)
	}
	defer rows.Close()

	for rows.Next() {
		var column sql.NullString
		var content string
		if err := rows.Scan(&column, &content); err != nil {
			return nil, alerr.WrapSQL(err, "scan metadata", table)
		}
		out[column.String] = Decode(content)
	}
	if err := rows.Err(); err != nil {
		return nil, alerr.WrapSQL(err, "iterate metadata", table)
	}
	return out, nil
}

// Put replaces the row for (table, column). An empty column addresses the
// table itself; empty content deletes the row.
func (s *Store) Put(ctx context.Context, table, column string, c Content) error {
	if err := s.Delete(ctx, table, column); err != nil {
		return err
	}
	if c.IsZero() {
		return nil
	}
	if err := s.Ensure(ctx); err != nil {
		return err
	}

	query := fmt.Sprintf("INSERT INTO %s (table_name, column_name, content) VALUES (%s, %s, %s)",
		TableName, s.placeholder(1), s.placeholder(2), s.placeholder(3))
	var col any
	if column != "" {
		col = column
	}
	if _, err := s.db.ExecContext(ctx, query, table, col, c.String()); err != nil {
		return alerr.WrapSQL(err, "write metadata", table).WithColumn(column).WithSQL(query)
	}
	slog.Debug("metadata stored", "table", table, "column", column, "content", c.String())
	return nil
}

// Delete removes the row for (table, column).
func (s *Store) Delete(ctx context.Context, table, column string) error {
	if column == "" {
		return s.exec(ctx, table,
			"DELETE FROM %s WHERE table_name = %s AND column_name IS NULL", table)
	}
	return s.exec(ctx, table,
		"DELETE FROM %s WHERE table_name = %s AND column_name = %s", table, column)
}

// DeleteTable removes every row of table.
func (s *Store) DeleteTable(ctx context.Context, table string) error {
	return s.exec(ctx, table, "DELETE FROM %s WHERE table_name = %s", table)
}

// RenameTable re-keys every row of from to to.
func (s *Store) RenameTable(ctx context.Context, from, to string) error {
	return s.exec(ctx, from, "UPDATE %s SET table_name = %s WHERE table_name = %s", to, from)
}

// RenameColumn re-keys the row of a column.
func (s *Store) RenameColumn(ctx context.Context, table, from, to string) error {
	return s.exec(ctx, table,
		"UPDATE %s SET column_name = %s WHERE table_name = %s AND column_name = %s", to, table, from)
}

// exec runs a statement whose first verb is the sidecar table and whose
// remaining verbs are placeholders for args. It is a no-op when the sidecar
// table does not exist yet.
func (s *Store) exec(ctx context.Context, table, format string, args ...any) error {
	ok, err := s.present(ctx)
	if err != nil || !ok {
		return err
	}

	verbs := make([]any, 0, len(args)+1)
	verbs = append(verbs, TableName)
	for i := range args {
		verbs = append(verbs, s.placeholder(i+1))
	}
	query := fmt.Sprintf(format, verbs...)
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return alerr.WrapSQL(err, "update metadata", table).WithSQL(query)
	}
	return nil
}
