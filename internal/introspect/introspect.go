// Package introspect provides database schema introspection for all supported dialects.
// It queries database system catalogs to discover existing tables, columns and
// indexes, then converts them to canonical ast descriptors.
package introspect

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/hlop3z/ddlkit/internal/ast"
	"github.com/hlop3z/ddlkit/internal/dialect"
	"github.com/hlop3z/ddlkit/internal/metadata"
)

// RebuildPrefix prefixes the throwaway name a table is renamed to during a rebuild.
const RebuildPrefix = "__ddlkit_rebuild_"

// Querier is the subset of *sql.DB, *sql.Tx and *sql.Conn introspection needs.
// ExecContext is only used by SQLite to reach the sidecar store.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Introspector queries database catalogs to discover schema information.
// Descriptors are built fresh on every call.
type Introspector interface {
	// Tables returns every user table keyed by name. Entries carry the
	// table's collation and comment but no columns or indexes.
	// Internal tables (the sidecar and rebuild throwaways) are skipped.
	Tables(ctx context.Context) (map[string]*ast.TableDef, error)

	// Columns returns the columns of a table in definition order, with type
	// hints and comments applied. A missing table yields no columns.
	Columns(ctx context.Context, table string) ([]*ast.ColumnDef, error)

	// Indexes returns the indexes of a table sorted by name. The primary key
	// is reported as an index named "primary".
	Indexes(ctx context.Context, table string) ([]*ast.IndexDef, error)

	// PrimaryKeyName returns the physical name of the primary key
	// constraint, or "" when the table has none.
	PrimaryKeyName(ctx context.Context, table string) (string, error)

	// TableExists checks if a table exists in the database.
	TableExists(ctx context.Context, table string) (bool, error)
}

// New creates an Introspector for the given dialect.
// Returns nil if the dialect is not supported.
func New(db Querier, d dialect.Dialect) Introspector {
	switch d.Name() {
	case "mysql":
		return &mysqlIntrospector{db: db, dialect: d}
	case "postgres":
		return &postgresIntrospector{db: db, dialect: d}
	case "sqlite":
		s := &sqliteIntrospector{db: db, dialect: d}
		s.sidecar = metadata.NewStore(db, d.Placeholder, s.TableExists)
		return s
	case "sqlserver":
		return &sqlServerIntrospector{db: db, dialect: d}
	default:
		return nil
	}
}

// RawColumn represents column metadata from database catalog.
type RawColumn struct {
	Name          string
	DataType      string // Raw SQL type (varchar(50), int unsigned, ...)
	IsNullable    bool
	Default       sql.NullString // Raw default expression
	AutoIncrement bool
	Collation     string // empty when the column uses the inherited collation
	Comment       string // encoded content: optional [hint] then the comment
}

// buildColumn converts a catalog row to a canonical column descriptor.
func buildColumn(d dialect.Dialect, raw RawColumn) *ast.ColumnDef {
	ft := dialect.ExtractFieldType(raw.DataType)
	ft.AutoIncrement = raw.AutoIncrement
	typ, size, scale := dialect.Canonical(d, ft)

	col := &ast.ColumnDef{
		Name:      raw.Name,
		Type:      typ,
		Size:      size,
		Scale:     scale,
		Nullable:  raw.IsNullable,
		Collation: raw.Collation,
	}
	if raw.Default.Valid {
		col.Default = d.ParseDefault(raw.Default.String)
	}

	metadata.Decode(raw.Comment).Apply(col)

	// Identity columns are never nullable and their generator is not a default.
	if col.Type.IsIdentity() {
		col.Nullable = false
		col.Default = nil
	}
	return col
}

// IndexAccumulator merges catalog rows (one per index column) into index
// descriptors, keeping the catalog's column order.
type IndexAccumulator struct {
	indexes map[string]*ast.IndexDef
	order   []string
}

// NewIndexAccumulator creates a new IndexAccumulator.
func NewIndexAccumulator() *IndexAccumulator {
	return &IndexAccumulator{indexes: make(map[string]*ast.IndexDef)}
}

// Add appends column to the named index, creating the index on first use.
// Primary indexes are renamed to ast.PrimaryIndexName.
func (a *IndexAccumulator) Add(name, column string, unique, primary bool) {
	if primary {
		name = ast.PrimaryIndexName
		unique = true
	}
	if idx, ok := a.indexes[name]; ok {
		idx.Columns = append(idx.Columns, column)
		return
	}
	a.indexes[name] = &ast.IndexDef{
		Name:    name,
		Columns: []string{column},
		Unique:  unique,
		Primary: primary,
	}
	a.order = append(a.order, name)
}

// Values returns the accumulated indexes sorted by name.
func (a *IndexAccumulator) Values() []*ast.IndexDef {
	out := make([]*ast.IndexDef, 0, len(a.order))
	for _, name := range a.order {
		out = append(out, a.indexes[name])
	}
	sortIndexes(out)
	return out
}

func sortIndexes(indexes []*ast.IndexDef) {
	sort.Slice(indexes, func(i, j int) bool {
		return indexes[i].Name < indexes[j].Name
	})
}

// isInternalTable checks if a table should be skipped.
func isInternalTable(name string) bool {
	return name == metadata.TableName || strings.HasPrefix(name, RebuildPrefix)
}

// scanTables collects (name, collation, comment) rows into table descriptors,
// skipping internal tables.
func scanTables(rows *sql.Rows) (map[string]*ast.TableDef, error) {
	defer rows.Close()

	tables := make(map[string]*ast.TableDef)
	for rows.Next() {
		var name, collation, comment string
		if err := rows.Scan(&name, &collation, &comment); err != nil {
			return nil, err
		}
		if isInternalTable(name) {
			continue
		}
		tables[name] = &ast.TableDef{Name: name, Collation: collation, Comment: comment}
	}
	return tables, rows.Err()
}
