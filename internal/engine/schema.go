package engine

import (
	"context"
	"log/slog"
	"slices"
	"sort"

	"github.com/hlop3z/ddlkit/internal/alerr"
	"github.com/hlop3z/ddlkit/internal/ast"
	"github.com/hlop3z/ddlkit/internal/dialect"
	"github.com/hlop3z/ddlkit/internal/introspect"
	"github.com/hlop3z/ddlkit/internal/metadata"
)

// Options configures a Schema.
type Options struct {
	// StrictRebuild refuses to rebuild tables on dialects whose DDL commits
	// the enclosing transaction, instead of warning and proceeding.
	StrictRebuild bool

	// Logger receives statement and rebuild logs. Nil uses slog.Default().
	Logger *slog.Logger
}

// Schema creates, alters and reads back tables through one connection.
// Descriptors are read fresh from the catalog on every call.
type Schema struct {
	conn    *Conn
	dialect dialect.Dialect
	intro   introspect.Introspector
	sidecar *metadata.Store // nil when the dialect has native comments
	opts    Options
	logger  *slog.Logger
}

// New binds a dialect to db, which may be a *sql.DB, *sql.Tx or *sql.Conn.
func New(db Executor, d dialect.Dialect, opts Options) (*Schema, error) {
	if d == nil {
		return nil, alerr.New(alerr.EUnsupportedDialect, "dialect is required")
	}
	intro := introspect.New(db, d)
	if intro == nil {
		return nil, alerr.Newf(alerr.EUnsupportedDialect, "no introspector for dialect %q", d.Name()).
			WithDialect(d.Name())
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Schema{
		conn:    NewConn(db, logger),
		dialect: d,
		intro:   intro,
		opts:    opts,
		logger:  logger.With("dialect", d.Name()),
	}
	if !d.Capabilities().NativeComments {
		s.sidecar = metadata.NewStore(db, d.Placeholder, intro.TableExists)
	}
	return s, nil
}

// Dialect returns the bound dialect.
func (s *Schema) Dialect() dialect.Dialect {
	return s.dialect
}

// Conn returns the connection statements are issued through.
func (s *Schema) Conn() *Conn {
	return s.conn
}

// -----------------------------------------------------------------------------
// Reads
// -----------------------------------------------------------------------------

// Tables returns every user table keyed by name, with collation and comment.
func (s *Schema) Tables(ctx context.Context) (map[string]*ast.TableDef, error) {
	return s.intro.Tables(ctx)
}

// Columns returns the columns of table in definition order.
func (s *Schema) Columns(ctx context.Context, table string) ([]*ast.ColumnDef, error) {
	cols, err := s.intro.Columns(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, s.tableNotFound(ctx, table)
	}
	return cols, nil
}

// Indexes returns the indexes of table sorted by name, the primary key
// included under the name "primary".
func (s *Schema) Indexes(ctx context.Context, table string) ([]*ast.IndexDef, error) {
	ok, err := s.intro.TableExists(ctx, table)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.tableNotFound(ctx, table)
	}
	return s.intro.Indexes(ctx, table)
}

// Table returns the full descriptor of table.
func (s *Schema) Table(ctx context.Context, name string) (*ast.TableDef, error) {
	tables, err := s.intro.Tables(ctx)
	if err != nil {
		return nil, err
	}
	def, ok := tables[name]
	if !ok {
		return nil, notFound(name, s.dialect.Name(), tables)
	}

	if def.Columns, err = s.intro.Columns(ctx, name); err != nil {
		return nil, err
	}
	if def.Indexes, err = s.intro.Indexes(ctx, name); err != nil {
		return nil, err
	}
	return def, nil
}

// HasTable reports whether table exists.
func (s *Schema) HasTable(ctx context.Context, table string) (bool, error) {
	return s.intro.TableExists(ctx, table)
}

// HasColumn reports whether table has the column.
func (s *Schema) HasColumn(ctx context.Context, table, column string) (bool, error) {
	cols, err := s.intro.Columns(ctx, table)
	if err != nil {
		return false, err
	}
	return findColumn(cols, column) != nil, nil
}

// Zero returns the zero value of a canonical type.
func (s *Schema) Zero(t ast.Type) (any, error) {
	return ast.Zero(t)
}

func (s *Schema) tableNotFound(ctx context.Context, table string) error {
	tables, err := s.intro.Tables(ctx)
	if err != nil {
		tables = nil
	}
	return notFound(table, s.dialect.Name(), tables)
}

func notFound(table, dialectName string, tables map[string]*ast.TableDef) error {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return alerr.Newf(alerr.ErrTableNotFound, "table %q does not exist", table).
		WithTable(table).
		WithDialect(dialectName).
		WithHelp(alerr.SuggestSimilar(table, names))
}

// -----------------------------------------------------------------------------
// Table operations
// -----------------------------------------------------------------------------

// CreateTable creates a table with its indexes, comments and type hints.
func (s *Schema) CreateTable(ctx context.Context, def *ast.TableDef) error {
	op := &ast.CreateTable{Def: def}
	if err := op.Validate(); err != nil {
		return err
	}

	norm := def.Normalized()
	stmts, err := s.dialect.CreateTableSQL(&ast.CreateTable{Def: norm})
	if err != nil {
		return err
	}
	if err := s.conn.ExecAll(ctx, stmts); err != nil {
		return err
	}
	return s.writeSidecar(ctx, norm)
}

// DropTable drops a table and its sidecar rows.
func (s *Schema) DropTable(ctx context.Context, name string) error {
	op := &ast.DropTable{Name: name}
	if err := op.Validate(); err != nil {
		return err
	}
	stmt, err := s.dialect.DropTableSQL(op)
	if err != nil {
		return err
	}
	if _, err := s.conn.Exec(ctx, stmt); err != nil {
		return err
	}
	if s.sidecar != nil {
		return s.sidecar.DeleteTable(ctx, name)
	}
	return nil
}

// RenameTable renames a table and re-keys its sidecar rows.
func (s *Schema) RenameTable(ctx context.Context, from, to string) error {
	op := &ast.RenameTable{OldName: from, NewName: to}
	if err := op.Validate(); err != nil {
		return err
	}
	stmt, err := s.dialect.RenameTableSQL(op)
	if err != nil {
		return err
	}
	if _, err := s.conn.Exec(ctx, stmt); err != nil {
		return err
	}
	if s.sidecar == nil {
		return nil
	}
	if err := s.sidecar.DeleteTable(ctx, to); err != nil {
		return err
	}
	return s.sidecar.RenameTable(ctx, from, to)
}

// TruncateTable removes every row of a table.
func (s *Schema) TruncateTable(ctx context.Context, name string) error {
	op := &ast.TruncateTable{Name: name}
	if err := op.Validate(); err != nil {
		return err
	}
	stmt, err := s.dialect.TruncateTableSQL(op)
	if err != nil {
		return err
	}
	_, err = s.conn.Exec(ctx, stmt)
	return err
}

// -----------------------------------------------------------------------------
// Column operations
// -----------------------------------------------------------------------------

// AddColumn appends a column to table.
func (s *Schema) AddColumn(ctx context.Context, table string, col *ast.ColumnDef) error {
	op := &ast.AddColumn{TableRef: ast.TableRef{TableName: table}, Column: col}
	if err := op.Validate(); err != nil {
		return err
	}
	cols, err := s.Columns(ctx, table)
	if err != nil {
		return err
	}
	if findColumn(cols, col.Name) != nil {
		return alerr.Newf(alerr.ErrDuplicateName, "column %q already exists", col.Name).
			WithTable(table)
	}

	if s.dialect.Capabilities().RequiresRebuild(op) {
		return s.rebuild(ctx, table, change{add: col})
	}

	norm := col.Normalized()
	stmts, err := s.dialect.AddColumnSQL(&ast.AddColumn{TableRef: op.TableRef, Column: norm})
	if err != nil {
		return err
	}
	if err := s.conn.ExecAll(ctx, stmts); err != nil {
		return err
	}
	if s.sidecar != nil {
		return s.sidecar.Put(ctx, table, col.Name, dialect.ColumnContent(s.dialect, norm))
	}
	return nil
}

// DropColumn removes a column and every index that references it.
func (s *Schema) DropColumn(ctx context.Context, table, name string) error {
	op := &ast.DropColumn{TableRef: ast.TableRef{TableName: table}, Name: name}
	if err := op.Validate(); err != nil {
		return err
	}
	cols, err := s.Columns(ctx, table)
	if err != nil {
		return err
	}
	if err := requireColumn(table, cols, name); err != nil {
		return err
	}
	if len(cols) == 1 {
		return alerr.Newf(alerr.ErrEmptyTable, "cannot drop %q, the last column", name).WithTable(table)
	}

	if s.dialect.Capabilities().RequiresRebuild(op) {
		return s.rebuild(ctx, table, change{drop: name})
	}

	// Engines disagree on what happens to a multi-column index losing a
	// column, so such indexes are dropped first everywhere.
	indexes, err := s.intro.Indexes(ctx, table)
	if err != nil {
		return err
	}
	for _, idx := range indexes {
		if idx.Primary || !idx.References(name) {
			continue
		}
		stmt, err := s.dialect.DropIndexSQL(&ast.DropIndex{TableRef: op.TableRef, Index: idx})
		if err != nil {
			return err
		}
		if _, err := s.conn.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	stmt, err := s.dialect.DropColumnSQL(op)
	if err != nil {
		return err
	}
	if _, err := s.conn.Exec(ctx, stmt); err != nil {
		return err
	}
	if s.sidecar != nil {
		return s.sidecar.Delete(ctx, table, name)
	}
	return nil
}

// RenameColumn renames a column. Indexes keep their names.
func (s *Schema) RenameColumn(ctx context.Context, table, from, to string) error {
	op := &ast.RenameColumn{TableRef: ast.TableRef{TableName: table}, OldName: from, NewName: to}
	if err := op.Validate(); err != nil {
		return err
	}
	cols, err := s.Columns(ctx, table)
	if err != nil {
		return err
	}
	if err := requireColumn(table, cols, from); err != nil {
		return err
	}
	if findColumn(cols, to) != nil {
		return alerr.Newf(alerr.ErrDuplicateName, "column %q already exists", to).WithTable(table)
	}

	if s.dialect.Capabilities().RequiresRebuild(op) {
		return s.rebuild(ctx, table, change{renameFrom: from, renameTo: to})
	}

	stmt, err := s.dialect.RenameColumnSQL(op)
	if err != nil {
		return err
	}
	if _, err := s.conn.Exec(ctx, stmt); err != nil {
		return err
	}
	if s.sidecar != nil {
		return s.sidecar.RenameColumn(ctx, table, from, to)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Index operations
// -----------------------------------------------------------------------------

// AddIndex creates an index, a unique index or the primary key. A missing
// name defaults to <table>_<columns>_<index|unique|primary>.
func (s *Schema) AddIndex(ctx context.Context, table string, idx *ast.IndexDef) error {
	if idx == nil {
		return alerr.New(alerr.ErrIndexSpec, "index definition is required").WithTable(table)
	}
	op := &ast.CreateIndex{TableRef: ast.TableRef{TableName: table}, Index: idx.Normalized(table)}
	if err := op.Validate(); err != nil {
		return err
	}
	cols, err := s.Columns(ctx, table)
	if err != nil {
		return err
	}
	for _, c := range op.Index.Columns {
		if err := requireColumn(table, cols, c); err != nil {
			return err
		}
	}

	if s.dialect.Capabilities().RequiresRebuild(op) {
		return s.rebuild(ctx, table, change{addPrimary: op.Index})
	}

	stmt, err := s.dialect.CreateIndexSQL(op)
	if err != nil {
		return err
	}
	_, err = s.conn.Exec(ctx, stmt)
	return err
}

// DropIndex drops the index matched by name, by the primary flag, or by its
// exact column list.
func (s *Schema) DropIndex(ctx context.Context, table string, idx *ast.IndexDef) error {
	op := &ast.DropIndex{TableRef: ast.TableRef{TableName: table}, Index: idx}
	if err := op.Validate(); err != nil {
		return err
	}
	resolved, err := s.resolveIndex(ctx, table, idx)
	if err != nil {
		return err
	}
	op.Index = resolved

	if resolved.Primary {
		cols, err := s.intro.Columns(ctx, table)
		if err != nil {
			return err
		}
		for _, c := range cols {
			if c.Type.IsIdentity() && resolved.References(c.Name) {
				return alerr.Newf(alerr.ErrInvalidSpec, "identity column %q must stay the primary key", c.Name).
					WithTable(table)
			}
		}
		if s.dialect.Capabilities().RequiresRebuild(op) {
			return s.rebuild(ctx, table, change{dropPrimary: true})
		}
		// Engines that drop the key as a constraint need its physical name.
		name, err := s.intro.PrimaryKeyName(ctx, table)
		if err != nil {
			return err
		}
		resolved.Name = name
	}

	stmt, err := s.dialect.DropIndexSQL(op)
	if err != nil {
		return err
	}
	_, err = s.conn.Exec(ctx, stmt)
	return err
}

// resolveIndex finds the live index an (possibly partial) descriptor refers to.
func (s *Schema) resolveIndex(ctx context.Context, table string, want *ast.IndexDef) (*ast.IndexDef, error) {
	indexes, err := s.Indexes(ctx, table)
	if err != nil {
		return nil, err
	}
	for _, idx := range indexes {
		switch {
		case want.Primary:
			if idx.Primary {
				return idx, nil
			}
		case want.Name != "":
			if idx.Name == want.Name {
				return idx, nil
			}
		case slices.Equal(idx.Columns, want.Columns) && !idx.Primary:
			return idx, nil
		}
	}

	names := make([]string, 0, len(indexes))
	for _, idx := range indexes {
		names = append(names, idx.Name)
	}
	e := alerr.New(alerr.ErrIndexSpec, "no matching index").WithTable(table)
	switch {
	case want.Primary:
		e = alerr.New(alerr.ErrIndexSpec, "table has no primary key").WithTable(table)
	case want.Name != "":
		e.With("index", want.Name).WithHelp(alerr.SuggestSimilar(want.Name, names))
	default:
		e.With("columns", want.Columns)
	}
	return nil, e
}

// -----------------------------------------------------------------------------
// Dispatch
// -----------------------------------------------------------------------------

// Apply runs one operation.
func (s *Schema) Apply(ctx context.Context, op ast.Operation) error {
	switch o := op.(type) {
	case *ast.CreateTable:
		if o.Def == nil {
			return o.Validate()
		}
		return s.CreateTable(ctx, o.Def)
	case *ast.DropTable:
		return s.DropTable(ctx, o.Name)
	case *ast.RenameTable:
		return s.RenameTable(ctx, o.OldName, o.NewName)
	case *ast.TruncateTable:
		return s.TruncateTable(ctx, o.Name)
	case *ast.AddColumn:
		if o.Column == nil {
			return o.Validate()
		}
		return s.AddColumn(ctx, o.TableName, o.Column)
	case *ast.DropColumn:
		return s.DropColumn(ctx, o.TableName, o.Name)
	case *ast.RenameColumn:
		return s.RenameColumn(ctx, o.TableName, o.OldName, o.NewName)
	case *ast.CreateIndex:
		return s.AddIndex(ctx, o.TableName, o.Index)
	case *ast.DropIndex:
		if o.Index == nil {
			return o.Validate()
		}
		return s.DropIndex(ctx, o.TableName, o.Index)
	case nil:
		return alerr.New(alerr.ErrInvalidSpec, "operation is required")
	}
	return alerr.Newf(alerr.ErrInvalidSpec, "unsupported operation %s", op.Type())
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// writeSidecar replaces the sidecar rows of def with its table comment and
// the content of every column.
func (s *Schema) writeSidecar(ctx context.Context, def *ast.TableDef) error {
	if s.sidecar == nil {
		return nil
	}
	if err := s.sidecar.DeleteTable(ctx, def.Name); err != nil {
		return err
	}
	if err := s.sidecar.Put(ctx, def.Name, "", metadata.Content{Comment: def.Comment}); err != nil {
		return err
	}
	for _, col := range def.Columns {
		if err := s.sidecar.Put(ctx, def.Name, col.Name, dialect.ColumnContent(s.dialect, col)); err != nil {
			return err
		}
	}
	return nil
}

func findColumn(cols []*ast.ColumnDef, name string) *ast.ColumnDef {
	for _, c := range cols {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func requireColumn(table string, cols []*ast.ColumnDef, name string) error {
	if findColumn(cols, name) != nil {
		return nil
	}
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return alerr.Newf(alerr.ErrUnknownColumn, "column %q does not exist", name).
		WithTable(table).
		WithHelp(alerr.SuggestSimilar(name, names))
}
