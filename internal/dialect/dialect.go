// Package dialect provides database-specific SQL generation.
// Each dialect maps canonical column types to physical ones and back,
// quotes identifiers and literals, and renders the DDL statements of the
// schema operations, overriding the shared builders in base.go where its
// engine's syntax diverges.
package dialect

import (
	"github.com/hlop3z/ddlkit/internal/ast"
)

// Dialect defines the interface for database-specific SQL generation.
// Implementations exist for MySQL, PostgreSQL, SQLite and SQL Server.
type Dialect interface {
	// Name returns the dialect name (mysql, postgres, sqlite, sqlserver).
	Name() string

	// Capabilities describes which alterations the engine can do in place.
	Capabilities() Capabilities

	// -------------------------------------------------------------------------
	// Type mappings
	// -------------------------------------------------------------------------

	// ColumnType returns the physical type of a normalized column, without
	// nullability, identity or default clauses.
	// MySQL: string(50) -> VARCHAR(50)
	// SQL Server: string(50) -> NVARCHAR(50)
	ColumnType(col *ast.ColumnDef) (string, error)

	// ConvertFieldType maps a parsed catalog type to a canonical type.
	// It never fails: unrecognized types map to ast.TypeString.
	ConvertFieldType(ft FieldType) ast.Type

	// -------------------------------------------------------------------------
	// Identifiers and literals
	// -------------------------------------------------------------------------

	// QuoteIdent quotes an identifier (table/column name) for the dialect.
	// MySQL: `name`, PostgreSQL/SQLite: "name", SQL Server: [name]
	QuoteIdent(name string) string

	// QuoteString renders s as a string literal.
	QuoteString(s string) string

	// Placeholder returns a parameter placeholder for the given index (1-based).
	// PostgreSQL: $1, SQL Server: @p1, others: ?
	Placeholder(index int) string

	// DefaultSQL renders value as a DEFAULT literal for col.
	DefaultSQL(col *ast.ColumnDef, value any) string

	// ParseDefault turns a catalog default expression into a default value:
	// nil, ast.CurrentTimestamp, or the unquoted literal text.
	ParseDefault(raw string) any

	// -------------------------------------------------------------------------
	// SQL generation for operations
	// -------------------------------------------------------------------------

	// ColumnDefSQL renders the column definition fragment.
	ColumnDefSQL(col *ast.ColumnDef) (string, error)

	// CreateTableSQL generates CREATE TABLE followed by the statements for
	// non-primary indexes and native comments.
	CreateTableSQL(op *ast.CreateTable) ([]string, error)

	// DropTableSQL generates DROP TABLE.
	DropTableSQL(op *ast.DropTable) (string, error)

	// RenameTableSQL generates the table rename statement.
	RenameTableSQL(op *ast.RenameTable) (string, error)

	// TruncateTableSQL generates the statement removing every row.
	TruncateTableSQL(op *ast.TruncateTable) (string, error)

	// AddColumnSQL generates ALTER TABLE ADD followed by native comment statements.
	AddColumnSQL(op *ast.AddColumn) ([]string, error)

	// DropColumnSQL generates ALTER TABLE DROP COLUMN.
	DropColumnSQL(op *ast.DropColumn) (string, error)

	// RenameColumnSQL generates the column rename statement.
	RenameColumnSQL(op *ast.RenameColumn) (string, error)

	// CreateIndexSQL generates CREATE [UNIQUE] INDEX, or ADD PRIMARY KEY.
	CreateIndexSQL(op *ast.CreateIndex) (string, error)

	// DropIndexSQL generates the index drop statement. For a primary key,
	// op.Index.Name must hold the physical constraint name where the
	// engine drops constraints by name.
	DropIndexSQL(op *ast.DropIndex) (string, error)

	// CopyRowsSQL generates the statements copying rows between two tables
	// with identical positional column lists.
	CopyRowsSQL(c *RowCopy) []string
}

// Capabilities lists what an engine cannot alter in place. The rebuild
// engine takes over the flagged operations.
type Capabilities struct {
	// NativeComments is false where comments and type hints live in the sidecar.
	NativeComments bool
	// TransactionalDDL is false where DDL commits the enclosing transaction.
	TransactionalDDL bool
	// RebuildAlterations routes every structural column or key change through a rebuild.
	RebuildAlterations bool
	// RebuildDropColumn routes column drops through a rebuild.
	RebuildDropColumn bool
	// RebuildNotNullAdd routes adding a non-null column without default through a rebuild.
	RebuildNotNullAdd bool
	// RebuildPrimaryKey routes primary key add/drop through a rebuild.
	RebuildPrimaryKey bool
}

// RequiresRebuild reports whether op must go through the table rebuild.
func (c Capabilities) RequiresRebuild(op ast.Operation) bool {
	switch o := op.(type) {
	case *ast.AddColumn:
		if c.RebuildAlterations {
			return true
		}
		col := o.Column
		return c.RebuildNotNullAdd && !col.Nullable && !col.HasDefault() && !col.Type.IsIdentity()
	case *ast.DropColumn:
		return c.RebuildAlterations || c.RebuildDropColumn
	case *ast.RenameColumn:
		return c.RebuildAlterations
	case *ast.CreateIndex:
		return o.Index.Primary && (c.RebuildAlterations || c.RebuildPrimaryKey)
	case *ast.DropIndex:
		return o.Index.Primary && (c.RebuildAlterations || c.RebuildPrimaryKey)
	}
	return false
}

// RowCopy describes INSERT INTO Table (Targets) SELECT Sources FROM Source.
type RowCopy struct {
	Table    string
	Source   string
	Targets  []string // column names
	Sources  []string // SQL expressions, positionally matching Targets
	Identity string   // identity column among Targets, if any
}

// Get returns the dialect implementation for the given name.
// Valid names: "mysql", "mariadb", "postgres", "postgresql", "pgx",
// "sqlite", "sqlite3", "sqlserver", "mssql".
// Returns nil if the dialect is not supported.
func Get(name string) Dialect {
	switch name {
	case "mysql", "mariadb":
		return MySQL()
	case "postgres", "postgresql", "pgx":
		return Postgres()
	case "sqlite", "sqlite3":
		return SQLite()
	case "sqlserver", "mssql":
		return SQLServer()
	default:
		return nil
	}
}

// Names returns the list of supported dialect names.
func Names() []string {
	return []string{"mysql", "postgres", "sqlite", "sqlserver"}
}
