package dialect

import (
	"fmt"

	"github.com/hlop3z/ddlkit/internal/alerr"
	"github.com/hlop3z/ddlkit/internal/ast"
)

// sqlite implements the Dialect interface for SQLite.
type sqlite struct{}

// SQLite returns the SQLite dialect implementation.
func SQLite() Dialect {
	return &sqlite{}
}

func (d *sqlite) Name() string {
	return "sqlite"
}

// SQLite has no ALTER COLUMN, no ADD CONSTRAINT and no comments: every
// structural change is a rebuild and comments live in the sidecar.
func (d *sqlite) Capabilities() Capabilities {
	return Capabilities{
		TransactionalDDL:   true,
		RebuildAlterations: true,
		RebuildDropColumn:  true,
		RebuildNotNullAdd:  true,
		RebuildPrimaryKey:  true,
	}
}

// -----------------------------------------------------------------------------
// Type mappings
// SQLite keeps the declared type verbatim, so declared names carry the
// canonical type through the catalog even though storage uses affinities.
// -----------------------------------------------------------------------------

func (d *sqlite) ColumnType(col *ast.ColumnDef) (string, error) {
	switch col.Type {
	case ast.TypeIdentity, ast.TypeBigIdentity, ast.TypeInteger:
		// AUTOINCREMENT only works on exactly INTEGER PRIMARY KEY.
		return "INTEGER", nil
	case ast.TypeSmallInt:
		return "SMALLINT", nil
	case ast.TypeUnsignedInt:
		return "INTEGER UNSIGNED", nil
	case ast.TypeBigInt:
		return "BIGINT", nil
	case ast.TypeNumeric:
		return fmt.Sprintf("NUMERIC(%d,%d)", col.Size, col.Scale), nil
	case ast.TypeFloat:
		return "REAL", nil
	case ast.TypeString:
		return fmt.Sprintf("VARCHAR(%d)", col.Size), nil
	case ast.TypeText, ast.TypeArray, ast.TypeJSON, ast.TypeObject:
		return "TEXT", nil
	case ast.TypeGUID:
		return "CHAR(36)", nil
	case ast.TypeBinary:
		return fmt.Sprintf("BLOB(%d)", col.Size), nil
	case ast.TypeBlob:
		return "BLOB", nil
	case ast.TypeBoolean:
		return "BOOLEAN", nil
	case ast.TypeDate:
		return "DATE", nil
	case ast.TypeTime:
		return "TIME", nil
	case ast.TypeDatetime:
		return "DATETIME", nil
	case ast.TypeTimestamp:
		return "TIMESTAMP", nil
	}
	return "", unknownType(col, d.Name())
}

func (d *sqlite) ConvertFieldType(ft FieldType) ast.Type {
	switch ft.Base {
	case "integer", "int":
		switch {
		case ft.AutoIncrement:
			return ast.TypeIdentity
		case ft.Unsigned:
			return ast.TypeUnsignedInt
		}
		return ast.TypeInteger
	case "tinyint", "smallint", "int2":
		return ast.TypeSmallInt
	case "mediumint":
		return ast.TypeInteger
	case "bigint", "int8", "unsigned big int":
		return ast.TypeBigInt
	case "numeric", "decimal":
		return ast.TypeNumeric
	case "real", "double", "double precision", "float":
		return ast.TypeFloat
	case "varchar", "character varying", "nvarchar", "varying character", "native character", "nchar":
		return ast.TypeString
	case "character", "char":
		if ft.Size == 36 {
			return ast.TypeGUID
		}
		return ast.TypeString
	case "text", "clob":
		return ast.TypeText
	case "blob":
		if ft.Size > 0 {
			return ast.TypeBinary
		}
		return ast.TypeBlob
	case "boolean", "bool":
		return ast.TypeBoolean
	case "date":
		return ast.TypeDate
	case "time":
		return ast.TypeTime
	case "datetime":
		return ast.TypeDatetime
	case "timestamp":
		return ast.TypeTimestamp
	case "json":
		return ast.TypeJSON
	case "uuid":
		return ast.TypeGUID
	}
	return ast.TypeString
}

// -----------------------------------------------------------------------------
// Identifiers and literals
// -----------------------------------------------------------------------------

func (d *sqlite) QuoteIdent(name string) string {
	return quoteIdentWith(name, `"`, `"`)
}

func (d *sqlite) QuoteString(s string) string {
	return quoteStringLiteral(s)
}

func (d *sqlite) Placeholder(index int) string {
	// SQLite uses ? for all placeholders
	return "?"
}

func (d *sqlite) DefaultSQL(col *ast.ColumnDef, value any) string {
	return buildDefaultValueSQL(value, NumericBooleans, "CURRENT_TIMESTAMP")
}

func (d *sqlite) ParseDefault(raw string) any {
	return parseDefaultLiteral(raw)
}

// -----------------------------------------------------------------------------
// SQL generation
// -----------------------------------------------------------------------------

func (d *sqlite) columnConfig() ColumnDefConfig {
	return ColumnDefConfig{
		QuoteIdent: d.QuoteIdent,
		TypeSQL:    d.ColumnType,
		DefaultSQL: d.DefaultSQL,
		CollateSQL: func(c string) string { return c },
		IdentitySQL: func(*ast.ColumnDef) string {
			return "PRIMARY KEY AUTOINCREMENT"
		},
	}
}

func (d *sqlite) ColumnDefSQL(col *ast.ColumnDef) (string, error) {
	return buildColumnDefSQL(col, d.columnConfig())
}

// Table and column comments are written to the sidecar by the caller.
func (d *sqlite) CreateTableSQL(op *ast.CreateTable) ([]string, error) {
	def := op.Def
	create, err := buildCreateTableSQL(def, d.QuoteIdent, d.ColumnDefSQL, "")
	if err != nil {
		return nil, err
	}
	stmts := []string{create}
	for _, idx := range secondaryIndexes(def) {
		sql, err := d.CreateIndexSQL(&ast.CreateIndex{TableRef: ast.TableRef{TableName: def.Name}, Index: idx})
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, sql)
	}
	return stmts, nil
}

func (d *sqlite) DropTableSQL(op *ast.DropTable) (string, error) {
	return buildDropTableSQL(op, d.QuoteIdent)
}

func (d *sqlite) RenameTableSQL(op *ast.RenameTable) (string, error) {
	return buildRenameTableSQL(op, d.QuoteIdent)
}

// SQLite has no TRUNCATE; an unqualified DELETE uses the truncate optimization.
func (d *sqlite) TruncateTableSQL(op *ast.TruncateTable) (string, error) {
	return "DELETE FROM " + d.QuoteIdent(op.Name), nil
}

func (d *sqlite) AddColumnSQL(op *ast.AddColumn) ([]string, error) {
	sql, err := buildAddColumnSQL(op, d.QuoteIdent, d.ColumnDefSQL, "ADD COLUMN")
	if err != nil {
		return nil, err
	}
	return []string{sql}, nil
}

func (d *sqlite) DropColumnSQL(op *ast.DropColumn) (string, error) {
	return buildDropColumnSQL(op, d.QuoteIdent)
}

func (d *sqlite) RenameColumnSQL(op *ast.RenameColumn) (string, error) {
	return buildRenameColumnSQL(op, d.QuoteIdent)
}

// A primary key cannot be added after creation; the rebuild declares it
// inside CREATE TABLE instead.
func (d *sqlite) CreateIndexSQL(op *ast.CreateIndex) (string, error) {
	if op.Index.Primary {
		return "", alerr.New(alerr.EUnsupportedDialect, "sqlite cannot add a primary key in place").
			WithTable(op.TableName).
			WithDialect(d.Name())
	}
	return buildCreateIndexSQL(op, d.QuoteIdent)
}

func (d *sqlite) DropIndexSQL(op *ast.DropIndex) (string, error) {
	if op.Index.Primary {
		return "", alerr.New(alerr.EUnsupportedDialect, "sqlite cannot drop a primary key in place").
			WithTable(op.TableName).
			WithDialect(d.Name())
	}
	return buildDropIndexSQL(op, d.QuoteIdent)
}

func (d *sqlite) CopyRowsSQL(c *RowCopy) []string {
	return []string{buildCopyRowsSQL(c, d.QuoteIdent)}
}
