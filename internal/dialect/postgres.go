package dialect

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hlop3z/ddlkit/internal/ast"
)

// postgres implements the Dialect interface for PostgreSQL.
type postgres struct{}

// Postgres returns the PostgreSQL dialect implementation.
func Postgres() Dialect {
	return &postgres{}
}

func (d *postgres) Name() string {
	return "postgres"
}

// Adding a NOT NULL column without a default fails on a populated table,
// so it is rebuilt with the zero value backfilled.
func (d *postgres) Capabilities() Capabilities {
	return Capabilities{
		NativeComments:   true,
		TransactionalDDL: true,
	}
}

// -----------------------------------------------------------------------------
// Type mappings
// -----------------------------------------------------------------------------

func (d *postgres) ColumnType(col *ast.ColumnDef) (string, error) {
	switch col.Type {
	case ast.TypeIdentity, ast.TypeInteger:
		return "INTEGER", nil
	case ast.TypeBigIdentity, ast.TypeBigInt, ast.TypeUnsignedInt:
		// No unsigned integers: BIGINT holds the full unsigned 32-bit range.
		return "BIGINT", nil
	case ast.TypeSmallInt:
		return "SMALLINT", nil
	case ast.TypeNumeric:
		return fmt.Sprintf("NUMERIC(%d,%d)", col.Size, col.Scale), nil
	case ast.TypeFloat:
		return "DOUBLE PRECISION", nil
	case ast.TypeString:
		return fmt.Sprintf("VARCHAR(%d)", col.Size), nil
	case ast.TypeText, ast.TypeArray, ast.TypeJSON, ast.TypeObject:
		return "TEXT", nil
	case ast.TypeGUID:
		return "UUID", nil
	case ast.TypeBinary, ast.TypeBlob:
		return "BYTEA", nil
	case ast.TypeBoolean:
		return "BOOLEAN", nil
	case ast.TypeDate:
		return "DATE", nil
	case ast.TypeTime:
		return "TIME", nil
	case ast.TypeDatetime:
		return "TIMESTAMP", nil
	case ast.TypeTimestamp:
		return "TIMESTAMPTZ", nil
	}
	return "", unknownType(col, d.Name())
}

// ConvertFieldType accepts format_type() output as well as the short aliases.
func (d *postgres) ConvertFieldType(ft FieldType) ast.Type {
	if strings.HasSuffix(ft.Base, "[]") {
		return ast.TypeArray
	}
	switch ft.Base {
	case "smallint", "int2", "smallserial":
		return ast.TypeSmallInt
	case "integer", "int", "int4", "serial":
		if ft.AutoIncrement || ft.Base == "serial" {
			return ast.TypeIdentity
		}
		return ast.TypeInteger
	case "bigint", "int8", "bigserial":
		if ft.AutoIncrement || ft.Base == "bigserial" {
			return ast.TypeBigIdentity
		}
		return ast.TypeBigInt
	case "numeric", "decimal":
		return ast.TypeNumeric
	case "real", "double precision", "float4", "float8":
		return ast.TypeFloat
	case "character varying", "varchar":
		if ft.Size == 0 {
			return ast.TypeText
		}
		return ast.TypeString
	case "character", "char", "bpchar":
		if ft.Size == 36 {
			return ast.TypeGUID
		}
		return ast.TypeString
	case "text", "citext":
		return ast.TypeText
	case "uuid":
		return ast.TypeGUID
	case "bytea":
		return ast.TypeBlob
	case "boolean", "bool":
		return ast.TypeBoolean
	case "date":
		return ast.TypeDate
	case "time", "time without time zone", "time with time zone", "timetz":
		return ast.TypeTime
	case "timestamp", "timestamp without time zone":
		return ast.TypeDatetime
	case "timestamptz", "timestamp with time zone":
		return ast.TypeTimestamp
	case "json", "jsonb":
		return ast.TypeJSON
	}
	return ast.TypeString
}

// -----------------------------------------------------------------------------
// Identifiers and literals
// -----------------------------------------------------------------------------

func (d *postgres) QuoteIdent(name string) string {
	return quoteIdentWith(name, `"`, `"`)
}

func (d *postgres) QuoteString(s string) string {
	return quoteStringLiteral(s)
}

func (d *postgres) Placeholder(index int) string {
	return "$" + strconv.Itoa(index)
}

// Integer defaults on BOOLEAN columns are rendered as TRUE/FALSE.
func (d *postgres) DefaultSQL(col *ast.ColumnDef, value any) string {
	if col.Type == ast.TypeBoolean {
		switch v := value.(type) {
		case int:
			value = v != 0
		case int64:
			value = v != 0
		}
	}
	return buildDefaultValueSQL(value, PostgresBooleans, "CURRENT_TIMESTAMP")
}

// ParseDefault strips the type cast: 'abc'::character varying -> abc.
// Sequence defaults (serial columns) are not literal defaults.
func (d *postgres) ParseDefault(raw string) any {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(strings.ToLower(s), "nextval(") {
		return nil
	}
	s = stripParens(s)
	if i := strings.LastIndex(s, "::"); i > 0 && (strings.HasSuffix(s[:i], "'") || balanced(s[:i])) {
		s = s[:i]
	}
	return parseDefaultLiteral(s)
}

// -----------------------------------------------------------------------------
// SQL generation
// -----------------------------------------------------------------------------

func (d *postgres) columnConfig() ColumnDefConfig {
	return ColumnDefConfig{
		QuoteIdent: d.QuoteIdent,
		TypeSQL:    d.ColumnType,
		DefaultSQL: d.DefaultSQL,
		CollateSQL: d.QuoteIdent,
		IdentitySQL: func(*ast.ColumnDef) string {
			return "GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY"
		},
	}
}

func (d *postgres) ColumnDefSQL(col *ast.ColumnDef) (string, error) {
	return buildColumnDefSQL(col, d.columnConfig())
}

// commentSQL generates COMMENT ON TABLE/COLUMN.
func (d *postgres) commentSQL(table, column, content string) string {
	if column == "" {
		return "COMMENT ON TABLE " + d.QuoteIdent(table) + " IS " + d.QuoteString(content)
	}
	return "COMMENT ON COLUMN " + d.QuoteIdent(table) + "." + d.QuoteIdent(column) + " IS " + d.QuoteString(content)
}

func (d *postgres) CreateTableSQL(op *ast.CreateTable) ([]string, error) {
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

	if def.Comment != "" {
		stmts = append(stmts, d.commentSQL(def.Name, "", def.Comment))
	}
	for _, col := range def.Columns {
		if content := ColumnContent(d, col).String(); content != "" {
			stmts = append(stmts, d.commentSQL(def.Name, col.Name, content))
		}
	}
	return stmts, nil
}

func (d *postgres) DropTableSQL(op *ast.DropTable) (string, error) {
	return buildDropTableSQL(op, d.QuoteIdent)
}

func (d *postgres) RenameTableSQL(op *ast.RenameTable) (string, error) {
	return buildRenameTableSQL(op, d.QuoteIdent)
}

func (d *postgres) TruncateTableSQL(op *ast.TruncateTable) (string, error) {
	return buildTruncateTableSQL(op, d.QuoteIdent)
}

// A NOT NULL column without a default is added with the zero value of its
// type as a temporary default, which fills the existing rows, and the
// default is dropped right after.
func (d *postgres) AddColumnSQL(op *ast.AddColumn) ([]string, error) {
	add := op
	col := op.Column
	backfill := !col.Nullable && !col.HasDefault() && !col.Type.IsIdentity()
	if backfill {
		zero, err := ast.Zero(col.Type)
		if err != nil {
			return nil, err
		}
		filled := *col
		filled.Default = zero
		add = &ast.AddColumn{TableRef: op.TableRef, Column: &filled}
	}

	sql, err := buildAddColumnSQL(add, d.QuoteIdent, d.ColumnDefSQL, "ADD COLUMN")
	if err != nil {
		return nil, err
	}
	stmts := []string{sql}
	if backfill {
		stmts = append(stmts, "ALTER TABLE "+d.QuoteIdent(op.TableName)+" ALTER COLUMN "+d.QuoteIdent(col.Name)+" DROP DEFAULT")
	}
	if content := ColumnContent(d, op.Column).String(); content != "" {
		stmts = append(stmts, d.commentSQL(op.TableName, op.Column.Name, content))
	}
	return stmts, nil
}

func (d *postgres) DropColumnSQL(op *ast.DropColumn) (string, error) {
	return buildDropColumnSQL(op, d.QuoteIdent)
}

func (d *postgres) RenameColumnSQL(op *ast.RenameColumn) (string, error) {
	return buildRenameColumnSQL(op, d.QuoteIdent)
}

func (d *postgres) CreateIndexSQL(op *ast.CreateIndex) (string, error) {
	return buildCreateIndexSQL(op, d.QuoteIdent)
}

// The primary key is dropped by its constraint name, looked up in pg_constraint.
func (d *postgres) DropIndexSQL(op *ast.DropIndex) (string, error) {
	if op.Index.Primary {
		return buildDropConstraintSQL(op.TableName, op.Index.Name, d.QuoteIdent)
	}
	return buildDropIndexSQL(op, d.QuoteIdent)
}

// Explicit identity values do not advance the sequence; it is moved past
// the copied maximum.
func (d *postgres) CopyRowsSQL(c *RowCopy) []string {
	stmts := []string{buildCopyRowsSQL(c, d.QuoteIdent)}
	if c.Identity != "" {
		stmts = append(stmts, fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence(%s, %s), COALESCE(MAX(%s), 0) + 1, false) FROM %s",
			d.QuoteString(d.QuoteIdent(c.Table)), d.QuoteString(c.Identity),
			d.QuoteIdent(c.Identity), d.QuoteIdent(c.Table)))
	}
	return stmts
}
