package dialect

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hlop3z/ddlkit/internal/ast"
)

// mysql implements the Dialect interface for MySQL 8 and MariaDB.
type mysql struct{}

// MySQL returns the MySQL dialect implementation.
func MySQL() Dialect {
	return &mysql{}
}

func (d *mysql) Name() string {
	return "mysql"
}

// A dropped column would shrink multi-column indexes instead of removing
// them, and a NOT NULL add would fill rows with the implicit type default
// rather than the zero value. Both are rebuilt, as are primary key changes.
// DDL commits the surrounding transaction, so these rebuilds are not atomic.
func (d *mysql) Capabilities() Capabilities {
	return Capabilities{
		NativeComments:    true,
		RebuildDropColumn: true,
		RebuildNotNullAdd: true,
		RebuildPrimaryKey: true,
	}
}

// -----------------------------------------------------------------------------
// Type mappings
// -----------------------------------------------------------------------------

func (d *mysql) ColumnType(col *ast.ColumnDef) (string, error) {
	switch col.Type {
	case ast.TypeIdentity, ast.TypeUnsignedInt:
		return "INT UNSIGNED", nil
	case ast.TypeBigIdentity:
		return "BIGINT UNSIGNED", nil
	case ast.TypeSmallInt:
		return "SMALLINT", nil
	case ast.TypeInteger:
		return "INT", nil
	case ast.TypeBigInt:
		return "BIGINT", nil
	case ast.TypeNumeric:
		return fmt.Sprintf("DECIMAL(%d,%d)", col.Size, col.Scale), nil
	case ast.TypeFloat:
		return "DOUBLE", nil
	case ast.TypeString:
		return fmt.Sprintf("VARCHAR(%d)", col.Size), nil
	case ast.TypeText:
		return "TEXT", nil
	case ast.TypeGUID:
		return "CHAR(36)", nil
	case ast.TypeBinary:
		return fmt.Sprintf("VARBINARY(%d)", col.Size), nil
	case ast.TypeBlob:
		return "LONGBLOB", nil
	case ast.TypeBoolean:
		return "TINYINT(1)", nil
	case ast.TypeDate:
		return "DATE", nil
	case ast.TypeTime:
		return "TIME", nil
	case ast.TypeDatetime:
		return "DATETIME", nil
	case ast.TypeTimestamp:
		return "TIMESTAMP", nil
	case ast.TypeArray, ast.TypeJSON, ast.TypeObject:
		return "LONGTEXT", nil
	}
	return "", unknownType(col, d.Name())
}

func (d *mysql) ConvertFieldType(ft FieldType) ast.Type {
	switch ft.Base {
	case "tinyint":
		if ft.Size == 1 {
			return ast.TypeBoolean
		}
		return ast.TypeSmallInt
	case "bool", "boolean":
		return ast.TypeBoolean
	case "bit":
		if ft.Size <= 1 {
			return ast.TypeBoolean
		}
		return ast.TypeBinary
	case "smallint":
		return ast.TypeSmallInt
	case "mediumint", "int", "integer":
		switch {
		case ft.AutoIncrement:
			return ast.TypeIdentity
		case ft.Unsigned:
			return ast.TypeUnsignedInt
		}
		return ast.TypeInteger
	case "bigint":
		if ft.AutoIncrement {
			return ast.TypeBigIdentity
		}
		return ast.TypeBigInt
	case "decimal", "numeric", "dec", "fixed":
		return ast.TypeNumeric
	case "float", "double", "double precision", "real":
		return ast.TypeFloat
	case "char":
		if ft.Size == 36 {
			return ast.TypeGUID
		}
		return ast.TypeString
	case "varchar":
		return ast.TypeString
	case "tinytext", "text", "mediumtext", "longtext":
		return ast.TypeText
	case "binary", "varbinary":
		return ast.TypeBinary
	case "tinyblob", "blob", "mediumblob", "longblob":
		return ast.TypeBlob
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
	}
	return ast.TypeString
}

// -----------------------------------------------------------------------------
// Identifiers and literals
// -----------------------------------------------------------------------------

func (d *mysql) QuoteIdent(name string) string {
	return quoteIdentWith(name, "`", "`")
}

// Backslashes are escape characters unless NO_BACKSLASH_ESCAPES is set.
func (d *mysql) QuoteString(s string) string {
	return quoteStringLiteral(strings.ReplaceAll(s, `\`, `\\`))
}

func (d *mysql) Placeholder(index int) string {
	return "?"
}

// TEXT and BLOB columns only accept expression defaults: DEFAULT ('x').
func (d *mysql) DefaultSQL(col *ast.ColumnDef, value any) string {
	if s, ok := value.(string); ok {
		lit := d.QuoteString(s)
		if usesLongStorage(col.Type) {
			return "(" + lit + ")"
		}
		return lit
	}
	lit := buildDefaultValueSQL(value, NumericBooleans, "CURRENT_TIMESTAMP")
	if usesLongStorage(col.Type) && value != nil {
		return "(" + lit + ")"
	}
	return lit
}

func usesLongStorage(t ast.Type) bool {
	switch t {
	case ast.TypeText, ast.TypeBlob, ast.TypeArray, ast.TypeJSON, ast.TypeObject:
		return true
	}
	return false
}

// Expression defaults come back as _utf8mb4\'x\'.
var mysqlIntroducedRe = regexp.MustCompile(`^_[a-z0-9]+\\'(.*)\\'$`)

// Literal defaults are reported unquoted; MariaDB quotes them.
func (d *mysql) ParseDefault(raw string) any {
	s := strings.TrimSpace(raw)
	if m := mysqlIntroducedRe.FindStringSubmatch(s); m != nil {
		return strings.ReplaceAll(m[1], `\'`, `'`)
	}
	if s == "" || strings.EqualFold(s, "null") {
		return nil
	}
	if isCurrentTimestamp(s) {
		return ast.CurrentTimestamp
	}
	if v, ok := unquoteLiteral(s); ok {
		return v
	}
	return s
}

// -----------------------------------------------------------------------------
// SQL generation
// -----------------------------------------------------------------------------

func (d *mysql) columnConfig() ColumnDefConfig {
	return ColumnDefConfig{
		QuoteIdent: d.QuoteIdent,
		TypeSQL:    d.ColumnType,
		DefaultSQL: d.DefaultSQL,
		CollateSQL: func(c string) string { return c },
		IdentitySQL: func(*ast.ColumnDef) string {
			return "AUTO_INCREMENT PRIMARY KEY"
		},
		CommentSQL: func(content string) string { return "COMMENT " + d.QuoteString(content) },
		Content:    func(col *ast.ColumnDef) string { return ColumnContent(d, col).String() },
	}
}

func (d *mysql) ColumnDefSQL(col *ast.ColumnDef) (string, error) {
	return buildColumnDefSQL(col, d.columnConfig())
}

func (d *mysql) CreateTableSQL(op *ast.CreateTable) ([]string, error) {
	def := op.Def
	var suffix strings.Builder
	if def.Collation != "" {
		suffix.WriteString(" COLLATE=")
		suffix.WriteString(def.Collation)
	}
	if def.Comment != "" {
		suffix.WriteString(" COMMENT=")
		suffix.WriteString(d.QuoteString(def.Comment))
	}

	create, err := buildCreateTableSQL(def, d.QuoteIdent, d.ColumnDefSQL, suffix.String())
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

func (d *mysql) DropTableSQL(op *ast.DropTable) (string, error) {
	return buildDropTableSQL(op, d.QuoteIdent)
}

func (d *mysql) RenameTableSQL(op *ast.RenameTable) (string, error) {
	return buildRenameTableSQL(op, d.QuoteIdent)
}

func (d *mysql) TruncateTableSQL(op *ast.TruncateTable) (string, error) {
	return buildTruncateTableSQL(op, d.QuoteIdent)
}

func (d *mysql) AddColumnSQL(op *ast.AddColumn) ([]string, error) {
	sql, err := buildAddColumnSQL(op, d.QuoteIdent, d.ColumnDefSQL, "ADD COLUMN")
	if err != nil {
		return nil, err
	}
	return []string{sql}, nil
}

func (d *mysql) DropColumnSQL(op *ast.DropColumn) (string, error) {
	return buildDropColumnSQL(op, d.QuoteIdent)
}

func (d *mysql) RenameColumnSQL(op *ast.RenameColumn) (string, error) {
	return buildRenameColumnSQL(op, d.QuoteIdent)
}

func (d *mysql) CreateIndexSQL(op *ast.CreateIndex) (string, error) {
	return buildCreateIndexSQL(op, d.QuoteIdent)
}

func (d *mysql) DropIndexSQL(op *ast.DropIndex) (string, error) {
	if op.Index.Primary {
		return "ALTER TABLE " + d.QuoteIdent(op.TableName) + " DROP PRIMARY KEY", nil
	}
	return buildDropIndexOnSQL(op, d.QuoteIdent)
}

func (d *mysql) CopyRowsSQL(c *RowCopy) []string {
	return []string{buildCopyRowsSQL(c, d.QuoteIdent)}
}
