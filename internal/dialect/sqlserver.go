package dialect

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hlop3z/ddlkit/internal/ast"
)

// Largest lengths before (MAX) storage is required.
const (
	sqlServerMaxNVarChar  = 4000
	sqlServerMaxVarBinary = 8000
)

// sqlServer implements the Dialect interface for Microsoft SQL Server.
type sqlServer struct{}

// SQLServer returns the SQL Server dialect implementation.
func SQLServer() Dialect {
	return &sqlServer{}
}

func (d *sqlServer) Name() string {
	return "sqlserver"
}

// Dropping a column fails while defaults or indexes reference it, and a
// NOT NULL column without default cannot be added to a populated table.
// Both are rebuilt. Primary keys carry system-generated constraint names and
// are rebuilt as well.
func (d *sqlServer) Capabilities() Capabilities {
	return Capabilities{
		NativeComments:    true,
		TransactionalDDL:  true,
		RebuildDropColumn: true,
		RebuildNotNullAdd: true,
		RebuildPrimaryKey: true,
	}
}

// -----------------------------------------------------------------------------
// Type mappings
// -----------------------------------------------------------------------------

func (d *sqlServer) ColumnType(col *ast.ColumnDef) (string, error) {
	switch col.Type {
	case ast.TypeIdentity, ast.TypeInteger:
		return "INT", nil
	case ast.TypeBigIdentity, ast.TypeBigInt, ast.TypeUnsignedInt:
		return "BIGINT", nil
	case ast.TypeSmallInt:
		return "SMALLINT", nil
	case ast.TypeNumeric:
		return fmt.Sprintf("DECIMAL(%d,%d)", col.Size, col.Scale), nil
	case ast.TypeFloat:
		return "FLOAT", nil
	case ast.TypeString:
		if col.Size > sqlServerMaxNVarChar {
			return "NVARCHAR(MAX)", nil
		}
		return fmt.Sprintf("NVARCHAR(%d)", col.Size), nil
	case ast.TypeText, ast.TypeArray, ast.TypeJSON, ast.TypeObject:
		return "NVARCHAR(MAX)", nil
	case ast.TypeGUID:
		return "UNIQUEIDENTIFIER", nil
	case ast.TypeBinary:
		if col.Size > sqlServerMaxVarBinary {
			return "VARBINARY(MAX)", nil
		}
		return fmt.Sprintf("VARBINARY(%d)", col.Size), nil
	case ast.TypeBlob:
		return "VARBINARY(MAX)", nil
	case ast.TypeBoolean:
		return "BIT", nil
	case ast.TypeDate:
		return "DATE", nil
	case ast.TypeTime:
		return "TIME", nil
	case ast.TypeDatetime:
		return "DATETIME2", nil
	case ast.TypeTimestamp:
		return "DATETIMEOFFSET", nil
	}
	return "", unknownType(col, d.Name())
}

func (d *sqlServer) ConvertFieldType(ft FieldType) ast.Type {
	switch ft.Base {
	case "tinyint", "smallint":
		return ast.TypeSmallInt
	case "int":
		if ft.AutoIncrement {
			return ast.TypeIdentity
		}
		return ast.TypeInteger
	case "bigint":
		if ft.AutoIncrement {
			return ast.TypeBigIdentity
		}
		return ast.TypeBigInt
	case "decimal", "numeric", "money", "smallmoney":
		return ast.TypeNumeric
	case "float", "real":
		return ast.TypeFloat
	case "nvarchar", "varchar", "nchar", "char":
		if ft.Max {
			return ast.TypeText
		}
		return ast.TypeString
	case "ntext", "text", "xml":
		return ast.TypeText
	case "uniqueidentifier":
		return ast.TypeGUID
	case "varbinary", "binary":
		if ft.Max {
			return ast.TypeBlob
		}
		return ast.TypeBinary
	case "image":
		return ast.TypeBlob
	case "bit":
		return ast.TypeBoolean
	case "date":
		return ast.TypeDate
	case "time":
		return ast.TypeTime
	case "datetime2", "datetime", "smalldatetime":
		return ast.TypeDatetime
	case "datetimeoffset":
		return ast.TypeTimestamp
	}
	return ast.TypeString
}

// -----------------------------------------------------------------------------
// Identifiers and literals
// -----------------------------------------------------------------------------

func (d *sqlServer) QuoteIdent(name string) string {
	return quoteIdentWith(name, "[", "]")
}

// Unicode literals keep non-Latin text intact in NVARCHAR columns.
func (d *sqlServer) QuoteString(s string) string {
	return "N" + quoteStringLiteral(s)
}

func (d *sqlServer) Placeholder(index int) string {
	return "@p" + strconv.Itoa(index)
}

// Binary columns take 0x literals: varchar does not convert implicitly.
func (d *sqlServer) DefaultSQL(col *ast.ColumnDef, value any) string {
	if s, ok := value.(string); ok {
		if col.Type == ast.TypeBinary || col.Type == ast.TypeBlob {
			return hexLiteral(s)
		}
		return d.QuoteString(s)
	}
	return buildDefaultValueSQL(value, NumericBooleans, "CURRENT_TIMESTAMP")
}

// Catalog defaults are wrapped in parentheses: ((0)), (N'abc'), (getdate()).
func (d *sqlServer) ParseDefault(raw string) any {
	s := stripParens(strings.TrimSpace(raw))
	if strings.HasPrefix(s, "N'") {
		s = s[1:]
	}
	return parseDefaultLiteral(s)
}

// -----------------------------------------------------------------------------
// SQL generation
// -----------------------------------------------------------------------------

func (d *sqlServer) columnConfig() ColumnDefConfig {
	return ColumnDefConfig{
		QuoteIdent: d.QuoteIdent,
		TypeSQL:    d.ColumnType,
		DefaultSQL: d.DefaultSQL,
		CollateSQL: func(c string) string { return c },
		// T-SQL takes COLLATE only between the type and the constraints.
		CollateAfterType: true,
		IdentitySQL: func(*ast.ColumnDef) string {
			return "IDENTITY(1,1) PRIMARY KEY"
		},
	}
}

func (d *sqlServer) ColumnDefSQL(col *ast.ColumnDef) (string, error) {
	return buildColumnDefSQL(col, d.columnConfig())
}

// commentSQL stores content in the MS_Description extended property of the
// table or column in the current schema.
func (d *sqlServer) commentSQL(table, column, content string) string {
	var b strings.Builder
	b.WriteString("DECLARE @schema sysname = SCHEMA_NAME();\n")
	b.WriteString("EXEC sys.sp_addextendedproperty @name = N'MS_Description', @value = ")
	b.WriteString(d.QuoteString(content))
	b.WriteString(", @level0type = N'SCHEMA', @level0name = @schema, @level1type = N'TABLE', @level1name = ")
	b.WriteString(d.QuoteString(table))
	if column != "" {
		b.WriteString(", @level2type = N'COLUMN', @level2name = ")
		b.WriteString(d.QuoteString(column))
	}
	return b.String()
}

func (d *sqlServer) CreateTableSQL(op *ast.CreateTable) ([]string, error) {
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

func (d *sqlServer) DropTableSQL(op *ast.DropTable) (string, error) {
	return buildDropTableSQL(op, d.QuoteIdent)
}

// sp_rename takes the new name unqualified and unquoted.
func (d *sqlServer) RenameTableSQL(op *ast.RenameTable) (string, error) {
	return "EXEC sp_rename " + d.QuoteString(d.QuoteIdent(op.OldName)) + ", " + d.QuoteString(op.NewName), nil
}

func (d *sqlServer) TruncateTableSQL(op *ast.TruncateTable) (string, error) {
	return buildTruncateTableSQL(op, d.QuoteIdent)
}

// SQL Server spells it ALTER TABLE t ADD c ... without COLUMN.
func (d *sqlServer) AddColumnSQL(op *ast.AddColumn) ([]string, error) {
	sql, err := buildAddColumnSQL(op, d.QuoteIdent, d.ColumnDefSQL, "ADD")
	if err != nil {
		return nil, err
	}
	stmts := []string{sql}
	if content := ColumnContent(d, op.Column).String(); content != "" {
		stmts = append(stmts, d.commentSQL(op.TableName, op.Column.Name, content))
	}
	return stmts, nil
}

func (d *sqlServer) DropColumnSQL(op *ast.DropColumn) (string, error) {
	return buildDropColumnSQL(op, d.QuoteIdent)
}

func (d *sqlServer) RenameColumnSQL(op *ast.RenameColumn) (string, error) {
	object := d.QuoteIdent(op.TableName) + "." + d.QuoteIdent(op.OldName)
	return "EXEC sp_rename " + d.QuoteString(object) + ", " + d.QuoteString(op.NewName) + ", N'COLUMN'", nil
}

func (d *sqlServer) CreateIndexSQL(op *ast.CreateIndex) (string, error) {
	return buildCreateIndexSQL(op, d.QuoteIdent)
}

// The primary key is dropped by its system-generated name from sys.key_constraints.
func (d *sqlServer) DropIndexSQL(op *ast.DropIndex) (string, error) {
	if op.Index.Primary {
		return buildDropConstraintSQL(op.TableName, op.Index.Name, d.QuoteIdent)
	}
	return buildDropIndexOnSQL(op, d.QuoteIdent)
}

// Explicit values in an IDENTITY column need IDENTITY_INSERT for the copy.
// The setting is per session, so the three statements go out as one batch
// and cannot land on different pooled connections.
func (d *sqlServer) CopyRowsSQL(c *RowCopy) []string {
	insert := buildCopyRowsSQL(c, d.QuoteIdent)
	if c.Identity == "" {
		return []string{insert}
	}
	table := d.QuoteIdent(c.Table)
	return []string{strings.Join([]string{
		"SET IDENTITY_INSERT " + table + " ON",
		insert,
		"SET IDENTITY_INSERT " + table + " OFF",
	}, ";\n")}
}
