// Package dialect provides database-specific SQL generation.
// This file contains shared helper functions used by all dialect implementations.
package dialect

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/hlop3z/ddlkit/internal/alerr"
	"github.com/hlop3z/ddlkit/internal/ast"
	"github.com/hlop3z/ddlkit/internal/metadata"
)

// QuoteIdentFunc is a function that quotes an identifier.
type QuoteIdentFunc func(name string) string

// writeQuotedList writes comma-separated quoted identifiers to the builder.
func writeQuotedList(b *strings.Builder, items []string, quote QuoteIdentFunc) {
	for i, item := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quote(item))
	}
}

// quoteIdentWith doubles the closing character inside the identifier.
func quoteIdentWith(name string, open, close string) string {
	return open + strings.ReplaceAll(name, close, close+close) + close
}

// quoteStringLiteral renders a standard SQL string literal.
func quoteStringLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// unknownType builds the error for a type the catalog does not know.
func unknownType(col *ast.ColumnDef, dialect string) error {
	return alerr.Newf(alerr.ErrInvalidType, "unknown column type %q", string(col.Type)).
		WithColumn(col.Name).
		WithDialect(dialect).
		WithHelp(alerr.SuggestSimilar(string(col.Type), ast.TypeNames()))
}

// -----------------------------------------------------------------------------
// Type hints
// -----------------------------------------------------------------------------

// TypeHint returns the signature to record next to col when its physical
// type does not map back to the same canonical type, or "" when the
// catalog alone is enough.
func TypeHint(d Dialect, col *ast.ColumnDef) string {
	n := col.Normalized()
	physical, err := d.ColumnType(n)
	if err != nil {
		return ""
	}
	ft := ExtractFieldType(physical)
	ft.AutoIncrement = n.Type.IsIdentity()
	if d.ConvertFieldType(ft) != n.Type {
		return n.Signature()
	}
	if n.Type.UsesSize() && (ft.Size != n.Size || ft.Scale != n.Scale) {
		return n.Signature()
	}
	return ""
}

// ColumnContent returns the comment content stored for col: its type hint
// on d and its comment.
func ColumnContent(d Dialect, col *ast.ColumnDef) metadata.Content {
	return metadata.Content{Hint: TypeHint(d, col), Comment: col.Comment}
}

// -----------------------------------------------------------------------------
// Default values
// -----------------------------------------------------------------------------

// BooleanLiterals holds the true/false literals for a dialect.
type BooleanLiterals struct {
	True  string
	False string
}

// PostgresBooleans uses TRUE/FALSE.
var PostgresBooleans = BooleanLiterals{True: "TRUE", False: "FALSE"}

// NumericBooleans uses 1/0.
var NumericBooleans = BooleanLiterals{True: "1", False: "0"}

// buildDefaultValueSQL generates the SQL representation of a default value.
// This is shared logic - only boolean and timestamp spelling differ between dialects.
func buildDefaultValueSQL(value any, bools BooleanLiterals, now string) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case ast.Expr:
		if v == ast.CurrentTimestamp {
			return now
		}
		return string(v)
	case string:
		return quoteStringLiteral(v)
	case bool:
		if v {
			return bools.True
		}
		return bools.False
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return quoteStringLiteral(fmt.Sprintf("%v", v))
	}
}

// hexLiteral renders bytes as 0x... for engines without implicit
// text to binary conversion.
func hexLiteral(s string) string {
	return "0x" + strings.ToUpper(hex.EncodeToString([]byte(s)))
}

// -----------------------------------------------------------------------------
// Column definitions
// -----------------------------------------------------------------------------

// ColumnDefConfig holds all callbacks and config for buildColumnDefSQL.
type ColumnDefConfig struct {
	QuoteIdent QuoteIdentFunc
	TypeSQL    func(col *ast.ColumnDef) (string, error)
	DefaultSQL func(col *ast.ColumnDef, value any) string
	// CollateSQL renders the COLLATE clause argument.
	CollateSQL func(collation string) string
	// CollateAfterType places COLLATE directly after the type, for engines
	// that accept it nowhere else.
	CollateAfterType bool
	// IdentitySQL renders the auto-generation clause of identity columns,
	// including the inline PRIMARY KEY.
	IdentitySQL func(col *ast.ColumnDef) string
	// CommentSQL renders an inline comment clause. Nil where comments are
	// not part of the column definition.
	CommentSQL func(content string) string
	// Content returns the comment content for col.
	Content func(col *ast.ColumnDef) string
}

// buildColumnDefSQL generates "<name> <TYPE> [NOT NULL] [identity]
// [DEFAULT lit] [COLLATE c] [COMMENT c]".
func buildColumnDefSQL(col *ast.ColumnDef, cfg ColumnDefConfig) (string, error) {
	col = col.Normalized()
	typ, err := cfg.TypeSQL(col)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(cfg.QuoteIdent(col.Name))
	b.WriteString(" ")
	b.WriteString(typ)

	collate := col.Collation != "" && cfg.CollateSQL != nil
	if collate && cfg.CollateAfterType {
		writeCollate(&b, col.Collation, cfg)
	}

	if col.Nullable {
		b.WriteString(" NULL")
	} else {
		b.WriteString(" NOT NULL")
	}

	if col.Type.IsIdentity() {
		b.WriteString(" ")
		b.WriteString(cfg.IdentitySQL(col))
	} else if col.HasDefault() {
		b.WriteString(" DEFAULT ")
		b.WriteString(cfg.DefaultSQL(col, col.Default))
	}

	if collate && !cfg.CollateAfterType {
		writeCollate(&b, col.Collation, cfg)
	}

	if cfg.CommentSQL != nil && cfg.Content != nil {
		if content := cfg.Content(col); content != "" {
			b.WriteString(" ")
			b.WriteString(cfg.CommentSQL(content))
		}
	}

	return b.String(), nil
}

func writeCollate(b *strings.Builder, collation string, cfg ColumnDefConfig) {
	b.WriteString(" COLLATE ")
	b.WriteString(cfg.CollateSQL(collation))
}

// -----------------------------------------------------------------------------
// Table statements
// -----------------------------------------------------------------------------

// ColumnDefFunc generates SQL for a column definition.
type ColumnDefFunc func(col *ast.ColumnDef) (string, error)

// buildCreateTableSQL generates CREATE TABLE with the column definitions and
// a PRIMARY KEY constraint when the key is not carried by an identity column.
// suffix is appended after the closing parenthesis (table options).
func buildCreateTableSQL(def *ast.TableDef, quoteIdent QuoteIdentFunc, columnDef ColumnDefFunc, suffix string) (string, error) {
	var b strings.Builder

	b.WriteString("CREATE TABLE ")
	b.WriteString(quoteIdent(def.Name))
	b.WriteString(" (\n")

	for i, col := range def.Columns {
		if i > 0 {
			b.WriteString(",\n")
		}
		sql, err := columnDef(col)
		if err != nil {
			if e, ok := err.(*alerr.Error); ok {
				return "", e.WithTable(def.Name)
			}
			return "", err
		}
		b.WriteString("  ")
		b.WriteString(sql)
	}

	if pk := def.PrimaryKey(); pk != nil && !def.InlinePrimaryKey() {
		b.WriteString(",\n  PRIMARY KEY (")
		writeQuotedList(&b, pk.Columns, quoteIdent)
		b.WriteString(")")
	}

	b.WriteString("\n)")
	b.WriteString(suffix)
	return b.String(), nil
}

// secondaryIndexes returns the normalized non-primary indexes of def.
func secondaryIndexes(def *ast.TableDef) []*ast.IndexDef {
	var out []*ast.IndexDef
	for _, idx := range def.Indexes {
		if !idx.Primary {
			out = append(out, idx.Normalized(def.Name))
		}
	}
	return out
}

// buildDropTableSQL generates DROP TABLE SQL.
func buildDropTableSQL(op *ast.DropTable, quoteIdent QuoteIdentFunc) (string, error) {
	return "DROP TABLE " + quoteIdent(op.Name), nil
}

// buildRenameTableSQL generates ALTER TABLE RENAME TO SQL.
func buildRenameTableSQL(op *ast.RenameTable, quoteIdent QuoteIdentFunc) (string, error) {
	return "ALTER TABLE " + quoteIdent(op.OldName) + " RENAME TO " + quoteIdent(op.NewName), nil
}

// buildTruncateTableSQL generates TRUNCATE TABLE SQL.
func buildTruncateTableSQL(op *ast.TruncateTable, quoteIdent QuoteIdentFunc) (string, error) {
	return "TRUNCATE TABLE " + quoteIdent(op.Name), nil
}

// -----------------------------------------------------------------------------
// Column statements
// -----------------------------------------------------------------------------

// buildAddColumnSQL generates ALTER TABLE <t> <keyword> <column definition>.
// keyword is "ADD COLUMN" or "ADD".
func buildAddColumnSQL(op *ast.AddColumn, quoteIdent QuoteIdentFunc, columnDef ColumnDefFunc, keyword string) (string, error) {
	def, err := columnDef(op.Column)
	if err != nil {
		if e, ok := err.(*alerr.Error); ok {
			return "", e.WithTable(op.TableName)
		}
		return "", err
	}
	return "ALTER TABLE " + quoteIdent(op.TableName) + " " + keyword + " " + def, nil
}

// buildDropColumnSQL generates ALTER TABLE DROP COLUMN SQL.
func buildDropColumnSQL(op *ast.DropColumn, quoteIdent QuoteIdentFunc) (string, error) {
	return "ALTER TABLE " + quoteIdent(op.TableName) + " DROP COLUMN " + quoteIdent(op.Name), nil
}

// buildRenameColumnSQL generates ALTER TABLE RENAME COLUMN SQL.
// This is identical across MySQL 8, PostgreSQL and SQLite 3.25.0+.
func buildRenameColumnSQL(op *ast.RenameColumn, quoteIdent QuoteIdentFunc) (string, error) {
	var b strings.Builder

	b.WriteString("ALTER TABLE ")
	b.WriteString(quoteIdent(op.TableName))
	b.WriteString(" RENAME COLUMN ")
	b.WriteString(quoteIdent(op.OldName))
	b.WriteString(" TO ")
	b.WriteString(quoteIdent(op.NewName))

	return b.String(), nil
}

// -----------------------------------------------------------------------------
// Index statements
// -----------------------------------------------------------------------------

// buildCreateIndexSQL generates CREATE [UNIQUE] INDEX, or ALTER TABLE ADD
// PRIMARY KEY for the primary index.
func buildCreateIndexSQL(op *ast.CreateIndex, quoteIdent QuoteIdentFunc) (string, error) {
	idx := op.Index.Normalized(op.TableName)
	var b strings.Builder

	if idx.Primary {
		b.WriteString("ALTER TABLE ")
		b.WriteString(quoteIdent(op.TableName))
		b.WriteString(" ADD PRIMARY KEY (")
		writeQuotedList(&b, idx.Columns, quoteIdent)
		b.WriteString(")")
		return b.String(), nil
	}

	b.WriteString("CREATE ")
	if idx.Unique {
		b.WriteString("UNIQUE ")
	}
	b.WriteString("INDEX ")
	b.WriteString(quoteIdent(idx.Name))
	b.WriteString(" ON ")
	b.WriteString(quoteIdent(op.TableName))
	b.WriteString(" (")
	writeQuotedList(&b, idx.Columns, quoteIdent)
	b.WriteString(")")

	return b.String(), nil
}

// dropIndexName resolves the name of the index to drop: the explicit name,
// or the default name derived from the columns.
func dropIndexName(op *ast.DropIndex) string {
	if op.Index.Name != "" {
		return op.Index.Name
	}
	return op.Index.Normalized(op.TableName).Name
}

// buildDropIndexSQL generates DROP INDEX for engines with schema-scoped
// index names (PostgreSQL, SQLite).
func buildDropIndexSQL(op *ast.DropIndex, quoteIdent QuoteIdentFunc) (string, error) {
	return "DROP INDEX " + quoteIdent(dropIndexName(op)), nil
}

// buildDropIndexOnSQL generates DROP INDEX <name> ON <table> for engines with
// table-scoped index names (MySQL, SQL Server).
func buildDropIndexOnSQL(op *ast.DropIndex, quoteIdent QuoteIdentFunc) (string, error) {
	return "DROP INDEX " + quoteIdent(dropIndexName(op)) + " ON " + quoteIdent(op.TableName), nil
}

// buildDropConstraintSQL generates ALTER TABLE DROP CONSTRAINT.
func buildDropConstraintSQL(table, name string, quoteIdent QuoteIdentFunc) (string, error) {
	if name == "" || name == ast.PrimaryIndexName {
		return "", alerr.New(alerr.ErrIndexSpec, "primary key constraint name was not resolved").WithTable(table)
	}
	return "ALTER TABLE " + quoteIdent(table) + " DROP CONSTRAINT " + quoteIdent(name), nil
}

// -----------------------------------------------------------------------------
// Data copy
// -----------------------------------------------------------------------------

// buildCopyRowsSQL generates INSERT INTO ... SELECT ... FROM ....
func buildCopyRowsSQL(c *RowCopy, quoteIdent QuoteIdentFunc) string {
	var b strings.Builder

	b.WriteString("INSERT INTO ")
	b.WriteString(quoteIdent(c.Table))
	b.WriteString(" (")
	writeQuotedList(&b, c.Targets, quoteIdent)
	b.WriteString(") SELECT ")
	b.WriteString(strings.Join(c.Sources, ", "))
	b.WriteString(" FROM ")
	b.WriteString(quoteIdent(c.Source))

	return b.String()
}
