package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hlop3z/ddlkit/internal/alerr"
	"github.com/hlop3z/ddlkit/internal/ast"
	"github.com/hlop3z/ddlkit/internal/dialect"
)

// sqlServerObject resolves @p1 to the object id of a table in the default schema.
const sqlServerObject = "OBJECT_ID(QUOTENAME(SCHEMA_NAME()) + '.' + QUOTENAME(@p1))"

// sqlServerIntrospector reads the sys catalog views within SCHEMA_NAME().
// Comments are MS_Description extended properties.
type sqlServerIntrospector struct {
	db      Querier
	dialect dialect.Dialect
}

func (s *sqlServerIntrospector) Tables(ctx context.Context) (map[string]*ast.TableDef, error) {
	// SQL Server has no table-level collation.
	query := `
		SELECT t.name, '', COALESCE(CAST(ep.value AS NVARCHAR(MAX)), '')
		FROM sys.tables t
		LEFT JOIN sys.extended_properties ep
			ON ep.class = 1 AND ep.major_id = t.object_id AND ep.minor_id = 0
			AND ep.name = 'MS_Description'
		WHERE t.schema_id = SCHEMA_ID()
		ORDER BY t.name
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, alerr.WrapSQL(err, "list tables", "")
	}
	tables, err := scanTables(rows)
	if err != nil {
		return nil, alerr.WrapSQL(err, "scan table name", "")
	}
	return tables, nil
}

func (s *sqlServerIntrospector) Columns(ctx context.Context, table string) ([]*ast.ColumnDef, error) {
	query := `
		SELECT
			c.name,
			ty.name,
			c.max_length,
			c.precision,
			c.scale,
			c.is_nullable,
			c.is_identity,
			dc.definition,
			CASE WHEN c.collation_name IS NULL
				OR c.collation_name = CAST(DATABASEPROPERTYEX(DB_NAME(), 'Collation') AS NVARCHAR(128))
				THEN '' ELSE c.collation_name END,
			COALESCE(CAST(ep.value AS NVARCHAR(MAX)), '')
		FROM sys.columns c
		JOIN sys.types ty ON ty.user_type_id = c.user_type_id
		LEFT JOIN sys.default_constraints dc
			ON dc.parent_object_id = c.object_id AND dc.parent_column_id = c.column_id
		LEFT JOIN sys.extended_properties ep
			ON ep.class = 1 AND ep.major_id = c.object_id AND ep.minor_id = c.column_id
			AND ep.name = 'MS_Description'
		WHERE c.object_id = ` + sqlServerObject + `
		ORDER BY c.column_id
	`

	rows, err := s.db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, alerr.WrapSQL(err, "introspect columns", table)
	}
	defer rows.Close()

	var columns []*ast.ColumnDef
	for rows.Next() {
		var raw RawColumn
		var typeName string
		var maxLength, precision, scale int

		err := rows.Scan(
			&raw.Name,
			&typeName,
			&maxLength,
			&precision,
			&scale,
			&raw.IsNullable,
			&raw.AutoIncrement,
			&raw.Default,
			&raw.Collation,
			&raw.Comment,
		)
		if err != nil {
			return nil, alerr.WrapSQL(err, "scan column", table)
		}
		raw.DataType = sqlServerTypeString(typeName, maxLength, precision, scale)

		columns = append(columns, buildColumn(s.dialect, raw))
	}

	return columns, rows.Err()
}

// sqlServerTypeString rebuilds a declared type from sys.columns. max_length
// is in bytes, so national character types are halved, and -1 means MAX.
func sqlServerTypeString(name string, maxLength, precision, scale int) string {
	name = strings.ToLower(name)
	switch name {
	case "nvarchar", "nchar", "varchar", "char", "varbinary", "binary":
		if maxLength < 0 {
			return name + "(max)"
		}
		if name == "nvarchar" || name == "nchar" {
			maxLength /= 2
		}
		return fmt.Sprintf("%s(%d)", name, maxLength)
	case "decimal", "numeric":
		return fmt.Sprintf("%s(%d,%d)", name, precision, scale)
	}
	return name
}

func (s *sqlServerIntrospector) Indexes(ctx context.Context, table string) ([]*ast.IndexDef, error) {
	query := `
		SELECT i.name, i.is_unique, i.is_primary_key, c.name
		FROM sys.indexes i
		JOIN sys.index_columns ic ON ic.object_id = i.object_id AND ic.index_id = i.index_id
		JOIN sys.columns c ON c.object_id = ic.object_id AND c.column_id = ic.column_id
		WHERE i.object_id = ` + sqlServerObject + `
			AND i.type > 0
			AND ic.is_included_column = 0
		ORDER BY i.name, ic.key_ordinal
	`

	rows, err := s.db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, alerr.WrapSQL(err, "introspect indexes", table)
	}
	defer rows.Close()

	acc := NewIndexAccumulator()
	for rows.Next() {
		var name, column string
		var unique, primary bool

		if err := rows.Scan(&name, &unique, &primary, &column); err != nil {
			return nil, alerr.WrapSQL(err, "scan index", table)
		}
		acc.Add(name, column, unique, primary)
	}

	return acc.Values(), rows.Err()
}

func (s *sqlServerIntrospector) PrimaryKeyName(ctx context.Context, table string) (string, error) {
	var name string
	err := s.db.QueryRowContext(ctx, `
		SELECT name FROM sys.key_constraints
		WHERE type = 'PK' AND parent_object_id = `+sqlServerObject, table).Scan(&name)

	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", alerr.WrapSQL(err, "look up primary key", table)
	}
	return name, nil
}

func (s *sqlServerIntrospector) TableExists(ctx context.Context, table string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sys.tables
		WHERE schema_id = SCHEMA_ID() AND name = @p1
	`, table).Scan(&n)
	if err != nil {
		return false, alerr.WrapSQL(err, "check table existence", table)
	}
	return n > 0, nil
}
