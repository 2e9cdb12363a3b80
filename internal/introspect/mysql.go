package introspect

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hlop3z/ddlkit/internal/alerr"
	"github.com/hlop3z/ddlkit/internal/ast"
	"github.com/hlop3z/ddlkit/internal/dialect"
)

// mysqlIntrospector reads information_schema within DATABASE().
type mysqlIntrospector struct {
	db      Querier
	dialect dialect.Dialect
}

func (m *mysqlIntrospector) Tables(ctx context.Context) (map[string]*ast.TableDef, error) {
	// Collations equal to the database default are reported as unset.
	query := `
		SELECT
			t.TABLE_NAME,
			CASE WHEN t.TABLE_COLLATION = s.DEFAULT_COLLATION_NAME THEN '' ELSE COALESCE(t.TABLE_COLLATION, '') END,
			t.TABLE_COMMENT
		FROM information_schema.TABLES t
		JOIN information_schema.SCHEMATA s ON s.SCHEMA_NAME = t.TABLE_SCHEMA
		WHERE t.TABLE_SCHEMA = DATABASE() AND t.TABLE_TYPE = 'BASE TABLE'
		ORDER BY t.TABLE_NAME
	`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, alerr.WrapSQL(err, "list tables", "")
	}
	tables, err := scanTables(rows)
	if err != nil {
		return nil, alerr.WrapSQL(err, "scan table name", "")
	}
	return tables, nil
}

func (m *mysqlIntrospector) Columns(ctx context.Context, table string) ([]*ast.ColumnDef, error) {
	query := `
		SELECT
			c.COLUMN_NAME,
			c.COLUMN_TYPE,
			c.IS_NULLABLE,
			c.COLUMN_DEFAULT,
			c.EXTRA,
			CASE WHEN c.COLLATION_NAME IS NULL OR c.COLLATION_NAME = t.TABLE_COLLATION
				THEN '' ELSE c.COLLATION_NAME END,
			c.COLUMN_COMMENT
		FROM information_schema.COLUMNS c
		JOIN information_schema.TABLES t
			ON t.TABLE_SCHEMA = c.TABLE_SCHEMA AND t.TABLE_NAME = c.TABLE_NAME
		WHERE c.TABLE_SCHEMA = DATABASE() AND c.TABLE_NAME = ?
		ORDER BY c.ORDINAL_POSITION
	`

	rows, err := m.db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, alerr.WrapSQL(err, "introspect columns", table)
	}
	defer rows.Close()

	var columns []*ast.ColumnDef
	for rows.Next() {
		var raw RawColumn
		var isNullable, extra string

		err := rows.Scan(
			&raw.Name,
			&raw.DataType,
			&isNullable,
			&raw.Default,
			&extra,
			&raw.Collation,
			&raw.Comment,
		)
		if err != nil {
			return nil, alerr.WrapSQL(err, "scan column", table)
		}
		raw.IsNullable = isNullable == "YES"
		raw.AutoIncrement = strings.Contains(strings.ToLower(extra), "auto_increment")

		columns = append(columns, buildColumn(m.dialect, raw))
	}

	return columns, rows.Err()
}

func (m *mysqlIntrospector) Indexes(ctx context.Context, table string) ([]*ast.IndexDef, error) {
	query := `
		SELECT INDEX_NAME, NON_UNIQUE, COLUMN_NAME
		FROM information_schema.STATISTICS
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
		ORDER BY INDEX_NAME, SEQ_IN_INDEX
	`

	rows, err := m.db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, alerr.WrapSQL(err, "introspect indexes", table)
	}
	defer rows.Close()

	acc := NewIndexAccumulator()
	for rows.Next() {
		var name string
		var nonUnique int
		var column sql.NullString

		if err := rows.Scan(&name, &nonUnique, &column); err != nil {
			return nil, alerr.WrapSQL(err, "scan index", table)
		}
		// Functional key parts have no column.
		if !column.Valid {
			continue
		}
		acc.Add(name, column.String, nonUnique == 0, name == "PRIMARY")
	}

	return acc.Values(), rows.Err()
}

// The MySQL primary key is always named PRIMARY.
func (m *mysqlIntrospector) PrimaryKeyName(ctx context.Context, table string) (string, error) {
	var n int
	err := m.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM information_schema.TABLE_CONSTRAINTS
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND CONSTRAINT_TYPE = 'PRIMARY KEY'
	`, table).Scan(&n)
	if err != nil {
		return "", alerr.WrapSQL(err, "look up primary key", table)
	}
	if n == 0 {
		return "", nil
	}
	return "PRIMARY", nil
}

func (m *mysqlIntrospector) TableExists(ctx context.Context, table string) (bool, error) {
	var n int
	err := m.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM information_schema.TABLES
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
	`, table).Scan(&n)
	if err != nil {
		return false, alerr.WrapSQL(err, "check table existence", table)
	}
	return n > 0, nil
}
