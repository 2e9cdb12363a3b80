package introspect

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hlop3z/ddlkit/internal/alerr"
	"github.com/hlop3z/ddlkit/internal/ast"
	"github.com/hlop3z/ddlkit/internal/dialect"
)

// postgresIntrospector reads pg_catalog within current_schema().
type postgresIntrospector struct {
	db      Querier
	dialect dialect.Dialect
}

func (p *postgresIntrospector) Tables(ctx context.Context) (map[string]*ast.TableDef, error) {
	// PostgreSQL has no table-level collation.
	query := `
		SELECT c.relname, '', COALESCE(obj_description(c.oid, 'pg_class'), '')
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE n.nspname = current_schema() AND c.relkind IN ('r', 'p')
		ORDER BY c.relname
	`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, alerr.WrapSQL(err, "list tables", "")
	}
	tables, err := scanTables(rows)
	if err != nil {
		return nil, alerr.WrapSQL(err, "scan table name", "")
	}
	return tables, nil
}

func (p *postgresIntrospector) Columns(ctx context.Context, table string) ([]*ast.ColumnDef, error) {
	query := `
		SELECT
			a.attname,
			format_type(a.atttypid, a.atttypmod),
			NOT a.attnotnull,
			pg_get_expr(d.adbin, d.adrelid),
			a.attidentity <> '',
			CASE WHEN a.attcollation <> 0 AND a.attcollation <> t.typcollation
				THEN co.collname ELSE '' END,
			COALESCE(col_description(a.attrelid, a.attnum), '')
		FROM pg_attribute a
		JOIN pg_class c ON c.oid = a.attrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		JOIN pg_type t ON t.oid = a.atttypid
		LEFT JOIN pg_attrdef d ON d.adrelid = a.attrelid AND d.adnum = a.attnum
		LEFT JOIN pg_collation co ON co.oid = a.attcollation
		WHERE n.nspname = current_schema()
			AND c.relname = $1
			AND a.attnum > 0
			AND NOT a.attisdropped
		ORDER BY a.attnum
	`

	rows, err := p.db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, alerr.WrapSQL(err, "introspect columns", table)
	}
	defer rows.Close()

	var columns []*ast.ColumnDef
	for rows.Next() {
		var raw RawColumn
		var collation sql.NullString

		err := rows.Scan(
			&raw.Name,
			&raw.DataType,
			&raw.IsNullable,
			&raw.Default,
			&raw.AutoIncrement,
			&collation,
			&raw.Comment,
		)
		if err != nil {
			return nil, alerr.WrapSQL(err, "scan column", table)
		}
		raw.Collation = collation.String

		// serial columns are identities backed by a sequence default.
		if raw.Default.Valid && strings.HasPrefix(raw.Default.String, "nextval(") {
			raw.AutoIncrement = true
		}

		columns = append(columns, buildColumn(p.dialect, raw))
	}

	return columns, rows.Err()
}

func (p *postgresIntrospector) Indexes(ctx context.Context, table string) ([]*ast.IndexDef, error) {
	query := `
		SELECT
			i.relname,
			ix.indisunique,
			ix.indisprimary,
			a.attname
		FROM pg_index ix
		JOIN pg_class t ON t.oid = ix.indrelid
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_namespace n ON n.oid = t.relnamespace
		JOIN LATERAL unnest(ix.indkey) WITH ORDINALITY AS x(attnum, n) ON TRUE
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = x.attnum
		WHERE n.nspname = current_schema()
			AND t.relname = $1
		ORDER BY i.relname, x.n
	`

	rows, err := p.db.QueryContext(ctx, query, table)
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

func (p *postgresIntrospector) PrimaryKeyName(ctx context.Context, table string) (string, error) {
	var name string
	err := p.db.QueryRowContext(ctx, `
		SELECT con.conname
		FROM pg_constraint con
		JOIN pg_class c ON c.oid = con.conrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE con.contype = 'p' AND n.nspname = current_schema() AND c.relname = $1
	`, table).Scan(&name)

	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", alerr.WrapSQL(err, "look up primary key", table)
	}
	return name, nil
}

func (p *postgresIntrospector) TableExists(ctx context.Context, table string) (bool, error) {
	var exists bool
	err := p.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM pg_tables
			WHERE schemaname = current_schema() AND tablename = $1
		)
	`, table).Scan(&exists)

	if err != nil {
		return false, alerr.WrapSQL(err, "check table existence", table)
	}
	return exists, nil
}
