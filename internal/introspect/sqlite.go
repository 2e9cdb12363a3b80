package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/hlop3z/ddlkit/internal/alerr"
	"github.com/hlop3z/ddlkit/internal/ast"
	"github.com/hlop3z/ddlkit/internal/dialect"
	"github.com/hlop3z/ddlkit/internal/metadata"
)

var autoIncrementRe = regexp.MustCompile(`(?i)\bAUTOINCREMENT\b`)

// sqliteIntrospector reads sqlite_master and the table pragmas. Comments and
// type hints come from the sidecar store.
type sqliteIntrospector struct {
	db      Querier
	dialect dialect.Dialect
	sidecar *metadata.Store
}

func (s *sqliteIntrospector) Tables(ctx context.Context) (map[string]*ast.TableDef, error) {
	query := `
		SELECT name, '', '' FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, alerr.WrapSQL(err, "list tables", "")
	}
	tables, err := scanTables(rows)
	if err != nil {
		return nil, alerr.WrapSQL(err, "scan table name", "")
	}

	// Sidecar reads only after the listing is closed.
	for name, def := range tables {
		content, err := s.sidecar.Table(ctx, name)
		if err != nil {
			return nil, err
		}
		def.Comment = content[""].Comment
	}
	return tables, nil
}

// createSQL returns the CREATE TABLE statement SQLite stored for table.
func (s *sqliteIntrospector) createSQL(ctx context.Context, table string) (string, error) {
	var stmt sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&stmt)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", alerr.WrapSQL(err, "read table definition", table)
	}
	return stmt.String, nil
}

func (s *sqliteIntrospector) Columns(ctx context.Context, table string) ([]*ast.ColumnDef, error) {
	create, err := s.createSQL(ctx, table)
	if err != nil {
		return nil, err
	}
	autoIncrement := autoIncrementRe.MatchString(create)

	// PRAGMA table_info returns: cid, name, type, notnull, dflt_value, pk
	query := fmt.Sprintf("PRAGMA table_info(%s)", s.dialect.QuoteIdent(table))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, alerr.WrapSQL(err, "introspect columns", table)
	}

	var raws []RawColumn
	for rows.Next() {
		var cid, notNull, pk int
		var raw RawColumn

		if err := rows.Scan(&cid, &raw.Name, &raw.DataType, &notNull, &raw.Default, &pk); err != nil {
			rows.Close()
			return nil, alerr.WrapSQL(err, "scan column", table)
		}
		raw.IsNullable = notNull == 0
		// AUTOINCREMENT is only legal on the INTEGER PRIMARY KEY column.
		raw.AutoIncrement = autoIncrement && pk == 1 && strings.EqualFold(raw.DataType, "integer")
		raw.Collation = columnCollation(create, raw.Name)
		raws = append(raws, raw)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, alerr.WrapSQL(err, "iterate columns", table)
	}
	rows.Close()

	if len(raws) == 0 {
		return nil, nil
	}

	content, err := s.sidecar.Table(ctx, table)
	if err != nil {
		return nil, err
	}

	columns := make([]*ast.ColumnDef, 0, len(raws))
	for _, raw := range raws {
		raw.Comment = content[raw.Name].String()
		columns = append(columns, buildColumn(s.dialect, raw))
	}
	return columns, nil
}

// columnCollation extracts the COLLATE clause of a column from the stored
// CREATE TABLE text; SQLite has no pragma for it. The clause may follow the
// constraints, so quoted literals and parenthesized groups are skipped.
func columnCollation(create, column string) string {
	if create == "" {
		return ""
	}
	name := regexp.QuoteMeta(column)
	quoted := regexp.QuoteMeta(strings.ReplaceAll(column, `"`, `""`))
	re, err := regexp.Compile(`(?is)[(,]\s*(?:"` + quoted + "\"|`" + name + "`|\\[" + name + `\]|` + name + `)` +
		`\s+(?:'(?:[^']|'')*'|\([^()]*\)|[^,'()])*?\bCOLLATE\s+"?([\w-]+)"?`)
	if err != nil {
		return ""
	}
	if m := re.FindStringSubmatch(create); m != nil {
		return m[1]
	}
	return ""
}

func (s *sqliteIntrospector) Indexes(ctx context.Context, table string) ([]*ast.IndexDef, error) {
	primary, err := s.primaryKey(ctx, table)
	if err != nil {
		return nil, err
	}

	// PRAGMA index_list returns: seq, name, unique, origin, partial
	// Note: We must collect all index names first, then close the rows,
	// before opening additional queries on the same connection.
	type listed struct {
		name   string
		unique bool
		origin string
	}
	listQuery := fmt.Sprintf("PRAGMA index_list(%s)", s.dialect.QuoteIdent(table))
	rows, err := s.db.QueryContext(ctx, listQuery)
	if err != nil {
		return nil, alerr.WrapSQL(err, "introspect indexes", table)
	}
	var list []listed
	for rows.Next() {
		var seq, unique, partial int
		var l listed
		if err := rows.Scan(&seq, &l.name, &unique, &l.origin, &partial); err != nil {
			rows.Close()
			return nil, alerr.WrapSQL(err, "scan index", table)
		}
		l.unique = unique == 1
		list = append(list, l)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, alerr.WrapSQL(err, "iterate indexes", table)
	}
	rows.Close()

	var indexes []*ast.IndexDef
	if primary != nil {
		indexes = append(indexes, primary)
	}
	for _, l := range list {
		// The primary key is read from table_info, which also covers rowid tables.
		if l.origin == "pk" {
			continue
		}
		columns, err := s.indexColumns(ctx, l.name)
		if err != nil {
			return nil, err
		}
		if len(columns) == 0 {
			continue
		}
		name := l.name
		// Inline UNIQUE constraints get reserved sqlite_autoindex_ names that
		// cannot be recreated, so they are reported under the default name.
		if l.origin == "u" {
			name = ast.DefaultIndexName(table, columns, true, false)
		}
		indexes = append(indexes, &ast.IndexDef{Name: name, Columns: columns, Unique: l.unique})
	}

	sortIndexes(indexes)
	return indexes, nil
}

func (s *sqliteIntrospector) indexColumns(ctx context.Context, index string) ([]string, error) {
	// PRAGMA index_info returns: seqno, cid, name
	query := fmt.Sprintf("PRAGMA index_info(%s)", s.dialect.QuoteIdent(index))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, alerr.WrapSQL(err, "get index info", index)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var seqno, cid int
		var name sql.NullString
		if err := rows.Scan(&seqno, &cid, &name); err != nil {
			return nil, alerr.WrapSQL(err, "scan index column", index)
		}
		// Expression indexes have no column name.
		if !name.Valid {
			return nil, nil
		}
		columns = append(columns, name.String)
	}
	return columns, rows.Err()
}

// primaryKey builds the primary index from the pk positions of table_info.
func (s *sqliteIntrospector) primaryKey(ctx context.Context, table string) (*ast.IndexDef, error) {
	query := fmt.Sprintf("SELECT name, pk FROM pragma_table_info(%s) WHERE pk > 0", s.dialect.QuoteString(table))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, alerr.WrapSQL(err, "introspect primary key", table)
	}
	defer rows.Close()

	type keyPart struct {
		name string
		pos  int
	}
	var parts []keyPart
	for rows.Next() {
		var p keyPart
		if err := rows.Scan(&p.name, &p.pos); err != nil {
			return nil, alerr.WrapSQL(err, "scan primary key", table)
		}
		parts = append(parts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, alerr.WrapSQL(err, "iterate primary key", table)
	}
	if len(parts) == 0 {
		return nil, nil
	}

	sort.Slice(parts, func(i, j int) bool { return parts[i].pos < parts[j].pos })
	idx := &ast.IndexDef{Name: ast.PrimaryIndexName, Unique: true, Primary: true}
	for _, p := range parts {
		idx.Columns = append(idx.Columns, p.name)
	}
	return idx, nil
}

// SQLite primary keys are anonymous.
func (s *sqliteIntrospector) PrimaryKeyName(ctx context.Context, table string) (string, error) {
	return "", nil
}

func (s *sqliteIntrospector) TableExists(ctx context.Context, table string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sqlite_master
		WHERE type = 'table' AND name = ?
	`, table).Scan(&n)
	if err != nil {
		return false, alerr.WrapSQL(err, "check table existence", table)
	}
	return n > 0, nil
}
