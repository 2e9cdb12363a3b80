package engine

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/hlop3z/ddlkit/internal/alerr"
	"github.com/hlop3z/ddlkit/internal/ast"
	"github.com/hlop3z/ddlkit/internal/dialect"
	"github.com/hlop3z/ddlkit/internal/introspect"
)

// change is the single alteration a rebuild applies. Exactly one field is set
// (renameFrom and renameTo together).
type change struct {
	add         *ast.ColumnDef
	drop        string
	renameFrom  string
	renameTo    string
	addPrimary  *ast.IndexDef
	dropPrimary bool
}

func (c change) String() string {
	switch {
	case c.add != nil:
		return "add column " + c.add.Name
	case c.drop != "":
		return "drop column " + c.drop
	case c.renameFrom != "":
		return "rename column " + c.renameFrom + " to " + c.renameTo
	case c.addPrimary != nil:
		return "add primary key"
	case c.dropPrimary:
		return "drop primary key"
	}
	return "rebuild"
}

// target returns the name a snapshot column has after the change, or "" if
// the change removes it.
func (c change) target(column string) string {
	switch column {
	case c.drop:
		return ""
	case c.renameFrom:
		return c.renameTo
	}
	return column
}

// rebuild realizes an alteration the dialect cannot perform in place:
// rename the table away, recreate it with the change applied, copy the rows
// back, drop the old table and recreate the surviving secondary indexes.
//
// The steps are not atomic on their own. They are safe only inside the
// caller's transaction on a dialect with transactional DDL.
func (s *Schema) rebuild(ctx context.Context, table string, c change) error {
	log := s.logger.With("table", table, "change", c.String())

	if !s.dialect.Capabilities().TransactionalDDL {
		if s.opts.StrictRebuild {
			return alerr.Newf(alerr.ErrRebuildNotAtomic, "%s requires a table rebuild, which %s cannot run atomically", c, s.dialect.Name()).
				WithTable(table).
				WithDialect(s.dialect.Name()).
				WithHelp("disable strict rebuilds to accept a non-atomic rebuild")
		}
		log.Warn("rebuilding table without transactional DDL, a failure can leave it half rebuilt")
	}

	// 1. Snapshot
	old, err := s.Table(ctx, table)
	if err != nil {
		return err
	}
	next, err := rebuiltTable(old, c)
	if err != nil {
		return err
	}
	throwaway := introspect.RebuildPrefix + table
	log.Info("rebuild: snapshot", "step", 1, "columns", len(old.Columns), "indexes", len(old.Indexes))

	fail := func(step int, err error) error {
		e, ok := err.(*alerr.Error)
		if !ok {
			e = alerr.Wrap(alerr.ErrSQLExecution, err, "rebuild failed")
		}
		return e.WithTable(table).
			With("rebuild_step", step).
			With("throwaway", throwaway)
	}

	// 2. Rename away
	leftover, err := s.intro.TableExists(ctx, throwaway)
	if err != nil {
		return err
	}
	if leftover {
		return alerr.Newf(alerr.ErrRebuildIncomplete, "table %q already exists from an earlier rebuild", throwaway).
			WithTable(table).
			WithHelp(fmt.Sprintf("restore or drop %q before altering %q", throwaway, table))
	}
	stmt, err := s.dialect.RenameTableSQL(&ast.RenameTable{OldName: table, NewName: throwaway})
	if err != nil {
		return err
	}
	if _, err := s.conn.Exec(ctx, stmt); err != nil {
		return fail(2, err)
	}
	log.Info("rebuild: renamed away", "step", 2, "throwaway", throwaway)

	// 3. Recreate
	stmts, err := s.dialect.CreateTableSQL(&ast.CreateTable{Def: next})
	if err != nil {
		return fail(3, err)
	}
	if err := s.conn.ExecAll(ctx, stmts); err != nil {
		return fail(3, err)
	}
	log.Info("rebuild: recreated", "step", 3, "columns", len(next.Columns))

	// 4. Copy
	want, err := s.count(ctx, throwaway)
	if err != nil {
		return fail(4, err)
	}
	rc, err := s.rowCopy(old, next, throwaway, c)
	if err != nil {
		return fail(4, err)
	}
	if err := s.conn.ExecAll(ctx, s.dialect.CopyRowsSQL(rc)); err != nil {
		return fail(4, err)
	}
	got, err := s.count(ctx, table)
	if err != nil {
		return fail(4, err)
	}
	if got != want {
		return fail(4, alerr.Newf(alerr.ErrRebuildIncomplete, "copied %d of %d rows", got, want))
	}
	log.Info("rebuild: copied rows", "step", 4, "rows", got)

	// 5. Drop the throwaway
	stmt, err = s.dialect.DropTableSQL(&ast.DropTable{Name: throwaway})
	if err != nil {
		return fail(5, err)
	}
	if _, err := s.conn.Exec(ctx, stmt); err != nil {
		return fail(5, err)
	}
	if err := s.writeSidecar(ctx, next); err != nil {
		return fail(5, err)
	}
	log.Info("rebuild: dropped throwaway", "step", 5)

	// 6. Recreate surviving indexes. Index names are schema-wide on some
	// engines, so this runs after the throwaway is gone.
	indexes := survivingIndexes(old.Indexes, c)
	for _, idx := range indexes {
		stmt, err := s.dialect.CreateIndexSQL(&ast.CreateIndex{TableRef: ast.TableRef{TableName: table}, Index: idx})
		if err != nil {
			return fail(6, err)
		}
		if _, err := s.conn.Exec(ctx, stmt); err != nil {
			return fail(6, err)
		}
	}
	log.Info("rebuild: recreated indexes", "step", 6, "indexes", len(indexes))
	return nil
}

// rebuiltTable returns the descriptor of the table after the change: columns
// in snapshot order with the change applied and only the primary key kept.
func rebuiltTable(old *ast.TableDef, c change) (*ast.TableDef, error) {
	next := &ast.TableDef{Name: old.Name, Collation: old.Collation, Comment: old.Comment}

	for _, col := range old.Columns {
		name := c.target(col.Name)
		if name == "" {
			continue
		}
		n := col.Clone()
		n.Name = name
		next.Columns = append(next.Columns, n)
	}
	if c.add != nil {
		next.Columns = append(next.Columns, c.add.Normalized())
	}

	var pk *ast.IndexDef
	for _, idx := range old.Indexes {
		if idx.Primary {
			pk = idx
		}
	}
	switch {
	case c.dropPrimary:
		pk = nil
	case c.addPrimary != nil:
		if pk != nil {
			return nil, alerr.New(alerr.ErrDuplicateName, "table already has a primary key").WithTable(old.Name)
		}
		pk = c.addPrimary
	case pk != nil && c.drop != "" && pk.References(c.drop):
		pk = nil
	case pk != nil && c.renameFrom != "":
		pk = pk.WithColumnRenamed(c.renameFrom, c.renameTo)
	}
	if pk != nil {
		p := pk.Clone()
		p.Name = ast.PrimaryIndexName
		next.Indexes = []*ast.IndexDef{p}
	}

	if err := next.Validate(); err != nil {
		return nil, err
	}
	return next.Normalized(), nil
}

// rowCopy maps every column of next to the expression that fills it from
// the throwaway table.
func (s *Schema) rowCopy(old, next *ast.TableDef, throwaway string, c change) (*dialect.RowCopy, error) {
	rc := &dialect.RowCopy{Table: next.Name, Source: throwaway}

	for _, col := range old.Columns {
		name := c.target(col.Name)
		if name == "" {
			continue
		}
		rc.Targets = append(rc.Targets, name)
		rc.Sources = append(rc.Sources, s.dialect.QuoteIdent(col.Name))
		if col.Type.IsIdentity() {
			rc.Identity = name
		}
	}

	// A new identity column numbers the rows itself.
	if add := c.add; add != nil && !add.Type.IsIdentity() {
		col := next.Column(add.Name)
		value := col.Default
		if value == nil && !col.Nullable {
			z, err := ast.Zero(col.Type)
			if err != nil {
				return nil, err
			}
			value = z
		}
		rc.Targets = append(rc.Targets, col.Name)
		rc.Sources = append(rc.Sources, s.dialect.DefaultSQL(col, value))
	}
	return rc, nil
}

// survivingIndexes returns the secondary indexes the change leaves
// applicable, renamed columns substituted, in name order.
func survivingIndexes(indexes []*ast.IndexDef, c change) []*ast.IndexDef {
	var out []*ast.IndexDef
	for _, idx := range indexes {
		if idx.Primary {
			continue
		}
		if c.drop != "" && idx.References(c.drop) {
			continue
		}
		if c.renameFrom != "" {
			idx = idx.WithColumnRenamed(c.renameFrom, c.renameTo)
		}
		out = append(out, idx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Schema) count(ctx context.Context, table string) (int64, error) {
	v, err := s.conn.Scalar(ctx, "SELECT COUNT(*) FROM "+s.dialect.QuoteIdent(table))
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case int:
		return int64(n), nil
	case []byte:
		return strconv.ParseInt(string(n), 10, 64)
	case string:
		return strconv.ParseInt(n, 10, 64)
	}
	return 0, alerr.Newf(alerr.EInternalError, "unexpected row count %T", v).WithTable(table)
}
