package engine

import (
	"context"
	"database/sql"
	"reflect"
	"strings"
	"testing"

	"github.com/hlop3z/ddlkit/internal/alerr"
	"github.com/hlop3z/ddlkit/internal/ast"
	"github.com/hlop3z/ddlkit/internal/testutil"
)

// The scenarios below run against every dialect: in-process on SQLite and
// against live servers under the integration build tag.

func indexNames(indexes []*ast.IndexDef) []string {
	names := make([]string, len(indexes))
	for i, idx := range indexes {
		names[i] = idx.Name
	}
	return names
}

func testRoundTrip(t *testing.T, s *Schema) {
	ctx := context.Background()

	for _, typ := range ast.Types() {
		t.Run(string(typ), func(t *testing.T) {
			table := "rt_" + strings.ReplaceAll(string(typ), "-", "_")
			col := &ast.ColumnDef{Name: "c", Type: typ}
			testutil.Must(t, s.CreateTable(ctx, &ast.TableDef{Name: table, Columns: []*ast.ColumnDef{col}}))

			cols := testutil.MustValue(s.Columns(ctx, table))(t)
			if len(cols) != 1 {
				t.Fatalf("Columns() returned %d columns", len(cols))
			}
			want := col.Normalized()
			got := cols[0]
			if got.Type != want.Type || got.Size != want.Size || got.Scale != want.Scale || got.Nullable != want.Nullable {
				t.Errorf("round trip of %s = %s nullable=%v", want.Signature(), got.Signature(), got.Nullable)
			}
		})
	}
}

func testRoundTripOptions(t *testing.T, s *Schema) {
	ctx := context.Background()

	def := &ast.TableDef{
		Name:    "opts",
		Comment: "option round trip",
		Columns: []*ast.ColumnDef{
			{Name: "label", Type: ast.TypeString, Size: 40, Default: "none", Comment: "display label"},
			{Name: "amount", Type: ast.TypeNumeric, Size: 12, Scale: 4, Nullable: true},
			{Name: "tags", Type: ast.TypeArray, Nullable: true, Comment: "free tags"},
			{Name: "created", Type: ast.TypeDatetime, Default: ast.CurrentTimestamp},
			{Name: "note", Type: ast.TypeText, Nullable: true, Comment: "[json] literally"},
		},
	}
	testutil.Must(t, s.CreateTable(ctx, def))

	got := testutil.MustValue(s.Table(ctx, "opts"))(t)
	if got.Comment != "option round trip" {
		t.Errorf("table comment = %q", got.Comment)
	}
	want := []*ast.ColumnDef{
		{Name: "label", Type: ast.TypeString, Size: 40, Default: "none", Comment: "display label"},
		{Name: "amount", Type: ast.TypeNumeric, Size: 12, Scale: 4, Nullable: true},
		{Name: "tags", Type: ast.TypeArray, Nullable: true, Comment: "free tags"},
		{Name: "created", Type: ast.TypeDatetime, Default: ast.CurrentTimestamp},
		{Name: "note", Type: ast.TypeText, Nullable: true, Comment: "[json] literally"},
	}
	if len(got.Columns) != len(want) {
		t.Fatalf("got %d columns, want %d", len(got.Columns), len(want))
	}
	for i := range want {
		if !reflect.DeepEqual(got.Columns[i], want[i]) {
			t.Errorf("column %d = %+v, want %+v", i, got.Columns[i], want[i])
		}
	}
}

func testIndexFidelity(t *testing.T, s *Schema) {
	ctx := context.Background()

	testutil.Must(t, s.CreateTable(ctx, &ast.TableDef{
		Name: "idx",
		Columns: []*ast.ColumnDef{
			{Name: "a", Type: ast.TypeInteger},
			{Name: "b", Type: ast.TypeInteger},
			{Name: "c", Type: ast.TypeInteger},
		},
		Indexes: []*ast.IndexDef{
			{Columns: []string{"b", "a"}, Unique: true},
			{Columns: []string{"c"}},
		},
	}))

	got := testutil.MustValue(s.Indexes(ctx, "idx"))(t)
	want := []*ast.IndexDef{
		{Name: "idx_b_a_unique", Columns: []string{"b", "a"}, Unique: true},
		{Name: "idx_c_index", Columns: []string{"c"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Indexes() = %v, want %v", got, want)
	}
}

// testRebuildLifecycle drives a table through drop, add and rename. On the
// dialects that cannot alter in place each step is a rebuild.
func testRebuildLifecycle(t *testing.T, s *Schema, db *sql.DB) {
	ctx := context.Background()

	testutil.Must(t, s.CreateTable(ctx, &ast.TableDef{
		Name: "life",
		Columns: []*ast.ColumnDef{
			{Name: "id", Type: ast.TypeIdentity},
			{Name: "a", Type: ast.TypeString, Size: 20},
			{Name: "b", Type: ast.TypeInteger},
			{Name: "c", Type: ast.TypeInteger, Nullable: true},
		},
		Indexes: []*ast.IndexDef{
			{Columns: []string{"a", "c"}},
			{Columns: []string{"a"}},
		},
	}))
	testutil.ExecSQL(t, db, "INSERT INTO life (a, b, c) VALUES ('x', 1, 10)")
	testutil.ExecSQL(t, db, "INSERT INTO life (a, b, c) VALUES ('y', 2, 20)")
	testutil.ExecSQL(t, db, "INSERT INTO life (a, b, c) VALUES ('z', 3, NULL)")

	t.Run("drop column", func(t *testing.T) {
		testutil.Must(t, s.DropColumn(ctx, "life", "c"))

		testutil.AssertRowCount(t, db, "life", 3)
		if got := testutil.QueryInt(t, db, "SELECT SUM(b) FROM life"); got != 6 {
			t.Errorf("SUM(b) = %d, want 6", got)
		}
		names := indexNames(testutil.MustValue(s.Indexes(ctx, "life"))(t))
		if want := []string{"life_a_index", "primary"}; !reflect.DeepEqual(names, want) {
			t.Errorf("indexes = %v, want %v", names, want)
		}
		if ok := testutil.MustValue(s.HasColumn(ctx, "life", "c"))(t); ok {
			t.Error("column c survived the drop")
		}
	})

	t.Run("add not null without default", func(t *testing.T) {
		flag := &ast.ColumnDef{Name: "flag", Type: ast.TypeBoolean}
		testutil.Must(t, s.AddColumn(ctx, "life", flag))
		label := &ast.ColumnDef{Name: "label", Type: ast.TypeString, Size: 10}
		testutil.Must(t, s.AddColumn(ctx, "life", label))

		testutil.AssertRowCount(t, db, "life", 3)
		d := s.Dialect()
		zeroFlag := "SELECT COUNT(*) FROM life WHERE flag = " + d.DefaultSQL(flag, false)
		if got := testutil.QueryInt(t, db, zeroFlag); got != 3 {
			t.Errorf("%d rows have flag = false, want 3", got)
		}
		if got := testutil.QueryInt(t, db, "SELECT COUNT(*) FROM life WHERE label = ''"); got != 3 {
			t.Errorf("%d rows have an empty label, want 3", got)
		}

		cols := testutil.MustValue(s.Columns(ctx, "life"))(t)
		if last := cols[len(cols)-1]; last.Name != "label" || last.Nullable {
			t.Errorf("last column = %+v, want non-null label", last)
		}
	})

	t.Run("rename column", func(t *testing.T) {
		testutil.Must(t, s.RenameColumn(ctx, "life", "a", "name"))

		testutil.AssertRowCount(t, db, "life", 3)
		if got := testutil.QueryInt(t, db, "SELECT COUNT(*) FROM life WHERE name IN ('x', 'y', 'z')"); got != 3 {
			t.Errorf("%d renamed values survived, want 3", got)
		}
		indexes := testutil.MustValue(s.Indexes(ctx, "life"))(t)
		want := &ast.IndexDef{Name: "life_a_index", Columns: []string{"name"}}
		if len(indexes) != 2 || !reflect.DeepEqual(indexes[0], want) {
			t.Errorf("indexes = %v, want %v first", indexes, want)
		}
	})

	t.Run("identity keeps numbering", func(t *testing.T) {
		testutil.ExecSQL(t, db, "INSERT INTO life (name, b, flag, label) VALUES ('w', 4, "+
			s.Dialect().DefaultSQL(&ast.ColumnDef{Type: ast.TypeBoolean}, true)+", 'new')")
		if got := testutil.QueryInt(t, db, "SELECT MAX(id) FROM life"); got != 4 {
			t.Errorf("MAX(id) = %d, want 4", got)
		}
	})
}

func testPrimaryKey(t *testing.T, s *Schema) {
	ctx := context.Background()

	testutil.Must(t, s.CreateTable(ctx, &ast.TableDef{
		Name: "pk",
		Columns: []*ast.ColumnDef{
			{Name: "a", Type: ast.TypeInteger},
			{Name: "b", Type: ast.TypeString, Size: 20},
		},
		Indexes: []*ast.IndexDef{{Columns: []string{"b"}}},
	}))

	testutil.Must(t, s.AddIndex(ctx, "pk", &ast.IndexDef{Columns: []string{"a"}, Primary: true}))
	got := testutil.MustValue(s.Indexes(ctx, "pk"))(t)
	want := []*ast.IndexDef{
		{Name: "pk_b_index", Columns: []string{"b"}},
		{Name: "primary", Columns: []string{"a"}, Unique: true, Primary: true},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("after add: Indexes() = %v, want %v", got, want)
	}

	testutil.Must(t, s.DropIndex(ctx, "pk", &ast.IndexDef{Primary: true}))
	names := indexNames(testutil.MustValue(s.Indexes(ctx, "pk"))(t))
	if !reflect.DeepEqual(names, []string{"pk_b_index"}) {
		t.Errorf("after drop: indexes = %v", names)
	}

	testutil.Must(t, s.DropIndex(ctx, "pk", &ast.IndexDef{Columns: []string{"b"}}))
	if got := testutil.MustValue(s.Indexes(ctx, "pk"))(t); len(got) != 0 {
		t.Errorf("after dropping by columns: %v", got)
	}
}

func testExampleScenario(t *testing.T, s *Schema) {
	ctx := context.Background()

	testutil.Must(t, s.CreateTable(ctx, &ast.TableDef{
		Name: "t1",
		Columns: []*ast.ColumnDef{
			{Name: "id", Type: ast.TypeIdentity},
			{Name: "name", Type: ast.TypeString, Size: 50, Nullable: true},
		},
	}))

	cols := testutil.MustValue(s.Columns(ctx, "t1"))(t)
	want := []*ast.ColumnDef{
		{Name: "id", Type: ast.TypeIdentity},
		{Name: "name", Type: ast.TypeString, Size: 50, Nullable: true},
	}
	if !reflect.DeepEqual(cols, want) {
		t.Errorf("Columns() = %+v, want %+v", cols, want)
	}

	testutil.Must(t, s.AddIndex(ctx, "t1", &ast.IndexDef{Columns: []string{"name"}, Unique: true}))
	indexes := testutil.MustValue(s.Indexes(ctx, "t1"))(t)
	wantIdx := &ast.IndexDef{Name: "t1_name_unique", Columns: []string{"name"}, Unique: true}
	found := false
	for _, idx := range indexes {
		if reflect.DeepEqual(idx, wantIdx) {
			found = true
		}
	}
	if !found {
		t.Errorf("Indexes() = %v, want to include %v", indexes, wantIdx)
	}
}

func testTableOperations(t *testing.T, s *Schema, db *sql.DB) {
	ctx := context.Background()

	testutil.Must(t, s.CreateTable(ctx, &ast.TableDef{
		Name:    "ops",
		Comment: "moving table",
		Columns: []*ast.ColumnDef{{Name: "v", Type: ast.TypeInteger}},
	}))
	testutil.ExecSQL(t, db, "INSERT INTO ops (v) VALUES (1)")

	testutil.Must(t, s.TruncateTable(ctx, "ops"))
	testutil.AssertRowCount(t, db, "ops", 0)

	testutil.Must(t, s.Apply(ctx, &ast.RenameTable{OldName: "ops", NewName: "moved"}))
	tables := testutil.MustValue(s.Tables(ctx))(t)
	if _, ok := tables["ops"]; ok {
		t.Error("old name still listed")
	}
	if moved := tables["moved"]; moved == nil || moved.Comment != "moving table" {
		t.Errorf("moved = %+v", moved)
	}

	testutil.Must(t, s.DropTable(ctx, "moved"))
	if ok := testutil.MustValue(s.HasTable(ctx, "moved"))(t); ok {
		t.Error("table survived the drop")
	}
}

func testInvalidSpecs(t *testing.T, s *Schema) {
	ctx := context.Background()

	testutil.Must(t, s.CreateTable(ctx, &ast.TableDef{
		Name: "valid",
		Columns: []*ast.ColumnDef{
			{Name: "id", Type: ast.TypeIdentity},
			{Name: "name", Type: ast.TypeString},
		},
	}))

	tests := []struct {
		name string
		run  func() error
		code alerr.Code
	}{
		{"unknown type", func() error {
			return s.CreateTable(ctx, &ast.TableDef{Name: "bad", Columns: []*ast.ColumnDef{{Name: "c", Type: "strng"}}})
		}, alerr.ErrInvalidType},
		{"no columns", func() error {
			return s.CreateTable(ctx, &ast.TableDef{Name: "bad"})
		}, alerr.ErrEmptyTable},
		{"index without columns", func() error {
			return s.AddIndex(ctx, "valid", &ast.IndexDef{Unique: true})
		}, alerr.ErrIndexSpec},
		{"drop index without target", func() error {
			return s.DropIndex(ctx, "valid", &ast.IndexDef{})
		}, alerr.ErrIndexSpec},
		{"drop unknown index", func() error {
			return s.DropIndex(ctx, "valid", &ast.IndexDef{Name: "valid_nme_index"})
		}, alerr.ErrIndexSpec},
		{"drop identity primary key", func() error {
			return s.DropIndex(ctx, "valid", &ast.IndexDef{Primary: true})
		}, alerr.ErrInvalidSpec},
		{"duplicate column", func() error {
			return s.AddColumn(ctx, "valid", &ast.ColumnDef{Name: "name", Type: ast.TypeText, Nullable: true})
		}, alerr.ErrDuplicateName},
		{"drop unknown column", func() error {
			return s.DropColumn(ctx, "valid", "nme")
		}, alerr.ErrUnknownColumn},
		{"rename onto existing", func() error {
			return s.RenameColumn(ctx, "valid", "name", "id")
		}, alerr.ErrDuplicateName},
		{"index on unknown column", func() error {
			return s.AddIndex(ctx, "valid", &ast.IndexDef{Columns: []string{"nope"}})
		}, alerr.ErrUnknownColumn},
		{"unknown table", func() error {
			_, err := s.Columns(ctx, "valdi")
			return err
		}, alerr.ErrTableNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertErrorCode(t, tt.run(), tt.code)
		})
	}

	if ok := testutil.MustValue(s.HasTable(ctx, "bad"))(t); ok {
		t.Error("an invalid CREATE TABLE reached the database")
	}
	cols := testutil.MustValue(s.Columns(ctx, "valid"))(t)
	if len(cols) != 2 {
		t.Errorf("valid has %d columns after rejected changes", len(cols))
	}
}
