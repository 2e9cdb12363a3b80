package drift

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/hlop3z/ddlkit/internal/ast"
	"github.com/hlop3z/ddlkit/internal/dialect"
	"github.com/hlop3z/ddlkit/internal/engine"
	"github.com/hlop3z/ddlkit/internal/testutil"
)

func usersTable() *ast.TableDef {
	return &ast.TableDef{
		Name: "users",
		Columns: []*ast.ColumnDef{
			{Name: "id", Type: ast.TypeIdentity},
			{Name: "email", Type: ast.TypeString, Size: 255},
			{Name: "active", Type: ast.TypeBoolean, Default: "1"},
		},
		Indexes: []*ast.IndexDef{
			{Name: "primary", Columns: []string{"id"}, Unique: true, Primary: true},
			{Name: "users_email_unique", Columns: []string{"email"}, Unique: true},
		},
	}
}

func TestComputeSchemaHash_Empty(t *testing.T) {
	hash := testutil.MustValue(ComputeSchemaHash(nil))(t)
	if hash.Root != emptyHash() {
		t.Errorf("Root = %s, want the empty hash", hash.Root)
	}
	if len(hash.Tables) != 0 {
		t.Errorf("expected 0 tables, got %d", len(hash.Tables))
	}
}

func TestComputeSchemaHash_SingleTable(t *testing.T) {
	hash := testutil.MustValue(ComputeSchemaHash(map[string]*ast.TableDef{"users": usersTable()}))(t)

	th, ok := hash.Tables["users"]
	if !ok {
		t.Fatal("expected users table hash")
	}
	if len(th.Columns) != 3 {
		t.Errorf("expected 3 column hashes, got %d", len(th.Columns))
	}
	if len(th.Indexes) != 2 {
		t.Errorf("expected 2 index hashes, got %d", len(th.Indexes))
	}
	if hash.Root == emptyHash() {
		t.Error("root should differ from the empty hash")
	}
}

func TestComputeSchemaHash_Deterministic(t *testing.T) {
	a := testutil.MustValue(ComputeSchemaHash(map[string]*ast.TableDef{"users": usersTable()}))(t)

	// Index order in the descriptor does not matter.
	shuffled := usersTable()
	shuffled.Indexes[0], shuffled.Indexes[1] = shuffled.Indexes[1], shuffled.Indexes[0]
	b := testutil.MustValue(ComputeSchemaHash(map[string]*ast.TableDef{"users": shuffled}))(t)

	if a.Root != b.Root {
		t.Errorf("roots differ: %s vs %s", a.Root, b.Root)
	}
}

func TestComputeSchemaHash_DialectSpellings(t *testing.T) {
	// The same boolean default read back from two engines.
	sqlite := usersTable()
	postgres := usersTable()
	postgres.Columns[2].Default = "true"
	postgres.Columns[1].Collation = "C"

	a := testutil.MustValue(ComputeSchemaHash(map[string]*ast.TableDef{"users": sqlite}))(t)
	b := testutil.MustValue(ComputeSchemaHash(map[string]*ast.TableDef{"users": postgres}))(t)
	if a.Root != b.Root {
		t.Error("equivalent defaults and collations should hash alike")
	}
}

func TestNormalizeDefault(t *testing.T) {
	tests := []struct {
		col  ast.ColumnDef
		want string
	}{
		{ast.ColumnDef{Type: ast.TypeBoolean, Default: "1"}, "true"},
		{ast.ColumnDef{Type: ast.TypeBoolean, Default: "FALSE"}, "false"},
		{ast.ColumnDef{Type: ast.TypeBoolean, Default: true}, "true"},
		{ast.ColumnDef{Type: ast.TypeNumeric, Default: "0.00"}, "0"},
		{ast.ColumnDef{Type: ast.TypeFloat, Default: "1.50"}, "1.5"},
		{ast.ColumnDef{Type: ast.TypeString, Default: "0.00"}, "0.00"},
		{ast.ColumnDef{Type: ast.TypeDatetime, Default: ast.CurrentTimestamp}, "CURRENT_TIMESTAMP"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := normalizeDefault(&tt.col); got != tt.want {
				t.Errorf("normalizeDefault(%v) = %q, want %q", tt.col.Default, got, tt.want)
			}
		})
	}
}

func TestCompareHashes_Match(t *testing.T) {
	tables := map[string]*ast.TableDef{"users": usersTable()}
	result := testutil.MustValue(Compare(tables, tables))(t)
	if result.HasDrift {
		t.Error("identical schemas reported drift")
	}
	if got := FormatResult(result); !strings.HasPrefix(got, "Schemas match") {
		t.Errorf("FormatResult() = %q", got)
	}
}

func TestCompareHashes_MissingAndExtraTables(t *testing.T) {
	expected := map[string]*ast.TableDef{"users": usersTable()}
	posts := &ast.TableDef{Name: "posts", Columns: []*ast.ColumnDef{{Name: "id", Type: ast.TypeIdentity}}}
	actual := map[string]*ast.TableDef{"posts": posts}

	result := testutil.MustValue(Compare(expected, actual))(t)
	if !result.HasDrift {
		t.Fatal("expected drift")
	}
	if !reflect.DeepEqual(result.Comparison.MissingTables, []string{"users"}) {
		t.Errorf("MissingTables = %v", result.Comparison.MissingTables)
	}
	if !reflect.DeepEqual(result.Comparison.ExtraTables, []string{"posts"}) {
		t.Errorf("ExtraTables = %v", result.Comparison.ExtraTables)
	}

	summary := Summarize(result)
	if got := FormatSummary(summary); got != "Drift detected: 1 missing, 1 extra" {
		t.Errorf("FormatSummary() = %q", got)
	}
}

func TestCompareHashes_ModifiedTable(t *testing.T) {
	expected := usersTable()
	actual := usersTable()
	actual.Columns[1].Size = 100
	actual.Columns = append(actual.Columns, &ast.ColumnDef{Name: "bio", Type: ast.TypeText, Nullable: true})
	actual.Indexes = actual.Indexes[:1]

	result := testutil.MustValue(Compare(
		map[string]*ast.TableDef{"users": expected},
		map[string]*ast.TableDef{"users": actual},
	))(t)

	diff := result.Comparison.TableDiffs["users"]
	if diff == nil {
		t.Fatal("expected a diff for users")
	}
	want := &TableDiff{
		Name:            "users",
		ExtraColumns:    []string{"bio"},
		ModifiedColumns: []string{"email"},
		MissingIndexes:  []string{"users_email_unique"},
	}
	if !reflect.DeepEqual(diff, want) {
		t.Errorf("diff = %+v, want %+v", diff, want)
	}

	out := FormatResult(result)
	for _, s := range []string{"Schemas differ", "+ bio", "~ email", "- users_email_unique"} {
		if !strings.Contains(out, s) {
			t.Errorf("FormatResult() missing %q:\n%s", s, out)
		}
	}
}

func TestCompareHashes_ColumnOrder(t *testing.T) {
	expected := usersTable()
	actual := usersTable()
	actual.Columns[1], actual.Columns[2] = actual.Columns[2], actual.Columns[1]

	result := testutil.MustValue(Compare(
		map[string]*ast.TableDef{"users": expected},
		map[string]*ast.TableDef{"users": actual},
	))(t)
	diff := result.Comparison.TableDiffs["users"]
	if diff == nil || diff.HasDifferences() {
		t.Fatalf("diff = %+v, want a table-level difference only", diff)
	}
	if !strings.Contains(FormatResult(result), "column order or table comment differs") {
		t.Error("reordered columns not reported")
	}
}

func TestTableDiff_HasDifferences(t *testing.T) {
	tests := []struct {
		name string
		diff TableDiff
		want bool
	}{
		{"empty", TableDiff{}, false},
		{"missing column", TableDiff{MissingColumns: []string{"a"}}, true},
		{"extra index", TableDiff{ExtraIndexes: []string{"i"}}, true},
		{"modified index", TableDiff{ModifiedIndexes: []string{"i"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.diff.HasDifferences(); got != tt.want {
				t.Errorf("HasDifferences() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatQuickStatus(t *testing.T) {
	if got := FormatQuickStatus(false, "abcdef0123456789", ""); got != "OK  abcdef012345" {
		t.Errorf("FormatQuickStatus() = %q", got)
	}
	if got := FormatQuickStatus(true, "aaaa", "bbbb"); got != "DRIFT  expected: aaaa  actual: bbbb" {
		t.Errorf("FormatQuickStatus() = %q", got)
	}
}

func TestDetectLiveDatabases(t *testing.T) {
	ctx := context.Background()
	open := func() *engine.Schema {
		s, err := engine.New(testutil.SetupSQLite(t), dialect.SQLite(), engine.Options{})
		testutil.Must(t, err)
		def := usersTable()
		def.Indexes = def.Indexes[1:]
		testutil.Must(t, s.CreateTable(ctx, def))
		return s
	}
	a, b := open(), open()

	result := testutil.MustValue(Detect(ctx, a, b))(t)
	if result.HasDrift {
		t.Fatalf("identical databases drifted:\n%s", FormatResult(result))
	}

	ha := testutil.MustValue(Fingerprint(ctx, a))(t)
	if ha.Root != result.ExpectedHash {
		t.Error("Fingerprint() disagrees with Detect()")
	}

	testutil.Must(t, b.AddColumn(ctx, "users", &ast.ColumnDef{Name: "bio", Type: ast.TypeText, Nullable: true}))
	result = testutil.MustValue(Detect(ctx, a, b))(t)
	if !result.HasDrift {
		t.Fatal("added column not detected")
	}
	if got := result.Comparison.TableDiffs["users"].ExtraColumns; !reflect.DeepEqual(got, []string{"bio"}) {
		t.Errorf("ExtraColumns = %v", got)
	}
}
