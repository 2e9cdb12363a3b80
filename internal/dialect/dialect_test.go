package dialect

import (
	"testing"

	"github.com/hlop3z/ddlkit/internal/ast"
)

func allDialects() []Dialect {
	return []Dialect{MySQL(), Postgres(), SQLite(), SQLServer()}
}

func TestGet(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"mysql", "mysql"},
		{"mariadb", "mysql"},
		{"postgres", "postgres"},
		{"postgresql", "postgres"},
		{"pgx", "postgres"},
		{"sqlite", "sqlite"},
		{"sqlite3", "sqlite"},
		{"sqlserver", "sqlserver"},
		{"mssql", "sqlserver"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Get(tt.name)
			if d == nil {
				t.Fatalf("Get(%q) = nil", tt.name)
			}
			if d.Name() != tt.want {
				t.Errorf("Get(%q).Name() = %q, want %q", tt.name, d.Name(), tt.want)
			}
		})
	}

	if Get("oracle") != nil {
		t.Error("Get(oracle) should be nil")
	}
}

func TestNamesResolve(t *testing.T) {
	for _, name := range Names() {
		if d := Get(name); d == nil || d.Name() != name {
			t.Errorf("Names() entry %q does not resolve to itself", name)
		}
	}
}

// -----------------------------------------------------------------------------
// Capabilities
// -----------------------------------------------------------------------------

func TestRequiresRebuild(t *testing.T) {
	notNull := &ast.AddColumn{TableRef: ast.TableRef{TableName: "t"}, Column: &ast.ColumnDef{Name: "c", Type: ast.TypeInteger}}
	nullable := &ast.AddColumn{TableRef: ast.TableRef{TableName: "t"}, Column: &ast.ColumnDef{Name: "c", Type: ast.TypeInteger, Nullable: true}}
	withDefault := &ast.AddColumn{TableRef: ast.TableRef{TableName: "t"}, Column: &ast.ColumnDef{Name: "c", Type: ast.TypeInteger, Default: 0}}
	identity := &ast.AddColumn{TableRef: ast.TableRef{TableName: "t"}, Column: &ast.ColumnDef{Name: "id", Type: ast.TypeIdentity}}
	dropCol := &ast.DropColumn{TableRef: ast.TableRef{TableName: "t"}, Name: "c"}
	renameCol := &ast.RenameColumn{TableRef: ast.TableRef{TableName: "t"}, OldName: "a", NewName: "b"}
	addPK := &ast.CreateIndex{TableRef: ast.TableRef{TableName: "t"}, Index: &ast.IndexDef{Columns: []string{"a"}, Primary: true}}
	addIdx := &ast.CreateIndex{TableRef: ast.TableRef{TableName: "t"}, Index: &ast.IndexDef{Columns: []string{"a"}}}
	dropPK := &ast.DropIndex{TableRef: ast.TableRef{TableName: "t"}, Index: &ast.IndexDef{Primary: true}}
	renameTable := &ast.RenameTable{OldName: "t", NewName: "u"}

	tests := []struct {
		op                               ast.Operation
		name                             string
		mysql, postgres, sqlite, mssql bool
	}{
		{notNull, "add not null", true, false, true, true},
		{nullable, "add nullable", false, false, true, false},
		{withDefault, "add with default", false, false, true, false},
		{identity, "add identity", false, false, true, false},
		{dropCol, "drop column", true, false, true, true},
		{renameCol, "rename column", false, false, true, false},
		{addPK, "add primary", true, false, true, true},
		{addIdx, "add index", false, false, false, false},
		{dropPK, "drop primary", true, false, true, true},
		{renameTable, "rename table", false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := map[string]bool{"mysql": tt.mysql, "postgres": tt.postgres, "sqlite": tt.sqlite, "sqlserver": tt.mssql}
			for _, d := range allDialects() {
				if got := d.Capabilities().RequiresRebuild(tt.op); got != want[d.Name()] {
					t.Errorf("%s: RequiresRebuild() = %v, want %v", d.Name(), got, want[d.Name()])
				}
			}
		})
	}
}

func TestCapabilityFlags(t *testing.T) {
	if MySQL().Capabilities().TransactionalDDL {
		t.Error("mysql commits DDL implicitly")
	}
	if SQLite().Capabilities().NativeComments {
		t.Error("sqlite has no native comments")
	}
	for _, d := range []Dialect{MySQL(), Postgres(), SQLServer()} {
		if !d.Capabilities().NativeComments {
			t.Errorf("%s should have native comments", d.Name())
		}
	}
}

// -----------------------------------------------------------------------------
// Type mapping round trip
// -----------------------------------------------------------------------------

// Every canonical type either maps back through the catalog or needs a hint
// that restores it.
func TestTypeMappingRoundTrip(t *testing.T) {
	for _, d := range allDialects() {
		for _, typ := range ast.Types() {
			t.Run(d.Name()+"/"+string(typ), func(t *testing.T) {
				col := (&ast.ColumnDef{Name: "c", Type: typ}).Normalized()
				physical, err := d.ColumnType(col)
				if err != nil {
					t.Fatalf("ColumnType() error: %v", err)
				}

				ft := ExtractFieldType(physical)
				ft.AutoIncrement = typ.IsIdentity()
				got, size, scale := Canonical(d, ft)

				if hint := TypeHint(d, col); hint != "" {
					got, size, scale, err = ast.ParseSignature(hint)
					if err != nil {
						t.Fatalf("hint %q does not parse: %v", hint, err)
					}
				}
				if got != typ || size != col.Size || scale != col.Scale {
					t.Errorf("%s -> %q -> %s(%d,%d)", col.Signature(), physical, got, size, scale)
				}
			})
		}
	}
}

func TestTypeHints(t *testing.T) {
	tests := []struct {
		dialect Dialect
		col     ast.ColumnDef
		want    string
	}{
		{MySQL(), ast.ColumnDef{Type: ast.TypeJSON}, "json"},
		{MySQL(), ast.ColumnDef{Type: ast.TypeUnsignedInt}, ""},
		{MySQL(), ast.ColumnDef{Type: ast.TypeBigIdentity}, ""},
		{Postgres(), ast.ColumnDef{Type: ast.TypeUnsignedInt}, "unsigned-int"},
		{Postgres(), ast.ColumnDef{Type: ast.TypeBinary, Size: 16}, "binary(16)"},
		{Postgres(), ast.ColumnDef{Type: ast.TypeString, Size: 50}, ""},
		{SQLite(), ast.ColumnDef{Type: ast.TypeBigIdentity}, "big-identity"},
		{SQLite(), ast.ColumnDef{Type: ast.TypeArray}, "array"},
		{SQLite(), ast.ColumnDef{Type: ast.TypeBoolean}, ""},
		{SQLServer(), ast.ColumnDef{Type: ast.TypeObject}, "object"},
		{SQLServer(), ast.ColumnDef{Type: ast.TypeString, Size: 5000}, "string(5000)"},
		{SQLServer(), ast.ColumnDef{Type: ast.TypeBoolean}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.dialect.Name()+"/"+tt.col.Signature(), func(t *testing.T) {
			tt.col.Name = "c"
			if got := TypeHint(tt.dialect, &tt.col); got != tt.want {
				t.Errorf("TypeHint() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnknownTypeRejected(t *testing.T) {
	for _, d := range allDialects() {
		t.Run(d.Name(), func(t *testing.T) {
			_, err := d.ColumnDefSQL(&ast.ColumnDef{Name: "c", Type: "strng"})
			if err == nil {
				t.Fatal("ColumnDefSQL() should reject unknown types")
			}
		})
	}
}

func TestUnknownNativeTypeFallsBackToString(t *testing.T) {
	for _, d := range allDialects() {
		t.Run(d.Name(), func(t *testing.T) {
			if got := d.ConvertFieldType(ExtractFieldType("geography(point, 4326)")); got != ast.TypeString {
				t.Errorf("ConvertFieldType() = %q, want string", got)
			}
		})
	}
}
