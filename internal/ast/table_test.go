package ast

import (
	"slices"
	"testing"

	"github.com/hlop3z/ddlkit/internal/alerr"
)

func exampleTable() *TableDef {
	return &TableDef{
		Name: "t1",
		Columns: []*ColumnDef{
			{Name: "id", Type: TypeIdentity},
			{Name: "name", Type: TypeString, Size: 50, Nullable: true},
		},
	}
}

func TestTableLookup(t *testing.T) {
	tbl := exampleTable()
	if tbl.Column("name") == nil || tbl.Column("missing") != nil {
		t.Error("Column() lookup failed")
	}
	if got := tbl.ColumnNames(); !slices.Equal(got, []string{"id", "name"}) {
		t.Errorf("ColumnNames() = %v", got)
	}
	if tbl.IdentityColumn().Name != "id" {
		t.Error("IdentityColumn() should be id")
	}
}

func TestPrimaryKeyFromIdentity(t *testing.T) {
	tbl := exampleTable()
	pk := tbl.PrimaryKey()
	if pk == nil || !pk.Primary || !slices.Equal(pk.Columns, []string{"id"}) {
		t.Fatalf("PrimaryKey() = %+v", pk)
	}
	if !tbl.InlinePrimaryKey() {
		t.Error("identity primary key should be inline")
	}

	tbl.Indexes = append(tbl.Indexes, &IndexDef{Name: "primary", Columns: []string{"id"}, Primary: true})
	if !tbl.InlinePrimaryKey() {
		t.Error("explicit primary on the identity column is still inline")
	}
	if err := tbl.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestTableNormalized(t *testing.T) {
	tbl := exampleTable()
	tbl.Indexes = []*IndexDef{{Columns: []string{"name"}, Unique: true}}
	n := tbl.Normalized()

	if n.Indexes[0].Name != "t1_name_unique" {
		t.Errorf("index name = %q", n.Indexes[0].Name)
	}
	if tbl.Indexes[0].Name != "" {
		t.Error("Normalized() must not mutate the receiver")
	}
}

func TestTableValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*TableDef)
		code   alerr.Code
	}{
		{"valid", func(*TableDef) {}, ""},
		{"no name", func(tb *TableDef) { tb.Name = "" }, alerr.ErrInvalidIdentifier},
		{"no columns", func(tb *TableDef) { tb.Columns = nil }, alerr.ErrEmptyTable},
		{"duplicate column", func(tb *TableDef) {
			tb.Columns = append(tb.Columns, &ColumnDef{Name: "name", Type: TypeText})
		}, alerr.ErrDuplicateName},
		{"two identities", func(tb *TableDef) {
			tb.Columns = append(tb.Columns, &ColumnDef{Name: "id2", Type: TypeBigIdentity})
		}, alerr.ErrInvalidSpec},
		{"bad column type", func(tb *TableDef) { tb.Columns[1].Type = "varchar" }, alerr.ErrInvalidType},
		{"index on unknown column", func(tb *TableDef) {
			tb.Indexes = []*IndexDef{{Columns: []string{"nmae"}}}
		}, alerr.ErrUnknownColumn},
		{"index without columns", func(tb *TableDef) {
			tb.Indexes = []*IndexDef{{Name: "x"}}
		}, alerr.ErrIndexSpec},
		{"duplicate index", func(tb *TableDef) {
			tb.Indexes = []*IndexDef{{Columns: []string{"name"}}, {Columns: []string{"name"}}}
		}, alerr.ErrDuplicateName},
		{"identity not primary", func(tb *TableDef) {
			tb.Indexes = []*IndexDef{{Columns: []string{"name"}, Primary: true}}
		}, alerr.ErrInvalidSpec},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := exampleTable()
			tt.mutate(tbl)
			err := tbl.Validate()
			if tt.code == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !alerr.Is(err, tt.code) {
				t.Errorf("Validate() = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestIndexHelpers(t *testing.T) {
	idx := &IndexDef{Columns: []string{"a", "c"}}
	if got := idx.Normalized("t").Name; got != "t_a_c_index" {
		t.Errorf("default name = %q", got)
	}
	pk := (&IndexDef{Columns: []string{"a"}, Primary: true}).Normalized("t")
	if !pk.Unique || pk.Name != "t_a_primary" {
		t.Errorf("primary normalized = %+v", pk)
	}
	if !idx.References("c") || idx.References("b") {
		t.Error("References() mismatch")
	}
	renamed := idx.WithColumnRenamed("c", "d")
	if !slices.Equal(renamed.Columns, []string{"a", "d"}) || idx.Columns[1] != "c" {
		t.Errorf("WithColumnRenamed() = %v, original %v", renamed.Columns, idx.Columns)
	}
}

func TestIndexValidateForDrop(t *testing.T) {
	tests := []struct {
		name string
		idx  IndexDef
		ok   bool
	}{
		{"by name", IndexDef{Name: "x"}, true},
		{"by columns", IndexDef{Columns: []string{"a"}}, true},
		{"primary", IndexDef{Primary: true}, true},
		{"nothing", IndexDef{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.idx.ValidateForDrop()
			if (err == nil) != tt.ok {
				t.Errorf("ValidateForDrop() = %v", err)
			}
			if err != nil && !alerr.Is(err, alerr.ErrIndexSpec) {
				t.Errorf("code = %v", alerr.GetErrorCode(err))
			}
		})
	}
}
