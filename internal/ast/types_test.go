package ast

import (
	"testing"

	"github.com/hlop3z/ddlkit/internal/alerr"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		in      string
		want    Type
		wantErr bool
	}{
		{"string", TypeString, false},
		{"BIG-IDENTITY", TypeBigIdentity, false},
		{"unsigned_int", TypeUnsignedInt, false},
		{"  json ", TypeJSON, false},
		{"strng", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseType(tt.in)
			if tt.wantErr {
				if !alerr.Is(err, alerr.ErrInvalidType) {
					t.Fatalf("ParseType(%q) error = %v, want ErrInvalidType", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseType(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseType(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseTypeSuggestion(t *testing.T) {
	_, err := ParseType("strng")
	e, ok := err.(*alerr.Error)
	if !ok {
		t.Fatalf("expected *alerr.Error, got %T", err)
	}
	helps := e.Helps()
	if len(helps) != 1 || helps[0] != "did you mean 'string'?" {
		t.Errorf("Helps() = %v", helps)
	}
}

func TestCatalogIsClosed(t *testing.T) {
	if len(Types()) != 21 {
		t.Fatalf("catalog has %d types, want 21", len(Types()))
	}
	for _, typ := range Types() {
		if !typ.Valid() {
			t.Errorf("%s should be valid", typ)
		}
	}
	if Type("jsonb").Valid() {
		t.Error("jsonb is not a canonical type")
	}
}

func TestTypePredicates(t *testing.T) {
	tests := []struct {
		typ                                      Type
		identity, integer, numeric, logical, tmp bool
		size, scale                              bool
	}{
		{TypeIdentity, true, true, true, false, false, false, false},
		{TypeBigInt, false, true, true, false, false, false, false},
		{TypeNumeric, false, false, true, false, false, true, true},
		{TypeString, false, false, false, false, false, true, false},
		{TypeBinary, false, false, false, false, false, true, false},
		{TypeObject, false, false, false, true, false, false, false},
		{TypeTimestamp, false, false, false, false, true, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			if tt.typ.IsIdentity() != tt.identity {
				t.Errorf("IsIdentity() = %v", tt.typ.IsIdentity())
			}
			if tt.typ.IsInteger() != tt.integer {
				t.Errorf("IsInteger() = %v", tt.typ.IsInteger())
			}
			if tt.typ.IsNumeric() != tt.numeric {
				t.Errorf("IsNumeric() = %v", tt.typ.IsNumeric())
			}
			if tt.typ.IsLogical() != tt.logical {
				t.Errorf("IsLogical() = %v", tt.typ.IsLogical())
			}
			if tt.typ.IsTemporal() != tt.tmp {
				t.Errorf("IsTemporal() = %v", tt.typ.IsTemporal())
			}
			if tt.typ.UsesSize() != tt.size || tt.typ.UsesScale() != tt.scale {
				t.Errorf("UsesSize/UsesScale = %v/%v", tt.typ.UsesSize(), tt.typ.UsesScale())
			}
		})
	}
}
