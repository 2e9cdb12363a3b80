package metadata

import (
	"testing"

	"github.com/hlop3z/ddlkit/internal/ast"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		hint, comment string
		want          string
	}{
		{"", "", ""},
		{"", "user name", "user name"},
		{"json", "", "[json]"},
		{"binary(16)", "digest", "[binary(16)] digest"},
		{"", "[json] literally", "[] [json] literally"},
		{"", "[] spaced", "[] [] spaced"},
		{"", "[draft] notes", "[draft] notes"},
		{"array", "[json] literally", "[array] [json] literally"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := Encode(tt.hint, tt.comment); got != tt.want {
				t.Errorf("Encode(%q, %q) = %q, want %q", tt.hint, tt.comment, got, tt.want)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		content string
		want    Content
	}{
		{"", Content{}},
		{"plain comment", Content{Comment: "plain comment"}},
		{"[json]", Content{Hint: "json"}},
		{"[array] tags", Content{Hint: "array", Comment: "tags"}},
		{"[numeric(12,4)] price", Content{Hint: "numeric(12,4)", Comment: "price"}},
		{"[big-identity]", Content{Hint: "big-identity"}},
		{"[draft] not a hint", Content{Comment: "[draft] not a hint"}},
		{"[unclosed", Content{Comment: "[unclosed"}},
		{"[] [json] literally", Content{Comment: "[json] literally"}},
		{"[array] [json] literally", Content{Hint: "array", Comment: "[json] literally"}},
	}

	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			got := Decode(tt.content)
			if got != tt.want {
				t.Errorf("Decode(%q) = %+v, want %+v", tt.content, got, tt.want)
			}
			if got.String() != tt.content {
				t.Errorf("Decode(%q).String() = %q", tt.content, got.String())
			}
		})
	}
}

func TestContentApply(t *testing.T) {
	t.Run("hint overrides type", func(t *testing.T) {
		col := &ast.ColumnDef{Name: "data", Type: ast.TypeText, Nullable: true}
		Content{Hint: "json", Comment: "payload"}.Apply(col)
		if col.Type != ast.TypeJSON || col.Comment != "payload" {
			t.Errorf("Apply() = %+v", col)
		}
	})

	t.Run("sized hint", func(t *testing.T) {
		col := &ast.ColumnDef{Name: "h", Type: ast.TypeBlob}
		Content{Hint: "binary(16)"}.Apply(col)
		if col.Type != ast.TypeBinary || col.Size != 16 {
			t.Errorf("Apply() = %+v", col)
		}
	})

	t.Run("identity hint clears nullability", func(t *testing.T) {
		col := &ast.ColumnDef{Name: "id", Type: ast.TypeIdentity, Nullable: true, Default: "0"}
		Content{Hint: "big-identity"}.Apply(col)
		if col.Type != ast.TypeBigIdentity || col.Nullable || col.Default != nil {
			t.Errorf("Apply() = %+v", col)
		}
	})

	t.Run("bracketed comment keeps type", func(t *testing.T) {
		col := &ast.ColumnDef{Name: "n", Type: ast.TypeText}
		Decode(Content{Comment: "[json] literally"}.String()).Apply(col)
		if col.Type != ast.TypeText || col.Comment != "[json] literally" {
			t.Errorf("Apply() = %+v", col)
		}
	})

	t.Run("comment only keeps type", func(t *testing.T) {
		col := &ast.ColumnDef{Name: "n", Type: ast.TypeString, Size: 40}
		Content{Comment: "name"}.Apply(col)
		if col.Type != ast.TypeString || col.Size != 40 || col.Comment != "name" {
			t.Errorf("Apply() = %+v", col)
		}
	})
}
