// Package metadata stores comments and type hints next to the schema.
//
// A content string carries an optional bracketed type hint followed by the
// human comment, e.g. "[json] user preferences" or "[binary(16)]". Dialects
// with native comments keep the content in the comment itself; the others
// keep it in the sidecar table managed by Store.
package metadata

import (
	"strings"

	"github.com/hlop3z/ddlkit/internal/ast"
)

// Content is a decoded comment.
type Content struct {
	Hint    string // canonical type signature, empty when the physical type is enough
	Comment string
}

// escape marks a hint-less comment that would otherwise decode as hinted.
const escape = "[] "

// Encode joins a hint and a comment into one content string.
func Encode(hint, comment string) string {
	switch {
	case hint == "" && (strings.HasPrefix(comment, escape) || Decode(comment).Hint != ""):
		return escape + comment
	case hint == "":
		return comment
	case comment == "":
		return "[" + hint + "]"
	}
	return "[" + hint + "] " + comment
}

// Decode splits content into hint and comment. A leading bracket group that
// is not a canonical type signature is kept as part of the comment, and a
// leading "[] " is dropped.
func Decode(content string) Content {
	if rest, ok := strings.CutPrefix(content, escape); ok {
		return Content{Comment: rest}
	}
	if !strings.HasPrefix(content, "[") {
		return Content{Comment: content}
	}
	end := strings.IndexByte(content, ']')
	if end < 0 {
		return Content{Comment: content}
	}
	hint := content[1:end]
	if _, _, _, err := ast.ParseSignature(hint); err != nil {
		return Content{Comment: content}
	}
	return Content{Hint: hint, Comment: strings.TrimPrefix(content[end+1:], " ")}
}

// String re-encodes the content.
func (c Content) String() string {
	return Encode(c.Hint, c.Comment)
}

// IsZero reports whether there is nothing to store.
func (c Content) IsZero() bool {
	return c.Hint == "" && c.Comment == ""
}

// Apply overrides the column type with the hint and sets the comment.
func (c Content) Apply(col *ast.ColumnDef) {
	col.Comment = c.Comment
	if c.Hint == "" {
		return
	}
	typ, size, scale, err := ast.ParseSignature(c.Hint)
	if err != nil {
		return
	}
	col.Type = typ
	col.Size = size
	col.Scale = scale
	if typ.IsIdentity() {
		col.Nullable = false
		col.Default = nil
	}
}
