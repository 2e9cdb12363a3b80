package dialect

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hlop3z/ddlkit/internal/ast"
)

// FieldType is a catalog type string broken into its parts.
type FieldType struct {
	Base     string // lower-cased name without parameters, e.g. "varchar", "timestamp with time zone"
	Size     int    // first parameter: length or precision
	Scale    int    // second parameter
	Max      bool   // length given as MAX
	Unsigned bool

	// AutoIncrement is not parsed; introspection sets it from the catalog.
	AutoIncrement bool
}

// ExtractFieldType parses a raw catalog type such as "int(10) unsigned",
// "numeric(10,2)", "character varying(50)" or "nvarchar(max)".
func ExtractFieldType(raw string) FieldType {
	s := strings.ToLower(strings.TrimSpace(raw))
	var ft FieldType

	if open := strings.IndexByte(s, '('); open >= 0 {
		if end := strings.LastIndexByte(s, ')'); end > open {
			ft.parseParams(s[open+1 : end])
			s = s[:open] + " " + s[end+1:]
		}
	}

	words := strings.Fields(s)
	kept := words[:0]
	for _, w := range words {
		switch w {
		case "unsigned":
			ft.Unsigned = true
		case "signed", "zerofill":
		default:
			kept = append(kept, w)
		}
	}
	ft.Base = strings.Join(kept, " ")
	return ft
}

func (ft *FieldType) parseParams(params string) {
	parts := strings.Split(params, ",")
	first := strings.TrimSpace(parts[0])
	if first == "max" {
		ft.Max = true
		return
	}
	if n, err := strconv.Atoi(first); err == nil {
		ft.Size = n
	}
	if len(parts) > 1 {
		if n, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
			ft.Scale = n
		}
	}
}

// Canonical resolves ft to a canonical type on d, returning size and scale
// only when the type uses them.
func Canonical(d Dialect, ft FieldType) (ast.Type, int, int) {
	t := d.ConvertFieldType(ft)
	size, scale := 0, 0
	if t.UsesSize() {
		size = ft.Size
	}
	if t.UsesScale() {
		scale = ft.Scale
	}
	return t, size, scale
}

// -----------------------------------------------------------------------------
// Default parsing
// -----------------------------------------------------------------------------

var currentTimestampRe = regexp.MustCompile(
	`^(current_timestamp(\(\d*\))?|now\(\)|localtimestamp(\(\d*\))?|getdate\(\)|getutcdate\(\)|sysdatetime\(\)|sysdatetimeoffset\(\)|datetime\('now'\))$`)

// isCurrentTimestamp reports whether expr is one of the dialect spellings
// of the current date/time.
func isCurrentTimestamp(expr string) bool {
	return currentTimestampRe.MatchString(strings.ToLower(strings.TrimSpace(expr)))
}

// stripParens removes balanced outer parentheses: "((0))" -> "0".
func stripParens(s string) string {
	for len(s) >= 2 && s[0] == '(' && s[len(s)-1] == ')' && balanced(s[1:len(s)-1]) {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

func balanced(s string) bool {
	depth := 0
	inQuote := false
	for _, r := range s {
		switch {
		case r == '\'':
			inQuote = !inQuote
		case inQuote:
		case r == '(':
			depth++
		case r == ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

// unquoteLiteral strips a surrounding '...' and un-doubles quotes inside.
func unquoteLiteral(s string) (string, bool) {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return strings.ReplaceAll(s[1:len(s)-1], "''", "'"), true
	}
	return s, false
}

// parseDefaultLiteral is the shared default parser: it recognizes NULL and
// the current timestamp and unquotes string literals.
func parseDefaultLiteral(raw string) any {
	s := stripParens(strings.TrimSpace(raw))
	if s == "" || strings.EqualFold(s, "null") {
		return nil
	}
	if isCurrentTimestamp(s) {
		return ast.CurrentTimestamp
	}
	if v, ok := unquoteLiteral(s); ok {
		return v
	}
	return s
}
