package ast

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/hlop3z/ddlkit/internal/alerr"
)

// Expr is a default value that is a database expression rather than a literal.
type Expr string

// CurrentTimestamp is the default that evaluates to the current date/time.
// Every dialect renders and recognizes its own spelling of it.
const CurrentTimestamp Expr = "CURRENT_TIMESTAMP"

// ColumnDef describes one column independently of any dialect.
// Size and Scale are zero when unset.
type ColumnDef struct {
	Name      string `yaml:"name" json:"name"`
	Type      Type   `yaml:"type" json:"type"`
	Size      int    `yaml:"size,omitempty" json:"size,omitempty"`
	Scale     int    `yaml:"scale,omitempty" json:"scale,omitempty"`
	Nullable  bool   `yaml:"nullable,omitempty" json:"nullable,omitempty"`
	Default   any    `yaml:"default,omitempty" json:"default,omitempty"` // nil, string, int, int64, float64, bool or CurrentTimestamp
	Collation string `yaml:"collation,omitempty" json:"collation,omitempty"`
	Comment   string `yaml:"comment,omitempty" json:"comment,omitempty"`
}

// HasDefault reports whether the column carries an explicit default.
func (c *ColumnDef) HasDefault() bool {
	return c.Default != nil
}

// Clone returns a copy of the descriptor.
func (c *ColumnDef) Clone() *ColumnDef {
	cp := *c
	return &cp
}

// Normalized returns a copy with catalog defaults applied: sized types get
// their default size, identity types become non-nullable and parameters the
// type does not use are cleared.
func (c *ColumnDef) Normalized() *ColumnDef {
	n := c.Clone()
	switch n.Type {
	case TypeString:
		if n.Size <= 0 {
			n.Size = DefaultStringSize
		}
	case TypeBinary:
		if n.Size <= 0 {
			n.Size = DefaultBinarySize
		}
	case TypeNumeric:
		if n.Size <= 0 {
			n.Size = DefaultPrecision
			if n.Scale <= 0 {
				n.Scale = DefaultScale
			}
		}
	}
	if !n.Type.UsesSize() {
		n.Size = 0
	}
	if !n.Type.UsesScale() {
		n.Scale = 0
	}
	if n.Type.IsIdentity() {
		n.Nullable = false
		n.Default = nil
	}
	if i, ok := n.Default.(int64); ok {
		n.Default = int(i)
	}
	return n
}

// Signature renders the type with its parameters, e.g. "string(50)",
// "numeric(10,2)" or "json".
func (c *ColumnDef) Signature() string {
	switch {
	case c.Type.UsesScale() && c.Size > 0:
		return fmt.Sprintf("%s(%d,%d)", c.Type, c.Size, c.Scale)
	case c.Type.UsesSize() && c.Size > 0:
		return fmt.Sprintf("%s(%d)", c.Type, c.Size)
	}
	return string(c.Type)
}

var signatureRe = regexp.MustCompile(`^([a-z_-]+)(?:\((\d+)(?:,\s*(\d+))?\))?$`)

// ParseSignature is the inverse of ColumnDef.Signature.
func ParseSignature(sig string) (Type, int, int, error) {
	m := signatureRe.FindStringSubmatch(strings.ToLower(strings.TrimSpace(sig)))
	if m == nil {
		return "", 0, 0, alerr.Newf(alerr.ErrInvalidType, "malformed type signature %q", sig)
	}
	t, err := ParseType(m[1])
	if err != nil {
		return "", 0, 0, err
	}
	size, _ := strconv.Atoi(m[2])
	scale, _ := strconv.Atoi(m[3])
	return t, size, scale, nil
}

// Validate checks the descriptor can be synthesized on every dialect.
func (c *ColumnDef) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return alerr.New(alerr.ErrInvalidIdentifier, "column name is required")
	}
	if !c.Type.Valid() {
		if c.Type == "" {
			return alerr.New(alerr.ErrInvalidType, "column type is required").WithColumn(c.Name)
		}
		return alerr.Newf(alerr.ErrInvalidType, "unknown column type %q", string(c.Type)).
			WithColumn(c.Name).
			WithHelp(alerr.SuggestSimilar(string(c.Type), TypeNames()))
	}
	if c.Size < 0 || c.Scale < 0 {
		return alerr.New(alerr.ErrInvalidSpec, "size and scale cannot be negative").WithColumn(c.Name)
	}
	if c.Type == TypeNumeric && c.Size > 0 && c.Scale > c.Size {
		return alerr.Newf(alerr.ErrInvalidSpec, "scale %d exceeds precision %d", c.Scale, c.Size).
			WithColumn(c.Name)
	}
	if c.Type.IsIdentity() && c.Nullable {
		return alerr.New(alerr.ErrInvalidSpec, "identity columns cannot be nullable").WithColumn(c.Name)
	}
	return c.validateDefault()
}

func (c *ColumnDef) validateDefault() error {
	bad := func(msg string) error {
		return alerr.New(alerr.ErrInvalidSpec, msg).
			WithColumn(c.Name).
			With("default", fmt.Sprintf("%v", c.Default))
	}

	switch v := c.Default.(type) {
	case nil:
		return nil
	case Expr:
		if v != CurrentTimestamp {
			return bad("unsupported default expression")
		}
		if !c.Type.IsTemporal() {
			return bad("current timestamp default requires a date or time column")
		}
	case bool:
		if c.Type != TypeBoolean && !c.Type.IsInteger() {
			return bad("boolean default on a non-boolean column")
		}
	case int, int64, float64:
		if !c.Type.IsNumeric() && c.Type != TypeBoolean {
			return bad("numeric default on a non-numeric column")
		}
	case string:
		if c.Type == TypeGUID {
			if _, err := uuid.Parse(v); err != nil {
				return bad("guid default is not a valid UUID")
			}
		}
	default:
		return bad(fmt.Sprintf("default of type %T cannot be rendered as a literal", v))
	}
	if c.Type.IsIdentity() {
		return bad("identity columns cannot have a default")
	}
	return nil
}
