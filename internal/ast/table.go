package ast

import (
	"strings"

	"github.com/hlop3z/ddlkit/internal/alerr"
)

// TableDef describes a table with its columns in definition order and its
// indexes.
type TableDef struct {
	Name      string       `yaml:"name" json:"name"`
	Collation string       `yaml:"collation,omitempty" json:"collation,omitempty"`
	Comment   string       `yaml:"comment,omitempty" json:"comment,omitempty"`
	Columns   []*ColumnDef `yaml:"columns" json:"columns"`
	Indexes   []*IndexDef  `yaml:"indexes,omitempty" json:"indexes,omitempty"`
}

// Column returns the named column, or nil.
func (t *TableDef) Column(name string) *ColumnDef {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Index returns the named index, or nil.
func (t *TableDef) Index(name string) *IndexDef {
	for _, idx := range t.Indexes {
		if idx.Name == name {
			return idx
		}
	}
	return nil
}

// ColumnNames returns column names in definition order.
func (t *TableDef) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// IdentityColumn returns the identity column, or nil.
func (t *TableDef) IdentityColumn() *ColumnDef {
	for _, c := range t.Columns {
		if c.Type.IsIdentity() {
			return c
		}
	}
	return nil
}

// PrimaryKey returns the primary index, or nil. An identity column without
// an explicit primary index counts as a single-column primary key.
func (t *TableDef) PrimaryKey() *IndexDef {
	for _, idx := range t.Indexes {
		if idx.Primary {
			return idx
		}
	}
	if id := t.IdentityColumn(); id != nil {
		return &IndexDef{Name: PrimaryIndexName, Columns: []string{id.Name}, Unique: true, Primary: true}
	}
	return nil
}

// InlinePrimaryKey reports whether the primary key is carried by the
// identity column definition itself rather than a table constraint.
func (t *TableDef) InlinePrimaryKey() bool {
	id := t.IdentityColumn()
	if id == nil {
		return false
	}
	pk := t.PrimaryKey()
	return len(pk.Columns) == 1 && pk.Columns[0] == id.Name
}

// Clone returns a deep copy.
func (t *TableDef) Clone() *TableDef {
	cp := *t
	cp.Columns = make([]*ColumnDef, len(t.Columns))
	for i, c := range t.Columns {
		cp.Columns[i] = c.Clone()
	}
	cp.Indexes = make([]*IndexDef, len(t.Indexes))
	for i, idx := range t.Indexes {
		cp.Indexes[i] = idx.Clone()
	}
	return &cp
}

// Normalized returns a copy with every column and index normalized.
func (t *TableDef) Normalized() *TableDef {
	n := t.Clone()
	for i, c := range n.Columns {
		n.Columns[i] = c.Normalized()
	}
	for i, idx := range n.Indexes {
		n.Indexes[i] = idx.Normalized(n.Name)
	}
	return n
}

// Validate checks the whole descriptor before any statement is issued.
func (t *TableDef) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return alerr.New(alerr.ErrInvalidIdentifier, "table name is required")
	}
	if len(t.Columns) == 0 {
		return alerr.New(alerr.ErrEmptyTable, "table must have at least one column").WithTable(t.Name)
	}

	seen := make(map[string]bool, len(t.Columns))
	identities := 0
	for _, c := range t.Columns {
		if err := c.Validate(); err != nil {
			if e, ok := err.(*alerr.Error); ok {
				return e.WithTable(t.Name)
			}
			return err
		}
		if seen[c.Name] {
			return alerr.Newf(alerr.ErrDuplicateName, "column %q defined twice", c.Name).WithTable(t.Name)
		}
		seen[c.Name] = true
		if c.Type.IsIdentity() {
			identities++
		}
	}
	if identities > 1 {
		return alerr.New(alerr.ErrInvalidSpec, "a table can have only one identity column").WithTable(t.Name)
	}

	names := make(map[string]bool, len(t.Indexes))
	primaries := 0
	for _, raw := range t.Indexes {
		idx := raw.Normalized(t.Name)
		if err := idx.Validate(); err != nil {
			if e, ok := err.(*alerr.Error); ok {
				return e.WithTable(t.Name)
			}
			return err
		}
		for _, col := range idx.Columns {
			if !seen[col] {
				return alerr.Newf(alerr.ErrUnknownColumn, "index %q references unknown column %q", idx.Name, col).
					WithTable(t.Name).
					WithHelp(alerr.SuggestSimilar(col, t.ColumnNames()))
			}
		}
		if names[idx.Name] {
			return alerr.Newf(alerr.ErrDuplicateName, "index %q defined twice", idx.Name).WithTable(t.Name)
		}
		names[idx.Name] = true
		if idx.Primary {
			primaries++
		}
	}
	if primaries > 1 {
		return alerr.New(alerr.ErrInvalidSpec, "a table can have only one primary key").WithTable(t.Name)
	}
	if identities == 1 && primaries == 1 && !t.InlinePrimaryKey() {
		return alerr.New(alerr.ErrInvalidSpec, "identity column must be the primary key").WithTable(t.Name)
	}
	return nil
}
