package ast

import (
	"slices"
	"strings"

	"github.com/hlop3z/ddlkit/internal/alerr"
)

// PrimaryIndexName is the name every dialect reports its primary key under.
const PrimaryIndexName = "primary"

// IndexDef describes an index. Column order is significant.
type IndexDef struct {
	Name    string   `yaml:"name,omitempty" json:"name,omitempty"`
	Columns []string `yaml:"columns" json:"columns"`
	Unique  bool     `yaml:"unique,omitempty" json:"unique,omitempty"`
	Primary bool     `yaml:"primary,omitempty" json:"primary,omitempty"`
}

// DefaultIndexName builds "<table>_<col1>_<col2>_<suffix>".
func DefaultIndexName(table string, columns []string, unique, primary bool) string {
	suffix := "index"
	switch {
	case primary:
		suffix = "primary"
	case unique:
		suffix = "unique"
	}
	parts := append([]string{table}, columns...)
	return strings.Join(append(parts, suffix), "_")
}

// Clone returns a deep copy.
func (idx *IndexDef) Clone() *IndexDef {
	cp := *idx
	cp.Columns = slices.Clone(idx.Columns)
	return &cp
}

// Normalized returns a copy with Unique implied by Primary and the default
// name filled in for table.
func (idx *IndexDef) Normalized(table string) *IndexDef {
	n := idx.Clone()
	if n.Primary {
		n.Unique = true
	}
	if n.Name == "" && len(n.Columns) > 0 {
		n.Name = DefaultIndexName(table, n.Columns, n.Unique, n.Primary)
	}
	return n
}

// References reports whether the index covers column.
func (idx *IndexDef) References(column string) bool {
	return slices.Contains(idx.Columns, column)
}

// WithColumnRenamed returns a copy with from replaced by to. The name is kept.
func (idx *IndexDef) WithColumnRenamed(from, to string) *IndexDef {
	n := idx.Clone()
	for i, c := range n.Columns {
		if c == from {
			n.Columns[i] = to
		}
	}
	return n
}

// Validate checks the index can be created.
func (idx *IndexDef) Validate() error {
	if len(idx.Columns) == 0 {
		return alerr.New(alerr.ErrIndexSpec, "index requires at least one column").
			With("index", idx.Name)
	}
	seen := make(map[string]bool, len(idx.Columns))
	for _, c := range idx.Columns {
		if strings.TrimSpace(c) == "" {
			return alerr.New(alerr.ErrIndexSpec, "index column name is empty").With("index", idx.Name)
		}
		if seen[c] {
			return alerr.Newf(alerr.ErrDuplicateName, "column %q repeated in index", c).With("index", idx.Name)
		}
		seen[c] = true
	}
	return nil
}

// ValidateForDrop checks the index can be located: it needs columns, a
// name or the primary flag.
func (idx *IndexDef) ValidateForDrop() error {
	if len(idx.Columns) == 0 && idx.Name == "" && !idx.Primary {
		return alerr.New(alerr.ErrIndexSpec, "index to drop needs columns, a name or the primary flag")
	}
	return nil
}
