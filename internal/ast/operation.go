package ast

import (
	"github.com/hlop3z/ddlkit/internal/alerr"
)

// Operation is a single schema change. Apply plans are decoded into
// Operations and dispatched to the schema engine one at a time.
type Operation interface {
	// Type returns the operation type (OpCreateTable, OpAddColumn, etc.)
	Type() OpType

	// Table returns the name of the table the operation targets.
	Table() string

	// Validate checks that the operation is well-formed.
	// Nothing is sent to the database when it fails.
	Validate() error
}

// OpType identifies an operation.
type OpType int

const (
	OpCreateTable OpType = iota
	OpDropTable
	OpRenameTable
	OpTruncateTable
	OpAddColumn
	OpDropColumn
	OpRenameColumn
	OpCreateIndex
	OpDropIndex
)

var opNames = [...]string{
	OpCreateTable:   "CreateTable",
	OpDropTable:     "DropTable",
	OpRenameTable:   "RenameTable",
	OpTruncateTable: "TruncateTable",
	OpAddColumn:     "AddColumn",
	OpDropColumn:    "DropColumn",
	OpRenameColumn:  "RenameColumn",
	OpCreateIndex:   "CreateIndex",
	OpDropIndex:     "DropIndex",
}

func (o OpType) String() string {
	if o < 0 || int(o) >= len(opNames) {
		return "Unknown"
	}
	return opNames[o]
}

// TableRef carries the target table of column and index operations.
type TableRef struct {
	TableName string `yaml:"table" json:"table"`
}

// Table returns the target table.
func (r TableRef) Table() string { return r.TableName }

func (r TableRef) validate(what string) error {
	if r.TableName == "" {
		return alerr.New(alerr.ErrInvalidIdentifier, "table name is required for "+what)
	}
	return nil
}

func requireNames(table, oldName, newName, what string) error {
	if oldName == "" || newName == "" {
		return alerr.New(alerr.ErrInvalidIdentifier, "old and new names are required for "+what).WithTable(table)
	}
	if oldName == newName {
		return alerr.New(alerr.ErrInvalidSpec, "old and new names must be different").WithTable(table)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Table operations
// -----------------------------------------------------------------------------

// CreateTable creates a table with its columns. A primary index is declared
// inside the statement; other indexes follow as separate statements.
type CreateTable struct {
	Def *TableDef
}

func (op *CreateTable) Type() OpType { return OpCreateTable }

func (op *CreateTable) Table() string {
	if op.Def == nil {
		return ""
	}
	return op.Def.Name
}

func (op *CreateTable) Validate() error {
	if op.Def == nil {
		return alerr.New(alerr.ErrInvalidSpec, "table definition is required")
	}
	return op.Def.Validate()
}

// DropTable drops a table and its sidecar rows.
type DropTable struct {
	Name string
}

func (op *DropTable) Type() OpType  { return OpDropTable }
func (op *DropTable) Table() string { return op.Name }

func (op *DropTable) Validate() error {
	if op.Name == "" {
		return alerr.New(alerr.ErrInvalidIdentifier, "table name is required for drop")
	}
	return nil
}

// RenameTable renames a table.
type RenameTable struct {
	OldName string
	NewName string
}

func (op *RenameTable) Type() OpType  { return OpRenameTable }
func (op *RenameTable) Table() string { return op.OldName }

func (op *RenameTable) Validate() error {
	return requireNames(op.OldName, op.OldName, op.NewName, "table rename")
}

// TruncateTable removes every row of a table.
type TruncateTable struct {
	Name string
}

func (op *TruncateTable) Type() OpType  { return OpTruncateTable }
func (op *TruncateTable) Table() string { return op.Name }

func (op *TruncateTable) Validate() error {
	if op.Name == "" {
		return alerr.New(alerr.ErrInvalidIdentifier, "table name is required for truncate")
	}
	return nil
}

// -----------------------------------------------------------------------------
// Column operations
// -----------------------------------------------------------------------------

// AddColumn appends a column to an existing table.
type AddColumn struct {
	TableRef
	Column *ColumnDef
}

func (op *AddColumn) Type() OpType { return OpAddColumn }

func (op *AddColumn) Validate() error {
	if err := op.validate("add column"); err != nil {
		return err
	}
	if op.Column == nil {
		return alerr.New(alerr.ErrInvalidSpec, "column definition is required").WithTable(op.TableName)
	}
	if err := op.Column.Validate(); err != nil {
		if e, ok := err.(*alerr.Error); ok {
			return e.WithTable(op.TableName)
		}
		return err
	}
	return nil
}

// DropColumn removes a column together with every index that references it.
type DropColumn struct {
	TableRef
	Name string
}

func (op *DropColumn) Type() OpType { return OpDropColumn }

func (op *DropColumn) Validate() error {
	if err := op.validate("drop column"); err != nil {
		return err
	}
	if op.Name == "" {
		return alerr.New(alerr.ErrInvalidIdentifier, "column name is required for drop").WithTable(op.TableName)
	}
	return nil
}

// RenameColumn renames a column. Indexes keep their names.
type RenameColumn struct {
	TableRef
	OldName string
	NewName string
}

func (op *RenameColumn) Type() OpType { return OpRenameColumn }

func (op *RenameColumn) Validate() error {
	if err := op.validate("rename column"); err != nil {
		return err
	}
	return requireNames(op.TableName, op.OldName, op.NewName, "column rename")
}

// -----------------------------------------------------------------------------
// Index operations
// -----------------------------------------------------------------------------

// CreateIndex adds an index, unique constraint or primary key.
type CreateIndex struct {
	TableRef
	Index *IndexDef
}

func (op *CreateIndex) Type() OpType { return OpCreateIndex }

func (op *CreateIndex) Validate() error {
	if err := op.validate("add index"); err != nil {
		return err
	}
	if op.Index == nil {
		return alerr.New(alerr.ErrIndexSpec, "index definition is required").WithTable(op.TableName)
	}
	if err := op.Index.Validate(); err != nil {
		if e, ok := err.(*alerr.Error); ok {
			return e.WithTable(op.TableName)
		}
		return err
	}
	return nil
}

// DropIndex drops an index located by name, by columns or as the primary key.
type DropIndex struct {
	TableRef
	Index *IndexDef
}

func (op *DropIndex) Type() OpType { return OpDropIndex }

func (op *DropIndex) Validate() error {
	if err := op.validate("drop index"); err != nil {
		return err
	}
	if op.Index == nil {
		return alerr.New(alerr.ErrIndexSpec, "index definition is required").WithTable(op.TableName)
	}
	if err := op.Index.ValidateForDrop(); err != nil {
		if e, ok := err.(*alerr.Error); ok {
			return e.WithTable(op.TableName)
		}
		return err
	}
	return nil
}
