package ddlkit

import (
	"context"

	"github.com/hlop3z/ddlkit/internal/ast"
	"github.com/hlop3z/ddlkit/internal/engine"
)

// Descriptor types shared with the engine.
type (
	TableDef  = ast.TableDef
	ColumnDef = ast.ColumnDef
	IndexDef  = ast.IndexDef
	Type      = ast.Type
	Operation = ast.Operation
)

// Canonical column types.
const (
	TypeIdentity    = ast.TypeIdentity
	TypeBigIdentity = ast.TypeBigIdentity
	TypeSmallInt    = ast.TypeSmallInt
	TypeInteger     = ast.TypeInteger
	TypeUnsignedInt = ast.TypeUnsignedInt
	TypeBigInt      = ast.TypeBigInt
	TypeNumeric     = ast.TypeNumeric
	TypeFloat       = ast.TypeFloat
	TypeString      = ast.TypeString
	TypeText        = ast.TypeText
	TypeGUID        = ast.TypeGUID
	TypeBinary      = ast.TypeBinary
	TypeBlob        = ast.TypeBlob
	TypeBoolean     = ast.TypeBoolean
	TypeDate        = ast.TypeDate
	TypeTime        = ast.TypeTime
	TypeDatetime    = ast.TypeDatetime
	TypeTimestamp   = ast.TypeTimestamp
	TypeArray       = ast.TypeArray
	TypeJSON        = ast.TypeJSON
	TypeObject      = ast.TypeObject
)

// CurrentTimestamp is the default that evaluates to the current date/time.
const CurrentTimestamp = ast.CurrentTimestamp

// Schema creates, alters and reads back tables. Every error it returns maps
// onto the sentinels in errors.go.
type Schema struct {
	s *engine.Schema
}

// Tables returns every user table keyed by name, with comment and collation.
func (s *Schema) Tables(ctx context.Context) (map[string]*TableDef, error) {
	tables, err := s.s.Tables(ctx)
	return tables, translate(err)
}

// Columns returns the columns of table in definition order.
func (s *Schema) Columns(ctx context.Context, table string) ([]*ColumnDef, error) {
	cols, err := s.s.Columns(ctx, table)
	return cols, translate(err)
}

// Indexes returns the indexes of table, the primary key included.
func (s *Schema) Indexes(ctx context.Context, table string) ([]*IndexDef, error) {
	idx, err := s.s.Indexes(ctx, table)
	return idx, translate(err)
}

// Table returns the full descriptor of table.
func (s *Schema) Table(ctx context.Context, table string) (*TableDef, error) {
	def, err := s.s.Table(ctx, table)
	return def, translate(err)
}

// HasTable reports whether table exists.
func (s *Schema) HasTable(ctx context.Context, table string) (bool, error) {
	ok, err := s.s.HasTable(ctx, table)
	return ok, translate(err)
}

// HasColumn reports whether table has column.
func (s *Schema) HasColumn(ctx context.Context, table, column string) (bool, error) {
	ok, err := s.s.HasColumn(ctx, table, column)
	return ok, translate(err)
}

// Zero returns the zero value rows are filled with for t.
func (s *Schema) Zero(t Type) (any, error) {
	v, err := s.s.Zero(t)
	return v, translate(err)
}

// CreateTable creates def with its indexes and comments.
func (s *Schema) CreateTable(ctx context.Context, def *TableDef) error {
	return translate(s.s.CreateTable(ctx, def))
}

// DropTable drops table.
func (s *Schema) DropTable(ctx context.Context, table string) error {
	return translate(s.s.DropTable(ctx, table))
}

// RenameTable renames a table.
func (s *Schema) RenameTable(ctx context.Context, from, to string) error {
	return translate(s.s.RenameTable(ctx, from, to))
}

// TruncateTable removes every row of table.
func (s *Schema) TruncateTable(ctx context.Context, table string) error {
	return translate(s.s.TruncateTable(ctx, table))
}

// AddColumn appends col to table. Existing rows get the column default, or
// the zero value of its type when it is NOT NULL without one.
func (s *Schema) AddColumn(ctx context.Context, table string, col *ColumnDef) error {
	return translate(s.s.AddColumn(ctx, table, col))
}

// DropColumn removes a column and the indexes that reference it.
func (s *Schema) DropColumn(ctx context.Context, table, column string) error {
	return translate(s.s.DropColumn(ctx, table, column))
}

// RenameColumn renames a column, keeping its data and indexes.
func (s *Schema) RenameColumn(ctx context.Context, table, from, to string) error {
	return translate(s.s.RenameColumn(ctx, table, from, to))
}

// AddIndex creates an index, unique index or primary key.
func (s *Schema) AddIndex(ctx context.Context, table string, idx *IndexDef) error {
	return translate(s.s.AddIndex(ctx, table, idx))
}

// DropIndex drops the index matching idx by primary flag, name or columns.
func (s *Schema) DropIndex(ctx context.Context, table string, idx *IndexDef) error {
	return translate(s.s.DropIndex(ctx, table, idx))
}

// Apply runs one operation.
func (s *Schema) Apply(ctx context.Context, op Operation) error {
	return translate(s.s.Apply(ctx, op))
}

// Dialect returns the dialect name.
func (s *Schema) Dialect() string {
	return s.s.Dialect().Name()
}

// Engine exposes the engine schema for packages inside this module.
func (s *Schema) Engine() *engine.Schema {
	return s.s
}
