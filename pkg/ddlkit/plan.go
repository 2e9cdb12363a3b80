package ddlkit

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hlop3z/ddlkit/internal/ast"
)

// Plan is an ordered list of schema operations, written in YAML:
//
//	operations:
//	  - create_table:
//	      name: users
//	      columns:
//	        - {name: id, type: identity}
//	        - {name: email, type: string(255)}
//	      indexes:
//	        - {columns: [email], unique: true}
//	  - add_column:
//	      table: users
//	      column: {name: bio, type: text, nullable: true}
//	  - rename_column: {table: users, from: bio, to: about}
//	  - drop_index: {table: users, index: {columns: [email]}}
//	  - drop_column: {table: users, column: about}
//	  - rename_table: {from: users, to: people}
//	  - truncate_table: {table: people}
//	  - drop_table: {table: people}
type Plan struct {
	Operations []Step `yaml:"operations"`
}

// Step holds exactly one operation.
type Step struct {
	CreateTable   *ast.TableDef `yaml:"create_table,omitempty"`
	DropTable     *tableArgs    `yaml:"drop_table,omitempty"`
	RenameTable   *renameArgs   `yaml:"rename_table,omitempty"`
	TruncateTable *tableArgs    `yaml:"truncate_table,omitempty"`
	AddColumn     *columnArgs   `yaml:"add_column,omitempty"`
	DropColumn    *tableArgs    `yaml:"drop_column,omitempty"`
	RenameColumn  *renameArgs   `yaml:"rename_column,omitempty"`
	AddIndex      *indexArgs    `yaml:"add_index,omitempty"`
	DropIndex     *indexArgs    `yaml:"drop_index,omitempty"`
}

type tableArgs struct {
	Table  string `yaml:"table"`
	Column string `yaml:"column,omitempty"`
}

type renameArgs struct {
	Table string `yaml:"table,omitempty"`
	From  string `yaml:"from"`
	To    string `yaml:"to"`
}

type columnArgs struct {
	Table  string         `yaml:"table"`
	Column *ast.ColumnDef `yaml:"column"`
}

type indexArgs struct {
	Table string        `yaml:"table"`
	Index *ast.IndexDef `yaml:"index"`
}

// ParsePlan decodes a YAML plan. Unknown keys are rejected.
func ParsePlan(r io.Reader) (*Plan, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var p Plan
	if err := dec.Decode(&p); err != nil {
		if err == io.EOF {
			return &p, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}
	return &p, nil
}

// LoadPlan reads a YAML plan file.
func LoadPlan(path string) (*Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParsePlan(f)
}

// Ops converts every step, failing on the first malformed one.
func (p *Plan) Ops() ([]Operation, error) {
	ops := make([]Operation, 0, len(p.Operations))
	for i, step := range p.Operations {
		op, err := step.Operation()
		if err != nil {
			return nil, fmt.Errorf("%w: operation %d: %w", ErrInvalidPlan, i+1, err)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// Operation returns the single operation the step holds.
func (s Step) Operation() (Operation, error) {
	var ops []Operation
	add := func(set bool, build func() Operation) {
		if set {
			ops = append(ops, build())
		}
	}

	add(s.CreateTable != nil, func() Operation {
		def := s.CreateTable
		for _, col := range def.Columns {
			expandColumn(col)
		}
		return &ast.CreateTable{Def: def}
	})
	add(s.DropTable != nil, func() Operation { return &ast.DropTable{Name: s.DropTable.Table} })
	add(s.RenameTable != nil, func() Operation {
		return &ast.RenameTable{OldName: s.RenameTable.From, NewName: s.RenameTable.To}
	})
	add(s.TruncateTable != nil, func() Operation { return &ast.TruncateTable{Name: s.TruncateTable.Table} })
	add(s.AddColumn != nil, func() Operation {
		if s.AddColumn.Column != nil {
			expandColumn(s.AddColumn.Column)
		}
		return &ast.AddColumn{TableRef: ast.TableRef{TableName: s.AddColumn.Table}, Column: s.AddColumn.Column}
	})
	add(s.DropColumn != nil, func() Operation {
		return &ast.DropColumn{TableRef: ast.TableRef{TableName: s.DropColumn.Table}, Name: s.DropColumn.Column}
	})
	add(s.RenameColumn != nil, func() Operation {
		return &ast.RenameColumn{
			TableRef: ast.TableRef{TableName: s.RenameColumn.Table},
			OldName:  s.RenameColumn.From,
			NewName:  s.RenameColumn.To,
		}
	})
	add(s.AddIndex != nil, func() Operation {
		return &ast.CreateIndex{TableRef: ast.TableRef{TableName: s.AddIndex.Table}, Index: s.AddIndex.Index}
	})
	add(s.DropIndex != nil, func() Operation {
		return &ast.DropIndex{TableRef: ast.TableRef{TableName: s.DropIndex.Table}, Index: s.DropIndex.Index}
	})

	switch len(ops) {
	case 0:
		return nil, fmt.Errorf("step names no operation")
	case 1:
		return ops[0], nil
	default:
		return nil, fmt.Errorf("step names %d operations, want one", len(ops))
	}
}

// expandColumn accepts "string(255)" style signatures in the type field and
// the CURRENT_TIMESTAMP keyword as a default.
func expandColumn(col *ast.ColumnDef) {
	if strings.Contains(string(col.Type), "(") {
		if t, size, scale, err := ast.ParseSignature(string(col.Type)); err == nil {
			col.Type, col.Size, col.Scale = t, size, scale
		}
	}
	if s, ok := col.Default.(string); ok && strings.EqualFold(s, string(ast.CurrentTimestamp)) && col.Type.IsTemporal() {
		col.Default = ast.CurrentTimestamp
	}
}

// Describe renders an operation as a short label such as
// "add_column users.bio".
func Describe(op Operation) string {
	switch o := op.(type) {
	case *ast.CreateTable:
		return "create_table " + o.Table()
	case *ast.DropTable:
		return "drop_table " + o.Name
	case *ast.RenameTable:
		return "rename_table " + o.OldName + " -> " + o.NewName
	case *ast.TruncateTable:
		return "truncate_table " + o.Name
	case *ast.AddColumn:
		name := ""
		if o.Column != nil {
			name = o.Column.Name
		}
		return "add_column " + o.TableName + "." + name
	case *ast.DropColumn:
		return "drop_column " + o.TableName + "." + o.Name
	case *ast.RenameColumn:
		return "rename_column " + o.TableName + "." + o.OldName + " -> " + o.NewName
	case *ast.CreateIndex:
		return "add_index " + o.TableName + indexLabel(o.Index)
	case *ast.DropIndex:
		return "drop_index " + o.TableName + indexLabel(o.Index)
	}
	return fmt.Sprintf("%T", op)
}

func indexLabel(idx *ast.IndexDef) string {
	switch {
	case idx == nil:
		return ""
	case idx.Primary:
		return " (primary)"
	case idx.Name != "":
		return " " + idx.Name
	}
	return " (" + strings.Join(idx.Columns, ", ") + ")"
}

// ApplyHooks observes plan execution. Either field may be nil.
type ApplyHooks struct {
	Before func(i int, op Operation)
	After  func(i int, op Operation, err error)
}

// Apply runs every operation of the plan inside one transaction. The first
// failure stops the plan and rolls the transaction back.
func (c *Client) Apply(ctx context.Context, p *Plan, hooks *ApplyHooks) error {
	ops, err := p.Ops()
	if err != nil {
		return err
	}
	if hooks == nil {
		hooks = &ApplyHooks{}
	}
	return c.WithTx(ctx, func(s *Schema) error {
		for i, op := range ops {
			if hooks.Before != nil {
				hooks.Before(i, op)
			}
			err := s.Apply(ctx, op)
			if hooks.After != nil {
				hooks.After(i, op, err)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}
