package drift

import (
	"context"

	"github.com/hlop3z/ddlkit/internal/alerr"
	"github.com/hlop3z/ddlkit/internal/ast"
	"github.com/hlop3z/ddlkit/internal/engine"
)

// Result represents the complete drift detection result.
type Result struct {
	// HasDrift is true if any differences were found
	HasDrift bool

	// ExpectedHash is the merkle root of the reference database
	ExpectedHash string

	// ActualHash is the merkle root of the compared database
	ActualHash string

	// Comparison contains detailed comparison results
	Comparison *HashComparison

	// Expected and Actual are the introspected descriptors keyed by table name.
	Expected map[string]*ast.TableDef
	Actual   map[string]*ast.TableDef
}

// Snapshot introspects every table of s with its columns and indexes.
func Snapshot(ctx context.Context, s *engine.Schema) (map[string]*ast.TableDef, error) {
	tables, err := s.Tables(ctx)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrIntrospection, err, "failed to list tables")
	}
	out := make(map[string]*ast.TableDef, len(tables))
	for name := range tables {
		def, err := s.Table(ctx, name)
		if err != nil {
			return nil, alerr.Wrap(alerr.ErrIntrospection, err, "failed to introspect table").WithTable(name)
		}
		out[name] = def
	}
	return out, nil
}

// Fingerprint returns the merkle hash of the schema behind s.
func Fingerprint(ctx context.Context, s *engine.Schema) (*SchemaHash, error) {
	tables, err := Snapshot(ctx, s)
	if err != nil {
		return nil, err
	}
	return ComputeSchemaHash(tables)
}

// Detect compares the schema behind actual against the one behind expected.
// The two may use different dialects.
func Detect(ctx context.Context, expected, actual *engine.Schema) (*Result, error) {
	exp, err := Snapshot(ctx, expected)
	if err != nil {
		return nil, err
	}
	act, err := Snapshot(ctx, actual)
	if err != nil {
		return nil, err
	}
	return Compare(exp, act)
}

// Compare diffs two sets of table descriptors.
func Compare(expected, actual map[string]*ast.TableDef) (*Result, error) {
	expectedHash, err := ComputeSchemaHash(expected)
	if err != nil {
		return nil, err
	}
	actualHash, err := ComputeSchemaHash(actual)
	if err != nil {
		return nil, err
	}

	comparison := CompareHashes(expectedHash, actualHash)
	return &Result{
		HasDrift:     !comparison.Match,
		ExpectedHash: expectedHash.Root,
		ActualHash:   actualHash.Root,
		Comparison:   comparison,
		Expected:     expected,
		Actual:       actual,
	}, nil
}

// DriftSummary provides a human-readable summary of drift detection results.
type DriftSummary struct {
	Tables         int // tables in the expected schema
	MissingTables  int
	ExtraTables    int
	ModifiedTables int

	// Details contains per-table drift information
	Details []TableDriftSummary
}

// TableDriftSummary summarizes drift for a single table.
type TableDriftSummary struct {
	Name    string
	Status  string // "missing", "extra", "modified"
	Columns DriftCounts
	Indexes DriftCounts
}

// DriftCounts tracks missing/extra/modified counts.
type DriftCounts struct {
	Missing  int
	Extra    int
	Modified int
}

// Summarize creates a human-readable summary from drift detection result.
func Summarize(result *Result) *DriftSummary {
	if result == nil || result.Comparison == nil {
		return &DriftSummary{}
	}

	summary := &DriftSummary{
		Tables:         len(result.Expected),
		MissingTables:  len(result.Comparison.MissingTables),
		ExtraTables:    len(result.Comparison.ExtraTables),
		ModifiedTables: len(result.Comparison.TableDiffs),
		Details:        []TableDriftSummary{},
	}

	for _, name := range result.Comparison.MissingTables {
		summary.Details = append(summary.Details, TableDriftSummary{Name: name, Status: "missing"})
	}
	for _, name := range result.Comparison.ExtraTables {
		summary.Details = append(summary.Details, TableDriftSummary{Name: name, Status: "extra"})
	}
	for _, name := range result.Comparison.TableNames() {
		diff := result.Comparison.TableDiffs[name]
		summary.Details = append(summary.Details, TableDriftSummary{
			Name:   name,
			Status: "modified",
			Columns: DriftCounts{
				Missing:  len(diff.MissingColumns),
				Extra:    len(diff.ExtraColumns),
				Modified: len(diff.ModifiedColumns),
			},
			Indexes: DriftCounts{
				Missing:  len(diff.MissingIndexes),
				Extra:    len(diff.ExtraIndexes),
				Modified: len(diff.ModifiedIndexes),
			},
		})
	}

	return summary
}
