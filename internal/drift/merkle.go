// Package drift fingerprints introspected schemas with merkle trees so two
// databases, possibly on different dialects, can be checked for identical
// canonical schemas and their differences located table by table.
package drift

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cbergoon/merkletree"

	"github.com/hlop3z/ddlkit/internal/alerr"
	"github.com/hlop3z/ddlkit/internal/ast"
)

// SchemaHash represents the merkle root hash of a schema.
type SchemaHash struct {
	Root   string                // Root hash of entire schema
	Tables map[string]*TableHash // Individual table hashes for drill-down
}

// TableHash represents the merkle hash of a single table.
type TableHash struct {
	Name    string
	Hash    string            // Hash of entire table structure
	Columns map[string]string // Column name -> hash
	Indexes map[string]string // Index name -> hash
}

// tableContent implements merkletree.Content for table-level hashing.
type tableContent struct {
	name string
	hash string
}

func (t tableContent) CalculateHash() ([]byte, error) {
	h := sha256.Sum256([]byte(t.name + ":" + t.hash))
	return h[:], nil
}

func (t tableContent) Equals(other merkletree.Content) (bool, error) {
	o, ok := other.(tableContent)
	if !ok {
		return false, nil
	}
	return t.name == o.name && t.hash == o.hash, nil
}

// ComputeSchemaHash computes the merkle tree hash of fully introspected
// table descriptors keyed by name.
func ComputeSchemaHash(tables map[string]*ast.TableDef) (*SchemaHash, error) {
	result := &SchemaHash{Tables: make(map[string]*TableHash)}
	if len(tables) == 0 {
		result.Root = emptyHash()
		return result, nil
	}

	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	contents := make([]merkletree.Content, 0, len(names))
	for _, name := range names {
		th := computeTableHash(tables[name])
		result.Tables[name] = th
		contents = append(contents, tableContent{name: name, hash: th.Hash})
	}

	tree, err := merkletree.NewTree(contents)
	if err != nil {
		return nil, alerr.Wrap(alerr.EInternalError, err, "failed to build merkle tree")
	}
	result.Root = hex.EncodeToString(tree.MerkleRoot())
	return result, nil
}

// computeTableHash hashes columns in definition order, since column order is
// part of the schema, and indexes in name order.
func computeTableHash(table *ast.TableDef) *TableHash {
	result := &TableHash{
		Name:    table.Name,
		Columns: make(map[string]string),
		Indexes: make(map[string]string),
	}

	columnHashes := make([]string, 0, len(table.Columns))
	for _, col := range table.Columns {
		h := computeColumnHash(col)
		result.Columns[col.Name] = h
		columnHashes = append(columnHashes, col.Name+":"+h)
	}

	indexes := make([]*ast.IndexDef, len(table.Indexes))
	copy(indexes, table.Indexes)
	sort.Slice(indexes, func(i, j int) bool { return indexes[i].Name < indexes[j].Name })

	indexHashes := make([]string, 0, len(indexes))
	for _, idx := range indexes {
		h := computeIndexHash(idx)
		result.Indexes[idx.Name] = h
		indexHashes = append(indexHashes, idx.Name+":"+h)
	}

	result.Hash = hashString(fmt.Sprintf("table:%s|comment:%s|columns:[%s]|indexes:[%s]",
		table.Name,
		table.Comment,
		strings.Join(columnHashes, ","),
		strings.Join(indexHashes, ","),
	))
	return result
}

// computeColumnHash hashes the dialect-neutral part of a column. Collations
// are engine-specific names and are left out.
func computeColumnHash(col *ast.ColumnDef) string {
	data := fmt.Sprintf("name:%s|type:%s|nullable:%v|comment:%s",
		col.Name,
		col.Signature(),
		col.Nullable,
		col.Comment,
	)
	if col.HasDefault() {
		data += "|default:" + normalizeDefault(col)
	}
	return hashString(data)
}

func computeIndexHash(idx *ast.IndexDef) string {
	return hashString(fmt.Sprintf("name:%s|columns:[%s]|unique:%v|primary:%v",
		idx.Name,
		strings.Join(idx.Columns, ","),
		idx.Unique,
		idx.Primary,
	))
}

// normalizeDefault renders a default so that the spellings engines read back
// for the same value hash alike: 1, true and TRUE for booleans, 0 and 0.00
// for numbers.
func normalizeDefault(col *ast.ColumnDef) string {
	s := fmt.Sprintf("%v", col.Default)
	switch {
	case col.Type == ast.TypeBoolean:
		switch strings.ToLower(s) {
		case "1", "true", "t", "b'1'":
			return "true"
		case "0", "false", "f", "b'0'":
			return "false"
		}
	case col.Type.IsNumeric():
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
	}
	return s
}

// hashString computes SHA256 hash of a string and returns hex encoding.
func hashString(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// emptyHash returns a consistent hash for empty schemas.
func emptyHash() string {
	return hashString("empty_schema")
}

// CompareHashes compares two schema hashes and returns differences.
func CompareHashes(expected, actual *SchemaHash) *HashComparison {
	result := &HashComparison{
		Match:         expected.Root == actual.Root,
		ExpectedRoot:  expected.Root,
		ActualRoot:    actual.Root,
		TableDiffs:    make(map[string]*TableDiff),
		MissingTables: []string{},
		ExtraTables:   []string{},
	}

	if result.Match {
		return result
	}

	for name := range expected.Tables {
		if _, exists := actual.Tables[name]; !exists {
			result.MissingTables = append(result.MissingTables, name)
		}
	}
	sort.Strings(result.MissingTables)

	for name := range actual.Tables {
		if _, exists := expected.Tables[name]; !exists {
			result.ExtraTables = append(result.ExtraTables, name)
		}
	}
	sort.Strings(result.ExtraTables)

	for name, expectedTable := range expected.Tables {
		actualTable, exists := actual.Tables[name]
		if !exists {
			continue
		}
		if expectedTable.Hash != actualTable.Hash {
			result.TableDiffs[name] = compareTableHashes(expectedTable, actualTable)
		}
	}

	return result
}

// HashComparison represents the result of comparing two schema hashes.
type HashComparison struct {
	Match         bool                  // True if schemas are identical
	ExpectedRoot  string                // Expected schema root hash
	ActualRoot    string                // Actual schema root hash
	TableDiffs    map[string]*TableDiff // Tables with differences
	MissingTables []string              // Tables missing from actual
	ExtraTables   []string              // Extra tables in actual
}

// TableNames returns the names of modified tables in sorted order.
func (c *HashComparison) TableNames() []string {
	names := make([]string, 0, len(c.TableDiffs))
	for name := range c.TableDiffs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TableDiff represents differences within a table.
type TableDiff struct {
	Name            string
	MissingColumns  []string
	ExtraColumns    []string
	ModifiedColumns []string
	MissingIndexes  []string
	ExtraIndexes    []string
	ModifiedIndexes []string
}

// HasDifferences returns true if the table has any differences.
func (d *TableDiff) HasDifferences() bool {
	return len(d.MissingColumns) > 0 ||
		len(d.ExtraColumns) > 0 ||
		len(d.ModifiedColumns) > 0 ||
		len(d.MissingIndexes) > 0 ||
		len(d.ExtraIndexes) > 0 ||
		len(d.ModifiedIndexes) > 0
}

// compareTableHashes compares two table hashes and returns differences.
func compareTableHashes(expected, actual *TableHash) *TableDiff {
	diff := &TableDiff{Name: expected.Name}
	diff.MissingColumns, diff.ExtraColumns, diff.ModifiedColumns = compareMaps(expected.Columns, actual.Columns)
	diff.MissingIndexes, diff.ExtraIndexes, diff.ModifiedIndexes = compareMaps(expected.Indexes, actual.Indexes)
	return diff
}

func compareMaps(expected, actual map[string]string) (missing, extra, modified []string) {
	for name, hash := range expected {
		actualHash, exists := actual[name]
		if !exists {
			missing = append(missing, name)
		} else if hash != actualHash {
			modified = append(modified, name)
		}
	}
	for name := range actual {
		if _, exists := expected[name]; !exists {
			extra = append(extra, name)
		}
	}
	sort.Strings(missing)
	sort.Strings(extra)
	sort.Strings(modified)
	return missing, extra, modified
}
