package drift

import (
	"fmt"
	"strings"
)

// FormatResult formats a drift detection result for CLI output.
func FormatResult(result *Result) string {
	if result == nil {
		return "No drift detection result available."
	}
	if !result.HasDrift {
		return FormatNoDrift(result)
	}
	return FormatDrift(result)
}

// FormatNoDrift formats a successful (no drift) result.
func FormatNoDrift(result *Result) string {
	var b strings.Builder

	b.WriteString("Schemas match\n\n")
	fmt.Fprintf(&b, "  Tables:       %d\n", len(result.Expected))
	fmt.Fprintf(&b, "  Schema hash:  %s\n", truncateHash(result.ExpectedHash))

	return b.String()
}

// FormatDrift formats a drift detection result with differences.
func FormatDrift(result *Result) string {
	var b strings.Builder

	b.WriteString("Schemas differ\n\n")
	fmt.Fprintf(&b, "  Expected hash: %s\n", truncateHash(result.ExpectedHash))
	fmt.Fprintf(&b, "  Actual hash:   %s\n", truncateHash(result.ActualHash))
	b.WriteString("\n")

	comp := result.Comparison

	if len(comp.MissingTables) > 0 {
		b.WriteString("  Missing tables:\n")
		for _, name := range comp.MissingTables {
			fmt.Fprintf(&b, "    - %s\n", name)
		}
		b.WriteString("\n")
	}

	if len(comp.ExtraTables) > 0 {
		b.WriteString("  Extra tables:\n")
		for _, name := range comp.ExtraTables {
			fmt.Fprintf(&b, "    + %s\n", name)
		}
		b.WriteString("\n")
	}

	if len(comp.TableDiffs) > 0 {
		b.WriteString("  Modified tables:\n")
		for _, name := range comp.TableNames() {
			fmt.Fprintf(&b, "\n    %s:\n", name)
			diff := comp.TableDiffs[name]
			if !diff.HasDifferences() {
				fmt.Fprintf(&b, "      column order or table comment differs\n")
				continue
			}
			formatTableDiff(&b, diff, "      ")
		}
	}

	return b.String()
}

// formatTableDiff formats differences for a single table.
func formatTableDiff(b *strings.Builder, diff *TableDiff, indent string) {
	section := func(title, mark string, names []string) {
		if len(names) == 0 {
			return
		}
		fmt.Fprintf(b, "%s%s:\n", indent, title)
		for _, name := range names {
			fmt.Fprintf(b, "%s  %s %s\n", indent, mark, name)
		}
	}

	section("Columns missing", "-", diff.MissingColumns)
	section("Extra columns", "+", diff.ExtraColumns)
	section("Columns with different definitions", "~", diff.ModifiedColumns)
	section("Indexes missing", "-", diff.MissingIndexes)
	section("Extra indexes", "+", diff.ExtraIndexes)
	section("Indexes with different definitions", "~", diff.ModifiedIndexes)
}

// FormatSummary formats a drift summary for brief output.
func FormatSummary(summary *DriftSummary) string {
	if summary == nil {
		return "No summary available."
	}

	total := summary.MissingTables + summary.ExtraTables + summary.ModifiedTables
	if total == 0 {
		return fmt.Sprintf("No drift detected. %d tables in sync.", summary.Tables)
	}

	var parts []string
	if summary.MissingTables > 0 {
		parts = append(parts, fmt.Sprintf("%d missing", summary.MissingTables))
	}
	if summary.ExtraTables > 0 {
		parts = append(parts, fmt.Sprintf("%d extra", summary.ExtraTables))
	}
	if summary.ModifiedTables > 0 {
		parts = append(parts, fmt.Sprintf("%d modified", summary.ModifiedTables))
	}

	return fmt.Sprintf("Drift detected: %s", strings.Join(parts, ", "))
}

// FormatQuickStatus formats a one-line status for a comparison.
func FormatQuickStatus(hasDrift bool, expectedHash, actualHash string) string {
	if !hasDrift {
		return fmt.Sprintf("OK  %s", truncateHash(expectedHash))
	}
	return fmt.Sprintf("DRIFT  expected: %s  actual: %s",
		truncateHash(expectedHash), truncateHash(actualHash))
}

// truncateHash returns the first 12 characters of a hash for display.
func truncateHash(hash string) string {
	if len(hash) <= 12 {
		return hash
	}
	return hash[:12]
}
