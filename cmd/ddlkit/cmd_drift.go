package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/hlop3z/ddlkit/internal/cli"
	"github.com/hlop3z/ddlkit/internal/devdb"
	"github.com/hlop3z/ddlkit/internal/drift"
	"github.com/hlop3z/ddlkit/pkg/ddlkit"
)

// fingerprintCmd prints the merkle root of the schema, plus one hash per
// table. Equal roots mean equal canonical schemas, whatever the dialects.
func fingerprintCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the schema fingerprint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithClient(g, func(c *ddlkit.Client) error {
				hash, err := drift.Fingerprint(cmd.Context(), c.Schema().Engine())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if g.json {
					tables := make(map[string]string, len(hash.Tables))
					for name, th := range hash.Tables {
						tables[name] = th.Hash
					}
					return writeJSON(out, map[string]any{
						"dialect": c.Dialect(),
						"root":    hash.Root,
						"tables":  tables,
					})
				}

				fmt.Fprintln(out, cli.KeyValue("root", hash.Root))
				if len(hash.Tables) == 0 {
					return nil
				}
				t := cli.NewTable("TABLE", "HASH")
				for _, name := range sortedKeys(hash.Tables) {
					t.AddRow(name, hash.Tables[name].Hash[:12])
				}
				fmt.Fprintln(out)
				fmt.Fprint(out, t.String())
				return nil
			})
		},
	}
}

// diffCmd compares the configured database with another one. It exits 1
// when the schemas differ.
func diffCmd(g *globalFlags) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "diff <other-database-url>",
		Short: "Compare the schema with another database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithClient(g, func(c *ddlkit.Client) error {
				other, err := newClientFor(g, args[0])
				if err != nil {
					return err
				}
				defer other.Close()

				result, err := drift.Detect(cmd.Context(), c.Schema().Engine(), other.Schema().Engine())
				if err != nil {
					return err
				}

				return writeDrift(cmd, g, result, quiet, c.Dialect(), other.Dialect())
			})
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Print a one-line status")
	return cmd
}

// checkCmd compares the database with the schema a plan builds from
// scratch. The plan runs on an in-memory SQLite database first, so the
// comparison sees both sides in canonical form.
func checkCmd(g *globalFlags) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "check <plan.yaml>",
		Short: "Compare the schema with the one a plan declares",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := ddlkit.LoadPlan(args[0])
			if err != nil {
				return err
			}
			ops, err := plan.Ops()
			if err != nil {
				return err
			}
			dev, err := devdb.Normalize(cmd.Context(), ops, g.logger)
			if err != nil {
				return err
			}
			defer dev.Close()

			return runWithClient(g, func(c *ddlkit.Client) error {
				result, err := drift.Detect(cmd.Context(), dev.Schema(), c.Schema().Engine())
				if err != nil {
					return err
				}
				return writeDrift(cmd, g, result, quiet, "plan", c.Dialect())
			})
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Print a one-line status")
	return cmd
}

// writeDrift prints result in the selected output mode and returns errDrift
// when the schemas differ.
func writeDrift(cmd *cobra.Command, g *globalFlags, result *drift.Result, quiet bool, from, to string) error {
	out := cmd.OutOrStdout()
	switch {
	case g.json:
		if err := writeJSON(out, map[string]any{
			"match":          !result.HasDrift,
			"expected_hash":  result.ExpectedHash,
			"actual_hash":    result.ActualHash,
			"missing_tables": result.Comparison.MissingTables,
			"extra_tables":   result.Comparison.ExtraTables,
			"modified":       result.Comparison.TableDiffs,
		}); err != nil {
			return err
		}
	case quiet:
		fmt.Fprintln(out, drift.FormatQuickStatus(result.HasDrift, result.ExpectedHash, result.ActualHash))
	default:
		badge := cli.RenderOKBadge()
		if result.HasDrift {
			badge = cli.RenderDriftBadge()
		}
		fmt.Fprintf(out, "%s %s -> %s\n\n", badge, from, to)
		fmt.Fprint(out, drift.FormatResult(result))
		if result.HasDrift {
			fmt.Fprintln(out)
			fmt.Fprintln(out, drift.FormatSummary(drift.Summarize(result)))
		}
	}

	if result.HasDrift {
		return errDrift
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
