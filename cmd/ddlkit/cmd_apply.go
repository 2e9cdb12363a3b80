package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hlop3z/ddlkit/internal/ast"
	"github.com/hlop3z/ddlkit/internal/cli"
	"github.com/hlop3z/ddlkit/pkg/ddlkit"
)

// applyCmd runs a YAML plan inside one transaction.
func applyCmd(g *globalFlags) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "apply <plan.yaml>",
		Short: "Run a plan of schema operations in one transaction",
		Long: `Run a plan of schema operations in one transaction.

The first failing operation rolls the whole plan back. On MySQL every DDL
statement commits implicitly, so operations that ran before the failure stay
applied; use --strict-rebuild to refuse table rebuilds there.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := ddlkit.LoadPlan(args[0])
			if err != nil {
				return err
			}
			ops, err := plan.Ops()
			if err != nil {
				return err
			}
			labels := make([]string, len(ops))
			for i, op := range ops {
				labels[i] = ddlkit.Describe(op)
			}

			out := cmd.OutOrStdout()
			if dryRun {
				if g.json {
					return writeJSON(out, labels)
				}
				for i, label := range labels {
					fmt.Fprintf(out, "%d. %s\n", i+1, label)
				}
				return nil
			}

			return runWithClient(g, func(c *ddlkit.Client) error {
				progress := cli.NewTaskProgress(labels)
				progress.SetWriter(cmd.ErrOrStderr())
				hooks := &ddlkit.ApplyHooks{
					Before: func(i int, _ ddlkit.Operation) { progress.Start(i) },
					After: func(_ int, _ ddlkit.Operation, err error) {
						if err != nil {
							progress.Failed()
							return
						}
						progress.Complete()
					},
				}

				err := c.Apply(cmd.Context(), plan, hooks)
				if len(ops) > 0 {
					progress.Summary()
				}
				if err != nil {
					return err
				}
				if g.json {
					return writeJSON(out, map[string]any{"applied": len(ops), "operations": labels})
				}
				fmt.Fprint(out, cli.FormatSuccess(fmt.Sprintf("applied %s on %s", cli.FormatCount(len(ops), "operation", "operations"), c.Dialect())))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List the operations without connecting")
	return cmd
}

// zeroCmd prints the value existing rows receive when a NOT NULL column of
// the given type is added without a default.
func zeroCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "zero <type>",
		Short: "Show the backfill value of a column type",
		Long:  "Show the backfill value of a column type.\n\nTypes: " + strings.Join(ast.TypeNames(), ", "),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := ast.ParseType(args[0])
			if err != nil {
				return err
			}
			v, err := ast.Zero(t)
			if err != nil {
				return err
			}
			if g.json {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"type": t, "zero": v})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%v\n", v)
			return nil
		},
	}
}
