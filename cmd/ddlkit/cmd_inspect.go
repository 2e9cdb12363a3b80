package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hlop3z/ddlkit/internal/cli"
	"github.com/hlop3z/ddlkit/pkg/ddlkit"
)

// runWithClient opens a client for the duration of fn.
func runWithClient(g *globalFlags, fn func(c *ddlkit.Client) error) error {
	c, err := newClient(g)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// tablesCmd lists the user tables.
func tablesCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithClient(g, func(c *ddlkit.Client) error {
				tables, err := c.Schema().Tables(cmd.Context())
				if err != nil {
					return err
				}
				names := make([]string, 0, len(tables))
				for name := range tables {
					names = append(names, name)
				}
				sort.Strings(names)

				out := cmd.OutOrStdout()
				if g.json {
					list := make([]*ddlkit.TableDef, 0, len(names))
					for _, name := range names {
						list = append(list, tables[name])
					}
					return writeJSON(out, list)
				}

				if len(names) == 0 {
					fmt.Fprintln(out, cli.Dim("no tables"))
					return nil
				}
				t := cli.NewTable("TABLE", "COMMENT", "COLLATION")
				for _, name := range names {
					t.AddRow(name, tables[name].Comment, tables[name].Collation)
				}
				fmt.Fprint(out, t.String())
				fmt.Fprintln(out, cli.Dim(cli.FormatCount(len(names), "table", "tables")))
				return nil
			})
		},
	}
}

// columnsCmd lists the columns of a table in definition order.
func columnsCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "columns <table>",
		Short: "List the columns of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithClient(g, func(c *ddlkit.Client) error {
				cols, err := c.Schema().Columns(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if g.json {
					return writeJSON(cmd.OutOrStdout(), cols)
				}
				fmt.Fprint(cmd.OutOrStdout(), columnTable(cols).String())
				return nil
			})
		},
	}
}

// indexesCmd lists the indexes of a table.
func indexesCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "indexes <table>",
		Short: "List the indexes of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithClient(g, func(c *ddlkit.Client) error {
				idx, err := c.Schema().Indexes(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if g.json {
					return writeJSON(cmd.OutOrStdout(), idx)
				}
				fmt.Fprint(cmd.OutOrStdout(), indexTable(idx).String())
				return nil
			})
		},
	}
}

// describeCmd prints the full descriptor of a table.
func describeCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <table>",
		Short: "Show a table with its columns and indexes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithClient(g, func(c *ddlkit.Client) error {
				def, err := c.Schema().Table(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if g.json {
					return writeJSON(out, def)
				}

				fmt.Fprintln(out, cli.RenderTitle(def.Name)+" "+cli.RenderInfoBadge(c.Dialect()))
				if def.Comment != "" {
					fmt.Fprintln(out, cli.KeyValue("comment", def.Comment))
				}
				if def.Collation != "" {
					fmt.Fprintln(out, cli.KeyValue("collation", def.Collation))
				}
				fmt.Fprintln(out)
				fmt.Fprintln(out, cli.Section("Columns", columnTable(def.Columns).String()))
				fmt.Fprint(out, cli.Section("Indexes", indexTable(def.Indexes).String()))
				return nil
			})
		},
	}
}

func columnTable(cols []*ddlkit.ColumnDef) *cli.Table {
	t := cli.NewTable("COLUMN", "TYPE", "NULL", "DEFAULT", "COMMENT")
	for _, col := range cols {
		null := "no"
		if col.Nullable {
			null = "yes"
		}
		def := ""
		if col.HasDefault() {
			def = fmt.Sprintf("%v", col.Default)
		}
		t.AddRow(col.Name, col.Signature(), null, def, col.Comment)
	}
	return t
}

func indexTable(idx []*ddlkit.IndexDef) *cli.Table {
	sorted := make([]*ddlkit.IndexDef, len(idx))
	copy(sorted, idx)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	t := cli.NewTable("INDEX", "COLUMNS", "KIND")
	for _, ix := range sorted {
		kind := "index"
		switch {
		case ix.Primary:
			kind = "primary"
		case ix.Unique:
			kind = "unique"
		}
		t.AddRow(ix.Name, strings.Join(ix.Columns, ", "), kind)
	}
	return t
}
