// Package main provides the ddlkit CLI, which inspects and alters database
// schemas through the cross-dialect DDL engine.
//
// Usage:
//
//	ddlkit tables                   # List tables
//	ddlkit columns <table>          # List the columns of a table
//	ddlkit indexes <table>          # List the indexes of a table
//	ddlkit describe <table>         # Show a full table descriptor
//	ddlkit fingerprint              # Print the schema merkle root
//	ddlkit diff <other-url>         # Compare the schema with another database
//	ddlkit check <plan.yaml>        # Compare the schema with the one a plan declares
//	ddlkit zero <type>              # Show the backfill value of a column type
//	ddlkit apply <plan.yaml>        # Run a plan of operations in one transaction
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hlop3z/ddlkit/internal/cli"
)

// version is set via ldflags during build: -ldflags="-X main.version=v1.0.0"
var version = "dev"

// errDrift makes the process exit 1 after a drift report was printed.
var errDrift = errors.New("schemas differ")

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	databaseURL string
	configFile  string
	dialect     string
	driver      string
	strict      bool
	json        bool
	verbose     bool

	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:           "ddlkit",
		Short:         "Cross-dialect schema inspection and DDL",
		Long:          `ddlkit creates, alters and reads back tables identically on MySQL, PostgreSQL, SQLite and SQL Server.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cli.SetDefault(cli.NewConfig(cmd.OutOrStdout(), g.json))
			g.logger = newLogger(cmd.ErrOrStderr(), g.verbose)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&g.databaseURL, "database-url", "d", "", "Database connection URL")
	pf.StringVarP(&g.configFile, "config", "c", "ddlkit.yaml", "Path to config file")
	pf.StringVar(&g.dialect, "dialect", "", "Dialect (mysql, postgres, sqlite, sqlserver); detected from the URL if empty")
	pf.StringVar(&g.driver, "driver", "", "database/sql driver override (pgx for postgres)")
	pf.BoolVar(&g.strict, "strict-rebuild", false, "Refuse table rebuilds on dialects without transactional DDL")
	pf.BoolVar(&g.json, "json", false, "Output JSON")
	pf.BoolVar(&g.verbose, "verbose", false, "Log every statement to stderr")

	root.AddCommand(
		tablesCmd(g),
		columnsCmd(g),
		indexesCmd(g),
		describeCmd(g),
		fingerprintCmd(g),
		diffCmd(g),
		checkCmd(g),
		zeroCmd(g),
		applyCmd(g),
	)
	return root
}

// newLogger installs a text handler: statements at Debug with --verbose,
// rebuild warnings otherwise.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errDrift) {
			fmt.Fprint(os.Stderr, formatError(err))
		}
		os.Exit(1)
	}
}
