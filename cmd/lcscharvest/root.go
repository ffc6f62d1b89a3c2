package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for lcscharvest.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lcscharvest",
		Short: "Harvest product records from the LCSC parts catalog",
		Long: `lcscharvest collects electronic component records from the LCSC catalog.

It discovers product categories, fetches their pages one at a time with a
politeness delay, validates and deduplicates the extracted records, and
exports the results as CSV tables, a Markdown report, or JSON.

Two extraction strategies are available: the structured JSON endpoint
(default) and a text-pattern fallback over rendered category pages.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewHarvestCmd())
	cmd.AddCommand(NewCategoriesCmd())
	cmd.AddCommand(NewRunsCmd())
	cmd.AddCommand(NewLookupCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
