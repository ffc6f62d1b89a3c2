package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"

	"github.com/harvestkit/lcscharvest/internal/config"
	"github.com/harvestkit/lcscharvest/internal/database"
)

// NewRunsCmd creates the runs command.
func NewRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List past harvest runs",
		Long: `Runs lists the harvest runs stored in the local database,
newest first.`,
		Args: cobra.NoArgs,
		RunE: runRunsCmd,
	}

	cmd.Flags().IntP("limit", "n", 10, "Maximum number of runs to list")

	return cmd
}

// runRunsCmd executes the runs command.
func runRunsCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	db, err := openExistingDB()
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.RecentRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no harvest runs recorded yet")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			strconv.FormatInt(run.ID, 10),
			run.StartedAt.Format("2006-01-02 15:04"),
			run.Source,
			run.Scope,
			strconv.Itoa(run.TotalRecords),
			strconv.Itoa(run.Skipped),
		})
	}

	md := markdown.NewMarkdown(cmd.OutOrStdout())
	md.Table(markdown.TableSet{
		Header: []string{"ID", "Started", "Source", "Scope", "Records", "Skipped"},
		Rows:   rows,
	})
	return md.Build()
}

// NewLookupCmd creates the lookup command.
func NewLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <lcsc-code>",
		Short: "Look up a harvested part by catalog code",
		Long: `Lookup prints the most recently harvested record for an LCSC
catalog code (e.g. C20917) from the local database.`,
		Args: cobra.ExactArgs(1),
		RunE: runLookupCmd,
	}
}

// runLookupCmd executes the lookup command.
func runLookupCmd(cmd *cobra.Command, args []string) error {
	db, err := openExistingDB()
	if err != nil {
		return err
	}
	defer db.Close()

	rec, err := db.FindByCode(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("no record found for %s", args[0])
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "MPN:          %s\n", rec.MPN)
	fmt.Fprintf(out, "Code:         %s\n", rec.LCSCCode)
	fmt.Fprintf(out, "Manufacturer: %s\n", rec.Manufacturer)
	fmt.Fprintf(out, "Description:  %s\n", rec.Description)
	if rec.Category != "" {
		fmt.Fprintf(out, "Category:     %s\n", rec.Category)
	}
	names := make([]string, 0, len(rec.Specs))
	for name := range rec.Specs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %s: %s\n", name, rec.Specs[name])
	}
	return nil
}

// openExistingDB opens the harvest database without creating it.
func openExistingDB() (*database.HarvestDB, error) {
	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false

	db, err := database.Open(config.XDGDataDir(), opts)
	if err != nil {
		return nil, fmt.Errorf("no harvest database yet (run 'lcscharvest harvest' first): %w", err)
	}
	return db, nil
}
