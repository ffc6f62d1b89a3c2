package main

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"

	"github.com/harvestkit/lcscharvest/internal/catalog"
	"github.com/harvestkit/lcscharvest/internal/config"
	"github.com/harvestkit/lcscharvest/internal/log"
)

// NewCategoriesCmd creates the categories command.
func NewCategoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List discoverable catalog categories",
		Long: `Categories fetches the catalog index page and lists the product
categories found there, with their numeric catalog ids.

Use the ids with 'harvest --id-start/--id-end' to restrict a harvest.`,
		Args: cobra.NoArgs,
		RunE: runCategoriesCmd,
	}

	cmd.Flags().Int("id-start", 0, "Lowest catalog id to list (0 = unbounded)")
	cmd.Flags().Int("id-end", 0, "Highest catalog id to list (0 = unbounded)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for the index fetch")

	return cmd
}

// runCategoriesCmd executes the categories command.
func runCategoriesCmd(cmd *cobra.Command, _ []string) error {
	idStart, err := cmd.Flags().GetInt("id-start")
	if err != nil {
		return err
	}
	idEnd, err := cmd.Flags().GetInt("id-end")
	if err != nil {
		return err
	}
	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return err
	}

	logger := log.NewLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	cfg := config.NewConfig()
	client := catalog.NewClient(timeout, cfg.UserAgent)
	discoverer := catalog.NewDiscoverer(client, cfg.CategoryIndexURL, cfg.SiteBaseURL,
		catalog.WithIDRange(idStart, idEnd),
		catalog.WithDiscovererLogger(logger))

	categories, err := discoverer.Discover(cmd.Context())
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(categories))
	for _, cat := range categories {
		rows = append(rows, []string{strconv.Itoa(cat.ID), cat.Name, cat.URL})
	}

	md := markdown.NewMarkdown(cmd.OutOrStdout())
	md.Table(markdown.TableSet{
		Header: []string{"ID", "Category", "URL"},
		Rows:   rows,
	})
	return md.Build()
}
