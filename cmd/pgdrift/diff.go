package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tordrt/pgdrift"
)

var (
	diffName   string
	diffDryRun bool
	diffJSON   bool
)

var diffCmd = &cobra.Command{
	Use:   "diff [source-url] [target-url]",
	Short: "Diff two databases and generate a migration",
	Long: `Diff introspects the source and target databases, compares their schemas,
and writes a migration directory (up.sql, down.sql, meta.json) that changes
the target schema to match the source.

URLs can be omitted when source_url and target_url are set in the config.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().StringVarP(&diffName, "name", "n", "migration", "Migration name")
	diffCmd.Flags().BoolVar(&diffDryRun, "dry-run", false, "Show the differences without writing migration files")
	diffCmd.Flags().BoolVar(&diffJSON, "json", false, "Print the diff report as JSON")
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	source, target, err := resolveURLs(args)
	if err != nil {
		return err
	}

	logger.Debug("introspecting databases", "source", source, "target", target)
	result, err := pgdrift.GenerateMigration(cmd.Context(), source, target, &pgdrift.Options{
		Name:      diffName,
		OutputDir: cfg.MigrationsDir,
		DryRun:    diffDryRun,
	})
	if err != nil {
		return err
	}

	if diffJSON {
		data, err := json.MarshalIndent(result.Report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	printReport(result.Report)
	if diffDryRun {
		return nil
	}

	logger.Info("migration written",
		"path", result.Path,
		"items", len(result.Report.Items),
		"dangerous", result.Report.HasDangerous())
	return nil
}
