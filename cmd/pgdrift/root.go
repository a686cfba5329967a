package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/tordrt/pgdrift/internal/config"
	"github.com/tordrt/pgdrift/internal/diff"
)

var (
	configPath    string
	migrationsDir string
	snapshotsPath string
	verbose       bool

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pgdrift",
	Short: "Compare PostgreSQL schemas and generate SQL migrations",
	Long: `pgdrift introspects two PostgreSQL databases, diffs their schemas, and
generates reviewable UP/DOWN migration scripts. The source database holds the
desired state; the target database is the one being migrated.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if migrationsDir != "" {
			cfg.MigrationsDir = migrationsDir
		}
		if snapshotsPath != "" {
			cfg.SnapshotsPath = snapshotsPath
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: pgdrift.yml if present)")
	rootCmd.PersistentFlags().StringVar(&migrationsDir, "migrations-dir", "", "Directory migrations are written to")
	rootCmd.PersistentFlags().StringVar(&snapshotsPath, "snapshots-db", "", "SQLite file holding schema snapshots")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// resolveURLs fills missing source/target URLs from the config.
func resolveURLs(args []string) (source, target string, err error) {
	source = cfg.SourceURL
	target = cfg.TargetURL
	if len(args) > 0 {
		source = args[0]
	}
	if len(args) > 1 {
		target = args[1]
	}
	if source == "" || target == "" {
		return "", "", fmt.Errorf("source and target database URLs are required (pass them as arguments or set source_url/target_url in the config)")
	}
	return source, target, nil
}

func printReport(report *diff.Report) {
	if len(report.Items) == 0 {
		fmt.Println("No differences found.")
		return
	}

	fmt.Printf("Found %d differences:\n", len(report.Items))
	for _, item := range report.Items {
		marker := " "
		if item.Dangerous {
			marker = "!"
		}
		fmt.Printf(" %s [%s %s] %s\n", marker, item.Kind, item.ObjectType, item.Details)
	}
}
