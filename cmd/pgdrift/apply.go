package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tordrt/pgdrift"
)

var applyDown bool

var applyCmd = &cobra.Command{
	Use:   "apply <database-url> <migration>",
	Short: "Run a migration against a database",
	Long: `Apply executes a migration's up.sql against the database. The migration
argument is either a directory path or the name of a migration under the
migrations directory.

With --down the migration's down.sql is executed instead, reverting it.`,
	Args: cobra.ExactArgs(2),
	RunE: runApply,
}

func init() {
	applyCmd.Flags().BoolVar(&applyDown, "down", false, "Run down.sql instead of up.sql (rollback)")
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	dir := resolveMigrationDir(args[1], cfg.MigrationsDir)

	var (
		logs []string
		err  error
	)
	if applyDown {
		logs, err = pgdrift.Rollback(cmd.Context(), args[0], dir)
	} else {
		logs, err = pgdrift.Apply(cmd.Context(), args[0], dir)
	}

	for _, line := range logs {
		fmt.Println(line)
	}
	return err
}

// resolveMigrationDir treats the argument as a path when it points at a
// migration or contains a separator, otherwise as a name under baseDir.
func resolveMigrationDir(arg, baseDir string) string {
	if _, err := os.Stat(filepath.Join(arg, "up.sql")); err == nil {
		return arg
	}
	if strings.ContainsRune(arg, os.PathSeparator) {
		return arg
	}
	return filepath.Join(baseDir, arg)
}
