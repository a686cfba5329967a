package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Applier executes migration scripts against the connected database.
type Applier struct {
	client *PostgresClient
}

// NewApplier creates a new migration applier
func NewApplier(client *PostgresClient) *Applier {
	return &Applier{client: client}
}

// Apply runs the up.sql of a migration directory and returns the
// timestamped execution log. On failure the log collected so far is
// returned together with the error.
func (a *Applier) Apply(ctx context.Context, migrationDir string) ([]string, error) {
	return a.applyScriptFile(ctx, migrationDir, "up.sql")
}

// Rollback runs the down.sql of a migration directory.
func (a *Applier) Rollback(ctx context.Context, migrationDir string) ([]string, error) {
	return a.applyScriptFile(ctx, migrationDir, "down.sql")
}

func (a *Applier) applyScriptFile(ctx context.Context, migrationDir, fileName string) ([]string, error) {
	var logs []string

	path := filepath.Join(migrationDir, fileName)
	logs = append(logs, logLine("Starting migration from: %s", migrationDir))

	script, err := os.ReadFile(path)
	if err != nil {
		return logs, fmt.Errorf("failed to read migration file %s: %w", path, err)
	}
	logs = append(logs, logLine("Read migration file (%d bytes)", len(script)))

	logs = append(logs, logLine("Executing migration..."))
	rowsAffected, err := a.ExecScript(ctx, string(script))
	if err != nil {
		logs = append(logs, logLine("Migration FAILED: %v", err))
		return logs, fmt.Errorf("migration execution failed: %w", err)
	}

	logs = append(logs, logLine("Migration executed successfully. Rows affected: %d", rowsAffected))
	logs = append(logs, logLine("Migration completed successfully"))

	return logs, nil
}

// ExecScript runs a multi-statement SQL script in a single round trip
// and returns the total rows affected. The script goes through the
// simple query protocol: the extended protocol refuses strings holding
// more than one statement.
func (a *Applier) ExecScript(ctx context.Context, script string) (int64, error) {
	results, err := a.client.GetConnection().PgConn().Exec(ctx, script).ReadAll()
	if err != nil {
		return 0, err
	}

	var rowsAffected int64
	for _, result := range results {
		if result.Err != nil {
			return rowsAffected, result.Err
		}
		rowsAffected += result.CommandTag.RowsAffected()
	}

	return rowsAffected, nil
}

func logLine(format string, args ...any) string {
	return fmt.Sprintf("[%s] %s", time.Now().UTC().Format("15:04:05.000"), fmt.Sprintf(format, args...))
}
