package db

import (
	"context"
	"fmt"
)

// Info summarizes the connected database.
type Info struct {
	DatabaseName string `json:"database_name"`
	CurrentUser  string `json:"current_user"`
	Version      string `json:"pg_version"`
	Size         string `json:"database_size"`
	TableCount   int64  `json:"table_count"`
}

// Info fetches identity and size details for the connected database.
func (c *PostgresClient) Info(ctx context.Context) (*Info, error) {
	query := `
		SELECT
			current_database() AS database_name,
			current_user AS current_user,
			version() AS pg_version,
			pg_size_pretty(pg_database_size(current_database())) AS database_size,
			(SELECT count(*) FROM information_schema.tables WHERE table_schema = 'public' AND table_type = 'BASE TABLE') AS table_count
	`

	var info Info
	err := c.conn.QueryRow(ctx, query).Scan(
		&info.DatabaseName,
		&info.CurrentUser,
		&info.Version,
		&info.Size,
		&info.TableCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get database info: %w", err)
	}

	return &info, nil
}
