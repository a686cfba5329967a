package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/tordrt/pgdrift/internal/schema"
)

const createTableSQL = `
	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		connection_string TEXT NOT NULL DEFAULT '',
		database_name TEXT NOT NULL DEFAULT '',
		model TEXT NOT NULL,
		tags TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_snapshots_name ON snapshots (name);
`

// SQLiteStore keeps snapshots in a single SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens or creates the snapshot database at path
func Open(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping snapshot store: %w", err)
	}

	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize snapshot store: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the snapshot database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save stores a snapshot and returns its id. A missing id or creation
// time is filled in; an existing id is overwritten in place.
func (s *SQLiteStore) Save(ctx context.Context, snapshot *Snapshot) (string, error) {
	if snapshot.Model == nil {
		return "", fmt.Errorf("snapshot has no schema model")
	}
	if snapshot.ID == "" {
		snapshot.ID = uuid.NewString()
	}
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = time.Now().UTC()
	}

	model, err := json.Marshal(snapshot.Model)
	if err != nil {
		return "", fmt.Errorf("failed to encode schema model: %w", err)
	}
	tags, err := json.Marshal(tagsOrEmpty(snapshot.Tags))
	if err != nil {
		return "", fmt.Errorf("failed to encode tags: %w", err)
	}

	query := `
		INSERT OR REPLACE INTO snapshots
			(id, name, description, connection_string, database_name, model, tags, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		snapshot.ID,
		snapshot.Name,
		snapshot.Description,
		snapshot.ConnectionString,
		snapshot.DatabaseName,
		string(model),
		string(tags),
		snapshot.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("failed to save snapshot: %w", err)
	}

	return snapshot.ID, nil
}

// Get returns the snapshot with the given id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	query := selectColumns + ` WHERE id = ?`
	return s.scanOne(s.db.QueryRowContext(ctx, query, id))
}

// GetByName returns the most recent snapshot with the given name.
func (s *SQLiteStore) GetByName(ctx context.Context, name string) (*Snapshot, error) {
	query := selectColumns + ` WHERE name = ? ORDER BY created_at DESC LIMIT 1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, name))
}

// List returns all snapshots, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]Snapshot, error) {
	query := selectColumns + ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snapshots []Snapshot
	for rows.Next() {
		snapshot, err := scanSnapshot(rows.Scan)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, *snapshot)
	}

	return snapshots, rows.Err()
}

// Delete removes the snapshot with the given id.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

const selectColumns = `
	SELECT id, name, description, connection_string, database_name, model, tags, created_at
	FROM snapshots`

func (s *SQLiteStore) scanOne(row *sql.Row) (*Snapshot, error) {
	snapshot, err := scanSnapshot(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return snapshot, err
}

// scanSnapshot decodes one row via the given scan function, so it works
// for both sql.Row and sql.Rows.
func scanSnapshot(scan func(...any) error) (*Snapshot, error) {
	var snapshot Snapshot
	var model, tags, createdAt string

	if err := scan(
		&snapshot.ID,
		&snapshot.Name,
		&snapshot.Description,
		&snapshot.ConnectionString,
		&snapshot.DatabaseName,
		&model,
		&tags,
		&createdAt,
	); err != nil {
		return nil, err
	}

	snapshot.Model = &schema.Model{}
	if err := json.Unmarshal([]byte(model), snapshot.Model); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if err := json.Unmarshal([]byte(tags), &snapshot.Tags); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	parsed, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	snapshot.CreatedAt = parsed

	return &snapshot, nil
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
