// Package store persists named schema snapshots in a local SQLite
// database so past captures can be listed, compared and replayed without
// reconnecting to the databases they came from.
package store

import (
	"errors"
	"time"

	"github.com/tordrt/pgdrift/internal/schema"
)

// ErrNotFound is returned when no snapshot matches the given id or name.
var ErrNotFound = errors.New("snapshot not found")

// ErrCorrupt is returned when a stored snapshot's model can no longer be
// decoded.
var ErrCorrupt = errors.New("snapshot data is corrupt")

// Snapshot is a captured schema model together with where and when it
// was taken.
type Snapshot struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Description      string        `json:"description"`
	ConnectionString string        `json:"connection_string"`
	DatabaseName     string        `json:"database_name"`
	Model            *schema.Model `json:"schema"`
	Tags             []string      `json:"tags"`
	CreatedAt        time.Time     `json:"created_at"`
}
