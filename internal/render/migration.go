package render

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/tordrt/pgdrift/internal/diff"
)

const timestampLayout = "20060102150405"

// Manifest is the meta.json written next to a migration's SQL scripts.
type Manifest struct {
	Name         string         `json:"name"`
	Timestamp    string         `json:"timestamp"`
	GeneratedAt  string         `json:"generated_at"`
	ItemsCount   int            `json:"items_count"`
	HasDangerous bool           `json:"has_dangerous"`
	Items        []ManifestItem `json:"items"`
}

// ManifestItem is the per-item summary in a manifest. It omits the SQL,
// which lives in the scripts.
type ManifestItem struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	ObjectType string `json:"object_type"`
	ObjectName string `json:"object_name"`
	Dangerous  bool   `json:"dangerous"`
}

// Migration is one rendered migration, in memory or on disk.
type Migration struct {
	Name     string
	Path     string
	UpSQL    string
	DownSQL  string
	Manifest *Manifest
}

// Build renders the report into an in-memory migration without touching
// disk. The returned migration has no Path.
func Build(report *diff.Report, name string) *Migration {
	return build(report, name, time.Now().UTC())
}

func build(report *diff.Report, name string, now time.Time) *Migration {
	timestamp := now.Format(timestampLayout)
	sanitized := SanitizeName(name)
	return &Migration{
		Name:     timestamp + "__" + sanitized,
		UpSQL:    upScript(report, now),
		DownSQL:  downScript(report, now),
		Manifest: newManifest(report, sanitized, timestamp, now),
	}
}

// WriteFiles renders the report into a new directory under baseDir named
// "<timestamp>__<name>" and returns the directory path. The directory
// holds up.sql, down.sql and meta.json.
func WriteFiles(report *diff.Report, name, baseDir string) (string, error) {
	return writeFiles(report, name, baseDir, time.Now().UTC())
}

func writeFiles(report *diff.Report, name, baseDir string, now time.Time) (string, error) {
	return build(report, name, now).Write(baseDir)
}

// Write creates the migration's directory under baseDir and writes
// up.sql, down.sql and meta.json into it. It returns the directory path
// and records it on the migration.
func (m *Migration) Write(baseDir string) (string, error) {
	dir := filepath.Join(baseDir, m.Name)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create migration directory: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "up.sql"), []byte(m.UpSQL), 0644); err != nil {
		return "", fmt.Errorf("failed to write up.sql: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "down.sql"), []byte(m.DownSQL), 0644); err != nil {
		return "", fmt.Errorf("failed to write down.sql: %w", err)
	}

	data, err := json.MarshalIndent(m.Manifest, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "meta.json"), data, 0644); err != nil {
		return "", fmt.Errorf("failed to write meta.json: %w", err)
	}

	m.Path = dir
	return dir, nil
}

func newManifest(report *diff.Report, name, timestamp string, now time.Time) *Manifest {
	items := make([]ManifestItem, len(report.Items))
	for i, item := range report.Items {
		items[i] = ManifestItem{
			ID:         item.ID,
			Kind:       string(item.Kind),
			ObjectType: item.ObjectType,
			ObjectName: item.ObjectName,
			Dangerous:  item.Dangerous,
		}
	}
	return &Manifest{
		Name:         name,
		Timestamp:    timestamp,
		GeneratedAt:  now.Format(time.RFC3339),
		ItemsCount:   len(report.Items),
		HasDangerous: report.HasDangerous(),
		Items:        items,
	}
}

// SanitizeName lowercases a migration name and replaces everything but
// letters, digits, underscores and hyphens with underscores, so the name
// is safe in a directory name.
func SanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// List scans baseDir for migration directories, newest first. Directories
// without an up.sql are skipped; a missing down.sql or an unreadable
// manifest does not fail the listing.
func List(baseDir string) ([]Migration, error) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var migrations []Migration
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(baseDir, entry.Name())

		upSQL, err := os.ReadFile(filepath.Join(dir, "up.sql"))
		if err != nil {
			continue
		}

		migration := Migration{
			Name:  entry.Name(),
			Path:  dir,
			UpSQL: string(upSQL),
		}
		if downSQL, err := os.ReadFile(filepath.Join(dir, "down.sql")); err == nil {
			migration.DownSQL = string(downSQL)
		}
		if data, err := os.ReadFile(filepath.Join(dir, "meta.json")); err == nil {
			var manifest Manifest
			if err := json.Unmarshal(data, &manifest); err == nil {
				migration.Manifest = &manifest
			}
		}

		migrations = append(migrations, migration)
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Name > migrations[j].Name
	})

	return migrations, nil
}
