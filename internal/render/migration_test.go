package render

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "already clean", input: "add_users_table", want: "add_users_table"},
		{name: "uppercase is lowered", input: "AddUsersTable", want: "adduserstable"},
		{name: "spaces become underscores", input: "add users table", want: "add_users_table"},
		{name: "punctuation becomes underscores", input: "v2.1: fix!", want: "v2_1__fix_"},
		{name: "hyphens survive", input: "pre-release", want: "pre-release"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeName(tt.input); got != tt.want {
				t.Errorf("SanitizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestBuild(t *testing.T) {
	m := build(mixedReport(), "Initial Sync", testTime)

	if m.Name != "20240501103000__initial_sync" {
		t.Errorf("Expected name %q, got %q", "20240501103000__initial_sync", m.Name)
	}
	if m.Path != "" {
		t.Errorf("In-memory migration should have no path, got %q", m.Path)
	}
	if !strings.HasPrefix(m.UpSQL, "-- Migration UP Script") {
		t.Error("UpSQL should start with the UP header")
	}
	if !strings.HasPrefix(m.DownSQL, "-- Migration DOWN Script (Rollback)") {
		t.Error("DownSQL should start with the DOWN header")
	}
	if m.Manifest == nil {
		t.Fatal("Migration should carry a manifest")
	}
	if m.Manifest.Name != "initial_sync" {
		t.Errorf("Expected manifest name %q, got %q", "initial_sync", m.Manifest.Name)
	}
	if m.Manifest.ItemsCount != 3 {
		t.Errorf("Expected 3 items, got %d", m.Manifest.ItemsCount)
	}
}

func TestWriteFiles(t *testing.T) {
	baseDir := t.TempDir()
	report := mixedReport()

	dir, err := writeFiles(report, "Initial Sync", baseDir, testTime)
	if err != nil {
		t.Fatalf("writeFiles failed: %v", err)
	}

	wantDir := filepath.Join(baseDir, "20240501103000__initial_sync")
	if dir != wantDir {
		t.Errorf("Expected directory %q, got %q", wantDir, dir)
	}

	upSQL, err := os.ReadFile(filepath.Join(dir, "up.sql"))
	if err != nil {
		t.Fatalf("Failed to read up.sql: %v", err)
	}
	if !strings.HasPrefix(string(upSQL), "-- Migration UP Script") {
		t.Error("up.sql should start with the UP header")
	}

	downSQL, err := os.ReadFile(filepath.Join(dir, "down.sql"))
	if err != nil {
		t.Fatalf("Failed to read down.sql: %v", err)
	}
	if !strings.HasPrefix(string(downSQL), "-- Migration DOWN Script (Rollback)") {
		t.Error("down.sql should start with the DOWN header")
	}

	metaData, err := os.ReadFile(filepath.Join(dir, "meta.json"))
	if err != nil {
		t.Fatalf("Failed to read meta.json: %v", err)
	}
	var manifest Manifest
	if err := json.Unmarshal(metaData, &manifest); err != nil {
		t.Fatalf("Failed to decode manifest: %v", err)
	}

	if manifest.Name != "initial_sync" {
		t.Errorf("Expected manifest name %q, got %q", "initial_sync", manifest.Name)
	}
	if manifest.Timestamp != "20240501103000" {
		t.Errorf("Expected timestamp %q, got %q", "20240501103000", manifest.Timestamp)
	}
	if manifest.GeneratedAt != "2024-05-01T10:30:00Z" {
		t.Errorf("Expected generated_at %q, got %q", "2024-05-01T10:30:00Z", manifest.GeneratedAt)
	}
	if manifest.ItemsCount != 3 {
		t.Errorf("Expected 3 items, got %d", manifest.ItemsCount)
	}
	if !manifest.HasDangerous {
		t.Error("Manifest should flag dangerous items")
	}
	if len(manifest.Items) != 3 {
		t.Fatalf("Expected 3 manifest items, got %d", len(manifest.Items))
	}
	if manifest.Items[0].ID != "item-1" || manifest.Items[0].Kind != "removed" {
		t.Errorf("Unexpected first manifest item: %+v", manifest.Items[0])
	}
}

func TestList(t *testing.T) {
	baseDir := t.TempDir()
	report := mixedReport()

	older := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if _, err := writeFiles(report, "older", baseDir, older); err != nil {
		t.Fatalf("writeFiles failed: %v", err)
	}
	if _, err := writeFiles(report, "newer", baseDir, testTime); err != nil {
		t.Fatalf("writeFiles failed: %v", err)
	}

	// A directory without up.sql must be skipped.
	if err := os.MkdirAll(filepath.Join(baseDir, "not_a_migration"), 0755); err != nil {
		t.Fatalf("Failed to create decoy directory: %v", err)
	}

	migrations, err := List(baseDir)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(migrations) != 2 {
		t.Fatalf("Expected 2 migrations, got %d", len(migrations))
	}
	if migrations[0].Name != "20240501103000__newer" {
		t.Errorf("Expected newest migration first, got %q", migrations[0].Name)
	}
	if migrations[1].Name != "20240102030405__older" {
		t.Errorf("Expected older migration second, got %q", migrations[1].Name)
	}
	if migrations[0].UpSQL == "" || migrations[0].DownSQL == "" {
		t.Error("Listed migration should carry its script contents")
	}
	if migrations[0].Manifest == nil {
		t.Fatal("Listed migration should carry its manifest")
	}
	if migrations[0].Manifest.Name != "newer" {
		t.Errorf("Expected manifest name %q, got %q", "newer", migrations[0].Manifest.Name)
	}
}

func TestListMissingDirectory(t *testing.T) {
	migrations, err := List(filepath.Join(t.TempDir(), "does_not_exist"))
	if err != nil {
		t.Fatalf("List of a missing directory should not fail, got: %v", err)
	}
	if len(migrations) != 0 {
		t.Errorf("Expected no migrations, got %d", len(migrations))
	}
}

func TestListCorruptManifest(t *testing.T) {
	baseDir := t.TempDir()
	dir := filepath.Join(baseDir, "20240101000000__broken")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create migration directory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "up.sql"), []byte("BEGIN;\nCOMMIT;"), 0644); err != nil {
		t.Fatalf("Failed to write up.sql: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "meta.json"), []byte("{not json"), 0644); err != nil {
		t.Fatalf("Failed to write meta.json: %v", err)
	}

	migrations, err := List(baseDir)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(migrations) != 1 {
		t.Fatalf("Expected 1 migration, got %d", len(migrations))
	}
	if migrations[0].Manifest != nil {
		t.Error("Corrupt manifest should be dropped, not fail the listing")
	}
}
