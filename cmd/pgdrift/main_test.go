package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tordrt/pgdrift/internal/config"
	"github.com/tordrt/pgdrift/internal/schema"
	"github.com/tordrt/pgdrift/internal/store"
)

func TestResolveURLs(t *testing.T) {
	tests := []struct {
		name       string
		cfg        config.Config
		args       []string
		wantSource string
		wantTarget string
		wantErr    bool
	}{
		{
			name:       "both from args",
			args:       []string{"postgres://a", "postgres://b"},
			wantSource: "postgres://a",
			wantTarget: "postgres://b",
		},
		{
			name:       "both from config",
			cfg:        config.Config{SourceURL: "postgres://a", TargetURL: "postgres://b"},
			wantSource: "postgres://a",
			wantTarget: "postgres://b",
		},
		{
			name:       "args override config",
			cfg:        config.Config{SourceURL: "postgres://a", TargetURL: "postgres://b"},
			args:       []string{"postgres://c"},
			wantSource: "postgres://c",
			wantTarget: "postgres://b",
		},
		{
			name:    "missing target",
			args:    []string{"postgres://a"},
			wantErr: true,
		},
		{
			name:    "nothing set",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg = &tt.cfg

			source, target, err := resolveURLs(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error but got none")
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if source != tt.wantSource {
				t.Errorf("Expected source %s, got %s", tt.wantSource, source)
			}
			if target != tt.wantTarget {
				t.Errorf("Expected target %s, got %s", tt.wantTarget, target)
			}
		})
	}
}

func TestResolveMigrationDir(t *testing.T) {
	baseDir := t.TempDir()

	migrationDir := filepath.Join(t.TempDir(), "20240501103000__init")
	if err := os.MkdirAll(migrationDir, 0755); err != nil {
		t.Fatalf("Failed to create migration directory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(migrationDir, "up.sql"), []byte("BEGIN;\nCOMMIT;"), 0644); err != nil {
		t.Fatalf("Failed to write up.sql: %v", err)
	}

	tests := []struct {
		name string
		arg  string
		want string
	}{
		{
			name: "existing migration path kept",
			arg:  migrationDir,
			want: migrationDir,
		},
		{
			name: "bare name joined with base dir",
			arg:  "20240501103000__init",
			want: filepath.Join(baseDir, "20240501103000__init"),
		},
		{
			name: "path with separator kept",
			arg:  filepath.Join("some", "where", "else"),
			want: filepath.Join("some", "where", "else"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveMigrationDir(tt.arg, baseDir); got != tt.want {
				t.Errorf("resolveMigrationDir(%q) = %q, want %q", tt.arg, got, tt.want)
			}
		})
	}
}

func TestFindSnapshot(t *testing.T) {
	ctx := context.Background()

	s, err := store.Open(ctx, filepath.Join(t.TempDir(), "snapshots.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer func() { _ = s.Close() }()

	id, err := s.Save(ctx, &store.Snapshot{Name: "prod", Model: &schema.Model{}})
	if err != nil {
		t.Fatalf("Failed to save snapshot: %v", err)
	}

	byID, err := findSnapshot(ctx, s, id)
	if err != nil {
		t.Fatalf("Lookup by ID failed: %v", err)
	}
	if byID.Name != "prod" {
		t.Errorf("Expected snapshot prod, got %s", byID.Name)
	}

	byName, err := findSnapshot(ctx, s, "prod")
	if err != nil {
		t.Fatalf("Lookup by name failed: %v", err)
	}
	if byName.ID != id {
		t.Errorf("Expected snapshot %s, got %s", id, byName.ID)
	}

	_, err = findSnapshot(ctx, s, "missing")
	if err == nil {
		t.Fatal("Expected error for missing snapshot")
	}
	if !strings.Contains(err.Error(), "snapshot not found") {
		t.Errorf("Unexpected error: %v", err)
	}
}
