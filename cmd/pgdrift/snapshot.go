package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/tordrt/pgdrift"
	"github.com/tordrt/pgdrift/internal/diff"
	"github.com/tordrt/pgdrift/internal/store"
)

var (
	snapshotName        string
	snapshotDescription string
	snapshotTags        []string
	snapshotDiffJSON    bool
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Save and manage schema snapshots",
	Long: `Snapshots store a database's full schema in a local SQLite file so it can
be listed, inspected and diffed later without access to the database.`,
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save <database-url>",
	Short: "Introspect a database and store its schema as a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotSave,
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored snapshots, newest first",
	Args:  cobra.NoArgs,
	RunE:  runSnapshotList,
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show <id-or-name>",
	Short: "Print a stored snapshot as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotShow,
}

var snapshotDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotDelete,
}

var snapshotDiffCmd = &cobra.Command{
	Use:   "diff <from> <to>",
	Short: "Diff two stored snapshots",
	Long: `Diff compares two snapshots, producing the changes that would migrate the
"from" schema to the "to" schema. Snapshots are looked up by ID first, then
by name (the newest snapshot with that name wins).`,
	Args: cobra.ExactArgs(2),
	RunE: runSnapshotDiff,
}

func init() {
	snapshotSaveCmd.Flags().StringVarP(&snapshotName, "name", "n", "", "Snapshot name (default: the database name)")
	snapshotSaveCmd.Flags().StringVar(&snapshotDescription, "description", "", "Snapshot description")
	snapshotSaveCmd.Flags().StringSliceVar(&snapshotTags, "tag", nil, "Tag the snapshot (repeatable)")
	snapshotDiffCmd.Flags().BoolVar(&snapshotDiffJSON, "json", false, "Print the diff report as JSON")

	snapshotCmd.AddCommand(snapshotSaveCmd)
	snapshotCmd.AddCommand(snapshotListCmd)
	snapshotCmd.AddCommand(snapshotShowCmd)
	snapshotCmd.AddCommand(snapshotDeleteCmd)
	snapshotCmd.AddCommand(snapshotDiffCmd)
	rootCmd.AddCommand(snapshotCmd)
}

func openSnapshotStore(ctx context.Context) (*store.SQLiteStore, error) {
	if dir := filepath.Dir(cfg.SnapshotsPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create snapshots directory: %w", err)
		}
	}
	return store.Open(ctx, cfg.SnapshotsPath)
}

// findSnapshot looks a snapshot up by ID, falling back to name.
func findSnapshot(ctx context.Context, s *store.SQLiteStore, key string) (*store.Snapshot, error) {
	snap, err := s.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		snap, err = s.GetByName(ctx, key)
	}
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("snapshot not found: %s", key)
	}
	return snap, err
}

func runSnapshotSave(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	snap, err := pgdrift.SnapshotDatabase(ctx, args[0])
	if err != nil {
		return err
	}
	snap.Name = snapshotName
	if snap.Name == "" {
		snap.Name = snap.DatabaseName
	}
	snap.Description = snapshotDescription
	snap.Tags = snapshotTags

	s, err := openSnapshotStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	id, err := s.Save(ctx, snap)
	if err != nil {
		return err
	}

	logger.Info("snapshot saved", "id", id, "name", snap.Name, "tables", len(snap.Model.Tables))
	return nil
}

func runSnapshotList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, err := openSnapshotStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	snapshots, err := s.List(ctx)
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		fmt.Println("No snapshots found.")
		return nil
	}

	for _, snap := range snapshots {
		fmt.Printf("%s  %s  %s (%s)\n", snap.ID, snap.CreatedAt.Format(time.RFC3339), snap.Name, snap.DatabaseName)
	}
	return nil
}

func runSnapshotShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, err := openSnapshotStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	snap, err := findSnapshot(ctx, s, args[0])
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func runSnapshotDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, err := openSnapshotStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if err := s.Delete(ctx, args[0]); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("snapshot not found: %s", args[0])
		}
		return err
	}

	logger.Info("snapshot deleted", "id", args[0])
	return nil
}

func runSnapshotDiff(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, err := openSnapshotStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	from, err := findSnapshot(ctx, s, args[0])
	if err != nil {
		return err
	}
	to, err := findSnapshot(ctx, s, args[1])
	if err != nil {
		return err
	}

	// The "to" schema is the desired state.
	report := pgdrift.Compare(to.Model, from.Model)
	report.SourceConnection = to.ConnectionString
	report.TargetConnection = from.ConnectionString

	if snapshotDiffJSON {
		out := struct {
			FromVersion string       `json:"from_version"`
			ToVersion   string       `json:"to_version"`
			DiffReport  *diff.Report `json:"diff_report"`
		}{from.ID, to.ID, report}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Changes to migrate %q to %q:\n", from.Name, to.Name)
	printReport(report)
	return nil
}
