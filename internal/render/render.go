// Package render turns a diff report into migration artifacts: the
// forward and rollback SQL scripts and the on-disk migration directory
// with its manifest.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/tordrt/pgdrift/internal/diff"
)

// UpScript renders the forward migration as a single transaction.
// Items are regrouped into a fixed dependency order so enum types exist
// before the tables that use them and are dropped only after dependent
// tables are gone. Within each group the report's item order is kept.
func UpScript(report *diff.Report) string {
	return upScript(report, time.Now().UTC())
}

func upScript(report *diff.Report, now time.Time) string {
	parts := []string{
		"-- Migration UP Script",
		fmt.Sprintf("-- Generated at: %s", now.Format(time.RFC3339)),
		"-- This script applies the schema changes to the target database.\n",
		"BEGIN;\n",
	}

	enumsAdded := itemsOf(report, diff.ObjectEnum, diff.KindAdded)
	enumsModified := itemsOf(report, diff.ObjectEnum, diff.KindModified)
	enumsRemoved := itemsOf(report, diff.ObjectEnum, diff.KindRemoved)
	tablesAdded := itemsOf(report, diff.ObjectTable, diff.KindAdded)
	tablesRemoved := itemsOf(report, diff.ObjectTable, diff.KindRemoved)
	columns := itemsOf(report, diff.ObjectColumn)
	constraints := itemsOf(report, diff.ObjectConstraint)
	indexes := itemsOf(report, diff.ObjectIndex)

	if len(enumsAdded) > 0 {
		parts = append(parts, "-- Create enum types (must be before tables)")
		for _, item := range enumsAdded {
			parts = append(parts, "-- "+item.Details, item.GeneratedUpSQL)
		}
		parts = append(parts, "")
	}

	if len(enumsModified) > 0 {
		parts = append(parts, "-- Modify enum types")
		for _, item := range enumsModified {
			parts = append(parts, "-- "+item.Details)
			if item.Dangerous {
				parts = append(parts, "-- ⚠️  DANGEROUS: Removing ENUM values may cause data issues")
			}
			parts = append(parts, item.GeneratedUpSQL)
		}
		parts = append(parts, "")
	}

	if len(tablesAdded) > 0 {
		parts = append(parts, "-- Create new tables")
		for _, item := range tablesAdded {
			parts = append(parts, "-- "+item.Details, item.GeneratedUpSQL)
		}
		parts = append(parts, "")
	}

	if len(columns) > 0 {
		parts = append(parts, "-- Column changes")
		for _, item := range columns {
			parts = append(parts, "-- "+item.Details)
			if item.Dangerous {
				parts = append(parts, "-- ⚠️  DANGEROUS: This operation may cause data loss")
			}
			parts = append(parts, item.GeneratedUpSQL)
		}
		parts = append(parts, "")
	}

	if len(constraints) > 0 {
		parts = append(parts, "-- Constraint changes")
		for _, item := range constraints {
			parts = append(parts, "-- "+item.Details, item.GeneratedUpSQL)
		}
		parts = append(parts, "")
	}

	if len(indexes) > 0 {
		parts = append(parts, "-- Index changes")
		for _, item := range indexes {
			parts = append(parts, "-- "+item.Details, item.GeneratedUpSQL)
		}
		parts = append(parts, "")
	}

	if len(enumsRemoved) > 0 {
		parts = append(parts, "-- Drop enum types")
		for _, item := range enumsRemoved {
			parts = append(parts,
				"-- "+item.Details,
				"-- ⚠️  DANGEROUS: This will fail if the type is still in use",
				item.GeneratedUpSQL,
			)
		}
		parts = append(parts, "")
	}

	if len(tablesRemoved) > 0 {
		parts = append(parts, "-- Drop tables")
		for _, item := range tablesRemoved {
			parts = append(parts,
				"-- "+item.Details,
				"-- ⚠️  DANGEROUS: This operation will permanently delete data",
				item.GeneratedUpSQL,
			)
		}
		parts = append(parts, "")
	}

	parts = append(parts, "COMMIT;")

	return strings.Join(parts, "\n")
}

// DownScript renders the rollback migration as a single transaction.
// It replays the report's items newest first exactly as generated; it is
// not regrouped by dependency class the way the up script is.
func DownScript(report *diff.Report) string {
	return downScript(report, time.Now().UTC())
}

func downScript(report *diff.Report, now time.Time) string {
	parts := []string{
		"-- Migration DOWN Script (Rollback)",
		fmt.Sprintf("-- Generated at: %s", now.Format(time.RFC3339)),
		"-- This script reverts the schema changes.\n",
		"BEGIN;\n",
	}

	for i := len(report.Items) - 1; i >= 0; i-- {
		item := &report.Items[i]
		parts = append(parts, "-- Revert: "+item.Details, item.GeneratedDownSQL)
	}

	parts = append(parts, "\nCOMMIT;")

	return strings.Join(parts, "\n")
}

// itemsOf returns the report's items with the given object type,
// restricted to the given kinds when any are named, preserving report
// order.
func itemsOf(report *diff.Report, objectType string, kinds ...diff.Kind) []diff.Item {
	var out []diff.Item
	for _, item := range report.Items {
		if item.ObjectType != objectType {
			continue
		}
		if len(kinds) == 0 {
			out = append(out, item)
			continue
		}
		for _, kind := range kinds {
			if item.Kind == kind {
				out = append(out, item)
				break
			}
		}
	}
	return out
}
