package render

import (
	"strings"
	"testing"
	"time"

	"github.com/tordrt/pgdrift/internal/diff"
)

var testTime = time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

// mixedReport returns items in a deliberately scrambled order so the
// tests can verify regrouping.
func mixedReport() *diff.Report {
	return &diff.Report{
		Items: []diff.Item{
			{
				ID:               "item-1",
				Kind:             diff.KindRemoved,
				ObjectType:       diff.ObjectTable,
				ObjectName:       "legacy",
				Details:          "Drop table 'legacy'",
				GeneratedUpSQL:   `DROP TABLE IF EXISTS "legacy" CASCADE;`,
				GeneratedDownSQL: "CREATE TABLE \"legacy\" (\n    \"id\" integer NOT NULL\n);\n",
				Dangerous:        true,
			},
			{
				ID:               "item-2",
				Kind:             diff.KindAdded,
				ObjectType:       diff.ObjectEnum,
				ObjectName:       "mood",
				Details:          `Create enum type 'mood' with values: ["happy"]`,
				GeneratedUpSQL:   `CREATE TYPE "mood" AS ENUM ('happy');`,
				GeneratedDownSQL: `DROP TYPE IF EXISTS "mood" CASCADE;`,
			},
			{
				ID:               "item-3",
				Kind:             diff.KindModified,
				ObjectType:       diff.ObjectColumn,
				ObjectName:       "users.name",
				Details:          "Modify column 'name': type: varchar(100) -> text",
				GeneratedUpSQL:   `ALTER TABLE "users" ALTER COLUMN "name" TYPE text USING "name"::text;`,
				GeneratedDownSQL: `ALTER TABLE "users" ALTER COLUMN "name" TYPE varchar(100) USING "name"::varchar(100);`,
				Dangerous:        true,
			},
		},
		SourceConnection: "postgres://source/db",
		TargetConnection: "postgres://target/db",
		GeneratedAt:      testTime.Format(time.RFC3339),
	}
}

func TestUpScript(t *testing.T) {
	want := `-- Migration UP Script
-- Generated at: 2024-05-01T10:30:00Z
-- This script applies the schema changes to the target database.

BEGIN;

-- Create enum types (must be before tables)
-- Create enum type 'mood' with values: ["happy"]
CREATE TYPE "mood" AS ENUM ('happy');

-- Column changes
-- Modify column 'name': type: varchar(100) -> text
-- ⚠️  DANGEROUS: This operation may cause data loss
ALTER TABLE "users" ALTER COLUMN "name" TYPE text USING "name"::text;

-- Drop tables
-- Drop table 'legacy'
-- ⚠️  DANGEROUS: This operation will permanently delete data
DROP TABLE IF EXISTS "legacy" CASCADE;

COMMIT;`

	got := upScript(mixedReport(), testTime)
	if got != want {
		t.Errorf("upScript() mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestUpScriptEmptyReport(t *testing.T) {
	report := &diff.Report{}

	want := `-- Migration UP Script
-- Generated at: 2024-05-01T10:30:00Z
-- This script applies the schema changes to the target database.

BEGIN;

COMMIT;`

	got := upScript(report, testTime)
	if got != want {
		t.Errorf("upScript() mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestUpScriptGroupOrder(t *testing.T) {
	report := mixedReport()
	script := upScript(report, testTime)

	enumPos := strings.Index(script, `CREATE TYPE "mood"`)
	columnPos := strings.Index(script, `ALTER TABLE "users"`)
	dropPos := strings.Index(script, `DROP TABLE IF EXISTS "legacy"`)

	if enumPos < 0 || columnPos < 0 || dropPos < 0 {
		t.Fatalf("Script is missing statements:\n%s", script)
	}
	if !(enumPos < columnPos && columnPos < dropPos) {
		t.Errorf("Statements out of dependency order: enum=%d column=%d drop=%d", enumPos, columnPos, dropPos)
	}
	if !strings.HasPrefix(script, "-- Migration UP Script") {
		t.Error("Script should start with the UP header")
	}
	if !strings.HasSuffix(script, "COMMIT;") {
		t.Error("Script should end with COMMIT;")
	}
}

func TestUpScriptWarningsOnlyWhenDangerous(t *testing.T) {
	report := &diff.Report{
		Items: []diff.Item{
			{
				Kind:           diff.KindModified,
				ObjectType:     diff.ObjectColumn,
				ObjectName:     "users.bio",
				Details:        "Modify column 'bio': nullable: false -> true",
				GeneratedUpSQL: `ALTER TABLE "users" ALTER COLUMN "bio" DROP NOT NULL;`,
				Dangerous:      false,
			},
			{
				Kind:           diff.KindModified,
				ObjectType:     diff.ObjectEnum,
				ObjectName:     "status",
				Details:        `Add values to enum 'status': ["archived"]`,
				GeneratedUpSQL: `ALTER TYPE "status" ADD VALUE IF NOT EXISTS 'archived';`,
				Dangerous:      false,
			},
		},
	}

	script := upScript(report, testTime)
	if strings.Contains(script, "DANGEROUS") {
		t.Errorf("Safe items should not carry danger warnings:\n%s", script)
	}
}

func TestDownScript(t *testing.T) {
	want := `-- Migration DOWN Script (Rollback)
-- Generated at: 2024-05-01T10:30:00Z
-- This script reverts the schema changes.

BEGIN;

-- Revert: Modify column 'name': type: varchar(100) -> text
ALTER TABLE "users" ALTER COLUMN "name" TYPE varchar(100) USING "name"::varchar(100);
-- Revert: Create enum type 'mood' with values: ["happy"]
DROP TYPE IF EXISTS "mood" CASCADE;
-- Revert: Drop table 'legacy'
CREATE TABLE "legacy" (
    "id" integer NOT NULL
);


COMMIT;`

	got := downScript(mixedReport(), testTime)
	if got != want {
		t.Errorf("downScript() mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestDownScriptReversesItemOrder(t *testing.T) {
	report := mixedReport()
	script := downScript(report, testTime)

	first := strings.Index(script, "-- Revert: Modify column 'name'")
	second := strings.Index(script, "-- Revert: Create enum type 'mood'")
	third := strings.Index(script, "-- Revert: Drop table 'legacy'")

	if first < 0 || second < 0 || third < 0 {
		t.Fatalf("Script is missing revert comments:\n%s", script)
	}
	if !(first < second && second < third) {
		t.Errorf("Reverts out of order: %d %d %d", first, second, third)
	}
}
