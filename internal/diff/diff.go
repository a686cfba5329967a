// Package diff compares two PostgreSQL schema snapshots and produces a
// report of ordered change items, each carrying forward and reverse SQL.
package diff

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tordrt/pgdrift/internal/schema"
)

// Compare diffs two schema snapshots. Source is the desired state, target
// the current one: each item's up SQL moves target toward source and its
// down SQL undoes that. Neither input is modified, and the same inputs
// always yield items in the same order. Enum types are compared first
// because tables may depend on them.
func Compare(source, target *schema.Model) *Report {
	report := NewReport()

	compareEnums(report, source, target)

	for i := range source.Tables {
		st := &source.Tables[i]
		if target.FindTable(st.Name) != nil {
			continue
		}
		report.Items = append(report.Items, newItem(
			KindAdded, ObjectTable, st.Name,
			fmt.Sprintf("Create table '%s'", st.Name),
			createTableSQL(st),
			dropTableSQL(st.Name),
			false,
		))
	}

	for i := range target.Tables {
		tt := &target.Tables[i]
		if source.FindTable(tt.Name) != nil {
			continue
		}
		report.Items = append(report.Items, newItem(
			KindRemoved, ObjectTable, tt.Name,
			fmt.Sprintf("Drop table '%s'", tt.Name),
			dropTableSQL(tt.Name),
			createTableSQL(tt),
			true,
		))
	}

	for i := range source.Tables {
		st := &source.Tables[i]
		if tt := target.FindTable(st.Name); tt != nil {
			compareTables(report, st, tt)
		}
	}

	return report
}

func compareEnums(report *Report, source, target *schema.Model) {
	for i := range source.Enums {
		se := &source.Enums[i]
		te := target.FindEnum(se.Name)
		if te == nil {
			report.Items = append(report.Items, newItem(
				KindAdded, ObjectEnum, se.Name,
				fmt.Sprintf("Create enum type '%s' with values: %s", se.Name, formatValueList(se.Values)),
				createEnumSQL(se),
				dropEnumSQL(se.Name),
				false,
			))
			continue
		}
		if slices.Equal(se.Values, te.Values) {
			continue
		}

		newValues := missingValues(se.Values, te.Values)
		removedValues := missingValues(te.Values, se.Values)

		if len(newValues) > 0 {
			report.Items = append(report.Items, newItem(
				KindModified, ObjectEnum, se.Name,
				fmt.Sprintf("Add values to enum '%s': %s", se.Name, formatValueList(newValues)),
				addEnumValuesSQL(se.Name, newValues),
				fmt.Sprintf("-- Cannot easily remove ENUM values in PostgreSQL\n-- Removed values: %s", formatValueList(newValues)),
				false,
			))
		}

		if len(removedValues) > 0 {
			// PostgreSQL cannot drop enum values in place; the forward SQL is
			// a comment block and the operator has to recreate the type.
			upSQL := fmt.Sprintf(
				"-- WARNING: Removing ENUM values requires recreating the type\n-- Values to remove: %s\n-- This is a destructive operation that requires manual handling",
				formatValueList(removedValues),
			)
			report.Items = append(report.Items, newItem(
				KindModified, ObjectEnum, se.Name,
				fmt.Sprintf("Remove values from enum '%s': %s (DANGEROUS)", se.Name, formatValueList(removedValues)),
				upSQL,
				addEnumValuesSQL(se.Name, removedValues),
				true,
			))
		}
	}

	for i := range target.Enums {
		te := &target.Enums[i]
		if source.FindEnum(te.Name) != nil {
			continue
		}
		report.Items = append(report.Items, newItem(
			KindRemoved, ObjectEnum, te.Name,
			fmt.Sprintf("Drop enum type '%s'", te.Name),
			dropEnumSQL(te.Name),
			createEnumSQL(te),
			true,
		))
	}
}

func addEnumValuesSQL(enumName string, values []string) string {
	stmts := make([]string, len(values))
	for i, v := range values {
		stmts[i] = fmt.Sprintf("ALTER TYPE %s ADD VALUE IF NOT EXISTS '%s';", quoteIdent(enumName), v)
	}
	return strings.Join(stmts, "\n")
}

// missingValues returns the elements of a that do not occur in b,
// preserving a's order.
func missingValues(a, b []string) []string {
	var out []string
	for _, v := range a {
		if !slices.Contains(b, v) {
			out = append(out, v)
		}
	}
	return out
}

func compareTables(report *Report, source, target *schema.Table) {
	compareColumns(report, source, target)
	comparePrimaryKeys(report, source, target)
	compareUniqueConstraints(report, source, target)
	compareIndexes(report, source, target)
}

func compareColumns(report *Report, source, target *schema.Table) {
	for i := range source.Columns {
		sc := &source.Columns[i]
		if target.FindColumn(sc.Name) != nil {
			continue
		}
		report.Items = append(report.Items, newItem(
			KindAdded, ObjectColumn,
			source.Name+"."+sc.Name,
			fmt.Sprintf("Add column '%s' to table '%s'", sc.Name, source.Name),
			addColumnSQL(source.Name, sc),
			dropColumnSQL(source.Name, sc.Name),
			false,
		))
	}

	for i := range target.Columns {
		tc := &target.Columns[i]
		if source.FindColumn(tc.Name) != nil {
			continue
		}
		report.Items = append(report.Items, newItem(
			KindRemoved, ObjectColumn,
			target.Name+"."+tc.Name,
			fmt.Sprintf("Drop column '%s' from table '%s'", tc.Name, target.Name),
			dropColumnSQL(target.Name, tc.Name),
			addColumnSQL(target.Name, tc),
			true,
		))
	}

	for i := range source.Columns {
		sc := &source.Columns[i]
		tc := target.FindColumn(sc.Name)
		if tc == nil || sc.SameDefinition(tc) {
			continue
		}
		upSQL, downSQL := alterColumnSQL(source.Name, sc, tc)
		report.Items = append(report.Items, newItem(
			KindModified, ObjectColumn,
			source.Name+"."+sc.Name,
			describeColumnChanges(sc, tc),
			upSQL,
			downSQL,
			sc.DataType != tc.DataType,
		))
	}
}

func comparePrimaryKeys(report *Report, source, target *schema.Table) {
	sourcePK, targetPK := source.PrimaryKey, target.PrimaryKey

	switch {
	case sourcePK != nil && targetPK == nil:
		report.Items = append(report.Items, newItem(
			KindAdded, ObjectConstraint,
			source.Name+"."+sourcePK.Name,
			fmt.Sprintf("Add primary key '%s' to table '%s'", sourcePK.Name, source.Name),
			addPrimaryKeySQL(source.Name, sourcePK),
			dropConstraintSQL(source.Name, sourcePK.Name),
			false,
		))

	case sourcePK == nil && targetPK != nil:
		report.Items = append(report.Items, newItem(
			KindRemoved, ObjectConstraint,
			target.Name+"."+targetPK.Name,
			fmt.Sprintf("Drop primary key '%s' from table '%s'", targetPK.Name, target.Name),
			dropConstraintSQL(target.Name, targetPK.Name),
			addPrimaryKeySQL(target.Name, targetPK),
			true,
		))

	case sourcePK != nil && targetPK != nil:
		if slices.Equal(sourcePK.Columns, targetPK.Columns) {
			return
		}
		upSQL := dropConstraintSQL(source.Name, targetPK.Name) + "\n" + addPrimaryKeySQL(source.Name, sourcePK)
		downSQL := dropConstraintSQL(source.Name, sourcePK.Name) + "\n" + addPrimaryKeySQL(source.Name, targetPK)
		report.Items = append(report.Items, newItem(
			KindModified, ObjectConstraint,
			source.Name+"."+sourcePK.Name,
			fmt.Sprintf("Modify primary key '%s' on table '%s'", sourcePK.Name, source.Name),
			upSQL,
			downSQL,
			true,
		))
	}
}

func addPrimaryKeySQL(tableName string, pk *schema.Constraint) string {
	return fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s PRIMARY KEY (%s);", quoteIdent(tableName), quoteIdent(pk.Name), quoteJoin(pk.Columns))
}

func addUniqueSQL(tableName string, uc *schema.Constraint) string {
	return fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s UNIQUE (%s);", quoteIdent(tableName), quoteIdent(uc.Name), quoteJoin(uc.Columns))
}

func dropConstraintSQL(tableName, constraintName string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT IF EXISTS %s;", quoteIdent(tableName), quoteIdent(constraintName))
}

// Unique constraints match when either the name or the column list lines
// up, so a renamed-but-identical constraint does not churn into a drop
// plus add.
func compareUniqueConstraints(report *Report, source, target *schema.Table) {
	for i := range source.UniqueConstraints {
		sc := &source.UniqueConstraints[i]
		if hasMatchingConstraint(target.UniqueConstraints, sc) {
			continue
		}
		report.Items = append(report.Items, newItem(
			KindAdded, ObjectConstraint,
			source.Name+"."+sc.Name,
			fmt.Sprintf("Add unique constraint '%s' to table '%s'", sc.Name, source.Name),
			addUniqueSQL(source.Name, sc),
			dropConstraintSQL(source.Name, sc.Name),
			false,
		))
	}

	for i := range target.UniqueConstraints {
		tc := &target.UniqueConstraints[i]
		if hasMatchingConstraint(source.UniqueConstraints, tc) {
			continue
		}
		report.Items = append(report.Items, newItem(
			KindRemoved, ObjectConstraint,
			target.Name+"."+tc.Name,
			fmt.Sprintf("Drop unique constraint '%s' from table '%s'", tc.Name, target.Name),
			dropConstraintSQL(target.Name, tc.Name),
			addUniqueSQL(target.Name, tc),
			false,
		))
	}
}

func hasMatchingConstraint(constraints []schema.Constraint, want *schema.Constraint) bool {
	for i := range constraints {
		c := &constraints[i]
		if c.Name == want.Name || slices.Equal(c.Columns, want.Columns) {
			return true
		}
	}
	return false
}

// Indexes match by name, or by column list plus uniqueness.
func compareIndexes(report *Report, source, target *schema.Table) {
	for i := range source.Indexes {
		si := &source.Indexes[i]
		if hasMatchingIndex(target.Indexes, si) {
			continue
		}
		report.Items = append(report.Items, newItem(
			KindAdded, ObjectIndex,
			source.Name+"."+si.Name,
			fmt.Sprintf("Create index '%s' on table '%s'", si.Name, source.Name),
			createIndexSQL(source.Name, si),
			dropIndexSQL(si.Name),
			false,
		))
	}

	for i := range target.Indexes {
		ti := &target.Indexes[i]
		if hasMatchingIndex(source.Indexes, ti) {
			continue
		}
		report.Items = append(report.Items, newItem(
			KindRemoved, ObjectIndex,
			target.Name+"."+ti.Name,
			fmt.Sprintf("Drop index '%s' from table '%s'", ti.Name, target.Name),
			dropIndexSQL(ti.Name),
			createIndexSQL(target.Name, ti),
			false,
		))
	}
}

func hasMatchingIndex(indexes []schema.Index, want *schema.Index) bool {
	for i := range indexes {
		idx := &indexes[i]
		if idx.Name == want.Name {
			return true
		}
		if slices.Equal(idx.Columns, want.Columns) && idx.IsUnique == want.IsUnique {
			return true
		}
	}
	return false
}
