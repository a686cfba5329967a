package diff

import (
	"fmt"
	"strings"

	"github.com/tordrt/pgdrift/internal/schema"
)

func createEnumSQL(enum *schema.EnumType) string {
	values := make([]string, len(enum.Values))
	for i, v := range enum.Values {
		values[i] = "'" + v + "'"
	}
	return fmt.Sprintf("CREATE TYPE %s AS ENUM (%s);", quoteIdent(enum.Name), strings.Join(values, ", "))
}

func dropEnumSQL(name string) string {
	return fmt.Sprintf("DROP TYPE IF EXISTS %s CASCADE;", quoteIdent(name))
}

func dropTableSQL(name string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE;", quoteIdent(name))
}

// createTableSQL renders a full CREATE TABLE statement including inline
// primary key and unique constraints, followed by CREATE INDEX statements
// for the table's indexes. Sequences referenced by column defaults are
// created up front so the defaults resolve.
func createTableSQL(table *schema.Table) string {
	var sql strings.Builder

	for i := range table.Columns {
		col := &table.Columns[i]
		if col.DefaultValue == nil {
			continue
		}
		if seq := sequenceName(*col.DefaultValue); seq != "" {
			fmt.Fprintf(&sql, "CREATE SEQUENCE IF NOT EXISTS %s;\n", quoteIdent(seq))
		}
	}

	fmt.Fprintf(&sql, "CREATE TABLE %s (\n", quoteIdent(table.Name))

	parts := make([]string, 0, len(table.Columns)+1+len(table.UniqueConstraints))
	for i := range table.Columns {
		parts = append(parts, "    "+columnDefinition(&table.Columns[i]))
	}
	if pk := table.PrimaryKey; pk != nil {
		parts = append(parts, fmt.Sprintf("    CONSTRAINT %s PRIMARY KEY (%s)", quoteIdent(pk.Name), quoteJoin(pk.Columns)))
	}
	for i := range table.UniqueConstraints {
		uc := &table.UniqueConstraints[i]
		parts = append(parts, fmt.Sprintf("    CONSTRAINT %s UNIQUE (%s)", quoteIdent(uc.Name), quoteJoin(uc.Columns)))
	}

	sql.WriteString(strings.Join(parts, ",\n"))
	sql.WriteString("\n);\n")

	for i := range table.Indexes {
		sql.WriteString(createIndexSQL(table.Name, &table.Indexes[i]))
		sql.WriteByte('\n')
	}

	return sql.String()
}

// columnDefinition renders one column for CREATE TABLE. Columns whose
// default is a nextval over a *_seq sequence are rewritten to the matching
// SERIAL pseudo-type instead of carrying the default verbatim.
func columnDefinition(col *schema.Column) string {
	if col.DefaultValue != nil && isSerialDefault(*col.DefaultValue) {
		def := quoteIdent(col.Name) + " " + serialType(col.DataType)
		if !col.IsNullable {
			def += " NOT NULL"
		}
		return def
	}

	def := quoteIdent(col.Name) + " " + formatDataType(col.DataType)
	if !col.IsNullable {
		def += " NOT NULL"
	}
	if col.DefaultValue != nil {
		def += " DEFAULT " + *col.DefaultValue
	}
	return def
}

func serialType(dataType string) string {
	switch dataType {
	case "bigint":
		return "BIGSERIAL"
	case "smallint":
		return "SMALLSERIAL"
	default:
		return "SERIAL"
	}
}

func isSerialDefault(defaultValue string) bool {
	lower := strings.ToLower(defaultValue)
	return strings.Contains(lower, "nextval(") && strings.Contains(lower, "_seq")
}

// sequenceName extracts the bare sequence name from a default like
// nextval('public.users_id_seq'::regclass). Returns "" when the default
// is not a nextval call or carries no quoted sequence name.
func sequenceName(defaultValue string) string {
	if !strings.Contains(strings.ToLower(defaultValue), "nextval(") {
		return ""
	}
	start := strings.IndexByte(defaultValue, '\'')
	if start < 0 {
		return ""
	}
	rest := defaultValue[start+1:]
	end := strings.IndexByte(rest, '\'')
	if end < 0 {
		return ""
	}
	seq := rest[:end]
	if i := strings.LastIndexByte(seq, '.'); i >= 0 {
		seq = seq[i+1:]
	}
	return seq
}

// addColumnSQL renders ALTER TABLE ... ADD COLUMN, with the same SERIAL
// rewrite and sequence preamble as createTableSQL.
func addColumnSQL(tableName string, col *schema.Column) string {
	var sql strings.Builder

	if col.DefaultValue != nil {
		if seq := sequenceName(*col.DefaultValue); seq != "" {
			fmt.Fprintf(&sql, "CREATE SEQUENCE IF NOT EXISTS %s;\n", quoteIdent(seq))
		}
		if isSerialDefault(*col.DefaultValue) {
			fmt.Fprintf(&sql, "ALTER TABLE %s ADD COLUMN %s %s", quoteIdent(tableName), quoteIdent(col.Name), serialType(col.DataType))
			if !col.IsNullable {
				sql.WriteString(" NOT NULL")
			}
			sql.WriteByte(';')
			return sql.String()
		}
	}

	fmt.Fprintf(&sql, "ALTER TABLE %s ADD COLUMN %s %s", quoteIdent(tableName), quoteIdent(col.Name), formatDataType(col.DataType))
	if !col.IsNullable {
		sql.WriteString(" NOT NULL")
	}
	if col.DefaultValue != nil {
		sql.WriteString(" DEFAULT " + *col.DefaultValue)
	}
	sql.WriteByte(';')
	return sql.String()
}

func dropColumnSQL(tableName, columnName string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN IF EXISTS %s;", quoteIdent(tableName), quoteIdent(columnName))
}

// alterColumnSQL renders the forward and reverse statements for an
// in-place column change. Each differing aspect contributes one ALTER
// clause per direction; type changes carry a USING cast.
func alterColumnSQL(tableName string, source, target *schema.Column) (string, string) {
	var upParts, downParts []string
	table := quoteIdent(tableName)
	column := quoteIdent(source.Name)

	if source.DataType != target.DataType {
		sourceType := formatDataType(source.DataType)
		targetType := formatDataType(target.DataType)
		upParts = append(upParts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s USING %s::%s", table, column, sourceType, column, sourceType))
		downParts = append(downParts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s USING %s::%s", table, column, targetType, column, targetType))
	}

	if source.IsNullable != target.IsNullable {
		if source.IsNullable {
			upParts = append(upParts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP NOT NULL", table, column))
			downParts = append(downParts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET NOT NULL", table, column))
		} else {
			upParts = append(upParts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET NOT NULL", table, column))
			downParts = append(downParts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP NOT NULL", table, column))
		}
	}

	if !sameDefault(source.DefaultValue, target.DefaultValue) {
		if source.DefaultValue != nil {
			upParts = append(upParts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s", table, column, *source.DefaultValue))
		} else {
			upParts = append(upParts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT", table, column))
		}
		if target.DefaultValue != nil {
			downParts = append(downParts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s", table, column, *target.DefaultValue))
		} else {
			downParts = append(downParts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT", table, column))
		}
	}

	return terminateAll(upParts), terminateAll(downParts)
}

func terminateAll(stmts []string) string {
	out := make([]string, len(stmts))
	for i, s := range stmts {
		out[i] = s + ";"
	}
	return strings.Join(out, "\n")
}

// createIndexSQL renders CREATE INDEX. The access method is only spelled
// out for non-btree indexes since btree is the PostgreSQL default.
func createIndexSQL(tableName string, index *schema.Index) string {
	unique := ""
	if index.IsUnique {
		unique = "UNIQUE "
	}
	using := ""
	if index.IndexType != "btree" {
		using = " USING " + index.IndexType
	}
	return fmt.Sprintf("CREATE %sINDEX %s ON %s%s (%s);", unique, quoteIdent(index.Name), quoteIdent(tableName), using, quoteJoin(index.Columns))
}

func dropIndexSQL(name string) string {
	return fmt.Sprintf("DROP INDEX IF EXISTS %s;", quoteIdent(name))
}

// describeColumnChanges summarizes what changed between two versions of a
// column, target first so the text reads current -> desired.
func describeColumnChanges(source, target *schema.Column) string {
	var changes []string

	if source.DataType != target.DataType {
		changes = append(changes, fmt.Sprintf("type: %s -> %s", target.DataType, source.DataType))
	}
	if source.IsNullable != target.IsNullable {
		changes = append(changes, fmt.Sprintf("nullable: %t -> %t", target.IsNullable, source.IsNullable))
	}
	if !sameDefault(source.DefaultValue, target.DefaultValue) {
		changes = append(changes, fmt.Sprintf("default: %s -> %s", describeDefault(target.DefaultValue), describeDefault(source.DefaultValue)))
	}

	return fmt.Sprintf("Modify column '%s': %s", source.Name, strings.Join(changes, ", "))
}

func describeDefault(value *string) string {
	if value == nil {
		return "none"
	}
	return *value
}

func sameDefault(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// formatValueList renders enum values for details text, e.g. ["a", "b"].
func formatValueList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = `"` + v + `"`
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
