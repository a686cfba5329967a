package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/tordrt/pgdrift/internal/schema"
)

// Introspector reads the live layout of a database's public schema into
// a schema model
type Introspector struct {
	client *PostgresClient
}

// NewIntrospector creates a new schema introspector
func NewIntrospector(client *PostgresClient) *Introspector {
	return &Introspector{client: client}
}

// Introspect captures tables, columns, constraints, indexes and enum
// types from the public schema. The returned model's table list and the
// per-table object lists follow the database's own ordering, so two
// captures of an unchanged database are identical.
func (i *Introspector) Introspect(ctx context.Context) (*schema.Model, error) {
	enums, err := i.getEnums(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get enum types: %w", err)
	}

	tableNames, err := i.getTableNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get table names: %w", err)
	}

	model := &schema.Model{Enums: enums}

	for _, tableName := range tableNames {
		table, err := i.introspectTable(ctx, tableName)
		if err != nil {
			return nil, fmt.Errorf("failed to introspect table %s: %w", tableName, err)
		}
		model.Tables = append(model.Tables, *table)
		model.Indexes = append(model.Indexes, table.Indexes...)
	}

	return model, nil
}

func (i *Introspector) introspectTable(ctx context.Context, tableName string) (*schema.Table, error) {
	table := &schema.Table{Name: tableName}

	columns, err := i.getColumns(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}
	table.Columns = columns

	pk, err := i.getPrimaryKey(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to get primary key: %w", err)
	}
	table.PrimaryKey = pk

	uniques, err := i.getUniqueConstraints(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to get unique constraints: %w", err)
	}
	table.UniqueConstraints = uniques

	indexes, err := i.getIndexes(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to get indexes: %w", err)
	}
	table.Indexes = indexes

	return table, nil
}

// getEnums returns all enum types with their values in declared order
func (i *Introspector) getEnums(ctx context.Context) ([]schema.EnumType, error) {
	query := `
		SELECT
			t.typname AS enum_name,
			array_agg(e.enumlabel ORDER BY e.enumsortorder) AS enum_values
		FROM pg_type t
		JOIN pg_enum e ON t.oid = e.enumtypid
		JOIN pg_namespace n ON n.oid = t.typnamespace
		WHERE n.nspname = 'public'
		GROUP BY t.typname
		ORDER BY t.typname
	`

	rows, err := i.client.GetConnection().Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var enums []schema.EnumType
	for rows.Next() {
		var enum schema.EnumType
		if err := rows.Scan(&enum.Name, &enum.Values); err != nil {
			return nil, err
		}
		enums = append(enums, enum)
	}

	return enums, rows.Err()
}

func (i *Introspector) getTableNames(ctx context.Context) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public'
			AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := i.client.GetConnection().Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tables = append(tables, tableName)
	}

	return tables, rows.Err()
}

func (i *Introspector) getColumns(ctx context.Context, tableName string) ([]schema.Column, error) {
	query := `
		SELECT
			column_name,
			data_type,
			udt_name,
			is_nullable,
			column_default,
			ordinal_position,
			character_maximum_length,
			numeric_precision,
			numeric_scale
		FROM information_schema.columns
		WHERE table_schema = 'public'
			AND table_name = $1
		ORDER BY ordinal_position
	`

	rows, err := i.client.GetConnection().Query(ctx, query, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []schema.Column
	for rows.Next() {
		var col schema.Column
		var dataType, udtName, nullable string
		var charMaxLen, numericPrecision, numericScale *int

		if err := rows.Scan(&col.Name, &dataType, &udtName, &nullable, &col.DefaultValue,
			&col.OrdinalPosition, &charMaxLen, &numericPrecision, &numericScale); err != nil {
			return nil, err
		}

		col.DataType = canonicalType(dataType, udtName, charMaxLen, numericPrecision, numericScale)
		col.IsNullable = nullable == "YES"

		columns = append(columns, col)
	}

	return columns, rows.Err()
}

// canonicalType collapses information_schema's verbose type spellings
// into the form the generated SQL uses: varchar/char/numeric carry their
// modifiers, arrays become "<element>[]" from the udt name, and
// user-defined types are named by their udt name.
func canonicalType(dataType, udtName string, charMaxLen, numericPrecision, numericScale *int) string {
	switch dataType {
	case "character varying":
		if charMaxLen != nil {
			return fmt.Sprintf("varchar(%d)", *charMaxLen)
		}
		return "varchar"
	case "character":
		if charMaxLen != nil {
			return fmt.Sprintf("char(%d)", *charMaxLen)
		}
		return "char"
	case "numeric":
		switch {
		case numericPrecision != nil && numericScale != nil && *numericScale > 0:
			return fmt.Sprintf("numeric(%d,%d)", *numericPrecision, *numericScale)
		case numericPrecision != nil:
			return fmt.Sprintf("numeric(%d)", *numericPrecision)
		default:
			return "numeric"
		}
	case "ARRAY":
		return strings.TrimPrefix(udtName, "_") + "[]"
	case "USER-DEFINED":
		return udtName
	default:
		return dataType
	}
}

func (i *Introspector) getPrimaryKey(ctx context.Context, tableName string) (*schema.Constraint, error) {
	query := `
		SELECT
			tc.constraint_name,
			kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		WHERE tc.table_schema = 'public'
			AND tc.table_name = $1
			AND tc.constraint_type = 'PRIMARY KEY'
		ORDER BY kcu.ordinal_position
	`

	rows, err := i.client.GetConnection().Query(ctx, query, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pk *schema.Constraint
	for rows.Next() {
		var constraintName, columnName string
		if err := rows.Scan(&constraintName, &columnName); err != nil {
			return nil, err
		}
		if pk == nil {
			pk = &schema.Constraint{
				Name:           constraintName,
				ConstraintType: schema.ConstraintPrimaryKey,
			}
		}
		pk.Columns = append(pk.Columns, columnName)
	}

	return pk, rows.Err()
}

func (i *Introspector) getUniqueConstraints(ctx context.Context, tableName string) ([]schema.Constraint, error) {
	namesQuery := `
		SELECT DISTINCT tc.constraint_name
		FROM information_schema.table_constraints tc
		WHERE tc.table_schema = 'public'
			AND tc.table_name = $1
			AND tc.constraint_type = 'UNIQUE'
		ORDER BY tc.constraint_name
	`

	rows, err := i.client.GetConnection().Query(ctx, namesQuery, tableName)
	if err != nil {
		return nil, err
	}

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, err
		}
		names = append(names, name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	columnsQuery := `
		SELECT kcu.column_name
		FROM information_schema.key_column_usage kcu
		WHERE kcu.table_schema = 'public'
			AND kcu.table_name = $1
			AND kcu.constraint_name = $2
		ORDER BY kcu.ordinal_position
	`

	var constraints []schema.Constraint
	for _, name := range names {
		colRows, err := i.client.GetConnection().Query(ctx, columnsQuery, tableName, name)
		if err != nil {
			return nil, err
		}

		constraint := schema.Constraint{
			Name:           name,
			ConstraintType: schema.ConstraintUnique,
		}
		for colRows.Next() {
			var columnName string
			if err := colRows.Scan(&columnName); err != nil {
				colRows.Close()
				return nil, err
			}
			constraint.Columns = append(constraint.Columns, columnName)
		}
		colRows.Close()
		if err := colRows.Err(); err != nil {
			return nil, err
		}

		constraints = append(constraints, constraint)
	}

	return constraints, nil
}

// getIndexes returns the table's secondary indexes. Indexes backing the
// primary key or a unique constraint are excluded; those surface as
// constraints instead.
func (i *Introspector) getIndexes(ctx context.Context, tableName string) ([]schema.Index, error) {
	query := `
		SELECT
			i.relname AS index_name,
			am.amname AS index_type,
			ix.indisunique AS is_unique,
			array_agg(a.attname ORDER BY array_position(ix.indkey, a.attnum)) AS columns
		FROM pg_class t
		JOIN pg_index ix ON t.oid = ix.indrelid
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_am am ON i.relam = am.oid
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
		JOIN pg_namespace n ON t.relnamespace = n.oid
		WHERE n.nspname = 'public'
			AND t.relname = $1
			AND NOT ix.indisprimary
			AND NOT EXISTS (
				SELECT 1 FROM pg_constraint c
				WHERE c.conindid = ix.indexrelid AND c.contype = 'u'
			)
		GROUP BY i.relname, am.amname, ix.indisunique
		ORDER BY i.relname
	`

	rows, err := i.client.GetConnection().Query(ctx, query, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indexes []schema.Index
	for rows.Next() {
		var idx schema.Index
		if err := rows.Scan(&idx.Name, &idx.IndexType, &idx.IsUnique, &idx.Columns); err != nil {
			return nil, err
		}
		indexes = append(indexes, idx)
	}

	return indexes, rows.Err()
}
