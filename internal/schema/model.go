package schema

// Constraint types recognized by the model.
const (
	ConstraintPrimaryKey = "PRIMARY KEY"
	ConstraintUnique     = "UNIQUE"
)

// Model represents a complete snapshot of a database schema: its tables,
// a denormalized list of every table's indexes, and enum types.
// A Model is constructed once (by introspection or deserialization) and
// never mutated afterwards.
type Model struct {
	Tables  []Table    `json:"tables"`
	Indexes []Index    `json:"indexes"`
	Enums   []EnumType `json:"enums"`
}

// FindTable returns the table with the given name, or nil if absent.
func (m *Model) FindTable(name string) *Table {
	for i := range m.Tables {
		if m.Tables[i].Name == name {
			return &m.Tables[i]
		}
	}
	return nil
}

// FindEnum returns the enum type with the given name, or nil if absent.
func (m *Model) FindEnum(name string) *EnumType {
	for i := range m.Enums {
		if m.Enums[i].Name == name {
			return &m.Enums[i]
		}
	}
	return nil
}

// Table represents a database table.
type Table struct {
	Name              string       `json:"name"`
	Columns           []Column     `json:"columns"`
	PrimaryKey        *Constraint  `json:"primary_key"`
	UniqueConstraints []Constraint `json:"unique_constraints"`
	Indexes           []Index      `json:"indexes"`
}

// FindColumn returns the column with the given name, or nil if absent.
func (t *Table) FindColumn(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// FindConstraint returns the primary key or unique constraint with the
// given name, or nil if absent.
func (t *Table) FindConstraint(name string) *Constraint {
	if t.PrimaryKey != nil && t.PrimaryKey.Name == name {
		return t.PrimaryKey
	}
	for i := range t.UniqueConstraints {
		if t.UniqueConstraints[i].Name == name {
			return &t.UniqueConstraints[i]
		}
	}
	return nil
}

// FindIndex returns the index with the given name, or nil if absent.
func (t *Table) FindIndex(name string) *Index {
	for i := range t.Indexes {
		if t.Indexes[i].Name == name {
			return &t.Indexes[i]
		}
	}
	return nil
}

// Column represents a table column. DataType holds the canonical type
// string produced by introspection, length/precision included
// (e.g. "varchar(255)", "numeric(10,2)", "status_enum").
type Column struct {
	Name            string  `json:"name"`
	DataType        string  `json:"data_type"`
	IsNullable      bool    `json:"is_nullable"`
	DefaultValue    *string `json:"default_value"`
	OrdinalPosition int     `json:"ordinal_position"`
}

// SameDefinition reports whether two columns have the same definition,
// ignoring ordinal position.
func (c *Column) SameDefinition(other *Column) bool {
	return c.Name == other.Name &&
		c.DataType == other.DataType &&
		c.IsNullable == other.IsNullable &&
		equalDefaults(c.DefaultValue, other.DefaultValue)
}

func equalDefaults(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Constraint represents a PRIMARY KEY or UNIQUE constraint. Column order
// is significant for composite keys.
type Constraint struct {
	Name           string   `json:"name"`
	ConstraintType string   `json:"constraint_type"`
	Columns        []string `json:"columns"`
}

// Index represents a secondary index.
type Index struct {
	Name      string   `json:"name"`
	Columns   []string `json:"columns"`
	IsUnique  bool     `json:"is_unique"`
	IndexType string   `json:"index_type"`
}

// EnumType represents a PostgreSQL ENUM type. Values are kept in
// declaration sort order.
type EnumType struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}
