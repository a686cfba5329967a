package diff

import "strings"

// builtinTypes holds the PostgreSQL built-in type names that may appear
// unquoted in generated DDL. Anything not in this set is assumed to be a
// user-defined type (usually an enum) and gets quoted.
var builtinTypes = map[string]struct{}{
	"integer": {}, "int": {}, "int4": {}, "int8": {}, "int2": {},
	"smallint": {}, "bigint": {},
	"serial": {}, "serial4": {}, "serial8": {}, "smallserial": {}, "bigserial": {},
	"text": {}, "varchar": {}, "character varying": {}, "char": {}, "character": {}, "bpchar": {},
	"boolean": {}, "bool": {},
	"real": {}, "float4": {}, "double precision": {}, "float8": {}, "numeric": {}, "decimal": {},
	"date": {}, "time": {}, "timetz": {}, "timestamp": {}, "timestamptz": {},
	"timestamp without time zone": {}, "timestamp with time zone": {},
	"time without time zone": {}, "time with time zone": {},
	"uuid": {}, "json": {}, "jsonb": {}, "xml": {}, "bytea": {},
	"bit": {}, "bit varying": {}, "varbit": {},
	"inet": {}, "cidr": {}, "macaddr": {}, "macaddr8": {},
	"money": {}, "interval": {},
	"point": {}, "line": {}, "lseg": {}, "box": {}, "path": {}, "polygon": {}, "circle": {},
	"tsquery": {}, "tsvector": {},
	"oid": {}, "name": {}, "regclass": {}, "regtype": {},
}

// isBuiltinType reports whether dataType names a PostgreSQL built-in type.
// Array suffixes and type modifiers are stripped before the lookup, so
// "varchar(255)" and "integer[]" both count as built-in.
func isBuiltinType(dataType string) bool {
	base := strings.ToLower(dataType)
	for strings.HasSuffix(base, "[]") {
		base = strings.TrimSuffix(base, "[]")
	}
	if i := strings.IndexByte(base, '('); i >= 0 {
		base = base[:i]
	}
	_, ok := builtinTypes[strings.TrimSpace(base)]
	return ok
}

// formatDataType renders a type name for use in DDL, quoting user-defined
// types so enums with reserved or mixed-case names stay valid.
func formatDataType(dataType string) string {
	if isBuiltinType(dataType) {
		return dataType
	}
	return quoteIdent(dataType)
}

// quoteIdent wraps an identifier in double quotes. Identifiers are always
// quoted in generated SQL regardless of whether they need it.
func quoteIdent(name string) string {
	return `"` + name + `"`
}

// quoteJoin quotes each identifier and joins them for a column list.
func quoteJoin(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quoteIdent(n)
	}
	return strings.Join(quoted, ", ")
}
