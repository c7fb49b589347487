// Modeling of columns

package sqlbuilder

import (
	"regexp"
	"sync"
)

// The value domain of a column.  Used to map struct fields onto columns.
type ColumnKind int

const (
	AnyKind ColumnKind = iota
	IntKind
	StrKind
	BoolKind
	DoubleKind
	DateTimeKind
	BytesKind
)

var columnKindNames = [...]string{
	AnyKind:      "any",
	IntKind:      "int",
	StrKind:      "str",
	BoolKind:     "bool",
	DoubleKind:   "double",
	DateTimeKind: "datetime",
	BytesKind:    "bytes",
}

func (k ColumnKind) String() string {
	if int(k) < len(columnKindNames) {
		return columnKindNames[k]
	}
	return "unknown"
}

type NullableColumn bool

const (
	Nullable      NullableColumn = true
	NotNullable   NullableColumn = false
	IsPrimaryKey                 = true
	NotPrimaryKey                = false
)

// Representation of a table column for query generation.  A column belongs
// to at most one table, which is recorded when the table is created.
type ColumnDef struct {
	name         string
	kind         ColumnKind
	nullable     NullableColumn
	isPrimaryKey bool
	table        string
}

// NewColumn panics if name is not a valid identifier.
func NewColumn(
	name string,
	kind ColumnKind,
	nullable NullableColumn,
	isPrimaryKey bool) *ColumnDef {

	if !validIdentifierName(name) {
		panic("Invalid column name in column: " + name)
	}
	return &ColumnDef{
		name:         name,
		kind:         kind,
		nullable:     nullable,
		isPrimaryKey: isPrimaryKey,
	}
}

func (c *ColumnDef) Name() string {
	return c.name
}

func (c *ColumnDef) Kind() ColumnKind {
	return c.kind
}

func (c *ColumnDef) IsNullable() bool {
	return bool(c.nullable)
}

func (c *ColumnDef) IsPrimaryKey() bool {
	return c.isPrimaryKey
}

// Returns the name of the owning table, or "" if the column is unbound.
func (c *ColumnDef) TableName() string {
	return c.table
}

// Ref returns the quoted reference "table"."column".
func (c *ColumnDef) Ref() Expression {
	return Column(c.table, c.name)
}

func (c *ColumnDef) String() string {
	return c.Ref().String()
}

func IntColumn(name string, nullable NullableColumn) *ColumnDef {
	return NewColumn(name, IntKind, nullable, NotPrimaryKey)
}

func IntColumnWithIsPrimaryKey(
	name string,
	nullable NullableColumn,
	isPrimaryKey bool) *ColumnDef {

	return NewColumn(name, IntKind, nullable, isPrimaryKey)
}

func StrColumn(name string, nullable NullableColumn) *ColumnDef {
	return NewColumn(name, StrKind, nullable, NotPrimaryKey)
}

func StrColumnWithIsPrimaryKey(
	name string,
	nullable NullableColumn,
	isPrimaryKey bool) *ColumnDef {

	return NewColumn(name, StrKind, nullable, isPrimaryKey)
}

func BoolColumn(name string, nullable NullableColumn) *ColumnDef {
	return NewColumn(name, BoolKind, nullable, NotPrimaryKey)
}

func DoubleColumn(name string, nullable NullableColumn) *ColumnDef {
	return NewColumn(name, DoubleKind, nullable, NotPrimaryKey)
}

func DateTimeColumn(name string, nullable NullableColumn) *ColumnDef {
	return NewColumn(name, DateTimeKind, nullable, NotPrimaryKey)
}

func BytesColumn(name string, nullable NullableColumn) *ColumnDef {
	return NewColumn(name, BytesKind, nullable, NotPrimaryKey)
}

// This is a strict subset of the actual allowed identifiers
var validIdentifierRegexp = regexp.MustCompile("^[a-zA-Z_]\\w*$")

// Holds strings as keys that have passed validation; value is nil.  Expected
// to be low enough cardinality to not need cache eviction.
var identifierValidationCache sync.Map
var useIdentifierValidationCache bool

// EnableIdentifierValidationCache must be called at the start of program execution,
// strictly prior to any other sqlbuilder functions. Use only if you know that the
// cardinality of the identifiers is negligible.
func EnableIdentifierValidationCache() {
	useIdentifierValidationCache = true
}

// Returns true if the given string is suitable as an identifier.
func validIdentifierName(name string) bool {
	if !useIdentifierValidationCache {
		return validIdentifierRegexp.MatchString(name)
	}

	if _, ok := identifierValidationCache.Load(name); ok {
		return true
	}
	ok := validIdentifierRegexp.MatchString(name)
	if ok {
		identifierValidationCache.Store(name, nil)
	}
	return ok
}
