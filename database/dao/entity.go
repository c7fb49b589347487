package dao

import (
	"github.com/lib/pq"

	"github.com/dropbox/sqlbricks/container/linked_hashmap"
	"github.com/dropbox/sqlbricks/database/sqlbuilder"
	"github.com/dropbox/sqlbricks/errors"
)

// The primary key used when the table declares none.
const DefaultPrimary = "id"

// Entity describes how records of one kind map onto a table.
type Entity struct {
	name          string
	table         *sqlbuilder.Table
	primary       string
	fields        []string
	fieldLookup   map[string]struct{}
	relationships *linked_hashmap.LinkedHashmap[*Relationship]
}

// NewEntity declares an entity over table.  Every column of the table is a
// mapped field.  The primary key is the table's primary key column, or
// DefaultPrimary.
func NewEntity(name string, table *sqlbuilder.Table) (*Entity, error) {
	if name == "" {
		return nil, errors.New("Entity name must not be empty")
	}
	if table == nil {
		return nil, errors.Newf("Entity '%s' has no table", name)
	}

	e := &Entity{
		name:          name,
		table:         table,
		primary:       DefaultPrimary,
		fieldLookup:   make(map[string]struct{}),
		relationships: linked_hashmap.NewLinkedHashmap[*Relationship](2),
	}
	for _, col := range table.Columns() {
		e.fields = append(e.fields, col.Name())
		e.fieldLookup[col.Name()] = struct{}{}
	}
	if pk := table.PrimaryKey(); pk != nil {
		e.primary = pk.Name()
	}
	if !e.HasField(e.primary) {
		return nil, errors.Newf(
			"Entity '%s' does not map its primary key '%s'",
			name,
			e.primary)
	}
	return e, nil
}

// Same as NewEntity, but panics on error.  Meant for package level
// declarations.
func MustEntity(name string, table *sqlbuilder.Table) *Entity {
	e, err := NewEntity(name, table)
	if err != nil {
		panic(err)
	}
	return e
}

func (e *Entity) Name() string {
	return e.name
}

func (e *Entity) Table() *sqlbuilder.Table {
	return e.table
}

func (e *Entity) TableName() string {
	return e.table.Name()
}

func (e *Entity) Primary() string {
	return e.primary
}

// Mapped fields in table column order.
func (e *Entity) Fields() []string {
	return e.fields
}

func (e *Entity) HasField(name string) bool {
	_, ok := e.fieldLookup[name]
	return ok
}

// ColumnRef returns the qualified reference "table"."field".  Unknown fields
// are an error.
func (e *Entity) ColumnRef(field string) (sqlbuilder.Expression, error) {
	if !e.HasField(field) {
		return sqlbuilder.Expression{}, newUnknownField(e.name, field)
	}
	return sqlbuilder.Column(e.table.Name(), field), nil
}

// Projections returns "table"."field" for every mapped field.
func (e *Entity) Projections() []interface{} {
	result := make([]interface{}, len(e.fields))
	for i, field := range e.fields {
		result[i] = sqlbuilder.Column(e.table.Name(), field)
	}
	return result
}

// Returning returns the quoted names of every mapped field, for RETURNING.
func (e *Entity) Returning() []interface{} {
	result := make([]interface{}, len(e.fields))
	for i, field := range e.fields {
		result[i] = pq.QuoteIdentifier(field)
	}
	return result
}

// AddRelationship attaches rel under rel.Name.  The local key must be a
// mapped field; the target entity is resolved lazily through a Registry.
func (e *Entity) AddRelationship(rel *Relationship) error {
	if rel.Name == "" {
		return errors.Newf("Relationship on '%s' has no name", e.name)
	}
	if !e.HasField(rel.Mine) {
		return newUnknownField(e.name, rel.Mine)
	}
	e.relationships.Put(rel.Name, rel)
	return nil
}

func (e *Entity) Relationship(name string) (*Relationship, error) {
	rel, ok := e.relationships.Get(name)
	if !ok {
		return nil, newUnknownRelationship(e.name, name)
	}
	return rel, nil
}

// Relationship names in declaration order.
func (e *Entity) Relationships() []string {
	return e.relationships.Keys()
}
