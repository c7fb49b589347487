// Modeling of tables.  This is where query preparation starts

package sqlbuilder

import (
	"fmt"

	"github.com/lib/pq"

	"github.com/dropbox/sqlbricks/errors"
)

// Defines a physical table in the database.
// This function will panic if name is not valid, if there are no columns, or
// if a column already belongs to another table.
func NewTable(name string, columns ...*ColumnDef) *Table {
	if !validIdentifierName(name) {
		panic("Invalid table name")
	}
	if len(columns) == 0 {
		panic(fmt.Sprintf("Table %s has no columns", name))
	}

	t := &Table{
		name:         name,
		columns:      columns,
		columnLookup: make(map[string]*ColumnDef, len(columns)),
	}
	for _, c := range columns {
		if c.table != "" && c.table != name {
			panic(fmt.Sprintf(
				"Column %s already belongs to table %s", c.name, c.table))
		}
		if _, ok := t.columnLookup[c.name]; ok {
			panic(fmt.Sprintf("Duplicate column %s in table %s", c.name, name))
		}
		c.table = name
		t.columnLookup[c.name] = c
	}

	return t
}

type Table struct {
	name         string
	alias        string
	columns      []*ColumnDef
	columnLookup map[string]*ColumnDef
}

// Returns the table's name in the database
func (t *Table) Name() string {
	return t.name
}

func (t *Table) Alias() string {
	return t.alias
}

// Returns a copy of this table which is referred to by alias.
func (t *Table) As(alias string) *Table {
	if !validIdentifierName(alias) {
		panic("Invalid table alias")
	}
	newTable := *t
	newTable.alias = alias
	return &newTable
}

// Returns a list of the table's columns
func (t *Table) Columns() []*ColumnDef {
	return t.columns
}

// Returns the specified column, or errors if it doesn't exist in the table
func (t *Table) Column(name string) (*ColumnDef, error) {
	if c, ok := t.columnLookup[name]; ok {
		return c, nil
	}
	return nil, errors.Newf("No such column '%s' in table '%s'", name, t.name)
}

// Returns the first primary key column, or nil.
func (t *Table) PrimaryKey() *ColumnDef {
	for _, c := range t.columns {
		if c.isPrimaryKey {
			return c
		}
	}
	return nil
}

func (t *Table) refName() string {
	if t.alias != "" {
		return t.alias
	}
	return t.name
}

// Returns a reference to the named column, qualified by the alias if one is
// set.  Unknown columns are left for the database to reject.
func (t *Table) C(name string) Expression {
	return Column(t.refName(), name)
}

// Returns all columns for a table as a slice of projections
func (t *Table) Projections() []interface{} {
	result := make([]interface{}, 0, len(t.columns))
	for _, col := range t.columns {
		result = append(result, t.C(col.name))
	}
	return result
}

// The FROM form of the table: "name" or "name" AS "alias".
func (t *Table) String() string {
	if t.alias != "" {
		return pq.QuoteIdentifier(t.name) + " AS " + pq.QuoteIdentifier(t.alias)
	}
	return pq.QuoteIdentifier(t.name)
}

// Generates a select query on the current table.  Without projections every
// column is selected.
func (t *Table) Select(projections ...interface{}) *Select {
	if len(projections) == 0 {
		projections = t.Projections()
	}
	return NewSelect().AddFields(projections...).AddFrom(t)
}

// Creates the text of an inner join against table using onCondition.
func (t *Table) InnerJoinOn(table *Table, onCondition interface{}) Literal {
	return InnerJoin(table, onCondition)
}

// Creates the text of a left join against table using onCondition.
func (t *Table) LeftJoinOn(table *Table, onCondition interface{}) Literal {
	return LeftJoin(table, onCondition)
}

func (t *Table) Insert() *Insert {
	return NewInsert(pq.QuoteIdentifier(t.name))
}

func (t *Table) Update() *Update {
	u := NewUpdate(pq.QuoteIdentifier(t.name))
	if t.alias != "" {
		u.As(pq.QuoteIdentifier(t.alias))
	}
	return u
}

func (t *Table) Delete() *Delete {
	d := NewDelete(pq.QuoteIdentifier(t.name))
	if t.alias != "" {
		d.As(pq.QuoteIdentifier(t.alias))
	}
	return d
}
