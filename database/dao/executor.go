package dao

import (
	"context"

	"github.com/dropbox/sqlbricks/database/sqlbuilder"
	"github.com/dropbox/sqlbricks/database/sqltypes"
	"github.com/dropbox/sqlbricks/errors"
)

// Executor runs rendered statements.  sql carries :name placeholders bound by
// params, exactly as returned by sqlbuilder's Render.
type Executor interface {
	Query(ctx context.Context, sql string, params sqlbuilder.Params) (Cursor, error)

	// Returns the number of rows affected.
	Exec(ctx context.Context, sql string, params sqlbuilder.Params) (int64, error)
}

// Cursor iterates over the rows of a query result.  Close must be called once
// the caller is done, even after Next returns false.
type Cursor interface {
	Next() bool
	Row() Row
	Err() error
	Close() error
}

// A single result row: ordered column names and their values as returned by
// the driver.
type Row struct {
	columns []string
	values  []interface{}
}

// NewRow panics if columns and values differ in length.
func NewRow(columns []string, values []interface{}) Row {
	if len(columns) != len(values) {
		panic(errors.Newf(
			"row has %d columns but %d values",
			len(columns),
			len(values)))
	}
	return Row{columns: columns, values: values}
}

func (r Row) Len() int {
	return len(r.columns)
}

func (r Row) Columns() []string {
	return r.columns
}

func (r Row) Values() []interface{} {
	return r.values
}

// Get returns the value of the first column called name.
func (r Row) Get(name string) (interface{}, bool) {
	for i, col := range r.columns {
		if col == name {
			return r.values[i], true
		}
	}
	return nil, false
}

// Scan copies the row into dest, one pointer per column.  NULL values leave
// their destination untouched.  A *interface{} destination receives a
// sqltypes.Value.
func (r Row) Scan(dest ...interface{}) error {
	row := make([]sqltypes.Value, len(r.values))
	for i, raw := range r.values {
		v, err := sqltypes.BuildValue(raw)
		if err != nil {
			return errors.Wrapf(err, "column %s", r.columns[i])
		}
		row[i] = v
	}
	return sqltypes.ConvertAssignRowNullable(row, dest...)
}
