package sqlexec

import (
	"context"
	"database/sql"

	"github.com/dropbox/sqlbricks/database/dao"
	"github.com/dropbox/sqlbricks/database/sqlbuilder"
	"github.com/dropbox/sqlbricks/errors"
)

const (
	opQuery = "query"
	opExec  = "exec"
)

// Querier is satisfied by *sql.DB, *sql.Tx and *sql.Conn.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// DB executes statements through database/sql.  Safe for concurrent use when
// the underlying Querier is.
type DB struct {
	instrument
	q Querier
}

func NewDB(q Querier, opts ...Option) *DB {
	return &DB{
		instrument: newInstrument("database/sql", opts),
		q:          q,
	}
}

func (d *DB) Query(
	ctx context.Context,
	sqlText string,
	params sqlbuilder.Params) (dao.Cursor, error) {

	text, args, err := Compile(sqlText, params)
	if err != nil {
		return nil, err
	}

	start := d.begin()
	rows, err := d.q.QueryContext(ctx, text, args...)
	d.end(ctx, opQuery, text, len(args), start, err)
	if err != nil {
		return nil, errors.Wrapf(err, "sqlexec: query")
	}

	columns, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		return nil, errors.Wrapf(err, "sqlexec: query")
	}
	return &sqlCursor{rows: rows, columns: columns}, nil
}

func (d *DB) Exec(
	ctx context.Context,
	sqlText string,
	params sqlbuilder.Params) (int64, error) {

	text, args, err := Compile(sqlText, params)
	if err != nil {
		return 0, err
	}

	start := d.begin()
	res, err := d.q.ExecContext(ctx, text, args...)
	d.end(ctx, opExec, text, len(args), start, err)
	if err != nil {
		return 0, errors.Wrapf(err, "sqlexec: exec")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrapf(err, "sqlexec: rows affected")
	}
	return n, nil
}

type sqlCursor struct {
	rows    *sql.Rows
	columns []string
	row     dao.Row
	err     error
}

func (c *sqlCursor) Next() bool {
	if c.err != nil || !c.rows.Next() {
		return false
	}

	values := make([]interface{}, len(c.columns))
	dest := make([]interface{}, len(c.columns))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := c.rows.Scan(dest...); err != nil {
		c.err = errors.Wrapf(err, "sqlexec: scan")
		return false
	}
	c.row = dao.NewRow(c.columns, values)
	return true
}

func (c *sqlCursor) Row() dao.Row {
	return c.row
}

func (c *sqlCursor) Err() error {
	if c.err != nil {
		return c.err
	}
	if err := c.rows.Err(); err != nil {
		return errors.Wrapf(err, "sqlexec: rows")
	}
	return nil
}

func (c *sqlCursor) Close() error {
	if err := c.rows.Close(); err != nil {
		return errors.Wrapf(err, "sqlexec: close")
	}
	return nil
}
