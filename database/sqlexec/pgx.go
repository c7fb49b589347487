package sqlexec

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dropbox/sqlbricks/database/dao"
	"github.com/dropbox/sqlbricks/database/sqlbuilder"
	"github.com/dropbox/sqlbricks/errors"
)

// PgxQuerier is satisfied by *pgx.Conn, *pgxpool.Pool and pgx.Tx.
type PgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Pgx executes statements through pgx.  Safe for concurrent use when the
// underlying querier is, e.g. a pool.
type Pgx struct {
	instrument
	q PgxQuerier
}

func NewPgx(q PgxQuerier, opts ...Option) *Pgx {
	return &Pgx{
		instrument: newInstrument("pgx", opts),
		q:          q,
	}
}

func (p *Pgx) Query(
	ctx context.Context,
	sqlText string,
	params sqlbuilder.Params) (dao.Cursor, error) {

	text, args, err := Compile(sqlText, params)
	if err != nil {
		return nil, err
	}

	start := p.begin()
	rows, err := p.q.Query(ctx, text, args...)
	p.end(ctx, opQuery, text, len(args), start, err)
	if err != nil {
		return nil, errors.Wrapf(err, "sqlexec: query")
	}

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}
	return &pgxCursor{rows: rows, columns: columns}, nil
}

func (p *Pgx) Exec(
	ctx context.Context,
	sqlText string,
	params sqlbuilder.Params) (int64, error) {

	text, args, err := Compile(sqlText, params)
	if err != nil {
		return 0, err
	}

	start := p.begin()
	tag, err := p.q.Exec(ctx, text, args...)
	p.end(ctx, opExec, text, len(args), start, err)
	if err != nil {
		return 0, errors.Wrapf(err, "sqlexec: exec")
	}
	return tag.RowsAffected(), nil
}

type pgxCursor struct {
	rows    pgx.Rows
	columns []string
	row     dao.Row
	err     error
}

func (c *pgxCursor) Next() bool {
	if c.err != nil || !c.rows.Next() {
		return false
	}
	values, err := c.rows.Values()
	if err != nil {
		c.err = errors.Wrapf(err, "sqlexec: values")
		return false
	}
	c.row = dao.NewRow(c.columns, values)
	return true
}

func (c *pgxCursor) Row() dao.Row {
	return c.row
}

func (c *pgxCursor) Err() error {
	if c.err != nil {
		return c.err
	}
	if err := c.rows.Err(); err != nil {
		return errors.Wrapf(err, "sqlexec: rows")
	}
	return nil
}

// pgx reports deferred query errors once the rows are closed.
func (c *pgxCursor) Close() error {
	c.rows.Close()
	if err := c.rows.Err(); err != nil && c.err == nil {
		return errors.Wrapf(err, "sqlexec: rows")
	}
	return nil
}
