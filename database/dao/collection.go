package dao

import (
	"context"

	"github.com/dropbox/sqlbricks/database/sqlbuilder"
)

// Collection lazily iterates the records selected by a query.  The query
// runs on the first call to Next.  Items can only be reached by iteration:
// the positional accessors return UnsupportedMutationError.
type Collection struct {
	ctx    context.Context
	exec   Executor
	entity *Entity
	query  *sqlbuilder.Select

	started bool
	cursor  Cursor
	current *Record
	err     error
}

func NewCollection(
	ctx context.Context,
	exec Executor,
	entity *Entity,
	query *sqlbuilder.Select) *Collection {

	return &Collection{
		ctx:    ctx,
		exec:   exec,
		entity: entity,
		query:  query,
	}
}

func (c *Collection) Entity() *Entity {
	return c.entity
}

// The underlying query.  Changes after iteration started have no effect.
func (c *Collection) Query() *sqlbuilder.Select {
	return c.query
}

// Filter adds WHERE fragments, e.g. users.C("name").Eq("john").
func (c *Collection) Filter(conditions ...interface{}) *Collection {
	c.query.AddWhere(conditions...)
	return c
}

func (c *Collection) start() {
	c.started = true
	sql, params := c.query.Render()
	c.cursor, c.err = c.exec.Query(c.ctx, sql, params)
}

// Next advances to the next record.  It returns false once the rows are
// exhausted or an error occurred, see Err.
func (c *Collection) Next() bool {
	if !c.started {
		c.start()
	}
	if c.err != nil || c.cursor == nil {
		return false
	}

	if !c.cursor.Next() {
		c.err = c.cursor.Err()
		c.closeCursor()
		return false
	}

	rec := NewRecord(c.entity)
	if err := rec.Load(c.cursor.Row()); err != nil {
		c.err = err
		c.closeCursor()
		return false
	}
	c.current = rec
	return true
}

// The record Next advanced to.
func (c *Collection) Record() *Record {
	return c.current
}

func (c *Collection) Err() error {
	return c.err
}

func (c *Collection) closeCursor() {
	if c.cursor == nil {
		return
	}
	if err := c.cursor.Close(); err != nil && c.err == nil {
		c.err = err
	}
	c.cursor = nil
}

// Close releases the cursor.  Safe to call more than once.
func (c *Collection) Close() error {
	c.closeCursor()
	return c.err
}

// All drains the collection.
func (c *Collection) All() ([]*Record, error) {
	defer c.closeCursor()

	var res []*Record
	for c.Next() {
		res = append(res, c.current)
	}
	return res, c.err
}

// First returns the next record and closes the collection.  NotFoundError is
// returned when there is none.
func (c *Collection) First() (*Record, error) {
	defer c.closeCursor()

	if c.Next() {
		return c.current, nil
	}
	if c.err != nil {
		return nil, c.err
	}
	return nil, newNotFound(c.entity.Name())
}

// Len counts the rows of the query without fetching them:
//
//	SELECT count(*) FROM (<query>) AS counted
func (c *Collection) Len() (int64, error) {
	sql, params := sqlbuilder.NewSelect().
		AddFields("count(*)").
		AddFrom(sqlbuilder.As(c.query, "counted")).
		Render()

	cursor, err := c.exec.Query(c.ctx, sql, params)
	if err != nil {
		return 0, err
	}
	defer func() { _ = cursor.Close() }()

	if !cursor.Next() {
		if err := cursor.Err(); err != nil {
			return 0, err
		}
		return 0, nil
	}
	var n int64
	if err := cursor.Row().Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (c *Collection) Index(i int) (*Record, error) {
	return nil, newUnsupportedMutation("index")
}

func (c *Collection) Remove(i int) error {
	return newUnsupportedMutation("remove")
}

func (c *Collection) Replace(i int, rec *Record) error {
	return newUnsupportedMutation("replace")
}
