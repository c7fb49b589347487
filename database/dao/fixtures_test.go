package dao

import (
	"context"

	"github.com/dropbox/sqlbricks/database/sqlbuilder"
	"github.com/dropbox/sqlbricks/errors"
)

func usersTable() *sqlbuilder.Table {
	return sqlbuilder.NewTable(
		"users",
		sqlbuilder.IntColumnWithIsPrimaryKey("id", sqlbuilder.NotNullable, sqlbuilder.IsPrimaryKey),
		sqlbuilder.StrColumn("name", sqlbuilder.NotNullable),
		sqlbuilder.IntColumn("age", sqlbuilder.Nullable))
}

func postsTable() *sqlbuilder.Table {
	return sqlbuilder.NewTable(
		"posts",
		sqlbuilder.IntColumnWithIsPrimaryKey("id", sqlbuilder.NotNullable, sqlbuilder.IsPrimaryKey),
		sqlbuilder.IntColumn("user_id", sqlbuilder.NotNullable),
		sqlbuilder.StrColumn("title", sqlbuilder.NotNullable))
}

func tagsTable() *sqlbuilder.Table {
	return sqlbuilder.NewTable(
		"tags",
		sqlbuilder.IntColumn("id", sqlbuilder.NotNullable),
		sqlbuilder.StrColumn("label", sqlbuilder.NotNullable))
}

// A registry with user -> posts (direct), post -> author (direct, single)
// and post -> tags (via post_tags).
func newTestRegistry() *Registry {
	user := MustEntity("user", usersTable())
	post := MustEntity("post", postsTable())
	tag := MustEntity("tag", tagsTable())

	must(user.AddRelationship(&Relationship{
		Name:       "posts",
		Entity:     "post",
		Mine:       "id",
		Theirs:     "user_id",
		Collection: true,
	}))
	must(post.AddRelationship(&Relationship{
		Name:   "author",
		Entity: "user",
		Mine:   "user_id",
		Theirs: "id",
	}))
	must(post.AddRelationship(&Relationship{
		Name:       "tags",
		Entity:     "tag",
		Mine:       "id",
		Theirs:     "id",
		Collection: true,
		ViaTable:   "post_tags",
		ViaMine:    "post_id",
		ViaTheirs:  "tag_id",
	}))

	registry, err := NewRegistry(user, post, tag)
	must(err)
	return registry
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func lookup(r *Registry, name string) *Entity {
	e, err := r.Lookup(name)
	must(err)
	return e
}

type fakeCursor struct {
	rows     []Row
	pos      int
	err      error
	closeErr error
	closed   bool
}

func (c *fakeCursor) Next() bool {
	if c.closed || c.pos >= len(c.rows) {
		return false
	}
	c.pos++
	return true
}

func (c *fakeCursor) Row() Row {
	return c.rows[c.pos-1]
}

func (c *fakeCursor) Err() error {
	return c.err
}

func (c *fakeCursor) Close() error {
	c.closed = true
	return c.closeErr
}

type call struct {
	sql    string
	params sqlbuilder.Params
}

// fakeExecutor records every statement and answers queries from a script of
// cursors, in order.
type fakeExecutor struct {
	queries  []call
	execs    []call
	cursors  []*fakeCursor
	queryErr error
	execErr  error
	affected int64
}

func (e *fakeExecutor) Query(
	ctx context.Context,
	sql string,
	params sqlbuilder.Params) (Cursor, error) {

	e.queries = append(e.queries, call{sql, params})
	if e.queryErr != nil {
		return nil, e.queryErr
	}
	if len(e.cursors) == 0 {
		return nil, errors.New("fakeExecutor: no cursor scripted")
	}
	c := e.cursors[0]
	e.cursors = e.cursors[1:]
	return c, nil
}

func (e *fakeExecutor) Exec(
	ctx context.Context,
	sql string,
	params sqlbuilder.Params) (int64, error) {

	e.execs = append(e.execs, call{sql, params})
	if e.execErr != nil {
		return 0, e.execErr
	}
	return e.affected, nil
}

func (e *fakeExecutor) script(rowSets ...[]Row) *fakeExecutor {
	for _, rows := range rowSets {
		e.cursors = append(e.cursors, &fakeCursor{rows: rows})
	}
	return e
}

func userRow(id int64, name string, age interface{}) Row {
	return NewRow(
		[]string{"id", "name", "age"},
		[]interface{}{id, name, age})
}
