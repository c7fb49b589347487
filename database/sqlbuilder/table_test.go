package sqlbuilder

import (
	gc "gopkg.in/check.v1"

	. "github.com/dropbox/sqlbricks/gocheck2"
)

type TableSuite struct {
}

var _ = gc.Suite(&TableSuite{})

// NOTE: tables / columns are defined in test_utils_test.go

func (s *TableSuite) TestBasicColumns(c *gc.C) {
	cols := users.Columns()

	c.Assert(len(cols), gc.Equals, 3)
	c.Assert(cols[0], gc.Equals, usersId)
	c.Assert(cols[1], gc.Equals, usersName)
	c.Assert(cols[2], gc.Equals, usersAge)
	c.Assert(users.Name(), gc.Equals, "users")
	c.Assert(users.PrimaryKey(), gc.Equals, usersId)
}

func (s *TableSuite) TestColumnLookup(c *gc.C) {
	col, err := users.Column("age")
	c.Assert(err, gc.IsNil)
	c.Assert(col, gc.Equals, usersAge)

	_, err = users.Column("foo")
	c.Assert(err, gc.NotNil)
	c.Assert(err, gc.ErrorMatches, "No such column 'foo' in table 'users'(?s).*")
}

func (s *TableSuite) TestC(c *gc.C) {
	c.Assert(users.C("name").String(), gc.Equals, `"users"."name"`)
	c.Assert(users.As("u").C("name").String(), gc.Equals, `"u"."name"`)
}

func (s *TableSuite) TestAlias(c *gc.C) {
	aliased := users.As("u")

	c.Assert(aliased.Alias(), gc.Equals, "u")
	c.Assert(aliased.String(), gc.Equals, `"users" AS "u"`)
	c.Assert(users.Alias(), gc.Equals, "")
	c.Assert(users.String(), gc.Equals, `"users"`)

	c.Assert(func() { users.As("bad alias") }, gc.PanicMatches, "Invalid table alias")
}

func (s *TableSuite) TestSelectAllColumns(c *gc.C) {
	c.Assert(
		users.Select().String(),
		SqlEquals,
		`SELECT "users"."id", "users"."name", "users"."age"`+"\n"+`FROM "users"`)
}

func (s *TableSuite) TestSelectJoin(c *gc.C) {
	q := users.Select(users.C("id"), posts.C("title")).
		AddJoin(users.InnerJoinOn(posts, posts.C("user_id").Eq(users.C("id"))))

	c.Assert(
		q.String(),
		SqlEquals,
		`SELECT "users"."id", "posts"."title"`+"\n"+
			`FROM "users"`+"\n"+
			`JOIN "posts" ON ("posts"."user_id" = "users"."id")`)

	q = users.Select(users.C("id")).
		AddJoin(users.LeftJoinOn(posts.As("p"), Literal(`"p"."user_id" = "users"."id"`)))
	c.Assert(
		q.String(),
		SqlEquals,
		`SELECT "users"."id"`+"\n"+
			`FROM "users"`+"\n"+
			`LEFT JOIN "posts" AS "p" ON "p"."user_id" = "users"."id"`)
}

func (s *TableSuite) TestWriteStatements(c *gc.C) {
	c.Assert(
		users.Insert().Value("name", "bob").String(),
		SqlEquals,
		`INSERT INTO "users"`+"\n(name) VALUES (:name)")
	c.Assert(
		users.As("u").Update().Set("age", 3).String(),
		SqlEquals,
		`UPDATE "users" AS "u"`+"\nSET age = :age")

	sql, params := users.Delete().AddWhereEq(users.C("id"), 1).Render()
	c.Assert(sql, SqlEquals, `DELETE FROM "users"`+"\n"+`WHERE ("users"."id" = :users_id)`)
	c.Assert(params, ParamsEqual, Params{"users_id": 1})

	c.Assert(
		posts.As("p").Delete().String(),
		gc.Equals,
		`DELETE FROM "posts" AS "p"`)
}

func (s *TableSuite) TestNewTablePanics(c *gc.C) {
	c.Assert(
		func() { NewTable("bad name", IntColumn("x", Nullable)) },
		gc.PanicMatches,
		"Invalid table name")
	c.Assert(
		func() { NewTable("empty") },
		gc.PanicMatches,
		"Table empty has no columns")
	c.Assert(
		func() { NewTable("other", usersId) },
		gc.PanicMatches,
		"Column id already belongs to table users")
	c.Assert(
		func() { NewTable("dup", IntColumn("a", Nullable), IntColumn("a", Nullable)) },
		gc.PanicMatches,
		"Duplicate column a in table dup")
}
