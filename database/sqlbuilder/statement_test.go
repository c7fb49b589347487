package sqlbuilder

import (
	gc "gopkg.in/check.v1"

	"github.com/dropbox/sqlbricks/errors"
	. "github.com/dropbox/sqlbricks/gocheck2"
)

type StmtSuite struct {
}

var _ = gc.Suite(&StmtSuite{})

//
// SELECT statement tests
//

func (s *StmtSuite) TestSelectEmpty(c *gc.C) {
	sql, params := NewSelect().Render()

	c.Assert(sql, gc.Equals, "SELECT")
	c.Assert(params, ParamsEqual, Params{})
}

func (s *StmtSuite) TestAddWithoutArgumentsLeavesClauseAbsent(c *gc.C) {
	q := NewSelect().
		AddFields().
		AddFrom().
		AddJoin().
		AddWhere().
		AddGroup().
		AddHaving().
		AddOrder().
		AddLimit(nil, nil)

	c.Assert(q.String(), gc.Equals, "SELECT")
	for _, name := range []ClauseName{
		FieldsClause, FromClause, JoinClause, WhereClause, GroupClause,
		HavingClause, OrderClause, LimitClause, OffsetClause, WithClause} {

		c.Assert(q.clauses.has(name), IsFalse, gc.Commentf("clause %s", name))
	}

	u := NewUpdate("t").AddSet(nil).AddReturning()
	c.Assert(u.String(), gc.Equals, "UPDATE t")

	i := NewInsert("t").AddValues(map[string]interface{}{})
	c.Assert(i.clauses.has(ValuesClause), IsFalse)
}

func (s *StmtSuite) TestSelectEndToEnd(c *gc.C) {
	q := NewSelect().
		AddFields("id", As("name", "n")).
		AddFrom("users").
		AddWhere(Expr("age").Ge(Literal("18"))).
		AddOrder(Desc("id")).
		AddLimit(Int64(10), Int64(20))

	sql, params := q.Render()
	c.Assert(
		sql,
		SqlEquals,
		"SELECT id, name AS n\n"+
			"FROM users\n"+
			"WHERE ((age >= 18))\n"+
			"ORDER BY id DESC\n"+
			"LIMIT 10 OFFSET 20")
	c.Assert(params, ParamsEqual, Params{})
	c.Assert(
		sql,
		HasFragmentsInOrder,
		[]string{"SELECT", "FROM", "WHERE", "ORDER BY", "LIMIT"})
}

func (s *StmtSuite) TestSelectClauseOrder(c *gc.C) {
	// Added in scrambled order on purpose.
	q := NewSelect().
		Limit(5).
		AddOrder("u.id").
		AddHaving("count(p.id) > 1").
		AddGroup("u.id").
		AddWhere("u.active").
		AddJoin(LeftJoin("posts AS p", "p.user_id = u.id")).
		AddFrom("users AS u").
		AddFields("u.id", "count(p.id)").
		Distinct()

	c.Assert(
		q.String(),
		SqlEquals,
		"SELECT DISTINCT u.id, count(p.id)\n"+
			"FROM users AS u\n"+
			"LEFT JOIN posts AS p ON p.user_id = u.id\n"+
			"WHERE (u.active)\n"+
			"GROUP BY u.id\n"+
			"HAVING (count(p.id) > 1)\n"+
			"ORDER BY u.id ASC\n"+
			"LIMIT 5")
}

func (s *StmtSuite) TestRenderIsIdempotent(c *gc.C) {
	q := NewSelect().AddFields("*").AddFrom("users").AddWhereEq("name", "john")

	sql1, params1 := q.Render()
	params1["name"] = "mallory"
	params1["extra"] = 1
	sql2, params2 := q.Render()

	c.Assert(sql2, gc.Equals, sql1)
	c.Assert(params2, ParamsEqual, Params{"name": "john"})
}

func (s *StmtSuite) TestDuplicateFragmentsCollapse(c *gc.C) {
	join := InnerJoin("posts", "posts.user_id = users.id")
	q := NewSelect().
		AddFields("id", "id", "name").
		AddFields("name").
		AddFrom("users", "users").
		AddJoin(join, join)

	c.Assert(
		q.String(),
		SqlEquals,
		"SELECT id, name\n"+
			"FROM users\n"+
			"JOIN posts ON posts.user_id = users.id")
}

func (s *StmtSuite) TestJoinsAreSpaceSeparated(c *gc.C) {
	q := NewSelect().
		AddFields("*").
		AddFrom("a").
		AddJoin("JOIN b ON b.a_id = a.id", "LEFT JOIN c ON c.b_id = b.id")

	c.Assert(
		q.String(),
		SqlEquals,
		"SELECT *\nFROM a\nJOIN b ON b.a_id = a.id LEFT JOIN c ON c.b_id = b.id")
}

func (s *StmtSuite) TestOrderKeepsDuplicates(c *gc.C) {
	q := NewSelect().AddOrder("id", "id").AddOrder(Desc("name"), Asc(Expr("age")))

	c.Assert(q.String(), gc.Equals, "SELECT\nORDER BY id ASC, id ASC, name DESC, age ASC")
}

func (s *StmtSuite) TestGroupFirstInsertionOrder(c *gc.C) {
	q := NewSelect().AddGroup("b", "a").AddGroup("b", "c")

	c.Assert(q.String(), gc.Equals, "SELECT\nGROUP BY b, a, c")
}

func (s *StmtSuite) TestLimitOffset(c *gc.C) {
	c.Assert(
		NewSelect().AddLimit(Int64(5), nil).String(),
		gc.Equals,
		"SELECT\nLIMIT 5")
	c.Assert(
		NewSelect().AddLimit(Int64(5), Int64(0)).String(),
		gc.Equals,
		"SELECT\nLIMIT 5 OFFSET 0")
	c.Assert(
		NewSelect().AddLimit(nil, Int64(3)).String(),
		gc.Equals,
		"SELECT\nOFFSET 3")
	c.Assert(
		NewSelect().Limit(5).Limit(7).Offset(1).String(),
		gc.Equals,
		"SELECT\nLIMIT 7 OFFSET 1")

	// A nil pointer leaves the previous value alone.
	c.Assert(
		NewSelect().AddLimit(Int64(5), Int64(2)).AddLimit(nil, Int64(4)).String(),
		gc.Equals,
		"SELECT\nLIMIT 5 OFFSET 4")
}

func (s *StmtSuite) TestWhere(c *gc.C) {
	q := NewSelect().
		AddFields("*").
		AddFrom("t").
		AddWhere("a=1", "b=2").
		AddWhere("a=1")

	c.Assert(q.String(), SqlEquals, "SELECT *\nFROM t\nWHERE (a=1) AND (b=2)")
}

func (s *StmtSuite) TestWhereEq(c *gc.C) {
	q := NewSelect().
		AddFields("*").
		AddFrom("users").
		AddWhereEq("name", "john").
		AddWhereEq(Column("users", "id"), 5).
		AddWhereEq("deleted_at", nil).
		AddWhereEq("created", Literal("now()"))

	sql, params := q.Render()
	c.Assert(
		sql,
		SqlEquals,
		"SELECT *\n"+
			"FROM users\n"+
			`WHERE (name = :name) AND ("users"."id" = :users_id) `+
			"AND (deleted_at IS NULL) AND (created = now())")
	c.Assert(params, ParamsEqual, Params{"name": "john", "users_id": 5})
}

func (s *StmtSuite) TestSubqueryFragment(c *gc.C) {
	inner := NewSelect().AddFields("id").AddFrom("users").AddWhereEq("age", 3)
	q := NewSelect().AddFields("count(*)").AddFrom(As(inner, "sub"))

	sql, params := q.Render()
	c.Assert(
		sql,
		SqlEquals,
		"SELECT count(*)\n"+
			"FROM (SELECT id\nFROM users\nWHERE (age = :age)) AS sub")
	c.Assert(params, ParamsEqual, Params{"age": 3})
}

func (s *StmtSuite) TestSelectCopy(c *gc.C) {
	q := NewSelect().AddFields("id").AddFrom("t").AddWhereEq("a", 1)
	cp := q.Copy().AddWhere("b").Limit(1)
	cp.Bind("x", 2)

	c.Assert(q.String(), SqlEquals, "SELECT id\nFROM t\nWHERE (a = :a)")
	c.Assert(cp.String(), SqlEquals, "SELECT id\nFROM t\nWHERE (a = :a) AND (b)\nLIMIT 1")
	c.Assert(q.Params(), ParamsEqual, Params{"a": 1})
	c.Assert(cp.Params(), ParamsEqual, Params{"a": 1, "x": 2})
}

//
// WITH clause tests
//

func (s *StmtSuite) TestWithStatement(c *gc.C) {
	inner := NewSelect().AddFields("id").AddFrom("users").AddWhereEq("active", true)
	q := NewSelect().AddFields("*").AddFrom("active_users")

	err := q.AddWith("active_users", inner, NoFlags)
	c.Assert(err, gc.IsNil)

	sql, params := q.Render()
	c.Assert(
		sql,
		SqlEquals,
		"WITH active_users AS (SELECT id\nFROM users\nWHERE (active = :active))\n"+
			"SELECT *\n"+
			"FROM active_users")
	c.Assert(params, ParamsEqual, Params{"active": true})

	// Inner parameters are merged at render time only.
	c.Assert(q.Params(), ParamsEqual, Params{})
}

func (s *StmtSuite) TestWithRecursive(c *gc.C) {
	q := NewSelect().AddFields("n").AddFrom("t")

	c.Assert(
		q.AddWith(
			"t",
			Literal("VALUES (1) UNION ALL SELECT n+1 FROM t WHERE n < 5"),
			Recursive),
		gc.IsNil)
	c.Assert(q.AddWith("u", "SELECT 1", NoFlags), gc.IsNil)

	c.Assert(
		q.String(),
		SqlEquals,
		"WITH RECURSIVE t AS (VALUES (1) UNION ALL SELECT n+1 FROM t WHERE n < 5), "+
			"u AS (SELECT 1)\n"+
			"SELECT n\n"+
			"FROM t")

	// Re-adding a name replaces it in place.
	c.Assert(q.AddWith("t", "SELECT 2", NoFlags), gc.IsNil)
	c.Assert(
		q.String(),
		SqlEquals,
		"WITH t AS (SELECT 2), u AS (SELECT 1)\nSELECT n\nFROM t")
}

func (s *StmtSuite) TestWithTypeMismatch(c *gc.C) {
	q := NewSelect().AddFields("1")
	before := q.String()

	err := q.AddWith("x", 42, NoFlags)
	c.Assert(err, gc.NotNil)
	c.Assert(IsClauseTypeMismatch(err), IsTrue)
	c.Assert(IsClauseTypeMismatch(errors.Wrap(err, "building report")), IsTrue)

	mismatch, ok := err.(ClauseTypeMismatchError)
	c.Assert(ok, IsTrue)
	c.Assert(mismatch.Clause, gc.Equals, WithClause)
	c.Assert(mismatch.Value, gc.Equals, 42)
	c.Assert(mismatch.GetMessage(), gc.Equals, "with clause must contain a statement or sql text, got int")

	c.Assert(q.String(), gc.Equals, before)
	c.Assert(q.clauses.has(WithClause), IsFalse)

	c.Assert(IsClauseTypeMismatch(errors.New("other")), IsFalse)
	c.Assert(IsClauseTypeMismatch(nil), IsFalse)
}

//
// INSERT statement tests
//

func (s *StmtSuite) TestInsertValue(c *gc.C) {
	sql, params := NewInsert("users").Value("name", "john").Render()

	c.Assert(sql, SqlEquals, "INSERT INTO users\n(name) VALUES (:name)")
	c.Assert(params["name"], gc.Equals, "john")
}

func (s *StmtSuite) TestInsertAddValues(c *gc.C) {
	q := NewInsert("users").AddValues(map[string]interface{}{
		"name":    "john",
		"age":     30,
		"created": Literal("now()"),
	})

	sql, params := q.Render()
	c.Assert(sql, SqlEquals, "INSERT INTO users\n(age, created, name) VALUES (:age, now(), :name)")
	c.Assert(params, ParamsEqual, Params{"age": 30, "name": "john"})
}

func (s *StmtSuite) TestInsertValueTwiceKeepsPosition(c *gc.C) {
	q := NewInsert("t").Value("a", 1).Value("b", 2).Value("a", 3)

	sql, params := q.Render()
	c.Assert(sql, SqlEquals, "INSERT INTO t\n(a, b) VALUES (:a, :b)")
	c.Assert(params, ParamsEqual, Params{"a": 3, "b": 2})
}

func (s *StmtSuite) TestInsertDefaultValues(c *gc.C) {
	c.Assert(NewInsert("t").String(), gc.Equals, "INSERT INTO t\nDEFAULT VALUES")
}

func (s *StmtSuite) TestInsertQuery(c *gc.C) {
	sel := NewSelect().AddFields("id").AddFrom("old").AddWhereEq("flag", 1)
	q := NewInsert("archive")

	c.Assert(q.AddQuery(sel), gc.IsNil)

	sql, params := q.Render()
	c.Assert(
		sql,
		SqlEquals,
		"INSERT INTO archive\nSELECT id\nFROM old\nWHERE (flag = :flag)")
	c.Assert(params, ParamsEqual, Params{"flag": 1})

	c.Assert(q.AddQuery("SELECT 1"), gc.IsNil)
	c.Assert(q.String(), gc.Equals, "INSERT INTO archive\nSELECT 1")

	c.Assert(q.AddQuery(Literal("SELECT 2")), gc.IsNil)
	c.Assert(q.String(), gc.Equals, "INSERT INTO archive\nSELECT 2")
}

func (s *StmtSuite) TestInsertValuesWinOverQuery(c *gc.C) {
	q := NewInsert("t").Value("a", Literal("1"))
	c.Assert(q.AddQuery("SELECT 2"), gc.IsNil)

	c.Assert(q.String(), gc.Equals, "INSERT INTO t\n(a) VALUES (1)")
}

func (s *StmtSuite) TestInsertQueryTypeMismatch(c *gc.C) {
	q := NewInsert("t")

	err := q.AddQuery(42)
	c.Assert(IsClauseTypeMismatch(err), IsTrue)

	err = q.AddQuery(NewUpdate("x"))
	c.Assert(IsClauseTypeMismatch(err), IsTrue)

	c.Assert(q.clauses.has(QueryClause), IsFalse)
	c.Assert(q.String(), gc.Equals, "INSERT INTO t\nDEFAULT VALUES")
}

func (s *StmtSuite) TestInsertReturningAndWith(c *gc.C) {
	q := NewInsert("t").
		Value("a", 1).
		AddReturning("id", "id", As("name", "n"))
	c.Assert(q.AddWith("src", "SELECT 1", NoFlags), gc.IsNil)

	c.Assert(
		q.String(),
		SqlEquals,
		"WITH src AS (SELECT 1)\n"+
			"INSERT INTO t\n"+
			"(a) VALUES (:a)\n"+
			"RETURNING id, name AS n")
}

//
// UPDATE statement tests
//

func (s *StmtSuite) TestUpdate(c *gc.C) {
	q := NewUpdate("users").
		Set("name", "john").
		AddWhereEq("id", 5).
		AddReturning("id")

	sql, params := q.Render()
	c.Assert(
		sql,
		SqlEquals,
		"UPDATE users\nSET name = :name\nWHERE (id = :id)\nRETURNING id")
	c.Assert(params, ParamsEqual, Params{"name": "john", "id": 5})
}

func (s *StmtSuite) TestUpdateOnlyAlias(c *gc.C) {
	q := NewUpdate("users").Only().As("u").Set("n", Literal("n + 1"))

	c.Assert(q.String(), SqlEquals, "UPDATE ONLY users AS u\nSET n = n + 1")
}

func (s *StmtSuite) TestUpdateSetValues(c *gc.C) {
	q := NewUpdate("t").
		AddSet(map[string]interface{}{"z": 1, "a": Expr("a").Add(Literal("1"))}).
		Set("z", Literal("DEFAULT"))

	c.Assert(q.String(), SqlEquals, "UPDATE t\nSET a = (a + 1), z = DEFAULT")
}

func (s *StmtSuite) TestUpdateSetDuplicateCollapses(c *gc.C) {
	q := NewUpdate("t").Set("a", 1).Set("a", 1)

	sql, params := q.Render()
	c.Assert(sql, SqlEquals, "UPDATE t\nSET a = :a")
	c.Assert(params, ParamsEqual, Params{"a": 1})
}

func (s *StmtSuite) TestUpdateSetSubquery(c *gc.C) {
	sub := NewSelect().AddFields("sum(x)").AddFrom("y").AddWhereEq("k", 3)
	q := NewUpdate("t").Set("total", sub)

	sql, params := q.Render()
	c.Assert(
		sql,
		SqlEquals,
		"UPDATE t\nSET total = (SELECT sum(x)\nFROM y\nWHERE (k = :k))")
	c.Assert(params, ParamsEqual, Params{"k": 3})
}

func (s *StmtSuite) TestUpdateFromJoin(c *gc.C) {
	q := NewUpdate("orders").
		Set("status", "shipped").
		AddFrom("shipments").
		AddJoin("JOIN carriers ON carriers.id = shipments.carrier_id").
		AddWhere("shipments.order_id = orders.id")

	c.Assert(
		q.String(),
		SqlEquals,
		"UPDATE orders\n"+
			"SET status = :status\n"+
			"FROM shipments\n"+
			"JOIN carriers ON carriers.id = shipments.carrier_id\n"+
			"WHERE (shipments.order_id = orders.id)")
}

//
// DELETE statement tests
//

func (s *StmtSuite) TestDelete(c *gc.C) {
	sql, params := NewDelete("users").AddWhereEq("id", 7).Render()

	c.Assert(sql, SqlEquals, "DELETE FROM users\nWHERE (id = :id)")
	c.Assert(params, ParamsEqual, Params{"id": 7})
}

func (s *StmtSuite) TestDeleteFull(c *gc.C) {
	q := NewDelete("orders").
		Only().
		As("o").
		AddUsing("customers AS c").
		AddWhere("o.customer_id = c.id", "c.banned").
		AddReturning("o.id")
	c.Assert(q.AddWith("old", "SELECT 1", NoFlags), gc.IsNil)

	c.Assert(
		q.String(),
		SqlEquals,
		"WITH old AS (SELECT 1)\n"+
			"DELETE FROM ONLY orders AS o\n"+
			"USING customers AS c\n"+
			"WHERE (o.customer_id = c.id) AND (c.banned)\n"+
			"RETURNING o.id")
}

func (s *StmtSuite) TestAddTablesWithWrongClausePanics(c *gc.C) {
	c.Assert(
		func() { NewSelect().AddTables(SetClause, "t") },
		gc.PanicMatches,
		`sqlbuilder: clause "set" is backed by keyed map, not ordered set`)
}
