package sqlbuilder

import (
	gc "gopkg.in/check.v1"

	. "github.com/dropbox/sqlbricks/gocheck2"
)

type ExprSuite struct {
}

var _ = gc.Suite(&ExprSuite{})

func (s *ExprSuite) TestEscapedOperand(c *gc.C) {
	c.Assert(Expr("x").Add(5).String(), gc.Equals, "(x + '5')")
	c.Assert(Expr("x").Add(Literal("5")).String(), gc.Equals, "(x + 5)")
	c.Assert(Expr("x").Add(Expr("y")).String(), gc.Equals, "(x + y)")
	c.Assert(Expr("a").Eq("o'k").String(), gc.Equals, "(a = 'o''k')")
	c.Assert(Expr("a").Eq(nil).String(), gc.Equals, "(a = NULL)")
}

func (s *ExprSuite) TestBinaryOperators(c *gc.C) {
	x := Expr("x")
	one := Literal("1")

	c.Assert(x.Sub(one).String(), gc.Equals, "(x - 1)")
	c.Assert(x.Mul(one).String(), gc.Equals, "(x * 1)")
	c.Assert(x.Div(one).String(), gc.Equals, "(x / 1)")
	c.Assert(x.Mod(one).String(), gc.Equals, "(x % 1)")
	c.Assert(x.Pow(one).String(), gc.Equals, "POWER(x, 1)")
	c.Assert(x.And(one).String(), gc.Equals, "(x AND 1)")
	c.Assert(x.Or(one).String(), gc.Equals, "(x OR 1)")
	c.Assert(x.Xor(one).String(), gc.Equals, "(x XOR 1)")
	c.Assert(x.Eq(one).String(), gc.Equals, "(x = 1)")
	c.Assert(x.Ne(one).String(), gc.Equals, "(x <> 1)")
	c.Assert(x.Lt(one).String(), gc.Equals, "(x < 1)")
	c.Assert(x.Gt(one).String(), gc.Equals, "(x > 1)")
	c.Assert(x.Le(one).String(), gc.Equals, "(x <= 1)")
	c.Assert(x.Ge(one).String(), gc.Equals, "(x >= 1)")
	c.Assert(x.Not().String(), gc.Equals, "(NOT x)")
}

func (s *ExprSuite) TestReflectedOperators(c *gc.C) {
	x := Expr("x")

	c.Assert(x.RAdd(3).String(), gc.Equals, "('3' + x)")
	c.Assert(x.RSub(3).String(), gc.Equals, "('3' - x)")
	c.Assert(x.RMul(3).String(), gc.Equals, "('3' * x)")
	c.Assert(x.RDiv(3).String(), gc.Equals, "('3' / x)")
	c.Assert(x.RMod(3).String(), gc.Equals, "('3' % x)")
	c.Assert(x.RPow(3).String(), gc.Equals, "POWER('3', x)")
	c.Assert(x.RAnd(Literal("TRUE")).String(), gc.Equals, "(TRUE AND x)")
	c.Assert(x.ROr(Literal("TRUE")).String(), gc.Equals, "(TRUE OR x)")
	c.Assert(x.RXor(Literal("TRUE")).String(), gc.Equals, "(TRUE XOR x)")
}

func (s *ExprSuite) TestImmutable(c *gc.C) {
	x := Expr("x")
	sum := x.Add(1)
	_ = sum.Mul(2)

	c.Assert(x.String(), gc.Equals, "x")
	c.Assert(sum.String(), gc.Equals, "(x + '1')")
}

func (s *ExprSuite) TestComposition(c *gc.C) {
	cond := Column("users", "age").Gt(18).And(Column("users", "name").Eq("john"))

	c.Assert(
		cond.String(),
		gc.Equals,
		`(("users"."age" > '18') AND ("users"."name" = 'john'))`)
}

func (s *ExprSuite) TestEscape(c *gc.C) {
	c.Assert(Escape(nil), gc.Equals, "NULL")
	c.Assert(Escape(1.5), gc.Equals, "'1.5'")
	c.Assert(Escape(true), gc.Equals, "'TRUE'")
	c.Assert(Escape("it's"), gc.Equals, "'it''s'")
	c.Assert(Escape(Literal("now()")), gc.Equals, "now()")
	c.Assert(Escape(Expr("a.b")), gc.Equals, "a.b")
}

func (s *ExprSuite) TestColumn(c *gc.C) {
	c.Assert(Column("users", "id").String(), gc.Equals, `"users"."id"`)
	c.Assert(Column("", "id").String(), gc.Equals, `"id"`)
	c.Assert(Column("t", `we"ird`).String(), gc.Equals, `"t"."we""ird"`)
}

func (s *ExprSuite) TestCall(c *gc.C) {
	c.Assert(Call("AVG", Column("users", "age")).String(), gc.Equals, `AVG("users"."age")`)
	c.Assert(Call("COALESCE", Expr("x"), 0).String(), gc.Equals, "COALESCE(x, '0')")
	c.Assert(Call("NOW").String(), gc.Equals, "NOW()")
}

func (s *ExprSuite) TestInline(c *gc.C) {
	lit, err := Inline(5)
	c.Assert(err, gc.IsNil)
	c.Assert(lit, gc.Equals, Literal("5"))

	lit, err = Inline("o'k")
	c.Assert(err, gc.IsNil)
	c.Assert(lit, gc.Equals, Literal("'o''k'"))

	lit, err = Inline(true)
	c.Assert(err, gc.IsNil)
	c.Assert(lit, gc.Equals, Literal("TRUE"))

	lit, err = Inline(nil)
	c.Assert(err, gc.IsNil)
	c.Assert(lit, gc.Equals, Literal("NULL"))

	_, err = Inline(struct{}{})
	c.Assert(err, gc.NotNil)
}

func (s *ExprSuite) TestAliasAndOrderTerms(c *gc.C) {
	c.Assert(As(Column("users", "name"), "n").String(), gc.Equals, `"users"."name" AS n`)
	c.Assert(As("count(*)", "total").String(), gc.Equals, "count(*) AS total")

	c.Assert(Asc("id").String(), gc.Equals, "id ASC")
	c.Assert(Desc(Expr("age")).String(), gc.Equals, "age DESC")
	c.Assert(
		OrderTerm{Expr: "id", Direction: "DESC NULLS LAST"}.String(),
		gc.Equals,
		"id DESC NULLS LAST")
}

func (s *ExprSuite) TestJoinText(c *gc.C) {
	c.Assert(
		InnerJoin("posts", "posts.user_id = users.id"),
		gc.Equals,
		Literal("JOIN posts ON posts.user_id = users.id"))
	c.Assert(
		LeftJoin(posts, postsUserId.Ref().Eq(usersId.Ref())),
		gc.Equals,
		Literal(`LEFT JOIN "posts" ON ("posts"."user_id" = "users"."id")`))
}

func (s *ExprSuite) TestFragmentText(c *gc.C) {
	c.Assert(fragmentText("a"), gc.Equals, "a")
	c.Assert(fragmentText(Literal("b")), gc.Equals, "b")
	c.Assert(fragmentText(users), gc.Equals, `"users"`)
	c.Assert(fragmentText(42), gc.Equals, "42")
	c.Assert(Expr("x").Eq(1) == Expr("(x = '1')"), IsTrue)
}
