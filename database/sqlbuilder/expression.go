// Query building functions for expression components
package sqlbuilder

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/dropbox/sqlbricks/database/sqltypes"
	"github.com/dropbox/sqlbricks/errors"
)

// Raw sql text.  Literals are embedded verbatim, never quoted, escaped or
// bound as parameters.
type Literal string

func (l Literal) String() string {
	return string(l)
}

// Inline encodes v as a sql literal: numbers as is, strings single quoted
// with embedded quotes doubled, booleans as TRUE / FALSE.
func Inline(v interface{}) (Literal, error) {
	val, err := sqltypes.BuildValue(v)
	if err != nil {
		return "", errors.Wrapf(err, "Cannot inline %T", v)
	}
	buf := new(bytes.Buffer)
	val.EncodeSql(buf)
	return Literal(buf.String()), nil
}

// Expression is an immutable rendered sql fragment.  Operator methods return
// new expressions of the form "(<left> <OP> <right>)", where the right
// operand goes through Escape.
type Expression struct {
	sql string
}

func Expr(text string) Expression {
	return Expression{sql: text}
}

func (e Expression) String() string {
	return e.sql
}

// Column returns the quoted column reference "table"."field".  An empty table
// yields just the quoted field.
func Column(table string, field string) Expression {
	if table == "" {
		return Expression{sql: pq.QuoteIdentifier(field)}
	}
	return Expression{
		sql: pq.QuoteIdentifier(table) + "." + pq.QuoteIdentifier(field),
	}
}

// Call renders a function call with escaped arguments, e.g.
// Call("AVG", Column("users", "age")) -> AVG("users"."age").
func Call(funcName string, args ...interface{}) Expression {
	escaped := make([]string, len(args))
	for i, arg := range args {
		escaped[i] = Escape(arg)
	}
	return Expression{sql: funcName + "(" + strings.Join(escaped, ", ") + ")"}
}

// Escape renders a right hand operand.  Expressions and Literals are embedded
// verbatim, nil becomes NULL and everything else is converted to text and
// single-quoted.
func Escape(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case Expression:
		return val.sql
	case Literal:
		return string(val)
	}
	return sqltypes.Quote(sqltypes.Text(v))
}

func (e Expression) binary(op string, other interface{}) Expression {
	return Expression{sql: "(" + e.sql + " " + op + " " + Escape(other) + ")"}
}

func (e Expression) reflected(op string, other interface{}) Expression {
	return Expression{sql: "(" + Escape(other) + " " + op + " " + e.sql + ")"}
}

func (e Expression) Add(other interface{}) Expression  { return e.binary("+", other) }
func (e Expression) RAdd(other interface{}) Expression { return e.reflected("+", other) }
func (e Expression) Sub(other interface{}) Expression  { return e.binary("-", other) }
func (e Expression) RSub(other interface{}) Expression { return e.reflected("-", other) }
func (e Expression) Mul(other interface{}) Expression  { return e.binary("*", other) }
func (e Expression) RMul(other interface{}) Expression { return e.reflected("*", other) }
func (e Expression) Div(other interface{}) Expression  { return e.binary("/", other) }
func (e Expression) RDiv(other interface{}) Expression { return e.reflected("/", other) }
func (e Expression) Mod(other interface{}) Expression  { return e.binary("%", other) }
func (e Expression) RMod(other interface{}) Expression { return e.reflected("%", other) }

func (e Expression) Pow(other interface{}) Expression {
	return Expression{sql: "POWER(" + e.sql + ", " + Escape(other) + ")"}
}

func (e Expression) RPow(other interface{}) Expression {
	return Expression{sql: "POWER(" + Escape(other) + ", " + e.sql + ")"}
}

func (e Expression) And(other interface{}) Expression  { return e.binary("AND", other) }
func (e Expression) RAnd(other interface{}) Expression { return e.reflected("AND", other) }
func (e Expression) Or(other interface{}) Expression   { return e.binary("OR", other) }
func (e Expression) ROr(other interface{}) Expression  { return e.reflected("OR", other) }
func (e Expression) Xor(other interface{}) Expression  { return e.binary("XOR", other) }
func (e Expression) RXor(other interface{}) Expression { return e.reflected("XOR", other) }

func (e Expression) Eq(other interface{}) Expression { return e.binary("=", other) }
func (e Expression) Ne(other interface{}) Expression { return e.binary("<>", other) }
func (e Expression) Lt(other interface{}) Expression { return e.binary("<", other) }
func (e Expression) Gt(other interface{}) Expression { return e.binary(">", other) }
func (e Expression) Le(other interface{}) Expression { return e.binary("<=", other) }
func (e Expression) Ge(other interface{}) Expression { return e.binary(">=", other) }

func (e Expression) Not() Expression {
	return Expression{sql: "(NOT " + e.sql + ")"}
}

// The "<expr> AS <alias>" form of a field, table or returning fragment.
type Aliased struct {
	Expr  interface{}
	Alias string
}

func As(expr interface{}, alias string) Aliased {
	return Aliased{Expr: expr, Alias: alias}
}

func (a Aliased) String() string {
	return fragmentText(a.Expr) + " AS " + a.Alias
}

// An ORDER BY term.  The direction is rendered verbatim.
type OrderTerm struct {
	Expr      interface{}
	Direction string
}

func Asc(expr interface{}) OrderTerm {
	return OrderTerm{Expr: expr, Direction: "ASC"}
}

func Desc(expr interface{}) OrderTerm {
	return OrderTerm{Expr: expr, Direction: "DESC"}
}

func (o OrderTerm) String() string {
	return fragmentText(o.Expr) + " " + o.Direction
}

// Returns "JOIN <table> ON <condition>".
func InnerJoin(table interface{}, onCondition interface{}) Literal {
	return joinText("JOIN", table, onCondition)
}

// Returns "LEFT JOIN <table> ON <condition>".
func LeftJoin(table interface{}, onCondition interface{}) Literal {
	return joinText("LEFT JOIN", table, onCondition)
}

func joinText(keyword string, table interface{}, onCondition interface{}) Literal {
	return Literal(
		keyword + " " + fragmentText(table) + " ON " + fragmentText(onCondition))
}

// Stringifies a clause fragment.
func fragmentText(fragment interface{}) string {
	switch f := fragment.(type) {
	case string:
		return f
	case fmt.Stringer:
		return f.String()
	}
	return fmt.Sprint(fragment)
}
