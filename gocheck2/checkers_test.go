package gocheck2

import (
	"strings"
	"testing"

	. "gopkg.in/check.v1"
)

// Hook up gocheck into go test runner
func Test(t *testing.T) {
	TestingT(t)
}

type CheckersSuite struct{}

var _ = Suite(&CheckersSuite{})

func (s *CheckersSuite) SetUpTest(c *C) {
}

func testCheck(
	c *C,
	checker Checker,
	expectedResult bool,
	expectedErr string,
	params ...interface{}) {

	actualResult, actualErr := checker.Check(params, nil)
	if actualResult != expectedResult || actualErr != expectedErr {
		c.Fatalf(
			"%s returned (%#v, %#v) rather than (%#v, %#v)",
			checker.Info().Name,
			actualResult, actualErr, expectedResult, expectedErr)
	}
}

func (s *CheckersSuite) TestIsTrueIsFalse(c *C) {
	testCheck(c, IsTrue, true, "", true)
	testCheck(c, IsTrue, false, "", false)
	testCheck(c, IsFalse, true, "", false)
	testCheck(c, IsFalse, false, "Argument to IsFalse must be bool", "false")
}

func (s *CheckersSuite) TestHasKey(c *C) {
	testCheck(c, HasKey, true, "", map[string]int{"foo": 1}, "foo")
	testCheck(c, HasKey, false, "", map[string]int{"foo": 1}, "bar")
	testCheck(c, HasKey, true, "", map[int][]byte{10: nil}, 10)

	testCheck(c, HasKey, false, "First argument to HasKey must be a map", nil, "bar")
	testCheck(
		c, HasKey, false, "Second argument must be assignable to the map key type",
		map[string]int{"foo": 1}, 10)
}

func (s *CheckersSuite) TestSqlEquals(c *C) {
	testCheck(c, SqlEquals, true, "", "SELECT *\nFROM t", "SELECT *\nFROM t")
	testCheck(c, SqlEquals, false, "Obtained value must be a string", 1, "x")

	ok, msg := SqlEquals.Check(
		[]interface{}{"SELECT *\nFROM a\nWHERE (x)", "SELECT *\nFROM b\nWHERE (x)"},
		nil)
	c.Assert(ok, IsFalse)
	c.Assert(strings.HasPrefix(msg, "Rendered sql differs:\n"), IsTrue)
	c.Assert(strings.Contains(msg, "-FROM b\n"), IsTrue)
	c.Assert(strings.Contains(msg, "+FROM a\n"), IsTrue)

	c.Assert("SELECT id\nFROM users", SqlEquals, "SELECT id\nFROM users")
}

func (s *CheckersSuite) TestParamsEqual(c *C) {
	testCheck(
		c, ParamsEqual, true, "",
		map[string]interface{}{"a": 1},
		map[string]interface{}{"a": 1})
	testCheck(
		c, ParamsEqual, true, "",
		map[string]interface{}{},
		map[string]interface{}(nil))
	testCheck(
		c, ParamsEqual, false, "Both arguments to ParamsEqual must be maps",
		"a", map[string]interface{}{})

	ok, msg := ParamsEqual.Check(
		[]interface{}{
			map[string]interface{}{"a": 1},
			map[string]interface{}{"a": "1"},
		},
		nil)
	c.Assert(ok, IsFalse)
	c.Assert(strings.Contains(msg, "(int) 1"), IsTrue)
	c.Assert(strings.Contains(msg, `(string) (len=1) "1"`), IsTrue)
}

func (s *CheckersSuite) TestHasFragmentsInOrder(c *C) {
	sql := "SELECT *\nFROM users\nWHERE (id = 1)\nORDER BY id ASC"
	testCheck(c, HasFragmentsInOrder, true, "", sql,
		[]string{"SELECT", "FROM", "WHERE", "ORDER BY"})
	testCheck(c, HasFragmentsInOrder, false, `Fragment "SELECT" missing or out of order`,
		sql, []string{"FROM", "SELECT"})
	testCheck(c, HasFragmentsInOrder, false, `Fragment "LIMIT" missing or out of order`,
		sql, []string{"LIMIT"})
	testCheck(c, HasFragmentsInOrder, false, `Fragment "id" appears more than once`,
		sql, []string{"id"})
	testCheck(c, HasFragmentsInOrder, false, "Fragments must be a []string",
		sql, "SELECT")
}
