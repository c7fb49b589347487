// Extensions to the go-check unittest framework.
//
// NOTE: see https://github.com/go-check/check/pull/6 for reasons why these
// checkers live here.
package gocheck2

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/pmezard/go-difflib/difflib"
	. "gopkg.in/check.v1"
)

// -----------------------------------------------------------------------
// IsTrue / IsFalse checker.

type isBoolValueChecker struct {
	*CheckerInfo
	expected bool
}

func (checker *isBoolValueChecker) Check(
	params []interface{},
	names []string) (
	result bool,
	error string) {

	obtained, ok := params[0].(bool)
	if !ok {
		return false, "Argument to " + checker.Name + " must be bool"
	}

	return obtained == checker.expected, ""
}

// The IsTrue checker verifies that the obtained value is true.
//
// For example:
//
//	c.Assert(value, IsTrue)
var IsTrue Checker = &isBoolValueChecker{
	&CheckerInfo{Name: "IsTrue", Params: []string{"obtained"}},
	true,
}

// The IsFalse checker verifies that the obtained value is false.
//
// For example:
//
//	c.Assert(value, IsFalse)
var IsFalse Checker = &isBoolValueChecker{
	&CheckerInfo{Name: "IsFalse", Params: []string{"obtained"}},
	false,
}

// -----------------------------------------------------------------------
// HasKey checker.

type hasKey struct {
	*CheckerInfo
}

func (checker *hasKey) Check(
	params []interface{},
	names []string) (
	result bool,
	error string) {

	m := reflect.ValueOf(params[0])
	if m.Kind() != reflect.Map {
		return false, "First argument to HasKey must be a map"
	}
	key := reflect.ValueOf(params[1])
	if !key.IsValid() || !key.Type().AssignableTo(m.Type().Key()) {
		return false, "Second argument must be assignable to the map key type"
	}
	return m.MapIndex(key).IsValid(), ""
}

// The HasKey checker verifies that the obtained map contains the given key.
//
// For example:
//
//	c.Assert(params, HasKey, "name")
var HasKey Checker = &hasKey{
	&CheckerInfo{Name: "HasKey", Params: []string{"obtained", "key"}},
}

// -----------------------------------------------------------------------
// SqlEquals checker.

type sqlEquals struct {
	*CheckerInfo
}

func (checker *sqlEquals) Check(
	params []interface{},
	names []string) (
	result bool,
	error string) {

	obtained, ok := params[0].(string)
	if !ok {
		return false, "Obtained value must be a string"
	}
	expected, ok := params[1].(string)
	if !ok {
		return false, "Expected value must be a string"
	}
	if obtained == expected {
		return true, ""
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected + "\n"),
		B:        difflib.SplitLines(obtained + "\n"),
		FromFile: "expected",
		ToFile:   "obtained",
		Context:  2,
	})
	if err != nil {
		return false, err.Error()
	}
	return false, "Rendered sql differs:\n" + diff
}

// The SqlEquals checker compares two rendered statements line by line and
// reports a unified diff on mismatch.
//
// For example:
//
//	c.Assert(sql, SqlEquals, "SELECT *\nFROM users")
var SqlEquals Checker = &sqlEquals{
	&CheckerInfo{Name: "SqlEquals", Params: []string{"obtained", "expected"}},
}

// -----------------------------------------------------------------------
// ParamsEqual checker.

type paramsEqual struct {
	*CheckerInfo
}

var spewConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

func (checker *paramsEqual) Check(
	params []interface{},
	names []string) (
	result bool,
	error string) {

	obtained := reflect.ValueOf(params[0])
	expected := reflect.ValueOf(params[1])
	if obtained.Kind() != reflect.Map || expected.Kind() != reflect.Map {
		return false, "Both arguments to ParamsEqual must be maps"
	}
	// A nil map and an empty map bind the same parameters.
	if obtained.Len() == 0 && expected.Len() == 0 {
		return true, ""
	}
	if reflect.DeepEqual(params[0], params[1]) {
		return true, ""
	}
	return false, fmt.Sprintf(
		"Bound parameters differ.\nobtained: %s\nexpected: %s",
		spewConfig.Sdump(params[0]),
		spewConfig.Sdump(params[1]))
}

// The ParamsEqual checker deep-compares two parameter maps and dumps both
// with go-spew on mismatch.
var ParamsEqual Checker = &paramsEqual{
	&CheckerInfo{Name: "ParamsEqual", Params: []string{"obtained", "expected"}},
}

// -----------------------------------------------------------------------
// HasFragmentsInOrder checker.

type hasFragmentsInOrder struct {
	*CheckerInfo
}

func (checker *hasFragmentsInOrder) Check(
	params []interface{},
	names []string) (
	result bool,
	error string) {

	obtained, ok := params[0].(string)
	if !ok {
		return false, "Obtained value must be a string"
	}
	fragments, ok := params[1].([]string)
	if !ok {
		return false, "Fragments must be a []string"
	}

	rest := obtained
	for _, frag := range fragments {
		idx := strings.Index(rest, frag)
		if idx < 0 {
			return false, fmt.Sprintf("Fragment %q missing or out of order", frag)
		}
		if strings.Count(obtained, frag) > 1 {
			return false, fmt.Sprintf("Fragment %q appears more than once", frag)
		}
		rest = rest[idx+len(frag):]
	}
	return true, ""
}

// The HasFragmentsInOrder checker verifies that each fragment appears exactly
// once in the obtained string, in the given order.
//
// For example:
//
//	c.Assert(sql, HasFragmentsInOrder, []string{"SELECT", "FROM", "WHERE"})
var HasFragmentsInOrder Checker = &hasFragmentsInOrder{
	&CheckerInfo{Name: "HasFragmentsInOrder", Params: []string{"obtained", "fragments"}},
}
