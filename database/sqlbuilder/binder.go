package sqlbuilder

import (
	"regexp"
)

// Placeholder name -> bound value.
type Params map[string]interface{}

// Returns a shallow copy of p.  The copy of a nil Params is empty, not nil.
func (p Params) Copy() Params {
	res := make(Params, len(p))
	for k, v := range p {
		res[k] = v
	}
	return res
}

func (p Params) merge(other Params) {
	for k, v := range other {
		p[k] = v
	}
}

// ParameterBinder collects bound values for a statement.  Binding a name
// twice silently overwrites the first value.
type ParameterBinder struct {
	params Params
}

// Bind registers value under name and returns the placeholder text.
func (b *ParameterBinder) Bind(name string, value interface{}) string {
	if b.params == nil {
		b.params = make(Params)
	}
	b.params[name] = value
	return ":" + name
}

// Params returns a copy of the bound values.
func (b *ParameterBinder) Params() Params {
	return b.params.Copy()
}

func (b *ParameterBinder) mergeParams(other Params) {
	if len(other) == 0 {
		return
	}
	if b.params == nil {
		b.params = make(Params, len(other))
	}
	b.params.merge(other)
}

var nonWordRegexp = regexp.MustCompile(`\W+`)

// PlaceholderName derives a placeholder name from a column reference, so
// that `"users"."id"` binds as :users_id.  Plain identifiers are returned
// as is.
func PlaceholderName(column string) string {
	if validIdentifierName(column) {
		return column
	}
	name := nonWordRegexp.ReplaceAllString(column, "_")
	for len(name) > 0 && name[0] == '_' {
		name = name[1:]
	}
	for len(name) > 0 && name[len(name)-1] == '_' {
		name = name[:len(name)-1]
	}
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		name = "p_" + name
	}
	return name
}
