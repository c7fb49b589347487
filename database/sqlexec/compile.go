package sqlexec

import (
	"github.com/mitranim/sqlp"

	"github.com/dropbox/sqlbricks/database/sqlbuilder"
	"github.com/dropbox/sqlbricks/errors"
)

// Compile rewrites the :name placeholders of sql into $n ordinals and returns
// the arguments in ordinal order.  Every occurrence of a name shares one
// ordinal.  Quoted strings, comments and :: casts are left alone.  A
// placeholder without a parameter is an error; unused parameters are not.
func Compile(
	sql string,
	params sqlbuilder.Params) (text string, args []interface{}, err error) {

	tokenizer := sqlp.Tokenizer{Source: sql}
	ords := make(map[sqlp.NodeNamedParam]sqlp.NodeOrdinalParam, len(params))
	buf := make([]byte, 0, len(sql))
	// Bytes of sql covered by the nodes seen so far.  The tokenizer closes
	// unterminated quotes and block comments itself, which shows up as
	// nodes covering more bytes than the source has.
	consumed := 0

	for {
		node := tokenizer.Next()
		if node == nil {
			break
		}

		switch node := node.(type) {
		case sqlp.NodeOrdinalParam:
			return "", nil, errors.Newf(
				"sqlexec: expected only named parameters, got $%d",
				int(node))

		case sqlp.NodeNamedParam:
			ord, ok := ords[node]
			if !ok {
				value, found := params[string(node)]
				if !found {
					return "", nil, errors.Newf(
						"sqlexec: missing parameter %q",
						string(node))
				}
				args = append(args, value)
				ord = sqlp.NodeOrdinalParam(len(args))
				ords[node] = ord
			}
			ord.Append(&buf)
			consumed += 1 + len(node)

		default:
			before := len(buf)
			node.Append(&buf)
			consumed += len(buf) - before
		}
	}

	if consumed != len(sql) {
		return "", nil, errors.New(
			"sqlexec: malformed sql: unterminated quote or comment")
	}
	return string(buf), args, nil
}
