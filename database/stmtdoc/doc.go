// Package stmtdoc decodes declarative statement documents into sqlbuilder
// statements.  Documents are YAML or JSON:
//
//	kind: select
//	fields: [id, name]
//	from: [users]
//	where: ["age > :min_age"]
//	where_eq:
//	  name: john
//	order: [{expr: id, dir: DESC}]
//	limit: 10
//	params:
//	  min_age: 18
//
// Values in where_eq, set, values and params are bound as parameters.  A
// value written as {literal: "now()"} is embedded as raw sql instead.
//
// Scalars resolve per YAML 1.2, so a bare on, off, y or n is a string:
//
//	joins:
//	  - {type: left, table: posts, on: posts.user_id = users.id}
package stmtdoc
