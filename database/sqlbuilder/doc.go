// A library for generating sql programmatically.
//
// SQL COMPATIBILITY NOTE: sqlbuilder generates PostgreSQL statements.  Named
// placeholders are rendered as :name; database/sqlexec rewrites them into
// positional $n parameters before execution.
//
// A statement accumulates clause fragments through Add* calls, in any order
// and as often as needed, and renders them in a fixed clause order:
//
//	q := sqlbuilder.NewSelect().
//		AddFields("id", "name").
//		AddFrom("users").
//		AddWhereEq("name", "john").
//		AddOrder(sqlbuilder.Desc("id")).
//		Limit(10)
//	sql, params := q.Render()
//
// Fragments are plain sql text.  Only values passed to Set, Value and
// AddWhereEq are bound as parameters; Expression operands are quoted through
// Escape.  Callers are responsible for everything else they embed.
//
// Known limitations:
//   - WHERE and HAVING fragments are always joined with AND.  Build OR inside
//     a single fragment, e.g. with Expression.Or.
//   - placeholder names derive from column names, so binding two values for
//     the same column in one statement keeps only the last one.
//   - statements are not safe for concurrent mutation.  Render is read only.
package sqlbuilder
