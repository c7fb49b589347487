package sqlbuilder

import (
	"bytes"
	"sort"
	"strconv"
	"strings"

	"github.com/dropbox/sqlbricks/container/linked_hashmap"
)

// State shared by every statement: the accumulated clauses and the bound
// parameters.  Clause fragments are rendered to text when added; WITH entries
// are rendered when the statement is.
type statementBase struct {
	ParameterBinder
	clauses clauseStore
}

func newStatementBase() statementBase {
	return statementBase{clauses: newClauseStore()}
}

func (b *statementBase) copyBase() statementBase {
	return statementBase{
		ParameterBinder: ParameterBinder{params: b.Params()},
		clauses:         b.clauses.copy(),
	}
}

// Renders a fragment.  Statements become parenthesized subqueries and their
// parameters are merged into this statement's.
func (b *statementBase) fragment(f interface{}) string {
	switch v := f.(type) {
	case Statement:
		sql, params := v.Render()
		b.mergeParams(params)
		return "(" + sql + ")"
	case Aliased:
		if _, ok := v.Expr.(Statement); ok {
			return b.fragment(v.Expr) + " AS " + v.Alias
		}
	}
	return fragmentText(f)
}

func (b *statementBase) addFragments(name ClauseName, fragments []interface{}) {
	for _, f := range fragments {
		b.clauses.addToSet(name, b.fragment(f))
	}
}

func (b *statementBase) addOrder(terms []interface{}) {
	for _, term := range terms {
		if o, ok := term.(OrderTerm); ok {
			b.clauses.appendList(OrderClause, o.String())
		} else {
			b.clauses.appendList(OrderClause, b.fragment(term)+" ASC")
		}
	}
}

// The right hand side of "<column> = ..." in SET, VALUES and AddWhereEq.
func (b *statementBase) valueText(column string, value interface{}) string {
	switch v := value.(type) {
	case Literal:
		return string(v)
	case Expression:
		return v.sql
	case Statement:
		return b.fragment(v)
	}
	return b.Bind(PlaceholderName(column), value)
}

func (b *statementBase) addWhereEq(column interface{}, value interface{}) {
	colText := fragmentText(column)
	if value == nil {
		b.clauses.addToSet(WhereClause, colText+" IS NULL")
		return
	}
	b.clauses.addToSet(WhereClause, colText+" = "+b.valueText(colText, value))
}

func (b *statementBase) setLimit(limit *int64, offset *int64) {
	if limit != nil {
		b.clauses.setScalar(LimitClause, *limit)
	}
	if offset != nil {
		b.clauses.setScalar(OffsetClause, *offset)
	}
}

func (b *statementBase) addWith(
	name string,
	query interface{},
	flags CTEFlags) error {

	switch query.(type) {
	case Statement, string, Literal:
	default:
		return newClauseTypeMismatch(WithClause, query, "a statement or sql text")
	}
	b.clauses.putWith(name, cteEntry{query: query, flags: flags})
	return nil
}

func mapValues(m *linked_hashmap.LinkedHashmap[string]) []string {
	if m == nil {
		return nil
	}
	values := make([]string, 0, m.Len())
	m.Do(func(_ string, v string) {
		values = append(values, v)
	})
	return values
}

func (b *statementBase) renderList(
	name ClauseName,
	keyword string,
	sep string) string {

	values := mapValues(b.clauses.getMap(name))
	if len(values) == 0 {
		return ""
	}
	text := strings.Join(values, sep)
	if keyword == "" {
		return text
	}
	return keyword + " " + text
}

func (b *statementBase) renderConditions(name ClauseName, keyword string) string {
	values := mapValues(b.clauses.getMap(name))
	if len(values) == 0 {
		return ""
	}
	buf := new(bytes.Buffer)
	_, _ = buf.WriteString(keyword)
	for i, v := range values {
		if i > 0 {
			_, _ = buf.WriteString(" AND")
		}
		_, _ = buf.WriteString(" (")
		_, _ = buf.WriteString(v)
		_ = buf.WriteByte(')')
	}
	return buf.String()
}

func (b *statementBase) renderOrder() string {
	terms := b.clauses.getList(OrderClause)
	if len(terms) == 0 {
		return ""
	}
	return "ORDER BY " + strings.Join(terms, ", ")
}

func (b *statementBase) renderLimit() string {
	var parts []string
	if v, ok := b.clauses.getScalar(LimitClause); ok {
		parts = append(parts, "LIMIT "+strconv.FormatInt(v.(int64), 10))
	}
	if v, ok := b.clauses.getScalar(OffsetClause); ok {
		parts = append(parts, "OFFSET "+strconv.FormatInt(v.(int64), 10))
	}
	return strings.Join(parts, " ")
}

// Statement-valued entries contribute their parameters to params.
func (b *statementBase) renderWith(params Params) string {
	ctes := b.clauses.ctes
	if ctes == nil || ctes.Len() == 0 {
		return ""
	}
	recursive := false
	parts := make([]string, 0, ctes.Len())
	ctes.Do(func(name string, entry cteEntry) {
		if entry.flags&Recursive != 0 {
			recursive = true
		}
		var inner string
		if stmt, ok := entry.query.(Statement); ok {
			sql, innerParams := stmt.Render()
			params.merge(innerParams)
			inner = sql
		} else {
			inner = fragmentText(entry.query)
		}
		parts = append(parts, name+" AS ("+inner+")")
	})
	if recursive {
		return "WITH RECURSIVE " + strings.Join(parts, ", ")
	}
	return "WITH " + strings.Join(parts, ", ")
}

func (b *statementBase) renderReturning() string {
	return b.renderList(ReturningClause, "RETURNING", ", ")
}

// Joins the non-empty slots with newlines.
func joinSlots(slots ...string) string {
	buf := new(bytes.Buffer)
	for _, slot := range slots {
		if slot == "" {
			continue
		}
		if buf.Len() > 0 {
			_ = buf.WriteByte('\n')
		}
		_, _ = buf.WriteString(slot)
	}
	return buf.String()
}

func sortedKeys(values map[string]interface{}) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func tableHeader(keyword string, only bool, table string, alias string) string {
	buf := new(bytes.Buffer)
	_, _ = buf.WriteString(keyword)
	if only {
		_, _ = buf.WriteString(" ONLY")
	}
	_ = buf.WriteByte(' ')
	_, _ = buf.WriteString(table)
	if alias != "" {
		_, _ = buf.WriteString(" AS ")
		_, _ = buf.WriteString(alias)
	}
	return buf.String()
}

//
// SELECT Statement ============================================================
//

type Select struct {
	statementBase
	distinct bool
}

func NewSelect() *Select {
	return &Select{statementBase: newStatementBase()}
}

// Returns a deep copy.  Mutating the copy does not affect q.
func (q *Select) Copy() *Select {
	return &Select{
		statementBase: q.copyBase(),
		distinct:      q.distinct,
	}
}

// AddWith adds a common table expression.  query must be a Statement, a
// string or a Literal.  Re-adding a name replaces its query in place.
func (q *Select) AddWith(name string, query interface{}, flags CTEFlags) error {
	return q.addWith(name, query, flags)
}

func (q *Select) AddFields(fields ...interface{}) *Select {
	q.addFragments(FieldsClause, fields)
	return q
}

func (q *Select) AddTables(clause ClauseName, tables ...interface{}) *Select {
	q.addFragments(clause, tables)
	return q
}

func (q *Select) AddFrom(tables ...interface{}) *Select {
	return q.AddTables(FromClause, tables...)
}

// Join fragments carry their own JOIN ... ON ... text, see InnerJoin.
func (q *Select) AddJoin(joins ...interface{}) *Select {
	q.addFragments(JoinClause, joins)
	return q
}

func (q *Select) AddWhere(conditions ...interface{}) *Select {
	q.addFragments(WhereClause, conditions)
	return q
}

// Adds "<column> = :<column>" and binds value.
func (q *Select) AddWhereEq(column interface{}, value interface{}) *Select {
	q.addWhereEq(column, value)
	return q
}

func (q *Select) AddGroup(expressions ...interface{}) *Select {
	q.addFragments(GroupClause, expressions)
	return q
}

func (q *Select) AddHaving(conditions ...interface{}) *Select {
	q.addFragments(HavingClause, conditions)
	return q
}

// Bare terms sort ascending.  Use Asc / Desc / OrderTerm for an explicit
// direction.
func (q *Select) AddOrder(terms ...interface{}) *Select {
	q.addOrder(terms)
	return q
}

// A nil limit or offset leaves that part untouched.
func (q *Select) AddLimit(limit *int64, offset *int64) *Select {
	q.setLimit(limit, offset)
	return q
}

func (q *Select) Limit(limit int64) *Select {
	return q.AddLimit(&limit, nil)
}

func (q *Select) Offset(offset int64) *Select {
	return q.AddLimit(nil, &offset)
}

func (q *Select) Distinct() *Select {
	q.distinct = true
	return q
}

func (q *Select) Render() (string, Params) {
	params := q.Params()

	header := "SELECT"
	if q.distinct {
		header += " DISTINCT"
	}
	if fields := q.renderList(FieldsClause, "", ", "); fields != "" {
		header += " " + fields
	}

	sql := joinSlots(
		q.renderWith(params),
		header,
		q.renderList(FromClause, "FROM", ", "),
		q.renderList(JoinClause, "", " "),
		q.renderConditions(WhereClause, "WHERE"),
		q.renderList(GroupClause, "GROUP BY", ", "),
		q.renderConditions(HavingClause, "HAVING"),
		q.renderOrder(),
		q.renderLimit())
	return sql, params
}

func (q *Select) String() string {
	sql, _ := q.Render()
	return sql
}

//
// INSERT Statement ============================================================
//

type Insert struct {
	statementBase
	table string
}

func NewInsert(table string) *Insert {
	return &Insert{
		statementBase: newStatementBase(),
		table:         table,
	}
}

func (q *Insert) Table() string {
	return q.table
}

func (q *Insert) AddWith(name string, query interface{}, flags CTEFlags) error {
	return q.addWith(name, query, flags)
}

// Value sets the value of column.  Literal and Expression values are
// embedded, anything else is bound under the column's placeholder.  Setting a
// column twice keeps its position and the last value.
func (q *Insert) Value(column string, value interface{}) *Insert {
	q.clauses.putKeyed(ValuesClause, column, q.valueText(column, value))
	return q
}

// AddValues adds every entry of values, in sorted column order.
func (q *Insert) AddValues(values map[string]interface{}) *Insert {
	for _, column := range sortedKeys(values) {
		q.Value(column, values[column])
	}
	return q
}

// AddQuery sets the source query, INSERT INTO ... SELECT.  query must be a
// string, a Literal or a *Select.  VALUES take precedence over the query.
func (q *Insert) AddQuery(query interface{}) error {
	switch query.(type) {
	case string, Literal, *Select:
	default:
		return newClauseTypeMismatch(QueryClause, query, "a SELECT")
	}
	q.clauses.setScalar(QueryClause, query)
	return nil
}

func (q *Insert) AddReturning(fields ...interface{}) *Insert {
	q.addFragments(ReturningClause, fields)
	return q
}

func (q *Insert) renderSource(params Params) string {
	if values := q.clauses.getMap(ValuesClause); values != nil && values.Len() > 0 {
		return "(" + strings.Join(values.Keys(), ", ") +
			") VALUES (" + strings.Join(mapValues(values), ", ") + ")"
	}
	if query, ok := q.clauses.getScalar(QueryClause); ok {
		if sel, ok := query.(*Select); ok {
			sql, innerParams := sel.Render()
			params.merge(innerParams)
			return sql
		}
		return fragmentText(query)
	}
	return "DEFAULT VALUES"
}

func (q *Insert) Render() (string, Params) {
	params := q.Params()
	sql := joinSlots(
		q.renderWith(params),
		"INSERT INTO "+q.table,
		q.renderSource(params),
		q.renderReturning())
	return sql, params
}

func (q *Insert) String() string {
	sql, _ := q.Render()
	return sql
}

//
// UPDATE Statement ============================================================
//

type Update struct {
	statementBase
	table string
	alias string
	only  bool
}

func NewUpdate(table string) *Update {
	return &Update{
		statementBase: newStatementBase(),
		table:         table,
	}
}

func (q *Update) Table() string {
	return q.table
}

func (q *Update) As(alias string) *Update {
	q.alias = alias
	return q
}

// Only restricts the update to the named table, excluding inheriting tables.
func (q *Update) Only() *Update {
	q.only = true
	return q
}

func (q *Update) AddWith(name string, query interface{}, flags CTEFlags) error {
	return q.addWith(name, query, flags)
}

// Set renders "<column> = <value>".  Literal and Expression values are
// embedded, anything else is bound under the column's placeholder.
func (q *Update) Set(column string, value interface{}) *Update {
	q.clauses.putKeyed(SetClause, column, column+" = "+q.valueText(column, value))
	return q
}

// AddSet adds every entry of values, in sorted column order.
func (q *Update) AddSet(values map[string]interface{}) *Update {
	for _, column := range sortedKeys(values) {
		q.Set(column, values[column])
	}
	return q
}

func (q *Update) AddTables(clause ClauseName, tables ...interface{}) *Update {
	q.addFragments(clause, tables)
	return q
}

func (q *Update) AddFrom(tables ...interface{}) *Update {
	return q.AddTables(FromClause, tables...)
}

func (q *Update) AddJoin(joins ...interface{}) *Update {
	q.addFragments(JoinClause, joins)
	return q
}

func (q *Update) AddWhere(conditions ...interface{}) *Update {
	q.addFragments(WhereClause, conditions)
	return q
}

func (q *Update) AddWhereEq(column interface{}, value interface{}) *Update {
	q.addWhereEq(column, value)
	return q
}

func (q *Update) AddReturning(fields ...interface{}) *Update {
	q.addFragments(ReturningClause, fields)
	return q
}

func (q *Update) Render() (string, Params) {
	params := q.Params()
	sql := joinSlots(
		q.renderWith(params),
		tableHeader("UPDATE", q.only, q.table, q.alias),
		q.renderList(SetClause, "SET", ", "),
		q.renderList(FromClause, "FROM", ", "),
		q.renderList(JoinClause, "", " "),
		q.renderConditions(WhereClause, "WHERE"),
		q.renderReturning())
	return sql, params
}

func (q *Update) String() string {
	sql, _ := q.Render()
	return sql
}

//
// DELETE Statement ============================================================
//

type Delete struct {
	statementBase
	table string
	alias string
	only  bool
}

func NewDelete(table string) *Delete {
	return &Delete{
		statementBase: newStatementBase(),
		table:         table,
	}
}

func (q *Delete) Table() string {
	return q.table
}

func (q *Delete) As(alias string) *Delete {
	q.alias = alias
	return q
}

func (q *Delete) Only() *Delete {
	q.only = true
	return q
}

func (q *Delete) AddWith(name string, query interface{}, flags CTEFlags) error {
	return q.addWith(name, query, flags)
}

func (q *Delete) AddTables(clause ClauseName, tables ...interface{}) *Delete {
	q.addFragments(clause, tables)
	return q
}

func (q *Delete) AddUsing(tables ...interface{}) *Delete {
	return q.AddTables(UsingClause, tables...)
}

func (q *Delete) AddJoin(joins ...interface{}) *Delete {
	q.addFragments(JoinClause, joins)
	return q
}

func (q *Delete) AddWhere(conditions ...interface{}) *Delete {
	q.addFragments(WhereClause, conditions)
	return q
}

func (q *Delete) AddWhereEq(column interface{}, value interface{}) *Delete {
	q.addWhereEq(column, value)
	return q
}

func (q *Delete) AddReturning(fields ...interface{}) *Delete {
	q.addFragments(ReturningClause, fields)
	return q
}

func (q *Delete) Render() (string, Params) {
	params := q.Params()
	sql := joinSlots(
		q.renderWith(params),
		tableHeader("DELETE FROM", q.only, q.table, q.alias),
		q.renderList(UsingClause, "USING", ", "),
		q.renderList(JoinClause, "", " "),
		q.renderConditions(WhereClause, "WHERE"),
		q.renderReturning())
	return sql, params
}

func (q *Delete) String() string {
	sql, _ := q.Render()
	return sql
}
