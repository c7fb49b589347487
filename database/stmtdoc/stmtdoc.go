package stmtdoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dropbox/sqlbricks/database/sqlbuilder"
	"github.com/dropbox/sqlbricks/errors"
)

const (
	KindSelect = "select"
	KindInsert = "insert"
	KindUpdate = "update"
	KindDelete = "delete"
)

// A WITH entry.  Exactly one of SQL and Select is set.
type CTE struct {
	Name      string    `json:"name"`
	Recursive bool      `json:"recursive,omitempty"`
	SQL       string    `json:"sql,omitempty"`
	Select    *Document `json:"select,omitempty"`
}

// The source of an INSERT ... SELECT.
type Source struct {
	SQL    string    `json:"sql,omitempty"`
	Select *Document `json:"select,omitempty"`
}

// Document is the decoded form of a statement document.
type Document struct {
	Kind      string           `json:"kind"`
	Table     string           `json:"table,omitempty"`
	Alias     string           `json:"alias,omitempty"`
	Only      bool             `json:"only,omitempty"`
	Distinct  bool             `json:"distinct,omitempty"`
	With      []CTE            `json:"with,omitempty"`
	Fields    []string         `json:"fields,omitempty"`
	From      []string         `json:"from,omitempty"`
	Using     []string         `json:"using,omitempty"`
	Joins     []Join           `json:"joins,omitempty"`
	Where     []string         `json:"where,omitempty"`
	WhereEq   map[string]Value `json:"where_eq,omitempty"`
	Group     []string         `json:"group,omitempty"`
	Having    []string         `json:"having,omitempty"`
	Order     []OrderItem      `json:"order,omitempty"`
	Limit     *int64           `json:"limit,omitempty"`
	Offset    *int64           `json:"offset,omitempty"`
	Set       map[string]Value `json:"set,omitempty"`
	Values    map[string]Value `json:"values,omitempty"`
	Query     *Source          `json:"query,omitempty"`
	Returning []string         `json:"returning,omitempty"`
	Params    map[string]Value `json:"params,omitempty"`
}

// Document keys each statement kind accepts, besides kind itself.
var validKeys = map[string][]string{
	KindSelect: {
		"with", "distinct", "fields", "from", "joins", "where", "where_eq",
		"group", "having", "order", "limit", "offset", "params",
	},
	KindInsert: {"table", "with", "values", "query", "returning", "params"},
	KindUpdate: {
		"table", "alias", "only", "with", "set", "from", "joins", "where",
		"where_eq", "returning", "params",
	},
	KindDelete: {
		"table", "alias", "only", "with", "using", "joins", "where",
		"where_eq", "returning", "params",
	},
}

// Parse decodes a YAML or JSON document.  Unknown keys are rejected.
// Scalars resolve per YAML 1.2: on, off, y and n stay strings.
func Parse(data []byte) (*Document, error) {
	var tree interface{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, errors.Wrap(err, "Failed to parse statement document")
	}
	jsonData, err := json.Marshal(stringKeys(tree))
	if err != nil {
		return nil, errors.Wrap(err, "Failed to parse statement document")
	}

	decoder := json.NewDecoder(bytes.NewReader(jsonData))
	decoder.DisallowUnknownFields()
	doc := &Document{}
	if err := decoder.Decode(doc); err != nil {
		return nil, errors.Wrap(err, "Failed to parse statement document")
	}
	return doc, nil
}

// Mappings with non-string keys (e.g. 1: x) decode as
// map[interface{}]interface{}, which json cannot encode.
func stringKeys(node interface{}) interface{} {
	switch n := node.(type) {
	case map[string]interface{}:
		for k, v := range n {
			n[k] = stringKeys(v)
		}
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(n))
		for k, v := range n {
			m[fmt.Sprint(k)] = stringKeys(v)
		}
		return m
	case []interface{}:
		for i, v := range n {
			n[i] = stringKeys(v)
		}
	}
	return node
}

// Load parses the document stored at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read %s", path)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "Invalid statement document %s", path)
	}
	return doc, nil
}

// Render parses data and renders the resulting statement.
func Render(data []byte) (string, sqlbuilder.Params, error) {
	doc, err := Parse(data)
	if err != nil {
		return "", nil, err
	}
	stmt, err := doc.Build()
	if err != nil {
		return "", nil, err
	}
	sql, params := stmt.Render()
	return sql, params, nil
}

// present lists the document keys that carry a value.
func (d *Document) present() []string {
	var keys []string
	add := func(key string, set bool) {
		if set {
			keys = append(keys, key)
		}
	}
	add("table", d.Table != "")
	add("alias", d.Alias != "")
	add("only", d.Only)
	add("distinct", d.Distinct)
	add("with", len(d.With) > 0)
	add("fields", len(d.Fields) > 0)
	add("from", len(d.From) > 0)
	add("using", len(d.Using) > 0)
	add("joins", len(d.Joins) > 0)
	add("where", len(d.Where) > 0)
	add("where_eq", len(d.WhereEq) > 0)
	add("group", len(d.Group) > 0)
	add("having", len(d.Having) > 0)
	add("order", len(d.Order) > 0)
	add("limit", d.Limit != nil)
	add("offset", d.Offset != nil)
	add("set", len(d.Set) > 0)
	add("values", len(d.Values) > 0)
	add("query", d.Query != nil)
	add("returning", len(d.Returning) > 0)
	add("params", len(d.Params) > 0)
	return keys
}

func (d *Document) validate() error {
	kind := strings.ToLower(d.Kind)
	allowed, ok := validKeys[kind]
	if !ok {
		return errors.Newf("Unknown statement kind %q", d.Kind)
	}
	for _, key := range d.present() {
		valid := false
		for _, a := range allowed {
			if a == key {
				valid = true
				break
			}
		}
		if !valid {
			return errors.Newf("Field %q is not valid for %s statements", key, kind)
		}
	}
	if kind != KindSelect && d.Table == "" {
		return errors.Newf("%s statements need a table", kind)
	}
	return nil
}

// Build converts the document into a statement.
func (d *Document) Build() (sqlbuilder.Statement, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}

	var stmt sqlbuilder.Statement
	var err error
	switch strings.ToLower(d.Kind) {
	case KindSelect:
		stmt, err = d.buildSelect()
	case KindInsert:
		stmt, err = d.buildInsert()
	case KindUpdate:
		stmt, err = d.buildUpdate()
	default:
		stmt, err = d.buildDelete()
	}
	if err != nil {
		return nil, err
	}
	return stmt, nil
}

type withAdder interface {
	AddWith(name string, query interface{}, flags sqlbuilder.CTEFlags) error
}

type binder interface {
	Bind(name string, value interface{}) string
}

func (d *Document) addWith(q withAdder) error {
	for _, cte := range d.With {
		if cte.Name == "" {
			return errors.New("WITH entries need a name")
		}
		var query interface{}
		switch {
		case cte.SQL != "" && cte.Select == nil:
			query = cte.SQL
		case cte.Select != nil && cte.SQL == "":
			stmt, err := cte.Select.Build()
			if err != nil {
				return errors.Wrapf(err, "Invalid WITH entry %s", cte.Name)
			}
			query = stmt
		default:
			return errors.Newf("WITH entry %s needs exactly one of sql or select", cte.Name)
		}
		flags := sqlbuilder.NoFlags
		if cte.Recursive {
			flags = sqlbuilder.Recursive
		}
		if err := q.AddWith(cte.Name, query, flags); err != nil {
			return err
		}
	}
	return nil
}

func (d *Document) bindParams(q binder) {
	for _, name := range sortedNames(d.Params) {
		q.Bind(name, d.Params[name].V)
	}
}

func (d *Document) joins() ([]interface{}, error) {
	res := make([]interface{}, 0, len(d.Joins))
	for _, j := range d.Joins {
		text, err := j.text()
		if err != nil {
			return nil, err
		}
		res = append(res, text)
	}
	return res, nil
}

func sortedNames(values map[string]Value) []string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func fragments(items []string) []interface{} {
	res := make([]interface{}, len(items))
	for i, item := range items {
		res[i] = item
	}
	return res
}

func (d *Document) buildSelect() (*sqlbuilder.Select, error) {
	q := sqlbuilder.NewSelect()
	if err := d.addWith(q); err != nil {
		return nil, err
	}
	joins, err := d.joins()
	if err != nil {
		return nil, err
	}
	if d.Distinct {
		q.Distinct()
	}
	q.AddFields(fragments(d.Fields)...).
		AddFrom(fragments(d.From)...).
		AddJoin(joins...).
		AddWhere(fragments(d.Where)...)
	for _, column := range sortedNames(d.WhereEq) {
		q.AddWhereEq(column, d.WhereEq[column].V)
	}
	q.AddGroup(fragments(d.Group)...).
		AddHaving(fragments(d.Having)...)
	for _, item := range d.Order {
		q.AddOrder(item.term())
	}
	q.AddLimit(d.Limit, d.Offset)
	d.bindParams(q)
	return q, nil
}

func (d *Document) buildInsert() (*sqlbuilder.Insert, error) {
	q := sqlbuilder.NewInsert(d.Table)
	if err := d.addWith(q); err != nil {
		return nil, err
	}
	for _, column := range sortedNames(d.Values) {
		q.Value(column, d.Values[column].V)
	}
	if d.Query != nil {
		var source interface{}
		switch {
		case d.Query.SQL != "" && d.Query.Select == nil:
			source = d.Query.SQL
		case d.Query.Select != nil && d.Query.SQL == "":
			if strings.ToLower(d.Query.Select.Kind) != KindSelect {
				return nil, errors.New("Insert queries must be select statements")
			}
			sel, err := d.Query.Select.buildSelect()
			if err != nil {
				return nil, err
			}
			source = sel
		default:
			return nil, errors.New("query needs exactly one of sql or select")
		}
		if err := q.AddQuery(source); err != nil {
			return nil, err
		}
	}
	q.AddReturning(fragments(d.Returning)...)
	d.bindParams(q)
	return q, nil
}

func (d *Document) buildUpdate() (*sqlbuilder.Update, error) {
	q := sqlbuilder.NewUpdate(d.Table)
	if err := d.addWith(q); err != nil {
		return nil, err
	}
	joins, err := d.joins()
	if err != nil {
		return nil, err
	}
	if d.Alias != "" {
		q.As(d.Alias)
	}
	if d.Only {
		q.Only()
	}
	for _, column := range sortedNames(d.Set) {
		q.Set(column, d.Set[column].V)
	}
	q.AddFrom(fragments(d.From)...).
		AddJoin(joins...).
		AddWhere(fragments(d.Where)...)
	for _, column := range sortedNames(d.WhereEq) {
		q.AddWhereEq(column, d.WhereEq[column].V)
	}
	q.AddReturning(fragments(d.Returning)...)
	d.bindParams(q)
	return q, nil
}

func (d *Document) buildDelete() (*sqlbuilder.Delete, error) {
	q := sqlbuilder.NewDelete(d.Table)
	if err := d.addWith(q); err != nil {
		return nil, err
	}
	joins, err := d.joins()
	if err != nil {
		return nil, err
	}
	if d.Alias != "" {
		q.As(d.Alias)
	}
	if d.Only {
		q.Only()
	}
	q.AddUsing(fragments(d.Using)...).
		AddJoin(joins...).
		AddWhere(fragments(d.Where)...)
	for _, column := range sortedNames(d.WhereEq) {
		q.AddWhereEq(column, d.WhereEq[column].V)
	}
	q.AddReturning(fragments(d.Returning)...)
	d.bindParams(q)
	return q, nil
}
