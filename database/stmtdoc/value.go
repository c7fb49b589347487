package stmtdoc

import (
	"bytes"
	"encoding/json"

	"github.com/dropbox/sqlbricks/database/sqlbuilder"
	"github.com/dropbox/sqlbricks/errors"
)

// Value is a document value.  Scalars decode to their Go counterparts, with
// integral numbers as int64.  {literal: "..."} decodes to a sqlbuilder.Literal
// and {expr: "..."} to a sqlbuilder.Expression.
type Value struct {
	V interface{}
}

type valueObject struct {
	Literal *string `json:"literal"`
	Expr    *string `json:"expr"`
}

func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var obj valueObject
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&obj); err != nil {
			return errors.Wrap(err, "value objects take either literal or expr")
		}
		switch {
		case obj.Literal != nil && obj.Expr == nil:
			v.V = sqlbuilder.Literal(*obj.Literal)
		case obj.Expr != nil && obj.Literal == nil:
			v.V = sqlbuilder.Expr(*obj.Expr)
		default:
			return errors.New("value objects take exactly one of literal or expr")
		}
		return nil
	}

	var raw interface{}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	v.V = normalize(raw)
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch t := v.V.(type) {
	case sqlbuilder.Literal:
		return json.Marshal(map[string]string{"literal": string(t)})
	case sqlbuilder.Expression:
		return json.Marshal(map[string]string{"expr": t.String()})
	}
	return json.Marshal(v.V)
}

func normalize(raw interface{}) interface{} {
	switch t := raw.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case []interface{}:
		for i := range t {
			t[i] = normalize(t[i])
		}
	case map[string]interface{}:
		for k := range t {
			t[k] = normalize(t[k])
		}
	}
	return raw
}

// OrderItem is either a bare expression, sorted ascending, or
// {expr: ..., dir: ...}.
type OrderItem struct {
	Expr string `json:"expr"`
	Dir  string `json:"dir,omitempty"`
}

func (o *OrderItem) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*o = OrderItem{Expr: s}
		return nil
	}
	type plain OrderItem
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*o = OrderItem(p)
	return nil
}

func (o OrderItem) term() interface{} {
	if o.Dir == "" {
		return o.Expr
	}
	return sqlbuilder.OrderTerm{Expr: o.Expr, Direction: o.Dir}
}

// Join is either raw join text or {type: inner|left, table: ..., on: ...}.
type Join struct {
	Type  string `json:"type,omitempty"`
	Table string `json:"table,omitempty"`
	On    string `json:"on,omitempty"`
	SQL   string `json:"sql,omitempty"`
}

func (j *Join) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*j = Join{SQL: s}
		return nil
	}
	type plain Join
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*j = Join(p)
	return nil
}

func (j Join) text() (interface{}, error) {
	if j.SQL != "" {
		return j.SQL, nil
	}
	if j.Table == "" || j.On == "" {
		return nil, errors.New("joins need table and on, or sql")
	}
	switch j.Type {
	case "", "inner":
		return sqlbuilder.InnerJoin(j.Table, j.On), nil
	case "left":
		return sqlbuilder.LeftJoin(j.Table, j.On), nil
	}
	return nil, errors.Newf("unknown join type %q", j.Type)
}
