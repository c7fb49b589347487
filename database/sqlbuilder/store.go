package sqlbuilder

import (
	"fmt"

	"github.com/dropbox/sqlbricks/container/linked_hashmap"
)

type accumulatorKind int

const (
	// Insertion ordered, identical fragments collapse.
	orderedSetKind accumulatorKind = iota
	// Keyed by column.  Last write wins, the first insertion position is kept.
	keyedMapKind
	// Append only, duplicates are kept.
	orderedListKind
	// Single value, last write wins.
	scalarKind
	// name -> (query, flags), insertion ordered.
	cteMapKind
)

var accumulatorKindNames = [...]string{
	orderedSetKind:  "ordered set",
	keyedMapKind:    "keyed map",
	orderedListKind: "ordered list",
	scalarKind:      "scalar",
	cteMapKind:      "cte map",
}

func (k accumulatorKind) String() string {
	return accumulatorKindNames[k]
}

// Every clause maps to exactly one accumulator kind.  GROUP BY is an ordered
// set as well: it deduplicates and renders in first insertion order.
var clauseKinds = map[ClauseName]accumulatorKind{
	FromClause:      orderedSetKind,
	UsingClause:     orderedSetKind,
	JoinClause:      orderedSetKind,
	WhereClause:     orderedSetKind,
	HavingClause:    orderedSetKind,
	FieldsClause:    orderedSetKind,
	GroupClause:     orderedSetKind,
	ReturningClause: orderedSetKind,
	SetClause:       keyedMapKind,
	ValuesClause:    keyedMapKind,
	OrderClause:     orderedListKind,
	LimitClause:     scalarKind,
	OffsetClause:    scalarKind,
	QueryClause:     scalarKind,
	WithClause:      cteMapKind,
}

type cteEntry struct {
	query interface{} // Statement, string or Literal
	flags CTEFlags
}

// clauseStore holds the accumulated state of every clause touched so far.
// Accumulators are created on first touch and never reset.
type clauseStore struct {
	maps    map[ClauseName]*linked_hashmap.LinkedHashmap[string]
	lists   map[ClauseName][]string
	scalars map[ClauseName]interface{}
	ctes    *linked_hashmap.LinkedHashmap[cteEntry]
}

func newClauseStore() clauseStore {
	return clauseStore{
		maps:    make(map[ClauseName]*linked_hashmap.LinkedHashmap[string]),
		lists:   make(map[ClauseName][]string),
		scalars: make(map[ClauseName]interface{}),
	}
}

// Panics when name is unknown or is not backed by one of the given kinds.
func checkKind(name ClauseName, kinds ...accumulatorKind) {
	actual, ok := clauseKinds[name]
	if !ok {
		panic(fmt.Sprintf("sqlbuilder: unknown clause %q", name))
	}
	for _, kind := range kinds {
		if actual == kind {
			return
		}
	}
	panic(fmt.Sprintf(
		"sqlbuilder: clause %q is backed by %s, not %s", name, actual, kinds[0]))
}

func (s *clauseStore) has(name ClauseName) bool {
	switch clauseKinds[name] {
	case orderedSetKind, keyedMapKind:
		_, ok := s.maps[name]
		return ok
	case orderedListKind:
		_, ok := s.lists[name]
		return ok
	case scalarKind:
		_, ok := s.scalars[name]
		return ok
	case cteMapKind:
		return s.ctes != nil
	}
	return false
}

// ensureMap returns the set (or keyed map) for name, creating it on first
// touch.
func (s *clauseStore) ensureMap(name ClauseName) *linked_hashmap.LinkedHashmap[string] {
	checkKind(name, orderedSetKind, keyedMapKind)
	m, ok := s.maps[name]
	if !ok {
		m = linked_hashmap.NewLinkedHashmap[string](4)
		s.maps[name] = m
	}
	return m
}

// Returns nil if the clause was never touched.
func (s *clauseStore) getMap(name ClauseName) *linked_hashmap.LinkedHashmap[string] {
	checkKind(name, orderedSetKind, keyedMapKind)
	return s.maps[name]
}

func (s *clauseStore) addToSet(name ClauseName, fragment string) {
	checkKind(name, orderedSetKind)
	s.ensureMap(name).PutIfAbsent(fragment, fragment)
}

func (s *clauseStore) putKeyed(name ClauseName, key string, value string) {
	checkKind(name, keyedMapKind)
	s.ensureMap(name).Put(key, value)
}

func (s *clauseStore) appendList(name ClauseName, items ...string) {
	checkKind(name, orderedListKind)
	s.lists[name] = append(s.lists[name], items...)
}

func (s *clauseStore) getList(name ClauseName) []string {
	checkKind(name, orderedListKind)
	return s.lists[name]
}

func (s *clauseStore) setScalar(name ClauseName, value interface{}) {
	checkKind(name, scalarKind)
	s.scalars[name] = value
}

func (s *clauseStore) getScalar(name ClauseName) (interface{}, bool) {
	checkKind(name, scalarKind)
	v, ok := s.scalars[name]
	return v, ok
}

func (s *clauseStore) putWith(name string, entry cteEntry) {
	if s.ctes == nil {
		s.ctes = linked_hashmap.NewLinkedHashmap[cteEntry](2)
	}
	s.ctes.Put(name, entry)
}

func (s *clauseStore) copy() clauseStore {
	res := newClauseStore()
	for name, m := range s.maps {
		res.maps[name] = m.Copy()
	}
	for name, l := range s.lists {
		res.lists[name] = append([]string(nil), l...)
	}
	for name, v := range s.scalars {
		res.scalars[name] = v
	}
	if s.ctes != nil {
		res.ctes = s.ctes.Copy()
	}
	return res
}
