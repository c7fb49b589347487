package dao

import (
	"sort"

	"github.com/dropbox/sqlbricks/database/sqlbuilder"
	"github.com/dropbox/sqlbricks/errors"
)

// BuildLoadBy selects every mapped field of entity.  Each predicate becomes
// one WHERE fragment as is.  Each filter becomes "<field> = :<field>" with
// its value bound, in sorted field order.  Filters must name mapped fields.
func BuildLoadBy(
	entity *Entity,
	predicates []interface{},
	filters map[string]interface{}) (*sqlbuilder.Select, error) {

	q := sqlbuilder.NewSelect().
		AddFields(entity.Projections()...).
		AddFrom(entity.Table())
	q.AddWhere(predicates...)

	fields := make([]string, 0, len(filters))
	for field := range filters {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		if !entity.HasField(field) {
			return nil, newUnknownField(entity.Name(), field)
		}
		q.AddWhereEq(field, filters[field])
	}
	return q, nil
}

// BuildSave builds the statement persisting rec's change-set: an INSERT when
// the primary key is unset, an UPDATE scoped by the primary key otherwise.
// Both return every mapped field.  A nil statement means there is nothing to
// save: the record has a primary key and no changes.  A set primary key must
// not be in the change-set, see PrimaryKeyChangeError.
func BuildSave(rec *Record) (sqlbuilder.Statement, error) {
	entity := rec.Entity()
	if entity == nil {
		return nil, errors.New("Cannot save an unbound record")
	}

	pk, hasPk := rec.PrimaryValue()
	if !hasPk {
		q := entity.Table().Insert()
		for _, field := range rec.Changed() {
			v, _ := rec.Get(field)
			q.Value(field, v)
		}
		return q.AddReturning(entity.Returning()...), nil
	}

	if !rec.IsDirty() {
		return nil, nil
	}
	q := entity.Table().Update()
	for _, field := range rec.Changed() {
		if field == entity.Primary() {
			return nil, newPrimaryKeyChange(entity.Name(), field)
		}
		v, _ := rec.Get(field)
		q.Set(field, v)
	}
	return q.
		AddWhereEq(entity.Primary(), pk).
		AddReturning(entity.Returning()...), nil
}

// BuildDelete builds "DELETE ... WHERE <primary> = :<primary>".  ok is false,
// and no statement is built, when the primary key is unset.
func BuildDelete(rec *Record) (q *sqlbuilder.Delete, ok bool) {
	entity := rec.Entity()
	pk, hasPk := rec.PrimaryValue()
	if entity == nil || !hasPk {
		return nil, false
	}
	return entity.Table().Delete().AddWhereEq(entity.Primary(), pk), true
}

// BuildRelated selects the target records of rel for rec.
func BuildRelated(
	rec *Record,
	rel *Relationship,
	target *Entity) (*sqlbuilder.Select, error) {

	mine, ok := rec.Get(rel.Mine)
	if !ok {
		return nil, errors.Newf(
			"Cannot traverse %s: field '%s' is unset",
			rel.Name,
			rel.Mine)
	}
	if !target.HasField(rel.Theirs) {
		return nil, newUnknownField(target.Name(), rel.Theirs)
	}

	q, err := BuildLoadBy(target, nil, nil)
	if err != nil {
		return nil, err
	}
	rel.Scope(q, target, mine)
	if !rel.Collection {
		q.Limit(1)
	}
	return q, nil
}
