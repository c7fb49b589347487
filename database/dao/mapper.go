package dao

import (
	"context"

	"github.com/dropbox/sqlbricks/errors"
)

// Mapper loads and persists records through an Executor.  Entities are
// looked up by name in its registry.
type Mapper struct {
	exec     Executor
	registry *Registry
}

func NewMapper(exec Executor, registry *Registry) *Mapper {
	return &Mapper{exec: exec, registry: registry}
}

func (m *Mapper) Registry() *Registry {
	return m.registry
}

// NewRecord returns an empty record of the named entity.
func (m *Mapper) NewRecord(entityName string) (*Record, error) {
	entity, err := m.registry.Lookup(entityName)
	if err != nil {
		return nil, err
	}
	return NewRecord(entity), nil
}

// LoadBy returns the records matching every predicate and filter, see
// BuildLoadBy.  Nothing runs until the collection is iterated.
func (m *Mapper) LoadBy(
	ctx context.Context,
	entityName string,
	predicates []interface{},
	filters map[string]interface{}) (*Collection, error) {

	entity, err := m.registry.Lookup(entityName)
	if err != nil {
		return nil, err
	}
	q, err := BuildLoadBy(entity, predicates, filters)
	if err != nil {
		return nil, err
	}
	return NewCollection(ctx, m.exec, entity, q), nil
}

// LoadByPrimary returns NotFoundError when no row has the key.
func (m *Mapper) LoadByPrimary(
	ctx context.Context,
	entityName string,
	value interface{}) (*Record, error) {

	entity, err := m.registry.Lookup(entityName)
	if err != nil {
		return nil, err
	}
	coll, err := m.LoadBy(
		ctx,
		entityName,
		nil,
		map[string]interface{}{entity.Primary(): value})
	if err != nil {
		return nil, err
	}
	return coll.First()
}

// Save inserts or updates rec, then writes the returned row back into it and
// clears the change-set.  A record with a primary key and no changes is left
// alone.
func (m *Mapper) Save(ctx context.Context, rec *Record) error {
	stmt, err := BuildSave(rec)
	if err != nil {
		return err
	}
	if stmt == nil {
		return nil
	}

	sql, params := stmt.Render()
	cursor, err := m.exec.Query(ctx, sql, params)
	if err != nil {
		return errors.Wrapf(err, "Failed to save %s", rec.Entity().Name())
	}
	defer func() { _ = cursor.Close() }()

	if !cursor.Next() {
		if err := cursor.Err(); err != nil {
			return errors.Wrapf(err, "Failed to save %s", rec.Entity().Name())
		}
		return newNotFound(rec.Entity().Name())
	}
	return rec.Load(cursor.Row())
}

// Delete removes rec's row and returns the number of rows deleted.  A record
// without primary key is a no-op.
func (m *Mapper) Delete(ctx context.Context, rec *Record) (int64, error) {
	q, ok := BuildDelete(rec)
	if !ok {
		return 0, nil
	}
	sql, params := q.Render()
	n, err := m.exec.Exec(ctx, sql, params)
	if err != nil {
		return 0, errors.Wrapf(err, "Failed to delete %s", rec.Entity().Name())
	}
	return n, nil
}

// Related traverses the named relationship of rec.  Single valued
// relationships yield at most one record.
func (m *Mapper) Related(
	ctx context.Context,
	rec *Record,
	relName string) (*Collection, error) {

	entity := rec.Entity()
	if entity == nil {
		return nil, errors.New("Cannot traverse relationships of an unbound record")
	}
	rel, err := entity.Relationship(relName)
	if err != nil {
		return nil, err
	}
	target, err := m.registry.Lookup(rel.Entity)
	if err != nil {
		return nil, err
	}
	q, err := BuildRelated(rec, rel, target)
	if err != nil {
		return nil, err
	}
	return NewCollection(ctx, m.exec, target, q), nil
}

// RelatedOne returns the first related record, or NotFoundError.
func (m *Mapper) RelatedOne(
	ctx context.Context,
	rec *Record,
	relName string) (*Record, error) {

	coll, err := m.Related(ctx, rec, relName)
	if err != nil {
		return nil, err
	}
	return coll.First()
}
