package dao

import (
	"github.com/dropbox/sqlbricks/container/linked_hashmap"
	"github.com/dropbox/sqlbricks/database/sqltypes"
	"github.com/dropbox/sqlbricks/errors"
)

// Record holds the field values of one row of an entity, plus the change-set:
// the fields written since the record was last loaded or saved, in write
// order.  The zero Record is unbound and rejects writes.
type Record struct {
	entity  *Entity
	values  map[string]interface{}
	changed *linked_hashmap.LinkedHashmap[struct{}]
}

func NewRecord(entity *Entity) *Record {
	return &Record{
		entity:  entity,
		values:  make(map[string]interface{}),
		changed: linked_hashmap.NewLinkedHashmap[struct{}](4),
	}
}

// Returns nil for an unbound record.
func (r *Record) Entity() *Entity {
	return r.entity
}

func (r *Record) Get(field string) (interface{}, bool) {
	v, ok := r.values[field]
	return v, ok
}

// Scan converts a field value into dest, see sqltypes.ConvertAssign.  An
// unset or NULL field leaves dest untouched.
func (r *Record) Scan(field string, dest interface{}) error {
	raw, ok := r.values[field]
	if !ok || raw == nil {
		return nil
	}
	v, err := sqltypes.BuildValue(raw)
	if err != nil {
		return err
	}
	return sqltypes.ConvertAssign(v, dest)
}

// Set writes a mapped field and adds it to the change-set.
func (r *Record) Set(field string, value interface{}) error {
	if r.entity == nil {
		return newUnboundFieldWrite(field)
	}
	if !r.entity.HasField(field) {
		return newUnknownField(r.entity.Name(), field)
	}
	r.values[field] = value
	r.changed.Put(field, struct{}{})
	return nil
}

// Changed returns the change-set in write order.
func (r *Record) Changed() []string {
	if r.changed == nil {
		return nil
	}
	return r.changed.Keys()
}

func (r *Record) IsDirty() bool {
	return r.changed != nil && r.changed.Len() > 0
}

// PrimaryValue returns the primary key value.  ok is false when the key is
// unset or NULL.
func (r *Record) PrimaryValue() (value interface{}, ok bool) {
	if r.entity == nil {
		return nil, false
	}
	v, found := r.values[r.entity.Primary()]
	if !found || v == nil {
		return nil, false
	}
	return v, true
}

// Values returns a copy of every set field.
func (r *Record) Values() map[string]interface{} {
	res := make(map[string]interface{}, len(r.values))
	for k, v := range r.values {
		res[k] = v
	}
	return res
}

// Load copies the mapped columns of row into the record and clears the
// change-set.  Columns the entity does not map are ignored.
func (r *Record) Load(row Row) error {
	if r.entity == nil {
		return errors.New("Cannot load a row into an unbound record")
	}
	for i, col := range row.Columns() {
		if r.entity.HasField(col) {
			r.values[col] = row.Values()[i]
		}
	}
	r.clearChanges()
	return nil
}

func (r *Record) clearChanges() {
	r.changed = linked_hashmap.NewLinkedHashmap[struct{}](4)
}
