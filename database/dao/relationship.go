package dao

import (
	"github.com/lib/pq"

	"github.com/dropbox/sqlbricks/database/sqlbuilder"
)

// Relationship links the records of one entity to records of Entity.
//
// A direct relationship matches Entity.Theirs against the local field Mine.
// A via relationship goes through ViaTable, whose ViaMine column holds the
// local Mine value and whose ViaTheirs column holds the target's Theirs value.
type Relationship struct {
	Name string

	// Name of the target entity in the registry.
	Entity string
	Mine   string
	Theirs string

	// When false, traversal yields at most one record.
	Collection bool

	ViaTable  string
	ViaMine   string
	ViaTheirs string
}

// ParamName is the placeholder bound to the local key, <rel>_<mine>.
func (r *Relationship) ParamName() string {
	return r.Name + "_" + r.Mine
}

func (r *Relationship) IsVia() bool {
	return r.ViaTable != ""
}

// JoinVia joins the via table onto a select over target:
//
//	JOIN "via" ON ("via"."via_theirs" = "target"."theirs")
func (r *Relationship) JoinVia(q *sqlbuilder.Select, target *Entity) *sqlbuilder.Select {
	on := sqlbuilder.Column(r.ViaTable, r.ViaTheirs).
		Eq(sqlbuilder.Column(target.TableName(), r.Theirs))
	return q.AddJoin(sqlbuilder.InnerJoin(pq.QuoteIdentifier(r.ViaTable), on))
}

// Scope restricts a select over target to the records related to a record
// whose local key is mine.  The key is bound under ParamName.
func (r *Relationship) Scope(
	q *sqlbuilder.Select,
	target *Entity,
	mine interface{}) *sqlbuilder.Select {

	var col sqlbuilder.Expression
	if r.IsVia() {
		r.JoinVia(q, target)
		col = sqlbuilder.Column(r.ViaTable, r.ViaMine)
	} else {
		col = sqlbuilder.Column(target.TableName(), r.Theirs)
	}
	return q.AddWhere(col.String() + " = " + q.Bind(r.ParamName(), mine))
}
