package sqlbuilder

// The name of a clause a statement accumulates fragments for.
type ClauseName string

const (
	FromClause      ClauseName = "from"
	UsingClause     ClauseName = "using"
	JoinClause      ClauseName = "join"
	WhereClause     ClauseName = "where"
	HavingClause    ClauseName = "having"
	FieldsClause    ClauseName = "fields"
	OrderClause     ClauseName = "order"
	GroupClause     ClauseName = "group"
	LimitClause     ClauseName = "limit"
	OffsetClause    ClauseName = "offset"
	WithClause      ClauseName = "with"
	SetClause       ClauseName = "set"
	ValuesClause    ClauseName = "values"
	QueryClause     ClauseName = "query"
	ReturningClause ClauseName = "returning"
)

type Statement interface {
	// Render returns the generated sql together with a copy of the bound
	// parameters.  Rendering never modifies the statement.
	Render() (sql string, params Params)

	// String returns the generated sql without the parameters.
	String() string
}

// Flags of a WITH entry.
type CTEFlags uint

const (
	NoFlags   CTEFlags = 0
	Recursive CTEFlags = 1
)

// Int64 returns a pointer to n, for use with AddLimit.
func Int64(n int64) *int64 {
	return &n
}
