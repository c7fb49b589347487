package sqlexec

import (
	"github.com/lib/pq"

	"github.com/dropbox/sqlbricks/errors"
)

// A few SQLSTATE codes callers commonly branch on.
const (
	UniqueViolation     = "23505"
	ForeignKeyViolation = "23503"
	UndefinedTable      = "42P01"
	UndefinedColumn     = "42703"
)

// SQLState returns the SQLSTATE code of the first PostgreSQL error in err's
// chain, or "" if there is none.  Works with lib/pq and pgx errors.
func SQLState(err error) string {
	found, ok := errors.FindWrappedError(
		err,
		func(curErr, topErr error) error {
			switch e := curErr.(type) {
			case *pq.Error:
				return e
			case interface{ SQLState() string }:
				return curErr
			}
			return nil
		})
	if !ok {
		return ""
	}
	if e, ok := found.(*pq.Error); ok {
		return string(e.Code)
	}
	return found.(interface{ SQLState() string }).SQLState()
}

func IsUniqueViolation(err error) bool {
	return SQLState(err) == UniqueViolation
}
