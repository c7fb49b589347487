package sqlbuilder

import (
	"github.com/dropbox/sqlbricks/errors"
)

// Returned when a clause is given a value it cannot embed, e.g. a WITH entry
// which is neither a statement nor sql text.
type ClauseTypeMismatchError struct {
	errors.DropboxError

	Clause ClauseName
	Value  interface{}
}

func newClauseTypeMismatch(
	clause ClauseName,
	value interface{},
	expected string) ClauseTypeMismatchError {

	return ClauseTypeMismatchError{
		DropboxError: errors.Newf(
			"%s clause must contain %s, got %T",
			clause,
			expected,
			value),
		Clause: clause,
		Value:  value,
	}
}

// Returns true if err (or any error it wraps) is a ClauseTypeMismatchError.
func IsClauseTypeMismatch(err error) bool {
	_, ok := errors.FindWrappedError(
		err,
		func(curErr, topErr error) error {
			if _, ok := curErr.(ClauseTypeMismatchError); ok {
				return curErr
			}
			return nil
		})
	return ok
}
