package dao

import (
	"github.com/dropbox/sqlbricks/errors"
)

// Returned by the positional accessors of a Collection.  Collections can only
// be iterated.
type UnsupportedMutationError struct {
	errors.DropboxError

	Op string
}

func newUnsupportedMutation(op string) UnsupportedMutationError {
	return UnsupportedMutationError{
		DropboxError: errors.Newf(
			"Cannot %s a collection item: only use iteration to access items",
			op),
		Op: op,
	}
}

// Returned when writing a field of a record which is not bound to an entity.
type UnboundFieldWriteError struct {
	errors.DropboxError

	Field string
}

func newUnboundFieldWrite(field string) UnboundFieldWriteError {
	return UnboundFieldWriteError{
		DropboxError: errors.Newf("Cannot set %s on an unbound record", field),
		Field:        field,
	}
}

type UnknownEntityError struct {
	errors.DropboxError

	Entity string
}

func newUnknownEntity(name string) UnknownEntityError {
	return UnknownEntityError{
		DropboxError: errors.Newf("Unknown entity '%s'", name),
		Entity:       name,
	}
}

type UnknownFieldError struct {
	errors.DropboxError

	Entity string
	Field  string
}

func newUnknownField(entity string, field string) UnknownFieldError {
	return UnknownFieldError{
		DropboxError: errors.Newf("Entity '%s' has no field '%s'", entity, field),
		Entity:       entity,
		Field:        field,
	}
}

type UnknownRelationshipError struct {
	errors.DropboxError

	Entity       string
	Relationship string
}

func newUnknownRelationship(entity string, rel string) UnknownRelationshipError {
	return UnknownRelationshipError{
		DropboxError: errors.Newf(
			"Entity '%s' has no relationship '%s'",
			entity,
			rel),
		Entity:       entity,
		Relationship: rel,
	}
}

// Returned when saving a record whose primary key is in its change-set.
// Updates are scoped by the primary key, so the key cannot be rewritten.
type PrimaryKeyChangeError struct {
	errors.DropboxError

	Entity string
	Field  string
}

func newPrimaryKeyChange(entity string, field string) PrimaryKeyChangeError {
	return PrimaryKeyChangeError{
		DropboxError: errors.Newf(
			"Cannot update %s: primary key '%s' is in the change-set",
			entity,
			field),
		Entity: entity,
		Field:  field,
	}
}

// Returned by the single record loaders when the query yields no row.
type NotFoundError struct {
	errors.DropboxError

	Entity string
}

func newNotFound(entity string) NotFoundError {
	return NotFoundError{
		DropboxError: errors.Newf("No %s record found", entity),
		Entity:       entity,
	}
}

func findError(err error, match func(error) bool) bool {
	_, ok := errors.FindWrappedError(
		err,
		func(curErr, topErr error) error {
			if match(curErr) {
				return curErr
			}
			return nil
		})
	return ok
}

func IsUnsupportedMutation(err error) bool {
	return findError(err, func(e error) bool {
		_, ok := e.(UnsupportedMutationError)
		return ok
	})
}

func IsUnboundFieldWrite(err error) bool {
	return findError(err, func(e error) bool {
		_, ok := e.(UnboundFieldWriteError)
		return ok
	})
}

// Returns true for unknown entity, field and relationship errors.
func IsLookupError(err error) bool {
	return findError(err, func(e error) bool {
		switch e.(type) {
		case UnknownEntityError, UnknownFieldError, UnknownRelationshipError:
			return true
		}
		return false
	})
}

func IsPrimaryKeyChange(err error) bool {
	return findError(err, func(e error) bool {
		_, ok := e.(PrimaryKeyChangeError)
		return ok
	})
}

func IsNotFound(err error) bool {
	return findError(err, func(e error) bool {
		_, ok := e.(NotFoundError)
		return ok
	})
}
