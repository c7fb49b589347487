package dao

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-openapi/inflect"
	"github.com/mitranim/refut"

	"github.com/dropbox/sqlbricks/database/sqlbuilder"
	"github.com/dropbox/sqlbricks/errors"
)

// Implemented by structs which do not use the default table name.
type TableNamer interface {
	TableName() string
}

var timeType = reflect.TypeOf(time.Time{})

// DefaultTableName derives a table name from a Go type name: snake case,
// pluralized.  BlogPost becomes blog_posts.
func DefaultTableName(typeName string) string {
	return inflect.Pluralize(inflect.Underscore(typeName))
}

// EntityFromStruct declares an entity from the `db` tags of a struct (or a
// pointer to one).  Untagged and "-" fields are skipped.  The option "pk"
// marks the primary key, e.g. `db:"user_id,pk"`.  Pointer fields are
// nullable.  The table name comes from TableName() when sample implements
// TableNamer, and from DefaultTableName otherwise.
func EntityFromStruct(name string, sample interface{}) (entity *Entity, err error) {
	if sample == nil {
		return nil, errors.New("expected a struct, got nil")
	}
	rtype := refut.RtypeDeref(reflect.TypeOf(sample))
	if rtype.Kind() != reflect.Struct {
		return nil, errors.Newf("expected a struct, got %T", sample)
	}

	tableName := DefaultTableName(rtype.Name())
	if namer, ok := sample.(TableNamer); ok {
		tableName = namer.TableName()
	}

	var columns []*sqlbuilder.ColumnDef
	err = refut.TraverseStructRtype(rtype, func(sfield reflect.StructField, _ []int) error {
		tag := sfield.Tag.Get("db")
		colName := refut.TagIdent(tag)
		if colName == "" || sfield.PkgPath != "" {
			return nil
		}
		col, err := columnFor(colName, sfield.Type, hasTagOption(tag, "pk"))
		if err != nil {
			return errors.Wrapf(err, "field %s.%s", rtype.Name(), sfield.Name)
		}
		columns = append(columns, col)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// The column and table constructors panic on invalid identifiers.
	defer func() {
		if r := recover(); r != nil {
			entity = nil
			err = errors.Newf("%v", r)
		}
	}()
	return NewEntity(name, sqlbuilder.NewTable(tableName, columns...))
}

func hasTagOption(tag string, option string) bool {
	parts := strings.Split(tag, ",")
	for _, part := range parts[1:] {
		if strings.TrimSpace(part) == option {
			return true
		}
	}
	return false
}

func columnFor(
	name string,
	rtype reflect.Type,
	primary bool) (col *sqlbuilder.ColumnDef, err error) {

	defer func() {
		if r := recover(); r != nil {
			err = errors.New(fmt.Sprint(r))
		}
	}()

	nullable := sqlbuilder.NotNullable
	if rtype.Kind() == reflect.Ptr {
		nullable = sqlbuilder.Nullable
		rtype = rtype.Elem()
	}
	isPk := sqlbuilder.NotPrimaryKey
	if primary {
		isPk = sqlbuilder.IsPrimaryKey
	}

	var kind sqlbuilder.ColumnKind
	switch {
	case rtype == timeType:
		kind = sqlbuilder.DateTimeKind
	case rtype.Kind() == reflect.Slice && rtype.Elem().Kind() == reflect.Uint8:
		kind = sqlbuilder.BytesKind
	default:
		switch rtype.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			kind = sqlbuilder.IntKind
		case reflect.String:
			kind = sqlbuilder.StrKind
		case reflect.Bool:
			kind = sqlbuilder.BoolKind
		case reflect.Float32, reflect.Float64:
			kind = sqlbuilder.DoubleKind
		default:
			kind = sqlbuilder.AnyKind
		}
	}
	return sqlbuilder.NewColumn(name, kind, nullable, isPk), nil
}
