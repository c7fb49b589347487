// Package sqltypes implements interfaces and types that represent SQL values,
// together with their PostgreSQL text encoding.
package sqltypes

import (
	"encoding/hex"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/dropbox/sqlbricks/errors"
)

const TimeFormat = "2006-01-02 15:04:05.999999-07:00"

var (
	NULL    = Value{}
	nullstr = []byte("NULL")
)

// Writer is satisfied by *bytes.Buffer and *strings.Builder.
type Writer interface {
	io.Writer
	io.ByteWriter
}

// Value can store any SQL value. NULL is stored as nil.
type Value struct {
	Inner InnerValue
}

// Numeric represents non-fractional SQL number.
type Numeric []byte

// Fractional represents fractional types like float and numeric.
// It's functionally equivalent to Numeric other than how it's constructed
type Fractional []byte

// Boolean renders as the TRUE / FALSE keywords.
type Boolean bool

// String represents any SQL type that needs to be represented using quotes.
// If isUtf8 is false, it is encoded as a bytea hex literal.
type String struct {
	data   []byte
	isUtf8 bool
}

// MakeNumeric makes a Numeric from a []byte without validation.
func MakeNumeric(b []byte) Value {
	return Value{Numeric(b)}
}

// MakeFractional makes a Fractional value from a []byte without validation.
func MakeFractional(b []byte) Value {
	return Value{Fractional(b)}
}

// MakeString makes a binary String value from a []byte.
func MakeString(b []byte) Value {
	return Value{String{b, false}}
}

// MakeUtf8String makes a String value from a string.
func MakeUtf8String(s string) Value {
	return Value{String{[]byte(s), true}}
}

// Raw returns the raw bytes.
func (v Value) Raw() []byte {
	if v.Inner == nil {
		return nil
	}
	return v.Inner.raw()
}

// String returns the raw value as a string
func (v Value) String() string {
	if v.Inner == nil {
		return ""
	}
	return string(v.Inner.raw())
}

// EncodeSql writes the value as a PostgreSQL literal.
func (v Value) EncodeSql(b Writer) {
	if v.Inner == nil {
		if _, err := b.Write(nullstr); err != nil {
			panic(err)
		}
	} else {
		v.Inner.encodeSql(b)
	}
}

func (v Value) IsNull() bool {
	return v.Inner == nil
}

func (v Value) IsNumeric() (ok bool) {
	if v.Inner != nil {
		_, ok = v.Inner.(Numeric)
	}
	return ok
}

func (v Value) IsFractional() (ok bool) {
	if v.Inner != nil {
		_, ok = v.Inner.(Fractional)
	}
	return ok
}

func (v Value) IsString() (ok bool) {
	if v.Inner != nil {
		_, ok = v.Inner.(String)
	}
	return ok
}

func (v Value) IsUtf8String() bool {
	if v.Inner != nil {
		if s, ok := v.Inner.(String); ok {
			return s.isUtf8
		}
	}
	return false
}

// InnerValue defines methods that need to be supported by all non-null value types.
type InnerValue interface {
	raw() []byte
	encodeSql(Writer)
}

func BuildValue(goval interface{}) (v Value, err error) {
	switch bindVal := goval.(type) {
	case nil:
		// no op
	case bool:
		v = Value{Boolean(bindVal)}
	case int:
		v = Value{Numeric(strconv.AppendInt(nil, int64(bindVal), 10))}
	case int8:
		v = Value{Numeric(strconv.AppendInt(nil, int64(bindVal), 10))}
	case int16:
		v = Value{Numeric(strconv.AppendInt(nil, int64(bindVal), 10))}
	case int32:
		v = Value{Numeric(strconv.AppendInt(nil, int64(bindVal), 10))}
	case int64:
		v = Value{Numeric(strconv.AppendInt(nil, bindVal, 10))}
	case uint:
		v = Value{Numeric(strconv.AppendUint(nil, uint64(bindVal), 10))}
	case uint8:
		v = Value{Numeric(strconv.AppendUint(nil, uint64(bindVal), 10))}
	case uint16:
		v = Value{Numeric(strconv.AppendUint(nil, uint64(bindVal), 10))}
	case uint32:
		v = Value{Numeric(strconv.AppendUint(nil, uint64(bindVal), 10))}
	case uint64:
		v = Value{Numeric(strconv.AppendUint(nil, bindVal, 10))}
	case float32:
		v = Value{Fractional(strconv.AppendFloat(nil, float64(bindVal), 'f', -1, 32))}
	case float64:
		v = Value{Fractional(strconv.AppendFloat(nil, bindVal, 'f', -1, 64))}
	case string:
		v = Value{String{[]byte(bindVal), true}}
	case []byte:
		v = Value{String{bindVal, false}}
	case time.Time:
		v = Value{String{[]byte(bindVal.Format(TimeFormat)), true}}
	case Numeric, Fractional, Boolean, String:
		v = Value{bindVal.(InnerValue)}
	case Value:
		v = bindVal
	case fmt.Stringer:
		v = Value{String{[]byte(bindVal.String()), true}}
	default:
		return Value{}, errors.Newf("Unsupported bind variable type %T: %v", goval, goval)
	}
	return v, nil
}

// Text converts any go value into its SQL text form, without quoting.  nil
// becomes NULL.  Types BuildValue does not know are formatted with fmt.Sprint.
func Text(goval interface{}) string {
	if goval == nil {
		return string(nullstr)
	}
	v, err := BuildValue(goval)
	if err != nil {
		return fmt.Sprint(goval)
	}
	if b, ok := v.Inner.(Boolean); ok {
		return strings.ToUpper(string(b.raw()))
	}
	return v.String()
}

// Quote wraps s in single quotes, doubling embedded single quotes.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// ConvertAssignRowNullable is the same as ConvertAssignRow except that it allows
// nil as a value for the row or any of the row values. In thoses cases, the
// corresponding values are ignored.
func ConvertAssignRowNullable(row []Value, dest ...interface{}) error {
	if len(row) != len(dest) {
		return errors.Newf(
			"# of row entries %d does not match # of destinations %d",
			len(row),
			len(dest))
	}

	for i := 0; i < len(row); i++ {
		if row[i].IsNull() {
			continue
		}

		err := ConvertAssign(row[i], dest[i])
		if err != nil {
			return err
		}
	}

	return nil
}

// ConvertAssignRow copies a row of values in the list of destinations.  An
// error is returned if any one of the row's element coping is done between
// incompatible value and dest types.  The list of destinations must contain
// pointers.
func ConvertAssignRow(row []Value, dest ...interface{}) error {
	if len(row) != len(dest) {
		return errors.Newf(
			"# of row entries %d does not match # of destinations %d",
			len(row),
			len(dest))
	}

	for i := 0; i < len(row); i++ {
		err := ConvertAssign(row[i], dest[i])
		if err != nil {
			return err
		}
	}

	return nil
}

// ConvertAssign copies to the '*dest' the value in 'src'. An error is returned
// if the coping is done between incompatible Value and dest types. 'dest' must be
// a pointer type.
// Note that for anything else than *[]byte the value is copied, however if 'dest'
// is of type *[]byte it will point to same []byte array as 'src.Raw()' (no copying).
func ConvertAssign(src Value, dest interface{}) error {
	var s String
	var n Numeric
	var f Fractional
	var ok bool
	var err error

	if src.Inner == nil {
		return errors.Newf("source is null")
	}

	switch d := dest.(type) {
	case *string:
		if s, ok = src.Inner.(String); !ok {
			return errors.Newf("source: '%v' is not String", src)
		}
		*d = string(s.raw())
		return nil
	case *[]byte:
		if s, ok = src.Inner.(String); !ok {
			return errors.Newf("source: '%v' is not String", src)
		}
		*d = s.raw()
		return nil
	case *time.Time:
		if s, ok = src.Inner.(String); !ok {
			return errors.Newf("source: '%v' is not String", src)
		}
		t, err := time.Parse(TimeFormat, string(s.raw()))
		if err != nil {
			return errors.Wrapf(err, "source: '%v' is not a timestamp", src)
		}
		*d = t
		return nil
	case *interface{}:
		*d = src
		return nil
	}

	dpv := reflect.ValueOf(dest)
	if dpv.Kind() != reflect.Ptr {
		return errors.Newf("destination not a pointer")
	}
	if dpv.IsNil() {
		return errors.Newf("destination pointer is Nil")
	}
	dv := reflect.Indirect(dpv)
	switch dv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if n, ok = src.Inner.(Numeric); !ok {
			return errors.Newf("source: '%v' is not Numeric", src)
		}
		var i64 int64
		if i64, err = strconv.ParseInt(string(n.raw()), 10, dv.Type().Bits()); err != nil {
			return err
		}
		dv.SetInt(i64)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if n, ok = src.Inner.(Numeric); !ok {
			return errors.Newf("source: '%v' is not Numeric", src)
		}
		var u64 uint64
		if u64, err = strconv.ParseUint(string(n.raw()), 10, dv.Type().Bits()); err != nil {
			return err
		}
		dv.SetUint(u64)
		return nil
	case reflect.Float32, reflect.Float64:
		raw := src.Raw()
		if f, ok = src.Inner.(Fractional); ok {
			raw = f.raw()
		} else if _, ok = src.Inner.(Numeric); !ok {
			return errors.Newf("source: '%v' is not Fractional", src)
		}
		var f64 float64
		if f64, err = strconv.ParseFloat(string(raw), dv.Type().Bits()); err != nil {
			return err
		}
		dv.SetFloat(f64)
		return nil
	case reflect.Bool:
		switch inner := src.Inner.(type) {
		case Boolean:
			dv.SetBool(bool(inner))
			return nil
		case Numeric:
			// treat bool as true if non-zero integer
			var i64 int64
			if i64, err = strconv.ParseInt(string(inner.raw()), 10, 64); err != nil {
				return err
			}
			dv.SetBool(i64 != 0)
			return nil
		}
		return errors.Newf("source: '%v' is not Boolean", src)
	}

	return errors.Newf("unsupported destination type: %T", dest)
}

// BuildNumeric builds a Numeric type that represents any whole number.
// It normalizes the representation to ensure 1:1 mapping between the
// number and its representation.
func BuildNumeric(val string) (n Value, err error) {
	if val == "" {
		return Value{}, errors.New("empty numeric")
	}
	if val[0] == '-' || val[0] == '+' {
		signed, err := strconv.ParseInt(val, 0, 64)
		if err != nil {
			return Value{}, err
		}
		n = Value{Numeric(strconv.AppendInt(nil, signed, 10))}
	} else {
		unsigned, err := strconv.ParseUint(val, 0, 64)
		if err != nil {
			return Value{}, err
		}
		n = Value{Numeric(strconv.AppendUint(nil, unsigned, 10))}
	}
	return n, nil
}

func (n Numeric) raw() []byte {
	return []byte(n)
}

func (n Numeric) encodeSql(b Writer) {
	if _, err := b.Write(n.raw()); err != nil {
		panic(err)
	}
}

func (f Fractional) raw() []byte {
	return []byte(f)
}

func (f Fractional) encodeSql(b Writer) {
	if _, err := b.Write(f.raw()); err != nil {
		panic(err)
	}
}

func (v Boolean) raw() []byte {
	return strconv.AppendBool(nil, bool(v))
}

func (v Boolean) encodeSql(b Writer) {
	text := "FALSE"
	if v {
		text = "TRUE"
	}
	if _, err := io.WriteString(b, text); err != nil {
		panic(err)
	}
}

func (s String) raw() []byte {
	return s.data
}

func (s String) encodeSql(b Writer) {
	writebyte(b, '\'')
	if s.isUtf8 {
		for _, ch := range s.data {
			if ch == '\'' {
				writebyte(b, '\'')
			}
			writebyte(b, ch)
		}
	} else {
		// bytea hex format.
		writebyte(b, '\\')
		writebyte(b, 'x')
		if _, err := io.WriteString(b, hex.EncodeToString(s.data)); err != nil {
			panic(err)
		}
	}
	writebyte(b, '\'')
}

func writebyte(b Writer, c byte) {
	if err := b.WriteByte(c); err != nil {
		panic(err)
	}
}
