package porter

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// TimeLayout renders date and time driver values as text.
const TimeLayout = "2006-01-02 15:04:05.999999999-07:00"

type Kind uint8

const (
	Null Kind = iota
	Text
	Integer
	Real
	Bool
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Text:
		return "text"
	case Integer:
		return "integer"
	case Real:
		return "real"
	case Bool:
		return "bool"
	default:
		return "unknown"
	}
}

// Value is a single cell of an exported row.
type Value struct {
	kind    Kind
	text    string
	integer int64
	real    float64
	boolean bool
}

func NullValue() Value {
	return Value{kind: Null}
}

func TextValue(s string) Value {
	return Value{kind: Text, text: s}
}

func IntegerValue(i int64) Value {
	return Value{kind: Integer, integer: i}
}

func RealValue(f float64) Value {
	return Value{kind: Real, real: f}
}

func BoolValue(b bool) Value {
	return Value{kind: Bool, boolean: b}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsNull() bool {
	return v.kind == Null
}

// Interface returns the value as a database/sql argument.
func (v Value) Interface() interface{} {
	switch v.kind {
	case Text:
		return v.text
	case Integer:
		return v.integer
	case Real:
		return v.real
	case Bool:
		return v.boolean
	default:
		return nil
	}
}

func (v Value) String() string {
	switch v.kind {
	case Text:
		return v.text
	case Integer:
		return strconv.FormatInt(v.integer, 10)
	case Real:
		return strconv.FormatFloat(v.real, 'g', -1, 64)
	case Bool:
		return strconv.FormatBool(v.boolean)
	default:
		return "null"
	}
}

// FromDriver maps a value scanned by database/sql. Bytes and times become
// text; anything unrecognised is rendered with fmt.
func FromDriver(src interface{}) Value {
	switch v := src.(type) {
	case nil:
		return NullValue()
	case int64:
		return IntegerValue(v)
	case int:
		return IntegerValue(int64(v))
	case int32:
		return IntegerValue(int64(v))
	case int16:
		return IntegerValue(int64(v))
	case int8:
		return IntegerValue(int64(v))
	case uint64:
		if v > math.MaxInt64 {
			return TextValue(strconv.FormatUint(v, 10))
		}
		return IntegerValue(int64(v))
	case uint32:
		return IntegerValue(int64(v))
	case uint16:
		return IntegerValue(int64(v))
	case uint8:
		return IntegerValue(int64(v))
	case float64:
		return RealValue(v)
	case float32:
		return RealValue(float64(v))
	case bool:
		return BoolValue(v)
	case string:
		return TextValue(v)
	case []byte:
		return TextValue(string(v))
	case time.Time:
		return TextValue(v.Format(TimeLayout))
	case fmt.Stringer:
		return TextValue(v.String())
	default:
		return TextValue(fmt.Sprint(v))
	}
}
