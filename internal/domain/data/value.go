package data

import (
	"encoding/json"
	"math"
	"strconv"
)

// Kind is the runtime kind of a cell value
type Kind uint8

const (
	KindNull Kind = iota
	KindNumber
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	default:
		return "null"
	}
}

// Value is a single typed cell: a number, a text or null.
// The zero Value is null.
type Value struct {
	kind Kind
	num  float64
	text string
}

func Null() Value {
	return Value{}
}

func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// AsNumber returns the numeric payload; ok is false for non-numbers
func (v Value) AsNumber() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// AsText returns the textual payload; ok is false for non-text values
func (v Value) AsText() (string, bool) {
	return v.text, v.kind == KindText
}

// Equal is strict: kinds must match and nulls never equal anything,
// including other nulls.
func (v Value) Equal(other Value) bool {
	if v.kind == KindNull || other.kind == KindNull || v.kind != other.kind {
		return false
	}
	if v.kind == KindNumber {
		return v.num == other.num
	}
	return v.text == other.text
}

// Any returns nil, float64 or string
func (v Value) Any() any {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindText:
		return v.text
	default:
		return nil
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return formatNumber(v.num)
	case KindText:
		return v.text
	default:
		return "NULL"
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		if math.IsInf(v.num, 0) {
			return json.Marshal(formatNumber(v.num))
		}
		return json.Marshal(v.num)
	case KindText:
		return json.Marshal(v.text)
	default:
		return []byte("null"), nil
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
