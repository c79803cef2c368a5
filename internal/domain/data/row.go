package data

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Row represents a single record.
// Columns and values are positionally aligned; column order is significant.
// Rows are immutable once built.
type Row struct {
	columns []string
	values  []Value
}

// NewRow creates a row. Missing trailing values are null; extra values are dropped.
// The columns slice is shared, not copied, so loaded rows can share one header slice.
func NewRow(columns []string, values []Value) Row {
	if len(values) != len(columns) {
		aligned := make([]Value, len(columns))
		copy(aligned, values)
		values = aligned
	}
	return Row{columns: columns, values: values}
}

func (r Row) Columns() []string {
	return r.columns
}

func (r Row) Values() []Value {
	return r.values
}

func (r Row) Len() int {
	return len(r.columns)
}

// At returns the value at position i
func (r Row) At(i int) Value {
	return r.values[i]
}

// Get looks a value up by column name
func (r Row) Get(column string) (Value, bool) {
	for i, c := range r.columns {
		if c == column {
			return r.values[i], true
		}
	}
	return Null(), false
}

// Project returns a new row holding only the given columns, in the given order.
// Unknown columns project as null.
func (r Row) Project(columns []string) Row {
	values := make([]Value, len(columns))
	for i, c := range columns {
		values[i], _ = r.Get(c)
	}
	return Row{columns: columns, values: values}
}

// Map converts the row to a plain map (nil, float64 or string values)
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r.columns))
	for i, c := range r.columns {
		m[c] = r.values[i].Any()
	}
	return m
}

// MarshalJSON writes the row as a JSON object with keys in column order
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := r.values[i].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r Row) String() string {
	parts := make([]string, len(r.columns))
	for i, c := range r.columns {
		parts[i] = fmt.Sprintf("%s:%s", c, r.values[i])
	}
	return "Row{" + strings.Join(parts, ", ") + "}"
}
