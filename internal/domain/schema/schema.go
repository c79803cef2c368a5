package schema

import (
	"fmt"

	"github.com/leengari/memquery/internal/domain/data"
	"github.com/leengari/memquery/internal/domain/errors"
)

// SampleSize is the number of leading rows used for type inference
const SampleSize = 5

// Schema is the immutable column -> type registry of a loaded dataset.
// Every column reference must be validated here before it is used elsewhere.
type Schema struct {
	columns []Column
	types   map[string]ColumnType
	pos     map[string]int
}

// New infers a type for every header from the sample rows.
// Sample rows shorter than the header contribute nothing for the missing fields.
func New(headers []string, sample [][]string, inferrers []TypeInferrer) (*Schema, error) {
	if len(inferrers) == 0 {
		inferrers = DefaultInferrers()
	}

	s := &Schema{
		columns: make([]Column, 0, len(headers)),
		types:   make(map[string]ColumnType, len(headers)),
		pos:     make(map[string]int, len(headers)),
	}

	for i, header := range headers {
		if _, dup := s.types[header]; dup {
			return nil, fmt.Errorf("duplicate column %q", header)
		}

		values := make([]string, 0, len(sample))
		for _, row := range sample {
			if i < len(row) {
				values = append(values, row[i])
			}
		}

		colType := InferColumnType(values, inferrers)
		s.columns = append(s.columns, Column{Name: header, Type: colType})
		s.types[header] = colType
		s.pos[header] = i
	}

	return s, nil
}

// ValidateColumn returns the column's type or an INVALID_COLUMN error
func (s *Schema) ValidateColumn(name string) (ColumnType, error) {
	t, ok := s.types[name]
	if !ok {
		return "", errors.NewInvalidColumn(name)
	}
	return t, nil
}

// ValidateValue checks that v may be compared against the named column.
// Numeric columns only accept number values; null is rejected as well.
func (s *Schema) ValidateValue(name string, v data.Value) (data.Value, error) {
	t, err := s.ValidateColumn(name)
	if err != nil {
		return data.Null(), err
	}

	if t == ColumnTypeNumber && v.Kind() != data.KindNumber {
		return data.Null(), errors.NewTypeMismatch(name, string(ColumnTypeNumber), v.Kind().String())
	}

	return v, nil
}

// ColumnType returns the type of an already validated column,
// or the empty ColumnType when the name is unknown.
func (s *Schema) ColumnType(name string) ColumnType {
	return s.types[name]
}

// MustColumnType is ColumnType for callers that treat an unknown name as a bug.
func (s *Schema) MustColumnType(name string) ColumnType {
	t, err := s.ValidateColumn(name)
	if err != nil {
		panic(err)
	}
	return t
}

// Position returns the header position of a column
func (s *Schema) Position(name string) (int, bool) {
	i, ok := s.pos[name]
	return i, ok
}

// Headers returns the column names in header order
func (s *Schema) Headers() []string {
	out := make([]string, len(s.columns))
	for i, c := range s.columns {
		out[i] = c.Name
	}
	return out
}

// Columns returns a copy of the column definitions in header order
func (s *Schema) Columns() []Column {
	out := make([]Column, len(s.columns))
	copy(out, s.columns)
	return out
}

func (s *Schema) Len() int {
	return len(s.columns)
}
