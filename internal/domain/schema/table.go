package schema

import (
	"log/slog"
	"strings"

	"github.com/leengari/memquery/internal/domain/data"
)

// Table is a fully loaded dataset: its schema and every row coerced to typed values.
// A Table never changes after LoadTable returns.
type Table struct {
	Name   string
	Schema *Schema
	Rows   []data.Row
}

// LoadTable builds the schema from the first sampleSize raw rows and coerces all rows.
//
// Only the sample informs inference: a later value that does not fit its
// column's type becomes null instead of failing the load.
func LoadTable(name string, headers []string, raw [][]string, sampleSize int, inferrers []TypeInferrer) (*Table, error) {
	if sampleSize <= 0 {
		sampleSize = SampleSize
	}
	sample := raw
	if len(sample) > sampleSize {
		sample = sample[:sampleSize]
	}

	s, err := New(headers, sample, inferrers)
	if err != nil {
		return nil, err
	}

	cols := s.Headers()
	types := make([]ColumnType, len(cols))
	for i, c := range cols {
		types[i] = s.ColumnType(c)
	}

	rows := make([]data.Row, len(raw))
	coerced := 0
	for i, fields := range raw {
		values := make([]data.Value, len(cols))
		for j := range cols {
			if j >= len(fields) {
				continue // missing field stays null
			}
			v := CoerceValue(fields[j], types[j])
			if v.IsNull() && types[j] == ColumnTypeNumber && !IsPlaceholder(strings.TrimSpace(fields[j])) {
				coerced++
			}
			values[j] = v
		}
		rows[i] = data.NewRow(cols, values)
	}

	if coerced > 0 {
		slog.Debug("non-numeric values coerced to null",
			slog.String("table", name),
			slog.Int("values", coerced))
	}

	return &Table{
		Name:   name,
		Schema: s,
		Rows:   rows,
	}, nil
}

// CoerceValue converts a raw field to the column's type.
// Numeric columns yield null for empty or unparseable text; text is trimmed and kept.
func CoerceValue(raw string, t ColumnType) data.Value {
	if t == ColumnTypeNumber {
		f, ok := ParseNumber(raw)
		if !ok {
			return data.Null()
		}
		return data.Number(f)
	}
	return data.Text(strings.TrimSpace(raw))
}

// RowCount returns the number of loaded rows
func (t *Table) RowCount() int {
	return len(t.Rows)
}
