package filter

import (
	"github.com/leengari/memquery/internal/domain/data"
	"github.com/leengari/memquery/internal/domain/errors"
	"github.com/leengari/memquery/internal/domain/schema"
)

// Operator is a supported comparison
type Operator string

const (
	OpEquals      Operator = "EQUALS"
	OpGreaterThan Operator = "GREATER_THAN"
)

// PredicateFunc tests whether a row matches
type PredicateFunc func(data.Row) bool

// Filter is an immutable, validated predicate over one column.
// Its value always matches the column's schema type.
type Filter struct {
	column    string
	operator  Operator
	value     data.Value
	predicate PredicateFunc
}

func (f *Filter) Column() string {
	return f.column
}

func (f *Filter) Operator() Operator {
	return f.operator
}

func (f *Filter) Value() data.Value {
	return f.value
}

// Matches applies the predicate to a row
func (f *Filter) Matches(row data.Row) bool {
	return f.predicate(row)
}

// Factory creates filters validated against a schema
type Factory struct {
	schema *schema.Schema
}

func NewFactory(s *schema.Schema) *Factory {
	return &Factory{schema: s}
}

// Create validates value against column, maps the operator token
// ("=" or ">") and returns the filter.
func (fac *Factory) Create(column, operator string, value data.Value) (*Filter, error) {
	validated, err := fac.schema.ValidateValue(column, value)
	if err != nil {
		return nil, err
	}

	op, err := ParseOperator(operator)
	if err != nil {
		return nil, err
	}

	return &Filter{
		column:    column,
		operator:  op,
		value:     validated,
		predicate: buildPredicate(column, op, validated),
	}, nil
}

// ParseOperator maps an operator token to an Operator
func ParseOperator(token string) (Operator, error) {
	switch token {
	case "=":
		return OpEquals, nil
	case ">":
		return OpGreaterThan, nil
	default:
		return "", errors.NewInvalidQuery("Unsupported operator: %s", token)
	}
}

// buildPredicate never matches when either side is null
func buildPredicate(column string, op Operator, target data.Value) PredicateFunc {
	if op == OpGreaterThan {
		return func(row data.Row) bool {
			v, ok := row.Get(column)
			if !ok {
				return false
			}
			rv, ok := v.AsNumber()
			if !ok {
				return false
			}
			tv, ok := target.AsNumber()
			if !ok {
				return false
			}
			return rv > tv
		}
	}

	return func(row data.Row) bool {
		v, ok := row.Get(column)
		if !ok {
			return false
		}
		return v.Equal(target)
	}
}
