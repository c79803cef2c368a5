package schema

import (
	"math"
	"strconv"
	"strings"
)

// TypeInferrer decides a column type from sample values.
// Inferrers are tried in order; the first one whose CanInfer returns true wins.
type TypeInferrer interface {
	CanInfer(values []string) bool
	Infer() ColumnType
}

// NumberInferrer accepts a sample when every non-placeholder value is numeric
// and at least one such value exists.
type NumberInferrer struct{}

func (NumberInferrer) CanInfer(values []string) bool {
	present := nonPlaceholder(values)
	if len(present) == 0 {
		return false
	}
	for _, v := range present {
		if _, ok := ParseNumber(v); !ok {
			return false
		}
	}
	return true
}

func (NumberInferrer) Infer() ColumnType {
	return ColumnTypeNumber
}

// TextInferrer is the fallback: it accepts anything.
type TextInferrer struct{}

func (TextInferrer) CanInfer([]string) bool {
	return true
}

func (TextInferrer) Infer() ColumnType {
	return ColumnTypeText
}

// DefaultInferrers returns the standard priority order: numeric, then text.
func DefaultInferrers() []TypeInferrer {
	return []TypeInferrer{NumberInferrer{}, TextInferrer{}}
}

// InferColumnType runs the inferrers in order. With no applicable inferrer the
// column is textual.
func InferColumnType(values []string, inferrers []TypeInferrer) ColumnType {
	for _, inf := range inferrers {
		if inf.CanInfer(values) {
			return inf.Infer()
		}
	}
	return ColumnTypeText
}

// IsPlaceholder reports whether a raw value stands for "no data"
func IsPlaceholder(v string) bool {
	return v == "" || v == "null" || v == "undefined"
}

func nonPlaceholder(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !IsPlaceholder(v) {
			out = append(out, v)
		}
	}
	return out
}

// ParseNumber parses a numeric literal. Surrounding whitespace is ignored,
// "Infinity" is accepted in either sign and NaN is rejected.
func ParseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}

	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// ParseFloat reports overflow as ErrRange with ±Inf, which is still a number
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange && math.IsInf(f, 0) {
			return f, true
		}
		return 0, false
	}
	if math.IsNaN(f) {
		return 0, false
	}
	// ParseFloat also accepts "inf"/"infinity" spellings; only the forms above count
	if math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
