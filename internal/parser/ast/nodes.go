package ast

import (
	"bytes"
	"strings"

	"github.com/leengari/memquery/internal/domain/data"
)

// Node is the base interface for all AST nodes
type Node interface {
	TokenLiteral() string
	String() string
}

// Identifier represents a column name
type Identifier struct {
	Value string
}

func (i *Identifier) TokenLiteral() string { return i.Value }
func (i *Identifier) String() string       { return i.Value }

// Literal is a filter operand: the raw token and its value typed for the column
type Literal struct {
	TokenLiteralValue string
	Value             data.Value
}

func (l *Literal) TokenLiteral() string { return l.TokenLiteralValue }
func (l *Literal) String() string       { return l.TokenLiteralValue }

// FilterClause: FILTER <column> <operator> <value>
type FilterClause struct {
	Column   *Identifier
	Operator string
	Value    *Literal
}

func (f *FilterClause) TokenLiteral() string { return "FILTER" }
func (f *FilterClause) String() string {
	return strings.Join([]string{"FILTER", f.Column.String(), f.Operator, f.Value.String()}, " ")
}

// ProjectStatement: PROJECT col1,col2 [FILTER ...]
type ProjectStatement struct {
	Fields []*Identifier
	Filter *FilterClause // nil when absent
}

func (s *ProjectStatement) TokenLiteral() string { return "PROJECT" }
func (s *ProjectStatement) String() string {
	var out bytes.Buffer
	out.WriteString("PROJECT ")
	for i, f := range s.Fields {
		out.WriteString(f.String())
		if i < len(s.Fields)-1 {
			out.WriteString(",")
		}
	}
	if s.Filter != nil {
		out.WriteString(" ")
		out.WriteString(s.Filter.String())
	}
	return out.String()
}

// Columns returns the projected column names in order
func (s *ProjectStatement) Columns() []string {
	cols := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		cols[i] = f.Value
	}
	return cols
}
