package parser

import (
	"strings"

	"github.com/leengari/memquery/internal/domain/data"
	"github.com/leengari/memquery/internal/domain/errors"
	"github.com/leengari/memquery/internal/domain/schema"
	"github.com/leengari/memquery/internal/parser/ast"
)

const (
	keywordProject = "PROJECT"
	keywordFilter  = "FILTER"
)

// Parser turns query text into a ProjectStatement checked against a schema.
//
// Grammar (keywords are case-sensitive):
//
//	PROJECT <col>[,<col>...] [FILTER <col> <op> <value>]
type Parser struct {
	schema *schema.Schema
}

func New(s *schema.Schema) *Parser {
	return &Parser{schema: s}
}

// Parse splits the text once on FILTER. The left part must start with PROJECT
// and lists the projected columns; the optional right part is exactly three
// whitespace separated tokens. Column references are validated against the
// schema, and a numeric column's value must parse as a number.
func (p *Parser) Parse(text string) (*ast.ProjectStatement, error) {
	projectionPart, filterPart, hasFilter := strings.Cut(text, keywordFilter)
	projectionPart = strings.TrimSpace(projectionPart)

	if !strings.HasPrefix(projectionPart, keywordProject) {
		return nil, errors.NewInvalidQuery("Query must start with %s", keywordProject)
	}

	fields, err := p.parseProjection(strings.TrimPrefix(projectionPart, keywordProject))
	if err != nil {
		return nil, err
	}

	stmt := &ast.ProjectStatement{Fields: fields}
	if !hasFilter {
		return stmt, nil
	}

	// an empty FILTER clause is malformed, not absent
	clause, err := p.parseFilter(filterPart)
	if err != nil {
		return nil, err
	}
	stmt.Filter = clause

	return stmt, nil
}

func (p *Parser) parseProjection(list string) ([]*ast.Identifier, error) {
	parts := strings.Split(strings.TrimSpace(list), ",")
	fields := make([]*ast.Identifier, 0, len(parts))
	seen := make(map[string]bool, len(parts))

	for _, part := range parts {
		column := strings.TrimSpace(part)
		if _, err := p.schema.ValidateColumn(column); err != nil {
			return nil, errors.New(errors.InvalidColumn, "Invalid projection column: %s", column)
		}
		// a repeated column is projected once, at its first position
		if seen[column] {
			continue
		}
		seen[column] = true
		fields = append(fields, &ast.Identifier{Value: column})
	}

	return fields, nil
}

func (p *Parser) parseFilter(clause string) (*ast.FilterClause, error) {
	tokens := strings.Fields(clause)
	if len(tokens) != 3 {
		return nil, errors.NewInvalidQuery("Invalid filter format: expected <column> <operator> <value>, got %d tokens", len(tokens))
	}
	column, operator, raw := tokens[0], tokens[1], tokens[2]

	colType, err := p.schema.ValidateColumn(column)
	if err != nil {
		return nil, err
	}

	value := data.Text(raw)
	if colType.IsNumeric() {
		f, ok := schema.ParseNumber(raw)
		if !ok {
			return nil, errors.New(errors.TypeMismatch, "Invalid number value in filter: %q", raw)
		}
		value = data.Number(f)
	}

	return &ast.FilterClause{
		Column:   &ast.Identifier{Value: column},
		Operator: operator,
		Value:    &ast.Literal{TokenLiteralValue: raw, Value: value},
	}, nil
}
