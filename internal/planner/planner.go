package planner

import (
	"github.com/leengari/memquery/internal/domain/schema"
	"github.com/leengari/memquery/internal/parser/ast"
	"github.com/leengari/memquery/internal/plan"
	"github.com/leengari/memquery/internal/query/filter"
	"github.com/leengari/memquery/internal/query/indexing"
)

// Planner converts parsed statements into execution plans for one loaded table
type Planner struct {
	table   *schema.Table
	indexes indexing.Set
	factory *filter.Factory
}

func New(table *schema.Table, indexes indexing.Set) *Planner {
	return &Planner{
		table:   table,
		indexes: indexes,
		factory: filter.NewFactory(table.Schema),
	}
}

// Plan converts a ProjectStatement into a PROJECT node over an access path.
// The filter clause is rebuilt through the factory, which validates the
// value's type before the operator.
func (p *Planner) Plan(stmt *ast.ProjectStatement) (plan.Node, error) {
	columns := stmt.Columns()
	for _, column := range columns {
		if _, err := p.table.Schema.ValidateColumn(column); err != nil {
			return nil, err
		}
	}

	var f *filter.Filter
	if stmt.Filter != nil {
		var err error
		f, err = p.factory.Create(stmt.Filter.Column.Value, stmt.Filter.Operator, stmt.Filter.Value.Value)
		if err != nil {
			return nil, err
		}
	}

	source := selectAccessPath(f, p.table.RowCount())
	attachCostEstimate(source, p.indexes, p.table.RowCount())

	root := plan.NewProjectNode(columns, source)
	root.Metadata()["source_table"] = p.table.Name
	root.Metadata()["has_filter"] = f != nil
	root.Metadata()["access_path"] = source.NodeType()

	return root, nil
}
