package executor

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/leengari/memquery/internal/domain/data"
	"github.com/leengari/memquery/internal/plan"
)

type Result struct {
	Columns  []string
	Metadata []ColumnMetadata
	Rows     []data.Row
	Message  string
}

// ColumnMetadata describes one result column
type ColumnMetadata struct {
	Name string
	Type string
}

// Execute runs a PROJECT plan against the loaded table.
// Rows come out in ascending row-index order, projected in projection order.
func Execute(node plan.Node, ctx *ExecutionContext) (*Result, error) {
	if ctx == nil || ctx.Table == nil {
		return nil, fmt.Errorf("no table loaded")
	}

	project, ok := node.(*plan.ProjectNode)
	if !ok {
		return nil, fmt.Errorf("unsupported plan root: %s", node.NodeType())
	}

	selected, err := selectRows(project.Source(), ctx)
	if err != nil {
		return nil, err
	}

	rows, err := projectRows(selected, project.Columns, ctx)
	if err != nil {
		return nil, err
	}

	metadata := make([]ColumnMetadata, len(project.Columns))
	for i, col := range project.Columns {
		metadata[i] = ColumnMetadata{Name: col, Type: string(ctx.Table.Schema.ColumnType(col))}
	}

	return &Result{
		Columns:  project.Columns,
		Metadata: metadata,
		Rows:     rows,
		Message:  fmt.Sprintf("Returned %d rows", len(rows)),
	}, nil
}

func projectRows(selected *roaring.Bitmap, columns []string, ctx *ExecutionContext) ([]data.Row, error) {
	positions := make([]int, len(columns))
	for i, col := range columns {
		pos, ok := ctx.Table.Schema.Position(col)
		if !ok {
			return nil, fmt.Errorf("column %s is not part of the loaded table", col)
		}
		positions[i] = pos
	}

	rows := make([]data.Row, 0, selected.GetCardinality())
	it := selected.Iterator()
	for it.HasNext() {
		rowIdx := int(it.Next())
		if rowIdx >= len(ctx.Table.Rows) {
			return nil, fmt.Errorf("row index %d out of range", rowIdx)
		}
		source := ctx.Table.Rows[rowIdx]

		values := make([]data.Value, len(positions))
		for i, pos := range positions {
			if pos < source.Len() {
				values[i] = source.At(pos)
			}
		}
		rows = append(rows, data.NewRow(columns, values))
	}

	return rows, nil
}
