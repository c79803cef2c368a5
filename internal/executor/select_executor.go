package executor

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/leengari/memquery/internal/plan"
	"github.com/leengari/memquery/internal/query/indexing"
)

// selectRows resolves an access path node to the set of matching row indices
func selectRows(node plan.Node, ctx *ExecutionContext) (*roaring.Bitmap, error) {
	switch n := node.(type) {
	case *plan.FullScanNode:
		all := roaring.New()
		all.AddRange(0, uint64(len(ctx.Table.Rows)))
		return all, nil

	case *plan.IndexLookupNode:
		idx, err := indexFor(ctx, n.Filter.Column())
		if err != nil {
			return nil, err
		}
		return idx.Find(n.Value()), nil

	case *plan.IndexRangeNode:
		idx, err := indexFor(ctx, n.Filter.Column())
		if err != nil {
			return nil, err
		}
		return idx.FindGreaterThan(n.Threshold)

	case nil:
		return nil, fmt.Errorf("plan has no access path")

	default:
		return nil, fmt.Errorf("unsupported access path: %s", node.NodeType())
	}
}

func indexFor(ctx *ExecutionContext, column string) (*indexing.ColumnIndex, error) {
	idx, ok := ctx.Indexes.Get(column)
	if !ok {
		return nil, fmt.Errorf("no index for column %s", column)
	}
	return idx, nil
}
