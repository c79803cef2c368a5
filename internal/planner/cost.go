package planner

import (
	"github.com/leengari/memquery/internal/plan"
	"github.com/leengari/memquery/internal/query/indexing"
)

// estimateRowCount estimates the number of rows a node will return.
// Lookups assume values are evenly spread over the distinct keys; range
// scans assume half the rows qualify.
func estimateRowCount(node plan.Node, indexes indexing.Set, rowCount int) int {
	switch n := node.(type) {
	case *plan.IndexLookupNode:
		idx, ok := indexes.Get(n.Filter.Column())
		if !ok || idx.Cardinality() == 0 {
			return 0
		}
		return rowCount / idx.Cardinality()
	case *plan.IndexRangeNode:
		return rowCount / 2
	default:
		return rowCount
	}
}

// attachCostEstimate attaches cost metadata to a node
func attachCostEstimate(node plan.Node, indexes indexing.Set, rowCount int) {
	node.Metadata()["estimated_rows"] = estimateRowCount(node, indexes, rowCount)
	node.Metadata()["cost_estimated"] = true
}
