package planner

import (
	"github.com/leengari/memquery/internal/plan"
	"github.com/leengari/memquery/internal/query/filter"
)

// selectAccessPath picks how rows are selected: every row without a filter,
// an equality lookup for EQUALS, a sorted range scan for GREATER_THAN.
// Every column is indexed at load, so a filter always goes through its index.
func selectAccessPath(f *filter.Filter, rowCount int) plan.Node {
	if f == nil {
		node := &plan.FullScanNode{RowCount: rowCount}
		node.Metadata()["scan_type"] = "sequential"
		return node
	}

	switch f.Operator() {
	case filter.OpGreaterThan:
		// textual columns fail later, in the index
		threshold, _ := f.Value().AsNumber()
		node := &plan.IndexRangeNode{Filter: f, Threshold: threshold}
		node.Metadata()["scan_type"] = "index_range"
		node.Metadata()["column"] = f.Column()
		return node
	default:
		node := &plan.IndexLookupNode{Filter: f}
		node.Metadata()["scan_type"] = "index_lookup"
		node.Metadata()["column"] = f.Column()
		return node
	}
}
