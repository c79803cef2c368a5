package plan

import (
	"github.com/leengari/memquery/internal/domain/data"
	"github.com/leengari/memquery/internal/query/filter"
)

// Node is the base interface for all execution plan nodes
type Node interface {
	// Children returns child nodes for tree walking
	Children() []Node

	// Metadata returns attached metadata (never nil)
	Metadata() map[string]any

	// NodeType returns the type identifier (for debugging/logging)
	NodeType() string
}

// metadata is embedded by every node so Metadata() is never nil
type metadata struct {
	values map[string]any
}

func (m *metadata) Metadata() map[string]any {
	if m.values == nil {
		m.values = make(map[string]any)
	}
	return m.values
}

// FullScanNode selects every loaded row (leaf node)
type FullScanNode struct {
	RowCount int

	metadata
}

func (n *FullScanNode) Children() []Node {
	return nil
}

func (n *FullScanNode) NodeType() string {
	return "FULL_SCAN"
}

// IndexLookupNode selects the rows whose column equals Filter's value (leaf node)
type IndexLookupNode struct {
	Filter *filter.Filter

	metadata
}

func (n *IndexLookupNode) Children() []Node {
	return nil
}

func (n *IndexLookupNode) NodeType() string {
	return "INDEX_LOOKUP"
}

// Value is the equality key
func (n *IndexLookupNode) Value() data.Value {
	return n.Filter.Value()
}

// IndexRangeNode selects the rows whose numeric column exceeds Threshold (leaf node)
type IndexRangeNode struct {
	Filter    *filter.Filter
	Threshold float64

	metadata
}

func (n *IndexRangeNode) Children() []Node {
	return nil
}

func (n *IndexRangeNode) NodeType() string {
	return "INDEX_RANGE"
}

// ProjectNode narrows the rows selected by its child to Columns, in order
type ProjectNode struct {
	Columns []string

	child Node
	metadata
}

func NewProjectNode(columns []string, child Node) *ProjectNode {
	return &ProjectNode{Columns: columns, child: child}
}

// Source returns the access path feeding this projection
func (n *ProjectNode) Source() Node {
	return n.child
}

func (n *ProjectNode) Children() []Node {
	if n.child == nil {
		return nil
	}
	return []Node{n.child}
}

func (n *ProjectNode) NodeType() string {
	return "PROJECT"
}
