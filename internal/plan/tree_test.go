package plan

import (
	"strings"
	"testing"
)

func sampleTree() *ProjectNode {
	return NewProjectNode([]string{"FirstName", "Age"}, &FullScanNode{RowCount: 3})
}

// TestTreeStructure verifies that nodes form a tree
func TestTreeStructure(t *testing.T) {
	root := sampleTree()

	if len(root.Children()) != 1 {
		t.Errorf("ProjectNode should have 1 child, got %d", len(root.Children()))
	}

	if len(root.Source().Children()) != 0 {
		t.Errorf("FullScanNode should have 0 children, got %d", len(root.Source().Children()))
	}

	if len(NewProjectNode(nil, nil).Children()) != 0 {
		t.Error("ProjectNode without a source should have no children")
	}
}

// TestMetadata verifies metadata attachment
func TestMetadata(t *testing.T) {
	node := &IndexRangeNode{Threshold: 30}

	if node.Metadata() == nil {
		t.Error("Metadata() should never return nil")
	}

	node.Metadata()["column"] = "Age"
	node.Metadata()["estimated_rows"] = 2

	if val, ok := node.Metadata()["column"].(string); !ok || val != "Age" {
		t.Errorf("Expected column='Age', got %v", node.Metadata()["column"])
	}

	if val, ok := node.Metadata()["estimated_rows"].(int); !ok || val != 2 {
		t.Errorf("Expected estimated_rows=2, got %v", node.Metadata()["estimated_rows"])
	}
}

// TestWalkTree verifies tree walking
func TestWalkTree(t *testing.T) {
	nodeCount := 0
	err := WalkTree(sampleTree(), func(n Node) error {
		nodeCount++
		return nil
	})

	if err != nil {
		t.Errorf("WalkTree failed: %v", err)
	}

	if nodeCount != 2 {
		t.Errorf("Expected to visit 2 nodes, visited %d", nodeCount)
	}
}

// TestPrintTree verifies tree printing
func TestPrintTree(t *testing.T) {
	output := PrintTree(sampleTree())

	if output != "PROJECT\n  FULL_SCAN\n" {
		t.Errorf("unexpected tree output:\n%s", output)
	}
	if !strings.Contains(PrintTree(NewProjectNode(nil, &IndexLookupNode{})), "  INDEX_LOOKUP") {
		t.Error("Tree output should contain an indented INDEX_LOOKUP")
	}
}

// TestCountNodes verifies node counting
func TestCountNodes(t *testing.T) {
	if count := CountNodes(sampleTree()); count != 2 {
		t.Errorf("Expected 2 nodes, got %d", count)
	}
	if count := CountNodes(nil); count != 0 {
		t.Errorf("Expected 0 nodes for nil tree, got %d", count)
	}
}

func TestAccessPath(t *testing.T) {
	tests := []struct {
		node     Node
		expected string
	}{
		{sampleTree(), "FULL_SCAN"},
		{NewProjectNode(nil, &IndexLookupNode{}), "INDEX_LOOKUP"},
		{NewProjectNode(nil, &IndexRangeNode{}), "INDEX_RANGE"},
	}

	for _, tt := range tests {
		if got := AccessPath(tt.node); got != tt.expected {
			t.Errorf("Expected access path %s, got %s", tt.expected, got)
		}
	}
}

// TestNodeType verifies NodeType method
func TestNodeType(t *testing.T) {
	tests := []struct {
		node     Node
		expected string
	}{
		{&FullScanNode{}, "FULL_SCAN"},
		{&IndexLookupNode{}, "INDEX_LOOKUP"},
		{&IndexRangeNode{}, "INDEX_RANGE"},
		{&ProjectNode{}, "PROJECT"},
	}

	for _, tt := range tests {
		if tt.node.NodeType() != tt.expected {
			t.Errorf("Expected NodeType=%s, got %s", tt.expected, tt.node.NodeType())
		}
	}
}
