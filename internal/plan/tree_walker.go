package plan

import (
	"fmt"
	"strings"
)

// WalkTree recursively walks the plan tree, calling visitor for each node
func WalkTree(node Node, visitor func(Node) error) error {
	if node == nil {
		return nil
	}

	if err := visitor(node); err != nil {
		return err
	}

	for _, child := range node.Children() {
		if err := WalkTree(child, visitor); err != nil {
			return err
		}
	}

	return nil
}

// PrintTree prints the plan tree with indentation
func PrintTree(node Node) string {
	var sb strings.Builder
	printTreeHelper(node, 0, &sb)
	return sb.String()
}

func printTreeHelper(node Node, depth int, sb *strings.Builder) {
	if node == nil {
		return
	}

	fmt.Fprintf(sb, "%s%s\n", strings.Repeat("  ", depth), node.NodeType())

	for _, child := range node.Children() {
		printTreeHelper(child, depth+1, sb)
	}
}

// CountNodes counts the total number of nodes in the tree
func CountNodes(node Node) int {
	if node == nil {
		return 0
	}

	count := 1
	for _, child := range node.Children() {
		count += CountNodes(child)
	}

	return count
}

// AccessPath returns the leaf node type that selects rows, e.g. INDEX_LOOKUP
func AccessPath(node Node) string {
	path := ""
	_ = WalkTree(node, func(n Node) error {
		if len(n.Children()) == 0 {
			path = n.NodeType()
		}
		return nil
	})
	return path
}
