// File: visitor.go
// Title: Syntax Tree Traversal
// Description: Visitor interface and generic pre-order walking helpers.
// Author: msto63
// Version: v0.1.0
// Created: 2026-09-30
// Modified: 2026-09-30

package ast

import (
	"sort"
)

// Visitor has one method per node type. Adding a node type breaks every
// implementation at compile time.
type Visitor interface {
	VisitLiteral(n *Literal) (interface{}, error)
	VisitVariable(n *Variable) (interface{}, error)
	VisitBinaryOp(n *BinaryOp) (interface{}, error)
	VisitAssignment(n *Assignment) (interface{}, error)
}

// Walk calls fn for n and its descendants in pre-order. Returning false
// from fn skips the children of that node.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}

	switch x := n.(type) {
	case *BinaryOp:
		Walk(x.Left, fn)
		Walk(x.Right, fn)
	case *Assignment:
		Walk(x.Value, fn)
	}
}

// Variables returns the sorted, de-duplicated names read by n. The target of
// an assignment is written, not read, and is not included.
func Variables(n Node) []string {
	seen := make(map[string]struct{})
	Walk(n, func(node Node) bool {
		if v, ok := node.(*Variable); ok {
			seen[v.Name] = struct{}{}
		}
		return true
	})

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of nodes in the tree
func Count(n Node) int {
	total := 0
	Walk(n, func(Node) bool {
		total++
		return true
	})
	return total
}

// Depth returns the height of the tree; a single leaf has depth 1
func Depth(n Node) int {
	switch x := n.(type) {
	case nil:
		return 0
	case *BinaryOp:
		return 1 + max(Depth(x.Left), Depth(x.Right))
	case *Assignment:
		return 1 + Depth(x.Value)
	default:
		return 1
	}
}
