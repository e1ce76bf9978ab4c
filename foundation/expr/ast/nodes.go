// File: nodes.go
// Title: Syntax Tree Nodes
// Description: Node interface, the four node types, operators and
//              structural equality.
// Author: msto63
// Version: v0.1.0
// Created: 2026-09-30
// Modified: 2026-10-08
//
// Change History:
// - 2026-09-30 v0.1.0: Initial node definitions

package ast

import (
	"fmt"
)

// Node is implemented by Literal, Variable, BinaryOp and Assignment only.
type Node interface {
	// Accept dispatches to the matching Visitor method
	Accept(v Visitor) (interface{}, error)

	// String returns the fully parenthesised form, see Render
	String() string

	node()
}

// Operator is a binary arithmetic operator
type Operator int

const (
	Add Operator = iota
	Sub
	Mul
	Div
)

var operatorNames = [...]string{"Add", "Sub", "Mul", "Div"}
var operatorSymbols = [...]string{"+", "-", "*", "/"}

// String returns the operator name (Add, Sub, Mul, Div)
func (o Operator) String() string {
	if o.IsValid() {
		return operatorNames[o]
	}
	return fmt.Sprintf("Operator(%d)", int(o))
}

// Symbol returns the source symbol of the operator
func (o Operator) Symbol() string {
	if o.IsValid() {
		return operatorSymbols[o]
	}
	return "?"
}

// IsValid reports whether o is one of the four operators
func (o Operator) IsValid() bool {
	return o >= Add && o <= Div
}

// Multiplicative reports whether o binds tighter than + and -
func (o Operator) Multiplicative() bool {
	return o == Mul || o == Div
}

// ParseOperator accepts an operator name or its symbol
func ParseOperator(s string) (Operator, bool) {
	for i := range operatorNames {
		if s == operatorNames[i] || s == operatorSymbols[i] {
			return Operator(i), true
		}
	}
	return 0, false
}

// Literal is a non-negative integer constant as written in the source.
// Values beyond int64 wrap around during scanning.
type Literal struct {
	Value int64
}

// Variable is a reference to a named value
type Variable struct {
	Name string
}

// BinaryOp applies Op to the results of Left and Right
type BinaryOp struct {
	Op    Operator
	Left  Node
	Right Node
}

// Assignment binds the result of Value to Target
type Assignment struct {
	Target string
	Value  Node
}

func (*Literal) node()    {}
func (*Variable) node()   {}
func (*BinaryOp) node()   {}
func (*Assignment) node() {}

func (n *Literal) Accept(v Visitor) (interface{}, error)    { return v.VisitLiteral(n) }
func (n *Variable) Accept(v Visitor) (interface{}, error)   { return v.VisitVariable(n) }
func (n *BinaryOp) Accept(v Visitor) (interface{}, error)   { return v.VisitBinaryOp(n) }
func (n *Assignment) Accept(v Visitor) (interface{}, error) { return v.VisitAssignment(n) }

func (n *Literal) String() string    { return Render(n) }
func (n *Variable) String() string   { return Render(n) }
func (n *BinaryOp) String() string   { return Render(n) }
func (n *Assignment) String() string { return Render(n) }

// TypeName returns the node type name used by Dump and ToMap
func TypeName(n Node) string {
	switch n.(type) {
	case *Literal:
		return "Literal"
	case *Variable:
		return "Variable"
	case *BinaryOp:
		return "BinaryOp"
	case *Assignment:
		return "Assignment"
	default:
		return "Unknown"
	}
}

// Equal reports whether a and b are structurally identical
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch x := a.(type) {
	case *Literal:
		y, ok := b.(*Literal)
		return ok && x.Value == y.Value
	case *Variable:
		y, ok := b.(*Variable)
		return ok && x.Name == y.Name
	case *BinaryOp:
		y, ok := b.(*BinaryOp)
		return ok && x.Op == y.Op && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *Assignment:
		y, ok := b.(*Assignment)
		return ok && x.Target == y.Target && Equal(x.Value, y.Value)
	default:
		return false
	}
}
