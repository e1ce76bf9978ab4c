// Package ast defines the syntax tree produced by the expression parser.
//
// Package: ast
// Title: Expression Syntax Tree
// Description: Closed set of node types (Literal, Variable, BinaryOp,
//              Assignment), a visitor with one method per node type, and the
//              printers used by the CLI and services: Dump for an indented
//              structural view, Render for a fully parenthesised re-print and
//              ToMap/FromMap for JSON-shaped interchange.
// Author: msto63
// Version: v0.1.0
// Created: 2026-09-30
// Modified: 2026-10-08
//
// Change History:
// - 2026-09-30 v0.1.0: Initial node definitions and printers
//
// Nodes carry no source positions. A tree is immutable once the parser has
// returned it and every child is owned by exactly one parent.
//
// Usage:
//
//	tree := &ast.BinaryOp{
//		Op:    ast.Add,
//		Left:  &ast.Literal{Value: 2},
//		Right: &ast.Variable{Name: "x"},
//	}
//	fmt.Println(ast.Render(tree)) // (2 + x)
//	fmt.Println(ast.Dump(tree, 4))
package ast
