// Package parser turns a single line of expression source into a syntax tree.
//
// Package: parser
// Title: Expression Scanner and Parser
// Description: Hand-written scanner producing tokens on demand and an LL(1)
//              recursive-descent parser building an ast.Node. The parser
//              fails fast on the first malformed construct.
// Author: msto63
// Version: v0.2.0
// Created: 2026-09-30
// Modified: 2026-10-10
//
// Change History:
// - 2026-09-30 v0.1.0: Scanner, parser and typed errors
// - 2026-10-10 v0.2.0: Parse modes, trailing input check in strict mode
//
// Grammar:
//
//	statement  := IDENT '=' expression | expression
//	expression := term (('+' | '-') term)*
//	term       := factor (('*' | '/') factor)*
//	factor     := NUMBER | IDENT | '(' expression ')'
//
// An assignment is recognised with one token of lookahead: the identifier
// is consumed and, if no '=' follows, becomes the first operand of an
// ordinary expression. In ModeLegacy that operand may only be continued with
// '+' or '-' and anything after the statement is ignored.
//
// Usage:
//
//	p := parser.New(parser.Options{Logger: logger})
//	tree, err := p.Parse("x = (1 + 2) * y")
//	if err != nil {
//		var syn *parser.SyntaxError
//		if errors.As(err, &syn) {
//			// syn.Expected, syn.Actual.Position
//		}
//	}
package parser
