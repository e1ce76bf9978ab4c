// File: print.go
// Title: Syntax Tree Printers
// Description: Render prints a tree back to source with every binary
//              operation parenthesised, Dump prints the structure in a
//              Name(field=value, ...) notation.
// Author: msto63
// Version: v0.1.0
// Created: 2026-09-30
// Modified: 2026-10-08
//
// Change History:
// - 2026-09-30 v0.1.0: Render and Dump
// - 2026-10-08 v0.1.1: Render wrapped literals in their unsigned form

package ast

import (
	"strconv"
	"strings"
)

// Render returns source text for n with every binary operation wrapped in
// parentheses. Parsing the result yields a tree Equal to n for every tree the
// parser can produce.
func Render(n Node) string {
	var b strings.Builder
	render(&b, n)
	return b.String()
}

func render(b *strings.Builder, n Node) {
	switch x := n.(type) {
	case *Literal:
		// the scanner wraps modulo 2^64, so the unsigned form reads back
		// to the same value
		b.WriteString(strconv.FormatUint(uint64(x.Value), 10))
	case *Variable:
		b.WriteString(x.Name)
	case *BinaryOp:
		b.WriteByte('(')
		render(b, x.Left)
		b.WriteByte(' ')
		b.WriteString(x.Op.Symbol())
		b.WriteByte(' ')
		render(b, x.Right)
		b.WriteByte(')')
	case *Assignment:
		b.WriteString(x.Target)
		b.WriteString(" = ")
		render(b, x.Value)
	default:
		b.WriteString("<nil>")
	}
}

// Dump returns a structural view of n. With indent > 0 every composite node
// puts its fields on separate lines indented by that many spaces per level;
// leaves always stay on one line.
func Dump(n Node, indent int) string {
	d := dumper{indent: indent}
	d.dump(n, 0)
	return d.b.String()
}

type dumpField struct {
	name   string
	text   string
	child  Node
	isNode bool
}

type dumper struct {
	b      strings.Builder
	indent int
}

func (d *dumper) dump(n Node, depth int) {
	if n == nil {
		d.b.WriteString("None")
		return
	}

	fields, leaf := describe(n)

	sep, prefix := ", ", ""
	if d.indent > 0 && !leaf {
		sep = ","
		prefix = "\n" + strings.Repeat(" ", d.indent*(depth+1))
	}

	d.b.WriteString(TypeName(n))
	d.b.WriteByte('(')
	for i, f := range fields {
		if i > 0 {
			d.b.WriteString(sep)
		}
		d.b.WriteString(prefix)
		d.b.WriteString(f.name)
		d.b.WriteByte('=')
		if f.isNode {
			d.dump(f.child, depth+1)
		} else {
			d.b.WriteString(f.text)
		}
	}
	d.b.WriteByte(')')
}

func describe(n Node) ([]dumpField, bool) {
	switch x := n.(type) {
	case *Literal:
		return []dumpField{{name: "value", text: strconv.FormatInt(x.Value, 10)}}, true
	case *Variable:
		return []dumpField{{name: "name", text: strconv.Quote(x.Name)}}, true
	case *BinaryOp:
		return []dumpField{
			{name: "op", text: x.Op.String()},
			{name: "left", child: x.Left, isNode: true},
			{name: "right", child: x.Right, isNode: true},
		}, false
	case *Assignment:
		return []dumpField{
			{name: "target", text: strconv.Quote(x.Target)},
			{name: "value", child: x.Value, isNode: true},
		}, false
	default:
		return nil, true
	}
}
