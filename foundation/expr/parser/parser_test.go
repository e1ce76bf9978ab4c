// File: parser_test.go
// Title: Parser Tests
// Description: Precedence, associativity, assignment disambiguation, parse
//              modes, error reporting and render/re-parse stability.
// Author: msto63
// Version: v0.2.0
// Created: 2026-09-30
// Modified: 2026-10-19

package parser

import (
	"errors"
	"strings"
	"sync"
	"testing"

	exlog "github.com/msto63/exprkit/foundation/core/log"
	"github.com/msto63/exprkit/foundation/expr/ast"
)

func lit(v int64) ast.Node     { return &ast.Literal{Value: v} }
func ident(n string) ast.Node  { return &ast.Variable{Name: n} }
func add(l, r ast.Node) ast.Node { return &ast.BinaryOp{Op: ast.Add, Left: l, Right: r} }
func sub(l, r ast.Node) ast.Node { return &ast.BinaryOp{Op: ast.Sub, Left: l, Right: r} }
func mul(l, r ast.Node) ast.Node { return &ast.BinaryOp{Op: ast.Mul, Left: l, Right: r} }
func div(l, r ast.Node) ast.Node { return &ast.BinaryOp{Op: ast.Div, Left: l, Right: r} }
func assign(name string, v ast.Node) ast.Node {
	return &ast.Assignment{Target: name, Value: v}
}

func newTestParser(mode Mode) *Parser {
	return New(Options{Logger: exlog.Discard(), Mode: mode})
}

func TestParseTrees(t *testing.T) {
	tests := []struct {
		input string
		want  ast.Node
	}{
		{"42", lit(42)},
		{"x", ident("x")},
		{"8 - 3 - 2", sub(sub(lit(8), lit(3)), lit(2))},
		{"2 + 3 * 4", add(lit(2), mul(lit(3), lit(4)))},
		{"(2 + 3) * 4", mul(add(lit(2), lit(3)), lit(4))},
		{"x = 5 + 2", assign("x", add(lit(5), lit(2)))},
		{"x + 2", add(ident("x"), lit(2))},
		{"24 / 4 / 2", div(div(lit(24), lit(4)), lit(2))},
		{"((7))", lit(7)},
		{"a * (b - c) / d", div(mul(ident("a"), sub(ident("b"), ident("c"))), ident("d"))},
		{"total = (a)", assign("total", ident("a"))},
		{"y = y * 2 - 1", assign("y", sub(mul(ident("y"), lit(2)), lit(1)))},
		{"x * 2 + 1", add(mul(ident("x"), lit(2)), lit(1))},
		{"x / y * z - w", sub(mul(div(ident("x"), ident("y")), ident("z")), ident("w"))},
		{"  n  ", ident("n")},
	}

	p := newTestParser(ModeStrict)
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := p.Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.input, err)
			}
			if !ast.Equal(got, tt.want) {
				t.Errorf("Parse(%q) = %s, want %s", tt.input, ast.Dump(got, 0), ast.Dump(tt.want, 0))
			}
		})
	}
}

func TestParseLegacyMode(t *testing.T) {
	tests := []struct {
		input string
		want  ast.Node
	}{
		{"x * 2", ident("x")},
		{"x + 2 * 3", add(ident("x"), mul(lit(2), lit(3)))},
		{"1 2", lit(1)},
		{"x = 1 2", assign("x", lit(1))},
		{"(1) )", lit(1)},
		{"2 * x", mul(lit(2), ident("x"))},
	}

	p := newTestParser(ModeLegacy)
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := p.Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.input, err)
			}
			if !ast.Equal(got, tt.want) {
				t.Errorf("Parse(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseSyntaxErrors(t *testing.T) {
	tests := []struct {
		input    string
		mode     Mode
		expected Kind
		actual   Kind
		position int
	}{
		{"(1 + 2", ModeStrict, RParen, EndOfInput, 6},
		{"(1 + 2", ModeLegacy, RParen, EndOfInput, 6},
		{"((a)", ModeStrict, RParen, EndOfInput, 4},
		{"1 2", ModeStrict, EndOfInput, Number, 2},
		{"x = 1 )", ModeStrict, EndOfInput, RParen, 6},
		{"a = b = c", ModeStrict, EndOfInput, Assign, 6},
		{"(x y)", ModeStrict, RParen, Identifier, 3},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String()+"/"+tt.input, func(t *testing.T) {
			node, err := newTestParser(tt.mode).Parse(tt.input)
			if node != nil {
				t.Errorf("Parse(%q) returned a tree alongside an error", tt.input)
			}

			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("Parse(%q) error = %v, want SyntaxError", tt.input, err)
			}
			if se.Expected != tt.expected || se.Actual.Kind != tt.actual || se.Actual.Position != tt.position {
				t.Errorf("got expected=%s actual=%s@%d, want expected=%s actual=%s@%d",
					se.Expected, se.Actual.Kind, se.Actual.Position,
					tt.expected, tt.actual, tt.position)
			}
		})
	}
}

func TestParseUnexpectedFactor(t *testing.T) {
	tests := []struct {
		input    string
		kind     Kind
		position int
	}{
		{"", EndOfInput, 0},
		{"+ 1", Plus, 0},
		{"-5", Minus, 0},
		{"3 *", EndOfInput, 3},
		{"x = ", EndOfInput, 4},
		{"()", RParen, 1},
		{"2 + * 3", Times, 4},
		{"= 3", Assign, 0},
	}

	p := newTestParser(ModeStrict)
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := p.Parse(tt.input)

			var uf *UnexpectedFactorError
			if !errors.As(err, &uf) {
				t.Fatalf("Parse(%q) error = %v, want UnexpectedFactorError", tt.input, err)
			}
			if uf.Token.Kind != tt.kind || uf.Token.Position != tt.position {
				t.Errorf("got %s@%d, want %s@%d", uf.Token.Kind, uf.Token.Position, tt.kind, tt.position)
			}
		})
	}
}

func TestParseInvalidCharacter(t *testing.T) {
	for _, mode := range []Mode{ModeStrict, ModeLegacy} {
		_, err := newTestParser(mode).Parse("3 & 4")

		var ic *InvalidCharacterError
		if !errors.As(err, &ic) {
			t.Fatalf("%s: error = %v, want InvalidCharacterError", mode, err)
		}
		if ic.Char != '&' || ic.Position != 2 {
			t.Errorf("%s: got %q at %d", mode, ic.Char, ic.Position)
		}
	}
}

func TestParseInputTooLong(t *testing.T) {
	p := New(Options{Logger: exlog.Discard(), MaxInputLength: 5})

	if _, err := p.Parse("1+2+3"); err != nil {
		t.Fatalf("input at the limit rejected: %v", err)
	}

	_, err := p.Parse("1 + 2 + 3")
	var tooLong *InputTooLongError
	if !errors.As(err, &tooLong) || tooLong.Length != 9 || tooLong.Limit != 5 {
		t.Errorf("error = %v, want InputTooLongError 9 > 5", err)
	}

	unlimited := New(Options{Logger: exlog.Discard(), MaxInputLength: -1})
	long := strings.Repeat("1 + ", DefaultMaxInputLength) + "1"
	if _, err := unlimited.Parse(long); err != nil {
		t.Errorf("unlimited parser rejected long input: %v", err)
	}
}

func TestRenderReparse(t *testing.T) {
	inputs := []string{
		"8 - 3 - 2",
		"8 - (3 - 2)",
		"2 + 3 * 4",
		"(2 + 3) * 4",
		"x = 5 + 2",
		"result = a / (b * c) - 7",
		"x * 2 + y / 3",
		"99999999999999999999",
		"v",
	}

	p := newTestParser(ModeStrict)
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			first, err := p.Parse(input)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", input, err)
			}

			rendered := ast.Render(first)
			second, err := p.Parse(rendered)
			if err != nil {
				t.Fatalf("re-parse of %q error = %v", rendered, err)
			}
			if !ast.Equal(first, second) {
				t.Errorf("%q -> %q changed the tree", input, rendered)
			}
		})
	}
}

// FuzzRenderReparse checks that every tree the parser accepts survives a
// round trip through Render in both modes
func FuzzRenderReparse(f *testing.F) {
	for _, seed := range []string{
		"8 - 3 - 2",
		"8 - (3 - 2)",
		"2 + 3 * 4",
		"(2 + 3) * 4",
		"x = 5 + 2",
		"result = a / (b * c) - 7",
		"x * 2 + y / 3",
		"99999999999999999999",
		"v",
		"x١ = ٣ * n²",
		"1 2",
	} {
		f.Add(seed)
	}

	parsers := map[Mode]*Parser{
		ModeStrict: New(Options{Logger: exlog.Discard(), Mode: ModeStrict, MaxInputLength: -1}),
		ModeLegacy: New(Options{Logger: exlog.Discard(), Mode: ModeLegacy, MaxInputLength: -1}),
	}

	f.Fuzz(func(t *testing.T, input string) {
		if len(input) > 1024 {
			t.Skip()
		}
		for mode, p := range parsers {
			first, err := p.Parse(input)
			if err != nil {
				continue
			}

			rendered := ast.Render(first)
			second, err := p.Parse(rendered)
			if err != nil {
				t.Fatalf("%s: re-parse of %q (from %q) error = %v", mode, rendered, input, err)
			}
			if !ast.Equal(first, second) {
				t.Errorf("%s: %q -> %q changed the tree", mode, input, rendered)
			}
		}
	})
}

func TestParserConcurrentUse(t *testing.T) {
	p := newTestParser(ModeStrict)
	want := add(lit(1), mul(ident("x"), lit(3)))

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := p.Parse("1 + x * 3")
			if err != nil {
				errs <- err
				return
			}
			if !ast.Equal(got, want) {
				errs <- errors.New("unexpected tree " + got.String())
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{"", ModeStrict, false},
		{"strict", ModeStrict, false},
		{" Legacy ", ModeLegacy, false},
		{"lenient", ModeStrict, true},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.input)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseMode(%q) = %v, %v", tt.input, got, err)
		}
	}
}

func TestPackageParse(t *testing.T) {
	got, err := Parse("a = 1")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !ast.Equal(got, assign("a", lit(1))) {
		t.Errorf("Parse() = %s", got)
	}
}
