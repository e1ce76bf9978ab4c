// File: parser.go
// Title: Recursive Descent Parser
// Description: Builds a syntax tree from the token stream with a single
//              token of lookahead. Operators are left-associative and
//              '*' '/' bind tighter than '+' '-'.
// Author: msto63
// Version: v0.2.0
// Created: 2026-09-30
// Modified: 2026-10-10
//
// Change History:
// - 2026-09-30 v0.1.0: Initial parser
// - 2026-10-10 v0.2.0: Parse modes, per-call state so a Parser can be shared

package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	exlog "github.com/msto63/exprkit/foundation/core/log"
	"github.com/msto63/exprkit/foundation/expr/ast"
)

// DefaultMaxInputLength is used when Options.MaxInputLength is zero
const DefaultMaxInputLength = 4096

// Mode selects how a statement starting with an identifier that is not
// followed by '=' continues.
type Mode int

const (
	// ModeStrict continues with the full expression grammar and rejects
	// trailing tokens.
	ModeStrict Mode = iota

	// ModeLegacy continues with '+' and '-' only and ignores trailing
	// tokens, so "x * 2" parses as the variable x.
	ModeLegacy
)

// String returns the mode name
func (m Mode) String() string {
	switch m {
	case ModeStrict:
		return "strict"
	case ModeLegacy:
		return "legacy"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses "strict" or "legacy"; the empty string means strict
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return ModeStrict, nil
	case "legacy":
		return ModeLegacy, nil
	default:
		return ModeStrict, fmt.Errorf("unknown parse mode %q", s)
	}
}

// Options configures a Parser
type Options struct {
	Logger *exlog.Logger

	// MaxInputLength limits the input in characters. Zero selects
	// DefaultMaxInputLength, a negative value disables the limit.
	MaxInputLength int

	Mode Mode
}

// Parser parses statements. It holds only configuration and may be used
// from several goroutines at once.
type Parser struct {
	logger  *exlog.Logger
	options Options
}

// New creates a parser with the given options
func New(opts Options) *Parser {
	if opts.Logger == nil {
		opts.Logger = exlog.GetDefault()
	}
	if opts.MaxInputLength == 0 {
		opts.MaxInputLength = DefaultMaxInputLength
	}

	return &Parser{
		logger:  opts.Logger.WithField("component", "expr-parser"),
		options: opts,
	}
}

// Parse parses input with default options
func Parse(input string) (ast.Node, error) {
	return New(Options{}).Parse(input)
}

// Mode returns the configured parse mode
func (p *Parser) Mode() Mode {
	return p.options.Mode
}

// Parse parses one statement. On error no tree is returned.
func (p *Parser) Parse(input string) (ast.Node, error) {
	if limit := p.options.MaxInputLength; limit > 0 {
		if n := utf8.RuneCountInString(input); n > limit {
			return nil, &InputTooLongError{Length: n, Limit: limit}
		}
	}

	p.logger.Debug("parse started", exlog.Fields{
		"input": input,
		"mode":  p.options.Mode.String(),
	})

	st := &state{scanner: NewScanner(input), mode: p.options.Mode}

	node, err := st.parse()
	if err != nil {
		p.logger.Warn("parse failed", exlog.Fields{
			"input":    input,
			"error":    err.Error(),
			"position": Position(err),
		})
		return nil, err
	}

	p.logger.Debug("parse completed", exlog.Fields{
		"input": input,
		"root":  ast.TypeName(node),
		"nodes": ast.Count(node),
	})
	return node, nil
}

// state is the per-call parse state: the scanner and the current token
type state struct {
	scanner *Scanner
	current Token
	mode    Mode
}

func (s *state) parse() (ast.Node, error) {
	first, err := s.scanner.NextToken()
	if err != nil {
		return nil, err
	}
	s.current = first

	node, err := s.statement()
	if err != nil {
		return nil, err
	}

	if s.mode == ModeStrict && s.current.Kind != EndOfInput {
		return nil, &SyntaxError{Expected: EndOfInput, Actual: s.current}
	}
	return node, nil
}

// eat consumes the current token if it has the given kind
func (s *state) eat(kind Kind) error {
	if s.current.Kind != kind {
		return &SyntaxError{Expected: kind, Actual: s.current}
	}

	next, err := s.scanner.NextToken()
	if err != nil {
		return err
	}
	s.current = next
	return nil
}

func (s *state) statement() (ast.Node, error) {
	if s.current.Kind != Identifier {
		return s.expression()
	}

	name := s.current.Name
	if err := s.eat(Identifier); err != nil {
		return nil, err
	}

	if s.current.Kind == Assign {
		if err := s.eat(Assign); err != nil {
			return nil, err
		}
		value, err := s.expression()
		if err != nil {
			return nil, err
		}
		return &ast.Assignment{Target: name, Value: value}, nil
	}

	// the identifier already consumed is the first operand
	var left ast.Node = &ast.Variable{Name: name}
	if s.mode == ModeStrict {
		var err error
		if left, err = s.termRest(left); err != nil {
			return nil, err
		}
	}
	return s.expressionRest(left)
}

func (s *state) expression() (ast.Node, error) {
	left, err := s.term()
	if err != nil {
		return nil, err
	}
	return s.expressionRest(left)
}

func (s *state) expressionRest(left ast.Node) (ast.Node, error) {
	for s.current.Kind == Plus || s.current.Kind == Minus {
		op := ast.Add
		if s.current.Kind == Minus {
			op = ast.Sub
		}
		if err := s.eat(s.current.Kind); err != nil {
			return nil, err
		}

		right, err := s.term()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (s *state) term() (ast.Node, error) {
	left, err := s.factor()
	if err != nil {
		return nil, err
	}
	return s.termRest(left)
}

func (s *state) termRest(left ast.Node) (ast.Node, error) {
	for s.current.Kind == Times || s.current.Kind == Divide {
		op := ast.Mul
		if s.current.Kind == Divide {
			op = ast.Div
		}
		if err := s.eat(s.current.Kind); err != nil {
			return nil, err
		}

		right, err := s.factor()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (s *state) factor() (ast.Node, error) {
	tok := s.current

	switch tok.Kind {
	case Number:
		if err := s.eat(Number); err != nil {
			return nil, err
		}
		return &ast.Literal{Value: tok.Value}, nil

	case Identifier:
		if err := s.eat(Identifier); err != nil {
			return nil, err
		}
		return &ast.Variable{Name: tok.Name}, nil

	case LParen:
		if err := s.eat(LParen); err != nil {
			return nil, err
		}
		inner, err := s.expression()
		if err != nil {
			return nil, err
		}
		if err := s.eat(RParen); err != nil {
			return nil, err
		}
		return inner, nil

	default:
		return nil, &UnexpectedFactorError{Token: tok}
	}
}
