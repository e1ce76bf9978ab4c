// File: scanner.go
// Title: Expression Scanner
// Description: Converts source text into tokens on demand, one character of
//              lookahead, whitespace skipped.
// Author: msto63
// Version: v0.1.0
// Created: 2026-09-30
// Modified: 2026-10-19
//
// Change History:
// - 2026-09-30 v0.1.0: Initial scanner
// - 2026-10-04 v0.1.1: Positions count characters instead of bytes
// - 2026-10-19 v0.1.2: Unicode decimal digits in numbers, numeric
//                      characters in identifiers

package parser

import (
	"unicode"
	"unicode/utf8"
)

const eof rune = -1

// Scanner produces tokens from a fixed input. The cursor only moves forward.
// A Scanner is not safe for concurrent use.
type Scanner struct {
	input []rune
	pos   int
	ch    rune
}

// NewScanner creates a scanner positioned on the first character of input
func NewScanner(input string) *Scanner {
	s := &Scanner{input: []rune(input)}
	s.load()
	return s
}

// NextToken returns the next token. Once the input is exhausted every call
// returns an EndOfInput token at the input length. An unrecognised
// character yields an *InvalidCharacterError and the cursor stays on it.
func (s *Scanner) NextToken() (Token, error) {
	s.skipWhitespace()

	start := s.pos
	switch {
	case s.ch == eof:
		return Token{Kind: EndOfInput, Position: start}, nil
	case isDigit(s.ch):
		return Token{Kind: Number, Value: s.readNumber(), Position: start}, nil
	case isIdentStart(s.ch):
		return Token{Kind: Identifier, Name: s.readIdentifier(), Position: start}, nil
	}

	kind, ok := punctuation[s.ch]
	if !ok {
		return Token{}, &InvalidCharacterError{Char: s.ch, Position: start}
	}
	s.advance()
	return Token{Kind: kind, Position: start}, nil
}

// Position returns the index of the character under the cursor
func (s *Scanner) Position() int {
	return s.pos
}

func (s *Scanner) advance() {
	s.pos++
	s.load()
}

func (s *Scanner) load() {
	if s.pos >= len(s.input) {
		s.pos = len(s.input)
		s.ch = eof
		return
	}
	s.ch = s.input[s.pos]
}

func (s *Scanner) skipWhitespace() {
	for s.ch != eof && unicode.IsSpace(s.ch) {
		s.advance()
	}
}

// readNumber accumulates with int64 wrap-around, no overflow check
func (s *Scanner) readNumber() int64 {
	var v int64
	for isDigit(s.ch) {
		v = v*10 + digitValue(s.ch)
		s.advance()
	}
	return v
}

func (s *Scanner) readIdentifier() string {
	start := s.pos
	for isIdentPart(s.ch) {
		s.advance()
	}
	return string(s.input[start:s.pos])
}

// isDigit reports decimal digits of any script (category Nd)
func isDigit(ch rune) bool {
	if ch < utf8.RuneSelf {
		return ch >= '0' && ch <= '9'
	}
	return unicode.IsDigit(ch)
}

// digitValue returns the value of a decimal digit. Nd characters are
// encoded in contiguous runs from 0 to 9, so the offset into the range
// modulo ten is the value.
func digitValue(ch rune) int64 {
	if ch <= '9' {
		return int64(ch - '0')
	}
	if ch <= 0xFFFF {
		for _, r := range unicode.Nd.R16 {
			if uint16(ch) >= r.Lo && uint16(ch) <= r.Hi {
				return int64(uint16(ch)-r.Lo) % 10
			}
		}
		return 0
	}
	for _, r := range unicode.Nd.R32 {
		if uint32(ch) >= r.Lo && uint32(ch) <= r.Hi {
			return int64(uint32(ch)-r.Lo) % 10
		}
	}
	return 0
}

func isIdentStart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

// isIdentPart accepts letters, underscore and any numeric character,
// including superscripts and other non-decimal digits
func isIdentPart(ch rune) bool {
	return isIdentStart(ch) || isDigit(ch) || unicode.IsNumber(ch)
}

// Tokenize drains a scanner over input. The returned slice ends with the
// EndOfInput token on success; on error it holds the tokens read so far.
func Tokenize(input string) ([]Token, error) {
	s := NewScanner(input)

	var tokens []Token
	for {
		tok, err := s.NextToken()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == EndOfInput {
			return tokens, nil
		}
	}
}
