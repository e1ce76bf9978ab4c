// File: errors.go
// Title: Parse Errors
// Description: Typed errors returned by the scanner and parser.
// Author: msto63
// Version: v0.1.0
// Created: 2026-09-30
// Modified: 2026-10-10

package parser

import (
	"errors"
	"fmt"
)

// InvalidCharacterError is returned by the scanner for a character that
// starts no token.
type InvalidCharacterError struct {
	Char     rune
	Position int
}

func (e *InvalidCharacterError) Error() string {
	return fmt.Sprintf("invalid character %q at position %d", e.Char, e.Position)
}

// SyntaxError is returned when the current token is not the one the
// grammar requires.
type SyntaxError struct {
	Expected Kind
	Actual   Token
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at position %d: expected %s, found %s",
		e.Actual.Position, e.Expected, e.Actual)
}

// UnexpectedFactorError is returned when an operand is required but the
// current token cannot start one.
type UnexpectedFactorError struct {
	Token Token
}

func (e *UnexpectedFactorError) Error() string {
	return fmt.Sprintf("unexpected %s at position %d: expected number, identifier or '('",
		e.Token, e.Token.Position)
}

// InputTooLongError is returned before scanning when the input exceeds
// Options.MaxInputLength characters.
type InputTooLongError struct {
	Length int
	Limit  int
}

func (e *InputTooLongError) Error() string {
	return fmt.Sprintf("input exceeds maximum length: %d > %d", e.Length, e.Limit)
}

// Position returns the character index err refers to, or -1 when err
// carries no position. Wrapped errors are unwrapped.
func Position(err error) int {
	var ic *InvalidCharacterError
	var se *SyntaxError
	var uf *UnexpectedFactorError

	switch {
	case errors.As(err, &ic):
		return ic.Position
	case errors.As(err, &se):
		return se.Actual.Position
	case errors.As(err, &uf):
		return uf.Token.Position
	default:
		return -1
	}
}
