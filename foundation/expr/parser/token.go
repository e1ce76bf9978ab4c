// File: token.go
// Title: Token Definitions
// Description: Token kinds and the token value produced by the scanner.
// Author: msto63
// Version: v0.1.0
// Created: 2026-09-30
// Modified: 2026-09-30

package parser

import (
	"fmt"
	"strconv"
)

// Kind identifies the type of a token
type Kind int

const (
	EndOfInput Kind = iota
	Number
	Identifier
	Plus
	Minus
	Times
	Divide
	LParen
	RParen
	Assign
)

var kindNames = map[Kind]string{
	EndOfInput: "EndOfInput",
	Number:     "Number",
	Identifier: "Identifier",
	Plus:       "Plus",
	Minus:      "Minus",
	Times:      "Times",
	Divide:     "Divide",
	LParen:     "LParen",
	RParen:     "RParen",
	Assign:     "Assign",
}

var punctuation = map[rune]Kind{
	'+': Plus,
	'-': Minus,
	'*': Times,
	'/': Divide,
	'(': LParen,
	')': RParen,
	'=': Assign,
}

// String returns the kind name
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is a single lexical unit. Value is set for Number tokens and Name
// for Identifier tokens. Position is the 0-based character index of the first
// character of the token; for EndOfInput it is the input length.
type Token struct {
	Kind     Kind
	Value    int64
	Name     string
	Position int
}

// Text returns the token as it would appear in source
func (t Token) Text() string {
	switch t.Kind {
	case Number:
		return strconv.FormatUint(uint64(t.Value), 10)
	case Identifier:
		return t.Name
	case EndOfInput:
		return ""
	}
	for r, k := range punctuation {
		if k == t.Kind {
			return string(r)
		}
	}
	return ""
}

// String returns a readable form such as Number(42) or Plus
func (t Token) String() string {
	switch t.Kind {
	case Number, Identifier:
		return fmt.Sprintf("%s(%s)", t.Kind, t.Text())
	default:
		return t.Kind.String()
	}
}
