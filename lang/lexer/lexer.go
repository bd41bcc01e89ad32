// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package lexer implements a single-pass, no-backtracking lexer for
// structured text.
//
//   - Keywords and word operators are case-insensitive
//   - (* block *) and // line comments are skipped
//   - Integer literals may contain '_' separators
//   - An identifier directly followed by '#' is a type cast prefix (INT#5)
//   - Any byte that starts no token yields an Error token; the lexer never stops
package lexer

import (
	"unicode/utf8"

	"github.com/probechain/stc/lang/token"
)

// Lexer holds the state for a single tokenization run.
type Lexer struct {
	input string
	pos   int // offset of the next unread byte
}

// New creates a Lexer over the given source text.
func New(input string) *Lexer {
	return &Lexer{input: input}
}

func (l *Lexer) ch() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peek() byte {
	if l.pos+1 >= len(l.input) {
		return 0
	}
	return l.input[l.pos+1]
}

func (l *Lexer) makeToken(kind token.Kind, start int) token.Token {
	return token.Token{
		Kind: kind,
		Text: l.input[start:l.pos],
		Span: token.Span{Start: start, End: l.pos},
	}
}

// skipTrivia consumes whitespace and comments. It reports false, with the
// offending comment start, when a block comment is never closed.
func (l *Lexer) skipTrivia() (int, bool) {
	for l.pos < len(l.input) {
		switch c := l.ch(); {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.pos++
		case c == '/' && l.peek() == '/':
			for l.pos < len(l.input) && l.ch() != '\n' {
				l.pos++
			}
		case c == '(' && l.peek() == '*':
			start := l.pos
			l.pos += 2
			for {
				if l.pos >= len(l.input) {
					return start, false
				}
				if l.ch() == '*' && l.peek() == ')' {
					l.pos += 2
					break
				}
				l.pos++
			}
		default:
			return l.pos, true
		}
	}
	return l.pos, true
}

// NextToken scans and returns the next token from the input.
// After the end is reached, subsequent calls keep returning End tokens.
func (l *Lexer) NextToken() token.Token {
	if start, ok := l.skipTrivia(); !ok {
		l.pos = len(l.input)
		return l.makeToken(token.Error, start)
	}
	start := l.pos
	if l.pos >= len(l.input) {
		return l.makeToken(token.End, start)
	}

	c := l.ch()
	switch {
	// -------------------------------------------------------------------------
	// Identifiers, keywords and cast prefixes
	// -------------------------------------------------------------------------
	case isIdentStart(c):
		for isIdentPart(l.ch()) {
			l.pos++
		}
		kind := token.Lookup(l.input[start:l.pos])
		if kind == token.Identifier && l.ch() == '#' {
			l.pos++
			return l.makeToken(token.TypeCastPrefix, start)
		}
		return l.makeToken(kind, start)

	// -------------------------------------------------------------------------
	// Numeric literals
	// -------------------------------------------------------------------------
	case isDigit(c):
		return l.readNumber(start)
	}

	l.pos++
	switch c {
	case ':':
		if l.ch() == '=' {
			l.pos++
			return l.makeToken(token.KeywordAssignment, start)
		}
		return l.makeToken(token.KeywordColon, start)
	case ';':
		return l.makeToken(token.KeywordSemicolon, start)
	case ',':
		return l.makeToken(token.KeywordComma, start)
	case '(':
		return l.makeToken(token.KeywordParensOpen, start)
	case ')':
		return l.makeToken(token.KeywordParensClose, start)
	case '+':
		return l.makeToken(token.OperatorPlus, start)
	case '-':
		return l.makeToken(token.OperatorMinus, start)
	case '*':
		return l.makeToken(token.OperatorMultiplication, start)
	case '/':
		return l.makeToken(token.OperatorDivision, start)
	case '=':
		return l.makeToken(token.OperatorEqual, start)
	case '<':
		switch l.ch() {
		case '=':
			l.pos++
			return l.makeToken(token.OperatorLessOrEqual, start)
		case '>':
			l.pos++
			return l.makeToken(token.OperatorNotEqual, start)
		}
		return l.makeToken(token.OperatorLess, start)
	case '>':
		if l.ch() == '=' {
			l.pos++
			return l.makeToken(token.OperatorGreaterOrEqual, start)
		}
		return l.makeToken(token.OperatorGreater, start)
	}

	// Keep multi-byte characters whole so the token text stays valid UTF-8.
	if c >= utf8.RuneSelf {
		_, size := utf8.DecodeRuneInString(l.input[start:])
		l.pos = start + size
	}
	return l.makeToken(token.Error, start)
}

// readNumber scans an integer or real literal. Reals need digits on both
// sides of the dot; "1." lexes as an integer followed by an Error token.
func (l *Lexer) readNumber(start int) token.Token {
	l.readDigits()
	kind := token.LiteralInteger
	if l.ch() == '.' && isDigit(l.peek()) {
		kind = token.LiteralReal
		l.pos++
		l.readDigits()
	}
	if c := l.ch(); c == 'e' || c == 'E' {
		save := l.pos
		l.pos++
		if c := l.ch(); c == '+' || c == '-' {
			l.pos++
		}
		if isDigit(l.ch()) {
			kind = token.LiteralReal
			l.readDigits()
		} else {
			l.pos = save
		}
	}
	return l.makeToken(kind, start)
}

func (l *Lexer) readDigits() {
	for isDigit(l.ch()) || (l.ch() == '_' && isDigit(l.peek())) {
		l.pos++
	}
}

// Tokenize scans the whole input and returns every token, ending with End.
func (l *Lexer) Tokenize() []token.Token {
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Kind == token.End {
			return toks
		}
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
