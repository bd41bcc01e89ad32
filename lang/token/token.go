// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package token defines the lexical token kinds of the structured-text
// language.
//
// Every token carries its kind, the raw source slice it was scanned from and
// a half-open byte span into the source. Keywords are case-insensitive; the
// source slice keeps the spelling that was actually written.
package token

import (
	"fmt"
	"strings"
)

// Token represents a lexical token.
type Token struct {
	Kind Kind
	Text string
	Span Span
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%s", t.Kind, t.Text, t.Span)
}

// Span is a half-open byte range [Start, End) into the source.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

func (s Span) String() string {
	return fmt.Sprintf("%d..%d", s.Start, s.End)
}

// Kind is the closed set of token kinds.
type Kind int

const (
	// Special tokens
	End Kind = iota
	Error

	Identifier
	LiteralInteger // 42, 1_000
	LiteralReal    // 3.14, 1.0e-3
	TypeCastPrefix // INT#

	// Punctuation
	KeywordColon      // :
	KeywordComma      // ,
	KeywordSemicolon  // ;
	KeywordParensOpen // (
	KeywordParensClose
	KeywordAssignment // :=

	// Operators
	operatorStart
	OperatorPlus
	OperatorMinus
	OperatorMultiplication
	OperatorDivision
	OperatorEqual
	OperatorNotEqual
	OperatorLess
	OperatorGreater
	OperatorLessOrEqual
	OperatorGreaterOrEqual
	// Word operators are spelled like keywords.
	OperatorModulo
	OperatorAnd
	OperatorOr
	OperatorXor
	OperatorNot
	operatorEnd

	// Keywords
	keywordStart
	KeywordProgram
	KeywordEndProgram
	KeywordFunction
	KeywordEndFunction
	KeywordVar
	KeywordConstant
	KeywordEndVar
	KeywordIf
	KeywordThen
	KeywordElseIf
	KeywordElse
	KeywordEndIf
	KeywordFor
	KeywordTo
	KeywordBy
	KeywordDo
	KeywordEndFor
	KeywordWhile
	KeywordEndWhile
	KeywordRepeat
	KeywordUntil
	KeywordEndRepeat
	KeywordCase
	KeywordOf
	KeywordEndCase
	LiteralTrue
	LiteralFalse
	keywordEnd
)

var kindNames = [...]string{
	End:   "End",
	Error: "Error",

	Identifier:     "Identifier",
	LiteralInteger: "LiteralInteger",
	LiteralReal:    "LiteralReal",
	TypeCastPrefix: "TypeCastPrefix",

	KeywordColon:       "KeywordColon",
	KeywordComma:       "KeywordComma",
	KeywordSemicolon:   "KeywordSemicolon",
	KeywordParensOpen:  "KeywordParensOpen",
	KeywordParensClose: "KeywordParensClose",
	KeywordAssignment:  "KeywordAssignment",

	OperatorPlus:           "OperatorPlus",
	OperatorMinus:          "OperatorMinus",
	OperatorMultiplication: "OperatorMultiplication",
	OperatorDivision:       "OperatorDivision",
	OperatorEqual:          "OperatorEqual",
	OperatorNotEqual:       "OperatorNotEqual",
	OperatorLess:           "OperatorLess",
	OperatorGreater:        "OperatorGreater",
	OperatorLessOrEqual:    "OperatorLessOrEqual",
	OperatorGreaterOrEqual: "OperatorGreaterOrEqual",
	OperatorModulo:         "OperatorModulo",
	OperatorAnd:            "OperatorAnd",
	OperatorOr:             "OperatorOr",
	OperatorXor:            "OperatorXor",
	OperatorNot:            "OperatorNot",

	KeywordProgram:     "KeywordProgram",
	KeywordEndProgram:  "KeywordEndProgram",
	KeywordFunction:    "KeywordFunction",
	KeywordEndFunction: "KeywordEndFunction",
	KeywordVar:         "KeywordVar",
	KeywordConstant:    "KeywordConstant",
	KeywordEndVar:      "KeywordEndVar",
	KeywordIf:          "KeywordIf",
	KeywordThen:        "KeywordThen",
	KeywordElseIf:      "KeywordElseIf",
	KeywordElse:        "KeywordElse",
	KeywordEndIf:       "KeywordEndIf",
	KeywordFor:         "KeywordFor",
	KeywordTo:          "KeywordTo",
	KeywordBy:          "KeywordBy",
	KeywordDo:          "KeywordDo",
	KeywordEndFor:      "KeywordEndFor",
	KeywordWhile:       "KeywordWhile",
	KeywordEndWhile:    "KeywordEndWhile",
	KeywordRepeat:      "KeywordRepeat",
	KeywordUntil:       "KeywordUntil",
	KeywordEndRepeat:   "KeywordEndRepeat",
	KeywordCase:        "KeywordCase",
	KeywordOf:          "KeywordOf",
	KeywordEndCase:     "KeywordEndCase",
	LiteralTrue:        "LiteralTrue",
	LiteralFalse:       "LiteralFalse",
}

// String returns the name of a token kind.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsKeyword reports whether the kind is a reserved word (including the
// boolean literals).
func (k Kind) IsKeyword() bool {
	return k > keywordStart && k < keywordEnd
}

// IsOperator reports whether the kind is an expression operator.
func (k Kind) IsOperator() bool {
	return k > operatorStart && k < operatorEnd
}

// words maps upper-cased reserved words to their kinds.
var words = map[string]Kind{
	"PROGRAM":      KeywordProgram,
	"END_PROGRAM":  KeywordEndProgram,
	"FUNCTION":     KeywordFunction,
	"END_FUNCTION": KeywordEndFunction,
	"VAR":          KeywordVar,
	"CONSTANT":     KeywordConstant,
	"END_VAR":      KeywordEndVar,
	"IF":           KeywordIf,
	"THEN":         KeywordThen,
	"ELSIF":        KeywordElseIf,
	"ELSE":         KeywordElse,
	"END_IF":       KeywordEndIf,
	"FOR":          KeywordFor,
	"TO":           KeywordTo,
	"BY":           KeywordBy,
	"DO":           KeywordDo,
	"END_FOR":      KeywordEndFor,
	"WHILE":        KeywordWhile,
	"END_WHILE":    KeywordEndWhile,
	"REPEAT":       KeywordRepeat,
	"UNTIL":        KeywordUntil,
	"END_REPEAT":   KeywordEndRepeat,
	"CASE":         KeywordCase,
	"OF":           KeywordOf,
	"END_CASE":     KeywordEndCase,
	"TRUE":         LiteralTrue,
	"FALSE":        LiteralFalse,
	"MOD":          OperatorModulo,
	"AND":          OperatorAnd,
	"OR":           OperatorOr,
	"XOR":          OperatorXor,
	"NOT":          OperatorNot,
}

// Lookup checks whether an identifier is a reserved word, ignoring case.
func Lookup(ident string) Kind {
	if k, ok := words[strings.ToUpper(ident)]; ok {
		return k
	}
	return Identifier
}
