// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package ast defines the abstract syntax tree of the structured-text
// language.
//
//   - Statement is a closed sum type: every node implements the unexported
//     statementNode marker, so only this package can add variants.
//   - The tree is strictly owned. Nodes are never shared between parents and
//     the parser never hands out a tree it still mutates.
//   - Nodes carry no source positions, so the same construct written with or
//     without redundant parentheses yields identical trees.
package ast

import (
	"bytes"
	"strconv"
	"strings"
)

// Statement is the tagged variant of every statement and expression node.
type Statement interface {
	// String returns a parenthesised prefix form such as
	// "Plus(1, Multiplication(2, 3))", used by tests and debug output.
	String() string
	statementNode()
}

// ---------------------------------------------------------------------------
// Compilation units and declarations
// ---------------------------------------------------------------------------

// CompilationUnit holds the POUs of one source in source order.
type CompilationUnit struct {
	Units []*Program
}

func (c *CompilationUnit) String() string {
	var out bytes.Buffer
	for _, p := range c.Units {
		out.WriteString(p.String())
		out.WriteByte('\n')
	}
	return out.String()
}

// PouType tells the kinds of program organisation unit apart.
type PouType int

const (
	PouProgram PouType = iota
	PouFunction
)

func (t PouType) String() string {
	if t == PouFunction {
		return "FUNCTION"
	}
	return "PROGRAM"
}

// Program is a PROGRAM ... END_PROGRAM or FUNCTION name : type ...
// END_FUNCTION block. Its variable blocks always precede its statements in
// the source. ReturnType is empty for programs.
type Program struct {
	Name           string
	PouType        PouType
	ReturnType     string
	VariableBlocks []*VariableBlock
	Statements     []Statement
}

func (p *Program) String() string {
	var out bytes.Buffer
	out.WriteString(p.PouType.String() + " " + p.Name)
	if p.PouType == PouFunction {
		out.WriteString(" : " + p.ReturnType)
	}
	out.WriteByte('\n')
	for _, b := range p.VariableBlocks {
		out.WriteString(b.String())
	}
	writeBody(&out, p.Statements, "  ")
	out.WriteString("END_" + p.PouType.String())
	return out.String()
}

// VariableBlock is one VAR ... END_VAR section.
type VariableBlock struct {
	Constant  bool
	Variables []*Variable
}

func (b *VariableBlock) String() string {
	var out bytes.Buffer
	out.WriteString("  VAR")
	if b.Constant {
		out.WriteString(" CONSTANT")
	}
	out.WriteByte('\n')
	for _, v := range b.Variables {
		out.WriteString("    " + v.String() + "\n")
	}
	out.WriteString("  END_VAR\n")
	return out.String()
}

// Variable is a single declaration inside a VAR block.
type Variable struct {
	Name        string
	TypeName    string
	Type        Type
	Initializer Statement // nil when the declaration has none
}

func (v *Variable) String() string {
	s := v.Name + " : " + v.TypeName
	if v.Initializer != nil {
		s += " := " + v.Initializer.String()
	}
	return s
}

// ---------------------------------------------------------------------------
// Declared types
// ---------------------------------------------------------------------------

// PrimitiveType enumerates the builtin scalar type names.
type PrimitiveType int

const (
	NoPrimitive PrimitiveType = iota
	Bool
	Byte
	SInt
	USInt
	Word
	Int
	UInt
	DWord
	DInt
	UDInt
	LWord
	LInt
	ULInt
	Real
	LReal
	String
)

var primitiveNames = [...]string{
	NoPrimitive: "",
	Bool:        "BOOL",
	Byte:        "BYTE",
	SInt:        "SINT",
	USInt:       "USINT",
	Word:        "WORD",
	Int:         "INT",
	UInt:        "UINT",
	DWord:       "DWORD",
	DInt:        "DINT",
	UDInt:       "UDINT",
	LWord:       "LWORD",
	LInt:        "LINT",
	ULInt:       "ULINT",
	Real:        "REAL",
	LReal:       "LREAL",
	String:      "STRING",
}

// String returns the canonical upper-case type name.
func (p PrimitiveType) String() string {
	if p > NoPrimitive && int(p) < len(primitiveNames) {
		return primitiveNames[p]
	}
	return "PrimitiveType(" + strconv.Itoa(int(p)) + ")"
}

// LookupPrimitive resolves a type name to a builtin scalar, ignoring case.
func LookupPrimitive(name string) (PrimitiveType, bool) {
	upper := strings.ToUpper(name)
	for p := Bool; int(p) < len(primitiveNames); p++ {
		if primitiveNames[p] == upper {
			return p, true
		}
	}
	return NoPrimitive, false
}

// TypeKind tells a builtin scalar apart from a user type reference.
type TypeKind int

const (
	TypeCustom TypeKind = iota
	TypePrimitive
)

// Type is the type a declaration was tagged with by the parser. Custom types
// are resolved later through the index.
type Type struct {
	Kind      TypeKind
	Primitive PrimitiveType
}

// TypeOf classifies a declared type name.
func TypeOf(name string) Type {
	if p, ok := LookupPrimitive(name); ok {
		return Type{Kind: TypePrimitive, Primitive: p}
	}
	return Type{Kind: TypeCustom}
}

func (t Type) String() string {
	if t.Kind == TypePrimitive {
		return "Primitive(" + t.Primitive.String() + ")"
	}
	return "Custom"
}

// ---------------------------------------------------------------------------
// Operators
// ---------------------------------------------------------------------------

// Operator is the closed set of expression operators.
type Operator int

const (
	Plus Operator = iota
	Minus
	Multiplication
	Division
	Modulo
	Equal
	NotEqual
	Less
	Greater
	LessOrEqual
	GreaterOrEqual
	And
	Or
	Xor
	Not
)

var operatorNames = [...]struct{ name, symbol string }{
	Plus:           {"Plus", "+"},
	Minus:          {"Minus", "-"},
	Multiplication: {"Multiplication", "*"},
	Division:       {"Division", "/"},
	Modulo:         {"Modulo", "MOD"},
	Equal:          {"Equal", "="},
	NotEqual:       {"NotEqual", "<>"},
	Less:           {"Less", "<"},
	Greater:        {"Greater", ">"},
	LessOrEqual:    {"LessOrEqual", "<="},
	GreaterOrEqual: {"GreaterOrEqual", ">="},
	And:            {"And", "AND"},
	Or:             {"Or", "OR"},
	Xor:            {"Xor", "XOR"},
	Not:            {"Not", "NOT"},
}

func (o Operator) String() string {
	if o >= 0 && int(o) < len(operatorNames) {
		return operatorNames[o].name
	}
	return "Operator(" + strconv.Itoa(int(o)) + ")"
}

// Symbol returns the source spelling of the operator.
func (o Operator) Symbol() string {
	if o >= 0 && int(o) < len(operatorNames) {
		return operatorNames[o].symbol
	}
	return "?"
}

// ---------------------------------------------------------------------------
// Leaves
// ---------------------------------------------------------------------------

// Reference names a variable.
type Reference struct {
	Name string
}

func (r *Reference) statementNode() {}
func (r *Reference) String() string { return r.Name }

// LiteralNumber is an integer literal as written, separators included.
type LiteralNumber struct {
	Value string
}

func (l *LiteralNumber) statementNode() {}
func (l *LiteralNumber) String() string { return l.Value }

// LiteralReal is a real literal as written.
type LiteralReal struct {
	Value string
}

func (l *LiteralReal) statementNode() {}
func (l *LiteralReal) String() string { return l.Value }

// LiteralBool is TRUE or FALSE.
type LiteralBool struct {
	Value bool
}

func (l *LiteralBool) statementNode() {}
func (l *LiteralBool) String() string {
	if l.Value {
		return "TRUE"
	}
	return "FALSE"
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// BinaryExpression applies Operator to two operands. Both are never nil.
type BinaryExpression struct {
	Operator Operator
	Left     Statement
	Right    Statement
}

func (b *BinaryExpression) statementNode() {}
func (b *BinaryExpression) String() string {
	return b.Operator.String() + "(" + b.Left.String() + ", " + b.Right.String() + ")"
}

// UnaryExpression is NOT x or -x.
type UnaryExpression struct {
	Operator Operator
	Value    Statement
}

func (u *UnaryExpression) statementNode() {}
func (u *UnaryExpression) String() string {
	return u.Operator.String() + "(" + u.Value.String() + ")"
}

// CastStatement is TYPE#expr. It is kept in the tree but not folded.
type CastStatement struct {
	TypeName string
	Target   Statement
}

func (c *CastStatement) statementNode() {}
func (c *CastStatement) String() string {
	return c.TypeName + "#(" + c.Target.String() + ")"
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// Assignment is left := right.
type Assignment struct {
	Left  Statement
	Right Statement
}

func (a *Assignment) statementNode() {}
func (a *Assignment) String() string {
	return "Assignment(" + a.Left.String() + ", " + a.Right.String() + ")"
}

// ConditionalBlock is one IF or ELSIF arm.
type ConditionalBlock struct {
	Condition Statement
	Body      []Statement
}

// IfStatement holds its arms in source order. ElseBlock is empty when there
// is no ELSE.
type IfStatement struct {
	Blocks    []*ConditionalBlock
	ElseBlock []Statement
}

func (s *IfStatement) statementNode() {}
func (s *IfStatement) String() string {
	var out bytes.Buffer
	for i, b := range s.Blocks {
		if i == 0 {
			out.WriteString("IF ")
		} else {
			out.WriteString(" ELSIF ")
		}
		out.WriteString(b.Condition.String() + " THEN")
		writeInline(&out, b.Body)
	}
	if len(s.ElseBlock) > 0 {
		out.WriteString(" ELSE")
		writeInline(&out, s.ElseBlock)
	}
	out.WriteString(" END_IF")
	return out.String()
}

// CaseBlock is one arm of a CASE statement: a list of labels and the
// statements run when the selector matches one of them.
type CaseBlock struct {
	Conditions []Statement
	Body       []Statement
}

// CaseStatement is CASE selector OF arms [ELSE body] END_CASE.
type CaseStatement struct {
	Selector  Statement
	Blocks    []*CaseBlock
	ElseBlock []Statement
}

func (c *CaseStatement) statementNode() {}
func (c *CaseStatement) String() string {
	var out bytes.Buffer
	out.WriteString("CASE " + c.Selector.String() + " OF")
	for _, b := range c.Blocks {
		labels := make([]string, len(b.Conditions))
		for i, l := range b.Conditions {
			labels[i] = l.String()
		}
		out.WriteString(" " + strings.Join(labels, ", ") + ":")
		writeInline(&out, b.Body)
	}
	if len(c.ElseBlock) > 0 {
		out.WriteString(" ELSE")
		writeInline(&out, c.ElseBlock)
	}
	out.WriteString(" END_CASE")
	return out.String()
}

// ForLoopStatement is FOR counter := start TO end [BY by] DO body END_FOR.
// By is nil when no step was written.
type ForLoopStatement struct {
	Counter Statement
	Start   Statement
	End     Statement
	By      Statement
	Body    []Statement
}

func (f *ForLoopStatement) statementNode() {}
func (f *ForLoopStatement) String() string {
	var out bytes.Buffer
	out.WriteString("FOR " + f.Counter.String() + " := " + f.Start.String() + " TO " + f.End.String())
	if f.By != nil {
		out.WriteString(" BY " + f.By.String())
	}
	out.WriteString(" DO")
	writeInline(&out, f.Body)
	out.WriteString(" END_FOR")
	return out.String()
}

// WhileLoopStatement is WHILE condition DO body END_WHILE.
type WhileLoopStatement struct {
	Condition Statement
	Body      []Statement
}

func (w *WhileLoopStatement) statementNode() {}
func (w *WhileLoopStatement) String() string {
	var out bytes.Buffer
	out.WriteString("WHILE " + w.Condition.String() + " DO")
	writeInline(&out, w.Body)
	out.WriteString(" END_WHILE")
	return out.String()
}

// RepeatLoopStatement is REPEAT body UNTIL condition END_REPEAT.
type RepeatLoopStatement struct {
	Body      []Statement
	Condition Statement
}

func (r *RepeatLoopStatement) statementNode() {}
func (r *RepeatLoopStatement) String() string {
	var out bytes.Buffer
	out.WriteString("REPEAT")
	writeInline(&out, r.Body)
	out.WriteString(" UNTIL " + r.Condition.String() + " END_REPEAT")
	return out.String()
}

func writeInline(out *bytes.Buffer, body []Statement) {
	for _, s := range body {
		out.WriteString(" " + s.String() + ";")
	}
}

func writeBody(out *bytes.Buffer, body []Statement, indent string) {
	for _, s := range body {
		out.WriteString(indent + s.String() + ";\n")
	}
}
