// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package parser

import (
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probechain/stc/lang/ast"
	"github.com/probechain/stc/lang/diagnostic"
	"github.com/probechain/stc/lang/lexer"
	"github.com/probechain/stc/lang/token"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// mustParse asserts that the source parses without diagnostics.
func mustParse(t *testing.T, src string) *ast.CompilationUnit {
	t.Helper()
	unit, diags := ParseString(src)
	if len(diags) > 0 {
		msgs := make([]string, len(diags))
		for i, d := range diags {
			msgs[i] = d.Error()
		}
		t.Fatalf("unexpected diagnostics:\n%s", strings.Join(msgs, "\n"))
	}
	require.NotNil(t, unit)
	return unit
}

// parseWithErrors parses and expects at least one diagnostic.
func parseWithErrors(t *testing.T, src string, opts ...Option) (*ast.CompilationUnit, []*diagnostic.Diagnostic) {
	t.Helper()
	unit, diags := ParseString(src, opts...)
	require.NotEmpty(t, diags, "expected diagnostics, but none were reported")
	require.NotNil(t, unit)
	return unit, diags
}

// body parses src as the statements of a single program.
func body(t *testing.T, src string) []ast.Statement {
	t.Helper()
	unit := mustParse(t, "PROGRAM p "+src+" END_PROGRAM")
	require.Len(t, unit.Units, 1)
	return unit.Units[0].Statements
}

func assertTree(t *testing.T, want, got interface{}) {
	t.Helper()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s\ngot: %s", diff, spew.Sdump(got))
	}
}

func ref(name string) *ast.Reference      { return &ast.Reference{Name: name} }
func num(value string) *ast.LiteralNumber { return &ast.LiteralNumber{Value: value} }

// ---------------------------------------------------------------------------
// Programs and declarations
// ---------------------------------------------------------------------------

func TestEmptyProgram(t *testing.T) {
	unit := mustParse(t, "PROGRAM p END_PROGRAM")
	assertTree(t, &ast.CompilationUnit{Units: []*ast.Program{{Name: "p"}}}, unit)
}

func TestProgramsInSourceOrder(t *testing.T) {
	unit := mustParse(t, "PROGRAM a END_PROGRAM PROGRAM b END_PROGRAM")
	require.Len(t, unit.Units, 2)
	assert.Equal(t, "a", unit.Units[0].Name)
	assert.Equal(t, "b", unit.Units[1].Name)
}

func TestVariableBlock(t *testing.T) {
	unit := mustParse(t, "PROGRAM p VAR x : INT; END_VAR END_PROGRAM")
	want := &ast.Program{
		Name: "p",
		VariableBlocks: []*ast.VariableBlock{{
			Variables: []*ast.Variable{{
				Name:     "x",
				TypeName: "INT",
				Type:     ast.Type{Kind: ast.TypePrimitive, Primitive: ast.Int},
			}},
		}},
	}
	assertTree(t, want, unit.Units[0])
}

func TestVariableTypes(t *testing.T) {
	unit := mustParse(t, `PROGRAM p
		VAR
			a : bool;
			b : LREAL;
			c : MyStruct;
			d : STRING;
		END_VAR
	END_PROGRAM`)
	vars := unit.Units[0].VariableBlocks[0].Variables
	require.Len(t, vars, 4)
	assert.Equal(t, "Primitive(BOOL)", vars[0].Type.String())
	assert.Equal(t, "Primitive(LREAL)", vars[1].Type.String())
	assert.Equal(t, ast.TypeCustom, vars[2].Type.Kind)
	assert.Equal(t, "MyStruct", vars[2].TypeName)
	assert.Equal(t, "Primitive(STRING)", vars[3].Type.String())
}

func TestConstantBlock(t *testing.T) {
	unit := mustParse(t, `PROGRAM p
		VAR CONSTANT
			a : INT := b + 1;
			b : INT := 2;
		END_VAR
		VAR
			c : INT;
		END_VAR
	END_PROGRAM`)
	blocks := unit.Units[0].VariableBlocks
	require.Len(t, blocks, 2)
	assert.True(t, blocks[0].Constant)
	assert.False(t, blocks[1].Constant)
	require.Len(t, blocks[0].Variables, 2)
	assertTree(t, &ast.BinaryExpression{Operator: ast.Plus, Left: ref("b"), Right: num("1")}, blocks[0].Variables[0].Initializer)
	assertTree(t, num("2"), blocks[0].Variables[1].Initializer)
	assert.Nil(t, blocks[1].Variables[0].Initializer)
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

func TestExpressionShapes(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1+2*3", "Plus(1, Multiplication(2, 3))"},
		{"1*2/7", "Multiplication(1, Division(2, 7))"},
		{"x+y-z", "Plus(x, Minus(y, z))"},
		{"a-b-c", "Minus(a, Minus(b, c))"},
		{"a AND NOT b OR c XOR d", "And(a, Or(Not(b), Xor(c, d)))"},
		{"a + b AND c", "Plus(a, And(b, c))"},
		{"a AND b + c", "Plus(And(a, b), c)"},
		{"a = b < c", "Equal(a, Less(b, c))"},
		{"a < b = c", "Equal(Less(a, b), c)"},
		{"a <> b", "NotEqual(a, b)"},
		{"a >= b + 1", "GreaterOrEqual(a, Plus(b, 1))"},
		{"a MOD 3", "Modulo(a, 3)"},
		{"(1 + 2) * 3", "Multiplication(Plus(1, 2), 3)"},
		{"-x * 2", "Multiplication(Minus(x), 2)"},
		{"NOT NOT a", "Not(Not(a))"},
		{"x := 1 + 2", "Assignment(x, Plus(1, 2))"},
		{"x := y := 3", "Assignment(x, Assignment(y, 3))"},
		{"INT#5 + 1", "Plus(INT#(5), 1)"},
		{"REAL#(a)", "REAL#(a)"},
		{"3.14", "3.14"},
		{"1_000", "1_000"},
		{"TRUE", "TRUE"},
		{"false", "FALSE"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			stmts := body(t, tt.src+";")
			require.Len(t, stmts, 1)
			assert.Equal(t, tt.want, stmts[0].String())
		})
	}
}

func TestPrecedenceTree(t *testing.T) {
	stmts := body(t, "a AND NOT b OR c XOR d;")
	want := &ast.BinaryExpression{
		Operator: ast.And,
		Left:     ref("a"),
		Right: &ast.BinaryExpression{
			Operator: ast.Or,
			Left:     &ast.UnaryExpression{Operator: ast.Not, Value: ref("b")},
			Right:    &ast.BinaryExpression{Operator: ast.Xor, Left: ref("c"), Right: ref("d")},
		},
	}
	assertTree(t, []ast.Statement{want}, stmts)
}

func TestParenthesesDoNotChangeTree(t *testing.T) {
	assertTree(t, body(t, "x+y;"), body(t, "(x+y);"))
	assertTree(t, body(t, "a*(b);"), body(t, "a*b;"))
}

// ---------------------------------------------------------------------------
// Control statements
// ---------------------------------------------------------------------------

func TestIfStatement(t *testing.T) {
	stmts := body(t, "IF TRUE THEN x; ELSIF y THEN z; ELSE u; END_IF")
	want := &ast.IfStatement{
		Blocks: []*ast.ConditionalBlock{
			{Condition: &ast.LiteralBool{Value: true}, Body: []ast.Statement{ref("x")}},
			{Condition: ref("y"), Body: []ast.Statement{ref("z")}},
		},
		ElseBlock: []ast.Statement{ref("u")},
	}
	assertTree(t, []ast.Statement{want}, stmts)
}

func TestNestedIf(t *testing.T) {
	stmts := body(t, "IF a THEN IF b THEN c; ELSE d; END_IF; ELSE e; END_IF;")
	require.Len(t, stmts, 1)
	assert.Equal(t, "IF a THEN IF b THEN c; ELSE d; END_IF; ELSE e; END_IF", stmts[0].String())
}

func TestLoops(t *testing.T) {
	stmts := body(t, `
		FOR i := 1 TO n BY 2 DO x := x + i; END_FOR
		FOR i := 0 TO 9 DO END_FOR
		WHILE x < 10 DO x := x + 1; END_WHILE
		REPEAT x := x - 1; UNTIL x = 0 END_REPEAT`)
	require.Len(t, stmts, 4)

	assertTree(t, &ast.ForLoopStatement{
		Counter: ref("i"),
		Start:   num("1"),
		End:     ref("n"),
		By:      num("2"),
		Body: []ast.Statement{&ast.Assignment{
			Left:  ref("x"),
			Right: &ast.BinaryExpression{Operator: ast.Plus, Left: ref("x"), Right: ref("i")},
		}},
	}, stmts[0])
	assertTree(t, &ast.ForLoopStatement{Counter: ref("i"), Start: num("0"), End: num("9")}, stmts[1])
	assert.Equal(t, "WHILE Less(x, 10) DO Assignment(x, Plus(x, 1)); END_WHILE", stmts[2].String())
	assert.Equal(t, "REPEAT Assignment(x, Minus(x, 1)); UNTIL Equal(x, 0) END_REPEAT", stmts[3].String())
}

func TestCaseStatement(t *testing.T) {
	stmts := body(t, "CASE x OF 1: a; 2, 3: b; c; ELSE d; END_CASE")
	want := &ast.CaseStatement{
		Selector: ref("x"),
		Blocks: []*ast.CaseBlock{
			{Conditions: []ast.Statement{num("1")}, Body: []ast.Statement{ref("a")}},
			{Conditions: []ast.Statement{num("2"), num("3")}, Body: []ast.Statement{ref("b"), ref("c")}},
		},
		ElseBlock: []ast.Statement{ref("d")},
	}
	assertTree(t, []ast.Statement{want}, stmts)
	assert.Equal(t, "CASE x OF 1: a; 2, 3: b; c; ELSE d; END_CASE", stmts[0].String())
}

func TestCaseArmBodies(t *testing.T) {
	stmts := body(t, "CASE state OF 1: IF a THEN b; END_IF; x := 2; 2: ; END_CASE")
	require.Len(t, stmts, 1)
	assert.Equal(t, "CASE state OF 1: IF a THEN b; END_IF; Assignment(x, 2); 2: END_CASE", stmts[0].String())

	// ELSE goes to the innermost construct that accepts one.
	stmts = body(t, "IF c THEN CASE x OF 1: a; ELSE b; END_CASE ELSE d; END_IF")
	require.Len(t, stmts, 1)
	assert.Equal(t, "IF c THEN CASE x OF 1: a; ELSE b; END_CASE; ELSE d; END_IF", stmts[0].String())
}

func TestCaseStatementBeforeLabel(t *testing.T) {
	unit, diags := parseWithErrors(t, "PROGRAM p CASE x OF a; 1: b; END_CASE END_PROGRAM")
	require.Len(t, diags, 1)
	assert.Equal(t, "statement before the first case label", diags[0].Message)
	assert.Equal(t, token.Span{Start: 20, End: 21}, diags[0].Span)
	assert.Equal(t, "CASE x OF 1: b; END_CASE", unit.Units[0].Statements[0].String())
}

func TestFunction(t *testing.T) {
	unit := mustParse(t, `
		FUNCTION main : DINT
			VAR x : INT; END_VAR
			main := 10 + 50;
		END_FUNCTION
		PROGRAM p END_PROGRAM`)
	require.Len(t, unit.Units, 2)

	fn := unit.Units[0]
	assert.Equal(t, "main", fn.Name)
	assert.Equal(t, ast.PouFunction, fn.PouType)
	assert.Equal(t, "DINT", fn.ReturnType)
	assert.Equal(t, "FUNCTION main : DINT\n  VAR\n    x : INT\n  END_VAR\n  Assignment(main, Plus(10, 50));\nEND_FUNCTION", fn.String())

	assert.Equal(t, ast.PouProgram, unit.Units[1].PouType)
	assert.Empty(t, unit.Units[1].ReturnType)
}

func TestEmptyStatements(t *testing.T) {
	stmts := body(t, ";; x; ;")
	assertTree(t, []ast.Statement{ref("x")}, stmts)
}

// ---------------------------------------------------------------------------
// Diagnostics and recovery
// ---------------------------------------------------------------------------

func TestFirstDiagnostic(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
		span token.Span
	}{
		{
			name: "missing END_VAR",
			src:  "PROGRAM p VAR x : INT; END_PROGRAM",
			msg:  "unexpected token: expected KeywordEndVar but found 'END_PROGRAM'",
			span: token.Span{Start: 23, End: 34},
		},
		{
			name: "stray semicolon in VAR",
			src:  "PROGRAM prg\n                VAR ;\n                END_VAR\n            END_PROGRAM\n    ",
			msg:  "unexpected token: expected KeywordEndVar but found ';'",
			span: token.Span{Start: 32, End: 33},
		},
		{
			name: "garbage before program",
			src:  "SOME PROGRAM prg\n                VAR ;\n                END_VAR\n            END_PROGRAM\n    ",
			msg:  "unexpected token: expected StartKeyword but found 'SOME'",
			span: token.Span{Start: 0, End: 4},
		},
		{
			name: "FOR without assignment",
			src:  "\n        PROGRAM exp \n        FOR z ALPHA x TO y DO\n            x;\n            y;\n        END_FOR\n        END_PROGRAM\n        ",
			msg:  "unexpected token: expected KeywordAssignment but found 'ALPHA'",
			span: token.Span{Start: 36, End: 41},
		},
		{
			name: "FOR without TO",
			src:  "\n        PROGRAM exp \n        FOR z := x BRAVO y DO\n            x;\n            y;\n        END_FOR\n        END_PROGRAM\n        ",
			msg:  "unexpected token: expected KeywordTo but found 'BRAVO'",
			span: token.Span{Start: 41, End: 46},
		},
		{
			name: "IF without THEN",
			src:  "\n        PROGRAM exp \n        IF TRUE CHARLIE\n            x;\n        ELSE\n            y;\n        END_IF\n        END_PROGRAM\n        ",
			msg:  "unexpected token: expected KeywordThen but found 'CHARLIE'",
			span: token.Span{Start: 38, End: 45},
		},
		{
			name: "unclosed program",
			src:  "PROGRAM exp\n  x := 1;",
			msg:  "unexpected token: expected KeywordEndProgram but found ''",
			span: token.Span{Start: 21, End: 21},
		},
		{
			name: "unidentified token",
			src:  "PROGRAM p x := 1 ?; END_PROGRAM",
			msg:  "unidentified token: '?'",
			span: token.Span{Start: 17, End: 18},
		},
		{
			name: "stray END_IF",
			src:  "PROGRAM p END_IF x; END_PROGRAM",
			msg:  "unexpected token: expected KeywordEndProgram but found 'END_IF'",
			span: token.Span{Start: 10, End: 16},
		},
		{
			name: "missing operand",
			src:  "PROGRAM p x := 1 + ; END_PROGRAM",
			msg:  "unexpected token: expected Expression but found ';'",
			span: token.Span{Start: 19, End: 20},
		},
		{
			name: "missing END_IF",
			src:  "PROGRAM p IF a THEN b; END_PROGRAM",
			msg:  "unexpected token: expected KeywordEndIf but found 'END_PROGRAM'",
			span: token.Span{Start: 23, End: 34},
		},
		{
			name: "CASE without OF",
			src:  "\n        PROGRAM exp \n        CASE StateMachine DELTA\n        1: x;\n        END_CASE\n        END_PROGRAM\n        ",
			msg:  "unexpected token: expected KeywordOf but found 'DELTA'",
			span: token.Span{Start: 48, End: 53},
		},
		{
			name: "FUNCTION without return type",
			src:  "FUNCTION f INT END_FUNCTION",
			msg:  "unexpected token: expected KeywordColon but found 'INT'",
			span: token.Span{Start: 11, End: 14},
		},
		{
			name: "missing END_FUNCTION",
			src:  "FUNCTION f : INT f := 1; PROGRAM p END_PROGRAM",
			msg:  "unexpected token: expected KeywordEndFunction but found 'PROGRAM'",
			span: token.Span{Start: 25, End: 32},
		},
		{
			name: "missing closing parenthesis",
			src:  "PROGRAM p x := (1 + 2; END_PROGRAM",
			msg:  "unexpected token: expected KeywordParensClose but found ';'",
			span: token.Span{Start: 21, End: 22},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, diags := parseWithErrors(t, tt.src)
			assert.Equal(t, tt.msg, diags[0].Message)
			assert.Equal(t, tt.span, diags[0].Span)
		})
	}
}

func TestSingleDiagnosticPerMistake(t *testing.T) {
	tests := []string{
		"PROGRAM prg VAR ; END_VAR END_PROGRAM",
		"PROGRAM p VAR x : INT; END_PROGRAM",
		"PROGRAM exp FOR z ALPHA x TO y DO x; y; END_FOR END_PROGRAM",
		"PROGRAM exp FOR z := x BRAVO y DO x; y; END_FOR END_PROGRAM",
		"PROGRAM exp IF TRUE CHARLIE x; ELSE y; END_IF END_PROGRAM",
		"PROGRAM exp WHILE x y := 1; END_WHILE END_PROGRAM",
		"PROGRAM exp REPEAT x; END_REPEAT END_PROGRAM",
		"PROGRAM exp CASE StateMachine DELTA 1: x; END_CASE END_PROGRAM",
		"PROGRAM exp CASE x OF 1: a; END_PROGRAM",
	}
	for _, src := range tests {
		_, diags := parseWithErrors(t, src)
		assert.Len(t, diags, 1, "source %q: %v", src, diags)
	}
}

func TestRecoveryContinuesParsing(t *testing.T) {
	unit, diags := parseWithErrors(t, `PROGRAM p
		VAR
			x INT;
			y : ;
			z : DINT;
		END_VAR
		a := ;
		b := 2;
	END_PROGRAM
	PROGRAM q END_PROGRAM`)

	want := []string{
		"unexpected token: expected KeywordColon but found 'INT'",
		"unexpected token: expected Identifier but found ';'",
		"unexpected token: expected Expression but found ';'",
	}
	got := make([]string, len(diags))
	for i, d := range diags {
		got[i] = d.Message
	}
	assert.Equal(t, want, got)

	require.Len(t, unit.Units, 2)
	prog := unit.Units[0]
	require.Len(t, prog.VariableBlocks, 1)
	require.Len(t, prog.VariableBlocks[0].Variables, 1)
	assert.Equal(t, "z", prog.VariableBlocks[0].Variables[0].Name)
	assertTree(t, []ast.Statement{&ast.Assignment{Left: ref("b"), Right: num("2")}}, prog.Statements)
	assert.Equal(t, "q", unit.Units[1].Name)
}

func TestMissingEndStartsNextProgram(t *testing.T) {
	unit, diags := parseWithErrors(t, "PROGRAM a x; PROGRAM b y; END_PROGRAM")
	require.Len(t, diags, 1)
	assert.Equal(t, "unexpected token: expected KeywordEndProgram but found 'PROGRAM'", diags[0].Message)
	require.Len(t, unit.Units, 2)
	assertTree(t, []ast.Statement{ref("x")}, unit.Units[0].Statements)
	assertTree(t, []ast.Statement{ref("y")}, unit.Units[1].Statements)
}

func TestVariableBlockAfterStatements(t *testing.T) {
	_, diags := parseWithErrors(t, "PROGRAM p x; VAR y : INT; END_VAR END_PROGRAM")
	require.Len(t, diags, 1)
	assert.Equal(t, "variable block after statements", diags[0].Message)
}

func TestMaxDepth(t *testing.T) {
	unit, diags := parseWithErrors(t, "PROGRAM p x := ((((((1)))))); y := 1; END_PROGRAM", WithMaxDepth(4))
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "nested deeper than 4")
	assertTree(t, []ast.Statement{&ast.Assignment{Left: ref("y"), Right: num("1")}}, unit.Units[0].Statements)

	mustParse(t, "PROGRAM p x := ((((((1)))))); END_PROGRAM")
}

func TestMaxDepthAssignmentChain(t *testing.T) {
	src := "PROGRAM p x := " + strings.Repeat("a := ", 50) + "1; y := 1; END_PROGRAM"
	unit, diags := parseWithErrors(t, src, WithMaxDepth(4))
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "nested deeper than 4")
	assertTree(t, []ast.Statement{&ast.Assignment{Left: ref("y"), Right: num("1")}}, unit.Units[0].Statements)

	stmts := body(t, "x := a := 1;")
	assertTree(t, []ast.Statement{&ast.Assignment{
		Left:  ref("x"),
		Right: &ast.Assignment{Left: ref("a"), Right: num("1")},
	}}, stmts)
}

func TestMaxDepthNestedStatements(t *testing.T) {
	src := "PROGRAM p " + strings.Repeat("IF a THEN ", 50) + "x;" + strings.Repeat(" END_IF", 50) + " y; END_PROGRAM"
	unit, diags := parseWithErrors(t, src, WithMaxDepth(4))
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "nested deeper than 4")

	stmts := unit.Units[0].Statements
	require.Len(t, stmts, 2)
	assert.Equal(t, "IF a THEN IF a THEN IF a THEN IF a THEN END_IF; END_IF; END_IF; END_IF", stmts[0].String())
	assert.Equal(t, ref("y"), stmts[1])

	loops := "PROGRAM p " + strings.Repeat("WHILE a DO CASE b OF 1: REPEAT ", 20) + "x;" +
		strings.Repeat(" UNTIL c END_REPEAT; END_CASE END_WHILE", 20) + " y; END_PROGRAM"
	unit, diags = parseWithErrors(t, loops, WithMaxDepth(8))
	require.Len(t, diags, 1)
	require.Len(t, unit.Units[0].Statements, 2)
	assert.Equal(t, ref("y"), unit.Units[0].Statements[1])
}

func TestDeepInputDoesNotExhaustStack(t *testing.T) {
	chain := "PROGRAM p x := " + strings.Repeat("a := ", 200000) + "1; END_PROGRAM"
	_, diags := parseWithErrors(t, chain)
	require.Len(t, diags, 1)

	nested := "PROGRAM p " + strings.Repeat("IF a THEN ", 20000) + strings.Repeat("END_IF ", 20000) + "END_PROGRAM"
	_, diags = parseWithErrors(t, nested)
	require.Len(t, diags, 1)
}

func TestParseTokens(t *testing.T) {
	src := "PROGRAM p x := 1 + 2; END_PROGRAM"
	toks := lexer.New(src).Tokenize()

	want, _ := ParseString(src)
	got, diags := ParseTokens(toks[:len(toks)-1])
	require.Empty(t, diags)
	assertTree(t, want, got)

	_, diags = ParseTokens(toks[:len(toks)-2])
	require.Len(t, diags, 1)
	assert.Equal(t, token.Span{Start: 21, End: 21}, diags[0].Span)
}
