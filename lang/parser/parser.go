// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package parser implements a recursive-descent parser for structured text.
//
// Design overview:
//
//   - Every precedence level is its own function. A level that matches its
//     operator parses the right operand with itself, so chains of the same
//     level nest to the right: a-b-c is Minus(a, Minus(b, c)).
//   - Boolean operators bind tighter than arithmetic and comparison.
//   - Nesting is bounded. Expressions, assignment chains and control
//     statements share one depth budget (WithMaxDepth), so no input can
//     exhaust the stack.
//   - Errors are collected rather than aborting. After an error the parser
//     skips to the next semicolon or block keyword and carries on, so one
//     pass reports every independent mistake.
//   - Error tokens from the lexer are reported as unidentified and dropped.
package parser

import (
	"strings"

	"github.com/probechain/stc/lang/ast"
	"github.com/probechain/stc/lang/diagnostic"
	"github.com/probechain/stc/lang/lexer"
	"github.com/probechain/stc/lang/token"
)

// DefaultMaxDepth bounds expression nesting unless WithMaxDepth says
// otherwise.
const DefaultMaxDepth = 256

// TokenSource produces the tokens the parser consumes. Once it has returned
// an End token it must keep returning End.
type TokenSource interface {
	NextToken() token.Token
}

// Option configures a parse run.
type Option func(*Options)

// Options holds parser configuration.
type Options struct {
	// MaxDepth limits expression nesting. Deeper input yields a diagnostic.
	MaxDepth int
}

// WithMaxDepth sets the maximum expression nesting depth.
func WithMaxDepth(depth int) Option {
	return func(o *Options) {
		o.MaxDepth = depth
	}
}

// ---------------------------------------------------------------------------
// Parser
// ---------------------------------------------------------------------------

// Parser holds the mutable state for a single parse run.
type Parser struct {
	src   TokenSource
	cur   token.Token
	diags []*diagnostic.Diagnostic

	// open holds the end keywords of the constructs being parsed, innermost
	// last. Bodies use it to tell a missing end keyword from a stray one.
	open []token.Kind

	depth    int
	maxDepth int
	tooDeep  bool
}

func newParser(src TokenSource, opts ...Option) *Parser {
	o := Options{MaxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&o)
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	p := &Parser{src: src, maxDepth: o.MaxDepth}
	p.advance()
	return p
}

// Parse consumes src up to its End token and returns the compilation unit
// together with the diagnostics collected along the way, in source order.
// The unit is never nil.
func Parse(src TokenSource, opts ...Option) (*ast.CompilationUnit, []*diagnostic.Diagnostic) {
	p := newParser(src, opts...)
	unit := p.parseCompilationUnit()
	return unit, p.diags
}

// ParseString lexes and parses source text.
func ParseString(source string, opts ...Option) (*ast.CompilationUnit, []*diagnostic.Diagnostic) {
	return Parse(lexer.New(source), opts...)
}

// ParseTokens parses an already scanned token slice. A missing trailing End
// token is synthesised right after the last token.
func ParseTokens(toks []token.Token, opts ...Option) (*ast.CompilationUnit, []*diagnostic.Diagnostic) {
	return Parse(&sliceSource{toks: toks}, opts...)
}

type sliceSource struct {
	toks []token.Token
	pos  int
}

func (s *sliceSource) NextToken() token.Token {
	if s.pos < len(s.toks) {
		tok := s.toks[s.pos]
		if tok.Kind != token.End {
			s.pos++
		}
		return tok
	}
	end := 0
	if len(s.toks) > 0 {
		end = s.toks[len(s.toks)-1].Span.End
	}
	return token.Token{Kind: token.End, Span: token.Span{Start: end, End: end}}
}

// ---------------------------------------------------------------------------
// Token navigation helpers
// ---------------------------------------------------------------------------

// advance loads the next token, reporting and dropping error tokens.
func (p *Parser) advance() {
	for {
		p.cur = p.src.NextToken()
		if p.cur.Kind != token.Error {
			return
		}
		p.diags = append(p.diags, diagnostic.UnidentifiedToken(p.cur.Text, p.cur.Span))
	}
}

func (p *Parser) curIs(kind token.Kind) bool { return p.cur.Kind == kind }

// expect consumes the current token if it matches kind, otherwise records an
// error and does NOT consume the token.
func (p *Parser) expect(kind token.Kind) bool {
	if p.cur.Kind == kind {
		p.advance()
		return true
	}
	p.unexpected(kind.String())
	return false
}

// unexpected records that the current token is not what was expected.
func (p *Parser) unexpected(expected string) {
	p.diags = append(p.diags, diagnostic.UnexpectedToken(expected, p.cur.Text, p.cur.Span))
}

func (p *Parser) errorf(span token.Span, format string, args ...interface{}) {
	p.diags = append(p.diags, diagnostic.Errorf(span, format, args...))
}

// isCloser reports whether kind ends a block. Recovery never skips past one.
func isCloser(kind token.Kind) bool {
	switch kind {
	case token.End, token.KeywordProgram, token.KeywordEndProgram, token.KeywordEndVar,
		token.KeywordFunction, token.KeywordEndFunction,
		token.KeywordElseIf, token.KeywordElse, token.KeywordEndIf, token.KeywordEndCase,
		token.KeywordEndFor, token.KeywordEndWhile, token.KeywordUntil, token.KeywordEndRepeat:
		return true
	}
	return false
}

// owner maps a block keyword to the end keyword of the construct it belongs
// to.
func owner(kind token.Kind) token.Kind {
	switch kind {
	case token.KeywordElseIf, token.KeywordElse:
		return token.KeywordEndIf
	case token.KeywordUntil:
		return token.KeywordEndRepeat
	}
	return kind
}

// isOpen reports whether kind closes one of the enclosing constructs. ELSE
// belongs to IF and CASE alike.
func (p *Parser) isOpen(kind token.Kind) bool {
	if kind == token.End || kind == token.KeywordProgram || kind == token.KeywordFunction {
		return true
	}
	want := owner(kind)
	for _, k := range p.open {
		if k == want || (kind == token.KeywordElse && k == token.KeywordEndCase) {
			return true
		}
	}
	return false
}

func (p *Parser) push(end token.Kind) { p.open = append(p.open, end) }
func (p *Parser) pop()                { p.open = p.open[:len(p.open)-1] }

// resync skips to the next statement boundary: a semicolon, which is
// consumed, or a block keyword, which is not.
func (p *Parser) resync() {
	for !isCloser(p.cur.Kind) {
		if p.curIs(token.KeywordSemicolon) {
			p.advance()
			return
		}
		p.advance()
	}
}

// skipBlock skips a whole control statement, including the statements
// nested inside it, without recursing. It stops early at the end of the
// enclosing POU.
func (p *Parser) skipBlock() {
	nested := 0
	for {
		switch p.cur.Kind {
		case token.End, token.KeywordProgram, token.KeywordEndProgram,
			token.KeywordFunction, token.KeywordEndFunction:
			return
		case token.KeywordIf, token.KeywordFor, token.KeywordWhile, token.KeywordRepeat, token.KeywordCase:
			nested++
		case token.KeywordEndIf, token.KeywordEndFor, token.KeywordEndWhile, token.KeywordEndRepeat, token.KeywordEndCase:
			nested--
		}
		p.advance()
		if nested <= 0 {
			return
		}
	}
}

// skipPast skips to kind and consumes it. It stops early, returning false,
// at a block keyword.
func (p *Parser) skipPast(kind token.Kind) bool {
	for !p.curIs(kind) {
		if isCloser(p.cur.Kind) {
			return false
		}
		p.advance()
	}
	p.advance()
	return true
}

// ---------------------------------------------------------------------------
// CompilationUnit := (Program | Function)*
// ---------------------------------------------------------------------------

func isPouStart(kind token.Kind) bool {
	return kind == token.KeywordProgram || kind == token.KeywordFunction
}

func (p *Parser) parseCompilationUnit() *ast.CompilationUnit {
	unit := &ast.CompilationUnit{}
	for !p.curIs(token.End) {
		if !isPouStart(p.cur.Kind) {
			p.unexpected("StartKeyword")
			p.advance()
			for !isPouStart(p.cur.Kind) && !p.curIs(token.End) {
				p.advance()
			}
			continue
		}
		unit.Units = append(unit.Units, p.parseProgram())
	}
	return unit
}

// ---------------------------------------------------------------------------
// Program  := PROGRAM ident VariableBlock* Statement* END_PROGRAM
// Function := FUNCTION ident ':' type-ident VariableBlock* Statement* END_FUNCTION
// ---------------------------------------------------------------------------

func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{}
	end := token.KeywordEndProgram
	if p.curIs(token.KeywordFunction) {
		prog.PouType = ast.PouFunction
		end = token.KeywordEndFunction
	}
	p.advance() // PROGRAM or FUNCTION
	if p.curIs(token.Identifier) {
		prog.Name = p.cur.Text
		p.advance()
	} else {
		p.unexpected(token.Identifier.String())
	}
	if prog.PouType == ast.PouFunction && p.expect(token.KeywordColon) {
		if p.curIs(token.Identifier) {
			prog.ReturnType = p.cur.Text
			p.advance()
		} else {
			p.unexpected(token.Identifier.String())
		}
	}

	for p.curIs(token.KeywordVar) {
		prog.VariableBlocks = append(prog.VariableBlocks, p.parseVariableBlock())
	}

	p.push(end)
	prog.Statements = p.parseBody(end)
	p.pop()
	p.expectEnd(end)
	return prog
}

// expectEnd consumes the end keyword of a construct. Bodies only stop at a
// keyword some enclosing construct owns, so nothing is skipped on failure.
func (p *Parser) expectEnd(kind token.Kind) {
	if p.curIs(kind) {
		p.advance()
		return
	}
	p.unexpected(kind.String())
}

// ---------------------------------------------------------------------------
// VariableBlock := VAR [CONSTANT] Variable* END_VAR
// Variable      := ident ':' type-ident [':=' expr] ';'
// ---------------------------------------------------------------------------

func (p *Parser) parseVariableBlock() *ast.VariableBlock {
	p.advance() // VAR
	block := &ast.VariableBlock{}
	if p.curIs(token.KeywordConstant) {
		block.Constant = true
		p.advance()
	}
	for {
		switch {
		case p.curIs(token.KeywordEndVar):
			p.advance()
			return block
		case p.curIs(token.Identifier):
			if v := p.parseVariable(); v != nil {
				block.Variables = append(block.Variables, v)
			}
		default:
			p.unexpected(token.KeywordEndVar.String())
			if isCloser(p.cur.Kind) || p.curIs(token.KeywordVar) {
				return block
			}
			p.resync()
		}
	}
}

func (p *Parser) parseVariable() *ast.Variable {
	v := &ast.Variable{Name: p.cur.Text}
	p.advance()
	if !p.expect(token.KeywordColon) {
		p.resync()
		return nil
	}
	if !p.curIs(token.Identifier) {
		p.unexpected(token.Identifier.String())
		p.resync()
		return nil
	}
	v.TypeName = p.cur.Text
	v.Type = ast.TypeOf(v.TypeName)
	p.advance()

	if p.curIs(token.KeywordAssignment) {
		p.advance()
		if v.Initializer = p.parseExpression(); v.Initializer == nil {
			p.resync()
			return nil
		}
	}
	if !p.expect(token.KeywordSemicolon) {
		p.resync()
	}
	return v
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// parseBody parses statements until one of terms, the end of input or a
// keyword owned by an enclosing construct. Block keywords nobody owns are
// reported and skipped.
func (p *Parser) parseBody(terms ...token.Kind) []ast.Statement {
	var body []ast.Statement
	for {
		kind := p.cur.Kind
		for _, t := range terms {
			if kind == t {
				return body
			}
		}
		switch {
		case isCloser(kind):
			if p.isOpen(kind) {
				return body
			}
			p.unexpected(p.open[len(p.open)-1].String())
			p.advance()
		case kind == token.KeywordVar:
			p.errorf(p.cur.Span, "variable block after statements")
			p.parseVariableBlock()
		default:
			if s := p.parseStatement(); s != nil {
				body = append(body, s)
			}
		}
	}
}

// Statement := IfStatement | CaseStatement | ForStatement | WhileStatement
//            | RepeatStatement | SimpleStatement ';' | ';'
//
// Control statements count towards the nesting limit. One that is too deep
// is skipped whole.
func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Kind {
	case token.KeywordIf, token.KeywordCase, token.KeywordFor, token.KeywordWhile, token.KeywordRepeat:
		if !p.enter() {
			p.skipBlock()
			return nil
		}
		defer p.leave()
	}

	switch p.cur.Kind {
	case token.KeywordCase:
		return p.parseCaseStatement()
	case token.KeywordIf:
		return p.parseIfStatement()
	case token.KeywordFor:
		return p.parseForStatement()
	case token.KeywordWhile:
		return p.parseWhileStatement()
	case token.KeywordRepeat:
		return p.parseRepeatStatement()
	case token.KeywordSemicolon:
		p.advance()
		return nil
	}

	stmt := p.parseExpression()
	if stmt == nil {
		p.resync()
		return nil
	}
	if !p.expect(token.KeywordSemicolon) {
		p.resync()
	}
	return stmt
}

// IfStatement := IF expr THEN body (ELSIF expr THEN body)* [ELSE body] END_IF
//
// An arm whose condition does not parse is dropped; its body is still
// parsed so the rest of the statement is checked.
func (p *Parser) parseIfStatement() ast.Statement {
	p.advance() // IF
	p.push(token.KeywordEndIf)
	defer p.pop()

	stmt := &ast.IfStatement{}
	for {
		cond := p.parseExpression()
		if cond == nil || !p.expect(token.KeywordThen) {
			p.skipPast(token.KeywordThen)
		}
		body := p.parseBody(token.KeywordElseIf, token.KeywordElse, token.KeywordEndIf)
		if cond != nil {
			stmt.Blocks = append(stmt.Blocks, &ast.ConditionalBlock{Condition: cond, Body: body})
		}
		if !p.curIs(token.KeywordElseIf) {
			break
		}
		p.advance()
	}
	if p.curIs(token.KeywordElse) {
		p.advance()
		stmt.ElseBlock = p.parseBody(token.KeywordEndIf)
	}
	p.expectEnd(token.KeywordEndIf)

	if len(stmt.Blocks) == 0 {
		return nil
	}
	return stmt
}

// CaseStatement := CASE expr OF (labels ':' Statement*)* [ELSE body] END_CASE
// labels        := expr (',' expr)*
//
// An expression followed by ',' or ':' starts a new arm; one followed by
// ';' is a statement of the current arm.
func (p *Parser) parseCaseStatement() ast.Statement {
	p.advance() // CASE
	p.push(token.KeywordEndCase)
	defer p.pop()

	selector := p.parseExpression()
	if selector == nil || !p.expect(token.KeywordOf) {
		p.skipPast(token.KeywordOf)
	}
	stmt := &ast.CaseStatement{Selector: selector}
	var arm *ast.CaseBlock
	add := func(span token.Span, s ast.Statement) {
		if arm == nil {
			p.errorf(span, "statement before the first case label")
			return
		}
		arm.Body = append(arm.Body, s)
	}
	for {
		kind := p.cur.Kind
		if kind == token.KeywordElse || kind == token.KeywordEndCase {
			break
		}
		if isCloser(kind) {
			if p.isOpen(kind) {
				break
			}
			p.unexpected(token.KeywordEndCase.String())
			p.advance()
			continue
		}
		start := p.cur.Span
		switch kind {
		case token.KeywordIf, token.KeywordCase, token.KeywordFor, token.KeywordWhile,
			token.KeywordRepeat, token.KeywordSemicolon:
			if s := p.parseStatement(); s != nil {
				add(start, s)
			}
			continue
		}

		expr := p.parseExpression()
		if expr == nil {
			p.resync()
			continue
		}
		if p.curIs(token.KeywordComma) || p.curIs(token.KeywordColon) {
			if labels := p.parseCaseLabels(expr); labels != nil {
				arm = &ast.CaseBlock{Conditions: labels}
				stmt.Blocks = append(stmt.Blocks, arm)
			}
			continue
		}
		if !p.expect(token.KeywordSemicolon) {
			p.resync()
		}
		add(start, expr)
	}
	if p.curIs(token.KeywordElse) {
		p.advance()
		stmt.ElseBlock = p.parseBody(token.KeywordEndCase)
	}
	p.expectEnd(token.KeywordEndCase)

	if selector == nil {
		return nil
	}
	return stmt
}

// parseCaseLabels parses the rest of a label list whose first label is
// already parsed, including the closing colon.
func (p *Parser) parseCaseLabels(first ast.Statement) []ast.Statement {
	labels := []ast.Statement{first}
	for p.curIs(token.KeywordComma) {
		p.advance()
		label := p.parseExpression()
		if label == nil {
			p.resync()
			return nil
		}
		labels = append(labels, label)
	}
	if !p.expect(token.KeywordColon) {
		p.resync()
		return nil
	}
	return labels
}

// ForStatement := FOR ident ':=' expr TO expr [BY expr] DO body END_FOR
func (p *Parser) parseForStatement() ast.Statement {
	p.advance() // FOR
	p.push(token.KeywordEndFor)
	defer p.pop()

	stmt := &ast.ForLoopStatement{}
	ok := p.parseForHeader(stmt)
	if !ok {
		p.skipPast(token.KeywordDo)
	}
	stmt.Body = p.parseBody(token.KeywordEndFor)
	p.expectEnd(token.KeywordEndFor)
	if !ok {
		return nil
	}
	return stmt
}

// parseForHeader parses everything up to and including DO. It stops at the
// first error, leaving the offending token current.
func (p *Parser) parseForHeader(stmt *ast.ForLoopStatement) bool {
	if !p.curIs(token.Identifier) {
		p.unexpected(token.Identifier.String())
		return false
	}
	stmt.Counter = &ast.Reference{Name: p.cur.Text}
	p.advance()
	if !p.expect(token.KeywordAssignment) {
		return false
	}
	if stmt.Start = p.parseExpression(); stmt.Start == nil {
		return false
	}
	if !p.expect(token.KeywordTo) {
		return false
	}
	if stmt.End = p.parseExpression(); stmt.End == nil {
		return false
	}
	if p.curIs(token.KeywordBy) {
		p.advance()
		if stmt.By = p.parseExpression(); stmt.By == nil {
			return false
		}
	}
	return p.expect(token.KeywordDo)
}

// WhileStatement := WHILE expr DO body END_WHILE
func (p *Parser) parseWhileStatement() ast.Statement {
	p.advance() // WHILE
	p.push(token.KeywordEndWhile)
	defer p.pop()

	cond := p.parseExpression()
	if cond == nil || !p.expect(token.KeywordDo) {
		p.skipPast(token.KeywordDo)
	}
	body := p.parseBody(token.KeywordEndWhile)
	p.expectEnd(token.KeywordEndWhile)
	if cond == nil {
		return nil
	}
	return &ast.WhileLoopStatement{Condition: cond, Body: body}
}

// RepeatStatement := REPEAT body UNTIL expr END_REPEAT
func (p *Parser) parseRepeatStatement() ast.Statement {
	p.advance() // REPEAT
	p.push(token.KeywordEndRepeat)
	defer p.pop()

	body := p.parseBody(token.KeywordUntil, token.KeywordEndRepeat)
	var cond ast.Statement
	if p.expect(token.KeywordUntil) {
		if cond = p.parseExpression(); cond == nil {
			p.resync()
		}
	}
	p.expectEnd(token.KeywordEndRepeat)
	if cond == nil {
		return nil
	}
	return &ast.RepeatLoopStatement{Body: body, Condition: cond}
}

// ---------------------------------------------------------------------------
// Expressions, loosest to tightest:
//
//	equality       = relational [ ("=" | "<>") equality ]
//	relational     = additive [ ("<" | ">" | "<=" | ">=") relational ]
//	additive       = multiplicative [ ("+" | "-") additive ]
//	multiplicative = boolean [ ("*" | "/" | "MOD") multiplicative ]
//	boolean        = unary [ ("AND" | "OR" | "XOR") boolean ]
//	unary          = "(" equality ")" | ("NOT" | "-") unary | TYPE# unary | leaf
//	leaf           = ident [ ":=" equality ] | literal [ ":=" equality ]
//
// Every function returns nil after recording a diagnostic, never a node
// with a missing operand.
// ---------------------------------------------------------------------------

var (
	equalityOps = map[token.Kind]ast.Operator{
		token.OperatorEqual:    ast.Equal,
		token.OperatorNotEqual: ast.NotEqual,
	}
	relationalOps = map[token.Kind]ast.Operator{
		token.OperatorLess:           ast.Less,
		token.OperatorGreater:        ast.Greater,
		token.OperatorLessOrEqual:    ast.LessOrEqual,
		token.OperatorGreaterOrEqual: ast.GreaterOrEqual,
	}
	additiveOps = map[token.Kind]ast.Operator{
		token.OperatorPlus:  ast.Plus,
		token.OperatorMinus: ast.Minus,
	}
	multiplicativeOps = map[token.Kind]ast.Operator{
		token.OperatorMultiplication: ast.Multiplication,
		token.OperatorDivision:       ast.Division,
		token.OperatorModulo:         ast.Modulo,
	}
	booleanOps = map[token.Kind]ast.Operator{
		token.OperatorAnd: ast.And,
		token.OperatorOr:  ast.Or,
		token.OperatorXor: ast.Xor,
	}
)

// parseExpression parses a full expression starting at the loosest level.
func (p *Parser) parseExpression() ast.Statement {
	return p.parseEquality()
}

func (p *Parser) parseEquality() ast.Statement {
	return p.parseBinary(equalityOps, p.parseRelational, p.parseEquality)
}

func (p *Parser) parseRelational() ast.Statement {
	return p.parseBinary(relationalOps, p.parseAdditive, p.parseRelational)
}

func (p *Parser) parseAdditive() ast.Statement {
	return p.parseBinary(additiveOps, p.parseMultiplicative, p.parseAdditive)
}

func (p *Parser) parseMultiplicative() ast.Statement {
	return p.parseBinary(multiplicativeOps, p.parseBoolean, p.parseMultiplicative)
}

func (p *Parser) parseBoolean() ast.Statement {
	return p.parseBinary(booleanOps, p.parseUnary, p.parseBoolean)
}

// parseBinary parses one precedence level: an operand, then optionally an
// operator of the level and the right operand parsed by the level itself.
func (p *Parser) parseBinary(ops map[token.Kind]ast.Operator, operand, self func() ast.Statement) ast.Statement {
	left := operand()
	if left == nil {
		return nil
	}
	op, ok := ops[p.cur.Kind]
	if !ok {
		return left
	}
	p.advance()
	if !p.enter() {
		return nil
	}
	defer p.leave()
	right := self()
	if right == nil {
		return nil
	}
	return &ast.BinaryExpression{Operator: op, Left: left, Right: right}
}

func (p *Parser) parseUnary() ast.Statement {
	switch p.cur.Kind {
	case token.KeywordParensOpen:
		p.advance()
		if !p.enter() {
			return nil
		}
		defer p.leave()
		inner := p.parseExpression()
		if inner == nil {
			return nil
		}
		if !p.expect(token.KeywordParensClose) {
			return nil
		}
		return inner

	case token.OperatorNot, token.OperatorMinus:
		op := ast.Not
		if p.curIs(token.OperatorMinus) {
			op = ast.Minus
		}
		p.advance()
		if !p.enter() {
			return nil
		}
		defer p.leave()
		value := p.parseUnary()
		if value == nil {
			return nil
		}
		return &ast.UnaryExpression{Operator: op, Value: value}

	case token.TypeCastPrefix:
		name := strings.TrimSuffix(p.cur.Text, "#")
		p.advance()
		if !p.enter() {
			return nil
		}
		defer p.leave()
		target := p.parseUnary()
		if target == nil {
			return nil
		}
		return &ast.CastStatement{TypeName: name, Target: target}
	}
	return p.parseLeaf()
}

// parseLeaf parses a reference or literal. An assignment is only recognised
// directly after one.
func (p *Parser) parseLeaf() ast.Statement {
	var leaf ast.Statement
	switch p.cur.Kind {
	case token.Identifier:
		leaf = &ast.Reference{Name: p.cur.Text}
	case token.LiteralInteger:
		leaf = &ast.LiteralNumber{Value: p.cur.Text}
	case token.LiteralReal:
		leaf = &ast.LiteralReal{Value: p.cur.Text}
	case token.LiteralTrue:
		leaf = &ast.LiteralBool{Value: true}
	case token.LiteralFalse:
		leaf = &ast.LiteralBool{Value: false}
	default:
		p.unexpected("Expression")
		return nil
	}
	p.advance()

	if !p.curIs(token.KeywordAssignment) {
		return leaf
	}
	p.advance()
	if !p.enter() {
		return nil
	}
	defer p.leave()
	right := p.parseExpression()
	if right == nil {
		return nil
	}
	return &ast.Assignment{Left: leaf, Right: right}
}

// enter records one more level of nesting, for expressions and control
// statements alike. Past the limit it reports once per outermost construct
// and returns false.
func (p *Parser) enter() bool {
	if p.depth >= p.maxDepth {
		if !p.tooDeep {
			p.errorf(p.cur.Span, "nested deeper than %d levels", p.maxDepth)
			p.tooDeep = true
		}
		return false
	}
	p.depth++
	return true
}

func (p *Parser) leave() {
	p.depth--
	if p.depth == 0 {
		p.tooDeep = false
	}
}
