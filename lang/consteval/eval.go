// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package consteval

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/probechain/stc/lang/ast"
)

// Evaluate folds expr against the constants resolved so far. References are
// looked up in scope first, then globally. A reference that is not resolved
// yet makes the result nil with a nil error.
func Evaluate(expr ast.Statement, resolved *Constants, scope string) (Value, error) {
	switch e := expr.(type) {
	case *ast.LiteralNumber:
		i, err := ParseInt(e.Value)
		if err != nil {
			return nil, err
		}
		return i, nil

	case *ast.LiteralReal:
		f, err := strconv.ParseFloat(strings.ReplaceAll(e.Value, "_", ""), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: real %q", ErrInvalidLiteral, e.Value)
		}
		return Real(f), nil

	case *ast.LiteralBool:
		return Bool(e.Value), nil

	case *ast.Reference:
		if v, ok := resolved.lookup(scope, e.Name); ok {
			return v, nil
		}
		return nil, nil

	case *ast.BinaryExpression:
		left, err := Evaluate(e.Left, resolved, scope)
		if err != nil {
			return nil, err
		}
		right, err := Evaluate(e.Right, resolved, scope)
		if err != nil {
			return nil, err
		}
		if left == nil || right == nil {
			return nil, nil
		}
		return binary(e.Operator, left, right)

	case *ast.UnaryExpression:
		v, err := Evaluate(e.Value, resolved, scope)
		if err != nil || v == nil {
			return nil, err
		}
		return unary(e.Operator, v)

	case *ast.CastStatement:
		return nil, fmt.Errorf("%w: cast to %s", ErrNotImplemented, e.TypeName)

	case *ast.Assignment, *ast.IfStatement, *ast.CaseStatement, *ast.ForLoopStatement,
		*ast.WhileLoopStatement, *ast.RepeatLoopStatement:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedExpression, expr)
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedExpression, expr)
}

func binary(op ast.Operator, l, r Value) (Value, error) {
	switch op {
	case ast.Plus, ast.Minus, ast.Multiplication, ast.Division, ast.Modulo:
		return arithmetic(op, l, r)
	case ast.Equal, ast.NotEqual:
		return equality(op, l, r)
	case ast.And, ast.Or, ast.Xor:
		return bitwise(op, l, r)
	case ast.Less, ast.Greater, ast.LessOrEqual, ast.GreaterOrEqual:
		return nil, fmt.Errorf("%w: %s %s %s", ErrNotImplemented, l, op.Symbol(), r)
	}
	return nil, fmt.Errorf("%w: binary %s", ErrUnsupportedExpression, op)
}

// arithmetic keeps two integers integral and promotes to real as soon as
// one operand is real.
func arithmetic(op ast.Operator, l, r Value) (Value, error) {
	li, lok := l.(Int)
	ri, rok := r.(Int)
	if lok && rok {
		return integer(op, li, ri)
	}
	lf, lok := asReal(l)
	rf, rok := asReal(r)
	if !lok || !rok {
		return nil, fmt.Errorf("%w: %s %s %s", ErrTypeMismatch, l, op.Symbol(), r)
	}
	switch op {
	case ast.Plus:
		return Real(lf + rf), nil
	case ast.Minus:
		return Real(lf - rf), nil
	case ast.Multiplication:
		return Real(lf * rf), nil
	case ast.Division:
		return Real(lf / rf), nil
	}
	return Real(math.Mod(lf, rf)), nil
}

func integer(op ast.Operator, l, r Int) (Value, error) {
	var z Int
	switch op {
	case ast.Plus:
		z.v.Add(&l.v, &r.v)
	case ast.Minus:
		z.v.Sub(&l.v, &r.v)
	case ast.Multiplication:
		z.v.Mul(&l.v, &r.v)
	case ast.Division, ast.Modulo:
		if r.v.IsZero() {
			return nil, fmt.Errorf("%w: %s %s %s", ErrDivisionByZero, l, op.Symbol(), r)
		}
		if op == ast.Division {
			z.v.SDiv(&l.v, &r.v)
		} else {
			z.v.SMod(&l.v, &r.v)
		}
	}
	return z, nil
}

func asReal(v Value) (float64, bool) {
	switch v := v.(type) {
	case Real:
		return float64(v), true
	case Int:
		return v.Float(), true
	}
	return 0, false
}

// equality compares integers or booleans. Two reals are never compared.
func equality(op ast.Operator, l, r Value) (Value, error) {
	var eq bool
	switch lv := l.(type) {
	case Int:
		rv, ok := r.(Int)
		if !ok {
			return nil, fmt.Errorf("%w: %s %s %s", ErrTypeMismatch, l, op.Symbol(), r)
		}
		eq = lv.v.Eq(&rv.v)
	case Bool:
		rv, ok := r.(Bool)
		if !ok {
			return nil, fmt.Errorf("%w: %s %s %s", ErrTypeMismatch, l, op.Symbol(), r)
		}
		eq = lv == rv
	case Real:
		if _, ok := r.(Real); ok {
			return nil, ErrRealEquality
		}
		return nil, fmt.Errorf("%w: %s %s %s", ErrTypeMismatch, l, op.Symbol(), r)
	}
	if op == ast.NotEqual {
		eq = !eq
	}
	return Bool(eq), nil
}

// bitwise applies AND, OR or XOR to two integers or two booleans.
func bitwise(op ast.Operator, l, r Value) (Value, error) {
	switch lv := l.(type) {
	case Int:
		if rv, ok := r.(Int); ok {
			var z Int
			switch op {
			case ast.And:
				z.v.And(&lv.v, &rv.v)
			case ast.Or:
				z.v.Or(&lv.v, &rv.v)
			default:
				z.v.Xor(&lv.v, &rv.v)
			}
			return z, nil
		}
	case Bool:
		if rv, ok := r.(Bool); ok {
			switch op {
			case ast.And:
				return lv && rv, nil
			case ast.Or:
				return lv || rv, nil
			default:
				return Bool(lv != rv), nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %s %s %s", ErrTypeMismatch, l, op.Symbol(), r)
}

func unary(op ast.Operator, v Value) (Value, error) {
	switch op {
	case ast.Not:
		switch v := v.(type) {
		case Bool:
			return !v, nil
		case Int:
			var z Int
			z.v.Not(&v.v)
			return z, nil
		}
	case ast.Minus:
		switch v := v.(type) {
		case Int:
			var z Int
			z.v.Neg(&v.v)
			return z, nil
		case Real:
			return -v, nil
		}
	default:
		return nil, fmt.Errorf("%w: unary %s", ErrUnsupportedExpression, op)
	}
	return nil, fmt.Errorf("%w: %s %s", ErrTypeMismatch, op.Symbol(), v)
}
