// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package consteval folds the initializers of constant declarations into
// literal values.
//
// Constants may reference each other in any order across all units, so
// resolution is a fixpoint: candidates that are still waiting on another
// constant go to the back of a queue, and the run ends once a whole pass over
// the queue resolved nothing.
//
// Evaluating an expression has three outcomes that must stay apart:
//
//   - a Value: the expression is folded
//   - nil Value, nil error: a referenced constant is not resolved yet
//   - an error: the expression can never be folded and is not retried
package consteval

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/log"

	"github.com/probechain/stc/lang/index"
	"github.com/probechain/stc/lang/types"
)

var (
	ErrRealEquality          = errors.New("cannot compare reals without epsilon")
	ErrTypeMismatch          = errors.New("operand types do not match")
	ErrNotImplemented        = errors.New("not supported in constant expressions")
	ErrUnsupportedExpression = errors.New("not a constant expression")
	ErrDivisionByZero        = errors.New("division by zero")
	ErrInvalidLiteral        = errors.New("invalid literal")
)

// EvalError is the hard failure of one constant.
type EvalError struct {
	Name string
	Err  error
}

func (e *EvalError) Error() string { return fmt.Sprintf("constant %s: %v", e.Name, e.Err) }
func (e *EvalError) Unwrap() error { return e.Err }

// Index is the part of the symbol table the evaluator reads.
type Index interface {
	Variables() []*index.VariableEntry
	FindEffectiveType(name string) (*types.DataType, bool)
}

// Constants maps qualified names to folded values and remembers the order
// in which they resolved. Names are matched ignoring case.
type Constants struct {
	names  []string
	values map[string]Value
}

// NewConstants returns an empty map.
func NewConstants() *Constants {
	return &Constants{values: make(map[string]Value)}
}

// Get returns the value stored under a qualified name.
func (c *Constants) Get(name string) (Value, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.values[strings.ToUpper(name)]
	return v, ok
}

// Set stores a value. Overwriting keeps the original position.
func (c *Constants) Set(name string, v Value) {
	key := strings.ToUpper(name)
	if _, ok := c.values[key]; !ok {
		c.names = append(c.names, name)
	}
	c.values[key] = v
}

// Names returns the qualified names in resolution order.
func (c *Constants) Names() []string { return c.names }

// Len returns the number of resolved constants.
func (c *Constants) Len() int { return len(c.names) }

// lookup resolves a reference made from scope: the scoped name wins over a
// global of the same name.
func (c *Constants) lookup(scope, name string) (Value, bool) {
	if scope != "" {
		if v, ok := c.Get(index.QualifiedName(scope, name)); ok {
			return v, true
		}
	}
	return c.Get(name)
}

// EvaluateConstants resolves every constant of idx that has an initializer.
// It returns the resolved values, the qualified names that could not be
// resolved, and the hard failures joined into one error. Names with a hard
// failure are listed as unresolvable too.
func EvaluateConstants(idx Index) (*Constants, []string, error) {
	var (
		queue        []*index.VariableEntry
		unresolvable []string
		errs         []error
	)
	for _, e := range idx.Variables() {
		if !e.Constant {
			continue
		}
		if e.Initializer == nil {
			unresolvable = append(unresolvable, e.QualifiedName)
			continue
		}
		queue = append(queue, e)
	}

	resolved := NewConstants()
	// stalled counts candidates deferred since the last resolution. Once it
	// reaches the queue length every remaining candidate has been tried
	// against the same resolved set.
	stalled := 0
	for len(queue) > 0 && stalled < len(queue) {
		cand := queue[0]
		queue = queue[1:]

		v, err := Evaluate(cand.Initializer, resolved, cand.Scope)
		switch {
		case err != nil:
			log.Trace("Constant cannot be folded", "name", cand.QualifiedName, "err", err)
			errs = append(errs, &EvalError{Name: cand.QualifiedName, Err: err})
			unresolvable = append(unresolvable, cand.QualifiedName)
		case v == nil:
			log.Trace("Deferring constant", "name", cand.QualifiedName, "queued", len(queue)+1)
			queue = append(queue, cand)
			stalled++
		default:
			resolved.Set(cand.QualifiedName, coerce(v, cand, idx))
			stalled = 0
		}
	}
	for _, cand := range queue {
		unresolvable = append(unresolvable, cand.QualifiedName)
	}
	log.Debug("Evaluated constants", "resolved", resolved.Len(), "unresolvable", len(unresolvable), "failed", len(errs))
	return resolved, unresolvable, errors.Join(errs...)
}

// coerce fits a folded value to the declared type of its constant: integers
// stored in unsigned types are truncated to the type's width, integers
// stored in float types become reals.
func coerce(v Value, cand *index.VariableEntry, idx Index) Value {
	dt, ok := idx.FindEffectiveType(cand.TypeName)
	if !ok {
		return v
	}
	i, ok := v.(Int)
	if !ok {
		return v
	}
	switch info := dt.Information.(type) {
	case *types.IntegerInfo:
		if !info.Signed {
			return i.Mask(info.Mask())
		}
	case *types.FloatInfo:
		return Real(i.Float())
	}
	return v
}
