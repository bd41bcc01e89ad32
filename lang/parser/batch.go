// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package parser

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/probechain/stc/lang/ast"
	"github.com/probechain/stc/lang/diagnostic"
	"github.com/probechain/stc/lang/lexer"
)

// Source is one named compilation unit's text.
type Source struct {
	Name string
	Text string
}

// Result is the outcome of parsing one Source.
type Result struct {
	Name        string
	Unit        *ast.CompilationUnit
	Diagnostics []*diagnostic.Diagnostic
}

// ParseAll parses every source concurrently, each with its own lexer and
// parser. Results are in input order. It returns only once every parse has
// finished, so callers can build a cross-unit index from the results. The
// only error is the context's.
func ParseAll(ctx context.Context, sources []Source, opts ...Option) ([]Result, error) {
	results := make([]Result, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, src := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			unit, diags := Parse(lexer.New(src.Text), opts...)
			results[i] = Result{Name: src.Name, Unit: unit, Diagnostics: diags}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
