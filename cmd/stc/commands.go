// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/ethereum/go-ethereum/log"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/urfave/cli.v1"

	"github.com/probechain/stc/lang/ast"
	"github.com/probechain/stc/lang/consteval"
	"github.com/probechain/stc/lang/diagnostic"
	"github.com/probechain/stc/lang/index"
	"github.com/probechain/stc/lang/lexer"
	"github.com/probechain/stc/lang/parser"
)

var errDiagnostics = errors.New("compilation failed")

var (
	spewFlag = cli.BoolFlag{
		Name:  "spew",
		Usage: "Dump the full node structure instead of the compact form",
	}

	tokensCommand = cli.Command{
		Action:    tokensAction,
		Name:      "tokens",
		Usage:     "Print the token stream of a source file",
		ArgsUsage: "<file>",
	}
	astCommand = cli.Command{
		Action:    astAction,
		Name:      "ast",
		Usage:     "Print the syntax tree of a source file",
		ArgsUsage: "<file>",
		Flags:     []cli.Flag{spewFlag},
	}
	checkCommand = cli.Command{
		Action:    checkAction,
		Name:      "check",
		Usage:     "Parse, index and fold constants without printing them",
		ArgsUsage: "<file> [<file>...]",
	}
	constsCommand = cli.Command{
		Action:    constsAction,
		Name:      "consts",
		Usage:     "Print the value of every constant",
		ArgsUsage: "<file> [<file>...]",
	}
)

func readSources(ctx *cli.Context, want int) ([]parser.Source, error) {
	if ctx.NArg() < want {
		return nil, fmt.Errorf("%s: expected at least %d file argument(s)", ctx.Command.Name, want)
	}
	sources := make([]parser.Source, 0, ctx.NArg())
	for _, name := range ctx.Args() {
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, err
		}
		sources = append(sources, parser.Source{Name: name, Text: string(data)})
	}
	return sources, nil
}

func tokensAction(ctx *cli.Context) error {
	sources, err := readSources(ctx, 1)
	if err != nil {
		return err
	}
	printTokens(os.Stdout, sources[0].Text)
	return nil
}

// printTokens writes one line per token, End included.
func printTokens(w io.Writer, source string) {
	for _, tok := range lexer.New(source).Tokenize() {
		fmt.Fprintf(w, "%-10s %-22s %q\n", tok.Span, tok.Kind, tok.Text)
	}
}

func astAction(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	sources, err := readSources(ctx, 1)
	if err != nil {
		return err
	}
	src := sources[0]
	unit, diags := parser.ParseString(src.Text, parser.WithMaxDepth(cfg.Parser.MaxDepth))
	if ctx.Bool(spewFlag.Name) {
		spew.Fdump(os.Stdout, unit)
	} else {
		fmt.Fprint(os.Stdout, unit.String())
	}
	if len(diags) > 0 {
		diagnostic.Render(os.Stderr, src.Name, src.Text, diags)
		return errDiagnostics
	}
	return nil
}

// analysis is everything the front end knows about a set of sources.
type analysis struct {
	results       []parser.Result
	index         *index.Index
	constants     *consteval.Constants
	unresolvable  []string
	diagnostics   int
	indexErr      error
	evaluationErr error
}

func analyze(ctx context.Context, sources []parser.Source, maxDepth int) (*analysis, error) {
	results, err := parser.ParseAll(ctx, sources, parser.WithMaxDepth(maxDepth))
	if err != nil {
		return nil, err
	}
	a := &analysis{results: results}
	units := make([]*ast.CompilationUnit, 0, len(results))
	for _, res := range results {
		a.diagnostics += len(res.Diagnostics)
		units = append(units, res.Unit)
		log.Debug("Parsed source", "name", res.Name, "programs", len(res.Unit.Units), "diagnostics", len(res.Diagnostics))
	}
	// Duplicates are reported but the first declaration is kept, so the
	// evaluation still runs on what could be indexed.
	a.index, a.indexErr = index.Build(units...)
	a.constants, a.unresolvable, a.evaluationErr = consteval.EvaluateConstants(a.index)
	return a, nil
}

// report renders diagnostics and errors and says whether anything failed.
func (a *analysis) report(w io.Writer, sources []parser.Source) bool {
	for i, res := range a.results {
		diagnostic.Render(w, res.Name, sources[i].Text, res.Diagnostics)
	}
	failed := a.diagnostics > 0
	if a.indexErr != nil {
		fmt.Fprintln(w, a.indexErr)
		failed = true
	}
	if a.evaluationErr != nil {
		fmt.Fprintln(w, a.evaluationErr)
		failed = true
	}
	if len(a.unresolvable) > 0 {
		fmt.Fprintf(w, "unresolvable constants: %s\n", strings.Join(a.unresolvable, ", "))
		failed = true
	}
	return failed
}

func runAnalysis(ctx *cli.Context, cfg stcConfig) (*analysis, []parser.Source, error) {
	sources, err := readSources(ctx, 1)
	if err != nil {
		return nil, nil, err
	}
	a, err := analyze(context.Background(), sources, cfg.Parser.MaxDepth)
	if err != nil {
		return nil, nil, err
	}
	return a, sources, nil
}

func checkAction(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	a, sources, err := runAnalysis(ctx, cfg)
	if err != nil {
		return err
	}
	if a.report(os.Stderr, sources) {
		return errDiagnostics
	}
	log.Info("Check passed", "files", len(sources), "constants", a.constants.Len())
	return nil
}

func constsAction(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	a, sources, err := runAnalysis(ctx, cfg)
	if err != nil {
		return err
	}
	printConstants(os.Stdout, a, cfg.Output.Table)
	if a.report(os.Stderr, sources) {
		return errDiagnostics
	}
	return nil
}

// printConstants lists resolved constants in resolution order, followed by
// the ones that could not be folded.
func printConstants(w io.Writer, a *analysis, table bool) {
	rows := make([][]string, 0, a.constants.Len()+len(a.unresolvable))
	for _, name := range a.constants.Names() {
		v, _ := a.constants.Get(name)
		rows = append(rows, []string{name, typeOf(a.index, name), v.String()})
	}
	for _, name := range a.unresolvable {
		rows = append(rows, []string{name, typeOf(a.index, name), "?"})
	}
	if !table {
		for _, row := range rows {
			fmt.Fprintf(w, "%s : %s = %s\n", row[0], row[1], row[2])
		}
		return
	}
	tw := tablewriter.NewWriter(w)
	tw.SetAutoFormatHeaders(false)
	tw.SetHeader([]string{"Constant", "Type", "Value"})
	tw.AppendBulk(rows)
	tw.Render()
}

func typeOf(idx *index.Index, name string) string {
	if entry, ok := idx.Variable(name); ok {
		return entry.TypeName
	}
	return ""
}
