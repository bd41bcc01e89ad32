// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package diagnostic holds the recoverable, user-facing messages produced
// while parsing.
package diagnostic

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/probechain/stc/lang/token"
)

// Diagnostic is a compile message attached to a byte range of the source.
type Diagnostic struct {
	Message string
	Span    token.Span
}

// UnexpectedToken reports that a token of kind expected was required but
// found was written instead. An empty found means the input ended.
func UnexpectedToken(expected, found string, span token.Span) *Diagnostic {
	return &Diagnostic{
		Message: fmt.Sprintf("unexpected token: expected %s but found '%s'", expected, found),
		Span:    span,
	}
}

// UnidentifiedToken reports source text that starts no valid token.
func UnidentifiedToken(text string, span token.Span) *Diagnostic {
	return &Diagnostic{
		Message: fmt.Sprintf("unidentified token: '%s'", text),
		Span:    span,
	}
}

// Errorf builds a diagnostic with a free-form message.
func Errorf(span token.Span, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{Message: fmt.Sprintf(format, args...), Span: span}
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s", d.Span, d.Message)
}

var (
	errorLabel = color.New(color.FgRed, color.Bold)
	caretColor = color.New(color.FgGreen, color.Bold)
)

// Render writes the diagnostics for source in a compiler-style layout:
//
//	name:3:7: error: unexpected token: expected KeywordEndVar but found ';'
//	    x : INT
//	          ^
//
// Colouring follows color.NoColor.
func Render(w io.Writer, name, source string, diags []*Diagnostic) {
	for _, d := range diags {
		line, col, text := locate(source, d.Span.Start)
		fmt.Fprintf(w, "%s:%d:%d: %s %s\n", name, line, col, errorLabel.Sprint("error:"), d.Message)
		fmt.Fprintf(w, "    %s\n", text)
		width := d.Span.Len()
		if width < 1 {
			width = 1
		}
		if rest := len(text) - (col - 1); width > rest && rest > 0 {
			width = rest
		}
		fmt.Fprintf(w, "    %s%s\n", strings.Repeat(" ", col-1), caretColor.Sprint(strings.Repeat("^", width)))
	}
}

// locate converts a byte offset into a 1-based line and column and returns
// the text of that line.
func locate(source string, offset int) (int, int, string) {
	if offset > len(source) {
		offset = len(source)
	}
	line := 1 + strings.Count(source[:offset], "\n")
	start := strings.LastIndexByte(source[:offset], '\n') + 1
	end := strings.IndexByte(source[start:], '\n')
	if end < 0 {
		end = len(source)
	} else {
		end += start
	}
	return line, offset - start + 1, strings.TrimRight(source[start:end], "\r")
}
