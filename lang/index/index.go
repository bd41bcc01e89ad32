// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package index aggregates the declarations of parsed compilation units into
// one symbol table: the known types and every declared variable, keyed by
// qualified name.
package index

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/log"

	"github.com/probechain/stc/lang/ast"
	"github.com/probechain/stc/lang/types"
)

// ErrDuplicate is returned when a qualified name or type is declared twice.
var ErrDuplicate = errors.New("duplicate declaration")

// VariableEntry is one declared variable.
type VariableEntry struct {
	Name string
	// Scope is the declaring program, empty for globals.
	Scope         string
	QualifiedName string
	TypeName      string
	Initializer   ast.Statement
	Constant      bool
}

// QualifiedName joins a scope and a name the way the index keys entries.
func QualifiedName(scope, name string) string {
	if scope == "" {
		return name
	}
	return scope + "." + name
}

// Index is the symbol table. It is not safe for concurrent mutation; build
// it once all units are parsed and only read it afterwards.
type Index struct {
	types     map[string]*types.DataType // keyed by upper-case name
	variables []*VariableEntry
	byName    map[string]*VariableEntry
}

// New returns an index holding the builtin types.
func New() *Index {
	idx := &Index{
		types:  make(map[string]*types.DataType),
		byName: make(map[string]*VariableEntry),
	}
	for _, dt := range types.BuiltinTypes() {
		idx.types[strings.ToUpper(dt.Name)] = dt
	}
	return idx
}

// RegisterType adds a user type. Type names are case-insensitive.
func (idx *Index) RegisterType(dt *types.DataType) error {
	key := strings.ToUpper(dt.Name)
	if _, ok := idx.types[key]; ok {
		return fmt.Errorf("%w: type %s", ErrDuplicate, dt.Name)
	}
	idx.types[key] = dt
	return nil
}

// RegisterVariable adds a variable. An empty QualifiedName is derived from
// Scope and Name.
func (idx *Index) RegisterVariable(entry *VariableEntry) error {
	if entry.QualifiedName == "" {
		entry.QualifiedName = QualifiedName(entry.Scope, entry.Name)
	}
	key := strings.ToUpper(entry.QualifiedName)
	if _, ok := idx.byName[key]; ok {
		return fmt.Errorf("%w: variable %s", ErrDuplicate, entry.QualifiedName)
	}
	idx.byName[key] = entry
	idx.variables = append(idx.variables, entry)
	return nil
}

// FindType looks a type up by name.
func (idx *Index) FindType(name string) (*types.DataType, bool) {
	dt, ok := idx.types[strings.ToUpper(name)]
	return dt, ok
}

// FindEffectiveType looks a type up and follows aliases to the type they
// finally name. It fails on a dangling or cyclic alias.
func (idx *Index) FindEffectiveType(name string) (*types.DataType, bool) {
	seen := make(map[string]bool)
	for {
		dt, ok := idx.FindType(name)
		if !ok {
			return nil, false
		}
		alias, ok := dt.Information.(*types.AliasInfo)
		if !ok {
			return dt, true
		}
		key := strings.ToUpper(dt.Name)
		if seen[key] {
			return nil, false
		}
		seen[key] = true
		name = alias.Referenced
	}
}

// Variables returns every variable entry in registration order.
func (idx *Index) Variables() []*VariableEntry {
	return idx.variables
}

// Variable looks an entry up by qualified name.
func (idx *Index) Variable(qualified string) (*VariableEntry, bool) {
	e, ok := idx.byName[strings.ToUpper(qualified)]
	return e, ok
}

// Build indexes the variables of every POU in the given units. Entries are
// scoped to their POU, and a function also gets an entry named like itself
// for its return value. Duplicates are skipped and reported together in the
// returned error; the index is usable either way.
func Build(units ...*ast.CompilationUnit) (*Index, error) {
	idx := New()
	var errs []error
	for _, unit := range units {
		if unit == nil {
			continue
		}
		for _, prog := range unit.Units {
			if prog.PouType == ast.PouFunction {
				err := idx.RegisterVariable(&VariableEntry{
					Name:     prog.Name,
					Scope:    prog.Name,
					TypeName: prog.ReturnType,
				})
				if err != nil {
					errs = append(errs, err)
				}
			}
			for _, block := range prog.VariableBlocks {
				for _, v := range block.Variables {
					err := idx.RegisterVariable(&VariableEntry{
						Name:        v.Name,
						Scope:       prog.Name,
						TypeName:    v.TypeName,
						Initializer: v.Initializer,
						Constant:    block.Constant,
					})
					if err != nil {
						errs = append(errs, err)
					}
				}
			}
		}
	}
	log.Debug("Built symbol index", "variables", len(idx.variables), "duplicates", len(errs))
	return idx, errors.Join(errs...)
}
