// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package types defines the structured-text type system: the catalog of
// builtin scalars and the numeric promotion rules used when two operands of
// different types meet in an expression.
//
// Sizes of integers and floats are in bits. A STRING's size is its length
// in characters plus the terminator.
package types

import (
	"fmt"

	"github.com/probechain/stc/lang/ast"
)

// DefaultStringLen is the length of a STRING declared without one.
const DefaultStringLen = 80

// DataType is a named type known to the compiler.
type DataType struct {
	Name string
	// InitialValue is the default written on the type declaration, if any.
	InitialValue ast.Statement
	Information  Information
}

// Information describes the shape of a DataType.
type Information interface {
	// Name returns the name of the described type.
	Name() string

	// Size returns the size of the type. Array and Alias sizes are not
	// implemented and panic.
	Size() uint32

	informationNode()
}

// ---- Variants ---------------------------------------------------------------

// StructInfo is a user structure with its members in declaration order.
type StructInfo struct {
	TypeName    string
	MemberNames []string
}

func (s *StructInfo) informationNode() {}
func (s *StructInfo) Name() string     { return s.TypeName }

// Size of a structure is not computed from its members yet.
func (s *StructInfo) Size() uint32 { return 0 }

// Dimension is an inclusive array index range.
type Dimension struct {
	Start int64
	End   int64
}

// ArrayInfo is an array of InnerTypeName over Dimensions.
type ArrayInfo struct {
	TypeName      string
	InnerTypeName string
	Dimensions    []Dimension
}

func (a *ArrayInfo) informationNode() {}
func (a *ArrayInfo) Name() string     { return a.TypeName }
func (a *ArrayInfo) Size() uint32 {
	panic(fmt.Sprintf("types: size of array type %s is not implemented", a.TypeName))
}

// IntegerInfo is a signed or unsigned integer of Bits width. BOOL is a
// one-bit signed integer.
type IntegerInfo struct {
	TypeName string
	Signed   bool
	Bits     uint32
}

func (i *IntegerInfo) informationNode() {}
func (i *IntegerInfo) Name() string     { return i.TypeName }
func (i *IntegerInfo) Size() uint32     { return i.Bits }

// Mask returns 2^Bits - 1 as a uint64. Widths of 64 bits or more return all
// ones.
func (i *IntegerInfo) Mask() uint64 {
	if i.Bits >= 64 {
		return ^uint64(0)
	}
	return 1<<i.Bits - 1
}

// FloatInfo is a floating point type of Bits width.
type FloatInfo struct {
	TypeName string
	Bits     uint32
}

func (f *FloatInfo) informationNode() {}
func (f *FloatInfo) Name() string     { return f.TypeName }
func (f *FloatInfo) Size() uint32     { return f.Bits }

// StringInfo is a fixed capacity string. Length includes the terminator.
type StringInfo struct {
	Length uint32
}

func (s *StringInfo) informationNode() {}
func (s *StringInfo) Name() string     { return "STRING" }
func (s *StringInfo) Size() uint32     { return s.Length }

// AliasInfo names another type.
type AliasInfo struct {
	TypeName   string
	Referenced string
}

func (a *AliasInfo) informationNode() {}
func (a *AliasInfo) Name() string     { return a.TypeName }
func (a *AliasInfo) Size() uint32 {
	panic(fmt.Sprintf("types: size of alias type %s is not implemented", a.TypeName))
}

// VoidInfo is the absence of a type.
type VoidInfo struct{}

func (VoidInfo) informationNode() {}
func (VoidInfo) Name() string     { return "VOID" }
func (VoidInfo) Size() uint32     { return 0 }

// NewStringInformation returns the information of a STRING of length
// characters.
func NewStringInformation(length uint32) *StringInfo {
	return &StringInfo{Length: length + 1}
}

// ---- Catalog ----------------------------------------------------------------

var (
	realInfo  = &FloatInfo{TypeName: "REAL", Bits: 32}
	lrealInfo = &FloatInfo{TypeName: "LREAL", Bits: 64}
)

// BuiltinTypes returns a fresh copy of the builtin type catalog.
func BuiltinTypes() []*DataType {
	integer := func(name string, signed bool, bits uint32) *DataType {
		return &DataType{Name: name, Information: &IntegerInfo{TypeName: name, Signed: signed, Bits: bits}}
	}
	float := func(name string, bits uint32) *DataType {
		return &DataType{Name: name, Information: &FloatInfo{TypeName: name, Bits: bits}}
	}
	return []*DataType{
		{Name: "VOID", Information: VoidInfo{}},
		integer("BOOL", true, 1),
		integer("BYTE", false, 8),
		integer("SINT", true, 8),
		integer("USINT", false, 8),
		integer("WORD", false, 16),
		integer("INT", true, 16),
		integer("UINT", false, 16),
		integer("DWORD", false, 32),
		integer("DINT", true, 32),
		integer("UDINT", false, 32),
		integer("LWORD", false, 64),
		integer("LINT", true, 64),
		integer("ULINT", false, 64),
		float("REAL", 32),
		float("LREAL", 64),
		{Name: "STRING", Information: NewStringInformation(DefaultStringLen)},
	}
}

// ---- Classification and promotion -------------------------------------------

// IsInt reports whether info is an integer type (BOOL included).
func IsInt(info Information) bool {
	_, ok := info.(*IntegerInfo)
	return ok
}

// IsFloat reports whether info is a floating point type.
func IsFloat(info Information) bool {
	_, ok := info.(*FloatInfo)
	return ok
}

// IsNumerical reports whether info is an integer or a float.
func IsNumerical(info Information) bool {
	return IsInt(info) || IsFloat(info)
}

// IsUnsigned reports whether info is an unsigned integer.
func IsUnsigned(info Information) bool {
	i, ok := info.(*IntegerInfo)
	return ok && !i.Signed
}

// rank orders numeric types. Signed integers outrank unsigned ones of the
// same width and every float outranks every integer.
func rank(info Information) uint32 {
	switch t := info.(type) {
	case *IntegerInfo:
		if t.Signed {
			return t.Bits + 1
		}
		return t.Bits
	case *FloatInfo:
		return t.Bits + 1000
	}
	panic(fmt.Sprintf("types: rank of non-numeric type %s", info.Name()))
}

func sameNature(a, b Information) bool {
	return (IsInt(a) && IsInt(b)) || (IsFloat(a) && IsFloat(b))
}

// BiggerType returns the type two operands promote to. Operands of the same
// nature promote to the higher ranked one, the left one on a tie. Mixed
// operands promote to REAL, or to LREAL when either is wider than REAL.
func BiggerType(a, b Information) Information {
	if sameNature(a, b) {
		if rank(a) < rank(b) {
			return b
		}
		return a
	}
	if a.Size() > realInfo.Bits || b.Size() > realInfo.Bits {
		return lrealInfo
	}
	return realInfo
}
