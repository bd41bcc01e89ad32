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
	"math/big"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
)

// Value is a folded constant: Int, Real or Bool.
type Value interface {
	fmt.Stringer
	value()
}

// Int is a 256-bit two's complement integer, wide enough that no ST integer
// type overflows it before masking.
type Int struct {
	v uint256.Int
}

// Real is a folded floating point constant.
type Real float64

// Bool is a folded boolean constant.
type Bool bool

func (Int) value()  {}
func (Real) value() {}
func (Bool) value() {}

// NewInt returns the Int holding x.
func NewInt(x int64) Int {
	var i Int
	if x < 0 {
		i.v.Neg(uint256.NewInt(uint64(-x)))
	} else {
		i.v.SetUint64(uint64(x))
	}
	return i
}

// ParseInt parses a decimal integer literal, '_' separators allowed.
func ParseInt(text string) (Int, error) {
	b, ok := new(big.Int).SetString(strings.ReplaceAll(text, "_", ""), 10)
	if !ok || b.Sign() < 0 || b.BitLen() > 255 {
		return Int{}, fmt.Errorf("%w: integer %q", ErrInvalidLiteral, text)
	}
	var i Int
	i.v.SetFromBig(b)
	return i, nil
}

// Big returns the signed value of i.
func (i Int) Big() *big.Int {
	if i.v.Sign() >= 0 {
		return i.v.ToBig()
	}
	var abs uint256.Int
	abs.Neg(&i.v)
	return new(big.Int).Neg(abs.ToBig())
}

// Float returns the nearest float64 to i.
func (i Int) Float() float64 {
	f, _ := new(big.Float).SetInt(i.Big()).Float64()
	return f
}

// Mask keeps the low bits of i selected by mask, yielding a non-negative
// result.
func (i Int) Mask(mask uint64) Int {
	var out Int
	out.v.And(&i.v, uint256.NewInt(mask))
	return out
}

func (i Int) String() string { return i.Big().String() }

func (r Real) String() string {
	return strconv.FormatFloat(float64(r), 'g', -1, 64)
}

func (b Bool) String() string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}
