// This file is part of yasm-nextgen-sub002.
//
// Copyright 2024 The Yasm-Go Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package expr

import (
	"fmt"
	"math/big"

	"github.com/yasm/yasm-nextgen-sub002/diag"
)

// Float is an arbitrary-precision floating point leaf value, backed by
// math/big.Float (SPEC_FULL.md §2: no bignum/bigfloat library exists
// anywhere in the retrieval pack, so the wide backing store for both
// bigint.Int and Float is math/big). Operations report the diagnostic
// kinds spec.md §6/§4 list for float arithmetic: invalid-op, div-by-zero,
// overflow, underflow and inexact.
type Float struct {
	v *big.Float
}

// NewFloat wraps x as a Float with default (53-bit, double) precision.
func NewFloat(x float64) *Float {
	return &Float{v: big.NewFloat(x).SetPrec(53)}
}

// FloatFromString parses s (a decimal float literal) at the given bit
// precision.
func FloatFromString(s string, prec uint) (*Float, error) {
	f, _, err := big.ParseFloat(s, 10, prec, big.ToNearestEven)
	if err != nil {
		return nil, err
	}
	return &Float{v: f}, nil
}

func (f *Float) clone() *Float {
	v := new(big.Float).SetPrec(f.v.Prec())
	v.Set(f.v)
	return &Float{v: v}
}

// Neg returns -f.
func (f *Float) Neg() *Float {
	out := f.clone()
	out.v.Neg(out.v)
	return out
}

// Sign returns -1, 0 or 1.
func (f *Float) Sign() int { return f.v.Sign() }

// Cmp compares f and g.
func (f *Float) Cmp(g *Float) int { return f.v.Cmp(g.v) }

// String renders f in decimal.
func (f *Float) String() string { return f.v.Text('g', -1) }

// Calc evaluates a binary or unary float operator, reporting diagnostics
// through sink at src rather than failing hard — matching diag.Sink's
// "errors don't unwind the simplifier" design (SPEC_FULL.md §1).
func (f *Float) Calc(opName string, g *Float, sink diag.Sink, src diag.Source) *Float {
	prec := f.v.Prec()
	if g != nil && g.v.Prec() > prec {
		prec = g.v.Prec()
	}
	out := new(big.Float).SetPrec(prec)

	report := func(kind diag.Kind, msg string) {
		if sink != nil {
			sink.Report(diag.Diagnostic{Kind: kind, Source: src, Message: msg})
		}
	}

	switch opName {
	case "ADD":
		out.Add(f.v, g.v)
	case "SUB":
		out.Sub(f.v, g.v)
	case "MUL":
		out.Mul(f.v, g.v)
	case "DIV":
		if g.Sign() == 0 {
			report(diag.ErrDivideByZero, "float division by zero")
			return &Float{v: out}
		}
		out.Quo(f.v, g.v)
	case "NEG":
		out.Neg(f.v)
	default:
		report(diag.ErrFloatInvalidOp, fmt.Sprintf("invalid float operator %s", opName))
		return &Float{v: out}
	}
	if out.IsInf() {
		report(diag.WarnFloatOverflow, "float overflow")
	} else if out.Sign() == 0 && f.Sign() != 0 {
		report(diag.WarnFloatUnderflow, "float underflow")
	} else if out.Acc() != big.Exact {
		report(diag.WarnFloatInexact, "inexact float result")
	}
	return &Float{v: out}
}
