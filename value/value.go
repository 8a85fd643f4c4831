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

// Package value implements Value: the relocation-aware wrapper that
// bridges an Expr to the emittable bytes an object-format writer needs.
// Value.Finalize normalizes a parsed expression into this shape;
// Value.OutputBasic converts the absolute part to bytes and reports
// whether the relative part still needs an external relocation.
package value

import (
	"github.com/pkg/errors"

	"github.com/yasm/yasm-nextgen-sub002/diag"
	"github.com/yasm/yasm-nextgen-sub002/expr"
	"github.com/yasm/yasm-nextgen-sub002/loc"
	"github.com/yasm/yasm-nextgen-sub002/op"
	"github.com/yasm/yasm-nextgen-sub002/symbol"
)

// ErrTooComplex is returned by Finalize when a parsed expression cannot be
// reduced to the Value shape: more than one relative term, or a relative
// term in a position Finalize does not know how to fold away.
var ErrTooComplex = errors.New("value: expression too complex for relocation shape")

// MaxRShift is the implementation cap on Value.RShift.
const MaxRShift = 127

// Value is an emittable quantity of a specific bit width, carrying an
// absolute remainder plus at most one relative symbol.
type Value struct {
	Size int

	Abs *expr.Expr

	Rel *symbol.Symbol
	WRT *symbol.Symbol

	// Sub is the subtrahend of a rel-sub relocation: either a
	// *symbol.Symbol or a loc.Location, or nil. Kept as interface{} the
	// same way symbol.Symbol.Equ is, to avoid value needing to expose a
	// union type.
	Sub interface{}

	SegOf  bool
	RShift int

	IPRel, CurposRel     bool
	JumpTarget, SectionRel bool

	Sign        bool
	WarnEnabled bool
	NoWarn      bool

	NextInsn int

	Source diag.Source

	// PrecBC is the location immediately preceding the bytecode this
	// Value is attached to, recorded by Finalize for later use by
	// CalcPCRelSub.
	PrecBC loc.Location
}

// Option configures a new Value, following the functional-options pattern.
type Option func(*Value)

// WithSign marks the Value as holding a signed quantity.
func WithSign() Option { return func(v *Value) { v.Sign = true } }

// WithWarnEnabled turns on overflow/misalignment warnings for this Value.
func WithWarnEnabled() Option { return func(v *Value) { v.WarnEnabled = true } }

// WithIPRel marks the Value as IP-relative (the familiar x86 style of
// PC-relative addressing, relative to the end of the instruction).
func WithIPRel() Option { return func(v *Value) { v.IPRel = true } }

// WithCurposRel marks the Value as relative to the current position
// (relative to the start, rather than the end, of the field).
func WithCurposRel() Option { return func(v *Value) { v.CurposRel = true } }

// WithSource attaches a diagnostic source range.
func WithSource(src diag.Source) Option { return func(v *Value) { v.Source = src } }

// New returns an empty Value of the given field width in bits.
func New(size int, opts ...Option) *Value {
	v := &Value{Size: size, Abs: expr.New()}
	for _, o := range opts {
		o(v)
	}
	return v
}

// AddAbs appends e additively to v.Abs, wrapping the existing absolute
// part (if any) and e in an ADD if both are present.
func (v *Value) AddAbs(e *expr.Expr) {
	v.Abs = expr.Combine(op.ADD, v.Abs, e)
}

// IsRelative reports whether v still carries an unresolved relative part.
func (v *Value) IsRelative() bool { return v.Rel != nil }
