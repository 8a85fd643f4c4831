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

// Package expr implements Expr: a polish-flattened tree of operators over
// integers, floats, registers, symbols and locations, with algebraic
// simplification, negation normalization, operator leveling, and
// extraction of segment/WRT sub-expressions.
//
// An Expr is a single ordered slice of Term, each carrying a Depth. For an
// operator term at depth d, its children are the immediately earlier
// non-empty terms of depth d+1 whose own subtree lies contiguously before
// it — the flat "polish array" layout spec.md §3.3/§9 recommends for
// performance. Most structural rewrites in this package (TransformNeg,
// Simplify, Substitute, ExpandEqu, the Extract* family) are implemented by
// walking the existing flat array read-only with Children/subtreeStart and
// replaying the walk through appendLeaf/AppendOp into a fresh Expr — this
// keeps the tricky depth bookkeeping in one place (AppendOp) instead of
// duplicating it in every rewrite.
package expr

import (
	"github.com/yasm/yasm-nextgen-sub002/arch"
	"github.com/yasm/yasm-nextgen-sub002/bigint"
	"github.com/yasm/yasm-nextgen-sub002/diag"
	"github.com/yasm/yasm-nextgen-sub002/loc"
	"github.com/yasm/yasm-nextgen-sub002/op"
	"github.com/yasm/yasm-nextgen-sub002/symbol"

	"github.com/pkg/errors"
)

// Kind identifies what a Term holds.
type Kind int

const (
	KindEmpty Kind = iota
	KindInt
	KindFloat
	KindReg
	KindSym
	KindLoc
	KindSubst
	KindOp
)

// Term is one node of the flattened tree: exactly one of its payload
// fields is meaningful, selected by Kind.
type Term struct {
	Kind  Kind
	Depth int

	Int   bigint.Int
	Float *Float
	Reg   arch.Register
	Sym   *symbol.Symbol
	Loc   loc.Location
	Subst int

	Op     op.Operator
	NChild int

	Source diag.Source
}

// Expr is a sequence of terms in postfix (children-before-parent) order.
// The last non-empty term is the root.
type Expr struct {
	terms []Term
}

// New returns an empty Expr.
func New() *Expr { return &Expr{} }

// Len returns the number of terms, including any empty sentinels.
func (e *Expr) Len() int { return len(e.terms) }

// Term returns a copy of the term at i.
func (e *Expr) Term(i int) Term { return e.terms[i] }

// Root returns the index of the root term (the last one), or -1 if empty.
func (e *Expr) Root() int {
	if len(e.terms) == 0 {
		return -1
	}
	return len(e.terms) - 1
}

// Clone returns an independent copy of e.
func (e *Expr) Clone() *Expr {
	out := &Expr{terms: make([]Term, len(e.terms))}
	copy(out.terms, e.terms)
	return out
}

func (e *Expr) appendLeaf(t Term) int {
	t.Depth = 0
	e.terms = append(e.terms, t)
	return len(e.terms) - 1
}

// AppendInt appends an integer-constant leaf.
func (e *Expr) AppendInt(v bigint.Int) int { return e.appendLeaf(Term{Kind: KindInt, Int: v}) }

// AppendFloat appends a float-constant leaf.
func (e *Expr) AppendFloat(v *Float) int { return e.appendLeaf(Term{Kind: KindFloat, Float: v}) }

// AppendReg appends a register-reference leaf.
func (e *Expr) AppendReg(r arch.Register) int { return e.appendLeaf(Term{Kind: KindReg, Reg: r}) }

// AppendSym appends a symbol-reference leaf.
func (e *Expr) AppendSym(s *symbol.Symbol) int { return e.appendLeaf(Term{Kind: KindSym, Sym: s}) }

// AppendLoc appends a location-reference leaf.
func (e *Expr) AppendLoc(l loc.Location) int { return e.appendLeaf(Term{Kind: KindLoc, Loc: l}) }

// AppendSubst appends a subst placeholder leaf with the given index.
func (e *Expr) AppendSubst(i int) int { return e.appendLeaf(Term{Kind: KindSubst, Subst: i}) }

// AppendOp pushes an operator consuming the last nchild top-level terms as
// its children:
//   - nchild == 0 is rejected.
//   - nchild == 1 with a non-unary op is treated as an identity: the op is
//     dropped and the single operand is left as the new top term.
//   - nchild == 2 with a unary op is rejected.
//   - nchild >= 3 with a non-associative op is rejected.
//
// Otherwise, every existing term's Depth is incremented by one and the new
// operator term is pushed at depth 0.
func (e *Expr) AppendOp(o op.Operator, nchild int) error {
	switch {
	case nchild == 0:
		return errors.Errorf("expr: AppendOp(%s): nchild must be >= 1", o)
	case nchild == 1:
		if !op.Unary(o) {
			return nil // identity: drop the operator, keep the lone operand
		}
	case nchild == 2:
		if op.Unary(o) {
			return errors.Errorf("expr: AppendOp(%s): unary operator cannot take 2 children", o)
		}
	default: // nchild >= 3
		if !op.Associative(o) {
			return errors.Errorf("expr: AppendOp(%s): non-associative operator cannot take %d children", o, nchild)
		}
	}
	for i := range e.terms {
		e.terms[i].Depth++
	}
	e.terms = append(e.terms, Term{Kind: KindOp, Op: o, NChild: nchild, Depth: 0})
	return nil
}

// subtreeStart returns the leftmost index of the subtree rooted at pos.
func (e *Expr) subtreeStart(pos int) int {
	t := e.terms[pos]
	if t.Kind != KindOp {
		return pos
	}
	end := pos - 1
	for i := 0; i < t.NChild; i++ {
		end = e.subtreeStart(end) - 1
	}
	return end + 1
}

// Children returns the root index of each direct child of the operator at
// pos, in left-to-right (original argument) order.
func (e *Expr) Children(pos int) []int {
	t := e.terms[pos]
	if t.Kind != KindOp {
		return nil
	}
	children := make([]int, t.NChild)
	end := pos - 1
	for i := t.NChild - 1; i >= 0; i-- {
		children[i] = end
		end = e.subtreeStart(end) - 1
	}
	return children
}

// Contains reports whether any leaf in the subtree rooted at pos has the
// given Kind.
func (e *Expr) Contains(kind Kind, pos int) bool {
	t := e.terms[pos]
	if t.Kind == KindOp {
		for _, c := range e.Children(pos) {
			if e.Contains(kind, c) {
				return true
			}
		}
		return false
	}
	return t.Kind == kind
}

// IsConstant reports whether the subtree rooted at pos is a purely
// numeric (integer or float) constant expression, with no register,
// symbol, location or subst leaves. Supplemental helper grounded in
// original_source/libyasmx/Expr.cpp's is_relative-style classification
// queries (SPEC_FULL.md §4), used internally by Value.OutputBasic and
// exposed for tests.
func (e *Expr) IsConstant(pos int) bool {
	t := e.terms[pos]
	switch t.Kind {
	case KindInt, KindFloat:
		return true
	case KindOp:
		for _, c := range e.Children(pos) {
			if !e.IsConstant(c) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Combine builds a single new Expr applying operator o over the roots of
// each of exprs, in order (e.g. Combine(op.ADD, a, b) returns ADD(a,b)).
// It is the public counterpart of rebuildFrom for callers outside this
// package (e.g. value.Value.AddAbs) that need to splice whole
// already-built expressions together without reaching into Expr's
// internals.
func Combine(o op.Operator, exprs ...*Expr) *Expr {
	out := New()
	for _, e := range exprs {
		if e == nil || e.Len() == 0 {
			continue
		}
		out.rebuildFrom(e, e.Root())
	}
	n := countNonEmpty(exprs)
	if n <= 1 {
		return out
	}
	_ = out.AppendOp(o, n)
	return out
}

func countNonEmpty(exprs []*Expr) int {
	n := 0
	for _, e := range exprs {
		if e != nil && e.Len() != 0 {
			n++
		}
	}
	return n
}

// rebuildFrom copies the subtree rooted at idx in src into e (dst), in
// postorder, via appendLeaf/AppendOp so Depth bookkeeping stays correct.
// It returns the index of the copied root in e.
func (e *Expr) rebuildFrom(src *Expr, idx int) int {
	t := src.terms[idx]
	if t.Kind != KindOp {
		return e.appendLeaf(t)
	}
	for _, c := range src.Children(idx) {
		e.rebuildFrom(src, c)
	}
	// AppendOp never fails here: arity/associativity were already valid
	// in src, and copying preserves them exactly.
	_ = e.AppendOp(t.Op, t.NChild)
	return e.Root()
}
