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

import "github.com/yasm/yasm-nextgen-sub002/op"

// ExtractLHS removes the root operator's first child from the expression,
// returning it as its own Expr and the remainder (the original operator
// re-applied to the remaining children) as the second result, peeling one
// leading term off an expression at a time. ok is false if the root is
// not an operator or has fewer than 2 children.
func (e *Expr) ExtractLHS() (lhs *Expr, rest *Expr, ok bool) {
	root := e.Root()
	if root < 0 || e.terms[root].Kind != KindOp {
		return nil, nil, false
	}
	kids := e.Children(root)
	if len(kids) < 2 {
		return nil, nil, false
	}
	lhs = New()
	lhs.rebuildFrom(e, kids[0])

	rest = New()
	for _, c := range kids[1:] {
		rest.rebuildFrom(e, c)
	}
	_ = rest.AppendOp(e.terms[root].Op, len(kids)-1)
	return lhs, rest, true
}

// ExtractSegOff reports whether the root is SEGOFF(seg,off) and, if so,
// returns the offset half (the part the core treats as the numeric
// Value) and the segment half.
func (e *Expr) ExtractSegOff() (off *Expr, seg *Expr, ok bool) {
	root := e.Root()
	if root < 0 || e.terms[root].Kind != KindOp || e.terms[root].Op != op.SEGOFF {
		return nil, nil, false
	}
	kids := e.Children(root)
	seg = New()
	seg.rebuildFrom(e, kids[0])
	off = New()
	off.rebuildFrom(e, kids[1])
	return off, seg, true
}

// ExtractDeepSegOff searches the whole expression (not just the root) for
// a SEGOFF term and, if found, extracts it in place: the matched SEGOFF
// node is replaced by its offset half, and the segment half is returned
// separately. This handles a SEG:OFF pair nested under an outer operator,
// e.g. ADD(SEGOFF(seg,off), 4).
func (e *Expr) ExtractDeepSegOff() (rest *Expr, seg *Expr, ok bool) {
	pos, found := findOp(e, e.Root(), op.SEGOFF)
	if !found {
		return nil, nil, false
	}
	kids := e.Children(pos)
	seg = New()
	seg.rebuildFrom(e, kids[0])

	rest = New()
	replaceWith(rest, e, e.Root(), pos, kids[1])
	return rest, seg, true
}

// ExtractWRT reports whether the root is WRT(base,modifier) and, if so,
// returns the base expression (what the core treats as the numeric
// Value) and the modifier half.
func (e *Expr) ExtractWRT() (base *Expr, modifier *Expr, ok bool) {
	root := e.Root()
	if root < 0 || e.terms[root].Kind != KindOp || e.terms[root].Op != op.WRT {
		return nil, nil, false
	}
	kids := e.Children(root)
	base = New()
	base.rebuildFrom(e, kids[0])
	modifier = New()
	modifier.rebuildFrom(e, kids[1])
	return base, modifier, true
}

// findOp searches the subtree rooted at pos, preorder, for the first
// operator term with operator o.
func findOp(e *Expr, pos int, o op.Operator) (int, bool) {
	if pos < 0 || e.terms[pos].Kind != KindOp {
		return 0, false
	}
	if e.terms[pos].Op == o {
		return pos, true
	}
	for _, c := range e.Children(pos) {
		if p, found := findOp(e, c, o); found {
			return p, true
		}
	}
	return 0, false
}

// replaceWith rebuilds the subtree rooted at pos into dst, substituting
// the subtree rooted at target with the subtree rooted at with (all
// indices within src).
func replaceWith(dst, src *Expr, pos, target, with int) int {
	if pos == target {
		return dst.rebuildFrom(src, with)
	}
	t := src.terms[pos]
	if t.Kind != KindOp {
		return dst.rebuildFrom(src, pos)
	}
	for _, c := range src.Children(pos) {
		replaceWith(dst, src, c, target, with)
	}
	_ = dst.AppendOp(t.Op, t.NChild)
	return dst.Root()
}
