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
	"github.com/yasm/yasm-nextgen-sub002/bigint"
	"github.com/yasm/yasm-nextgen-sub002/diag"
	"github.com/yasm/yasm-nextgen-sub002/op"
)

// SimplifyOption configures Simplify.
type SimplifyOption func(*simplifyConfig)

type simplifyConfig struct {
	preserveRegMul bool
}

// WithPreserveRegMul keeps an explicit "1 * reg" multiplication intact
// instead of collapsing it to the bare register, for callers (e.g. a
// future x86 back-end) that use the identity multiply to force a SIB byte.
// Mirrors yasm's expr_level_op PSEUDO_REG_MUL escape hatch.
func WithPreserveRegMul() SimplifyOption {
	return func(c *simplifyConfig) { c.preserveRegMul = true }
}

// TransformNeg rewrites every SUB(a,b) into ADD(a, NEG(b)) and pushes NEG
// inward: NEG(SUB(a,b)) becomes ADD(NEG(a),b); nested NEGs cancel via a
// sign flag threaded through the walk; NEG of an int or float constant
// folds immediately; NEG of any other expression becomes MUL(-1, e). It
// returns a new Expr and leaves the receiver untouched.
func (e *Expr) TransformNeg() *Expr {
	out := New()
	negateNode(out, e, e.Root(), false)
	return out
}

func negateNode(dst, src *Expr, pos int, neg bool) {
	if pos < 0 {
		return
	}
	t := src.terms[pos]
	switch t.Kind {
	case KindInt:
		v := t.Int
		if neg {
			if nv, err := v.Calc(op.NEG, nil); err == nil {
				v = nv
			}
		}
		dst.AppendInt(v)
	case KindFloat:
		f := t.Float
		if neg {
			f = f.Neg()
		}
		dst.AppendFloat(f)
	case KindOp:
		switch t.Op {
		case op.NEG:
			negateNode(dst, src, src.Children(pos)[0], !neg)
		case op.SUB:
			kids := src.Children(pos)
			negateNode(dst, src, kids[0], neg)
			negateNode(dst, src, kids[1], !neg)
			_ = dst.AppendOp(op.ADD, 2)
		default:
			if neg {
				dst.AppendInt(bigint.FromInt64(-1))
			}
			for _, c := range src.Children(pos) {
				negateNode(dst, src, c, false)
			}
			_ = dst.AppendOp(t.Op, t.NChild)
			if neg {
				_ = dst.AppendOp(op.MUL, 2)
			}
		}
	default: // reg, sym, loc, subst, empty
		if neg {
			dst.AppendInt(bigint.FromInt64(-1))
		}
		dst.appendLeaf(t)
		if neg {
			_ = dst.AppendOp(op.MUL, 2)
		}
	}
}

// identity and absorbing integer constants for each associative operator.
var rightIdentity = map[op.Operator]int64{
	op.MUL: 1, op.DIV: 1, op.SIGNDIV: 1,
	op.ADD: 0, op.SUB: 0,
	op.AND: -1, op.OR: 0,
	op.SHL: 0, op.SHR: 0,
}

// levelOp applies, at the single operator position pos, the rewrites spec
// §4.2 describes: SEG(SEGOFF(seg,off)) collapses to seg; for an
// associative operator, children that are themselves the same operator
// are spliced up one level; integer-constant children are folded into one
// accumulator; and absorbing/identity constants drop the operator or the
// whole subtree. It assumes pos's children have already been simplified
// (Simplify calls it bottom-up) and returns the (possibly different) root
// index of the rewritten subtree within dst.
func levelOp(dst, src *Expr, pos int, cfg *simplifyConfig) int {
	t := src.terms[pos]
	if t.Kind != KindOp {
		return dst.rebuildFrom(src, pos)
	}

	if t.Op == op.SEG {
		kids := src.Children(pos)
		if len(kids) == 1 && src.terms[kids[0]].Kind == KindOp && src.terms[kids[0]].Op == op.SEGOFF {
			segKids := src.Children(kids[0])
			return dst.rebuildFrom(src, segKids[0])
		}
	}

	kids := src.Children(pos)

	if !op.Associative(t.Op) {
		return levelBinary(dst, src, t.Op, kids, cfg)
	}

	// Gather arguments, splicing children that are the same associative
	// operator up one level.
	var args []int
	for _, c := range kids {
		if src.terms[c].Kind == KindOp && src.terms[c].Op == t.Op {
			args = append(args, src.Children(c)...)
		} else {
			args = append(args, c)
		}
	}

	var acc *bigint.Int
	var nonConst []int
	hasReg := false
	for _, a := range args {
		if src.terms[a].Kind == KindInt {
			v := src.terms[a].Int
			if acc == nil {
				acc = &v
			} else {
				nv, err := v.Calc(t.Op, acc)
				if err == nil {
					acc = &nv
				}
			}
		} else {
			if src.terms[a].Kind == KindReg {
				hasReg = true
			}
			nonConst = append(nonConst, a)
		}
	}

	// Absorbing constants short-circuit everything else.
	if acc != nil {
		switch {
		case t.Op == op.MUL && acc.Sign() == 0,
			t.Op == op.AND && acc.Sign() == 0,
			t.Op == op.LAND && acc.Sign() == 0:
			return dst.AppendInt(bigint.Zero)
		case t.Op == op.OR && isAllOnes(*acc):
			return dst.AppendInt(*acc)
		}
	}

	keepAcc := acc != nil
	if acc != nil && len(nonConst) > 0 {
		if id, ok := identityFor(t.Op); ok && acc.Equal(id) {
			if t.Op == op.MUL && id.Sign() == 1 && hasReg && cfg.preserveRegMul {
				keepAcc = true
			} else {
				keepAcc = false
			}
		}
	}

	for _, c := range nonConst {
		dst.rebuildFrom(src, c)
	}
	n := len(nonConst)
	if keepAcc {
		dst.AppendInt(*acc)
		n++
	}
	if n == 0 {
		return dst.AppendInt(bigint.Zero)
	}
	if n == 1 {
		return dst.Root()
	}
	_ = dst.AppendOp(t.Op, n)
	return dst.Root()
}

func levelBinary(dst, src *Expr, o op.Operator, kids []int, cfg *simplifyConfig) int {
	if len(kids) == 1 {
		// unary operator: just fold a constant operand, otherwise copy.
		if src.terms[kids[0]].Kind == KindInt {
			if v, err := src.terms[kids[0]].Int.Calc(o, nil); err == nil {
				return dst.AppendInt(v)
			}
		}
		dst.rebuildFrom(src, kids[0])
		_ = dst.AppendOp(o, 1)
		return dst.Root()
	}
	lhs, rhs := kids[0], kids[1]
	lc, lok := constOf(src, lhs)
	rc, rok := constOf(src, rhs)
	if lok && rok {
		if v, err := lc.Calc(o, &rc); err == nil {
			return dst.AppendInt(v)
		}
	}
	if id, ok := identityFor(o); ok && rok && rc.Equal(id) {
		return dst.rebuildFrom(src, lhs)
	}
	dst.rebuildFrom(src, lhs)
	dst.rebuildFrom(src, rhs)
	_ = dst.AppendOp(o, 2)
	return dst.Root()
}

func constOf(e *Expr, pos int) (bigint.Int, bool) {
	if e.terms[pos].Kind == KindInt {
		return e.terms[pos].Int, true
	}
	return bigint.Int{}, false
}

func identityFor(o op.Operator) (bigint.Int, bool) {
	n, ok := rightIdentity[o]
	if !ok {
		return bigint.Int{}, false
	}
	return bigint.FromInt64(n), true
}

func isAllOnes(v bigint.Int) bool {
	neg1 := bigint.FromInt64(-1)
	return v.Equal(neg1)
}

// Simplify runs TransformNeg followed by a bottom-up LevelOp pass over
// every operator, and returns the simplified Expr (the receiver is left
// untouched).
func (e *Expr) Simplify(sink diag.Sink, opts ...SimplifyOption) *Expr {
	cfg := &simplifyConfig{}
	for _, o := range opts {
		o(cfg)
	}
	neg := e.TransformNeg()
	out := New()
	simplifyWalk(out, neg, neg.Root(), cfg)
	return out
}

// simplifyWalk rebuilds the subtree rooted at pos into dst bottom-up,
// leveling every operator as its children complete.
func simplifyWalk(dst, src *Expr, pos int, cfg *simplifyConfig) int {
	if pos < 0 {
		return -1
	}
	t := src.terms[pos]
	if t.Kind != KindOp {
		return dst.rebuildFrom(src, pos)
	}
	// Build a fully-leveled scratch copy of this node's children first,
	// then level this node against that scratch copy.
	scratch := New()
	for _, c := range src.Children(pos) {
		simplifyWalk(scratch, src, c, cfg)
	}
	scratch.appendOpUnsafe(t.Op, t.NChild)
	return levelOp(dst, scratch, scratch.Root(), cfg)
}

// appendOpUnsafe pushes an operator term without revalidating arity; used
// internally by simplifyWalk, which has already built exactly nchild
// top-level children in the scratch expr.
func (e *Expr) appendOpUnsafe(o op.Operator, nchild int) {
	for i := range e.terms {
		e.terms[i].Depth++
	}
	e.terms = append(e.terms, Term{Kind: KindOp, Op: o, NChild: nchild, Depth: 0})
}
