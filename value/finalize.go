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

package value

import (
	"github.com/yasm/yasm-nextgen-sub002/bigint"
	"github.com/yasm/yasm-nextgen-sub002/diag"
	"github.com/yasm/yasm-nextgen-sub002/expr"
	"github.com/yasm/yasm-nextgen-sub002/loc"
	"github.com/yasm/yasm-nextgen-sub002/op"
	"github.com/yasm/yasm-nextgen-sub002/symbol"
)

// Finalize normalizes e into v's Value shape:
//
//  1. expand_equ on e.
//  2. inline references to symbols defined in absolute sections.
//  3. simplify.
//  4. scan the (now-simplified) tree for a relative-term pattern.
//  5. whatever numeric/non-relative material remains becomes v.Abs.
//  6. reject shapes that don't fit (ErrTooComplex).
func (v *Value) Finalize(e *expr.Expr, precbc loc.Location, symtab symbol.Table, sink diag.Sink) error {
	lookupEqu := func(s interface{}) (*expr.Expr, bool) {
		sym, ok := s.(*symbol.Symbol)
		if !ok || sym.Equ == nil {
			return nil, false
		}
		def, ok := sym.Equ.(*expr.Expr)
		return def, ok
	}
	expanded, err := e.ExpandEqu(lookupEqu, sink)
	if err != nil {
		return err
	}

	v.PrecBC = precbc
	inlined := inlineAbsoluteSymbols(expanded, symtab)
	simplified := inlined.Simplify(sink)
	// Fold any label-to-label distance (loc + (-1)*loc) left over from an
	// EQU or inline $$-style expression into a plain integer before
	// scanning for a relative term, so a same-section distance between two
	// already-placed labels resolves to a constant rather than being
	// mistaken for an unresolved relative reference.
	simplified = simplified.SimplifyCalcDist(loc.CalcDist)

	return v.scanForRelative(simplified, symtab)
}

// inlineAbsoluteSymbols replaces every symbol leaf defined within an
// absolute section with the integer (section start + offset), per step 2.
func inlineAbsoluteSymbols(e *expr.Expr, symtab symbol.Table) *expr.Expr {
	out := expr.New()
	inlineWalk(out, e, e.Root(), symtab)
	return out
}

func inlineWalk(dst, src *expr.Expr, pos int, symtab symbol.Table) {
	if pos < 0 {
		return
	}
	t := src.Term(pos)
	if t.Kind == expr.KindSym && t.Sym != nil && t.Sym.Defined && symtab != nil {
		if start, ok := symtab.AbsoluteSectionStart(t.Sym.Section); ok {
			dst.AppendInt(bigint.FromInt64(int64(start + t.Sym.Value)))
			return
		}
	}
	exprRebuildLeafOrOp(dst, src, pos, symtab)
}

// exprRebuildLeafOrOp copies a non-absolute-symbol term across, recursing
// through operator children so nested absolute symbols are still inlined.
func exprRebuildLeafOrOp(dst, src *expr.Expr, pos int, symtab symbol.Table) {
	t := src.Term(pos)
	if t.Kind != expr.KindOp {
		switch t.Kind {
		case expr.KindInt:
			dst.AppendInt(t.Int)
		case expr.KindFloat:
			dst.AppendFloat(t.Float)
		case expr.KindReg:
			dst.AppendReg(t.Reg)
		case expr.KindSym:
			dst.AppendSym(t.Sym)
		case expr.KindLoc:
			dst.AppendLoc(t.Loc)
		case expr.KindSubst:
			dst.AppendSubst(t.Subst)
		}
		return
	}
	for _, c := range src.Children(pos) {
		inlineWalk(dst, src, c, symtab)
	}
	_ = dst.AppendOp(t.Op, t.NChild)
}

// relCandidate describes one potential relative term found among an ADD's
// top-level children.
type relCandidate struct {
	childIdx int // index into the scanned children slice, for removal
	sym      *symbol.Symbol
	segOf    bool
	wrt      *symbol.Symbol
	rshift   int
}

func (v *Value) scanForRelative(e *expr.Expr, symtab symbol.Table) error {
	root := e.Root()
	if root < 0 {
		v.Abs = e
		return nil
	}

	var children []int
	if e.Term(root).Kind == expr.KindOp && e.Term(root).Op == op.ADD {
		children = e.Children(root)
	} else {
		children = []int{root}
	}

	var relCands []relCandidate
	var negSymIdx = map[int]*symbol.Symbol{}
	var plainSymIdx = map[int]*symbol.Symbol{}
	var keepAbs []int

	for i, c := range children {
		t := e.Term(c)
		switch {
		case t.Kind == expr.KindSym:
			plainSymIdx[i] = t.Sym
			relCands = append(relCands, relCandidate{childIdx: i, sym: t.Sym})
		case t.Kind == expr.KindOp && t.Op == op.SEG:
			kids := e.Children(c)
			if e.Term(kids[0]).Kind != expr.KindSym {
				return ErrTooComplex
			}
			relCands = append(relCands, relCandidate{childIdx: i, sym: e.Term(kids[0]).Sym, segOf: true})
		case t.Kind == expr.KindOp && t.Op == op.SHR:
			kids := e.Children(c)
			if e.Term(kids[0]).Kind != expr.KindSym || e.Term(kids[1]).Kind != expr.KindInt {
				return ErrTooComplex
			}
			count := e.Term(kids[1]).Int
			if count.Sign() < 0 {
				return ErrTooComplex
			}
			// Shift counts above MaxRShift are silently clamped to it.
			n, ok := count.Int64()
			if !ok || n > MaxRShift {
				n = MaxRShift
			}
			relCands = append(relCands, relCandidate{childIdx: i, sym: e.Term(kids[0]).Sym, rshift: int(n)})
		case t.Kind == expr.KindOp && t.Op == op.WRT:
			kids := e.Children(c)
			if e.Term(kids[0]).Kind != expr.KindSym || e.Term(kids[1]).Kind != expr.KindSym {
				return ErrTooComplex
			}
			relCands = append(relCands, relCandidate{childIdx: i, sym: e.Term(kids[0]).Sym, wrt: e.Term(kids[1]).Sym})
		case t.Kind == expr.KindOp && t.Op == op.SEGOFF:
			kids := e.Children(c)
			if e.Term(kids[0]).Kind != expr.KindSym || e.Term(kids[1]).Kind != expr.KindSym {
				return ErrTooComplex
			}
			// The offset half becomes the relative term; the segment
			// half is dropped here since Value has no dedicated field
			// for it and no object-format writer consumes it in this
			// module (see DESIGN.md).
			relCands = append(relCands, relCandidate{childIdx: i, sym: e.Term(kids[1]).Sym})
		case t.Kind == expr.KindOp && t.Op == op.MUL:
			kids := e.Children(c)
			if len(kids) == 2 {
				a, b := e.Term(kids[0]), e.Term(kids[1])
				if a.Kind == expr.KindInt && b.Kind == expr.KindSym && isNegOne(a.Int) {
					negSymIdx[i] = b.Sym
					continue
				}
				if b.Kind == expr.KindInt && a.Kind == expr.KindSym && isNegOne(b.Int) {
					negSymIdx[i] = a.Sym
					continue
				}
			}
			keepAbs = append(keepAbs, c)
		default:
			keepAbs = append(keepAbs, c)
		}
	}

	// sym_A + (-1)*sym_B pairing, per step 4's second bullet.
	if len(plainSymIdx) == 1 && len(negSymIdx) == 1 && len(relCands) == 1 {
		var symA, symB *symbol.Symbol
		for _, s := range plainSymIdx {
			symA = s
		}
		for _, s := range negSymIdx {
			symB = s
		}
		if symA.Defined && symB.Defined && symA.Section == symB.Section {
			v.addAbsInt(int64(symA.Value - symB.Value))
			for _, idx := range keepAbs {
				v.AddAbs(copyChild(e, idx))
			}
			return nil
		}
		v.Rel = symA
		v.Sub = symB
		for _, idx := range keepAbs {
			v.AddAbs(copyChild(e, idx))
		}
		return nil
	}

	// Any lone negated symbol with no partner is out of scope for this
	// shape (a bare -1 coefficient relative term); reject conservatively.
	if len(negSymIdx) > 0 {
		return ErrTooComplex
	}

	if len(relCands) > 1 {
		return ErrTooComplex
	}
	if len(relCands) == 1 {
		rc := relCands[0]
		v.Rel = rc.sym
		v.SegOf = rc.segOf
		v.WRT = rc.wrt
		v.RShift = rc.rshift
	}
	for _, idx := range keepAbs {
		// A relative symbol under any operator other than the shapes
		// recognized above (e.g. a non-integer multiplier, or buried under
		// an unrelated operator) must not silently fall into the absolute
		// part.
		if e.Contains(expr.KindSym, idx) {
			return ErrTooComplex
		}
		v.AddAbs(copyChild(e, idx))
	}
	if v.Rel == nil && len(keepAbs) == 0 && len(relCands) == 0 {
		v.Abs = expr.New()
	}
	return nil
}

// copyChild copies the subtree rooted at idx (a top-level ADD child) out
// of e into its own standalone Expr.
func copyChild(e *expr.Expr, idx int) *expr.Expr {
	out := expr.New()
	exprRebuildLeafOrOp(out, e, idx, nil)
	return out
}

func (v *Value) addAbsInt(n int64) {
	lit := expr.New()
	lit.AppendInt(bigint.FromInt64(n))
	v.AddAbs(lit)
}

func isNegOne(v bigint.Int) bool {
	n, ok := v.Int64()
	return ok && n == -1
}
