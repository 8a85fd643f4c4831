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
	"testing"

	"github.com/yasm/yasm-nextgen-sub002/bigint"
	"github.com/yasm/yasm-nextgen-sub002/diag"
	"github.com/yasm/yasm-nextgen-sub002/op"
	"github.com/yasm/yasm-nextgen-sub002/symbol"
)

// a := b+1; b := 2*c; c := a-3 should be rejected as a circular EQU chain.
func TestExpandEquDetectsCycle(t *testing.T) {
	symA := &symbol.Symbol{Name: "a"}
	symB := &symbol.Symbol{Name: "b"}
	symC := &symbol.Symbol{Name: "c"}

	equA := New() // b + 1
	equA.AppendSym(symB)
	equA.AppendInt(bigint.FromInt64(1))
	mustOp(t, equA, op.ADD, 2)

	equB := New() // 2 * c
	equB.AppendInt(bigint.FromInt64(2))
	equB.AppendSym(symC)
	mustOp(t, equB, op.MUL, 2)

	equC := New() // a - 3
	equC.AppendSym(symA)
	equC.AppendInt(bigint.FromInt64(3))
	mustOp(t, equC, op.SUB, 2)

	defs := map[*symbol.Symbol]*Expr{symA: equA, symB: equB, symC: equC}
	lookup := func(s interface{}) (*Expr, bool) {
		sym, ok := s.(*symbol.Symbol)
		if !ok {
			return nil, false
		}
		e, ok := defs[sym]
		return e, ok
	}

	start := New()
	start.AppendSym(symA)

	log := &diag.Log{}
	_, err := start.ExpandEqu(lookup, log)
	if err != ErrCircularEqu {
		t.Fatalf("ExpandEqu: got err %v, want ErrCircularEqu", err)
	}
	if !log.HasErrors() {
		t.Fatal("expected a reported diagnostic for the circular EQU chain")
	}
}

func TestExpandEquNonCircular(t *testing.T) {
	symX := &symbol.Symbol{Name: "x"}
	equX := New()
	equX.AppendInt(bigint.FromInt64(5))
	equX.AppendInt(bigint.FromInt64(2))
	mustOp(t, equX, op.ADD, 2) // x := 5+2

	defs := map[*symbol.Symbol]*Expr{symX: equX}
	lookup := func(s interface{}) (*Expr, bool) {
		sym, ok := s.(*symbol.Symbol)
		if !ok {
			return nil, false
		}
		e, ok := defs[sym]
		return e, ok
	}

	start := New()
	start.AppendSym(symX)
	start.AppendInt(bigint.FromInt64(1))
	mustOp(t, start, op.ADD, 2) // x + 1

	expanded, err := start.ExpandEqu(lookup, nil)
	if err != nil {
		t.Fatalf("ExpandEqu: %v", err)
	}
	simplified := expanded.Simplify(nil)
	v := intTerm(t, simplified, simplified.Root())
	got, ok := v.Int64()
	if !ok || got != 8 {
		t.Fatalf("(5+2)+1 simplified = %v (ok=%v), want 8", v, ok)
	}
}

func TestSubstitute(t *testing.T) {
	tmpl := New()
	tmpl.AppendSubst(0)
	tmpl.AppendSubst(1)
	mustOp(t, tmpl, op.ADD, 2)

	arg0 := New()
	arg0.AppendInt(bigint.FromInt64(3))
	arg1 := New()
	arg1.AppendInt(bigint.FromInt64(4))

	out := tmpl.Substitute([]*Expr{arg0, arg1})
	simplified := out.Simplify(nil)
	v := intTerm(t, simplified, simplified.Root())
	got, ok := v.Int64()
	if !ok || got != 7 {
		t.Fatalf("substitute(0,1) + simplify = %v (ok=%v), want 7", v, ok)
	}
}

func TestExtractWRT(t *testing.T) {
	base := New()
	base.AppendInt(bigint.FromInt64(42))
	sym := &symbol.Symbol{Name: "modifier"}
	modExpr := New()
	modExpr.AppendSym(sym)

	top := New()
	top.rebuildFrom(base, base.Root())
	top.rebuildFrom(modExpr, modExpr.Root())
	mustOp(t, top, op.WRT, 2)

	gotBase, gotMod, ok := top.ExtractWRT()
	if !ok {
		t.Fatal("ExtractWRT should succeed on a WRT root")
	}
	v := intTerm(t, gotBase, gotBase.Root())
	got, _ := v.Int64()
	if got != 42 {
		t.Fatalf("base = %v, want 42", got)
	}
	if gotMod.Term(gotMod.Root()).Sym != sym {
		t.Fatal("modifier half did not round-trip the symbol")
	}
}

func TestExtractDeepSegOff(t *testing.T) {
	segoff := New()
	segSym := &symbol.Symbol{Name: "seg"}
	segoff.AppendSym(segSym)
	segoff.AppendInt(bigint.FromInt64(0x10))
	mustOp(t, segoff, op.SEGOFF, 2)

	top := New()
	top.rebuildFrom(segoff, segoff.Root())
	top.AppendInt(bigint.FromInt64(4))
	mustOp(t, top, op.ADD, 2) // ADD(SEGOFF(seg,0x10), 4)

	rest, seg, ok := top.ExtractDeepSegOff()
	if !ok {
		t.Fatal("ExtractDeepSegOff should find the nested SEGOFF")
	}
	if seg.Term(seg.Root()).Sym != segSym {
		t.Fatal("segment half did not round-trip the symbol")
	}
	simplified := rest.Simplify(nil)
	v := intTerm(t, simplified, simplified.Root())
	got, _ := v.Int64()
	if got != 0x14 {
		t.Fatalf("rest simplified = %v, want 0x14 (0x10+4)", got)
	}
}
