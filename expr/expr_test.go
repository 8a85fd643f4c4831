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
	"github.com/yasm/yasm-nextgen-sub002/op"
	"github.com/yasm/yasm-nextgen-sub002/symbol"
)

func intTerm(t *testing.T, e *Expr, pos int) bigint.Int {
	t.Helper()
	term := e.Term(pos)
	if term.Kind != KindInt {
		t.Fatalf("term %d: got Kind %v, want KindInt", pos, term.Kind)
	}
	return term.Int
}

func TestAppendOpArityRules(t *testing.T) {
	e := New()
	e.AppendInt(bigint.FromInt64(1))
	if err := e.AppendOp(op.ADD, 0); err == nil {
		t.Fatal("AppendOp with nchild=0 should fail")
	}
	if err := e.AppendOp(op.NEG, 2); err == nil {
		t.Fatal("AppendOp(NEG, 2) should fail: unary op cannot take 2 children")
	}
	if err := e.AppendOp(op.SUB, 3); err == nil {
		t.Fatal("AppendOp(SUB, 3) should fail: non-associative op cannot take 3 children")
	}
	// nchild==1 with a non-unary op is a dropped identity: root stays the
	// lone int term.
	if err := e.AppendOp(op.ADD, 1); err != nil {
		t.Fatalf("AppendOp(ADD,1) identity drop: %v", err)
	}
	if e.Len() != 1 {
		t.Fatalf("identity drop should not push a term, got Len()=%d", e.Len())
	}
}

// mustOp appends o with the given arity and fails the test on error.
func mustOp(t *testing.T, e *Expr, o op.Operator, n int) {
	t.Helper()
	if err := e.AppendOp(o, n); err != nil {
		t.Fatalf("AppendOp(%v,%d): %v", o, n, err)
	}
}

// ADD(a, ADD(b, ADD(c, d))) should flatten to one 4-child ADD.
func TestSimplifyFlattensNestedAssociative(t *testing.T) {
	a := &symbol.Symbol{Name: "a"}
	b := &symbol.Symbol{Name: "b"}
	c := &symbol.Symbol{Name: "c"}
	d := &symbol.Symbol{Name: "d"}

	inner := New()
	inner.AppendSym(c)
	inner.AppendSym(d)
	mustOp(t, inner, op.ADD, 2) // ADD(c,d)

	mid := New()
	mid.AppendSym(b)
	mid.rebuildFrom(inner, inner.Root())
	mustOp(t, mid, op.ADD, 2) // ADD(b, ADD(c,d))

	top := New()
	top.AppendSym(a)
	top.rebuildFrom(mid, mid.Root())
	mustOp(t, top, op.ADD, 2) // ADD(a, ADD(b, ADD(c,d)))

	simplified := top.Simplify(nil)
	root := simplified.Root()
	rt := simplified.Term(root)
	if rt.Kind != KindOp || rt.Op != op.ADD {
		t.Fatalf("root: got %+v, want a single ADD operator", rt)
	}
	if rt.NChild != 4 {
		t.Fatalf("NChild = %d, want 4 (flattened)", rt.NChild)
	}
	kids := simplified.Children(root)
	var gotNames []string
	for _, k := range kids {
		if simplified.Term(k).Kind != KindSym {
			t.Fatalf("child %d: Kind %v, want KindSym", k, simplified.Term(k).Kind)
		}
		gotNames = append(gotNames, simplified.Term(k).Sym.Name)
	}
	want := []string{"a", "b", "c", "d"}
	for i, w := range want {
		if gotNames[i] != w {
			t.Fatalf("child order = %v, want %v", gotNames, want)
		}
	}
}

// MUL(1, MUL(2, ADD(3, 4))) should simplify to the constant 14.
func TestSimplifyConstantFold(t *testing.T) {
	inner := New()
	inner.AppendInt(bigint.FromInt64(3))
	inner.AppendInt(bigint.FromInt64(4))
	mustOp(t, inner, op.ADD, 2)

	mid := New()
	mid.AppendInt(bigint.FromInt64(2))
	mid.rebuildFrom(inner, inner.Root())
	mustOp(t, mid, op.MUL, 2)

	top := New()
	top.AppendInt(bigint.FromInt64(1))
	top.rebuildFrom(mid, mid.Root())
	mustOp(t, top, op.MUL, 2)

	simplified := top.Simplify(nil)
	v := intTerm(t, simplified, simplified.Root())
	got, ok := v.Int64()
	if !ok || got != 14 {
		t.Fatalf("got %v (ok=%v), want 14", v, ok)
	}
}

// ADD(MUL(5, a, 0), 1) should simplify to the constant 1 (the MUL
// absorbs to 0, and 0 is dropped as an ADD identity).
func TestSimplifyAbsorbingZero(t *testing.T) {
	a := &symbol.Symbol{Name: "a"}

	mul := New()
	mul.AppendInt(bigint.FromInt64(5))
	mul.AppendSym(a)
	mul.AppendInt(bigint.Zero)
	mustOp(t, mul, op.MUL, 3)

	top := New()
	top.rebuildFrom(mul, mul.Root())
	top.AppendInt(bigint.FromInt64(1))
	mustOp(t, top, op.ADD, 2)

	simplified := top.Simplify(nil)
	v := intTerm(t, simplified, simplified.Root())
	got, ok := v.Int64()
	if !ok || got != 1 {
		t.Fatalf("got %v (ok=%v), want 1", v, ok)
	}
}

// SEG(SEGOFF(ADD(1,2), 3)) should simplify to ADD(1,2) (the segment half).
func TestSimplifySegOfSegOff(t *testing.T) {
	add := New()
	add.AppendInt(bigint.FromInt64(1))
	add.AppendInt(bigint.FromInt64(2))
	mustOp(t, add, op.ADD, 2)

	segoff := New()
	segoff.rebuildFrom(add, add.Root())
	segoff.AppendInt(bigint.FromInt64(3))
	mustOp(t, segoff, op.SEGOFF, 2)

	top := New()
	top.rebuildFrom(segoff, segoff.Root())
	mustOp(t, top, op.SEG, 1)

	simplified := top.Simplify(nil)
	// SEG(SEGOFF(ADD(1,2),3)) -> seg half -> ADD(1,2) -> constant fold -> 3.
	v := intTerm(t, simplified, simplified.Root())
	got, ok := v.Int64()
	if !ok || got != 3 {
		t.Fatalf("got %v (ok=%v), want 3", v, ok)
	}
}

func TestTransformNegDoubleNegation(t *testing.T) {
	a := &symbol.Symbol{Name: "a"}
	e := New()
	e.AppendSym(a)
	mustOp(t, e, op.NEG, 1)
	mustOp(t, e, op.NEG, 1)

	out := e.TransformNeg()
	root := out.Root()
	rt := out.Term(root)
	if rt.Kind != KindSym || rt.Sym != a {
		t.Fatalf("NEG(NEG(a)) should transform to bare a, got %+v", rt)
	}
}

func TestTransformNegSubBecomesAddNeg(t *testing.T) {
	e := New()
	e.AppendInt(bigint.FromInt64(10))
	e.AppendInt(bigint.FromInt64(3))
	mustOp(t, e, op.SUB, 2)

	out := e.Simplify(nil)
	v := intTerm(t, out, out.Root())
	got, ok := v.Int64()
	if !ok || got != 7 {
		t.Fatalf("10 - 3 simplified = %v (ok=%v), want 7", v, ok)
	}
}

func TestContains(t *testing.T) {
	a := &symbol.Symbol{Name: "a"}
	e := New()
	e.AppendSym(a)
	e.AppendInt(bigint.FromInt64(1))
	mustOp(t, e, op.ADD, 2)

	if !e.Contains(KindSym, e.Root()) {
		t.Fatal("expected Contains(KindSym) == true")
	}
	if e.Contains(KindFloat, e.Root()) {
		t.Fatal("expected Contains(KindFloat) == false")
	}
}

func TestIsConstant(t *testing.T) {
	e := New()
	e.AppendInt(bigint.FromInt64(1))
	e.AppendInt(bigint.FromInt64(2))
	mustOp(t, e, op.ADD, 2)
	if !e.IsConstant(e.Root()) {
		t.Fatal("1+2 should be constant")
	}

	a := &symbol.Symbol{Name: "a"}
	e2 := New()
	e2.AppendSym(a)
	e2.AppendInt(bigint.FromInt64(2))
	mustOp(t, e2, op.ADD, 2)
	if e2.IsConstant(e2.Root()) {
		t.Fatal("a+2 should not be constant")
	}
}
