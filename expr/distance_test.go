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
	"github.com/yasm/yasm-nextgen-sub002/loc"
	"github.com/yasm/yasm-nextgen-sub002/op"
)

// fakeBytecode is a minimal bytecode.Bytecode for tests: just an assigned
// absolute offset.
type fakeBytecode struct{ offset int }

func (f *fakeBytecode) Offset() (int, bool) { return f.offset, true }
func (f *fakeBytecode) Len() int            { return 0 }

// ADD(locB, MUL(-1, locA)) with locA at 10 and locB at 26 should fold to
// the plain integer 16.
func TestSimplifyCalcDistFoldsTwoChildAdd(t *testing.T) {
	bcA := &fakeBytecode{offset: 10}
	bcB := &fakeBytecode{offset: 26}

	e := New()
	e.AppendLoc(loc.Location{Bytecode: bcB})
	e.AppendInt(bigint.FromInt64(-1))
	e.AppendLoc(loc.Location{Bytecode: bcA})
	mustOp(t, e, op.MUL, 2)
	mustOp(t, e, op.ADD, 2)

	out := e.SimplifyCalcDist(loc.CalcDist)
	root := out.Root()
	if root < 0 || out.Term(root).Kind != KindInt {
		t.Fatalf("root kind = %v, want a folded KindInt", out.Term(root).Kind)
	}
	if got, _ := out.Term(root).Int.Int64(); got != 16 {
		t.Fatalf("folded distance = %d, want 16", got)
	}
}

// An n-ary ADD (as Simplify's associative leveling would produce from
// a + locB + (-1)*locA) should still fold the loc/neg-loc pair, leaving
// the unrelated term untouched.
func TestSimplifyCalcDistFoldsPairWithinNaryAdd(t *testing.T) {
	bcA := &fakeBytecode{offset: 10}
	bcB := &fakeBytecode{offset: 26}

	e := New()
	e.AppendInt(bigint.FromInt64(5))
	e.AppendLoc(loc.Location{Bytecode: bcB})
	e.AppendInt(bigint.FromInt64(-1))
	e.AppendLoc(loc.Location{Bytecode: bcA})
	mustOp(t, e, op.MUL, 2)
	mustOp(t, e, op.ADD, 3)

	out := e.SimplifyCalcDist(loc.CalcDist)
	root := out.Root()
	if root < 0 || out.Term(root).Kind != KindOp || out.Term(root).Op != op.ADD {
		t.Fatalf("root = %+v, want a 2-child ADD(5, 16)", out.Term(root))
	}
	var gotInts []int64
	for _, c := range out.Children(root) {
		ct := out.Term(c)
		if ct.Kind != KindInt {
			t.Fatalf("child kind = %v, want KindInt", ct.Kind)
		}
		n, _ := ct.Int.Int64()
		gotInts = append(gotInts, n)
	}
	if len(gotInts) != 2 || !containsInt64(gotInts, 5) || !containsInt64(gotInts, 16) {
		t.Fatalf("children = %v, want [5 16] in some order", gotInts)
	}
}

// A lone location with no matching negated partner must be left alone
// rather than folded or dropped.
func TestSimplifyCalcDistLeavesUnpairedLocAlone(t *testing.T) {
	bc := &fakeBytecode{offset: 10}

	e := New()
	e.AppendInt(bigint.FromInt64(3))
	e.AppendLoc(loc.Location{Bytecode: bc})
	mustOp(t, e, op.ADD, 2)

	out := e.SimplifyCalcDist(loc.CalcDist)
	root := out.Root()
	if root < 0 || out.Term(root).Kind != KindOp || out.Term(root).Op != op.ADD || out.Term(root).NChild != 2 {
		t.Fatalf("root = %+v, want an untouched 2-child ADD", out.Term(root))
	}
	var sawLoc bool
	for _, c := range out.Children(root) {
		if out.Term(c).Kind == KindLoc {
			sawLoc = true
		}
	}
	if !sawLoc {
		t.Fatalf("expected the unpaired KindLoc child to survive")
	}
}

// If the two bytecodes have no assigned offset, CalcDist fails and the
// pair must be left unfolded rather than silently treated as zero.
func TestSimplifyCalcDistLeavesUnresolvedPairAlone(t *testing.T) {
	e := New()
	e.AppendLoc(loc.Location{Bytecode: nil})
	e.AppendInt(bigint.FromInt64(-1))
	e.AppendLoc(loc.Location{Bytecode: nil})
	mustOp(t, e, op.MUL, 2)
	mustOp(t, e, op.ADD, 2)

	out := e.SimplifyCalcDist(loc.CalcDist)
	root := out.Root()
	if root < 0 || out.Term(root).Kind != KindOp || out.Term(root).Op != op.ADD {
		t.Fatalf("root = %+v, want the ADD left unfolded", out.Term(root))
	}
}

func containsInt64(s []int64, v int64) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
