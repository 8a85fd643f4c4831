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

package asmtext

import (
	"testing"

	"github.com/yasm/yasm-nextgen-sub002/diag"
	"github.com/yasm/yasm-nextgen-sub002/expr"
	"github.com/yasm/yasm-nextgen-sub002/symbol"
)

type fakeTable struct {
	syms map[string]*symbol.Symbol
}

func (t *fakeTable) Lookup(name string) (*symbol.Symbol, bool) {
	s, ok := t.syms[name]
	return s, ok
}
func (t *fakeTable) Anonymous() *symbol.Symbol { return &symbol.Symbol{} }
func (t *fakeTable) AbsoluteSectionStart(string) (int, bool) { return 0, false }

func evalInt(t *testing.T, src string) int64 {
	t.Helper()
	r := New("test", []byte(src), nil, &fakeTable{syms: map[string]*symbol.Symbol{}})
	e, err := r.Read()
	if err != nil {
		t.Fatalf("Read(%q): %v", src, err)
	}
	simplified := e.Simplify(diag.Discard)
	root := simplified.Root()
	if root < 0 {
		t.Fatalf("Read(%q): empty result", src)
	}
	term := simplified.Term(root)
	n, ok := term.Int.Int64()
	if !ok {
		t.Fatalf("Read(%q): result not a plain int64: %+v", src, term)
	}
	return n
}

func TestReadArithmeticPrecedence(t *testing.T) {
	cases := map[string]int64{
		"1 + 2 * 3":     7,
		"(1 + 2) * 3":   9,
		"10 - 3 - 2":    5,
		"2 * 3 + 4 * 5": 26,
		"-5 + 3":        -2,
		"~0":            -1,
		"1 << 4":        16,
		"1 == 1":        1,
		"1 != 1":        0,
		"2 && 0":        0,
		"1 || 0":        1,
	}
	for src, want := range cases {
		if got := evalInt(t, src); got != want {
			t.Errorf("evalInt(%q) = %d, want %d", src, got, want)
		}
	}
}

func TestReadUndefinedSymbolBecomesLeaf(t *testing.T) {
	r := New("test", []byte("label + 1"), nil, &fakeTable{syms: map[string]*symbol.Symbol{}})
	e, err := r.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !e.Contains(expr.KindSym, e.Root()) {
		t.Fatalf("expected a symbol leaf in %+v", e)
	}
}
