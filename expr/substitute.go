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
	"github.com/pkg/errors"

	"github.com/yasm/yasm-nextgen-sub002/diag"
)

// ErrCircularEqu is reported (via the diag sink, as diag.ErrTooComplexExpression)
// and also returned directly by ExpandEqu when a symbol's EQU definition
// refers back to itself through a chain of other EQU definitions.
var ErrCircularEqu = errors.New("expr: circular EQU definition")

// Substitute returns a copy of e with every KindSubst leaf numbered i
// replaced by a copy of terms[i]'s whole expression. It is the
// parameterized-expression mechanism for macro-style reuse of a parsed
// expression template.
func (e *Expr) Substitute(terms []*Expr) *Expr {
	out := New()
	substituteWalk(out, e, e.Root(), terms)
	return out
}

func substituteWalk(dst, src *Expr, pos int, terms []*Expr) {
	if pos < 0 {
		return
	}
	t := src.terms[pos]
	switch t.Kind {
	case KindSubst:
		if t.Subst >= 0 && t.Subst < len(terms) && terms[t.Subst] != nil {
			dst.rebuildFrom(terms[t.Subst], terms[t.Subst].Root())
			return
		}
		dst.appendLeaf(t)
	case KindOp:
		for _, c := range src.Children(pos) {
			substituteWalk(dst, src, c, terms)
		}
		_ = dst.AppendOp(t.Op, t.NChild)
	default:
		dst.appendLeaf(t)
	}
}

// ExpandEqu walks e and replaces every symbol leaf for which lookupEqu
// returns an EQU definition with a copy of that definition,
// recursively, detecting cycles (a := b+1; b := 2*c; c := a-3) and
// reporting diag.ErrTooComplexExpression plus returning ErrCircularEqu if
// one is found. Symbols without an EQU definition are left as-is.
func (e *Expr) ExpandEqu(lookupEqu func(sym interface{}) (*Expr, bool), sink diag.Sink) (*Expr, error) {
	out := New()
	seen := map[interface{}]bool{}
	if err := expandEquWalk(out, e, e.Root(), lookupEqu, seen, sink); err != nil {
		return nil, err
	}
	return out, nil
}

func expandEquWalk(dst, src *Expr, pos int, lookupEqu func(interface{}) (*Expr, bool), seen map[interface{}]bool, sink diag.Sink) error {
	if pos < 0 {
		return nil
	}
	t := src.terms[pos]
	switch t.Kind {
	case KindSym:
		def, ok := lookupEqu(t.Sym)
		if !ok {
			dst.appendLeaf(t)
			return nil
		}
		if seen[t.Sym] {
			if sink != nil {
				sink.Report(diag.Diagnostic{
					Kind:    diag.ErrTooComplexExpression,
					Source:  t.Source,
					Message: "circular EQU definition involving " + t.Sym.Name,
				})
			}
			return ErrCircularEqu
		}
		seen[t.Sym] = true
		defer delete(seen, t.Sym)
		return expandEquWalk(dst, def, def.Root(), lookupEqu, seen, sink)
	case KindOp:
		for _, c := range src.Children(pos) {
			if err := expandEquWalk(dst, src, c, lookupEqu, seen, sink); err != nil {
				return err
			}
		}
		_ = dst.AppendOp(t.Op, t.NChild)
		return nil
	default:
		dst.appendLeaf(t)
		return nil
	}
}
