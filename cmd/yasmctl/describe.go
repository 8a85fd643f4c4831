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

package main

import (
	"fmt"
	"strings"

	"github.com/yasm/yasm-nextgen-sub002/expr"
)

// describeTerm renders the subtree rooted at pos as a parenthesized
// s-expression, for the "eval" subcommand's output.
func describeTerm(e *expr.Expr, pos int) string {
	t := e.Term(pos)
	switch t.Kind {
	case expr.KindInt:
		return t.Int.String()
	case expr.KindFloat:
		return t.Float.String()
	case expr.KindReg:
		return t.Reg.Name()
	case expr.KindSym:
		if t.Sym == nil {
			return "<sym>"
		}
		return t.Sym.Name
	case expr.KindLoc:
		return "<loc>"
	case expr.KindSubst:
		return fmt.Sprintf("<subst %d>", t.Subst)
	case expr.KindOp:
		kids := e.Children(pos)
		parts := make([]string, len(kids))
		for i, k := range kids {
			parts[i] = describeTerm(e, k)
		}
		return fmt.Sprintf("%s(%s)", t.Op, strings.Join(parts, ", "))
	default:
		return "<empty>"
	}
}
