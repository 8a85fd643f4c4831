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
	"github.com/yasm/yasm-nextgen-sub002/loc"
	"github.com/yasm/yasm-nextgen-sub002/op"
)

// SimplifyCalcDist folds every locA + (-1)*locB pair it finds among an
// ADD's children into the integer distance between locA and locB, using
// loc.CalcDist (which requires the optimizer to have already assigned
// both locations absolute offsets). Simplify's associative leveling
// flattens nested additions into one n-ary ADD, so an ADD may hold more
// than two children and more than one such pair; every pair found is
// folded, and any children left over (not part of a loc/neg-loc pair)
// are kept as-is. This lives in package expr, not package loc, because
// it needs Expr tree traversal and loc must not depend on expr (loc sits
// below expr in the import graph). distFn is loc.CalcDist or
// loc.CalcDistNoBC, passed in so callers can choose whether bytecode
// offsets are required.
func (e *Expr) SimplifyCalcDist(distFn func(from, to loc.Location, out *int) bool) *Expr {
	out := New()
	distWalk(out, e, e.Root(), distFn)
	return out
}

func distWalk(dst, src *Expr, pos int, distFn func(from, to loc.Location, out *int) bool) {
	if pos < 0 {
		return
	}
	t := src.terms[pos]
	if t.Kind != KindOp {
		dst.rebuildFrom(src, pos)
		return
	}
	if t.Op == op.ADD && t.NChild >= 2 {
		if foldLocPairs(dst, src, pos, distFn) {
			return
		}
	}
	for _, c := range src.Children(pos) {
		distWalk(dst, src, c, distFn)
	}
	_ = dst.AppendOp(t.Op, t.NChild)
}

// foldLocPairs scans every pair of pos's children for a loc/neg-loc
// match (greedily, each child used in at most one pair), folds each
// match into an integer distance, recurses into the unmatched
// remainder, and appends the result to dst. It reports whether it found
// at least one pair to fold; if not, dst is left untouched and the
// caller falls back to its normal copy-through.
func foldLocPairs(dst, src *Expr, pos int, distFn func(from, to loc.Location, out *int) bool) bool {
	kids := src.Children(pos)
	used := make([]bool, len(kids))
	var dists []bigint.Int

	for i := range kids {
		if used[i] {
			continue
		}
		for j := i + 1; j < len(kids); j++ {
			if used[j] {
				continue
			}
			locTerm, negLoc, ok := splitLocAndNegLoc(src, kids[i], kids[j])
			if !ok {
				locTerm, negLoc, ok = splitLocAndNegLoc(src, kids[j], kids[i])
			}
			if !ok {
				continue
			}
			var dist int
			if !distFn(negLoc, locTerm, &dist) {
				continue
			}
			dists = append(dists, bigint.FromInt64(int64(dist)))
			used[i], used[j] = true, true
			break
		}
	}
	if len(dists) == 0 {
		return false
	}

	n := 0
	for _, d := range dists {
		dst.AppendInt(d)
		n++
	}
	for i, c := range kids {
		if used[i] {
			continue
		}
		distWalk(dst, src, c, distFn)
		n++
	}
	if n > 1 {
		_ = dst.AppendOp(op.ADD, n)
	}
	return true
}

// splitLocAndNegLoc reports whether pos holds a bare location and other
// holds MUL(-1, location), returning the two locations as Expr leaves'
// loc.Location values via their owning positions.
func splitLocAndNegLoc(e *Expr, pos, other int) (loc.Location, loc.Location, bool) {
	if e.terms[pos].Kind != KindLoc {
		return loc.Location{}, loc.Location{}, false
	}
	ot := e.terms[other]
	if ot.Kind != KindOp || ot.Op != op.MUL || ot.NChild != 2 {
		return loc.Location{}, loc.Location{}, false
	}
	kids := e.Children(other)
	c0, c1 := e.terms[kids[0]], e.terms[kids[1]]
	var negIdx, locIdx = -1, -1
	if c0.Kind == KindInt && c1.Kind == KindLoc {
		negIdx, locIdx = kids[0], kids[1]
	} else if c1.Kind == KindInt && c0.Kind == KindLoc {
		negIdx, locIdx = kids[1], kids[0]
	} else {
		return loc.Location{}, loc.Location{}, false
	}
	if !isAllOnes(e.terms[negIdx].Int) {
		return loc.Location{}, loc.Location{}, false
	}
	return e.terms[pos].Loc, e.terms[locIdx].Loc, true
}
