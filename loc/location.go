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

// Package loc implements Location (a point inside a bytecode) and the
// arithmetic of distances between locations, used by the expression
// simplifier to fold label-pair differences.
package loc

import "github.com/yasm/yasm-nextgen-sub002/bytecode"

// Location names a point in the emitted output: a bytecode plus a byte
// offset within it. Equality is structural.
type Location struct {
	Bytecode bytecode.Bytecode
	Offset   int
}

// Equal reports whether l and m name the same point.
func (l Location) Equal(m Location) bool {
	return l.Bytecode == m.Bytecode && l.Offset == m.Offset
}

// absolute returns l's absolute offset in the final image and whether it
// is currently known (the optimizer has assigned l.Bytecode an offset).
func (l Location) absolute() (int, bool) {
	if l.Bytecode == nil {
		return 0, false
	}
	base, ok := l.Bytecode.Offset()
	if !ok {
		return 0, false
	}
	return base + l.Offset, true
}

// CalcDist sets *out = offset(to) - offset(from) and returns true if both
// bytecodes have assigned absolute offsets (valid post-optimization).
func CalcDist(from, to Location, out *int) bool {
	a, ok := from.absolute()
	if !ok {
		return false
	}
	b, ok := to.absolute()
	if !ok {
		return false
	}
	*out = b - a
	return true
}

// CalcDistNoBC sets *out = to.Offset - from.Offset and returns true only
// if from and to share the same bytecode; safe to call before the
// optimizer has run.
func CalcDistNoBC(from, to Location, out *int) bool {
	if from.Bytecode == nil || from.Bytecode != to.Bytecode {
		return false
	}
	*out = to.Offset - from.Offset
	return true
}
