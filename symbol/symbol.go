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

// Package symbol declares Symbol and Table: the core treats symbols as
// opaque, non-owning handles into a table it does not own.
package symbol

import "github.com/yasm/yasm-nextgen-sub002/loc"

// Symbol is referenced by the core only through a *Symbol pointer; the
// table that owns Symbols outlives every Expr/Value that points into it.
//
// Equ carries the symbol's EQU definition, if any, as an opaque value
// (concretely an *expr.Expr, read by value.Finalize via a type
// assertion). Keeping the field's static type generic here — rather than
// importing package expr — avoids an import cycle (expr needs *Symbol as
// a leaf kind, and Symbol needs to carry an Expr): the same
// associated-data-by-type-assertion shape as the original's AssocData
// extension point (original_source/libyasmx/AssocData.h), adapted to
// Go's interfaces instead of a type-keyed registry.
type Symbol struct {
	Name    string
	Equ     interface{}
	Section string // set once the symbol is known to live in a given section
	Value   int    // offset within Section, once resolved
	Defined bool

	// Loc is this symbol's bytecode location, set once the symbol is
	// defined as a label (the Go counterpart of the original's
	// Symbol::get_label/define_label pair over a Location). LocKnown is
	// false for symbols that were never defined as labels, or whose
	// bytecode hasn't been assigned yet.
	Loc      loc.Location
	LocKnown bool
}

// InSection reports whether the symbol is defined and lives in the
// section called name. value.Finalize step 2 does not call it; it
// checks Defined and asks the Table's AbsoluteSectionStart directly.
func (s *Symbol) InSection(name string) bool {
	return s.Defined && s.Section == name
}

// Location returns the symbol's label location and true, or the zero
// Location and false if the symbol was never defined as a label. Used by
// value.OutputBasic to fold a same-section PC-relative Rel into the
// absolute part without a relocation.
func (s *Symbol) Location() (loc.Location, bool) {
	return s.Loc, s.LocKnown
}

// Table resolves symbol names and creates anonymous symbols (used
// internally for label-pair bookkeeping, e.g. local distance symbols).
type Table interface {
	// Lookup finds a symbol by name.
	Lookup(name string) (*Symbol, bool)

	// Anonymous creates a fresh, unnamed symbol.
	Anonymous() *Symbol

	// AbsoluteSectionStart reports the fixed load address of an absolute
	// section (one whose symbols all resolve to a compile-time-constant
	// address), if name is one. value.Finalize step 2 uses this to inline
	// a symbol defined in such a section as (start + offset) rather than
	// leaving it as a relocatable reference.
	AbsoluteSectionStart(name string) (int, bool)
}
