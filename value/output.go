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
	"github.com/yasm/yasm-nextgen-sub002/arch"
	"github.com/yasm/yasm-nextgen-sub002/bigint"
	"github.com/yasm/yasm-nextgen-sub002/bytecode"
	"github.com/yasm/yasm-nextgen-sub002/diag"
	"github.com/yasm/yasm-nextgen-sub002/expr"
	"github.com/yasm/yasm-nextgen-sub002/loc"
	"github.com/yasm/yasm-nextgen-sub002/op"
)

// Status is the tri-state result of OutputBasic.
type Status int

const (
	// Written means dest now holds the fully-resolved bytes.
	Written Status = iota
	// NeedsRelocation means dest was not written: v.Rel, a PC-relative
	// bias, or a non-constant v.Abs could not be resolved here, and the
	// object format must emit a relocation.
	NeedsRelocation
)

// CalcPCRelSub computes the PC-relative bias to add to v.Abs: the
// negative distance from v.PrecBC to bc's start, which a same-section
// PC-relative rel can fold directly into the absolute part.
func (v *Value) CalcPCRelSub(bc bytecode.Bytecode) (int, bool) {
	if v.PrecBC.Bytecode == nil {
		return 0, false
	}
	var dist int
	if !loc.CalcDist(v.PrecBC, loc.Location{Bytecode: bc}, &dist) {
		return 0, false
	}
	return -dist, true
}

// SubRelative converts v so that its relative part becomes the
// subtrahend of a later PC-relative reference: v.Sub takes over what was
// v.Rel, and l records the location the new subtraction is anchored to.
func (v *Value) SubRelative(l loc.Location) {
	if v.Rel == nil {
		return
	}
	v.Sub = v.Rel
	v.Rel = nil
	v.PrecBC = l
}

// OutputBasic emits v's value into dest. A curpos/IP-relative v.Abs (no
// v.Rel) is corrected for the actual position of bc before packing. If
// v.Rel is set, it folds in only when it is itself IP/curpos-relative and
// its own label location is known relative to bc; otherwise it returns
// NeedsRelocation without writing dest, and the object format must emit a
// relocation for v.Rel (minus v.Sub, if set).
func (v *Value) OutputBasic(dest []byte, bc bytecode.Bytecode, warn bigint.WarnMode, a arch.Architecture, sink diag.Sink) (Status, error) {
	abs := v.Abs
	if abs == nil {
		abs = expr.New()
	}

	if v.Rel != nil {
		if !v.IPRel && !v.CurposRel {
			return NeedsRelocation, nil
		}
		// v.Rel's own position must be resolved before it can fold into
		// abs: a same-section label already assigned an offset folds
		// directly; anything else (forward reference still unresolved, or
		// a different section) still needs an external relocation.
		relLoc, ok := v.Rel.Location()
		if !ok {
			return NeedsRelocation, nil
		}
		var dist int
		if !loc.CalcDist(loc.Location{Bytecode: bc, Offset: v.NextInsn}, relLoc, &dist) {
			return NeedsRelocation, nil
		}
		lit := expr.New()
		lit.AppendInt(bigint.FromInt64(int64(dist)))
		abs = expr.Combine(op.ADD, abs, lit)
		abs = abs.Simplify(sink)
		if abs.Root() < 0 || !abs.IsConstant(abs.Root()) {
			return NeedsRelocation, nil
		}
	} else if v.IPRel || v.CurposRel {
		bias, ok := v.CalcPCRelSub(bc)
		if !ok {
			return NeedsRelocation, nil
		}
		lit := expr.New()
		lit.AppendInt(bigint.FromInt64(int64(bias + v.NextInsn)))
		abs = expr.Combine(op.ADD, abs, lit)
		abs = abs.Simplify(sink)
		if abs.Root() < 0 || !abs.IsConstant(abs.Root()) {
			return NeedsRelocation, nil
		}
	}

	n, ok := evalConstant(abs)
	if !ok {
		return NeedsRelocation, nil
	}

	warnMode := warn
	if v.NoWarn {
		warnMode = bigint.WarnNone
	}
	bigEndian := a != nil && a.Endianness() == arch.BigEndian
	// v.RShift is a right shift to apply before packing at bit offset 0;
	// GetSized's shift parameter expresses that as a negative value.
	sw, err := n.GetSized(dest, len(dest)*8, v.Size, -v.RShift, bigEndian, warnMode)
	if err != nil {
		return Written, err
	}
	if v.WarnEnabled && sink != nil && sw != bigint.NoWarning {
		sink.Report(diag.Diagnostic{
			Kind:   sizeWarningKind(sw),
			Source: v.Source,
		})
	}
	return Written, nil
}

func sizeWarningKind(sw bigint.SizeWarning) diag.Kind {
	if sw == bigint.WarnMisaligned {
		return diag.WarnMisalignedValue
	}
	return diag.WarnValueOverflow
}

// evalConstant returns e's value as a single bigint.Int if e's root is a
// lone integer constant (the only shape OutputBasic can pack), after
// Simplify has already folded every other shape down to one.
func evalConstant(e *expr.Expr) (bigint.Int, bool) {
	root := e.Root()
	if root < 0 {
		return bigint.Zero, true
	}
	t := e.Term(root)
	if t.Kind != expr.KindInt {
		return bigint.Int{}, false
	}
	return t.Int, true
}
