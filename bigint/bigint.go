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

// Package bigint implements IntNum: arbitrary-precision signed integers
// with a fast small-integer path and a math/big-backed wide path, plus the
// sized-field packing routines an object format needs to emit exact bytes.
//
// An Int is a value type: copying an Int (by assignment or passing it by
// value) produces an independent value, even when the wide representation
// is in use, since the wide field is only ever replaced, never mutated in
// place.
package bigint

import (
	"math"
	"math/big"

	"github.com/pkg/errors"

	"github.com/yasm/yasm-nextgen-sub002/op"
)

// MaxBits is the native width of the wide bit-vector representation, used
// to bound literal construction and to anchor the two's-complement shift
// and bitwise operators.
const MaxBits = 256

// smallLimit bounds the fast path: when both operands' small forms lie
// strictly between -smallLimit and smallLimit, native int64 arithmetic for
// ADD/SUB/MUL/SHL by small counts cannot overflow, so the wide path is
// skipped entirely.
const smallLimit = 1 << 30

// Errors returned by Calc and the constructors.
var (
	ErrOverflow      = errors.New("integer literal exceeds native bit-vector width")
	ErrZeroDivision  = errors.New("division or modulo by zero")
	ErrNonNumericOp  = errors.New("SEG/WRT/SEGOFF applied to a plain integer")
	ErrMissingOperand = errors.New("operator requires an operand")
)

// Int is an arbitrary-precision signed integer. The zero value represents 0.
type Int struct {
	small int64
	wide  *big.Int // non-nil only when the value does not fit in small
}

// Zero is the additive identity.
var Zero = Int{}

// FromInt64 builds an Int from a native int64.
func FromInt64(n int64) Int { return Int{small: n} }

func fromBig(x *big.Int) Int {
	if x.IsInt64() {
		return Int{small: x.Int64()}
	}
	return Int{wide: new(big.Int).Set(x)}
}

// isWide reports whether v currently uses the wide representation.
func (v Int) isWide() bool { return v.wide != nil }

// big returns v's value as a *big.Int, independent of v's storage.
func (v Int) big() *big.Int {
	if v.wide != nil {
		return new(big.Int).Set(v.wide)
	}
	return big.NewInt(v.small)
}

// Sign returns -1, 0, or 1 depending on the sign of v.
func (v Int) Sign() int {
	if v.wide != nil {
		return v.wide.Sign()
	}
	switch {
	case v.small < 0:
		return -1
	case v.small > 0:
		return 1
	default:
		return 0
	}
}

// Cmp returns -1, 0, or 1 depending on whether v < w, v == w, or v > w.
func (v Int) Cmp(w Int) int {
	if !v.isWide() && !w.isWide() {
		switch {
		case v.small < w.small:
			return -1
		case v.small > w.small:
			return 1
		default:
			return 0
		}
	}
	return v.big().Cmp(w.big())
}

// Equal reports whether v and w represent the same mathematical integer.
func (v Int) Equal(w Int) bool { return v.Cmp(w) == 0 }

// Int64 returns v truncated/converted to int64, and whether the conversion
// was exact (ok=false means v did not fit in an int64).
func (v Int) Int64() (int64, bool) {
	if !v.isWide() {
		return v.small, true
	}
	if v.wide.IsInt64() {
		return v.wide.Int64(), true
	}
	return v.wide.Int64(), false
}

// fitsSmallFast reports whether n is safely inside the conservative
// half-range where native int64 arithmetic cannot overflow for
// ADD/SUB/MUL of two such operands.
func fitsSmallFast(n int64) bool { return n > -smallLimit && n < smallLimit }

func checkOverflow(x *big.Int) error {
	// bit length required to represent x in MaxBits-wide two's complement.
	if x.Sign() >= 0 {
		if x.BitLen() > MaxBits-1 {
			return ErrOverflow
		}
		return nil
	}
	// negative: -2^(MaxBits-1) is representable, more negative is not.
	limit := new(big.Int).Lsh(big.NewInt(1), MaxBits-1)
	neg := new(big.Int).Neg(x)
	if neg.Cmp(limit) > 0 {
		return ErrOverflow
	}
	return nil
}

// Calc computes v OP rhs (binary) or OP v (unary, rhs == nil) and returns
// the result. NEG, NOT and LNOT are the only operators valid with rhs ==
// nil; all others return ErrMissingOperand in that case. SEG, WRT and
// SEGOFF are not numeric operators and always fail with ErrNonNumericOp.
func (v Int) Calc(o op.Operator, rhs *Int) (Int, error) {
	switch o {
	case op.SEG, op.WRT, op.SEGOFF:
		return Int{}, ErrNonNumericOp
	}
	if op.Unary(o) {
		return v.calcUnary(o, rhs)
	}
	if rhs == nil {
		return Int{}, ErrMissingOperand
	}
	if !v.isWide() && !rhs.isWide() && fitsSmallFast(v.small) && fitsSmallFast(rhs.small) {
		if r, ok := v.calcSmallFast(o, *rhs); ok {
			return r, nil
		}
	}
	return v.calcWide(o, *rhs)
}

func (v Int) calcUnary(o op.Operator, rhs *Int) (Int, error) {
	switch o {
	case op.NEG:
		if !v.isWide() && v.small != math.MinInt64 {
			return Int{small: -v.small}, nil
		}
		return fromBig(new(big.Int).Neg(v.big())), nil
	case op.NOT:
		return fromBig(new(big.Int).Not(v.big())), nil
	case op.LNOT:
		if v.Sign() == 0 {
			return FromInt64(1), nil
		}
		return FromInt64(0), nil
	default:
		if rhs == nil {
			return Int{}, ErrMissingOperand
		}
		return v.calcWide(o, *rhs)
	}
}

func (v Int) calcSmallFast(o op.Operator, w Int) (Int, bool) {
	a, b := v.small, w.small
	switch o {
	case op.ADD:
		return FromInt64(a + b), true
	case op.SUB:
		return FromInt64(a - b), true
	case op.MUL:
		return FromInt64(a * b), true
	case op.SHL:
		if b >= 0 && b < 33 {
			return FromInt64(a << uint(b)), true
		}
		return Int{}, false
	default:
		return Int{}, false
	}
}

func boolInt(b bool) Int {
	if b {
		return FromInt64(1)
	}
	return FromInt64(0)
}

func (v Int) calcWide(o op.Operator, w Int) (Int, error) {
	x, y := v.big(), w.big()
	switch o {
	case op.ADD:
		return fromBig(new(big.Int).Add(x, y)), nil
	case op.SUB:
		return fromBig(new(big.Int).Sub(x, y)), nil
	case op.MUL:
		return fromBig(new(big.Int).Mul(x, y)), nil
	case op.SIGNDIV:
		if y.Sign() == 0 {
			return Int{}, ErrZeroDivision
		}
		return fromBig(new(big.Int).Quo(x, y)), nil
	case op.SIGNMOD:
		if y.Sign() == 0 {
			return Int{}, ErrZeroDivision
		}
		return fromBig(new(big.Int).Rem(x, y)), nil
	case op.DIV, op.MOD:
		ux := toUnsignedField(x, MaxBits)
		uy := toUnsignedField(y, MaxBits)
		if uy.Sign() == 0 {
			return Int{}, ErrZeroDivision
		}
		q, r := new(big.Int), new(big.Int)
		q.QuoRem(ux, uy, r)
		if o == op.DIV {
			return fromBig(q), nil
		}
		return fromBig(r), nil
	case op.AND:
		return fromBig(new(big.Int).And(x, y)), nil
	case op.OR:
		return fromBig(new(big.Int).Or(x, y)), nil
	case op.XOR:
		return fromBig(new(big.Int).Xor(x, y)), nil
	case op.NOR:
		return fromBig(new(big.Int).Not(new(big.Int).Or(x, y))), nil
	case op.XNOR:
		return fromBig(new(big.Int).Not(new(big.Int).Xor(x, y))), nil
	case op.SHL:
		n, ok := shiftCount(y)
		if !ok {
			return Int{}, ErrOverflow
		}
		return fromBig(new(big.Int).Lsh(x, n)), nil
	case op.SHR:
		n, ok := shiftCount(y)
		if !ok {
			return Int{}, ErrOverflow
		}
		return fromBig(new(big.Int).Rsh(x, n)), nil
	case op.LOR:
		return boolInt(x.Sign() != 0 || y.Sign() != 0), nil
	case op.LAND:
		return boolInt(x.Sign() != 0 && y.Sign() != 0), nil
	case op.LXOR:
		return boolInt((x.Sign() != 0) != (y.Sign() != 0)), nil
	case op.LXNOR:
		return boolInt((x.Sign() != 0) == (y.Sign() != 0)), nil
	case op.LNOR:
		return boolInt(!(x.Sign() != 0 || y.Sign() != 0)), nil
	case op.EQ:
		return boolInt(x.Cmp(y) == 0), nil
	case op.NE:
		return boolInt(x.Cmp(y) != 0), nil
	case op.LT:
		return boolInt(x.Cmp(y) < 0), nil
	case op.GT:
		return boolInt(x.Cmp(y) > 0), nil
	case op.LE:
		return boolInt(x.Cmp(y) <= 0), nil
	case op.GE:
		return boolInt(x.Cmp(y) >= 0), nil
	default:
		return Int{}, errors.Errorf("bigint: unsupported operator %s", o)
	}
}

// toUnsignedField reinterprets x's native-width two's complement bit
// pattern as a non-negative integer in [0, 2^bits).
func toUnsignedField(x *big.Int, bits int) *big.Int {
	if x.Sign() >= 0 {
		return new(big.Int).Set(x)
	}
	mod := new(big.Int).Lsh(big.NewInt(1), uint(bits))
	return new(big.Int).Add(x, mod)
}

func shiftCount(y *big.Int) (uint, bool) {
	if y.Sign() < 0 || !y.IsUint64() {
		return 0, false
	}
	n := y.Uint64()
	if n > MaxBits*4 {
		return 0, false
	}
	return uint(n), true
}
