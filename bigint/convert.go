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

package bigint

import (
	"math/big"

	"github.com/pkg/errors"
)

// ByteOrder selects how FromBuffer/ToBuffer interpret a byte slice's
// significance, independent of the host's native endianness.
type ByteOrder int

const (
	LittleEndian ByteOrder = iota
	BigEndian
)

// FromString parses s in the given base (2, 8, 10, or 16), accepting a
// leading '-' for negative values. Base 0 takes the base from the
// literal's prefix ("0x", "0o" or "0", "0b"; none means decimal), as
// math/big.Int.SetString does. It fails with ErrOverflow if the parsed
// magnitude cannot be represented in MaxBits bits.
func FromString(s string, base int) (Int, error) {
	switch base {
	case 0, 2, 8, 10, 16:
	default:
		return Int{}, errors.Errorf("bigint: unsupported base %d", base)
	}
	x, ok := new(big.Int).SetString(s, base)
	if !ok {
		return Int{}, errors.Errorf("bigint: invalid base-%d literal %q", base, s)
	}
	if err := checkOverflow(x); err != nil {
		return Int{}, err
	}
	return fromBig(x), nil
}

// FromBuffer decodes buf as a signed or unsigned integer, in the given
// byte order. When signed is true and the value's top bit is set, the
// result is sign-extended (negative).
func FromBuffer(buf []byte, signed bool, order ByteOrder) (Int, error) {
	if len(buf) == 0 {
		return Int{}, nil
	}
	be := make([]byte, len(buf))
	if order == LittleEndian {
		for i, b := range buf {
			be[len(buf)-1-i] = b
		}
	} else {
		copy(be, buf)
	}
	x := new(big.Int).SetBytes(be)
	if signed && be[0]&0x80 != 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(len(buf))*8)
		x.Sub(x, mod)
	}
	if err := checkOverflow(x); err != nil {
		return Int{}, err
	}
	return fromBig(x), nil
}

// ToBuffer encodes v into a buffer of exactly n bytes, in the given byte
// order, using n*8-bit two's complement. It is the inverse of FromBuffer.
func (v Int) ToBuffer(n int, order ByteOrder) []byte {
	u := toUnsignedField(v.big(), n*8)
	be := u.Bytes()
	out := make([]byte, n)
	// be is big-endian, left-padded with zeros implicitly; place its tail.
	copy(out[n-len(be):], be)
	if order == LittleEndian {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

// RangeKind selects the interpretation used by OkSize.
type RangeKind int

const (
	// Unsigned: value must lie in [0, 2^size).
	Unsigned RangeKind = iota
	// Signed: value must lie in [-2^(size-1), 2^(size-1)).
	Signed
	// SignedOrUnsigned: value must lie in [-2^(size-1), 2^size).
	SignedOrUnsigned
)

// OkSize reports whether v, shifted right by rshift, fits in size bits
// under the given range interpretation.
func (v Int) OkSize(size, rshift int, kind RangeKind) bool {
	x := v.big()
	if rshift > 0 {
		x = new(big.Int).Rsh(x, uint(rshift))
	}
	lowSigned := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), uint(size-1)))
	highSigned := new(big.Int).Lsh(big.NewInt(1), uint(size-1))
	highUnsigned := new(big.Int).Lsh(big.NewInt(1), uint(size))
	switch kind {
	case Unsigned:
		return x.Sign() >= 0 && x.Cmp(highUnsigned) < 0
	case Signed:
		return x.Cmp(lowSigned) >= 0 && x.Cmp(highSigned) < 0
	default: // SignedOrUnsigned
		return x.Cmp(lowSigned) >= 0 && x.Cmp(highUnsigned) < 0
	}
}

// WarnMode selects the overflow-checking policy of GetSized.
type WarnMode int

const (
	// WarnNone performs no range check.
	WarnNone WarnMode = 0
	// WarnSigned requires the value to fit in a signed field.
	WarnSigned WarnMode = -1
	// WarnUnsigned requires the value to fit in an unsigned field.
	WarnUnsigned WarnMode = 1
)

// SizeWarning describes a non-fatal condition detected by GetSized.
type SizeWarning int

const (
	NoWarning SizeWarning = iota
	WarnOverflow
	WarnMisaligned
)

// GetSized packs valBits bits of v into dest, starting at bit offset shift
// (a negative shift means v is right-shifted by -shift before packing).
// Bits of dest outside the written field are preserved. destBits is the
// total width of dest in bits (len(dest)*8). It returns any warning
// condition detected (the caller decides whether/how to surface it) and an
// error only for malformed parameters.
func (v Int) GetSized(dest []byte, destBits, valBits, shift int, bigEndian bool, warn WarnMode) (SizeWarning, error) {
	if destBits != len(dest)*8 {
		return NoWarning, errors.Errorf("bigint: destBits %d does not match buffer length %d", destBits, len(dest))
	}
	x := v.big()
	result := NoWarning
	if shift < 0 {
		shiftedOut := new(big.Int).And(x, new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(-shift)), big.NewInt(1)))
		if shiftedOut.Sign() != 0 {
			result = WarnMisaligned
		}
		x = new(big.Int).Rsh(x, uint(-shift))
	}
	switch warn {
	case WarnSigned:
		if !v.ok(x, valBits, Signed) {
			result = WarnOverflow
		}
	case WarnUnsigned:
		if !v.ok(x, valBits, Unsigned) {
			result = WarnOverflow
		}
	}
	field := toUnsignedField(x, valBits)
	bitOff := shift
	if shift < 0 {
		bitOff = 0
	}
	writeBitField(dest, bigEndian, bitOff, valBits, field)
	return result, nil
}

func (v Int) ok(x *big.Int, size int, kind RangeKind) bool {
	w := fromBig(x)
	return w.OkSize(size, 0, kind)
}

// writeBitField writes the low valBits bits of field into dest starting at
// bit offset bitOff, preserving all other bits of dest. Bit numbering is
// from the least-significant bit of the field named by bigEndian: for
// little-endian destinations, bit 0 is the LSB of dest[0]; for big-endian
// destinations, bit 0 is the LSB of dest[len(dest)-1], matching the way an
// object format lays out bitfields within a byte-addressed buffer.
func writeBitField(dest []byte, bigEndian bool, bitOff, valBits int, field *big.Int) {
	for i := 0; i < valBits; i++ {
		bit := field.Bit(i)
		pos := bitOff + i
		byteIdx, bitIdx := pos/8, pos%8
		if bigEndian {
			byteIdx = len(dest) - 1 - byteIdx
		}
		if byteIdx < 0 || byteIdx >= len(dest) {
			continue
		}
		if bit == 1 {
			dest[byteIdx] |= 1 << uint(bitIdx)
		} else {
			dest[byteIdx] &^= 1 << uint(bitIdx)
		}
	}
}
