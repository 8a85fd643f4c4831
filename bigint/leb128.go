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

// FromLEB128 decodes a LEB128-encoded integer (DWARF conventions) from buf,
// returning the value and the number of bytes consumed.
func FromLEB128(buf []byte, signed bool) (Int, int, error) {
	var result big.Int
	var shift uint
	var i int
	var lastByte byte
	for {
		if i >= len(buf) {
			return Int{}, 0, errors.New("bigint: truncated leb128 sequence")
		}
		b := buf[i]
		lastByte = b
		chunk := new(big.Int).Lsh(big.NewInt(int64(b&0x7f)), shift)
		result.Or(&result, chunk)
		shift += 7
		i++
		if b&0x80 == 0 {
			break
		}
		if shift >= MaxBits {
			return Int{}, 0, ErrOverflow
		}
	}
	if signed && shift < MaxBits && lastByte&0x40 != 0 {
		signExt := new(big.Int).Lsh(big.NewInt(-1), shift)
		result.Or(&result, signExt)
	}
	if err := checkOverflow(&result); err != nil {
		return Int{}, 0, err
	}
	return fromBig(&result), i, nil
}

// AppendLEB128 appends v's LEB128 encoding (DWARF conventions) to dst and
// returns the extended slice.
func (v Int) AppendLEB128(dst []byte, signed bool) []byte {
	x := v.big()
	if !signed {
		if x.Sign() < 0 {
			// Unsigned LEB128 of a negative value is undefined by the
			// format; encode its native-width unsigned reinterpretation.
			x = toUnsignedField(x, MaxBits)
		}
		for {
			b := byte(new(big.Int).And(x, big.NewInt(0x7f)).Int64())
			x = new(big.Int).Rsh(x, 7)
			if x.Sign() == 0 {
				dst = append(dst, b)
				return dst
			}
			dst = append(dst, b|0x80)
		}
	}
	for {
		b := byte(new(big.Int).And(x, big.NewInt(0x7f)).Int64())
		signBit := b & 0x40
		x = arithShiftRight(x, 7)
		done := (x.Sign() == 0 && signBit == 0) || (x.Cmp(big.NewInt(-1)) == 0 && signBit != 0)
		if done {
			dst = append(dst, b)
			return dst
		}
		dst = append(dst, b|0x80)
	}
}

// arithShiftRight performs a two's-complement arithmetic right shift by 7,
// matching math/big's own Rsh semantics for negative values (math/big.Rsh
// already rounds toward negative infinity for negative x, i.e. arithmetic
// shift), kept here as a named helper for readability at call sites.
func arithShiftRight(x *big.Int, n uint) *big.Int {
	return new(big.Int).Rsh(x, n)
}
