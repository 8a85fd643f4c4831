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

import "fmt"

// String renders v in exact decimal, signed.
func (v Int) String() string {
	return v.big().String()
}

// Format implements fmt.Formatter, supporting 'd' (decimal, default), 'o'
// (octal) and 'x'/'X' (hex), each honoring the '#' flag for a base prefix
// and a minimum field width given by the verb's width (e.g. "%08x"). This
// is the Go-idiomatic replacement for the original's stream manipulators
// (set_bits/oct/hex), see DESIGN.md.
func (v Int) Format(f fmt.State, verb rune) {
	x := v.big()
	var s string
	switch verb {
	case 'o':
		s = x.Text(8)
		if f.Flag('#') {
			s = "0" + s
		}
	case 'x':
		s = x.Text(16)
		if f.Flag('#') && x.Sign() != 0 {
			s = "0x" + s
		}
	case 'X':
		s = bigUpper(x.Text(16))
		if f.Flag('#') && x.Sign() != 0 {
			s = "0X" + s
		}
	default:
		s = x.Text(10)
	}
	if width, ok := f.Width(); ok && len(s) < width {
		pad := width - len(s)
		neg := len(s) > 0 && s[0] == '-'
		if neg {
			s = "-" + zeros(pad) + s[1:]
		} else {
			s = zeros(pad) + s
		}
	}
	fmt.Fprint(f, s)
}

func zeros(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = '0'
	}
	return string(b)
}

func bigUpper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}
