package bigint

import (
	"fmt"
	"testing"

	"github.com/yasm/yasm-nextgen-sub002/op"
)

func fmtString(format string, v Int) string {
	return fmt.Sprintf(format, v)
}

func TestFromStringBases(t *testing.T) {
	cases := []struct {
		s    string
		base int
		want int64
	}{
		{"1234", 10, 1234},
		{"-1234", 10, -1234},
		{"1010", 2, 10},
		{"17", 8, 15},
		{"ff", 16, 255},
		{"-ff", 16, -255},
	}
	for _, c := range cases {
		got, err := FromString(c.s, c.base)
		if err != nil {
			t.Errorf("FromString(%q, %d): %v", c.s, c.base, err)
			continue
		}
		n, ok := got.Int64()
		if !ok || n != c.want {
			t.Errorf("FromString(%q, %d) = %v, want %d", c.s, c.base, got, c.want)
		}
	}
}

func TestFromStringOverflow(t *testing.T) {
	huge := make([]byte, 0, MaxBits/4+2)
	for i := 0; i < MaxBits/4+2; i++ {
		huge = append(huge, 'f')
	}
	_, err := FromString(string(huge), 16)
	if err != ErrOverflow {
		t.Errorf("expected ErrOverflow, got %v", err)
	}
}

func TestBufferRoundTrip(t *testing.T) {
	for _, order := range []ByteOrder{LittleEndian, BigEndian} {
		for _, signed := range []bool{false, true} {
			for _, n := range []int64{0, 1, 127, -128, 255, -1, 1000, -1000} {
				v := FromInt64(n)
				buf := v.ToBuffer(4, order)
				got, err := FromBuffer(buf, signed, order)
				if err != nil {
					t.Fatalf("FromBuffer: %v", err)
				}
				gotN, _ := got.Int64()
				if signed {
					if gotN != n {
						t.Errorf("signed round-trip order=%v n=%d: got %d", order, n, gotN)
					}
				} else if n >= 0 && gotN != n {
					t.Errorf("unsigned round-trip order=%v n=%d: got %d", order, n, gotN)
				}
			}
		}
	}
}

func TestCalcArithmetic(t *testing.T) {
	a, b := FromInt64(7), FromInt64(3)
	cases := []struct {
		o    op.Operator
		want int64
	}{
		{op.ADD, 10},
		{op.SUB, 4},
		{op.MUL, 21},
		{op.SIGNDIV, 2},
		{op.SIGNMOD, 1},
		{op.AND, 3},
		{op.OR, 7},
		{op.XOR, 4},
		{op.SHL, 56},
		{op.SHR, 0},
	}
	for _, c := range cases {
		got, err := a.Calc(c.o, &b)
		if err != nil {
			t.Errorf("%v.Calc(%s, %v): %v", a, c.o, b, err)
			continue
		}
		n, _ := got.Int64()
		if n != c.want {
			t.Errorf("%v %s %v = %d, want %d", a, c.o, b, n, c.want)
		}
	}
}

func TestCalcDivideByZero(t *testing.T) {
	a, zero := FromInt64(5), FromInt64(0)
	for _, o := range []op.Operator{op.DIV, op.MOD, op.SIGNDIV, op.SIGNMOD} {
		if _, err := a.Calc(o, &zero); err != ErrZeroDivision {
			t.Errorf("Calc(%s, 0): expected ErrZeroDivision, got %v", o, err)
		}
	}
}

func TestCalcNonNumeric(t *testing.T) {
	a, b := FromInt64(1), FromInt64(2)
	for _, o := range []op.Operator{op.SEG, op.WRT, op.SEGOFF} {
		if _, err := a.Calc(o, &b); err != ErrNonNumericOp {
			t.Errorf("Calc(%s): expected ErrNonNumericOp, got %v", o, err)
		}
	}
}

func TestNegUnaryWithoutOperand(t *testing.T) {
	a := FromInt64(5)
	got, err := a.Calc(op.NEG, nil)
	if err != nil {
		t.Fatalf("NEG without operand: %v", err)
	}
	n, _ := got.Int64()
	if n != -5 {
		t.Errorf("NEG(5) = %d, want -5", n)
	}
	if _, err := a.Calc(op.ADD, nil); err != ErrMissingOperand {
		t.Errorf("ADD without operand: expected ErrMissingOperand, got %v", err)
	}
}

func TestOkSize(t *testing.T) {
	for n := int64(-128); n <= 127; n++ {
		if !FromInt64(n).OkSize(8, 0, Signed) {
			t.Errorf("OkSize(%d, 8, signed) = false, want true", n)
		}
	}
	if FromInt64(128).OkSize(8, 0, Signed) {
		t.Errorf("OkSize(128, 8, signed) = true, want false")
	}
	if FromInt64(-129).OkSize(8, 0, Signed) {
		t.Errorf("OkSize(-129, 8, signed) = true, want false")
	}
	for n := int64(0); n <= 255; n++ {
		if !FromInt64(n).OkSize(8, 0, Unsigned) {
			t.Errorf("OkSize(%d, 8, unsigned) = false, want true", n)
		}
	}
	if FromInt64(256).OkSize(8, 0, Unsigned) {
		t.Errorf("OkSize(256, 8, unsigned) = true, want false")
	}
	if FromInt64(-1).OkSize(8, 0, Unsigned) {
		t.Errorf("OkSize(-1, 8, unsigned) = true, want false")
	}
}

func TestGetSizedLittleEndian16(t *testing.T) {
	v := FromInt64(0x1234)
	dest := []byte{0xFF, 0xFF}
	if _, err := v.GetSized(dest, 16, 16, 0, false, WarnNone); err != nil {
		t.Fatalf("GetSized: %v", err)
	}
	want := []byte{0x34, 0x12}
	if dest[0] != want[0] || dest[1] != want[1] {
		t.Errorf("GetSized = %x, want %x", dest, want)
	}
}

func TestGetSizedShiftPreservesLowNibble(t *testing.T) {
	v := FromInt64(-1)
	dest := []byte{0x00, 0x00}
	if _, err := v.GetSized(dest, 16, 12, 4, false, WarnNone); err != nil {
		t.Fatalf("GetSized: %v", err)
	}
	want := []byte{0xF0, 0xFF}
	if dest[0] != want[0] || dest[1] != want[1] {
		t.Errorf("GetSized = %x, want %x", dest, want)
	}
}

func TestGetSizedMisalignedWarning(t *testing.T) {
	v := FromInt64(0x13) // low nibble 0x3, nonzero bits shifted out
	dest := []byte{0x00}
	w, err := v.GetSized(dest, 8, 4, -4, false, WarnNone)
	if err != nil {
		t.Fatalf("GetSized: %v", err)
	}
	if w != WarnMisaligned {
		t.Errorf("GetSized misalignment warning = %v, want WarnMisaligned", w)
	}
}

func TestFormat(t *testing.T) {
	v := FromInt64(255)
	if got := fmtString("%x", v); got != "ff" {
		t.Errorf("%%x = %q, want ff", got)
	}
	if got := fmtString("%#x", v); got != "0xff" {
		t.Errorf("%%#x = %q, want 0xff", got)
	}
	if got := fmtString("%04x", v); got != "00ff" {
		t.Errorf("%%04x = %q, want 00ff", got)
	}
	if got := fmtString("%o", v); got != "377" {
		t.Errorf("%%o = %q, want 377", got)
	}
}
