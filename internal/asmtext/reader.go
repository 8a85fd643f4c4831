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

// Package asmtext implements a small recursive-descent reader that turns
// the textual form of an assembler expression into an *expr.Expr, for use
// by cmd/yasmctl and by package tests that would otherwise have to build
// trees term-by-term. It is not a full assembler front end: no directives,
// no statements, just one expression per Read call, grounded in the
// scanner setup asm/parser.go uses (text/scanner.Scanner with a widened
// IsIdentRune so operator punctuation and label characters tokenize
// sanely).
package asmtext

import (
	"bytes"
	"strconv"
	"text/scanner"
	"unicode"

	"github.com/pkg/errors"

	"github.com/yasm/yasm-nextgen-sub002/arch"
	"github.com/yasm/yasm-nextgen-sub002/bigint"
	"github.com/yasm/yasm-nextgen-sub002/expr"
	"github.com/yasm/yasm-nextgen-sub002/op"
	"github.com/yasm/yasm-nextgen-sub002/symbol"
)

// Reader parses one expression at a time from an input stream.
type Reader struct {
	s    scanner.Scanner
	arch arch.Architecture
	syms symbol.Table

	tok     rune
	curText string
	err     error
}

// New returns a Reader over src. arch and syms may be nil. A name is first
// looked up as a register of arch (if non-nil), then in syms: with a
// non-nil syms, a name it does not know becomes a new undefined-symbol
// leaf; with syms == nil, every name that is not a register is rejected.
func New(name string, src []byte, a arch.Architecture, syms symbol.Table) *Reader {
	r := &Reader{arch: a, syms: syms}
	r.s.Init(bytes.NewReader(src))
	r.s.Filename = name
	r.s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats | scanner.ScanChars | scanner.ScanStrings
	r.s.IsIdentRune = isIdentRune
	r.s.Error = func(_ *scanner.Scanner, msg string) { r.err = errors.New(msg) }
	r.next()
	return r
}

// isIdentRune widens the scanner's default identifier rule so label
// punctuation (. $ _) tokenizes as part of a name rather than as its own
// token, the same accommodation asm/parser.go's isIdentRune makes for
// Forth-style word names.
func isIdentRune(ch rune, i int) bool {
	if ch == '_' || ch == '.' || ch == '$' {
		return true
	}
	if i == 0 {
		return unicode.IsLetter(ch)
	}
	return unicode.IsLetter(ch) || unicode.IsDigit(ch)
}

// Position returns the current scanner position, for attaching to
// diagnostics built from a partially-read expression.
func (r *Reader) Position() scanner.Position { return r.s.Position }

// next advances to the next token. Punctuation runes are combined into the
// two-character operators the grammar needs ("||", "==", "<=", ...) by
// peeking one rune ahead, since text/scanner otherwise hands back each
// punctuation rune as its own token.
func (r *Reader) next() {
	r.tok = r.s.Scan()
	r.curText = r.s.TokenText()
	switch r.tok {
	case scanner.EOF, scanner.Ident, scanner.Int, scanner.Float, scanner.Char, scanner.String:
		return
	}
	if combo, ok := combinablePair(r.tok, r.s.Peek()); ok {
		r.s.Next()
		r.curText = combo
	}
}

func combinablePair(c1, c2 rune) (string, bool) {
	switch c1 {
	case '|':
		if c2 == '|' {
			return "||", true
		}
	case '&':
		if c2 == '&' {
			return "&&", true
		}
	case '^':
		if c2 == '^' {
			return "^^", true
		}
	case '/':
		if c2 == '/' {
			return "//", true
		}
	case '%':
		if c2 == '%' {
			return "%%", true
		}
	case '=':
		if c2 == '=' {
			return "==", true
		}
	case '!':
		if c2 == '=' {
			return "!=", true
		}
	case '<':
		if c2 == '<' {
			return "<<", true
		}
		if c2 == '=' {
			return "<=", true
		}
	case '>':
		if c2 == '>' {
			return ">>", true
		}
		if c2 == '=' {
			return ">=", true
		}
	}
	return "", false
}

func (r *Reader) text() string { return r.curText }

// Read parses one expression and returns it. The caller is responsible
// for calling Simplify on the result if a leveled tree is wanted; Read
// only builds the raw parse, the same division of labor asm/parser.go
// draws between scanning/compiling and the VM's own arithmetic.
func (r *Reader) Read() (*expr.Expr, error) {
	e := expr.New()
	if err := r.readLogicalOr(e); err != nil {
		return nil, err
	}
	if r.err != nil {
		return nil, r.err
	}
	return e, nil
}

// AtEOF reports whether the reader has consumed the entire input.
func (r *Reader) AtEOF() bool { return r.tok == scanner.EOF }

type binLevel struct {
	toks []string
	ops  []op.Operator
	next func(*Reader, *expr.Expr) error
}

func (r *Reader) readBinary(e *expr.Expr, lvl binLevel) error {
	if err := lvl.next(r, e); err != nil {
		return err
	}
	for {
		o, ok := matchOp(r.text(), lvl.toks, lvl.ops)
		if !ok {
			return nil
		}
		r.next()
		if err := lvl.next(r, e); err != nil {
			return err
		}
		if err := e.AppendOp(o, 2); err != nil {
			return errors.Wrap(err, "asmtext")
		}
	}
}

func matchOp(text string, toks []string, ops []op.Operator) (op.Operator, bool) {
	for i, t := range toks {
		if t == text {
			return ops[i], true
		}
	}
	return 0, false
}

func (r *Reader) readLogicalOr(e *expr.Expr) error {
	return r.readBinary(e, binLevel{
		toks: []string{"||", "^^"},
		ops:  []op.Operator{op.LOR, op.LXOR},
		next: (*Reader).readLogicalAnd,
	})
}

func (r *Reader) readLogicalAnd(e *expr.Expr) error {
	return r.readBinary(e, binLevel{
		toks: []string{"&&"},
		ops:  []op.Operator{op.LAND},
		next: (*Reader).readComparison,
	})
}

func (r *Reader) readComparison(e *expr.Expr) error {
	return r.readBinary(e, binLevel{
		toks: []string{"==", "!=", "<=", ">=", "<", ">"},
		ops:  []op.Operator{op.EQ, op.NE, op.LE, op.GE, op.LT, op.GT},
		next: (*Reader).readBitOr,
	})
}

func (r *Reader) readBitOr(e *expr.Expr) error {
	return r.readBinary(e, binLevel{
		toks: []string{"|", "^"},
		ops:  []op.Operator{op.OR, op.XOR},
		next: (*Reader).readBitAnd,
	})
}

func (r *Reader) readBitAnd(e *expr.Expr) error {
	return r.readBinary(e, binLevel{
		toks: []string{"&"},
		ops:  []op.Operator{op.AND},
		next: (*Reader).readShift,
	})
}

func (r *Reader) readShift(e *expr.Expr) error {
	return r.readBinary(e, binLevel{
		toks: []string{"<<", ">>"},
		ops:  []op.Operator{op.SHL, op.SHR},
		next: (*Reader).readAdditive,
	})
}

func (r *Reader) readAdditive(e *expr.Expr) error {
	return r.readBinary(e, binLevel{
		toks: []string{"+", "-"},
		ops:  []op.Operator{op.ADD, op.SUB},
		next: (*Reader).readMultiplicative,
	})
}

func (r *Reader) readMultiplicative(e *expr.Expr) error {
	return r.readBinary(e, binLevel{
		toks: []string{"*", "/", "//", "%", "%%"},
		ops:  []op.Operator{op.MUL, op.DIV, op.SIGNDIV, op.MOD, op.SIGNMOD},
		next: (*Reader).readWRT,
	})
}

// readWRT handles the postfix "expr WRT base" target-modifier form.
func (r *Reader) readWRT(e *expr.Expr) error {
	if err := r.readUnary(e); err != nil {
		return err
	}
	if r.tok == scanner.Ident && r.text() == "wrt" {
		r.next()
		if err := r.readUnary(e); err != nil {
			return err
		}
		if err := e.AppendOp(op.WRT, 2); err != nil {
			return errors.Wrap(err, "asmtext")
		}
	}
	return nil
}

func (r *Reader) readUnary(e *expr.Expr) error {
	switch r.text() {
	case "-":
		r.next()
		if err := r.readUnary(e); err != nil {
			return err
		}
		return e.AppendOp(op.NEG, 1)
	case "~":
		r.next()
		if err := r.readUnary(e); err != nil {
			return err
		}
		return e.AppendOp(op.NOT, 1)
	case "!":
		r.next()
		if err := r.readUnary(e); err != nil {
			return err
		}
		return e.AppendOp(op.LNOT, 1)
	}
	if r.tok == scanner.Ident && r.text() == "seg" {
		r.next()
		if err := r.readUnary(e); err != nil {
			return err
		}
		return e.AppendOp(op.SEG, 1)
	}
	return r.readSegOff(e)
}

// readSegOff handles the "seg:off" pair form, binding tighter than WRT but
// looser than a bare primary so "seg:off wrt base" parses as
// WRT(SEGOFF(seg,off), base).
func (r *Reader) readSegOff(e *expr.Expr) error {
	if err := r.readPrimary(e); err != nil {
		return err
	}
	if r.tok == ':' {
		r.next()
		if err := r.readPrimary(e); err != nil {
			return err
		}
		if err := e.AppendOp(op.SEGOFF, 2); err != nil {
			return errors.Wrap(err, "asmtext")
		}
	}
	return nil
}

func (r *Reader) readPrimary(e *expr.Expr) error {
	switch r.tok {
	case scanner.Int:
		n, err := bigint.FromString(r.text(), 0)
		if err != nil {
			return errors.Wrapf(err, "asmtext: %s", r.text())
		}
		e.AppendInt(n)
		r.next()
		return nil
	case scanner.Float:
		f, err := expr.FloatFromString(r.text(), 53)
		if err != nil {
			return errors.Wrapf(err, "asmtext: %s", r.text())
		}
		e.AppendFloat(f)
		r.next()
		return nil
	case scanner.Char:
		c, _, _, err := strconv.UnquoteChar(r.text()[1:len(r.text())-1], '\'')
		if err != nil {
			return errors.Wrap(err, "asmtext")
		}
		e.AppendInt(bigint.FromInt64(int64(c)))
		r.next()
		return nil
	case scanner.Ident:
		return r.readIdent(e)
	case '(':
		r.next()
		if err := r.readLogicalOr(e); err != nil {
			return err
		}
		if r.tok != ')' {
			return errors.New("asmtext: expected ')'")
		}
		r.next()
		return nil
	default:
		return errors.Errorf("asmtext: unexpected token %q", r.text())
	}
}

func (r *Reader) readIdent(e *expr.Expr) error {
	name := r.text()
	r.next()

	if r.arch != nil {
		if reg, ok := r.arch.LookupRegister(name); ok {
			e.AppendReg(reg)
			return nil
		}
	}
	if r.syms != nil {
		if sym, ok := r.syms.Lookup(name); ok {
			e.AppendSym(sym)
			return nil
		}
		// An undefined name still resolves to a forward-reference symbol,
		// the same way asm/parser.go's makeLabelRef creates a pending
		// label entry on first use rather than erroring immediately.
		sym := &symbol.Symbol{Name: name}
		e.AppendSym(sym)
		return nil
	}
	return errors.Errorf("asmtext: undefined name %q", name)
}
