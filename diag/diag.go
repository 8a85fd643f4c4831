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

// Package diag carries diagnostics (errors and warnings) out of the core
// to whatever presents them; the core never formats diagnostic text or
// writes it anywhere itself (spec Non-goals).
package diag

import (
	"fmt"
	"text/scanner"
)

// Source is a source range. The core treats it as an opaque value it
// carries and forwards; text/scanner.Position is reused here rather than
// inventing a parallel type, since every consumer of this core already
// produces scanner.Position values while parsing (see internal/asmtext).
type Source = scanner.Position

// Kind enumerates the diagnostic kinds the core can report.
type Kind int

const (
	ErrDivideByZero Kind = iota
	ErrFloatInvalidOp
	WarnFloatOverflow
	WarnFloatUnderflow
	WarnFloatInexact
	ErrTooComplexExpression
	WarnValueOverflow
	WarnValueDoesNotFit
	WarnMisalignedValue
)

var kindNames = [...]string{
	ErrDivideByZero:         "divide by zero",
	ErrFloatInvalidOp:       "invalid floating point operation",
	WarnFloatOverflow:       "floating point overflow",
	WarnFloatUnderflow:      "floating point underflow",
	WarnFloatInexact:        "inexact floating point result",
	ErrTooComplexExpression: "expression too complex",
	WarnValueOverflow:       "value overflow",
	WarnValueDoesNotFit:     "value does not fit in field",
	WarnMisalignedValue:     "misaligned value",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown diagnostic"
}

// IsError reports whether k is a hard error (as opposed to a warning).
// Errors mark the current statement as failed; warnings never do.
func (k Kind) IsError() bool {
	switch k {
	case ErrDivideByZero, ErrFloatInvalidOp, ErrTooComplexExpression:
		return true
	default:
		return false
	}
}

// Diagnostic is one reported condition.
type Diagnostic struct {
	Kind    Kind
	Source  Source
	Message string
}

func (d Diagnostic) String() string {
	if d.Message == "" {
		return fmt.Sprintf("%s: %s", d.Source, d.Kind)
	}
	return fmt.Sprintf("%s: %s: %s", d.Source, d.Kind, d.Message)
}

// Sink receives diagnostics produced while processing an Expr or a Value.
// It is passed explicitly through the call chain, never via package-level
// state.
type Sink interface {
	Report(Diagnostic)
}

// Log is a simple in-memory Sink that accumulates diagnostics in order,
// an accumulate-and-report container in the style of an Errwarns list.
type Log struct {
	entries []Diagnostic
}

// Report appends d to the log.
func (l *Log) Report(d Diagnostic) { l.entries = append(l.entries, d) }

// Entries returns a copy of the diagnostics reported so far, in report
// order.
func (l *Log) Entries() []Diagnostic {
	out := make([]Diagnostic, len(l.entries))
	copy(out, l.entries)
	return out
}

// HasErrors reports whether any reported diagnostic IsError.
func (l *Log) HasErrors() bool {
	for _, e := range l.entries {
		if e.Kind.IsError() {
			return true
		}
	}
	return false
}

// Reset empties the log for reuse across passes.
func (l *Log) Reset() { l.entries = l.entries[:0] }

// Discard is a Sink that drops every diagnostic; useful in tests and call
// sites that intentionally perform a best-effort simplification.
var Discard Sink = discard{}

type discard struct{}

func (discard) Report(Diagnostic) {}
