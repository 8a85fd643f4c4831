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

// Package bytecode declares the Bytecode and Container interfaces the
// core consumes: a unit of emitted output with a size and an
// optimizer-assigned offset, and the append-only container that holds a
// section's bytes. No concrete object-format writer lives here (spec
// Non-goals); this package is a boundary only.
package bytecode

// Bytecode is a unit of emitted output in the assembler's intermediate
// form. Offset is only meaningful after the optimizer has run.
type Bytecode interface {
	// Offset returns the bytecode's assigned absolute offset and true,
	// or (0, false) if the optimizer has not assigned one yet.
	Offset() (int, bool)

	// Len returns the bytecode's size in bytes.
	Len() int
}

// Container is the append-only sink a Bytecode's bytes are written into.
type Container interface {
	// AppendBytes appends raw bytes verbatim.
	AppendBytes(b []byte)

	// AppendField appends size bytes produced by emit, which is handed a
	// destination slice of that length to fill in place. This is the
	// hook by which an object-format writer delegates back to
	// value.Value.OutputBasic without this package needing to import the
	// value package.
	AppendField(size int, emit func(dest []byte) error) error

	// AppendLEB128 appends the LEB128 encoding of v.
	AppendLEB128(v int64, signed bool)

	// AppendAlign appends fill bytes until the container's length is a
	// multiple of boundary.
	AppendAlign(boundary int, fill byte)
}
