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

// yasmdump reads a raw binary file and decodes individual fields out of
// it using package bigint, the same packing routines value.OutputBasic
// uses to write such fields during assembly. It is a read-side companion
// to yasmctl's "value" subcommand: where that one writes a field from an
// expression, this one reads one back out of an existing binary.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli"

	"github.com/yasm/yasm-nextgen-sub002/bigint"
)

func main() {
	app := cli.NewApp()
	app.Name = "yasmdump"
	app.Usage = "Decode fixed-size and LEB128 integer fields out of a raw binary"
	app.Action = func(c *cli.Context) error {
		cli.ShowAppHelp(c)
		return nil
	}
	app.Commands = []cli.Command{
		fieldCommand(),
		leb128Command(),
		hexCommand(),
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "yasmdump:", err)
		os.Exit(1)
	}
}

func fieldCommand() cli.Command {
	return cli.Command{
		Name:      "field",
		Aliases:   []string{"f"},
		Usage:     "Decode one fixed-width integer field",
		ArgsUsage: "file offset size-in-bytes",
		Flags: []cli.Flag{
			cli.BoolFlag{Name: "signed", Usage: "interpret the field as two's-complement signed"},
			cli.BoolFlag{Name: "big-endian", Usage: "read the field big-endian instead of little-endian"},
		},
		Action: func(c *cli.Context) error {
			args := c.Args()
			if len(args) < 3 {
				return cli.NewExitError("usage: yasmdump field file offset size-in-bytes", 1)
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return cli.NewExitError(fmt.Sprintf("reading %s: %v", args[0], err), 1)
			}
			offset, err := strconv.ParseInt(args[1], 0, 64)
			if err != nil {
				return cli.NewExitError("could not parse offset: "+err.Error(), 1)
			}
			size, err := strconv.ParseInt(args[2], 0, 64)
			if err != nil {
				return cli.NewExitError("could not parse size: "+err.Error(), 1)
			}
			if offset < 0 || size < 0 || offset+size > int64(len(data)) {
				return cli.NewExitError("field lies outside the file", 1)
			}

			order := bigint.LittleEndian
			if c.Bool("big-endian") {
				order = bigint.BigEndian
			}
			n, err := bigint.FromBuffer(data[offset:offset+size], c.Bool("signed"), order)
			if err != nil {
				return cli.NewExitError("decoding field: "+err.Error(), 1)
			}
			fmt.Println(n.String())
			return nil
		},
	}
}

func leb128Command() cli.Command {
	return cli.Command{
		Name:      "leb128",
		Aliases:   []string{"l"},
		Usage:     "Decode a run of consecutive LEB128 values",
		ArgsUsage: "file offset count",
		Flags: []cli.Flag{
			cli.BoolFlag{Name: "signed", Usage: "decode as signed LEB128"},
		},
		Action: func(c *cli.Context) error {
			args := c.Args()
			if len(args) < 3 {
				return cli.NewExitError("usage: yasmdump leb128 file offset count", 1)
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return cli.NewExitError(fmt.Sprintf("reading %s: %v", args[0], err), 1)
			}
			offset, err := strconv.ParseInt(args[1], 0, 64)
			if err != nil {
				return cli.NewExitError("could not parse offset: "+err.Error(), 1)
			}
			count, err := strconv.Atoi(args[2])
			if err != nil {
				return cli.NewExitError("could not parse count: "+err.Error(), 1)
			}
			if offset < 0 || offset > int64(len(data)) {
				return cli.NewExitError("offset lies outside the file", 1)
			}

			pos := int(offset)
			signed := c.Bool("signed")
			for i := 0; i < count; i++ {
				if pos >= len(data) {
					return cli.NewExitError("ran out of data before decoding count values", 1)
				}
				n, consumed, err := bigint.FromLEB128(data[pos:], signed)
				if err != nil {
					return cli.NewExitError(fmt.Sprintf("decoding value %d: %v", i, err), 1)
				}
				fmt.Printf("%d: %s (%d bytes)\n", i, n.String(), consumed)
				pos += consumed
			}
			return nil
		},
	}
}

func hexCommand() cli.Command {
	return cli.Command{
		Name:      "hex",
		Aliases:   []string{"x"},
		Usage:     "Hex dump a range of the file",
		ArgsUsage: "file [offset] [length]",
		Action: func(c *cli.Context) error {
			args := c.Args()
			if len(args) < 1 {
				return cli.NewExitError("usage: yasmdump hex file [offset] [length]", 1)
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return cli.NewExitError(fmt.Sprintf("reading %s: %v", args[0], err), 1)
			}

			offset := int64(0)
			if len(args) >= 2 {
				if offset, err = strconv.ParseInt(args[1], 0, 64); err != nil {
					return cli.NewExitError("could not parse offset: "+err.Error(), 1)
				}
			}
			length := int64(len(data)) - offset
			if len(args) >= 3 {
				if length, err = strconv.ParseInt(args[2], 0, 64); err != nil {
					return cli.NewExitError("could not parse length: "+err.Error(), 1)
				}
			}
			if offset < 0 || offset > int64(len(data)) {
				return cli.NewExitError("offset lies outside the file", 1)
			}
			if offset+length > int64(len(data)) {
				length = int64(len(data)) - offset
			}

			hexDump(data[offset : offset+length], offset)
			return nil
		},
	}
}

func hexDump(data []byte, base int64) {
	for i := 0; i < len(data); i += 16 {
		end := i + 16
		if end > len(data) {
			end = len(data)
		}
		fmt.Printf("%08X  ", base+int64(i))
		for j := i; j < i+16; j++ {
			if j < end {
				fmt.Printf("%02X ", data[j])
			} else {
				fmt.Print("   ")
			}
		}
		fmt.Print(" |")
		for j := i; j < end; j++ {
			c := data[j]
			if c >= 0x20 && c < 0x7f {
				fmt.Printf("%c", c)
			} else {
				fmt.Print(".")
			}
		}
		fmt.Println("|")
	}
}
