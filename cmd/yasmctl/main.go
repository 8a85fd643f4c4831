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

// yasmctl is a small command-line harness over the core packages: it
// reads one expression from its arguments, runs it through the same
// parse/simplify/finalize path a real assembler front end would use, and
// prints the result. It exists to exercise the core end-to-end from the
// command line, not as a standalone assembler.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yasm/yasm-nextgen-sub002/bigint"
	"github.com/yasm/yasm-nextgen-sub002/diag"
	"github.com/yasm/yasm-nextgen-sub002/expr"
	"github.com/yasm/yasm-nextgen-sub002/internal/asmtext"
	"github.com/yasm/yasm-nextgen-sub002/loc"
	"github.com/yasm/yasm-nextgen-sub002/symbol"
	"github.com/yasm/yasm-nextgen-sub002/value"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "yasmctl:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "yasmctl",
		Short: "Inspect the yasm-nextgen-sub002 expression and value core",
	}
	root.AddCommand(newEvalCmd())
	root.AddCommand(newLEB128Cmd())
	root.AddCommand(newValueCmd())
	return root
}

func newEvalCmd() *cobra.Command {
	var preserveRegMul bool
	cmd := &cobra.Command{
		Use:   "eval <expr>",
		Short: "Parse and simplify an expression, printing the resulting tree",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := strings.Join(args, " ")
			r := asmtext.New("<arg>", []byte(src), nil, nil)
			e, err := r.Read()
			if err != nil {
				return err
			}
			log := &diag.Log{}
			var simplified *expr.Expr
			if preserveRegMul {
				simplified = e.Simplify(log, expr.WithPreserveRegMul())
			} else {
				simplified = e.Simplify(log)
			}
			printDiagnostics(cmd, log)
			root := simplified.Root()
			if root < 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "0")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), describeTerm(simplified, root))
			return nil
		},
	}
	cmd.Flags().BoolVar(&preserveRegMul, "preserve-reg-mul", false, "keep an explicit 1*reg multiplication intact")
	return cmd
}

func newLEB128Cmd() *cobra.Command {
	var signed bool
	cmd := &cobra.Command{
		Use:   "leb128 <integer>",
		Short: "Print the LEB128 encoding of an integer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := bigint.FromString(args[0], 0)
			if err != nil {
				return err
			}
			buf := n.AppendLEB128(nil, signed)
			fmt.Fprintln(cmd.OutOrStdout(), formatHex(buf))
			return nil
		},
	}
	cmd.Flags().BoolVar(&signed, "signed", false, "encode as signed LEB128")
	return cmd
}

func newValueCmd() *cobra.Command {
	var size int
	var warnEnabled bool
	var signed bool
	cmd := &cobra.Command{
		Use:   "value <expr>",
		Short: "Finalize an expression into a Value and print its emitted bytes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := strings.Join(args, " ")
			r := asmtext.New("<arg>", []byte(src), nil, nil)
			e, err := r.Read()
			if err != nil {
				return err
			}

			var opts []value.Option
			if warnEnabled {
				opts = append(opts, value.WithWarnEnabled())
			}
			if signed {
				opts = append(opts, value.WithSign())
			}
			v := value.New(size, opts...)

			log := &diag.Log{}
			if err := v.Finalize(e, loc.Location{}, emptyTable{}, log); err != nil {
				printDiagnostics(cmd, log)
				return err
			}
			printDiagnostics(cmd, log)

			if v.IsRelative() {
				fmt.Fprintln(cmd.OutOrStdout(), "needs relocation: unresolved relative symbol")
				return nil
			}

			warnMode := bigint.WarnUnsigned
			if signed {
				warnMode = bigint.WarnSigned
			}
			dest := make([]byte, (size+7)/8)
			status, err := v.OutputBasic(dest, nil, warnMode, nil, log)
			printDiagnostics(cmd, log)
			if err != nil {
				return err
			}
			if status == value.NeedsRelocation {
				fmt.Fprintln(cmd.OutOrStdout(), "needs relocation")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatHex(dest))
			return nil
		},
	}
	cmd.Flags().IntVar(&size, "size", 32, "field width in bits")
	cmd.Flags().BoolVar(&warnEnabled, "warn", false, "report overflow/misalignment warnings")
	cmd.Flags().BoolVar(&signed, "signed", false, "treat the value as signed")
	return cmd
}

// emptyTable is a symbol.Table with no absolute sections, used when
// yasmctl is handed an expression with no external symbol table.
type emptyTable struct{}

func (emptyTable) Lookup(string) (*symbol.Symbol, bool)    { return nil, false }
func (emptyTable) Anonymous() *symbol.Symbol               { return &symbol.Symbol{} }
func (emptyTable) AbsoluteSectionStart(string) (int, bool) { return 0, false }

func formatHex(b []byte) string {
	var sb strings.Builder
	for i, c := range b {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.FormatUint(uint64(c), 16))
	}
	return sb.String()
}

func printDiagnostics(cmd *cobra.Command, log *diag.Log) {
	for _, d := range log.Entries() {
		fmt.Fprintln(cmd.ErrOrStderr(), d.String())
	}
}
