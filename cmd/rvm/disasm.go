package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ezrec/rvm/vm"
)

func newDisasmCmd(ss *session) (cmd *cobra.Command) {
	cmd = &cobra.Command{
		Use:   "disasm FILE",
		Short: "disassemble a program image or assembly source.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			emu, err := ss.load(args[0], 0, "")
			if err != nil {
				return
			}

			out := cmd.OutOrStdout()
			for dec, derr := range vm.Disassemble(emu.Machine.Program) {
				if derr != nil {
					err = derr
					return
				}
				mark := " "
				if dec.Pc == emu.Entry {
					mark = ">"
				}
				fmt.Fprintf(out, "%v%04x: %v\n", mark, dec.Pc, dec)
			}
			return
		},
	}

	return
}
