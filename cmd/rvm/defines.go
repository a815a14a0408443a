package main

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/ezrec/rvm/emulator"
)

func newDefinesCmd(ss *session) (cmd *cobra.Command) {
	cmd = &cobra.Command{
		Use:   "defines",
		Short: "list the equates predefined for assembly sources.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			emu := emulator.NewEmulator(0)
			defines := maps.Collect(emu.Defines())
			for _, key := range slices.Sorted(maps.Keys(defines)) {
				fmt.Fprintf(cmd.OutOrStdout(), ".equ %v %v\n", key, defines[key])
			}
			return
		},
	}

	return
}
