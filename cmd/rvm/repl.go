package main

import (
	"github.com/spf13/cobra"

	"github.com/ezrec/rvm/emulator"
	"github.com/ezrec/rvm/repl"
)

func newReplCmd(ss *session) (cmd *cobra.Command) {
	cmd = &cobra.Command{
		Use:   "repl",
		Short: "execute instructions interactively.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			emu := emulator.NewEmulator(ss.heapSize(cmd))
			emu.Verbose = ss.Verbose

			rp := repl.New(emu)
			rp.Verbose = ss.Verbose
			rp.Prompt = ss.Config.Repl.Prompt
			rp.Banner = ss.Config.Repl.Banner

			err = rp.Start(cmd.InOrStdin(), cmd.OutOrStdout())
			return
		},
	}

	cmd.Flags().Int("heap", 0, "heap size in bytes (default from configuration)")

	return
}
