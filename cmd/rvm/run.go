package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ezrec/rvm/snapshot"
	"github.com/ezrec/rvm/vm"
)

func newRunCmd(ss *session) (cmd *cobra.Command) {
	cmd = &cobra.Command{
		Use:   "run [flags] FILE",
		Short: "run a program image or assembly source.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			entry, _ := cmd.Flags().GetString("entry")
			if len(entry) == 0 {
				entry = ss.Config.Machine.Entry
			}

			emu, err := ss.load(args[0], ss.heapSize(cmd), entry)
			if err != nil {
				return
			}

			emu.MaxSteps = ss.Config.Machine.MaxSteps
			if cmd.Flags().Changed("max-steps") {
				emu.MaxSteps, _ = cmd.Flags().GetInt("max-steps")
			}

			runErr := emu.Run()

			if regs, _ := cmd.Flags().GetBool("regs"); regs {
				fmt.Fprint(cmd.OutOrStdout(), emu.Machine.String())
			}

			if dump, _ := cmd.Flags().GetString("dump"); len(dump) != 0 {
				err = saveSnapshot(dump, emu.Machine)
			}

			err = errors.Join(runErr, err)
			return
		},
	}

	cmd.Flags().Int("heap", 0, "heap size in bytes (default from configuration)")
	cmd.Flags().Int("max-steps", 0, "instruction limit, 0 for none (default from configuration)")
	cmd.Flags().String("entry", "", "entry label, for assembly sources")
	cmd.Flags().String("dump", "", "write a machine snapshot to FILE after the run")
	cmd.Flags().Bool("regs", false, "print the machine state after the run")

	return
}

func saveSnapshot(name string, m *vm.Machine) (err error) {
	ouf, err := os.Create(name)
	if err != nil {
		return
	}

	err = snapshot.Save(ouf, m)
	err = errors.Join(err, ouf.Close())
	return
}
