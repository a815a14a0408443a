package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ezrec/rvm/binfile"
)

func newAsmCmd(ss *session) (cmd *cobra.Command) {
	cmd = &cobra.Command{
		Use:   "asm [flags] SOURCE",
		Short: "assemble a source file into a program image.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			source := args[0]

			entry, _ := cmd.Flags().GetString("entry")
			if len(entry) == 0 {
				entry = ss.Config.Machine.Entry
			}

			emu, err := ss.load(source, 0, entry)
			if err != nil {
				return
			}

			output, _ := cmd.Flags().GetString("output")
			if len(output) == 0 {
				output = strings.TrimSuffix(source, filepath.Ext(source)) + ".rvm"
			}

			img := emu.Image()
			err = binfile.WriteFile(output, img)
			if err != nil {
				return
			}

			if ss.Verbose {
				fmt.Fprintf(cmd.OutOrStdout(), "%v: %v bytes, entry 0x%04x\n", output, len(img.Code), img.Header.EntryPoint)
			}
			return
		},
	}

	cmd.Flags().StringP("output", "o", "", "output image (default SOURCE with a .rvm extension)")
	cmd.Flags().String("entry", "", "entry label (default from configuration, else offset 0)")

	return
}
