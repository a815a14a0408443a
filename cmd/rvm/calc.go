package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ezrec/rvm/calc"
)

func newCalcCmd(ss *session) (cmd *cobra.Command) {
	cmd = &cobra.Command{
		Use:   "calc EXPR...",
		Short: "evaluate an integer expression in reverse Polish notation.",
		Example: `  rvm calc 2 3 '*' 4 +
  rvm calc "5 2 mul 5 div"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ops, err := calc.Parse(strings.Join(args, " "))
			if err != nil {
				return
			}

			value, err := calc.Interpret(ops)
			if err != nil {
				return
			}

			fmt.Fprintln(cmd.OutOrStdout(), value)
			return
		},
	}

	return
}
