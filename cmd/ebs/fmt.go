// File: fmt.go
// Title: Format Command
// Description: Pretty-prints a script in canonical form. The output is
//              guaranteed to re-parse to the same program, so it can safely
//              rewrite the file in place with --write.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eblang/ebscript/script/ast"
	"github.com/eblang/ebscript/script/engine"
)

var flagFmtWrite bool

var fmtCmd = &cobra.Command{
	Use:   "fmt <script.ebs>",
	Short: "Pretty-print a script in canonical form",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		unit, err := engine.ParseWithConfig(string(source), &cfg)
		if err != nil {
			return err
		}
		formatted := ast.Print(unit.Program)

		if flagFmtWrite {
			return os.WriteFile(args[0], []byte(formatted), 0o644)
		}
		fmt.Print(formatted)
		return nil
	},
}

func init() {
	fmtCmd.Flags().BoolVarP(&flagFmtWrite, "write", "w", false, "rewrite the file instead of printing")
}
