// File: check.go
// Title: Check Command
// Description: Syntax-checks one or more script files without executing them,
//              reporting the first error per file.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eblang/ebscript/script/engine"
)

var checkCmd = &cobra.Command{
	Use:   "check <script.ebs> [more...]",
	Short: "Parse script files and report errors without running them",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, path := range args {
			source, err := os.ReadFile(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %s\n", errorStyle.Render(path+":"), err)
				failed++
				continue
			}
			if _, err := engine.ParseWithConfig(string(source), &cfg); err != nil {
				fmt.Fprintf(os.Stderr, "%s %s\n", errorStyle.Render(path+":"), err)
				failed++
				continue
			}
			fmt.Printf("%s ok\n", path)
		}
		if failed > 0 {
			return fmt.Errorf("%d file(s) failed", failed)
		}
		return nil
	},
}
