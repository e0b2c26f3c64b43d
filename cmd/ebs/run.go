// File: run.go
// Title: Run Command
// Description: Parses a script file, wires the standard builtin library, and
//              executes it. Ctrl-C requests cooperative cancellation; a
//              top-level return value is printed to stdout.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/eblang/ebscript/script/builtins"
	"github.com/eblang/ebscript/script/engine"
	"github.com/eblang/ebscript/script/registry"
	"github.com/eblang/ebscript/script/types"
)

var runCmd = &cobra.Command{
	Use:   "run <script.ebs>",
	Short: "Execute a script file",
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

		reg := registry.New(logger)
		if err := builtins.StandardLibrary(reg); err != nil {
			return err
		}

		eng, err := engine.New(unit, engine.Options{
			Registry: reg,
			Logger:   logger,
			Config:   &cfg,
			Output:   os.Stdout,
		})
		if err != nil {
			return err
		}
		defer eng.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		result, err := eng.Run(ctx, nil)
		if err != nil {
			return err
		}
		if result.Value != nil {
			fmt.Println(types.Stringify(result.Value))
		}
		return nil
	},
}
