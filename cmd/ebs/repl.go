// File: repl.go
// Title: Interactive REPL
// Description: A line-oriented read-eval-print loop. Each submitted snippet is
//              appended to the session's accumulated program and the whole
//              unit re-runs against a fresh engine, so declarations persist
//              across inputs without sharing interpreter state. Input history
//              persists to the configured history file.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/eblang/ebscript/script/builtins"
	"github.com/eblang/ebscript/script/engine"
	"github.com/eblang/ebscript/script/registry"
	"github.com/eblang/ebscript/script/types"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Explore the language interactively",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		line := liner.NewLiner()
		defer line.Close()
		line.SetCtrlCAborts(true)

		if f, err := os.Open(cfg.HistoryFile); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(cfg.HistoryFile); err == nil {
				line.WriteHistory(f)
				f.Close()
			}
		}()

		fmt.Println("ebs repl — :help for commands, :quit to leave")

		var session []string
		for {
			input, err := line.Prompt("ebs> ")
			if err != nil {
				if err == liner.ErrPromptAborted || err == io.EOF {
					return nil
				}
				return err
			}
			input = strings.TrimSpace(input)
			if input == "" {
				continue
			}
			line.AppendHistory(input)

			switch input {
			case ":quit", ":q":
				return nil
			case ":reset":
				session = nil
				fmt.Println("session cleared")
				continue
			case ":help":
				fmt.Println(hintStyle.Render(":quit leave  :reset clear session  :help this text"))
				continue
			}

			result, err := evalSnippet(append(session, input))
			if err != nil {
				fmt.Fprintln(os.Stderr, errorStyle.Render("error: ")+err.Error())
				continue
			}
			// only keep input that parsed and ran
			session = append(session, input)
			if result != nil {
				fmt.Println(types.Stringify(result))
			}
		}
	},
}

// evalSnippet runs the accumulated program and returns its top-level value
func evalSnippet(statements []string) (types.Value, error) {
	unit, err := engine.ParseWithConfig(strings.Join(statements, "\n"), &cfg)
	if err != nil {
		return nil, err
	}

	reg := registry.New(logger)
	if err := builtins.StandardLibrary(reg); err != nil {
		return nil, err
	}

	eng, err := engine.New(unit, engine.Options{
		Registry: reg,
		Logger:   logger,
		Config:   &cfg,
		Output:   os.Stdout,
	})
	if err != nil {
		return nil, err
	}
	defer eng.Close()

	result, err := eng.Run(context.Background(), nil)
	if err != nil {
		return nil, err
	}
	return result.Value, nil
}
