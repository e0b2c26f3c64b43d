// File: root.go
// Title: CLI Root Command
// Description: Defines the ebs root command and the flags shared by all
//              subcommands: config file path, log level, and log format.
//              Configuration resolves in order: defaults, config file,
//              environment, then flags.

package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/eblang/ebscript/core/config"
	"github.com/eblang/ebscript/core/log"
)

var (
	flagConfig   string
	flagLogLevel string

	cfg    config.EngineConfig
	logger *log.Logger
)

var errorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("9")).
	Bold(true)

var hintStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("8"))

var rootCmd = &cobra.Command{
	Use:   "ebs",
	Short: "Run and inspect ebs scripts",
	Long: `ebs executes declaratively typed scripts: run a file, syntax-check
it, pretty-print it, or explore the language interactively.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if flagConfig != "" {
			cfg, err = config.Load(flagConfig)
		} else {
			cfg = config.Default()
		}
		if err != nil {
			return err
		}
		if flagLogLevel != "" {
			cfg.LogLevel = flagLogLevel
		}

		logger = log.GetDefault().WithLevel(log.ParseLevel(cfg.LogLevel))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to a toml or yaml config file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(versionCmd)
}

// fail renders an error to stderr and returns a non-zero exit
func fail(err error) {
	fmt.Fprintln(os.Stderr, errorStyle.Render("error: ")+err.Error())
	os.Exit(1)
}
