// File: version.go
// Title: Version Command
// Description: Prints the build version. The variables are overridable at
//              link time with -ldflags.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ebs %s (%s)\n", version, commit)
	},
}
