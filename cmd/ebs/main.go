// File: main.go
// Title: CLI Entry Point
// Description: Dispatches to the cobra command tree.

package main

func main() {
	if err := rootCmd.Execute(); err != nil {
		fail(err)
	}
}
