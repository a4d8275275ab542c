// Command smcctl is a local demonstration harness for the SMC protocol: it
// wires a trusted dealer, an in-memory bus, and one engine per participant
// and prints the reconstructed result, in the teacher's cobra CLI idiom
// (cmd/threshold-cli/main.go).
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
