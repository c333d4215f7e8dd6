// cmd/companions/main.go
//
// Entry point for the companions CLI. Every subcommand works on the project
// in the current directory (or --project): it reads .companions/config.yaml,
// loads the tenant units found in the tenants directory into a reference host
// and runs the augmentation core over them.

package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		die(err)
	}
}

func die(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
