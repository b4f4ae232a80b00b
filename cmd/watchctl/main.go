// Package main is the entry point for watchctl, the operator tool for
// inspecting what the terminal watchdog sees.
package main

import (
	"os"

	"termwatch/cmd/watchctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
