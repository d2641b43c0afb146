// Package main is the entry point for the sapflow CLI application.
package main

import (
	"sapflow/cli/cmd"
)

func main() {
	cmd.Execute()
}
