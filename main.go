// Package main is the entry point for the mediadex crawler CLI.
package main

import "mediadex/cmd"

func main() {
	cmd.Execute()
}
