// Package main is the entry point for the deobf CLI.
package main

import "deobf.dev/pkg/deobf/cmd"

func main() {
	cmd.Execute()
}
