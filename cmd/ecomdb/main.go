// Package main is the entry point for the ecomdb binary.
package main

import (
	"os"

	"ecomdb/cli"
)

func main() {
	os.Exit(cli.Execute())
}
