// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

// Command rvm assembles, inspects, and runs rvm programs.
package main

import (
	"os"
)

func main() {
	err := newRootCmd().Execute()
	if err != nil {
		os.Exit(1)
	}
}
