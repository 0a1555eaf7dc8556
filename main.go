package main

import (
	"os"

	"github.com/tephra-dev/tephra/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
