package main

import (
	"os"

	"github.com/msto63/exprkit/cmd/exprkit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
