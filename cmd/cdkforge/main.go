package main

import (
	"os"

	"github.com/cdkforge/cdkforge/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
