package main

import (
	"os"

	"github.com/paveg/linframe/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
