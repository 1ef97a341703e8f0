package main

import (
	"os"

	"github.com/quarry-dev/quarry/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
