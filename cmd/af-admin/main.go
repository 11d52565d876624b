package main

import (
	"os"

	"github.com/accelefreight/af-server/internal/adapters/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
