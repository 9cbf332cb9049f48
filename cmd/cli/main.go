package main

import (
	"os"

	"github.com/ainewshub/newshub/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
