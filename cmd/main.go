package main

import (
	"os"

	"github.com/truth0530/ds-ch-mission-2026short-sub000/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
