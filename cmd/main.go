package main

import (
	"os"

	"quiz-kingdom/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
