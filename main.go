package main

import (
	"os"

	"github.com/bimmerbailey/superdate/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
