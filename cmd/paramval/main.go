package main

import (
	"os"

	"github.com/msto63/paramval/cmd/paramval/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
