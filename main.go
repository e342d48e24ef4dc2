package main

import (
	"os"

	"github.com/sunledger/sunledger/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
