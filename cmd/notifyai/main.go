package main

import (
	"os"

	"github.com/ahamitd/notifyai/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
