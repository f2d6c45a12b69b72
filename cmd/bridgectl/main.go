package main

import (
	"fmt"
	"os"

	"github.com/volantvm/bridgectl/internal/cli/standard"
)

func main() {
	if err := standard.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "command error: %v\n", err)
		os.Exit(1)
	}
}
