package main

import (
	"os"

	"github.com/docugraph/docugraph/cmd/docugraph"
)

func main() {
	if err := docugraph.Execute(); err != nil {
		os.Exit(1)
	}
}
