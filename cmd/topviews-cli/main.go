package main

import (
	"fmt"
	"os"

	"github.com/mithrel/topviews/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		if !cli.Reported(err) {
			fmt.Fprintln(os.Stderr, "topviews-cli:", err)
		}
		os.Exit(1)
	}
}
