package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/arnavshah/shift-roster-go/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		if errors.Is(err, cli.ErrNoRoster) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
