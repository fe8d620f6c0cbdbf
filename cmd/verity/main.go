// Command verity validates, plays and verifies CUE-defined game worlds.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/verity/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
