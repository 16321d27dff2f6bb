// Command viewcheck runs assertion suites against static UI snapshots.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/viewcheck/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
