// Command janus dispatches authenticated calls to the Janus pallet and
// inspects its SQLite journal.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/janus/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "janus: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
