// Command rtengine is the CLI entrypoint for the continuous-query
// dataflow engine: it wires internal/cli's cobra command tree to the
// process's stdio and exit code.
package main

import (
	"os"

	"github.com/roach88/nysm/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:]))
}
