// Command sphinxql compiles and runs Manticore search queries.
package main

import (
	"os"

	"github.com/roach88/sphinxql/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:], os.Stdout, os.Stderr))
}
