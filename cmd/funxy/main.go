// Command funxy drives the compiler frontend: it reads one or more
// source files, runs them through the full pipeline (scan, read, parse
// forms, decorate scope, check), and reports diagnostics.
package main

import (
	"fmt"
	"os"

	"github.com/funvibe/funxy/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
