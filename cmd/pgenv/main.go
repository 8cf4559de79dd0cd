// Command pgenv runs a local PostgreSQL server for development and manages
// the binaries cache.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := buildRoot().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
