// seccompdb builds an in-memory decision-tree filter database from an OCI
// runtime-spec seccomp configuration, merges overlapping rules, and prints
// the result for inspection.
//
// Commands:
//
//	inspect  - print a bundle's merged decision tree
//	profile  - emit the built-in default seccomp profile as OCI JSON
//	version  - print build version information
package main

import (
	"fmt"
	"os"

	"github.com/scantist-ossops-m2/seccompdb/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
