// Command isprime classifies integers from the command line.
//
//	isprime 97 561 252601
//	seq 1 100 | isprime -
//	isprime --lang zh --json 2701
//
// It exits 1 when any input is not an integer.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, errInvalidInput) {
			fmt.Fprintln(os.Stderr, "isprime:", err)
		}
		os.Exit(1)
	}
}
