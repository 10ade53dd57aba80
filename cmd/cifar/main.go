// Package main provides the cifar CLI: fetch, prepare and inspect the
// CIFAR-10 dataset.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
