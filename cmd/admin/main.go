package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fantaqb-admin: %v\n", err)
		os.Exit(1)
	}
}
