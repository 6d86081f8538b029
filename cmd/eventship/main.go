package main

import (
	"fmt"
	"os"

	"github.com/block/eventship-go/internal/cmd"
)

// Version information set via ldflags during build
// Example: go build -ldflags="-X main.version=1.0.0"
var version = "dev"

func main() {
	root := cmd.NewRootCmd(os.Stdout, os.Stderr)
	root.Version = version
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "eventship:", err)
		os.Exit(1)
	}
}
