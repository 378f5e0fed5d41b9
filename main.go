package main

import (
	"os"

	"github.com/agentrun/agentrun/cmd"
	"github.com/agentrun/agentrun/internal/build"
)

var version = "0.0.0"

func init() {
	build.Version = version
}

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
