package main

import (
	"fmt"
	"os"

	"github.com/Ronei-rcm/rare-toy-companion-final-8040-sub010/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
