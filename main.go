package main

import (
	"fmt"
	"os"

	"dirdump/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "dirdump:", err)
		os.Exit(cmd.ExitCode(err))
	}
}
