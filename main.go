package main

import (
	"os"

	"github.com/warren-vcs/warren/cmd"
	"github.com/warren-vcs/warren/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(errors.GetExitCode(err))
	}
}
