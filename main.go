package main

import (
	"fmt"
	"os"

	"github.com/tyemirov/taskr/cmd/cli"
)

const (
	exitErrorTemplateConstant = "taskr: %v\n"
)

// main executes the taskr command-line application.
func main() {
	if executionError := cli.Execute(); executionError != nil {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		os.Exit(cli.ExitCode(executionError))
	}
}
