package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/tyemirov/colx/cmd/cli"
	"github.com/tyemirov/colx/internal/taskrunner"
)

const (
	exitErrorTemplateConstant = "%v\n"
	defaultFailureExitCode    = 1
)

// main executes the colx command-line application, mirroring a failing
// task's subprocess exit code when one is available.
func main() {
	executionError := cli.Execute()
	if executionError == nil {
		return
	}

	fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)

	var actionFailure taskrunner.ActionFailedError
	if errors.As(executionError, &actionFailure) && actionFailure.ExitCode > 0 {
		os.Exit(actionFailure.ExitCode)
	}
	os.Exit(defaultFailureExitCode)
}
