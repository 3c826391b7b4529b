package execshell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"sort"
)

// OSCommandRunner executes shell commands using the operating system process
// API. Captured output is also forwarded to the configured writers so the
// invoked tool's streams remain visible to the caller.
type OSCommandRunner struct {
	standardOutput io.Writer
	standardError  io.Writer
}

// NewOSCommandRunner builds a runner forwarding output to the process streams.
func NewOSCommandRunner() OSCommandRunner {
	return OSCommandRunner{standardOutput: os.Stdout, standardError: os.Stderr}
}

// NewSilentOSCommandRunner builds a runner that only captures output.
func NewSilentOSCommandRunner() OSCommandRunner {
	return OSCommandRunner{}
}

// Run executes the command, blocking until the subprocess exits. A non-zero
// exit status is reported through ExecutionResult.ExitCode, not as an error.
func (runner OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executableCommand := exec.CommandContext(executionContext, string(command.Name), command.Details.Arguments...)
	executableCommand.Dir = command.Details.WorkingDirectory
	executableCommand.Env = mergeEnvironment(command.Details.EnvironmentVariables)

	if len(command.Details.StandardInput) > 0 {
		executableCommand.Stdin = bytes.NewReader(command.Details.StandardInput)
	}

	var standardOutputBuffer bytes.Buffer
	var standardErrorBuffer bytes.Buffer
	executableCommand.Stdout = runner.teeWriter(&standardOutputBuffer, runner.standardOutput)
	executableCommand.Stderr = runner.teeWriter(&standardErrorBuffer, runner.standardError)

	runError := executableCommand.Run()
	executionResult := ExecutionResult{
		StandardOutput: standardOutputBuffer.String(),
		StandardError:  standardErrorBuffer.String(),
	}

	if runError != nil {
		var exitError *exec.ExitError
		if errors.As(runError, &exitError) {
			executionResult.ExitCode = exitError.ExitCode()
			return executionResult, nil
		}
		return executionResult, runError
	}

	return executionResult, nil
}

func (runner OSCommandRunner) teeWriter(captureBuffer *bytes.Buffer, forwardWriter io.Writer) io.Writer {
	if forwardWriter == nil {
		return captureBuffer
	}
	return io.MultiWriter(captureBuffer, forwardWriter)
}

func mergeEnvironment(environmentVariables map[string]string) []string {
	merged := os.Environ()
	if len(environmentVariables) == 0 {
		return merged
	}

	keys := make([]string, 0, len(environmentVariables))
	for key := range environmentVariables {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		merged = append(merged, key+"="+environmentVariables[key])
	}
	return merged
}
