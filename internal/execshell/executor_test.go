package execshell_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tyemirov/colx/internal/execshell"
)

const (
	testExecutionSuccessCaseNameConstant         = "success"
	testExecutionFailureCaseNameConstant         = "failure_exit_code"
	testExecutionRunnerErrorCaseNameConstant     = "runner_error"
	testGalaxyWrapperCaseNameConstant            = "galaxy_wrapper"
	testGitWrapperCaseNameConstant               = "git_wrapper"
	testLoggerInitializationCaseNameConstant     = "logger_validation"
	testRunnerInitializationCaseNameConstant     = "runner_validation"
	testSuccessfulInitializationCaseNameConstant = "successful_initialization"
	testCommandArgumentConstant                  = "--version"
	testWorkingDirectoryConstant                 = "."
	testStandardErrorOutputConstant              = "failure"
	testRunnerFailureMessageConstant             = "runner failure"
	testSubtestNameTemplateConstant              = "%d_%s"
	testBuildSubcommandConstant                  = "collection"
	testBuildActionConstant                      = "build"
	testFailureExitCodeConstant                  = 2
)

type recordingCommandRunner struct {
	executionResult  execshell.ExecutionResult
	executionError   error
	recordedCommands []execshell.ShellCommand
}

func (runner *recordingCommandRunner) Run(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.recordedCommands = append(runner.recordedCommands, command)
	return runner.executionResult, runner.executionError
}

func TestShellExecutorInitializationValidation(testInstance *testing.T) {
	testCases := []struct {
		name          string
		logger        *zap.Logger
		runner        execshell.CommandRunner
		expectedError error
	}{
		{
			name:          testLoggerInitializationCaseNameConstant,
			logger:        nil,
			runner:        &recordingCommandRunner{},
			expectedError: execshell.ErrLoggerNotConfigured,
		},
		{
			name:          testRunnerInitializationCaseNameConstant,
			logger:        zap.NewNop(),
			runner:        nil,
			expectedError: execshell.ErrCommandRunnerNotConfigured,
		},
		{
			name:   testSuccessfulInitializationCaseNameConstant,
			logger: zap.NewNop(),
			runner: &recordingCommandRunner{},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			executor, executorError := execshell.NewShellExecutor(testCase.logger, testCase.runner, false)
			if testCase.expectedError != nil {
				require.ErrorIs(testInstance, executorError, testCase.expectedError)
				require.Nil(testInstance, executor)
				return
			}
			require.NoError(testInstance, executorError)
			require.NotNil(testInstance, executor)
		})
	}
}

func TestShellExecutorExecute(testInstance *testing.T) {
	testCases := []struct {
		name              string
		runner            *recordingCommandRunner
		expectFailure     bool
		expectedExitCode  int
		expectRunnerError bool
	}{
		{
			name:   testExecutionSuccessCaseNameConstant,
			runner: &recordingCommandRunner{executionResult: execshell.ExecutionResult{ExitCode: 0}},
		},
		{
			name: testExecutionFailureCaseNameConstant,
			runner: &recordingCommandRunner{
				executionResult: execshell.ExecutionResult{
					ExitCode:      testFailureExitCodeConstant,
					StandardError: testStandardErrorOutputConstant,
				},
			},
			expectFailure:    true,
			expectedExitCode: testFailureExitCodeConstant,
		},
		{
			name:              testExecutionRunnerErrorCaseNameConstant,
			runner:            &recordingCommandRunner{executionError: errors.New(testRunnerFailureMessageConstant)},
			expectRunnerError: true,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			executor, executorError := execshell.NewShellExecutor(zap.NewNop(), testCase.runner, false)
			require.NoError(testInstance, executorError)

			command := execshell.ShellCommand{
				Name: execshell.CommandGalaxy,
				Details: execshell.CommandDetails{
					Arguments:        []string{testCommandArgumentConstant},
					WorkingDirectory: testWorkingDirectoryConstant,
				},
			}

			_, executionError := executor.Execute(context.Background(), command)
			require.Len(testInstance, testCase.runner.recordedCommands, 1)
			require.Equal(testInstance, command, testCase.runner.recordedCommands[0])

			switch {
			case testCase.expectFailure:
				var failedError execshell.CommandFailedError
				require.ErrorAs(testInstance, executionError, &failedError)
				require.Equal(testInstance, testCase.expectedExitCode, failedError.ExitStatus())
			case testCase.expectRunnerError:
				var runnerError execshell.CommandExecutionError
				require.ErrorAs(testInstance, executionError, &runnerError)
				require.EqualError(testInstance, runnerError.Unwrap(), testRunnerFailureMessageConstant)
			default:
				require.NoError(testInstance, executionError)
			}
		})
	}
}

func TestShellExecutorRequiresCommandName(testInstance *testing.T) {
	runner := &recordingCommandRunner{}
	executor, executorError := execshell.NewShellExecutor(zap.NewNop(), runner, false)
	require.NoError(testInstance, executorError)

	_, executionError := executor.Execute(context.Background(), execshell.ShellCommand{})
	require.ErrorIs(testInstance, executionError, execshell.ErrCommandNameMissing)
	require.Empty(testInstance, runner.recordedCommands)
}

func TestShellExecutorCommandWrappers(testInstance *testing.T) {
	testCases := []struct {
		name                string
		execute             func(executor *execshell.ShellExecutor, details execshell.CommandDetails) error
		expectedCommandName execshell.CommandName
	}{
		{
			name: testGalaxyWrapperCaseNameConstant,
			execute: func(executor *execshell.ShellExecutor, details execshell.CommandDetails) error {
				_, executionError := executor.ExecuteGalaxy(context.Background(), details)
				return executionError
			},
			expectedCommandName: execshell.CommandGalaxy,
		},
		{
			name: testGitWrapperCaseNameConstant,
			execute: func(executor *execshell.ShellExecutor, details execshell.CommandDetails) error {
				_, executionError := executor.ExecuteGit(context.Background(), details)
				return executionError
			},
			expectedCommandName: execshell.CommandGit,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			runner := &recordingCommandRunner{}
			executor, executorError := execshell.NewShellExecutor(zap.NewNop(), runner, false)
			require.NoError(testInstance, executorError)

			details := execshell.CommandDetails{
				Arguments:        []string{testBuildSubcommandConstant, testBuildActionConstant},
				WorkingDirectory: testWorkingDirectoryConstant,
			}
			require.NoError(testInstance, testCase.execute(executor, details))
			require.Len(testInstance, runner.recordedCommands, 1)
			require.Equal(testInstance, testCase.expectedCommandName, runner.recordedCommands[0].Name)
			require.Equal(testInstance, details, runner.recordedCommands[0].Details)
		})
	}
}

func TestShellExecutorLogsLifecycle(testInstance *testing.T) {
	testCases := []struct {
		name                 string
		humanReadableLogging bool
		runner               *recordingCommandRunner
		expectedLevel        zapcore.Level
		expectedMessage      string
	}{
		{
			name:                 "structured_success",
			humanReadableLogging: false,
			runner:               &recordingCommandRunner{},
			expectedLevel:        zapcore.InfoLevel,
			expectedMessage:      "command execution completed",
		},
		{
			name:                 "structured_failure",
			humanReadableLogging: false,
			runner: &recordingCommandRunner{
				executionResult: execshell.ExecutionResult{ExitCode: testFailureExitCodeConstant},
			},
			expectedLevel:   zapcore.WarnLevel,
			expectedMessage: "command returned non-zero status",
		},
		{
			name:                 "console_success",
			humanReadableLogging: true,
			runner:               &recordingCommandRunner{},
			expectedLevel:        zapcore.InfoLevel,
			expectedMessage:      "Finished ansible-galaxy --version",
		},
		{
			name:                 "console_runner_error",
			humanReadableLogging: true,
			runner:               &recordingCommandRunner{executionError: errors.New(testRunnerFailureMessageConstant)},
			expectedLevel:        zapcore.ErrorLevel,
			expectedMessage:      "ansible-galaxy could not be executed: runner failure",
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			observedCore, observedLogs := observer.New(zapcore.DebugLevel)
			executor, executorError := execshell.NewShellExecutor(zap.New(observedCore), testCase.runner, testCase.humanReadableLogging)
			require.NoError(testInstance, executorError)

			_, _ = executor.ExecuteGalaxy(context.Background(), execshell.CommandDetails{
				Arguments: []string{testCommandArgumentConstant},
			})

			matched := false
			for _, loggedEntry := range observedLogs.All() {
				if loggedEntry.Level == testCase.expectedLevel && loggedEntry.Message == testCase.expectedMessage {
					matched = true
				}
			}
			require.True(testInstance, matched)
		})
	}
}

func TestCommandFailedErrorMessage(testInstance *testing.T) {
	failure := execshell.CommandFailedError{
		Command: execshell.ShellCommand{
			Name: execshell.CommandGalaxy,
			Details: execshell.CommandDetails{
				Arguments: []string{testBuildSubcommandConstant, testBuildActionConstant},
			},
		},
		Result: execshell.ExecutionResult{
			ExitCode:      testFailureExitCodeConstant,
			StandardError: "first line\nsecond line\nthird line\nfourth line",
		},
	}

	require.Equal(
		testInstance,
		"ansible-galaxy command exited with code 2 (collection build): first line | second line | third line",
		failure.Error(),
	)
	require.Equal(testInstance, testFailureExitCodeConstant, failure.ExitStatus())
}
