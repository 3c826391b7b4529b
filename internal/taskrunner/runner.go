package taskrunner

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

const (
	runnerLoggerNotConfiguredMessageConstant = "task runner logger not configured"
	taskStartMessageConstant                 = "task execution starting"
	taskSuccessMessageConstant               = "task execution completed"
	taskFailureMessageConstant               = "task execution failed"
	taskSkippedMessageConstant               = "task has no action; prerequisites only"
	taskStartedConsoleTemplateConstant       = "Running %s (%d/%d)"
	taskCompletedConsoleTemplateConstant     = "Completed %s"
	taskFailedConsoleTemplateConstant        = "Task %s failed: %v"
	taskNameFieldNameConstant                = "task"
	taskPositionFieldNameConstant            = "position"
	taskTotalFieldNameConstant               = "total"
	taskExitCodeFieldNameConstant            = "exit_code"
	defaultFailureExitCodeConstant           = 1
)

// ErrRunnerLoggerNotConfigured indicates the logger dependency was missing.
var ErrRunnerLoggerNotConfigured = errors.New(runnerLoggerNotConfiguredMessageConstant)

// ExitCoder exposes the exit status of a failed subprocess.
type ExitCoder interface {
	ExitStatus() int
}

// Runner executes registered tasks sequentially in dependency order.
type Runner struct {
	registry             Registry
	logger               *zap.Logger
	humanReadableLogging bool
}

// NewRunner builds a runner for the provided registry and logger.
func NewRunner(registry Registry, logger *zap.Logger, humanReadableLogging bool) (*Runner, error) {
	if logger == nil {
		return nil, ErrRunnerLoggerNotConfigured
	}
	return &Runner{registry: registry, logger: logger, humanReadableLogging: humanReadableLogging}, nil
}

// Run resolves the prerequisite closure of the requested task and executes
// each task exactly once. The first non-zero action aborts the run with an
// ActionFailedError carrying the failing task's name and exit code.
func (runner *Runner) Run(executionContext context.Context, taskName string) error {
	executionPlan, planError := runner.registry.Plan(taskName)
	if planError != nil {
		return planError
	}

	totalSteps := len(executionPlan.Steps)
	for stepIndex, step := range executionPlan.Steps {
		task, _ := runner.registry.Lookup(step.TaskName)
		if task.Action == nil {
			runner.logger.Debug(taskSkippedMessageConstant, zap.String(taskNameFieldNameConstant, task.Name))
			continue
		}

		if runner.humanReadableLogging {
			runner.logger.Info(fmt.Sprintf(taskStartedConsoleTemplateConstant, task.Name, stepIndex+1, totalSteps))
		} else {
			runner.logger.Info(taskStartMessageConstant,
				zap.String(taskNameFieldNameConstant, task.Name),
				zap.Int(taskPositionFieldNameConstant, stepIndex+1),
				zap.Int(taskTotalFieldNameConstant, totalSteps),
			)
		}

		if actionError := task.Action.Execute(executionContext); actionError != nil {
			failure := ActionFailedError{
				TaskName: task.Name,
				ExitCode: resolveExitCode(actionError),
				Cause:    actionError,
			}
			if runner.humanReadableLogging {
				runner.logger.Error(fmt.Sprintf(taskFailedConsoleTemplateConstant, task.Name, actionError))
			} else {
				runner.logger.Error(taskFailureMessageConstant,
					zap.String(taskNameFieldNameConstant, task.Name),
					zap.Int(taskExitCodeFieldNameConstant, failure.ExitCode),
					zap.Error(actionError),
				)
			}
			return failure
		}

		if runner.humanReadableLogging {
			runner.logger.Info(fmt.Sprintf(taskCompletedConsoleTemplateConstant, task.Name))
		} else {
			runner.logger.Info(taskSuccessMessageConstant, zap.String(taskNameFieldNameConstant, task.Name))
		}
	}

	return nil
}

func resolveExitCode(actionError error) int {
	var exitCoder ExitCoder
	if errors.As(actionError, &exitCoder) {
		return exitCoder.ExitStatus()
	}
	return defaultFailureExitCodeConstant
}
