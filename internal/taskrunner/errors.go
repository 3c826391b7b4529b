package taskrunner

import (
	"errors"
	"fmt"
	"strings"
)

const (
	taskNameMissingMessageConstant          = "task name not provided"
	duplicateTaskMessageTemplateConstant    = "task %q defined multiple times"
	selfPrerequisiteMessageTemplateConstant = "task %q cannot require itself"
	unknownTaskMessageTemplateConstant      = "unknown task %q"
	unknownTaskRequiredByTemplateConstant   = "unknown task %q required by %q"
	cyclicDependencyMessageTemplateConstant = "task dependency cycle detected: %s"
	actionFailedMessageTemplateConstant     = "task %q failed with exit code %d"
	cyclePathSeparatorConstant              = " -> "
)

// ErrTaskNameMissing indicates a registry entry without a name.
var ErrTaskNameMissing = errors.New(taskNameMissingMessageConstant)

// DuplicateTaskError reports two registry entries sharing one name.
type DuplicateTaskError struct {
	TaskName string
}

// Error implements the error interface.
func (errorDetails DuplicateTaskError) Error() string {
	return fmt.Sprintf(duplicateTaskMessageTemplateConstant, errorDetails.TaskName)
}

// SelfPrerequisiteError reports a task that lists itself as a prerequisite.
type SelfPrerequisiteError struct {
	TaskName string
}

// Error implements the error interface.
func (errorDetails SelfPrerequisiteError) Error() string {
	return fmt.Sprintf(selfPrerequisiteMessageTemplateConstant, errorDetails.TaskName)
}

// UnknownTaskError reports a requested or required task absent from the registry.
type UnknownTaskError struct {
	TaskName   string
	RequiredBy string
}

// Error implements the error interface.
func (errorDetails UnknownTaskError) Error() string {
	if len(errorDetails.RequiredBy) > 0 {
		return fmt.Sprintf(unknownTaskRequiredByTemplateConstant, errorDetails.TaskName, errorDetails.RequiredBy)
	}
	return fmt.Sprintf(unknownTaskMessageTemplateConstant, errorDetails.TaskName)
}

// CyclicDependencyError reports a prerequisite relation that revisits a task
// already on the current traversal path.
type CyclicDependencyError struct {
	Path []string
}

// Error implements the error interface.
func (errorDetails CyclicDependencyError) Error() string {
	return fmt.Sprintf(cyclicDependencyMessageTemplateConstant, strings.Join(errorDetails.Path, cyclePathSeparatorConstant))
}

// ActionFailedError reports a task action that exited with a non-zero status.
// Remaining tasks are not executed and completed tasks are not rolled back.
type ActionFailedError struct {
	TaskName string
	ExitCode int
	Cause    error
}

// Error implements the error interface.
func (errorDetails ActionFailedError) Error() string {
	baseMessage := fmt.Sprintf(actionFailedMessageTemplateConstant, errorDetails.TaskName, errorDetails.ExitCode)
	if errorDetails.Cause != nil {
		return fmt.Sprintf("%s: %v", baseMessage, errorDetails.Cause)
	}
	return baseMessage
}

// Unwrap exposes the underlying action error.
func (errorDetails ActionFailedError) Unwrap() error {
	return errorDetails.Cause
}
