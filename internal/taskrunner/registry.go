package taskrunner

import (
	"context"
	"strings"
)

// Action performs the side-effecting work of a task.
type Action interface {
	Execute(executionContext context.Context) error
}

// ActionFunc adapts a plain function to the Action interface.
type ActionFunc func(executionContext context.Context) error

// Execute invokes the wrapped function.
func (action ActionFunc) Execute(executionContext context.Context) error {
	return action(executionContext)
}

// Task describes a named unit of work with ordered prerequisites. Aggregate
// tasks may omit the action and only sequence their prerequisites.
type Task struct {
	Name          string
	Prerequisites []string
	Action        Action
}

// Registry stores the immutable task table consulted for one invocation.
// It is built once at startup; tasks cannot be registered afterwards.
type Registry struct {
	tasksByName   map[string]Task
	declaredOrder []string
}

// NewRegistry validates the provided task table and builds a registry.
// Duplicate task names, blank names, self references, and prerequisites that
// do not resolve to a registered task are configuration errors reported here,
// before any task runs.
func NewRegistry(tasks []Task) (Registry, error) {
	tasksByName := make(map[string]Task, len(tasks))
	declaredOrder := make([]string, 0, len(tasks))

	for taskIndex := range tasks {
		task := tasks[taskIndex]
		taskName := strings.TrimSpace(task.Name)
		if len(taskName) == 0 {
			return Registry{}, ErrTaskNameMissing
		}
		if _, exists := tasksByName[taskName]; exists {
			return Registry{}, DuplicateTaskError{TaskName: taskName}
		}

		sanitizedPrerequisites := make([]string, 0, len(task.Prerequisites))
		seenPrerequisites := make(map[string]struct{}, len(task.Prerequisites))
		for prerequisiteIndex := range task.Prerequisites {
			prerequisiteName := strings.TrimSpace(task.Prerequisites[prerequisiteIndex])
			if len(prerequisiteName) == 0 {
				continue
			}
			if prerequisiteName == taskName {
				return Registry{}, SelfPrerequisiteError{TaskName: taskName}
			}
			if _, alreadyIncluded := seenPrerequisites[prerequisiteName]; alreadyIncluded {
				continue
			}
			seenPrerequisites[prerequisiteName] = struct{}{}
			sanitizedPrerequisites = append(sanitizedPrerequisites, prerequisiteName)
		}

		task.Name = taskName
		task.Prerequisites = sanitizedPrerequisites
		tasksByName[taskName] = task
		declaredOrder = append(declaredOrder, taskName)
	}

	for _, taskName := range declaredOrder {
		for _, prerequisiteName := range tasksByName[taskName].Prerequisites {
			if _, exists := tasksByName[prerequisiteName]; !exists {
				return Registry{}, UnknownTaskError{TaskName: prerequisiteName, RequiredBy: taskName}
			}
		}
	}

	return Registry{tasksByName: tasksByName, declaredOrder: declaredOrder}, nil
}

// TaskNames returns the registered task names in declaration order.
func (registry Registry) TaskNames() []string {
	names := make([]string, len(registry.declaredOrder))
	copy(names, registry.declaredOrder)
	return names
}

// Lookup returns the registered task for the provided name.
func (registry Registry) Lookup(taskName string) (Task, bool) {
	task, exists := registry.tasksByName[strings.TrimSpace(taskName)]
	return task, exists
}
