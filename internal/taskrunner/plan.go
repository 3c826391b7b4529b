package taskrunner

import "strings"

// PlanStep identifies one task scheduled for execution.
type PlanStep struct {
	TaskName      string
	Prerequisites []string
}

// ExecutionPlan lists the prerequisite closure of a task in dependency order.
// A task's prerequisites always appear before the task itself; independent
// prerequisites keep their declaration order so repeated resolutions of the
// same registry produce identical plans.
type ExecutionPlan struct {
	Steps []PlanStep
}

// TaskNames returns the planned task names in execution order.
func (plan ExecutionPlan) TaskNames() []string {
	names := make([]string, 0, len(plan.Steps))
	for stepIndex := range plan.Steps {
		names = append(names, plan.Steps[stepIndex].TaskName)
	}
	return names
}

// Plan resolves the prerequisite closure of the requested task via
// depth-first traversal. Traversal maintains a visiting set: revisiting a
// task already on the current path yields a CyclicDependencyError, and no
// action runs when planning fails.
func (registry Registry) Plan(taskName string) (ExecutionPlan, error) {
	requestedName := strings.TrimSpace(taskName)
	if _, exists := registry.tasksByName[requestedName]; !exists {
		return ExecutionPlan{}, UnknownTaskError{TaskName: requestedName}
	}

	traversal := planTraversal{
		registry:  registry,
		visiting:  make(map[string]struct{}, len(registry.tasksByName)),
		completed: make(map[string]struct{}, len(registry.tasksByName)),
	}
	if traversalError := traversal.visit(requestedName, nil); traversalError != nil {
		return ExecutionPlan{}, traversalError
	}

	return ExecutionPlan{Steps: traversal.steps}, nil
}

type planTraversal struct {
	registry  Registry
	visiting  map[string]struct{}
	completed map[string]struct{}
	steps     []PlanStep
}

func (traversal *planTraversal) visit(taskName string, path []string) error {
	if _, alreadyCompleted := traversal.completed[taskName]; alreadyCompleted {
		return nil
	}
	if _, onCurrentPath := traversal.visiting[taskName]; onCurrentPath {
		return CyclicDependencyError{Path: append(append([]string{}, path...), taskName)}
	}

	task, exists := traversal.registry.tasksByName[taskName]
	if !exists {
		requiredBy := ""
		if len(path) > 0 {
			requiredBy = path[len(path)-1]
		}
		return UnknownTaskError{TaskName: taskName, RequiredBy: requiredBy}
	}

	traversal.visiting[taskName] = struct{}{}
	extendedPath := append(append([]string{}, path...), taskName)
	for _, prerequisiteName := range task.Prerequisites {
		if visitError := traversal.visit(prerequisiteName, extendedPath); visitError != nil {
			return visitError
		}
	}
	delete(traversal.visiting, taskName)

	traversal.completed[taskName] = struct{}{}
	traversal.steps = append(traversal.steps, PlanStep{
		TaskName:      task.Name,
		Prerequisites: append([]string{}, task.Prerequisites...),
	})
	return nil
}
