package tasks

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/tyemirov/colx/internal/collection"
	"github.com/tyemirov/colx/internal/execshell"
	"github.com/tyemirov/colx/internal/taskrunner"
)

const (
	cleanCommandShortDescriptionConstant       = "Remove generated collection archives"
	cleanCommandLongDescriptionConstant        = "clean removes collection archives matching the configured glob; removing zero files succeeds."
	buildCommandShortDescriptionConstant       = "Build the collection archive"
	buildCommandLongDescriptionConstant        = "build invokes the collection packager to produce an archive, overwriting any existing one."
	installCommandShortDescriptionConstant     = "Install the newest collection archive"
	installCommandLongDescriptionConstant      = "install installs the most recently built archive, forcing overwrite of an installed copy."
	publishCommandShortDescriptionConstant     = "Publish the newest collection archive"
	publishCommandLongDescriptionConstant      = "publish uploads the most recently built archive to the collection registry."
	allCommandShortDescriptionConstant         = "Clean, build, and install the collection"
	allCommandLongDescriptionConstant          = "all runs clean, build, and install in order, stopping at the first failure. Publishing stays a separate explicit step."
	planCommandUseConstant                     = "plan <task>"
	planCommandShortDescriptionConstant        = "Print the resolved execution order for a task"
	planCommandLongDescriptionConstant         = "plan resolves a task's prerequisite closure and prints the execution order as YAML without running any action."
	unexpectedArgumentsErrorTemplateConstant   = "%s does not accept positional arguments"
	planRenderingErrorTemplateConstant         = "unable to render execution plan: %w"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current packaging configuration.
type ConfigurationProvider func() collection.Configuration

// HumanReadableLoggingProvider reports whether console logging is active.
type HumanReadableLoggingProvider func() bool

// CommandBuilder assembles the packaging task commands.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        ConfigurationProvider
	HumanReadableLoggingProvider HumanReadableLoggingProvider
	PackagerExecutor             collection.PackagerExecutor
}

type taskCommandDescription struct {
	taskName         string
	shortDescription string
	longDescription  string
}

func taskCommandDescriptions() []taskCommandDescription {
	return []taskCommandDescription{
		{taskName: collection.TaskNameClean, shortDescription: cleanCommandShortDescriptionConstant, longDescription: cleanCommandLongDescriptionConstant},
		{taskName: collection.TaskNameBuild, shortDescription: buildCommandShortDescriptionConstant, longDescription: buildCommandLongDescriptionConstant},
		{taskName: collection.TaskNameInstall, shortDescription: installCommandShortDescriptionConstant, longDescription: installCommandLongDescriptionConstant},
		{taskName: collection.TaskNamePublish, shortDescription: publishCommandShortDescriptionConstant, longDescription: publishCommandLongDescriptionConstant},
		{taskName: collection.TaskNameAll, shortDescription: allCommandShortDescriptionConstant, longDescription: allCommandLongDescriptionConstant},
	}
}

// Build constructs one command per packaging task plus the plan command.
func (builder *CommandBuilder) Build() ([]*cobra.Command, error) {
	commands := make([]*cobra.Command, 0, len(taskCommandDescriptions())+1)
	for _, description := range taskCommandDescriptions() {
		commands = append(commands, builder.newTaskCommand(description))
	}
	commands = append(commands, builder.newPlanCommand())
	return commands, nil
}

func (builder *CommandBuilder) newTaskCommand(description taskCommandDescription) *cobra.Command {
	taskName := description.taskName
	return &cobra.Command{
		Use:           taskName,
		Short:         description.shortDescription,
		Long:          description.longDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			if len(arguments) > 0 {
				return fmt.Errorf(unexpectedArgumentsErrorTemplateConstant, taskName)
			}

			runner, runnerError := builder.resolveRunner()
			if runnerError != nil {
				return runnerError
			}
			return runner.Run(command.Context(), taskName)
		},
	}
}

func (builder *CommandBuilder) newPlanCommand() *cobra.Command {
	return &cobra.Command{
		Use:           planCommandUseConstant,
		Short:         planCommandShortDescriptionConstant,
		Long:          planCommandLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			registry, registryError := builder.resolveRegistry()
			if registryError != nil {
				return registryError
			}

			executionPlan, planError := registry.Plan(arguments[0])
			if planError != nil {
				return planError
			}

			renderedPlan, renderError := renderExecutionPlan(executionPlan)
			if renderError != nil {
				return renderError
			}

			fmt.Fprint(command.OutOrStdout(), renderedPlan)
			return nil
		},
	}
}

func (builder *CommandBuilder) resolveRunner() (*taskrunner.Runner, error) {
	registry, registryError := builder.resolveRegistry()
	if registryError != nil {
		return nil, registryError
	}
	return taskrunner.NewRunner(registry, builder.resolveLogger(), builder.humanReadableLoggingEnabled())
}

func (builder *CommandBuilder) resolveRegistry() (taskrunner.Registry, error) {
	logger := builder.resolveLogger()

	executor := builder.PackagerExecutor
	if executor == nil {
		shellExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), builder.humanReadableLoggingEnabled())
		if executorError != nil {
			return taskrunner.Registry{}, executorError
		}
		executor = shellExecutor
	}

	service, serviceError := collection.NewService(logger, executor, builder.resolveConfiguration())
	if serviceError != nil {
		return taskrunner.Registry{}, serviceError
	}

	return taskrunner.NewRegistry(collection.Tasks(service))
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveConfiguration() collection.Configuration {
	configuration := collection.DefaultConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	return configuration.Sanitize()
}

func (builder *CommandBuilder) humanReadableLoggingEnabled() bool {
	if builder.HumanReadableLoggingProvider == nil {
		return false
	}
	return builder.HumanReadableLoggingProvider()
}

type planStepDocument struct {
	Task     string   `yaml:"task"`
	Requires []string `yaml:"requires,omitempty"`
}

func renderExecutionPlan(executionPlan taskrunner.ExecutionPlan) (string, error) {
	documents := make([]planStepDocument, 0, len(executionPlan.Steps))
	for _, step := range executionPlan.Steps {
		documents = append(documents, planStepDocument{Task: step.TaskName, Requires: step.Prerequisites})
	}

	rendered, marshalError := yaml.Marshal(documents)
	if marshalError != nil {
		return "", fmt.Errorf(planRenderingErrorTemplateConstant, marshalError)
	}
	return string(rendered), nil
}
