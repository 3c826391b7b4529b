package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	taskscmd "github.com/tyemirov/colx/cmd/cli/tasks"
	"github.com/tyemirov/colx/internal/collection"
	"github.com/tyemirov/colx/internal/utils"
	flagutils "github.com/tyemirov/colx/internal/utils/flags"
	"github.com/tyemirov/colx/internal/version"
)

const (
	applicationNameConstant                            = "colx"
	applicationShortDescriptionConstant                = "Command-line task runner for collection packaging"
	applicationLongDescriptionConstant                 = "colx sequences Ansible collection packaging tasks (clean, build, install, publish) with dependency ordering, delegating the packaging itself to ansible-galaxy."
	configFileFlagNameConstant                         = "config"
	configFileFlagUsageConstant                        = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                           = "log-level"
	logLevelFlagUsageConstant                          = "Override the configured log level."
	logFormatFlagNameConstant                          = "log-format"
	logFormatFlagUsageConstant                         = "Override the configured log format (structured or console)."
	configurationInitializationFlagNameConstant        = "init"
	configurationInitializationFlagUsageConstant       = "Write the embedded default configuration to LOCAL (./config.yaml) or user ($XDG_CONFIG_HOME/colx/config.yaml, falling back to $HOME/.colx/config.yaml)."
	configurationInitializationDefaultScopeConstant    = "local"
	configurationInitializationForceFlagNameConstant   = "force"
	configurationInitializationForceFlagUsageConstant  = "Overwrite an existing configuration file when initializing."
	configurationInitializationScopeLocalConstant      = "local"
	configurationInitializationScopeUserConstant       = "user"
	unsupportedInitializationScopeTemplateConstant     = "unsupported initialization scope %q"
	workingDirectoryErrorTemplateConstant              = "unable to determine working directory: %w"
	homeDirectoryErrorTemplateConstant                 = "unable to determine user home directory: %w"
	embeddedConfigurationUnavailableMessageConstant    = "embedded configuration content is unavailable"
	configurationDirectoryErrorTemplateConstant        = "unable to ensure configuration directory %s: %w"
	existingConfigurationFileTemplateConstant          = "configuration file already exists at %s (use --force to overwrite)"
	configurationWriteErrorTemplateConstant            = "unable to write configuration file %s: %w"
	configurationFileCreatedMessageConstant            = "configuration file created"
	commonLogLevelConfigKeyConstant                    = "common.log_level"
	commonLogFormatConfigKeyConstant                   = "common.log_format"
	environmentPrefixConstant                          = "COLX"
	configurationNameConstant                          = "config"
	configurationTypeConstant                          = "yaml"
	configurationFileNameConstant                      = configurationNameConstant + "." + configurationTypeConstant
	configurationDirectoryPermissionConstant           = 0o755
	configurationFilePermissionConstant                = 0o600
	configurationLoadErrorTemplateConstant             = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant                = "unable to create logger: %w"
	configurationFilePathFieldConstant                 = "config_file"
	xdgConfigHomeEnvironmentVariableConstant           = "XDG_CONFIG_HOME"
	defaultConfigurationSearchPathConstant             = "."
	userConfigurationDirectoryNameConstant             = ".colx"
	configurationSearchPathEnvironmentVariableConstant = "COLX_CONFIG_SEARCH_PATH"
	collectionOperationNameConstant                    = "collection"
	versionFlagNameConstant                            = "version"
	versionFlagUsageConstant                           = "Print the application version and exit"
	versionOutputTemplateConstant                      = "colx version: %s\n"
	versionCommandUseNameConstant                      = "version"
	versionCommandShortDescriptionConstant             = "Print the colx version"
	versionCommandLongDescriptionConstant              = "version prints the current colx release identifier."
	operationDecodeErrorMessageConstant                = "unable to decode operation defaults"
	operationMissingDebugMessageConstant               = "operation configuration missing; continuing without defaults"
	operationNameLogFieldConstant                      = "operation"
)

type loggerOutputsFactory interface {
	CreateLoggerOutputs(utils.LogLevel, utils.LogFormat) (utils.LoggerOutputs, error)
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand                       *cobra.Command
	configurationLoader               *utils.ConfigurationLoader
	loggerFactory                     loggerOutputsFactory
	logger                            *zap.Logger
	consoleLogger                     *zap.Logger
	configuration                     ApplicationConfiguration
	configurationMetadata             utils.LoadedConfiguration
	configurationFilePath             string
	logLevelFlagValue                 string
	logFormatFlagValue                string
	operationConfigurations           OperationConfigurations
	embeddedOperationConfigurations   OperationConfigurations
	configurationInitializationScope  string
	configurationInitializationForced bool
	versionFlag                       bool
	versionResolver                   func(context.Context) string
	exitFunction                      func(int)
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	application := &Application{
		loggerFactory: utils.NewLoggerFactory(),
		logger:        zap.NewNop(),
		consoleLogger: zap.NewNop(),
	}
	application.versionResolver = application.resolveVersion
	application.exitFunction = os.Exit

	application.configurationLoader = utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		application.resolveConfigurationSearchPaths(),
	)

	embeddedConfigurationData, embeddedConfigurationType := EmbeddedDefaultConfiguration()
	application.configurationLoader.SetEmbeddedConfiguration(embeddedConfigurationData, embeddedConfigurationType)
	application.embeddedOperationConfigurations = loadEmbeddedOperationConfigurations()

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			if initializationError := application.initializeConfiguration(command); initializationError != nil {
				return initializationError
			}

			if initializationRequested(command) {
				if writeError := application.writeDefaultConfiguration(); writeError != nil {
					return writeError
				}
				application.exitFunction(0)
			}

			versionRequested := application.versionFlag
			if command != nil {
				if flagValue, flagChanged, flagError := flagutils.BoolFlag(command, versionFlagNameConstant); flagError == nil && flagChanged {
					versionRequested = flagValue
				}
			}

			if versionRequested {
				application.printVersion(command.Context())
				application.exitFunction(0)
			}

			return nil
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(
		&application.configurationInitializationScope,
		configurationInitializationFlagNameConstant,
		configurationInitializationDefaultScopeConstant,
		configurationInitializationFlagUsageConstant,
	)
	cobraCommand.PersistentFlags().BoolVar(
		&application.configurationInitializationForced,
		configurationInitializationForceFlagNameConstant,
		false,
		configurationInitializationForceFlagUsageConstant,
	)
	cobraCommand.PersistentFlags().BoolVar(&application.versionFlag, versionFlagNameConstant, false, versionFlagUsageConstant)

	versionCommand := &cobra.Command{
		Use:           versionCommandUseNameConstant,
		Short:         versionCommandShortDescriptionConstant,
		Long:          versionCommandLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			application.printVersion(command.Context())
			return nil
		},
	}
	cobraCommand.AddCommand(versionCommand)

	tasksBuilder := taskscmd.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider:        application.collectionConfiguration,
	}
	taskCommands, taskBuildError := tasksBuilder.Build()
	if taskBuildError == nil {
		for _, taskCommand := range taskCommands {
			cobraCommand.AddCommand(taskCommand)
		}
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and flushes the logger.
func (application *Application) Execute() error {
	application.rootCommand.SetArgs(os.Args[1:])
	executionError := application.rootCommand.Execute()
	application.flushLogger()
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

// RootCommand exposes the assembled command tree.
func (application *Application) RootCommand() *cobra.Command {
	return application.rootCommand
}

// ConfigFileUsed returns the configuration file path used during initialization.
func (application *Application) ConfigFileUsed() string {
	return application.configurationMetadata.ConfigFileUsed
}

func initializationRequested(command *cobra.Command) bool {
	if command == nil {
		return false
	}
	_, flagChanged, flagError := flagutils.StringFlag(command, configurationInitializationFlagNameConstant)
	return flagError == nil && flagChanged
}

func (application *Application) resolveConfigurationSearchPaths() []string {
	overrideValue := strings.TrimSpace(os.Getenv(configurationSearchPathEnvironmentVariableConstant))
	if len(overrideValue) == 0 {
		searchPaths := []string{defaultConfigurationSearchPathConstant}
		return append(searchPaths, application.resolveUserConfigurationDirectoryPaths()...)
	}

	overridePaths := strings.FieldsFunc(overrideValue, func(candidate rune) bool {
		return candidate == os.PathListSeparator
	})

	cleanedPaths := make([]string, 0, len(overridePaths))
	for _, pathCandidate := range overridePaths {
		trimmedCandidate := strings.TrimSpace(pathCandidate)
		if len(trimmedCandidate) == 0 {
			continue
		}
		cleanedPaths = append(cleanedPaths, trimmedCandidate)
	}

	if len(cleanedPaths) == 0 {
		return []string{defaultConfigurationSearchPathConstant}
	}

	return cleanedPaths
}

func (application *Application) resolveUserConfigurationDirectoryPaths() []string {
	userConfigurationDirectoryPaths := make([]string, 0, 3)

	appendConfigurationDirectory := func(baseDirectoryPath string) {
		trimmedBaseDirectoryPath := strings.TrimSpace(baseDirectoryPath)
		if len(trimmedBaseDirectoryPath) == 0 {
			return
		}

		candidateDirectoryPath := filepath.Join(trimmedBaseDirectoryPath, userConfigurationDirectoryNameConstant)
		for _, existingDirectoryPath := range userConfigurationDirectoryPaths {
			if existingDirectoryPath == candidateDirectoryPath {
				return
			}
		}

		userConfigurationDirectoryPaths = append(userConfigurationDirectoryPaths, candidateDirectoryPath)
	}

	appendConfigurationDirectory(os.Getenv(xdgConfigHomeEnvironmentVariableConstant))

	userConfigurationBaseDirectoryPath, userConfigurationDirectoryError := os.UserConfigDir()
	if userConfigurationDirectoryError == nil {
		appendConfigurationDirectory(userConfigurationBaseDirectoryPath)
	}

	userHomeDirectoryPath, userHomeDirectoryError := os.UserHomeDir()
	if userHomeDirectoryError == nil {
		appendConfigurationDirectory(userHomeDirectoryPath)
	}

	return userConfigurationDirectoryPaths
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelError),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatStructured),
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	operationConfigurations, configurationBuildError := newOperationConfigurations(application.configuration.Operations)
	if configurationBuildError != nil {
		return configurationBuildError
	}
	application.operationConfigurations = operationConfigurations.MergeDefaults(application.embeddedOperationConfigurations)

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	loggerOutputs, loggerCreationError := application.loggerFactory.CreateLoggerOutputs(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = loggerOutputs.DiagnosticLogger
	if application.logger == nil {
		application.logger = zap.NewNop()
	}

	application.consoleLogger = loggerOutputs.ConsoleLogger
	if application.consoleLogger == nil {
		application.consoleLogger = zap.NewNop()
	}

	return nil
}

// InitializeForCommand prepares application state for the provided command name without executing command logic.
func (application *Application) InitializeForCommand(commandUse string) error {
	command := &cobra.Command{Use: commandUse}
	return application.initializeConfiguration(command)
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}
	_, flagChanged, flagError := flagutils.StringFlag(command, flagName)
	return flagError == nil && flagChanged
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) collectionConfiguration() collection.Configuration {
	configuration := collection.DefaultConfiguration()
	application.decodeOperationConfiguration(collectionOperationNameConstant, &configuration)
	return configuration.Sanitize()
}

func (application *Application) decodeOperationConfiguration(operationName string, target any) {
	decodeError := application.operationConfigurations.decode(operationName, target)
	if decodeError == nil {
		return
	}

	var missingConfiguration MissingOperationConfigurationError
	if errors.As(decodeError, &missingConfiguration) {
		application.logger.Debug(operationMissingDebugMessageConstant, zap.String(operationNameLogFieldConstant, operationName))
		return
	}

	application.logger.Warn(operationDecodeErrorMessageConstant,
		zap.String(operationNameLogFieldConstant, operationName),
		zap.Error(decodeError),
	)
}

func (application *Application) resolveVersion(executionContext context.Context) string {
	resolved := version.Detect(executionContext, version.Dependencies{})
	trimmed := strings.TrimSpace(resolved)
	if len(trimmed) == 0 {
		return resolved
	}
	return trimmed
}

func (application *Application) printVersion(executionContext context.Context) {
	versionString := application.versionResolver(executionContext)
	fmt.Printf(versionOutputTemplateConstant, versionString)
}

func (application *Application) writeDefaultConfiguration() error {
	initializationPlan, planError := application.resolveInitializationPlan()
	if planError != nil {
		return planError
	}

	embeddedConfigurationData, _ := EmbeddedDefaultConfiguration()
	if len(embeddedConfigurationData) == 0 {
		return fmt.Errorf(embeddedConfigurationUnavailableMessageConstant)
	}

	if len(initializationPlan.DirectoryPath) > 0 {
		if directoryError := os.MkdirAll(initializationPlan.DirectoryPath, configurationDirectoryPermissionConstant); directoryError != nil {
			return fmt.Errorf(configurationDirectoryErrorTemplateConstant, initializationPlan.DirectoryPath, directoryError)
		}
	}

	if _, statError := os.Stat(initializationPlan.FilePath); statError == nil && !application.configurationInitializationForced {
		return fmt.Errorf(existingConfigurationFileTemplateConstant, initializationPlan.FilePath)
	}

	if writeError := os.WriteFile(initializationPlan.FilePath, embeddedConfigurationData, configurationFilePermissionConstant); writeError != nil {
		return fmt.Errorf(configurationWriteErrorTemplateConstant, initializationPlan.FilePath, writeError)
	}

	application.consoleLogger.Info(configurationFileCreatedMessageConstant, zap.String(configurationFilePathFieldConstant, initializationPlan.FilePath))
	application.logger.Info(configurationFileCreatedMessageConstant, zap.String(configurationFilePathFieldConstant, initializationPlan.FilePath))
	return nil
}

func (application *Application) resolveInitializationPlan() (configurationInitializationPlan, error) {
	scope := strings.ToLower(strings.TrimSpace(application.configurationInitializationScope))
	if len(scope) == 0 {
		scope = configurationInitializationDefaultScopeConstant
	}

	switch scope {
	case configurationInitializationScopeLocalConstant:
		workingDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return configurationInitializationPlan{}, fmt.Errorf(workingDirectoryErrorTemplateConstant, workingDirectoryError)
		}
		return configurationInitializationPlan{
			FilePath: filepath.Join(workingDirectory, configurationFileNameConstant),
		}, nil
	case configurationInitializationScopeUserConstant:
		baseDirectory := strings.TrimSpace(os.Getenv(xdgConfigHomeEnvironmentVariableConstant))
		if len(baseDirectory) == 0 {
			homeDirectory, homeDirectoryError := os.UserHomeDir()
			if homeDirectoryError != nil {
				return configurationInitializationPlan{}, fmt.Errorf(homeDirectoryErrorTemplateConstant, homeDirectoryError)
			}
			baseDirectory = homeDirectory
		}
		configurationDirectory := filepath.Join(baseDirectory, userConfigurationDirectoryNameConstant)
		return configurationInitializationPlan{
			DirectoryPath: configurationDirectory,
			FilePath:      filepath.Join(configurationDirectory, configurationFileNameConstant),
		}, nil
	default:
		return configurationInitializationPlan{}, fmt.Errorf(unsupportedInitializationScopeTemplateConstant, scope)
	}
}

func (application *Application) flushLogger() {
	// Sync failures on stderr are benign on the supported platforms.
	_ = application.logger.Sync()
	_ = application.consoleLogger.Sync()
}
