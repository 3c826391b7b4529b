package collection

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/tyemirov/colx/internal/execshell"
)

const (
	executorNotConfiguredMessageConstant = "collection service executor not configured"
	loggerNotConfiguredMessageConstant   = "collection service logger not configured"
	collectionSubcommandConstant         = "collection"
	buildSubcommandConstant              = "build"
	installSubcommandConstant            = "install"
	publishSubcommandConstant            = "publish"
	forceFlagConstant                    = "--force"
	serverFlagConstant                   = "--server"
	archiveGlobErrorTemplateConstant     = "invalid archive glob %q: %w"
	archiveRemovalErrorTemplateConstant  = "unable to remove archive %s: %w"
	archiveMissingErrorTemplateConstant  = "no collection archive matches %q in %s"
	archiveInspectErrorTemplateConstant  = "unable to inspect archive %s: %w"
	archiveRemovedMessageConstant        = "removed collection archive"
	archivesCleanedMessageConstant       = "archive cleanup completed"
	archivePathFieldNameConstant         = "archive_path"
	archiveCountFieldNameConstant        = "removed_count"
)

var (
	// ErrExecutorNotConfigured indicates the packager executor dependency was missing.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
	// ErrLoggerNotConfigured indicates the logger dependency was missing.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
)

// PackagerExecutor runs the external collection packager.
type PackagerExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// Service implements the packaging task actions. All packaging semantics are
// delegated to the external packager; the service only assembles invocations
// and removes generated archives.
type Service struct {
	configuration Configuration
	executor      PackagerExecutor
	logger        *zap.Logger
}

// NewService builds a packaging service with the provided collaborators.
func NewService(logger *zap.Logger, executor PackagerExecutor, configuration Configuration) (*Service, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Service{
		configuration: configuration.Sanitize(),
		executor:      executor,
		logger:        logger,
	}, nil
}

// Clean removes generated collection archives matching the configured glob.
// Zero matching archives is a successful outcome.
func (service *Service) Clean(executionContext context.Context) error {
	archivePaths, globError := service.matchArchives()
	if globError != nil {
		return globError
	}

	for _, archivePath := range archivePaths {
		if removalError := os.Remove(archivePath); removalError != nil {
			return fmt.Errorf(archiveRemovalErrorTemplateConstant, archivePath, removalError)
		}
		service.logger.Debug(archiveRemovedMessageConstant, zap.String(archivePathFieldNameConstant, archivePath))
	}

	service.logger.Info(archivesCleanedMessageConstant, zap.Int(archiveCountFieldNameConstant, len(archivePaths)))
	return nil
}

// Build invokes the packager to produce a collection archive, overwriting
// any existing archive for the same version.
func (service *Service) Build(executionContext context.Context) error {
	return service.runPackager(executionContext, []string{collectionSubcommandConstant, buildSubcommandConstant, forceFlagConstant})
}

// Install installs the most recently built archive, forcing overwrite of any
// installed copy.
func (service *Service) Install(executionContext context.Context) error {
	archivePath, archiveError := service.newestArchive()
	if archiveError != nil {
		return archiveError
	}
	return service.runPackager(executionContext, []string{collectionSubcommandConstant, installSubcommandConstant, archivePath, forceFlagConstant})
}

// Publish uploads the most recently built archive to the collection registry.
func (service *Service) Publish(executionContext context.Context) error {
	archivePath, archiveError := service.newestArchive()
	if archiveError != nil {
		return archiveError
	}

	arguments := []string{collectionSubcommandConstant, publishSubcommandConstant, archivePath}
	if len(service.configuration.PublishServerURL) > 0 {
		arguments = append(arguments, serverFlagConstant, service.configuration.PublishServerURL)
	}
	return service.runPackager(executionContext, arguments)
}

func (service *Service) runPackager(executionContext context.Context, arguments []string) error {
	command := execshell.ShellCommand{
		Name: execshell.CommandName(service.configuration.PackagerBinary),
		Details: execshell.CommandDetails{
			Arguments:        arguments,
			WorkingDirectory: service.configuration.WorkingDirectory,
		},
	}
	_, executionError := service.executor.Execute(executionContext, command)
	return executionError
}

func (service *Service) matchArchives() ([]string, error) {
	pattern := filepath.Join(service.configuration.WorkingDirectory, service.configuration.ArchiveGlob)
	archivePaths, globError := filepath.Glob(pattern)
	if globError != nil {
		return nil, fmt.Errorf(archiveGlobErrorTemplateConstant, pattern, globError)
	}
	return archivePaths, nil
}

func (service *Service) newestArchive() (string, error) {
	archivePaths, globError := service.matchArchives()
	if globError != nil {
		return "", globError
	}
	if len(archivePaths) == 0 {
		return "", fmt.Errorf(archiveMissingErrorTemplateConstant, service.configuration.ArchiveGlob, service.configuration.WorkingDirectory)
	}

	newestPath := ""
	for _, archivePath := range archivePaths {
		fileInformation, statError := os.Stat(archivePath)
		if statError != nil {
			return "", fmt.Errorf(archiveInspectErrorTemplateConstant, archivePath, statError)
		}
		if len(newestPath) == 0 {
			newestPath = archivePath
			continue
		}
		newestInformation, newestStatError := os.Stat(newestPath)
		if newestStatError != nil {
			return "", fmt.Errorf(archiveInspectErrorTemplateConstant, newestPath, newestStatError)
		}
		if fileInformation.ModTime().After(newestInformation.ModTime()) {
			newestPath = archivePath
		}
	}

	return newestPath, nil
}
