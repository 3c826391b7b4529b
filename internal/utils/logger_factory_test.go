package utils_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/tyemirov/colx/internal/utils"
)

const (
	testStructuredFormatCaseNameConstant  = "structured_format"
	testConsoleFormatCaseNameConstant     = "console_format"
	testUnsupportedLevelCaseNameConstant  = "unsupported_level"
	testUnsupportedFormatCaseNameConstant = "unsupported_format"
	testUnsupportedLevelValueConstant     = "verbose"
	testUnsupportedFormatValueConstant    = "xml"
	testLoggerSubtestTemplateConstant     = "%d_%s"
)

func TestCreateLoggerOutputs(testInstance *testing.T) {
	testCases := []struct {
		name                 string
		requestedLevel       utils.LogLevel
		requestedFormat      utils.LogFormat
		expectError          bool
		expectConsoleLogging bool
	}{
		{
			name:            testStructuredFormatCaseNameConstant,
			requestedLevel:  utils.LogLevelInfo,
			requestedFormat: utils.LogFormatStructured,
		},
		{
			name:                 testConsoleFormatCaseNameConstant,
			requestedLevel:       utils.LogLevelDebug,
			requestedFormat:      utils.LogFormatConsole,
			expectConsoleLogging: true,
		},
		{
			name:            testUnsupportedLevelCaseNameConstant,
			requestedLevel:  utils.LogLevel(testUnsupportedLevelValueConstant),
			requestedFormat: utils.LogFormatStructured,
			expectError:     true,
		},
		{
			name:            testUnsupportedFormatCaseNameConstant,
			requestedLevel:  utils.LogLevelInfo,
			requestedFormat: utils.LogFormat(testUnsupportedFormatValueConstant),
			expectError:     true,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testLoggerSubtestTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			loggerFactory := utils.NewLoggerFactory()
			loggerOutputs, outputsError := loggerFactory.CreateLoggerOutputs(testCase.requestedLevel, testCase.requestedFormat)
			if testCase.expectError {
				require.Error(testInstance, outputsError)
				return
			}

			require.NoError(testInstance, outputsError)
			require.NotNil(testInstance, loggerOutputs.DiagnosticLogger)
			require.NotNil(testInstance, loggerOutputs.ConsoleLogger)

			consoleCoreEnabled := loggerOutputs.ConsoleLogger.Core().Enabled(zapcore.ErrorLevel)
			require.Equal(testInstance, testCase.expectConsoleLogging, consoleCoreEnabled)
		})
	}
}

func TestCreateLoggerOutputsNormalizesInputs(testInstance *testing.T) {
	loggerFactory := utils.NewLoggerFactory()
	loggerOutputs, outputsError := loggerFactory.CreateLoggerOutputs("  DEBUG  ", "  Console ")
	require.NoError(testInstance, outputsError)
	require.True(testInstance, loggerOutputs.DiagnosticLogger.Core().Enabled(zapcore.DebugLevel))
}

func TestCreateLoggerOutputsRespectsLevelThreshold(testInstance *testing.T) {
	loggerFactory := utils.NewLoggerFactory()
	loggerOutputs, outputsError := loggerFactory.CreateLoggerOutputs(utils.LogLevelError, utils.LogFormatStructured)
	require.NoError(testInstance, outputsError)
	require.False(testInstance, loggerOutputs.DiagnosticLogger.Core().Enabled(zapcore.InfoLevel))
	require.True(testInstance, loggerOutputs.DiagnosticLogger.Core().Enabled(zapcore.ErrorLevel))
}
