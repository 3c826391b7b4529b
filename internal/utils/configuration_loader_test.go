package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/colx/internal/utils"
)

const (
	testConfigurationNameConstant        = "config"
	testConfigurationTypeConstant        = "yaml"
	testEnvironmentPrefixConstant        = "COLX"
	testConfigurationFileNameConstant    = "config.yaml"
	testEmbeddedConfigurationConstant    = "common:\n  log_level: error\n  log_format: structured\n"
	testFileConfigurationConstant        = "common:\n  log_level: debug\n"
	testEnvironmentVariableNameConstant  = "COLX_COMMON_LOG_FORMAT"
	testEnvironmentVariableValueConstant = "console"
	testMissingExplicitPathConstant      = "/nonexistent/config.yaml"
)

type loaderTestConfiguration struct {
	Common struct {
		LogLevel  string `mapstructure:"log_level"`
		LogFormat string `mapstructure:"log_format"`
	} `mapstructure:"common"`
}

func TestLoadConfigurationEmbeddedDefaults(testInstance *testing.T) {
	loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, nil)
	loader.SetEmbeddedConfiguration([]byte(testEmbeddedConfigurationConstant), testConfigurationTypeConstant)

	var configuration loaderTestConfiguration
	loadedConfiguration, loadError := loader.LoadConfiguration("", nil, &configuration)
	require.NoError(testInstance, loadError)
	require.Empty(testInstance, loadedConfiguration.ConfigFileUsed)
	require.Equal(testInstance, "error", configuration.Common.LogLevel)
	require.Equal(testInstance, "structured", configuration.Common.LogFormat)
}

func TestLoadConfigurationFileOverridesEmbeddedDefaults(testInstance *testing.T) {
	configurationDirectory := testInstance.TempDir()
	configurationPath := filepath.Join(configurationDirectory, testConfigurationFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(testFileConfigurationConstant), 0o600))

	loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, []string{configurationDirectory})
	loader.SetEmbeddedConfiguration([]byte(testEmbeddedConfigurationConstant), testConfigurationTypeConstant)

	var configuration loaderTestConfiguration
	loadedConfiguration, loadError := loader.LoadConfiguration("", nil, &configuration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, configurationPath, loadedConfiguration.ConfigFileUsed)
	require.Equal(testInstance, "debug", configuration.Common.LogLevel)
	require.Equal(testInstance, "structured", configuration.Common.LogFormat)
}

func TestLoadConfigurationExplicitPath(testInstance *testing.T) {
	configurationDirectory := testInstance.TempDir()
	configurationPath := filepath.Join(configurationDirectory, testConfigurationFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(testFileConfigurationConstant), 0o600))

	loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, nil)

	var configuration loaderTestConfiguration
	loadedConfiguration, loadError := loader.LoadConfiguration(configurationPath, nil, &configuration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, configurationPath, loadedConfiguration.ConfigFileUsed)
	require.Equal(testInstance, "debug", configuration.Common.LogLevel)
}

func TestLoadConfigurationMissingExplicitPathFails(testInstance *testing.T) {
	loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, nil)

	var configuration loaderTestConfiguration
	_, loadError := loader.LoadConfiguration(testMissingExplicitPathConstant, nil, &configuration)
	require.Error(testInstance, loadError)
}

func TestLoadConfigurationMissingSearchPathFileSucceeds(testInstance *testing.T) {
	emptyDirectory := testInstance.TempDir()
	loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, []string{emptyDirectory})
	loader.SetEmbeddedConfiguration([]byte(testEmbeddedConfigurationConstant), testConfigurationTypeConstant)

	var configuration loaderTestConfiguration
	loadedConfiguration, loadError := loader.LoadConfiguration("", nil, &configuration)
	require.NoError(testInstance, loadError)
	require.Empty(testInstance, loadedConfiguration.ConfigFileUsed)
	require.Equal(testInstance, "error", configuration.Common.LogLevel)
}

func TestLoadConfigurationEnvironmentOverrides(testInstance *testing.T) {
	testInstance.Setenv(testEnvironmentVariableNameConstant, testEnvironmentVariableValueConstant)

	loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, nil)
	loader.SetEmbeddedConfiguration([]byte(testEmbeddedConfigurationConstant), testConfigurationTypeConstant)

	var configuration loaderTestConfiguration
	_, loadError := loader.LoadConfiguration("", nil, &configuration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, testEnvironmentVariableValueConstant, configuration.Common.LogFormat)
}

func TestLoadConfigurationDefaultValues(testInstance *testing.T) {
	loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, nil)

	var configuration loaderTestConfiguration
	_, loadError := loader.LoadConfiguration("", map[string]any{"common.log_level": "warn"}, &configuration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, "warn", configuration.Common.LogLevel)
}
