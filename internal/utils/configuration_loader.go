package utils

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	embeddedConfigurationReadErrorTemplateConstant = "unable to read embedded configuration: %w"
	configurationFileReadErrorTemplateConstant     = "unable to read configuration file: %w"
	configurationDecodeErrorTemplateConstant       = "unable to decode configuration: %w"
	environmentKeySeparatorConstant                = "_"
	configurationKeySeparatorConstant              = "."
)

// LoadedConfiguration reports metadata about a completed configuration load.
type LoadedConfiguration struct {
	ConfigFileUsed string
}

// ConfigurationLoader layers configuration sources: embedded defaults, then
// explicit defaults, then a configuration file discovered on the search
// paths (or provided explicitly), then prefixed environment variables.
type ConfigurationLoader struct {
	configurationName string
	configurationType string
	environmentPrefix string
	searchPaths       []string
	embeddedData      []byte
	embeddedType      string
}

// NewConfigurationLoader builds a loader for the named configuration.
func NewConfigurationLoader(configurationName string, configurationType string, environmentPrefix string, searchPaths []string) *ConfigurationLoader {
	return &ConfigurationLoader{
		configurationName: configurationName,
		configurationType: configurationType,
		environmentPrefix: environmentPrefix,
		searchPaths:       searchPaths,
	}
}

// SetEmbeddedConfiguration registers embedded default configuration content.
func (loader *ConfigurationLoader) SetEmbeddedConfiguration(configurationData []byte, configurationType string) {
	loader.embeddedData = configurationData
	loader.embeddedType = configurationType
}

// LoadConfiguration merges all configured sources into the target structure.
// A missing configuration file is not an error unless an explicit path was
// provided.
func (loader *ConfigurationLoader) LoadConfiguration(explicitFilePath string, defaultValues map[string]any, target any) (LoadedConfiguration, error) {
	viperInstance := viper.New()
	viperInstance.SetConfigType(loader.configurationType)

	if len(loader.embeddedData) > 0 {
		embeddedType := loader.embeddedType
		if len(embeddedType) == 0 {
			embeddedType = loader.configurationType
		}
		viperInstance.SetConfigType(embeddedType)
		if readError := viperInstance.ReadConfig(bytes.NewReader(loader.embeddedData)); readError != nil {
			return LoadedConfiguration{}, fmt.Errorf(embeddedConfigurationReadErrorTemplateConstant, readError)
		}
		viperInstance.SetConfigType(loader.configurationType)
	}

	for defaultKey, defaultValue := range defaultValues {
		viperInstance.SetDefault(defaultKey, defaultValue)
	}

	if len(strings.TrimSpace(loader.environmentPrefix)) > 0 {
		viperInstance.SetEnvPrefix(loader.environmentPrefix)
		viperInstance.SetEnvKeyReplacer(strings.NewReplacer(configurationKeySeparatorConstant, environmentKeySeparatorConstant))
		viperInstance.AutomaticEnv()
	}

	trimmedExplicitPath := strings.TrimSpace(explicitFilePath)
	if len(trimmedExplicitPath) > 0 {
		viperInstance.SetConfigFile(trimmedExplicitPath)
		if mergeError := viperInstance.MergeInConfig(); mergeError != nil {
			return LoadedConfiguration{}, fmt.Errorf(configurationFileReadErrorTemplateConstant, mergeError)
		}
	} else if len(loader.searchPaths) > 0 {
		viperInstance.SetConfigName(loader.configurationName)
		for _, searchPath := range loader.searchPaths {
			viperInstance.AddConfigPath(searchPath)
		}
		if mergeError := viperInstance.MergeInConfig(); mergeError != nil {
			var configurationNotFound viper.ConfigFileNotFoundError
			if !errors.As(mergeError, &configurationNotFound) {
				return LoadedConfiguration{}, fmt.Errorf(configurationFileReadErrorTemplateConstant, mergeError)
			}
		}
	}

	if target != nil {
		if decodeError := viperInstance.Unmarshal(target); decodeError != nil {
			return LoadedConfiguration{}, fmt.Errorf(configurationDecodeErrorTemplateConstant, decodeError)
		}
	}

	return LoadedConfiguration{ConfigFileUsed: viperInstance.ConfigFileUsed()}, nil
}
