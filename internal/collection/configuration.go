package collection

import "strings"

const (
	defaultPackagerBinaryConstant   = "ansible-galaxy"
	defaultWorkingDirectoryConstant = "."
	defaultArchiveGlobConstant      = "*.tar.gz"
)

// Configuration controls how packaging actions invoke the collection packager.
type Configuration struct {
	PackagerBinary   string `mapstructure:"packager"`
	WorkingDirectory string `mapstructure:"working_directory"`
	ArchiveGlob      string `mapstructure:"archive_glob"`
	PublishServerURL string `mapstructure:"server"`
}

// DefaultConfiguration returns the packaging defaults matching the published
// collection layout.
func DefaultConfiguration() Configuration {
	return Configuration{
		PackagerBinary:   defaultPackagerBinaryConstant,
		WorkingDirectory: defaultWorkingDirectoryConstant,
		ArchiveGlob:      defaultArchiveGlobConstant,
	}
}

// Sanitize trims configured values and fills unset fields with defaults.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := Configuration{
		PackagerBinary:   strings.TrimSpace(configuration.PackagerBinary),
		WorkingDirectory: strings.TrimSpace(configuration.WorkingDirectory),
		ArchiveGlob:      strings.TrimSpace(configuration.ArchiveGlob),
		PublishServerURL: strings.TrimSpace(configuration.PublishServerURL),
	}
	if len(sanitized.PackagerBinary) == 0 {
		sanitized.PackagerBinary = defaultPackagerBinaryConstant
	}
	if len(sanitized.WorkingDirectory) == 0 {
		sanitized.WorkingDirectory = defaultWorkingDirectoryConstant
	}
	if len(sanitized.ArchiveGlob) == 0 {
		sanitized.ArchiveGlob = defaultArchiveGlobConstant
	}
	return sanitized
}
