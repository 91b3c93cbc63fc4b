package config

import "time"

// Default value constants to avoid magic numbers and strings.
const (
	DefaultLanguage = "typescript"
	DefaultTemplate = "default"

	DefaultPackageManager = "npm"
	DefaultVCS            = "git"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"

	DefaultReleasesURL   = "https://api.github.com/repos/cdkforge/cdkforge/releases/latest"
	DefaultUpdateTimeout = 10 * time.Second
	DefaultUpdateRetries = 2
)

// NewDefaultConfig returns a Config with every default applied.
func NewDefaultConfig() *Config {
	return &Config{
		Templates: TemplatesConfig{
			Language: DefaultLanguage,
			Name:     DefaultTemplate,
		},
		Tools: ToolsConfig{
			PackageManager: DefaultPackageManager,
			VCS:            DefaultVCS,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Update: UpdateConfig{
			ReleasesURL: DefaultReleasesURL,
			Timeout:     DefaultUpdateTimeout,
			MaxRetries:  DefaultUpdateRetries,
		},
	}
}
