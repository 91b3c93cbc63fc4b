package config

import "time"

// Config is the full cdkforge configuration.
type Config struct {
	Templates TemplatesConfig `yaml:"templates"`
	Defaults  DefaultsConfig  `yaml:"defaults"`
	Tools     ToolsConfig     `yaml:"tools"`
	Log       LogConfig       `yaml:"log"`
	Update    UpdateConfig    `yaml:"update"`
}

// TemplatesConfig selects where templates come from and which one is used
// when no flag is given.
type TemplatesConfig struct {
	Root     string `yaml:"root"`
	Language string `yaml:"language" validate:"required,excludesall=/\\"`
	Name     string `yaml:"name" validate:"required,excludesall=/\\"`
}

// DefaultsConfig holds answer defaults used when a flag is not given.
// Empty values fall through to the AWS shared config and built-in defaults.
type DefaultsConfig struct {
	Namespace string `yaml:"namespace" validate:"omitempty,printascii"`
	Account   string `yaml:"account" validate:"omitempty,numeric,len=12"`
	Region    string `yaml:"region" validate:"omitempty,hostname_rfc1123"`
	Profile   string `yaml:"profile" validate:"omitempty,printascii"`
}

// ToolsConfig selects the external tools run in the generated project.
type ToolsConfig struct {
	PackageManager string `yaml:"package_manager" validate:"required,oneof=npm yarn pnpm bun pip poetry uv"`
	VCS            string `yaml:"vcs" validate:"required,oneof=git hg jj"`
	SkipGit        bool   `yaml:"skip_git"`
	SkipInstall    bool   `yaml:"skip_install"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level  string `yaml:"level" validate:"required,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"required,oneof=text json"`
}

// UpdateConfig controls the latest-release check.
type UpdateConfig struct {
	ReleasesURL string        `yaml:"releases_url" validate:"required,url"`
	Timeout     time.Duration `yaml:"timeout" validate:"gt=0"`
	MaxRetries  int           `yaml:"max_retries" validate:"gte=0,lte=10"`
}
