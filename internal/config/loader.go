package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file name inside the config directory.
const FileName = "config.yaml"

// ErrConfigNotFound indicates an explicitly requested config file is missing.
var ErrConfigNotFound = errors.New("config: configuration file not found")

// DefaultPath returns $XDG_CONFIG_HOME/cdkforge/config.yaml, falling back to
// the platform user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(dir, "cdkforge", FileName), nil
}

// Loader reads the configuration file and applies environment overrides.
type Loader struct {
	logger *slog.Logger
	getenv func(string) string
}

// NewLoader creates a Loader. A nil logger discards output.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Loader{logger: logger, getenv: os.Getenv}
}

// Load reads path over the defaults. A missing file yields the defaults.
func (l *Loader) Load(path string) (*Config, error) {
	return l.load(path, false)
}

// LoadFile reads path over the defaults. A missing file is ErrConfigNotFound.
func (l *Loader) LoadFile(path string) (*Config, error) {
	return l.load(path, true)
}

func (l *Loader) load(path string, required bool) (*Config, error) {
	cfg := NewDefaultConfig()

	loaded, err := loadYAMLFile(path, cfg)
	if err != nil {
		return nil, err
	}
	if !loaded {
		if required {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		l.logger.Debug("config file not found, using defaults", "path", path)
	} else {
		l.logger.Debug("config file loaded", "path", path)
	}

	applyEnvOverrides(cfg, l.getenv)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// loadYAMLFile decodes path into target. It reports false when the file
// does not exist.
func loadYAMLFile(path string, target any) (bool, error) {
	if path == "" {
		return false, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, target); err != nil {
		return false, fmt.Errorf("parse %s: %w: %v", path, ErrInvalidYAML, err)
	}

	return true, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables have higher priority than file-based values.
func applyEnvOverrides(cfg *Config, getenv func(string) string) {
	if level := getenv("CDKFORGE_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if format := getenv("CDKFORGE_LOG_FORMAT"); format != "" {
		cfg.Log.Format = format
	}
	if pm := getenv("CDKFORGE_PACKAGE_MANAGER"); pm != "" {
		cfg.Tools.PackageManager = pm
	}
	if url := getenv("CDKFORGE_RELEASES_URL"); url != "" {
		cfg.Update.ReleasesURL = url
	}
}
