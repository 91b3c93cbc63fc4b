package template

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// EnvTemplatesRoot overrides the templates root when no flag is given.
const EnvTemplatesRoot = "CDKFORGE_TEMPLATES"

// Origin names where a templates root candidate came from.
type Origin string

// Templates root origins in precedence order.
const (
	OriginFlag       Origin = "flag"
	OriginEnv        Origin = "env"
	OriginConfig     Origin = "config"
	OriginExecutable Origin = "executable"
	OriginWorkDir    Origin = "workdir"
)

// Source is one candidate for the templates root.
type Source struct {
	Origin Origin
	Path   string

	// Probe marks a fallback candidate that is skipped when the path is
	// missing. Explicit candidates are taken as-is so a wrong path surfaces
	// later as ErrTemplateNotFound with the path the user gave.
	Probe bool
}

// SourceOptions holds the inputs for DefaultSources.
type SourceOptions struct {
	Flag       string
	ConfigRoot string
	WorkDir    string

	// Getenv and Executable default to os.Getenv and os.Executable.
	Getenv     func(string) string
	Executable func() (string, error)
}

// DefaultSources returns the candidate roots in precedence order:
// flag, environment, config, <executable dir>/../templates, <workdir>/templates.
func DefaultSources(opts SourceOptions) []Source {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	executable := opts.Executable
	if executable == nil {
		executable = os.Executable
	}

	sources := []Source{
		{Origin: OriginFlag, Path: opts.Flag},
		{Origin: OriginEnv, Path: getenv(EnvTemplatesRoot)},
		{Origin: OriginConfig, Path: opts.ConfigRoot},
	}

	if exe, err := executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		sources = append(sources, Source{
			Origin: OriginExecutable,
			Path:   filepath.Join(filepath.Dir(exe), "..", "templates"),
			Probe:  true,
		})
	}

	if opts.WorkDir != "" {
		sources = append(sources, Source{
			Origin: OriginWorkDir,
			Path:   filepath.Join(opts.WorkDir, "templates"),
			Probe:  true,
		})
	}

	return sources
}

// ResolveRoot returns the first usable source. Empty paths are skipped, and
// probe sources are skipped unless they name an existing directory.
func ResolveRoot(sources ...Source) (Source, error) {
	for _, src := range sources {
		if strings.TrimSpace(src.Path) == "" {
			continue
		}
		if src.Probe && !isDir(src.Path) {
			continue
		}
		src.Path = filepath.Clean(src.Path)
		return src, nil
	}
	return Source{}, ErrNoTemplatesRoot
}

// Dir returns the directory of a template: <root>/<language>/<name>.
func Dir(root, language, name string) string {
	return filepath.Join(root, language, name)
}

// Check confirms dir exists and is a directory.
func Check(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrTemplateNotFound, dir)
		}
		return fmt.Errorf("stat template %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrTemplateNotFound, dir)
	}
	return nil
}

// Ref identifies one template under a root.
type Ref struct {
	Language string
	Name     string
	Path     string
}

// String returns "<language>/<name>".
func (r Ref) String() string {
	return r.Language + "/" + r.Name
}

// List returns every <language>/<name> template under root, sorted.
// Hidden directories are ignored.
func List(root string) ([]Ref, error) {
	languages, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoTemplatesRoot, root)
		}
		return nil, fmt.Errorf("read templates root %s: %w", root, err)
	}

	var refs []Ref
	for _, lang := range languages {
		if !lang.IsDir() || strings.HasPrefix(lang.Name(), ".") {
			continue
		}
		langDir := filepath.Join(root, lang.Name())
		names, err := os.ReadDir(langDir)
		if err != nil {
			return nil, fmt.Errorf("read language dir %s: %w", langDir, err)
		}
		for _, name := range names {
			if !name.IsDir() || strings.HasPrefix(name.Name(), ".") {
				continue
			}
			refs = append(refs, Ref{
				Language: lang.Name(),
				Name:     name.Name(),
				Path:     filepath.Join(langDir, name.Name()),
			})
		}
	}

	slices.SortFunc(refs, func(a, b Ref) int {
		return strings.Compare(a.String(), b.String())
	})
	return refs, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
