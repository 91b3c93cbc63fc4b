package scaffold

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/cdkforge/cdkforge/internal/template"
	"github.com/cdkforge/cdkforge/internal/toolchain"
	"github.com/cdkforge/cdkforge/pkg/tracing"
)

// Step names, used for progress reporting and as trace span suffixes.
const (
	StepValidateTemplate = "validate_template"
	StepValidateTarget   = "validate_target"
	StepCopyTemplate     = "copy_template"
	StepSubstitute       = "substitute_placeholders"
	StepInitVCS          = "init_vcs"
	StepInstall          = "install_dependencies"
)

// Tools runs the external programs of a generated project.
// *toolchain.Toolchain satisfies it.
type Tools interface {
	InitRepository(ctx context.Context, dir, vcs string) error
	InstallDependencies(ctx context.Context, dir, pm string) error
}

// Result summarizes a successful scaffold.
type Result struct {
	TargetDir             string   // Absolute or WorkDir-relative project directory.
	CopiedFiles           []string // Template files copied, slash separated.
	UpdatedFiles          []string // Allow-listed files rewritten with answers.
	GitInitialized        bool     // Whether the repository was initialized.
	DependenciesInstalled bool     // Whether dependencies were installed.
	Warnings              []string // Non-fatal problems.
}

// Scaffolder runs the scaffold pipeline.
type Scaffolder struct {
	copier   template.Copier
	tools    Tools
	reporter ProgressReporter
	tracer   trace.Tracer
	logger   *slog.Logger
}

// NewScaffolder creates a Scaffolder. A nil copier uses template.NewCopier,
// nil tools run real processes and a nil logger discards output.
func NewScaffolder(copier template.Copier, tools Tools, logger *slog.Logger) *Scaffolder {
	if copier == nil {
		copier = template.NewCopier()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if tools == nil {
		tools = toolchain.New(toolchain.NewExecRunner(), logger)
	}
	return &Scaffolder{
		copier:   copier,
		tools:    tools,
		reporter: &NoOpReporter{},
		logger:   logger,
	}
}

// SetReporter sets the progress reporter. nil restores the no-op reporter.
func (s *Scaffolder) SetReporter(r ProgressReporter) {
	if r == nil {
		r = &NoOpReporter{}
	}
	s.reporter = r
}

// SetTracer sets the tracer used for step spans. nil uses the global provider.
func (s *Scaffolder) SetTracer(t trace.Tracer) {
	s.tracer = t
}

// Scaffold creates a new project for req. Steps run strictly in order:
//
//  1. validate the template directory
//  2. validate that the target does not exist
//  3. copy the template tree
//  4. substitute placeholders in allow-listed files
//  5. initialize version control (failure is a warning)
//  6. install dependencies
//
// Only a substitution failure removes the target directory. A failed copy or
// install leaves it in place for inspection.
func (s *Scaffolder) Scaffold(ctx context.Context, req Request) (*Result, error) {
	req = req.Normalized()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	templateDir := req.TemplateDir()
	targetDir := req.TargetDir()

	s.logger.Info("scaffolding project",
		"service", req.ServiceName,
		"language", req.Language,
		"template", req.Template,
		"target", targetDir,
	)

	result := &Result{TargetDir: targetDir}

	err := tracing.Run(ctx, s.tracer, "scaffold", func(ctx context.Context) error {
		return s.run(ctx, req, templateDir, targetDir, result)
	},
		attribute.String("scaffold.service", req.ServiceName),
		attribute.String("scaffold.template", req.Language+"/"+req.Template),
	)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Scaffolder) run(ctx context.Context, req Request, templateDir, targetDir string, result *Result) error {
	// Step 1: template must exist. Nothing has been created yet.
	err := s.step(ctx, StepValidateTemplate, "Template",
		fmt.Sprintf("Checking template %s/%s...", req.Language, req.Template),
		func(context.Context) error {
			return template.Check(templateDir)
		})
	if err != nil {
		return err
	}
	s.reporter.StepComplete("Template found")

	// Step 2: target must not exist.
	err = s.step(ctx, StepValidateTarget, "Target",
		fmt.Sprintf("Checking %s...", targetDir),
		func(context.Context) error {
			return checkTargetAbsent(targetDir)
		})
	if err != nil {
		return err
	}
	s.reporter.StepComplete("Target directory available")

	// Step 3: copy. A partial copy is left in place.
	err = s.step(ctx, StepCopyTemplate, "Copy", "Copying template files...",
		func(ctx context.Context) error {
			copied, err := s.copier.Copy(ctx, os.DirFS(templateDir), targetDir)
			result.CopiedFiles = copied
			if err != nil {
				return fmt.Errorf("%w: %w", ErrCopyFailed, err)
			}
			s.reporter.StepUpdate(fmt.Sprintf("Copied %d files into %s", len(copied), targetDir))
			return nil
		})
	if err != nil {
		return err
	}
	s.logger.Debug("template copied", "files", len(result.CopiedFiles))
	s.reporter.StepComplete(fmt.Sprintf("Copied %d files", len(result.CopiedFiles)))

	// Step 4: substitute. Failure removes the whole target.
	placeholders := NewPlaceholderSet(req.Answers)
	err = s.step(ctx, StepSubstitute, "Customize", "Updating project files...",
		func(context.Context) error {
			updated, err := substitute(targetDir, AllowList(req.Language), placeholders)
			result.UpdatedFiles = updated
			for _, rel := range updated {
				s.reporter.StepUpdate("Updated " + rel)
			}
			if err == nil {
				return nil
			}
			if rmErr := os.RemoveAll(targetDir); rmErr != nil {
				s.logger.Error("cleanup after failed substitution", "target", targetDir, "error", rmErr)
				return errors.Join(err, fmt.Errorf("remove %s: %w", targetDir, rmErr))
			}
			s.logger.Info("removed target after failed substitution", "target", targetDir)
			return err
		})
	if err != nil {
		return err
	}
	s.reporter.StepComplete("Project files updated")

	// Step 5: version control, warning only.
	if req.SkipGit {
		s.logger.Debug("skipping version control initialization")
	} else {
		s.reporter.StepStart("Version control", fmt.Sprintf("Initializing %s repository...", req.VCS))
		vcsErr := tracing.Run(ctx, s.tracer, "scaffold."+StepInitVCS, func(ctx context.Context) error {
			return s.tools.InitRepository(ctx, targetDir, req.VCS)
		})
		if vcsErr != nil {
			warning := fmt.Sprintf("could not initialize %s repository: %v", req.VCS, vcsErr)
			result.Warnings = append(result.Warnings, warning)
			s.logger.Warn("version control initialization failed",
				"vcs", req.VCS,
				"error", fmt.Errorf("%w: %w", ErrVCSInitFailed, vcsErr),
			)
			s.reporter.StepWarn(warning)
		} else {
			result.GitInitialized = true
			s.reporter.StepComplete("Repository initialized")
		}
	}

	// Step 6: dependencies. Failure is fatal and leaves the target.
	if req.SkipInstall {
		s.logger.Debug("skipping dependency installation")
		return nil
	}
	err = s.step(ctx, StepInstall, "Dependencies",
		fmt.Sprintf("Installing dependencies with %s...", req.PackageManager),
		func(ctx context.Context) error {
			if err := s.tools.InstallDependencies(ctx, targetDir, req.PackageManager); err != nil {
				return fmt.Errorf("%w: %w", ErrInstallFailed, err)
			}
			return nil
		})
	if err != nil {
		return err
	}
	result.DependenciesInstalled = true
	s.reporter.StepComplete("Dependencies installed")

	s.logger.Info("project scaffolded", "target", targetDir, "warnings", len(result.Warnings))
	return nil
}

// step reports the start of a fatal step, runs fn in its own span and
// reports a failure. Completion is reported by the caller.
func (s *Scaffolder) step(ctx context.Context, state, name, message string, fn func(context.Context) error) error {
	s.reporter.StepStart(name, message)
	err := tracing.Run(ctx, s.tracer, "scaffold."+state, fn)
	if err != nil {
		s.logger.Error("scaffold step failed", "step", state, "error", err)
		s.reporter.StepError(err)
	}
	return err
}

// checkTargetAbsent fails when anything already exists at dir.
func checkTargetAbsent(dir string) error {
	_, err := os.Lstat(dir)
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s", ErrTargetExists, dir)
	case errors.Is(err, fs.ErrNotExist):
		return nil
	default:
		return fmt.Errorf("stat target %s: %w", dir, err)
	}
}

// substitute rewrites each allow-listed file present under root. Missing
// files are skipped; any other stat, read or write error is fatal.
func substitute(root string, allowList []string, placeholders PlaceholderSet) ([]string, error) {
	var updated []string
	for _, rel := range allowList {
		path := filepath.Join(root, filepath.FromSlash(rel))

		info, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return updated, fmt.Errorf("%w: %s: %w", ErrSubstitutionFailed, rel, err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return updated, fmt.Errorf("%w: %s: %w", ErrSubstitutionFailed, rel, err)
		}

		content, _ := placeholders.Apply(string(data))
		if err := os.WriteFile(path, []byte(content), info.Mode().Perm()); err != nil {
			return updated, fmt.Errorf("%w: %s: %w", ErrSubstitutionFailed, rel, err)
		}
		updated = append(updated, rel)
	}
	return updated, nil
}
