// Package scaffold creates a new project from a template tree: it copies the
// template, fills in placeholder tokens, initializes version control and
// installs dependencies.
package scaffold

import (
	"errors"

	"github.com/cdkforge/cdkforge/internal/template"
)

// Sentinel errors for the scaffold package.
var (
	// ErrInvalidRequest indicates a request field is missing or malformed.
	ErrInvalidRequest = errors.New("invalid scaffold request")

	// ErrTemplateNotFound indicates the resolved template directory does not exist.
	ErrTemplateNotFound = template.ErrTemplateNotFound

	// ErrTargetExists indicates the target directory already exists.
	ErrTargetExists = template.ErrTargetExists

	// ErrCopyFailed indicates the template tree could not be copied.
	ErrCopyFailed = errors.New("copy template failed")

	// ErrSubstitutionFailed indicates an allow-listed file could not be rewritten.
	ErrSubstitutionFailed = errors.New("placeholder substitution failed")

	// ErrVCSInitFailed indicates repository initialization failed. It is
	// reported as a warning and never returned by Scaffold.
	ErrVCSInitFailed = errors.New("version control initialization failed")

	// ErrInstallFailed indicates dependency installation failed.
	ErrInstallFailed = errors.New("dependency installation failed")
)
