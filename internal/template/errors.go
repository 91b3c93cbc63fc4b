package template

import "errors"

// Sentinel errors for template operations.
var (
	// ErrTemplateNotFound indicates the requested template directory does not exist.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrNoTemplatesRoot indicates no candidate templates root could be resolved.
	ErrNoTemplatesRoot = errors.New("no templates root found")

	// ErrPathTraversal indicates a template entry would be written outside the target.
	ErrPathTraversal = errors.New("path traversal detected")

	// ErrTargetExists indicates the copy destination already exists.
	ErrTargetExists = errors.New("directory already exists")
)
