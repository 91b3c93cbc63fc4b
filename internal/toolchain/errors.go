package toolchain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCommandNotFound indicates the binary is not on PATH.
var ErrCommandNotFound = errors.New("command not found")

// ErrUnsupportedTool indicates a VCS or package manager with no known invocation.
var ErrUnsupportedTool = errors.New("unsupported tool")

// CommandError describes a command that ran and failed.
type CommandError struct {
	Name     string
	Args     []string
	Dir      string
	ExitCode int
	Output   string
	Err      error
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	cmdline := strings.TrimSpace(e.Name + " " + strings.Join(e.Args, " "))
	msg := fmt.Sprintf("%s (in %s): %v", cmdline, e.Dir, e.Err)
	if e.Output != "" {
		msg += "\n" + e.Output
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *CommandError) Unwrap() error {
	return e.Err
}
