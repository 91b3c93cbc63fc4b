package scaffold

import (
	"fmt"
	"io"
	"os"
)

// ProgressReporter receives step-by-step progress from Scaffold.
type ProgressReporter interface {
	// StepStart begins a named step.
	StepStart(name, message string)
	// StepUpdate reports progress within the current step.
	StepUpdate(message string)
	// StepComplete ends the current step successfully.
	StepComplete(message string)
	// StepWarn ends the current step with a non-fatal problem.
	StepWarn(message string)
	// StepError ends the current step with a fatal error.
	StepError(err error)
}

// NoOpReporter discards all progress.
type NoOpReporter struct{}

func (*NoOpReporter) StepStart(string, string) {}
func (*NoOpReporter) StepUpdate(string)        {}
func (*NoOpReporter) StepComplete(string)      {}
func (*NoOpReporter) StepWarn(string)          {}
func (*NoOpReporter) StepError(error)          {}

// ConsoleReporter writes one plain line per event.
type ConsoleReporter struct {
	out     io.Writer
	current string
}

// NewConsoleReporter creates a ConsoleReporter writing to stdout.
func NewConsoleReporter() *ConsoleReporter {
	return NewConsoleReporterTo(os.Stdout)
}

// NewConsoleReporterTo creates a ConsoleReporter writing to out.
func NewConsoleReporterTo(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{out: out}
}

func (r *ConsoleReporter) StepStart(name, message string) {
	r.current = name
	if message == "" {
		_, _ = fmt.Fprintf(r.out, "[%s]\n", name)
		return
	}
	_, _ = fmt.Fprintf(r.out, "[%s] %s\n", name, message)
}

func (r *ConsoleReporter) StepUpdate(message string) {
	_, _ = fmt.Fprintf(r.out, "  %s\n", message)
}

func (r *ConsoleReporter) StepComplete(message string) {
	if message == "" {
		message = r.current + " done"
	}
	_, _ = fmt.Fprintf(r.out, "  ok: %s\n", message)
}

func (r *ConsoleReporter) StepWarn(message string) {
	_, _ = fmt.Fprintf(r.out, "  warning: %s\n", message)
}

func (r *ConsoleReporter) StepError(err error) {
	if err == nil {
		_, _ = fmt.Fprintf(r.out, "  error: %s failed\n", r.current)
		return
	}
	_, _ = fmt.Fprintf(r.out, "  error: %v\n", err)
}
