package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/cdkforge/cdkforge/internal/scaffold"
	"github.com/cdkforge/cdkforge/internal/ui"
)

var (
	_ scaffold.ProgressReporter = (*spinnerReporter)(nil)
	_ scaffold.ProgressReporter = (*trackingReporter)(nil)
)

// newReporter picks the progress output for a create run. Non-interactive
// runs get one plain line per event, suited to CI logs.
func newReporter(out io.Writer, d *Dependencies, nonInteractive bool) scaffold.ProgressReporter {
	if nonInteractive {
		return scaffold.NewConsoleReporterTo(out)
	}
	return newSpinnerReporter(out, d.Theme, d.Headless)
}

// trackingReporter remembers whether a step failure was already shown.
type trackingReporter struct {
	scaffold.ProgressReporter
	failed bool
}

func (r *trackingReporter) StepError(err error) {
	r.failed = true
	r.ProgressReporter.StepError(err)
}

// reportedError wraps an error the progress output has already printed.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }

func (e *reportedError) Unwrap() error { return e.err }

// printError writes err to w unless the progress output already showed it.
func printError(w io.Writer, err error) {
	var shown *reportedError
	if err == nil || errors.As(err, &shown) {
		return
	}
	_, _ = fmt.Fprintln(w, "Error: "+err.Error())
}

// spinnerReporter shows a spinner while a step runs and a status line when
// it ends.
type spinnerReporter struct {
	out      io.Writer
	styles   styles
	theme    *ui.Theme
	headless *ui.HeadlessManager
	spinner  ui.Spinner
}

func newSpinnerReporter(out io.Writer, theme *ui.Theme, headless *ui.HeadlessManager) *spinnerReporter {
	return &spinnerReporter{
		out:      out,
		styles:   newStyles(theme),
		theme:    theme,
		headless: headless,
	}
}

func (r *spinnerReporter) StepStart(_, message string) {
	r.stop()
	r.spinner = ui.NewSpinner(r.theme, r.headless, r.out, message)
}

func (r *spinnerReporter) StepUpdate(message string) {
	if r.spinner != nil {
		r.spinner.SetTitle(message)
	}
}

func (r *spinnerReporter) StepComplete(message string) {
	r.stop()
	_, _ = fmt.Fprintln(r.out, r.styles.successLine(message))
}

func (r *spinnerReporter) StepWarn(message string) {
	r.stop()
	_, _ = fmt.Fprintln(r.out, r.styles.warningLine(message))
}

func (r *spinnerReporter) StepError(err error) {
	r.stop()
	_, _ = fmt.Fprintln(r.out, r.styles.errorLine(err.Error()))
}

func (r *spinnerReporter) stop() {
	if r.spinner != nil {
		r.spinner.Stop()
		r.spinner = nil
	}
}
