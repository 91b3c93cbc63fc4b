package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/cdkforge/cdkforge/internal/ui"
)

func TestSpinnerReporter_Headless(t *testing.T) {
	t.Parallel()

	hm := ui.NewHeadlessManager()
	hm.ForceHeadless(true)
	theme := ui.NewTheme()
	theme.NoColor = true

	var buf bytes.Buffer
	r := newSpinnerReporter(&buf, theme, hm)
	r.StepStart("Copy", "Copying template files...")
	r.StepUpdate("Copying lib/stack.ts")
	r.StepComplete("Copied 3 files")
	r.StepStart("Version control", "Initializing git repository...")
	r.StepWarn("could not initialize git repository")
	r.StepStart("Dependencies", "Installing dependencies with npm...")
	r.StepError(errors.New("install failed"))

	want := "Copying template files...\n" +
		"Copying lib/stack.ts\n" +
		"✓ Copied 3 files\n" +
		"Initializing git repository...\n" +
		"! could not initialize git repository\n" +
		"Installing dependencies with npm...\n" +
		"✗ install failed\n"
	if buf.String() != want {
		t.Errorf("output =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestNewStyles_NoColorIsPlain(t *testing.T) {
	t.Parallel()

	theme := ui.NewTheme()
	theme.NoColor = true
	st := newStyles(theme)

	if got := st.successLine("done"); got != "✓ done" {
		t.Errorf("successLine() = %q", got)
	}
	if got := st.errorLine("failed"); got != "✗ failed" {
		t.Errorf("errorLine() = %q", got)
	}
	if got := newStyles(nil).warningLine("careful"); got != "! careful" {
		t.Errorf("warningLine() = %q", got)
	}
}
