package ui

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHeadlessManager_Force(t *testing.T) {
	t.Parallel()

	hm := NewHeadlessManager()

	hm.ForceHeadless(true)
	if !hm.IsHeadless() {
		t.Error("IsHeadless() = false after ForceHeadless(true)")
	}
	hm.ForceHeadless(false)
	if hm.IsHeadless() {
		t.Error("IsHeadless() = true after ForceHeadless(false)")
	}
}

func TestHeadlessManager_NonTerminal(t *testing.T) {
	t.Parallel()

	f, err := os.Create(filepath.Join(t.TempDir(), "stdout"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()

	hm := &HeadlessManager{in: f, out: f}
	if !hm.IsHeadless() {
		t.Error("IsHeadless() = false for regular files")
	}

	hm.ForceHeadless(false)
	hm.ClearForce()
	if !hm.IsHeadless() {
		t.Error("ClearForce() should restore detection")
	}

	if !(&HeadlessManager{}).IsHeadless() {
		t.Error("nil files should be headless")
	}
}

func TestNewTheme_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if !NewTheme().NoColor {
		t.Error("NoColor = false with NO_COLOR set")
	}
}
