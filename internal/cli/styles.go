package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/cdkforge/cdkforge/internal/ui"
)

// Status symbols.
const (
	symbolSuccess = "✓"
	symbolError   = "✗"
	symbolWarning = "!"
)

// styles renders user-facing status lines.
type styles struct {
	title   lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	err     lipgloss.Style
	muted   lipgloss.Style
}

// newStyles builds styles from theme. Without colour every style is plain.
func newStyles(theme *ui.Theme) styles {
	if theme == nil || theme.NoColor {
		plain := lipgloss.NewStyle()
		return styles{title: plain, success: plain, warning: plain, err: plain, muted: plain}
	}
	return styles{
		title:   lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Colors.Primary)).Bold(true),
		success: lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Colors.Success)),
		warning: lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Colors.Warning)),
		err:     lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Colors.Error)),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Colors.Muted)),
	}
}

func (s styles) successLine(msg string) string {
	return s.success.Render(symbolSuccess) + " " + msg
}

func (s styles) warningLine(msg string) string {
	return s.warning.Render(symbolWarning) + " " + msg
}

func (s styles) errorLine(msg string) string {
	return s.err.Render(symbolError) + " " + msg
}
