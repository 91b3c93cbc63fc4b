package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Spinner shows that a step is running.
type Spinner interface {
	// SetTitle replaces the step text.
	SetTitle(title string)
	// Stop clears the spinner. Calling it more than once is a no-op.
	Stop()
}

// NewSpinner starts a spinner on w. Headless terminals and colourless
// themes get one plain line per distinct title instead of an animation.
func NewSpinner(theme *Theme, hm *HeadlessManager, w io.Writer, title string) Spinner {
	if hm.IsHeadless() || theme.NoColor {
		return newLineSpinner(w, title)
	}
	return startAnimated(newAnimatedModel(theme, title), tea.WithOutput(w))
}

type setTitleMsg string

type quitMsg struct{}

// animatedModel renders the spinner frame, the title and, after the first
// second, the elapsed time.
type animatedModel struct {
	frames   spinner.Model
	title    string
	muted    lipgloss.Style
	started  time.Time
	elapsed  time.Duration
	quitting bool
}

func newAnimatedModel(theme *Theme, title string) animatedModel {
	frames := spinner.New(spinner.WithSpinner(spinner.MiniDot))
	frames.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Colors.Primary))
	return animatedModel{
		frames:  frames,
		title:   title,
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Colors.Muted)),
		started: time.Now(),
	}
}

func (m animatedModel) Init() tea.Cmd {
	return m.frames.Tick
}

func (m animatedModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case setTitleMsg:
		m.title = string(msg)
		return m, nil
	case quitMsg:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyMsg:
		// The pipeline owns cancellation; ctrl+c only clears the line.
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	case spinner.TickMsg:
		m.elapsed = time.Since(m.started).Truncate(time.Second)
		var cmd tea.Cmd
		m.frames, cmd = m.frames.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m animatedModel) View() string {
	if m.quitting {
		return ""
	}
	line := m.frames.View() + " " + m.title
	if m.elapsed >= time.Second {
		line += " " + m.muted.Render(fmt.Sprintf("(%s)", m.elapsed))
	}
	return line + "\n"
}

// animatedSpinner drives an animatedModel on its own goroutine.
type animatedSpinner struct {
	program *tea.Program
	done    chan struct{}
	stop    sync.Once
}

func startAnimated(m animatedModel, opts ...tea.ProgramOption) *animatedSpinner {
	s := &animatedSpinner{
		program: tea.NewProgram(m, opts...),
		done:    make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		_, _ = s.program.Run()
	}()
	return s
}

func (s *animatedSpinner) SetTitle(title string) {
	s.program.Send(setTitleMsg(title))
}

// Stop asks the program to quit and waits until the line is cleared.
func (s *animatedSpinner) Stop() {
	s.stop.Do(func() {
		s.program.Send(quitMsg{})
		<-s.done
	})
}

// lineSpinner writes each new title on its own line.
type lineSpinner struct {
	mu      sync.Mutex
	w       io.Writer
	last    string
	stopped bool
}

func newLineSpinner(w io.Writer, title string) *lineSpinner {
	s := &lineSpinner{w: w}
	s.SetTitle(title)
	return s
}

func (s *lineSpinner) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || title == "" || title == s.last {
		return
	}
	s.last = title
	_, _ = fmt.Fprintln(s.w, title)
}

func (s *lineSpinner) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
}
