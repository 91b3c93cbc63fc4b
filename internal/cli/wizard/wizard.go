package wizard

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Run asks each question in its own huh.Form and returns the answers.
// Questions run one form at a time so later defaults and options can depend
// on earlier answers.
func Run(questions []Question) (*Result, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	result := &Result{}
	theme := newWizardTheme()

	for i := range questions {
		q := resolve(questions[i], result)

		if q.Type == QuestionTypeSelect && len(q.Options) <= 1 {
			if len(q.Options) == 1 {
				saveAnswer(q.ID, q.Options[0].Value, result)
			}
			continue
		}

		field, commit := buildField(&q)
		form := huh.NewForm(huh.NewGroup(field)).
			WithTheme(theme).
			WithAccessible(false)

		if err := form.Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil, ErrCancelled
			}
			return nil, fmt.Errorf("wizard error: %w", err)
		}
		saveAnswer(q.ID, commit(), result)
	}

	return result, nil
}

// resolve evaluates the question's dynamic default and options against the
// answers so far.
func resolve(q Question, result *Result) Question {
	if q.DefaultFunc != nil {
		if d := q.DefaultFunc(result); d != "" {
			q.Default = d
		}
	}
	if q.OptionsFunc != nil {
		q.Options = q.OptionsFunc(result)
	}
	return q
}

// buildField creates the huh field for q and a function returning the
// final answer once the form has completed.
func buildField(q *Question) (huh.Field, func() string) {
	if q.Type == QuestionTypeSelect {
		return buildSelectField(q)
	}
	return buildInputField(q)
}

// buildSelectField creates a huh.Select. Options are static so the viewport
// sizes itself to the option count.
func buildSelectField(q *Question) (*huh.Select[string], func() string) {
	selected := q.Default

	opts := make([]huh.Option[string], len(q.Options))
	for i, opt := range q.Options {
		key := opt.Label
		if opt.Desc != "" {
			key = opt.Label + " - " + opt.Desc
		}
		opts[i] = huh.NewOption(key, opt.Value)
	}

	sel := huh.NewSelect[string]().
		Title(q.Title).
		Description(q.Description).
		Options(opts...).
		Value(&selected)

	return sel, func() string { return selected }
}

// buildInputField creates a huh.Input with the default as placeholder.
func buildInputField(q *Question) (*huh.Input, func() string) {
	var value string

	inp := huh.NewInput().
		Title(q.Title).
		Description(q.Description).
		Value(&value)

	if q.Default != "" {
		inp = inp.Placeholder(q.Default)
	}
	if len(q.Suggestions) > 0 {
		inp = inp.Suggestions(q.Suggestions)
	}
	inp = inp.Validate(inputValidator(q))

	def := q.Default
	return inp, func() string { return answerOrDefault(value, def) }
}

// inputValidator applies the question's rules to the trimmed, defaulted
// value.
func inputValidator(q *Question) func(string) error {
	def, required, check := q.Default, q.Required, q.Validate
	return func(val string) error {
		v := answerOrDefault(val, def)
		if required && v == "" {
			return errors.New("this field is required")
		}
		if check != nil {
			return check(v)
		}
		return nil
	}
}

func answerOrDefault(val, def string) string {
	if v := strings.TrimSpace(val); v != "" {
		return v
	}
	return def
}

// saveAnswer stores an answer in the result.
func saveAnswer(id, value string, result *Result) {
	switch id {
	case IDServiceName:
		result.ServiceName = value
	case IDLanguage:
		result.Language = value
	case IDTemplate:
		result.Template = value
	case IDNamespace:
		result.ProjectNamespace = value
	case IDAccount:
		result.AWSDevAccount = value
	case IDRegion:
		result.AWSDevRegion = value
	case IDProfile:
		result.AWSDevProfile = value
	}
}

func sortedKeys(m map[string][]string) []string {
	return slices.Sorted(maps.Keys(m))
}

// newWizardTheme starts from the Charm theme and swaps in the cdkforge
// palette for titles, selection, and errors.
func newWizardTheme() *huh.Theme {
	t := huh.ThemeCharm()

	accent := lipgloss.Color(ColorPrimary)
	for _, fs := range []*huh.FieldStyles{&t.Focused, &t.Blurred} {
		fs.Title = fs.Title.Foreground(accent)
		fs.Description = fs.Description.Foreground(lipgloss.Color(ColorMuted))
		fs.SelectedOption = fs.SelectedOption.Foreground(lipgloss.Color(ColorSuccess))
		fs.ErrorMessage = fs.ErrorMessage.Foreground(lipgloss.Color(ColorError))
		fs.ErrorIndicator = fs.ErrorIndicator.Foreground(lipgloss.Color(ColorError))
	}
	t.Focused.Base = t.Focused.Base.BorderForeground(lipgloss.Color(ColorBorder))
	t.Focused.SelectSelector = t.Focused.SelectSelector.Foreground(accent)
	t.Focused.TextInput.Prompt = t.Focused.TextInput.Prompt.Foreground(lipgloss.Color(ColorSecondary))
	t.Focused.TextInput.Placeholder = t.Focused.TextInput.Placeholder.Foreground(lipgloss.Color(ColorMuted))
	t.Focused.TextInput.Cursor = t.Focused.TextInput.Cursor.Foreground(accent)

	return t
}
