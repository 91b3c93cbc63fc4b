// Package wizard prompts for missing project answers with huh forms.
package wizard

import "errors"

// Sentinel errors for the wizard.
var (
	// ErrCancelled indicates the user aborted the wizard.
	ErrCancelled = errors.New("wizard cancelled by user")

	// ErrNoQuestions indicates there is nothing to ask.
	ErrNoQuestions = errors.New("no questions provided")
)

// Brand colours used by the wizard theme.
const (
	ColorPrimary   = "#FF9900"
	ColorSecondary = "#7C3AED"
	ColorSuccess   = "#10B981"
	ColorError     = "#EF4444"
	ColorMuted     = "#6B7280"
	ColorBorder    = "#4B5563"
)

// Question identifiers. They double as Result keys.
const (
	IDServiceName = "service_name"
	IDLanguage    = "language"
	IDTemplate    = "template"
	IDNamespace   = "project_namespace"
	IDAccount     = "aws_dev_account"
	IDRegion      = "aws_dev_region"
	IDProfile     = "aws_dev_profile"
)

// Result holds the answers collected by the wizard. Questions that were not
// asked leave their field empty.
type Result struct {
	ServiceName      string
	Language         string
	Template         string
	ProjectNamespace string
	AWSDevAccount    string
	AWSDevRegion     string
	AWSDevProfile    string
}

// QuestionType represents the type of wizard question.
type QuestionType int

const (
	// QuestionTypeSelect is a single-choice selection question.
	QuestionTypeSelect QuestionType = iota
	// QuestionTypeInput is a text input question.
	QuestionTypeInput
)

// Question defines a single wizard question.
type Question struct {
	ID          string
	Type        QuestionType
	Title       string
	Description string
	Options     []Option // Select questions only.

	// OptionsFunc computes select options from earlier answers and wins
	// over Options. A select with a single option is answered without
	// asking; one with none is skipped.
	OptionsFunc func(*Result) []Option
	Default     string
	Required    bool

	// Validate checks a trimmed, defaulted input value. Optional.
	Validate func(string) error

	// Suggestions are offered for completion on input questions. Any other
	// value may still be typed.
	Suggestions []string

	// DefaultFunc computes the default from earlier answers. It is
	// evaluated when the question is reached and wins over Default when it
	// returns a non-empty value.
	DefaultFunc func(*Result) string
}

// Option represents a selectable option.
type Option struct {
	Label string
	Value string
	Desc  string
}
