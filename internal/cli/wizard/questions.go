package wizard

import (
	"github.com/cdkforge/cdkforge/internal/scaffold"
)

// Known holds answers already supplied by flags or configuration.
// A non-empty field suppresses its question.
type Known struct {
	ServiceName      string
	Language         string
	Template         string
	ProjectNamespace string
	AWSDevAccount    string
	AWSDevRegion     string
	AWSDevProfile    string
}

// Suggestions are defaults shown for questions that are asked.
type Suggestions struct {
	Language string
	Template string
	Region   string
	Profile  string

	// Templates lists the available templates as language to names.
	// Empty disables the language and template questions.
	Templates map[string][]string

	// Regions are offered as completions for the region answer.
	Regions []string

	// ValidateAccount checks an account answer. Optional.
	ValidateAccount func(string) error
}

// Questions returns the questions for every unanswered value, in order:
// service name, language, template, namespace, account, region, profile.
func Questions(known Known, s Suggestions) []Question {
	var qs []Question

	if known.ServiceName == "" {
		qs = append(qs, Question{
			ID:          IDServiceName,
			Type:        QuestionTypeInput,
			Title:       "Service name",
			Description: "Name of the directory and project to create.",
			Required:    true,
			Validate:    scaffold.ValidateServiceName,
		})
	}

	// A single language is answered by Run without prompting.
	if known.Language == "" && len(s.Templates) > 0 {
		qs = append(qs, Question{
			ID:          IDLanguage,
			Type:        QuestionTypeSelect,
			Title:       "Language",
			Description: "Language of the generated CDK project.",
			Options:     languageOptions(s.Templates),
			Default:     orDefault(s.Language, scaffold.DefaultLanguage),
		})
	}

	if known.Template == "" && len(s.Templates) > 0 {
		language := known.Language
		if language == "" && len(s.Templates) == 1 {
			language = sortedKeys(s.Templates)[0]
		}
		qs = append(qs, Question{
			ID:          IDTemplate,
			Type:        QuestionTypeSelect,
			Title:       "Template",
			Description: "Project template to copy.",
			Default:     orDefault(s.Template, scaffold.DefaultTemplate),
			OptionsFunc: func(r *Result) []Option {
				if r.Language != "" {
					return templateOptions(s.Templates, r.Language)
				}
				return templateOptions(s.Templates, language)
			},
		})
	}

	if known.ProjectNamespace == "" {
		service := known.ServiceName
		qs = append(qs, Question{
			ID:          IDNamespace,
			Type:        QuestionTypeInput,
			Title:       "Project namespace",
			Description: "Organization namespace for resource names.",
			Default:     defaultNamespace(service),
			DefaultFunc: func(r *Result) string {
				if r.ServiceName != "" {
					return scaffold.DefaultNamespace(r.ServiceName)
				}
				return ""
			},
		})
	}

	if known.AWSDevAccount == "" {
		qs = append(qs, Question{
			ID:          IDAccount,
			Type:        QuestionTypeInput,
			Title:       "AWS dev account ID",
			Description: "12 digit account for the dev stage. Press Enter to skip.",
			Validate: func(v string) error {
				if v == "" || s.ValidateAccount == nil {
					return nil
				}
				return s.ValidateAccount(v)
			},
		})
	}

	if known.AWSDevRegion == "" {
		qs = append(qs, Question{
			ID:          IDRegion,
			Type:        QuestionTypeInput,
			Title:       "AWS dev region",
			Description: "Region for the dev stage.",
			Default:     orDefault(s.Region, scaffold.DefaultRegion),
			Required:    true,
			Suggestions: s.Regions,
		})
	}

	if known.AWSDevProfile == "" {
		qs = append(qs, Question{
			ID:          IDProfile,
			Type:        QuestionTypeInput,
			Title:       "AWS dev profile",
			Description: "Named profile used to deploy the dev stage.",
			Default:     orDefault(s.Profile, scaffold.DefaultProfile),
			Required:    true,
		})
	}

	return qs
}

func defaultNamespace(service string) string {
	if service == "" {
		return ""
	}
	return scaffold.DefaultNamespace(service)
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

// languageOptions lists languages with the default first.
func languageOptions(templates map[string][]string) []Option {
	var opts []Option
	if _, ok := templates[scaffold.DefaultLanguage]; ok {
		opts = append(opts, Option{Label: scaffold.DefaultLanguage, Value: scaffold.DefaultLanguage})
	}
	for _, lang := range sortedKeys(templates) {
		if lang == scaffold.DefaultLanguage {
			continue
		}
		opts = append(opts, Option{Label: lang, Value: lang})
	}
	return opts
}

// templateOptions lists the templates of language, or of the default
// language when language is empty, with the default template first.
func templateOptions(templates map[string][]string, language string) []Option {
	if language == "" {
		language = scaffold.DefaultLanguage
	}
	names := templates[language]

	var opts []Option
	for _, name := range names {
		if name == scaffold.DefaultTemplate {
			opts = append(opts, Option{Label: name, Value: name})
		}
	}
	for _, name := range names {
		if name != scaffold.DefaultTemplate {
			opts = append(opts, Option{Label: name, Value: name})
		}
	}
	return opts
}
