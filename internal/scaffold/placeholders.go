package scaffold

import (
	"path"
	"strings"
)

// Placeholder tokens recognized in generated project files.
const (
	TokenServiceName      = "{{SERVICE_NAME}}"
	TokenProjectNamespace = "{{PROJECT_NAMESPACE}}"
	TokenAWSDevAccount    = "{{AWS_DEV_ACCOUNT}}"
	TokenAWSDevRegion     = "{{AWS_DEV_REGION}}"
	TokenProfile          = "{{PROFILE}}"
)

// Placeholder pairs a literal token with its replacement.
type Placeholder struct {
	Token string
	Value string
}

// PlaceholderSet is an ordered list of token replacements.
type PlaceholderSet []Placeholder

// NewPlaceholderSet maps the answers onto the five recognized tokens.
func NewPlaceholderSet(a Answers) PlaceholderSet {
	return PlaceholderSet{
		{Token: TokenServiceName, Value: a.ServiceName},
		{Token: TokenProjectNamespace, Value: a.ProjectNamespace},
		{Token: TokenAWSDevAccount, Value: a.AWSDevAccount},
		{Token: TokenAWSDevRegion, Value: a.AWSDevRegion},
		{Token: TokenProfile, Value: a.AWSDevProfile},
	}
}

// Apply replaces every occurrence of each token in content, in order, and
// returns the result with the number of replacements made. A token with an
// empty value is left as literal text.
func (s PlaceholderSet) Apply(content string) (string, int) {
	total := 0
	for _, p := range s {
		if p.Value == "" {
			continue
		}
		n := strings.Count(content, p.Token)
		if n == 0 {
			continue
		}
		content = strings.ReplaceAll(content, p.Token, p.Value)
		total += n
	}
	return content, total
}

// Extension returns the source file extension used by a template language.
func Extension(language string) string {
	switch strings.ToLower(language) {
	case "javascript", "js":
		return "js"
	case "python", "py":
		return "py"
	default:
		return "ts"
	}
}

// AllowList returns the slash separated paths, relative to the project root,
// of the files that receive placeholder substitution.
func AllowList(language string) []string {
	ext := Extension(language)
	return []string{
		"package.json",
		path.Join("utils", "constants."+ext),
		path.Join("infra", "config", "index."+ext),
	}
}
