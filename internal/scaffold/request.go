package scaffold

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/cdkforge/cdkforge/internal/template"
	"github.com/cdkforge/cdkforge/internal/toolchain"
)

// Request defaults.
const (
	DefaultLanguage = "typescript"
	DefaultTemplate = "default"
	DefaultRegion   = "us-east-1"
	DefaultProfile  = "default"
)

// Answers holds the values substituted into the generated project.
type Answers struct {
	ServiceName      string
	ProjectNamespace string
	AWSDevAccount    string
	AWSDevRegion     string
	AWSDevProfile    string
}

// DefaultAnswers returns the built-in answers for serviceName.
// The account has no default.
func DefaultAnswers(serviceName string) Answers {
	return Answers{
		ServiceName:      serviceName,
		ProjectNamespace: DefaultNamespace(serviceName),
		AWSDevRegion:     DefaultRegion,
		AWSDevProfile:    DefaultProfile,
	}
}

// DefaultNamespace returns the namespace suggested for serviceName.
func DefaultNamespace(serviceName string) string {
	return serviceName + "-organization"
}

// normalized returns a copy with every value in Unicode NFC form.
func (a Answers) normalized() Answers {
	return Answers{
		ServiceName:      norm.NFC.String(a.ServiceName),
		ProjectNamespace: norm.NFC.String(a.ProjectNamespace),
		AWSDevAccount:    norm.NFC.String(a.AWSDevAccount),
		AWSDevRegion:     norm.NFC.String(a.AWSDevRegion),
		AWSDevProfile:    norm.NFC.String(a.AWSDevProfile),
	}
}

// Request is the input to Scaffold. It is built once per invocation.
type Request struct {
	ServiceName string // Target directory name and project identity.
	Language    string // Template language directory, e.g. "typescript".
	Template    string // Template name under the language directory.
	Answers     Answers

	WorkDir       string // Directory the target is created in.
	TemplatesRoot string // Root holding <language>/<template> trees.

	SkipGit        bool
	SkipInstall    bool
	PackageManager string // Defaults to npm.
	VCS            string // Defaults to git.
}

// Normalized returns a copy of r with defaults applied and all user supplied
// text in NFC form. An empty Answers.ServiceName takes the request's.
func (r Request) Normalized() Request {
	r.ServiceName = norm.NFC.String(strings.TrimSpace(r.ServiceName))
	if r.Language == "" {
		r.Language = DefaultLanguage
	}
	if r.Template == "" {
		r.Template = DefaultTemplate
	}
	if r.PackageManager == "" {
		r.PackageManager = toolchain.DefaultPackageManager
	}
	if r.VCS == "" {
		r.VCS = toolchain.DefaultVCS
	}
	if r.Answers.ServiceName == "" {
		r.Answers.ServiceName = r.ServiceName
	}
	r.Answers = r.Answers.normalized()
	return r
}

// Validate checks that the request names a single safe directory and a
// template location.
func (r Request) Validate() error {
	if err := ValidateServiceName(r.ServiceName); err != nil {
		return err
	}
	if err := validateSegment("language", r.Language); err != nil {
		return err
	}
	if err := validateSegment("template", r.Template); err != nil {
		return err
	}
	if strings.TrimSpace(r.TemplatesRoot) == "" {
		return fmt.Errorf("%w: templates root is required", ErrInvalidRequest)
	}
	return nil
}

// TemplateDir returns <TemplatesRoot>/<Language>/<Template>.
func (r Request) TemplateDir() string {
	return template.Dir(r.TemplatesRoot, r.Language, r.Template)
}

// TargetDir returns <WorkDir>/<ServiceName>.
func (r Request) TargetDir() string {
	return filepath.Join(r.WorkDir, r.ServiceName)
}

// ValidateServiceName checks that name can be used as the target directory.
func ValidateServiceName(name string) error {
	return validateSegment("service name", name)
}

// validateSegment rejects values that are not a single path element.
func validateSegment(field, value string) error {
	switch {
	case strings.TrimSpace(value) == "":
		return fmt.Errorf("%w: %s is required", ErrInvalidRequest, field)
	case value == "." || value == "..":
		return fmt.Errorf("%w: %s %q is not a valid name", ErrInvalidRequest, field, value)
	case strings.ContainsAny(value, `/\`) || strings.ContainsRune(value, filepath.Separator):
		return fmt.Errorf("%w: %s %q must not contain path separators", ErrInvalidRequest, field, value)
	case strings.ContainsRune(value, 0):
		return fmt.Errorf("%w: %s contains a NUL byte", ErrInvalidRequest, field)
	}
	return nil
}
