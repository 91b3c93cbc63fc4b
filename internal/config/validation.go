package config

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Placeholder patterns that must not appear in configuration values.
// A token copied from a template file into the config would be substituted
// into the generated project verbatim.
var dynamicTokenPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$\{[^}]+\}`),   // ${VAR}
	regexp.MustCompile(`\{\{[^}]+\}\}`), // {{VAR}}
}

// newValidator returns a validator that reports yaml field names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the configuration for correctness.
func Validate(cfg *Config) error {
	errs := append(validateStruct(cfg), validateDynamicTokens(cfg)...)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// validateStruct applies the validate struct tags.
func validateStruct(cfg *Config) ValidationErrors {
	err := newValidator().Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ValidationErrors{{Field: "config", Message: err.Error(), Err: ErrInvalidConfig}}
	}

	errs := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, FieldError{
			Field:   fieldPath(fe.Namespace()),
			Message: ruleMessage(fe),
			Value:   fe.Value(),
			Err:     ErrInvalidConfig,
		})
	}
	return errs
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	_, rest, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}
	return rest
}

// ruleMessage renders a validator failure as a short sentence.
func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required field is empty"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "numeric":
		return "must contain only digits"
	case "url":
		return "must be an absolute URL"
	case "hostname_rfc1123":
		return "must be a region name such as us-east-1"
	case "excludesall":
		return "must be a single name without path separators"
	case "gt", "gte", "lt", "lte":
		return fmt.Sprintf("must satisfy %s %s", fe.Tag(), fe.Param())
	default:
		return fmt.Sprintf("failed %q rule", fe.Tag())
	}
}

// validateDynamicTokens checks string fields for unexpanded placeholder tokens.
func validateDynamicTokens(cfg *Config) ValidationErrors {
	fields := []struct{ path, value string }{
		{"templates.root", cfg.Templates.Root},
		{"defaults.namespace", cfg.Defaults.Namespace},
		{"defaults.account", cfg.Defaults.Account},
		{"defaults.region", cfg.Defaults.Region},
		{"defaults.profile", cfg.Defaults.Profile},
	}

	var errs ValidationErrors
	for _, f := range fields {
		if fe, ok := checkStringField(f.path, f.value); ok {
			errs = append(errs, fe)
		}
	}
	return errs
}

// checkStringField reports the first placeholder token found in value.
func checkStringField(field, value string) (FieldError, bool) {
	for _, pattern := range dynamicTokenPatterns {
		if match := pattern.FindString(value); match != "" {
			return FieldError{
				Field:   field,
				Message: "contains unexpanded placeholder token " + match,
				Value:   value,
				Err:     ErrDynamicToken,
			}, true
		}
	}
	return FieldError{}, false
}
