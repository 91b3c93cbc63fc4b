// Package config loads the cdkforge YAML configuration, applies defaults and
// environment overrides, and validates the result.
package config

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for configuration operations.
var (
	// ErrInvalidConfig is matched by every validation failure.
	ErrInvalidConfig = errors.New("config: invalid configuration")

	// ErrInvalidYAML indicates the file is not valid YAML.
	ErrInvalidYAML = errors.New("config: invalid YAML syntax")

	// ErrDynamicToken indicates a template token such as {{SERVICE_NAME}}
	// or an unexpanded ${VAR} in a configuration value.
	ErrDynamicToken = errors.New("config: unexpanded placeholder token detected")
)

// FieldError is one failed rule, located by its dotted YAML path.
type FieldError struct {
	Field   string // e.g. "tools.vcs"
	Message string
	Value   any
	Err     error // ErrInvalidConfig or ErrDynamicToken
}

func (e FieldError) Error() string {
	if e.Value == nil || e.Value == "" {
		return e.Field + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s (got %v)", e.Field, e.Message, e.Value)
}

func (e FieldError) Unwrap() error { return e.Err }

// ValidationErrors lists every field that failed validation. It matches
// ErrInvalidConfig and the sentinel of each field.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	switch len(v) {
	case 0:
		return "config: no validation errors"
	case 1:
		return "config: " + v[0].Error()
	}
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fe.Error()
	}
	return fmt.Sprintf("config: %d invalid fields: %s", len(v), strings.Join(msgs, "; "))
}

func (v ValidationErrors) Unwrap() []error {
	errs := make([]error, 0, len(v)+1)
	errs = append(errs, ErrInvalidConfig)
	for _, fe := range v {
		errs = append(errs, fe)
	}
	return errs
}

// Fields returns the paths of the failed fields in order.
func (v ValidationErrors) Fields() []string {
	fields := make([]string, len(v))
	for i, fe := range v {
		fields[i] = fe.Field
	}
	return fields
}
