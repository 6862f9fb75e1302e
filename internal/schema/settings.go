package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var ErrSettingsInvalid = errors.New("schema: settings invalid")

// DefaultSettingsSchema constrains the well-known presentation overrides and
// leaves every other key open.
const DefaultSettingsSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "spacing": {
      "type": "object",
      "properties": {
        "top": {"enum": ["none", "sm", "md", "lg", "xl"]},
        "bottom": {"enum": ["none", "sm", "md", "lg", "xl"]}
      }
    },
    "visibility": {
      "type": "object",
      "properties": {
        "desktop": {"type": "boolean"},
        "tablet": {"type": "boolean"},
        "mobile": {"type": "boolean"}
      }
    },
    "css_class": {"type": "string", "maxLength": 200},
    "anchor": {"type": "string", "pattern": "^[a-z0-9-]*$"},
    "background_color": {"type": "string"},
    "full_width": {"type": "boolean"}
  },
  "additionalProperties": true
}`

// SettingsIssue is one schema violation.
type SettingsIssue struct {
	Location string
	Message  string
}

// SettingsError lists every violation found in a settings bag.
type SettingsError struct {
	Issues []SettingsIssue
}

func (e *SettingsError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := issue.Location
		if location == "" {
			location = "#"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return "settings: " + strings.Join(parts, "; ")
}

func (e *SettingsError) Unwrap() error { return ErrSettingsInvalid }

// SettingsValidator checks block settings against a compiled JSON schema.
type SettingsValidator struct {
	schema *jsonschema.Schema
}

// NewSettingsValidator compiles raw as a draft 2020-12 schema.
func NewSettingsValidator(raw []byte) (*SettingsValidator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("settings.json", bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("schema: settings schema: %w", err)
	}
	compiled, err := compiler.Compile("settings.json")
	if err != nil {
		return nil, fmt.Errorf("schema: settings schema: %w", err)
	}
	return &SettingsValidator{schema: compiled}, nil
}

var (
	defaultValidatorOnce sync.Once
	defaultValidator     *SettingsValidator
)

// DefaultSettingsValidator returns the validator for DefaultSettingsSchema.
func DefaultSettingsValidator() *SettingsValidator {
	defaultValidatorOnce.Do(func() {
		validator, err := NewSettingsValidator([]byte(DefaultSettingsSchema))
		if err != nil {
			panic(err)
		}
		defaultValidator = validator
	})
	return defaultValidator
}

// Validate accepts nil or empty settings.
func (v *SettingsValidator) Validate(settings map[string]any) error {
	if v == nil || len(settings) == 0 {
		return nil
	}
	// jsonschema expects decoded JSON values (float64, []any, map[string]any).
	encoded, err := json.Marshal(settings)
	if err != nil {
		return &SettingsError{Issues: []SettingsIssue{{Message: err.Error()}}}
	}
	var doc any
	if err := json.Unmarshal(encoded, &doc); err != nil {
		return &SettingsError{Issues: []SettingsIssue{{Message: err.Error()}}}
	}
	if err := v.schema.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return &SettingsError{Issues: collectIssues(verr)}
		}
		return &SettingsError{Issues: []SettingsIssue{{Message: err.Error()}}}
	}
	return nil
}

func collectIssues(root *jsonschema.ValidationError) []SettingsIssue {
	var issues []SettingsIssue
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, SettingsIssue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(root)
	return issues
}
