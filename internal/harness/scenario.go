package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a form conformance scenario: specs to compile, an
// entity to instantiate, steps to run and assertions on the outcome.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Specs lists CUE files to compile. Relative paths are resolved
	// against the base path given to LoadScenarioWithBasePath, or the
	// scenario file's directory.
	Specs []string `yaml:"specs"`

	// Entity is the entity to build.
	Entity string `yaml:"entity"`

	// Key is the snapshot key used by persist. Defaults to Name.
	Key string `yaml:"key,omitempty"`

	// Source is merged into the source node before the form opens.
	Source map[string]any `yaml:"source,omitempty"`

	// Form configures the editing session.
	Form FormOptions `yaml:"form"`

	// Steps run in order against the form.
	Steps []Step `yaml:"steps"`

	// Assertions are checked after the last step.
	Assertions []Assertion `yaml:"assertions"`
}

// FormOptions mirrors form.Config.
type FormOptions struct {
	Edit              bool `yaml:"edit"`
	ForceErrorDisplay bool `yaml:"force_error_display"`
}

// Step is one operation on the form.
type Step struct {
	Op    string         `yaml:"op"`
	Path  string         `yaml:"path,omitempty"`
	Value any            `yaml:"value,omitempty"`
	Data  map[string]any `yaml:"data,omitempty"`
	Index int            `yaml:"index,omitempty"`

	// ExpectError, when set, requires the step to fail with an error
	// containing this text. Otherwise the step must succeed.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Step operations.
const (
	OpSet       = "set"
	OpSetSource = "set_source"
	OpClear     = "clear"
	OpWrite     = "write"
	OpText      = "text"
	OpEdit      = "edit"
	OpFocus     = "focus"
	OpBlur      = "blur"
	OpAppend    = "append"
	OpRemove    = "remove"
	OpSave      = "save"
	OpReset     = "reset"
	OpPersist   = "persist"
)

// Assertion checks the state reached after the last step.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Target selects "form" (default) or "source" for flat.
	Target string `yaml:"target,omitempty"`

	// Path names the field or list.
	Path string `yaml:"path,omitempty"`

	// Expect is the expected value: a map for flat, a string for error,
	// visible_error and save_result, a bool for touched and dirty.
	Expect any `yaml:"expect,omitempty"`

	// Failing lists the expected failing paths of a rejected save.
	Failing []string `yaml:"failing,omitempty"`

	// Count is the expected length for list_len and history.
	Count *int `yaml:"count,omitempty"`
}

// Assertion types.
const (
	AssertFlat         = "flat"
	AssertError        = "error"
	AssertVisibleError = "visible_error"
	AssertTouched      = "touched"
	AssertSaveResult   = "save_result"
	AssertDirty        = "dirty"
	AssertListLen      = "list_len"
	AssertHistory      = "history"
)

// LoadScenario reads and parses a scenario YAML file, resolving spec paths
// against the file's directory.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving spec paths relative to basePath.
// Unknown fields are rejected so that typos surface as errors.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i, specPath := range scenario.Specs {
		if !filepath.IsAbs(specPath) && basePath != "" {
			scenario.Specs[i] = filepath.Join(basePath, specPath)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Entity == "" {
		return fmt.Errorf("entity is required")
	}
	if len(s.Specs) == 0 {
		return fmt.Errorf("specs list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for _, specPath := range s.Specs {
		if _, err := os.Stat(specPath); os.IsNotExist(err) {
			return fmt.Errorf("spec file not found: %s", specPath)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, s *Step) error {
	switch s.Op {
	case OpSet, OpSetSource:
		if s.Data == nil {
			return fmt.Errorf("steps[%d]: data is required for %s", index, s.Op)
		}
	case OpWrite, OpFocus, OpBlur, OpRemove:
		if s.Path == "" {
			return fmt.Errorf("steps[%d]: path is required for %s", index, s.Op)
		}
	case OpText:
		if s.Path == "" {
			return fmt.Errorf("steps[%d]: path is required for text", index)
		}
		if _, ok := s.Value.(string); !ok {
			return fmt.Errorf("steps[%d]: value must be a string for text", index)
		}
	case OpAppend:
		if s.Path == "" {
			return fmt.Errorf("steps[%d]: path is required for append", index)
		}
	case OpEdit:
		if _, ok := s.Value.(bool); !ok {
			return fmt.Errorf("steps[%d]: value must be a bool for edit", index)
		}
	case OpClear, OpSave, OpReset, OpPersist:
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, s.Op)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertFlat:
		if _, ok := a.Expect.(map[string]any); !ok {
			return fmt.Errorf("assertions[%d]: expect must be a map for flat", index)
		}
		if a.Target != "" && a.Target != "form" && a.Target != "source" {
			return fmt.Errorf("assertions[%d]: target must be form or source", index)
		}
	case AssertError, AssertVisibleError:
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: path is required for %s", index, a.Type)
		}
		if _, ok := a.Expect.(string); !ok && a.Expect != nil {
			return fmt.Errorf("assertions[%d]: expect must be a string for %s", index, a.Type)
		}
	case AssertTouched:
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: path is required for touched", index)
		}
		if _, ok := a.Expect.(bool); !ok {
			return fmt.Errorf("assertions[%d]: expect must be a bool for touched", index)
		}
	case AssertDirty:
		if _, ok := a.Expect.(bool); !ok {
			return fmt.Errorf("assertions[%d]: expect must be a bool for dirty", index)
		}
	case AssertSaveResult:
		if a.Expect != "accepted" && a.Expect != "rejected" {
			return fmt.Errorf("assertions[%d]: expect must be accepted or rejected", index)
		}
	case AssertListLen:
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: path is required for list_len", index)
		}
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for list_len", index)
		}
	case AssertHistory:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for history", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
