package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a tally conformance scenario.
// A scenario seeds an engine, runs a list of steps with optional expected
// outcomes, and asserts on the final counts and structure.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are named after it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// CatchAll overrides the catch-all label. Default: "Other".
	CatchAll string `yaml:"catch_all,omitempty"`

	// Setup is the initial engine state. Counts always start at 0.
	Setup Setup `yaml:"setup"`

	// Steps run in order. A failing step is recorded and the run continues.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final engine state.
	Assertions []Assertion `yaml:"assertions"`

	// SessionID pins the journal session id.
	// If empty, defaults to "test-session-default".
	SessionID string `yaml:"session_id,omitempty"`
}

// Setup seeds the engine before the first step.
type Setup struct {
	Categories []string `yaml:"categories"`
	Speakers   []string `yaml:"speakers"`
}

// Step is one engine operation.
type Step struct {
	// Op is one of the Op* constants.
	Op string `yaml:"op"`

	// Speaker names the speaker for increment, decrement, resolve_catch_all,
	// add_speaker and remove_speaker.
	Speaker string `yaml:"speaker,omitempty"`

	// Category names the category for increment, decrement, add_category
	// and remove_category.
	Category string `yaml:"category,omitempty"`

	// Label is the custom word typed for resolve_catch_all. An empty label
	// cancels the prompt.
	Label string `yaml:"label,omitempty"`

	// Expect validates the step outcome. If nil, the step must succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies the expected outcome of a step.
type Expect struct {
	// Count is the expected count returned by increment, decrement or
	// resolve_catch_all.
	Count *int `yaml:"count,omitempty"`

	// Category is the expected category returned by resolve_catch_all.
	Category string `yaml:"category,omitempty"`

	// Error is the expected error kind (e.g. "UnknownSpeaker").
	// Empty means the step must succeed.
	Error string `yaml:"error,omitempty"`
}

// Assertion validates the final engine state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "count": Count(speaker, category) equals value
	// - "total": Total(speaker) equals value
	// - "category_total": CategoryTotal(category) equals value
	// - "grand_total": sum of all counts equals value
	// - "categories": category list equals values, in order
	// - "speakers": speaker list equals values, in order
	Type string `yaml:"type"`

	Speaker  string `yaml:"speaker,omitempty"`
	Category string `yaml:"category,omitempty"`

	// Value is the expected number (count, total, category_total, grand_total).
	Value int `yaml:"value,omitempty"`

	// Values is the expected list (categories, speakers).
	Values []string `yaml:"values,omitempty"`
}

// Step ops. Names match the session journal ops, plus reload.
const (
	OpIncrement       = "increment"
	OpDecrement       = "decrement"
	OpResolveCatchAll = "resolve_catch_all"
	OpAddCategory     = "add_category"
	OpRemoveCategory  = "remove_category"
	OpAddSpeaker      = "add_speaker"
	OpRemoveSpeaker   = "remove_speaker"
	OpReset           = "reset"

	// OpReload saves the engine to the store with default persistence
	// (structure only) and replaces it with a fresh engine loaded back
	// from the store.
	OpReload = "reload"
)

// Assertion type constants.
const (
	AssertCount         = "count"
	AssertTotal         = "total"
	AssertCategoryTotal = "category_total"
	AssertGrandTotal    = "grand_total"
	AssertCategories    = "categories"
	AssertSpeakers      = "speakers"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
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

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 && len(s.Assertions) == 0 {
		return fmt.Errorf("steps or assertions are required")
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

// validateStep checks the fields each op needs. Empty names are allowed
// where the engine itself rejects them, so scenarios can assert on
// InvalidLabel.
func validateStep(index int, s *Step) error {
	switch s.Op {
	case OpIncrement, OpDecrement:
		if s.Speaker == "" || s.Category == "" {
			return fmt.Errorf("steps[%d]: speaker and category are required for %s", index, s.Op)
		}
	case OpResolveCatchAll:
		if s.Speaker == "" {
			return fmt.Errorf("steps[%d]: speaker is required for %s", index, s.Op)
		}
	case OpRemoveCategory:
		if s.Category == "" {
			return fmt.Errorf("steps[%d]: category is required for %s", index, s.Op)
		}
	case OpRemoveSpeaker:
		if s.Speaker == "" {
			return fmt.Errorf("steps[%d]: speaker is required for %s", index, s.Op)
		}
	case OpAddCategory, OpAddSpeaker, OpReset, OpReload:
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, s.Op)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertCount:
		if a.Speaker == "" || a.Category == "" {
			return fmt.Errorf("assertions[%d]: speaker and category are required for count", index)
		}
	case AssertTotal:
		if a.Speaker == "" {
			return fmt.Errorf("assertions[%d]: speaker is required for total", index)
		}
	case AssertCategoryTotal:
		if a.Category == "" {
			return fmt.Errorf("assertions[%d]: category is required for category_total", index)
		}
	case AssertGrandTotal, AssertCategories, AssertSpeakers:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	if a.Value < 0 {
		return fmt.Errorf("assertions[%d]: value must be non-negative", index)
	}

	return nil
}
