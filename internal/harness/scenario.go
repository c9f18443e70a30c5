package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SubmitStep submits one query to the engine, optionally naming the
// result for later reference by Watch/Ingest/Assertions.
type SubmitStep struct {
	Query   string         `yaml:"query"`
	As      string         `yaml:"as,omitempty"`
	Options map[string]any `yaml:"options,omitempty"`
}

// IngestStep pushes one row into a stream via Engine.Ingest.
type IngestStep struct {
	Stream string         `yaml:"stream"`
	Row    map[string]any `yaml:"row"`
}

// Assertion validates one aspect of the scenario's outcome.
type Assertion struct {
	// Type selects the check: "console_count", "console_field",
	// "flow_state", or "message_contains".
	Type string `yaml:"type"`

	Flow  string `yaml:"flow,omitempty"`  // console_count, console_field, flow_state
	Count int    `yaml:"count,omitempty"` // console_count
	Index int    `yaml:"index,omitempty"` // console_field: which delivered row
	Field string `yaml:"field,omitempty"` // console_field: which column
	Value any    `yaml:"value,omitempty"` // console_field: expected value

	State string `yaml:"state,omitempty"` // flow_state

	Step     string `yaml:"step,omitempty"`     // message_contains: a submit "as" name, or "setup[N]"
	Contains string `yaml:"contains,omitempty"` // message_contains
}

// Scenario assertion type constants.
const (
	AssertConsoleCount    = "console_count"
	AssertConsoleField    = "console_field"
	AssertFlowState       = "flow_state"
	AssertMessageContains = "message_contains"
)

// Scenario is one conformance test: a sequence of engine operations
// plus the assertions its outcome must satisfy.
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Setup       []string      `yaml:"setup,omitempty"`
	Submit      []SubmitStep  `yaml:"submit"`
	Ingest      []IngestStep  `yaml:"ingest,omitempty"`
	Watch       []string      `yaml:"watch,omitempty"`
	Collect     time.Duration `yaml:"collect,omitempty"`
	Assertions  []Assertion   `yaml:"assertions"`
}

// LoadScenario reads and strictly parses a scenario YAML file,
// rejecting unknown fields (catches a typo like "asserions:") the same
// way the teacher's LoadScenario does.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("harness: read scenario: %w", err)
	}
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("harness: parse scenario %s: %w", path, err)
	}
	if err := validate(&s); err != nil {
		return nil, fmt.Errorf("harness: invalid scenario %s: %w", path, err)
	}
	return &s, nil
}

func validate(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Submit) == 0 {
		return fmt.Errorf("submit list must be non-empty")
	}
	for i, step := range s.Submit {
		if step.Query == "" {
			return fmt.Errorf("submit[%d]: query is required", i)
		}
	}
	for i, step := range s.Ingest {
		if step.Stream == "" {
			return fmt.Errorf("ingest[%d]: stream is required", i)
		}
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list must be non-empty")
	}
	for i, a := range s.Assertions {
		switch a.Type {
		case AssertConsoleCount, AssertConsoleField, AssertFlowState:
			if a.Flow == "" {
				return fmt.Errorf("assertions[%d]: flow is required for %s", i, a.Type)
			}
		case AssertMessageContains:
			if a.Step == "" {
				return fmt.Errorf("assertions[%d]: step is required for message_contains", i)
			}
		default:
			return fmt.Errorf("assertions[%d]: unknown assertion type %q", i, a.Type)
		}
	}
	return nil
}
