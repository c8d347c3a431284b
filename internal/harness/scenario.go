package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/schoolbot/internal/catalog"
)

// Seeds
const (
	SeedDefaults = "defaults"
	SeedEmpty    = "empty"
)

// Scenario is one scripted conversation.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Admin is the administrator id. Zero means every caller is admin.
	Admin int64 `yaml:"admin,omitempty"`

	// Today fixes the date used by "homework for tomorrow", YYYY-MM-DD.
	// Defaults to 2024-01-01, a Monday.
	Today string `yaml:"today,omitempty"`

	// Seed is the starting catalog: "defaults" (the default) or "empty".
	Seed string `yaml:"seed,omitempty"`

	// FailSaves makes every save fail, to exercise the not-saved warning.
	FailSaves bool `yaml:"fail_saves,omitempty"`

	Steps []Step `yaml:"steps"`

	// Assertions check the catalog after the last step.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one inbound event. Exactly one of Command, Press and Say is set.
type Step struct {
	// As is the caller id. Defaults to the scenario admin, or 1.
	As int64 `yaml:"as,omitempty"`

	// Name is the caller's first name.
	Name string `yaml:"name,omitempty"`

	Command string `yaml:"command,omitempty"`
	Press   string `yaml:"press,omitempty"`
	Say     string `yaml:"say,omitempty"`

	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect checks the response to one step. Unset fields are not checked.
type Expect struct {
	// Notice is the exact toast or plain reply notice.
	Notice *string `yaml:"notice,omitempty"`

	// Error is the code of the rejection, or "none".
	Error string `yaml:"error,omitempty"`

	// Messages is the number of messages delivered.
	Messages *int `yaml:"messages,omitempty"`

	// Directive of the last message: "send" or "edit".
	Directive string `yaml:"directive,omitempty"`

	// Contains lists substrings of the last message text.
	Contains []string `yaml:"contains,omitempty"`

	// Payloads lists payloads that the last message's buttons must offer.
	Payloads []string `yaml:"payloads,omitempty"`

	// Phase is the caller's schedule editor phase afterwards.
	Phase string `yaml:"phase,omitempty"`

	// Pending is the caller's pending input mode afterwards.
	Pending string `yaml:"pending,omitempty"`
}

// Assertion checks the final catalog.
type Assertion struct {
	// Type is one of the Assert constants.
	Type string `yaml:"type"`

	Day      string   `yaml:"day,omitempty"`
	Key      string   `yaml:"key,omitempty"`
	Keys     []string `yaml:"keys,omitempty"`
	Name     *string  `yaml:"name,omitempty"`
	Homework *string  `yaml:"homework,omitempty"`
	Count    int      `yaml:"count,omitempty"`
}

// Assertion types.
const (
	AssertLessons       = "lessons"        // Day holds exactly Keys
	AssertDayAbsent     = "day_absent"     // Day is not in the schedule
	AssertSubject       = "subject"        // Key exists, optionally with Name / Homework
	AssertSubjectAbsent = "subject_absent" // Key does not exist
	AssertSubjectCount  = "subject_count"  // Count subjects exist
	AssertSaves         = "saves"          // Count successful saves
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
	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
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

// LoadDir loads every *.yaml and *.yml file in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenario files found in %s", dir)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	switch s.Seed {
	case "", SeedDefaults, SeedEmpty:
	default:
		return fmt.Errorf("seed must be %q or %q, got %q", SeedDefaults, SeedEmpty, s.Seed)
	}

	if s.Today != "" {
		if _, err := time.Parse(time.DateOnly, s.Today); err != nil {
			return fmt.Errorf("today: %w", err)
		}
	}

	for i, step := range s.Steps {
		set := 0
		for _, v := range []string{step.Command, step.Press, step.Say} {
			if v != "" {
				set++
			}
		}
		if set != 1 {
			return fmt.Errorf("steps[%d]: exactly one of command, press, say is required", i)
		}
		if step.Expect != nil && step.Expect.Phase != "" {
			switch step.Expect.Phase {
			case "idle", "day_selected", "lesson_selected":
			default:
				return fmt.Errorf("steps[%d].expect: unknown phase %q", i, step.Expect.Phase)
			}
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion) error {
	needDay := func() error {
		if _, ok := catalog.ParseDay(a.Day); !ok {
			return fmt.Errorf("assertions[%d]: valid day is required for %s", index, a.Type)
		}
		return nil
	}
	switch a.Type {
	case AssertLessons, AssertDayAbsent:
		return needDay()
	case AssertSubject, AssertSubjectAbsent:
		if a.Key == "" {
			return fmt.Errorf("assertions[%d]: key is required for %s", index, a.Type)
		}
	case AssertSubjectCount, AssertSaves:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
