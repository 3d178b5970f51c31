// Package suite defines the declarative test fixtures: steps, cases and
// suites loaded from YAML files, plus pure filters over them.
package suite

import (
	"context"
	"fmt"
	"time"

	"github.com/rafaesapata/evo-qa/pkg/client"
)

// Category classifies a test case by dashboard area.
type Category string

// Known categories. The zero value means "uncategorized" and matches no filter.
const (
	CategoryAuth      Category = "auth"
	CategoryDashboard Category = "dashboard"
	CategorySecurity  Category = "security"
	CategoryCost      Category = "cost"
	CategoryAWS       Category = "aws"
	CategoryE2E       Category = "e2e"
)

// Priority orders test cases by importance.
type Priority string

// Known priorities.
const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Session is the minimal action surface available to setup/teardown hooks.
type Session interface {
	Act(ctx context.Context, instruction string) client.Outcome
}

// Hook runs before or after a case's steps against the case's live session.
type Hook func(ctx context.Context, s Session) error

// Step is one declarative instruction within a case. Immutable once defined.
type Step struct {
	Name     string            `yaml:"name" json:"name"`
	Action   string            `yaml:"action" json:"action"`
	Expect   string            `yaml:"expect,omitempty" json:"expect,omitempty"`     // case-insensitive substring the response must contain
	Verify   string            `yaml:"verify,omitempty" json:"verify,omitempty"`     // vision oracle question instead of an action
	Schema   map[string]string `yaml:"schema,omitempty" json:"schema,omitempty"`     // expected shape of a JSON response
	Timeout  time.Duration     `yaml:"-" json:"timeout,omitempty"`                   // hard deadline, zero uses the runner default
	Optional bool              `yaml:"optional,omitempty" json:"optional,omitempty"` // failure here does not fail the case
}

// Case is the unit of schedulable work: an ordered sequence of steps with
// optional setup/teardown hooks, run against a dedicated session.
type Case struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Category    Category `yaml:"category" json:"category"`
	Priority    Priority `yaml:"priority" json:"priority"`
	Tags        []string `yaml:"tags,omitempty" json:"tags,omitempty"`
	Steps       []Step   `yaml:"steps" json:"steps"`

	Setup    Hook `yaml:"-" json:"-"`
	Teardown Hook `yaml:"-" json:"-"`
}

// Suite is a named collection of cases loaded from one or more fixture files.
type Suite struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Cases       []Case `json:"cases"`
}

// Validate checks a case for structural problems: missing id, unknown
// category or priority, empty step list, steps without actions.
func (c *Case) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("case %q: id required", c.Name)
	}
	if c.Name == "" {
		return fmt.Errorf("case %s: name required", c.ID)
	}

	switch c.Category {
	case CategoryAuth, CategoryDashboard, CategorySecurity, CategoryCost, CategoryAWS, CategoryE2E:
	default:
		return fmt.Errorf("case %s: unknown category %q", c.ID, c.Category)
	}

	switch c.Priority {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
	default:
		return fmt.Errorf("case %s: unknown priority %q", c.ID, c.Priority)
	}

	if len(c.Steps) == 0 {
		return fmt.Errorf("case %s: at least one step required", c.ID)
	}

	for i, st := range c.Steps {
		if st.Name == "" {
			return fmt.Errorf("case %s: step %d: name required", c.ID, i+1)
		}
		if st.Action == "" && st.Verify == "" {
			return fmt.Errorf("case %s: step %q: action or verify required", c.ID, st.Name)
		}
		for field, typ := range st.Schema {
			if !client.ValidShapeType(typ) {
				return fmt.Errorf("case %s: step %q: schema field %q: unknown type %q", c.ID, st.Name, field, typ)
			}
		}
	}

	return nil
}

// InstructionsHook builds a hook that runs a list of instructions in order,
// stopping at the first failure. The loader uses it to turn declared
// setup/teardown instruction lists into executable hooks.
func InstructionsHook(instructions []string) Hook {
	if len(instructions) == 0 {
		return nil
	}
	return func(ctx context.Context, s Session) error {
		for _, ins := range instructions {
			if out := s.Act(ctx, ins); !out.Success {
				return fmt.Errorf("%s: %s", ins, out.Error)
			}
		}
		return nil
	}
}
