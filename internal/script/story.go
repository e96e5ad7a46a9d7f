// Package script implements the narrative interpreter the story sequencer
// drives: a compiled branching script of knots, lines, choices and diverts,
// resumed one chunk at a time.
//
// Script text formats live in internal/formats and compile to *Story.
package script

import (
	"fmt"
	"sort"
)

// Special divert targets that end the flow.
const (
	TargetEnd  = "END"
	TargetDone = "DONE"
)

// RootKnot names the content that precedes the first knot in a script.
const RootKnot = "_root"

// StepKind identifies what a Step does when executed.
type StepKind int

const (
	StepLine    StepKind = iota // Emit a line of text
	StepCode                    // Run a Lua statement
	StepDivert                  // Jump to another knot
	StepEnd                     // Stop the flow
	StepChoices                 // Offer a choice set
)

// String returns a human-readable name for the step kind.
func (k StepKind) String() string {
	switch k {
	case StepLine:
		return "line"
	case StepCode:
		return "code"
	case StepDivert:
		return "divert"
	case StepEnd:
		return "end"
	case StepChoices:
		return "choices"
	default:
		return "unknown"
	}
}

// Step is one instruction of a knot.
type Step struct {
	Kind    StepKind
	Text    string       // StepLine: text, may contain {expr} interpolations
	Tags    []string     // StepLine: stage-direction tags
	Code    string       // StepCode: Lua statement
	Target  string       // StepDivert: knot name, END or DONE
	Choices []*ChoiceDef // StepChoices: options in display order
}

// ChoiceDef describes one option of a choice set.
type ChoiceDef struct {
	Text   string   // Shown in the choice menu
	Echo   string   // Emitted as a line once picked; empty emits nothing
	Tags   []string // Tags attached to the echoed line
	Cond   string   // Lua condition; empty means always available
	Sticky bool     // Sticky choices stay available after being picked
	Body   []Step   // Steps run after the echo
	Target string   // Divert after the body; empty continues after the set
}

// Knot is a named section of the story.
type Knot struct {
	Name  string
	Steps []Step
}

// Var is a global story variable with its initial value as a Lua expression.
type Var struct {
	Name string
	Expr string
}

// Story is a compiled script ready to be run.
type Story struct {
	ID    string
	Title string
	Start string
	Vars  []Var
	Tags  []string // Global tags from the script header
	Knots map[string]*Knot
}

// NewStory creates an empty story with the given ID.
func NewStory(id string) *Story {
	return &Story{
		ID:    id,
		Knots: make(map[string]*Knot),
	}
}

// AddKnot appends a knot, failing on duplicates.
func (s *Story) AddKnot(k *Knot) error {
	if _, exists := s.Knots[k.Name]; exists {
		return fmt.Errorf("script: duplicate knot %q", k.Name)
	}
	s.Knots[k.Name] = k
	return nil
}

// KnotNames returns all knot names, sorted.
func (s *Story) KnotNames() []string {
	names := make([]string, 0, len(s.Knots))
	for name := range s.Knots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stats summarizes the size of a story.
type Stats struct {
	Knots   int
	Lines   int
	Choices int
}

// Stats counts knots, lines and choices, including those nested in choice bodies.
func (s *Story) Stats() Stats {
	st := Stats{Knots: len(s.Knots)}
	var count func(steps []Step)
	count = func(steps []Step) {
		for _, step := range steps {
			switch step.Kind {
			case StepLine:
				st.Lines++
			case StepChoices:
				st.Choices += len(step.Choices)
				for _, c := range step.Choices {
					count(c.Body)
				}
			}
		}
	}
	for _, k := range s.Knots {
		count(k.Steps)
	}
	return st
}

// Validate checks that the start knot and every divert target exist.
func (s *Story) Validate() error {
	if s.Start == "" {
		return fmt.Errorf("script: story %q has no start knot", s.ID)
	}
	if _, ok := s.Knots[s.Start]; !ok {
		return fmt.Errorf("script: start knot %q not found", s.Start)
	}

	var check func(knot string, steps []Step) error
	check = func(knot string, steps []Step) error {
		for _, step := range steps {
			switch step.Kind {
			case StepDivert:
				if err := s.checkTarget(knot, step.Target); err != nil {
					return err
				}
			case StepChoices:
				if len(step.Choices) == 0 {
					return fmt.Errorf("script: empty choice set in knot %q", knot)
				}
				for _, c := range step.Choices {
					if c.Target != "" {
						if err := s.checkTarget(knot, c.Target); err != nil {
							return err
						}
					}
					if err := check(knot, c.Body); err != nil {
						return err
					}
				}
			}
		}
		return nil
	}

	for _, name := range s.KnotNames() {
		if err := check(name, s.Knots[name].Steps); err != nil {
			return err
		}
	}
	return nil
}

func (s *Story) checkTarget(knot, target string) error {
	if target == TargetEnd || target == TargetDone {
		return nil
	}
	if _, ok := s.Knots[target]; !ok {
		return fmt.Errorf("script: knot %q diverts to unknown knot %q", knot, target)
	}
	return nil
}
