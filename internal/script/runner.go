package script

import (
	"fmt"

	"github.com/Shopify/go-lua"
)

// DefaultStepBudget bounds the steps one Resume may execute.
const DefaultStepBudget = 10000

// Line is one line of narrative emitted by a resumption.
type Line struct {
	Text string
	Tags []string
}

// Choice is one available option of a pending choice set.
type Choice struct {
	Index int
	Text  string
}

// Prompt is the outcome of a resumption: either more choices or the end.
type Prompt struct {
	Done    bool
	Choices []Choice
}

type frame struct {
	steps []Step
	pc    int
}

// Runner executes a Story. It is not safe for concurrent use.
type Runner struct {
	story *Story
	env   *Env

	stack    []frame
	mark     []frame // position before the step being run
	carry    []Line  // lines emitted by a failed Resume, delivered next time
	started  bool
	finished bool
	pending  []*ChoiceDef
	picked   map[*ChoiceDef]bool
	visits   map[string]int

	// StepBudget caps the steps executed by a single Resume.
	StepBudget int
}

// NewRunner prepares a runner for s. Call Start before Resume.
func NewRunner(s *Story) *Runner {
	return &Runner{
		story:      s,
		env:        NewEnv(),
		picked:     make(map[*ChoiceDef]bool),
		visits:     make(map[string]int),
		StepBudget: DefaultStepBudget,
	}
}

// Story returns the script being run.
func (r *Runner) Story() *Story { return r.story }

// Start declares the story variables and positions the flow at the start knot.
func (r *Runner) Start() error {
	if r.started {
		return nil
	}

	r.env.SetFunc("visits", func(l *lua.State) int {
		name := lua.CheckString(l, 1)
		l.PushInteger(r.visits[name])
		return 1
	})

	for _, v := range r.story.Vars {
		if err := r.env.Exec(v.Name + " = " + v.Expr); err != nil {
			return fmt.Errorf("script: declare %s: %w", v.Name, err)
		}
	}

	if err := r.divert(r.story.Start); err != nil {
		return err
	}
	r.started = true
	return nil
}

// Finished reports whether the flow has reached its end.
func (r *Runner) Finished() bool { return r.finished }

// Var returns the current value of a story variable.
func (r *Runner) Var(name string) any { return r.env.Get(name) }

// Visits returns how many times a knot has been entered.
func (r *Runner) Visits(knot string) int { return r.visits[knot] }

// Resume runs the story, appending emitted lines to buf, until it reaches a
// choice set with at least one available option or the end of the flow.
//
// A failing step leaves the flow positioned on that step and buf untouched;
// lines emitted before the failure are delivered by the next Resume.
func (r *Runner) Resume(buf *[]Line) (Prompt, error) {
	switch {
	case !r.started:
		return Prompt{}, ErrNotStarted
	case r.finished:
		return Prompt{}, ErrFinished
	case r.pending != nil:
		return Prompt{}, ErrAwaitingChoice
	}

	out := r.carry
	r.carry = nil
	p, err := r.run(&out)
	if err != nil {
		r.carry = out
		r.stack = append(r.stack[:0], r.mark...)
		return Prompt{}, err
	}
	*buf = append(*buf, out...)
	return p, nil
}

func (r *Runner) run(buf *[]Line) (Prompt, error) {
	for budget := r.StepBudget; ; budget-- {
		r.mark = append(r.mark[:0], r.stack...)
		if budget <= 0 {
			return Prompt{}, ErrRunaway
		}

		step, ok := r.next()
		if !ok {
			r.finish()
			return Prompt{Done: true}, nil
		}

		switch step.Kind {
		case StepLine:
			text, err := r.env.Interpolate(step.Text)
			if err != nil {
				return Prompt{}, err
			}
			*buf = append(*buf, Line{Text: text + "\n", Tags: step.Tags})

		case StepCode:
			if err := r.env.Exec(step.Code); err != nil {
				return Prompt{}, err
			}

		case StepDivert:
			if step.Target == TargetEnd || step.Target == TargetDone {
				r.finish()
				return Prompt{Done: true}, nil
			}
			if err := r.divert(step.Target); err != nil {
				return Prompt{}, err
			}

		case StepEnd:
			r.finish()
			return Prompt{Done: true}, nil

		case StepChoices:
			avail, err := r.available(step.Choices)
			if err != nil {
				return Prompt{}, err
			}
			if len(avail) == 0 {
				continue
			}
			r.pending = avail
			choices := make([]Choice, len(avail))
			for i, c := range avail {
				text, err := r.env.Interpolate(c.Text)
				if err != nil {
					r.pending = nil
					return Prompt{}, err
				}
				choices[i] = Choice{Index: i, Text: text}
			}
			return Prompt{Choices: choices}, nil

		default:
			return Prompt{}, fmt.Errorf("script: unknown step kind %d", step.Kind)
		}
	}
}

// MakeChoice picks option i of the pending choice set. The chosen branch
// runs on the next Resume.
func (r *Runner) MakeChoice(i int) error {
	if r.pending == nil {
		return ErrNoChoicePending
	}
	if i < 0 || i >= len(r.pending) {
		return ErrInvalidChoice
	}

	c := r.pending[i]
	if !c.Sticky {
		r.picked[c] = true
	}

	steps := make([]Step, 0, len(c.Body)+2)
	if c.Echo != "" {
		steps = append(steps, Step{Kind: StepLine, Text: c.Echo, Tags: c.Tags})
	}
	steps = append(steps, c.Body...)
	if c.Target != "" {
		steps = append(steps, Step{Kind: StepDivert, Target: c.Target})
	}

	r.stack = append(r.stack, frame{steps: steps})
	r.pending = nil
	return nil
}

// next pops exhausted frames and returns the following step.
func (r *Runner) next() (Step, bool) {
	for len(r.stack) > 0 {
		top := &r.stack[len(r.stack)-1]
		if top.pc < len(top.steps) {
			step := top.steps[top.pc]
			top.pc++
			return step, true
		}
		r.stack = r.stack[:len(r.stack)-1]
	}
	return Step{}, false
}

func (r *Runner) divert(target string) error {
	knot, ok := r.story.Knots[target]
	if !ok {
		return fmt.Errorf("script: unknown knot %q", target)
	}
	r.stack = append(r.stack[:0], frame{steps: knot.Steps})
	r.visits[target]++
	return nil
}

func (r *Runner) available(defs []*ChoiceDef) ([]*ChoiceDef, error) {
	var out []*ChoiceDef
	for _, c := range defs {
		if r.picked[c] {
			continue
		}
		if c.Cond != "" {
			ok, err := r.env.Truthy(c.Cond)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *Runner) finish() {
	r.finished = true
	r.stack = nil
}
