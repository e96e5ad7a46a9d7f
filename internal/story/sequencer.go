// Package story implements the story progression engine: it advances a
// branching script, buffers emitted lines, attributes them to speakers and
// resolves choices on behalf of the input layer.
package story

import (
	"fmt"

	"github.com/vovakirdan/tui-novel/internal/script"
)

// Interpreter is the narrative runtime driven by the Sequencer.
// *script.Runner satisfies it.
type Interpreter interface {
	// Resume appends emitted lines to buf and reports whether the flow
	// ended or a choice is offered.
	Resume(buf *[]script.Line) (script.Prompt, error)

	// MakeChoice picks an option of the pending choice set.
	MakeChoice(i int) error
}

// State is the sequencer state.
type State int

const (
	Continuing     State = iota // Player may advance
	AwaitingChoice              // Player must pick an option
	Ended                       // Script exhausted
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case Continuing:
		return "Continuing"
	case AwaitingChoice:
		return "AwaitingChoice"
	case Ended:
		return "Ended"
	default:
		return "Unknown"
	}
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithStyles sets the speaker directives applied to every parsed line.
func WithStyles(st Styles) Option {
	return func(s *Sequencer) { s.styles = st }
}

// WithObserver registers an observer. Repeated options accumulate.
func WithObserver(o Observer) Option {
	return func(s *Sequencer) { s.observers = append(s.observers, o) }
}

// Sequencer is the story state machine. It is not safe for concurrent use;
// a single frame loop owns it.
type Sequencer struct {
	interp    Interpreter
	styles    Styles
	observers MultiObserver

	state   State
	speaker SpeakerState
	choices []script.Choice

	buf       []script.Line   // lines not yet shown
	offered   []script.Choice // choice set waiting behind buf
	exhausted bool
	started   bool
}

// NewSequencer wraps an interpreter. The sequencer starts in Continuing
// with nothing shown; call Start to pull the first line.
func NewSequencer(interp Interpreter, opts ...Option) *Sequencer {
	s := &Sequencer{interp: interp, state: Continuing}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start performs the initial advance. Later calls do nothing.
func (s *Sequencer) Start() error {
	if s.started {
		return nil
	}
	if err := s.Advance(); err != nil {
		return err
	}
	s.started = true
	return nil
}

// State returns the current state.
func (s *Sequencer) State() State { return s.state }

// Speaker returns the most recently consumed line.
func (s *Sequencer) Speaker() SpeakerState { return s.speaker }

// Choices returns the current choice set. It is empty unless the state
// is AwaitingChoice.
func (s *Sequencer) Choices() []script.Choice {
	return append([]script.Choice(nil), s.choices...)
}

// Pending returns the number of buffered lines not yet shown.
func (s *Sequencer) Pending() int { return len(s.buf) }

// Advance shows the next line, or moves to AwaitingChoice or Ended once the
// buffer is drained. Buffered lines always surface before a choice set or
// the end. Outside Continuing it does nothing.
//
// On interpreter failure a *ScriptError is returned and no state changes.
func (s *Sequencer) Advance() error {
	if s.state != Continuing {
		return nil
	}

	buf := s.buf
	offered := s.offered
	exhausted := s.exhausted

	if len(buf) == 0 && offered == nil && !exhausted {
		var out []script.Line
		p, err := s.interp.Resume(&out)
		if err != nil {
			return &ScriptError{Op: "resume", Err: err}
		}
		buf = out
		if p.Done || len(p.Choices) == 0 {
			exhausted = true
		} else {
			offered = p.Choices
		}
	}

	switch {
	case len(buf) > 0:
		line := buf[0]
		st := ParseLine(line.Text, line.Tags)
		s.styles.Apply(&st)

		s.buf = buf[1:]
		s.offered = offered
		s.exhausted = exhausted
		s.speaker = st
		s.state = Continuing
		s.observers.LineShown(st)

	case offered != nil:
		s.buf = nil
		s.offered = nil
		s.exhausted = exhausted
		s.choices = offered
		s.state = AwaitingChoice

	default:
		s.buf = nil
		s.exhausted = true
		s.state = Ended
		s.observers.StoryEnded()
	}
	return nil
}

// Choose resolves the current choice set with option index and pulls the
// next content. Outside AwaitingChoice it does nothing. An index outside
// the set returns ErrChoiceOutOfRange and changes nothing.
//
// If the interpreter rejects the choice, a *ScriptError is returned and
// the sequencer stays in AwaitingChoice. If the choice is accepted but the
// following advance fails, the sequencer is left in Continuing with no
// choices so the next Advance retries.
func (s *Sequencer) Choose(index int) error {
	if s.state != AwaitingChoice {
		return nil
	}
	if index < 0 || index >= len(s.choices) {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrChoiceOutOfRange, index, len(s.choices))
	}

	if err := s.interp.MakeChoice(index); err != nil {
		return &ScriptError{Op: "choose", Err: err}
	}

	picked := s.choices[index]
	s.choices = nil
	s.state = Continuing
	s.observers.ChoiceMade(picked)

	return s.Advance()
}
