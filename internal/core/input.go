package core

import "time"

// Action represents a semantic input, abstracted from physical key presses
// and mouse clicks. The story layer only ever sees Advance and Choose.
type Action int

const (
	ActionNone       Action = iota
	ActionAdvance           // Space, Enter, left click - show the next line
	ActionChoose            // 1-9 or a click inside a choice box; index in InputFrame.Choice
	ActionChoiceUp          // Up, K - move the choice cursor
	ActionChoiceDown        // Down, J - move the choice cursor
	ActionConfirm           // Enter while choosing - pick the choice under the cursor
	ActionBacklog           // Tab - toggle the backlog view
	ActionBack              // Esc - leave the story (menu or exit)
	ActionQuit              // Q, Ctrl+C - exit
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionAdvance:
		return "Advance"
	case ActionChoose:
		return "Choose"
	case ActionChoiceUp:
		return "ChoiceUp"
	case ActionChoiceDown:
		return "ChoiceDown"
	case ActionConfirm:
		return "Confirm"
	case ActionBacklog:
		return "Backlog"
	case ActionBack:
		return "Back"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// InputFrame collects the actions triggered during one frame tick.
type InputFrame struct {
	Actions map[Action]bool
	// Choice is the zero-based index carried by ActionChoose, -1 if none.
	Choice int
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{
		Actions: make(map[Action]bool),
		Choice:  -1,
	}
}

// Set marks an action as triggered for this frame.
func (f *InputFrame) Set(a Action) {
	if f.Actions == nil {
		f.Actions = make(map[Action]bool)
	}
	f.Actions[a] = true
}

// SetChoice records a choice selection at the given index.
func (f *InputFrame) SetChoice(index int) {
	f.Set(ActionChoose)
	f.Choice = index
}

// Has returns true if the given action was triggered this frame.
func (f InputFrame) Has(a Action) bool {
	if f.Actions == nil {
		return false
	}
	return f.Actions[a]
}

// Clear resets all actions for the next frame.
func (f *InputFrame) Clear() {
	for k := range f.Actions {
		delete(f.Actions, k)
	}
	f.Choice = -1
}

// DefaultDebounce is the minimum spacing between two accepted clicks.
const DefaultDebounce = 300 * time.Millisecond

// Debouncer drops repeated triggers that arrive within Window of the last
// accepted one.
type Debouncer struct {
	Window time.Duration
	last   time.Time
}

// NewDebouncer creates a debouncer with the given window.
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{Window: window}
}

// Allow reports whether a trigger at now should be accepted and records it if so.
func (d *Debouncer) Allow(now time.Time) bool {
	if !d.last.IsZero() && now.Sub(d.last) <= d.Window {
		return false
	}
	d.last = now
	return true
}
