package story

import (
	"errors"
	"fmt"
)

// ErrChoiceOutOfRange is returned by Choose for an index outside the
// current choice set. The sequencer state is left untouched.
var ErrChoiceOutOfRange = errors.New("story: choice index out of range")

// ScriptError wraps a failure of the underlying interpreter.
type ScriptError struct {
	Op  string // "resume" or "choose"
	Err error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("story: %s: %v", e.Op, e.Err)
}

func (e *ScriptError) Unwrap() error { return e.Err }
