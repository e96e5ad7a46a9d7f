package script

import "errors"

// Runner state errors.
var (
	ErrNotStarted      = errors.New("script: story not started")
	ErrAwaitingChoice  = errors.New("script: waiting for a choice")
	ErrNoChoicePending = errors.New("script: no choice pending")
	ErrInvalidChoice   = errors.New("script: choice index out of range")
	ErrFinished        = errors.New("script: story finished")
	ErrRunaway         = errors.New("script: too many steps without output")
)
