package config

import "fmt"

// TextSpeed is a named typewriter speed.
type TextSpeed string

const (
	SpeedSlow    TextSpeed = "slow"
	SpeedNormal  TextSpeed = "normal"
	SpeedFast    TextSpeed = "fast"
	SpeedInstant TextSpeed = "instant"
)

// CharsPerSecond returns the reveal rate for a speed. Zero means the whole
// line appears at once.
func (s TextSpeed) CharsPerSecond() float64 {
	switch s {
	case SpeedSlow:
		return 20
	case SpeedNormal, "":
		return 45
	case SpeedFast:
		return 90
	default:
		return 0
	}
}

// Valid reports whether s is a known preset.
func (s TextSpeed) Valid() bool {
	switch s {
	case SpeedSlow, SpeedNormal, SpeedFast, SpeedInstant:
		return true
	}
	return false
}

// ParseTextSpeed converts a preset name.
func ParseTextSpeed(s string) (TextSpeed, error) {
	ts := TextSpeed(s)
	if !ts.Valid() {
		return "", fmt.Errorf("unknown text speed %q (valid: slow, normal, fast, instant)", s)
	}
	return ts, nil
}
