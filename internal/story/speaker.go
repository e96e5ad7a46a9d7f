package story

import (
	"fmt"
	"strings"

	"github.com/vovakirdan/tui-novel/internal/core"
)

// SpeakerState is the result of consuming one line. It is replaced
// wholesale on every line.
type SpeakerState struct {
	Name      string     // Empty when the line has no speaker
	Content   string     // Empty means nothing to display
	Animation string     // First stage-direction tag, empty if none
	Tags      []string   // All tags attached to the line
	Position  *core.Vec2 // Normalized screen position, nil if unstyled
	Color     core.Color // Name color, default if unstyled
}

// HasSpeaker reports whether the line was attributed to someone.
func (s SpeakerState) HasSpeaker() bool { return s.Name != "" }

// Empty reports whether there is nothing to display.
func (s SpeakerState) Empty() bool { return s.Content == "" }

// Directive is the presentation attached to a speaker.
type Directive struct {
	Position core.Vec2
	Color    core.Color
}

// Styles maps speaker names to their directives.
type Styles map[string]Directive

// Apply fills the derived directive fields of st for its speaker.
func (s Styles) Apply(st *SpeakerState) {
	if !st.HasSpeaker() {
		return
	}
	d, ok := s[st.Name]
	if !ok {
		return
	}
	pos := d.Position
	st.Position = &pos
	st.Color = d.Color
}

// Named positions on a normalized [0,1] horizontal axis.
var (
	PositionLeft   = core.V(0.25, 1)
	PositionCenter = core.V(0.5, 1)
	PositionRight  = core.V(0.75, 1)
)

// ParsePosition accepts "left", "center" or "right" (case-insensitive).
func ParsePosition(s string) (core.Vec2, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return PositionLeft, nil
	case "", "center", "centre":
		return PositionCenter, nil
	case "right":
		return PositionRight, nil
	default:
		return core.Vec2{}, fmt.Errorf("story: unknown position %q", s)
	}
}
