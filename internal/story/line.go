package story

import "strings"

// SpeakerSeparator splits a speaker prefix from the dialogue content.
const SpeakerSeparator = ": "

// ParseLine extracts the speaker, content and animation tag from one line
// emitted by the interpreter.
//
// A line of the form "Name: text" is attributed to Name; the prefix ends at
// the first ": ". An empty prefix is not a speaker. One trailing newline
// (with an optional carriage return before it) is removed from the content.
// The first tag, if any, names the animation to play.
func ParseLine(raw string, tags []string) SpeakerState {
	st := SpeakerState{Content: raw}

	if i := strings.Index(raw, SpeakerSeparator); i > 0 {
		st.Name = raw[:i]
		st.Content = raw[i+len(SpeakerSeparator):]
	}

	st.Content = trimNewline(st.Content)

	if len(tags) > 0 {
		st.Animation = tags[0]
		st.Tags = append([]string(nil), tags...)
	}
	return st
}

func trimNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		s = s[:len(s)-1]
		s = strings.TrimSuffix(s, "\r")
	}
	return s
}
