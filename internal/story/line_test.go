package story

import "testing"

func TestParseLine(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		tags     []string
		wantName string
		wantText string
		wantAnim string
	}{
		{"speaker", "Aru: Hello there\n", nil, "Aru", "Hello there", ""},
		{"narration", "The rain stops.\n", nil, "", "The rain stops.", ""},
		{"first separator wins", "Aru: note: read this\n", nil, "Aru", "note: read this", ""},
		{"colon without space", "Time 10:30\n", nil, "", "Time 10:30", ""},
		{"empty speaker", ": nobody\n", nil, "", ": nobody", ""},
		{"crlf", "Aru: Hi\r\n", nil, "Aru", "Hi", ""},
		{"no trailing newline", "Aru: Hi", nil, "Aru", "Hi", ""},
		{"empty", "", nil, "", "", ""},
		{"only newline", "\n", nil, "", "", ""},
		{"speaker with empty content", "Aru: \n", nil, "Aru", "", ""},
		{"animation tag", "Aru: Boo!\n", []string{"jump", "loud"}, "Aru", "Boo!", "jump"},
		{"multibyte", "ミカ: こんにちは\n", nil, "ミカ", "こんにちは", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := ParseLine(tt.raw, tt.tags)
			if st.Name != tt.wantName {
				t.Errorf("Name = %q, expected %q", st.Name, tt.wantName)
			}
			if st.Content != tt.wantText {
				t.Errorf("Content = %q, expected %q", st.Content, tt.wantText)
			}
			if st.Animation != tt.wantAnim {
				t.Errorf("Animation = %q, expected %q", st.Animation, tt.wantAnim)
			}
			if st.Position != nil || !st.Color.IsDefault() {
				t.Error("ParseLine should not set directives")
			}
		})
	}
}

func TestParseLineNoSeparatorDropsNewlineOnly(t *testing.T) {
	inputs := []string{"a\n", "hello world\n", "x:y\n", "trailing colon:\n", "   spaced  \n"}
	for _, in := range inputs {
		st := ParseLine(in, nil)
		if st.HasSpeaker() {
			t.Errorf("ParseLine(%q) found speaker %q", in, st.Name)
		}
		if want := in[:len(in)-1]; st.Content != want {
			t.Errorf("ParseLine(%q).Content = %q, expected %q", in, st.Content, want)
		}
	}
}

func TestParseLineCopiesTags(t *testing.T) {
	tags := []string{"wave"}
	st := ParseLine("Aru: hi\n", tags)
	tags[0] = "changed"
	if st.Tags[0] != "wave" {
		t.Error("SpeakerState should not alias the caller's tags")
	}
}
