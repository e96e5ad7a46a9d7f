package story

import (
	"testing"

	"github.com/vovakirdan/tui-novel/internal/script"
)

type countingObserver struct{ lines, choices, ends int }

func (c *countingObserver) LineShown(SpeakerState) { c.lines++ }
func (c *countingObserver) ChoiceMade(script.Choice) { c.choices++ }
func (c *countingObserver) StoryEnded() { c.ends++ }

func TestMultiObserver(t *testing.T) {
	a, b := &countingObserver{}, &countingObserver{}
	m := MultiObserver{a, b}
	m.LineShown(SpeakerState{Content: "x"})
	m.ChoiceMade(script.Choice{})
	m.StoryEnded()

	for _, c := range []*countingObserver{a, b} {
		if c.lines != 1 || c.choices != 1 || c.ends != 1 {
			t.Errorf("observer counts = %+v", c)
		}
	}
}

func TestBacklogLimit(t *testing.T) {
	b := NewBacklog(3)
	for _, text := range []string{"1", "2", "", "3", "4"} {
		b.LineShown(SpeakerState{Content: text})
	}
	got := b.Entries()
	if len(got) != 3 || got[0].Content != "2" || got[2].Content != "4" {
		t.Errorf("entries = %+v", got)
	}

	b.StoryEnded()
	if !b.Ended() {
		t.Error("Ended() should be true")
	}
}
