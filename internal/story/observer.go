package story

import "github.com/vovakirdan/tui-novel/internal/script"

// Observer is notified of story progress.
type Observer interface {
	LineShown(st SpeakerState)
	ChoiceMade(c script.Choice)
	StoryEnded()
}

// MultiObserver fans out notifications to several observers.
type MultiObserver []Observer

func (m MultiObserver) LineShown(st SpeakerState) {
	for _, o := range m {
		o.LineShown(st)
	}
}

func (m MultiObserver) ChoiceMade(c script.Choice) {
	for _, o := range m {
		o.ChoiceMade(c)
	}
}

func (m MultiObserver) StoryEnded() {
	for _, o := range m {
		o.StoryEnded()
	}
}

// DefaultBacklogSize is the number of entries a Backlog keeps by default.
const DefaultBacklogSize = 200

// Entry is one backlog record: a shown line or a picked choice.
type Entry struct {
	Speaker string
	Content string
	Choice  bool
}

// Backlog keeps the most recent lines and choices for review.
type Backlog struct {
	limit   int
	entries []Entry
	ended   bool
}

// NewBacklog creates a backlog holding up to limit entries.
// A non-positive limit uses DefaultBacklogSize.
func NewBacklog(limit int) *Backlog {
	if limit <= 0 {
		limit = DefaultBacklogSize
	}
	return &Backlog{limit: limit}
}

func (b *Backlog) LineShown(st SpeakerState) {
	if st.Empty() {
		return
	}
	b.add(Entry{Speaker: st.Name, Content: st.Content})
}

func (b *Backlog) ChoiceMade(c script.Choice) {
	b.add(Entry{Content: c.Text, Choice: true})
}

func (b *Backlog) StoryEnded() { b.ended = true }

func (b *Backlog) add(e Entry) {
	b.entries = append(b.entries, e)
	if over := len(b.entries) - b.limit; over > 0 {
		b.entries = append(b.entries[:0], b.entries[over:]...)
	}
}

// Entries returns the entries, oldest first.
func (b *Backlog) Entries() []Entry {
	return append([]Entry(nil), b.entries...)
}

// Len returns the number of entries.
func (b *Backlog) Len() int { return len(b.entries) }

// Ended reports whether the story has ended.
func (b *Backlog) Ended() bool { return b.ended }
