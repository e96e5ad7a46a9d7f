package storage

import (
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-novel/internal/script"
	"github.com/vovakirdan/tui-novel/internal/story"
)

// Recorder writes the progress of one playthrough as it happens.
// Write failures are logged and never interrupt play.
type Recorder struct {
	store  *Store
	id     int64
	seq    int
	ended  bool
	logger *log.Logger
}

var _ story.Observer = (*Recorder)(nil)

// NewRecorder starts a playthrough of storyID for player.
func NewRecorder(store *Store, storyID, player string, logger *log.Logger) (*Recorder, error) {
	id, err := store.StartPlaythrough(storyID, player)
	if err != nil {
		return nil, err
	}
	return &Recorder{store: store, id: id, logger: logger}, nil
}

// ID returns the playthrough ID.
func (r *Recorder) ID() int64 { return r.id }

func (r *Recorder) LineShown(st story.SpeakerState) {
	r.seq++
	if err := r.store.RecordLine(r.id, r.seq, st.Name, st.Content, st.Animation); err != nil {
		r.logger.Warn("could not record line", "playthrough", r.id, "error", err)
	}
}

func (r *Recorder) ChoiceMade(c script.Choice) {
	r.seq++
	if err := r.store.RecordChoice(r.id, r.seq, c.Index, c.Text); err != nil {
		r.logger.Warn("could not record choice", "playthrough", r.id, "error", err)
	}
}

func (r *Recorder) StoryEnded() {
	if r.ended {
		return
	}
	r.ended = true
	if err := r.store.FinishPlaythrough(r.id, true); err != nil {
		r.logger.Warn("could not finish playthrough", "playthrough", r.id, "error", err)
	}
}

// Close marks an unfinished playthrough as abandoned.
func (r *Recorder) Close() error {
	if r.ended {
		return nil
	}
	r.ended = true
	return r.store.FinishPlaythrough(r.id, false)
}
