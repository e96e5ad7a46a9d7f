package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/tui-novel/internal/logging"
	"github.com/vovakirdan/tui-novel/internal/script"
	"github.com/vovakirdan/tui-novel/internal/story"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestPlaythroughLifecycle(t *testing.T) {
	store := openTestStore(t)

	id, err := store.StartPlaythrough("cafe", "mika")
	if err != nil {
		t.Fatalf("StartPlaythrough() failed: %v", err)
	}

	if err := store.RecordLine(id, 1, "Aru", "Welcome!", "wave"); err != nil {
		t.Fatal(err)
	}
	if err := store.RecordChoice(id, 2, 1, "Look around"); err != nil {
		t.Fatal(err)
	}
	if err := store.RecordLine(id, 3, "", "Lanterns sway.", ""); err != nil {
		t.Fatal(err)
	}

	p, err := store.Playthrough(id)
	if err != nil || p == nil {
		t.Fatalf("Playthrough() = %v, %v", p, err)
	}
	if p.StoryID != "cafe" || p.Player != "mika" || p.Lines != 2 || p.Choices != 1 {
		t.Errorf("playthrough = %+v", p)
	}
	if !p.FinishedAt.IsZero() || p.Ended {
		t.Error("playthrough should still be open")
	}

	if err := store.FinishPlaythrough(id, true); err != nil {
		t.Fatal(err)
	}
	// A second finish does not overwrite the first.
	if err := store.FinishPlaythrough(id, false); err != nil {
		t.Fatal(err)
	}
	p, _ = store.Playthrough(id)
	if !p.Ended {
		t.Error("playthrough should be marked ended")
	}

	entries, err := store.Transcript(id)
	if err != nil {
		t.Fatalf("Transcript() failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 transcript entries, got %d", len(entries))
	}
	if entries[0].Speaker != "Aru" || entries[0].Animation != "wave" {
		t.Errorf("first entry = %+v", entries[0])
	}
	if !entries[1].Choice || entries[1].Index != 1 || entries[1].Content != "Look around" {
		t.Errorf("second entry = %+v", entries[1])
	}
	if entries[2].Choice || entries[2].Content != "Lanterns sway." {
		t.Errorf("third entry = %+v", entries[2])
	}

	choices, err := store.Choices(id)
	if err != nil || len(choices) != 1 || choices[0].Text != "Look around" {
		t.Errorf("Choices() = %+v, %v", choices, err)
	}
}

func TestPlaythroughMissing(t *testing.T) {
	store := openTestStore(t)
	p, err := store.Playthrough(42)
	if err != nil || p != nil {
		t.Errorf("Playthrough(42) = %v, %v; expected nil, nil", p, err)
	}
}

func TestRecentPlaythroughs(t *testing.T) {
	store := openTestStore(t)
	for _, id := range []string{"cafe", "cafe", "harbor"} {
		if _, err := store.StartPlaythrough(id, ""); err != nil {
			t.Fatal(err)
		}
	}

	cafe, err := store.RecentPlaythroughs("cafe", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(cafe) != 2 {
		t.Errorf("Expected 2 cafe playthroughs, got %d", len(cafe))
	}
	if cafe[0].ID < cafe[1].ID {
		t.Error("playthroughs should be newest first")
	}

	all, _ := store.RecentPlaythroughs("", 0)
	if len(all) != 3 {
		t.Errorf("Expected 3 playthroughs, got %d", len(all))
	}

	limited, _ := store.RecentPlaythroughs("", 1)
	if len(limited) != 1 {
		t.Errorf("limit ignored: %d", len(limited))
	}
}

func TestStoryStats(t *testing.T) {
	store := openTestStore(t)

	a, _ := store.StartPlaythrough("cafe", "")
	_ = store.RecordChoice(a, 1, 0, "Tea")
	_ = store.RecordChoice(a, 2, 0, "Leave")
	_ = store.FinishPlaythrough(a, true)
	b, _ := store.StartPlaythrough("cafe", "")
	_ = store.FinishPlaythrough(b, false)

	stats, err := store.GetStoryStats("cafe")
	if err != nil {
		t.Fatalf("GetStoryStats() failed: %v", err)
	}
	if stats.Playthroughs != 2 || stats.Completed != 1 || stats.AvgChoices != 1 {
		t.Errorf("stats = %+v", stats)
	}

	empty, err := store.GetStoryStats("none")
	if err != nil || empty.Playthroughs != 0 {
		t.Errorf("empty stats = %+v, %v", empty, err)
	}

	all, err := store.GetAllStoryStats()
	if err != nil || len(all) != 1 || all["cafe"] == nil {
		t.Errorf("GetAllStoryStats() = %v, %v", all, err)
	}
}

func TestClearStory(t *testing.T) {
	store := openTestStore(t)
	a, _ := store.StartPlaythrough("cafe", "")
	_ = store.RecordLine(a, 1, "", "x", "")
	b, _ := store.StartPlaythrough("harbor", "")

	if err := store.ClearStory("cafe"); err != nil {
		t.Fatalf("ClearStory() failed: %v", err)
	}
	if p, _ := store.Playthrough(a); p != nil {
		t.Error("cafe playthrough should be gone")
	}
	if entries, _ := store.Transcript(a); len(entries) != 0 {
		t.Error("cafe lines should be gone")
	}
	if p, _ := store.Playthrough(b); p == nil {
		t.Error("harbor playthrough should remain")
	}
}

func TestRecorder(t *testing.T) {
	store := openTestStore(t)
	rec, err := NewRecorder(store, "cafe", "aru", logging.Discard())
	if err != nil {
		t.Fatalf("NewRecorder() failed: %v", err)
	}

	var obs story.Observer = rec
	obs.LineShown(story.SpeakerState{Name: "Aru", Content: "Hi", Animation: "wave"})
	obs.ChoiceMade(script.Choice{Index: 0, Text: "Wave"})
	obs.StoryEnded()
	obs.StoryEnded()
	if err := rec.Close(); err != nil {
		t.Fatal(err)
	}

	p, _ := store.Playthrough(rec.ID())
	if p.Lines != 1 || p.Choices != 1 || !p.Ended {
		t.Errorf("recorded playthrough = %+v", p)
	}
	entries, _ := store.Transcript(rec.ID())
	if len(entries) != 2 || entries[0].Seq != 1 || entries[1].Seq != 2 {
		t.Errorf("transcript = %+v", entries)
	}
}

func TestRecorderCloseAbandons(t *testing.T) {
	store := openTestStore(t)
	rec, _ := NewRecorder(store, "cafe", "", logging.Discard())
	if err := rec.Close(); err != nil {
		t.Fatal(err)
	}
	p, _ := store.Playthrough(rec.ID())
	if p.Ended || p.FinishedAt.IsZero() {
		t.Errorf("abandoned playthrough = %+v", p)
	}
}
