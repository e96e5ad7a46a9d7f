// Package storage provides SQLite-based persistence for playthroughs:
// which story was played, every line shown and every choice made.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store manages the SQLite database connection for playthrough persistence.
type Store struct {
	db *sql.DB
}

// Playthrough is one run of a story.
type Playthrough struct {
	ID         int64
	StoryID    string
	Player     string
	StartedAt  time.Time
	FinishedAt time.Time // Zero while in progress
	Ended      bool      // The story reached its end
	Lines      int
	Choices    int
}

// TranscriptEntry is a shown line or a picked choice, in play order.
type TranscriptEntry struct {
	Seq       int
	Speaker   string
	Content   string
	Animation string
	Choice    bool
	Index     int // Choice index, 0 for lines
}

// ChoiceRecord is one picked choice.
type ChoiceRecord struct {
	Seq   int
	Index int
	Text  string
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS playthroughs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			story_id TEXT NOT NULL,
			player TEXT NOT NULL DEFAULT '',
			started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			finished_at DATETIME,
			ended INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_playthroughs_story ON playthroughs(story_id);

		CREATE TABLE IF NOT EXISTS playthrough_lines (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			playthrough_id INTEGER NOT NULL REFERENCES playthroughs(id),
			seq INTEGER NOT NULL,
			speaker TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL,
			animation TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_lines_playthrough ON playthrough_lines(playthrough_id, seq);

		CREATE TABLE IF NOT EXISTS playthrough_choices (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			playthrough_id INTEGER NOT NULL REFERENCES playthroughs(id),
			seq INTEGER NOT NULL,
			choice_index INTEGER NOT NULL,
			text TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_choices_playthrough ON playthrough_choices(playthrough_id, seq);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// StartPlaythrough opens a new playthrough and returns its ID.
func (s *Store) StartPlaythrough(storyID, player string) (int64, error) {
	result, err := s.db.Exec(
		"INSERT INTO playthroughs (story_id, player) VALUES (?, ?)",
		storyID, player,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot start playthrough: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

// RecordLine stores a shown line.
func (s *Store) RecordLine(playthroughID int64, seq int, speaker, content, animation string) error {
	_, err := s.db.Exec(
		`INSERT INTO playthrough_lines (playthrough_id, seq, speaker, content, animation)
		 VALUES (?, ?, ?, ?, ?)`,
		playthroughID, seq, speaker, content, animation,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot record line: %w", err)
	}
	return nil
}

// RecordChoice stores a picked choice.
func (s *Store) RecordChoice(playthroughID int64, seq, index int, text string) error {
	_, err := s.db.Exec(
		`INSERT INTO playthrough_choices (playthrough_id, seq, choice_index, text)
		 VALUES (?, ?, ?, ?)`,
		playthroughID, seq, index, text,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot record choice: %w", err)
	}
	return nil
}

// FinishPlaythrough closes a playthrough. ended reports whether the story
// reached its end rather than being abandoned.
func (s *Store) FinishPlaythrough(playthroughID int64, ended bool) error {
	flag := 0
	if ended {
		flag = 1
	}
	_, err := s.db.Exec(
		`UPDATE playthroughs SET finished_at = CURRENT_TIMESTAMP, ended = ?
		 WHERE id = ? AND finished_at IS NULL`,
		flag, playthroughID,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot finish playthrough: %w", err)
	}
	return nil
}

const playthroughColumns = `
	p.id, p.story_id, p.player, p.started_at, p.finished_at, p.ended,
	(SELECT COUNT(*) FROM playthrough_lines l WHERE l.playthrough_id = p.id),
	(SELECT COUNT(*) FROM playthrough_choices c WHERE c.playthrough_id = p.id)`

type scanner interface {
	Scan(dest ...any) error
}

func scanPlaythrough(row scanner) (Playthrough, error) {
	var p Playthrough
	var startedAt, finishedAt any
	err := row.Scan(&p.ID, &p.StoryID, &p.Player, &startedAt, &finishedAt, &p.Ended, &p.Lines, &p.Choices)
	p.StartedAt = parseTime(startedAt)
	p.FinishedAt = parseTime(finishedAt)
	return p, err
}

// Playthrough retrieves a playthrough by ID. Returns nil if it does not exist.
func (s *Store) Playthrough(id int64) (*Playthrough, error) {
	p, err := scanPlaythrough(s.db.QueryRow(
		`SELECT `+playthroughColumns+` FROM playthroughs p WHERE p.id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query playthrough: %w", err)
	}
	return &p, nil
}

// RecentPlaythroughs retrieves the most recent playthroughs of a story,
// or of every story when storyID is empty.
func (s *Store) RecentPlaythroughs(storyID string, limit int) ([]Playthrough, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+playthroughColumns+`
		 FROM playthroughs p
		 WHERE ? = '' OR p.story_id = ?
		 ORDER BY p.id DESC
		 LIMIT ?`,
		storyID, storyID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query playthroughs: %w", err)
	}
	defer rows.Close()

	var result []Playthrough
	for rows.Next() {
		p, err := scanPlaythrough(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		result = append(result, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return result, nil
}

// Transcript returns the lines and choices of a playthrough in play order.
func (s *Store) Transcript(playthroughID int64) ([]TranscriptEntry, error) {
	rows, err := s.db.Query(
		`SELECT seq, speaker, content, animation, 0, 0 FROM playthrough_lines WHERE playthrough_id = ?
		 UNION ALL
		 SELECT seq, '', text, '', 1, choice_index FROM playthrough_choices WHERE playthrough_id = ?
		 ORDER BY 1`,
		playthroughID, playthroughID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query transcript: %w", err)
	}
	defer rows.Close()

	var entries []TranscriptEntry
	for rows.Next() {
		var e TranscriptEntry
		if err := rows.Scan(&e.Seq, &e.Speaker, &e.Content, &e.Animation, &e.Choice, &e.Index); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return entries, nil
}

// Choices returns the choices picked during a playthrough, in order.
func (s *Store) Choices(playthroughID int64) ([]ChoiceRecord, error) {
	rows, err := s.db.Query(
		`SELECT seq, choice_index, text FROM playthrough_choices
		 WHERE playthrough_id = ? ORDER BY seq`,
		playthroughID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query choices: %w", err)
	}
	defer rows.Close()

	var result []ChoiceRecord
	for rows.Next() {
		var c ChoiceRecord
		if err := rows.Scan(&c.Seq, &c.Index, &c.Text); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		result = append(result, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return result, nil
}

// StoryStats contains aggregated statistics for a story.
type StoryStats struct {
	StoryID      string
	Playthroughs int
	Completed    int
	AvgChoices   float64
	LastPlayed   time.Time
}

// GetStoryStats retrieves aggregated statistics for a specific story.
func (s *Store) GetStoryStats(storyID string) (*StoryStats, error) {
	stats := &StoryStats{StoryID: storyID}

	var lastPlayed any
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(p.ended), 0),
		        COALESCE(AVG((SELECT COUNT(*) FROM playthrough_choices c WHERE c.playthrough_id = p.id)), 0),
		        MAX(p.started_at)
		 FROM playthroughs p WHERE p.story_id = ?`,
		storyID,
	).Scan(&stats.Playthroughs, &stats.Completed, &stats.AvgChoices, &lastPlayed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get story stats: %w", err)
	}
	stats.LastPlayed = parseTime(lastPlayed)

	return stats, nil
}

// GetAllStoryStats retrieves statistics for every story that has been played.
func (s *Store) GetAllStoryStats() (map[string]*StoryStats, error) {
	rows, err := s.db.Query(`SELECT DISTINCT story_id FROM playthroughs`)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot list stories: %w", err)
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()

	stats := make(map[string]*StoryStats, len(ids))
	for _, id := range ids {
		st, err := s.GetStoryStats(id)
		if err != nil {
			return nil, err
		}
		stats[id] = st
	}
	return stats, nil
}

// ClearStory deletes every playthrough of a story.
func (s *Store) ClearStory(storyID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	for _, q := range []string{
		`DELETE FROM playthrough_lines WHERE playthrough_id IN (SELECT id FROM playthroughs WHERE story_id = ?)`,
		`DELETE FROM playthrough_choices WHERE playthrough_id IN (SELECT id FROM playthroughs WHERE story_id = ?)`,
		`DELETE FROM playthroughs WHERE story_id = ?`,
	} {
		if _, err := tx.Exec(q, storyID); err != nil {
			return fmt.Errorf("storage: cannot clear story: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot clear story: %w", err)
	}
	return nil
}

// parseTime handles both time.Time and string datetime values.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
