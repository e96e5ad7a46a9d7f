package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/vovakirdan/tui-novel/internal/registry"
)

// StoryInfo describes a story file found by Discover.
type StoryInfo struct {
	ID    string
	Title string
	Path  string
	Err   error // Set when the file could not be compiled
}

// Valid reports whether the story compiled.
func (s StoryInfo) Valid() bool { return s.Err == nil }

// Discover lists the story files directly under root, sorted by ID.
// Subdirectories hold rigs and images and are not scanned. Paths are
// absolute.
func Discover(root string) ([]StoryInfo, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("engine: cannot list stories: %w", err)
	}

	var infos []StoryInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(root, e.Name())
		if !registry.Supported(path) {
			continue
		}
		info := StoryInfo{ID: registry.StoryID(path), Path: path}
		s, err := registry.ParseFile(path)
		if err != nil {
			info.Err = err
		} else {
			info.Title = s.Title
		}
		if info.Title == "" {
			info.Title = info.ID
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos, nil
}
