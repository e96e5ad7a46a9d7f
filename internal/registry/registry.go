// Package registry provides a global registry for story script formats.
// Formats register themselves in init() functions, allowing the engine
// to load any supported script without hardcoded dependencies.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/vovakirdan/tui-novel/internal/script"
)

// ParseFunc compiles script source into a runnable story.
// The id becomes Story.ID and is usually the file name without extension.
type ParseFunc func(id string, data []byte) (*script.Story, error)

// Format describes one story script format.
type Format struct {
	// Name is a short identifier (e.g., "ink", "yaml").
	Name string

	// Extensions handled by this format, lower case with the leading dot.
	Extensions []string

	// Parse compiles the source.
	Parse ParseFunc
}

// FormatInfo contains metadata about a registered format.
type FormatInfo struct {
	Name       string
	Extensions []string
}

var (
	formats = make(map[string]Format) // by name
	byExt   = make(map[string]string) // extension -> name
	mu      sync.RWMutex
)

// Register adds a format to the registry.
// Typically called from a format package's init() function.
// Panics if the name or one of the extensions is already registered.
func Register(f Format) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := formats[f.Name]; exists {
		panic(fmt.Sprintf("registry: format %q already registered", f.Name))
	}
	for _, ext := range f.Extensions {
		if owner, exists := byExt[strings.ToLower(ext)]; exists {
			panic(fmt.Sprintf("registry: extension %q already registered by %q", ext, owner))
		}
	}

	formats[f.Name] = f
	for _, ext := range f.Extensions {
		byExt[strings.ToLower(ext)] = f.Name
	}
}

// List returns information about all registered formats, sorted by name.
func List() []FormatInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]FormatInfo, 0, len(formats))
	for _, f := range formats {
		result = append(result, FormatInfo{
			Name:       f.Name,
			Extensions: append([]string(nil), f.Extensions...),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result
}

// ForExtension returns the format handling ext (".ink", ".yaml", ...).
func ForExtension(ext string) (Format, bool) {
	mu.RLock()
	defer mu.RUnlock()

	name, ok := byExt[strings.ToLower(ext)]
	if !ok {
		return Format{}, false
	}
	return formats[name], true
}

// Supported checks if a file can be parsed by a registered format.
func Supported(path string) bool {
	_, ok := ForExtension(filepath.Ext(path))
	return ok
}

// Parse compiles data with the format registered for ext.
func Parse(ext, id string, data []byte) (*script.Story, error) {
	f, ok := ForExtension(ext)
	if !ok {
		return nil, fmt.Errorf("registry: no format for extension %q", ext)
	}

	s, err := f.Parse(id, data)
	if err != nil {
		return nil, fmt.Errorf("registry: %s: %w", f.Name, err)
	}
	return s, nil
}

// StoryID is the base name of path without its extension.
func StoryID(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// ParseFile reads and compiles a story file. The story ID comes from StoryID.
func ParseFile(path string) (*script.Story, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("registry: cannot read story: %w", err)
	}

	s, err := Parse(filepath.Ext(path), StoryID(path), data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
