// Package assets loads background images and converts them into terminal
// cells. Textures are shared handles owned by a Manager.
package assets

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/vovakirdan/tui-novel/internal/core"
)

// HalfBlock draws two vertical pixels in one cell: the foreground color
// paints the top half, the background color the bottom half.
const HalfBlock = '▀'

// ErrUnsupportedFormat is returned for file extensions with no decoder.
var ErrUnsupportedFormat = errors.New("assets: unsupported image format")

var supported = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// Supported reports whether path has a decodable image extension.
func Supported(path string) bool {
	return supported[strings.ToLower(filepath.Ext(path))]
}

type size struct{ w, h int }

// Texture is a decoded image with a per-size cache of cell grids.
type Texture struct {
	Name string
	Path string
	img  image.Image

	cells map[size][][]core.Cell
}

// Bounds returns the pixel size of the image.
func (t *Texture) Bounds() image.Rectangle { return t.img.Bounds() }

// Cells scales the image to w columns by h rows of half-block cells
// (w x 2h pixels). Results are cached per size.
func (t *Texture) Cells(w, h int) [][]core.Cell {
	if w <= 0 || h <= 0 {
		return nil
	}
	key := size{w, h}
	if c, ok := t.cells[key]; ok {
		return c
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h*2))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), t.img, t.img.Bounds(), draw.Src, nil)

	grid := make([][]core.Cell, h)
	for y := range grid {
		row := make([]core.Cell, w)
		for x := range row {
			row[x] = core.Cell{
				Rune: HalfBlock,
				FG:   toColor(dst.RGBAAt(x, y*2)),
				BG:   toColor(dst.RGBAAt(x, y*2+1)),
			}
		}
		grid[y] = row
	}

	if t.cells == nil {
		t.cells = make(map[size][][]core.Cell)
	}
	t.cells[key] = grid
	return grid
}

func toColor(c color.RGBA) core.Color {
	return core.RGB(c.R, c.G, c.B)
}

// Manager owns loaded textures keyed by name.
type Manager struct {
	byName map[string]*Texture
	byPath map[string]*Texture
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{
		byName: make(map[string]*Texture),
		byPath: make(map[string]*Texture),
	}
}

// Load decodes the image at path and stores it under name (the path when
// name is empty). Loading the same path again returns the shared texture.
func (m *Manager) Load(path, name string) (*Texture, error) {
	if name == "" {
		name = path
	}
	if !Supported(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	clean := filepath.Clean(path)
	if t, ok := m.byPath[clean]; ok {
		m.byName[name] = t
		return t, nil
	}

	f, err := os.Open(clean)
	if err != nil {
		return nil, fmt.Errorf("assets: cannot open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("assets: cannot decode %s: %w", path, err)
	}

	t := &Texture{Name: name, Path: clean, img: img}
	m.byPath[clean] = t
	m.byName[name] = t
	return t, nil
}

// Get returns the texture stored under name.
func (m *Manager) Get(name string) (*Texture, bool) {
	t, ok := m.byName[name]
	return t, ok
}

// Names returns every texture name, sorted.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.byName))
	for n := range m.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
