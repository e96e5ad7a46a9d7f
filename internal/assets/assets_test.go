package assets

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/tui-novel/internal/core"
)

// writePNG writes a 2x2 image: red top row, blue bottom row.
func writePNG(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	red := color.RGBA{255, 0, 0, 255}
	blue := color.RGBA{0, 0, 255, 255}
	img.SetRGBA(0, 0, red)
	img.SetRGBA(1, 0, red)
	img.SetRGBA(0, 1, blue)
	img.SetRGBA(1, 1, blue)

	path := filepath.Join(dir, "bg.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAndCells(t *testing.T) {
	m := NewManager()
	path := writePNG(t, t.TempDir())

	tex, err := m.Load(path, "background")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tex.Bounds().Dx() != 2 {
		t.Errorf("bounds = %v", tex.Bounds())
	}

	cells := tex.Cells(2, 1)
	if len(cells) != 1 || len(cells[0]) != 2 {
		t.Fatalf("grid %dx%d", len(cells), len(cells[0]))
	}
	c := cells[0][0]
	if c.Rune != HalfBlock || c.FG != core.RGB(255, 0, 0) || c.BG != core.RGB(0, 0, 255) {
		t.Errorf("cell = %+v", c)
	}

	again := tex.Cells(2, 1)
	if &again[0][0] != &cells[0][0] {
		t.Error("Cells should be cached per size")
	}
	if tex.Cells(0, 3) != nil {
		t.Error("zero size should give no cells")
	}
}

func TestLoadShared(t *testing.T) {
	m := NewManager()
	path := writePNG(t, t.TempDir())

	a, _ := m.Load(path, "a")
	b, err := m.Load(path, "b")
	if err != nil || a != b {
		t.Error("same path should return the shared texture")
	}
	if names := m.Names(); len(names) != 2 {
		t.Errorf("Names = %v", names)
	}
	if got, ok := m.Get("b"); !ok || got != a {
		t.Error("Get(b) mismatch")
	}
	if _, ok := m.Get("c"); ok {
		t.Error("Get(c) should fail")
	}
}

func TestLoadErrors(t *testing.T) {
	m := NewManager()
	dir := t.TempDir()

	if _, err := m.Load(filepath.Join(dir, "bg.svg"), ""); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("svg: %v", err)
	}
	if _, err := m.Load(filepath.Join(dir, "missing.png"), ""); err == nil {
		t.Error("expected error for missing file")
	}

	junk := filepath.Join(dir, "junk.webp")
	_ = os.WriteFile(junk, []byte("not an image"), 0o644)
	if _, err := m.Load(junk, ""); err == nil {
		t.Error("expected decode error")
	}
}

func TestSupported(t *testing.T) {
	for path, want := range map[string]bool{
		"a.PNG": true, "b.webp": true, "c.tiff": true, "d.txt": false, "e": false,
	} {
		if Supported(path) != want {
			t.Errorf("Supported(%q) != %v", path, want)
		}
	}
}
