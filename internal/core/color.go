package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Color represents a cell color.
// The zero value is the terminal default; any other value carries 24-bit RGB.
type Color uint32

// ColorDefault leaves the terminal's own color in place.
const ColorDefault Color = 0

const colorSet Color = 1 << 24

// Named colors used by the default theme and config files.
var (
	ColorBlack   = RGB(0, 0, 0)
	ColorWhite   = RGB(235, 235, 235)
	ColorGray    = RGB(128, 128, 128)
	ColorRed     = RGB(220, 70, 70)
	ColorGreen   = RGB(90, 200, 110)
	ColorYellow  = RGB(235, 210, 90)
	ColorBlue    = RGB(80, 130, 230)
	ColorMagenta = RGB(200, 100, 200)
	ColorCyan    = RGB(90, 200, 210)
	ColorOrange  = RGB(240, 150, 60)
	ColorPink    = RGB(250, 170, 200)
	ColorNight   = RGB(13, 13, 26) // Dialogue box background
	ColorDusk    = RGB(26, 26, 51) // Background fallback
)

var namedColors = map[string]Color{
	"black":   ColorBlack,
	"white":   ColorWhite,
	"gray":    ColorGray,
	"grey":    ColorGray,
	"red":     ColorRed,
	"green":   ColorGreen,
	"yellow":  ColorYellow,
	"blue":    ColorBlue,
	"magenta": ColorMagenta,
	"cyan":    ColorCyan,
	"orange":  ColorOrange,
	"pink":    ColorPink,
}

// RGB builds a color from its components.
func RGB(r, g, b uint8) Color {
	return colorSet | Color(r)<<16 | Color(g)<<8 | Color(b)
}

// IsDefault reports whether the color is the terminal default.
func (c Color) IsDefault() bool {
	return c&colorSet == 0
}

// Components returns the red, green and blue parts.
func (c Color) Components() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// Hex returns the color as "#rrggbb", or "" for the default color.
func (c Color) Hex() string {
	if c.IsDefault() {
		return ""
	}
	r, g, b := c.Components()
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// String implements fmt.Stringer.
func (c Color) String() string {
	if c.IsDefault() {
		return "default"
	}
	return c.Hex()
}

// ParseColor parses "#rrggbb", "#rgb" or a color name.
// Empty input yields ColorDefault.
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "default" {
		return ColorDefault, nil
	}
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	if !strings.HasPrefix(s, "#") {
		return ColorDefault, fmt.Errorf("core: unknown color %q", s)
	}

	hex := s[1:]
	if len(hex) == 3 {
		// #rgb -> #rrggbb
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return ColorDefault, fmt.Errorf("core: invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return ColorDefault, fmt.Errorf("core: invalid color %q: %w", s, err)
	}
	return RGB(uint8(v>>16), uint8(v>>8), uint8(v)), nil
}
