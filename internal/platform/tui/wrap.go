package tui

import (
	"strings"

	"golang.org/x/text/width"
)

// RuneWidth returns the number of terminal cells r occupies.
func RuneWidth(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	}
	return 1
}

// StringWidth returns the display width of s in terminal cells.
func StringWidth(s string) int {
	n := 0
	for _, r := range s {
		n += RuneWidth(r)
	}
	return n
}

// Wrap breaks text into lines at most w cells wide. Lines break at the
// last space when there is one, otherwise between runes, so unspaced CJK
// text still wraps. Embedded newlines are kept.
func Wrap(text string, w int) []string {
	if w <= 0 {
		return nil
	}
	var out []string
	for _, para := range strings.Split(text, "\n") {
		out = append(out, wrapLine(para, w)...)
	}
	return out
}

func wrapLine(line string, w int) []string {
	var out []string
	var cur []rune
	curW, lastSpace := 0, -1

	for _, r := range line {
		rw := RuneWidth(r)
		for curW+rw > w && len(cur) > 0 {
			if lastSpace >= 0 && r != ' ' {
				out = append(out, strings.TrimRight(string(cur[:lastSpace]), " "))
				cur = append([]rune(nil), cur[lastSpace+1:]...)
			} else {
				out = append(out, strings.TrimRight(string(cur), " "))
				cur = cur[:0]
			}
			curW = StringWidth(string(cur))
			lastSpace = -1
		}
		if r == ' ' && len(cur) == 0 && len(out) > 0 {
			continue
		}
		if r == ' ' {
			lastSpace = len(cur)
		}
		cur = append(cur, r)
		curW += rw
	}
	if len(cur) > 0 || len(out) == 0 {
		out = append(out, strings.TrimRight(string(cur), " "))
	}
	return out
}

// Reveal returns the first n runes of lines, keeping line boundaries.
func Reveal(lines []string, n int) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if n <= 0 {
			break
		}
		runes := []rune(l)
		if len(runes) > n {
			out = append(out, string(runes[:n]))
			break
		}
		out = append(out, l)
		n -= len(runes)
	}
	return out
}

// RuneCount returns the total number of runes across lines.
func RuneCount(lines []string) int {
	n := 0
	for _, l := range lines {
		n += len([]rune(l))
	}
	return n
}

// truncate cuts s to at most w cells, marking the cut with an ellipsis.
func truncate(s string, w int) string {
	if StringWidth(s) <= w {
		return s
	}
	if w <= 1 {
		return strings.Repeat(".", max(w, 0))
	}
	var sb strings.Builder
	n := 0
	for _, r := range s {
		rw := RuneWidth(r)
		if n+rw > w-1 {
			break
		}
		sb.WriteRune(r)
		n += rw
	}
	sb.WriteRune('…')
	return sb.String()
}
