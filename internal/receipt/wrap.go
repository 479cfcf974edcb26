package receipt

import "strings"

// Wrap breaks text into lines of at most width runes.
//
// Words are packed greedily: a word joins the current line only if the line,
// one space and the word fit within width. A word longer than width is cut at
// the width boundary and its remainder starts the next line. Runs of
// whitespace collapse to a single space.
func Wrap(text string, width int) []string {
	if width < 1 {
		width = 1
	}

	var lines []string
	var cur []rune
	for _, word := range strings.Fields(text) {
		w := []rune(word)
		if len(cur) > 0 && len(cur)+1+len(w) <= width {
			cur = append(cur, ' ')
			cur = append(cur, w...)
			continue
		}
		if len(cur) > 0 {
			lines = append(lines, string(cur))
		}
		for len(w) > width {
			lines = append(lines, string(w[:width]))
			w = w[width:]
		}
		cur = append([]rune(nil), w...)
	}
	if len(cur) > 0 {
		lines = append(lines, string(cur))
	}
	return lines
}

// padRight pads s with spaces to width runes. Longer strings are returned as is.
func padRight(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
