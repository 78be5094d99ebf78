package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// wrapText flows text into lines of at most width cells and styles each line.
// Runs of whitespace collapse to one space; words wider than a line are cut.
func wrapText(text string, style lipgloss.Style, width int) string {
	words := strings.Fields(text)
	if width <= 0 {
		return style.Render(strings.Join(words, " "))
	}
	lines := wordLines(words, width)
	for i, line := range lines {
		lines[i] = style.Render(line)
	}
	return strings.Join(lines, "\n")
}

func wordLines(words []string, width int) []string {
	var lines []string
	var cur strings.Builder
	curWidth := 0
	flush := func() {
		if curWidth > 0 {
			lines = append(lines, cur.String())
		}
		cur.Reset()
		curWidth = 0
	}
	for _, word := range words {
		w := runewidth.StringWidth(word)
		if curWidth > 0 && curWidth+1+w <= width {
			cur.WriteByte(' ')
			cur.WriteString(word)
			curWidth += 1 + w
			continue
		}
		flush()
		for w > width {
			head, rest := cutCells(word, width)
			lines = append(lines, head)
			word, w = rest, runewidth.StringWidth(rest)
		}
		cur.WriteString(word)
		curWidth = w
	}
	flush()
	return lines
}

// cutCells splits s after the longest prefix that fits in width cells.
// At least one rune is always taken.
func cutCells(s string, width int) (string, string) {
	used := 0
	for i, r := range s {
		rw := runewidth.RuneWidth(r)
		if used+rw > width && i > 0 {
			return s[:i], s[i:]
		}
		used += rw
	}
	return s, ""
}
