package tui

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/keytutor/internal/keyboard"
)

// Row indents follow a physical keyboard stagger.
var rowIndent = []int{0, 1, 3}

// renderKeyboard draws the guided layout and highlights next in the
// colour of the finger that types it.
func renderKeyboard(next rune, info keyboard.KeyInfo, ok bool) string {
	lines := make([]string, 0, len(keyboard.Layout))
	for rowIdx, row := range keyboard.Layout {
		if len(row) == 1 && row[0] == ' ' {
			label := strings.Repeat(" ", 9) + "space" + strings.Repeat(" ", 9)
			lines = append(lines, strings.Repeat(" ", 8)+styleKey(label, ok && next == ' ', info))
			continue
		}
		keys := make([]string, 0, len(row))
		for _, r := range row {
			keys = append(keys, styleKey(string(r), ok && keyMatches(r, next), info))
		}
		indent := ""
		if rowIdx < len(rowIndent) {
			indent = strings.Repeat(" ", rowIndent[rowIdx])
		}
		lines = append(lines, indent+strings.Join(keys, " "))
	}
	return strings.Join(lines, "\n")
}

func keyMatches(key, next rune) bool {
	return unicode.ToLower(key) == unicode.ToLower(next)
}

func styleKey(label string, highlight bool, info keyboard.KeyInfo) string {
	if !highlight {
		return keyStyle.Render(label)
	}
	return keyStyle.
		Background(lipgloss.Color(info.Finger.Color())).
		Foreground(lipgloss.Color("#101010")).
		Bold(true).
		Render(label)
}

// fingerHint names the finger for the next character.
func fingerHint(next rune, info keyboard.KeyInfo, ok bool) string {
	if !ok {
		return ""
	}
	label := string(next)
	if next == ' ' {
		label = "space"
	}
	finger := lipgloss.NewStyle().Foreground(lipgloss.Color(info.Finger.Color())).Bold(true).Render(info.Finger.String())
	return hintStyle.Render(fmt.Sprintf("Next: %s  Use your ", label)) + finger + hintStyle.Render(" finger")
}
