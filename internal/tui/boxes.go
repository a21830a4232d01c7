package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/keytutor/internal/session"
)

const (
	markCorrect   = "✓"
	markIncorrect = "✗"
)

// renderWordBox draws one word of a constrained lesson.
func renderWordBox(w session.WordState, current bool, input string, showMistakes bool) string {
	target := []rune(w.Word)
	var content string
	style := boxStyle
	switch {
	case current:
		typed := []rune(input)
		content = renderStyledRunes(styleTyped(target, typed, len(typed), true, currentWordStyle))
		style = currentBoxStyle
	case w.Completed:
		content = renderStyledRunes(styleTyped(target, []rune(w.Typed), -1, showMistakes, doneStyle))
		if w.Correct {
			content += " " + okMarkStyle.Render(markCorrect)
			style = correctBoxStyle
		} else if showMistakes {
			content += " " + incorrectStyle.Render(markIncorrect)
			style = incorrectBoxStyle
		}
	default:
		content = pendingStyle.Render(w.Word)
	}
	if content == "" {
		content = " "
	}
	return style.Render(content)
}

// renderWordBoxes lays boxes out in rows that fit width and returns the
// row holding the current word plus the one after it.
func renderWordBoxes(words []session.WordState, index int, input string, showMistakes bool, width int) string {
	if len(words) == 0 {
		return ""
	}
	type row struct {
		boxes   []string
		current bool
	}
	var rows []row
	var cur row
	curWidth := 0
	for i, w := range words {
		box := renderWordBox(w, i == index, input, showMistakes)
		boxWidth := lipgloss.Width(box)
		if width > 0 && curWidth+boxWidth > width && len(cur.boxes) > 0 {
			rows = append(rows, cur)
			cur = row{}
			curWidth = 0
		}
		cur.boxes = append(cur.boxes, box)
		cur.current = cur.current || i == index
		curWidth += boxWidth
	}
	rows = append(rows, cur)

	start := 0
	for i, r := range rows {
		if r.current {
			start = i
			break
		}
	}
	end := min(start+2, len(rows))
	rendered := make([]string, 0, end-start)
	for _, r := range rows[start:end] {
		rendered = append(rendered, lipgloss.JoinHorizontal(lipgloss.Top, r.boxes...))
	}
	return strings.Join(rendered, "\n")
}
