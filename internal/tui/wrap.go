package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/keytutor/internal/session"
)

type styledRune struct {
	s       string
	width   int
	isSpace bool
}

// paragraphView is the input of the free-text renderer.
type paragraphView struct {
	words        []session.WordState
	index        int
	input        string
	showMistakes bool
}

// buildParagraph styles every character of a free-text lesson. Completed
// words show what was typed against the target, the current word shows
// live input including overflow past the target, later words are pending.
func buildParagraph(p paragraphView) []styledRune {
	var out []styledRune
	for i, w := range p.words {
		if i > 0 {
			out = append(out, styledRune{s: " ", width: 1, isSpace: true})
		}
		target := []rune(w.Word)
		switch {
		case i < p.index && w.Completed:
			out = append(out, styleTyped(target, []rune(w.Typed), -1, p.showMistakes, doneStyle)...)
		case i == p.index:
			input := []rune(p.input)
			out = append(out, styleTyped(target, input, len(input), true, currentWordStyle)...)
		default:
			out = append(out, styleRunes(target, pendingStyle)...)
		}
	}
	return out
}

// styleTyped renders typed against target. Positions past the input use
// rest; cursor underlines that position when it is in range.
func styleTyped(target, typed []rune, cursor int, showMistakes bool, rest lipgloss.Style) []styledRune {
	n := max(len(target), len(typed))
	out := make([]styledRune, 0, n)
	for i := 0; i < n; i++ {
		var displayed rune
		var style lipgloss.Style
		switch {
		case i < len(typed) && i < len(target):
			displayed = target[i]
			style = correctStyle
			if typed[i] != target[i] && showMistakes {
				style = incorrectStyle
			}
		case i < len(typed):
			displayed = typed[i]
			style = correctStyle
			if showMistakes {
				style = incorrectStyle
			}
		default:
			displayed = target[i]
			style = rest
			if cursor < 0 && showMistakes {
				style = incorrectStyle
			}
		}
		if i == cursor {
			style = style.Underline(true)
		}
		out = append(out, styledRune{s: style.Render(string(displayed)), width: runewidth.RuneWidth(displayed)})
	}
	return out
}

func styleRunes(runes []rune, style lipgloss.Style) []styledRune {
	out := make([]styledRune, len(runes))
	for i, r := range runes {
		out[i] = styledRune{s: style.Render(string(r)), width: runewidth.RuneWidth(r)}
	}
	return out
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

// wrapStyledRunes breaks lines at the last space that fits width, or
// mid-word when a word is longer than the line.
func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(runes); {
		item := runes[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if item.isSpace {
				out.WriteString(renderStyledRunes(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
				i++
				continue
			}
			if lastSpaceIdx >= 0 {
				out.WriteString(renderStyledRunes(line[:lastSpaceIdx]))
				line = append([]styledRune{}, line[lastSpaceIdx+1:]...)
			} else {
				out.WriteString(renderStyledRunes(line))
				line = line[:0]
			}
			out.WriteRune('\n')
			lineWidth = lineWidthOf(line)
			lastSpaceIdx = lastSpaceIndex(line)
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
