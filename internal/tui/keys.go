package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/keytutor/internal/session"
)

// keyEvents converts a Bubble Tea key message into engine events. Batched
// runes become one event each; pastes and control keys map to KeyOther.
func keyEvents(msg tea.KeyMsg) []session.KeyEvent {
	switch msg.Type {
	case tea.KeySpace:
		return []session.KeyEvent{session.SpaceKey()}
	case tea.KeyBackspace, tea.KeyCtrlH:
		return []session.KeyEvent{session.BackspaceKey()}
	case tea.KeyRunes:
		if msg.Paste {
			return []session.KeyEvent{{Kind: session.KeyOther}}
		}
		events := make([]session.KeyEvent, 0, len(msg.Runes))
		for _, r := range msg.Runes {
			ev := session.RuneKey(r)
			ev.Alt = msg.Alt
			events = append(events, ev)
		}
		return events
	default:
		return []session.KeyEvent{{Kind: session.KeyOther, Ctrl: isCtrl(msg.Type), Alt: msg.Alt}}
	}
}

func isCtrl(t tea.KeyType) bool {
	return t >= tea.KeyCtrlAt && t <= tea.KeyCtrlUnderscore
}
