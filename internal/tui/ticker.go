package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// tickMsg is delivered once per interval for the registration with the
// same id. Messages from older registrations are dropped.
type tickMsg struct {
	id int
}

// ticker adapts tea.Tick to the session timer contract. Schedule only
// records the first tick command; the model returns it from Update via
// Flush, so ticks always arrive on the Bubble Tea event loop.
type ticker struct {
	interval time.Duration
	id       int
	fn       func()
	pending  tea.Cmd
}

func newTicker(interval time.Duration) *ticker {
	return &ticker{interval: interval}
}

// Schedule implements session.Timer.
func (t *ticker) Schedule(fn func()) func() {
	t.id++
	id := t.id
	t.fn = fn
	t.pending = t.tick(id)
	return func() {
		if t.id != id {
			return
		}
		t.fn = nil
		t.pending = nil
	}
}

func (t *ticker) tick(id int) tea.Cmd {
	return tea.Tick(t.interval, func(time.Time) tea.Msg {
		return tickMsg{id: id}
	})
}

// Update runs the registered callback for a live tick and returns the
// next tick command while the registration stays active.
func (t *ticker) Update(msg tickMsg) tea.Cmd {
	if msg.id != t.id || t.fn == nil {
		return nil
	}
	t.fn()
	if msg.id != t.id || t.fn == nil {
		return nil
	}
	return t.tick(msg.id)
}

// Flush returns and clears the tick command of a fresh registration.
func (t *ticker) Flush() tea.Cmd {
	cmd := t.pending
	t.pending = nil
	return cmd
}

// active reports whether a registration is live.
func (t *ticker) active() bool {
	return t.fn != nil
}
