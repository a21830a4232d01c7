package tui

import (
	"strings"
	"testing"

	"github.com/verte-zerg/keytutor/internal/keyboard"
	"github.com/verte-zerg/keytutor/internal/session"
)

func TestRenderWordBoxMarks(t *testing.T) {
	ok := renderWordBox(session.WordState{Word: "as", Typed: "as", Completed: true, Correct: true}, false, "", true)
	if !strings.Contains(ok, markCorrect) {
		t.Fatalf("expected check mark in %q", ok)
	}
	bad := renderWordBox(session.WordState{Word: "as", Typed: "ad", Completed: true}, false, "", true)
	if !strings.Contains(bad, markIncorrect) {
		t.Fatalf("expected cross mark in %q", bad)
	}
	hidden := renderWordBox(session.WordState{Word: "as", Typed: "ad", Completed: true}, false, "", false)
	if strings.Contains(hidden, markIncorrect) {
		t.Fatalf("expected no cross mark when mistakes are hidden")
	}
}

func TestRenderWordBoxesWindow(t *testing.T) {
	words := make([]session.WordState, 12)
	for i := range words {
		words[i] = session.WordState{Word: "word"}
	}
	out := renderWordBoxes(words, 0, "", true, 20)
	// Each box is three lines tall; only two rows are shown.
	if lines := strings.Count(out, "\n") + 1; lines != 6 {
		t.Fatalf("expected 6 lines, got %d:\n%s", lines, out)
	}
}

func TestFingerHint(t *testing.T) {
	info, ok := keyboard.Lookup('f')
	if !ok {
		t.Fatalf("expected mapping for f")
	}
	hint := fingerHint('f', info, ok)
	if !strings.Contains(hint, "Left Index") || !strings.Contains(hint, "Use your") {
		t.Fatalf("unexpected hint %q", hint)
	}
	if fingerHint('é', keyboard.KeyInfo{}, false) != "" {
		t.Fatalf("expected no hint for unmapped keys")
	}
	if kb := renderKeyboard('f', info, ok); !strings.Contains(kb, "space") || strings.Count(kb, "\n") != 3 {
		t.Fatalf("unexpected keyboard:\n%s", kb)
	}
}
