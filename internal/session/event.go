package session

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// KeyKind classifies a key event.
type KeyKind int

// Key kinds understood by the engine.
const (
	KeyOther KeyKind = iota
	KeyRune
	KeySpace
	KeyBackspace
)

// KeyEvent is one discrete key press delivered by the host.
type KeyEvent struct {
	Kind KeyKind
	Rune rune
	Ctrl bool
	Alt  bool
}

// RuneKey returns the event for a printable character. A space rune is
// reported as KeySpace.
func RuneKey(r rune) KeyEvent {
	if r == ' ' {
		return SpaceKey()
	}
	return KeyEvent{Kind: KeyRune, Rune: r}
}

// SpaceKey returns the word-boundary event.
func SpaceKey() KeyEvent {
	return KeyEvent{Kind: KeySpace, Rune: ' '}
}

// BackspaceKey returns the erase event.
func BackspaceKey() KeyEvent {
	return KeyEvent{Kind: KeyBackspace}
}

// ParseKey maps a key identifier such as "a", " ", "Space" or
// "Backspace" to an event. Other named keys ("Shift", "ArrowLeft", ...)
// become KeyOther.
func ParseKey(name string) KeyEvent {
	if utf8.RuneCountInString(name) == 1 {
		r, _ := utf8.DecodeRuneInString(name)
		return RuneKey(r)
	}
	switch strings.ToLower(name) {
	case "space", "spacebar":
		return SpaceKey()
	case "backspace":
		return BackspaceKey()
	default:
		return KeyEvent{Kind: KeyOther}
	}
}

// Ignored reports whether the event carries nothing the engine acts on:
// modifier chords, unrecognised keys and non-printable runes.
func (k KeyEvent) Ignored() bool {
	if k.Ctrl || k.Alt {
		return true
	}
	switch k.Kind {
	case KeySpace, KeyBackspace:
		return false
	case KeyRune:
		return !unicode.IsPrint(k.Rune)
	default:
		return true
	}
}
