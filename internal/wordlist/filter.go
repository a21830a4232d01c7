package wordlist

import "github.com/verte-zerg/keytutor/internal/keyboard"

// FilterFunc returns true when a word should be kept.
type FilterFunc func(string) bool

// Typeable keeps words whose every character sits on the keyboard map,
// so finger guidance is available throughout.
func Typeable(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if _, ok := keyboard.Lookup(r); !ok {
			return false
		}
	}
	return true
}
