// Package lessons provides the built-in lesson catalog.
package lessons

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/sahilm/fuzzy"

	"github.com/verte-zerg/keytutor/internal/session"
)

//go:embed catalog.toml
var catalogData string

// ErrNotTypeable is returned for lessons that only present reading material.
var ErrNotTypeable = errors.New("lesson has no typing exercise")

// Kind is the exercise type of a sub-lesson.
type Kind string

// Sub-lesson kinds.
const (
	KindTheory     Kind = "theory"
	KindKeys       Kind = "keys"
	KindWords      Kind = "words"
	KindCharacters Kind = "characters"
	KindParagraph  Kind = "paragraph"
)

// SubLesson is a single exercise or reading unit.
type SubLesson struct {
	ID       string `toml:"id"`
	Title    string `toml:"title"`
	Kind     Kind   `toml:"type"`
	Duration int    `toml:"duration"`
	Content  string `toml:"content"`
}

// Lesson groups related sub-lessons.
type Lesson struct {
	ID    int         `toml:"id"`
	Title string      `toml:"title"`
	Subs  []SubLesson `toml:"sub"`
}

// Catalog is the ordered list of lessons.
type Catalog struct {
	Lessons []Lesson `toml:"lessons"`
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(catalogData)
}

// Parse decodes and validates a TOML catalog.
func Parse(data string) (*Catalog, error) {
	var c Catalog
	if _, err := toml.Decode(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode lesson catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	seen := map[string]struct{}{}
	for _, l := range c.Lessons {
		for _, s := range l.Subs {
			if s.ID == "" {
				return fmt.Errorf("lesson %d has a sub-lesson without id", l.ID)
			}
			if _, ok := seen[s.ID]; ok {
				return fmt.Errorf("duplicate sub-lesson id %q", s.ID)
			}
			seen[s.ID] = struct{}{}
			switch s.Kind {
			case KindTheory, KindKeys, KindWords, KindCharacters, KindParagraph:
			default:
				return fmt.Errorf("sub-lesson %s has unknown type %q", s.ID, s.Kind)
			}
			if s.Duration <= 0 {
				return fmt.Errorf("sub-lesson %s has non-positive duration", s.ID)
			}
			if s.Typeable() && len(Tokenize(s.Content)) == 0 {
				return fmt.Errorf("sub-lesson %s has no content", s.ID)
			}
		}
	}
	return nil
}

// Find returns the sub-lesson with the given id and its parent lesson.
func (c *Catalog) Find(id string) (SubLesson, Lesson, bool) {
	for _, l := range c.Lessons {
		for _, s := range l.Subs {
			if s.ID == id {
				return s, l, true
			}
		}
	}
	return SubLesson{}, Lesson{}, false
}

// Typeable returns every sub-lesson with a typing exercise, in order.
func (c *Catalog) Typeable() []SubLesson {
	var out []SubLesson
	for _, l := range c.Lessons {
		for _, s := range l.Subs {
			if s.Typeable() {
				out = append(out, s)
			}
		}
	}
	return out
}

// Progress returns the percentage of a lesson's typeable sub-lessons
// found in completed.
func (l Lesson) Progress(completed map[string]bool) int {
	total, done := 0, 0
	for _, s := range l.Subs {
		if !s.Typeable() {
			continue
		}
		total++
		if completed[s.ID] {
			done++
		}
	}
	if total == 0 {
		return 0
	}
	return done * 100 / total
}

// Typeable reports whether the sub-lesson is a typing exercise.
func (s SubLesson) Typeable() bool {
	return s.Kind != KindTheory
}

// Mode returns the entry mode for the sub-lesson kind.
func (s SubLesson) Mode() session.Mode {
	if s.Kind == KindParagraph {
		return session.ModeFreeText
	}
	return session.ModeConstrained
}

// Session builds the looping engine lesson for a typing exercise.
func (s SubLesson) Session() (session.Lesson, error) {
	if !s.Typeable() {
		return session.Lesson{}, ErrNotTypeable
	}
	return session.Lesson{
		Words:    Tokenize(s.Content),
		Duration: s.Duration,
		Mode:     s.Mode(),
		Loop:     true,
	}, nil
}

// DurationLabel formats the duration for listings, e.g. "3 min".
func (s SubLesson) DurationLabel() string {
	minutes := s.Duration / 60
	if s.Duration%60 == 0 {
		return fmt.Sprintf("%d min", minutes)
	}
	return fmt.Sprintf("%d:%02d min", minutes, s.Duration%60)
}

// Tokenize splits lesson text into whitespace-delimited words.
func Tokenize(text string) []string {
	return strings.Fields(text)
}

// Match is a search hit.
type Match struct {
	Sub    SubLesson
	Lesson Lesson
	Score  int
}

type searchSource []searchEntry

type searchEntry struct {
	sub    SubLesson
	lesson Lesson
}

func (s searchSource) String(i int) string {
	return s[i].lesson.Title + " " + s[i].sub.Title
}

func (s searchSource) Len() int { return len(s) }

// Search fuzzy-matches query against lesson and sub-lesson titles, best first.
func (c *Catalog) Search(query string) []Match {
	var src searchSource
	for _, l := range c.Lessons {
		for _, s := range l.Subs {
			src = append(src, searchEntry{sub: s, lesson: l})
		}
	}
	matches := fuzzy.FindFrom(query, src)
	out := make([]Match, 0, len(matches))
	for _, m := range matches {
		entry := src[m.Index]
		out = append(out, Match{Sub: entry.sub, Lesson: entry.lesson, Score: m.Score})
	}
	return out
}
