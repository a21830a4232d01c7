package lessons

import (
	"errors"
	"strings"
	"testing"

	"github.com/verte-zerg/keytutor/internal/session"
)

func TestLoadEmbeddedCatalog(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.Lessons) != 3 {
		t.Fatalf("expected 3 lessons, got %d", len(c.Lessons))
	}
	if got := len(c.Typeable()); got != 12 {
		t.Fatalf("expected 12 typeable sub-lessons, got %d", got)
	}
}

func TestFindAndSession(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sub, lesson, ok := c.Find("2.4")
	if !ok {
		t.Fatalf("expected to find 2.4")
	}
	if lesson.ID != 2 {
		t.Fatalf("expected parent lesson 2, got %d", lesson.ID)
	}
	sl, err := sub.Session()
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if sl.Mode != session.ModeFreeText || !sl.Loop || sl.Duration != 240 {
		t.Fatalf("unexpected session lesson: %+v", sl)
	}
	if sl.Words[0] != "she" {
		t.Fatalf("unexpected first word %q", sl.Words[0])
	}

	theory, _, _ := c.Find("1.1")
	if _, err := theory.Session(); !errors.Is(err, ErrNotTypeable) {
		t.Fatalf("expected ErrNotTypeable, got %v", err)
	}

	if _, _, ok := c.Find("9.9"); ok {
		t.Fatalf("expected missing lesson")
	}
}

func TestParseRejectsInvalidCatalogs(t *testing.T) {
	cases := map[string]string{
		"duplicate": `
[[lessons]]
id = 1
[[lessons.sub]]
id = "1.1"
type = "words"
duration = 60
content = "a"
[[lessons.sub]]
id = "1.1"
type = "words"
duration = 60
content = "b"
`,
		"unknown type": `
[[lessons]]
id = 1
[[lessons.sub]]
id = "1.1"
type = "video"
duration = 60
`,
		"empty content": `
[[lessons]]
id = 1
[[lessons.sub]]
id = "1.1"
type = "keys"
duration = 60
content = "   "
`,
		"zero duration": `
[[lessons]]
id = 1
[[lessons.sub]]
id = "1.1"
type = "theory"
duration = 0
`,
	}
	for name, data := range cases {
		if _, err := Parse(data); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestProgress(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	first := c.Lessons[0]
	completed := map[string]bool{"1.2": true, "1.4": true}
	if got := first.Progress(completed); got != 50 {
		t.Fatalf("expected 50%%, got %d", got)
	}
}

func TestSearch(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	matches := c.Search("paragraph")
	if len(matches) == 0 {
		t.Fatalf("expected matches")
	}
	for _, m := range matches {
		title := strings.ToLower(m.Lesson.Title + " " + m.Sub.Title)
		if !strings.Contains(title, "p") {
			t.Fatalf("unexpected match %q", title)
		}
	}
	if got := c.Search("zzzzqqq"); len(got) != 0 {
		t.Fatalf("expected no matches, got %d", len(got))
	}
}

func TestDurationLabel(t *testing.T) {
	if got := (SubLesson{Duration: 180}).DurationLabel(); got != "3 min" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := (SubLesson{Duration: 90}).DurationLabel(); got != "1:30 min" {
		t.Fatalf("unexpected label %q", got)
	}
}
