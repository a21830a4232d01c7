package statsui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/keytutor/internal/lessons"
	"github.com/verte-zerg/keytutor/internal/model"
)

type fakeSource struct {
	results   []model.Result
	completed map[string]bool
	err       error
	filters   []model.ResultFilter
}

func (f *fakeSource) ListResults(_ context.Context, filter model.ResultFilter) ([]model.Result, error) {
	f.filters = append(f.filters, filter)
	return f.results, f.err
}

func (f *fakeSource) CompletedLessons(context.Context) (map[string]bool, error) {
	return f.completed, f.err
}

func newTestModel(t *testing.T, src *fakeSource) *Model {
	t.Helper()
	catalog, err := lessons.Load()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	m := NewModel(src, catalog, Options{Window: 2})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

func TestOverviewAndTabs(t *testing.T) {
	src := &fakeSource{
		results: []model.Result{
			{Kind: model.KindLesson, LessonID: "1.2", WPM: 12, Accuracy: 80, Elapsed: 60, CreatedAt: time.Unix(0, 0)},
			{Kind: model.KindTest, WPM: 30, Accuracy: 96, Elapsed: 60, CreatedAt: time.Unix(60, 0)},
		},
		completed: map[string]bool{"1.2": true},
	}
	m := newTestModel(t, src)

	view := m.View()
	if !strings.Contains(view, "Avg WPM") || !strings.Contains(view, "21") {
		t.Fatalf("expected summary cards in overview:\n%s", view)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabResults {
		t.Fatalf("expected results tab, got %d", m.activeTab)
	}
	if !strings.Contains(m.View(), "test") {
		t.Fatalf("expected result rows in view")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if !strings.Contains(m.View(), "Course progress: 1/12") {
		t.Fatalf("expected course progress in lessons tab:\n%s", m.View())
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabOverview {
		t.Fatalf("expected tab wrap to overview")
	}
}

func TestFilterApply(t *testing.T) {
	src := &fakeSource{completed: map[string]bool{}}
	m := newTestModel(t, src)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	if !m.filterMode {
		t.Fatalf("expected filter mode")
	}
	m.filterInputs[0].SetValue("test")
	m.filterInputs[2].SetValue("5")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.filterMode {
		t.Fatalf("expected filter mode to close")
	}
	last := src.filters[len(src.filters)-1]
	if last.Kind != model.KindTest || last.Last != 5 {
		t.Fatalf("unexpected filter %+v", last)
	}
}

func TestParseFilterErrors(t *testing.T) {
	cases := [][4]string{
		{"video", "", "", ""},
		{"", "yesterday", "", ""},
		{"", "", "-1", ""},
		{"", "", "", "0"},
	}
	for _, c := range cases {
		if _, _, err := parseFilter(c[0], c[1], c[2], c[3]); err == nil {
			t.Fatalf("expected error for %v", c)
		}
	}
	filter, window, err := parseFilter("Lesson", "2026-01-02", "3", "4")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if filter.Kind != model.KindLesson || filter.Since == nil || filter.Last != 3 || window != 4 {
		t.Fatalf("unexpected parse result %+v %d", filter, window)
	}
}

func TestLoadErrorShown(t *testing.T) {
	m := newTestModel(t, &fakeSource{err: errors.New("disk on fire")})
	if !strings.Contains(m.View(), "disk on fire") {
		t.Fatalf("expected error in footer")
	}
}
