package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/keytutor/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "keytutor.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return s
}

func TestInsertAndListResults(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, kind := range []string{model.KindLesson, model.KindTest, model.KindLesson} {
		_, err := s.InsertResult(ctx, model.Result{
			Kind:      kind,
			LessonID:  "1.2",
			WPM:       20 + i,
			Accuracy:  90,
			Duration:  60,
			Elapsed:   60,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			Samples:   []model.ProgressSample{{Time: 1, Accuracy: 100}, {Time: 2, Accuracy: 80}},
		})
		if err != nil {
			t.Fatalf("insert result %d: %v", i, err)
		}
	}

	all, err := s.ListResults(ctx, model.ResultFilter{})
	if err != nil {
		t.Fatalf("list results: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 results, got %d", len(all))
	}
	if all[0].WPM != 20 || all[2].WPM != 22 {
		t.Fatalf("expected chronological order, got %+v", all)
	}
	if all[0].ID == "" {
		t.Fatalf("expected generated id")
	}

	lessons, err := s.ListResults(ctx, model.ResultFilter{Kind: model.KindLesson})
	if err != nil {
		t.Fatalf("list lessons: %v", err)
	}
	if len(lessons) != 2 {
		t.Fatalf("expected 2 lesson results, got %d", len(lessons))
	}

	last, err := s.ListResults(ctx, model.ResultFilter{Last: 2})
	if err != nil {
		t.Fatalf("list last: %v", err)
	}
	if len(last) != 2 || last[0].WPM != 21 || last[1].WPM != 22 {
		t.Fatalf("unexpected last results %+v", last)
	}

	since := base.Add(90 * time.Second)
	recent, err := s.ListResults(ctx, model.ResultFilter{Since: &since})
	if err != nil {
		t.Fatalf("list since: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("expected 1 recent result, got %d", len(recent))
	}

	samples, err := s.ListSamples(ctx, all[0].ID)
	if err != nil {
		t.Fatalf("list samples: %v", err)
	}
	if len(samples) != 2 || samples[1].Accuracy != 80 {
		t.Fatalf("unexpected samples %+v", samples)
	}
}

func TestListResultsOrdersWithinSecond(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, offset := range []time.Duration{0, 500 * time.Millisecond, time.Second} {
		_, err := s.InsertResult(ctx, model.Result{
			Kind:      model.KindTest,
			WPM:       30 + i,
			Accuracy:  95,
			Duration:  60,
			Elapsed:   60,
			CreatedAt: base.Add(offset),
		})
		if err != nil {
			t.Fatalf("insert result %d: %v", i, err)
		}
	}

	results, err := s.ListResults(ctx, model.ResultFilter{})
	if err != nil {
		t.Fatalf("list results: %v", err)
	}
	for i, r := range results {
		if r.WPM != 30+i {
			t.Fatalf("index %d: expected wpm %d, got %+v", i, 30+i, results)
		}
	}
	if !results[1].CreatedAt.Equal(base.Add(500 * time.Millisecond)) {
		t.Fatalf("unexpected timestamp %v", results[1].CreatedAt)
	}

	last, err := s.ListResults(ctx, model.ResultFilter{Last: 1})
	if err != nil {
		t.Fatalf("list last: %v", err)
	}
	if len(last) != 1 || last[0].WPM != 32 {
		t.Fatalf("unexpected last result %+v", last)
	}
}

func TestCompletedLessonsAndReset(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"1.2", "1.4", "1.2"} {
		if err := s.MarkLessonCompleted(ctx, id); err != nil {
			t.Fatalf("mark %s: %v", id, err)
		}
	}
	if _, err := s.InsertResult(ctx, model.Result{Kind: model.KindLesson, LessonID: "1.2"}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	done, err := s.CompletedLessons(ctx)
	if err != nil {
		t.Fatalf("completed: %v", err)
	}
	if len(done) != 2 || !done["1.4"] {
		t.Fatalf("unexpected completed lessons %v", done)
	}

	progress, err := s.Progress(ctx)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if len(progress.Results) != 1 || len(progress.CompletedLessons) != 2 || progress.CompletedLessons[0] != "1.2" {
		t.Fatalf("unexpected progress %+v", progress)
	}
	if progress.LastActivity.IsZero() {
		t.Fatalf("expected last activity")
	}

	if err := s.ResetProgress(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	done, err = s.CompletedLessons(ctx)
	if err != nil {
		t.Fatalf("completed after reset: %v", err)
	}
	results, err := s.ListResults(ctx, model.ResultFilter{})
	if err != nil {
		t.Fatalf("list after reset: %v", err)
	}
	if len(done) != 0 || len(results) != 0 {
		t.Fatalf("expected empty progress after reset")
	}
}

func TestCertificates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.InsertCertificate(ctx, model.Certificate{
		UserName:        "Sam",
		CourseName:      "Touch Typing",
		CompletionDate:  time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC),
		AverageWPM:      31,
		AverageAccuracy: 94,
	})
	if err != nil {
		t.Fatalf("insert certificate: %v", err)
	}
	certs, err := s.ListCertificates(ctx)
	if err != nil {
		t.Fatalf("list certificates: %v", err)
	}
	if len(certs) != 1 || certs[0].ID != id || certs[0].AverageWPM != 31 {
		t.Fatalf("unexpected certificates %+v", certs)
	}
	if err := s.ResetProgress(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	certs, err = s.ListCertificates(ctx)
	if err != nil {
		t.Fatalf("list after reset: %v", err)
	}
	if len(certs) != 1 {
		t.Fatalf("expected certificates to survive reset")
	}
}
