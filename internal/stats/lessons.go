package stats

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/verte-zerg/keytutor/internal/lessons"
	"github.com/verte-zerg/keytutor/internal/model"
)

// LessonScore aggregates the results of one catalog lesson.
type LessonScore struct {
	LessonID    string
	Attempts    int
	AvgWPM      int
	AvgAccuracy int
	BestWPM     int
}

// LessonScores groups lesson results by lesson id, ordered by id.
func LessonScores(results []model.Result) []LessonScore {
	byID := map[string][]model.Result{}
	for _, r := range results {
		if r.Kind != model.KindLesson || r.LessonID == "" {
			continue
		}
		byID[r.LessonID] = append(byID[r.LessonID], r)
	}
	scores := make([]LessonScore, 0, len(byID))
	for id, rs := range byID {
		s := Summarize(rs)
		scores = append(scores, LessonScore{
			LessonID:    id,
			Attempts:    s.Count,
			AvgWPM:      s.AvgWPM,
			AvgAccuracy: s.AvgAccuracy,
			BestWPM:     s.BestWPM,
		})
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].LessonID < scores[j].LessonID })
	return scores
}

// WeakLessons returns up to n lessons with the lowest average accuracy.
func WeakLessons(scores []LessonScore, n int) []LessonScore {
	out := append([]LessonScore(nil), scores...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].AvgAccuracy == out[j].AvgAccuracy {
			return out[i].LessonID < out[j].LessonID
		}
		return out[i].AvgAccuracy < out[j].AvgAccuracy
	})
	return head(out, n)
}

// MostPracticed returns up to n lessons by attempt count.
func MostPracticed(scores []LessonScore, n int) []LessonScore {
	out := append([]LessonScore(nil), scores...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Attempts == out[j].Attempts {
			return out[i].LessonID < out[j].LessonID
		}
		return out[i].Attempts > out[j].Attempts
	})
	return head(out, n)
}

func head(scores []LessonScore, n int) []LessonScore {
	if n <= 0 || n > len(scores) {
		return scores
	}
	return scores[:n]
}

// CourseProgress returns the completed share of typeable catalog lessons.
func CourseProgress(catalog *lessons.Catalog, completed map[string]bool) (done, total, percent int) {
	for _, s := range catalog.Typeable() {
		total++
		if completed[s.ID] {
			done++
		}
	}
	if total > 0 {
		percent = int(math.Round(float64(done) * 100 / float64(total)))
	}
	return done, total, percent
}

// LessonRows formats catalog lessons as table cells with completion marks
// and per-lesson scores.
func LessonRows(catalog *lessons.Catalog, completed map[string]bool, scores []LessonScore) [][]string {
	byID := make(map[string]LessonScore, len(scores))
	for _, s := range scores {
		byID[s.LessonID] = s
	}
	var rows [][]string
	for _, l := range catalog.Lessons {
		for _, sub := range l.Subs {
			mark := " "
			if completed[sub.ID] {
				mark = "✓"
			}
			attempts, wpm, acc := "-", "-", "-"
			if s, ok := byID[sub.ID]; ok {
				attempts = fmt.Sprintf("%d", s.Attempts)
				wpm = fmt.Sprintf("%d", s.BestWPM)
				acc = fmt.Sprintf("%d%%", s.AvgAccuracy)
			}
			if !sub.Typeable() {
				attempts, wpm, acc = "", "", ""
			}
			rows = append(rows, []string{mark, sub.ID, sub.Title, string(sub.Kind), attempts, wpm, acc})
		}
	}
	return rows
}

// RenderLessonTable prints the catalog with completion and scores.
func RenderLessonTable(w io.Writer, catalog *lessons.Catalog, completed map[string]bool, scores []LessonScore) error {
	done, total, percent := CourseProgress(catalog, completed)
	return textTable{
		title:   fmt.Sprintf("Lessons (%d/%d completed, %d%%)", done, total, percent),
		headers: []string{"", "ID", "Title", "Type", "Attempts", "Best WPM", "Avg Acc"},
		rows:    LessonRows(catalog, completed, scores),
		right:   map[int]bool{4: true, 5: true, 6: true},
	}.write(w)
}
