package stats

import (
	"context"
	"io"

	"github.com/verte-zerg/keytutor/internal/lessons"
	"github.com/verte-zerg/keytutor/internal/model"
)

// Source is the read side of the result store.
type Source interface {
	ListResults(ctx context.Context, filter model.ResultFilter) ([]model.Result, error)
	CompletedLessons(ctx context.Context) (map[string]bool, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Results   []model.Result
	Summary   Summary
	Completed map[string]bool
	Lessons   []LessonScore
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, src Source, filter model.ResultFilter) (Report, error) {
	results, err := src.ListResults(ctx, filter)
	if err != nil {
		return Report{}, err
	}
	completed, err := src.CompletedLessons(ctx)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Results:   results,
		Summary:   Summarize(results),
		Completed: completed,
		Lessons:   LessonScores(results),
	}, nil
}

// RenderPlain writes the full text report.
func RenderPlain(w io.Writer, r Report, catalog *lessons.Catalog, curves CurveOptions) error {
	if err := RenderSummary(w, r.Summary); err != nil {
		return err
	}
	if err := RenderCurves(w, r.Results, curves); err != nil {
		return err
	}
	if err := RenderResultTable(w, r.Results); err != nil {
		return err
	}
	return RenderLessonTable(w, catalog, r.Completed, r.Lessons)
}
