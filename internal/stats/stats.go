// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/keytutor/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summary aggregates a set of results.
type Summary struct {
	Count       int
	AvgWPM      int
	AvgAccuracy int
	BestWPM     int
	// TotalTime is the summed elapsed time in seconds.
	TotalTime int
}

// Summarize computes rounded averages and the best WPM over results.
func Summarize(results []model.Result) Summary {
	if len(results) == 0 {
		return Summary{}
	}
	var sumWPM, sumAcc int
	s := Summary{Count: len(results)}
	for _, r := range results {
		sumWPM += r.WPM
		sumAcc += r.Accuracy
		s.TotalTime += r.Elapsed
		if r.WPM > s.BestWPM {
			s.BestWPM = r.WPM
		}
	}
	n := float64(len(results))
	s.AvgWPM = int(math.Round(float64(sumWPM) / n))
	s.AvgAccuracy = int(math.Round(float64(sumAcc) / n))
	return s
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := seriesMinMax(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

func seriesMinMax(values []float64) (float64, float64) {
	minVal, maxVal := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	return minVal, maxVal
}

// FormatClock formats seconds as m:ss.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// RenderSummary prints the headline numbers for a result set.
func RenderSummary(w io.Writer, s Summary) error {
	if s.Count == 0 {
		_, err := fmt.Fprintln(w, "No results yet. Finish a lesson or a test first.")
		return err
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Tests: %d", s.Count),
		fmt.Sprintf("Avg WPM: %d", s.AvgWPM),
		fmt.Sprintf("Best WPM: %d", s.BestWPM),
		fmt.Sprintf("Avg Accuracy: %d%%", s.AvgAccuracy),
		fmt.Sprintf("Time typing: %s", FormatClock(s.TotalTime)),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// CurveOptions sizes the learning curve plots.
type CurveOptions struct {
	Window     int
	TotalWidth int
	Height     int
	ForceColor bool
}

// RenderCurves prints WPM and accuracy curves over results, each
// smoothed with a moving average of opts.Window.
func RenderCurves(w io.Writer, results []model.Result, opts CurveOptions) error {
	if len(results) == 0 {
		return nil
	}
	wpms := make([]float64, len(results))
	accs := make([]float64, len(results))
	for i, r := range results {
		wpms[i] = float64(r.WPM)
		accs[i] = float64(r.Accuracy)
	}
	width := 0
	if opts.TotalWidth > 0 {
		width = PlotWidthFor(opts.TotalWidth)
	}
	if err := PlotSeries(w, "WPM", []Series{
		{Name: "WPM", Values: MovingAverage(wpms, opts.Window)},
	}, PlotOptions{Width: width, Height: opts.Height, ForceColor: opts.ForceColor}); err != nil {
		return err
	}
	return PlotSeries(w, "Accuracy", []Series{
		{Name: "Accuracy", Values: MovingAverage(accs, opts.Window)},
	}, PlotOptions{Width: width, Height: opts.Height, ForceColor: opts.ForceColor, Domain: PercentDomain})
}

// RenderAccuracyChart plots per-second accuracy of one session on a 0-100
// axis with the session time range underneath.
func RenderAccuracyChart(w io.Writer, samples []model.ProgressSample, totalWidth, height int) error {
	if len(samples) == 0 {
		return nil
	}
	values := make([]float64, len(samples))
	for i, s := range samples {
		values[i] = float64(s.Accuracy)
	}
	width := 0
	if totalWidth > 0 {
		width = plotWidthFor(totalWidth, 3)
	}
	if err := PlotSeries(w, "Accuracy over time", []Series{{Name: "Accuracy", Values: values}},
		PlotOptions{Width: width, Height: height, Domain: PercentDomain}); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%s .. %s\n", FormatClock(samples[0].Time), FormatClock(samples[len(samples)-1].Time))
	return err
}

// RenderResultTable prints one row per result, oldest first.
func RenderResultTable(w io.Writer, results []model.Result) error {
	if len(results) == 0 {
		return nil
	}
	headers := []string{"Date", "Type", "Lesson", "WPM", "Accuracy", "Mistakes", "Time"}
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, ResultRow(r))
	}
	return textTable{
		title:   "Results",
		headers: headers,
		rows:    rows,
		right:   map[int]bool{3: true, 4: true, 5: true, 6: true},
	}.write(w)
}

// ResultRow formats a result as table cells.
func ResultRow(r model.Result) []string {
	lesson := r.LessonID
	if lesson == "" {
		lesson = "-"
	}
	return []string{
		r.CreatedAt.Local().Format("2006-01-02 15:04"),
		r.Kind,
		lesson,
		fmt.Sprintf("%d", r.WPM),
		fmt.Sprintf("%d%%", r.Accuracy),
		fmt.Sprintf("%d", r.Mistakes),
		FormatClock(r.Elapsed),
	}
}
