package stats

import (
	"bytes"
	"strings"
	"testing"
)

func TestPlotSeries(t *testing.T) {
	var buf bytes.Buffer
	err := PlotSeries(&buf, "Test Plot", []Series{
		{Name: "A", Values: []float64{1, 2, 3, 2, 1}},
		{Name: "B", Values: []float64{1, 1, 2, 3, 4}},
	}, PlotOptions{Width: 5, Height: 4})
	if err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Test Plot") {
		t.Fatalf("expected title in output")
	}
	if !strings.Contains(out, "Scaled per series") {
		t.Fatalf("expected scale note in output")
	}
	if !strings.Contains(out, "Legend:") {
		t.Fatalf("expected legend in output")
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	expectedMin := 1 + 1 + 2 + 4 + 1
	if len(lines) < expectedMin {
		t.Fatalf("expected at least %d lines of output, got %d", expectedMin, len(lines))
	}
}

func TestPlotSeriesFixedDomain(t *testing.T) {
	var buf bytes.Buffer
	err := PlotSeries(&buf, "", []Series{
		{Name: "Accuracy", Values: []float64{100, 90, 80}},
	}, PlotOptions{Width: 12, Height: 5, Domain: PercentDomain})
	if err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "Scaled per series") {
		t.Fatalf("fixed domain must not print the scale note")
	}
	lines := strings.Split(out, "\n")
	if !strings.HasPrefix(lines[0], "100 │ ") {
		t.Fatalf("unexpected top axis line %q", lines[0])
	}
	if !strings.HasPrefix(lines[4], "  0 │ ") {
		t.Fatalf("unexpected bottom axis line %q", lines[4])
	}
}

func TestPlotSeriesSkipsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotSeries(&buf, "Empty", []Series{{Name: "A"}}, PlotOptions{}); err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestResample(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		n      int
		want   []float64
	}{
		{name: "same length", values: []float64{1, 2, 3}, n: 3, want: []float64{1, 2, 3}},
		{name: "shrink averages buckets", values: []float64{1, 3, 5, 7}, n: 2, want: []float64{2, 6}},
		{name: "stretch interpolates", values: []float64{0, 10}, n: 3, want: []float64{0, 5, 10}},
		{name: "single value", values: []float64{4}, n: 3, want: []float64{4, 4, 4}},
		{name: "single point", values: []float64{2, 4}, n: 1, want: []float64{3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resample(tt.values, tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("expected %v, got %v", tt.want, got)
				}
			}
		})
	}
	if resample(nil, 4) != nil {
		t.Fatalf("expected nil for empty input")
	}
}

func TestCanvasLineSetsBrailleDots(t *testing.T) {
	cv := newCanvas(2, 1)
	cv.line(0, point{x: 0, y: 3}, point{x: 3, y: 0}, dashes[0])
	if got := cv.row(0, false); got != "⡠⠊" {
		t.Fatalf("unexpected diagonal %q", got)
	}
	if cv.owner[0][0] != 0 || cv.owner[0][1] != 0 {
		t.Fatalf("expected series 0 to own both cells")
	}
	cv.set(1, point{x: 9, y: 9})
	if cv.owner[0][0] != 0 {
		t.Fatalf("out of range dots must be ignored")
	}
}

func TestScaleToDots(t *testing.T) {
	d := Domain{Min: 0, Max: 100}
	if got := scaleToDots(100, d, 8); got != 0 {
		t.Fatalf("max must map to the top row, got %d", got)
	}
	if got := scaleToDots(0, d, 8); got != 7 {
		t.Fatalf("min must map to the bottom row, got %d", got)
	}
	if got := scaleToDots(150, d, 8); got != 0 {
		t.Fatalf("values above the domain clamp to the top, got %d", got)
	}
}
