// Package stats summarises typing results and renders text reports.
package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

// Series is a named sequence of values plotted left to right.
type Series struct {
	Name   string
	Values []float64
}

// Domain pins the vertical range shared by every series.
type Domain struct {
	Min float64
	Max float64
}

// PercentDomain is the 0-100 range used for accuracy charts.
var PercentDomain = &Domain{Min: 0, Max: 100}

// PlotOptions controls plot size and scaling.
type PlotOptions struct {
	Width  int
	Height int
	// ForceColor emits ANSI colours even when w is not a terminal.
	ForceColor bool
	// Domain scales all series to one fixed range. Without it each
	// series is scaled to its own min/max.
	Domain *Domain
}

const (
	defaultPlotHeight   = 10
	minPlotWidth        = 10
	axisLabelTop        = "max"
	axisLabelMid        = "mid"
	axisLabelBottom     = "min"
	axisSeparator       = " │ "
	scaleNote           = "Scaled per series; see min/max below."
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
	brailleBase         = 0x2800
)

// seriesColors are ANSI foreground codes, one per series.
var seriesColors = []string{"36", "35", "33", "32", "34"}

type dashPattern struct {
	name   string
	period int
	on     int
}

// dashes tells overlapping series apart without colour.
var dashes = []dashPattern{
	{name: "solid", period: 1, on: 1},
	{name: "dashed", period: 6, on: 3},
	{name: "dotted", period: 4, on: 1},
}

func (d dashPattern) draws(x int) bool {
	if d.period <= 1 {
		return true
	}
	if x < 0 {
		x = -x
	}
	return x%d.period < d.on
}

// dotBits maps a dot inside a 2x4 braille cell to its bit.
var dotBits = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

type point struct{ x, y int }

// canvas is a grid of braille cells, each packing 2x4 dots.
type canvas struct {
	cols, rows int
	cells      [][]uint8
	// owner is the first series that drew into a cell, -1 when empty.
	owner [][]int
}

func newCanvas(cols, rows int) *canvas {
	c := &canvas{cols: cols, rows: rows}
	c.cells = make([][]uint8, rows)
	c.owner = make([][]int, rows)
	for y := range c.cells {
		c.cells[y] = make([]uint8, cols)
		c.owner[y] = make([]int, cols)
		for x := range c.owner[y] {
			c.owner[y][x] = -1
		}
	}
	return c
}

func (c *canvas) set(series int, p point) {
	cx, cy := p.x/2, p.y/4
	if p.x < 0 || p.y < 0 || cx >= c.cols || cy >= c.rows {
		return
	}
	c.cells[cy][cx] |= dotBits[p.y%4][p.x%2]
	if c.owner[cy][cx] < 0 {
		c.owner[cy][cx] = series
	}
}

// line draws from a to b with Bresenham's algorithm.
func (c *canvas) line(series int, a, b point, dash dashPattern) {
	dx, dy := abs(b.x-a.x), -abs(b.y-a.y)
	sx, sy := sign(b.x-a.x), sign(b.y-a.y)
	e := dx + dy
	p := a
	for {
		if dash.draws(p.x) {
			c.set(series, p)
		}
		if p == b {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			p.x += sx
		}
		if e2 <= dx {
			e += dx
			p.y += sy
		}
	}
}

func (c *canvas) polyline(series int, pts []point, dash dashPattern) {
	for i, p := range pts {
		if i == 0 {
			if dash.draws(p.x) {
				c.set(series, p)
			}
			continue
		}
		c.line(series, pts[i-1], p, dash)
	}
}

func (c *canvas) row(y int, color bool) string {
	var b strings.Builder
	for x := 0; x < c.cols; x++ {
		ch := rune(brailleBase + int(c.cells[y][x]))
		if owner := c.owner[y][x]; color && owner >= 0 {
			fmt.Fprintf(&b, "\x1b[%sm%c%s", seriesColors[owner%len(seriesColors)], ch, colorReset)
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

// PlotSeries renders a braille line chart of series.
func PlotSeries(w io.Writer, title string, series []Series, opts PlotOptions) error {
	series = nonEmpty(series)
	if len(series) == 0 {
		return nil
	}
	height := opts.Height
	if height <= 0 {
		height = defaultPlotHeight
	}
	labels := axisLabels(height, opts.Domain)
	axisWidth := labelWidth(labels)
	width := opts.Width
	if width <= 0 {
		width = plotWidthFor(terminalWidth(), axisWidth)
	}
	width = max(width, minPlotWidth)

	cv := newCanvas(width, height)
	bounds := make([]Domain, len(series))
	for i, s := range series {
		values := resample(s.Values, width)
		bounds[i] = boundsOf(values, opts.Domain)
		pts := make([]point, len(values))
		for x, v := range values {
			pts[x] = point{x: x * 2, y: scaleToDots(v, bounds[i], height*4)}
		}
		cv.polyline(i, pts, dashes[i%len(dashes)])
	}

	color := shouldUseColor(w, opts.ForceColor)
	var b strings.Builder
	if title != "" {
		b.WriteString(title + "\n")
	}
	if opts.Domain == nil {
		b.WriteString(scaleNote + "\n")
		for i, s := range series {
			fmt.Fprintf(&b, "%s: min=%.2f max=%.2f\n", s.Name, bounds[i].Min, bounds[i].Max)
		}
	}
	for y := 0; y < height; y++ {
		fmt.Fprintf(&b, "%*s%s%s\n", axisWidth, labels[y], axisSeparator, cv.row(y, color))
	}
	b.WriteString(legend(series, color) + "\n\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func nonEmpty(series []Series) []Series {
	out := make([]Series, 0, len(series))
	for _, s := range series {
		if len(s.Values) > 0 {
			out = append(out, s)
		}
	}
	return out
}

// resample stretches or shrinks values to n points: bucket means when
// shrinking, linear interpolation when stretching.
func resample(values []float64, n int) []float64 {
	if len(values) == 0 || n <= 0 {
		return nil
	}
	out := make([]float64, n)
	switch {
	case len(values) == n:
		copy(out, values)
	case len(values) > n:
		for i := range out {
			lo := i * len(values) / n
			hi := max((i+1)*len(values)/n, lo+1)
			out[i] = mean(values[lo:hi])
		}
	case len(values) == 1:
		for i := range out {
			out[i] = values[0]
		}
	default:
		step := float64(len(values)-1) / float64(n-1)
		for i := range out {
			pos := float64(i) * step
			j := min(int(pos), len(values)-2)
			frac := pos - float64(j)
			out[i] = values[j] + (values[j+1]-values[j])*frac
		}
	}
	return out
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func boundsOf(values []float64, domain *Domain) Domain {
	if domain != nil {
		return *domain
	}
	var d Domain
	d.Min, d.Max = seriesMinMax(values)
	if d.Max-d.Min < 1e-9 {
		d.Min--
		d.Max++
	}
	return d
}

// scaleToDots maps v into a dot row, 0 at the top.
func scaleToDots(v float64, d Domain, dots int) int {
	if dots <= 1 {
		return 0
	}
	pos := (v - d.Min) / (d.Max - d.Min)
	row := int(math.Round((1 - pos) * float64(dots-1)))
	return min(max(row, 0), dots-1)
}

func axisLabels(height int, domain *Domain) []string {
	labels := make([]string, max(height, 0))
	if height <= 0 {
		return labels
	}
	top, mid, bottom := axisLabelTop, axisLabelMid, axisLabelBottom
	if domain != nil {
		top = formatAxisValue(domain.Max)
		mid = formatAxisValue((domain.Max + domain.Min) / 2)
		bottom = formatAxisValue(domain.Min)
	}
	labels[0] = top
	if height > 2 {
		labels[height/2] = mid
	}
	if height > 1 {
		labels[height-1] = bottom
	}
	return labels
}

func formatAxisValue(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

func labelWidth(labels []string) int {
	width := 0
	for _, l := range labels {
		width = max(width, utf8.RuneCountInString(l))
	}
	return width
}

func legend(series []Series, color bool) string {
	parts := make([]string, 0, len(series))
	for i, s := range series {
		label := fmt.Sprintf("%c %s (%s)", rune(brailleBase+int(dotBits[0][0])), s.Name, dashes[i%len(dashes)].name)
		if color {
			label = "\x1b[" + seriesColors[i%len(seriesColors)] + "m" + label + colorReset
		}
		parts = append(parts, label)
	}
	return "Legend: " + strings.Join(parts, "  ")
}

// PlotWidthFor computes a plot width that fits within totalWidth next to
// a three character axis.
func PlotWidthFor(totalWidth int) int {
	return plotWidthFor(totalWidth, utf8.RuneCountInString(axisLabelTop))
}

func plotWidthFor(totalWidth, axisLabelWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	return max(totalWidth-axisLabelWidth-utf8.RuneCountInString(axisSeparator), minPlotWidth)
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
