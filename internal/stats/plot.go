package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"

	"github.com/verte-zerg/tfquiz/internal/score"
)

// Series is a named score sequence, oldest first.
type Series struct {
	Name   string
	Values []float64
}

const (
	defaultPlotHeight = 10
	minPlotWidth      = 10
	fallbackTermWidth = 80
	axisTop           = "100"
	axisMid           = "50"
	axisBottom        = "0"
	axisSeparator     = " ┤"
	zoneGap           = " "
	scaleNote         = "Scale: 0 = thinking (T), 100 = feeling (F)."
	dotsX             = 2
	dotsY             = 4
	ansiReset         = "\x1b[0m"
	ansiDim           = "\x1b[2m"
)

// guideScores mark the edges of the balanced zone.
var guideScores = []float64{40, 60}

// dashPatterns switch dots on ('1') or off ('0') along the x axis, one per series.
var dashPatterns = []struct {
	name    string
	pattern string
}{
	{name: "solid", pattern: "1"},
	{name: "dashed", pattern: "111000"},
	{name: "dotted", pattern: "1000"},
	{name: "dashdot", pattern: "11100100"},
}

var seriesColors = []string{
	"\x1b[38;5;75m",
	"\x1b[38;5;211m",
	"\x1b[38;5;179m",
	"\x1b[38;5;114m",
}

var zoneOrder = []score.Label{score.StrongF, score.FLeaning, score.Balanced, score.TLeaning, score.StrongT}

// dotBits maps a dot inside a braille cell to its bit.
var dotBits = [dotsX][dotsY]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// PlotSeries renders score series on a fixed 0..100 braille chart.
func PlotSeries(w io.Writer, title string, series []Series, width, height int) error {
	return plotSeries(w, title, series, width, height, false)
}

// PlotSeriesWithColor is PlotSeries with optional forced color output.
func PlotSeriesWithColor(w io.Writer, title string, series []Series, width, height int, forceColor bool) error {
	return plotSeries(w, title, series, width, height, forceColor)
}

func plotSeries(w io.Writer, title string, series []Series, width, height int, forceColor bool) error {
	series = nonEmptySeries(series)
	if len(series) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = PlotWidthFor(terminalWidth())
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}

	guides := newCanvas(width, height)
	for _, g := range guideScores {
		guides.guide(g)
	}
	layers := make([]*canvas, len(series))
	for i, s := range series {
		layers[i] = newCanvas(width, height)
		layers[i].plot(s.Values, dashPatterns[i%len(dashPatterns)].pattern)
	}

	useColor := shouldUseColor(w, forceColor)
	var lines []string
	if title != "" {
		lines = append(lines, title)
	}
	lines = append(lines, scaleNote)
	for _, s := range series {
		lines = append(lines, describeSeries(s))
	}
	zones := zoneLabels(height)
	for row := 0; row < height; row++ {
		var b strings.Builder
		b.WriteString(fmt.Sprintf("%*s%s", len(axisTop), axisLabel(row, height), axisSeparator))
		for col := 0; col < width; col++ {
			b.WriteString(renderCell(layers, guides, col, row, useColor))
		}
		if zones[row] != "" {
			b.WriteString(zoneGap + zones[row])
		}
		lines = append(lines, b.String())
	}
	lines = append(lines, renderLegend(series, useColor), "")

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// PlotWidthFor returns the number of chart columns that fit in totalWidth
// next to the axis and the zone labels.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	plotWidth := totalWidth - len(axisTop) - utf8.RuneCountInString(axisSeparator) - zoneColumnWidth()
	if plotWidth < minPlotWidth {
		return minPlotWidth
	}
	return plotWidth
}

func zoneColumnWidth() int {
	longest := 0
	for _, label := range zoneOrder {
		longest = max(longest, len(label))
	}
	return len(zoneGap) + longest
}

func nonEmptySeries(series []Series) []Series {
	out := make([]Series, 0, len(series))
	for _, s := range series {
		if len(s.Values) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func describeSeries(s Series) string {
	lo, hi := s.Values[0], s.Values[0]
	for _, v := range s.Values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	last := s.Values[len(s.Values)-1]
	return fmt.Sprintf("%s: latest %.1f (%s), range %.1f..%.1f",
		s.Name, last, score.FinalBanding.Classify(last), lo, hi)
}

func axisLabel(row, height int) string {
	switch {
	case row == 0:
		return axisTop
	case row == height-1:
		return axisBottom
	case height > 2 && row == height/2:
		return axisMid
	}
	return ""
}

// zoneLabels names the score band at the first row whose centre falls inside it.
func zoneLabels(height int) []string {
	labels := make([]string, height)
	var prev score.Label
	for row := 0; row < height; row++ {
		centre := 100 - (float64(row)+0.5)*100/float64(height)
		label := score.FinalBanding.Classify(centre)
		if label != prev {
			labels[row] = string(label)
		}
		prev = label
	}
	return labels
}

func renderCell(layers []*canvas, guides *canvas, col, row int, useColor bool) string {
	var mask uint8
	owner := -1
	for i, layer := range layers {
		if m := layer.mask(col, row); m != 0 {
			mask |= m
			if owner < 0 {
				owner = i
			}
		}
	}
	if owner < 0 {
		g := guides.mask(col, row)
		if g != 0 && useColor {
			return ansiDim + string(braille(g)) + ansiReset
		}
		return string(braille(g))
	}
	if useColor {
		return seriesColors[owner%len(seriesColors)] + string(braille(mask)) + ansiReset
	}
	return string(braille(mask))
}

func renderLegend(series []Series, useColor bool) string {
	marker := braille(dotBits[0][0] | dotBits[1][0])
	parts := make([]string, 0, len(series)+1)
	for i, s := range series {
		label := fmt.Sprintf("%c %s (%s)", marker, s.Name, dashPatterns[i%len(dashPatterns)].name)
		if useColor {
			label = seriesColors[i%len(seriesColors)] + label + ansiReset
		}
		parts = append(parts, label)
	}
	parts = append(parts, "guides at 40/60")
	return "Legend: " + strings.Join(parts, "  ")
}

func braille(mask uint8) rune {
	return rune(0x2800 + int(mask))
}

// canvas is a grid of braille cells addressed in dots, score 100 on the top row.
type canvas struct {
	cols  int
	rows  int
	cells [][]uint8
}

func newCanvas(cols, rows int) *canvas {
	cells := make([][]uint8, rows)
	for i := range cells {
		cells[i] = make([]uint8, cols)
	}
	return &canvas{cols: cols, rows: rows, cells: cells}
}

func (c *canvas) set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/dotsX, y/dotsY
	if col >= c.cols || row >= c.rows {
		return
	}
	c.cells[row][col] |= dotBits[x%dotsX][y%dotsY]
}

func (c *canvas) mask(col, row int) uint8 {
	return c.cells[row][col]
}

func (c *canvas) plot(values []float64, pattern string) {
	points := fitToWidth(values, c.cols*dotsX)
	dots := c.rows * dotsY
	prevX, prevY := -1, 0
	for x, v := range points {
		y := scoreToDot(v, dots)
		if prevX < 0 {
			if patternOn(pattern, x) {
				c.set(x, y)
			}
		} else {
			c.stroke(prevX, prevY, x, y, pattern)
		}
		prevX, prevY = x, y
	}
}

func (c *canvas) guide(value float64) {
	y := scoreToDot(value, c.rows*dotsY)
	for x := 0; x < c.cols*dotsX; x += 4 {
		c.set(x, y)
	}
}

// stroke draws a Bresenham line, keeping the dots the pattern allows.
func (c *canvas) stroke(x0, y0, x1, y1 int, pattern string) {
	dx, dy := absInt(x1-x0), -absInt(y1-y0)
	sx, sy := 1, 1
	if x1 < x0 {
		sx = -1
	}
	if y1 < y0 {
		sy = -1
	}
	e := dx + dy
	for {
		if patternOn(pattern, x0) {
			c.set(x0, y0)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func patternOn(pattern string, x int) bool {
	if len(pattern) == 0 {
		return true
	}
	return pattern[absInt(x)%len(pattern)] == '1'
}

// scoreToDot maps a score to a dot row; out of range scores are clamped.
func scoreToDot(v float64, dots int) int {
	if dots <= 1 {
		return 0
	}
	v = math.Max(0, math.Min(100, v))
	return int(math.Round((100 - v) / 100 * float64(dots-1)))
}

// fitToWidth resamples values to n points. Buckets are averaged when there are
// more values than points; otherwise each value is held across its share.
func fitToWidth(values []float64, n int) []float64 {
	if len(values) == 0 || n <= 0 {
		return nil
	}
	out := make([]float64, n)
	if len(values) >= n {
		for i := range out {
			lo := i * len(values) / n
			hi := (i + 1) * len(values) / n
			if hi <= lo {
				hi = lo + 1
			}
			var sum float64
			for _, v := range values[lo:hi] {
				sum += v
			}
			out[i] = sum / float64(hi-lo)
		}
		return out
	}
	for i := range out {
		out[i] = values[i*len(values)/n]
	}
	return out
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallbackTermWidth
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
