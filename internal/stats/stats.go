// Package stats contains history calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"

	"github.com/verte-zerg/tfquiz/internal/model"
	"github.com/verte-zerg/tfquiz/internal/score"
)

const sparkChars = " .:-=+*#%@"

// MovingAverage returns, for each position, the mean of the values in the
// trailing window ending there. Early positions average what is available.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	window = max(window, 1)
	prefix := make([]float64, len(values)+1)
	for i, v := range values {
		prefix[i+1] = prefix[i] + v
		from := max(0, i+1-window)
		out[i] = (prefix[i+1] - prefix[from]) / float64(i+1-from)
	}
	return out
}

// Sparkline renders one character per value on the fixed 0..100 score scale.
func Sparkline(values []float64) string {
	last := len(sparkChars) - 1
	out := make([]byte, len(values))
	for i, v := range values {
		idx := int(math.Round(v / 100 * float64(last)))
		out[i] = sparkChars[min(max(idx, 0), last)]
	}
	return string(out)
}

// SessionAverages returns the stored average of each session in order.
func SessionAverages(sessions []model.SessionAggregate) []float64 {
	out := make([]float64, len(sessions))
	for i, s := range sessions {
		out[i] = s.Average
	}
	return out
}

// Overall returns the mean of the session averages and its reading.
func Overall(sessions []model.SessionAggregate) (score.Reading, bool) {
	if len(sessions) == 0 {
		return score.Reading{}, false
	}
	var sum float64
	for _, s := range sessions {
		sum += s.Average
	}
	return score.Read(sum/float64(len(sessions)), score.FinalBanding), true
}

// RenderSummary prints a summary for sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	reading, ok := Overall(sessions)
	if !ok {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	questions := 0
	mostT, mostF := sessions[0], sessions[0]
	for _, s := range sessions {
		questions += s.Questions
		if s.Average < mostT.Average {
			mostT = s
		}
		if s.Average > mostF.Average {
			mostF = s
		}
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", len(sessions)),
		fmt.Sprintf("Questions answered: %d", questions),
		fmt.Sprintf("Avg score: %.2f (%s)", reading.Score, reading.Label),
		fmt.Sprintf("Split: T %d%% / F %d%%", reading.Split.T, reading.Split.F),
		fmt.Sprintf("Most T session: %.2f on %s", mostT.Average, mostT.EndedAt.Local().Format("2006-01-02 15:04")),
		fmt.Sprintf("Most F session: %.2f on %s", mostF.Average, mostF.EndedAt.Local().Format("2006-01-02 15:04")),
		fmt.Sprintf("Trend: %s", Sparkline(SessionAverages(sessions))),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderLabelTable prints how often each final label occurred.
func RenderLabelTable(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Results by label"); err != nil {
		return err
	}
	tbl := newTextTable(
		column{header: "Label"},
		column{header: "Sessions", align: alignRight},
		column{header: "Share", align: alignRight},
	)
	for _, c := range LabelCounts(sessions) {
		tbl.add(
			string(c.Label),
			fmt.Sprintf("%d", c.Count),
			fmt.Sprintf("%.1f%%", float64(c.Count)/float64(len(sessions))*100),
		)
	}
	return tbl.write(w)
}

// RenderCurves prints the score curve for sessions.
func RenderCurves(w io.Writer, sessions []model.SessionAggregate, window int) error {
	return RenderCurvesWithSize(w, sessions, window, 0, 10, false)
}

// RenderCurvesWithSize prints the score curve sized to a given total width.
func RenderCurvesWithSize(w io.Writer, sessions []model.SessionAggregate, window, totalWidth, height int, useColor bool) error {
	if len(sessions) == 0 {
		return nil
	}
	averages := SessionAverages(sessions)
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeriesWithColor(w, "Score Trend", []Series{
		{Name: "Session avg", Values: averages},
		{Name: fmt.Sprintf("Moving avg (%d)", window), Values: MovingAverage(averages, window)},
	}, width, height, useColor)
}

// RenderAnswerTable prints stored answers, truncating long text to maxText cells.
func RenderAnswerTable(w io.Writer, answers []model.AnswerRow, maxText int) error {
	return RenderTitledAnswerTable(w, "Answers (Windowed)", answers, maxText)
}

// RenderTitledAnswerTable is RenderAnswerTable under a custom heading.
func RenderTitledAnswerTable(w io.Writer, title string, answers []model.AnswerRow, maxText int) error {
	if len(answers) == 0 {
		_, err := fmt.Fprintln(w, "No answers found.")
		return err
	}
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	tbl := newTextTable(
		column{header: "Session", align: alignRight},
		column{header: "#", align: alignRight},
		column{header: "Score", align: alignRight},
		column{header: "Label"},
		column{header: "Question"},
		column{header: "Answer"},
	)
	for _, a := range answers {
		tbl.add(
			fmt.Sprintf("%d", a.SessionID),
			fmt.Sprintf("%d", a.Position),
			fmt.Sprintf("%.1f", a.Score),
			string(score.PerQuestionBanding.Classify(a.Score)),
			truncateCell(a.Question, maxText),
			truncateCell(a.Answer, maxText),
		)
	}
	return tbl.write(w)
}
