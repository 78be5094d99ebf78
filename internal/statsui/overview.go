package statsui

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tfquiz/internal/model"
	"github.com/verte-zerg/tfquiz/internal/stats"
)

const (
	plotHeight     = 10
	extremeAnswers = 5
)

func renderOverview(sessions []model.SessionAggregate, window, width int) string {
	reading, ok := stats.Overall(sessions)
	if !ok {
		return "No sessions found."
	}
	questions := 0
	for _, s := range sessions {
		questions += s.Questions
	}
	latest := sessions[len(sessions)-1]
	cards := []string{
		metricCard("Sessions", fmt.Sprintf("%d", len(sessions))),
		metricCard("Answers", fmt.Sprintf("%d", questions)),
		metricCard("Avg score", fmt.Sprintf("%.1f", reading.Score)),
		metricCard("Overall", string(reading.Label)),
		metricCard("T / F", fmt.Sprintf("%d%% / %d%%", reading.Split.T, reading.Split.F)),
		metricCard("Latest", fmt.Sprintf("%.1f %s", latest.Average, reading.Mood.Face())),
	}

	var buf bytes.Buffer
	if err := stats.RenderCurvesWithSize(&buf, sessions, window, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render curves: %v", err)
	}
	return flowCards(cards, width) + "\n\n" + strings.TrimRight(buf.String(), "\n")
}

// flowCards lays cards out left to right, starting a new row when the next
// card would not fit in width.
func flowCards(cards []string, width int) string {
	var rows []string
	var row []string
	rowWidth := 0
	for _, card := range cards {
		w := lipgloss.Width(card)
		if len(row) > 0 && rowWidth+w > width {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row, rowWidth = nil, 0
		}
		row = append(row, card)
		rowWidth += w
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func metricCard(label, value string) string {
	return cardStyle.Render(titleStyle.Render(label) + "\n" + valueStyle.Render(value))
}

// renderLabels lists results per band and the answers furthest from the middle.
func renderLabels(report stats.Report, width int) string {
	if len(report.Sessions) == 0 {
		return "No sessions found."
	}
	var buf bytes.Buffer
	if err := stats.RenderLabelTable(&buf, report.Sessions); err != nil {
		return fmt.Sprintf("Failed to render labels: %v", err)
	}
	if extremes := stats.ExtremeAnswers(report.Answers, extremeAnswers); len(extremes) > 0 {
		textWidth := max(10, (width-30)/2)
		if err := stats.RenderTitledAnswerTable(&buf, "Most decisive answers (Windowed)", extremes, textWidth); err != nil {
			return fmt.Sprintf("Failed to render answers: %v", err)
		}
	}
	return strings.TrimRight(buf.String(), "\n")
}
