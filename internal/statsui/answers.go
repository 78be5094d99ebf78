package statsui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tfquiz/internal/model"
	"github.com/verte-zerg/tfquiz/internal/score"
)

const (
	dateColWidth  = 8
	posColWidth   = 3
	scoreColWidth = 6
	labelColWidth = 10
)

// answerPane is the scrollable table behind the Answers tab.
type answerPane struct {
	table  table.Model
	rows   []model.AnswerRow
	width  int
	height int
}

func newAnswerPane() answerPane {
	t := table.New(table.WithColumns(answerColumns(0)), table.WithHeight(1))
	t.SetStyles(answerTableStyles())
	return answerPane{table: t}
}

func (p *answerPane) setRows(rows []model.AnswerRow) {
	p.rows = append([]model.AnswerRow(nil), rows...)
	p.table.SetRows(tableRows(p.rows, p.width))
	p.table.SetCursor(0)
}

func (p *answerPane) resize(width, height int) {
	if width != p.width {
		p.width = width
		p.table.SetColumns(answerColumns(width))
		p.table.SetRows(tableRows(p.rows, width))
		p.table.SetWidth(width)
	}
	if height != p.height {
		p.height = height
		p.fitHeight(height)
	}
}

// fitHeight sizes the table so its rendered view, header included, spans target lines.
func (p *answerPane) fitHeight(target int) {
	target = max(1, target)
	p.table.SetHeight(target)
	if extra := lipgloss.Height(p.table.View()) - target; extra > 0 {
		p.table.SetHeight(max(1, target-extra))
	}
}

func (p *answerPane) selected() (model.AnswerRow, bool) {
	idx := p.table.Cursor()
	if idx < 0 || idx >= len(p.rows) {
		return model.AnswerRow{}, false
	}
	return p.rows[idx], true
}

func (p *answerPane) view() string {
	if len(p.rows) == 0 {
		return "No answers found."
	}
	return mutedStyle.Render(p.table.View())
}

func textColumnWidth(width int) int {
	fixed := dateColWidth + posColWidth + scoreColWidth + labelColWidth
	return max(10, (width-fixed-6)/2)
}

func answerColumns(width int) []table.Column {
	text := textColumnWidth(width)
	return []table.Column{
		{Title: "Date", Width: dateColWidth},
		{Title: "#", Width: posColWidth},
		{Title: "Score", Width: scoreColWidth},
		{Title: "Label", Width: labelColWidth},
		{Title: "Question", Width: text},
		{Title: "Answer", Width: text},
	}
}

func tableRows(answers []model.AnswerRow, width int) []table.Row {
	text := textColumnWidth(width)
	rows := make([]table.Row, len(answers))
	for i, a := range answers {
		rows[i] = table.Row{
			a.EndedAt.Local().Format("01-02"),
			fmt.Sprintf("%d", a.Position),
			fmt.Sprintf("%.1f", a.Score),
			string(score.PerQuestionBanding.Classify(a.Score)),
			clipText(a.Question, text),
			clipText(a.Answer, text),
		}
	}
	return rows
}

func answerTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(dimColor).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1, 0, 0)
	styles.Cell = styles.Cell.Padding(0, 1, 0, 0)
	styles.Selected = styles.Cell.Foreground(brightColor).Bold(true)
	return styles
}

// renderAnswerDetail draws the selected answer as a centred modal.
func renderAnswerDetail(row model.AnswerRow, width, height int) string {
	boxWidth := max(40, min(width-4, 80))
	// border and padding take six columns
	inner := max(10, boxWidth-6)
	reading := score.Read(row.Score, score.PerQuestionBanding)
	body := strings.Join([]string{
		valueStyle.Render(fmt.Sprintf("Session %d, question %d", row.SessionID, row.Position)),
		hintStyle.Render(row.EndedAt.Local().Format("2006-01-02 15:04")),
		"",
		titleStyle.Render("Question"),
		runewidth.Wrap(row.Question, inner),
		"",
		titleStyle.Render("Answer"),
		runewidth.Wrap(row.Answer, inner),
		"",
		fmt.Sprintf("Score %.1f  %s  T %d%% / F %d%%  %s",
			reading.Score, reading.Label, reading.Split.T, reading.Split.F, reading.Mood.Face()),
		hintStyle.Render("Enter / Esc to close"),
	}, "\n")
	box := modalStyle.Width(boxWidth).Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
