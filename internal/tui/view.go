package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tfquiz/internal/model"
	"github.com/verte-zerg/tfquiz/internal/score"
	"github.com/verte-zerg/tfquiz/internal/session"
)

const gaugeWidth = 31

var (
	questionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	answerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	accentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	tSideStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4DA3FF"))
	fSideStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF7AB6"))
	trackStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A4A4A"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	cardStyle     = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
)

// View implements tea.Model.
func (m *Model) View() string {
	content := m.renderContent()
	if m.width == 0 || m.height == 0 {
		return content + "\n" + m.renderFooter()
	}
	content = lipgloss.NewStyle().Width(m.contentWidth()).Render(content)
	footer := m.renderFooter()
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	bodyHeight := m.height - 1
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) contentWidth() int {
	if m.width <= 0 {
		return 72
	}
	w := int(float64(m.width) * 0.70)
	return maxInt(20, minInt(w, 100))
}

func (m *Model) renderContent() string {
	switch m.phase {
	case phaseLoading:
		if m.cfg.Type.ShowsLoading() {
			return m.spinner.View() + " Generating questions..."
		}
		return "Loading questions..."
	case phaseLoadFailed:
		return strings.Join([]string{
			errorStyle.Render("Could not load questions."),
			wrapText(errorText(m.loadErr), answerStyle, m.contentWidth()),
		}, "\n\n")
	}

	v := m.ctrl.View()
	switch v.State {
	case session.AwaitingAnswer, session.Scoring:
		return m.renderQuestion(v)
	case session.ShowingResult:
		return m.renderResult(v)
	case session.Complete:
		return m.renderSummary(v)
	}
	return ""
}

func (m *Model) renderQuestion(v session.View) string {
	width := m.contentWidth()
	parts := []string{
		accentStyle.Render("Question " + v.Progress),
		wrapText(v.Question, questionStyle, width),
		"",
	}
	if m.clipMode {
		parts = append(parts, m.clipInput.View())
	} else {
		parts = append(parts, m.answer.View())
	}
	if v.State == session.Scoring {
		parts = append(parts, m.spinner.View()+" Analyzing your answer...")
	}
	if m.transcribing {
		parts = append(parts, m.spinner.View()+" Transcribing clip...")
	} else if m.status != "" {
		parts = append(parts, m.renderStatus())
	}
	if v.Err != nil {
		parts = append(parts, errorStyle.Render("Scoring failed, please try again: "+errorText(v.Err)))
	}
	return strings.Join(parts, "\n")
}

func (m *Model) renderResult(v session.View) string {
	width := m.contentWidth()
	parts := []string{
		accentStyle.Render("Result " + v.Progress),
		wrapText(v.Last.Question, questionStyle, width),
		wrapText(v.Last.Answer, answerStyle, width),
		"",
		renderReading(v.Reading),
	}
	if m.status != "" {
		parts = append(parts, "", m.renderStatus())
	}
	return strings.Join(parts, "\n")
}

func (m *Model) renderSummary(v session.View) string {
	if v.Summary == nil {
		return "No answers recorded."
	}
	sum := v.Summary
	width := m.contentWidth()
	parts := []string{
		accentStyle.Render("Final result"),
		renderReading(sum.Reading),
		"",
		wrapText(sum.Message, questionStyle, width),
		"",
		renderAnswerList(sum.Results, width),
	}
	if m.saveNote != "" {
		parts = append(parts, "", footerStyle.Render(m.saveNote))
	}
	if m.status != "" {
		parts = append(parts, m.renderStatus())
	}
	return strings.Join(parts, "\n")
}

func renderReading(r score.Reading) string {
	head := fmt.Sprintf("%s  %s  %s",
		labelStyle.Render(string(r.Label)),
		fmt.Sprintf("%.1f", r.Score),
		accentStyle.Render(r.Mood.Face()),
	)
	split := fmt.Sprintf("%s  %s",
		tSideStyle.Render(fmt.Sprintf("T %d%%", r.Split.T)),
		fSideStyle.Render(fmt.Sprintf("F %d%%", r.Split.F)),
	)
	card := strings.Join([]string{head, renderGauge(r.Score, gaugeWidth), split}, "\n")
	return cardStyle.Render(card)
}

// renderGauge draws a T..F bar with a marker at score.
func renderGauge(value float64, width int) string {
	marker := score.Marker(value, width)
	var b strings.Builder
	b.WriteString(tSideStyle.Render("T "))
	for i := 0; i < width; i++ {
		if i == marker {
			b.WriteString(labelStyle.Render("●"))
			continue
		}
		b.WriteString(trackStyle.Render("─"))
	}
	b.WriteString(fSideStyle.Render(" F"))
	return b.String()
}

func renderAnswerList(results []model.ScoredResult, width int) string {
	lines := make([]string, 0, len(results))
	textWidth := maxInt(10, width-20)
	for i, r := range results {
		label := score.PerQuestionBanding.Classify(r.Score)
		head := fmt.Sprintf("%d. %5.1f %-9s ", i+1, r.Score, label)
		question := wrapText(r.Question, answerStyle, textWidth)
		indent := strings.Repeat(" ", lipgloss.Width(head))
		question = strings.ReplaceAll(question, "\n", "\n"+indent)
		lines = append(lines, head+question)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderStatus() string {
	if m.statusErr {
		return errorStyle.Render(m.status)
	}
	return footerStyle.Render(m.status)
}

func (m *Model) renderFooter() string {
	var help string
	switch m.phase {
	case phaseLoading:
		help = "esc: quit"
	case phaseLoadFailed:
		help = "r: retry  q: quit"
	default:
		switch {
		case m.clipMode:
			help = "enter: transcribe clip  esc: cancel"
		case m.ctrl.State() == session.AwaitingAnswer:
			help = "enter: submit  ctrl+o: transcribe clip  ctrl+t: read aloud  esc: quit"
		case m.ctrl.State() == session.Scoring:
			help = "scoring..."
		case m.ctrl.State() == session.ShowingResult:
			help = "enter: next  ctrl+t: read aloud  q: quit"
		default:
			help = "r: restart  ctrl+t: read aloud  q: quit"
		}
	}
	segments := []string{help}
	if m.phase == phaseQuiz {
		snap := m.ctrl.Snapshot()
		progress := []string{fmt.Sprintf("Answered %d/%d", snap.CurrentCount, snap.MaxCount)}
		if len(snap.Results) > 0 {
			progress = append(progress, fmt.Sprintf("Avg %.1f", score.Average(snap.Results)))
		}
		segments = append(progress, help)
	}
	if m.speaking {
		segments = append(segments, "speaking...")
	}
	return footerStyle.Render(strings.Join(segments, "  ·  "))
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
