// Package statsui provides the Bubble Tea history interface.
package statsui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tfquiz/internal/model"
	"github.com/verte-zerg/tfquiz/internal/stats"
)

type tab int

const (
	tabOverview tab = iota
	tabAnswers
	tabLabels
	tabCount
)

var tabNames = [tabCount]string{"Overview", "Answers", "Labels"}

const fallbackWidth = 80

var (
	accentColor = lipgloss.Color("#C89A3A")
	dimColor    = lipgloss.Color("#4A4A4A")
	brightColor = lipgloss.Color("#F0F0F0")

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#B0B0B0")).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(dimColor)
	activeTabStyle = tabStyle.
			Foreground(brightColor).
			Bold(true).
			BorderForeground(accentColor)
	cardStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(dimColor)
	modalStyle = lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(accentColor)
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	valueStyle = lipgloss.NewStyle().Foreground(brightColor).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea history UI.
type Model struct {
	source stats.HistorySource
	cfg    model.HistoryConfig

	report  stats.Report
	loadErr error

	width  int
	height int

	tab        tab
	overview   viewport.Model
	labels     viewport.Model
	answers    answerPane
	settings   settingsForm
	showDetail bool
}

// NewModel constructs a history UI model and loads the first report.
func NewModel(src stats.HistorySource, cfg model.HistoryConfig) *Model {
	m := &Model{
		source:   src,
		cfg:      cfg,
		overview: viewport.New(0, 0),
		labels:   viewport.New(0, 0),
		answers:  newAnswerPane(),
		settings: newSettingsForm(),
	}
	m.reload()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.relayout()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || (msg.String() == "q" && !m.settings.active) {
			return m, tea.Quit
		}
		switch {
		case m.settings.active:
			return m, m.updateSettings(msg)
		case m.showDetail:
			if msg.Type == tea.KeyEsc || msg.Type == tea.KeyEnter {
				m.showDetail = false
			}
			return m, nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "h":
		m.switchTab(-1)
		return m, tea.ClearScreen
	case "right", "l":
		m.switchTab(1)
		return m, tea.ClearScreen
	case "=", "-":
		dir := 1
		if msg.String() == "-" {
			dir = -1
		}
		m.cfg.CurveWindow = stepCurveWindow(m.cfg.CurveWindow, dir)
		m.reload()
		return m, nil
	case "/":
		cmd := m.settings.open(m.cfg)
		m.relayout()
		return m, cmd
	case "enter":
		if m.tab == tabAnswers && m.loadErr == nil {
			_, m.showDetail = m.answers.selected()
		}
		return m, nil
	}

	if m.tab == tabAnswers {
		switch msg.String() {
		case "g", "home":
			m.answers.table.GotoTop()
			return m, nil
		case "G", "end":
			m.answers.table.GotoBottom()
			return m, nil
		}
		var cmd tea.Cmd
		m.answers.table, cmd = m.answers.table.Update(msg)
		return m, cmd
	}
	vp := m.page()
	switch msg.String() {
	case "g", "home":
		vp.GotoTop()
		return m, nil
	case "G", "end":
		vp.GotoBottom()
		return m, nil
	}
	var cmd tea.Cmd
	*vp, cmd = vp.Update(msg)
	return m, cmd
}

func (m *Model) updateSettings(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.settings.close()
		m.relayout()
		return nil
	case tea.KeyEnter:
		cfg, err := m.settings.parse()
		if err != nil {
			m.settings.err = err.Error()
			return nil
		}
		m.cfg = cfg
		m.settings.close()
		m.reload()
		return nil
	case tea.KeyTab:
		return m.settings.focusField(m.settings.focus + 1)
	case tea.KeyShiftTab:
		return m.settings.focusField(m.settings.focus - 1)
	}
	return m.settings.updateInput(msg)
}

// page returns the viewport behind a text tab.
func (m *Model) page() *viewport.Model {
	if m.tab == tabLabels {
		return &m.labels
	}
	return &m.overview
}

func (m *Model) switchTab(delta int) {
	m.tab = (m.tab + tab(delta) + tabCount) % tabCount
	if m.tab == tabAnswers {
		m.answers.table.Focus()
	} else {
		m.answers.table.Blur()
	}
}

func (m *Model) reload() {
	report, err := stats.BuildReport(context.Background(), m.source, m.cfg)
	m.loadErr = err
	if err == nil {
		m.report = report
		m.answers.setRows(report.Answers)
	}
	m.relayout()
}

// relayout resizes every pane to the current window and re-renders tab text.
func (m *Model) relayout() {
	width := m.width
	if width <= 0 {
		width = fallbackWidth
	}
	height := m.bodyHeight()
	for _, vp := range []*viewport.Model{&m.overview, &m.labels} {
		vp.Width, vp.Height = width, height
	}
	m.answers.resize(width, height)
	m.settings.resize(width)
	m.overview.SetContent(renderOverview(m.report.Sessions, m.cfg.CurveWindow, width))
	m.labels.SetContent(renderLabels(m.report, width))
}

func (m *Model) bodyHeight() int {
	used := lipgloss.Height(m.renderHeader()) + lipgloss.Height(m.renderFooter())
	return max(1, m.height-used)
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.showDetail {
		if row, ok := m.answers.selected(); ok {
			return fitBlock(renderAnswerDetail(row, m.width, m.height), m.width, m.height)
		}
		m.showDetail = false
	}
	header, footer := m.renderHeader(), m.renderFooter()
	return strings.Join([]string{
		fitBlock(header, m.width, lipgloss.Height(header)),
		fitBlock(m.renderBody(), m.width, m.bodyHeight()),
		fitBlock(footer, m.width, lipgloss.Height(footer)),
	}, "\n")
}

func (m *Model) renderHeader() string {
	tabs := make([]string, tabCount)
	for i, name := range tabNames {
		style := tabStyle
		if tab(i) == m.tab {
			style = activeTabStyle
		}
		tabs[i] = style.Render(name)
	}
	typ := m.cfg.Type
	if typ == "" {
		typ = "any"
	}
	summary := fmt.Sprintf("Settings: type=%s · since=%s · last=%s · window=%d",
		typ, describeSince(m.cfg.Since, "any"), describeLast(m.cfg.Last, "all"), m.cfg.CurveWindow)
	if m.width > 0 {
		summary = clipText(summary, m.width)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + "\n" + hintStyle.Render(summary)
}

func (m *Model) renderBody() string {
	switch {
	case m.settings.active:
		return m.settings.view()
	case m.loadErr != nil:
		return "Failed to load history."
	case len(m.report.Sessions) == 0:
		return "No sessions found."
	case m.tab == tabAnswers:
		return m.answers.view()
	}
	return m.page().View()
}

func (m *Model) renderFooter() string {
	if m.settings.active {
		return hintStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel  quit: ctrl+c")
	}
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Settings: /  Quit: q"
	if m.tab == tabAnswers {
		help = "Nav: left/right  Select: up/down  Details: enter  Window: -/=  Settings: /  Quit: q"
	}
	help = hintStyle.Render(help)
	if m.loadErr != nil {
		return help + "\n" + errorStyle.Render(m.loadErr.Error())
	}
	return help
}
