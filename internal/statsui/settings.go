package statsui

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tfquiz/internal/model"
)

const dateLayout = "2006-01-02"

const (
	fieldType = iota
	fieldSince
	fieldLast
	fieldWindow
)

var fieldPrompts = []string{
	fieldType:   "Type (meme/aiSettings): ",
	fieldSince:  "Since (YYYY-MM-DD): ",
	fieldLast:   "Last: ",
	fieldWindow: "Curve window: ",
}

// settingsForm edits the history filter in place.
type settingsForm struct {
	active bool
	inputs []textinput.Model
	focus  int
	err    string
}

func newSettingsForm() settingsForm {
	inputs := make([]textinput.Model, len(fieldPrompts))
	for i, prompt := range fieldPrompts {
		in := textinput.New()
		in.Prompt = prompt
		in.Cursor.SetMode(cursor.CursorBlink)
		inputs[i] = in
	}
	return settingsForm{inputs: inputs}
}

func (f *settingsForm) open(cfg model.HistoryConfig) tea.Cmd {
	f.active = true
	f.err = ""
	f.inputs[fieldType].SetValue(cfg.Type)
	f.inputs[fieldSince].SetValue(describeSince(cfg.Since, ""))
	f.inputs[fieldLast].SetValue(describeLast(cfg.Last, ""))
	f.inputs[fieldWindow].SetValue(strconv.Itoa(cfg.CurveWindow))
	return f.focusField(fieldType)
}

func (f *settingsForm) close() {
	f.active = false
	f.err = ""
}

// focusField moves focus to field i, wrapping around both ends.
func (f *settingsForm) focusField(i int) tea.Cmd {
	n := len(f.inputs)
	f.focus = ((i % n) + n) % n
	var cmd tea.Cmd
	for j := range f.inputs {
		if j == f.focus {
			cmd = f.inputs[j].Focus()
			continue
		}
		f.inputs[j].Blur()
	}
	return cmd
}

func (f *settingsForm) resize(width int) {
	for i := range f.inputs {
		f.inputs[i].Width = max(10, width-lipgloss.Width(f.inputs[i].Prompt)-2)
	}
}

func (f *settingsForm) updateInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *settingsForm) value(field int) string {
	return strings.TrimSpace(f.inputs[field].Value())
}

// parse validates the form. Empty fields mean "no filter", except the
// curve window which must be at least 1 when given.
func (f *settingsForm) parse() (model.HistoryConfig, error) {
	var cfg model.HistoryConfig
	if raw := f.value(fieldType); raw != "" {
		qt, err := model.ParseQuestionType(raw)
		if err != nil {
			return cfg, errors.New("invalid type (use meme or aiSettings)")
		}
		cfg.Type = string(qt)
	}
	if raw := f.value(fieldSince); raw != "" {
		since, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			return cfg, errors.New("invalid since date (expected YYYY-MM-DD)")
		}
		cfg.Since = &since
	}
	if raw := f.value(fieldLast); raw != "" {
		last, err := strconv.Atoi(raw)
		if err != nil || last < 0 {
			return cfg, errors.New("invalid last value (use 0 or positive integer)")
		}
		cfg.Last = last
	}
	if raw := f.value(fieldWindow); raw != "" {
		window, err := strconv.Atoi(raw)
		if err != nil || window < 1 {
			return cfg, errors.New("invalid curve window (use integer >= 1)")
		}
		cfg.CurveWindow = window
	}
	return cfg, nil
}

func (f *settingsForm) view() string {
	lines := make([]string, 0, len(f.inputs)+2)
	lines = append(lines, "Settings (enter to apply, esc to cancel)")
	for _, in := range f.inputs {
		lines = append(lines, in.View())
	}
	if f.err != "" {
		lines = append(lines, errorStyle.Render(f.err))
	}
	return strings.Join(lines, "\n")
}

func describeSince(since *time.Time, none string) string {
	if since == nil {
		return none
	}
	return since.Format(dateLayout)
}

func describeLast(last int, none string) string {
	if last <= 0 {
		return none
	}
	return strconv.Itoa(last)
}

const curveStep = 5

// stepCurveWindow moves n to the neighbouring multiple of curveStep,
// never going below 1.
func stepCurveWindow(n, dir int) int {
	if dir > 0 {
		return (n/curveStep + 1) * curveStep
	}
	if n <= curveStep {
		return 1
	}
	return (n - 1) / curveStep * curveStep
}
