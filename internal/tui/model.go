// Package tui provides the Bubble Tea quiz interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tfquiz/internal/api"
	"github.com/verte-zerg/tfquiz/internal/audio"
	"github.com/verte-zerg/tfquiz/internal/bank"
	"github.com/verte-zerg/tfquiz/internal/eventlog"
	"github.com/verte-zerg/tfquiz/internal/model"
	"github.com/verte-zerg/tfquiz/internal/score"
	"github.com/verte-zerg/tfquiz/internal/session"
)

// Service is the remote quiz backend.
type Service interface {
	Questions(ctx context.Context, count int) (api.Batch, error)
	Analyze(ctx context.Context, text string) (float64, error)
	Transcribe(ctx context.Context, clip api.Clip) (string, error)
	Speak(ctx context.Context, text, lang string) ([]byte, error)
}

// Recorder stores completed sessions.
type Recorder interface {
	InsertSession(ctx context.Context, rec model.SessionRecord) (int64, error)
}

// Player plays synthesized speech.
type Player interface {
	Play(ctx context.Context, data []byte) error
}

// Options configures a quiz model. Service is required.
type Options struct {
	Config   model.Config
	Service  Service
	History  Recorder
	Player   Player
	Logger   *slog.Logger
	Rand     *rand.Rand
	LoadClip func(path string) (api.Clip, error)
	Now      func() time.Time
}

type phase int

const (
	phaseLoading phase = iota
	phaseLoadFailed
	phaseQuiz
)

type questionsLoadedMsg struct {
	bank *bank.Bank
	err  error
}

type scoredMsg struct {
	tag   string
	score float64
	err   error
}

// transcribedMsg carries the question key its request was issued for.
type transcribedMsg struct {
	seq      int
	question string
	text     string
	err      error
}

type spokeMsg struct {
	err error
}

type historySavedMsg struct {
	id  int64
	err error
}

// Model implements the Bubble Tea quiz UI.
type Model struct {
	cfg      model.Config
	svc      Service
	history  Recorder
	player   Player
	log      *slog.Logger
	rnd      *rand.Rand
	loadClip func(path string) (api.Clip, error)
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	phase     phase
	loadErr   error
	ctrl      *session.Controller
	startedAt time.Time

	answer    textinput.Model
	clipInput textinput.Model
	clipMode  bool
	spinner   spinner.Model

	status       string
	statusErr    bool
	transcribing bool
	sttSeq       int
	sttQuestion  string
	speaking     bool
	saveNote     string

	width  int
	height int
}

// NewModel constructs a quiz TUI model.
func NewModel(opts Options) *Model {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Model{
		cfg:      opts.Config,
		svc:      opts.Service,
		history:  opts.History,
		player:   opts.Player,
		log:      opts.Logger,
		rnd:      opts.Rand,
		loadClip: opts.LoadClip,
		now:      opts.Now,
		ctx:      ctx,
		cancel:   cancel,
	}
	if m.log == nil {
		m.log = eventlog.Discard()
	}
	if m.rnd == nil {
		m.rnd = bank.NewRand()
	}
	if m.loadClip == nil {
		m.loadClip = audio.LoadClip
	}
	if m.now == nil {
		m.now = time.Now
	}

	m.answer = textinput.New()
	m.answer.Prompt = "> "
	m.answer.Placeholder = "Type your answer"
	m.answer.CharLimit = 500

	m.clipInput = textinput.New()
	m.clipInput.Prompt = "Clip file: "
	m.clipInput.Placeholder = "path/to/answer.webm"

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot
	m.spinner.Style = accentStyle
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.startLoading()
}

// Close cancels in-flight requests.
func (m *Model) Close() {
	m.cancel()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		inputWidth := maxInt(10, m.contentWidth()-4)
		m.answer.Width = inputWidth
		m.clipInput.Width = maxInt(10, inputWidth-len(m.clipInput.Prompt))
		return m, nil
	case spinner.TickMsg:
		if m.phase != phaseLoading && !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case questionsLoadedMsg:
		return m.handleLoaded(msg)
	case scoredMsg:
		return m.handleScored(msg)
	case transcribedMsg:
		return m.handleTranscribed(msg)
	case spokeMsg:
		m.speaking = false
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("Speech failed: %v", msg.err), true)
			m.log.Warn("speech failed", "session", m.sessionID(), "error", msg.err)
		}
		return m, nil
	case historySavedMsg:
		if msg.err != nil {
			m.saveNote = fmt.Sprintf("Failed to save history: %v", msg.err)
			m.log.Error("failed to save session", "session", m.sessionID(), "error", msg.err)
		} else {
			m.saveNote = fmt.Sprintf("Saved to history (#%d)", msg.id)
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, m.forwardToInput(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}
	switch m.phase {
	case phaseLoading:
		if msg.Type == tea.KeyEsc {
			return m.quit()
		}
		return m, nil
	case phaseLoadFailed:
		switch msg.String() {
		case "r", "enter":
			return m, m.startLoading()
		case "q", "esc":
			return m.quit()
		}
		return m, nil
	}

	if m.clipMode {
		return m.handleClipKey(msg)
	}

	switch m.ctrl.State() {
	case session.AwaitingAnswer:
		switch msg.Type {
		case tea.KeyEnter:
			if m.transcribing {
				m.setStatus("Wait for the transcription to finish.", false)
				return m, nil
			}
			return m.submit()
		case tea.KeyEsc:
			return m.quit()
		case tea.KeyCtrlO:
			if m.transcribing {
				return m, nil
			}
			m.clipMode = true
			m.answer.Blur()
			return m, m.clipInput.Focus()
		case tea.KeyCtrlT:
			return m, m.speak(m.ctrl.Question())
		}
		if m.transcribing {
			return m, nil
		}
		var cmd tea.Cmd
		m.answer, cmd = m.answer.Update(msg)
		return m, cmd
	case session.Scoring:
		return m, nil
	case session.ShowingResult:
		switch msg.String() {
		case "enter", " ", "n":
			return m.advance()
		case "ctrl+t":
			return m, m.speak(m.ctrl.Question())
		case "q", "esc":
			return m.quit()
		}
		return m, nil
	case session.Complete:
		switch msg.String() {
		case "r":
			return m, m.startLoading()
		case "ctrl+t":
			if sum, ok := m.ctrl.Summary(); ok {
				return m, m.speak(sum.Message)
			}
			return m, nil
		case "q", "esc", "enter":
			return m.quit()
		}
	}
	return m, nil
}

func (m *Model) handleClipKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.clipMode = false
		m.clipInput.Blur()
		return m, m.answer.Focus()
	case tea.KeyEnter:
		path := strings.TrimSpace(m.clipInput.Value())
		m.clipMode = false
		m.clipInput.Blur()
		clip, err := m.loadClip(path)
		if err != nil {
			m.setStatus(fmt.Sprintf("Could not read clip: %v", err), true)
			return m, m.answer.Focus()
		}
		m.transcribing = true
		m.sttSeq++
		m.sttQuestion = m.questionKey()
		m.setStatus("Transcribing...", false)
		return m, tea.Batch(m.transcribeCmd(clip), m.spinner.Tick)
	}
	var cmd tea.Cmd
	m.clipInput, cmd = m.clipInput.Update(msg)
	return m, cmd
}

func (m *Model) forwardToInput(msg tea.Msg) tea.Cmd {
	if m.phase != phaseQuiz {
		return nil
	}
	var cmd tea.Cmd
	if m.clipMode {
		m.clipInput, cmd = m.clipInput.Update(msg)
		return cmd
	}
	if m.ctrl.State() == session.AwaitingAnswer && !m.transcribing {
		m.answer, cmd = m.answer.Update(msg)
	}
	return cmd
}

func (m *Model) startLoading() tea.Cmd {
	m.phase = phaseLoading
	m.loadErr = nil
	m.ctrl = nil
	m.clipMode = false
	m.transcribing = false
	m.sttSeq++
	m.saveNote = ""
	m.clearStatus()
	load := m.loadCmd()
	if m.cfg.Type.ShowsLoading() {
		return tea.Batch(load, m.spinner.Tick)
	}
	return load
}

func (m *Model) loadCmd() tea.Cmd {
	ctx, svc, count, rnd := m.ctx, m.svc, m.cfg.Count, m.rnd
	return func() tea.Msg {
		b, err := bank.Load(ctx, svc, count, rnd)
		return questionsLoadedMsg{bank: b, err: err}
	}
}

func (m *Model) handleLoaded(msg questionsLoadedMsg) (tea.Model, tea.Cmd) {
	if m.phase != phaseLoading {
		return m, nil
	}
	if msg.err != nil {
		m.phase = phaseLoadFailed
		m.loadErr = msg.err
		m.log.Error("failed to load questions", "error", msg.err)
		return m, nil
	}
	ctrl, err := session.New(msg.bank, m.cfg.Count)
	if err != nil {
		m.phase = phaseLoadFailed
		m.loadErr = err
		return m, nil
	}
	m.ctrl = ctrl
	m.phase = phaseQuiz
	m.startedAt = m.now()
	m.answer.SetValue("")
	m.log.Info("session started",
		"session", ctrl.ID(),
		"type", string(m.cfg.Type),
		"count", m.cfg.Count,
		"batch", msg.bank.Len(),
		"source", msg.bank.Source(),
	)
	return m, m.answer.Focus()
}

func (m *Model) submit() (tea.Model, tea.Cmd) {
	req, err := m.ctrl.Submit(m.answer.Value())
	if err != nil {
		if errors.Is(err, session.ErrEmptyAnswer) {
			m.setStatus("Please enter an answer.", true)
			return m, nil
		}
		return m, nil
	}
	m.clearStatus()
	m.answer.Blur()
	m.log.Info("answer submitted", "session", m.ctrl.ID(), "request", req.Tag, "length", len([]rune(req.Answer)))
	return m, tea.Batch(m.scoreCmd(req), m.spinner.Tick)
}

func (m *Model) scoreCmd(req session.Request) tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		value, err := svc.Analyze(ctx, req.Answer)
		return scoredMsg{tag: req.Tag, score: value, err: err}
	}
}

func (m *Model) handleScored(msg scoredMsg) (tea.Model, tea.Cmd) {
	if m.ctrl == nil {
		return m, nil
	}
	if msg.err != nil {
		if err := m.ctrl.ScoreFailed(msg.tag, msg.err); err != nil {
			return m, nil
		}
		m.log.Warn("scoring failed", "session", m.ctrl.ID(), "request", msg.tag, "error", msg.err)
		m.clearStatus()
		return m, m.answer.Focus()
	}
	if err := m.ctrl.ScoreSucceeded(msg.tag, msg.score); err != nil {
		return m, nil
	}
	snap := m.ctrl.Snapshot()
	m.log.Info("answer scored",
		"session", m.ctrl.ID(),
		"request", msg.tag,
		"score", msg.score,
		"label", string(score.PerQuestionBanding.Classify(msg.score)),
		"progress", snap.CurrentCount,
	)
	return m, nil
}

func (m *Model) advance() (tea.Model, tea.Cmd) {
	if err := m.ctrl.Advance(); err != nil {
		return m, nil
	}
	m.clearStatus()
	if m.ctrl.State() == session.Complete {
		return m, m.complete()
	}
	m.answer.SetValue("")
	return m, m.answer.Focus()
}

func (m *Model) complete() tea.Cmd {
	sum, ok := m.ctrl.Summary()
	if !ok {
		return nil
	}
	m.log.Info("session complete",
		"session", m.ctrl.ID(),
		"average", sum.Score,
		"label", string(sum.Label),
		"answers", len(sum.Results),
	)
	if m.history == nil || !m.cfg.History {
		return nil
	}
	rec := model.SessionRecord{
		UUID:      m.ctrl.ID(),
		StartedAt: m.startedAt,
		EndedAt:   m.now(),
		Type:      m.cfg.Type,
		MaxCount:  m.ctrl.Snapshot().MaxCount,
		Average:   sum.Score,
		Label:     string(sum.Label),
		Answers:   sum.Results,
	}
	ctx, history := m.ctx, m.history
	return func() tea.Msg {
		id, err := history.InsertSession(ctx, rec)
		return historySavedMsg{id: id, err: err}
	}
}

func (m *Model) transcribeCmd(clip api.Clip) tea.Cmd {
	ctx, svc, seq, question := m.ctx, m.svc, m.sttSeq, m.sttQuestion
	return func() tea.Msg {
		text, err := svc.Transcribe(ctx, clip)
		return transcribedMsg{seq: seq, question: question, text: text, err: err}
	}
}

// questionKey identifies the question on screen within this session.
func (m *Model) questionKey() string {
	if m.ctrl == nil {
		return ""
	}
	return fmt.Sprintf("%s#%d:%s", m.ctrl.ID(), m.ctrl.Snapshot().CurrentCount, m.ctrl.Question())
}

func (m *Model) handleTranscribed(msg transcribedMsg) (tea.Model, tea.Cmd) {
	if !m.transcribing || msg.seq != m.sttSeq || msg.question != m.questionKey() ||
		m.ctrl == nil || m.ctrl.State() != session.AwaitingAnswer {
		m.log.Debug("stale transcription dropped", "session", m.sessionID(), "request", msg.seq)
		return m, nil
	}
	m.transcribing = false
	focus := m.answer.Focus()
	if msg.err != nil {
		m.setStatus(fmt.Sprintf("Transcription failed, please type your answer: %v", msg.err), true)
		m.log.Warn("transcription failed", "session", m.sessionID(), "error", msg.err)
		return m, focus
	}
	m.answer.SetValue(msg.text)
	m.answer.CursorEnd()
	m.setStatus("Transcribed. Review the text and press enter to submit.", false)
	m.log.Info("answer transcribed", "session", m.ctrl.ID(), "length", len([]rune(msg.text)))
	return m, focus
}

func (m *Model) speak(text string) tea.Cmd {
	if m.speaking || strings.TrimSpace(text) == "" {
		return nil
	}
	if m.player == nil {
		m.setStatus("Speech is unavailable: no audio player configured.", true)
		return nil
	}
	m.speaking = true
	ctx, svc, player, lang := m.ctx, m.svc, m.player, m.cfg.TTSLang
	return func() tea.Msg {
		data, err := svc.Speak(ctx, text, lang)
		if err != nil {
			return spokeMsg{err: err}
		}
		return spokeMsg{err: player.Play(ctx, data)}
	}
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.cancel()
	return m, tea.Quit
}

func (m *Model) busy() bool {
	if m.transcribing {
		return true
	}
	return m.ctrl != nil && m.ctrl.State() == session.Scoring
}

func (m *Model) sessionID() string {
	if m.ctrl == nil {
		return ""
	}
	return m.ctrl.ID()
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *Model) clearStatus() {
	m.status = ""
	m.statusErr = false
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
