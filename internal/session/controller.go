// Package session implements the question loop state machine.
package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/verte-zerg/tfquiz/internal/model"
	"github.com/verte-zerg/tfquiz/internal/score"
)

// State is a step of the question loop.
type State int

const (
	AwaitingAnswer State = iota
	Scoring
	ShowingResult
	Complete
)

func (s State) String() string {
	switch s {
	case AwaitingAnswer:
		return "awaiting-answer"
	case Scoring:
		return "scoring"
	case ShowingResult:
		return "showing-result"
	case Complete:
		return "complete"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	// ErrEmptyAnswer is returned when a blank answer is submitted.
	ErrEmptyAnswer = errors.New("answer is empty")
	// ErrInvalidTransition is returned for an operation the current state does not accept.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrStaleResponse is returned for a scoring outcome that no longer matches the in-flight request.
	ErrStaleResponse = errors.New("stale scoring response")
)

// QuestionSource draws the next question.
type QuestionSource interface {
	Next() string
}

// Request is a scoring request issued by Submit.
type Request struct {
	Tag      string
	Question string
	Answer   string
}

// SessionState is the bookkeeping of one session.
type SessionState struct {
	CurrentCount int
	MaxCount     int
	Results      []model.ScoredResult
}

// Controller owns a SessionState and drives its transitions.
// It is not safe for concurrent use; the UI loop is its only caller.
type Controller struct {
	id       string
	source   QuestionSource
	state    State
	session  SessionState
	question string
	pending  Request
	lastErr  error
}

// New starts a session of maxCount questions and draws the first one.
func New(source QuestionSource, maxCount int) (*Controller, error) {
	if source == nil {
		return nil, fmt.Errorf("question source is required")
	}
	if maxCount <= 0 {
		return nil, fmt.Errorf("question count must be > 0")
	}
	c := &Controller{
		id:      uuid.NewString(),
		source:  source,
		session: SessionState{MaxCount: maxCount},
	}
	c.drawNext()
	return c, nil
}

// ID identifies the session.
func (c *Controller) ID() string {
	return c.id
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Question returns the question currently asked.
func (c *Controller) Question() string {
	return c.question
}

// Snapshot returns a copy of the session bookkeeping.
func (c *Controller) Snapshot() SessionState {
	s := c.session
	s.Results = append([]model.ScoredResult(nil), c.session.Results...)
	return s
}

// Submit validates answer and locks the question for scoring.
func (c *Controller) Submit(answer string) (Request, error) {
	if c.state != AwaitingAnswer {
		return Request{}, fmt.Errorf("%w: submit while %s", ErrInvalidTransition, c.state)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return Request{}, ErrEmptyAnswer
	}
	c.pending = Request{Tag: uuid.NewString(), Question: c.question, Answer: answer}
	c.lastErr = nil
	c.state = Scoring
	return c.pending, nil
}

// ScoreSucceeded records the score for the in-flight request.
func (c *Controller) ScoreSucceeded(tag string, value float64) error {
	req, err := c.accept(tag)
	if err != nil {
		return err
	}
	c.session.Results = append(c.session.Results, model.ScoredResult{
		Question: req.Question,
		Answer:   req.Answer,
		Score:    value,
	})
	c.session.CurrentCount++
	c.state = ShowingResult
	return nil
}

// ScoreFailed returns to the same question so the user can retry.
func (c *Controller) ScoreFailed(tag string, cause error) error {
	if _, err := c.accept(tag); err != nil {
		return err
	}
	c.lastErr = cause
	c.state = AwaitingAnswer
	return nil
}

func (c *Controller) accept(tag string) (Request, error) {
	if c.state != Scoring || tag == "" || tag != c.pending.Tag {
		return Request{}, ErrStaleResponse
	}
	req := c.pending
	c.pending = Request{}
	return req, nil
}

// Advance moves on from a shown result.
func (c *Controller) Advance() error {
	if c.state != ShowingResult {
		return fmt.Errorf("%w: advance while %s", ErrInvalidTransition, c.state)
	}
	if c.session.CurrentCount >= c.session.MaxCount {
		c.state = Complete
		return nil
	}
	c.drawNext()
	return nil
}

// drawNext checks the bound again before drawing; Advance is not the only caller.
func (c *Controller) drawNext() {
	if c.session.CurrentCount >= c.session.MaxCount {
		c.state = Complete
		return
	}
	c.question = c.source.Next()
	c.state = AwaitingAnswer
}

// Summary returns the final summary once the session is complete.
func (c *Controller) Summary() (score.Summary, bool) {
	if c.state != Complete {
		return score.Summary{}, false
	}
	return score.Summarize(c.session.Results)
}
