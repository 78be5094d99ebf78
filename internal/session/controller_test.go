package session

import (
	"errors"
	"testing"

	"github.com/verte-zerg/tfquiz/internal/api"
	"github.com/verte-zerg/tfquiz/internal/score"
)

type scriptedSource struct {
	questions []string
	calls     int
}

func (s *scriptedSource) Next() string {
	q := s.questions[s.calls%len(s.questions)]
	s.calls++
	return q
}

func newController(t *testing.T, maxCount int) (*Controller, *scriptedSource) {
	t.Helper()
	src := &scriptedSource{questions: []string{"q1", "q2", "q3", "q4"}}
	c, err := New(src, maxCount)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c, src
}

func checkInvariants(t *testing.T, c *Controller) {
	t.Helper()
	s := c.Snapshot()
	if s.CurrentCount < 0 || s.CurrentCount > s.MaxCount {
		t.Fatalf("currentCount %d outside [0, %d]", s.CurrentCount, s.MaxCount)
	}
	if c.State() != Scoring && len(s.Results) != s.CurrentCount {
		t.Fatalf("results %d != currentCount %d in %s", len(s.Results), s.CurrentCount, c.State())
	}
}

func answer(t *testing.T, c *Controller, text string, value float64) {
	t.Helper()
	req, err := c.Submit(text)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	checkInvariants(t, c)
	if err := c.ScoreSucceeded(req.Tag, value); err != nil {
		t.Fatalf("ScoreSucceeded failed: %v", err)
	}
	checkInvariants(t, c)
}

func TestNewStartsAwaitingFirstQuestion(t *testing.T) {
	c, src := newController(t, 3)
	if c.State() != AwaitingAnswer {
		t.Fatalf("expected AwaitingAnswer, got %s", c.State())
	}
	if c.Question() != "q1" || src.calls != 1 {
		t.Fatalf("expected first question drawn once, got %q after %d calls", c.Question(), src.calls)
	}
	v := c.View()
	if !v.InputEnabled || v.Progress != "1 / 3" {
		t.Fatalf("unexpected view %+v", v)
	}
	checkInvariants(t, c)
}

func TestNewRejectsNonPositiveCount(t *testing.T) {
	if _, err := New(&scriptedSource{questions: []string{"q"}}, 0); err == nil {
		t.Fatalf("expected error for maxCount 0")
	}
}

func TestFullSessionAveragesToBalanced(t *testing.T) {
	c, _ := newController(t, 3)
	for i, value := range []float64{10, 50, 90} {
		answer(t, c, "answer", value)
		if c.State() != ShowingResult {
			t.Fatalf("expected ShowingResult, got %s", c.State())
		}
		if err := c.Advance(); err != nil {
			t.Fatalf("Advance failed: %v", err)
		}
		checkInvariants(t, c)
		if i < 2 && c.State() != AwaitingAnswer {
			t.Fatalf("expected AwaitingAnswer after %d answers, got %s", i+1, c.State())
		}
	}
	if c.State() != Complete {
		t.Fatalf("expected Complete, got %s", c.State())
	}
	sum, ok := c.Summary()
	if !ok {
		t.Fatalf("expected summary")
	}
	if sum.Score != 50 || sum.Label != score.Balanced {
		t.Fatalf("unexpected summary score=%v label=%q", sum.Score, sum.Label)
	}
	v := c.View()
	if v.Summary == nil || v.InputEnabled {
		t.Fatalf("unexpected complete view %+v", v)
	}
}

func TestScoringFailureKeepsQuestion(t *testing.T) {
	c, src := newController(t, 2)
	req, err := c.Submit("  my answer  ")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if req.Answer != "my answer" {
		t.Fatalf("expected trimmed answer, got %q", req.Answer)
	}
	if c.View().InputEnabled {
		t.Fatalf("input must be locked while scoring")
	}

	cause := &api.Error{Kind: api.KindScoring, Reason: "unexpected status", StatusCode: 500}
	if err := c.ScoreFailed(req.Tag, cause); err != nil {
		t.Fatalf("ScoreFailed failed: %v", err)
	}
	if c.State() != AwaitingAnswer {
		t.Fatalf("expected AwaitingAnswer, got %s", c.State())
	}
	s := c.Snapshot()
	if s.CurrentCount != 0 || len(s.Results) != 0 {
		t.Fatalf("expected no progress, got %+v", s)
	}
	v := c.View()
	if !v.InputEnabled || !api.IsScoringError(v.Err) {
		t.Fatalf("expected enabled input and scoring error, got %+v", v)
	}
	if c.Question() != "q1" || src.calls != 1 {
		t.Fatalf("question must not change after a failure")
	}

	answer(t, c, "retry", 30)
	if c.View().Err != nil {
		t.Fatalf("error should clear after a successful retry")
	}
}

func TestEmptyAnswerIsRejectedWithoutTransition(t *testing.T) {
	c, _ := newController(t, 1)
	for _, text := range []string{"", "   ", "\n\t"} {
		if _, err := c.Submit(text); !errors.Is(err, ErrEmptyAnswer) {
			t.Fatalf("expected ErrEmptyAnswer for %q, got %v", text, err)
		}
	}
	if c.State() != AwaitingAnswer {
		t.Fatalf("expected AwaitingAnswer, got %s", c.State())
	}
}

func TestDoubleSubmitIsRejected(t *testing.T) {
	c, _ := newController(t, 1)
	if _, err := c.Submit("first"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if _, err := c.Submit("second"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestStaleResponsesAreIgnored(t *testing.T) {
	c, _ := newController(t, 2)
	first, _ := c.Submit("first")
	if err := c.ScoreFailed(first.Tag, errors.New("boom")); err != nil {
		t.Fatalf("ScoreFailed failed: %v", err)
	}
	second, _ := c.Submit("second")

	if err := c.ScoreSucceeded(first.Tag, 99); !errors.Is(err, ErrStaleResponse) {
		t.Fatalf("expected ErrStaleResponse for old tag, got %v", err)
	}
	if c.State() != Scoring {
		t.Fatalf("stale response must not change state, got %s", c.State())
	}
	if err := c.ScoreSucceeded(second.Tag, 42); err != nil {
		t.Fatalf("ScoreSucceeded failed: %v", err)
	}
	if err := c.ScoreSucceeded(second.Tag, 42); !errors.Is(err, ErrStaleResponse) {
		t.Fatalf("expected duplicate response to be stale, got %v", err)
	}
	s := c.Snapshot()
	if len(s.Results) != 1 || s.Results[0].Score != 42 || s.Results[0].Answer != "second" {
		t.Fatalf("unexpected results %+v", s.Results)
	}
}

func TestAdvanceOnlyFromShowingResult(t *testing.T) {
	c, _ := newController(t, 1)
	if err := c.Advance(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	answer(t, c, "a", 70)
	v := c.View()
	if v.Last == nil || v.Reading.Label != score.FLeaning || v.Progress != "1 / 1" {
		t.Fatalf("unexpected result view %+v", v)
	}
	if err := c.Advance(); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if c.State() != Complete {
		t.Fatalf("expected Complete, got %s", c.State())
	}
	if err := c.Advance(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Complete must be terminal, got %v", err)
	}
	if _, err := c.Submit("more"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Complete must reject submits, got %v", err)
	}
}

func TestDrawStepCompletesWhenBoundReached(t *testing.T) {
	c, src := newController(t, 2)
	c.session.CurrentCount = 2
	calls := src.calls
	c.drawNext()
	if c.State() != Complete {
		t.Fatalf("expected Complete, got %s", c.State())
	}
	if src.calls != calls {
		t.Fatalf("no question should be drawn once the bound is reached")
	}
}

func TestSummaryUnavailableBeforeComplete(t *testing.T) {
	c, _ := newController(t, 2)
	if _, ok := c.Summary(); ok {
		t.Fatalf("summary must not be available before Complete")
	}
}
