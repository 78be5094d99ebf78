package session

import (
	"fmt"

	"github.com/verte-zerg/tfquiz/internal/model"
	"github.com/verte-zerg/tfquiz/internal/score"
)

// View describes what the UI should render for the current state.
type View struct {
	State        State
	Question     string
	Progress     string
	InputEnabled bool
	// Last is the most recent result while ShowingResult.
	Last    *model.ScoredResult
	Reading score.Reading
	// Err is the last scoring failure, cleared on the next submit.
	Err     error
	Summary *score.Summary
}

// View returns the render description of the current state.
func (c *Controller) View() View {
	v := View{
		State:    c.state,
		Question: c.question,
		Err:      c.lastErr,
	}
	switch c.state {
	case AwaitingAnswer:
		v.InputEnabled = true
		v.Progress = fmt.Sprintf("%d / %d", c.session.CurrentCount+1, c.session.MaxCount)
	case Scoring:
		v.Progress = fmt.Sprintf("%d / %d", c.session.CurrentCount+1, c.session.MaxCount)
	case ShowingResult:
		v.Progress = fmt.Sprintf("%d / %d", c.session.CurrentCount, c.session.MaxCount)
		last := c.session.Results[len(c.session.Results)-1]
		v.Last = &last
		v.Reading = score.Read(last.Score, score.PerQuestionBanding)
	case Complete:
		v.Question = ""
		v.Progress = fmt.Sprintf("%d / %d", c.session.CurrentCount, c.session.MaxCount)
		if sum, ok := c.Summary(); ok {
			v.Summary = &sum
			v.Reading = sum.Reading
		}
	}
	return v
}
