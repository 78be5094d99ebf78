// Package stats contains history calculations and reporting.
package stats

import (
	"context"
	"fmt"

	"github.com/verte-zerg/tfquiz/internal/model"
)

// HistorySource lists stored sessions and their answers.
type HistorySource interface {
	ListSessions(ctx context.Context, cfg model.HistoryConfig) ([]model.SessionAggregate, error)
	ListAnswers(ctx context.Context, sessionIDs []int64) ([]model.AnswerRow, error)
}

// Report contains precomputed data for history rendering.
type Report struct {
	Sessions         []model.SessionAggregate `json:"sessions" yaml:"sessions"`
	WindowSessionIDs []int64                  `json:"window_session_ids" yaml:"window_session_ids"`
	Answers          []model.AnswerRow        `json:"answers" yaml:"answers"`
	CurveWindow      int                      `json:"curve_window" yaml:"curve_window"`
}

// BuildReport loads the filtered sessions, keeps the last cfg.Last of them and
// attaches the answers of the newest cfg.CurveWindow sessions.
func BuildReport(ctx context.Context, src HistorySource, cfg model.HistoryConfig) (Report, error) {
	sessions, err := src.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list sessions: %w", err)
	}
	sessions = newest(sessions, cfg.Last)

	window := newest(sessions, cfg.CurveWindow)
	ids := make([]int64, len(window))
	for i, s := range window {
		ids[i] = s.SessionID
	}
	answers, err := src.ListAnswers(ctx, ids)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list answers: %w", err)
	}
	return Report{
		Sessions:         sessions,
		WindowSessionIDs: ids,
		Answers:          answers,
		CurveWindow:      cfg.CurveWindow,
	}, nil
}

// newest returns the last n items of s, or all of s when n <= 0.
func newest[T any](s []T, n int) []T {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
