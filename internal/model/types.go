// Package model defines shared data structures.
package model

import (
	"fmt"
	"strings"
	"time"
)

// QuestionType selects which question source the service uses.
type QuestionType string

const (
	// TypeMeme is the fast, pre-written question source.
	TypeMeme QuestionType = "meme"
	// TypeAI is the slower AI-generated question source.
	TypeAI QuestionType = "aiSettings"
)

// ParseQuestionType validates a question type name.
func ParseQuestionType(value string) (QuestionType, error) {
	switch QuestionType(strings.TrimSpace(value)) {
	case TypeMeme:
		return TypeMeme, nil
	case TypeAI:
		return TypeAI, nil
	default:
		return "", fmt.Errorf("unknown question type %q (expected %q or %q)", value, TypeMeme, TypeAI)
	}
}

// ShowsLoading reports whether the source is slow enough to show a loading indicator.
func (t QuestionType) ShowsLoading() bool {
	return t == TypeAI
}

// Config defines quiz settings.
type Config struct {
	Count   int
	Type    QuestionType
	BaseURL string
	Timeout time.Duration
	TTSLang string
	Player  string
	History bool
}

// HistoryConfig defines filters for history output.
type HistoryConfig struct {
	Type        string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// ScoredResult is one answered and scored question.
type ScoredResult struct {
	Question string  `json:"question" yaml:"question"`
	Answer   string  `json:"answer" yaml:"answer"`
	Score    float64 `json:"score" yaml:"score"`
}

// SessionRecord captures a completed quiz session.
type SessionRecord struct {
	UUID      string
	StartedAt time.Time
	EndedAt   time.Time
	Type      QuestionType
	MaxCount  int
	Average   float64
	Label     string
	Answers   []ScoredResult
}

// SessionAggregate summarizes a stored session for reporting.
type SessionAggregate struct {
	SessionID int64     `json:"id" yaml:"id"`
	UUID      string    `json:"uuid" yaml:"uuid"`
	EndedAt   time.Time `json:"ended_at" yaml:"ended_at"`
	Type      string    `json:"type" yaml:"type"`
	Questions int       `json:"questions" yaml:"questions"`
	Average   float64   `json:"average" yaml:"average"`
	Label     string    `json:"label" yaml:"label"`
}

// AnswerRow is a stored answer joined with its session.
type AnswerRow struct {
	SessionID int64     `json:"session_id" yaml:"session_id"`
	EndedAt   time.Time `json:"ended_at" yaml:"ended_at"`
	Position  int       `json:"position" yaml:"position"`
	Question  string    `json:"question" yaml:"question"`
	Answer    string    `json:"answer" yaml:"answer"`
	Score     float64   `json:"score" yaml:"score"`
}
