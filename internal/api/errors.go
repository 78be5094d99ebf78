package api

import (
	"errors"
	"fmt"
)

// Kind identifies which remote operation failed.
type Kind string

const (
	// KindLoad means the question batch could not be loaded.
	KindLoad Kind = "load"
	// KindScoring means a single answer could not be scored.
	KindScoring Kind = "scoring"
	// KindTranscription means the speech-to-text service gave no usable text.
	KindTranscription Kind = "transcription"
	// KindSpeech means text-to-speech synthesis failed.
	KindSpeech Kind = "speech"
)

// Error is returned by every Client call so callers can tell which
// operation failed and whether the service answered at all.
type Error struct {
	Kind       Kind
	Reason     string
	StatusCode int
	Wrapped    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s failed: %s", e.Kind, e.Reason)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Wrapped != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Wrapped)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Kind == kind
}

// IsLoadError reports whether err is a question load failure.
func IsLoadError(err error) bool { return IsKind(err, KindLoad) }

// IsScoringError reports whether err is a scoring failure.
func IsScoringError(err error) bool { return IsKind(err, KindScoring) }

// IsTranscriptionError reports whether err is a transcription failure.
func IsTranscriptionError(err error) bool { return IsKind(err, KindTranscription) }

// IsSpeechError reports whether err is a speech synthesis failure.
func IsSpeechError(err error) bool { return IsKind(err, KindSpeech) }

func newError(kind Kind, reason string, wrapped error) *Error {
	return &Error{Kind: kind, Reason: reason, Wrapped: wrapped}
}

func statusError(kind Kind, status int) *Error {
	return &Error{Kind: kind, Reason: "unexpected status", StatusCode: status}
}
