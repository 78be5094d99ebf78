// Package score aggregates answer scores and maps them to labels and display parameters.
//
// Scores run from 0 (thinking) to 100 (feeling).
package score

import (
	"math"

	"github.com/verte-zerg/tfquiz/internal/model"
)

// Label is a categorical T/F tendency.
type Label string

const (
	StrongT  Label = "Strong T"
	TLeaning Label = "T-leaning"
	Balanced Label = "Balanced"
	FLeaning Label = "F-leaning"
	StrongF  Label = "Strong F"
)

// Banding maps a score to a Label. Checks run in order: below StrongTBelow,
// at most TLeaningMax, inside [BalancedMin, BalancedMax], below FLeaningBelow,
// otherwise Strong F. Scores in the gaps between bands fall through to the
// next check that matches.
type Banding struct {
	Name          string
	StrongTBelow  float64
	TLeaningMax   float64
	BalancedMin   float64
	BalancedMax   float64
	FLeaningBelow float64
}

// PerQuestionBanding labels a single scored answer.
var PerQuestionBanding = Banding{
	Name:          "per-question",
	StrongTBelow:  20,
	TLeaningMax:   40,
	BalancedMin:   41,
	BalancedMax:   59,
	FLeaningBelow: 80,
}

// FinalBanding labels the session average. It is kept apart from
// PerQuestionBanding so the two displays can diverge without affecting each other.
var FinalBanding = Banding{
	Name:          "final",
	StrongTBelow:  20,
	TLeaningMax:   40,
	BalancedMin:   41,
	BalancedMax:   59,
	FLeaningBelow: 80,
}

// Classify returns the label for score.
func (b Banding) Classify(score float64) Label {
	switch {
	case score < b.StrongTBelow:
		return StrongT
	case score <= b.TLeaningMax:
		return TLeaning
	case score >= b.BalancedMin && score <= b.BalancedMax:
		return Balanced
	case score < b.FLeaningBelow:
		return FLeaning
	default:
		return StrongF
	}
}

// Split is the displayed T/F percentage pair.
type Split struct {
	T int
	F int
}

// PercentageSplit rounds each side to the nearest ten independently, so
// T+F is not always 100.
func PercentageSplit(score float64) Split {
	return Split{
		T: int(roundHalfUp((100-score)/10) * 10),
		F: int(roundHalfUp(score/10) * 10),
	}
}

func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

// Average returns the mean score, or NaN for an empty log.
func Average(results []model.ScoredResult) float64 {
	if len(results) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, r := range results {
		sum += r.Score
	}
	return sum / float64(len(results))
}

// Mood is the character expression shown next to a result.
type Mood string

const (
	MoodVeryAngry Mood = "very-angry"
	MoodAngry     Mood = "angry"
	MoodNeutral   Mood = "neutral"
	MoodHappy     Mood = "happy"
	MoodVeryHappy Mood = "very-happy"
)

// MoodFor picks the character expression for score.
func MoodFor(score float64) Mood {
	switch {
	case score < 20:
		return MoodVeryAngry
	case score < 40:
		return MoodAngry
	case score < 60:
		return MoodNeutral
	case score < 80:
		return MoodHappy
	default:
		return MoodVeryHappy
	}
}

// Face renders the mood as a text emoticon.
func (m Mood) Face() string {
	switch m {
	case MoodVeryAngry:
		return "(╬ Ò﹏Ó)"
	case MoodAngry:
		return "(¬_¬)"
	case MoodHappy:
		return "(^_^)"
	case MoodVeryHappy:
		return "(≧▽≦)"
	default:
		return "(•_•)"
	}
}

// Marker returns the gauge column for score on a bar of width cells.
func Marker(score float64, width int) int {
	if width <= 1 {
		return 0
	}
	if math.IsNaN(score) || score <= 0 {
		return 0
	}
	if score >= 100 {
		return width - 1
	}
	return int(score / 100 * float64(width-1))
}

// Reading is everything displayed for one score.
type Reading struct {
	Score float64
	Label Label
	Split Split
	Mood  Mood
}

// Read builds the display reading of score under banding.
func Read(score float64, banding Banding) Reading {
	return Reading{
		Score: score,
		Label: banding.Classify(score),
		Split: PercentageSplit(score),
		Mood:  MoodFor(score),
	}
}

// Summary is the final result of a completed session.
type Summary struct {
	Reading
	Message string
	Results []model.ScoredResult
}

// Summarize computes the final summary. It reports false for an empty log.
func Summarize(results []model.ScoredResult) (Summary, bool) {
	if len(results) == 0 {
		return Summary{}, false
	}
	reading := Read(Average(results), FinalBanding)
	return Summary{
		Reading: reading,
		Message: Message(reading.Label),
		Results: append([]model.ScoredResult(nil), results...),
	}, true
}

// Message returns the final-result sentence for label.
func Message(label Label) string {
	switch label {
	case StrongT:
		return `You are a certain T! "Are you T?"`
	case TLeaning:
		return "You lean strongly toward T."
	case Balanced:
		return "You keep T and F well balanced."
	case FLeaning:
		return "You lean strongly toward F."
	case StrongF:
		return `You are a certain F! "So you're an F?"`
	default:
		return ""
	}
}
