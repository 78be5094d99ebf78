package score

import (
	"math"
	"testing"

	"github.com/verte-zerg/tfquiz/internal/model"
)

func TestPerQuestionBandingBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  Label
	}{
		{0, StrongT},
		{19.9, StrongT},
		{20, TLeaning},
		{40, TLeaning},
		{40.5, FLeaning},
		{41, Balanced},
		{59, Balanced},
		{59.5, FLeaning},
		{60, FLeaning},
		{79.9, FLeaning},
		{80, StrongF},
		{100, StrongF},
	}
	for _, tc := range cases {
		if got := PerQuestionBanding.Classify(tc.score); got != tc.want {
			t.Fatalf("Classify(%v) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestFinalBandingBalancedAverage(t *testing.T) {
	results := []model.ScoredResult{{Score: 10}, {Score: 50}, {Score: 90}}
	avg := Average(results)
	if avg != 50 {
		t.Fatalf("expected average 50, got %v", avg)
	}
	if got := FinalBanding.Classify(avg); got != Balanced {
		t.Fatalf("expected Balanced, got %q", got)
	}
}

func TestAverageOfEmptyLogIsNaN(t *testing.T) {
	if !math.IsNaN(Average(nil)) {
		t.Fatalf("expected NaN for empty log")
	}
}

func TestPercentageSplitRoundsIndependently(t *testing.T) {
	cases := []struct {
		score float64
		want  Split
	}{
		{0, Split{T: 100, F: 0}},
		{50, Split{T: 50, F: 50}},
		{72, Split{T: 30, F: 70}},
		{45, Split{T: 60, F: 50}},
		{100, Split{T: 0, F: 100}},
	}
	for _, tc := range cases {
		if got := PercentageSplit(tc.score); got != tc.want {
			t.Fatalf("PercentageSplit(%v) = %+v, want %+v", tc.score, got, tc.want)
		}
	}
}

func TestMoodBands(t *testing.T) {
	cases := map[float64]Mood{
		5:  MoodVeryAngry,
		20: MoodAngry,
		40: MoodNeutral,
		60: MoodHappy,
		80: MoodVeryHappy,
	}
	for s, want := range cases {
		if got := MoodFor(s); got != want {
			t.Fatalf("MoodFor(%v) = %q, want %q", s, got, want)
		}
	}
}

func TestMarkerClamps(t *testing.T) {
	if got := Marker(-5, 11); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if got := Marker(50, 11); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
	if got := Marker(150, 11); got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}
}

func TestSummarize(t *testing.T) {
	if _, ok := Summarize(nil); ok {
		t.Fatalf("expected no summary for empty log")
	}
	results := []model.ScoredResult{{Question: "q", Answer: "a", Score: 85}}
	sum, ok := Summarize(results)
	if !ok {
		t.Fatalf("expected summary")
	}
	if sum.Label != StrongF || sum.Message != Message(StrongF) {
		t.Fatalf("unexpected summary %+v", sum)
	}
	results[0].Score = 0
	if sum.Results[0].Score != 85 {
		t.Fatalf("summary should hold its own copy of results")
	}
}
