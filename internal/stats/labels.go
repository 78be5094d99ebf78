package stats

import (
	"sort"

	"github.com/verte-zerg/tfquiz/internal/model"
	"github.com/verte-zerg/tfquiz/internal/score"
)

// LabelCount is the number of sessions that ended with a label.
type LabelCount struct {
	Label score.Label
	Count int
}

var labelOrder = map[score.Label]int{
	score.StrongT:  0,
	score.TLeaning: 1,
	score.Balanced: 2,
	score.FLeaning: 3,
	score.StrongF:  4,
}

// LabelCounts counts sessions per stored label, most frequent first.
func LabelCounts(sessions []model.SessionAggregate) []LabelCount {
	if len(sessions) == 0 {
		return nil
	}
	counts := map[score.Label]int{}
	for _, s := range sessions {
		counts[score.Label(s.Label)]++
	}
	out := make([]LabelCount, 0, len(counts))
	for label, n := range counts {
		out = append(out, LabelCount{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return rank(out[i].Label) < rank(out[j].Label)
		}
		return out[i].Count > out[j].Count
	})
	return out
}

// ExtremeAnswers returns up to n answers furthest from the balanced midpoint.
func ExtremeAnswers(answers []model.AnswerRow, n int) []model.AnswerRow {
	if n <= 0 || len(answers) == 0 {
		return nil
	}
	candidates := make([]model.AnswerRow, len(answers))
	copy(candidates, answers)
	sort.SliceStable(candidates, func(i, j int) bool {
		return distance(candidates[i].Score) > distance(candidates[j].Score)
	})
	if n > len(candidates) {
		n = len(candidates)
	}
	return candidates[:n]
}

func distance(v float64) float64 {
	if v < 50 {
		return 50 - v
	}
	return v - 50
}

func rank(label score.Label) int {
	if r, ok := labelOrder[label]; ok {
		return r
	}
	return len(labelOrder)
}
