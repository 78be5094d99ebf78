package api

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
)

// Score bounds returned by the analyze service.
const (
	MinScore = 0.0
	MaxScore = 100.0
)

type analyzeRequest struct {
	Text string `json:"text"`
}

type analyzeResponse struct {
	Score *float64 `json:"score"`
}

// Analyze scores an answer on the T (0) to F (100) scale. It never retries.
func (c *Client) Analyze(ctx context.Context, text string) (float64, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/analyze", analyzeRequest{Text: text})
	if err != nil {
		return 0, newError(KindScoring, "invalid request", err)
	}
	data, err := c.do(req, KindScoring)
	if err != nil {
		return 0, err
	}

	var payload analyzeResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		return 0, newError(KindScoring, "malformed response", err)
	}
	if payload.Score == nil {
		return 0, newError(KindScoring, "missing score field", nil)
	}
	score := *payload.Score
	if math.IsNaN(score) || score < MinScore || score > MaxScore {
		return 0, newError(KindScoring, fmt.Sprintf("score %v out of range", score), nil)
	}
	return score, nil
}
