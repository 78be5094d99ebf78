package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

// Batch is a question list returned by the question service.
type Batch struct {
	Questions []string
	Source    string
}

type questionsResponse struct {
	Questions json.RawMessage `json:"questions"`
	Source    string          `json:"source"`
}

// Questions fetches a batch of count questions.
func (c *Client) Questions(ctx context.Context, count int) (Batch, error) {
	query := url.Values{}
	query.Set("count", strconv.Itoa(count))
	req, err := c.newJSONRequest(ctx, http.MethodGet, "/questions?"+query.Encode(), nil)
	if err != nil {
		return Batch{}, newError(KindLoad, "invalid request", err)
	}
	data, err := c.do(req, KindLoad)
	if err != nil {
		return Batch{}, err
	}
	return decodeBatch(data)
}

// decodeBatch accepts {"questions": [...], "source": "..."} or a bare array.
func decodeBatch(data []byte) (Batch, error) {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		return validBatch(Batch{Questions: list})
	}

	var payload questionsResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		return Batch{}, newError(KindLoad, "malformed response", err)
	}
	if len(payload.Questions) == 0 || string(payload.Questions) == "null" {
		return Batch{}, newError(KindLoad, "missing questions field", nil)
	}
	if err := json.Unmarshal(payload.Questions, &list); err != nil {
		return Batch{}, newError(KindLoad, "questions is not a list of strings", err)
	}
	return validBatch(Batch{Questions: list, Source: payload.Source})
}

func validBatch(b Batch) (Batch, error) {
	if len(b.Questions) == 0 {
		return Batch{}, newError(KindLoad, "question list is empty", nil)
	}
	return b, nil
}
