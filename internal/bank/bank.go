// Package bank holds the question batch for a session and draws questions from it.
package bank

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/verte-zerg/tfquiz/internal/api"
)

// Source fetches question batches.
type Source interface {
	Questions(ctx context.Context, count int) (api.Batch, error)
}

// Bank is a read-only question batch with a non-repeating random draw.
type Bank struct {
	questions []string
	source    string
	used      map[int]struct{}
	rnd       *rand.Rand
}

// NewRand returns a random source seeded with the current time.
func NewRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Load fetches count questions from src. Errors from src are returned as-is
// so load failures keep their kind.
func Load(ctx context.Context, src Source, count int, rnd *rand.Rand) (*Bank, error) {
	if count <= 0 {
		return nil, fmt.Errorf("question count must be > 0")
	}
	batch, err := src.Questions(ctx, count)
	if err != nil {
		return nil, err
	}
	return New(batch.Questions, batch.Source, rnd)
}

// New builds a bank from an already loaded batch.
func New(questions []string, source string, rnd *rand.Rand) (*Bank, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("question batch is empty")
	}
	if rnd == nil {
		rnd = NewRand()
	}
	return &Bank{
		questions: append([]string(nil), questions...),
		source:    source,
		used:      map[int]struct{}{},
		rnd:       rnd,
	}, nil
}

// Next draws a question that has not been shown in the current pass.
// Once every index has been used the pass restarts from the full batch,
// so the first question of a new pass may repeat the previous one.
func (b *Bank) Next() string {
	return b.questions[b.NextIndex()]
}

// NextIndex is Next returning the batch index instead of the text.
func (b *Bank) NextIndex() int {
	if len(b.used) >= len(b.questions) {
		b.used = map[int]struct{}{}
	}
	available := make([]int, 0, len(b.questions)-len(b.used))
	for i := range b.questions {
		if _, ok := b.used[i]; !ok {
			available = append(available, i)
		}
	}
	idx := available[b.rnd.Intn(len(available))]
	b.used[idx] = struct{}{}
	return idx
}

// Len returns the batch size.
func (b *Bank) Len() int {
	return len(b.questions)
}

// Used returns how many indices are marked in the current pass.
func (b *Bank) Used() int {
	return len(b.used)
}

// Source returns the service-reported source name, if any.
func (b *Bank) Source() string {
	return b.source
}

// Questions returns a copy of the batch.
func (b *Bank) Questions() []string {
	return append([]string(nil), b.questions...)
}
