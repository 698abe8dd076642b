// Package results archives the outcome of finished matches. Nothing here is
// read back into a live session.
package results

import (
	"context"
	"sync"
	"time"
)

type Result struct {
	Code         string    `json:"code"`
	Score        int       `json:"score"`
	Won          bool      `json:"won"`
	Participants []string  `json:"participants"`
	EndedAt      time.Time `json:"endedAt"`
}

type Recorder interface {
	Record(ctx context.Context, r Result) error
	// Recent returns up to limit results, newest first.
	Recent(ctx context.Context, limit int) ([]Result, error)
	Close() error
}

const DefaultMemoryCapacity = 256

// Memory keeps the last few results in process memory.
type Memory struct {
	mu    sync.Mutex
	limit int
	items []Result
}

func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &Memory{limit: capacity}
}

func (m *Memory) Record(_ context.Context, r Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, r)
	if over := len(m.items) - m.limit; over > 0 {
		m.items = append(m.items[:0:0], m.items[over:]...)
	}
	return nil
}

func (m *Memory) Recent(_ context.Context, limit int) ([]Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 || limit > len(m.items) {
		limit = len(m.items)
	}
	out := make([]Result, 0, limit)
	for i := len(m.items) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.items[i])
	}
	return out, nil
}

func (m *Memory) Close() error { return nil }
