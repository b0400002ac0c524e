// Package idalloc hands out collection ids as max-existing-id + 1.
//
// An allocator is seeded from the store's real maximum when a session starts
// and advances immediately on every Next call, before the document is
// committed. An abandoned or failed commit therefore leaves a gap in the id
// space but never a collision. When several writers share a store, Observe
// lets a writer that hit a duplicate id catch up with the store's maximum.
package idalloc

import (
	"context"
	"fmt"
	"strconv"
	"sync"
)

// Allocator issues ids per collection.
type Allocator interface {
	// Next reserves and returns the next id of collection.
	Next(ctx context.Context, collection string) (string, error)
	// Observe raises the collection's counter to at least max.
	Observe(ctx context.Context, collection string, max int64) error
}

// MaxSource reports the largest id currently stored in a collection.
// store.Store satisfies it.
type MaxSource interface {
	MaxID(ctx context.Context, collection string) (int64, error)
}

// Seed observes the stored maximum of every collection.
func Seed(ctx context.Context, a Allocator, src MaxSource, collections ...string) error {
	for _, c := range collections {
		max, err := src.MaxID(ctx, c)
		if err != nil {
			return fmt.Errorf("seed %s ids: %w", c, err)
		}
		if err := a.Observe(ctx, c, max); err != nil {
			return fmt.Errorf("seed %s ids: %w", c, err)
		}
	}
	return nil
}

// Memory is an in-process Allocator for a single writer.
type Memory struct {
	mu  sync.Mutex
	max map[string]int64
}

func NewMemory() *Memory {
	return &Memory{max: make(map[string]int64)}
}

func (m *Memory) Next(ctx context.Context, collection string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.max[collection]++
	return strconv.FormatInt(m.max[collection], 10), nil
}

func (m *Memory) Observe(ctx context.Context, collection string, max int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if max > m.max[collection] {
		m.max[collection] = max
	}
	return nil
}
