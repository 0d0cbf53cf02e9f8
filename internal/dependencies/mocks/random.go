package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/paddlegame/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing.
// Queued strings are returned first; after that it produces a
// zero-padded counter ("000000000001", ...).
type MockRandom struct {
	mu      sync.Mutex
	queue   []string
	counter int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// String returns the next queued result, or the next counter value
func (r *MockRandom) String(length int, alphabet string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.queue) > 0 {
		result := r.queue[0]
		r.queue = r.queue[1:]
		return result
	}
	r.counter++
	return fmt.Sprintf("%0*d", length, r.counter)
}

// QueueString adds values to the String result queue
func (r *MockRandom) QueueString(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queue = append(r.queue, values...)
}
