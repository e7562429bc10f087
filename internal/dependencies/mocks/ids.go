package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/stonecluster/internal/dependencies/ids"
)

// MockIDs is a mock implementation of ids.Generator returning predictable ids
type MockIDs struct {
	mu     sync.Mutex
	prefix string
	next   int
}

// Ensure MockIDs implements Generator
var _ ids.Generator = (*MockIDs)(nil)

// NewMockIDs creates a MockIDs producing prefix-1, prefix-2, ...
func NewMockIDs(prefix string) *MockIDs {
	return &MockIDs{prefix: prefix}
}

// New returns the next id in sequence
func (g *MockIDs) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("%s-%d", g.prefix, g.next)
}
