package testutil

import (
	"fmt"
	"sync"
)

// RunIDs hands out run-0001, run-0002, ... so stored runs sort and compare
// the same way on every test run. Safe for concurrent use.
type RunIDs struct {
	mu   sync.Mutex
	next int
}

// NewRunIDs returns a generator whose first id is run-0001.
func NewRunIDs() *RunIDs {
	return &RunIDs{}
}

// Generate returns the next id.
func (g *RunIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("run-%04d", g.next)
}

// Reset makes the next id run-0001 again.
func (g *RunIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next = 0
}
