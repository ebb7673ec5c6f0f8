package store

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// RunIDGenerator creates unique run ids.
type RunIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run ids.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7 string.
func (UUIDv7Generator) Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails if the random source fails
		panic(fmt.Sprintf("store: uuid.NewV7: %v", err))
	}
	return id.String()
}

// FixedGenerator returns the given ids in order and panics when they run out.
// Safe for concurrent use.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	pos int
}

// NewFixedGenerator creates a generator over ids.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next id.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pos >= len(g.ids) {
		panic(fmt.Sprintf("store: FixedGenerator exhausted after %d ids", len(g.ids)))
	}
	id := g.ids[g.pos]
	g.pos++
	return id
}
