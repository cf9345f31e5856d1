package simple

import (
	"context"
	"sync"
)

// Generator hands out increasing ids starting at 1. Safe for concurrent use.
type Generator struct {
	mu      sync.Mutex
	counter int
}

func New() *Generator {
	//nolint:exhaustruct
	return &Generator{}
}

func (g *Generator) GetID(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.counter++

	return g.counter, nil
}
