package testutil

import (
	"strconv"
	"sync"
)

// SequenceGenerator returns deterministic query ids: <prefix>-1,
// <prefix>-2, ...
//
// It replaces the UUIDv7 query ids of the store so that logged output can
// be compared byte for byte.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequenceGenerator struct {
	mu     sync.Mutex
	prefix string
	seq    int64
}

// NewSequenceGenerator creates a generator. An empty prefix defaults to
// "query".
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	if prefix == "" {
		prefix = "query"
	}
	return &SequenceGenerator{prefix: prefix}
}

// Generate returns the next id. The first call returns <prefix>-1.
func (g *SequenceGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return g.prefix + "-" + strconv.FormatInt(g.seq, 10)
}

// Count returns the number of ids generated since the last Reset.
func (g *SequenceGenerator) Count() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq
}

// Reset restarts the sequence. The next call to Generate returns
// <prefix>-1.
func (g *SequenceGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}
