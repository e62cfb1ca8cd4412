package testfixtures

import (
	"fmt"
	"sync"
)

// bookingIDWidth matches the length of production booking identifiers.
const bookingIDWidth = 12

// IDGenerator yields deterministic booking identifiers: the prefix followed by a
// zero padded upper-case hex counter, twelve characters in total.
type IDGenerator struct {
	mu      sync.Mutex
	prefix  string
	counter uint64
}

// NewIDGenerator uses prefix "B" when prefix is empty.
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "B"
	}
	return &IDGenerator{prefix: prefix}
}

// Next returns the next identifier in the sequence.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++

	width := bookingIDWidth - len(g.prefix)
	if width < 1 {
		width = 1
	}
	return fmt.Sprintf("%s%0*X", g.prefix, width, g.counter)
}

// NextFunc exposes Next for injection into services.
func (g *IDGenerator) NextFunc() func() string {
	if g == nil {
		return func() string { return "" }
	}
	return g.Next
}

// Issued reports how many identifiers have been handed out.
func (g *IDGenerator) Issued() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counter
}
