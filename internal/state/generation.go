package state

import "sync"

// Token identifies one load of a view.
type Token struct {
	View string
	Gen  uint64
}

// Generations hands out a token per load and tells whether a token is still
// the latest for its view, so a slow stale response cannot overwrite newer
// data. Safe for concurrent use.
type Generations struct {
	mu  sync.Mutex
	cur map[string]uint64
}

// NewGenerations creates an empty counter set.
func NewGenerations() *Generations {
	return &Generations{cur: make(map[string]uint64)}
}

// Next starts a new load of view and returns its token.
func (g *Generations) Next(view string) Token {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cur[view]++
	return Token{View: view, Gen: g.cur[view]}
}

// Current reports whether tok is the latest load of its view.
func (g *Generations) Current(tok Token) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return tok.Gen != 0 && g.cur[tok.View] == tok.Gen
}

// Invalidate makes every outstanding token of view stale.
func (g *Generations) Invalidate(view string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cur[view]++
}
