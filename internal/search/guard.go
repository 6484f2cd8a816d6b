// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"sync"
)

// Guard hands out generation-numbered tickets per key (a browser session).
// Beginning a new ticket cancels the previous ticket for the same key, and
// only the newest ticket may commit its result.
type Guard struct {
	mu    sync.Mutex
	next  uint64
	slots map[string]*slot
}

type slot struct {
	gen    uint64
	cancel context.CancelFunc
}

// NewGuard returns an empty Guard.
func NewGuard() *Guard {
	return &Guard{slots: make(map[string]*slot)}
}

// Ticket is one search attempt under a Guard.
type Ticket struct {
	g      *Guard
	key    string
	gen    uint64
	ctx    context.Context
	cancel context.CancelFunc
}

// Begin starts a new attempt for key. The returned ticket's context is
// derived from parent and is cancelled when a newer attempt begins or the
// ticket is released. Callers must Release the ticket.
func (g *Guard) Begin(parent context.Context, key string) *Ticket {
	ctx, cancel := context.WithCancel(parent)

	g.mu.Lock()
	g.next++
	gen := g.next
	if prev, ok := g.slots[key]; ok {
		prev.cancel()
	}
	g.slots[key] = &slot{gen: gen, cancel: cancel}
	g.mu.Unlock()

	return &Ticket{g: g, key: key, gen: gen, ctx: ctx, cancel: cancel}
}

// inflight returns the number of keys with an unreleased current ticket.
func (g *Guard) inflight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.slots)
}

// Context is cancelled once the ticket is superseded or released.
func (t *Ticket) Context() context.Context { return t.ctx }

// generation is the ticket's sequence number. Later tickets have larger
// generations.
func (t *Ticket) generation() uint64 { return t.gen }

// Current reports whether no newer ticket has begun for the same key.
func (t *Ticket) Current() bool {
	t.g.mu.Lock()
	defer t.g.mu.Unlock()
	return t.currentLocked()
}

func (t *Ticket) currentLocked() bool {
	s, ok := t.g.slots[t.key]
	return ok && s.gen == t.gen
}

// Commit runs fn only if the ticket is still current, and reports whether
// it ran. No newer ticket can begin while fn runs, so fn should only
// publish an already computed result.
func (t *Ticket) Commit(fn func()) bool {
	t.g.mu.Lock()
	defer t.g.mu.Unlock()
	if !t.currentLocked() {
		return false
	}
	fn()
	return true
}

// Release cancels the ticket's context and forgets the key if this ticket
// is still the newest for it. Release is idempotent.
func (t *Ticket) Release() {
	t.g.mu.Lock()
	if t.currentLocked() {
		delete(t.g.slots, t.key)
	}
	t.g.mu.Unlock()
	t.cancel()
}
