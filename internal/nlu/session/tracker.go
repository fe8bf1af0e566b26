// Package session keeps utterances of one voice session in order. At most one
// parse runs per session, and a result overtaken by a newer utterance is
// reported as stale so the caller can drop it.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type state struct {
	sem      chan struct{}
	latest   uint64
	active   int
	lastSeen time.Time
}

type Tracker struct {
	mu       sync.Mutex
	sessions map[string]*state
	now      func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{
		sessions: make(map[string]*state),
		now:      time.Now,
	}
}

func (t *Tracker) get(id string) *state {
	s, ok := t.sessions[id]
	if !ok {
		s = &state{sem: make(chan struct{}, 1)}
		t.sessions[id] = s
	}
	s.lastSeen = t.now()
	return s
}

// Next allocates the next sequence number for a session.
func (t *Tracker) Next(id string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.get(id)
	s.latest++
	return s.latest
}

// observe records that utterance seq of the session has arrived.
func (t *Tracker) observe(id string, seq uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.get(id).raise(seq)
}

func (s *state) raise(seq uint64) {
	if seq > s.latest {
		s.latest = seq
	}
}

// Latest is the highest sequence seen for the session.
func (t *Tracker) Latest(id string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.sessions[id]; ok {
		return s.latest
	}
	return 0
}

// Do runs fn for utterance seq once no other utterance of the session is in
// flight. A zero seq is allocated with Next. If a newer utterance has already
// been observed when seq's turn comes, fn is skipped. stale reports whether
// the result was overtaken, either before or while fn ran.
func (t *Tracker) Do(ctx context.Context, id string, seq uint64, fn func(ctx context.Context)) (stale bool, err error) {
	t.mu.Lock()
	s := t.get(id)
	if seq == 0 {
		s.latest++
		seq = s.latest
	} else {
		s.raise(seq)
	}
	s.active++
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		s.active--
		s.lastSeen = t.now()
		t.mu.Unlock()
	}()

	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return false, fmt.Errorf("waiting for session %s: %w", id, ctx.Err())
	}
	defer func() { <-s.sem }()

	if t.isStale(s, seq) {
		return true, nil
	}
	fn(ctx)
	return t.isStale(s, seq), nil
}

func (t *Tracker) isStale(s *state, seq uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return seq < s.latest
}

// Prune forgets idle sessions not seen for maxIdle and returns how many were
// dropped.
func (t *Tracker) Prune(maxIdle time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().Add(-maxIdle)
	dropped := 0
	for id, s := range t.sessions {
		if s.active == 0 && s.lastSeen.Before(cutoff) {
			delete(t.sessions, id)
			dropped++
		}
	}
	return dropped
}

// Len is the number of tracked sessions.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}
