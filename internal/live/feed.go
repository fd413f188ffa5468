// Package live pushes queue changes to connected viewers. A Feed
// fans out change pokes from the write paths, a Projector turns each
// poke into role-shaped frames, and a Hub delivers the frames over
// websockets.
package live

import "sync"

// Feed is the in-process change-notification channel. Write paths
// call Notify after every authoritative or mirror mutation;
// subscribers get a coalesced poke. A poke carries no payload; the
// projector re-reads the full result set on every signal, so a
// dropped intermediate poke loses nothing.
type Feed struct {
	mu   sync.Mutex
	subs map[int]chan struct{}
	next int
}

// NewFeed returns an empty feed.
func NewFeed() *Feed {
	return &Feed{subs: make(map[int]chan struct{})}
}

// Subscribe registers a listener and returns its channel plus a
// cancel function. The channel has a buffer of one: pokes arriving
// while a previous one is unconsumed coalesce.
func (f *Feed) Subscribe() (<-chan struct{}, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.next
	f.next++
	ch := make(chan struct{}, 1)
	f.subs[id] = ch
	return ch, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs, id)
	}
}

// Notify pokes every subscriber without blocking.
func (f *Feed) Notify() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
