package service

import (
	"context"
	"time"

	"github.com/iliyamo/live-waitlist/internal/model"
)

// WaitingLister lists entries in one status, ordered by creation
// stamp ascending.
type WaitingLister interface {
	ListByStatus(ctx context.Context, status string) ([]model.QueueEntry, error)
}

// PositionResolver computes a 1-based rank within the waiting set.
// A freshly created entry may not be visible to an immediately
// following ordered read, so the resolver re-runs the query a bounded
// number of times before giving up. Exhausting the attempts is not an
// error: the outcome is "unknown, will resolve later". Each attempt
// re-runs the query fresh, so joins happening during the retry window
// are reflected correctly.
type PositionResolver struct {
	Entries  WaitingLister
	Attempts int           // 0 means the default of 5
	Delay    time.Duration // 0 means the default of 300ms
}

// NewPositionResolver returns a resolver with the default retry
// budget.
func NewPositionResolver(entries WaitingLister) *PositionResolver {
	return &PositionResolver{Entries: entries}
}

// Resolve returns the entry's rank in the waiting set and true, or
// (0, false) when the entry was not visible within the retry budget.
// Store errors also land in (0, false): a rank the caller cannot
// trust is the same as no rank.
func (p *PositionResolver) Resolve(ctx context.Context, id string) (int, bool) {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 5
	}
	delay := p.Delay
	if delay <= 0 {
		delay = 300 * time.Millisecond
	}
	for i := 0; i < attempts; i++ {
		waiting, err := p.Entries.ListByStatus(ctx, model.StatusWaiting)
		if err == nil {
			for idx, e := range waiting {
				if e.ID == id {
					return idx + 1, true
				}
			}
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return 0, false
		case <-time.After(delay):
		}
	}
	return 0, false
}
